package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/vidyasagar/wgen/internal/gallery"
	"github.com/vidyasagar/wgen/internal/storage"
)

type fetchOptions struct {
	count       int
	downloadDir string
	quiet       bool
}

func newFetchCmd(a *App) *cobra.Command {
	opts := &fetchOptions{}

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Print image URLs without starting the viewer",
		Long: `Fetch one or more random images from the selected categories and print
their URLs, one per line. With --download the images are also written to
a directory and recorded in the saved-image list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runFetch(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.count, "count", "n", 1, "number of images to fetch")
	cmd.Flags().StringVarP(&opts.downloadDir, "download", "d", "", "download images into this directory")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "do not show a progress spinner")

	return cmd
}

func (a *App) runFetch(ctx context.Context, out, errOut io.Writer, opts *fetchOptions) error {
	if opts.count < 1 {
		return fmt.Errorf("--count must be at least 1, got %d", opts.count)
	}

	settings := a.loadSettings()
	if settings.Empty() {
		return fmt.Errorf("%w; run 'wgen settings set --general waifu' first", gallery.ErrInvalidSelection)
	}

	var saved *storage.SavedStore
	if opts.downloadDir != "" {
		if err := os.MkdirAll(opts.downloadDir, 0o755); err != nil {
			return &gallery.IOError{Op: "create directory", Path: opts.downloadDir, Err: err}
		}
		var closeSaved func()
		saved, closeSaved = a.openSaved()
		defer closeSaved()
	}

	s := newSpinner(errOut)
	if !opts.quiet {
		s.Start()
	}
	defer s.Stop()

	client := a.newClient()
	rnd := gallery.DefaultRand()

	for i := 0; i < opts.count; i++ {
		sel, err := gallery.SelectTag(rnd, settings.General, settings.Restricted)
		if err != nil {
			return err
		}
		s.Suffix = fmt.Sprintf(" Fetching %s/%s (%d/%d)", sel.Mode, sel.Tag, i+1, opts.count)

		url, err := client.FetchImageURL(ctx, sel)
		if err != nil {
			a.logger.Errorw("fetch failed", "tag", sel.Tag, "mode", sel.Mode.String(), "error", err)
			return err
		}

		if opts.downloadDir == "" {
			s.Stop()
			fmt.Fprintln(out, url)
			if !opts.quiet && i+1 < opts.count {
				s.Start()
			}
			continue
		}

		s.Suffix = fmt.Sprintf(" Downloading %s (%d/%d)", url, i+1, opts.count)
		img, err := client.Download(ctx, url)
		if err != nil {
			a.logger.Errorw("download failed", "url", url, "error", err)
			return err
		}

		dst := filepath.Join(opts.downloadDir, downloadName(time.Now(), img, i, opts.count))
		if err := gallery.SaveTo(dst, img); err != nil {
			return err
		}
		if saved != nil {
			if err := saved.Add(storage.SavedImage{URL: url, Path: dst, Tag: sel.Tag, Mode: sel.Mode.String()}); err != nil {
				a.logger.Warnw("could not record saved image", "path", dst, "error", err)
			}
		}

		s.Stop()
		fmt.Fprintf(out, "%s\t%s\n", url, dst)
		if !opts.quiet && i+1 < opts.count {
			s.Start()
		}
	}
	return nil
}

func newSpinner(w io.Writer) *spinner.Spinner {
	if f, ok := w.(*os.File); ok {
		return spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriterFile(f))
	}
	return spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
}

// downloadName numbers files when several are fetched within the same second.
func downloadName(now time.Time, img *gallery.Image, i, count int) string {
	name := gallery.SuggestedFilename(now, img)
	if count == 1 {
		return name
	}
	ext := filepath.Ext(name)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), i+1, ext)
}
