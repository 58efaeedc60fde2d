package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vidyasagar/wgen/internal/gallery"
	"github.com/vidyasagar/wgen/internal/storage"
)

// imageURLMsg carries the result of asking the API for an image URL.
type imageURLMsg struct {
	gen uint64
	sel gallery.Selection
	url string
	err error
}

// imageLoadedMsg carries downloaded image bytes.
type imageLoadedMsg struct {
	gen uint64
	url string
	img *gallery.Image
	err error
}

// tempExpiredMsg fires when a displayed temp file has outlived its TTL.
type tempExpiredMsg struct {
	path string
}

// catalogMsg carries the tag catalog for the settings panel.
type catalogMsg struct {
	catalog gallery.Catalog
	err     error
}

// settingsSavedMsg reports the outcome of writing the settings file.
type settingsSavedMsg struct {
	err error
}

// settingsChangedMsg is sent when the settings file changes on disk.
type settingsChangedMsg struct {
	settings storage.UserSettings
}

// imageSavedMsg reports the outcome of a user-initiated save.
type imageSavedMsg struct {
	url       string
	path      string
	err       error
	ledgerErr error // recording in the saved-image ledger failed
}

func fetchImageURL(client *gallery.Client, timeout time.Duration, gen uint64, sel gallery.Selection) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		url, err := client.FetchImageURL(ctx, sel)
		return imageURLMsg{gen: gen, sel: sel, url: url, err: err}
	}
}

func downloadImage(client *gallery.Client, timeout time.Duration, gen uint64, url string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		img, err := client.Download(ctx, url)
		return imageLoadedMsg{gen: gen, url: url, img: img, err: err}
	}
}

func fetchCatalog(client *gallery.Client, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		cat, err := client.Tags(ctx)
		return catalogMsg{catalog: cat, err: err}
	}
}

func expireTemp(path string, ttl time.Duration) tea.Cmd {
	return tea.Tick(ttl, func(time.Time) tea.Msg {
		return tempExpiredMsg{path: path}
	})
}

func saveSettings(path string, s storage.UserSettings) tea.Cmd {
	return func() tea.Msg {
		return settingsSavedMsg{err: storage.SaveSettings(path, s)}
	}
}

func saveImage(saved *storage.SavedStore, img *gallery.Image, dst string, sel gallery.Selection) tea.Cmd {
	return func() tea.Msg {
		if err := gallery.SaveTo(dst, img); err != nil {
			return imageSavedMsg{url: img.URL, path: dst, err: err}
		}
		msg := imageSavedMsg{url: img.URL, path: dst}
		if saved != nil {
			msg.ledgerErr = saved.Add(storage.SavedImage{
				URL:  img.URL,
				Path: dst,
				Tag:  sel.Tag,
				Mode: sel.Mode.String(),
			})
		}
		return msg
	}
}

// waitForSettings blocks until the watcher delivers new settings.
func waitForSettings(ch <-chan storage.UserSettings) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return settingsChangedMsg{settings: s}
	}
}
