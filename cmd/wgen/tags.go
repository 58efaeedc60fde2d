package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vidyasagar/wgen/internal/gallery"
)

func newTagsCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List the categories offered by the image service",
		Long: `List every category the image service offers, one per line as
mode/tag. When the service cannot be reached the built-in list is shown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := a.newClient().Tags(cmd.Context())
			if err != nil {
				a.logger.Warnw("tag catalog unavailable", "error", err)
				printErr(cmd, "warning: using the built-in category list (%v)\n", err)
			}

			out := cmd.OutOrStdout()
			for _, t := range catalog.SFW {
				fmt.Fprintf(out, "%s/%s\n", gallery.ModeSFW, t)
			}
			for _, t := range catalog.NSFW {
				fmt.Fprintf(out, "%s/%s\n", gallery.ModeNSFW, t)
			}
			return nil
		},
	}
}
