package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vidyasagar/wgen/internal/gallery"
	"github.com/vidyasagar/wgen/internal/storage"
)

func newSettingsCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the selected categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			writeSettings(cmd.OutOrStdout(), a.loadSettings())
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the selected categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			writeSettings(cmd.OutOrStdout(), a.loadSettings())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the settings file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), a.cfg.SettingsPath)
			return nil
		},
	})

	cmd.AddCommand(newSettingsSetCmd(a))

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Restore the default categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := storage.DefaultSettings()
			if err := storage.SaveSettings(a.cfg.SettingsPath, s); err != nil {
				return err
			}
			a.logger.Infow("settings reset", "path", a.cfg.SettingsPath)
			writeSettings(cmd.OutOrStdout(), s)
			return nil
		},
	})

	return cmd
}

func newSettingsSetCmd(a *App) *cobra.Command {
	var general, restricted []string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Replace the selected categories",
		Long: `Replace the selected general and/or restricted categories. Only the groups
given on the command line change. Pass an empty value to clear a group:

  wgen settings set --general waifu,neko --restricted ""`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if !flags.Changed("general") && !flags.Changed("restricted") {
				return fmt.Errorf("nothing to change; pass --general and/or --restricted")
			}

			s := a.loadSettings()
			if flags.Changed("general") {
				s.General = general
			}
			if flags.Changed("restricted") {
				s.Restricted = restricted
			}
			s = s.Normalize()

			catalog := gallery.DefaultCatalog()
			for _, unknown := range unknownTags(catalog, gallery.ModeSFW, s.General) {
				printErr(cmd, "warning: %q is not a known general category\n", unknown)
			}
			for _, unknown := range unknownTags(catalog, gallery.ModeNSFW, s.Restricted) {
				printErr(cmd, "warning: %q is not a known restricted category\n", unknown)
			}
			if s.Empty() {
				printErr(cmd, "warning: no categories selected; image generation will fail\n")
			}

			if err := storage.SaveSettings(a.cfg.SettingsPath, s); err != nil {
				return err
			}
			a.logger.Infow("settings updated", "general", s.General, "restricted", s.Restricted)
			writeSettings(cmd.OutOrStdout(), s)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&general, "general", "g", nil, "comma-separated general categories")
	cmd.Flags().StringSliceVarP(&restricted, "restricted", "r", nil, "comma-separated restricted categories")

	return cmd
}

func writeSettings(w io.Writer, s storage.UserSettings) {
	fmt.Fprintf(w, "general:    %s\n", joinOrNone(s.General))
	fmt.Fprintf(w, "restricted: %s\n", joinOrNone(s.Restricted))
}

func joinOrNone(tags []string) string {
	if len(tags) == 0 {
		return "(none)"
	}
	return strings.Join(tags, ", ")
}

func unknownTags(c gallery.Catalog, mode gallery.Mode, tags []string) []string {
	var unknown []string
	for _, t := range tags {
		if !c.Has(mode, t) {
			unknown = append(unknown, t)
		}
	}
	return unknown
}
