package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vidyasagar/wgen/internal/storage"
)

func newSavedCmd(a *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "saved",
		Short: "List images saved from the viewer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := storage.OpenDB(a.cfg.DataDir)
			if err != nil {
				return err
			}
			defer db.Close()

			list, err := storage.NewSavedStore(db).List(limit)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), storage.RenderSaved(list))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "maximum number of entries (0 for all)")

	return cmd
}
