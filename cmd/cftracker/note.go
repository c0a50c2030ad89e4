package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vytor/cftracker/internal/app"
	"github.com/vytor/cftracker/internal/models"
)

func newNoteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "note <contest-index> <text>",
		Short: "Save a note for a problem, e.g. note 1500-C \"check overflow\"",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := models.ParseProblemKey(args[0])
			if err != nil {
				return err
			}

			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			text := strings.Join(args[1:], " ")
			if err := a.Notes.SaveNote(cmd.Context(), key, text); err != nil {
				return fmt.Errorf("save note: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved note for %s\n", key)
			return nil
		},
	}
}
