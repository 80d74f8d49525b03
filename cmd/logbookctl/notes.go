package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newNotesCmd(newClient clientFactory) *cobra.Command {
	notesCmd := &cobra.Command{Use: "notes", Short: "Read or replace the week notes"}

	notesCmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			notes, err := newClient().GetNotes(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), notes)
			return nil
		},
	})

	notesCmd.AddCommand(&cobra.Command{
		Use:   "set TEXT...",
		Short: "Replace the notes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient().SaveNotes(cmd.Context(), strings.Join(args, " ")); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "notes saved")
			return nil
		},
	})

	return notesCmd
}
