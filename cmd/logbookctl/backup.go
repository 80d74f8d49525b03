package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/2beens/trainlog/internal/activities"
)

var nowFunc = time.Now

func newImportCmd(newClient clientFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import a backup file; replaces all activities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read backup file: %w", err)
			}
			imported, err := newClient().Import(cmd.Context(), raw)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d activities\n", imported)
			return nil
		},
	}
}

func newExportCmd(newClient clientFactory) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export activities and notes into a backup file",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := newClient().Export(cmd.Context())
			if err != nil {
				return err
			}
			if output == "-" {
				_, err := cmd.OutOrStdout().Write(raw)
				return err
			}
			if output == "" {
				output = activities.BackupFileName(nowFunc())
			}
			if err := os.WriteFile(output, raw, 0o644); err != nil {
				return fmt.Errorf("write backup file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default training-log-YYYY-MM-DD.json)")
	return cmd
}

func newClearCmd(newClient clientFactory) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all activities and notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("this deletes all data, confirm with --yes")
			}
			if err := newClient().ClearData(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "all data cleared")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting all data")
	return cmd
}
