package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/2beens/trainlog/internal/client"
)

const defaultAPI = "http://localhost:9000"

func newRootCmd() *cobra.Command {
	var apiURL string

	rootCmd := &cobra.Command{
		Use:           "logbookctl",
		Short:         "CLI client for the training log service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&apiURL, "api", "a", envOr("TRAINLOG_API", defaultAPI), "trainlog service base URL")

	newClient := func() *client.Client {
		return client.New(apiURL)
	}

	rootCmd.AddCommand(
		newAddCmd(newClient),
		newListCmd(newClient),
		newGetCmd(newClient),
		newUpdateCmd(newClient),
		newDeleteCmd(newClient),
		newImportCmd(newClient),
		newExportCmd(newClient),
		newClearCmd(newClient),
		newSummaryCmd(newClient),
		newWeeklyCmd(newClient),
		newNotesCmd(newClient),
	)

	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
