package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"postbundle/internal/config"
	"postbundle/internal/journal"
)

func newHistoryCommand(configFlag *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent run outcomes from the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(*configFlag)
			if err != nil {
				return err
			}
			store, err := journal.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded yet")
				return nil
			}

			pretty := isatty.IsTerminal(os.Stdout.Fd())
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"STARTED", "OUTCOME", "BATCH", "BUNDLE", "DETAIL"},
				historyRows(records),
				pretty,
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}

func historyRows(records []journal.RunRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		batch := ""
		if record.Images+record.Videos > 0 {
			batch = fmt.Sprintf("%di/%dv", record.Images, record.Videos)
		}
		bundle := ""
		if record.JobDir != "" {
			bundle = filepath.Base(record.JobDir)
		}
		rows = append(rows, []string{
			record.StartedAt.UTC().Format(time.RFC3339),
			record.Outcome,
			batch,
			bundle,
			record.Detail,
		})
	}
	return rows
}
