// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/channel-scout/internal/export"
	"github.com/pdiddy/channel-scout/internal/history"
	"github.com/pdiddy/channel-scout/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List, show, and delete recorded runs",
	Long: `History manages the local database of finished runs. Every channels or
videos run is recorded unless --no-history is given or history.disabled is
set. Recorded runs can be printed or exported again without API calls.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := history.Open(loadConfig().History)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(context.Background(), limit)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-8s  %-16s  %-7s  %-30s  %-9s  %-14s  %s\n",
		"ID", "Started", "Kind", "Keyword", "Found", "Stop", "Quota")
	fmt.Fprintln(w, strings.Repeat("-", 102))
	for _, r := range runs {
		keyword := r.Keyword
		if len(keyword) > 30 {
			keyword = keyword[:27] + "..."
		}
		fmt.Fprintf(w, "%-8s  %-16s  %-7s  %-30s  %-9s  %-14s  %d\n",
			shortID(r.ID), r.StartedAt.Local().Format("2006-01-02 15:04"), r.Kind, keyword,
			fmt.Sprintf("%d/%d", r.Matched, r.Target), r.Stop, r.QuotaSpent)
	}
	return nil
}

// --- show subcommand ---

var historyShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Print a recorded run or a saved result file",
	Long: `Show prints the records of a recorded run, identified by its ID or a
unique ID prefix. With --file it reads a YAML result file written by --save
instead. --csv exports the records to a CSV file named after the keyword.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistoryShow,
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")
	if file == "" && len(args) == 0 {
		return errors.New("run ID or --file required")
	}

	cfg := loadConfig()
	if cmd.Flags().Changed("format") {
		s, _ := cmd.Flags().GetString("format")
		cfg.Export.Format = types.OutputFormat(s)
	}
	if err := validateFormat(cfg.Export.Format); err != nil {
		return err
	}
	if cmd.Flags().Changed("csv-dir") {
		cfg.Export.CSVDir, _ = cmd.Flags().GetString("csv-dir")
	}

	var run types.Run
	if file != "" {
		rf, err := export.ReadResultFile(file)
		if err != nil {
			return err
		}
		run = rf.Run()
	} else {
		store, err := history.Open(cfg.History)
		if err != nil {
			return err
		}
		defer store.Close()

		run, err = store.LoadRun(context.Background(), args[0])
		if err != nil {
			return err
		}
	}

	if err := writeRun(cmd.OutOrStdout(), run, cfg.Export.Format); err != nil {
		return err
	}
	return saveOutputs(cmd, cfg, run)
}

// --- delete subcommand ---

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a recorded run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.Open(loadConfig().History)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.DeleteRun(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	},
}

func init() {
	historyListCmd.Flags().Int("limit", 20, "maximum number of runs to list (0 for all)")

	historyShowCmd.Flags().String("file", "", "read a YAML result file instead of the database")
	historyShowCmd.Flags().String("format", "", "output format: table, json, csv")
	historyShowCmd.Flags().Bool("csv", false, "also write a CSV file named after the keyword")
	historyShowCmd.Flags().String("csv-dir", "", "directory for --csv output")
	historyShowCmd.Flags().String("save", "", "write the run to a YAML result file")

	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}
