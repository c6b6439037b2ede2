// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/channel-scout/internal/discover"
	"github.com/pdiddy/channel-scout/internal/export"
	"github.com/pdiddy/channel-scout/internal/history"
	"github.com/pdiddy/channel-scout/internal/metrics"
	"github.com/pdiddy/channel-scout/internal/youtube"
	"github.com/pdiddy/channel-scout/pkg/types"
)

// runDiscovery executes one discovery run of kind and reports the results.
// Partial results are always printed; an upstream failure is returned after.
func runDiscovery(cmd *cobra.Command, args []string, kind string) error {
	cfg := loadConfig()
	if err := applyDiscoveryFlags(cmd, &cfg); err != nil {
		return err
	}
	q, crit, err := buildRequest(cmd, args, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := metrics.New()
	client, err := youtube.NewClient(ctx, cfg.YouTube,
		youtube.WithLogger(logger),
		youtube.WithMetrics(m),
	)
	if err != nil {
		return err
	}
	pages, details, err := client.Fetchers(kind)
	if err != nil {
		return err
	}

	engine := &discover.Engine{
		Pages:     pages,
		Details:   details,
		PageDelay: cfg.Discovery.PageDelay,
		Log:       &logger,
		Progress: func(attempt, matched int) {
			logger.Info().
				Int("page", attempt).
				Int("matched", matched).
				Int("target", q.TargetCount).
				Msg("searching")
		},
	}

	logger.Info().
		Str("keyword", q.Keyword).
		Str("kind", kind).
		Int64("min", crit.MinCount).
		Int("locations", len(crit.AllowedCategories)).
		Msg("starting discovery")

	started := time.Now()
	st := engine.Run(ctx, q, crit)
	m.ObserveRun(string(st.Stop), len(st.Accumulated), st.Skipped)
	run := st.Snapshot(kind, q, crit, started)

	if !cfg.History.Disabled {
		run.ID = recordRun(ctx, cfg.History, run)
	}

	if err := writeRun(cmd.OutOrStdout(), run, cfg.Export.Format); err != nil {
		return err
	}
	if err := saveOutputs(cmd, cfg, run); err != nil {
		return err
	}
	if path, _ := cmd.Flags().GetString("metrics-file"); path != "" {
		if err := m.WriteTextfile(path); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}

	if err := st.Err(); err != nil {
		return fmt.Errorf("discovery stopped early (%d of %d found): %w", len(st.Accumulated), q.TargetCount, err)
	}
	return nil
}

// recordRun stores run in the history database. Failures are logged, not
// returned: a run that reached the user is not lost for lack of history.
func recordRun(ctx context.Context, cfg types.HistoryConfig, run types.Run) string {
	store, err := history.Open(cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("history unavailable")
		return ""
	}
	defer store.Close()

	id, err := store.SaveRun(ctx, run)
	if err != nil {
		logger.Warn().Err(err).Msg("could not record run")
		return ""
	}
	logger.Debug().Str("run", id).Msg("run recorded")
	return id
}

// saveOutputs writes the optional CSV and YAML result files.
func saveOutputs(cmd *cobra.Command, cfg types.ScoutConfig, run types.Run) error {
	if writeCSV, _ := cmd.Flags().GetBool("csv"); writeCSV {
		path, err := export.WriteCSVFile(cfg.Export.CSVDir, run)
		if err != nil {
			return err
		}
		logger.Info().Str("file", path).Int("rows", len(run.Records)).Msg("csv written")
	}
	if path, _ := cmd.Flags().GetString("save"); path != "" {
		if err := export.WriteResultFile(path, run); err != nil {
			return err
		}
		logger.Info().Str("file", path).Msg("result file written")
	}
	return nil
}

func writeRun(w io.Writer, run types.Run, format types.OutputFormat) error {
	switch format {
	case types.OutputJSON:
		return export.FormatJSON(w, run.Records)
	case types.OutputCSV:
		return export.WriteCSV(w, run.Kind, run.Records)
	default:
		export.FormatTable(w, run)
		if run.ID != "" {
			fmt.Fprintf(w, "run %s\n", shortID(run.ID))
		}
		return nil
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
