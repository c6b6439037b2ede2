// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/channel-scout/internal/region"
	"github.com/pdiddy/channel-scout/internal/secrets"
	"github.com/pdiddy/channel-scout/pkg/types"
)

func setDefaults() {
	viper.SetDefault("youtube.timeout", 30*time.Second)
	viper.SetDefault("youtube.user_agent", "channel-scout/"+version)
	viper.SetDefault("youtube.requests_per_second", 5.0)
	viper.SetDefault("youtube.max_retries", 3)

	viper.SetDefault("discovery.target_count", 20)
	viper.SetDefault("discovery.max_page_depth", 15)
	viper.SetDefault("discovery.page_delay", time.Second)

	viper.SetDefault("export.format", string(types.OutputTable))
	viper.SetDefault("export.csv_dir", ".")

	dataDir := ".channel-scout"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".local", "share", "channel-scout")
	}
	viper.SetDefault("history.dir", dataDir)
}

// loadConfig reads the merged config file, environment and defaults.
func loadConfig() types.ScoutConfig {
	return types.ScoutConfig{
		YouTube: types.YouTubeConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("youtube.timeout"),
				UserAgent: viper.GetString("youtube.user_agent"),
			},
			APIKey:            viper.GetString("youtube.api_key"),
			Endpoint:          viper.GetString("youtube.endpoint"),
			RequestsPerSecond: viper.GetFloat64("youtube.requests_per_second"),
			MaxRetries:        viper.GetInt("youtube.max_retries"),
		},
		Discovery: types.DiscoveryConfig{
			TargetCount:  viper.GetInt("discovery.target_count"),
			MaxPageDepth: viper.GetInt("discovery.max_page_depth"),
			PageDelay:    viper.GetDuration("discovery.page_delay"),
			Ordering:     types.Ordering(viper.GetString("discovery.ordering")),
		},
		Export: types.ExportConfig{
			Format: types.OutputFormat(viper.GetString("export.format")),
			CSVDir: viper.GetString("export.csv_dir"),
		},
		History: types.HistoryConfig{
			Dir:      viper.GetString("history.dir"),
			Disabled: viper.GetBool("history.disabled"),
		},
	}
}

// addDiscoveryFlags registers the flags shared by the channels and videos
// commands.
func addDiscoveryFlags(cmd *cobra.Command, metricName string) {
	f := cmd.Flags()
	f.Int("target", 0, "number of matches wanted (default from config, 20)")
	f.Int("max-pages", 0, "maximum search pages to request (default from config, 15)")
	f.Int64("min", 0, "minimum "+metricName+" (inclusive)")
	f.Int64("max", 0, "maximum "+metricName+" (inclusive); 0 means no upper bound")
	f.StringSlice("locations", []string{region.WorldwideLabel}, "countries, regions, or ISO codes to accept (see 'channel-scout regions')")
	f.Bool("include-unknown", false, "also accept results with no location set")
	f.String("order", "", "search ordering: "+orderingList())
	f.String("format", "", "output format: table, json, csv (default from config, table)")
	f.Bool("csv", false, "also write a CSV file named after the keyword")
	f.String("csv-dir", "", "directory for --csv output (default from config, .)")
	f.String("save", "", "write the run to a YAML result file")
	f.Duration("delay", 0, "pause between search pages (default from config, 1s)")
	f.String("api-key", "", "YouTube Data API key (overrides config and .secrets/youtube-api-key)")
	f.String("metrics-file", "", "write Prometheus metrics for this run to a textfile")
	f.Bool("no-history", false, "do not record this run in the history database")
}

// applyDiscoveryFlags overrides cfg with every flag the user set.
func applyDiscoveryFlags(cmd *cobra.Command, cfg *types.ScoutConfig) error {
	f := cmd.Flags()
	if f.Changed("target") {
		cfg.Discovery.TargetCount, _ = f.GetInt("target")
	}
	if f.Changed("max-pages") {
		cfg.Discovery.MaxPageDepth, _ = f.GetInt("max-pages")
	}
	if f.Changed("delay") {
		cfg.Discovery.PageDelay, _ = f.GetDuration("delay")
	}
	if f.Changed("order") {
		s, _ := f.GetString("order")
		o, err := types.ParseOrdering(s)
		if err != nil {
			return err
		}
		cfg.Discovery.Ordering = o
	}
	if f.Changed("format") {
		s, _ := f.GetString("format")
		cfg.Export.Format = types.OutputFormat(s)
	}
	if f.Changed("csv-dir") {
		cfg.Export.CSVDir, _ = f.GetString("csv-dir")
	}
	if noHistory, _ := f.GetBool("no-history"); noHistory {
		cfg.History.Disabled = true
	}

	flagKey, _ := f.GetString("api-key")
	cfg.YouTube.APIKey = secrets.FirstNonEmpty(flagKey, cfg.YouTube.APIKey, loadedSecrets[secrets.YouTubeAPIKey])
	return validateFormat(cfg.Export.Format)
}

// buildRequest turns the keyword arguments and filter flags into a query and
// criteria, both validated.
func buildRequest(cmd *cobra.Command, args []string, cfg types.ScoutConfig) (types.Query, types.FilterCriteria, error) {
	f := cmd.Flags()
	q := types.Query{
		Keyword:      strings.Join(args, " "),
		TargetCount:  cfg.Discovery.TargetCount,
		MaxPageDepth: cfg.Discovery.MaxPageDepth,
		Ordering:     cfg.Discovery.Ordering,
	}
	if err := q.Validate(); err != nil {
		return q, types.FilterCriteria{}, err
	}

	minCount, _ := f.GetInt64("min")
	maxCount, _ := f.GetInt64("max")
	if maxCount == 0 {
		maxCount = math.MaxInt64
	}
	labels, _ := f.GetStringSlice("locations")
	includeUnknown, _ := f.GetBool("include-unknown")

	codes := region.Resolve(labels)
	if unknown := unresolvedLabels(labels); len(unknown) > 0 {
		logger.Warn().Strs("labels", unknown).Msg("ignoring unrecognized locations")
	}

	crit := types.NewFilterCriteria(minCount, maxCount, codes, includeUnknown)
	if err := crit.Validate(); err != nil {
		return q, crit, err
	}
	return q, crit, nil
}

// unresolvedLabels returns the labels that resolve to no country code.
func unresolvedLabels(labels []string) []string {
	var out []string
	for _, l := range labels {
		if len(region.Resolve([]string{l})) == 0 {
			out = append(out, l)
		}
	}
	return out
}

func validateFormat(f types.OutputFormat) error {
	switch f {
	case types.OutputTable, types.OutputJSON, types.OutputCSV:
		return nil
	default:
		return &types.ConfigurationError{Field: "format", Reason: fmt.Sprintf("unknown format %q (want table, json, or csv)", f)}
	}
}

func orderingList() string {
	names := make([]string, len(types.Orderings))
	for i, o := range types.Orderings {
		names[i] = string(o)
	}
	return strings.Join(names, ", ")
}
