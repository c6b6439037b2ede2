// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the channel-scout CLI.
package main

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/channel-scout/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// logger is configured from --verbose before any command runs.
var logger = zerolog.Nop()

// rootCmd is the base command for the channel-scout CLI.
var rootCmd = &cobra.Command{
	Use:   "channel-scout",
	Short: "Find YouTube channels and videos by keyword, audience size, and location",
	Long: `channel-scout searches the YouTube Data API for a keyword and keeps paging
until it has found enough channels (or videos) whose subscriber (or view)
count falls in a range and whose location matches the selected countries or
regions.

Results are printed as a table, JSON, or CSV, recorded in a local history
database, and can be saved to a YAML result file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug().Strs("keys", keys).Msg("loaded secrets")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initLogger, initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./channel-scout.yaml or ~/.config/channel-scout/channel-scout.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log per-page and per-request details")
}

func initLogger() {
	verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
	log.Logger = logger
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn().Err(err).Msg("could not load .env")
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("channel-scout")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "channel-scout"))
		}
	}

	setDefaults()

	viper.SetEnvPrefix("CHANNEL_SCOUT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		logger.Debug().Str("file", viper.ConfigFileUsed()).Msg("using config file")
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
