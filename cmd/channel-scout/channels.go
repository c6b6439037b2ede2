// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/channel-scout/pkg/types"
)

var channelsCmd = &cobra.Command{
	Use:   "channels <keyword>...",
	Short: "Find channels by keyword, subscriber range, and location",
	Long: `Channels searches YouTube for channels matching the keyword and keeps the
ones whose subscriber count lies in [--min, --max] and whose country is in
--locations. Search pages are requested until --target channels are found,
the search runs out of results, or --max-pages pages have been read.

Channels that hide their subscriber count are treated as having 0.`,
	Example: `  channel-scout channels woodworking --min 10000 --max 500000 --locations Nordics
  channel-scout channels "home espresso" --locations US,CA --target 50 --csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDiscovery(cmd, args, types.KindChannel)
	},
}

func init() {
	addDiscoveryFlags(channelsCmd, "subscriber count")
	rootCmd.AddCommand(channelsCmd)
}
