// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/channel-scout/pkg/types"
)

var videosCmd = &cobra.Command{
	Use:   "videos <keyword>...",
	Short: "Find videos by keyword, view range, and uploader location",
	Long: `Videos searches YouTube for videos matching the keyword and keeps the ones
whose view count lies in [--min, --max] and whose uploading channel is located
in --locations. Each detail batch costs one extra lookup to resolve the
uploader's country.`,
	Example: `  channel-scout videos "sourdough starter" --min 100000 --locations Europe --format json`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDiscovery(cmd, args, types.KindVideo)
	},
}

func init() {
	addDiscoveryFlags(videosCmd, "view count")
	rootCmd.AddCommand(videosCmd)
}
