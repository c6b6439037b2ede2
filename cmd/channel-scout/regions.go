// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/channel-scout/internal/region"
)

var regionsCmd = &cobra.Command{
	Use:   "regions [label]...",
	Short: "List location labels or show the country codes they select",
	Long: `Regions prints every label accepted by --locations: multi-country regions
first, then single countries. Given labels, it prints the deduplicated ISO
country codes they resolve to.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		if len(args) == 0 {
			for _, label := range region.Labels() {
				if region.IsRegion(label) {
					fmt.Fprintf(w, "%s (region)\n", label)
					continue
				}
				fmt.Fprintln(w, label)
			}
			return nil
		}

		codes := region.Sorted(region.Resolve(args))
		if len(codes) == 0 {
			return fmt.Errorf("no country codes for %s", strings.Join(args, ", "))
		}
		fmt.Fprintln(w, strings.Join(codes, " "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(regionsCmd)
}
