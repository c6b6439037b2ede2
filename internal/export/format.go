// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export renders discovery results as tables, JSON, CSV and YAML
// result files.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdiddy/channel-scout/pkg/types"
)

// FormatTable writes a human-readable table of run.Records to w, followed
// by the run summary.
func FormatTable(w io.Writer, run types.Run) {
	if len(run.Records) == 0 {
		fmt.Fprintln(w, "No matches found.")
		fmt.Fprintln(w, run.Summary)
		return
	}

	switch run.Kind {
	case types.KindVideo:
		fmt.Fprintf(w, "%-4s  %-45s  %-20s  %12s  %9s  %s\n",
			"Rank", "Title", "Channel", "Views", "Likes", "Country")
		fmt.Fprintln(w, strings.Repeat("-", 108))
		for i, r := range run.Records {
			fmt.Fprintf(w, "%-4d  %-45s  %-20s  %12s  %9s  %s\n",
				i+1, truncate(r.DisplayName, 45), truncate(r.Text["channel"], 20),
				humanCount(r.Metric), humanCount(r.Secondary["likes"]), r.Category)
		}
	default:
		fmt.Fprintf(w, "%-4s  %-45s  %12s  %14s  %7s  %s\n",
			"Rank", "Channel", "Subscribers", "Views", "Videos", "Country")
		fmt.Fprintln(w, strings.Repeat("-", 100))
		for i, r := range run.Records {
			fmt.Fprintf(w, "%-4d  %-45s  %12s  %14s  %7s  %s\n",
				i+1, truncate(r.DisplayName, 45),
				humanCount(r.Metric), humanCount(r.Secondary["views"]),
				humanCount(r.Secondary["videos"]), r.Category)
		}
	}

	fmt.Fprintf(w, "\n%s", run.Summary)
	if run.Skipped > 0 {
		fmt.Fprintf(w, " (%d malformed entries skipped)", run.Skipped)
	}
	fmt.Fprintf(w, " [%d pages, %d quota units]\n", run.Attempts, run.QuotaSpent)
}

// FormatJSON writes records as indented JSON to w.
func FormatJSON(w io.Writer, records []types.Record) error {
	if records == nil {
		records = []types.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// humanCount groups digits by thousands: 1234567 -> 1,234,567.
func humanCount(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
