// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdiddy/channel-scout/pkg/types"
)

var (
	channelColumns = []string{"Channel Name", "Subscribers", "Total Views", "Video Count", "Description", "Country", "Channel URL"}
	videoColumns   = []string{"Title", "Published At", "Channel", "Views", "Likes", "Comment Count", "Video URL", "Country"}
)

// DefaultFilename returns the CSV file name for a keyword search:
// spaces become underscores, then "_channels.csv" or "_youtube_data.csv".
func DefaultFilename(keyword, kind string) string {
	base := strings.ReplaceAll(strings.TrimSpace(keyword), " ", "_")
	base = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, base)
	if kind == types.KindVideo {
		return base + "_youtube_data.csv"
	}
	return base + "_channels.csv"
}

// WriteCSV writes records of kind to w with a header row.
func WriteCSV(w io.Writer, kind string, records []types.Record) error {
	cw := csv.NewWriter(w)

	header := channelColumns
	if kind == types.KindVideo {
		header = videoColumns
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, r := range records {
		var row []string
		if kind == types.KindVideo {
			row = []string{
				r.DisplayName,
				r.Text["published_at"],
				r.Text["channel"],
				itoa(r.Metric),
				itoa(r.Secondary["likes"]),
				itoa(r.Secondary["comments"]),
				r.URL,
				r.Category,
			}
		} else {
			row = []string{
				r.DisplayName,
				itoa(r.Metric),
				itoa(r.Secondary["views"]),
				itoa(r.Secondary["videos"]),
				r.Text["description"],
				r.Category,
				r.URL,
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row %s: %w", r.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes run.Records to dir/DefaultFilename and returns the path.
func WriteCSVFile(dir string, run types.Run) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating csv dir: %w", err)
	}
	path := filepath.Join(dir, DefaultFilename(run.Query.Keyword, run.Kind))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating csv file: %w", err)
	}
	if err := WriteCSV(f, run.Kind, run.Records); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing csv file: %w", err)
	}
	return path, nil
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
