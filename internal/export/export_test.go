// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/channel-scout/pkg/types"
)

func channelRun() types.Run {
	return types.Run{
		Kind:  types.KindChannel,
		Query: types.Query{Keyword: "wood working", TargetCount: 5, MaxPageDepth: 3},
		Criteria: types.NewFilterCriteria(1000, 50000,
			map[string]struct{}{"US": {}, "CA": {}}, true),
		Records: []types.Record{
			{
				ID:          "UC1",
				DisplayName: "Shop Talk",
				Metric:      12345,
				Secondary:   map[string]int64{"views": 9876543, "videos": 210},
				Category:    "US",
				URL:         "https://www.youtube.com/channel/UC1",
				Text:        map[string]string{"description": "joinery, finishing"},
			},
		},
		Stop:       "exhausted",
		Summary:    "found 1 of 5: search exhausted",
		Attempts:   2,
		QuotaSpent: 202,
		Skipped:    1,
		StartedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Duration:   1500 * time.Millisecond,
	}
}

func videoRun() types.Run {
	return types.Run{
		Kind:  types.KindVideo,
		Query: types.Query{Keyword: "sourdough", TargetCount: 1, MaxPageDepth: 1},
		Records: []types.Record{
			{
				ID:          "v1",
				DisplayName: "Starter from scratch",
				Metric:      5000,
				Secondary:   map[string]int64{"likes": 40, "comments": 3},
				Category:    "DE",
				URL:         "https://www.youtube.com/watch?v=v1",
				Text:        map[string]string{"channel": "Bakehouse", "published_at": "2025-01-02T03:04:05Z"},
			},
		},
		Summary: "found 1 of 1",
	}
}

func TestDefaultFilename(t *testing.T) {
	tests := []struct {
		keyword string
		kind    string
		want    string
	}{
		{"wood working", types.KindChannel, "wood_working_channels.csv"},
		{"  sourdough ", types.KindVideo, "sourdough_youtube_data.csv"},
		{"a/b", types.KindChannel, "a_b_channels.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultFilename(tt.keyword, tt.kind))
		})
	}
}

func TestWriteCSVChannels(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, types.KindChannel, channelRun().Records))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, channelColumns, rows[0])
	assert.Equal(t, []string{
		"Shop Talk", "12345", "9876543", "210", "joinery, finishing", "US",
		"https://www.youtube.com/channel/UC1",
	}, rows[1])
}

func TestWriteCSVVideos(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, types.KindVideo, videoRun().Records))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, videoColumns, rows[0])
	assert.Equal(t, []string{
		"Starter from scratch", "2025-01-02T03:04:05Z", "Bakehouse", "5000", "40", "3",
		"https://www.youtube.com/watch?v=v1", "DE",
	}, rows[1])
}

func TestWriteCSVFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	path, err := WriteCSVFile(dir, channelRun())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "wood_working_channels.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Channel Name,Subscribers")
}

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(&buf, channelRun())
	out := buf.String()

	assert.Contains(t, out, "Subscribers")
	assert.Contains(t, out, "Shop Talk")
	assert.Contains(t, out, "12,345")
	assert.Contains(t, out, "9,876,543")
	assert.Contains(t, out, "found 1 of 5: search exhausted (1 malformed entries skipped) [2 pages, 202 quota units]")

	buf.Reset()
	FormatTable(&buf, videoRun())
	assert.Contains(t, buf.String(), "Bakehouse")
	assert.Contains(t, buf.String(), "5,000")
}

func TestFormatTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(&buf, types.Run{Kind: types.KindChannel, Summary: "found 0 of 5: search exhausted"})
	assert.Equal(t, "No matches found.\nfound 0 of 5: search exhausted\n", buf.String())
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatJSON(&buf, channelRun().Records))

	var got []types.Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, channelRun().Records, got)

	buf.Reset()
	require.NoError(t, FormatJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestHumanCount(t *testing.T) {
	tests := map[int64]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		1234567:  "1,234,567",
		-1234567: "-1,234,567",
	}
	for n, want := range tests {
		assert.Equal(t, want, humanCount(n))
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "日本語...", truncate("日本語のチャンネル名", 6))
}

func TestResultFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	want := channelRun()
	require.NoError(t, WriteResultFile(path, want))

	rf, err := ReadResultFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"CA", "US"}, rf.Criteria.Locations)
	assert.Equal(t, 1, rf.Summary.Total)

	got := rf.Run()
	assert.Equal(t, want.Query, got.Query)
	assert.Equal(t, want.Criteria, got.Criteria)
	assert.Equal(t, want.Records, got.Records)
	assert.Equal(t, want.Summary, got.Summary)
	assert.Equal(t, want.QuotaSpent, got.QuotaSpent)
	assert.Equal(t, want.Duration, got.Duration)
	assert.True(t, want.StartedAt.Equal(got.StartedAt))
}

func TestReadResultFileErrors(t *testing.T) {
	_, err := ReadResultFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("kind: playlist\n"), 0o644))
	_, err = ReadResultFile(path)
	assert.ErrorContains(t, err, "unknown kind")
}
