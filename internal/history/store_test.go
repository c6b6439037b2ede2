// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/channel-scout/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.HistoryConfig{Dir: filepath.Join(t.TempDir(), "history")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun(keyword string, started time.Time) types.Run {
	return types.Run{
		Kind: types.KindChannel,
		Query: types.Query{
			Keyword:      keyword,
			TargetCount:  5,
			MaxPageDepth: 3,
			Ordering:     types.OrderViewCount,
		},
		Criteria: types.NewFilterCriteria(100, 5000, map[string]struct{}{"US": {}, "GB": {}}, true),
		Records: []types.Record{
			{
				ID:          "UC1",
				DisplayName: "First",
				Metric:      150,
				Secondary:   map[string]int64{"views": 1000},
				Category:    "US",
				URL:         "https://www.youtube.com/channel/UC1",
				Text:        map[string]string{"description": "one"},
			},
			{
				ID:          "UC2",
				DisplayName: "Second",
				Metric:      4000,
				Category:    types.UnknownCategory,
				URL:         "https://www.youtube.com/channel/UC2",
			},
		},
		Stop:       "exhausted",
		Summary:    "found 2 of 5: search exhausted",
		Attempts:   2,
		QuotaSpent: 202,
		Skipped:    1,
		StartedAt:  started,
		Duration:   2500 * time.Millisecond,
	}
}

func TestOpenRequiresDir(t *testing.T) {
	_, err := Open(types.HistoryConfig{})
	assert.Error(t, err)
}

func TestOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	s1, err := Open(types.HistoryConfig{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(types.HistoryConfig{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}

func TestSaveAndLoadRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	started := time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)
	want := sampleRun("woodworking", started)

	id, err := s.SaveRun(ctx, want)
	require.NoError(t, err)
	assert.Len(t, id, 36)

	got, err := s.LoadRun(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, id, got.ID)
	assert.Equal(t, want.Kind, got.Kind)
	assert.Equal(t, want.Query, got.Query)
	assert.Equal(t, want.Criteria, got.Criteria)
	assert.Equal(t, want.Stop, got.Stop)
	assert.Equal(t, want.Summary, got.Summary)
	assert.Equal(t, want.Attempts, got.Attempts)
	assert.Equal(t, want.QuotaSpent, got.QuotaSpent)
	assert.Equal(t, want.Skipped, got.Skipped)
	assert.Equal(t, want.Duration, got.Duration)
	assert.True(t, started.Equal(got.StartedAt))

	require.Len(t, got.Records, 2)
	assert.Equal(t, want.Records[0], got.Records[0])
	assert.Equal(t, "UC2", got.Records[1].ID)
	assert.Equal(t, types.UnknownCategory, got.Records[1].Category)
	assert.Empty(t, got.Records[1].Secondary)
}

func TestLoadRunByPrefix(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.SaveRun(ctx, sampleRun("pottery", time.Now()))
	require.NoError(t, err)

	got, err := s.LoadRun(ctx, id[:8])
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
}

func TestLoadRunNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.LoadRun(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.LoadRun(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListRunsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, kw := range []string{"oldest", "middle", "newest"} {
		_, err := s.SaveRun(ctx, sampleRun(kw, base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}

	all, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "newest", all[0].Keyword)
	assert.Equal(t, "oldest", all[2].Keyword)
	assert.Equal(t, 2, all[0].Matched)
	assert.Equal(t, 5, all[0].Target)
	assert.Equal(t, 202, all[0].QuotaSpent)

	limited, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestDeleteRunRemovesRecords(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.SaveRun(ctx, sampleRun("glass", time.Now()))
	require.NoError(t, err)
	require.NoError(t, s.DeleteRun(ctx, id))

	_, err = s.LoadRun(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT count(*) FROM run_records WHERE run_id = ?`, id).Scan(&n))
	assert.Zero(t, n)
}
