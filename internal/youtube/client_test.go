// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package youtube

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/channel-scout/internal/discover"
	"github.com/pdiddy/channel-scout/internal/metrics"
	"github.com/pdiddy/channel-scout/pkg/types"
)

const testKey = "test-key"

// apiServer serves canned bodies per API path and rejects requests without
// the test API key.
func apiServer(t *testing.T, routes map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != testKey {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		h, ok := routes[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request to %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h(w, r)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func jsonBody(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}
}

func newTestClient(t *testing.T, ts *httptest.Server, opts ...Option) *Client {
	t.Helper()
	cfg := types.YouTubeConfig{
		APIKey:     testKey,
		Endpoint:   ts.URL + "/",
		MaxRetries: 1,
	}
	c, err := NewClient(context.Background(), cfg, opts...)
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), types.YouTubeConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestFetchersUnsupportedKind(t *testing.T) {
	ts := apiServer(t, nil)
	c := newTestClient(t, ts)

	_, _, err := c.Fetchers("playlist")
	assert.Error(t, err)
}

func TestSearchChannelsPage(t *testing.T) {
	var got http.Header
	ts := apiServer(t, map[string]http.HandlerFunc{
		"/youtube/v3/search": func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "golang", q.Get("q"))
			assert.Equal(t, "channel", q.Get("type"))
			assert.Equal(t, "50", q.Get("maxResults"))
			assert.Equal(t, "tok1", q.Get("pageToken"))
			assert.Equal(t, "viewCount", q.Get("order"))
			got = r.Header.Clone()
			jsonBody(`{
				"nextPageToken": "tok2",
				"items": [
					{"id": {"kind": "youtube#channel", "channelId": "UC1"}},
					{"id": {"kind": "youtube#channel", "channelId": "UC2"}},
					{"id": {"kind": "youtube#video", "videoId": "v-stray"}}
				]
			}`)(w, r)
		},
	})
	cfg := types.YouTubeConfig{APIKey: testKey, Endpoint: ts.URL + "/"}
	cfg.UserAgent = "channel-scout-test"
	c, err := NewClient(context.Background(), cfg)
	require.NoError(t, err)

	pages, _, err := c.Fetchers(types.KindChannel)
	require.NoError(t, err)

	q := types.Query{Keyword: "golang", TargetCount: 5, MaxPageDepth: 2, Ordering: types.OrderViewCount}
	page, err := pages.FetchPage(context.Background(), q, "tok1")
	require.NoError(t, err)

	assert.Equal(t, []string{"UC1", "UC2"}, page.IDs)
	assert.Equal(t, "tok2", page.NextToken)
	assert.Equal(t, "channel-scout-test", got.Get("User-Agent"))
}

func TestSearchOmitsDefaultOrderAndEmptyToken(t *testing.T) {
	ts := apiServer(t, map[string]http.HandlerFunc{
		"/youtube/v3/search": func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.False(t, q.Has("order"))
			assert.False(t, q.Has("pageToken"))
			assert.Equal(t, "video", q.Get("type"))
			jsonBody(`{"items": [{"id": {"videoId": "v1"}}]}`)(w, r)
		},
	})
	c := newTestClient(t, ts)
	pages, _, err := c.Fetchers(types.KindVideo)
	require.NoError(t, err)

	page, err := pages.FetchPage(context.Background(), types.Query{Keyword: "x", TargetCount: 1, MaxPageDepth: 1}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"v1"}, page.IDs)
	assert.Empty(t, page.NextToken)
}

func TestChannelDetails(t *testing.T) {
	ts := apiServer(t, map[string]http.HandlerFunc{
		"/youtube/v3/channels": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "UC1,UC2", r.URL.Query().Get("id"))
			jsonBody(`{"items": [
				{"id": "UC1",
				 "snippet": {"title": "Gopher TV", "description": "go", "country": "US", "customUrl": "@gophertv"},
				 "statistics": {"subscriberCount": "1500", "viewCount": "90000", "videoCount": "42", "hiddenSubscriberCount": false}},
				{"id": "UC2",
				 "snippet": {"title": "Hidden"},
				 "statistics": {"subscriberCount": "0", "viewCount": "10", "videoCount": "1", "hiddenSubscriberCount": true}}
			]}`)(w, r)
		},
	})
	c := newTestClient(t, ts)
	_, details, err := c.Fetchers(types.KindChannel)
	require.NoError(t, err)

	entries, err := details.FetchDetails(context.Background(), []string{"UC1", "UC2"})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	first := entries[0]
	assert.Equal(t, "UC1", first.ID)
	assert.Equal(t, types.KindChannel, first.Kind)
	assert.Equal(t, "Gopher TV", first.Title)
	assert.Equal(t, "US", first.Country)
	assert.Equal(t, "subscribers", first.Primary)
	assert.Equal(t, "1500", first.Stats["subscribers"])
	assert.Equal(t, "90000", first.Stats["views"])
	assert.Equal(t, "42", first.Stats["videos"])
	assert.Equal(t, "@gophertv", first.Text["custom_url"])

	_, ok := entries[1].Stats["subscribers"]
	assert.False(t, ok, "hidden subscriber count should be left out")
	assert.Empty(t, entries[1].Country)
}

func TestVideoDetailsLooksUpUploaderCountry(t *testing.T) {
	var channelCalls int32
	ts := apiServer(t, map[string]http.HandlerFunc{
		"/youtube/v3/videos": jsonBody(`{"items": [
			{"id": "v1",
			 "snippet": {"title": "Intro", "channelId": "UC1", "channelTitle": "Gopher TV"},
			 "statistics": {"viewCount": "5000", "likeCount": "40", "commentCount": "3"},
			 "contentDetails": {"duration": "PT4M13S"}},
			{"id": "v2",
			 "snippet": {"title": "Part 2", "channelId": "UC1", "channelTitle": "Gopher TV"},
			 "statistics": {"viewCount": "700"}},
			{"id": "v3",
			 "snippet": {"title": "Elsewhere", "channelId": "UC9"},
			 "statistics": {"viewCount": "1"}}
		]}`),
		"/youtube/v3/channels": func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&channelCalls, 1)
			assert.Equal(t, "UC1,UC9", r.URL.Query().Get("id"))
			jsonBody(`{"items": [
				{"id": "UC1", "snippet": {"title": "Gopher TV", "country": "DE"}},
				{"id": "UC9", "snippet": {"title": "No country"}}
			]}`)(w, r)
		},
	})
	c := newTestClient(t, ts)
	_, details, err := c.Fetchers(types.KindVideo)
	require.NoError(t, err)

	entries, err := details.FetchDetails(context.Background(), []string{"v1", "v2", "v3"})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, int32(1), atomic.LoadInt32(&channelCalls))
	assert.Equal(t, "DE", entries[0].Country)
	assert.Equal(t, "DE", entries[1].Country)
	assert.Empty(t, entries[2].Country)

	assert.Equal(t, "views", entries[0].Primary)
	assert.Equal(t, "5000", entries[0].Stats["views"])
	assert.Equal(t, "40", entries[0].Stats["likes"])
	assert.Equal(t, "PT4M13S", entries[0].Text["duration"])
	assert.Equal(t, "Gopher TV", entries[0].Text["channel"])

	assert.Equal(t, VideoDetailCost, details.(discover.QuotaCoster).QuotaCost())
}

func TestQuotaErrorBecomesUpstreamError(t *testing.T) {
	ts := apiServer(t, map[string]http.HandlerFunc{
		"/youtube/v3/search": func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error": {"code": 403, "message": "The request cannot be completed because you have exceeded your quota.",
				"errors": [{"domain": "youtube.quota", "reason": "quotaExceeded", "message": "quota"}]}}`))
		},
	})
	m := metrics.New()
	c := newTestClient(t, ts, WithMetrics(m))
	pages, _, err := c.Fetchers(types.KindChannel)
	require.NoError(t, err)

	_, err = pages.FetchPage(context.Background(), types.Query{Keyword: "x", TargetCount: 1, MaxPageDepth: 1}, "")
	require.Error(t, err)

	var ue *discover.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "search", ue.Op)
	assert.Equal(t, http.StatusForbidden, ue.Status)
	assert.Contains(t, ue.Message, "quotaExceeded")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.APIRequests.WithLabelValues("search", "403")))
	assert.Equal(t, float64(SearchCost), testutil.ToFloat64(m.QuotaUnits))
}

func TestDiscoveryAgainstFakeAPI(t *testing.T) {
	var searches int32
	ts := apiServer(t, map[string]http.HandlerFunc{
		"/youtube/v3/search": func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&searches, 1)
			if r.URL.Query().Get("pageToken") == "" {
				jsonBody(`{"nextPageToken": "p2", "items": [
					{"id": {"channelId": "UC1"}}, {"id": {"channelId": "UC2"}}]}`)(w, r)
				return
			}
			jsonBody(`{"items": [{"id": {"channelId": "UC2"}}, {"id": {"channelId": "UC3"}}]}`)(w, r)
		},
		"/youtube/v3/channels": func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Query().Get("id") {
			case "UC1,UC2":
				jsonBody(`{"items": [
					{"id": "UC1", "snippet": {"title": "Small", "country": "US"}, "statistics": {"subscriberCount": "10"}},
					{"id": "UC2", "snippet": {"title": "Fits", "country": "us"}, "statistics": {"subscriberCount": "5000"}}
				]}`)(w, r)
			case "UC3":
				jsonBody(`{"items": [
					{"id": "UC3", "snippet": {"title": "Also fits", "country": "CA"}, "statistics": {"subscriberCount": "2000"}}
				]}`)(w, r)
			default:
				t.Errorf("unexpected channel ids %q", r.URL.Query().Get("id"))
			}
		},
	})
	c := newTestClient(t, ts)
	pages, details, err := c.Fetchers(types.KindChannel)
	require.NoError(t, err)

	q := types.Query{Keyword: "go", TargetCount: 2, MaxPageDepth: 5}
	crit := types.NewFilterCriteria(1000, 1_000_000, map[string]struct{}{"US": {}, "CA": {}}, false)
	st := discover.Run(context.Background(), q, crit, pages, details, nil)

	require.NoError(t, st.Err())
	assert.Equal(t, discover.StopTargetReached, st.Stop)
	require.Len(t, st.Accumulated, 2)
	assert.Equal(t, "UC2", st.Accumulated[0].ID)
	assert.Equal(t, "US", st.Accumulated[0].Category)
	assert.Equal(t, "UC3", st.Accumulated[1].ID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&searches))
	assert.Equal(t, 2*SearchCost+2*ListCost, st.QuotaSpent)
}
