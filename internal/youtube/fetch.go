// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package youtube

import (
	"context"
	"strconv"
	"strings"

	yt "google.golang.org/api/youtube/v3"

	"github.com/pdiddy/channel-scout/internal/discover"
	"github.com/pdiddy/channel-scout/pkg/types"
)

// VideoDetailCost is the quota of one video detail batch: videos.list plus
// the channels.list lookup for uploader countries.
const VideoDetailCost = 2 * ListCost

// Searcher pages through search.list results of one resource kind.
type Searcher struct {
	client *Client
	kind   string
}

// QuotaCost implements discover.QuotaCoster.
func (s *Searcher) QuotaCost() int { return SearchCost }

// FetchPage implements discover.PageFetcher.
func (s *Searcher) FetchPage(ctx context.Context, q types.Query, token string) (discover.Page, error) {
	call := s.client.svc.Search.List([]string{"id"}).
		Q(q.Keyword).
		Type(s.kind).
		MaxResults(pageSize).
		Context(ctx)
	if token != "" {
		call = call.PageToken(token)
	}
	if q.Ordering != types.OrderDefault {
		call = call.Order(string(q.Ordering))
	}

	var resp *yt.SearchListResponse
	err := s.client.call(ctx, "search", SearchCost, func() (err error) {
		resp, err = call.Do()
		return err
	})
	if err != nil {
		return discover.Page{}, err
	}

	page := discover.Page{NextToken: resp.NextPageToken}
	for _, item := range resp.Items {
		if item.Id == nil {
			continue
		}
		var id string
		switch s.kind {
		case types.KindChannel:
			id = item.Id.ChannelId
		case types.KindVideo:
			id = item.Id.VideoId
		}
		if id != "" {
			page.IDs = append(page.IDs, id)
		}
	}
	return page, nil
}

// ChannelDetails fetches channel snippets and statistics.
type ChannelDetails struct {
	client *Client
}

// QuotaCost implements discover.QuotaCoster.
func (d *ChannelDetails) QuotaCost() int { return ListCost }

// FetchDetails implements discover.DetailFetcher.
func (d *ChannelDetails) FetchDetails(ctx context.Context, ids []string) ([]types.DetailEntry, error) {
	channels, err := d.client.listChannels(ctx, ids, "snippet", "statistics")
	if err != nil {
		return nil, err
	}
	entries := make([]types.DetailEntry, 0, len(channels))
	for _, ch := range channels {
		entries = append(entries, channelEntry(ch))
	}
	return entries, nil
}

// VideoDetails fetches video statistics and categorizes each video by the
// country of the channel that uploaded it.
type VideoDetails struct {
	client *Client
}

// QuotaCost implements discover.QuotaCoster.
func (d *VideoDetails) QuotaCost() int { return VideoDetailCost }

// FetchDetails implements discover.DetailFetcher.
func (d *VideoDetails) FetchDetails(ctx context.Context, ids []string) ([]types.DetailEntry, error) {
	call := d.client.svc.Videos.List([]string{"snippet", "statistics", "contentDetails"}).
		Id(strings.Join(ids, ",")).
		Context(ctx)

	var resp *yt.VideoListResponse
	err := d.client.call(ctx, "videos", ListCost, func() (err error) {
		resp, err = call.Do()
		return err
	})
	if err != nil {
		return nil, err
	}

	var channelIDs []string
	seen := make(map[string]bool)
	for _, v := range resp.Items {
		if v.Snippet == nil || v.Snippet.ChannelId == "" || seen[v.Snippet.ChannelId] {
			continue
		}
		seen[v.Snippet.ChannelId] = true
		channelIDs = append(channelIDs, v.Snippet.ChannelId)
	}

	countries := make(map[string]string, len(channelIDs))
	if len(channelIDs) > 0 {
		channels, err := d.client.listChannels(ctx, channelIDs, "snippet")
		if err != nil {
			return nil, err
		}
		for _, ch := range channels {
			if ch.Snippet != nil {
				countries[ch.Id] = ch.Snippet.Country
			}
		}
	}

	entries := make([]types.DetailEntry, 0, len(resp.Items))
	for _, v := range resp.Items {
		entries = append(entries, videoEntry(v, countries))
	}
	return entries, nil
}

func (c *Client) listChannels(ctx context.Context, ids []string, parts ...string) ([]*yt.Channel, error) {
	call := c.svc.Channels.List(parts).
		Id(strings.Join(ids, ",")).
		Context(ctx)

	var resp *yt.ChannelListResponse
	err := c.call(ctx, "channels", ListCost, func() (err error) {
		resp, err = call.Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func channelEntry(ch *yt.Channel) types.DetailEntry {
	e := types.DetailEntry{
		ID:      ch.Id,
		Kind:    types.KindChannel,
		Primary: "subscribers",
		Stats:   map[string]string{},
		Text:    map[string]string{},
	}
	if s := ch.Snippet; s != nil {
		e.Title = s.Title
		e.Country = s.Country
		e.Text["description"] = s.Description
		e.Text["custom_url"] = s.CustomUrl
		e.Text["published_at"] = s.PublishedAt
	}
	if st := ch.Statistics; st != nil {
		e.Stats["views"] = count(st.ViewCount)
		e.Stats["videos"] = count(st.VideoCount)
		// Hidden counts come back as 0; leave them empty instead.
		if !st.HiddenSubscriberCount {
			e.Stats["subscribers"] = count(st.SubscriberCount)
		}
	}
	return e
}

func videoEntry(v *yt.Video, countries map[string]string) types.DetailEntry {
	e := types.DetailEntry{
		ID:      v.Id,
		Kind:    types.KindVideo,
		Primary: "views",
		Stats:   map[string]string{},
		Text:    map[string]string{},
	}
	if s := v.Snippet; s != nil {
		e.Title = s.Title
		e.Country = countries[s.ChannelId]
		e.Text["channel"] = s.ChannelTitle
		e.Text["channel_id"] = s.ChannelId
		e.Text["published_at"] = s.PublishedAt
		e.Text["description"] = s.Description
	}
	if st := v.Statistics; st != nil {
		e.Stats["views"] = count(st.ViewCount)
		e.Stats["likes"] = count(st.LikeCount)
		e.Stats["comments"] = count(st.CommentCount)
	}
	if cd := v.ContentDetails; cd != nil {
		e.Text["duration"] = cd.Duration
	}
	return e
}

func count(n uint64) string {
	return strconv.FormatUint(n, 10)
}
