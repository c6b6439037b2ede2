// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package youtube implements the discovery fetchers on top of the YouTube
// Data API v3: search.list for candidate pages and channels.list /
// videos.list for details.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/pdiddy/channel-scout/internal/discover"
	"github.com/pdiddy/channel-scout/internal/httputil"
	"github.com/pdiddy/channel-scout/internal/metrics"
	"github.com/pdiddy/channel-scout/pkg/types"
)

// Quota units charged by the API per call.
const (
	SearchCost = 100
	ListCost   = 1
)

// pageSize is the largest maxResults search.list accepts.
const pageSize = 50

const defaultTimeout = 30 * time.Second

// Client wraps a YouTube service with rate limiting, metrics and error
// translation. One Client is built per process and shared by the fetchers
// it hands out.
type Client struct {
	svc     *yt.Service
	limiter *rate.Limiter
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *metrics.Metrics
	log        *zerolog.Logger
}

// WithHTTPClient sets the client whose transport performs the requests.
// Its transport is wrapped with API key injection and 429 retries.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = c }
}

// WithLimiter replaces the limiter derived from RequestsPerSecond.
func WithLimiter(l *rate.Limiter) Option {
	return func(o *clientOptions) { o.limiter = l }
}

// WithMetrics records every API call in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *clientOptions) { o.metrics = m }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(o *clientOptions) { o.log = &l }
}

// NewClient builds a Client from cfg. The API key is required.
func NewClient(ctx context.Context, cfg types.YouTubeConfig, opts ...Option) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("youtube: API key is required (flag --api-key, config youtube.api_key, or .secrets/youtube-api-key)")
	}

	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	log := zerolog.Nop()
	if o.log != nil {
		log = *o.log
	}

	var base http.RoundTripper = http.DefaultTransport
	if o.httpClient != nil && o.httpClient.Transport != nil {
		base = o.httpClient.Transport
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	hc := &http.Client{
		Timeout: timeout,
		Transport: &keyTransport{
			key:       cfg.APIKey,
			userAgent: cfg.UserAgent,
			base: &httputil.RetryTransport{
				Base:       base,
				MaxRetries: cfg.MaxRetries,
				OnRetry: func(attempt int, wait time.Duration) {
					log.Warn().Int("attempt", attempt).Dur("wait", wait).Msg("rate limited by YouTube API, backing off")
				},
			},
		},
	}

	svcOpts := []option.ClientOption{option.WithHTTPClient(hc)}
	if cfg.Endpoint != "" {
		svcOpts = append(svcOpts, option.WithEndpoint(cfg.Endpoint))
	}
	svc, err := yt.NewService(ctx, svcOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating YouTube service: %w", err)
	}

	limiter := o.limiter
	if limiter == nil && cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		svc:     svc,
		limiter: limiter,
		metrics: o.metrics,
		log:     log,
	}, nil
}

// Fetchers returns the page and detail fetchers for kind
// (types.KindChannel or types.KindVideo).
func (c *Client) Fetchers(kind string) (discover.PageFetcher, discover.DetailFetcher, error) {
	switch kind {
	case types.KindChannel:
		return &Searcher{client: c, kind: kind}, &ChannelDetails{client: c}, nil
	case types.KindVideo:
		return &Searcher{client: c, kind: kind}, &VideoDetails{client: c}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported resource kind %q", kind)
	}
}

// call waits for the limiter, runs fn, records the outcome and converts
// failures into *discover.UpstreamError.
func (c *Client) call(ctx context.Context, endpoint string, cost int, fn func() error) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &discover.UpstreamError{Op: endpoint, Message: err.Error(), Err: err}
		}
	}

	start := time.Now()
	err := fn()
	status := http.StatusOK
	if err != nil {
		status = statusOf(err)
	}
	c.metrics.ObserveRequest(endpoint, status, cost)
	c.log.Debug().
		Str("endpoint", endpoint).
		Int("status", status).
		Dur("took", time.Since(start)).
		Msg("youtube api call")

	if err != nil {
		return upstreamError(endpoint, err)
	}
	return nil
}

func statusOf(err error) int {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	return 0
}

// upstreamError maps a client error to *discover.UpstreamError, keeping the
// API's error reason (e.g. quotaExceeded) in the message.
func upstreamError(endpoint string, err error) *discover.UpstreamError {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return &discover.UpstreamError{Op: endpoint, Message: err.Error(), Err: err}
	}

	msg := gerr.Message
	if msg == "" {
		msg = http.StatusText(gerr.Code)
	}
	if len(gerr.Errors) > 0 && gerr.Errors[0].Reason != "" {
		msg = gerr.Errors[0].Reason + ": " + msg
	}
	return &discover.UpstreamError{Op: endpoint, Status: gerr.Code, Message: msg, Err: err}
}

// keyTransport adds the API key and User-Agent to every request.
type keyTransport struct {
	key       string
	userAgent string
	base      http.RoundTripper
}

func (t *keyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	q := r.URL.Query()
	q.Set("key", t.key)
	r.URL.RawQuery = q.Encode()
	if t.userAgent != "" {
		r.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(r)
}
