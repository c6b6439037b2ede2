// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discover runs the bounded page loop that turns coarse keyword
// search results into a filtered, deduplicated set of records.
//
// The engine owns no I/O. It drives a PageFetcher and a DetailFetcher
// supplied by the caller, normalizes detail entries, applies the filter and
// stops as soon as the target is met, the source is exhausted, the page
// budget is spent, or a fetch fails.
package discover

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/channel-scout/internal/filter"
	"github.com/pdiddy/channel-scout/internal/normalize"
	"github.com/pdiddy/channel-scout/pkg/types"
)

// MaxBatchSize is the largest number of IDs sent in one detail lookup.
const MaxBatchSize = 50

// Quota units charged per call when a fetcher does not implement QuotaCoster.
const (
	DefaultPageCost   = 100
	DefaultDetailCost = 1
)

// Page is one page of search results.
type Page struct {
	// IDs are the candidate identifiers in upstream order.
	IDs []string

	// NextToken continues the search; empty means no further pages.
	NextToken string
}

// PageFetcher returns one page of candidate IDs for a query. An empty token
// requests the first page.
type PageFetcher interface {
	FetchPage(ctx context.Context, q types.Query, token string) (Page, error)
}

// DetailFetcher returns raw detail entries for at most MaxBatchSize IDs.
type DetailFetcher interface {
	FetchDetails(ctx context.Context, ids []string) ([]types.DetailEntry, error)
}

// QuotaCoster is implemented by fetchers whose per-call quota cost differs
// from the defaults.
type QuotaCoster interface {
	QuotaCost() int
}

// ProgressFunc receives the attempt number and the matches accumulated so
// far at the start of each page. Its return is not observed.
type ProgressFunc func(attempt, matched int)

// Engine drives one discovery run at a time. The zero value is not usable;
// Pages and Details must be set.
type Engine struct {
	Pages   PageFetcher
	Details DetailFetcher

	// Progress, when set, is called before each page fetch.
	Progress ProgressFunc

	// PageDelay is slept between pages. Zero disables pacing.
	PageDelay time.Duration

	// Log receives per-page diagnostics. Nil disables logging.
	Log *zerolog.Logger

	// sleep replaces time.Sleep in tests.
	sleep func(time.Duration)
}

// Run is a convenience wrapper that builds an Engine without pacing.
func Run(ctx context.Context, q types.Query, c types.FilterCriteria, pages PageFetcher, details DetailFetcher, progress ProgressFunc) SearchState {
	e := &Engine{Pages: pages, Details: details, Progress: progress}
	return e.Run(ctx, q, c)
}

// Run executes the page loop for q and returns whatever was accumulated.
// Fetch failures end the run and are reported in SearchState.Failure; they
// are never returned as errors. Callers validate q and c beforehand.
func (e *Engine) Run(ctx context.Context, q types.Query, c types.FilterCriteria) SearchState {
	log := e.logger()
	st := SearchState{
		Target:      q.TargetCount,
		Accumulated: []types.Record{},
		SeenIDs:     make(map[string]struct{}),
	}
	pageCost := quotaCost(e.Pages, DefaultPageCost)
	detailCost := quotaCost(e.Details, DefaultDetailCost)

	for len(st.Accumulated) < q.TargetCount && st.Attempts < q.MaxPageDepth {
		st.Attempts++
		if e.Progress != nil {
			e.Progress(st.Attempts, len(st.Accumulated))
		}

		page, err := e.Pages.FetchPage(ctx, q, st.ContinuationToken)
		st.QuotaSpent += pageCost
		if err != nil {
			st.fail("search", err)
			log.Warn().Err(err).Int("attempt", st.Attempts).Msg("page fetch failed")
			break
		}
		if len(page.IDs) == 0 {
			st.Stop = StopExhausted
			log.Debug().Int("attempt", st.Attempts).Msg("empty page, source exhausted")
			break
		}

		fresh := st.markSeen(page.IDs)
		log.Debug().
			Int("attempt", st.Attempts).
			Int("ids", len(page.IDs)).
			Int("fresh", len(fresh)).
			Msg("page fetched")

		if !e.evaluate(ctx, &st, fresh, c, detailCost) {
			break
		}

		if len(st.Accumulated) >= q.TargetCount {
			st.Stop = StopTargetReached
			break
		}
		if page.NextToken == "" {
			st.Stop = StopExhausted
			break
		}
		st.ContinuationToken = page.NextToken

		if st.Attempts < q.MaxPageDepth && e.PageDelay > 0 {
			e.pause(e.PageDelay)
		}
	}

	if st.Stop == "" {
		if len(st.Accumulated) >= q.TargetCount {
			st.Stop = StopTargetReached
		} else {
			st.Stop = StopDepthLimit
		}
	}

	log.Debug().
		Str("stop", string(st.Stop)).
		Int("matched", len(st.Accumulated)).
		Int("attempts", st.Attempts).
		Int("quota", st.QuotaSpent).
		Msg("discovery finished")
	return st
}

// evaluate fetches details for ids in chunks, normalizes and filters them in
// order, and appends matches until the target is met. It returns false when
// a detail fetch failed.
func (e *Engine) evaluate(ctx context.Context, st *SearchState, ids []string, c types.FilterCriteria, detailCost int) bool {
	log := e.logger()
	for _, batch := range chunk(ids, MaxBatchSize) {
		if st.full() {
			return true
		}

		entries, err := e.Details.FetchDetails(ctx, batch)
		st.QuotaSpent += detailCost
		if err != nil {
			st.fail("details", err)
			log.Warn().Err(err).Int("batch", len(batch)).Msg("detail fetch failed")
			return false
		}

		records, skipped := normalize.Batch(entries)
		st.Skipped += len(skipped)
		for _, serr := range skipped {
			log.Debug().Err(serr).Msg("skipping entry")
		}

		for _, r := range inBatchOrder(batch, records) {
			if st.full() {
				break
			}
			if st.accepted(r.ID) {
				continue
			}
			if filter.Matches(r, c) {
				st.accept(r)
			}
		}
	}
	return true
}

// inBatchOrder returns records reordered to follow batch. Records for IDs
// outside batch are dropped and only the first record per ID is kept.
func inBatchOrder(batch []string, records []types.Record) []types.Record {
	pos := make(map[string]int, len(batch))
	for i, id := range batch {
		pos[id] = i
	}
	slots := make([]*types.Record, len(batch))
	for i := range records {
		p, ok := pos[records[i].ID]
		if !ok || slots[p] != nil {
			continue
		}
		slots[p] = &records[i]
	}
	out := make([]types.Record, 0, len(records))
	for _, r := range slots {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

func (e *Engine) pause(d time.Duration) {
	if e.sleep != nil {
		e.sleep(d)
		return
	}
	time.Sleep(d)
}

func (e *Engine) logger() *zerolog.Logger {
	if e.Log == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return e.Log
}

func quotaCost(f any, def int) int {
	if qc, ok := f.(QuotaCoster); ok {
		return qc.QuotaCost()
	}
	return def
}

// chunk splits ids into consecutive groups of at most size, preserving order.
func chunk(ids []string, size int) [][]string {
	if len(ids) == 0 {
		return nil
	}
	out := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		out = append(out, ids[start:end])
	}
	return out
}

// UpstreamError reports a failed page or detail fetch.
type UpstreamError struct {
	// Op names the failed call. The engine uses "search" or "details" when
	// the fetcher did not set one.
	Op string

	// Status is the HTTP status code, or 0 when no response was received.
	Status int

	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	prefix := e.Op
	if prefix == "" {
		prefix = "upstream"
	}
	if e.Status > 0 {
		return fmt.Sprintf("%s: HTTP %d: %s", prefix, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// asUpstream returns err as an *UpstreamError, wrapping it when needed.
func asUpstream(op string, err error) *UpstreamError {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		if ue.Op != "" {
			return ue
		}
		cp := *ue
		cp.Op = op
		return &cp
	}
	return &UpstreamError{Op: op, Message: err.Error(), Err: err}
}
