// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"fmt"
	"time"

	"github.com/pdiddy/channel-scout/pkg/types"
)

// StopReason records why a run ended.
type StopReason string

const (
	StopTargetReached StopReason = "target_reached"
	StopExhausted     StopReason = "exhausted"
	StopDepthLimit    StopReason = "depth_limit"
	StopUpstream      StopReason = "upstream_error"
)

// SearchState is the outcome of one run. It belongs to the run that
// produced it and is never shared between runs.
type SearchState struct {
	// Target is the TargetCount of the query.
	Target int

	// Accumulated holds matches in discovery order with unique IDs.
	// len(Accumulated) never exceeds Target.
	Accumulated []types.Record

	// SeenIDs holds every candidate ID returned by any page, matched or not.
	SeenIDs map[string]struct{}

	// ContinuationToken is the token the next page would be requested with.
	ContinuationToken string

	// Attempts counts page fetches; it never exceeds MaxPageDepth.
	Attempts int

	// QuotaSpent sums the quota cost of every fetch call issued.
	QuotaSpent int

	// Skipped counts detail entries dropped during normalization.
	Skipped int

	Stop StopReason

	// Failure is set when Stop is StopUpstream.
	Failure *UpstreamError

	acceptedIDs map[string]struct{}
}

// Err returns the upstream failure, or nil when the run ended normally.
func (s SearchState) Err() error {
	if s.Failure == nil {
		return nil
	}
	return s.Failure
}

// Complete reports whether the target was met.
func (s SearchState) Complete() bool {
	return len(s.Accumulated) >= s.Target
}

// Summary describes the outcome in one line, distinguishing a short result
// from a failed one.
func (s SearchState) Summary() string {
	head := fmt.Sprintf("found %d of %d", len(s.Accumulated), s.Target)
	switch s.Stop {
	case StopTargetReached:
		return head
	case StopExhausted:
		return head + ": search exhausted"
	case StopDepthLimit:
		return fmt.Sprintf("%s: page limit reached after %d pages", head, s.Attempts)
	case StopUpstream:
		if s.Failure != nil {
			return head + ": API error: " + s.Failure.Error()
		}
		return head + ": API error"
	default:
		return head
	}
}

// Snapshot converts the state of a finished run into a types.Run. started
// is when the run began; the duration is measured up to now.
func (s SearchState) Snapshot(kind string, q types.Query, c types.FilterCriteria, started time.Time) types.Run {
	run := types.Run{
		Kind:       kind,
		Query:      q,
		Criteria:   c,
		Records:    s.Accumulated,
		Stop:       string(s.Stop),
		Summary:    s.Summary(),
		Attempts:   s.Attempts,
		QuotaSpent: s.QuotaSpent,
		Skipped:    s.Skipped,
		StartedAt:  started,
		Duration:   time.Since(started),
	}
	if s.Failure != nil {
		run.Error = s.Failure.Error()
	}
	return run
}

func (s *SearchState) full() bool {
	return len(s.Accumulated) >= s.Target
}

// markSeen records every id as seen and returns those not seen before, in
// their original order.
func (s *SearchState) markSeen(ids []string) []string {
	fresh := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := s.SeenIDs[id]; ok {
			continue
		}
		s.SeenIDs[id] = struct{}{}
		fresh = append(fresh, id)
	}
	return fresh
}

func (s *SearchState) accepted(id string) bool {
	_, ok := s.acceptedIDs[id]
	return ok
}

func (s *SearchState) accept(r types.Record) {
	if s.acceptedIDs == nil {
		s.acceptedIDs = make(map[string]struct{})
	}
	s.acceptedIDs[r.ID] = struct{}{}
	s.Accumulated = append(s.Accumulated, r)
}

func (s *SearchState) fail(op string, err error) {
	s.Failure = asUpstream(op, err)
	s.Stop = StopUpstream
}
