// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Run is a finished discovery run in the form it is printed, saved to a
// result file, and stored in the history database.
type Run struct {
	// ID is assigned by the history store; empty until saved.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// Kind is KindChannel or KindVideo.
	Kind string `json:"kind" yaml:"kind"`

	Query    Query          `json:"query" yaml:"query"`
	Criteria FilterCriteria `json:"criteria" yaml:"criteria"`
	Records  []Record       `json:"records" yaml:"records"`

	// Stop is the stop reason reported by the engine.
	Stop string `json:"stop" yaml:"stop"`

	// Summary is the one-line outcome shown to the user.
	Summary string `json:"summary" yaml:"summary"`

	// Error holds the upstream failure message, if any.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	Attempts   int `json:"attempts" yaml:"attempts"`
	QuotaSpent int `json:"quota_spent" yaml:"quota_spent"`
	Skipped    int `json:"skipped" yaml:"skipped"`

	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}
