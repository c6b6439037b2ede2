// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the channel-scout pipeline:
// the discovery query, filter criteria, raw detail entries and the normalized
// records that flow from the YouTube adapter through the discovery engine to
// the export and history layers.
package types

import (
	"fmt"
	"strings"
)

// UnknownCategory is the category assigned to a record whose upstream entry
// carries no country.
const UnknownCategory = "Unknown"

// Ordering selects the upstream search ordering.
type Ordering string

const (
	OrderDefault    Ordering = ""
	OrderRelevance  Ordering = "relevance"
	OrderDate       Ordering = "date"
	OrderRating     Ordering = "rating"
	OrderTitle      Ordering = "title"
	OrderVideoCount Ordering = "videoCount"
	OrderViewCount  Ordering = "viewCount"
)

// Orderings lists every accepted ordering value except the default.
var Orderings = []Ordering{OrderRelevance, OrderDate, OrderRating, OrderTitle, OrderVideoCount, OrderViewCount}

// ParseOrdering converts a user-supplied string to an Ordering.
// The empty string maps to OrderDefault.
func ParseOrdering(s string) (Ordering, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return OrderDefault, nil
	}
	for _, o := range Orderings {
		if strings.EqualFold(s, string(o)) {
			return o, nil
		}
	}
	return OrderDefault, &ConfigurationError{Field: "ordering", Reason: fmt.Sprintf("unknown ordering %q", s)}
}

// Query describes one discovery run. It is not modified while a run is in
// progress.
type Query struct {
	// Keyword is the free-text search term sent to the search endpoint.
	Keyword string `json:"keyword" yaml:"keyword"`

	// TargetCount is the number of matching records wanted.
	TargetCount int `json:"target_count" yaml:"target_count"`

	// MaxPageDepth bounds how many search pages are requested.
	MaxPageDepth int `json:"max_page_depth" yaml:"max_page_depth"`

	// Ordering is passed to the search endpoint; empty means upstream default.
	Ordering Ordering `json:"ordering,omitempty" yaml:"ordering,omitempty"`
}

// Validate reports a ConfigurationError for a query the engine cannot run.
func (q Query) Validate() error {
	if strings.TrimSpace(q.Keyword) == "" {
		return &ConfigurationError{Field: "keyword", Reason: "must not be empty"}
	}
	if q.TargetCount <= 0 {
		return &ConfigurationError{Field: "target_count", Reason: "must be greater than zero"}
	}
	if q.MaxPageDepth <= 0 {
		return &ConfigurationError{Field: "max_page_depth", Reason: "must be greater than zero"}
	}
	if q.Ordering != OrderDefault {
		if _, err := ParseOrdering(string(q.Ordering)); err != nil {
			return err
		}
	}
	return nil
}

// FilterCriteria holds the numeric range and the location selection a record
// must satisfy.
type FilterCriteria struct {
	// MinCount and MaxCount bound Record.Metric, both inclusive.
	MinCount int64 `json:"min_count" yaml:"min_count"`
	MaxCount int64 `json:"max_count" yaml:"max_count"`

	// AllowedCategories is the set of accepted country codes.
	AllowedCategories map[string]bool `json:"allowed_categories" yaml:"allowed_categories"`

	// IncludeUnknownCategory admits records whose category is UnknownCategory.
	IncludeUnknownCategory bool `json:"include_unknown_category" yaml:"include_unknown_category"`
}

// NewFilterCriteria builds criteria from a code set.
func NewFilterCriteria(minCount, maxCount int64, codes map[string]struct{}, includeUnknown bool) FilterCriteria {
	allowed := make(map[string]bool, len(codes))
	for c := range codes {
		allowed[c] = true
	}
	return FilterCriteria{
		MinCount:               minCount,
		MaxCount:               maxCount,
		AllowedCategories:      allowed,
		IncludeUnknownCategory: includeUnknown,
	}
}

// Validate reports criteria that can never match or are malformed. The
// filter itself does not call this; callers check before starting a run.
func (c FilterCriteria) Validate() error {
	if c.MinCount < 0 {
		return &ConfigurationError{Field: "min_count", Reason: "must not be negative"}
	}
	if c.MaxCount < c.MinCount {
		return &ConfigurationError{Field: "max_count", Reason: fmt.Sprintf("%d is below min_count %d", c.MaxCount, c.MinCount)}
	}
	if len(c.AllowedCategories) == 0 && !c.IncludeUnknownCategory {
		return &ConfigurationError{Field: "allowed_categories", Reason: "no location selected and unknown locations excluded"}
	}
	return nil
}

// Record is a normalized channel or video.
type Record struct {
	// ID is the upstream identifier (channel ID or video ID).
	ID string `json:"id" yaml:"id"`

	// DisplayName is the channel or video title.
	DisplayName string `json:"display_name" yaml:"display_name"`

	// Metric is the value the numeric filter applies to: subscriber count
	// for channels, view count for videos.
	Metric int64 `json:"metric" yaml:"metric"`

	// Secondary holds the remaining counters, keyed by name.
	Secondary map[string]int64 `json:"secondary,omitempty" yaml:"secondary,omitempty"`

	// Category is an ISO country code or UnknownCategory.
	Category string `json:"category" yaml:"category"`

	// URL is the canonical public URL.
	URL string `json:"url" yaml:"url"`

	// Text holds free-text fields such as description and publish time.
	Text map[string]string `json:"text,omitempty" yaml:"text,omitempty"`
}

// Resource kinds carried by DetailEntry.Kind.
const (
	KindChannel = "channel"
	KindVideo   = "video"
)

// DetailEntry is one raw item returned by a detail lookup, before
// normalization. Counters keep the decimal string form the API reports.
type DetailEntry struct {
	ID      string            `json:"id" yaml:"id"`
	Kind    string            `json:"kind" yaml:"kind"`
	Title   string            `json:"title" yaml:"title"`
	Country string            `json:"country,omitempty" yaml:"country,omitempty"`
	Stats   map[string]string `json:"stats,omitempty" yaml:"stats,omitempty"`

	// Primary names the Stats key that becomes Record.Metric.
	Primary string `json:"primary" yaml:"primary"`

	Text map[string]string `json:"text,omitempty" yaml:"text,omitempty"`
}
