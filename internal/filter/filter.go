// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package filter decides whether a normalized record satisfies the numeric
// range and location selection of a discovery run.
package filter

import "github.com/pdiddy/channel-scout/pkg/types"

// Matches reports whether r lies within [MinCount, MaxCount] and passes the
// location rule. Records in UnknownCategory pass only when the criteria
// include unknown locations; all others must be in AllowedCategories.
// Matches does not validate c: an empty selection with unknown excluded
// rejects every record.
func Matches(r types.Record, c types.FilterCriteria) bool {
	if r.Metric < c.MinCount || r.Metric > c.MaxCount {
		return false
	}
	return locationAllowed(r.Category, c)
}

func locationAllowed(category string, c types.FilterCriteria) bool {
	if category == types.UnknownCategory {
		return c.IncludeUnknownCategory
	}
	return c.AllowedCategories[category]
}
