// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize converts raw detail entries into immutable records.
// Each entry yields either a Record or an *Error; a malformed entry never
// affects its neighbours.
package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/channel-scout/pkg/types"
)

const (
	channelURLPrefix = "https://www.youtube.com/channel/"
	videoURLPrefix   = "https://www.youtube.com/watch?v="
)

// Error describes an entry that could not be normalized.
type Error struct {
	ID     string
	Field  string
	Reason string
}

func (e *Error) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("normalizing entry: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("normalizing entry %s: %s: %s", e.ID, e.Field, e.Reason)
}

// Record converts one detail entry. Missing counters default to zero and a
// missing country becomes types.UnknownCategory. An entry without an ID, of
// an unknown kind, or with a counter that is not a non-negative integer
// returns an *Error.
func Record(e types.DetailEntry) (types.Record, error) {
	id := strings.TrimSpace(e.ID)
	if id == "" {
		return types.Record{}, &Error{Field: "id", Reason: "missing"}
	}

	url, err := canonicalURL(e.Kind, id)
	if err != nil {
		return types.Record{}, err
	}

	r := types.Record{
		ID:          id,
		DisplayName: strings.TrimSpace(e.Title),
		Category:    category(e.Country),
		URL:         url,
	}

	for name, raw := range e.Stats {
		v, err := parseCount(raw)
		if err != nil {
			return types.Record{}, &Error{ID: id, Field: "stats." + name, Reason: err.Error()}
		}
		if name == e.Primary {
			r.Metric = v
			continue
		}
		if r.Secondary == nil {
			r.Secondary = make(map[string]int64, len(e.Stats))
		}
		r.Secondary[name] = v
	}

	if len(e.Text) > 0 {
		r.Text = make(map[string]string, len(e.Text))
		for k, v := range e.Text {
			r.Text[k] = v
		}
	}
	return r, nil
}

// Batch normalizes entries in order and returns the records together with
// the errors of the entries that were skipped.
func Batch(entries []types.DetailEntry) ([]types.Record, []error) {
	records := make([]types.Record, 0, len(entries))
	var skipped []error
	for _, e := range entries {
		r, err := Record(e)
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		records = append(records, r)
	}
	return records, skipped
}

func canonicalURL(kind, id string) (string, error) {
	switch kind {
	case types.KindChannel:
		return channelURLPrefix + id, nil
	case types.KindVideo:
		return videoURLPrefix + id, nil
	default:
		return "", &Error{ID: id, Field: "kind", Reason: fmt.Sprintf("unsupported kind %q", kind)}
	}
}

func category(country string) string {
	c := strings.TrimSpace(country)
	if c == "" || strings.EqualFold(c, types.UnknownCategory) {
		return types.UnknownCategory
	}
	return strings.ToUpper(c)
}

// parseCount parses an upstream counter. An empty string counts as zero.
func parseCount(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", raw)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative count %d", v)
	}
	return v, nil
}
