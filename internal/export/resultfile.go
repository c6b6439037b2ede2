// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"os"
	"sort"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/channel-scout/pkg/types"
)

// ResultFile is the on-disk representation of a run. A saved file can be
// printed or exported to CSV later without spending API quota.
type ResultFile struct {
	Kind     string         `yaml:"kind"`
	Query    types.Query    `yaml:"query"`
	Criteria CriteriaParams `yaml:"criteria"`
	Results  []types.Record `yaml:"results"`
	Summary  ResultSummary  `yaml:"summary"`
}

// CriteriaParams stores filter criteria with the location set as a sorted
// list.
type CriteriaParams struct {
	MinCount       int64    `yaml:"min_count"`
	MaxCount       int64    `yaml:"max_count"`
	Locations      []string `yaml:"locations"`
	IncludeUnknown bool     `yaml:"include_unknown"`
}

// ResultSummary stores the outcome of the run.
type ResultSummary struct {
	Total      int           `yaml:"total"`
	Stop       string        `yaml:"stop"`
	Message    string        `yaml:"message"`
	Error      string        `yaml:"error,omitempty"`
	Attempts   int           `yaml:"attempts"`
	QuotaSpent int           `yaml:"quota_spent"`
	Skipped    int           `yaml:"skipped"`
	StartedAt  time.Time     `yaml:"started_at"`
	Duration   time.Duration `yaml:"duration"`
}

// WriteResultFile saves run to a YAML file at path.
func WriteResultFile(path string, run types.Run) error {
	rf := ResultFile{
		Kind:     run.Kind,
		Query:    run.Query,
		Criteria: criteriaParams(run.Criteria),
		Results:  run.Records,
		Summary: ResultSummary{
			Total:      len(run.Records),
			Stop:       run.Stop,
			Message:    run.Summary,
			Error:      run.Error,
			Attempts:   run.Attempts,
			QuotaSpent: run.QuotaSpent,
			Skipped:    run.Skipped,
			StartedAt:  run.StartedAt,
			Duration:   run.Duration,
		},
	}

	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling result file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadResultFile loads a previously saved result file from disk.
func ReadResultFile(path string) (*ResultFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result file: %w", err)
	}
	var rf ResultFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing result file: %w", err)
	}
	if rf.Kind != types.KindChannel && rf.Kind != types.KindVideo {
		return nil, fmt.Errorf("parsing result file: unknown kind %q", rf.Kind)
	}
	return &rf, nil
}

// Run converts the file back into a types.Run.
func (rf *ResultFile) Run() types.Run {
	return types.Run{
		Kind:       rf.Kind,
		Query:      rf.Query,
		Criteria:   rf.Criteria.ToCriteria(),
		Records:    rf.Results,
		Stop:       rf.Summary.Stop,
		Summary:    rf.Summary.Message,
		Error:      rf.Summary.Error,
		Attempts:   rf.Summary.Attempts,
		QuotaSpent: rf.Summary.QuotaSpent,
		Skipped:    rf.Summary.Skipped,
		StartedAt:  rf.Summary.StartedAt,
		Duration:   rf.Summary.Duration,
	}
}

// ToCriteria converts stored params back into FilterCriteria.
func (p CriteriaParams) ToCriteria() types.FilterCriteria {
	codes := make(map[string]struct{}, len(p.Locations))
	for _, c := range p.Locations {
		codes[c] = struct{}{}
	}
	return types.NewFilterCriteria(p.MinCount, p.MaxCount, codes, p.IncludeUnknown)
}

func criteriaParams(c types.FilterCriteria) CriteriaParams {
	locs := make([]string, 0, len(c.AllowedCategories))
	for code, ok := range c.AllowedCategories {
		if ok {
			locs = append(locs, code)
		}
	}
	sort.Strings(locs)
	return CriteriaParams{
		MinCount:       c.MinCount,
		MaxCount:       c.MaxCount,
		Locations:      locs,
		IncludeUnknown: c.IncludeUnknownCategory,
	}
}
