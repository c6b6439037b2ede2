// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records finished discovery runs in a local SQLite
// database so results can be listed, shown and exported again without
// spending API quota.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/channel-scout/pkg/types"
)

const dbFile = "history.db"

// ErrNotFound is returned by LoadRun when no run matches the ID.
var ErrNotFound = errors.New("run not found")

// ErrAmbiguous is returned by LoadRun when an ID prefix matches several runs.
var ErrAmbiguous = errors.New("run id prefix is ambiguous")

// Store manages the history database.
type Store struct {
	db *sql.DB
}

// RunSummary is one row of ListRuns.
type RunSummary struct {
	ID         string
	Kind       string
	Keyword    string
	Target     int
	Matched    int
	Stop       string
	QuotaSpent int
	StartedAt  time.Time
}

// Open opens or creates cfg.Dir/history.db and its schema.
func Open(cfg types.HistoryConfig) (*Store, error) {
	if cfg.Dir == "" {
		return nil, errors.New("history directory is not configured")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			keyword TEXT NOT NULL,
			target INTEGER NOT NULL,
			max_pages INTEGER NOT NULL,
			ordering TEXT,
			min_count INTEGER NOT NULL,
			max_count INTEGER NOT NULL,
			locations TEXT,
			include_unknown INTEGER NOT NULL,
			stop TEXT NOT NULL,
			summary TEXT,
			error TEXT,
			attempts INTEGER NOT NULL,
			quota_spent INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			matched INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
		`CREATE TABLE IF NOT EXISTS run_records (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			record_id TEXT NOT NULL,
			display_name TEXT,
			metric INTEGER NOT NULL,
			category TEXT,
			url TEXT,
			secondary TEXT,
			text TEXT,
			PRIMARY KEY (run_id, position)
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveRun stores run and its records and returns the new run ID.
func (s *Store) SaveRun(ctx context.Context, run types.Run) (string, error) {
	id := uuid.NewString()

	locations := make([]string, 0, len(run.Criteria.AllowedCategories))
	for code, ok := range run.Criteria.AllowedCategories {
		if ok {
			locations = append(locations, code)
		}
	}
	sort.Strings(locations)
	locationsJSON, _ := json.Marshal(locations)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, kind, keyword, target, max_pages, ordering, min_count, max_count,
			locations, include_unknown, stop, summary, error, attempts, quota_spent, skipped,
			matched, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, run.Kind, run.Query.Keyword, run.Query.TargetCount, run.Query.MaxPageDepth,
		string(run.Query.Ordering), run.Criteria.MinCount, run.Criteria.MaxCount,
		string(locationsJSON), run.Criteria.IncludeUnknownCategory,
		run.Stop, run.Summary, run.Error, run.Attempts, run.QuotaSpent, run.Skipped,
		len(run.Records), run.StartedAt.UTC().Format(time.RFC3339Nano), run.Duration.Milliseconds(),
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_records (run_id, position, record_id, display_name, metric, category, url, secondary, text)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range run.Records {
		secondaryJSON, _ := json.Marshal(r.Secondary)
		textJSON, _ := json.Marshal(r.Text)
		_, err := stmt.ExecContext(ctx,
			id, i, r.ID, r.DisplayName, r.Metric, r.Category, r.URL,
			string(secondaryJSON), string(textJSON),
		)
		if err != nil {
			return "", fmt.Errorf("inserting record %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return id, nil
}

// ListRuns returns the most recent runs first. A limit of 0 or less returns
// all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `SELECT id, kind, keyword, target, matched, stop, quota_spent, started_at
		FROM runs ORDER BY started_at DESC, id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var rs RunSummary
		var started string
		if err := rows.Scan(&rs.ID, &rs.Kind, &rs.Keyword, &rs.Target, &rs.Matched,
			&rs.Stop, &rs.QuotaSpent, &started); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		rs.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		out = append(out, rs)
	}
	return out, rows.Err()
}

// LoadRun returns the run whose ID equals or starts with id.
func (s *Store) LoadRun(ctx context.Context, id string) (types.Run, error) {
	if id == "" {
		return types.Run{}, ErrNotFound
	}
	fullID, err := s.resolveID(ctx, id)
	if err != nil {
		return types.Run{}, err
	}

	var (
		run            types.Run
		ordering       string
		locationsJSON  string
		includeUnknown bool
		summary, rerr  sql.NullString
		started        string
		durationMS     int64
	)
	err = s.db.QueryRowContext(ctx,
		`SELECT id, kind, keyword, target, max_pages, ordering, min_count, max_count, locations,
			include_unknown, stop, summary, error, attempts, quota_spent, skipped, started_at, duration_ms
		 FROM runs WHERE id = ?`, fullID,
	).Scan(&run.ID, &run.Kind, &run.Query.Keyword, &run.Query.TargetCount, &run.Query.MaxPageDepth,
		&ordering, &run.Criteria.MinCount, &run.Criteria.MaxCount, &locationsJSON,
		&includeUnknown, &run.Stop, &summary, &rerr, &run.Attempts, &run.QuotaSpent,
		&run.Skipped, &started, &durationMS)
	if err != nil {
		return types.Run{}, fmt.Errorf("loading run %s: %w", fullID, err)
	}

	run.Query.Ordering = types.Ordering(ordering)
	run.Summary = summary.String
	run.Error = rerr.String
	run.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
	run.Duration = time.Duration(durationMS) * time.Millisecond

	var locations []string
	if err := json.Unmarshal([]byte(locationsJSON), &locations); err != nil {
		return types.Run{}, fmt.Errorf("decoding locations of run %s: %w", fullID, err)
	}
	codes := make(map[string]struct{}, len(locations))
	for _, c := range locations {
		codes[c] = struct{}{}
	}
	crit := types.NewFilterCriteria(run.Criteria.MinCount, run.Criteria.MaxCount, codes, includeUnknown)
	run.Criteria = crit

	run.Records, err = s.loadRecords(ctx, fullID)
	if err != nil {
		return types.Run{}, err
	}
	return run, nil
}

// DeleteRun removes a run and its records.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	fullID, err := s.resolveID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, fullID); err != nil {
		return fmt.Errorf("deleting run %s: %w", fullID, err)
	}
	return nil
}

func (s *Store) resolveID(ctx context.Context, prefix string) (string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM runs WHERE substr(id, 1, ?) = ? LIMIT 2`, len(prefix), prefix)
	if err != nil {
		return "", fmt.Errorf("resolving run id: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("resolving run id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("resolving run id: %w", err)
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, prefix)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguous, prefix)
	}
}

func (s *Store) loadRecords(ctx context.Context, runID string) ([]types.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT record_id, display_name, metric, category, url, secondary, text
		 FROM run_records WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	records := []types.Record{}
	for rows.Next() {
		var (
			r                       types.Record
			secondaryJSON, textJSON string
		)
		if err := rows.Scan(&r.ID, &r.DisplayName, &r.Metric, &r.Category, &r.URL,
			&secondaryJSON, &textJSON); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		if err := json.Unmarshal([]byte(secondaryJSON), &r.Secondary); err != nil {
			return nil, fmt.Errorf("decoding record %s: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(textJSON), &r.Text); err != nil {
			return nil, fmt.Errorf("decoding record %s: %w", r.ID, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
