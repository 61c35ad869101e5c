// Copyright 2026 lps Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"fortio.org/log"
	"github.com/sandeepkv93/lps/config"
	"github.com/sandeepkv93/lps/metrics"
)

const schema = `
CREATE TABLE IF NOT EXISTS run_meta (
	run_id TEXT PRIMARY KEY,
	created_at TEXT,
	config_json TEXT,
	notes TEXT
);
CREATE TABLE IF NOT EXISTS request_events (
	run_id TEXT,
	wall_time REAL,
	mono_time REAL,
	latency_ms REAL,
	status_code INTEGER,
	error_type TEXT,
	bytes_sent INTEGER,
	bytes_received INTEGER
);
CREATE TABLE IF NOT EXISTS per_second (
	run_id TEXT,
	second INTEGER,
	requested_rps REAL,
	achieved_rps REAL,
	p50_ms REAL,
	p95_ms REAL,
	p99_ms REAL,
	error_rate REAL,
	timeout_rate REAL
);
`

// SQLiteStore is the concrete Store backed by a single SQLite file,
// matching the shape (three tables, one per artifact kind) of the Python
// original's duckdb_store.Storage.
type SQLiteStore struct {
	db *sql.DB
}

// Open creates (if needed) and opens the database file at path, applying
// the schema, the way Storage.__post_init__ does in the Python original.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("storage: opening %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: applying schema: %w", err)
	}
	log.Infof("storage: opened %s", path)
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RunExists reports whether run_meta already has a row for runID.
func (s *SQLiteStore) RunExists(ctx context.Context, runID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM run_meta WHERE run_id = ?", runID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("storage: run_exists: %w", err)
	}
	return count > 0, nil
}

// SaveRun atomically inserts the run-metadata row, the event rows, and the
// per-second rows inside one transaction (spec.md §6 "atomically inserts").
func (s *SQLiteStore) SaveRun(
	ctx context.Context,
	cfg config.RunConfig,
	runID string,
	events []metrics.RequestEvent,
	perSecond []metrics.PerSecondMetrics,
) error {
	metadata := cfg.ToMetadata(runID)
	configJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("storage: marshaling config metadata: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op once committed

	_, err = tx.ExecContext(ctx,
		"INSERT INTO run_meta (run_id, created_at, config_json, notes) VALUES (?, ?, ?, ?)",
		runID, cfg.CreatedAt.UTC().Format(time.RFC3339), string(configJSON), cfg.Notes,
	)
	if err != nil {
		return fmt.Errorf("storage: inserting run_meta: %w", err)
	}

	eventStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO request_events
			(run_id, wall_time, mono_time, latency_ms, status_code, error_type, bytes_sent, bytes_received)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage: preparing request_events insert: %w", err)
	}
	defer eventStmt.Close()
	for _, e := range events {
		var statusCode sql.NullInt64
		var errorType sql.NullString
		if e.ErrorKind != "" {
			errorType = sql.NullString{String: string(e.ErrorKind), Valid: true}
		} else {
			statusCode = sql.NullInt64{Int64: int64(e.StatusCode), Valid: true}
		}
		_, err = eventStmt.ExecContext(ctx,
			runID, float64(e.WallTime.Unix())+float64(e.WallTime.Nanosecond())/1e9,
			float64(e.MonoTime.UnixNano())/1e9, e.LatencyMs,
			statusCode, errorType, e.BytesSent, e.BytesReceived)
		if err != nil {
			return fmt.Errorf("storage: inserting request_event: %w", err)
		}
	}

	perSecondStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO per_second
			(run_id, second, requested_rps, achieved_rps, p50_ms, p95_ms, p99_ms, error_rate, timeout_rate)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage: preparing per_second insert: %w", err)
	}
	defer perSecondStmt.Close()
	for _, m := range perSecond {
		_, err = perSecondStmt.ExecContext(ctx,
			runID, m.Second, m.RequestedRPS, m.AchievedRPS, m.P50Ms, m.P95Ms, m.P99Ms, m.ErrorRate, m.TimeoutRate)
		if err != nil {
			return fmt.Errorf("storage: inserting per_second: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: committing run %s: %w", runID, err)
	}
	log.Infof("storage: saved run %s (%d events, %d seconds)", runID, len(events), len(perSecond))
	return nil
}

// LoadPerSecond returns the per_second rows for runID ordered by second.
func (s *SQLiteStore) LoadPerSecond(ctx context.Context, runID string) ([]metrics.PerSecondMetrics, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, second, requested_rps, achieved_rps, p50_ms, p95_ms, p99_ms, error_rate, timeout_rate
		 FROM per_second WHERE run_id = ? ORDER BY second`, runID)
	if err != nil {
		return nil, fmt.Errorf("storage: load_per_second: %w", err)
	}
	defer rows.Close()
	var out []metrics.PerSecondMetrics
	for rows.Next() {
		var m metrics.PerSecondMetrics
		if err := rows.Scan(&m.RunID, &m.Second, &m.RequestedRPS, &m.AchievedRPS, &m.P50Ms, &m.P95Ms, &m.P99Ms, &m.ErrorRate, &m.TimeoutRate); err != nil {
			return nil, fmt.Errorf("storage: scanning per_second row: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// LoadRequestEvents returns every request_events row for runID.
func (s *SQLiteStore) LoadRequestEvents(ctx context.Context, runID string) ([]metrics.RequestEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, wall_time, mono_time, latency_ms, status_code, error_type, bytes_sent, bytes_received
		 FROM request_events WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("storage: load_request_events: %w", err)
	}
	defer rows.Close()
	var out []metrics.RequestEvent
	for rows.Next() {
		var e metrics.RequestEvent
		var wallSec, monoSec float64
		var statusCode sql.NullInt64
		var errorType sql.NullString
		if err := rows.Scan(&e.RunID, &wallSec, &monoSec, &e.LatencyMs, &statusCode, &errorType, &e.BytesSent, &e.BytesReceived); err != nil {
			return nil, fmt.Errorf("storage: scanning request_event row: %w", err)
		}
		e.WallTime = time.Unix(0, int64(wallSec*1e9)).UTC()
		e.MonoTime = time.Unix(0, int64(monoSec*1e9)).UTC()
		if statusCode.Valid {
			e.StatusCode = int(statusCode.Int64)
		}
		if errorType.Valid {
			e.ErrorKind = metrics.ErrorKind(errorType.String)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// LoadRunMeta returns the decoded metadata for runID, or nil if it does not exist.
func (s *SQLiteStore) LoadRunMeta(ctx context.Context, runID string) (*RunMeta, error) {
	var createdAtStr, configJSON, notes string
	err := s.db.QueryRowContext(ctx,
		"SELECT created_at, config_json, notes FROM run_meta WHERE run_id = ?", runID,
	).Scan(&createdAtStr, &configJSON, &notes)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: load_run_meta: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("storage: parsing created_at: %w", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(configJSON), &decoded); err != nil {
		return nil, fmt.Errorf("storage: decoding config_json: %w", err)
	}
	return &RunMeta{RunID: runID, CreatedAt: createdAt, Config: decoded, Notes: notes}, nil
}

// ListRuns returns every run's metadata, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context) ([]RunMeta, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT run_id, created_at, notes FROM run_meta ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("storage: list_runs: %w", err)
	}
	defer rows.Close()
	var out []RunMeta
	for rows.Next() {
		var rm RunMeta
		var createdAtStr string
		if err := rows.Scan(&rm.RunID, &createdAtStr, &rm.Notes); err != nil {
			return nil, fmt.Errorf("storage: scanning run_meta row: %w", err)
		}
		if rm.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
			return nil, fmt.Errorf("storage: parsing created_at: %w", err)
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}
