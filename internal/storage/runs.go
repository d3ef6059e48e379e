package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrRunNotFound is returned when a run is not found.
var ErrRunNotFound = errors.New("run not found")

// RecordStart inserts a run that has just been started.
// RunID and StartedAtUnixMs are filled in when empty.
func (s *SQLiteStore) RecordStart(ctx context.Context, r *Run) error {
	if r == nil {
		return errors.New("run cannot be nil")
	}
	if r.CommandName == "" {
		return errors.New("command_name is required")
	}
	if r.CommandLine == "" {
		return errors.New("command_line is required")
	}

	if r.RunID == "" {
		r.RunID = uuid.New().String()
	}
	if r.StartedAtUnixMs == 0 {
		r.StartedAtUnixMs = time.Now().UnixMilli()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (
			run_id, command_name, command_type, profile, region,
			instance_id, command_line, started_at_unix_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.RunID,
		r.CommandName,
		r.CommandType,
		r.Profile,
		r.Region,
		r.InstanceID,
		r.CommandLine,
		r.StartedAtUnixMs,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("run with id %s already exists", r.RunID)
		}
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// RecordEnd stores the exit code and end time of a run.
func (s *SQLiteStore) RecordEnd(ctx context.Context, runID string, exitCode int, endTime int64) error {
	if runID == "" {
		return errors.New("run_id is required")
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE runs SET ended_at_unix_ms = ?, exit_code = ? WHERE run_id = ?
	`, endTime, exitCode, runID)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrRunNotFound
	}
	return nil
}

// QueryRuns returns runs, most recent first.
func (s *SQLiteStore) QueryRuns(ctx context.Context, q RunQuery) ([]Run, error) {
	query := `
		SELECT run_id, command_name, command_type, profile, region,
		       instance_id, command_line, started_at_unix_ms,
		       ended_at_unix_ms, exit_code
		FROM runs
		WHERE 1=1
	`
	args := make([]interface{}, 0, 2)

	if q.CommandName != "" {
		query += " AND command_name = ?"
		args = append(args, q.CommandName)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultRunLimit
	}
	query += " ORDER BY started_at_unix_ms DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(
			&r.RunID,
			&r.CommandName,
			&r.CommandType,
			&r.Profile,
			&r.Region,
			&r.InstanceID,
			&r.CommandLine,
			&r.StartedAtUnixMs,
			&r.EndedAtUnixMs,
			&r.ExitCode,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)
