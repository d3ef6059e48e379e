// Package storage provides SQLite-based persistent storage for ssm-commander.
// It records every executed session command so that past runs can be listed.
package storage

import (
	"context"
)

// Store defines the interface for all storage operations.
type Store interface {
	// Runs
	RecordStart(ctx context.Context, r *Run) error
	RecordEnd(ctx context.Context, runID string, exitCode int, endTime int64) error
	QueryRuns(ctx context.Context, q RunQuery) ([]Run, error)

	// Lifecycle
	Close() error
}

// Run represents one execution of a saved command.
type Run struct {
	RunID           string
	CommandName     string
	CommandType     string
	Profile         string
	Region          string
	InstanceID      string
	CommandLine     string
	StartedAtUnixMs int64
	EndedAtUnixMs   *int64
	ExitCode        *int // nil while running or if the process never reported
}

// RunQuery defines parameters for querying runs.
type RunQuery struct {
	CommandName string // Only runs of this saved command
	Limit       int    // 0 = DefaultRunLimit
}

// DefaultRunLimit caps QueryRuns when no limit is given.
const DefaultRunLimit = 20
