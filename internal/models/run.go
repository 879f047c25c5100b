package models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RunStore records scheduler tier executions. The health endpoint reports
// the most recent successful finish time as worker_last_run.
type RunStore struct {
	pool *pgxpool.Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool *pgxpool.Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Start records the beginning of a tier run and returns its id for log
// correlation.
func (s *RunStore) Start(ctx context.Context, tier string) (uuid.UUID, error) {
	runID := uuid.New()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO worker_runs (run_id, tier, started_at) VALUES ($1, $2, $3)
	`, runID, tier, time.Now().UTC())
	if err != nil {
		return uuid.Nil, fmt.Errorf("run start: %w", err)
	}
	return runID, nil
}

// Finish marks a run complete.
func (s *RunStore) Finish(ctx context.Context, runID uuid.UUID, ok bool, detail string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE worker_runs SET finished_at = $1, ok = $2, detail = $3 WHERE run_id = $4
	`, time.Now().UTC(), ok, detail, runID)
	if err != nil {
		return fmt.Errorf("run finish: %w", err)
	}
	return nil
}

// LastSuccessful returns the finish time of the most recent successful run,
// or nil when no run has completed yet.
func (s *RunStore) LastSuccessful(ctx context.Context) (*time.Time, error) {
	var last *time.Time
	err := s.pool.QueryRow(ctx, `
		SELECT MAX(finished_at) FROM worker_runs WHERE ok
	`).Scan(&last)
	if err != nil {
		return nil, fmt.Errorf("run last successful: %w", err)
	}
	return last, nil
}
