package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fortuna/ceres/internal/store"
)

// RunRepository handles harvest run bookkeeping.
type RunRepository struct {
	db *store.Database
}

// NewRunRepository creates a new harvest run repository.
func NewRunRepository(db *store.Database) *RunRepository {
	return &RunRepository{db: db}
}

// Create records the start of a harvest run and assigns its ID.
func (r *RunRepository) Create(ctx context.Context, run *store.HarvestRun) error {
	query := `
		INSERT INTO harvest_runs (mode, years, genders, divisions, status, slices_requested)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING run_id, started_at
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		run.Mode, run.Years, run.Genders, run.Divisions, store.RunStatusRunning, run.SlicesRequested,
	).Scan(&run.RunID, &run.StartedAt)
	if err != nil {
		return fmt.Errorf("creating harvest run: %w", err)
	}
	run.Status = store.RunStatusRunning
	return nil
}

// Complete marks a run finished with its final tallies.
func (r *RunRepository) Complete(ctx context.Context, run *store.HarvestRun) error {
	query := `
		UPDATE harvest_runs
		SET status = $2, slices_with_data = $3, games_found = $4,
			games_upserted = $5, finished_at = NOW()
		WHERE run_id = $1
	`

	_, err := r.db.DB().ExecContext(ctx, query,
		run.RunID, store.RunStatusCompleted, run.SlicesWithData, run.GamesFound, run.GamesUpserted)
	if err != nil {
		return fmt.Errorf("completing harvest run: %w", err)
	}
	run.Status = store.RunStatusCompleted
	return nil
}

// Fail marks a run failed with its error message.
func (r *RunRepository) Fail(ctx context.Context, run *store.HarvestRun, cause error) error {
	query := `
		UPDATE harvest_runs
		SET status = $2, error = $3, finished_at = NOW()
		WHERE run_id = $1
	`

	msg := sql.NullString{}
	if cause != nil {
		msg = sql.NullString{String: cause.Error(), Valid: true}
	}
	_, err := r.db.DB().ExecContext(ctx, query, run.RunID, store.RunStatusFailed, msg)
	if err != nil {
		return fmt.Errorf("failing harvest run: %w", err)
	}
	run.Status = store.RunStatusFailed
	run.Error = msg
	return nil
}

// GetRecent returns the most recent harvest runs, newest first.
func (r *RunRepository) GetRecent(ctx context.Context, limit int) ([]*store.HarvestRun, error) {
	query := `
		SELECT run_id, mode, years, genders, divisions, status,
			slices_requested, slices_with_data, games_found, games_upserted,
			error, started_at, finished_at
		FROM harvest_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.db.DB().QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying harvest runs: %w", err)
	}
	defer rows.Close()

	var runs []*store.HarvestRun
	for rows.Next() {
		run := &store.HarvestRun{}
		err := rows.Scan(
			&run.RunID, &run.Mode, &run.Years, &run.Genders, &run.Divisions, &run.Status,
			&run.SlicesRequested, &run.SlicesWithData, &run.GamesFound, &run.GamesUpserted,
			&run.Error, &run.StartedAt, &run.FinishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning harvest run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}
