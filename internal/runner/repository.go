package runner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fortuna/bbref/internal/store"
)

// Repository handles persistence for run history.
type Repository struct {
	db *store.Database
}

// NewRepository constructs a Repository.
func NewRepository(db *store.Database) *Repository {
	return &Repository{db: db}
}

// Create inserts a new run row.
func (r *Repository) Create(ctx context.Context, run *store.IngestRun) error {
	query := r.db.Rebind(`
		INSERT INTO ingest_runs (id, job, status, items_total, started_at)
		VALUES (?, ?, ?, ?, ?)
	`)

	if _, err := r.db.DB().ExecContext(ctx, query, run.ID, run.Job, run.Status, run.ItemsTotal, run.StartedAt); err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

// Finish stores the final status, counters and error of a run.
func (r *Repository) Finish(ctx context.Context, run *store.IngestRun) error {
	query := r.db.Rebind(`
		UPDATE ingest_runs
		SET status = ?,
			items_total = ?,
			ingested = ?,
			skipped = ?,
			rows_inserted = ?,
			rows_duplicate = ?,
			rows_rejected = ?,
			last_error = ?,
			finished_at = ?
		WHERE id = ?
	`)

	_, err := r.db.DB().ExecContext(ctx, query,
		run.Status, run.ItemsTotal, run.Ingested, run.Skipped,
		run.RowsInserted, run.RowsDuplicate, run.RowsRejected,
		run.LastError, run.FinishedAt, run.ID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// ResetStuck marks runs left in the running state by a killed process as failed.
func (r *Repository) ResetStuck(ctx context.Context) (int64, error) {
	query := r.db.Rebind(`
		UPDATE ingest_runs
		SET status = ?,
			last_error = ?,
			finished_at = ?
		WHERE status = ?
	`)

	res, err := r.db.DB().ExecContext(ctx, query,
		string(JobStatusFailed), "interrupted", time.Now().UTC(), string(JobStatusRunning),
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck runs: %w", err)
	}
	return res.RowsAffected()
}

// Get returns one run, or nil when the id is unknown.
func (r *Repository) Get(ctx context.Context, id string) (*store.IngestRun, error) {
	query := r.db.Rebind(`
		SELECT id, job, status, items_total, ingested, skipped,
			rows_inserted, rows_duplicate, rows_rejected,
			last_error, started_at, finished_at
		FROM ingest_runs
		WHERE id = ?
	`)

	run, err := scanRun(r.db.DB().QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRecent returns the most recently started runs.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]*store.IngestRun, error) {
	query := r.db.Rebind(`
		SELECT id, job, status, items_total, ingested, skipped,
			rows_inserted, rows_duplicate, rows_rejected,
			last_error, started_at, finished_at
		FROM ingest_runs
		ORDER BY started_at DESC, id
		LIMIT ?
	`)

	rows, err := r.db.DB().QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent runs: %w", err)
	}
	defer rows.Close()

	var runs []*store.IngestRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanRun(scanner interface {
	Scan(dest ...interface{}) error
}) (*store.IngestRun, error) {
	run := &store.IngestRun{}
	err := scanner.Scan(
		&run.ID,
		&run.Job,
		&run.Status,
		&run.ItemsTotal,
		&run.Ingested,
		&run.Skipped,
		&run.RowsInserted,
		&run.RowsDuplicate,
		&run.RowsRejected,
		&run.LastError,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	return run, nil
}
