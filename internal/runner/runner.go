package runner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fortuna/bbref/internal/events"
	"github.com/fortuna/bbref/internal/ingest/bbref"
	"github.com/fortuna/bbref/internal/store"
)

// Runner executes job specs with the bbref ingester and records every
// pipeline run in the run history.
type Runner struct {
	ingester *bbref.Ingester
	runs     *Repository
	reporter events.Reporter
	logger   *zap.Logger
}

// NewRunner constructs a runner. reporter receives every event, stamped with
// the id of the run it belongs to.
func NewRunner(db *store.Database, ingester *bbref.Ingester, reporter events.Reporter, logger *zap.Logger) *Runner {
	if reporter == nil {
		reporter = events.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		ingester: ingester,
		runs:     NewRepository(db),
		reporter: reporter,
		logger:   logger,
	}
}

// Runs exposes the run history.
func (r *Runner) Runs() *Repository {
	return r.runs
}

// Run executes spec. JobTypeAll runs every pipeline in order and stops at the
// first pipeline that fails. The recorded runs are returned even on error.
func (r *Runner) Run(ctx context.Context, spec JobSpec) ([]*store.IngestRun, error) {
	spec = spec.withDefaults()
	if err := spec.validate(); err != nil {
		return nil, err
	}

	jobs := []JobType{spec.Type}
	if spec.Type == JobTypeAll {
		jobs = pipelineOrder
	}

	var out []*store.IngestRun
	for _, job := range jobs {
		run, err := r.runOne(ctx, job, spec)
		if run != nil {
			out = append(out, run)
		}
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

func (r *Runner) runOne(ctx context.Context, job JobType, spec JobSpec) (*store.IngestRun, error) {
	run := &store.IngestRun{
		ID:        uuid.NewString(),
		Job:       string(job),
		Status:    string(JobStatusRunning),
		StartedAt: time.Now().UTC(),
	}
	// Bookkeeping writes ignore cancellation so an interrupted run is still recorded.
	bookkeeping := context.WithoutCancel(ctx)
	if err := r.runs.Create(bookkeeping, run); err != nil {
		return nil, err
	}

	logger := r.logger.With(zap.String("run_id", run.ID), zap.String("job", run.Job))
	logger.Info("run started")

	ing := r.ingester.WithReporter(events.WithRun(run.ID, r.reporter))
	sum, err := dispatch(ctx, ing, job, spec)

	run.ItemsTotal = sum.Items
	run.Ingested = sum.Ingested
	run.Skipped = sum.Skipped
	run.RowsInserted = sum.RowsInserted
	run.RowsDuplicate = sum.RowsDuplicate
	run.RowsRejected = sum.RowsRejected
	run.FinishedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
	switch {
	case err == nil:
		run.Status = string(JobStatusCompleted)
	case errors.Is(err, context.Canceled):
		run.Status = string(JobStatusCancelled)
	default:
		run.Status = string(JobStatusFailed)
	}
	if err != nil {
		run.LastError = sql.NullString{String: err.Error(), Valid: true}
	}

	if ferr := r.runs.Finish(bookkeeping, run); ferr != nil {
		logger.Error("failed to record run", zap.Error(ferr))
		if err == nil {
			err = ferr
		}
	}

	logger.Info("run finished",
		zap.String("status", run.Status),
		zap.Int("items", run.ItemsTotal),
		zap.Int("skipped", run.Skipped),
		zap.Int("rows_inserted", run.RowsInserted),
	)
	return run, err
}

func dispatch(ctx context.Context, ing *bbref.Ingester, job JobType, spec JobSpec) (events.Summary, error) {
	switch job {
	case JobTypeRoster:
		return ing.IngestRosters(ctx, spec.Teams, spec.Season)
	case JobTypeURLs:
		return ing.AssignPlayerURLs(ctx)
	case JobTypePlayerStats:
		return ing.IngestPlayerStats(ctx)
	case JobTypeSchedule:
		return ing.IngestSchedule(ctx, spec.Seasons, spec.Months)
	case JobTypeBoxScores:
		return ing.IngestBoxScores(ctx)
	case JobTypeAdvanced:
		return ing.IngestAdvancedBoxScores(ctx)
	default:
		return events.Summary{}, fmt.Errorf("unsupported job type %s", job)
	}
}
