// Package worker executes queued runs with River.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivertype"
	"go.uber.org/zap"

	"wastepolicy/internal/config"
	"wastepolicy/internal/runner"
	"wastepolicy/pkg/logger"
)

// Options configure the River client executing runs.
type Options struct {
	// MaxWorkers is the number of jobs River fetches and works concurrently.
	MaxWorkers int
	// CPUBudget is the weighted budget shared by running jobs. Zero means GOMAXPROCS.
	CPUBudget int
	// JobTimeout bounds a single run.
	JobTimeout time.Duration
}

func NewOptions(cfg *config.Config) Options {
	return Options{
		MaxWorkers: cfg.Worker.MaxWorkers,
		CPUBudget:  cfg.Worker.CPUBudget,
		JobTimeout: cfg.Worker.JobTimeout,
	}
}

// errorHandler logs what River would otherwise only record on the job row.
// Returning nil keeps River's retry policy.
type errorHandler struct{}

func (errorHandler) HandleError(ctx context.Context, job *rivertype.JobRow, err error) *river.ErrorHandlerResult {
	logger.Debug(ctx, "job attempt failed",
		zap.Int64("jobID", job.ID), zap.String("kind", job.Kind), zap.Error(err))

	return nil
}

func (errorHandler) HandlePanic(ctx context.Context, job *rivertype.JobRow, panicVal any, trace string) *river.ErrorHandlerResult {
	logger.Error(ctx, "job panicked",
		zap.Int64("jobID", job.ID),
		zap.String("kind", job.Kind),
		zap.Any("panic", panicVal),
		zap.String("trace", trace))

	return nil
}

// Pool is a started River client working the default queue.
type Pool struct {
	client *river.Client[pgx.Tx]
}

// Start registers the run worker and starts working the default queue. Jobs
// do not inherit the cancellation of ctx; only Stop ends them.
func Start(ctx context.Context, dbPool *pgxpool.Pool, r runner.Runner, opts Options) (*Pool, error) {
	workers := river.NewWorkers()
	river.AddWorker(workers, NewRunWorker(r, opts.CPUBudget, opts.JobTimeout))

	client, err := river.NewClient(riverpgxv5.New(dbPool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: max(opts.MaxWorkers, 1)},
		},
		Workers:      workers,
		ErrorHandler: errorHandler{},
		Logger:       logger.Slog(logger.Named(ctx, "river")),
	})
	if err != nil {
		return nil, fmt.Errorf("could not create river client: %w", err)
	}

	if err := client.Start(context.WithoutCancel(ctx)); err != nil {
		return nil, fmt.Errorf("could not start river client: %w", err)
	}
	logger.Info(ctx, "workers started", zap.Int("maxWorkers", max(opts.MaxWorkers, 1)))

	return &Pool{client: client}, nil
}

// Stop waits for running jobs until ctx is done, then cancels them. Canceled
// runs are retried by whichever worker picks them up next.
func (p *Pool) Stop(ctx context.Context) error {
	err := p.client.Stop(ctx)
	if err == nil || !errors.Is(err, context.DeadlineExceeded) {
		return err //nolint: wrapcheck
	}

	logger.Warn(ctx, "workers did not finish in time, canceling running jobs")
	hardCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := p.client.StopAndCancel(hardCtx); err != nil {
		return fmt.Errorf("could not cancel running jobs: %w", err)
	}

	return nil
}
