package worker

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/riverqueue/river"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"wastepolicy/internal/runner"
	"wastepolicy/pkg/domain"
	"wastepolicy/pkg/logger"
	"wastepolicy/pkg/serrors"
)

// Weights is the share of the CPU budget a run of each kind reserves while it
// executes. Kinds that evaluate many models concurrently weigh more.
var Weights = map[domain.RunKind]int64{ //nolint: gochecknoglobals
	domain.RunKindSimulate:    1,
	domain.RunKindEvaluate:    1,
	domain.RunKindScenarios:   2,
	domain.RunKindTrain:       2,
	domain.RunKindCalibrate:   4,
	domain.RunKindSensitivity: 4,
}

// RunWorker is a River worker that executes runs through a runner.Runner.
//
// Runs are CPU bound, so besides River's own concurrency limit the worker
// keeps a weighted budget: before executing, a run reserves Weights[kind]
// units (capped at the whole budget) and releases them when it is done. A
// cheap simulation therefore never waits behind more than the budget allows,
// while two sensitivity analyses cannot saturate every core at once.
//
// Error handling: bad-request, not-found and conflict errors cannot be fixed
// by retrying and cancel the job. Other errors are returned so River retries
// the job until its attempts are exhausted.
type RunWorker struct {
	river.WorkerDefaults[runner.JobArgs]

	runner  runner.Runner
	budget  *semaphore.Weighted
	size    int64
	timeout time.Duration
}

// NewRunWorker constructs a RunWorker. A non-positive budget defaults to
// GOMAXPROCS and a non-positive timeout leaves River's default in place.
func NewRunWorker(r runner.Runner, budget int, timeout time.Duration) *RunWorker {
	if budget <= 0 {
		budget = runtime.GOMAXPROCS(0)
	}

	return &RunWorker{
		runner:  r,
		budget:  semaphore.NewWeighted(int64(budget)),
		size:    int64(budget),
		timeout: timeout,
	}
}

// Timeout bounds the execution of a single run.
func (w *RunWorker) Timeout(*river.Job[runner.JobArgs]) time.Duration {
	return w.timeout
}

func (w *RunWorker) weight(kind domain.RunKind) int64 {
	weight, ok := Weights[kind]
	if !ok {
		weight = 1
	}

	return min(weight, w.size)
}

// Work reserves budget for the run, executes it and maps errors to River
// actions.
func (w *RunWorker) Work(ctx context.Context, job *river.Job[runner.JobArgs]) error {
	ctx = logger.WithFields(ctx,
		zap.Int64("jobID", job.ID),
		zap.Stringer("runID", job.Args.RunID),
		zap.Int("attempt", job.Attempt))

	weight := w.weight(job.Args.RunKind)
	if err := w.budget.Acquire(ctx, weight); err != nil {
		return fmt.Errorf("could not reserve cpu budget: %w", err)
	}
	defer w.budget.Release(weight)

	logger.Debug(ctx, "reserved cpu budget", zap.Int64("weight", weight))

	if err := w.runner.Execute(ctx, job.Args.RunID, job.Attempt, job.MaxAttempts); err != nil {
		if serrors.Permanent(err) {
			logger.Warn(ctx, "run canceled", zap.Error(err))

			return river.JobCancel(err) //nolint: wrapcheck
		}

		logger.Error(ctx, "error in executing run", zap.Error(err))

		return fmt.Errorf("could not execute run: %w", err)
	}

	logger.Info(ctx, "run executed successfully")

	return nil
}
