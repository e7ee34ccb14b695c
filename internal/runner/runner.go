package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"wastepolicy/internal/config"
	"wastepolicy/internal/lab"
	"wastepolicy/pkg/domain"
	"wastepolicy/pkg/logger"
	"wastepolicy/pkg/metrics"
	"wastepolicy/pkg/policyenv"
	"wastepolicy/pkg/rl"
	"wastepolicy/pkg/serrors"
	"wastepolicy/pkg/storage"
)

// Algorithm is the name recorded on policies produced by training runs.
const Algorithm = "q-learning"

// Options configure how run jobs are enqueued and which parameters they
// accept. These settings are typically derived from application configuration.
type Options struct {
	// MaxAttempts is the maximum number of attempts the background worker should
	// make when executing a run before marking it failed.
	MaxAttempts int
	Limits      Limits
	// Profiles are the barangays runs may select from.
	Profiles []domain.BarangayProfile
	// Metrics is optional.
	Metrics *metrics.Metrics
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config, profiles []domain.BarangayProfile) Options {
	return Options{
		MaxAttempts: cfg.Worker.MaxAttempts,
		Limits:      NewLimits(cfg),
		Profiles:    profiles,
	}
}

// runner is the concrete implementation of the Runner interface.
// It coordinates persistence with the storage layer, job enqueueing and
// the lab executing the experiments.
type runner struct {
	options Options
	storage storage.Storage
	lab     lab.Executor
}

// New creates a new Runner instance backed by the provided storage and lab.
func New(storage storage.Storage, executor lab.Executor, options Options) Runner {
	return &runner{
		options: options,
		storage: storage,
		lab:     executor,
	}
}

func parseCursor(cursor string) (time.Time, error) {
	if cursor == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, cursor)
	if err != nil {
		return time.Time{}, serrors.Wrap(serrors.ErrBadRequest, err, "invalid cursor")
	}

	return t, nil
}

// formatCursor keeps sub-second precision; created_at is stored in
// microseconds and pages are cut with created_at < cursor.
func formatCursor(t *time.Time) string {
	if t == nil {
		return ""
	}

	return t.UTC().Format(time.RFC3339Nano)
}

// Enqueue validates params, stores a pending run and enqueues the job that
// executes it, both in one transaction.
func (r runner) Enqueue(ctx context.Context,
	userID domain.UserID,
	kind domain.RunKind,
	params domain.RunParams,
) (*domain.Run, error) {
	params, err := NormalizeParams(kind, params, r.options.Limits, r.options.Profiles)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrBadRequest, err, "invalid run parameters")
	}

	if params.PolicyID != nil {
		if _, err := r.Policy(ctx, userID, *params.PolicyID); err != nil {
			return nil, err
		}
	}

	var run *domain.Run
	if err := r.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		res, err := tx.StoreRuns(ctx, domain.Run{
			UserID: userID,
			Kind:   kind,
			Params: params,
			Status: domain.RunStatusPending,
		})
		if err != nil {
			return fmt.Errorf("could not store run: %w", err)
		}
		run = &res[0]

		if _, err := tx.AddJob(ctx, JobArgs{
			RunID:       run.ID,
			RunKind:     kind,
			maxAttempts: r.options.MaxAttempts,
		}, nil); err != nil {
			return fmt.Errorf("could not add job: %w", err)
		}

		return nil
	}); err != nil {
		return nil, fmt.Errorf("could not enqueue run: %w", err)
	}

	return run, nil
}

// UserRuns returns a page of runs for the given user narrowed by filter.
// It supports cursor-based pagination using an RFC3339 timestamp string and
// returns the next cursor when more results are available.
func (r runner) UserRuns(ctx context.Context,
	userID domain.UserID,
	filter storage.RunFilter,
	cursor string,
	limit uint,
) ([]domain.Run, string, error) {
	cursorTime, err := parseCursor(cursor)
	if err != nil {
		return nil, "", err
	}

	page, err := r.storage.UserRuns(ctx, userID, filter, cursorTime, limit)
	if err != nil {
		return nil, "", fmt.Errorf("could not get user runs: %w", err)
	}

	return page.Runs, formatCursor(page.NextCursor), nil
}

// Result fetches a single run by ID for the given user. It returns a
// not-found error when no matching run exists.
func (r runner) Result(ctx context.Context, userID domain.UserID, runID domain.RunID) (*domain.Run, error) {
	res, err := r.storage.UserRunByID(ctx, userID, runID)
	if err != nil {
		return nil, fmt.Errorf("could not get run: %w", err)
	}
	if res == nil {
		return nil, serrors.With(serrors.ErrNotFound, "run not found")
	}

	return res, nil
}

// Delete soft-deletes a run belonging to the given user. A queued job of a
// deleted run finds nothing to execute and is canceled by the worker.
func (r runner) Delete(ctx context.Context, userID domain.UserID, runID domain.RunID) error {
	res, err := r.storage.DeleteRun(ctx, userID, runID)
	if err != nil {
		return fmt.Errorf("could not delete run: %w", err)
	}
	if res == nil {
		return serrors.With(serrors.ErrNotFound, "run not found")
	}

	return nil
}

// Policy fetches a trained policy owned by the given user.
func (r runner) Policy(ctx context.Context, userID domain.UserID, policyID domain.PolicyID) (*domain.Policy, error) {
	res, err := r.storage.PolicyByID(ctx, policyID)
	if err != nil {
		return nil, fmt.Errorf("could not get policy: %w", err)
	}
	if res == nil || res.UserID != userID {
		return nil, serrors.With(serrors.ErrNotFound, "policy not found")
	}

	return res, nil
}

// UserPolicies returns a page of the user's policies without their artifacts.
func (r runner) UserPolicies(ctx context.Context,
	userID domain.UserID,
	cursor string,
	limit uint,
) ([]domain.Policy, string, error) {
	cursorTime, err := parseCursor(cursor)
	if err != nil {
		return nil, "", err
	}

	page, err := r.storage.UserPolicies(ctx, userID, cursorTime, limit)
	if err != nil {
		return nil, "", fmt.Errorf("could not get user policies: %w", err)
	}

	return page.Policies, formatCursor(page.NextCursor), nil
}

// Act asks a stored policy for the levers of the next quarter.
func (r runner) Act(ctx context.Context,
	userID domain.UserID,
	policyID domain.PolicyID,
	obs policyenv.Observation,
) (domain.Action, error) {
	if err := validObservation(obs); err != nil {
		return nil, serrors.Wrap(serrors.ErrBadRequest, err, "invalid observation")
	}

	policy, err := r.Policy(ctx, userID, policyID)
	if err != nil {
		return nil, err
	}

	learner, err := rl.Unmarshal(policy.Artifact)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrConflict, err, "stored policy cannot be loaded")
	}

	return rl.Greedy{Learner: learner}.Act(obs), nil
}

func validObservation(obs policyenv.Observation) error {
	if obs.Quarter < 0 {
		return fmt.Errorf("quarter must not be negative, got %d", obs.Quarter)
	}
	if len(obs.Barangays) == 0 {
		return errors.New("at least one barangay is required")
	}
	in := func(v float64) bool { return v >= 0 && v <= 1 }
	if !in(obs.MeanCompliance) || !in(obs.ImproperRate) {
		return errors.New("rates must be in [0, 1]")
	}
	for _, b := range obs.Barangays {
		if !in(b.Compliance) || !in(b.ImproperRate) {
			return fmt.Errorf("rates of barangay %d must be in [0, 1]", b.ID)
		}
	}

	return nil
}

// Execute runs the experiment of a stored run. Completed runs are left
// untouched. On failure the run returns to PENDING while attempts remain and
// becomes FAILED otherwise; the error is returned so the caller can retry.
func (r runner) Execute(ctx context.Context, runID domain.RunID, attempt, maxAttempts int) error {
	run, err := r.storage.RunByID(ctx, runID)
	if err != nil {
		return fmt.Errorf("could not get run: %w", err)
	}
	if run == nil {
		return serrors.With(serrors.ErrNotFound, "run not found")
	}
	if run.Status == domain.RunStatusCompleted {
		logger.Info(ctx, "run already completed")

		return nil
	}

	ctx = logger.WithFields(ctx, zap.String("kind", string(run.Kind)))
	if run, err = r.storage.UpdateRunByID(ctx, runID, storage.RunUpdates{
		Status:            domain.RunStatusRunning,
		IncrementAttempts: true,
	}); err != nil {
		return fmt.Errorf("could not mark run as running: %w", err)
	} else if run == nil {
		return serrors.With(serrors.ErrNotFound, "run not found")
	}

	started := time.Now()
	if m := r.options.Metrics; m != nil {
		m.RunsInFlight.WithLabelValues(string(run.Kind)).Inc()
		defer m.RunsInFlight.WithLabelValues(string(run.Kind)).Dec()
	}

	err = r.execute(ctx, run)
	status := domain.RunStatusCompleted
	if err != nil {
		status = domain.RunStatusPending
		if attempt >= maxAttempts || serrors.Permanent(err) {
			status = domain.RunStatusFailed
		}
		if ctx.Err() != nil {
			// the job context is gone, record the failure on a fresh one
			ctx = context.WithoutCancel(ctx)
		}
		if updateErr := r.fail(ctx, runID, status, err); updateErr != nil {
			logger.Error(ctx, "could not record run failure", zap.Error(updateErr))
		}
	}

	if m := r.options.Metrics; m != nil {
		m.ObserveRun(string(run.Kind), string(status), time.Since(started).Seconds())
	}

	return err
}

func (r runner) execute(ctx context.Context, run *domain.Run) error {
	var policy *domain.Policy
	if run.Params.PolicyID != nil {
		var err error
		if policy, err = r.storage.PolicyByID(ctx, *run.Params.PolicyID); err != nil {
			return fmt.Errorf("could not get policy: %w", err)
		}
	}

	out, err := r.lab.Execute(ctx, *run, policy)
	if err != nil {
		return fmt.Errorf("could not execute run: %w", err)
	}

	return r.complete(ctx, run, out)
}

func (r runner) complete(ctx context.Context, run *domain.Run, out lab.Outcome) error {
	result := out.Result
	noError := ""

	if err := r.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		if out.Learner != nil {
			artifact, err := out.Learner.MarshalJSON()
			if err != nil {
				return fmt.Errorf("could not marshal learner: %w", err)
			}
			policy, err := tx.StorePolicy(ctx, domain.Policy{
				UserID:    run.UserID,
				RunID:     run.ID,
				Name:      fmt.Sprintf("%s %s", Algorithm, run.ID.String()[:8]),
				Algorithm: Algorithm,
				Artifact:  artifact,
			})
			if err != nil {
				return fmt.Errorf("could not store policy: %w", err)
			}
			result.PolicyID = &policy.ID
		}

		if _, err := tx.UpdateRunByID(ctx, run.ID, storage.RunUpdates{
			Status:    domain.RunStatusCompleted,
			Result:    &result,
			LastError: &noError,
		}); err != nil {
			return fmt.Errorf("could not update run: %w", err)
		}

		return nil
	}); err != nil {
		return fmt.Errorf("could not store run result: %w", err)
	}

	logger.Info(ctx, "run completed")

	return nil
}

func (r runner) fail(ctx context.Context, runID domain.RunID, status domain.RunStatus, cause error) error {
	msg := cause.Error()
	_, err := r.storage.UpdateRunByID(ctx, runID, storage.RunUpdates{
		Status:    status,
		LastError: &msg,
	})
	if err != nil {
		return fmt.Errorf("could not update run: %w", err)
	}

	return nil
}
