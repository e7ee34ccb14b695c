package storage

import (
	"context"
	"time"

	"wastepolicy/pkg/domain"
)

// RunUpdates describes a set of optional fields that can be applied to an
// existing run during an update. Only non-zero fields will be updated.
type RunUpdates struct {
	// Status is the new status to set for the run. Empty keeps the current one.
	Status domain.RunStatus
	// Result, when provided, replaces the stored run result payload.
	Result *domain.RunResult
	// LastError, when provided, sets the last error text. An empty string value
	// indicates the error should be cleared (set to NULL).
	LastError *string
	// IncrementAttempts bumps the attempts counter by one.
	IncrementAttempts bool
}

// RunFilter narrows the runs returned by UserRuns. Zero fields do not filter.
type RunFilter struct {
	Kind   domain.RunKind
	Status domain.RunStatus
}

// UserRuns groups a page of runs returned for a user together with an
// optional NextCursor used for pagination.
type UserRuns struct {
	// Runs contains the current page of run records.
	Runs []domain.Run
	// NextCursor points to the timestamp to be used as the cursor for fetching
	// the next page. It is nil when there is no next page.
	NextCursor *time.Time
}

// RunStorage defines CRUD and query operations related to runs. Soft-deleted
// rows are invisible to every read.
type RunStorage interface {
	// StoreRuns inserts one or more runs and returns the stored rows as they
	// exist in the database (including generated fields).
	StoreRuns(ctx context.Context, runs ...domain.Run) ([]domain.Run, error)
	// UpdateRunByID updates a single run identified by its ID and returns the
	// updated row, or nil when the run does not exist. updated_at is set automatically.
	UpdateRunByID(ctx context.Context, ID domain.RunID, updates RunUpdates) (*domain.Run, error)
	// DeleteRun performs a soft delete for the given run ID and user ID and
	// returns the deleted run, or nil if it was not found.
	DeleteRun(ctx context.Context, userID domain.UserID, ID domain.RunID) (*domain.Run, error)
	// UserRuns returns a page of runs for a user created before the optional
	// cursor time, limited by the given limit.
	UserRuns(ctx context.Context,
		userID domain.UserID,
		filter RunFilter,
		cursor time.Time,
		limit uint) (UserRuns, error)
	// UserRunByID fetches a run by its ID for the given user. Returns nil when not found.
	UserRunByID(ctx context.Context, userID domain.UserID, ID domain.RunID) (*domain.Run, error)
	// RunByID fetches a run by its ID regardless of owner. Returns nil when not found.
	RunByID(ctx context.Context, ID domain.RunID) (*domain.Run, error)
}
