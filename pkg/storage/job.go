package storage

import (
	"context"

	"github.com/riverqueue/river"
)

// JobStorage enqueues River jobs. Inside a transaction the job is only
// visible to workers once the transaction commits, so a run is never
// executed before its row exists.
type JobStorage interface {
	// AddJob inserts a job and reports whether it was inserted. A job that
	// duplicates a unique job already queued returns false and no error.
	AddJob(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (bool, error)
}
