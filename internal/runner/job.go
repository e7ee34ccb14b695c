package runner

import (
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"

	"wastepolicy/pkg/domain"
)

// JobArgs contains the arguments of a run job submitted to River.
// RunID is unique so a run is never queued twice.
type JobArgs struct {
	RunID   domain.RunID   `json:"runId" river:"unique"`
	RunKind domain.RunKind `json:"kind"`

	// maxAttempts configures the maximum number of times River should retry the job.
	maxAttempts int
}

// Kind returns the River job kind used to register and dispatch the run worker.
func (args JobArgs) Kind() string { return "ExecuteRunJob" }

// InsertOpts returns the River options of a run job: its retry budget and a
// uniqueness constraint over every live job state.
func (args JobArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		MaxAttempts: args.maxAttempts,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
			ByState: []rivertype.JobState{
				rivertype.JobStateAvailable,
				rivertype.JobStateCompleted,
				rivertype.JobStatePending,
				rivertype.JobStateRunning,
				rivertype.JobStateRetryable,
				rivertype.JobStateScheduled,
			},
		},
	}
}
