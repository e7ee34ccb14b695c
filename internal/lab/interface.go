package lab

import (
	"context"

	"wastepolicy/pkg/domain"
	"wastepolicy/pkg/rl"
)

//go:generate mockgen -package mocklab -source=interface.go -destination=mock/mocklab.go *
type Executor interface {
	// Execute runs the experiment described by run. policy is the stored
	// policy referenced by run.Params.PolicyID, if any.
	Execute(ctx context.Context, run domain.Run, policy *domain.Policy) (Outcome, error)
}

// Outcome is the result of an executed run.
type Outcome struct {
	Result domain.RunResult
	// Learner is set by training runs and holds the best learner found.
	Learner *rl.QLearner
}

