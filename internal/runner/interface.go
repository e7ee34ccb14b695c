package runner

import (
	"context"

	"wastepolicy/pkg/domain"
	"wastepolicy/pkg/policyenv"
	"wastepolicy/pkg/storage"
)

//go:generate mockgen -package mockrunner -source=interface.go -destination=mock/mockrunner.go *
type Runner interface {
	Enqueue(ctx context.Context, userID domain.UserID, kind domain.RunKind, params domain.RunParams) (*domain.Run, error)
	UserRuns(ctx context.Context,
		userID domain.UserID,
		filter storage.RunFilter,
		cursor string,
		limit uint) ([]domain.Run, string, error)
	Result(ctx context.Context, userID domain.UserID, runID domain.RunID) (*domain.Run, error)
	Delete(ctx context.Context, userID domain.UserID, runID domain.RunID) error

	Policy(ctx context.Context, userID domain.UserID, policyID domain.PolicyID) (*domain.Policy, error)
	UserPolicies(ctx context.Context, userID domain.UserID, cursor string, limit uint) ([]domain.Policy, string, error)
	Act(ctx context.Context,
		userID domain.UserID,
		policyID domain.PolicyID,
		obs policyenv.Observation) (domain.Action, error)

	Execute(ctx context.Context, runID domain.RunID, attempt, maxAttempts int) error
}
