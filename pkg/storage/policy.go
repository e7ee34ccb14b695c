package storage

import (
	"context"
	"time"

	"wastepolicy/pkg/domain"
)

// UserPolicies groups a page of policies returned for a user.
type UserPolicies struct {
	Policies   []domain.Policy
	NextCursor *time.Time
}

// PolicyStorage persists trained policy artifacts.
type PolicyStorage interface {
	// StorePolicy inserts a policy and returns the stored row.
	StorePolicy(ctx context.Context, policy domain.Policy) (*domain.Policy, error)
	// PolicyByID fetches a policy by ID. Returns nil when not found.
	PolicyByID(ctx context.Context, ID domain.PolicyID) (*domain.Policy, error)
	// UserPolicies returns a page of policies owned by the user, newest first.
	// Artifacts are not loaded.
	UserPolicies(ctx context.Context, userID domain.UserID, cursor time.Time, limit uint) (UserPolicies, error)
}
