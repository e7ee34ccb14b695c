package domain

import "github.com/google/uuid"

// UserID identifies the owner of runs and policies. It is the subject of the
// bearer token and is never stored anywhere but on the rows it owns.
type UserID uuid.UUID

func (id UserID) String() string   { return uuid.UUID(id).String() }
func (id RunID) String() string    { return uuid.UUID(id).String() }
func (id PolicyID) String() string { return uuid.UUID(id).String() }

func (id UserID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }
func (id RunID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }
func (id PolicyID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error   { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *RunID) UnmarshalText(b []byte) error    { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *PolicyID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }

// ParseUserID parses the textual form of a user ID.
func ParseUserID(s string) (UserID, error) {
	id, err := uuid.Parse(s)

	return UserID(id), err //nolint: wrapcheck
}

// ParseRunID parses the textual form of a run ID.
func ParseRunID(s string) (RunID, error) {
	id, err := uuid.Parse(s)

	return RunID(id), err //nolint: wrapcheck
}

// ParsePolicyID parses the textual form of a policy ID.
func ParsePolicyID(s string) (PolicyID, error) {
	id, err := uuid.Parse(s)

	return PolicyID(id), err //nolint: wrapcheck
}
