package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"wastepolicy/pkg/domain"
)

type PgRun struct {
	ID     uuid.UUID `db:"id"      goqu:"skipinsert"`
	UserID uuid.UUID `db:"user_id"`

	Kind   string `db:"kind"`
	Status string `db:"status"`
	Params []byte `db:"params"`
	Result []byte `db:"result" goqu:"skipinsert"`

	Attempts  uint           `db:"attempts"   goqu:"skipinsert"`
	LastError sql.NullString `db:"last_error" goqu:"skipinsert"`

	CreatedAt time.Time    `db:"created_at" goqu:"skipinsert"`
	UpdatedAt sql.NullTime `db:"updated_at" goqu:"skipinsert"`
	DeletedAt sql.NullTime `db:"deleted_at" goqu:"skipinsert"`
}

func (p *PgRun) ToDomain() (*domain.Run, error) {
	var params domain.RunParams
	if len(p.Params) > 0 {
		if err := json.Unmarshal(p.Params, &params); err != nil {
			return nil, fmt.Errorf("could not unmarshal run params: %w", err)
		}
	}

	var result domain.RunResult
	if len(p.Result) > 0 {
		if err := json.Unmarshal(p.Result, &result); err != nil {
			return nil, fmt.Errorf("could not unmarshal run result: %w", err)
		}
	}

	return &domain.Run{
		ID:        domain.RunID(p.ID),
		UserID:    domain.UserID(p.UserID),
		Kind:      domain.RunKind(p.Kind),
		Params:    params,
		Status:    domain.RunStatus(p.Status),
		Result:    result,
		Attempts:  p.Attempts,
		LastError: p.LastError.String,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt.Time,
		DeletedAt: p.DeletedAt.Time,
	}, nil
}

func (p *PgRun) FromDomain(run domain.Run) error {
	params, err := json.Marshal(run.Params)
	if err != nil {
		return fmt.Errorf("could not marshal run params: %w", err)
	}

	*p = PgRun{
		ID:       uuid.UUID(run.ID),
		UserID:   uuid.UUID(run.UserID),
		Kind:     string(run.Kind),
		Status:   string(run.Status),
		Params:   params,
		Attempts: run.Attempts,
		LastError: sql.NullString{
			String: run.LastError,
			Valid:  run.LastError != "",
		},
		CreatedAt: run.CreatedAt,
		UpdatedAt: sql.NullTime{
			Time:  run.UpdatedAt,
			Valid: !run.UpdatedAt.IsZero(),
		},
		DeletedAt: sql.NullTime{
			Time:  run.DeletedAt,
			Valid: !run.DeletedAt.IsZero(),
		},
	}

	return nil
}

func domainRunsToPg(runs []domain.Run) ([]PgRun, error) {
	out := make([]PgRun, len(runs))
	for i := range out {
		if err := out[i].FromDomain(runs[i]); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func pgRunsToDomain(runs []PgRun) ([]domain.Run, error) {
	out := make([]domain.Run, 0, len(runs))
	for _, run := range runs {
		d, err := run.ToDomain()
		if err != nil {
			return nil, err
		}

		out = append(out, *d)
	}

	return out, nil
}

type PgPolicy struct {
	ID     uuid.UUID `db:"id"      goqu:"skipinsert"`
	UserID uuid.UUID `db:"user_id"`
	RunID  uuid.UUID `db:"run_id"`

	Name      string `db:"name"`
	Algorithm string `db:"algorithm"`
	Artifact  []byte `db:"artifact"`

	CreatedAt time.Time `db:"created_at" goqu:"skipinsert"`
}

func (p *PgPolicy) ToDomain() *domain.Policy {
	return &domain.Policy{
		ID:        domain.PolicyID(p.ID),
		UserID:    domain.UserID(p.UserID),
		RunID:     domain.RunID(p.RunID),
		Name:      p.Name,
		Algorithm: p.Algorithm,
		Artifact:  json.RawMessage(p.Artifact),
		CreatedAt: p.CreatedAt,
	}
}

func (p *PgPolicy) FromDomain(policy domain.Policy) {
	artifact := policy.Artifact
	if len(artifact) == 0 {
		artifact = json.RawMessage(`{}`)
	}

	*p = PgPolicy{
		ID:        uuid.UUID(policy.ID),
		UserID:    uuid.UUID(policy.UserID),
		RunID:     uuid.UUID(policy.RunID),
		Name:      policy.Name,
		Algorithm: policy.Algorithm,
		Artifact:  []byte(artifact),
		CreatedAt: policy.CreatedAt,
	}
}
