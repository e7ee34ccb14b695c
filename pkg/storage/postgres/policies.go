package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"wastepolicy/pkg/domain"
	"wastepolicy/pkg/storage"
)

const (
	policiesTable = "policies"
)

func (p *PgSQL) StorePolicy(ctx context.Context, policy domain.Policy) (*domain.Policy, error) {
	var row PgPolicy
	row.FromDomain(policy)

	var stored PgPolicy
	if _, err := p.Builder.Insert(policiesTable).
		Rows(row).
		Returning(&PgPolicy{}).
		Executor().ScanStructContext(ctx, &stored); err != nil {
		return nil, fmt.Errorf("could not store policy into pg: %w", err)
	}

	return stored.ToDomain(), nil
}

func (p *PgSQL) PolicyByID(ctx context.Context, id domain.PolicyID) (*domain.Policy, error) {
	var row PgPolicy
	found, err := p.Builder.From(policiesTable).
		Where(goqu.I("id").Eq(uuid.UUID(id))).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch policy by id: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) UserPolicies(ctx context.Context,
	userID domain.UserID,
	cursor time.Time,
	limit uint) (storage.UserPolicies, error) {
	w := []goqu.Expression{goqu.I("user_id").Eq(uuid.UUID(userID))}
	if !cursor.IsZero() {
		w = append(w, goqu.I("created_at").Lt(cursor))
	}

	var rows []PgPolicy
	if err := p.Builder.From(policiesTable).
		Select("id", "user_id", "run_id", "name", "algorithm", goqu.L("'{}'::jsonb").As("artifact"), "created_at").
		Where(w...).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Desc()).
		Limit(limit+1).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return storage.UserPolicies{}, fmt.Errorf("could not fetch user policies from pg: %w", err)
	}

	var nextCursor *time.Time
	if uint(len(rows)) > limit {
		rows = rows[:limit]
		nextCursor = &rows[len(rows)-1].CreatedAt
	}

	out := make([]domain.Policy, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row.ToDomain())
	}

	return storage.UserPolicies{Policies: out, NextCursor: nextCursor}, nil
}
