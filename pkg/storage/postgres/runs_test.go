package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"wastepolicy/pkg/domain"
	"wastepolicy/pkg/storage"
)

func pendingRun(userID domain.UserID, kind domain.RunKind) domain.Run {
	return domain.Run{
		UserID: userID,
		Kind:   kind,
		Status: domain.RunStatusPending,
		Params: domain.RunParams{Seed: 7, Barangays: []int{1, 2}},
	}
}

func TestPgSQL_StoreRuns(t *testing.T) {
	t.Parallel()

	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)

	ctx := context.Background()
	userID := domain.UserID(uuid.New())

	t.Run("store single run", func(t *testing.T) {
		t.Parallel()

		res, err := pgSQL.StoreRuns(ctx, pendingRun(userID, domain.RunKindSimulate))
		require.NoError(t, err)
		require.Len(t, res, 1)
		require.NotEqual(t, uuid.Nil, uuid.UUID(res[0].ID))
		require.Equal(t, domain.RunKindSimulate, res[0].Kind)
		require.Equal(t, []int{1, 2}, res[0].Params.Barangays)
		require.EqualValues(t, 0, res[0].Attempts)
		require.False(t, res[0].CreatedAt.IsZero())
	})

	t.Run("store multiple runs", func(t *testing.T) {
		t.Parallel()

		res, err := pgSQL.StoreRuns(ctx,
			pendingRun(userID, domain.RunKindTrain),
			pendingRun(userID, domain.RunKindCalibrate))
		require.NoError(t, err)
		require.Len(t, res, 2)
	})

	t.Run("store empty runs", func(t *testing.T) {
		t.Parallel()

		res, err := pgSQL.StoreRuns(ctx)
		require.NoError(t, err)
		require.Empty(t, res)
	})
}

func TestPgSQL_UpdateRunByID(t *testing.T) {
	t.Parallel()

	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	userID := domain.UserID(uuid.New())
	stored, err := pgSQL.StoreRuns(ctx, pendingRun(userID, domain.RunKindSimulate))
	require.NoError(t, err)
	id := stored[0].ID

	lastErr := "boom"
	updated, err := pgSQL.UpdateRunByID(ctx, id, storage.RunUpdates{
		Status:            domain.RunStatusRunning,
		LastError:         &lastErr,
		IncrementAttempts: true,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.Equal(t, domain.RunStatusRunning, updated.Status)
	require.Equal(t, "boom", updated.LastError)
	require.EqualValues(t, 1, updated.Attempts)
	require.False(t, updated.UpdatedAt.IsZero())

	cleared := ""
	result := domain.RunResult{Simulation: &domain.SimulationSummary{Ticks: 90, FinalCompliance: 0.5}}
	updated, err = pgSQL.UpdateRunByID(ctx, id, storage.RunUpdates{
		Status:    domain.RunStatusCompleted,
		Result:    &result,
		LastError: &cleared,
	})
	require.NoError(t, err)
	require.Equal(t, domain.RunStatusCompleted, updated.Status)
	require.Empty(t, updated.LastError)
	require.EqualValues(t, 1, updated.Attempts)
	require.NotNil(t, updated.Result.Simulation)
	require.Equal(t, 90, updated.Result.Simulation.Ticks)

	missing, err := pgSQL.UpdateRunByID(ctx, domain.RunID(uuid.New()), storage.RunUpdates{Status: domain.RunStatusFailed})
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestPgSQL_DeleteRun(t *testing.T) {
	t.Parallel()

	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	owner := domain.UserID(uuid.New())
	other := domain.UserID(uuid.New())
	stored, err := pgSQL.StoreRuns(ctx, pendingRun(owner, domain.RunKindSimulate))
	require.NoError(t, err)
	id := stored[0].ID

	deleted, err := pgSQL.DeleteRun(ctx, other, id)
	require.NoError(t, err)
	require.Nil(t, deleted)

	deleted, err = pgSQL.DeleteRun(ctx, owner, id)
	require.NoError(t, err)
	require.NotNil(t, deleted)
	require.False(t, deleted.DeletedAt.IsZero())

	again, err := pgSQL.DeleteRun(ctx, owner, id)
	require.NoError(t, err)
	require.Nil(t, again)

	got, err := pgSQL.RunByID(ctx, id)
	require.NoError(t, err)
	require.Nil(t, got)

	updated, err := pgSQL.UpdateRunByID(ctx, id, storage.RunUpdates{Status: domain.RunStatusRunning})
	require.NoError(t, err)
	require.Nil(t, updated)
}

func TestPgSQL_UserRuns(t *testing.T) {
	t.Parallel()

	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	userID := domain.UserID(uuid.New())
	for _, kind := range []domain.RunKind{domain.RunKindSimulate, domain.RunKindTrain, domain.RunKindSimulate} {
		_, err := pgSQL.StoreRuns(ctx, pendingRun(userID, kind))
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}
	_, err := pgSQL.StoreRuns(ctx, pendingRun(domain.UserID(uuid.New()), domain.RunKindSimulate))
	require.NoError(t, err)

	page, err := pgSQL.UserRuns(ctx, userID, storage.RunFilter{}, time.Time{}, 2)
	require.NoError(t, err)
	require.Len(t, page.Runs, 2)
	require.NotNil(t, page.NextCursor)
	require.True(t, page.Runs[0].CreatedAt.After(page.Runs[1].CreatedAt))

	rest, err := pgSQL.UserRuns(ctx, userID, storage.RunFilter{}, *page.NextCursor, 2)
	require.NoError(t, err)
	require.Len(t, rest.Runs, 1)
	require.Nil(t, rest.NextCursor)

	sims, err := pgSQL.UserRuns(ctx, userID, storage.RunFilter{Kind: domain.RunKindSimulate}, time.Time{}, 10)
	require.NoError(t, err)
	require.Len(t, sims.Runs, 2)

	done, err := pgSQL.UserRuns(ctx, userID, storage.RunFilter{Status: domain.RunStatusCompleted}, time.Time{}, 10)
	require.NoError(t, err)
	require.Empty(t, done.Runs)
}

func TestPgSQL_RunLookups(t *testing.T) {
	t.Parallel()

	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	owner := domain.UserID(uuid.New())
	stored, err := pgSQL.StoreRuns(ctx, pendingRun(owner, domain.RunKindSensitivity))
	require.NoError(t, err)
	id := stored[0].ID

	got, err := pgSQL.UserRunByID(ctx, owner, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, domain.RunKindSensitivity, got.Kind)

	got, err = pgSQL.UserRunByID(ctx, domain.UserID(uuid.New()), id)
	require.NoError(t, err)
	require.Nil(t, got)

	got, err = pgSQL.RunByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, owner, got.UserID)
}
