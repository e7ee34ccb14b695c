package postgres_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"wastepolicy/pkg/domain"
)

func TestPgSQL_Policies(t *testing.T) {
	t.Parallel()

	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	userID := domain.UserID(uuid.New())
	runs, err := pgSQL.StoreRuns(ctx, pendingRun(userID, domain.RunKindTrain))
	require.NoError(t, err)

	stored, err := pgSQL.StorePolicy(ctx, domain.Policy{
		UserID:    userID,
		RunID:     runs[0].ID,
		Name:      "q-table",
		Algorithm: "q-learning",
		Artifact:  json.RawMessage(`{"alpha":0.1}`),
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, uuid.UUID(stored.ID))
	require.JSONEq(t, `{"alpha":0.1}`, string(stored.Artifact))

	got, err := pgSQL.PolicyByID(ctx, stored.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "q-learning", got.Algorithm)
	require.JSONEq(t, `{"alpha":0.1}`, string(got.Artifact))

	missing, err := pgSQL.PolicyByID(ctx, domain.PolicyID(uuid.New()))
	require.NoError(t, err)
	require.Nil(t, missing)

	time.Sleep(5 * time.Millisecond)
	_, err = pgSQL.StorePolicy(ctx, domain.Policy{UserID: userID, RunID: runs[0].ID, Name: "second", Algorithm: "q-learning"})
	require.NoError(t, err)

	page, err := pgSQL.UserPolicies(ctx, userID, time.Time{}, 1)
	require.NoError(t, err)
	require.Len(t, page.Policies, 1)
	require.Equal(t, "second", page.Policies[0].Name)
	require.NotNil(t, page.NextCursor)

	rest, err := pgSQL.UserPolicies(ctx, userID, *page.NextCursor, 1)
	require.NoError(t, err)
	require.Len(t, rest.Policies, 1)
	require.Nil(t, rest.NextCursor)
}
