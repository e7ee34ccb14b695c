package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"wastepolicy/pkg/domain"
	"wastepolicy/pkg/storage"
	"wastepolicy/pkg/storage/postgres"
)

func TestPgSQL_Begin(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()

	tx, err := pg.Begin(t.Context())
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	_, err = tx.(*postgres.PgSQL).Begin(t.Context())
	require.ErrorIs(t, err, storage.ErrAlreadyInTx)

	require.ErrorIs(t, pg.Commit(), storage.ErrNotInTx)
	require.ErrorIs(t, pg.Rollback(), storage.ErrNotInTx)
}

func TestPgSQL_CommitAndRollback(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	userID := domain.UserID(uuid.New())

	tests := []struct {
		name    string
		finish  func(storage.TxStorage) error
		visible bool
	}{
		{"commit", storage.TxStorage.Commit, true},
		{"rollback", storage.TxStorage.Rollback, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := pg.Begin(ctx)
			require.NoError(t, err)

			stored, err := tx.StoreRuns(ctx, pendingRun(userID, domain.RunKindSimulate))
			require.NoError(t, err)
			id := stored[0].ID

			// uncommitted rows stay invisible outside the tx
			outside, err := pg.RunByID(ctx, id)
			require.NoError(t, err)
			require.Nil(t, outside)

			require.NoError(t, tt.finish(tx))

			after, err := pg.RunByID(ctx, id)
			require.NoError(t, err)
			require.Equal(t, tt.visible, after != nil)
		})
	}
}

func TestPgSQL_WithTx(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	userID := domain.UserID(uuid.New())

	var kept domain.RunID
	err := pg.WithTx(ctx, func(s storage.AllStorage) error {
		stored, err := s.StoreRuns(ctx, pendingRun(userID, domain.RunKindTrain))
		if err != nil {
			return err
		}
		kept = stored[0].ID
		_, err = s.AddJob(ctx, probeJobArgs{RunID: kept.String()}, nil)

		return err
	})
	require.NoError(t, err)
	run, err := pg.RunByID(ctx, kept)
	require.NoError(t, err)
	require.NotNil(t, run)

	errEnqueue := errors.New("enqueue failed")
	var dropped domain.RunID
	err = pg.WithTx(ctx, func(s storage.AllStorage) error {
		stored, err := s.StoreRuns(ctx, pendingRun(userID, domain.RunKindTrain))
		if err != nil {
			return err
		}
		dropped = stored[0].ID

		return errEnqueue
	})
	require.ErrorIs(t, err, errEnqueue)
	run, err = pg.RunByID(ctx, dropped)
	require.NoError(t, err)
	require.Nil(t, run)
}
