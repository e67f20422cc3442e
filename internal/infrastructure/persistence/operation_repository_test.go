package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seedledger/backend/internal/domain/cleaning"
	"github.com/seedledger/backend/internal/domain/shared"
)

func newStoredDraft(t *testing.T, repo *GormOperationRepository, entryID uuid.UUID) *cleaning.CleaningOperation {
	t.Helper()
	op, err := cleaning.NewCleaningOperation(entryID, cleaning.FlowCleaning, ledgerTestDate(15), decimal.NewFromInt(600), decimal.NewFromInt(98), "")
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), op))
	return op
}

func TestGormOperationRepository_SaveAndFindByID(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewGormOperationRepository(db)
	ctx := context.Background()

	t.Run("round-trips an operation with its quality checks", func(t *testing.T) {
		op, err := cleaning.NewCleaningOperation(uuid.New(), cleaning.FlowRecleaning, ledgerTestDate(15), decimal.NewFromInt(300), decimal.NewFromInt(99), "purity below target")
		require.NoError(t, err)
		_, err = op.AddQualityCheck(decimal.NewFromInt(100), 450, 50)
		require.NoError(t, err)
		_, err = op.AddQualityCheck(decimal.NewFromInt(150), 500, 0)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, op))

		found, err := repo.FindByID(ctx, op.ID)
		require.NoError(t, err)
		assert.Equal(t, cleaning.FlowRecleaning, found.Flow)
		assert.Equal(t, cleaning.StatusDraft, found.Status)
		assert.Equal(t, "purity below target", found.RecleaningReason)
		require.Len(t, found.QualityChecks, 2)
		assert.Equal(t, 1, found.QualityChecks[0].Index)
		assert.Equal(t, 2, found.QualityChecks[1].Index)
		assert.True(t, found.WeightOut.Equal(decimal.NewFromInt(240)))
	})

	t.Run("returns not found for unknown ID", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("for-update read loads the check stream too", func(t *testing.T) {
		op := newStoredDraft(t, repo, uuid.New())
		_, err := op.AddQualityCheck(decimal.NewFromInt(100), 500, 0)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, op))

		found, err := repo.FindByIDForUpdate(ctx, op.ID)
		require.NoError(t, err)
		require.Len(t, found.QualityChecks, 1)
	})
}

func TestGormOperationRepository_FindByEntry(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewGormOperationRepository(db)
	ctx := context.Background()
	entryID := uuid.New()

	first := newStoredDraft(t, repo, entryID)
	second := newStoredDraft(t, repo, entryID)
	newStoredDraft(t, repo, uuid.New())

	ops, err := repo.FindByEntry(ctx, entryID)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	ids := []uuid.UUID{ops[0].ID, ops[1].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)
}

func TestGormOperationRepository_CountPostedByEntry(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewGormOperationRepository(db)
	ctx := context.Background()
	entryID := uuid.New()

	draft := newStoredDraft(t, repo, entryID)
	posted := newStoredDraft(t, repo, entryID)
	require.NoError(t, posted.MarkPosted(time.Now(), nil))
	require.NoError(t, repo.SaveWithLock(ctx, posted, 1))

	count, err := repo.CountPostedByEntry(ctx, entryID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	found, err := repo.FindByID(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, cleaning.StatusDraft, found.Status)
}

func TestGormOperationRepository_List(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewGormOperationRepository(db)
	ctx := context.Background()
	entryID := uuid.New()

	newStoredDraft(t, repo, entryID)
	posted := newStoredDraft(t, repo, entryID)
	require.NoError(t, posted.MarkPosted(time.Now(), nil))
	require.NoError(t, repo.SaveWithLock(ctx, posted, 1))

	t.Run("filters by status", func(t *testing.T) {
		status := cleaning.StatusPosted
		ops, err := repo.List(ctx, cleaning.OperationFilter{Status: &status})
		require.NoError(t, err)
		require.Len(t, ops, 1)
		assert.Equal(t, posted.ID, ops[0].ID)
	})

	t.Run("filters by ledger entry", func(t *testing.T) {
		count, err := repo.Count(ctx, cleaning.OperationFilter{LedgerEntryID: &entryID})
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}

func TestGormOperationRepository_SaveWithLock(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewGormOperationRepository(db)
	ctx := context.Background()

	t.Run("persists posting at the expected version", func(t *testing.T) {
		op := newStoredDraft(t, repo, uuid.New())
		operatorID := uuid.New()
		require.NoError(t, op.MarkPosted(time.Now(), &operatorID))

		require.NoError(t, repo.SaveWithLock(ctx, op, 1))

		found, err := repo.FindByID(ctx, op.ID)
		require.NoError(t, err)
		assert.Equal(t, cleaning.StatusPosted, found.Status)
		assert.NotNil(t, found.PostedAt)
		require.NotNil(t, found.OperatorID)
		assert.Equal(t, operatorID, *found.OperatorID)
		assert.Equal(t, 2, found.GetVersion())
	})

	t.Run("stale version is a concurrency conflict", func(t *testing.T) {
		op := newStoredDraft(t, repo, uuid.New())
		require.NoError(t, op.MarkPosted(time.Now(), nil))

		err := repo.SaveWithLock(ctx, op, 42)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("upserts new quality checks alongside", func(t *testing.T) {
		op := newStoredDraft(t, repo, uuid.New())
		_, err := op.AddQualityCheck(decimal.NewFromInt(100), 450, 50)
		require.NoError(t, err)

		require.NoError(t, repo.SaveWithLock(ctx, op, 1))

		found, err := repo.FindByID(ctx, op.ID)
		require.NoError(t, err)
		require.Len(t, found.QualityChecks, 1)
		assert.True(t, found.WeightOut.Equal(decimal.NewFromInt(90)))
	})
}
