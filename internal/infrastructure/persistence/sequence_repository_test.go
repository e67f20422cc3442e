package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seedledger/backend/internal/domain/ledger"
)

func TestGormSequenceAllocator_NextSeqNo(t *testing.T) {
	db := setupLedgerTestDB(t)
	allocator := NewGormSequenceAllocator(db)
	ctx := context.Background()

	t.Run("numbering is dense from 1", func(t *testing.T) {
		series := ledgerTestSeries()
		for want := 1; want <= 5; want++ {
			got, err := allocator.NextSeqNo(ctx, series, ledger.FlowIn)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	})

	t.Run("flow classes count independently", func(t *testing.T) {
		series := ledgerTestSeries()

		in1, err := allocator.NextSeqNo(ctx, series, ledger.FlowIn)
		require.NoError(t, err)
		in2, err := allocator.NextSeqNo(ctx, series, ledger.FlowIn)
		require.NoError(t, err)
		out1, err := allocator.NextSeqNo(ctx, series, ledger.FlowOut)
		require.NoError(t, err)

		assert.Equal(t, 1, in1)
		assert.Equal(t, 2, in2)
		assert.Equal(t, 1, out1, "outbound numbering starts fresh")
	})

	t.Run("series count independently", func(t *testing.T) {
		first := ledgerTestSeries()
		second := ledgerTestSeries()

		_, err := allocator.NextSeqNo(ctx, first, ledger.FlowIn)
		require.NoError(t, err)

		got, err := allocator.NextSeqNo(ctx, second, ledger.FlowIn)
		require.NoError(t, err)
		assert.Equal(t, 1, got)
	})

	t.Run("rejects incomplete series", func(t *testing.T) {
		_, err := allocator.NextSeqNo(ctx, ledger.Series{}, ledger.FlowIn)
		require.Error(t, err)
	})

	t.Run("rejects unknown flow class", func(t *testing.T) {
		_, err := allocator.NextSeqNo(ctx, ledgerTestSeries(), ledger.FlowClass("SIDEWAYS"))
		require.Error(t, err)
	})
}

func TestGormSequenceAllocator_CounterRow(t *testing.T) {
	db := setupLedgerTestDB(t)
	allocator := NewGormSequenceAllocator(db)
	ctx := context.Background()
	series := ledgerTestSeries()

	for i := 0; i < 3; i++ {
		_, err := allocator.NextSeqNo(ctx, series, ledger.FlowIn)
		require.NoError(t, err)
	}

	var counter SequenceCounter
	err := db.Where("owner_id = ? AND flow_class = ?", series.OwnerID, string(ledger.FlowIn)).First(&counter).Error
	require.NoError(t, err)
	assert.Equal(t, 3, counter.LastNo, "one counter row tracks the last number issued")
}

func TestGormSequenceAllocator_LockSeries(t *testing.T) {
	db := setupLedgerTestDB(t)
	allocator := NewGormSequenceAllocator(db)
	ctx := context.Background()

	t.Run("rejects incomplete series", func(t *testing.T) {
		err := allocator.LockSeries(ctx, ledger.Series{})
		require.Error(t, err)
	})

	t.Run("succeeds off postgres where the counter row is the lock", func(t *testing.T) {
		err := allocator.LockSeries(ctx, ledgerTestSeries())
		require.NoError(t, err)
	})
}
