package cleaning

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seedledger/backend/internal/domain/shared"
)

func workDate() time.Time {
	return time.Date(2026, time.May, 20, 0, 0, 0, 0, time.UTC)
}

func draftOperation(t *testing.T) *CleaningOperation {
	t.Helper()
	op, err := NewCleaningOperation(uuid.New(), FlowCleaning, workDate(), decimal.NewFromInt(1000), decimal.NewFromInt(98), "")
	require.NoError(t, err)
	return op
}

func TestNewCleaningOperation(t *testing.T) {
	entryID := uuid.New()

	t.Run("creates draft cleaning operation", func(t *testing.T) {
		op, err := NewCleaningOperation(entryID, FlowCleaning, workDate(), decimal.NewFromFloat(850.125), decimal.NewFromFloat(97.5), "")
		require.NoError(t, err)
		require.NotNil(t, op)

		assert.Equal(t, entryID, op.LedgerEntryID)
		assert.Equal(t, FlowCleaning, op.Flow)
		assert.Equal(t, StatusDraft, op.Status)
		assert.True(t, op.WeightIn.Equal(decimal.NewFromFloat(850.125)))
		assert.True(t, op.WeightOut.IsZero())
		assert.True(t, op.Rejects.IsZero())
		assert.True(t, op.TargetPurity.Equal(decimal.NewFromFloat(97.5)))
		assert.Nil(t, op.PostedAt)
		assert.Nil(t, op.OperatorID)
		assert.Empty(t, op.QualityChecks)
		assert.Equal(t, 1, op.GetVersion())
	})

	t.Run("creates recleaning operation with reason", func(t *testing.T) {
		op, err := NewCleaningOperation(entryID, FlowRecleaning, workDate(), decimal.NewFromInt(200), decimal.NewFromInt(99), "purity below target")
		require.NoError(t, err)
		assert.Equal(t, FlowRecleaning, op.Flow)
		assert.Equal(t, "purity below target", op.RecleaningReason)
	})

	t.Run("publishes OperationDrafted event", func(t *testing.T) {
		op := draftOperation(t)
		events := op.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventOperationDrafted, events[0].EventType())
	})

	t.Run("fails without ledger entry", func(t *testing.T) {
		_, err := NewCleaningOperation(uuid.Nil, FlowCleaning, workDate(), decimal.NewFromInt(100), decimal.NewFromInt(98), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ledger entry ID is required")
	})

	t.Run("fails with unknown flow", func(t *testing.T) {
		_, err := NewCleaningOperation(entryID, OperationFlow("POLISHING"), workDate(), decimal.NewFromInt(100), decimal.NewFromInt(98), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid operation flow")
	})

	t.Run("fails with zero work date", func(t *testing.T) {
		_, err := NewCleaningOperation(entryID, FlowCleaning, time.Time{}, decimal.NewFromInt(100), decimal.NewFromInt(98), "")
		require.Error(t, err)
	})

	t.Run("fails with non-positive input weight", func(t *testing.T) {
		_, err := NewCleaningOperation(entryID, FlowCleaning, workDate(), decimal.Zero, decimal.NewFromInt(98), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "input weight must be positive")
	})

	t.Run("fails with purity out of range", func(t *testing.T) {
		_, err := NewCleaningOperation(entryID, FlowCleaning, workDate(), decimal.NewFromInt(100), decimal.NewFromInt(101), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "purity must be between 0 and 100")

		_, err = NewCleaningOperation(entryID, FlowCleaning, workDate(), decimal.NewFromInt(100), decimal.NewFromInt(-1), "")
		require.Error(t, err)
	})

	t.Run("recleaning requires a reason", func(t *testing.T) {
		_, err := NewCleaningOperation(entryID, FlowRecleaning, workDate(), decimal.NewFromInt(100), decimal.NewFromInt(98), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "recleaning requires a reason")
	})

	t.Run("first-pass cleaning rejects a reason", func(t *testing.T) {
		_, err := NewCleaningOperation(entryID, FlowCleaning, workDate(), decimal.NewFromInt(100), decimal.NewFromInt(98), "left over")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "only applies to recleaning")
	})
}

func TestCleaningOperation_UpdateDraft(t *testing.T) {
	t.Run("replaces editable figures", func(t *testing.T) {
		op := draftOperation(t)
		err := op.UpdateDraft(decimal.NewFromInt(900), decimal.NewFromInt(860), decimal.NewFromInt(38), decimal.NewFromInt(92), decimal.NewFromFloat(98.2))
		require.NoError(t, err)

		assert.True(t, op.WeightIn.Equal(decimal.NewFromInt(900)))
		assert.True(t, op.WeightOut.Equal(decimal.NewFromInt(860)))
		assert.True(t, op.Rejects.Equal(decimal.NewFromInt(38)))
		assert.True(t, op.PurityBefore.Equal(decimal.NewFromInt(92)))
		assert.True(t, op.PurityAfter.Equal(decimal.NewFromFloat(98.2)))
		assert.Equal(t, 2, op.GetVersion())
	})

	t.Run("fails once posted", func(t *testing.T) {
		op := draftOperation(t)
		require.NoError(t, op.MarkPosted(time.Now(), nil))

		err := op.UpdateDraft(decimal.NewFromInt(900), decimal.NewFromInt(860), decimal.NewFromInt(38), decimal.NewFromInt(92), decimal.NewFromInt(98))
		assert.ErrorIs(t, err, shared.ErrAlreadyPosted)
	})

	t.Run("rejects negative output or rejects", func(t *testing.T) {
		op := draftOperation(t)
		err := op.UpdateDraft(decimal.NewFromInt(900), decimal.NewFromInt(-1), decimal.Zero, decimal.Zero, decimal.Zero)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must not be negative")
	})

	t.Run("rejects invalid purity", func(t *testing.T) {
		op := draftOperation(t)
		err := op.UpdateDraft(decimal.NewFromInt(900), decimal.NewFromInt(860), decimal.Zero, decimal.NewFromInt(120), decimal.Zero)
		require.Error(t, err)
	})
}

func TestCleaningOperation_AddQualityCheck(t *testing.T) {
	t.Run("assigns dense indexes and accumulates output", func(t *testing.T) {
		op := draftOperation(t)

		qc1, err := op.AddQualityCheck(decimal.NewFromInt(100), 450, 50)
		require.NoError(t, err)
		assert.Equal(t, 1, qc1.Index)
		assert.Equal(t, op.ID, qc1.OperationID)

		qc2, err := op.AddQualityCheck(decimal.NewFromInt(200), 500, 0)
		require.NoError(t, err)
		assert.Equal(t, 2, qc2.Index)

		// 100 * 90% + 200 * 100%
		assert.True(t, op.WeightOut.Equal(decimal.NewFromInt(290)), "got %s", op.WeightOut)
		require.Len(t, op.QualityChecks, 2)
	})

	t.Run("fails once posted", func(t *testing.T) {
		op := draftOperation(t)
		require.NoError(t, op.MarkPosted(time.Now(), nil))

		_, err := op.AddQualityCheck(decimal.NewFromInt(100), 450, 50)
		assert.ErrorIs(t, err, shared.ErrAlreadyPosted)
	})

	t.Run("rejects invalid sample", func(t *testing.T) {
		op := draftOperation(t)
		_, err := op.AddQualityCheck(decimal.Zero, 450, 50)
		require.Error(t, err)
		assert.Empty(t, op.QualityChecks)
	})
}

func TestCleaningOperation_CheckMassBalance(t *testing.T) {
	setFigures := func(t *testing.T, out, rejects float64) *CleaningOperation {
		op := draftOperation(t)
		require.NoError(t, op.UpdateDraft(decimal.NewFromInt(1000), decimal.NewFromFloat(out), decimal.NewFromFloat(rejects), decimal.Zero, decimal.Zero))
		return op
	}

	t.Run("exact balance passes", func(t *testing.T) {
		op := setFigures(t, 950, 50)
		assert.NoError(t, op.CheckMassBalance())
	})

	t.Run("deviation at tolerance passes", func(t *testing.T) {
		// tolerance for 1000 kg in is 7.5 kg
		op := setFigures(t, 942.5, 50)
		assert.NoError(t, op.CheckMassBalance())
	})

	t.Run("deviation just over tolerance fails", func(t *testing.T) {
		op := setFigures(t, 942.4, 50)
		assert.ErrorIs(t, op.CheckMassBalance(), shared.ErrMassBalance)
	})

	t.Run("surplus over input also fails", func(t *testing.T) {
		op := setFigures(t, 1000, 10)
		assert.ErrorIs(t, op.CheckMassBalance(), shared.ErrMassBalance)
	})
}

func TestCleaningOperation_ValidateForPosting(t *testing.T) {
	balanced := func(t *testing.T) *CleaningOperation {
		op := draftOperation(t)
		require.NoError(t, op.UpdateDraft(decimal.NewFromInt(1000), decimal.NewFromInt(950), decimal.NewFromInt(50), decimal.NewFromInt(92), decimal.NewFromInt(98)))
		return op
	}

	balancedRecleaning := func(t *testing.T) *CleaningOperation {
		op, err := NewCleaningOperation(uuid.New(), FlowRecleaning, workDate(), decimal.NewFromInt(100), decimal.NewFromInt(98), "residue")
		require.NoError(t, err)
		require.NoError(t, op.UpdateDraft(decimal.NewFromInt(100), decimal.NewFromInt(95), decimal.NewFromInt(5), decimal.Zero, decimal.Zero))
		return op
	}

	t.Run("passes against sufficient raw stock", func(t *testing.T) {
		op := balanced(t)
		assert.NoError(t, op.ValidateForPosting(decimal.NewFromInt(1000), decimal.Zero))
	})

	t.Run("fails when already posted", func(t *testing.T) {
		op := balanced(t)
		require.NoError(t, op.MarkPosted(time.Now(), nil))
		assert.ErrorIs(t, op.ValidateForPosting(decimal.NewFromInt(5000), decimal.Zero), shared.ErrAlreadyPosted)
	})

	t.Run("fails when input exceeds raw remaining", func(t *testing.T) {
		op := balanced(t)
		assert.ErrorIs(t, op.ValidateForPosting(decimal.NewFromFloat(999.999), decimal.Zero), shared.ErrInsufficientRawStock)
	})

	t.Run("fails on mass balance violation", func(t *testing.T) {
		op := draftOperation(t)
		require.NoError(t, op.UpdateDraft(decimal.NewFromInt(1000), decimal.NewFromInt(900), decimal.NewFromInt(50), decimal.Zero, decimal.Zero))
		assert.ErrorIs(t, op.ValidateForPosting(decimal.NewFromInt(2000), decimal.Zero), shared.ErrMassBalance)
	})

	t.Run("recleaning draws on the cleaned pool, not raw", func(t *testing.T) {
		op := balancedRecleaning(t)
		assert.NoError(t, op.ValidateForPosting(decimal.Zero, decimal.NewFromInt(100)))
	})

	t.Run("recleaning fails when input exceeds the cleaned total", func(t *testing.T) {
		op := balancedRecleaning(t)
		err := op.ValidateForPosting(decimal.NewFromInt(5000), decimal.NewFromFloat(99.999))
		assert.ErrorIs(t, err, shared.ErrInsufficientCleanedStock)
	})

	t.Run("recleaning without reason fails", func(t *testing.T) {
		op := balancedRecleaning(t)
		op.RecleaningReason = ""
		err := op.ValidateForPosting(decimal.Zero, decimal.NewFromInt(200))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "recleaning requires a reason")
	})
}

func TestCleaningOperation_SourcePool(t *testing.T) {
	raw := decimal.NewFromInt(700)
	cleaned := decimal.NewFromInt(300)

	first, err := NewCleaningOperation(uuid.New(), FlowCleaning, workDate(), decimal.NewFromInt(100), decimal.NewFromInt(98), "")
	require.NoError(t, err)
	assert.True(t, first.SourcePool(raw, cleaned).Equal(raw))

	repeat, err := NewCleaningOperation(uuid.New(), FlowRecleaning, workDate(), decimal.NewFromInt(100), decimal.NewFromInt(98), "residue")
	require.NoError(t, err)
	assert.True(t, repeat.SourcePool(raw, cleaned).Equal(cleaned))
}

func TestCleaningOperation_MarkPosted(t *testing.T) {
	t.Run("transitions to posted and stamps operator", func(t *testing.T) {
		op := draftOperation(t)
		op.ClearDomainEvents()
		operatorID := uuid.New()
		at := time.Now()

		err := op.MarkPosted(at, &operatorID)
		require.NoError(t, err)

		assert.True(t, op.IsPosted())
		require.NotNil(t, op.PostedAt)
		assert.True(t, op.PostedAt.Equal(at))
		require.NotNil(t, op.OperatorID)
		assert.Equal(t, operatorID, *op.OperatorID)

		events := op.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventOperationPosted, events[0].EventType())
	})

	t.Run("posting twice fails with AlreadyPosted", func(t *testing.T) {
		op := draftOperation(t)
		require.NoError(t, op.MarkPosted(time.Now(), nil))
		assert.ErrorIs(t, op.MarkPosted(time.Now(), nil), shared.ErrAlreadyPosted)
	})
}

func TestCleaningOperation_MarkReversed(t *testing.T) {
	t.Run("returns a posted operation to draft", func(t *testing.T) {
		op := draftOperation(t)
		require.NoError(t, op.MarkPosted(time.Now(), nil))
		op.ClearDomainEvents()

		err := op.MarkReversed()
		require.NoError(t, err)
		assert.Equal(t, StatusDraft, op.Status)
		assert.Nil(t, op.PostedAt)

		events := op.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventOperationReversed, events[0].EventType())
	})

	t.Run("fails on a draft", func(t *testing.T) {
		op := draftOperation(t)
		assert.ErrorIs(t, op.MarkReversed(), shared.ErrInvalidState)
	})
}
