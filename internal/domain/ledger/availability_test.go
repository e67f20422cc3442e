package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailableCleaned(t *testing.T) {
	series := testSeries()

	t.Run("empty series has nothing available", func(t *testing.T) {
		assert.True(t, AvailableCleaned(nil).IsZero())
		assert.True(t, AvailableCleaned([]LedgerEntry{}).IsZero())
	})

	t.Run("sums cleaned totals across intakes", func(t *testing.T) {
		a := mustIntake(t, series, "A1", 10, 1, 1, 1000)
		require.NoError(t, (&a).ApplyCleaningResult(decimal.NewFromInt(500), decimal.NewFromFloat(475.5), decimal.NewFromFloat(24.5)))
		b := mustIntake(t, series, "B2", 11, 2, 2, 800)
		require.NoError(t, (&b).ApplyCleaningResult(decimal.NewFromInt(200), decimal.NewFromInt(190), decimal.NewFromInt(10)))

		total := AvailableCleaned([]LedgerEntry{a, b})
		assert.True(t, total.Equal(decimal.NewFromFloat(665.5)), "got %s", total)
	})

	t.Run("withdrawals net out through their negative totals", func(t *testing.T) {
		a := mustIntake(t, series, "A1", 10, 1, 1, 1000)
		require.NoError(t, (&a).ApplyCleaningResult(decimal.NewFromInt(1000), decimal.NewFromInt(950), decimal.NewFromInt(50)))
		out := mustWithdrawal(t, series, "A1", 11, 1, 2, 300)

		total := AvailableCleaned([]LedgerEntry{a, out})
		assert.True(t, total.Equal(decimal.NewFromInt(650)))
	})

	t.Run("fully withdrawn series reports zero", func(t *testing.T) {
		a := mustIntake(t, series, "A1", 10, 1, 1, 100)
		require.NoError(t, (&a).ApplyCleaningResult(decimal.NewFromInt(100), decimal.NewFromInt(90), decimal.NewFromInt(10)))
		out := mustWithdrawal(t, series, "A1", 11, 1, 2, 90)

		assert.True(t, AvailableCleaned([]LedgerEntry{a, out}).IsZero())
	})

	t.Run("rounds to two decimal places", func(t *testing.T) {
		a := mustIntake(t, series, "A1", 10, 1, 1, 10)
		require.NoError(t, (&a).ApplyCleaningResult(decimal.NewFromFloat(1.234), decimal.NewFromFloat(1.234), decimal.Zero))

		total := AvailableCleaned([]LedgerEntry{a})
		assert.True(t, total.Equal(decimal.NewFromFloat(1.23)), "got %s", total)
	})
}
