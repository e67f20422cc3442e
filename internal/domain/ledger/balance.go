package ledger

import "github.com/shopspring/decimal"

// BalanceSet holds the six running totals describing one point in a
// series: stock, cleaned and rejects, each totalled across the whole
// seed type and across the grade-matched subset.
type BalanceSet struct {
	StockByType    decimal.Decimal `json:"stock_by_type"`
	StockByGrade   decimal.Decimal `json:"stock_by_grade"`
	CleanedByType  decimal.Decimal `json:"cleaned_by_type"`
	CleanedByGrade decimal.Decimal `json:"cleaned_by_grade"`
	RejectsByType  decimal.Decimal `json:"rejects_by_type"`
	RejectsByGrade decimal.Decimal `json:"rejects_by_grade"`
}

// ZeroBalanceSet returns a balance set with all totals at zero
func ZeroBalanceSet() BalanceSet {
	return BalanceSet{
		StockByType:    decimal.Zero,
		StockByGrade:   decimal.Zero,
		CleanedByType:  decimal.Zero,
		CleanedByGrade: decimal.Zero,
		RejectsByType:  decimal.Zero,
		RejectsByGrade: decimal.Zero,
	}
}

// Accumulate adds one entry's movement to the running totals. The
// grade-matched side only moves when the entry's grade equals grade.
func (b BalanceSet) Accumulate(e *LedgerEntry, grade string) BalanceSet {
	b.StockByType = b.StockByType.Add(e.Weight)
	b.CleanedByType = b.CleanedByType.Add(e.CleanedTotal)
	b.RejectsByType = b.RejectsByType.Add(e.RejectsTotal)
	if e.Grade == grade {
		b.StockByGrade = b.StockByGrade.Add(e.Weight)
		b.CleanedByGrade = b.CleanedByGrade.Add(e.CleanedTotal)
		b.RejectsByGrade = b.RejectsByGrade.Add(e.RejectsTotal)
	}
	return b
}

// ReplaysBefore reports whether a sorts strictly before b in replay
// order: by entry date, then by row ID within a day.
func ReplaysBefore(a, b *LedgerEntry) bool {
	if !a.EntryDate.Equal(b.EntryDate) {
		return a.EntryDate.Before(b.EntryDate)
	}
	return a.RowID < b.RowID
}

// BalancesAsOf reconstructs the six totals at the target entry by a
// linear replay of the series. Entries at or after the target in
// replay order are skipped, so callers may pass the whole series. The
// target's own movement is included.
func BalancesAsOf(target *LedgerEntry, series []LedgerEntry) BalanceSet {
	b := ZeroBalanceSet()
	for i := range series {
		e := &series[i]
		if e.ID == target.ID || !ReplaysBefore(e, target) {
			continue
		}
		b = b.Accumulate(e, target.Grade)
	}
	return b.Accumulate(target, target.Grade)
}

// InitialBalances computes the six totals to freeze on a new entry:
// a replay of everything before the target plus the target's own
// movement. An unsaved target has no row ID yet and appends after
// every existing entry on its date.
func InitialBalances(target *LedgerEntry, series []LedgerEntry) BalanceSet {
	b := ZeroBalanceSet()
	for i := range series {
		e := &series[i]
		if e.ID == target.ID {
			continue
		}
		if target.RowID == 0 {
			if e.EntryDate.After(target.EntryDate) {
				continue
			}
		} else if !ReplaysBefore(e, target) {
			continue
		}
		b = b.Accumulate(e, target.Grade)
	}
	return b.Accumulate(target, target.Grade)
}
