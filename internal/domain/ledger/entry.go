package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/seedledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Weights are stored in kilograms at three decimal places.
const weightScale = 3

// LedgerEntry is the aggregate root for one bin card line. Identity
// fields (series, date, sequence number, weight) are fixed at creation;
// the cumulative figures are the only mutable state and only move
// through the posting and reversal paths.
type LedgerEntry struct {
	shared.BaseAggregateRoot

	// RowID is a monotonic tiebreaker for replay ordering within a day.
	// Primary keys are UUIDs and carry no chronology.
	RowID int64 `gorm:"autoIncrement;uniqueIndex"`

	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index:idx_ledger_series;uniqueIndex:idx_ledger_seq,priority:1"`
	WarehouseID uuid.UUID `gorm:"type:uuid;not null;index:idx_ledger_series;uniqueIndex:idx_ledger_seq,priority:2"`
	SeedTypeID  uuid.UUID `gorm:"type:uuid;not null;index:idx_ledger_series;uniqueIndex:idx_ledger_seq,priority:3"`
	Grade       string    `gorm:"size:32;not null"`

	EntryDate time.Time `gorm:"type:date;not null;index"`
	FlowClass FlowClass `gorm:"size:8;not null;uniqueIndex:idx_ledger_seq,priority:4"`
	SeqNo     int       `gorm:"not null;uniqueIndex:idx_ledger_seq,priority:5"`

	// Weight is signed: positive for intake, negative for withdrawals.
	Weight             decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	RawWeightRemaining decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	CleanedTotal       decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	RejectsTotal       decimal.Decimal `gorm:"type:decimal(14,3);not null"`

	// Initial balances frozen at creation from a replay of the series
	// up to and including this entry's own movement. Never recomputed
	// afterwards.
	InitialStockByType    decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	InitialStockByGrade   decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	InitialCleanedByType  decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	InitialCleanedByGrade decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	InitialRejectsByType  decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	InitialRejectsByGrade decimal.Decimal `gorm:"type:decimal(14,3);not null"`

	// DocumentStale marks the printed bin card as out of date after any
	// cumulative figure moves.
	DocumentStale bool   `gorm:"not null;default:false"`
	Notes         string `gorm:"size:500"`
}

// TableName specifies the database table name
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// NewIntakeEntry creates a positive ledger entry for raw seed received
// into the warehouse. The full weight starts as raw remaining.
func NewIntakeEntry(series Series, grade string, entryDate time.Time, seqNo int, weight decimal.Decimal, notes string) (*LedgerEntry, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}
	if grade == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "grade is required")
	}
	if entryDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_INPUT", "entry date is required")
	}
	if seqNo < 1 {
		return nil, shared.NewDomainError("INVALID_INPUT", "sequence number must start at 1")
	}
	if !weight.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "intake weight must be positive")
	}

	w := weight.Round(weightScale)
	e := &LedgerEntry{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		OwnerID:            series.OwnerID,
		WarehouseID:        series.WarehouseID,
		SeedTypeID:         series.SeedTypeID,
		Grade:              grade,
		EntryDate:          entryDate,
		FlowClass:          FlowIn,
		SeqNo:              seqNo,
		Weight:             w,
		RawWeightRemaining: w,
		CleanedTotal:       decimal.Zero,
		RejectsTotal:       decimal.Zero,
		Notes:              notes,
	}
	e.AddDomainEvent(NewEntryAppendedEvent(e))
	return e, nil
}

// NewWithdrawalEntry creates a negative ledger entry taking cleaned
// seed out of the series. The caller is responsible for checking
// availability before allocating the sequence number.
func NewWithdrawalEntry(series Series, grade string, entryDate time.Time, seqNo int, weight decimal.Decimal, notes string) (*LedgerEntry, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}
	if grade == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "grade is required")
	}
	if entryDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_INPUT", "entry date is required")
	}
	if seqNo < 1 {
		return nil, shared.NewDomainError("INVALID_INPUT", "sequence number must start at 1")
	}
	if !weight.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "withdrawal weight must be positive")
	}

	w := weight.Round(weightScale)
	e := &LedgerEntry{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		OwnerID:            series.OwnerID,
		WarehouseID:        series.WarehouseID,
		SeedTypeID:         series.SeedTypeID,
		Grade:              grade,
		EntryDate:          entryDate,
		FlowClass:          FlowOut,
		SeqNo:              seqNo,
		Weight:             w.Neg(),
		RawWeightRemaining: decimal.Zero,
		CleanedTotal:       w.Neg(),
		RejectsTotal:       decimal.Zero,
		Notes:              notes,
	}
	e.AddDomainEvent(NewWithdrawalRecordedEvent(e))
	return e, nil
}

// Series returns the series key this entry belongs to
func (e *LedgerEntry) Series() Series {
	return Series{
		OwnerID:     e.OwnerID,
		WarehouseID: e.WarehouseID,
		SeedTypeID:  e.SeedTypeID,
	}
}

// SnapshotInitialBalances freezes the six initial totals on the entry.
// Called exactly once, before the first save.
func (e *LedgerEntry) SnapshotInitialBalances(b BalanceSet) {
	e.InitialStockByType = b.StockByType
	e.InitialStockByGrade = b.StockByGrade
	e.InitialCleanedByType = b.CleanedByType
	e.InitialCleanedByGrade = b.CleanedByGrade
	e.InitialRejectsByType = b.RejectsByType
	e.InitialRejectsByGrade = b.RejectsByGrade
}

// ApplyCleaningResult moves weight from the raw pool into the cleaned
// and rejects cumulative figures. Raw remaining must never go negative.
func (e *LedgerEntry) ApplyCleaningResult(rawOut, cleanedIn, rejectsOut decimal.Decimal) error {
	if rawOut.IsNegative() || cleanedIn.IsNegative() || rejectsOut.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "cleaning quantities must not be negative")
	}
	newRaw := e.RawWeightRemaining.Sub(rawOut).Round(weightScale)
	if newRaw.IsNegative() {
		return shared.ErrInsufficientRawStock
	}

	e.RawWeightRemaining = newRaw
	e.CleanedTotal = e.CleanedTotal.Add(cleanedIn).Round(weightScale)
	e.RejectsTotal = e.RejectsTotal.Add(rejectsOut).Round(weightScale)
	e.DocumentStale = true
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
	e.AddDomainEvent(NewCleaningAppliedEvent(e, rawOut, cleanedIn, rejectsOut))
	return nil
}

// ApplyRecleaningResult reprocesses weight already in the cleaned
// pool: the input leaves the cleaned total, the output returns to it
// and the difference lands in rejects. The raw pool is untouched.
func (e *LedgerEntry) ApplyRecleaningResult(cleanedOut, cleanedIn, rejectsOut decimal.Decimal) error {
	if cleanedOut.IsNegative() || cleanedIn.IsNegative() || rejectsOut.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "cleaning quantities must not be negative")
	}
	newCleaned := e.CleanedTotal.Sub(cleanedOut).Add(cleanedIn).Round(weightScale)
	if e.CleanedTotal.Sub(cleanedOut).IsNegative() {
		return shared.ErrInsufficientCleanedStock
	}

	e.CleanedTotal = newCleaned
	e.RejectsTotal = e.RejectsTotal.Add(rejectsOut).Round(weightScale)
	e.DocumentStale = true
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
	e.AddDomainEvent(NewCleaningAppliedEvent(e, decimal.Zero, cleanedIn, rejectsOut))
	return nil
}

// RevertRecleaningResult undoes a previously applied recleaning
// result, restoring the cleaned total and rolling back rejects.
func (e *LedgerEntry) RevertRecleaningResult(cleanedOut, cleanedIn, rejectsOut decimal.Decimal) error {
	if cleanedOut.IsNegative() || cleanedIn.IsNegative() || rejectsOut.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "cleaning quantities must not be negative")
	}
	newCleaned := e.CleanedTotal.Sub(cleanedIn).Add(cleanedOut).Round(weightScale)
	newRejects := e.RejectsTotal.Sub(rejectsOut).Round(weightScale)
	if e.CleanedTotal.Sub(cleanedIn).IsNegative() || newRejects.IsNegative() {
		return shared.NewDomainError("INVALID_STATE", "reversal exceeds recorded cleaned or reject totals")
	}

	e.CleanedTotal = newCleaned
	e.RejectsTotal = newRejects
	e.DocumentStale = true
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
	return nil
}

// RevertCleaningResult undoes a previously applied cleaning result,
// returning weight to the raw pool.
func (e *LedgerEntry) RevertCleaningResult(rawOut, cleanedIn, rejectsOut decimal.Decimal) error {
	if rawOut.IsNegative() || cleanedIn.IsNegative() || rejectsOut.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "cleaning quantities must not be negative")
	}
	newCleaned := e.CleanedTotal.Sub(cleanedIn).Round(weightScale)
	newRejects := e.RejectsTotal.Sub(rejectsOut).Round(weightScale)
	if newCleaned.IsNegative() || newRejects.IsNegative() {
		return shared.NewDomainError("INVALID_STATE", "reversal exceeds recorded cleaned or reject totals")
	}

	e.RawWeightRemaining = e.RawWeightRemaining.Add(rawOut).Round(weightScale)
	e.CleanedTotal = newCleaned
	e.RejectsTotal = newRejects
	e.DocumentStale = true
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
	return nil
}

// ChangeEntryDate moves the entry to a new logical date. The caller
// must first verify no posted cleaning operation references the entry.
func (e *LedgerEntry) ChangeEntryDate(newDate time.Time) error {
	if newDate.IsZero() {
		return shared.NewDomainError("INVALID_INPUT", "entry date is required")
	}
	e.EntryDate = newDate
	e.DocumentStale = true
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
	return nil
}

// MarkDocumentFresh clears the staleness flag after regeneration
func (e *LedgerEntry) MarkDocumentFresh() {
	e.DocumentStale = false
	e.UpdatedAt = time.Now()
}
