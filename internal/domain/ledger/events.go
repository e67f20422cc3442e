package ledger

import (
	"github.com/seedledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types for ledger aggregates
const (
	EventEntryAppended      = "ledger.entry_appended"
	EventWithdrawalRecorded = "ledger.withdrawal_recorded"
	EventCleaningApplied    = "ledger.cleaning_applied"
)

// EntryAppendedEvent is raised when an intake entry joins a series
type EntryAppendedEvent struct {
	shared.BaseDomainEvent
	Series Series          `json:"series"`
	Grade  string          `json:"grade"`
	SeqNo  int             `json:"seq_no"`
	Weight decimal.Decimal `json:"weight"`
}

// NewEntryAppendedEvent creates an entry appended event
func NewEntryAppendedEvent(e *LedgerEntry) *EntryAppendedEvent {
	return &EntryAppendedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventEntryAppended, "LedgerEntry", e.ID),
		Series:          e.Series(),
		Grade:           e.Grade,
		SeqNo:           e.SeqNo,
		Weight:          e.Weight,
	}
}

// WithdrawalRecordedEvent is raised when cleaned seed leaves a series
type WithdrawalRecordedEvent struct {
	shared.BaseDomainEvent
	Series Series          `json:"series"`
	SeqNo  int             `json:"seq_no"`
	Weight decimal.Decimal `json:"weight"`
}

// NewWithdrawalRecordedEvent creates a withdrawal recorded event
func NewWithdrawalRecordedEvent(e *LedgerEntry) *WithdrawalRecordedEvent {
	return &WithdrawalRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventWithdrawalRecorded, "LedgerEntry", e.ID),
		Series:          e.Series(),
		SeqNo:           e.SeqNo,
		Weight:          e.Weight,
	}
}

// CleaningAppliedEvent is raised when a posting moves weight between
// the cumulative figures of an entry
type CleaningAppliedEvent struct {
	shared.BaseDomainEvent
	RawOut     decimal.Decimal `json:"raw_out"`
	CleanedIn  decimal.Decimal `json:"cleaned_in"`
	RejectsOut decimal.Decimal `json:"rejects_out"`
}

// NewCleaningAppliedEvent creates a cleaning applied event
func NewCleaningAppliedEvent(e *LedgerEntry, rawOut, cleanedIn, rejectsOut decimal.Decimal) *CleaningAppliedEvent {
	return &CleaningAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventCleaningApplied, "LedgerEntry", e.ID),
		RawOut:          rawOut,
		CleanedIn:       cleanedIn,
		RejectsOut:      rejectsOut,
	}
}
