package cleaning

import (
	"github.com/google/uuid"
	"github.com/seedledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types for cleaning aggregates
const (
	EventOperationDrafted  = "cleaning.operation_drafted"
	EventOperationPosted   = "cleaning.operation_posted"
	EventOperationReversed = "cleaning.operation_reversed"
)

// OperationDraftedEvent is raised when a new draft operation is created
type OperationDraftedEvent struct {
	shared.BaseDomainEvent
	LedgerEntryID uuid.UUID       `json:"ledger_entry_id"`
	Flow          OperationFlow   `json:"flow"`
	WeightIn      decimal.Decimal `json:"weight_in"`
}

// NewOperationDraftedEvent creates an operation drafted event
func NewOperationDraftedEvent(o *CleaningOperation) *OperationDraftedEvent {
	return &OperationDraftedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOperationDrafted, "CleaningOperation", o.ID),
		LedgerEntryID:   o.LedgerEntryID,
		Flow:            o.Flow,
		WeightIn:        o.WeightIn,
	}
}

// OperationPostedEvent is raised when an operation's result is applied
// to the ledger
type OperationPostedEvent struct {
	shared.BaseDomainEvent
	LedgerEntryID uuid.UUID       `json:"ledger_entry_id"`
	WeightIn      decimal.Decimal `json:"weight_in"`
	WeightOut     decimal.Decimal `json:"weight_out"`
	Rejects       decimal.Decimal `json:"rejects"`
}

// NewOperationPostedEvent creates an operation posted event
func NewOperationPostedEvent(o *CleaningOperation) *OperationPostedEvent {
	return &OperationPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOperationPosted, "CleaningOperation", o.ID),
		LedgerEntryID:   o.LedgerEntryID,
		WeightIn:        o.WeightIn,
		WeightOut:       o.WeightOut,
		Rejects:         o.Rejects,
	}
}

// OperationReversedEvent is raised when a posting is compensated
type OperationReversedEvent struct {
	shared.BaseDomainEvent
	LedgerEntryID uuid.UUID `json:"ledger_entry_id"`
}

// NewOperationReversedEvent creates an operation reversed event
func NewOperationReversedEvent(o *CleaningOperation) *OperationReversedEvent {
	return &OperationReversedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOperationReversed, "CleaningOperation", o.ID),
		LedgerEntryID:   o.LedgerEntryID,
	}
}
