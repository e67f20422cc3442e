package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/seedledger/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// EntryResponse is the application-level view of a ledger entry
type EntryResponse struct {
	ID                 uuid.UUID         `json:"id"`
	OwnerID            uuid.UUID         `json:"owner_id"`
	WarehouseID        uuid.UUID         `json:"warehouse_id"`
	SeedTypeID         uuid.UUID         `json:"seed_type_id"`
	Grade              string            `json:"grade"`
	EntryDate          time.Time         `json:"entry_date"`
	FlowClass          ledger.FlowClass  `json:"flow_class"`
	SeqNo              int               `json:"seq_no"`
	Weight             decimal.Decimal   `json:"weight"`
	RawWeightRemaining decimal.Decimal   `json:"raw_weight_remaining"`
	CleanedTotal       decimal.Decimal   `json:"cleaned_total"`
	RejectsTotal       decimal.Decimal   `json:"rejects_total"`
	InitialBalances    ledger.BalanceSet `json:"initial_balances"`
	DocumentStale      bool              `json:"document_stale"`
	Notes              string            `json:"notes,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
	Version            int               `json:"version"`
}

// ToEntryResponse converts a domain entry to its response form
func ToEntryResponse(e *ledger.LedgerEntry) *EntryResponse {
	return &EntryResponse{
		ID:                 e.ID,
		OwnerID:            e.OwnerID,
		WarehouseID:        e.WarehouseID,
		SeedTypeID:         e.SeedTypeID,
		Grade:              e.Grade,
		EntryDate:          e.EntryDate,
		FlowClass:          e.FlowClass,
		SeqNo:              e.SeqNo,
		Weight:             e.Weight,
		RawWeightRemaining: e.RawWeightRemaining,
		CleanedTotal:       e.CleanedTotal,
		RejectsTotal:       e.RejectsTotal,
		InitialBalances: ledger.BalanceSet{
			StockByType:    e.InitialStockByType,
			StockByGrade:   e.InitialStockByGrade,
			CleanedByType:  e.InitialCleanedByType,
			CleanedByGrade: e.InitialCleanedByGrade,
			RejectsByType:  e.InitialRejectsByType,
			RejectsByGrade: e.InitialRejectsByGrade,
		},
		DocumentStale: e.DocumentStale,
		Notes:         e.Notes,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
		Version:       e.Version,
	}
}

// ToEntryResponses converts a slice of domain entries
func ToEntryResponses(entries []ledger.LedgerEntry) []EntryResponse {
	out := make([]EntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, *ToEntryResponse(&entries[i]))
	}
	return out
}

// AvailabilityResponse reports the available cleaned weight of a
// series, or of an owner's seed type across every warehouse when no
// warehouse was named.
type AvailabilityResponse struct {
	OwnerID     uuid.UUID       `json:"owner_id"`
	WarehouseID *uuid.UUID      `json:"warehouse_id,omitempty"`
	SeedTypeID  uuid.UUID       `json:"seed_type_id"`
	Available   decimal.Decimal `json:"available"`
	Cached      bool            `json:"cached"`
}

// MovementResponse is the application-level view of one movement record
type MovementResponse struct {
	ID            uuid.UUID           `json:"id"`
	EntryID       uuid.UUID           `json:"entry_id"`
	OperationID   *uuid.UUID          `json:"operation_id,omitempty"`
	Type          ledger.MovementType `json:"type"`
	Quantity      decimal.Decimal     `json:"quantity"`
	BalanceBefore decimal.Decimal     `json:"balance_before"`
	BalanceAfter  decimal.Decimal     `json:"balance_after"`
	OperatorID    *uuid.UUID          `json:"operator_id,omitempty"`
	Reference     string              `json:"reference,omitempty"`
	OccurredAt    time.Time           `json:"occurred_at"`
}

// ToMovementResponses converts a slice of domain movement records
func ToMovementResponses(movements []ledger.LedgerTransaction) []MovementResponse {
	out := make([]MovementResponse, 0, len(movements))
	for i := range movements {
		m := &movements[i]
		out = append(out, MovementResponse{
			ID:            m.ID,
			EntryID:       m.EntryID,
			OperationID:   m.OperationID,
			Type:          m.Type,
			Quantity:      m.Quantity,
			BalanceBefore: m.BalanceBefore,
			BalanceAfter:  m.BalanceAfter,
			OperatorID:    m.OperatorID,
			Reference:     m.Reference,
			OccurredAt:    m.OccurredAt,
		})
	}
	return out
}
