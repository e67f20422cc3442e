package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/seedledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MovementType categorizes elementary ledger movements
type MovementType string

// Movement type values
const (
	MovementStockIn   MovementType = "STOCK_IN"
	MovementStockOut  MovementType = "STOCK_OUT"
	MovementRawOut    MovementType = "RAW_OUT"
	MovementCleanedIn MovementType = "CLEANED_IN"
	MovementRejectOut MovementType = "REJECT_OUT"
)

// IsValid checks if the movement type is a known value
func (t MovementType) IsValid() bool {
	switch t {
	case MovementStockIn, MovementStockOut, MovementRawOut, MovementCleanedIn, MovementRejectOut:
		return true
	}
	return false
}

// LedgerTransaction is an immutable audit record of one elementary
// movement against a ledger entry. Rows are appended by postings,
// withdrawals and reversals and never updated.
type LedgerTransaction struct {
	shared.BaseEntity

	EntryID     uuid.UUID    `gorm:"type:uuid;not null;index"`
	OperationID *uuid.UUID   `gorm:"type:uuid;index"`
	Type        MovementType `gorm:"size:16;not null"`

	Quantity      decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	BalanceBefore decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(14,3);not null"`

	OperatorID *uuid.UUID `gorm:"type:uuid"`
	Reference  string     `gorm:"size:255"`
	OccurredAt time.Time  `gorm:"not null;index"`
}

// TableName specifies the database table name
func (LedgerTransaction) TableName() string {
	return "ledger_transactions"
}

// NewLedgerTransaction creates a movement record with balance tracking
func NewLedgerTransaction(entryID uuid.UUID, movType MovementType, qty, before, after decimal.Decimal) (*LedgerTransaction, error) {
	if entryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "entry ID is required")
	}
	if !movType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "invalid movement type")
	}
	return &LedgerTransaction{
		BaseEntity:    shared.NewBaseEntity(),
		EntryID:       entryID,
		Type:          movType,
		Quantity:      qty,
		BalanceBefore: before,
		BalanceAfter:  after,
		OccurredAt:    time.Now(),
	}, nil
}

// WithOperation links the movement to the cleaning operation that
// produced it
func (t *LedgerTransaction) WithOperation(operationID uuid.UUID) *LedgerTransaction {
	t.OperationID = &operationID
	return t
}

// WithOperator records who triggered the movement
func (t *LedgerTransaction) WithOperator(operatorID uuid.UUID) *LedgerTransaction {
	t.OperatorID = &operatorID
	return t
}

// WithReference attaches a free-form document reference
func (t *LedgerTransaction) WithReference(ref string) *LedgerTransaction {
	t.Reference = ref
	return t
}
