package cleaning

import (
	"github.com/google/uuid"
	"github.com/seedledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// QualityCheck is one sample taken from the cleaning line: a piece of
// known weight split into sound and reject grams. The purity of the
// sample scales the piece weight into the incremental cleaned output.
type QualityCheck struct {
	shared.BaseEntity

	OperationID uuid.UUID `gorm:"type:uuid;not null;index"`
	Index       int       `gorm:"column:check_index;not null"`

	PieceWeight decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	SoundGrams  int64           `gorm:"not null"`
	RejectGrams int64           `gorm:"not null"`
}

// TableName specifies the database table name
func (QualityCheck) TableName() string {
	return "quality_checks"
}

// NewQualityCheck creates a sample measurement for an operation
func NewQualityCheck(operationID uuid.UUID, index int, pieceWeight decimal.Decimal, soundGrams, rejectGrams int64) (*QualityCheck, error) {
	if operationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "operation ID is required")
	}
	if index < 1 {
		return nil, shared.NewDomainError("INVALID_INPUT", "check index must start at 1")
	}
	if !pieceWeight.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "piece weight must be positive")
	}
	if soundGrams < 0 || rejectGrams < 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "sample grams must not be negative")
	}
	if soundGrams+rejectGrams == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "sample must contain at least one gram")
	}
	return &QualityCheck{
		BaseEntity:  shared.NewBaseEntity(),
		OperationID: operationID,
		Index:       index,
		PieceWeight: pieceWeight.Round(3),
		SoundGrams:  soundGrams,
		RejectGrams: rejectGrams,
	}, nil
}

// PurityPercent returns the sound share of the sample in percent
func (q *QualityCheck) PurityPercent() decimal.Decimal {
	total := q.SoundGrams + q.RejectGrams
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(q.SoundGrams).
		Div(decimal.NewFromInt(total)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}

// IncrementalOut is the cleaned output this sample contributes: the
// piece weight scaled by the sample purity.
func (q *QualityCheck) IncrementalOut() decimal.Decimal {
	return q.PieceWeight.Mul(q.PurityPercent()).Div(decimal.NewFromInt(100)).Round(3)
}
