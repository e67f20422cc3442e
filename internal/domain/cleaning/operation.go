package cleaning

import (
	"time"

	"github.com/google/uuid"
	"github.com/seedledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OperationStatus represents the lifecycle state of a cleaning operation
type OperationStatus string

// Operation status values
const (
	StatusDraft  OperationStatus = "DRAFT"
	StatusPosted OperationStatus = "POSTED"
)

// OperationFlow distinguishes a first cleaning pass from a repeat pass
type OperationFlow string

// Operation flow values
const (
	FlowCleaning   OperationFlow = "CLEANING"
	FlowRecleaning OperationFlow = "RECLEANING"
)

// IsValid checks if the flow is a known value
func (f OperationFlow) IsValid() bool {
	return f == FlowCleaning || f == FlowRecleaning
}

// massBalanceTolerance is the accepted relative deviation between
// input weight and output plus rejects, 0.75 percent.
var massBalanceTolerance = decimal.NewFromFloat(0.0075)

// CleaningOperation is the aggregate root for one day's work on a
// ledger entry's raw pool. It is editable while DRAFT; posting applies
// its result to the ledger atomically and freezes it.
type CleaningOperation struct {
	shared.BaseAggregateRoot

	LedgerEntryID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Flow          OperationFlow   `gorm:"size:16;not null"`
	Status        OperationStatus `gorm:"size:16;not null;index"`
	WorkDate      time.Time       `gorm:"type:date;not null"`

	WeightIn  decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	WeightOut decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	Rejects   decimal.Decimal `gorm:"type:decimal(14,3);not null"`

	PurityBefore decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	PurityAfter  decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	TargetPurity decimal.Decimal `gorm:"type:decimal(5,2);not null"`

	RecleaningReason string     `gorm:"size:255"`
	OperatorID       *uuid.UUID `gorm:"type:uuid"`
	PostedAt         *time.Time

	QualityChecks []QualityCheck `gorm:"foreignKey:OperationID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name
func (CleaningOperation) TableName() string {
	return "cleaning_operations"
}

// NewCleaningOperation creates a draft operation against a ledger entry
func NewCleaningOperation(entryID uuid.UUID, flow OperationFlow, workDate time.Time, weightIn, targetPurity decimal.Decimal, recleaningReason string) (*CleaningOperation, error) {
	if entryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "ledger entry ID is required")
	}
	if !flow.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "invalid operation flow")
	}
	if workDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_INPUT", "work date is required")
	}
	if !weightIn.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "input weight must be positive")
	}
	if err := validatePurity(targetPurity); err != nil {
		return nil, err
	}
	if flow == FlowRecleaning && recleaningReason == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "recleaning requires a reason")
	}
	if flow == FlowCleaning && recleaningReason != "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "recleaning reason only applies to recleaning")
	}

	op := &CleaningOperation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		LedgerEntryID:     entryID,
		Flow:              flow,
		Status:            StatusDraft,
		WorkDate:          workDate,
		WeightIn:          weightIn.Round(3),
		WeightOut:         decimal.Zero,
		Rejects:           decimal.Zero,
		PurityBefore:      decimal.Zero,
		PurityAfter:       decimal.Zero,
		TargetPurity:      targetPurity.Round(2),
		RecleaningReason:  recleaningReason,
	}
	op.AddDomainEvent(NewOperationDraftedEvent(op))
	return op, nil
}

// IsPosted reports whether the operation has been posted
func (o *CleaningOperation) IsPosted() bool {
	return o.Status == StatusPosted
}

// UpdateDraft replaces the editable figures of a draft operation
func (o *CleaningOperation) UpdateDraft(weightIn, weightOut, rejects, purityBefore, purityAfter decimal.Decimal) error {
	if o.IsPosted() {
		return shared.ErrAlreadyPosted
	}
	if !weightIn.IsPositive() {
		return shared.NewDomainError("INVALID_INPUT", "input weight must be positive")
	}
	if weightOut.IsNegative() || rejects.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "output and rejects must not be negative")
	}
	if err := validatePurity(purityBefore); err != nil {
		return err
	}
	if err := validatePurity(purityAfter); err != nil {
		return err
	}

	o.WeightIn = weightIn.Round(3)
	o.WeightOut = weightOut.Round(3)
	o.Rejects = rejects.Round(3)
	o.PurityBefore = purityBefore.Round(2)
	o.PurityAfter = purityAfter.Round(2)
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}

// AddQualityCheck appends a sample measurement and updates the running
// output weight to the sum of all incremental outputs.
func (o *CleaningOperation) AddQualityCheck(pieceWeight decimal.Decimal, soundGrams, rejectGrams int64) (*QualityCheck, error) {
	if o.IsPosted() {
		return nil, shared.ErrAlreadyPosted
	}
	qc, err := NewQualityCheck(o.ID, len(o.QualityChecks)+1, pieceWeight, soundGrams, rejectGrams)
	if err != nil {
		return nil, err
	}
	o.QualityChecks = append(o.QualityChecks, *qc)

	out := decimal.Zero
	for i := range o.QualityChecks {
		out = out.Add(o.QualityChecks[i].IncrementalOut())
	}
	o.WeightOut = out.Round(3)
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return qc, nil
}

// CheckMassBalance verifies that output plus rejects stays within the
// accepted tolerance of the input weight.
func (o *CleaningOperation) CheckMassBalance() error {
	diff := o.WeightOut.Add(o.Rejects).Sub(o.WeightIn).Abs()
	tol := o.WeightIn.Mul(massBalanceTolerance)
	if diff.GreaterThan(tol) {
		return shared.ErrMassBalance
	}
	return nil
}

// SourcePool returns the cumulative figure the operation draws its
// input from: raw remaining for a first pass, the cleaned total for a
// repeat pass.
func (o *CleaningOperation) SourcePool(rawRemaining, cleanedTotal decimal.Decimal) decimal.Decimal {
	if o.Flow == FlowRecleaning {
		return cleanedTotal
	}
	return rawRemaining
}

// ValidateForPosting re-runs every draft rule against the current
// ledger state before the result is applied. The input weight is
// checked against the pool the flow draws from.
func (o *CleaningOperation) ValidateForPosting(rawRemaining, cleanedTotal decimal.Decimal) error {
	if o.IsPosted() {
		return shared.ErrAlreadyPosted
	}
	if !o.WeightIn.IsPositive() {
		return shared.NewDomainError("INVALID_INPUT", "input weight must be positive")
	}
	if o.WeightOut.IsNegative() || o.Rejects.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "output and rejects must not be negative")
	}
	if o.Flow == FlowRecleaning && o.RecleaningReason == "" {
		return shared.NewDomainError("INVALID_INPUT", "recleaning requires a reason")
	}
	if o.WeightIn.GreaterThan(o.SourcePool(rawRemaining, cleanedTotal)) {
		if o.Flow == FlowRecleaning {
			return shared.ErrInsufficientCleanedStock
		}
		return shared.ErrInsufficientRawStock
	}
	return o.CheckMassBalance()
}

// MarkPosted transitions the operation to POSTED
func (o *CleaningOperation) MarkPosted(at time.Time, operatorID *uuid.UUID) error {
	if o.IsPosted() {
		return shared.ErrAlreadyPosted
	}
	o.Status = StatusPosted
	o.PostedAt = &at
	o.OperatorID = operatorID
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	o.AddDomainEvent(NewOperationPostedEvent(o))
	return nil
}

// MarkReversed returns a posted operation to DRAFT after its ledger
// effect has been compensated
func (o *CleaningOperation) MarkReversed() error {
	if !o.IsPosted() {
		return shared.ErrInvalidState
	}
	o.Status = StatusDraft
	o.PostedAt = nil
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	o.AddDomainEvent(NewOperationReversedEvent(o))
	return nil
}

func validatePurity(p decimal.Decimal) error {
	if p.IsNegative() || p.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_INPUT", "purity must be between 0 and 100")
	}
	return nil
}
