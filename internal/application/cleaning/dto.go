package cleaning

import (
	"time"

	"github.com/google/uuid"
	"github.com/seedledger/backend/internal/domain/cleaning"
	"github.com/shopspring/decimal"
)

// QualityCheckResponse is the application-level view of one sample
type QualityCheckResponse struct {
	ID             uuid.UUID       `json:"id"`
	Index          int             `json:"index"`
	PieceWeight    decimal.Decimal `json:"piece_weight"`
	SoundGrams     int64           `json:"sound_grams"`
	RejectGrams    int64           `json:"reject_grams"`
	PurityPercent  decimal.Decimal `json:"purity_percent"`
	IncrementalOut decimal.Decimal `json:"incremental_out"`
}

// OperationResponse is the application-level view of a cleaning operation
type OperationResponse struct {
	ID               uuid.UUID                `json:"id"`
	LedgerEntryID    uuid.UUID                `json:"ledger_entry_id"`
	Flow             cleaning.OperationFlow   `json:"flow"`
	Status           cleaning.OperationStatus `json:"status"`
	WorkDate         time.Time                `json:"work_date"`
	WeightIn         decimal.Decimal          `json:"weight_in"`
	WeightOut        decimal.Decimal          `json:"weight_out"`
	Rejects          decimal.Decimal          `json:"rejects"`
	PurityBefore     decimal.Decimal          `json:"purity_before"`
	PurityAfter      decimal.Decimal          `json:"purity_after"`
	TargetPurity     decimal.Decimal          `json:"target_purity"`
	RecleaningReason string                   `json:"recleaning_reason,omitempty"`
	OperatorID       *uuid.UUID               `json:"operator_id,omitempty"`
	PostedAt         *time.Time               `json:"posted_at,omitempty"`
	QualityChecks    []QualityCheckResponse   `json:"quality_checks"`
	CreatedAt        time.Time                `json:"created_at"`
	UpdatedAt        time.Time                `json:"updated_at"`
	Version          int                      `json:"version"`
}

// ToOperationResponse converts a domain operation to its response form
func ToOperationResponse(o *cleaning.CleaningOperation) *OperationResponse {
	checks := make([]QualityCheckResponse, 0, len(o.QualityChecks))
	for i := range o.QualityChecks {
		qc := &o.QualityChecks[i]
		checks = append(checks, QualityCheckResponse{
			ID:             qc.ID,
			Index:          qc.Index,
			PieceWeight:    qc.PieceWeight,
			SoundGrams:     qc.SoundGrams,
			RejectGrams:    qc.RejectGrams,
			PurityPercent:  qc.PurityPercent(),
			IncrementalOut: qc.IncrementalOut(),
		})
	}
	return &OperationResponse{
		ID:               o.ID,
		LedgerEntryID:    o.LedgerEntryID,
		Flow:             o.Flow,
		Status:           o.Status,
		WorkDate:         o.WorkDate,
		WeightIn:         o.WeightIn,
		WeightOut:        o.WeightOut,
		Rejects:          o.Rejects,
		PurityBefore:     o.PurityBefore,
		PurityAfter:      o.PurityAfter,
		TargetPurity:     o.TargetPurity,
		RecleaningReason: o.RecleaningReason,
		OperatorID:       o.OperatorID,
		PostedAt:         o.PostedAt,
		QualityChecks:    checks,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
		Version:          o.Version,
	}
}

// ToOperationResponses converts a slice of domain operations
func ToOperationResponses(ops []cleaning.CleaningOperation) []OperationResponse {
	out := make([]OperationResponse, 0, len(ops))
	for i := range ops {
		out = append(out, *ToOperationResponse(&ops[i]))
	}
	return out
}
