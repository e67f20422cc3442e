package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/seedledger/backend/internal/domain/ledger"
	"github.com/seedledger/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// SequenceCounter is the storage model for per-series bin card
// numbering. One row per series and flow class holds the last number
// issued.
type SequenceCounter struct {
	OwnerID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	WarehouseID uuid.UUID `gorm:"type:uuid;primaryKey"`
	SeedTypeID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	FlowClass   string    `gorm:"size:8;primaryKey"`
	LastNo      int       `gorm:"not null"`
	UpdatedAt   time.Time
}

// TableName specifies the database table name
func (SequenceCounter) TableName() string {
	return "sequence_counters"
}

// GormSequenceAllocator implements ledger.SequenceAllocator on a
// counter table. The upsert increments and reads in one statement, so
// two concurrent allocations serialize on the counter row and can
// never hand out the same number.
type GormSequenceAllocator struct {
	db *gorm.DB
}

// NewGormSequenceAllocator creates a new GormSequenceAllocator
func NewGormSequenceAllocator(db *gorm.DB) *GormSequenceAllocator {
	return &GormSequenceAllocator{db: db}
}

// NextSeqNo returns the next bin card number for the series and flow
// class. The first allocation for a series returns 1.
func (a *GormSequenceAllocator) NextSeqNo(ctx context.Context, series ledger.Series, flow ledger.FlowClass) (int, error) {
	if err := series.Validate(); err != nil {
		return 0, err
	}
	if !flow.IsValid() {
		return 0, shared.NewDomainError("INVALID_INPUT", "invalid flow class")
	}

	var next int
	err := a.db.WithContext(ctx).Raw(`
		INSERT INTO sequence_counters (owner_id, warehouse_id, seed_type_id, flow_class, last_no, updated_at)
		VALUES (?, ?, ?, ?, 1, ?)
		ON CONFLICT (owner_id, warehouse_id, seed_type_id, flow_class)
		DO UPDATE SET last_no = sequence_counters.last_no + 1, updated_at = excluded.updated_at
		RETURNING last_no`,
		series.OwnerID, series.WarehouseID, series.SeedTypeID, string(flow), time.Now(),
	).Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

// LockSeries takes a transaction-scoped advisory lock keyed on the
// series, so concurrent intakes and withdrawals on the same series
// serialize even though their counters live on different rows. On
// other dialects the per-flow counter upsert is the only lock.
func (a *GormSequenceAllocator) LockSeries(ctx context.Context, series ledger.Series) error {
	if err := series.Validate(); err != nil {
		return err
	}
	if a.db.Dialector.Name() != "postgres" {
		return nil
	}
	return a.db.WithContext(ctx).Exec(
		`SELECT pg_advisory_xact_lock(hashtextextended(?, 0))`, series.Key(),
	).Error
}

// Ensure GormSequenceAllocator implements the domain interface
var _ ledger.SequenceAllocator = (*GormSequenceAllocator)(nil)
