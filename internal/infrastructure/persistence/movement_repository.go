package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/seedledger/backend/internal/domain/ledger"
	"gorm.io/gorm"
)

// GormTransactionRepository implements ledger.TransactionRepository
// using GORM. Movement rows are append-only.
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// Create appends a movement record
func (r *GormTransactionRepository) Create(ctx context.Context, t *ledger.LedgerTransaction) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// FindByEntry returns all movements against an entry, oldest first
func (r *GormTransactionRepository) FindByEntry(ctx context.Context, entryID uuid.UUID) ([]ledger.LedgerTransaction, error) {
	var movements []ledger.LedgerTransaction
	if err := r.db.WithContext(ctx).
		Where("entry_id = ?", entryID).
		Order("occurred_at ASC, created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// Ensure GormTransactionRepository implements the domain interface
var _ ledger.TransactionRepository = (*GormTransactionRepository)(nil)
