package persistence

import (
	"context"

	ledgerapp "github.com/seedledger/backend/internal/application/ledger"
	"github.com/seedledger/backend/internal/domain/cleaning"
	"github.com/seedledger/backend/internal/domain/ledger"
	"gorm.io/gorm"
)

// GormTransactionScope implements ledgerapp.TransactionScope using GORM
// transactions. Every series mutation executes inside exactly one
// Execute call so the sequence allocation, the entry append or update
// and the movement records commit or roll back together.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos ledgerapp.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to all repositories
// within one transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Entries returns the ledger entry repository scoped to the current transaction
func (r *gormTransactionalRepositories) Entries() ledger.EntryRepository {
	return NewGormEntryRepository(r.tx)
}

// Sequences returns the sequence allocator scoped to the current transaction
func (r *gormTransactionalRepositories) Sequences() ledger.SequenceAllocator {
	return NewGormSequenceAllocator(r.tx)
}

// Movements returns the movement record repository scoped to the current transaction
func (r *gormTransactionalRepositories) Movements() ledger.TransactionRepository {
	return NewGormTransactionRepository(r.tx)
}

// Operations returns the cleaning operation repository scoped to the current transaction
func (r *gormTransactionalRepositories) Operations() cleaning.OperationRepository {
	return NewGormOperationRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ ledgerapp.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ ledgerapp.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
