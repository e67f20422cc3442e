package ledger

import (
	"context"

	"github.com/seedledger/backend/internal/domain/cleaning"
	"github.com/seedledger/backend/internal/domain/ledger"
)

// TransactionScope provides transactional access to ledger repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or
// roll back atomically. Every series mutation runs through exactly one
// scope execution.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all ledger and cleaning
// repositories within a transaction. All repositories returned share
// the same underlying database transaction.
//
// Aggregate boundary notes:
//   - Entries: repository for the LedgerEntry aggregate root. Cumulative
//     figures only move through entries loaded with FindByIDForUpdate.
//   - Sequences: issues bin card numbers; the counter row lock and the
//     entry append must share one transaction.
//   - Movements: append-only movement records.
//   - Operations: repository for the CleaningOperation aggregate root.
//     Quality checks are child entities persisted with the aggregate.
type TransactionalRepositories interface {
	// Entries returns the ledger entry repository scoped to the current transaction
	Entries() ledger.EntryRepository
	// Sequences returns the sequence allocator scoped to the current transaction
	Sequences() ledger.SequenceAllocator
	// Movements returns the movement record repository scoped to the current transaction
	Movements() ledger.TransactionRepository
	// Operations returns the cleaning operation repository scoped to the current transaction
	Operations() cleaning.OperationRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing against in-memory repositories.
type NoOpTransactionScope struct {
	entries    ledger.EntryRepository
	sequences  ledger.SequenceAllocator
	movements  ledger.TransactionRepository
	operations cleaning.OperationRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	entries ledger.EntryRepository,
	sequences ledger.SequenceAllocator,
	movements ledger.TransactionRepository,
	operations cleaning.OperationRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		entries:    entries,
		sequences:  sequences,
		movements:  movements,
		operations: operations,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Entries returns the ledger entry repository.
func (s *NoOpTransactionScope) Entries() ledger.EntryRepository {
	return s.entries
}

// Sequences returns the sequence allocator.
func (s *NoOpTransactionScope) Sequences() ledger.SequenceAllocator {
	return s.sequences
}

// Movements returns the movement record repository.
func (s *NoOpTransactionScope) Movements() ledger.TransactionRepository {
	return s.movements
}

// Operations returns the cleaning operation repository.
func (s *NoOpTransactionScope) Operations() cleaning.OperationRepository {
	return s.operations
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
