package cleaning

import (
	"context"

	"github.com/google/uuid"
	"github.com/seedledger/backend/internal/domain/shared"
)

// OperationRepository defines the persistence interface for cleaning
// operations. Reads load the quality check stream with the aggregate.
type OperationRepository interface {
	// FindByID retrieves an operation with its quality checks
	FindByID(ctx context.Context, id uuid.UUID) (*CleaningOperation, error)

	// FindByIDForUpdate retrieves an operation with an exclusive row
	// lock. Must run inside a transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*CleaningOperation, error)

	// FindByEntry returns all operations against a ledger entry,
	// oldest first
	FindByEntry(ctx context.Context, entryID uuid.UUID) ([]CleaningOperation, error)

	// CountPostedByEntry returns how many posted operations reference
	// a ledger entry
	CountPostedByEntry(ctx context.Context, entryID uuid.UUID) (int64, error)

	// List returns operations matching the filter with pagination
	List(ctx context.Context, filter OperationFilter) ([]CleaningOperation, error)

	// Count returns the number of operations matching the filter
	Count(ctx context.Context, filter OperationFilter) (int64, error)

	// Save persists an operation and its quality checks
	Save(ctx context.Context, op *CleaningOperation) error

	// SaveWithLock persists an operation with an optimistic version check
	SaveWithLock(ctx context.Context, op *CleaningOperation, expectedVersion int) error
}

// OperationFilter extends the base filter with cleaning-specific criteria
type OperationFilter struct {
	shared.Filter
	LedgerEntryID *uuid.UUID
	Status        *OperationStatus
	Flow          *OperationFlow
}
