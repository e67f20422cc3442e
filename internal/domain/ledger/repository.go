package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/seedledger/backend/internal/domain/shared"
)

// EntryRepository defines the persistence interface for ledger entries.
//
// Series reads return entries in replay order (entry_date, row_id) so
// callers can feed them straight into the balance reconstructor.
type EntryRepository interface {
	// FindByID retrieves an entry by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*LedgerEntry, error)

	// FindByIDForUpdate retrieves an entry with an exclusive row lock.
	// Must run inside a transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*LedgerEntry, error)

	// FindSeries returns every entry of a series in replay order
	FindSeries(ctx context.Context, series Series) ([]LedgerEntry, error)

	// FindSeriesUpToDate returns a series' entries with an entry date
	// on or before the given date, in replay order
	FindSeriesUpToDate(ctx context.Context, series Series, date time.Time) ([]LedgerEntry, error)

	// FindOwnerSeedType returns an owner's entries for a seed type
	// across every warehouse, in replay order
	FindOwnerSeedType(ctx context.Context, ownerID, seedTypeID uuid.UUID) ([]LedgerEntry, error)

	// List returns entries matching the filter with pagination
	List(ctx context.Context, filter EntryFilter) ([]LedgerEntry, error)

	// Count returns the number of entries matching the filter
	Count(ctx context.Context, filter EntryFilter) (int64, error)

	// Save persists an entry (create or update)
	Save(ctx context.Context, entry *LedgerEntry) error

	// SaveWithLock persists an entry with an optimistic version check
	SaveWithLock(ctx context.Context, entry *LedgerEntry, expectedVersion int) error
}

// SequenceAllocator issues per-series, per-flow-class bin card numbers.
// Numbering is dense, starts at 1 and must be allocated inside the
// same transaction that appends the entry.
type SequenceAllocator interface {
	// NextSeqNo returns the next number for the series and flow class
	NextSeqNo(ctx context.Context, series Series, flow FlowClass) (int, error)

	// LockSeries takes an exclusive transaction-scoped lock on the
	// series, serializing concurrent appends across flow classes
	LockSeries(ctx context.Context, series Series) error
}

// TransactionRepository defines the persistence interface for the
// immutable movement records
type TransactionRepository interface {
	// Create appends a movement record
	Create(ctx context.Context, t *LedgerTransaction) error

	// FindByEntry returns all movements against an entry, oldest first
	FindByEntry(ctx context.Context, entryID uuid.UUID) ([]LedgerTransaction, error)
}

// EntryFilter extends the base filter with ledger-specific criteria
type EntryFilter struct {
	shared.Filter
	OwnerID     *uuid.UUID
	WarehouseID *uuid.UUID
	SeedTypeID  *uuid.UUID
	Grade       *string
	FlowClass   *FlowClass
	DateFrom    *time.Time
	DateTo      *time.Time
	StaleOnly   bool
}
