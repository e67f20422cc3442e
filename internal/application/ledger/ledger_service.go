package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/seedledger/backend/internal/domain/ledger"
	"github.com/seedledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// availabilityCacheTTL bounds how long a series availability figure may
// be served without recomputation.
const availabilityCacheTTL = 5 * time.Minute

// LedgerService implements the application use cases around the bin
// card ledger: intake, withdrawals, balance reconstruction and
// availability.
type LedgerService struct {
	entries   ledger.EntryRepository
	movements ledger.TransactionRepository
	txScope   TransactionScope
	cache     AvailabilityCache
	logger    *zap.Logger
}

// NewLedgerService creates a new LedgerService. The cache is optional.
func NewLedgerService(entries ledger.EntryRepository, movements ledger.TransactionRepository, txScope TransactionScope, cache AvailabilityCache, logger *zap.Logger) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		entries:   entries,
		movements: movements,
		txScope:   txScope,
		cache:     cache,
		logger:    logger,
	}
}

// RecordIntakeCommand describes raw seed arriving at the warehouse
type RecordIntakeCommand struct {
	Series     ledger.Series
	Grade      string
	EntryDate  time.Time
	Weight     decimal.Decimal
	Notes      string
	OperatorID *uuid.UUID
}

// RequestWithdrawalCommand describes cleaned seed leaving the warehouse.
// EntryDate may be set to backdate the ledger line; it defaults to today.
type RequestWithdrawalCommand struct {
	Series     ledger.Series
	Grade      string
	Weight     decimal.Decimal
	EntryDate  *time.Time
	Reference  string
	OperatorID *uuid.UUID
}

// RecordIntake appends a positive entry to the series. The sequence
// number allocation, the initial balance snapshot and the append share
// one transaction; the series lock is taken before anything is read,
// so the snapshot cannot miss a concurrently committing entry.
func (s *LedgerService) RecordIntake(ctx context.Context, cmd RecordIntakeCommand) (*EntryResponse, error) {
	if err := cmd.Series.Validate(); err != nil {
		return nil, err
	}
	entryDate := cmd.EntryDate
	if entryDate.IsZero() {
		entryDate = today()
	}

	var entry *ledger.LedgerEntry
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.Sequences().LockSeries(ctx, cmd.Series); err != nil {
			return err
		}
		seqNo, err := repos.Sequences().NextSeqNo(ctx, cmd.Series, ledger.FlowIn)
		if err != nil {
			return err
		}

		entry, err = ledger.NewIntakeEntry(cmd.Series, cmd.Grade, entryDate, seqNo, cmd.Weight, cmd.Notes)
		if err != nil {
			return err
		}

		prior, err := repos.Entries().FindSeriesUpToDate(ctx, cmd.Series, entryDate)
		if err != nil {
			return err
		}
		initial := ledger.InitialBalances(entry, prior)
		entry.SnapshotInitialBalances(initial)

		if err := repos.Entries().Save(ctx, entry); err != nil {
			return err
		}

		mov, err := ledger.NewLedgerTransaction(entry.ID, ledger.MovementStockIn, entry.Weight, initial.StockByType.Sub(entry.Weight), initial.StockByType)
		if err != nil {
			return err
		}
		if cmd.OperatorID != nil {
			mov.WithOperator(*cmd.OperatorID)
		}
		return repos.Movements().Create(ctx, mov)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(entry)
	s.logger.Info("intake recorded",
		zap.String("entry_id", entry.ID.String()),
		zap.String("series", cmd.Series.Key()),
		zap.Int("seq_no", entry.SeqNo),
		zap.String("weight", entry.Weight.String()))
	return ToEntryResponse(entry), nil
}

// RequestWithdrawal appends a negative entry taking cleaned seed out of
// the series. The series lock and the sequence counter upsert both
// precede the availability read, so of two concurrent withdrawals the
// loser blocks until the winner commits and then re-derives
// availability including the winner's entry.
func (s *LedgerService) RequestWithdrawal(ctx context.Context, cmd RequestWithdrawalCommand) (*EntryResponse, error) {
	if err := cmd.Series.Validate(); err != nil {
		return nil, err
	}
	if !cmd.Weight.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "withdrawal weight must be positive")
	}
	entryDate := today()
	if cmd.EntryDate != nil && !cmd.EntryDate.IsZero() {
		entryDate = *cmd.EntryDate
	}

	var entry *ledger.LedgerEntry
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.Sequences().LockSeries(ctx, cmd.Series); err != nil {
			return err
		}
		seqNo, err := repos.Sequences().NextSeqNo(ctx, cmd.Series, ledger.FlowOut)
		if err != nil {
			return err
		}

		series, err := repos.Entries().FindSeries(ctx, cmd.Series)
		if err != nil {
			return err
		}
		available := ledger.AvailableCleaned(series)
		if cmd.Weight.GreaterThan(available) {
			return shared.ErrExceedsAvailableStock
		}

		entry, err = ledger.NewWithdrawalEntry(cmd.Series, cmd.Grade, entryDate, seqNo, cmd.Weight, cmd.Reference)
		if err != nil {
			return err
		}
		entry.SnapshotInitialBalances(ledger.InitialBalances(entry, series))

		if err := repos.Entries().Save(ctx, entry); err != nil {
			return err
		}

		mov, err := ledger.NewLedgerTransaction(entry.ID, ledger.MovementStockOut, cmd.Weight, available, available.Sub(cmd.Weight))
		if err != nil {
			return err
		}
		mov.WithReference(cmd.Reference)
		if cmd.OperatorID != nil {
			mov.WithOperator(*cmd.OperatorID)
		}
		return repos.Movements().Create(ctx, mov)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateAvailability(ctx, cmd.Series)
	s.publishDomainEvents(entry)
	s.logger.Info("withdrawal recorded",
		zap.String("entry_id", entry.ID.String()),
		zap.String("series", cmd.Series.Key()),
		zap.Int("seq_no", entry.SeqNo),
		zap.String("weight", cmd.Weight.String()))
	return ToEntryResponse(entry), nil
}

// GetEntry retrieves a ledger entry by ID
func (s *LedgerService) GetEntry(ctx context.Context, id uuid.UUID) (*EntryResponse, error) {
	entry, err := s.entries.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToEntryResponse(entry), nil
}

// ListEntries returns entries matching the filter with pagination
func (s *LedgerService) ListEntries(ctx context.Context, filter ledger.EntryFilter) (*shared.Paginated[EntryResponse], error) {
	filter.Normalize()

	items, err := s.entries.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.entries.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(ToEntryResponses(items), total, filter.Page, filter.PageSize)
	return &page, nil
}

// BalancesAsOf reconstructs the six running totals at an entry by a
// linear replay of its series.
func (s *LedgerService) BalancesAsOf(ctx context.Context, entryID uuid.UUID) (*ledger.BalanceSet, error) {
	entry, err := s.entries.FindByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	series, err := s.entries.FindSeries(ctx, entry.Series())
	if err != nil {
		return nil, err
	}
	balances := ledger.BalancesAsOf(entry, series)
	return &balances, nil
}

// ListMovements returns the audit trail of an entry, oldest first
func (s *LedgerService) ListMovements(ctx context.Context, entryID uuid.UUID) ([]MovementResponse, error) {
	if _, err := s.entries.FindByID(ctx, entryID); err != nil {
		return nil, err
	}
	movements, err := s.movements.FindByEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	return ToMovementResponses(movements), nil
}

// AvailableCleaned returns the available cleaned weight for a series,
// served from the cache when a fresh figure is present.
func (s *LedgerService) AvailableCleaned(ctx context.Context, series ledger.Series) (*AvailabilityResponse, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}

	warehouseID := series.WarehouseID
	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx, series); err == nil && ok {
			return &AvailabilityResponse{OwnerID: series.OwnerID, WarehouseID: &warehouseID, SeedTypeID: series.SeedTypeID, Available: cached, Cached: true}, nil
		}
	}

	entries, err := s.entries.FindSeries(ctx, series)
	if err != nil {
		return nil, err
	}
	available := ledger.AvailableCleaned(entries)

	if s.cache != nil {
		if err := s.cache.Set(ctx, series, available, availabilityCacheTTL); err != nil {
			s.logger.Warn("availability cache set failed", zap.String("series", series.Key()), zap.Error(err))
		}
	}
	return &AvailabilityResponse{OwnerID: series.OwnerID, WarehouseID: &warehouseID, SeedTypeID: series.SeedTypeID, Available: available}, nil
}

// AvailableCleanedAllWarehouses totals the available cleaned weight of
// an owner's seed type across every warehouse. The figure spans many
// series, so it is always computed fresh; the cache is keyed per
// series and stays out of the way.
func (s *LedgerService) AvailableCleanedAllWarehouses(ctx context.Context, ownerID, seedTypeID uuid.UUID) (*AvailabilityResponse, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "owner ID is required")
	}
	if seedTypeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "seed type ID is required")
	}

	entries, err := s.entries.FindOwnerSeedType(ctx, ownerID, seedTypeID)
	if err != nil {
		return nil, err
	}
	return &AvailabilityResponse{
		OwnerID:    ownerID,
		SeedTypeID: seedTypeID,
		Available:  ledger.AvailableCleaned(entries),
	}, nil
}

// ChangeEntryDate moves an entry to a new logical date. Rejected once
// any posted cleaning operation references the entry.
func (s *LedgerService) ChangeEntryDate(ctx context.Context, entryID uuid.UUID, newDate time.Time) (*EntryResponse, error) {
	var entry *ledger.LedgerEntry
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		posted, err := repos.Operations().CountPostedByEntry(ctx, entryID)
		if err != nil {
			return err
		}
		if posted > 0 {
			return shared.ErrPostedEntryImmutable
		}

		entry, err = repos.Entries().FindByIDForUpdate(ctx, entryID)
		if err != nil {
			return err
		}
		expected := entry.GetVersion()
		if err := entry.ChangeEntryDate(newDate); err != nil {
			return err
		}
		return repos.Entries().SaveWithLock(ctx, entry, expected)
	})
	if err != nil {
		return nil, err
	}
	return ToEntryResponse(entry), nil
}

// invalidateAvailability drops the cached availability for a series
func (s *LedgerService) invalidateAvailability(ctx context.Context, series ledger.Series) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, series); err != nil {
		s.logger.Warn("availability cache invalidation failed", zap.String("series", series.Key()), zap.Error(err))
	}
}

// publishDomainEvents logs the pending domain events of an aggregate
// and clears them
func (s *LedgerService) publishDomainEvents(agg shared.AggregateRoot) {
	for _, ev := range agg.GetDomainEvents() {
		s.logger.Info("domain event",
			zap.String("event_type", ev.EventType()),
			zap.String("aggregate_id", ev.AggregateID().String()),
			zap.String("aggregate_type", ev.AggregateType()))
	}
	agg.ClearDomainEvents()
}

// today returns the current date truncated to midnight UTC
func today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}
