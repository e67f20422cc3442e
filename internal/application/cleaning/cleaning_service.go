package cleaning

import (
	"context"
	"time"

	"github.com/google/uuid"
	ledgerapp "github.com/seedledger/backend/internal/application/ledger"
	"github.com/seedledger/backend/internal/domain/cleaning"
	"github.com/seedledger/backend/internal/domain/ledger"
	"github.com/seedledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CleaningService implements the draft-to-posted lifecycle of cleaning
// operations. Posting and reversal are the only paths that move a
// ledger entry's cumulative figures, and each runs in a single
// transaction with exclusive locks on the operation and the entry.
type CleaningService struct {
	operations cleaning.OperationRepository
	entries    ledger.EntryRepository
	txScope    ledgerapp.TransactionScope
	cache      ledgerapp.AvailabilityCache
	logger     *zap.Logger
}

// NewCleaningService creates a new CleaningService. The cache is optional.
func NewCleaningService(
	operations cleaning.OperationRepository,
	entries ledger.EntryRepository,
	txScope ledgerapp.TransactionScope,
	cache ledgerapp.AvailabilityCache,
	logger *zap.Logger,
) *CleaningService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CleaningService{
		operations: operations,
		entries:    entries,
		txScope:    txScope,
		cache:      cache,
		logger:     logger,
	}
}

// movementSpec is one audit row to append while posting or reversing
type movementSpec struct {
	typ    ledger.MovementType
	qty    decimal.Decimal
	before decimal.Decimal
	after  decimal.Decimal
}

// CreateDraftCommand describes a new day's work on a ledger entry
type CreateDraftCommand struct {
	LedgerEntryID    uuid.UUID
	Flow             cleaning.OperationFlow
	WorkDate         time.Time
	WeightIn         decimal.Decimal
	TargetPurity     decimal.Decimal
	RecleaningReason string
}

// UpdateDraftCommand replaces the editable figures of a draft
type UpdateDraftCommand struct {
	WeightIn     decimal.Decimal
	WeightOut    decimal.Decimal
	Rejects      decimal.Decimal
	PurityBefore decimal.Decimal
	PurityAfter  decimal.Decimal
}

// AddQualityCheckCommand describes one sample from the cleaning line
type AddQualityCheckCommand struct {
	PieceWeight decimal.Decimal
	SoundGrams  int64
	RejectGrams int64
}

// CreateDraft validates and stores a new draft operation. Draft
// validation already rejects an input weight above the pool the flow
// draws from (raw remaining for a first pass, the cleaned total for a
// repeat pass) so the mistake surfaces at capture time, not at posting.
func (s *CleaningService) CreateDraft(ctx context.Context, cmd CreateDraftCommand) (*OperationResponse, error) {
	entry, err := s.entries.FindByID(ctx, cmd.LedgerEntryID)
	if err != nil {
		return nil, err
	}

	workDate := cmd.WorkDate
	if workDate.IsZero() {
		workDate = time.Now().UTC().Truncate(24 * time.Hour)
	}

	op, err := cleaning.NewCleaningOperation(entry.ID, cmd.Flow, workDate, cmd.WeightIn, cmd.TargetPurity, cmd.RecleaningReason)
	if err != nil {
		return nil, err
	}
	if op.WeightIn.GreaterThan(op.SourcePool(entry.RawWeightRemaining, entry.CleanedTotal)) {
		if op.Flow == cleaning.FlowRecleaning {
			return nil, shared.NewDomainError("INVALID_INPUT", "input weight exceeds the entry's cleaned total")
		}
		return nil, shared.NewDomainError("INVALID_INPUT", "input weight exceeds the entry's raw weight remaining")
	}

	if err := s.operations.Save(ctx, op); err != nil {
		return nil, err
	}
	s.publishDomainEvents(op)
	s.logger.Info("cleaning draft created",
		zap.String("operation_id", op.ID.String()),
		zap.String("entry_id", entry.ID.String()),
		zap.String("flow", string(op.Flow)))
	return ToOperationResponse(op), nil
}

// UpdateDraft replaces the editable figures of a draft operation
func (s *CleaningService) UpdateDraft(ctx context.Context, id uuid.UUID, cmd UpdateDraftCommand) (*OperationResponse, error) {
	op, err := s.operations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	expected := op.GetVersion()
	if err := op.UpdateDraft(cmd.WeightIn, cmd.WeightOut, cmd.Rejects, cmd.PurityBefore, cmd.PurityAfter); err != nil {
		return nil, err
	}
	if err := s.operations.SaveWithLock(ctx, op, expected); err != nil {
		return nil, err
	}
	return ToOperationResponse(op), nil
}

// AddQualityCheck appends a sample to a draft operation and refreshes
// its running output weight
func (s *CleaningService) AddQualityCheck(ctx context.Context, id uuid.UUID, cmd AddQualityCheckCommand) (*OperationResponse, error) {
	op, err := s.operations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	expected := op.GetVersion()
	if _, err := op.AddQualityCheck(cmd.PieceWeight, cmd.SoundGrams, cmd.RejectGrams); err != nil {
		return nil, err
	}
	if err := s.operations.SaveWithLock(ctx, op, expected); err != nil {
		return nil, err
	}
	return ToOperationResponse(op), nil
}

// Post applies a draft operation's result to its ledger entry. The
// whole step is one transaction: lock the operation, lock the entry,
// re-run validation against the current source pool, move the
// cumulative figures, write the movement records and stamp the posting
// time. A first pass drains raw remaining; a repeat pass reprocesses
// the cleaned pool and leaves raw untouched. Posting an already posted
// operation fails with AlreadyPosted and changes nothing.
func (s *CleaningService) Post(ctx context.Context, id uuid.UUID, operatorID *uuid.UUID) (*OperationResponse, error) {
	var (
		op     *cleaning.CleaningOperation
		series ledger.Series
	)
	err := s.txScope.Execute(ctx, func(repos ledgerapp.TransactionalRepositories) error {
		var err error
		op, err = repos.Operations().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if op.IsPosted() {
			return shared.ErrAlreadyPosted
		}

		entry, err := repos.Entries().FindByIDForUpdate(ctx, op.LedgerEntryID)
		if err != nil {
			return err
		}
		series = entry.Series()

		if err := op.ValidateForPosting(entry.RawWeightRemaining, entry.CleanedTotal); err != nil {
			return err
		}

		rawBefore := entry.RawWeightRemaining
		cleanedBefore := entry.CleanedTotal
		rejectsBefore := entry.RejectsTotal

		expectedEntry := entry.GetVersion()
		var movements []movementSpec
		if op.Flow == cleaning.FlowRecleaning {
			if err := entry.ApplyRecleaningResult(op.WeightIn, op.WeightOut, op.Rejects); err != nil {
				return err
			}
			movements = []movementSpec{
				{ledger.MovementCleanedIn, op.WeightOut.Sub(op.WeightIn), cleanedBefore, entry.CleanedTotal},
				{ledger.MovementRejectOut, op.Rejects, rejectsBefore, entry.RejectsTotal},
			}
		} else {
			if err := entry.ApplyCleaningResult(op.WeightIn, op.WeightOut, op.Rejects); err != nil {
				return err
			}
			movements = []movementSpec{
				{ledger.MovementRawOut, op.WeightIn, rawBefore, entry.RawWeightRemaining},
				{ledger.MovementCleanedIn, op.WeightOut, cleanedBefore, entry.CleanedTotal},
				{ledger.MovementRejectOut, op.Rejects, rejectsBefore, entry.RejectsTotal},
			}
		}

		for _, m := range movements {
			mov, err := ledger.NewLedgerTransaction(entry.ID, m.typ, m.qty, m.before, m.after)
			if err != nil {
				return err
			}
			mov.WithOperation(op.ID)
			if operatorID != nil {
				mov.WithOperator(*operatorID)
			}
			if err := repos.Movements().Create(ctx, mov); err != nil {
				return err
			}
		}

		if err := repos.Entries().SaveWithLock(ctx, entry, expectedEntry); err != nil {
			return err
		}

		expectedOp := op.GetVersion()
		if err := op.MarkPosted(time.Now(), operatorID); err != nil {
			return err
		}
		return repos.Operations().SaveWithLock(ctx, op, expectedOp)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateAvailability(ctx, series)
	s.publishDomainEvents(op)
	s.logger.Info("cleaning operation posted",
		zap.String("operation_id", op.ID.String()),
		zap.String("entry_id", op.LedgerEntryID.String()),
		zap.String("weight_in", op.WeightIn.String()),
		zap.String("weight_out", op.WeightOut.String()),
		zap.String("rejects", op.Rejects.String()))
	return ToOperationResponse(op), nil
}

// Reverse compensates a posted operation: raw weight returns to the
// pool, cleaned and reject totals roll back and the operation becomes
// a draft again. Compensating movement records carry negated
// quantities so the audit trail stays append-only.
func (s *CleaningService) Reverse(ctx context.Context, id uuid.UUID, operatorID *uuid.UUID) (*OperationResponse, error) {
	var (
		op     *cleaning.CleaningOperation
		series ledger.Series
	)
	err := s.txScope.Execute(ctx, func(repos ledgerapp.TransactionalRepositories) error {
		var err error
		op, err = repos.Operations().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !op.IsPosted() {
			return shared.ErrInvalidState
		}

		entry, err := repos.Entries().FindByIDForUpdate(ctx, op.LedgerEntryID)
		if err != nil {
			return err
		}
		series = entry.Series()

		rawBefore := entry.RawWeightRemaining
		cleanedBefore := entry.CleanedTotal
		rejectsBefore := entry.RejectsTotal

		expectedEntry := entry.GetVersion()
		var movements []movementSpec
		if op.Flow == cleaning.FlowRecleaning {
			if err := entry.RevertRecleaningResult(op.WeightIn, op.WeightOut, op.Rejects); err != nil {
				return err
			}
			movements = []movementSpec{
				{ledger.MovementCleanedIn, op.WeightIn.Sub(op.WeightOut), cleanedBefore, entry.CleanedTotal},
				{ledger.MovementRejectOut, op.Rejects.Neg(), rejectsBefore, entry.RejectsTotal},
			}
		} else {
			if err := entry.RevertCleaningResult(op.WeightIn, op.WeightOut, op.Rejects); err != nil {
				return err
			}
			movements = []movementSpec{
				{ledger.MovementRawOut, op.WeightIn.Neg(), rawBefore, entry.RawWeightRemaining},
				{ledger.MovementCleanedIn, op.WeightOut.Neg(), cleanedBefore, entry.CleanedTotal},
				{ledger.MovementRejectOut, op.Rejects.Neg(), rejectsBefore, entry.RejectsTotal},
			}
		}

		for _, m := range movements {
			mov, err := ledger.NewLedgerTransaction(entry.ID, m.typ, m.qty, m.before, m.after)
			if err != nil {
				return err
			}
			mov.WithOperation(op.ID).WithReference("reversal")
			if operatorID != nil {
				mov.WithOperator(*operatorID)
			}
			if err := repos.Movements().Create(ctx, mov); err != nil {
				return err
			}
		}

		if err := repos.Entries().SaveWithLock(ctx, entry, expectedEntry); err != nil {
			return err
		}

		expectedOp := op.GetVersion()
		if err := op.MarkReversed(); err != nil {
			return err
		}
		return repos.Operations().SaveWithLock(ctx, op, expectedOp)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateAvailability(ctx, series)
	s.publishDomainEvents(op)
	s.logger.Info("cleaning operation reversed",
		zap.String("operation_id", op.ID.String()),
		zap.String("entry_id", op.LedgerEntryID.String()))
	return ToOperationResponse(op), nil
}

// GetOperation retrieves an operation with its quality checks
func (s *CleaningService) GetOperation(ctx context.Context, id uuid.UUID) (*OperationResponse, error) {
	op, err := s.operations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToOperationResponse(op), nil
}

// ListOperations returns operations matching the filter with pagination
func (s *CleaningService) ListOperations(ctx context.Context, filter cleaning.OperationFilter) (*shared.Paginated[OperationResponse], error) {
	filter.Normalize()

	items, err := s.operations.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.operations.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(ToOperationResponses(items), total, filter.Page, filter.PageSize)
	return &page, nil
}

func (s *CleaningService) invalidateAvailability(ctx context.Context, series ledger.Series) {
	if s.cache == nil || series.OwnerID == uuid.Nil {
		return
	}
	if err := s.cache.Invalidate(ctx, series); err != nil {
		s.logger.Warn("availability cache invalidation failed", zap.String("series", series.Key()), zap.Error(err))
	}
}

func (s *CleaningService) publishDomainEvents(agg shared.AggregateRoot) {
	for _, ev := range agg.GetDomainEvents() {
		s.logger.Info("domain event",
			zap.String("event_type", ev.EventType()),
			zap.String("aggregate_id", ev.AggregateID().String()),
			zap.String("aggregate_type", ev.AggregateType()))
	}
	agg.ClearDomainEvents()
}
