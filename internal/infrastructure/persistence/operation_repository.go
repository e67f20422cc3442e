package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/seedledger/backend/internal/domain/cleaning"
	"github.com/seedledger/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOperationRepository implements cleaning.OperationRepository using
// GORM. Quality checks are child entities and travel with the aggregate.
type GormOperationRepository struct {
	db *gorm.DB
}

// NewGormOperationRepository creates a new GormOperationRepository
func NewGormOperationRepository(db *gorm.DB) *GormOperationRepository {
	return &GormOperationRepository{db: db}
}

// FindByID retrieves an operation with its quality checks
func (r *GormOperationRepository) FindByID(ctx context.Context, id uuid.UUID) (*cleaning.CleaningOperation, error) {
	var op cleaning.CleaningOperation
	if err := r.db.WithContext(ctx).
		Preload("QualityChecks", func(db *gorm.DB) *gorm.DB {
			return db.Order("check_index ASC")
		}).
		First(&op, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &op, nil
}

// FindByIDForUpdate retrieves an operation with an exclusive row lock.
// SQLite serializes writers on its own; the lock clause only matters
// on Postgres.
func (r *GormOperationRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*cleaning.CleaningOperation, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var op cleaning.CleaningOperation
	if err := query.First(&op, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	// Locking clauses cannot combine with Preload joins, load the
	// checks separately inside the same transaction.
	if err := r.db.WithContext(ctx).
		Where("operation_id = ?", id).
		Order("check_index ASC").
		Find(&op.QualityChecks).Error; err != nil {
		return nil, err
	}
	return &op, nil
}

// FindByEntry returns all operations against a ledger entry, oldest first
func (r *GormOperationRepository) FindByEntry(ctx context.Context, entryID uuid.UUID) ([]cleaning.CleaningOperation, error) {
	var ops []cleaning.CleaningOperation
	if err := r.db.WithContext(ctx).
		Preload("QualityChecks", func(db *gorm.DB) *gorm.DB {
			return db.Order("check_index ASC")
		}).
		Where("ledger_entry_id = ?", entryID).
		Order("work_date ASC, created_at ASC").
		Find(&ops).Error; err != nil {
		return nil, err
	}
	return ops, nil
}

// CountPostedByEntry returns how many posted operations reference an entry
func (r *GormOperationRepository) CountPostedByEntry(ctx context.Context, entryID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&cleaning.CleaningOperation{}).
		Where("ledger_entry_id = ? AND status = ?", entryID, cleaning.StatusPosted).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// List returns operations matching the filter with pagination
func (r *GormOperationRepository) List(ctx context.Context, filter cleaning.OperationFilter) ([]cleaning.CleaningOperation, error) {
	var ops []cleaning.CleaningOperation
	query := r.applyFilter(r.db.WithContext(ctx).Model(&cleaning.CleaningOperation{}), filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := "work_date"
	if filter.OrderBy != "" {
		orderBy = filter.OrderBy
	}
	orderDir := "DESC"
	if strings.EqualFold(filter.OrderDir, "asc") {
		orderDir = "ASC"
	}

	if err := query.
		Preload("QualityChecks", func(db *gorm.DB) *gorm.DB {
			return db.Order("check_index ASC")
		}).
		Order(orderBy + " " + orderDir).
		Find(&ops).Error; err != nil {
		return nil, err
	}
	return ops, nil
}

// Count returns the number of operations matching the filter
func (r *GormOperationRepository) Count(ctx context.Context, filter cleaning.OperationFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&cleaning.CleaningOperation{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save persists an operation and its quality checks
func (r *GormOperationRepository) Save(ctx context.Context, op *cleaning.CleaningOperation) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(op).Error
}

// SaveWithLock persists an operation with an optimistic version check,
// then upserts its quality checks.
func (r *GormOperationRepository) SaveWithLock(ctx context.Context, op *cleaning.CleaningOperation, expectedVersion int) error {
	result := r.db.WithContext(ctx).
		Model(op).
		Where("id = ? AND version = ?", op.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":        op.Status,
			"weight_in":     op.WeightIn,
			"weight_out":    op.WeightOut,
			"rejects":       op.Rejects,
			"purity_before": op.PurityBefore,
			"purity_after":  op.PurityAfter,
			"posted_at":     op.PostedAt,
			"operator_id":   op.OperatorID,
			"version":       op.Version,
			"updated_at":    op.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}

	if len(op.QualityChecks) > 0 {
		if err := r.db.WithContext(ctx).Save(&op.QualityChecks).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *GormOperationRepository) applyFilter(query *gorm.DB, filter cleaning.OperationFilter) *gorm.DB {
	if filter.LedgerEntryID != nil {
		query = query.Where("ledger_entry_id = ?", *filter.LedgerEntryID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Flow != nil {
		query = query.Where("flow = ?", *filter.Flow)
	}
	return query
}

// Ensure GormOperationRepository implements the domain interface
var _ cleaning.OperationRepository = (*GormOperationRepository)(nil)
