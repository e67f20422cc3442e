package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/seedledger/backend/internal/domain/ledger"
	"github.com/seedledger/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormEntryRepository implements ledger.EntryRepository using GORM
type GormEntryRepository struct {
	db *gorm.DB
}

// NewGormEntryRepository creates a new GormEntryRepository
func NewGormEntryRepository(db *gorm.DB) *GormEntryRepository {
	return &GormEntryRepository{db: db}
}

// FindByID finds a ledger entry by its ID
func (r *GormEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.LedgerEntry, error) {
	var entry ledger.LedgerEntry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindByIDForUpdate finds a ledger entry with an exclusive row lock.
// SQLite serializes writers on its own; the lock clause only matters
// on Postgres.
func (r *GormEntryRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ledger.LedgerEntry, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var entry ledger.LedgerEntry
	if err := query.First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindSeries returns every entry of a series in replay order
func (r *GormEntryRepository) FindSeries(ctx context.Context, series ledger.Series) ([]ledger.LedgerEntry, error) {
	var entries []ledger.LedgerEntry
	if err := r.seriesQuery(ctx, series).
		Order("entry_date ASC, row_id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindOwnerSeedType returns an owner's entries for a seed type across
// every warehouse, in replay order
func (r *GormEntryRepository) FindOwnerSeedType(ctx context.Context, ownerID, seedTypeID uuid.UUID) ([]ledger.LedgerEntry, error) {
	var entries []ledger.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND seed_type_id = ?", ownerID, seedTypeID).
		Order("entry_date ASC, row_id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindSeriesUpToDate returns the entries of a series dated on or
// before the given date, in replay order
func (r *GormEntryRepository) FindSeriesUpToDate(ctx context.Context, series ledger.Series, date time.Time) ([]ledger.LedgerEntry, error) {
	var entries []ledger.LedgerEntry
	if err := r.seriesQuery(ctx, series).
		Where("entry_date <= ?", date).
		Order("entry_date ASC, row_id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// List returns entries matching the filter with pagination
func (r *GormEntryRepository) List(ctx context.Context, filter ledger.EntryFilter) ([]ledger.LedgerEntry, error) {
	var entries []ledger.LedgerEntry
	query := r.applyFilter(r.db.WithContext(ctx).Model(&ledger.LedgerEntry{}), filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := "entry_date"
	if filter.OrderBy != "" {
		orderBy = filter.OrderBy
	}
	orderDir := "ASC"
	if strings.EqualFold(filter.OrderDir, "desc") {
		orderDir = "DESC"
	}
	query = query.Order(orderBy + " " + orderDir).Order("row_id " + orderDir)

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Count returns the number of entries matching the filter
func (r *GormEntryRepository) Count(ctx context.Context, filter ledger.EntryFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&ledger.LedgerEntry{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a ledger entry. A unique index violation on
// the series sequence surfaces as DuplicateSequenceNo.
func (r *GormEntryRepository) Save(ctx context.Context, entry *ledger.LedgerEntry) error {
	if err := r.db.WithContext(ctx).Save(entry).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrDuplicateSequenceNo
		}
		return err
	}
	return nil
}

// SaveWithLock saves the mutable figures of an entry with an optimistic
// version check. Identity columns are never written here.
func (r *GormEntryRepository) SaveWithLock(ctx context.Context, entry *ledger.LedgerEntry, expectedVersion int) error {
	result := r.db.WithContext(ctx).
		Model(entry).
		Where("id = ? AND version = ?", entry.ID, expectedVersion).
		Updates(map[string]interface{}{
			"entry_date":           entry.EntryDate,
			"raw_weight_remaining": entry.RawWeightRemaining,
			"cleaned_total":        entry.CleanedTotal,
			"rejects_total":        entry.RejectsTotal,
			"document_stale":       entry.DocumentStale,
			"version":              entry.Version,
			"updated_at":           entry.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

func (r *GormEntryRepository) seriesQuery(ctx context.Context, series ledger.Series) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&ledger.LedgerEntry{}).
		Where("owner_id = ? AND warehouse_id = ? AND seed_type_id = ?",
			series.OwnerID, series.WarehouseID, series.SeedTypeID)
}

func (r *GormEntryRepository) applyFilter(query *gorm.DB, filter ledger.EntryFilter) *gorm.DB {
	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.WarehouseID != nil {
		query = query.Where("warehouse_id = ?", *filter.WarehouseID)
	}
	if filter.SeedTypeID != nil {
		query = query.Where("seed_type_id = ?", *filter.SeedTypeID)
	}
	if filter.Grade != nil {
		query = query.Where("grade = ?", *filter.Grade)
	}
	if filter.FlowClass != nil {
		query = query.Where("flow_class = ?", *filter.FlowClass)
	}
	if filter.DateFrom != nil {
		query = query.Where("entry_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("entry_date <= ?", *filter.DateTo)
	}
	if filter.StaleOnly {
		query = query.Where("document_stale = ?", true)
	}
	return query
}

// isUniqueViolation reports whether an error came from a unique index
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}

// Ensure GormEntryRepository implements the domain interface
var _ ledger.EntryRepository = (*GormEntryRepository)(nil)
