package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/expenseflow/backend/internal/domain/budget"
	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/expenseflow/backend/internal/infrastructure/persistence/models"
)

var budgetOrderColumns = map[string]bool{
	"name":             true,
	"start_date":       true,
	"end_date":         true,
	"allocated_amount": true,
	"consumed_amount":  true,
}

// GormBudgetRepository implements budget.Repository using GORM
type GormBudgetRepository struct {
	db *gorm.DB
}

// NewGormBudgetRepository creates a new GORM budget repository
func NewGormBudgetRepository(db *gorm.DB) *GormBudgetRepository {
	return &GormBudgetRepository{db: db}
}

// FindByID finds a budget by ID
func (r *GormBudgetRepository) FindByID(ctx context.Context, id uuid.UUID) (*budget.Budget, error) {
	var model models.BudgetModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find budget: %w", err)
	}
	return model.ToDomain(), nil
}

// FindAll finds budgets matching the filter with pagination
func (r *GormBudgetRepository) FindAll(ctx context.Context, filter budget.Filter) (shared.Paginated[*budget.Budget], error) {
	normalizeFilter(&filter.Filter)

	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.BudgetModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*budget.Budget]{}, fmt.Errorf("failed to count budgets: %w", err)
	}

	query = applyOrdering(query, filter.Filter, budgetOrderColumns)
	query = applyPagination(query, filter.Filter)

	var rows []models.BudgetModel
	if err := query.Find(&rows).Error; err != nil {
		return shared.Paginated[*budget.Budget]{}, fmt.Errorf("failed to list budgets: %w", err)
	}
	return shared.NewPaginated(toDomainBudgets(rows), total, filter.Page, filter.PageSize), nil
}

// FindActiveCovering finds active budgets scoped to the segment or the
// department whose date range contains the given date
func (r *GormBudgetRepository) FindActiveCovering(ctx context.Context, segmentID, departmentID *uuid.UUID, date time.Time) ([]*budget.Budget, error) {
	query := r.db.WithContext(ctx).Model(&models.BudgetModel{}).
		Where("is_active = ?", true).
		Where("start_date <= ? AND end_date >= ?", date, date)

	switch {
	case segmentID != nil && departmentID != nil:
		query = query.Where("segment_id = ? OR department_id = ?", *segmentID, *departmentID)
	case segmentID != nil:
		query = query.Where("segment_id = ?", *segmentID)
	case departmentID != nil:
		query = query.Where("department_id = ?", *departmentID)
	default:
		return nil, nil
	}

	var rows []models.BudgetModel
	if err := query.Order("start_date asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find covering budgets: %w", err)
	}
	return toDomainBudgets(rows), nil
}

// ExistsOverlapping reports whether another budget with the same name
// and period overlaps the given date range
func (r *GormBudgetRepository) ExistsOverlapping(ctx context.Context, name string, period budget.Period, startDate, endDate time.Time, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.BudgetModel{}).
		Where("name = ? AND period = ?", name, period.String()).
		Where("start_date <= ? AND end_date >= ?", endDate, startDate)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check budget overlap: %w", err)
	}
	return count > 0, nil
}

// Save creates or updates a budget
func (r *GormBudgetRepository) Save(ctx context.Context, b *budget.Budget) error {
	model := models.BudgetModelFromDomain(b)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save budget: %w", err)
	}
	return nil
}

// SaveWithLock saves a budget with an optimistic version check
func (r *GormBudgetRepository) SaveWithLock(ctx context.Context, b *budget.Budget) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.BudgetModel
		err := tx.Select("version").First(&current, "id = ?", b.ID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return tx.Save(models.BudgetModelFromDomain(b)).Error
			}
			return fmt.Errorf("failed to load budget version: %w", err)
		}

		if current.Version != b.GetVersion() {
			return shared.NewDomainError("CONCURRENT_MODIFICATION",
				fmt.Sprintf("budget %s was modified concurrently: expected version %d, found %d",
					b.ID, b.GetVersion(), current.Version))
		}

		previousVersion := b.GetVersion()
		b.IncrementVersion()
		model := models.BudgetModelFromDomain(b)

		result := tx.Model(&models.BudgetModel{}).
			Where("id = ? AND version = ?", b.ID, previousVersion).
			Select("*").Omit("id", "created_at", "deleted_at").
			Updates(model)
		if result.Error != nil {
			return fmt.Errorf("failed to update budget: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION",
				fmt.Sprintf("budget %s was modified concurrently", b.ID))
		}
		return nil
	})
}

// Delete soft-deletes a budget
func (r *GormBudgetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.BudgetModel{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete budget: %w", result.Error)
	}
	return nil
}

func (r *GormBudgetRepository) applyFilter(query *gorm.DB, filter budget.Filter) *gorm.DB {
	if filter.SegmentID != nil {
		query = query.Where("segment_id = ?", *filter.SegmentID)
	}
	if filter.DepartmentID != nil {
		query = query.Where("department_id = ?", *filter.DepartmentID)
	}
	if filter.Period != nil {
		query = query.Where("period = ?", filter.Period.String())
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", pattern, pattern)
	}
	return query
}

func toDomainBudgets(rows []models.BudgetModel) []*budget.Budget {
	budgets := make([]*budget.Budget, len(rows))
	for i := range rows {
		budgets[i] = rows[i].ToDomain()
	}
	return budgets
}
