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

var alertOrderColumns = map[string]bool{
	"triggered_date": true,
}

// GormAlertRepository implements budget.AlertRepository using GORM
type GormAlertRepository struct {
	db *gorm.DB
}

// NewGormAlertRepository creates a new GORM alert repository
func NewGormAlertRepository(db *gorm.DB) *GormAlertRepository {
	return &GormAlertRepository{db: db}
}

// FindByID finds an alert by ID
func (r *GormAlertRepository) FindByID(ctx context.Context, id uuid.UUID) (*budget.BudgetAlert, error) {
	var model models.AlertModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find alert: %w", err)
	}
	return model.ToDomain(), nil
}

// FindByBudget finds all alerts for a budget, newest first
func (r *GormAlertRepository) FindByBudget(ctx context.Context, budgetID uuid.UUID) ([]*budget.BudgetAlert, error) {
	var rows []models.AlertModel
	err := r.db.WithContext(ctx).
		Where("budget_id = ?", budgetID).
		Order("triggered_date desc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return toDomainAlerts(rows), nil
}

// FindUnacknowledged finds all open alerts, oldest first
func (r *GormAlertRepository) FindUnacknowledged(ctx context.Context) ([]*budget.BudgetAlert, error) {
	var rows []models.AlertModel
	err := r.db.WithContext(ctx).
		Where("is_acknowledged = ?", false).
		Order("triggered_date asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list open alerts: %w", err)
	}
	return toDomainAlerts(rows), nil
}

// FindRecent finds alerts triggered at or after the given time
func (r *GormAlertRepository) FindRecent(ctx context.Context, since time.Time, filter shared.Filter) (shared.Paginated[*budget.BudgetAlert], error) {
	normalizeFilter(&filter)

	query := r.db.WithContext(ctx).Model(&models.AlertModel{}).Where("triggered_date >= ?", since)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*budget.BudgetAlert]{}, fmt.Errorf("failed to count alerts: %w", err)
	}

	query = applyOrdering(query, filter, alertOrderColumns)
	query = applyPagination(query, filter)

	var rows []models.AlertModel
	if err := query.Find(&rows).Error; err != nil {
		return shared.Paginated[*budget.BudgetAlert]{}, fmt.Errorf("failed to list alerts: %w", err)
	}
	return shared.NewPaginated(toDomainAlerts(rows), total, filter.Page, filter.PageSize), nil
}

// ExistsUnacknowledged reports whether an open alert already exists for
// the budget and threshold pair
func (r *GormAlertRepository) ExistsUnacknowledged(ctx context.Context, budgetID, thresholdID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AlertModel{}).
		Where("budget_id = ? AND threshold_id = ? AND is_acknowledged = ?", budgetID, thresholdID, false).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check open alerts: %w", err)
	}
	return count > 0, nil
}

// CreateIfAbsent inserts the alert unless an open alert already exists
// for its (budget, threshold) pair. The dedup check and the insert
// share one transaction, and the partial unique index on open pairs
// catches whatever races past the check under concurrent sweeps.
func (r *GormAlertRepository) CreateIfAbsent(ctx context.Context, a *budget.BudgetAlert) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.AlertModel{}).
			Where("budget_id = ? AND threshold_id = ? AND is_acknowledged = ?", a.BudgetID, a.ThresholdID, false).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		if err := tx.Create(models.AlertModelFromDomain(a)).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create alert: %w", err)
	}
	return created, nil
}

// Save persists an alert
func (r *GormAlertRepository) Save(ctx context.Context, a *budget.BudgetAlert) error {
	model := models.AlertModelFromDomain(a)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save alert: %w", err)
	}
	return nil
}

// DeleteAcknowledged removes acknowledged alerts for a budget and
// returns the number removed
func (r *GormAlertRepository) DeleteAcknowledged(ctx context.Context, budgetID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("budget_id = ? AND is_acknowledged = ?", budgetID, true).
		Delete(&models.AlertModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete acknowledged alerts: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteOlderThan removes alerts triggered before the cutoff and
// returns the number removed
func (r *GormAlertRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("triggered_date < ?", cutoff).
		Delete(&models.AlertModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete old alerts: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func toDomainAlerts(rows []models.AlertModel) []*budget.BudgetAlert {
	alerts := make([]*budget.BudgetAlert, len(rows))
	for i := range rows {
		alerts[i] = rows[i].ToDomain()
	}
	return alerts
}
