package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/expenseflow/backend/internal/domain/budget"
	"github.com/expenseflow/backend/internal/infrastructure/persistence/models"
)

// GormThresholdRepository implements budget.ThresholdRepository using GORM
type GormThresholdRepository struct {
	db *gorm.DB
}

// NewGormThresholdRepository creates a new GORM threshold repository
func NewGormThresholdRepository(db *gorm.DB) *GormThresholdRepository {
	return &GormThresholdRepository{db: db}
}

// FindByID finds a threshold by ID
func (r *GormThresholdRepository) FindByID(ctx context.Context, id uuid.UUID) (*budget.BudgetThreshold, error) {
	var model models.ThresholdModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find threshold: %w", err)
	}
	return model.ToDomain(), nil
}

// FindByBudget finds all thresholds for a budget ordered by percentage
func (r *GormThresholdRepository) FindByBudget(ctx context.Context, budgetID uuid.UUID) ([]*budget.BudgetThreshold, error) {
	var rows []models.ThresholdModel
	err := r.db.WithContext(ctx).
		Where("budget_id = ?", budgetID).
		Order("percentage asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list thresholds: %w", err)
	}
	return toDomainThresholds(rows), nil
}

// FindAlertEnabled finds all thresholds with alerting enabled
func (r *GormThresholdRepository) FindAlertEnabled(ctx context.Context) ([]*budget.BudgetThreshold, error) {
	var rows []models.ThresholdModel
	err := r.db.WithContext(ctx).
		Where("alert_enabled = ?", true).
		Order("budget_id asc, percentage asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list alert-enabled thresholds: %w", err)
	}
	return toDomainThresholds(rows), nil
}

// ExistsByBudgetAndPercentage reports whether the budget already has a
// threshold at the given percentage
func (r *GormThresholdRepository) ExistsByBudgetAndPercentage(ctx context.Context, budgetID uuid.UUID, percentage string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.ThresholdModel{}).
		Where("budget_id = ? AND percentage = ?", budgetID, percentage)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check threshold percentage: %w", err)
	}
	return count > 0, nil
}

// Save persists a threshold
func (r *GormThresholdRepository) Save(ctx context.Context, t *budget.BudgetThreshold) error {
	model := models.ThresholdModelFromDomain(t)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save threshold: %w", err)
	}
	return nil
}

// Delete soft-deletes a threshold
func (r *GormThresholdRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ThresholdModel{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete threshold: %w", result.Error)
	}
	return nil
}

func toDomainThresholds(rows []models.ThresholdModel) []*budget.BudgetThreshold {
	thresholds := make([]*budget.BudgetThreshold, len(rows))
	for i := range rows {
		thresholds[i] = rows[i].ToDomain()
	}
	return thresholds
}
