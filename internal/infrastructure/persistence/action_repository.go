package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/expenseflow/backend/internal/domain/workflow"
	"github.com/expenseflow/backend/internal/infrastructure/persistence/models"
)

var actionOrderColumns = map[string]bool{
	"action_date": true,
	"action":      true,
}

// GormActionRepository implements workflow.ActionRepository using GORM
type GormActionRepository struct {
	db *gorm.DB
}

// NewGormActionRepository creates a new GORM approval action repository
func NewGormActionRepository(db *gorm.DB) *GormActionRepository {
	return &GormActionRepository{db: db}
}

// FindByID finds an approval action by ID
func (r *GormActionRepository) FindByID(ctx context.Context, id uuid.UUID) (*workflow.ApprovalAction, error) {
	var model models.ActionModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find approval action: %w", err)
	}
	return model.ToDomain(), nil
}

// FindByExpense finds all actions on an expense ordered by action date
func (r *GormActionRepository) FindByExpense(ctx context.Context, expenseID uuid.UUID) ([]*workflow.ApprovalAction, error) {
	var rows []models.ActionModel
	err := r.db.WithContext(ctx).
		Where("expense_id = ?", expenseID).
		Order("action_date asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list approval actions: %w", err)
	}
	return toDomainActions(rows), nil
}

// FindLatestByExpense finds the most recent action on an expense
func (r *GormActionRepository) FindLatestByExpense(ctx context.Context, expenseID uuid.UUID) (*workflow.ApprovalAction, error) {
	var model models.ActionModel
	err := r.db.WithContext(ctx).
		Where("expense_id = ?", expenseID).
		Order("action_date desc").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find latest approval action: %w", err)
	}
	return model.ToDomain(), nil
}

// FindByApprover finds actions taken by an approver with pagination
func (r *GormActionRepository) FindByApprover(ctx context.Context, approverID uuid.UUID, filter shared.Filter) (shared.Paginated[*workflow.ApprovalAction], error) {
	normalizeFilter(&filter)

	query := r.db.WithContext(ctx).Model(&models.ActionModel{}).Where("approver_id = ?", approverID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*workflow.ApprovalAction]{}, fmt.Errorf("failed to count approval actions: %w", err)
	}

	query = applyOrdering(query, filter, actionOrderColumns)
	query = applyPagination(query, filter)

	var rows []models.ActionModel
	if err := query.Find(&rows).Error; err != nil {
		return shared.Paginated[*workflow.ApprovalAction]{}, fmt.Errorf("failed to list approval actions: %w", err)
	}
	return shared.NewPaginated(toDomainActions(rows), total, filter.Page, filter.PageSize), nil
}

// FindPendingDelegations finds delegation actions addressed to a user
// that have not been followed by a later action on the same expense.
func (r *GormActionRepository) FindPendingDelegations(ctx context.Context, delegateID uuid.UUID) ([]*workflow.ApprovalAction, error) {
	var rows []models.ActionModel
	err := r.db.WithContext(ctx).
		Where("action = ? AND delegated_to = ?", workflow.ActionDelegated.String(), delegateID).
		Where(`NOT EXISTS (
			SELECT 1 FROM approval_actions later
			WHERE later.expense_id = approval_actions.expense_id
			  AND later.action_date > approval_actions.action_date
			  AND later.deleted_at IS NULL
		)`).
		Order("action_date asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending delegations: %w", err)
	}
	return toDomainActions(rows), nil
}

// ExistsApprovedAtStep reports whether an expense has an approval
// recorded at the given step
func (r *GormActionRepository) ExistsApprovedAtStep(ctx context.Context, expenseID, stepID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ActionModel{}).
		Where("expense_id = ? AND step_id = ? AND action = ?", expenseID, stepID, workflow.ActionApproved.String()).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check step approval: %w", err)
	}
	return count > 0, nil
}

// Save persists an approval action
func (r *GormActionRepository) Save(ctx context.Context, a *workflow.ApprovalAction) error {
	model := models.ActionModelFromDomain(a)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save approval action: %w", err)
	}
	return nil
}

func toDomainActions(rows []models.ActionModel) []*workflow.ApprovalAction {
	actions := make([]*workflow.ApprovalAction, len(rows))
	for i := range rows {
		actions[i] = rows[i].ToDomain()
	}
	return actions
}
