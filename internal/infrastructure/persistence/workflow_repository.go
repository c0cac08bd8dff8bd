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

var workflowOrderColumns = map[string]bool{
	"name": true,
}

// GormWorkflowRepository implements workflow.Repository using GORM
type GormWorkflowRepository struct {
	db *gorm.DB
}

// NewGormWorkflowRepository creates a new GORM workflow repository
func NewGormWorkflowRepository(db *gorm.DB) *GormWorkflowRepository {
	return &GormWorkflowRepository{db: db}
}

// FindByID finds a workflow by ID with its steps
func (r *GormWorkflowRepository) FindByID(ctx context.Context, id uuid.UUID) (*workflow.ApprovalWorkflow, error) {
	var model models.WorkflowModel
	err := r.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("step_order asc") }).
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find workflow: %w", err)
	}
	return model.ToDomain(), nil
}

// FindByName finds a workflow by exact name
func (r *GormWorkflowRepository) FindByName(ctx context.Context, name string) (*workflow.ApprovalWorkflow, error) {
	var model models.WorkflowModel
	err := r.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("step_order asc") }).
		First(&model, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find workflow by name: %w", err)
	}
	return model.ToDomain(), nil
}

// FindAll finds workflows matching the filter with pagination
func (r *GormWorkflowRepository) FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[*workflow.ApprovalWorkflow], error) {
	normalizeFilter(&filter)

	query := r.db.WithContext(ctx).Model(&models.WorkflowModel{})
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*workflow.ApprovalWorkflow]{}, fmt.Errorf("failed to count workflows: %w", err)
	}

	query = applyOrdering(query, filter, workflowOrderColumns)
	query = applyPagination(query, filter)

	var rows []models.WorkflowModel
	if err := query.Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("step_order asc") }).Find(&rows).Error; err != nil {
		return shared.Paginated[*workflow.ApprovalWorkflow]{}, fmt.Errorf("failed to list workflows: %w", err)
	}

	items := make([]*workflow.ApprovalWorkflow, len(rows))
	for i := range rows {
		items[i] = rows[i].ToDomain()
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// FindActive finds all active workflows
func (r *GormWorkflowRepository) FindActive(ctx context.Context) ([]*workflow.ApprovalWorkflow, error) {
	var rows []models.WorkflowModel
	err := r.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("step_order asc") }).
		Where("is_active = ?", true).
		Order("name asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active workflows: %w", err)
	}
	items := make([]*workflow.ApprovalWorkflow, len(rows))
	for i := range rows {
		items[i] = rows[i].ToDomain()
	}
	return items, nil
}

// ExistsByName reports whether a workflow with the name exists
func (r *GormWorkflowRepository) ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.WorkflowModel{}).Where("name = ?", name)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check workflow name: %w", err)
	}
	return count > 0, nil
}

// Save creates or updates a workflow, replacing its step collection
func (r *GormWorkflowRepository) Save(ctx context.Context, w *workflow.ApprovalWorkflow) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveWorkflow(tx, w)
	})
}

// SaveWithLock saves a workflow with an optimistic version check
func (r *GormWorkflowRepository) SaveWithLock(ctx context.Context, w *workflow.ApprovalWorkflow) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.WorkflowModel
		err := tx.Select("version").First(&current, "id = ?", w.ID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return saveWorkflow(tx, w)
			}
			return fmt.Errorf("failed to load workflow version: %w", err)
		}

		if current.Version != w.GetVersion() {
			return shared.NewDomainError("CONCURRENT_MODIFICATION",
				fmt.Sprintf("workflow %s was modified concurrently: expected version %d, found %d",
					w.ID, w.GetVersion(), current.Version))
		}

		previousVersion := w.GetVersion()
		w.IncrementVersion()
		model := models.WorkflowModelFromDomain(w)
		steps := model.Steps
		model.Steps = nil

		if err := clearWorkflowSteps(tx, model.ID); err != nil {
			return err
		}

		result := tx.Model(&models.WorkflowModel{}).
			Where("id = ? AND version = ?", w.ID, previousVersion).
			Select("*").Omit("id", "created_at", "deleted_at").
			Updates(model)
		if result.Error != nil {
			return fmt.Errorf("failed to update workflow: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION",
				fmt.Sprintf("workflow %s was modified concurrently", w.ID))
		}
		return insertWorkflowSteps(tx, steps)
	})
}

// Delete soft-deletes a workflow
func (r *GormWorkflowRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.WorkflowModel{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete workflow: %w", result.Error)
	}
	return nil
}

func saveWorkflow(tx *gorm.DB, w *workflow.ApprovalWorkflow) error {
	model := models.WorkflowModelFromDomain(w)
	steps := model.Steps
	model.Steps = nil

	if err := clearWorkflowSteps(tx, model.ID); err != nil {
		return err
	}
	if err := tx.Save(model).Error; err != nil {
		return fmt.Errorf("failed to save workflow: %w", err)
	}
	return insertWorkflowSteps(tx, steps)
}

func clearWorkflowSteps(tx *gorm.DB, workflowID uuid.UUID) error {
	if err := tx.Unscoped().Where("workflow_id = ?", workflowID).Delete(&models.StepModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear workflow steps: %w", err)
	}
	return nil
}

func insertWorkflowSteps(tx *gorm.DB, steps []models.StepModel) error {
	if len(steps) == 0 {
		return nil
	}
	if err := tx.Create(&steps).Error; err != nil {
		return fmt.Errorf("failed to save workflow steps: %w", err)
	}
	return nil
}
