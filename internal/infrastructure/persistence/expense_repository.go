package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/expenseflow/backend/internal/domain/expense"
	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/expenseflow/backend/internal/infrastructure/persistence/models"
)

var expenseOrderColumns = map[string]bool{
	"expense_date": true,
	"total_amount": true,
	"status":       true,
	"vendor":       true,
}

// GormExpenseRepository implements expense.Repository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GORM expense repository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// FindByID finds an expense by ID with its allocations and documents
func (r *GormExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*expense.Expense, error) {
	var model models.ExpenseModel
	err := r.db.WithContext(ctx).
		Preload("Allocations").
		Preload("Documents").
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find expense: %w", err)
	}
	return model.ToDomain(), nil
}

// FindAll finds expenses matching the filter
func (r *GormExpenseRepository) FindAll(ctx context.Context, filter expense.Filter) ([]expense.Expense, error) {
	normalizeFilter(&filter.Filter)

	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ExpenseModel{}), filter)
	query = applyOrdering(query, filter.Filter, expenseOrderColumns)
	query = applyPagination(query, filter.Filter)

	var rows []models.ExpenseModel
	if err := query.Preload("Allocations").Preload("Documents").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return toDomainExpenses(rows), nil
}

// FindBySubmitter finds expenses created by a user
func (r *GormExpenseRepository) FindBySubmitter(ctx context.Context, submitterID uuid.UUID, filter expense.Filter) ([]expense.Expense, error) {
	filter.SubmitterID = &submitterID
	return r.FindAll(ctx, filter)
}

// FindByStatus finds expenses in a given status
func (r *GormExpenseRepository) FindByStatus(ctx context.Context, status expense.Status, filter expense.Filter) ([]expense.Expense, error) {
	filter.Status = &status
	return r.FindAll(ctx, filter)
}

// FindPendingApprovals finds submitted expenses ordered oldest first
func (r *GormExpenseRepository) FindPendingApprovals(ctx context.Context) ([]expense.Expense, error) {
	var rows []models.ExpenseModel
	err := r.db.WithContext(ctx).
		Preload("Allocations").
		Preload("Documents").
		Where("status = ?", expense.StatusSubmitted.String()).
		Order("submission_date asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending approvals: %w", err)
	}
	return toDomainExpenses(rows), nil
}

// Save creates or updates an expense, replacing its child collections
func (r *GormExpenseRepository) Save(ctx context.Context, e *expense.Expense) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveExpense(tx, e)
	})
}

// SaveWithLock saves an expense with an optimistic version check
func (r *GormExpenseRepository) SaveWithLock(ctx context.Context, e *expense.Expense) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.ExpenseModel
		err := tx.Select("version").First(&current, "id = ?", e.ID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return saveExpense(tx, e)
			}
			return fmt.Errorf("failed to load expense version: %w", err)
		}

		if current.Version != e.GetVersion() {
			return shared.NewDomainError("CONCURRENT_MODIFICATION",
				fmt.Sprintf("expense %s was modified concurrently: expected version %d, found %d",
					e.ID, e.GetVersion(), current.Version))
		}

		previousVersion := e.GetVersion()
		e.IncrementVersion()
		model := models.ExpenseModelFromDomain(e)
		allocations, documents := detachExpenseChildren(model)

		if err := clearExpenseChildren(tx, model.ID); err != nil {
			return err
		}

		result := tx.Model(&models.ExpenseModel{}).
			Where("id = ? AND version = ?", e.ID, previousVersion).
			Select("*").Omit("id", "created_at", "deleted_at").
			Updates(model)
		if result.Error != nil {
			return fmt.Errorf("failed to update expense: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION",
				fmt.Sprintf("expense %s was modified concurrently", e.ID))
		}
		return insertExpenseChildren(tx, allocations, documents)
	})
}

// Count counts expenses matching the filter
func (r *GormExpenseRepository) Count(ctx context.Context, filter expense.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ExpenseModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count expenses: %w", err)
	}
	return count, nil
}

func (r *GormExpenseRepository) applyFilter(query *gorm.DB, filter expense.Filter) *gorm.DB {
	if filter.SubmitterID != nil {
		query = query.Where("submitter_id = ?", *filter.SubmitterID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", filter.Status.String())
	}
	if filter.FromDate != nil {
		query = query.Where("expense_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("expense_date <= ?", *filter.ToDate)
	}
	if filter.MinAmount != nil {
		query = query.Where("total_amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("total_amount <= ?", *filter.MaxAmount)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("vendor LIKE ? OR description LIKE ?", pattern, pattern)
	}
	return query
}

// saveExpense upserts an expense and rewrites its child collections
func saveExpense(tx *gorm.DB, e *expense.Expense) error {
	model := models.ExpenseModelFromDomain(e)
	allocations, documents := detachExpenseChildren(model)

	if err := clearExpenseChildren(tx, model.ID); err != nil {
		return err
	}
	if err := tx.Save(model).Error; err != nil {
		return fmt.Errorf("failed to save expense: %w", err)
	}
	return insertExpenseChildren(tx, allocations, documents)
}

// detachExpenseChildren pulls the child collections off the model so the
// parent row can be written without triggering association saves.
func detachExpenseChildren(model *models.ExpenseModel) ([]models.AllocationModel, []models.DocumentModel) {
	allocations := model.Allocations
	documents := model.Documents
	model.Allocations = nil
	model.Documents = nil
	return allocations, documents
}

// clearExpenseChildren hard-deletes existing allocation and document rows
// so the save writes the aggregate's current collections verbatim.
func clearExpenseChildren(tx *gorm.DB, expenseID uuid.UUID) error {
	if err := tx.Unscoped().Where("expense_id = ?", expenseID).Delete(&models.AllocationModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear allocations: %w", err)
	}
	if err := tx.Unscoped().Where("expense_id = ?", expenseID).Delete(&models.DocumentModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear documents: %w", err)
	}
	return nil
}

func insertExpenseChildren(tx *gorm.DB, allocations []models.AllocationModel, documents []models.DocumentModel) error {
	if len(allocations) > 0 {
		if err := tx.Create(&allocations).Error; err != nil {
			return fmt.Errorf("failed to save allocations: %w", err)
		}
	}
	if len(documents) > 0 {
		if err := tx.Create(&documents).Error; err != nil {
			return fmt.Errorf("failed to save documents: %w", err)
		}
	}
	return nil
}

func toDomainExpenses(rows []models.ExpenseModel) []expense.Expense {
	expenses := make([]expense.Expense, len(rows))
	for i := range rows {
		expenses[i] = *rows[i].ToDomain()
	}
	return expenses
}
