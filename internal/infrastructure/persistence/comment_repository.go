package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/expenseflow/backend/internal/domain/workflow"
	"github.com/expenseflow/backend/internal/infrastructure/persistence/models"
)

// GormCommentRepository implements workflow.CommentRepository using GORM
type GormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a new GORM comment repository
func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

// FindByID finds a comment by ID
func (r *GormCommentRepository) FindByID(ctx context.Context, id uuid.UUID) (*workflow.Comment, error) {
	var model models.CommentModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}
	return model.ToDomain(), nil
}

// FindByExpense finds all comments on an expense oldest first
func (r *GormCommentRepository) FindByExpense(ctx context.Context, expenseID uuid.UUID) ([]*workflow.Comment, error) {
	var rows []models.CommentModel
	err := r.db.WithContext(ctx).
		Where("expense_id = ?", expenseID).
		Order("created_at asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	comments := make([]*workflow.Comment, len(rows))
	for i := range rows {
		comments[i] = rows[i].ToDomain()
	}
	return comments, nil
}

// Save persists a comment
func (r *GormCommentRepository) Save(ctx context.Context, c *workflow.Comment) error {
	model := models.CommentModelFromDomain(c)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save comment: %w", err)
	}
	return nil
}

// Delete soft-deletes a comment
func (r *GormCommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CommentModel{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete comment: %w", result.Error)
	}
	return nil
}
