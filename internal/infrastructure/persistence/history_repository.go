package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/expenseflow/backend/internal/domain/workflow"
	"github.com/expenseflow/backend/internal/infrastructure/persistence/models"
)

var historyOrderColumns = map[string]bool{
	"timestamp": true,
	"to_status": true,
}

// GormHistoryRepository implements workflow.HistoryRepository using GORM
type GormHistoryRepository struct {
	db *gorm.DB
}

// NewGormHistoryRepository creates a new GORM history repository
func NewGormHistoryRepository(db *gorm.DB) *GormHistoryRepository {
	return &GormHistoryRepository{db: db}
}

// FindByExpense finds the full transition trail for an expense
func (r *GormHistoryRepository) FindByExpense(ctx context.Context, expenseID uuid.UUID) ([]*workflow.History, error) {
	var rows []models.HistoryModel
	err := r.db.WithContext(ctx).
		Where("expense_id = ?", expenseID).
		Order("timestamp asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return toDomainHistory(rows), nil
}

// FindLatestByExpense finds the most recent transition for an expense
func (r *GormHistoryRepository) FindLatestByExpense(ctx context.Context, expenseID uuid.UUID) (*workflow.History, error) {
	var model models.HistoryModel
	err := r.db.WithContext(ctx).
		Where("expense_id = ?", expenseID).
		Order("timestamp desc").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find latest history entry: %w", err)
	}
	return model.ToDomain(), nil
}

// FindByActor finds transitions performed by a user with pagination
func (r *GormHistoryRepository) FindByActor(ctx context.Context, actorID uuid.UUID, filter shared.Filter) (shared.Paginated[*workflow.History], error) {
	return r.paginate(ctx, filter, r.db.WithContext(ctx).Model(&models.HistoryModel{}).Where("actor_id = ?", actorID))
}

// FindSince finds transitions recorded at or after the given time
func (r *GormHistoryRepository) FindSince(ctx context.Context, since time.Time, filter shared.Filter) (shared.Paginated[*workflow.History], error) {
	return r.paginate(ctx, filter, r.db.WithContext(ctx).Model(&models.HistoryModel{}).Where("timestamp >= ?", since))
}

// Record appends a transition entry
func (r *GormHistoryRepository) Record(ctx context.Context, entry *workflow.History) error {
	model := models.HistoryModelFromDomain(entry)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to record history entry: %w", err)
	}
	return nil
}

func (r *GormHistoryRepository) paginate(ctx context.Context, filter shared.Filter, query *gorm.DB) (shared.Paginated[*workflow.History], error) {
	normalizeFilter(&filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*workflow.History]{}, fmt.Errorf("failed to count history: %w", err)
	}

	query = applyOrdering(query, filter, historyOrderColumns)
	query = applyPagination(query, filter)

	var rows []models.HistoryModel
	if err := query.Find(&rows).Error; err != nil {
		return shared.Paginated[*workflow.History]{}, fmt.Errorf("failed to list history: %w", err)
	}
	return shared.NewPaginated(toDomainHistory(rows), total, filter.Page, filter.PageSize), nil
}

func toDomainHistory(rows []models.HistoryModel) []*workflow.History {
	entries := make([]*workflow.History, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries
}
