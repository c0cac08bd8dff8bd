package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/expenseflow/backend/internal/domain/segment"
	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/expenseflow/backend/internal/infrastructure/persistence/models"
)

var segmentOrderColumns = map[string]bool{
	"name": true,
	"code": true,
	"type": true,
}

// GormSegmentRepository implements segment.Repository using GORM
type GormSegmentRepository struct {
	db *gorm.DB
}

// NewGormSegmentRepository creates a new GORM segment repository
func NewGormSegmentRepository(db *gorm.DB) *GormSegmentRepository {
	return &GormSegmentRepository{db: db}
}

// FindByID finds a segment by ID
func (r *GormSegmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*segment.Segment, error) {
	var model models.SegmentModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find segment: %w", err)
	}
	return model.ToDomain(), nil
}

// FindByCode finds a segment by its unique code
func (r *GormSegmentRepository) FindByCode(ctx context.Context, code string) (*segment.Segment, error) {
	var model models.SegmentModel
	err := r.db.WithContext(ctx).First(&model, "code = ?", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find segment by code: %w", err)
	}
	return model.ToDomain(), nil
}

// FindAll finds segments matching the filter with pagination
func (r *GormSegmentRepository) FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[*segment.Segment], error) {
	normalizeFilter(&filter)

	query := r.db.WithContext(ctx).Model(&models.SegmentModel{})
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR code LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*segment.Segment]{}, fmt.Errorf("failed to count segments: %w", err)
	}

	query = applyOrdering(query, filter, segmentOrderColumns)
	query = applyPagination(query, filter)

	var rows []models.SegmentModel
	if err := query.Find(&rows).Error; err != nil {
		return shared.Paginated[*segment.Segment]{}, fmt.Errorf("failed to list segments: %w", err)
	}
	return shared.NewPaginated(toDomainSegments(rows), total, filter.Page, filter.PageSize), nil
}

// FindByType finds segments of a given type
func (r *GormSegmentRepository) FindByType(ctx context.Context, segType segment.Type) ([]*segment.Segment, error) {
	var rows []models.SegmentModel
	err := r.db.WithContext(ctx).
		Where("type = ?", segType.String()).
		Order("code asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list segments by type: %w", err)
	}
	return toDomainSegments(rows), nil
}

// FindChildren finds direct children of a segment
func (r *GormSegmentRepository) FindChildren(ctx context.Context, parentID uuid.UUID) ([]*segment.Segment, error) {
	var rows []models.SegmentModel
	err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("code asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list child segments: %w", err)
	}
	return toDomainSegments(rows), nil
}

// ExistsByCode reports whether a segment with the code exists
func (r *GormSegmentRepository) ExistsByCode(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.SegmentModel{}).Where("code = ?", code)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check segment code: %w", err)
	}
	return count > 0, nil
}

// ExistsAllActive reports whether every given ID names an active segment
func (r *GormSegmentRepository) ExistsAllActive(ctx context.Context, ids []uuid.UUID) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	unique := make(map[uuid.UUID]struct{}, len(ids))
	distinct := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, seen := unique[id]; !seen {
			unique[id] = struct{}{}
			distinct = append(distinct, id)
		}
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&models.SegmentModel{}).
		Where("id IN ? AND is_active = ?", distinct, true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check segment activity: %w", err)
	}
	return count == int64(len(distinct)), nil
}

// Save persists a segment
func (r *GormSegmentRepository) Save(ctx context.Context, s *segment.Segment) error {
	model := models.SegmentModelFromDomain(s)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save segment: %w", err)
	}
	return nil
}

// Delete soft-deletes a segment
func (r *GormSegmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.SegmentModel{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete segment: %w", result.Error)
	}
	return nil
}

func toDomainSegments(rows []models.SegmentModel) []*segment.Segment {
	segments := make([]*segment.Segment, len(rows))
	for i := range rows {
		segments[i] = rows[i].ToDomain()
	}
	return segments
}
