package segment

import (
	"context"
	"time"

	"github.com/expenseflow/backend/internal/domain/segment"
	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service provides application-level segment operations
type Service struct {
	segmentRepo segment.Repository
	logger      *zap.Logger
}

// NewService creates a new segment Service
func NewService(segmentRepo segment.Repository, logger *zap.Logger) *Service {
	return &Service{
		segmentRepo: segmentRepo,
		logger:      logger,
	}
}

// CreateSegmentRequest represents a request to create a segment
type CreateSegmentRequest struct {
	Name        string     `json:"name" binding:"required,max=200"`
	Code        string     `json:"code" binding:"required,max=50"`
	Type        string     `json:"type" binding:"required"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
}

// UpdateSegmentRequest represents a request to update a segment
type UpdateSegmentRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description"`
}

// SegmentResponse represents a segment in API responses
type SegmentResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Code        string     `json:"code"`
	Type        string     `json:"type"`
	Description string     `json:"description,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Create creates a segment. Codes are unique among non-deleted
// segments, and a parent must exist when named.
func (s *Service) Create(ctx context.Context, actor uuid.UUID, req CreateSegmentRequest) (*SegmentResponse, error) {
	segType, err := segment.ParseType(req.Type)
	if err != nil {
		return nil, err
	}

	exists, err := s.segmentRepo.ExistsByCode(ctx, req.Code, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("DUPLICATE_NAME", "A segment with this code already exists")
	}

	if req.ParentID != nil {
		parent, err := s.segmentRepo.FindByID(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, shared.NewDomainError("NOT_FOUND", "Parent segment not found")
		}
	}

	seg, err := segment.NewSegment(req.Name, req.Code, segType, req.Description, req.ParentID)
	if err != nil {
		return nil, err
	}
	if err := s.segmentRepo.Save(ctx, seg); err != nil {
		return nil, err
	}

	s.logger.Info("segment created",
		zap.String("segment_id", seg.ID.String()),
		zap.String("code", seg.Code),
		zap.String("actor_id", actor.String()))

	return toSegmentResponse(seg), nil
}

// Get returns a segment by id
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*SegmentResponse, error) {
	seg, err := s.findSegment(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSegmentResponse(seg), nil
}

// Update changes a segment's descriptive fields
func (s *Service) Update(ctx context.Context, id, actor uuid.UUID, req UpdateSegmentRequest) (*SegmentResponse, error) {
	seg, err := s.findSegment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := seg.Update(req.Name, req.Description); err != nil {
		return nil, err
	}
	if err := s.segmentRepo.Save(ctx, seg); err != nil {
		return nil, err
	}
	return toSegmentResponse(seg), nil
}

// List returns segments matching the filter
func (s *Service) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*SegmentResponse], error) {
	page, err := s.segmentRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[*SegmentResponse]{}, err
	}
	items := make([]*SegmentResponse, len(page.Items))
	for i, seg := range page.Items {
		items[i] = toSegmentResponse(seg)
	}
	return shared.NewPaginated(items, page.Total, page.Page, page.PageSize), nil
}

// ListByType returns segments of one type
func (s *Service) ListByType(ctx context.Context, segType string) ([]SegmentResponse, error) {
	parsed, err := segment.ParseType(segType)
	if err != nil {
		return nil, err
	}
	segments, err := s.segmentRepo.FindByType(ctx, parsed)
	if err != nil {
		return nil, err
	}
	responses := make([]SegmentResponse, len(segments))
	for i, seg := range segments {
		responses[i] = *toSegmentResponse(seg)
	}
	return responses, nil
}

// ListChildren returns a segment's direct children
func (s *Service) ListChildren(ctx context.Context, parentID uuid.UUID) ([]SegmentResponse, error) {
	segments, err := s.segmentRepo.FindChildren(ctx, parentID)
	if err != nil {
		return nil, err
	}
	responses := make([]SegmentResponse, len(segments))
	for i, seg := range segments {
		responses[i] = *toSegmentResponse(seg)
	}
	return responses, nil
}

// SetActive toggles whether a segment accepts new allocations
func (s *Service) SetActive(ctx context.Context, id, actor uuid.UUID, active bool) (*SegmentResponse, error) {
	seg, err := s.findSegment(ctx, id)
	if err != nil {
		return nil, err
	}
	if active {
		seg.Activate()
	} else {
		seg.Deactivate()
	}
	if err := s.segmentRepo.Save(ctx, seg); err != nil {
		return nil, err
	}
	return toSegmentResponse(seg), nil
}

// Delete soft-deletes a segment. Existing allocations keep referencing
// it.
func (s *Service) Delete(ctx context.Context, id, actor uuid.UUID) error {
	if _, err := s.findSegment(ctx, id); err != nil {
		return err
	}
	if err := s.segmentRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("segment deleted",
		zap.String("segment_id", id.String()),
		zap.String("actor_id", actor.String()))
	return nil
}

func (s *Service) findSegment(ctx context.Context, id uuid.UUID) (*segment.Segment, error) {
	seg, err := s.segmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if seg == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Segment not found")
	}
	return seg, nil
}

func toSegmentResponse(seg *segment.Segment) *SegmentResponse {
	return &SegmentResponse{
		ID:          seg.ID,
		Name:        seg.Name,
		Code:        seg.Code,
		Type:        seg.Type.String(),
		Description: seg.Description,
		ParentID:    seg.ParentID,
		IsActive:    seg.IsActive,
		CreatedAt:   seg.CreatedAt,
		UpdatedAt:   seg.UpdatedAt,
	}
}
