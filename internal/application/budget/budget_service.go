package budget

import (
	"context"
	"time"

	"github.com/expenseflow/backend/internal/domain/budget"
	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service provides application-level budget operations
type Service struct {
	budgetRepo budget.Repository
	cache      Cache
	logger     *zap.Logger
}

// NewService creates a new budget Service
func NewService(budgetRepo budget.Repository, cache Cache, logger *zap.Logger) *Service {
	return &Service{
		budgetRepo: budgetRepo,
		cache:      cache,
		logger:     logger,
	}
}

// CreateBudgetRequest represents a request to create a budget
type CreateBudgetRequest struct {
	Name            string          `json:"name" binding:"required,max=200"`
	Description     string          `json:"description"`
	SegmentID       *uuid.UUID      `json:"segment_id"`
	DepartmentID    *uuid.UUID      `json:"department_id"`
	Period          string          `json:"period" binding:"required"`
	StartDate       time.Time       `json:"start_date" binding:"required"`
	EndDate         time.Time       `json:"end_date" binding:"required"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount" binding:"required"`
}

// UpdateBudgetRequest represents a request to update a budget's
// descriptive fields and allocation.
type UpdateBudgetRequest struct {
	Name            string          `json:"name" binding:"required,max=200"`
	Description     string          `json:"description"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount" binding:"required"`
}

// BudgetResponse represents a budget in API responses
type BudgetResponse struct {
	ID                    uuid.UUID       `json:"id"`
	Name                  string          `json:"name"`
	Description           string          `json:"description,omitempty"`
	SegmentID             *uuid.UUID      `json:"segment_id,omitempty"`
	DepartmentID          *uuid.UUID      `json:"department_id,omitempty"`
	Period                string          `json:"period"`
	StartDate             time.Time       `json:"start_date"`
	EndDate               time.Time       `json:"end_date"`
	AllocatedAmount       decimal.Decimal `json:"allocated_amount"`
	ConsumedAmount        decimal.Decimal `json:"consumed_amount"`
	RemainingAmount       decimal.Decimal `json:"remaining_amount"`
	UtilizationPercentage decimal.Decimal `json:"utilization_percentage"`
	IsActive              bool            `json:"is_active"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
	Version               int             `json:"version"`
}

// ListFilter defines filtering options for budget list queries
type ListFilter struct {
	Search       string     `form:"search"`
	SegmentID    *uuid.UUID `form:"segment_id"`
	DepartmentID *uuid.UUID `form:"department_id"`
	Period       string     `form:"period"`
	ActiveOnly   bool       `form:"active_only"`
	Page         int        `form:"page"`
	PageSize     int        `form:"page_size"`
}

// Create creates a budget. A budget with the same name, period and an
// overlapping date range is rejected as a duplicate.
func (s *Service) Create(ctx context.Context, actor uuid.UUID, req CreateBudgetRequest) (*BudgetResponse, error) {
	period, err := budget.ParsePeriod(req.Period)
	if err != nil {
		return nil, err
	}

	exists, err := s.budgetRepo.ExistsOverlapping(ctx, req.Name, period, req.StartDate, req.EndDate, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("DUPLICATE_NAME", "A budget with this name already covers this period")
	}

	b, err := budget.NewBudget(req.Name, req.Description, req.SegmentID, req.DepartmentID, period, req.StartDate, req.EndDate, req.AllocatedAmount)
	if err != nil {
		return nil, err
	}

	if err := s.budgetRepo.Save(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("budget created",
		zap.String("budget_id", b.ID.String()),
		zap.String("name", b.Name),
		zap.String("actor_id", actor.String()))

	return toBudgetResponse(b), nil
}

// Get returns a budget by id, serving from the cache when possible
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*BudgetResponse, error) {
	if cached, err := s.cache.Get(ctx, id); err != nil {
		s.logger.Warn("budget cache read failed",
			zap.String("budget_id", id.String()),
			zap.Error(err))
	} else if cached != nil {
		return toBudgetResponse(cached), nil
	}

	b, err := s.findBudget(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, b); err != nil {
		s.logger.Warn("budget cache write failed",
			zap.String("budget_id", id.String()),
			zap.Error(err))
	}
	return toBudgetResponse(b), nil
}

// Update changes a budget's descriptive fields and allocated amount
func (s *Service) Update(ctx context.Context, id, actor uuid.UUID, req UpdateBudgetRequest) (*BudgetResponse, error) {
	b, err := s.findBudget(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != b.Name {
		exists, err := s.budgetRepo.ExistsOverlapping(ctx, req.Name, b.Period, b.StartDate, b.EndDate, &id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("DUPLICATE_NAME", "A budget with this name already covers this period")
		}
	}

	if err := b.Update(req.Name, req.Description, req.AllocatedAmount); err != nil {
		return nil, err
	}
	if err := s.budgetRepo.SaveWithLock(ctx, b); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)

	s.logger.Info("budget updated",
		zap.String("budget_id", id.String()),
		zap.String("actor_id", actor.String()))

	return toBudgetResponse(b), nil
}

// List returns budgets matching the filter
func (s *Service) List(ctx context.Context, filter ListFilter) (shared.Paginated[*BudgetResponse], error) {
	domainFilter := budget.Filter{
		SegmentID:    filter.SegmentID,
		DepartmentID: filter.DepartmentID,
		ActiveOnly:   filter.ActiveOnly,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search

	if filter.Period != "" {
		period, err := budget.ParsePeriod(filter.Period)
		if err != nil {
			return shared.Paginated[*BudgetResponse]{}, err
		}
		domainFilter.Period = &period
	}

	page, err := s.budgetRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[*BudgetResponse]{}, err
	}
	items := make([]*BudgetResponse, len(page.Items))
	for i, b := range page.Items {
		items[i] = toBudgetResponse(b)
	}
	return shared.NewPaginated(items, page.Total, page.Page, page.PageSize), nil
}

// Activate makes a budget eligible for consumption tracking
func (s *Service) Activate(ctx context.Context, id, actor uuid.UUID) (*BudgetResponse, error) {
	return s.setActive(ctx, id, actor, true)
}

// Deactivate excludes a budget from consumption tracking
func (s *Service) Deactivate(ctx context.Context, id, actor uuid.UUID) (*BudgetResponse, error) {
	return s.setActive(ctx, id, actor, false)
}

func (s *Service) setActive(ctx context.Context, id, actor uuid.UUID, active bool) (*BudgetResponse, error) {
	b, err := s.findBudget(ctx, id)
	if err != nil {
		return nil, err
	}
	if active {
		b.Activate()
	} else {
		b.Deactivate()
	}
	if err := s.budgetRepo.SaveWithLock(ctx, b); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	s.logger.Info("budget activation changed",
		zap.String("budget_id", id.String()),
		zap.Bool("active", active),
		zap.String("actor_id", actor.String()))
	return toBudgetResponse(b), nil
}

// Delete soft-deletes a budget
func (s *Service) Delete(ctx context.Context, id, actor uuid.UUID) error {
	if _, err := s.findBudget(ctx, id); err != nil {
		return err
	}
	if err := s.budgetRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	s.logger.Info("budget deleted",
		zap.String("budget_id", id.String()),
		zap.String("actor_id", actor.String()))
	return nil
}

func (s *Service) findBudget(ctx context.Context, id uuid.UUID) (*budget.Budget, error) {
	b, err := s.budgetRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Budget not found")
	}
	return b, nil
}

func (s *Service) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn("budget cache invalidation failed",
			zap.String("budget_id", id.String()),
			zap.Error(err))
	}
}

func toBudgetResponse(b *budget.Budget) *BudgetResponse {
	return &BudgetResponse{
		ID:                    b.ID,
		Name:                  b.Name,
		Description:           b.Description,
		SegmentID:             b.SegmentID,
		DepartmentID:          b.DepartmentID,
		Period:                b.Period.String(),
		StartDate:             b.StartDate,
		EndDate:               b.EndDate,
		AllocatedAmount:       b.AllocatedAmount,
		ConsumedAmount:        b.ConsumedAmount,
		RemainingAmount:       b.RemainingAmount(),
		UtilizationPercentage: b.UtilizationPercentage(),
		IsActive:              b.IsActive,
		CreatedAt:             b.CreatedAt,
		UpdatedAt:             b.UpdatedAt,
		Version:               b.Version,
	}
}
