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

// ThresholdService manages alert thresholds on budgets
type ThresholdService struct {
	thresholdRepo budget.ThresholdRepository
	budgetRepo    budget.Repository
	logger        *zap.Logger
}

// NewThresholdService creates a new ThresholdService
func NewThresholdService(
	thresholdRepo budget.ThresholdRepository,
	budgetRepo budget.Repository,
	logger *zap.Logger,
) *ThresholdService {
	return &ThresholdService{
		thresholdRepo: thresholdRepo,
		budgetRepo:    budgetRepo,
		logger:        logger,
	}
}

// CreateThresholdRequest represents a request to add a threshold
type CreateThresholdRequest struct {
	Percentage decimal.Decimal `json:"percentage" binding:"required"`
	Recipients []uuid.UUID     `json:"recipients"`
}

// ThresholdResponse represents a threshold in API responses
type ThresholdResponse struct {
	ID           uuid.UUID       `json:"id"`
	BudgetID     uuid.UUID       `json:"budget_id"`
	Percentage   decimal.Decimal `json:"percentage"`
	AlertEnabled bool            `json:"alert_enabled"`
	Recipients   []uuid.UUID     `json:"recipients,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Create adds a threshold to a budget. Percentages are unique per
// budget.
func (s *ThresholdService) Create(ctx context.Context, budgetID, actor uuid.UUID, req CreateThresholdRequest) (*ThresholdResponse, error) {
	b, err := s.budgetRepo.FindByID(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Budget not found")
	}

	exists, err := s.thresholdRepo.ExistsByBudgetAndPercentage(ctx, budgetID, req.Percentage.String(), nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("DUPLICATE_NAME", "This budget already has a threshold at this percentage")
	}

	th, err := budget.NewBudgetThreshold(budgetID, req.Percentage, req.Recipients)
	if err != nil {
		return nil, err
	}
	if err := s.thresholdRepo.Save(ctx, th); err != nil {
		return nil, err
	}

	s.logger.Info("budget threshold created",
		zap.String("budget_id", budgetID.String()),
		zap.String("percentage", req.Percentage.String()),
		zap.String("actor_id", actor.String()))

	return toThresholdResponse(th), nil
}

// ListByBudget returns a budget's thresholds
func (s *ThresholdService) ListByBudget(ctx context.Context, budgetID uuid.UUID) ([]ThresholdResponse, error) {
	thresholds, err := s.thresholdRepo.FindByBudget(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	responses := make([]ThresholdResponse, len(thresholds))
	for i, th := range thresholds {
		responses[i] = *toThresholdResponse(th)
	}
	return responses, nil
}

// SetAlertEnabled toggles alerting for a threshold
func (s *ThresholdService) SetAlertEnabled(ctx context.Context, id, actor uuid.UUID, enabled bool) (*ThresholdResponse, error) {
	th, err := s.findThreshold(ctx, id)
	if err != nil {
		return nil, err
	}
	if enabled {
		th.EnableAlerts()
	} else {
		th.DisableAlerts()
	}
	if err := s.thresholdRepo.Save(ctx, th); err != nil {
		return nil, err
	}
	return toThresholdResponse(th), nil
}

// AddRecipient registers a user for alert notifications
func (s *ThresholdService) AddRecipient(ctx context.Context, id, actor, userID uuid.UUID) (*ThresholdResponse, error) {
	th, err := s.findThreshold(ctx, id)
	if err != nil {
		return nil, err
	}
	th.AddRecipient(userID)
	if err := s.thresholdRepo.Save(ctx, th); err != nil {
		return nil, err
	}
	return toThresholdResponse(th), nil
}

// RemoveRecipient removes a user from alert notifications
func (s *ThresholdService) RemoveRecipient(ctx context.Context, id, actor, userID uuid.UUID) (*ThresholdResponse, error) {
	th, err := s.findThreshold(ctx, id)
	if err != nil {
		return nil, err
	}
	th.RemoveRecipient(userID)
	if err := s.thresholdRepo.Save(ctx, th); err != nil {
		return nil, err
	}
	return toThresholdResponse(th), nil
}

// Delete removes a threshold
func (s *ThresholdService) Delete(ctx context.Context, id, actor uuid.UUID) error {
	if _, err := s.findThreshold(ctx, id); err != nil {
		return err
	}
	return s.thresholdRepo.Delete(ctx, id)
}

func (s *ThresholdService) findThreshold(ctx context.Context, id uuid.UUID) (*budget.BudgetThreshold, error) {
	th, err := s.thresholdRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if th == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Threshold not found")
	}
	return th, nil
}

func toThresholdResponse(th *budget.BudgetThreshold) *ThresholdResponse {
	return &ThresholdResponse{
		ID:           th.ID,
		BudgetID:     th.BudgetID,
		Percentage:   th.Percentage,
		AlertEnabled: th.AlertEnabled,
		Recipients:   th.RecipientIDs,
		CreatedAt:    th.CreatedAt,
		UpdatedAt:    th.UpdatedAt,
	}
}
