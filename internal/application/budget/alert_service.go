package budget

import (
	"context"
	"time"

	"github.com/expenseflow/backend/internal/domain/budget"
	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AlertService evaluates thresholds and manages the alerts they raise
type AlertService struct {
	alertRepo     budget.AlertRepository
	thresholdRepo budget.ThresholdRepository
	budgetRepo    budget.Repository
	logger        *zap.Logger
}

// NewAlertService creates a new AlertService
func NewAlertService(
	alertRepo budget.AlertRepository,
	thresholdRepo budget.ThresholdRepository,
	budgetRepo budget.Repository,
	logger *zap.Logger,
) *AlertService {
	return &AlertService{
		alertRepo:     alertRepo,
		thresholdRepo: thresholdRepo,
		budgetRepo:    budgetRepo,
		logger:        logger,
	}
}

// AlertResponse represents a budget alert in API responses
type AlertResponse struct {
	ID               uuid.UUID  `json:"id"`
	BudgetID         uuid.UUID  `json:"budget_id"`
	ThresholdID      uuid.UUID  `json:"threshold_id"`
	TriggeredDate    time.Time  `json:"triggered_date"`
	Message          string     `json:"message"`
	IsAcknowledged   bool       `json:"is_acknowledged"`
	AcknowledgedDate *time.Time `json:"acknowledged_date,omitempty"`
	AcknowledgedBy   *uuid.UUID `json:"acknowledged_by,omitempty"`
}

// CheckAndCreateAlerts sweeps every alert-enabled threshold and creates
// an alert for each breached one that has no unacknowledged alert yet.
// The dedup check and insert run atomically per threshold, so repeated
// or concurrent sweeps never hold more than one open alert per
// (budget, threshold) pair. Returns the number of alerts created.
func (s *AlertService) CheckAndCreateAlerts(ctx context.Context) (int, error) {
	thresholds, err := s.thresholdRepo.FindAlertEnabled(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	budgets := make(map[uuid.UUID]*budget.Budget)
	for _, th := range thresholds {
		b, ok := budgets[th.BudgetID]
		if !ok {
			b, err = s.budgetRepo.FindByID(ctx, th.BudgetID)
			if err != nil {
				return created, err
			}
			budgets[th.BudgetID] = b
		}
		if b == nil || !b.IsActive {
			continue
		}
		if !th.IsBreached(b) {
			continue
		}

		alert, err := budget.NewBudgetAlert(b, th)
		if err != nil {
			return created, err
		}
		inserted, err := s.alertRepo.CreateIfAbsent(ctx, alert)
		if err != nil {
			return created, err
		}
		if !inserted {
			continue
		}
		created++

		s.logger.Info("budget alert created",
			zap.String("budget_id", b.ID.String()),
			zap.String("threshold_id", th.ID.String()),
			zap.String("utilization", b.UtilizationPercentage().String()))
	}
	return created, nil
}

// Acknowledge marks an alert as seen. Acknowledging twice is a no-op.
func (s *AlertService) Acknowledge(ctx context.Context, id, actor uuid.UUID) (*AlertResponse, error) {
	alert, err := s.alertRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if alert == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Alert not found")
	}

	alert.Acknowledge(actor)
	if err := s.alertRepo.Save(ctx, alert); err != nil {
		return nil, err
	}
	return toAlertResponse(alert), nil
}

// ListByBudget returns all alerts for a budget, newest first
func (s *AlertService) ListByBudget(ctx context.Context, budgetID uuid.UUID) ([]AlertResponse, error) {
	alerts, err := s.alertRepo.FindByBudget(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	return toAlertResponses(alerts), nil
}

// ListUnacknowledged returns all open alerts
func (s *AlertService) ListUnacknowledged(ctx context.Context) ([]AlertResponse, error) {
	alerts, err := s.alertRepo.FindUnacknowledged(ctx)
	if err != nil {
		return nil, err
	}
	return toAlertResponses(alerts), nil
}

// ListRecent returns alerts triggered in the given lookback window
func (s *AlertService) ListRecent(ctx context.Context, lookback time.Duration, filter shared.Filter) (shared.Paginated[*AlertResponse], error) {
	page, err := s.alertRepo.FindRecent(ctx, time.Now().Add(-lookback), filter)
	if err != nil {
		return shared.Paginated[*AlertResponse]{}, err
	}
	items := make([]*AlertResponse, len(page.Items))
	for i, a := range page.Items {
		items[i] = toAlertResponse(a)
	}
	return shared.NewPaginated(items, page.Total, page.Page, page.PageSize), nil
}

// DeleteAcknowledged removes a budget's acknowledged alerts, returning
// the number deleted.
func (s *AlertService) DeleteAcknowledged(ctx context.Context, budgetID uuid.UUID) (int64, error) {
	return s.alertRepo.DeleteAcknowledged(ctx, budgetID)
}

// DeleteOlderThan removes alerts triggered before the cutoff, returning
// the number deleted.
func (s *AlertService) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.alertRepo.DeleteOlderThan(ctx, cutoff)
}

func toAlertResponse(a *budget.BudgetAlert) *AlertResponse {
	return &AlertResponse{
		ID:               a.ID,
		BudgetID:         a.BudgetID,
		ThresholdID:      a.ThresholdID,
		TriggeredDate:    a.TriggeredDate,
		Message:          a.Message,
		IsAcknowledged:   a.IsAcknowledged,
		AcknowledgedDate: a.AcknowledgedDate,
		AcknowledgedBy:   a.AcknowledgedBy,
	}
}

func toAlertResponses(alerts []*budget.BudgetAlert) []AlertResponse {
	responses := make([]AlertResponse, len(alerts))
	for i, a := range alerts {
		responses[i] = *toAlertResponse(a)
	}
	return responses
}
