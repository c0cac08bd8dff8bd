package budget

import (
	"fmt"
	"time"

	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BudgetAlert records one breach of one threshold. At most one
// unacknowledged alert exists per (budget, threshold) pair; the
// repository enforces this when creating new ones.
type BudgetAlert struct {
	shared.BaseEntity
	BudgetID         uuid.UUID  `json:"budget_id"`
	ThresholdID      uuid.UUID  `json:"threshold_id"`
	TriggeredDate    time.Time  `json:"triggered_date"`
	Message          string     `json:"message"`
	IsAcknowledged   bool       `json:"is_acknowledged"`
	AcknowledgedDate *time.Time `json:"acknowledged_date"`
	AcknowledgedBy   *uuid.UUID `json:"acknowledged_by"`
}

// NewBudgetAlert creates an unacknowledged alert for a breached threshold
func NewBudgetAlert(b *Budget, t *BudgetThreshold) (*BudgetAlert, error) {
	if b == nil || t == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Alert requires a budget and a threshold")
	}
	return &BudgetAlert{
		BaseEntity:    shared.NewBaseEntity(),
		BudgetID:      b.ID,
		ThresholdID:   t.ID,
		TriggeredDate: time.Now(),
		Message:       fmt.Sprintf("Budget threshold of %s%% has been reached", t.Percentage.String()),
	}, nil
}

// Acknowledge marks the alert as seen. Acknowledging an already
// acknowledged alert is a no-op; the first acknowledgement wins.
func (a *BudgetAlert) Acknowledge(actor uuid.UUID) {
	if a.IsAcknowledged {
		return
	}
	now := time.Now()
	a.IsAcknowledged = true
	a.AcknowledgedDate = &now
	a.AcknowledgedBy = &actor
	a.UpdatedAt = now
}
