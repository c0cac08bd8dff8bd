package budget

import (
	"fmt"
	"time"

	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetThreshold is a utilization percentage at which an alert fires
// for its budget. Percentages are unique per budget.
type BudgetThreshold struct {
	shared.BaseEntity
	BudgetID     uuid.UUID       `json:"budget_id"`
	Percentage   decimal.Decimal `json:"percentage"`
	AlertEnabled bool            `json:"alert_enabled"`
	RecipientIDs []uuid.UUID     `json:"recipient_ids"`
}

// NewBudgetThreshold creates an enabled threshold for a budget.
// Percentage must be in (0, 100].
func NewBudgetThreshold(budgetID uuid.UUID, percentage decimal.Decimal, recipients []uuid.UUID) (*BudgetThreshold, error) {
	if budgetID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Threshold budget is required")
	}
	if percentage.LessThanOrEqual(decimal.Zero) || percentage.GreaterThan(hundred) {
		return nil, shared.NewDomainError("PERCENTAGE_OUT_OF_RANGE",
			fmt.Sprintf("Threshold percentage %s is outside (0, 100]", percentage.String()))
	}
	return &BudgetThreshold{
		BaseEntity:   shared.NewBaseEntity(),
		BudgetID:     budgetID,
		Percentage:   percentage,
		AlertEnabled: true,
		RecipientIDs: recipients,
	}, nil
}

// IsBreached reports whether the budget's utilization has reached this
// threshold's percentage.
func (t *BudgetThreshold) IsBreached(b *Budget) bool {
	return b.UtilizationPercentage().GreaterThanOrEqual(t.Percentage)
}

// EnableAlerts turns alerting on for this threshold
func (t *BudgetThreshold) EnableAlerts() {
	t.AlertEnabled = true
	t.UpdatedAt = time.Now()
}

// DisableAlerts turns alerting off without deleting the threshold
func (t *BudgetThreshold) DisableAlerts() {
	t.AlertEnabled = false
	t.UpdatedAt = time.Now()
}

// AddRecipient registers a user to be notified; adding an existing
// recipient is a no-op.
func (t *BudgetThreshold) AddRecipient(userID uuid.UUID) {
	for _, id := range t.RecipientIDs {
		if id == userID {
			return
		}
	}
	t.RecipientIDs = append(t.RecipientIDs, userID)
	t.UpdatedAt = time.Now()
}

// RemoveRecipient removes a user from the notification list
func (t *BudgetThreshold) RemoveRecipient(userID uuid.UUID) {
	for i, id := range t.RecipientIDs {
		if id == userID {
			t.RecipientIDs = append(t.RecipientIDs[:i], t.RecipientIDs[i+1:]...)
			t.UpdatedAt = time.Now()
			return
		}
	}
}
