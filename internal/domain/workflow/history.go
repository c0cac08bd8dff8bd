package workflow

import (
	"time"

	"github.com/expenseflow/backend/internal/domain/expense"
	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// History is an immutable audit record of one expense status
// transition. FromStatus is nil for the creation transition. Exactly
// one record is written per lifecycle transition; records are never
// mutated or deleted.
type History struct {
	shared.BaseEntity
	ExpenseID  uuid.UUID       `json:"expense_id"`
	FromStatus *expense.Status `json:"from_status"`
	ToStatus   expense.Status  `json:"to_status"`
	ActorID    uuid.UUID       `json:"actor_id"`
	Comment    string          `json:"comment"`
	Timestamp  time.Time       `json:"timestamp"`
}

// NewHistory creates a history record for one status transition
func NewHistory(expenseID uuid.UUID, fromStatus *expense.Status, toStatus expense.Status, actor uuid.UUID, comment string) (*History, error) {
	if expenseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "History expense is required")
	}
	if actor == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "History actor is required")
	}
	if !toStatus.IsValid() {
		return nil, shared.NewDomainError("INVALID_ENUM_VALUE", "History target status is not valid")
	}
	return &History{
		BaseEntity: shared.NewBaseEntity(),
		ExpenseID:  expenseID,
		FromStatus: fromStatus,
		ToStatus:   toStatus,
		ActorID:    actor,
		Comment:    comment,
		Timestamp:  time.Now(),
	}, nil
}
