package expense

import (
	"time"

	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseCreatedEvent is raised when a new expense is created
type ExpenseCreatedEvent struct {
	shared.BaseDomainEvent
	ExpenseID   uuid.UUID       `json:"expense_id"`
	SubmitterID uuid.UUID       `json:"submitter_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Currency    string          `json:"currency"`
	ExpenseDate time.Time       `json:"expense_date"`
}

// EventType returns the event type name
func (e *ExpenseCreatedEvent) EventType() string {
	return "ExpenseCreated"
}

// NewExpenseCreatedEvent creates a new ExpenseCreatedEvent
func NewExpenseCreatedEvent(expense *Expense) *ExpenseCreatedEvent {
	return &ExpenseCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ExpenseCreated", "Expense", expense.ID),
		ExpenseID:       expense.ID,
		SubmitterID:     expense.SubmitterID,
		TotalAmount:     expense.TotalAmount,
		Currency:        expense.Currency,
		ExpenseDate:     expense.ExpenseDate,
	}
}

// ExpenseSubmittedEvent is raised when an expense enters the approval flow
type ExpenseSubmittedEvent struct {
	shared.BaseDomainEvent
	ExpenseID   uuid.UUID       `json:"expense_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	SubmittedBy uuid.UUID       `json:"submitted_by"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

// EventType returns the event type name
func (e *ExpenseSubmittedEvent) EventType() string {
	return "ExpenseSubmitted"
}

// NewExpenseSubmittedEvent creates a new ExpenseSubmittedEvent
func NewExpenseSubmittedEvent(expense *Expense, actor uuid.UUID) *ExpenseSubmittedEvent {
	submittedAt := time.Now()
	if expense.SubmissionDate != nil {
		submittedAt = *expense.SubmissionDate
	}
	return &ExpenseSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ExpenseSubmitted", "Expense", expense.ID),
		ExpenseID:       expense.ID,
		TotalAmount:     expense.TotalAmount,
		SubmittedBy:     actor,
		SubmittedAt:     submittedAt,
	}
}

// ExpenseApprovedEvent is raised when an expense is approved
type ExpenseApprovedEvent struct {
	shared.BaseDomainEvent
	ExpenseID   uuid.UUID       `json:"expense_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ApprovedBy  uuid.UUID       `json:"approved_by"`
	ApprovedAt  time.Time       `json:"approved_at"`
}

// EventType returns the event type name
func (e *ExpenseApprovedEvent) EventType() string {
	return "ExpenseApproved"
}

// NewExpenseApprovedEvent creates a new ExpenseApprovedEvent
func NewExpenseApprovedEvent(expense *Expense, actor uuid.UUID) *ExpenseApprovedEvent {
	approvedAt := time.Now()
	if expense.ApprovalDate != nil {
		approvedAt = *expense.ApprovalDate
	}
	return &ExpenseApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ExpenseApproved", "Expense", expense.ID),
		ExpenseID:       expense.ID,
		TotalAmount:     expense.TotalAmount,
		ApprovedBy:      actor,
		ApprovedAt:      approvedAt,
	}
}

// ExpenseRejectedEvent is raised when an expense is rejected
type ExpenseRejectedEvent struct {
	shared.BaseDomainEvent
	ExpenseID       uuid.UUID `json:"expense_id"`
	RejectedBy      uuid.UUID `json:"rejected_by"`
	RejectionReason string    `json:"rejection_reason"`
}

// EventType returns the event type name
func (e *ExpenseRejectedEvent) EventType() string {
	return "ExpenseRejected"
}

// NewExpenseRejectedEvent creates a new ExpenseRejectedEvent
func NewExpenseRejectedEvent(expense *Expense, actor uuid.UUID) *ExpenseRejectedEvent {
	return &ExpenseRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ExpenseRejected", "Expense", expense.ID),
		ExpenseID:       expense.ID,
		RejectedBy:      actor,
		RejectionReason: expense.RejectionReason,
	}
}

// ExpensePaidEvent is raised when an approved expense is paid out
type ExpensePaidEvent struct {
	shared.BaseDomainEvent
	ExpenseID        uuid.UUID       `json:"expense_id"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	PaidBy           uuid.UUID       `json:"paid_by"`
	PaymentReference string          `json:"payment_reference"`
	PaidAt           time.Time       `json:"paid_at"`
}

// EventType returns the event type name
func (e *ExpensePaidEvent) EventType() string {
	return "ExpensePaid"
}

// NewExpensePaidEvent creates a new ExpensePaidEvent
func NewExpensePaidEvent(expense *Expense, actor uuid.UUID) *ExpensePaidEvent {
	paidAt := time.Now()
	if expense.PaymentDate != nil {
		paidAt = *expense.PaymentDate
	}
	return &ExpensePaidEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent("ExpensePaid", "Expense", expense.ID),
		ExpenseID:        expense.ID,
		TotalAmount:      expense.TotalAmount,
		PaidBy:           actor,
		PaymentReference: expense.PaymentReference,
		PaidAt:           paidAt,
	}
}
