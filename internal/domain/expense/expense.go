package expense

import (
	"fmt"
	"time"

	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle status of an expense
type Status string

const (
	StatusDraft     Status = "DRAFT"     // Being prepared, fully editable
	StatusSubmitted Status = "SUBMITTED" // Awaiting approval
	StatusApproved  Status = "APPROVED"  // Approved, budget consumption applied
	StatusRejected  Status = "REJECTED"  // Rejected, editable again
	StatusPaid      Status = "PAID"      // Paid out, terminal
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected, StatusPaid:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsEditable returns true if expenses in this status may be modified
func (s Status) IsEditable() bool {
	return s == StatusDraft || s == StatusRejected
}

// IsTerminal returns true if no further transitions are modeled
func (s Status) IsTerminal() bool {
	return s == StatusPaid
}

// ParseStatus parses a string into a Status, returning a domain error
// for unknown values instead of accepting arbitrary strings.
func ParseStatus(value string) (Status, error) {
	s := Status(value)
	if !s.IsValid() {
		return "", shared.NewDomainError("INVALID_ENUM_VALUE",
			fmt.Sprintf("'%s' is not a valid expense status", value))
	}
	return s, nil
}

// Expense is the aggregate root for an expense submission. It owns its
// segment allocations and documents; both collections are replaced
// atomically when the aggregate is saved.
type Expense struct {
	shared.BaseAggregateRoot
	SubmitterID      uuid.UUID           `json:"submitter_id"`
	ExpenseDate      time.Time           `json:"expense_date"`
	Vendor           string              `json:"vendor"`
	TotalAmount      decimal.Decimal     `json:"total_amount"`
	Currency         string              `json:"currency"`
	Description      string              `json:"description"`
	Status           Status              `json:"status"`
	SubmissionDate   *time.Time          `json:"submission_date"`
	ApprovalDate     *time.Time          `json:"approval_date"`
	PaymentDate      *time.Time          `json:"payment_date"`
	PaymentReference string              `json:"payment_reference"`
	RejectionReason  string              `json:"rejection_reason"`
	Allocations      []SegmentAllocation `json:"allocations"`
	Documents        []Document          `json:"documents"`
}

// NewExpense creates a new expense in DRAFT status with the given
// allocation set. Allocations must already be built via BuildAllocations.
func NewExpense(
	submitterID uuid.UUID,
	expenseDate time.Time,
	vendor string,
	totalAmount decimal.Decimal,
	currency string,
	description string,
	allocations []SegmentAllocation,
) (*Expense, error) {
	if submitterID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Submitter is required")
	}
	if totalAmount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Total amount must be positive")
	}
	if currency == "" {
		currency = "USD"
	}
	if len(currency) != 3 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Currency must be a 3-letter code")
	}

	e := &Expense{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SubmitterID:       submitterID,
		ExpenseDate:       expenseDate,
		Vendor:            vendor,
		TotalAmount:       totalAmount,
		Currency:          currency,
		Description:       description,
		Status:            StatusDraft,
		Allocations:       allocations,
	}

	e.AddDomainEvent(NewExpenseCreatedEvent(e))

	return e, nil
}

// IsEditable returns true if the expense can currently be modified
func (e *Expense) IsEditable() bool {
	return e.Status.IsEditable() && !e.IsDeleted()
}

// CanBeSubmitted returns true if the expense can be submitted for approval
func (e *Expense) CanBeSubmitted() bool {
	return e.Status == StatusDraft && len(e.Allocations) > 0 && !e.IsDeleted()
}

// Submit moves the expense from DRAFT to SUBMITTED and stamps the
// submission date. The allocation set must be non-empty.
func (e *Expense) Submit(actor uuid.UUID) error {
	if e.Status != StatusDraft {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			fmt.Sprintf("Cannot submit expense in %s status", e.Status))
	}
	if len(e.Allocations) == 0 {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			"Cannot submit an expense without segment allocations")
	}

	now := time.Now()
	e.Status = StatusSubmitted
	e.SubmissionDate = &now
	e.UpdatedAt = now

	e.AddDomainEvent(NewExpenseSubmittedEvent(e, actor))

	return nil
}

// Approve moves the expense from SUBMITTED to APPROVED and stamps the
// approval date. Budget consumption is applied by the caller within the
// same transaction.
func (e *Expense) Approve(actor uuid.UUID) error {
	if e.Status != StatusSubmitted {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			fmt.Sprintf("Cannot approve expense in %s status", e.Status))
	}

	now := time.Now()
	e.Status = StatusApproved
	e.ApprovalDate = &now
	e.UpdatedAt = now

	e.AddDomainEvent(NewExpenseApprovedEvent(e, actor))

	return nil
}

// Reject moves the expense from SUBMITTED to REJECTED with a reason.
// A rejected expense becomes editable again.
func (e *Expense) Reject(actor uuid.UUID, reason string) error {
	if e.Status != StatusSubmitted {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			fmt.Sprintf("Cannot reject expense in %s status", e.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_INPUT", "Rejection reason is required")
	}

	now := time.Now()
	e.Status = StatusRejected
	e.RejectionReason = reason
	e.UpdatedAt = now

	e.AddDomainEvent(NewExpenseRejectedEvent(e, actor))

	return nil
}

// MarkPaid moves the expense from APPROVED to PAID with an optional
// payment reference. PAID is terminal.
func (e *Expense) MarkPaid(actor uuid.UUID, paymentReference string) error {
	if e.Status != StatusApproved {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			fmt.Sprintf("Cannot mark expense paid in %s status", e.Status))
	}

	now := time.Now()
	e.Status = StatusPaid
	e.PaymentDate = &now
	e.PaymentReference = paymentReference
	e.UpdatedAt = now

	e.AddDomainEvent(NewExpensePaidEvent(e, actor))

	return nil
}

// ReplaceAllocations atomically swaps the allocation set and total
// amount. Only allowed while editable. Editing a REJECTED expense moves
// it back to DRAFT; the caller records the transition in the workflow
// history. Returns the prior status so callers can detect the change.
func (e *Expense) ReplaceAllocations(totalAmount decimal.Decimal, allocations []SegmentAllocation) (Status, error) {
	prior := e.Status
	if !e.IsEditable() {
		return prior, shared.NewDomainError("INVALID_STATE_TRANSITION",
			fmt.Sprintf("Cannot edit expense in %s status", e.Status))
	}
	if totalAmount.LessThanOrEqual(decimal.Zero) {
		return prior, shared.NewDomainError("INVALID_INPUT", "Total amount must be positive")
	}

	e.TotalAmount = totalAmount
	e.Allocations = allocations
	if e.Status == StatusRejected {
		e.Status = StatusDraft
		e.RejectionReason = ""
	}
	e.UpdatedAt = time.Now()

	return prior, nil
}

// Delete soft-deletes the expense. Only editable expenses can be
// deleted; submitted and later expenses keep their audit trail.
func (e *Expense) Delete() error {
	if !e.IsEditable() {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			fmt.Sprintf("Cannot delete expense in %s status", e.Status))
	}
	e.MarkDeleted()
	return nil
}

// AddDocument attaches a document record to the expense
func (e *Expense) AddDocument(doc Document) {
	doc.ExpenseID = e.ID
	e.Documents = append(e.Documents, doc)
	e.UpdatedAt = time.Now()
}
