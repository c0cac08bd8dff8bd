package workflow

import (
	"fmt"
	"time"

	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ActionType classifies what an approver did at a step
type ActionType string

const (
	ActionApproved  ActionType = "APPROVED"
	ActionRejected  ActionType = "REJECTED"
	ActionDelegated ActionType = "DELEGATED"
	ActionCommented ActionType = "COMMENTED"
)

// IsValid checks if the action type is a valid ActionType
func (t ActionType) IsValid() bool {
	switch t {
	case ActionApproved, ActionRejected, ActionDelegated, ActionCommented:
		return true
	}
	return false
}

// String returns the string representation of ActionType
func (t ActionType) String() string {
	return string(t)
}

// ParseActionType parses a string into an ActionType, returning a
// domain error for unknown values.
func ParseActionType(value string) (ActionType, error) {
	t := ActionType(value)
	if !t.IsValid() {
		return "", shared.NewDomainError("INVALID_ENUM_VALUE",
			fmt.Sprintf("'%s' is not a valid approval action", value))
	}
	return t, nil
}

// ApprovalAction is an immutable fact recording what an approver did.
// Actions are append-only; they are never updated or deleted. Recording
// an action implies no expense state transition on its own.
type ApprovalAction struct {
	shared.BaseEntity
	ExpenseID   uuid.UUID  `json:"expense_id"`
	StepID      *uuid.UUID `json:"step_id"`
	ApproverID  uuid.UUID  `json:"approver_id"`
	Action      ActionType `json:"action"`
	Comment     string     `json:"comment"`
	ActionDate  time.Time  `json:"action_date"`
	DelegatedTo *uuid.UUID `json:"delegated_to"`
}

// NewApprovalAction creates an approval action record
func NewApprovalAction(expenseID uuid.UUID, stepID *uuid.UUID, approverID uuid.UUID, action ActionType, comment string, delegatedTo *uuid.UUID) (*ApprovalAction, error) {
	if expenseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Action expense is required")
	}
	if approverID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Action approver is required")
	}
	if !action.IsValid() {
		return nil, shared.NewDomainError("INVALID_ENUM_VALUE",
			fmt.Sprintf("'%s' is not a valid approval action", action))
	}
	if action == ActionDelegated && delegatedTo == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Delegation requires a delegate user")
	}
	return &ApprovalAction{
		BaseEntity:  shared.NewBaseEntity(),
		ExpenseID:   expenseID,
		StepID:      stepID,
		ApproverID:  approverID,
		Action:      action,
		Comment:     comment,
		ActionDate:  time.Now(),
		DelegatedTo: delegatedTo,
	}, nil
}

// IsApproval reports whether this action is an approval
func (a *ApprovalAction) IsApproval() bool {
	return a.Action == ActionApproved
}

// IsRejection reports whether this action is a rejection
func (a *ApprovalAction) IsRejection() bool {
	return a.Action == ActionRejected
}

// IsDelegation reports whether this action hands the step to another user
func (a *ApprovalAction) IsDelegation() bool {
	return a.Action == ActionDelegated
}
