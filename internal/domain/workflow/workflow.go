package workflow

import (
	"fmt"
	"sort"
	"time"

	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ApprovalWorkflow is a named, versioned sequence of approval steps.
// Workflow and steps form one aggregate: steps are only created or
// removed through the owning workflow, and the step list is replaced
// all-or-nothing.
type ApprovalWorkflow struct {
	shared.BaseAggregateRoot
	Name              string         `json:"name"`
	Description       string         `json:"description"`
	Steps             []ApprovalStep `json:"steps"`
	TriggerConditions map[string]any `json:"trigger_conditions"`
	IsActive          bool           `json:"is_active"`
}

// NewApprovalWorkflow creates an active workflow with the given steps
func NewApprovalWorkflow(name, description string, triggerConditions map[string]any, steps []ApprovalStep) (*ApprovalWorkflow, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Workflow name is required")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Workflow name cannot exceed 200 characters")
	}

	w := &ApprovalWorkflow{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Description:       description,
		TriggerConditions: triggerConditions,
		IsActive:          true,
	}
	if err := w.ReplaceSteps(steps); err != nil {
		return nil, err
	}
	return w, nil
}

// ReplaceSteps swaps the workflow's step list all-or-nothing, enforcing
// stepOrder uniqueness within the workflow.
func (w *ApprovalWorkflow) ReplaceSteps(steps []ApprovalStep) error {
	seen := make(map[int]struct{}, len(steps))
	for i := range steps {
		if steps[i].StepOrder <= 0 {
			return shared.NewDomainError("INVALID_INPUT",
				fmt.Sprintf("Step order %d must be positive", steps[i].StepOrder))
		}
		if _, dup := seen[steps[i].StepOrder]; dup {
			return shared.NewDomainError("INVALID_INPUT",
				fmt.Sprintf("Duplicate step order %d in workflow", steps[i].StepOrder))
		}
		if steps[i].ApproverRoleID == nil && steps[i].ApproverUserID == nil {
			return shared.NewDomainError("INVALID_INPUT",
				fmt.Sprintf("Step %d needs an approver role or user", steps[i].StepOrder))
		}
		seen[steps[i].StepOrder] = struct{}{}
		steps[i].WorkflowID = w.ID
	}
	w.Steps = steps
	w.UpdatedAt = time.Now()
	return nil
}

// Rename changes the workflow name; uniqueness among non-deleted
// workflows is checked by the application service.
func (w *ApprovalWorkflow) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_INPUT", "Workflow name is required")
	}
	w.Name = name
	w.UpdatedAt = time.Now()
	return nil
}

// Activate makes the workflow usable
func (w *ApprovalWorkflow) Activate() {
	w.IsActive = true
	w.UpdatedAt = time.Now()
}

// Deactivate gates the workflow off without deleting it
func (w *ApprovalWorkflow) Deactivate() {
	w.IsActive = false
	w.UpdatedAt = time.Now()
}

// StepByID returns the step with the given id, or nil
func (w *ApprovalWorkflow) StepByID(stepID uuid.UUID) *ApprovalStep {
	for i := range w.Steps {
		if w.Steps[i].ID == stepID {
			return &w.Steps[i]
		}
	}
	return nil
}

// MandatorySteps returns the mandatory steps in step order
func (w *ApprovalWorkflow) MandatorySteps() []ApprovalStep {
	var out []ApprovalStep
	for _, s := range w.Steps {
		if s.IsMandatory {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StepOrder < out[j].StepOrder
	})
	return out
}

// ApprovalStep is one ordered stage of a workflow. The required
// approver is either a specific user or any holder of a role.
type ApprovalStep struct {
	shared.BaseEntity
	WorkflowID     uuid.UUID  `json:"workflow_id"`
	StepOrder      int        `json:"step_order"`
	StepName       string     `json:"step_name"`
	ApproverRoleID *uuid.UUID `json:"approver_role_id"`
	ApproverUserID *uuid.UUID `json:"approver_user_id"`
	Condition      string     `json:"condition"`
	IsMandatory    bool       `json:"is_mandatory"`
}

// NewApprovalStep creates a workflow step
func NewApprovalStep(stepOrder int, stepName string, approverRoleID, approverUserID *uuid.UUID, condition string, mandatory bool) ApprovalStep {
	return ApprovalStep{
		BaseEntity:     shared.NewBaseEntity(),
		StepOrder:      stepOrder,
		StepName:       stepName,
		ApproverRoleID: approverRoleID,
		ApproverUserID: approverUserID,
		Condition:      condition,
		IsMandatory:    mandatory,
	}
}

// RequiresSpecificUser reports whether only one user may act at this step
func (s *ApprovalStep) RequiresSpecificUser() bool {
	return s.ApproverUserID != nil
}

// RequiresRoleApproval reports whether any holder of a role may act
func (s *ApprovalStep) RequiresRoleApproval() bool {
	return s.ApproverRoleID != nil
}
