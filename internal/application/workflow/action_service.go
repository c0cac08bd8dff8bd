package workflow

import (
	"context"
	"time"

	"github.com/expenseflow/backend/internal/domain/expense"
	"github.com/expenseflow/backend/internal/domain/identity"
	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/expenseflow/backend/internal/domain/workflow"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ActionService records approver actions against expenses. Actions are
// an append-only audit trail; recording one never transitions the
// expense itself.
type ActionService struct {
	actionRepo   workflow.ActionRepository
	workflowRepo workflow.Repository
	expenseRepo  expense.Repository
	userRepo     identity.UserRepository
	logger       *zap.Logger
}

// NewActionService creates a new ActionService
func NewActionService(
	actionRepo workflow.ActionRepository,
	workflowRepo workflow.Repository,
	expenseRepo expense.Repository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *ActionService {
	return &ActionService{
		actionRepo:   actionRepo,
		workflowRepo: workflowRepo,
		expenseRepo:  expenseRepo,
		userRepo:     userRepo,
		logger:       logger,
	}
}

// RecordActionRequest represents a request to record an approver action
type RecordActionRequest struct {
	ExpenseID   uuid.UUID  `json:"expense_id" binding:"required"`
	WorkflowID  *uuid.UUID `json:"workflow_id"`
	StepID      *uuid.UUID `json:"step_id"`
	Action      string     `json:"action" binding:"required"`
	Comment     string     `json:"comment"`
	DelegatedTo *uuid.UUID `json:"delegated_to"`
}

// ActionResponse represents an approver action in API responses
type ActionResponse struct {
	ID          uuid.UUID  `json:"id"`
	ExpenseID   uuid.UUID  `json:"expense_id"`
	StepID      *uuid.UUID `json:"step_id,omitempty"`
	ApproverID  uuid.UUID  `json:"approver_id"`
	Action      string     `json:"action"`
	Comment     string     `json:"comment,omitempty"`
	ActionDate  time.Time  `json:"action_date"`
	DelegatedTo *uuid.UUID `json:"delegated_to,omitempty"`
}

// Record validates and appends an approver action. When a step is named
// the step must belong to an active workflow and the actor must be the
// step's designated user, hold its role, or be the target of a prior
// delegation at that step.
func (s *ActionService) Record(ctx context.Context, actor uuid.UUID, req RecordActionRequest) (*ActionResponse, error) {
	actionType, err := workflow.ParseActionType(req.Action)
	if err != nil {
		return nil, err
	}

	exp, err := s.expenseRepo.FindByID(ctx, req.ExpenseID)
	if err != nil {
		return nil, err
	}
	if exp == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Expense not found")
	}

	if req.StepID != nil {
		if req.WorkflowID == nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "A step reference requires its workflow")
		}
		if err := s.authorizeStep(ctx, actor, *req.WorkflowID, *req.StepID, req.ExpenseID); err != nil {
			return nil, err
		}
	}

	action, err := workflow.NewApprovalAction(req.ExpenseID, req.StepID, actor, actionType, req.Comment, req.DelegatedTo)
	if err != nil {
		return nil, err
	}

	if err := s.actionRepo.Save(ctx, action); err != nil {
		return nil, err
	}

	s.logger.Info("approval action recorded",
		zap.String("expense_id", req.ExpenseID.String()),
		zap.String("action", actionType.String()),
		zap.String("approver_id", actor.String()))

	return toActionResponse(action), nil
}

func (s *ActionService) authorizeStep(ctx context.Context, actor uuid.UUID, workflowID, stepID, expenseID uuid.UUID) error {
	wf, err := s.workflowRepo.FindByID(ctx, workflowID)
	if err != nil {
		return err
	}
	if wf == nil {
		return shared.NewDomainError("NOT_FOUND", "Workflow not found")
	}
	if !wf.IsActive {
		return shared.NewDomainError("INVALID_STATE_TRANSITION", "Workflow is not active")
	}

	step := wf.StepByID(stepID)
	if step == nil {
		return shared.NewDomainError("NOT_FOUND", "Step does not belong to this workflow")
	}

	if step.RequiresSpecificUser() && *step.ApproverUserID == actor {
		return nil
	}
	if step.RequiresRoleApproval() {
		ok, err := s.userRepo.HasRole(ctx, actor, *step.ApproverRoleID)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}

	// a delegation at this step transfers the right to act
	delegations, err := s.actionRepo.FindPendingDelegations(ctx, actor)
	if err != nil {
		return err
	}
	for _, d := range delegations {
		if d.ExpenseID == expenseID && d.StepID != nil && *d.StepID == stepID {
			return nil
		}
	}

	return shared.NewDomainError("INVALID_STATE_TRANSITION", "User is not an eligible approver for this step")
}

// HasApprovedAtStep reports whether any approval was recorded for the
// expense at the given step.
func (s *ActionService) HasApprovedAtStep(ctx context.Context, expenseID, stepID uuid.UUID) (bool, error) {
	return s.actionRepo.ExistsApprovedAtStep(ctx, expenseID, stepID)
}

// ListByExpense returns the full action trail for an expense, oldest
// first.
func (s *ActionService) ListByExpense(ctx context.Context, expenseID uuid.UUID) ([]ActionResponse, error) {
	actions, err := s.actionRepo.FindByExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	responses := make([]ActionResponse, len(actions))
	for i, a := range actions {
		responses[i] = *toActionResponse(a)
	}
	return responses, nil
}

// Latest returns the most recent action for an expense, or nil
func (s *ActionService) Latest(ctx context.Context, expenseID uuid.UUID) (*ActionResponse, error) {
	action, err := s.actionRepo.FindLatestByExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if action == nil {
		return nil, nil
	}
	return toActionResponse(action), nil
}

// ListPendingDelegations returns delegations handed to a user
func (s *ActionService) ListPendingDelegations(ctx context.Context, delegateID uuid.UUID) ([]ActionResponse, error) {
	actions, err := s.actionRepo.FindPendingDelegations(ctx, delegateID)
	if err != nil {
		return nil, err
	}
	responses := make([]ActionResponse, len(actions))
	for i, a := range actions {
		responses[i] = *toActionResponse(a)
	}
	return responses, nil
}

func toActionResponse(a *workflow.ApprovalAction) *ActionResponse {
	return &ActionResponse{
		ID:          a.ID,
		ExpenseID:   a.ExpenseID,
		StepID:      a.StepID,
		ApproverID:  a.ApproverID,
		Action:      a.Action.String(),
		Comment:     a.Comment,
		ActionDate:  a.ActionDate,
		DelegatedTo: a.DelegatedTo,
	}
}
