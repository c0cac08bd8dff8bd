package workflow

import (
	"context"
	"time"

	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/expenseflow/backend/internal/domain/workflow"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service provides application-level workflow definition operations
type Service struct {
	workflowRepo workflow.Repository
	logger       *zap.Logger
}

// NewService creates a new workflow Service
func NewService(workflowRepo workflow.Repository, logger *zap.Logger) *Service {
	return &Service{
		workflowRepo: workflowRepo,
		logger:       logger,
	}
}

// StepRequest is one requested approval step
type StepRequest struct {
	StepOrder      int        `json:"step_order" binding:"required,min=1"`
	StepName       string     `json:"step_name" binding:"required"`
	ApproverRoleID *uuid.UUID `json:"approver_role_id"`
	ApproverUserID *uuid.UUID `json:"approver_user_id"`
	Condition      string     `json:"condition"`
	IsMandatory    bool       `json:"is_mandatory"`
}

// CreateWorkflowRequest represents a request to create a workflow
type CreateWorkflowRequest struct {
	Name              string         `json:"name" binding:"required,max=200"`
	Description       string         `json:"description"`
	TriggerConditions map[string]any `json:"trigger_conditions"`
	Steps             []StepRequest  `json:"steps" binding:"required,min=1,dive"`
}

// UpdateWorkflowRequest represents a request to update a workflow.
// Steps replace the existing list wholesale.
type UpdateWorkflowRequest struct {
	Name              string         `json:"name" binding:"required,max=200"`
	Description       string         `json:"description"`
	TriggerConditions map[string]any `json:"trigger_conditions"`
	Steps             []StepRequest  `json:"steps" binding:"required,min=1,dive"`
}

// StepResponse represents an approval step in API responses
type StepResponse struct {
	ID             uuid.UUID  `json:"id"`
	StepOrder      int        `json:"step_order"`
	StepName       string     `json:"step_name"`
	ApproverRoleID *uuid.UUID `json:"approver_role_id,omitempty"`
	ApproverUserID *uuid.UUID `json:"approver_user_id,omitempty"`
	Condition      string     `json:"condition,omitempty"`
	IsMandatory    bool       `json:"is_mandatory"`
}

// WorkflowResponse represents a workflow in API responses
type WorkflowResponse struct {
	ID                uuid.UUID      `json:"id"`
	Name              string         `json:"name"`
	Description       string         `json:"description,omitempty"`
	TriggerConditions map[string]any `json:"trigger_conditions,omitempty"`
	IsActive          bool           `json:"is_active"`
	Steps             []StepResponse `json:"steps"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	Version           int            `json:"version"`
}

func buildSteps(reqs []StepRequest) []workflow.ApprovalStep {
	steps := make([]workflow.ApprovalStep, len(reqs))
	for i, r := range reqs {
		steps[i] = workflow.NewApprovalStep(r.StepOrder, r.StepName, r.ApproverRoleID, r.ApproverUserID, r.Condition, r.IsMandatory)
	}
	return steps
}

// Create creates a workflow. Names are unique among non-deleted
// workflows.
func (s *Service) Create(ctx context.Context, actor uuid.UUID, req CreateWorkflowRequest) (*WorkflowResponse, error) {
	exists, err := s.workflowRepo.ExistsByName(ctx, req.Name, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("DUPLICATE_NAME", "A workflow with this name already exists")
	}

	wf, err := workflow.NewApprovalWorkflow(req.Name, req.Description, req.TriggerConditions, buildSteps(req.Steps))
	if err != nil {
		return nil, err
	}

	if err := s.workflowRepo.Save(ctx, wf); err != nil {
		return nil, err
	}

	s.logger.Info("workflow created",
		zap.String("workflow_id", wf.ID.String()),
		zap.String("name", wf.Name),
		zap.String("actor_id", actor.String()))

	return toWorkflowResponse(wf), nil
}

// Get returns a workflow by id
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*WorkflowResponse, error) {
	wf, err := s.findWorkflow(ctx, id)
	if err != nil {
		return nil, err
	}
	return toWorkflowResponse(wf), nil
}

// Update renames a workflow and replaces its step list all-or-nothing
func (s *Service) Update(ctx context.Context, id, actor uuid.UUID, req UpdateWorkflowRequest) (*WorkflowResponse, error) {
	wf, err := s.findWorkflow(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != wf.Name {
		exists, err := s.workflowRepo.ExistsByName(ctx, req.Name, &id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("DUPLICATE_NAME", "A workflow with this name already exists")
		}
		if err := wf.Rename(req.Name); err != nil {
			return nil, err
		}
	}
	wf.Description = req.Description
	wf.TriggerConditions = req.TriggerConditions

	if err := wf.ReplaceSteps(buildSteps(req.Steps)); err != nil {
		return nil, err
	}

	if err := s.workflowRepo.SaveWithLock(ctx, wf); err != nil {
		return nil, err
	}

	s.logger.Info("workflow updated",
		zap.String("workflow_id", wf.ID.String()),
		zap.String("actor_id", actor.String()))

	return toWorkflowResponse(wf), nil
}

// List returns workflows matching the filter
func (s *Service) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*WorkflowResponse], error) {
	page, err := s.workflowRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[*WorkflowResponse]{}, err
	}
	items := make([]*WorkflowResponse, len(page.Items))
	for i, wf := range page.Items {
		items[i] = toWorkflowResponse(wf)
	}
	return shared.NewPaginated(items, page.Total, page.Page, page.PageSize), nil
}

// ListActive returns all active workflows
func (s *Service) ListActive(ctx context.Context) ([]*WorkflowResponse, error) {
	workflows, err := s.workflowRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]*WorkflowResponse, len(workflows))
	for i, wf := range workflows {
		items[i] = toWorkflowResponse(wf)
	}
	return items, nil
}

// Activate makes a workflow usable for routing approvals
func (s *Service) Activate(ctx context.Context, id, actor uuid.UUID) (*WorkflowResponse, error) {
	return s.setActive(ctx, id, actor, true)
}

// Deactivate gates a workflow off without deleting it
func (s *Service) Deactivate(ctx context.Context, id, actor uuid.UUID) (*WorkflowResponse, error) {
	return s.setActive(ctx, id, actor, false)
}

func (s *Service) setActive(ctx context.Context, id, actor uuid.UUID, active bool) (*WorkflowResponse, error) {
	wf, err := s.findWorkflow(ctx, id)
	if err != nil {
		return nil, err
	}
	if active {
		wf.Activate()
	} else {
		wf.Deactivate()
	}
	if err := s.workflowRepo.SaveWithLock(ctx, wf); err != nil {
		return nil, err
	}
	s.logger.Info("workflow activation changed",
		zap.String("workflow_id", id.String()),
		zap.Bool("active", active),
		zap.String("actor_id", actor.String()))
	return toWorkflowResponse(wf), nil
}

// Delete soft-deletes a workflow. The name becomes reusable.
func (s *Service) Delete(ctx context.Context, id, actor uuid.UUID) error {
	if _, err := s.findWorkflow(ctx, id); err != nil {
		return err
	}
	if err := s.workflowRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("workflow deleted",
		zap.String("workflow_id", id.String()),
		zap.String("actor_id", actor.String()))
	return nil
}

func (s *Service) findWorkflow(ctx context.Context, id uuid.UUID) (*workflow.ApprovalWorkflow, error) {
	wf, err := s.workflowRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if wf == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Workflow not found")
	}
	return wf, nil
}

func toWorkflowResponse(wf *workflow.ApprovalWorkflow) *WorkflowResponse {
	steps := make([]StepResponse, len(wf.Steps))
	for i, st := range wf.Steps {
		steps[i] = StepResponse{
			ID:             st.ID,
			StepOrder:      st.StepOrder,
			StepName:       st.StepName,
			ApproverRoleID: st.ApproverRoleID,
			ApproverUserID: st.ApproverUserID,
			Condition:      st.Condition,
			IsMandatory:    st.IsMandatory,
		}
	}
	return &WorkflowResponse{
		ID:                wf.ID,
		Name:              wf.Name,
		Description:       wf.Description,
		TriggerConditions: wf.TriggerConditions,
		IsActive:          wf.IsActive,
		Steps:             steps,
		CreatedAt:         wf.CreatedAt,
		UpdatedAt:         wf.UpdatedAt,
		Version:           wf.Version,
	}
}
