package workflow

import (
	"context"
	"testing"

	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/expenseflow/backend/internal/domain/workflow"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockWorkflowRepository is a mock implementation of workflow.Repository
type MockWorkflowRepository struct {
	mock.Mock
}

func (m *MockWorkflowRepository) FindByID(ctx context.Context, id uuid.UUID) (*workflow.ApprovalWorkflow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workflow.ApprovalWorkflow), args.Error(1)
}

func (m *MockWorkflowRepository) FindByName(ctx context.Context, name string) (*workflow.ApprovalWorkflow, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workflow.ApprovalWorkflow), args.Error(1)
}

func (m *MockWorkflowRepository) FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[*workflow.ApprovalWorkflow], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[*workflow.ApprovalWorkflow]), args.Error(1)
}

func (m *MockWorkflowRepository) FindActive(ctx context.Context) ([]*workflow.ApprovalWorkflow, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*workflow.ApprovalWorkflow), args.Error(1)
}

func (m *MockWorkflowRepository) ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockWorkflowRepository) Save(ctx context.Context, wf *workflow.ApprovalWorkflow) error {
	args := m.Called(ctx, wf)
	return args.Error(0)
}

func (m *MockWorkflowRepository) SaveWithLock(ctx context.Context, wf *workflow.ApprovalWorkflow) error {
	args := m.Called(ctx, wf)
	return args.Error(0)
}

func (m *MockWorkflowRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func stepRequests() []StepRequest {
	roleID := uuid.New()
	return []StepRequest{
		{StepOrder: 1, StepName: "Manager", ApproverRoleID: &roleID, IsMandatory: true},
	}
}

func TestCreateWorkflow(t *testing.T) {
	repo := new(MockWorkflowRepository)
	service := NewService(repo, zap.NewNop())

	repo.On("ExistsByName", mock.Anything, "Standard", (*uuid.UUID)(nil)).Return(false, nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*workflow.ApprovalWorkflow")).Return(nil)

	resp, err := service.Create(context.Background(), uuid.New(), CreateWorkflowRequest{
		Name:  "Standard",
		Steps: stepRequests(),
	})
	require.NoError(t, err)

	assert.Equal(t, "Standard", resp.Name)
	assert.True(t, resp.IsActive)
	assert.Len(t, resp.Steps, 1)
}

func TestCreateWorkflow_DuplicateName(t *testing.T) {
	repo := new(MockWorkflowRepository)
	service := NewService(repo, zap.NewNop())

	repo.On("ExistsByName", mock.Anything, "Standard", (*uuid.UUID)(nil)).Return(true, nil)

	_, err := service.Create(context.Background(), uuid.New(), CreateWorkflowRequest{
		Name:  "Standard",
		Steps: stepRequests(),
	})
	assert.ErrorIs(t, err, shared.ErrDuplicateName)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestUpdateWorkflow_InvalidStepsLeaveWorkflowUnsaved(t *testing.T) {
	repo := new(MockWorkflowRepository)
	service := NewService(repo, zap.NewNop())

	wf, err := workflow.NewApprovalWorkflow("Standard", "", nil, buildSteps(stepRequests()))
	require.NoError(t, err)

	repo.On("FindByID", mock.Anything, wf.ID).Return(wf, nil)

	roleID := uuid.New()
	_, err = service.Update(context.Background(), wf.ID, uuid.New(), UpdateWorkflowRequest{
		Name: "Standard",
		Steps: []StepRequest{
			{StepOrder: 1, StepName: "Manager", ApproverRoleID: &roleID, IsMandatory: true},
			{StepOrder: 1, StepName: "Finance", ApproverRoleID: &roleID, IsMandatory: true},
		},
	})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestDeleteWorkflow_FreesName(t *testing.T) {
	repo := new(MockWorkflowRepository)
	service := NewService(repo, zap.NewNop())

	wf, err := workflow.NewApprovalWorkflow("Standard", "", nil, buildSteps(stepRequests()))
	require.NoError(t, err)

	repo.On("FindByID", mock.Anything, wf.ID).Return(wf, nil)
	repo.On("Delete", mock.Anything, wf.ID).Return(nil)

	require.NoError(t, service.Delete(context.Background(), wf.ID, uuid.New()))

	// the name is checked against non-deleted workflows only
	repo.On("ExistsByName", mock.Anything, "Standard", (*uuid.UUID)(nil)).Return(false, nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*workflow.ApprovalWorkflow")).Return(nil)

	resp, err := service.Create(context.Background(), uuid.New(), CreateWorkflowRequest{
		Name:  "Standard",
		Steps: stepRequests(),
	})
	require.NoError(t, err)
	assert.Equal(t, "Standard", resp.Name)
}
