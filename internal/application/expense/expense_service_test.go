package expense

import (
	"context"
	"testing"
	"time"

	"github.com/expenseflow/backend/internal/domain/budget"
	"github.com/expenseflow/backend/internal/domain/expense"
	"github.com/expenseflow/backend/internal/domain/segment"
	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/expenseflow/backend/internal/domain/workflow"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockExpenseRepository is a mock implementation of expense.Repository
type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*expense.Expense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*expense.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindAll(ctx context.Context, filter expense.Filter) ([]expense.Expense, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]expense.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindBySubmitter(ctx context.Context, submitterID uuid.UUID, filter expense.Filter) ([]expense.Expense, error) {
	args := m.Called(ctx, submitterID, filter)
	return args.Get(0).([]expense.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindByStatus(ctx context.Context, status expense.Status, filter expense.Filter) ([]expense.Expense, error) {
	args := m.Called(ctx, status, filter)
	return args.Get(0).([]expense.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindPendingApprovals(ctx context.Context) ([]expense.Expense, error) {
	args := m.Called(ctx)
	return args.Get(0).([]expense.Expense), args.Error(1)
}

func (m *MockExpenseRepository) Save(ctx context.Context, exp *expense.Expense) error {
	args := m.Called(ctx, exp)
	return args.Error(0)
}

func (m *MockExpenseRepository) SaveWithLock(ctx context.Context, exp *expense.Expense) error {
	args := m.Called(ctx, exp)
	return args.Error(0)
}

func (m *MockExpenseRepository) Count(ctx context.Context, filter expense.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockSegmentRepository is a mock implementation of segment.Repository
type MockSegmentRepository struct {
	mock.Mock
}

func (m *MockSegmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*segment.Segment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*segment.Segment), args.Error(1)
}

func (m *MockSegmentRepository) FindByCode(ctx context.Context, code string) (*segment.Segment, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*segment.Segment), args.Error(1)
}

func (m *MockSegmentRepository) FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[*segment.Segment], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[*segment.Segment]), args.Error(1)
}

func (m *MockSegmentRepository) FindByType(ctx context.Context, segType segment.Type) ([]*segment.Segment, error) {
	args := m.Called(ctx, segType)
	return args.Get(0).([]*segment.Segment), args.Error(1)
}

func (m *MockSegmentRepository) FindChildren(ctx context.Context, parentID uuid.UUID) ([]*segment.Segment, error) {
	args := m.Called(ctx, parentID)
	return args.Get(0).([]*segment.Segment), args.Error(1)
}

func (m *MockSegmentRepository) ExistsByCode(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, code, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSegmentRepository) ExistsAllActive(ctx context.Context, ids []uuid.UUID) (bool, error) {
	args := m.Called(ctx, ids)
	return args.Bool(0), args.Error(1)
}

func (m *MockSegmentRepository) Save(ctx context.Context, seg *segment.Segment) error {
	args := m.Called(ctx, seg)
	return args.Error(0)
}

func (m *MockSegmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockHistoryRepository is a mock implementation of workflow.HistoryRepository
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) FindByExpense(ctx context.Context, expenseID uuid.UUID) ([]*workflow.History, error) {
	args := m.Called(ctx, expenseID)
	return args.Get(0).([]*workflow.History), args.Error(1)
}

func (m *MockHistoryRepository) FindLatestByExpense(ctx context.Context, expenseID uuid.UUID) (*workflow.History, error) {
	args := m.Called(ctx, expenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workflow.History), args.Error(1)
}

func (m *MockHistoryRepository) FindByActor(ctx context.Context, actorID uuid.UUID, filter shared.Filter) (shared.Paginated[*workflow.History], error) {
	args := m.Called(ctx, actorID, filter)
	return args.Get(0).(shared.Paginated[*workflow.History]), args.Error(1)
}

func (m *MockHistoryRepository) FindSince(ctx context.Context, since time.Time, filter shared.Filter) (shared.Paginated[*workflow.History], error) {
	args := m.Called(ctx, since, filter)
	return args.Get(0).(shared.Paginated[*workflow.History]), args.Error(1)
}

func (m *MockHistoryRepository) Record(ctx context.Context, entry *workflow.History) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockBudgetRepository is a mock implementation of budget.Repository
type MockBudgetRepository struct {
	mock.Mock
}

func (m *MockBudgetRepository) FindByID(ctx context.Context, id uuid.UUID) (*budget.Budget, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*budget.Budget), args.Error(1)
}

func (m *MockBudgetRepository) FindAll(ctx context.Context, filter budget.Filter) (shared.Paginated[*budget.Budget], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[*budget.Budget]), args.Error(1)
}

func (m *MockBudgetRepository) FindActiveCovering(ctx context.Context, segmentID, departmentID *uuid.UUID, date time.Time) ([]*budget.Budget, error) {
	args := m.Called(ctx, segmentID, departmentID, date)
	return args.Get(0).([]*budget.Budget), args.Error(1)
}

func (m *MockBudgetRepository) ExistsOverlapping(ctx context.Context, name string, period budget.Period, startDate, endDate time.Time, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, name, period, startDate, endDate, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBudgetRepository) Save(ctx context.Context, b *budget.Budget) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBudgetRepository) SaveWithLock(ctx context.Context, b *budget.Budget) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBudgetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockConsumptionTracker is a mock implementation of ConsumptionTracker
type MockConsumptionTracker struct {
	mock.Mock
}

func (m *MockConsumptionTracker) Apply(ctx context.Context, repos TransactionalRepositories, exp *expense.Expense) error {
	args := m.Called(ctx, repos, exp)
	return args.Error(0)
}

func (m *MockConsumptionTracker) Reverse(ctx context.Context, repos TransactionalRepositories, exp *expense.Expense) error {
	args := m.Called(ctx, repos, exp)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type serviceFixture struct {
	service     *Service
	expenseRepo *MockExpenseRepository
	segmentRepo *MockSegmentRepository
	historyRepo *MockHistoryRepository
	budgetRepo  *MockBudgetRepository
	tracker     *MockConsumptionTracker
	events      *MockEventPublisher
}

func newFixture() *serviceFixture {
	f := &serviceFixture{
		expenseRepo: new(MockExpenseRepository),
		segmentRepo: new(MockSegmentRepository),
		historyRepo: new(MockHistoryRepository),
		budgetRepo:  new(MockBudgetRepository),
		tracker:     new(MockConsumptionTracker),
		events:      new(MockEventPublisher),
	}
	scope := NewNoOpTransactionScope(f.expenseRepo, f.historyRepo, f.budgetRepo)
	f.service = NewService(scope, f.expenseRepo, f.segmentRepo, f.tracker, f.events, zap.NewNop())
	return f
}

func createRequest() CreateExpenseRequest {
	return CreateExpenseRequest{
		ExpenseDate: time.Now(),
		Vendor:      "Acme Travel",
		TotalAmount: decimal.NewFromFloat(250.00),
		Currency:    "USD",
		Description: "conference trip",
		Allocations: []AllocationRequest{
			{SegmentID: uuid.New(), Percentage: decimal.NewFromInt(60)},
			{SegmentID: uuid.New(), Percentage: decimal.NewFromInt(40)},
		},
	}
}

func storedExpense(t *testing.T, status expense.Status) *expense.Expense {
	t.Helper()
	total := decimal.NewFromFloat(250.00)
	allocs, err := expense.BuildAllocations(total, []expense.AllocationInput{
		{SegmentID: uuid.New(), Percentage: decimal.NewFromInt(100)},
	})
	require.NoError(t, err)
	exp, err := expense.NewExpense(uuid.New(), time.Now(), "Acme Travel", total, "USD", "", allocs)
	require.NoError(t, err)
	exp.ClearDomainEvents()

	actor := uuid.New()
	switch status {
	case expense.StatusSubmitted:
		require.NoError(t, exp.Submit(actor))
	case expense.StatusApproved:
		require.NoError(t, exp.Submit(actor))
		require.NoError(t, exp.Approve(actor))
	case expense.StatusRejected:
		require.NoError(t, exp.Submit(actor))
		require.NoError(t, exp.Reject(actor, "missing receipt"))
	}
	exp.ClearDomainEvents()
	return exp
}

func TestCreate_RecordsCreationHistory(t *testing.T) {
	f := newFixture()
	actor := uuid.New()

	f.segmentRepo.On("ExistsAllActive", mock.Anything, mock.Anything).Return(true, nil)
	f.expenseRepo.On("Save", mock.Anything, mock.AnythingOfType("*expense.Expense")).Return(nil)
	f.historyRepo.On("Record", mock.Anything, mock.MatchedBy(func(h *workflow.History) bool {
		return h.FromStatus == nil && h.ToStatus == expense.StatusDraft && h.ActorID == actor
	})).Return(nil)
	f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.Create(context.Background(), actor, createRequest())
	require.NoError(t, err)

	assert.Equal(t, "DRAFT", resp.Status)
	assert.Len(t, resp.Allocations, 2)
	assert.Equal(t, "150", resp.Allocations[0].Amount.String())
	f.historyRepo.AssertExpectations(t)
}

func TestCreate_UnknownSegment(t *testing.T) {
	f := newFixture()

	f.segmentRepo.On("ExistsAllActive", mock.Anything, mock.Anything).Return(false, nil)

	_, err := f.service.Create(context.Background(), uuid.New(), createRequest())
	assert.ErrorIs(t, err, shared.ErrNotFound)
	f.expenseRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCreate_AllocationSumInvalid(t *testing.T) {
	f := newFixture()

	req := createRequest()
	req.Allocations[1].Percentage = decimal.NewFromInt(30)

	_, err := f.service.Create(context.Background(), uuid.New(), req)
	assert.ErrorIs(t, err, shared.ErrAllocationSumInvalid)
}

func TestSubmit_RecordsTransitionHistory(t *testing.T) {
	f := newFixture()
	exp := storedExpense(t, expense.StatusDraft)
	actor := uuid.New()

	f.expenseRepo.On("FindByID", mock.Anything, exp.ID).Return(exp, nil)
	f.expenseRepo.On("SaveWithLock", mock.Anything, exp).Return(nil)
	f.historyRepo.On("Record", mock.Anything, mock.MatchedBy(func(h *workflow.History) bool {
		return h.FromStatus != nil && *h.FromStatus == expense.StatusDraft &&
			h.ToStatus == expense.StatusSubmitted && h.ActorID == actor
	})).Return(nil)
	f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.Submit(context.Background(), exp.ID, actor)
	require.NoError(t, err)

	assert.Equal(t, "SUBMITTED", resp.Status)
	f.historyRepo.AssertExpectations(t)
	f.tracker.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything, mock.Anything)
}

func TestApprove_AppliesBudgetConsumption(t *testing.T) {
	f := newFixture()
	exp := storedExpense(t, expense.StatusSubmitted)
	actor := uuid.New()

	f.expenseRepo.On("FindByID", mock.Anything, exp.ID).Return(exp, nil)
	f.expenseRepo.On("SaveWithLock", mock.Anything, exp).Return(nil)
	f.historyRepo.On("Record", mock.Anything, mock.Anything).Return(nil)
	f.tracker.On("Apply", mock.Anything, mock.Anything, exp).Return(nil)
	f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.Approve(context.Background(), exp.ID, actor)
	require.NoError(t, err)

	assert.Equal(t, "APPROVED", resp.Status)
	f.tracker.AssertExpectations(t)
}

func TestApprove_InvalidState(t *testing.T) {
	f := newFixture()
	exp := storedExpense(t, expense.StatusDraft)

	f.expenseRepo.On("FindByID", mock.Anything, exp.ID).Return(exp, nil)

	_, err := f.service.Approve(context.Background(), exp.ID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrInvalidStateTransition)
	f.expenseRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestUpdate_RejectedReturnsToDraft(t *testing.T) {
	f := newFixture()
	exp := storedExpense(t, expense.StatusRejected)
	actor := uuid.New()

	f.segmentRepo.On("ExistsAllActive", mock.Anything, mock.Anything).Return(true, nil)
	f.expenseRepo.On("FindByID", mock.Anything, exp.ID).Return(exp, nil)
	f.expenseRepo.On("SaveWithLock", mock.Anything, exp).Return(nil)
	f.historyRepo.On("Record", mock.Anything, mock.MatchedBy(func(h *workflow.History) bool {
		return h.FromStatus != nil && *h.FromStatus == expense.StatusRejected &&
			h.ToStatus == expense.StatusDraft
	})).Return(nil)

	req := UpdateExpenseRequest{
		ExpenseDate: time.Now(),
		TotalAmount: decimal.NewFromInt(300),
		Allocations: []AllocationRequest{
			{SegmentID: uuid.New(), Percentage: decimal.NewFromInt(100)},
		},
	}
	resp, err := f.service.Update(context.Background(), exp.ID, actor, req)
	require.NoError(t, err)

	assert.Equal(t, "DRAFT", resp.Status)
	assert.Empty(t, resp.RejectionReason)
	f.historyRepo.AssertExpectations(t)
}

func TestMarkPaid(t *testing.T) {
	f := newFixture()
	exp := storedExpense(t, expense.StatusApproved)
	actor := uuid.New()

	f.expenseRepo.On("FindByID", mock.Anything, exp.ID).Return(exp, nil)
	f.expenseRepo.On("SaveWithLock", mock.Anything, exp).Return(nil)
	f.historyRepo.On("Record", mock.Anything, mock.Anything).Return(nil)
	f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.MarkPaid(context.Background(), exp.ID, actor, "PAY-001")
	require.NoError(t, err)

	assert.Equal(t, "PAID", resp.Status)
	assert.Equal(t, "PAY-001", resp.PaymentReference)
}

func TestGet_NotFound(t *testing.T) {
	f := newFixture()
	id := uuid.New()

	f.expenseRepo.On("FindByID", mock.Anything, id).Return(nil, nil)

	_, err := f.service.Get(context.Background(), id)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDelete_OnlyEditable(t *testing.T) {
	f := newFixture()
	exp := storedExpense(t, expense.StatusSubmitted)

	f.expenseRepo.On("FindByID", mock.Anything, exp.ID).Return(exp, nil)

	err := f.service.Delete(context.Background(), exp.ID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrInvalidStateTransition)
}

func TestDelete_PersistsWithVersionCheck(t *testing.T) {
	f := newFixture()
	exp := storedExpense(t, expense.StatusDraft)

	f.expenseRepo.On("FindByID", mock.Anything, exp.ID).Return(exp, nil)
	f.expenseRepo.On("SaveWithLock", mock.Anything, exp).Return(nil)

	err := f.service.Delete(context.Background(), exp.ID, uuid.New())
	require.NoError(t, err)
	f.expenseRepo.AssertExpectations(t)
	f.expenseRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestDelete_StaleVersion(t *testing.T) {
	f := newFixture()
	exp := storedExpense(t, expense.StatusDraft)

	f.expenseRepo.On("FindByID", mock.Anything, exp.ID).Return(exp, nil)
	f.expenseRepo.On("SaveWithLock", mock.Anything, exp).Return(shared.ErrConcurrentModification)

	err := f.service.Delete(context.Background(), exp.ID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrConcurrentModification)
}
