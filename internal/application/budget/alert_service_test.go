package budget

import (
	"context"
	"testing"
	"time"

	"github.com/expenseflow/backend/internal/domain/budget"
	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

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

// MockThresholdRepository is a mock implementation of budget.ThresholdRepository
type MockThresholdRepository struct {
	mock.Mock
}

func (m *MockThresholdRepository) FindByID(ctx context.Context, id uuid.UUID) (*budget.BudgetThreshold, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*budget.BudgetThreshold), args.Error(1)
}

func (m *MockThresholdRepository) FindByBudget(ctx context.Context, budgetID uuid.UUID) ([]*budget.BudgetThreshold, error) {
	args := m.Called(ctx, budgetID)
	return args.Get(0).([]*budget.BudgetThreshold), args.Error(1)
}

func (m *MockThresholdRepository) FindAlertEnabled(ctx context.Context) ([]*budget.BudgetThreshold, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*budget.BudgetThreshold), args.Error(1)
}

func (m *MockThresholdRepository) ExistsByBudgetAndPercentage(ctx context.Context, budgetID uuid.UUID, percentage string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, budgetID, percentage, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockThresholdRepository) Save(ctx context.Context, threshold *budget.BudgetThreshold) error {
	args := m.Called(ctx, threshold)
	return args.Error(0)
}

func (m *MockThresholdRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAlertRepository is a mock implementation of budget.AlertRepository
type MockAlertRepository struct {
	mock.Mock
}

func (m *MockAlertRepository) FindByID(ctx context.Context, id uuid.UUID) (*budget.BudgetAlert, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*budget.BudgetAlert), args.Error(1)
}

func (m *MockAlertRepository) FindByBudget(ctx context.Context, budgetID uuid.UUID) ([]*budget.BudgetAlert, error) {
	args := m.Called(ctx, budgetID)
	return args.Get(0).([]*budget.BudgetAlert), args.Error(1)
}

func (m *MockAlertRepository) FindUnacknowledged(ctx context.Context) ([]*budget.BudgetAlert, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*budget.BudgetAlert), args.Error(1)
}

func (m *MockAlertRepository) FindRecent(ctx context.Context, since time.Time, filter shared.Filter) (shared.Paginated[*budget.BudgetAlert], error) {
	args := m.Called(ctx, since, filter)
	return args.Get(0).(shared.Paginated[*budget.BudgetAlert]), args.Error(1)
}

func (m *MockAlertRepository) ExistsUnacknowledged(ctx context.Context, budgetID, thresholdID uuid.UUID) (bool, error) {
	args := m.Called(ctx, budgetID, thresholdID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAlertRepository) CreateIfAbsent(ctx context.Context, alert *budget.BudgetAlert) (bool, error) {
	args := m.Called(ctx, alert)
	return args.Bool(0), args.Error(1)
}

func (m *MockAlertRepository) Save(ctx context.Context, alert *budget.BudgetAlert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

func (m *MockAlertRepository) DeleteAcknowledged(ctx context.Context, budgetID uuid.UUID) (int64, error) {
	args := m.Called(ctx, budgetID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAlertRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func breachedBudget(t *testing.T) *budget.Budget {
	t.Helper()
	segID := uuid.New()
	b, err := budget.NewBudget("Engineering Travel", "", &segID, nil, budget.PeriodYearly,
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		decimal.NewFromInt(1000))
	require.NoError(t, err)
	require.NoError(t, b.AddConsumption(decimal.NewFromInt(850)))
	return b
}

func newAlertFixture() (*AlertService, *MockAlertRepository, *MockThresholdRepository, *MockBudgetRepository) {
	alertRepo := new(MockAlertRepository)
	thresholdRepo := new(MockThresholdRepository)
	budgetRepo := new(MockBudgetRepository)
	service := NewAlertService(alertRepo, thresholdRepo, budgetRepo, zap.NewNop())
	return service, alertRepo, thresholdRepo, budgetRepo
}

func TestCheckAndCreateAlerts_CreatesForBreachedThreshold(t *testing.T) {
	service, alertRepo, thresholdRepo, budgetRepo := newAlertFixture()
	b := breachedBudget(t)
	th, err := budget.NewBudgetThreshold(b.ID, decimal.NewFromInt(80), nil)
	require.NoError(t, err)

	thresholdRepo.On("FindAlertEnabled", mock.Anything).Return([]*budget.BudgetThreshold{th}, nil)
	budgetRepo.On("FindByID", mock.Anything, b.ID).Return(b, nil)
	alertRepo.On("CreateIfAbsent", mock.Anything, mock.MatchedBy(func(a *budget.BudgetAlert) bool {
		return a.BudgetID == b.ID && a.ThresholdID == th.ID &&
			a.Message == "Budget threshold of 80% has been reached"
	})).Return(true, nil)

	created, err := service.CheckAndCreateAlerts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	alertRepo.AssertExpectations(t)
}

// A second sweep while the alert is still open must not duplicate it
func TestCheckAndCreateAlerts_Idempotent(t *testing.T) {
	service, alertRepo, thresholdRepo, budgetRepo := newAlertFixture()
	b := breachedBudget(t)
	th, err := budget.NewBudgetThreshold(b.ID, decimal.NewFromInt(80), nil)
	require.NoError(t, err)

	thresholdRepo.On("FindAlertEnabled", mock.Anything).Return([]*budget.BudgetThreshold{th}, nil)
	budgetRepo.On("FindByID", mock.Anything, b.ID).Return(b, nil)
	alertRepo.On("CreateIfAbsent", mock.Anything, mock.Anything).Return(false, nil)

	created, err := service.CheckAndCreateAlerts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	alertRepo.AssertNumberOfCalls(t, "CreateIfAbsent", 1)
}

func TestCheckAndCreateAlerts_SkipsUnbreached(t *testing.T) {
	service, alertRepo, thresholdRepo, budgetRepo := newAlertFixture()
	b := breachedBudget(t)
	th, err := budget.NewBudgetThreshold(b.ID, decimal.NewFromInt(90), nil)
	require.NoError(t, err)

	thresholdRepo.On("FindAlertEnabled", mock.Anything).Return([]*budget.BudgetThreshold{th}, nil)
	budgetRepo.On("FindByID", mock.Anything, b.ID).Return(b, nil)

	created, err := service.CheckAndCreateAlerts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	alertRepo.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything)
}

func TestCheckAndCreateAlerts_SkipsInactiveBudget(t *testing.T) {
	service, alertRepo, thresholdRepo, budgetRepo := newAlertFixture()
	b := breachedBudget(t)
	b.Deactivate()
	th, err := budget.NewBudgetThreshold(b.ID, decimal.NewFromInt(80), nil)
	require.NoError(t, err)

	thresholdRepo.On("FindAlertEnabled", mock.Anything).Return([]*budget.BudgetThreshold{th}, nil)
	budgetRepo.On("FindByID", mock.Anything, b.ID).Return(b, nil)

	created, err := service.CheckAndCreateAlerts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	alertRepo.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything)
}

func TestAcknowledge_Twice(t *testing.T) {
	service, alertRepo, _, _ := newAlertFixture()
	b := breachedBudget(t)
	th, err := budget.NewBudgetThreshold(b.ID, decimal.NewFromInt(80), nil)
	require.NoError(t, err)
	alert, err := budget.NewBudgetAlert(b, th)
	require.NoError(t, err)

	alertRepo.On("FindByID", mock.Anything, alert.ID).Return(alert, nil)
	alertRepo.On("Save", mock.Anything, alert).Return(nil)

	first := uuid.New()
	resp, err := service.Acknowledge(context.Background(), alert.ID, first)
	require.NoError(t, err)
	assert.True(t, resp.IsAcknowledged)
	firstDate := *resp.AcknowledgedDate

	resp, err = service.Acknowledge(context.Background(), alert.ID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, first, *resp.AcknowledgedBy)
	assert.Equal(t, firstDate, *resp.AcknowledgedDate)
}
