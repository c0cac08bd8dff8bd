package budget

import (
	"testing"
	"time"

	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBudget(t *testing.T, allocated decimal.Decimal) *Budget {
	t.Helper()
	segID := uuid.New()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	b, err := NewBudget("Engineering Travel", "", &segID, nil, PeriodYearly, start, end, allocated)
	require.NoError(t, err)
	return b
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		input   string
		want    Period
		wantErr bool
	}{
		{"MONTHLY", PeriodMonthly, false},
		{"QUARTERLY", PeriodQuarterly, false},
		{"YEARLY", PeriodYearly, false},
		{"WEEKLY", "", true},
		{"monthly", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePeriod(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, shared.ErrInvalidEnumValue)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewBudget_Validation(t *testing.T) {
	segID := uuid.New()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	amount := decimal.NewFromInt(1000)

	_, err := NewBudget("", "", &segID, nil, PeriodQuarterly, start, end, amount)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewBudget("Q1", "", &segID, nil, Period("WEEKLY"), start, end, amount)
	assert.ErrorIs(t, err, shared.ErrInvalidEnumValue)

	_, err = NewBudget("Q1", "", &segID, nil, PeriodQuarterly, end, start, amount)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewBudget("Q1", "", &segID, nil, PeriodQuarterly, start, end, decimal.Zero)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestUtilizationPercentage(t *testing.T) {
	b := testBudget(t, decimal.NewFromInt(1000))

	assert.True(t, b.UtilizationPercentage().IsZero())

	require.NoError(t, b.AddConsumption(decimal.NewFromInt(250)))
	assert.Equal(t, "25.00", b.UtilizationPercentage().StringFixed(2))

	// rounds half-up to 2 decimals
	require.NoError(t, b.AddConsumption(decimal.NewFromFloat(83.45)))
	assert.Equal(t, "33.35", b.UtilizationPercentage().StringFixed(2))
}

func TestUtilizationPercentage_ZeroAllocated(t *testing.T) {
	b := testBudget(t, decimal.NewFromInt(1000))
	b.AllocatedAmount = decimal.Zero
	b.ConsumedAmount = decimal.NewFromInt(50)

	assert.True(t, b.UtilizationPercentage().IsZero())
}

func TestRemainingAmount_CanGoNegative(t *testing.T) {
	b := testBudget(t, decimal.NewFromInt(100))
	require.NoError(t, b.AddConsumption(decimal.NewFromInt(150)))

	assert.Equal(t, "-50", b.RemainingAmount().String())
	assert.Equal(t, "150.00", b.UtilizationPercentage().StringFixed(2))
}

func TestReduceConsumption_FloorsAtZero(t *testing.T) {
	b := testBudget(t, decimal.NewFromInt(100))
	require.NoError(t, b.AddConsumption(decimal.NewFromInt(30)))

	require.NoError(t, b.ReduceConsumption(decimal.NewFromInt(50)))
	assert.True(t, b.ConsumedAmount.IsZero())
}

func TestAddConsumption_MustBePositive(t *testing.T) {
	b := testBudget(t, decimal.NewFromInt(100))

	err := b.AddConsumption(decimal.Zero)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	err = b.ReduceConsumption(decimal.NewFromInt(-5))
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestCovers(t *testing.T) {
	b := testBudget(t, decimal.NewFromInt(100))

	assert.True(t, b.Covers(b.StartDate))
	assert.True(t, b.Covers(b.EndDate))
	assert.True(t, b.Covers(time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)))
	assert.False(t, b.Covers(b.StartDate.AddDate(0, 0, -1)))
	assert.False(t, b.Covers(b.EndDate.AddDate(0, 0, 1)))
}
