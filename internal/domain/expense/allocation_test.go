package expense

import (
	"testing"

	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAllocations(t *testing.T) {
	total := decimal.NewFromFloat(100.00)
	allocs, err := BuildAllocations(total, []AllocationInput{
		{SegmentID: uuid.New(), Percentage: decimal.NewFromFloat(33.33)},
		{SegmentID: uuid.New(), Percentage: decimal.NewFromFloat(33.33)},
		{SegmentID: uuid.New(), Percentage: decimal.NewFromFloat(33.34)},
	})
	require.NoError(t, err)
	require.Len(t, allocs, 3)

	assert.Equal(t, "33.33", allocs[0].Amount.StringFixed(2))
	assert.Equal(t, "33.33", allocs[1].Amount.StringFixed(2))
	assert.Equal(t, "33.34", allocs[2].Amount.StringFixed(2))
}

// Amounts are rounded per allocation; a cent of drift against the total
// is accepted rather than redistributed.
func TestBuildAllocations_RoundingDrift(t *testing.T) {
	total := decimal.NewFromFloat(0.01)
	allocs, err := BuildAllocations(total, []AllocationInput{
		{SegmentID: uuid.New(), Percentage: decimal.NewFromFloat(50)},
		{SegmentID: uuid.New(), Percentage: decimal.NewFromFloat(50)},
	})
	require.NoError(t, err)

	// each half of 0.01 rounds half-up to 0.01
	assert.Equal(t, "0.01", allocs[0].Amount.StringFixed(2))
	assert.Equal(t, "0.01", allocs[1].Amount.StringFixed(2))

	sum := allocs[0].Amount.Add(allocs[1].Amount)
	assert.Equal(t, "0.02", sum.StringFixed(2))
}

func TestBuildAllocations_SumMustBeExactly100(t *testing.T) {
	total := decimal.NewFromInt(100)

	_, err := BuildAllocations(total, []AllocationInput{
		{SegmentID: uuid.New(), Percentage: decimal.NewFromFloat(33.33)},
		{SegmentID: uuid.New(), Percentage: decimal.NewFromFloat(33.33)},
		{SegmentID: uuid.New(), Percentage: decimal.NewFromFloat(33.33)},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrAllocationSumInvalid)
	assert.Contains(t, err.Error(), "99.99")

	_, err = BuildAllocations(total, []AllocationInput{
		{SegmentID: uuid.New(), Percentage: decimal.NewFromFloat(50.005)},
		{SegmentID: uuid.New(), Percentage: decimal.NewFromFloat(50.005)},
	})
	assert.ErrorIs(t, err, shared.ErrAllocationSumInvalid)
}

func TestBuildAllocations_PercentageRange(t *testing.T) {
	total := decimal.NewFromInt(100)

	_, err := BuildAllocations(total, []AllocationInput{
		{SegmentID: uuid.New(), Percentage: decimal.Zero},
		{SegmentID: uuid.New(), Percentage: decimal.NewFromInt(100)},
	})
	assert.ErrorIs(t, err, shared.ErrPercentageOutOfRange)

	_, err = BuildAllocations(total, []AllocationInput{
		{SegmentID: uuid.New(), Percentage: decimal.NewFromInt(101)},
	})
	assert.ErrorIs(t, err, shared.ErrPercentageOutOfRange)

	// a single 100% allocation is valid
	allocs, err := BuildAllocations(total, []AllocationInput{
		{SegmentID: uuid.New(), Percentage: decimal.NewFromInt(100)},
	})
	require.NoError(t, err)
	assert.Equal(t, "100.00", allocs[0].Amount.StringFixed(2))
}

func TestBuildAllocations_Empty(t *testing.T) {
	_, err := BuildAllocations(decimal.NewFromInt(100), nil)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestBuildAllocations_HalfUpRounding(t *testing.T) {
	// 10.01 * 12.5% = 1.25125 -> 1.25; 10.01 * 87.5% = 8.75875 -> 8.76
	total := decimal.NewFromFloat(10.01)
	allocs, err := BuildAllocations(total, []AllocationInput{
		{SegmentID: uuid.New(), Percentage: decimal.NewFromFloat(12.5)},
		{SegmentID: uuid.New(), Percentage: decimal.NewFromFloat(87.5)},
	})
	require.NoError(t, err)
	assert.Equal(t, "1.25", allocs[0].Amount.StringFixed(2))
	assert.Equal(t, "8.76", allocs[1].Amount.StringFixed(2))
}
