package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expenseflow/backend/internal/domain/budget"
	"github.com/expenseflow/backend/internal/domain/shared"
)

func newTestBudget(t *testing.T, name string, segmentID, departmentID *uuid.UUID) *budget.Budget {
	t.Helper()

	b, err := budget.NewBudget(
		name, "",
		segmentID, departmentID,
		budget.PeriodQuarterly,
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		decimal.NewFromInt(10000),
	)
	require.NoError(t, err)

	return b
}

func TestGormBudgetRepository_SaveAndFindByID(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormBudgetRepository(db.DB)
	ctx := context.Background()

	segmentID := uuid.New()
	b := newTestBudget(t, "Travel Q1 "+uuid.NewString(), &segmentID, nil)
	require.NoError(t, repo.Save(ctx, b))

	found, err := repo.FindByID(ctx, b.GetID())
	require.NoError(t, err)
	require.NotNil(t, found)

	assert.Equal(t, b.Name, found.Name)
	assert.Equal(t, budget.PeriodQuarterly, found.Period)
	require.NotNil(t, found.SegmentID)
	assert.Equal(t, segmentID, *found.SegmentID)
	assert.Nil(t, found.DepartmentID)
	assert.True(t, found.AllocatedAmount.Equal(decimal.NewFromInt(10000)))
	assert.True(t, found.ConsumedAmount.IsZero())
	assert.True(t, found.IsActive)
}

func TestGormBudgetRepository_FindActiveCovering(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormBudgetRepository(db.DB)
	ctx := context.Background()

	segmentID := uuid.New()
	departmentID := uuid.New()

	segmentBudget := newTestBudget(t, "Segment "+uuid.NewString(), &segmentID, nil)
	require.NoError(t, repo.Save(ctx, segmentBudget))

	departmentBudget := newTestBudget(t, "Department "+uuid.NewString(), nil, &departmentID)
	require.NoError(t, repo.Save(ctx, departmentBudget))

	inactive := newTestBudget(t, "Inactive "+uuid.NewString(), &segmentID, nil)
	inactive.Deactivate()
	require.NoError(t, repo.Save(ctx, inactive))

	covered := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)

	found, err := repo.FindActiveCovering(ctx, &segmentID, &departmentID, covered)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = repo.FindActiveCovering(ctx, &segmentID, nil, covered)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, segmentBudget.GetID(), found[0].GetID())

	found, err = repo.FindActiveCovering(ctx, &segmentID, nil, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, found)

	found, err = repo.FindActiveCovering(ctx, nil, nil, covered)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestGormBudgetRepository_ExistsOverlapping(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormBudgetRepository(db.DB)
	ctx := context.Background()

	segmentID := uuid.New()
	name := "Overlap " + uuid.NewString()
	b := newTestBudget(t, name, &segmentID, nil)
	require.NoError(t, repo.Save(ctx, b))

	exists, err := repo.ExistsOverlapping(ctx, name, budget.PeriodQuarterly,
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC),
		nil)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsOverlapping(ctx, name, budget.PeriodQuarterly,
		time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		nil)
	require.NoError(t, err)
	assert.False(t, exists)

	// Excluding the budget's own id ignores its row on update checks.
	id := b.GetID()
	exists, err = repo.ExistsOverlapping(ctx, name, budget.PeriodQuarterly,
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		&id)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGormBudgetRepository_SaveWithLockDetectsStaleVersion(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormBudgetRepository(db.DB)
	ctx := context.Background()

	b := newTestBudget(t, "Locked "+uuid.NewString(), nil, nil)
	require.NoError(t, repo.Save(ctx, b))

	first, err := repo.FindByID(ctx, b.GetID())
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, b.GetID())
	require.NoError(t, err)

	require.NoError(t, first.AddConsumption(decimal.NewFromInt(500)))
	require.NoError(t, repo.SaveWithLock(ctx, first))

	require.NoError(t, second.AddConsumption(decimal.NewFromInt(900)))
	err = repo.SaveWithLock(ctx, second)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrConcurrentModification)

	found, err := repo.FindByID(ctx, b.GetID())
	require.NoError(t, err)
	assert.True(t, found.ConsumedAmount.Equal(decimal.NewFromInt(500)))
}
