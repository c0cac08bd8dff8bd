package cache

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expenseflow/backend/internal/domain/budget"
)

func cachedBudget(t *testing.T) *budget.Budget {
	t.Helper()
	b, err := budget.NewBudget(
		"Engineering Q1", "",
		nil, nil,
		budget.PeriodQuarterly,
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		decimal.NewFromInt(10000),
	)
	require.NoError(t, err)
	return b
}

func TestInMemoryBudgetCache_SetAndGet(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryBudgetCache(time.Minute)
	b := cachedBudget(t)

	require.NoError(t, c.Set(ctx, b))

	got, err := c.Get(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, b.ID, got.ID)
	assert.Equal(t, b.Name, got.Name)
	assert.True(t, b.AllocatedAmount.Equal(got.AllocatedAmount))
}

func TestInMemoryBudgetCache_MissReturnsNil(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryBudgetCache(time.Minute)

	got, err := c.Get(ctx, cachedBudget(t).ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestInMemoryBudgetCache_ExpiredEntryIsAMiss(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryBudgetCache(time.Nanosecond)
	b := cachedBudget(t)

	require.NoError(t, c.Set(ctx, b))
	time.Sleep(5 * time.Millisecond)

	got, err := c.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestInMemoryBudgetCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryBudgetCache(time.Minute)
	b := cachedBudget(t)

	require.NoError(t, c.Set(ctx, b))
	require.NoError(t, c.Invalidate(ctx, b.ID))

	got, err := c.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestInMemoryBudgetCache_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryBudgetCache(time.Minute)
	b := cachedBudget(t)
	require.NoError(t, c.Set(ctx, b))

	first, err := c.Get(ctx, b.ID)
	require.NoError(t, err)
	first.Name = "mutated"

	second, err := c.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Engineering Q1", second.Name)
}
