package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expenseflow/backend/internal/domain/budget"
)

func newTestAlert(t *testing.T) (*budget.Budget, *budget.BudgetThreshold, *budget.BudgetAlert) {
	t.Helper()

	segmentID := uuid.New()
	b := newTestBudget(t, "Travel "+uuid.NewString(), &segmentID, nil)
	th, err := budget.NewBudgetThreshold(b.GetID(), decimal.NewFromInt(80), nil)
	require.NoError(t, err)
	alert, err := budget.NewBudgetAlert(b, th)
	require.NoError(t, err)

	return b, th, alert
}

func TestGormAlertRepository_CreateIfAbsent(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormAlertRepository(db.DB)
	ctx := context.Background()

	b, th, alert := newTestAlert(t)

	created, err := repo.CreateIfAbsent(ctx, alert)
	require.NoError(t, err)
	assert.True(t, created)

	exists, err := repo.ExistsUnacknowledged(ctx, b.GetID(), th.GetID())
	require.NoError(t, err)
	assert.True(t, exists)
}

// Two overlapping sweeps may each build an alert for the same breached
// threshold. Only the first insert wins; the second reports not created
// and the pair keeps a single open alert.
func TestGormAlertRepository_CreateIfAbsentDeduplicates(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormAlertRepository(db.DB)
	ctx := context.Background()

	b, th, first := newTestAlert(t)
	second, err := budget.NewBudgetAlert(b, th)
	require.NoError(t, err)

	created, err := repo.CreateIfAbsent(ctx, first)
	require.NoError(t, err)
	require.True(t, created)

	created, err = repo.CreateIfAbsent(ctx, second)
	require.NoError(t, err)
	assert.False(t, created)

	open, err := repo.FindByBudget(ctx, b.GetID())
	require.NoError(t, err)
	assert.Len(t, open, 1)
	assert.Equal(t, first.GetID(), open[0].GetID())
}

func TestGormAlertRepository_CreateIfAbsentAfterAcknowledge(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormAlertRepository(db.DB)
	ctx := context.Background()

	b, th, first := newTestAlert(t)
	created, err := repo.CreateIfAbsent(ctx, first)
	require.NoError(t, err)
	require.True(t, created)

	first.Acknowledge(uuid.New())
	require.NoError(t, repo.Save(ctx, first))

	// the pair has no open alert anymore, so a fresh breach alerts again
	next, err := budget.NewBudgetAlert(b, th)
	require.NoError(t, err)
	created, err = repo.CreateIfAbsent(ctx, next)
	require.NoError(t, err)
	assert.True(t, created)

	alerts, err := repo.FindByBudget(ctx, b.GetID())
	require.NoError(t, err)
	assert.Len(t, alerts, 2)
}
