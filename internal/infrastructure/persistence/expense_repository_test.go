package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expenseflow/backend/internal/domain/expense"
	"github.com/expenseflow/backend/internal/domain/shared"
)

// The in-memory SQLite database is shared across the package's tests,
// so every test scopes its queries by a fresh submitter id.
func newTestDatabase(t *testing.T) *Database {
	t.Helper()

	db, err := NewSQLiteDatabase()
	require.NoError(t, err)
	require.NoError(t, db.Migrate())

	return db
}

func newTestExpense(t *testing.T, submitterID uuid.UUID, amount string) *expense.Expense {
	t.Helper()

	total := decimal.RequireFromString(amount)
	allocations, err := expense.BuildAllocations(total, []expense.AllocationInput{
		{SegmentID: uuid.New(), Percentage: decimal.NewFromInt(60)},
		{SegmentID: uuid.New(), Percentage: decimal.NewFromInt(40)},
	})
	require.NoError(t, err)

	exp, err := expense.NewExpense(
		submitterID,
		time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		"Acme Travel",
		total,
		"USD",
		"Client visit",
		allocations,
	)
	require.NoError(t, err)

	return exp
}

func TestGormExpenseRepository_SaveAndFindByID(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormExpenseRepository(db.DB)
	ctx := context.Background()

	submitterID := uuid.New()
	exp := newTestExpense(t, submitterID, "250.00")

	doc, err := expense.NewDocument("receipt.pdf", "application/pdf", 2048, "/docs/receipt.pdf", submitterID)
	require.NoError(t, err)
	exp.AddDocument(doc)

	require.NoError(t, repo.Save(ctx, exp))

	found, err := repo.FindByID(ctx, exp.GetID())
	require.NoError(t, err)
	require.NotNil(t, found)

	assert.Equal(t, submitterID, found.SubmitterID)
	assert.Equal(t, "Acme Travel", found.Vendor)
	assert.Equal(t, expense.StatusDraft, found.Status)
	assert.True(t, found.TotalAmount.Equal(decimal.RequireFromString("250.00")))
	assert.Len(t, found.Allocations, 2)
	assert.Len(t, found.Documents, 1)
	assert.Equal(t, "receipt.pdf", found.Documents[0].FileName)
}

func TestGormExpenseRepository_FindByIDNotFound(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormExpenseRepository(db.DB)

	found, err := repo.FindByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestGormExpenseRepository_SaveReplacesAllocations(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormExpenseRepository(db.DB)
	ctx := context.Background()

	exp := newTestExpense(t, uuid.New(), "100.00")
	require.NoError(t, repo.Save(ctx, exp))

	newTotal := decimal.RequireFromString("300.00")
	allocations, err := expense.BuildAllocations(newTotal, []expense.AllocationInput{
		{SegmentID: uuid.New(), Percentage: decimal.NewFromInt(100)},
	})
	require.NoError(t, err)
	_, err = exp.ReplaceAllocations(newTotal, allocations)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, exp))

	found, err := repo.FindByID(ctx, exp.GetID())
	require.NoError(t, err)
	require.NotNil(t, found)

	assert.True(t, found.TotalAmount.Equal(newTotal))
	require.Len(t, found.Allocations, 1)
	assert.True(t, found.Allocations[0].Amount.Equal(newTotal))
}

func TestGormExpenseRepository_SaveWithLockDetectsStaleVersion(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormExpenseRepository(db.DB)
	ctx := context.Background()

	exp := newTestExpense(t, uuid.New(), "80.00")
	require.NoError(t, repo.Save(ctx, exp))

	first, err := repo.FindByID(ctx, exp.GetID())
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, exp.GetID())
	require.NoError(t, err)

	first.Vendor = "Updated Vendor"
	require.NoError(t, repo.SaveWithLock(ctx, first))

	second.Vendor = "Conflicting Vendor"
	err = repo.SaveWithLock(ctx, second)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrConcurrentModification)

	found, err := repo.FindByID(ctx, exp.GetID())
	require.NoError(t, err)
	assert.Equal(t, "Updated Vendor", found.Vendor)
}

func TestGormExpenseRepository_SaveWithLockBumpsVersion(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormExpenseRepository(db.DB)
	ctx := context.Background()

	exp := newTestExpense(t, uuid.New(), "50.00")
	require.NoError(t, repo.Save(ctx, exp))

	loaded, err := repo.FindByID(ctx, exp.GetID())
	require.NoError(t, err)
	before := loaded.GetVersion()

	loaded.Description = "Updated description"
	require.NoError(t, repo.SaveWithLock(ctx, loaded))
	assert.Equal(t, before+1, loaded.GetVersion())

	reloaded, err := repo.FindByID(ctx, exp.GetID())
	require.NoError(t, err)
	assert.Equal(t, before+1, reloaded.GetVersion())
	assert.Equal(t, "Updated description", reloaded.Description)
}

func TestGormExpenseRepository_FindBySubmitterAndStatus(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormExpenseRepository(db.DB)
	ctx := context.Background()

	submitterID := uuid.New()
	draft := newTestExpense(t, submitterID, "10.00")
	require.NoError(t, repo.Save(ctx, draft))

	submitted := newTestExpense(t, submitterID, "20.00")
	require.NoError(t, submitted.Submit(submitterID))
	require.NoError(t, repo.Save(ctx, submitted))

	other := newTestExpense(t, uuid.New(), "30.00")
	require.NoError(t, repo.Save(ctx, other))

	mine, err := repo.FindBySubmitter(ctx, submitterID, expense.Filter{})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	status := expense.StatusSubmitted
	filtered, err := repo.FindAll(ctx, expense.Filter{SubmitterID: &submitterID, Status: &status})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.True(t, filtered[0].TotalAmount.Equal(decimal.RequireFromString("20.00")))

	count, err := repo.Count(ctx, expense.Filter{SubmitterID: &submitterID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestGormExpenseRepository_SoftDeleteHidesExpense(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormExpenseRepository(db.DB)
	ctx := context.Background()

	exp := newTestExpense(t, uuid.New(), "42.00")
	require.NoError(t, repo.Save(ctx, exp))

	require.NoError(t, exp.Delete())
	require.NoError(t, repo.Save(ctx, exp))

	found, err := repo.FindByID(ctx, exp.GetID())
	require.NoError(t, err)
	assert.Nil(t, found)
}
