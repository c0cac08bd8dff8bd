package expense

import (
	"context"
	"time"

	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Filter defines filtering options for expense list queries
type Filter struct {
	shared.Filter
	SubmitterID *uuid.UUID
	Status      *Status
	FromDate    *time.Time
	ToDate      *time.Time
	MinAmount   *decimal.Decimal
	MaxAmount   *decimal.Decimal
}

// Repository defines persistence for the Expense aggregate. Saving an
// expense persists its allocation and document collections with it;
// deletes are soft deletes.
type Repository interface {
	// FindByID finds a non-deleted expense with its allocations and documents
	FindByID(ctx context.Context, id uuid.UUID) (*Expense, error)

	// FindAll finds expenses matching the filter
	FindAll(ctx context.Context, filter Filter) ([]Expense, error)

	// FindBySubmitter finds expenses created by a user
	FindBySubmitter(ctx context.Context, submitterID uuid.UUID, filter Filter) ([]Expense, error)

	// FindByStatus finds expenses in a given status
	FindByStatus(ctx context.Context, status Status, filter Filter) ([]Expense, error)

	// FindPendingApprovals finds submitted expenses ordered by submission date
	FindPendingApprovals(ctx context.Context) ([]Expense, error)

	// Save creates or updates an expense, replacing its child collections
	Save(ctx context.Context, expense *Expense) error

	// SaveWithLock saves with an optimistic version check, returning
	// ErrConcurrentModification on conflict
	SaveWithLock(ctx context.Context, expense *Expense) error

	// Count counts expenses matching the filter
	Count(ctx context.Context, filter Filter) (int64, error)
}
