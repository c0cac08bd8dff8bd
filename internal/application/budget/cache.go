package budget

import (
	"context"

	"github.com/expenseflow/backend/internal/domain/budget"
	"github.com/google/uuid"
)

// Cache is a read-through cache for budget aggregates keyed by budget
// id. Misses and backend failures both surface as a nil budget; the
// caller falls back to the repository. Every write path invalidates
// explicitly.
type Cache interface {
	// Get returns the cached budget or nil on miss
	Get(ctx context.Context, id uuid.UUID) (*budget.Budget, error)
	// Set stores the budget under its id
	Set(ctx context.Context, b *budget.Budget) error
	// Invalidate drops the cache entry for the given budget
	Invalidate(ctx context.Context, id uuid.UUID) error
}
