package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/expenseflow/backend/internal/domain/budget"
)

// InMemoryBudgetCache caches budgets in process memory. Suitable for
// single-instance deployments and tests. Entries expire lazily on read.
type InMemoryBudgetCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]inMemoryEntry
	ttl     time.Duration
}

type inMemoryEntry struct {
	budget    budget.Budget
	expiresAt time.Time
}

// NewInMemoryBudgetCache creates an in-memory budget cache
func NewInMemoryBudgetCache(ttl time.Duration) *InMemoryBudgetCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &InMemoryBudgetCache{
		entries: make(map[uuid.UUID]inMemoryEntry),
		ttl:     ttl,
	}
}

// Get returns a copy of the cached budget or nil on a miss
func (c *InMemoryBudgetCache) Get(_ context.Context, id uuid.UUID) (*budget.Budget, error) {
	c.mu.RLock()
	entry, ok := c.entries[id]
	c.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, id)
		c.mu.Unlock()
		return nil, nil
	}

	b := entry.budget
	return &b, nil
}

// Set stores a copy of the budget
func (c *InMemoryBudgetCache) Set(_ context.Context, b *budget.Budget) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[b.ID] = inMemoryEntry{
		budget:    *b,
		expiresAt: time.Now().Add(c.ttl),
	}
	return nil
}

// Invalidate removes a budget from the cache
func (c *InMemoryBudgetCache) Invalidate(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	return nil
}
