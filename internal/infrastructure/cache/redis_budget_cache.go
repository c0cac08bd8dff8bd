package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/expenseflow/backend/internal/domain/budget"
)

const budgetKeyPrefix = "budget:"

// RedisBudgetCache caches budgets in Redis. Suitable for distributed
// deployments where multiple instances share cache state.
type RedisBudgetCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisBudgetCache creates a budget cache over an existing Redis client
func NewRedisBudgetCache(client *redis.Client, ttl time.Duration) *RedisBudgetCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisBudgetCache{client: client, ttl: ttl}
}

// Get returns the cached budget or nil on a miss. A budget that fails to
// decode is treated as a miss and evicted.
func (c *RedisBudgetCache) Get(ctx context.Context, id uuid.UUID) (*budget.Budget, error) {
	raw, err := c.client.Get(ctx, budgetKeyPrefix+id.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read budget from cache: %w", err)
	}

	var b budget.Budget
	if err := json.Unmarshal(raw, &b); err != nil {
		_ = c.client.Del(ctx, budgetKeyPrefix+id.String()).Err()
		return nil, nil
	}
	return &b, nil
}

// Set stores a budget with the configured TTL
func (c *RedisBudgetCache) Set(ctx context.Context, b *budget.Budget) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to encode budget for cache: %w", err)
	}
	if err := c.client.Set(ctx, budgetKeyPrefix+b.ID.String(), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write budget to cache: %w", err)
	}
	return nil
}

// Invalidate removes a budget from the cache
func (c *RedisBudgetCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, budgetKeyPrefix+id.String()).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached budget: %w", err)
	}
	return nil
}
