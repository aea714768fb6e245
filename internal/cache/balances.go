// Package cache provides a Redis read-through cache for the cross-group
// user balance. The projection in SQLite is authoritative; a cache miss or
// an unreachable Redis simply falls back to the store, and every expense
// attach invalidates the users it touched. All methods are nil-receiver
// safe so callers need no "is caching enabled" branches.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// BalanceCache caches per-user net balances.
type BalanceCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New connects to Redis at addr. An empty addr disables caching and
// returns nil, which every method tolerates.
func New(addr string, ttl time.Duration) *BalanceCache {
	if addr == "" {
		return nil
	}
	return &BalanceCache{
		rdb: redis.NewClient(&redis.Options{Addr: addr}),
		ttl: ttl,
	}
}

func balanceKey(userID string) string {
	return "balance:user:" + userID
}

// GetUserBalance returns the cached balance and whether it was present.
func (c *BalanceCache) GetUserBalance(ctx context.Context, userID string) (decimal.Decimal, bool) {
	if c == nil {
		return decimal.Zero, false
	}

	raw, err := c.rdb.Get(ctx, balanceKey(userID)).Result()
	if err == redis.Nil {
		return decimal.Zero, false
	}
	if err != nil {
		slog.Warn("Balance cache read failed", "user_id", userID, "error", err)
		return decimal.Zero, false
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		slog.Warn("Balance cache held corrupt value", "user_id", userID, "error", err)
		return decimal.Zero, false
	}
	return amount, true
}

// SetUserBalance stores a freshly computed balance.
func (c *BalanceCache) SetUserBalance(ctx context.Context, userID string, balance decimal.Decimal) {
	if c == nil {
		return
	}
	if err := c.rdb.Set(ctx, balanceKey(userID), balance.String(), c.ttl).Err(); err != nil {
		slog.Warn("Balance cache write failed", "user_id", userID, "error", err)
	}
}

// InvalidateUsers evicts the cached balances of the given users.
func (c *BalanceCache) InvalidateUsers(ctx context.Context, userIDs ...string) {
	if c == nil || len(userIDs) == 0 {
		return
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = balanceKey(id)
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		slog.Warn("Balance cache invalidation failed", "error", err)
	}
}

// Close releases the Redis connection.
func (c *BalanceCache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
