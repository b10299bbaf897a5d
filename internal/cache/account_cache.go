package cache

import (
	"context"
	"encoding/json"
	"time"

	dom "Warden/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyAccounts = "accounts:list"

// AccountCache caches the account listing in Redis. Entries never contain
// password hashes: the domain struct excludes them from JSON.
type AccountCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewAccountCache returns a new AccountCache.
func NewAccountCache(rdb *redis.Client, ttl time.Duration) *AccountCache {
	return &AccountCache{rdb: rdb, ttl: ttl}
}

// GetList returns the cached list or nil if miss.
func (c *AccountCache) GetList(ctx context.Context) ([]dom.Account, error) {
	b, err := c.rdb.Get(ctx, keyAccounts).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []dom.Account
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetList stores the list in cache.
func (c *AccountCache) SetList(ctx context.Context, list []dom.Account) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyAccounts, b, c.ttl).Err()
}

// Invalidate removes the cached list (called after every registration).
func (c *AccountCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, keyAccounts).Err()
}
