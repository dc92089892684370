package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const adminIDsKey = "support:notify:admin_ids"

// RecipientCache keeps the admin recipient list in Redis so that ticket
// creation fan-out does not hit the user directory on every request. Every
// method degrades to a miss on Redis failure; the directory stays the source
// of truth.
type RecipientCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRecipientCache constructs the cache. ttl <= 0 falls back to one minute.
func NewRecipientCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RecipientCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RecipientCache{client: client, ttl: ttl, logger: logger}
}

// AdminIDs returns the cached admin id list. ok is false on a miss, a decode
// problem, or any Redis failure.
func (c *RecipientCache) AdminIDs(ctx context.Context) ([]string, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, adminIDsKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("recipient cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		c.logger.Warn("recipient cache entry corrupt", zap.Error(err))
		return nil, false
	}
	return ids, true
}

// StoreAdminIDs caches the admin id list for the configured TTL.
func (c *RecipientCache) StoreAdminIDs(ctx context.Context, ids []string) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, adminIDsKey, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("recipient cache write failed", zap.Error(err))
	}
}
