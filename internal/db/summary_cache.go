// Shared summary cache (Redis)
//
// Env (via config.RedisConfig):
//   - REDIS_ADDR: host:port, empty disables the cache
//   - REDIS_PASSWORD
//   - REDIS_DB
//   - SUMMARY_CACHE_TTL (default: 30s)
//
// Keys:
//   - reactions:summary:{type}:{id} -> SummaryNode JSON
//   - reactions:rating:{type}:{id}  -> RatingSummaryNode JSON

package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kube-rca/reactions/internal/config"
	"github.com/kube-rca/reactions/internal/model"
)

type SummaryCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSummaryCache returns nil when REDIS_ADDR is not set.
func NewSummaryCache(ctx context.Context, cfg config.RedisConfig) (*SummaryCache, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &SummaryCache{rdb: rdb, ttl: ttl}, nil
}

func (c *SummaryCache) Close() error {
	return c.rdb.Close()
}

func summaryKey(targetType, targetID string) string {
	return fmt.Sprintf("reactions:summary:%s:%s", targetType, targetID)
}

func ratingKey(targetType, targetID string) string {
	return fmt.Sprintf("reactions:rating:%s:%s", targetType, targetID)
}

func (c *SummaryCache) GetSummary(ctx context.Context, targetType, targetID string) (*model.SummaryNode, bool, error) {
	var node model.SummaryNode
	ok, err := c.get(ctx, summaryKey(targetType, targetID), &node)
	if !ok || err != nil {
		return nil, false, err
	}
	return &node, true, nil
}

func (c *SummaryCache) SetSummary(ctx context.Context, targetType, targetID string, node *model.SummaryNode) error {
	return c.set(ctx, summaryKey(targetType, targetID), node)
}

func (c *SummaryCache) GetRating(ctx context.Context, targetType, targetID string) (*model.RatingSummaryNode, bool, error) {
	var node model.RatingSummaryNode
	ok, err := c.get(ctx, ratingKey(targetType, targetID), &node)
	if !ok || err != nil {
		return nil, false, err
	}
	return &node, true, nil
}

func (c *SummaryCache) SetRating(ctx context.Context, targetType, targetID string, node *model.RatingSummaryNode) error {
	return c.set(ctx, ratingKey(targetType, targetID), node)
}

func (c *SummaryCache) Invalidate(ctx context.Context, targetType, targetID string) error {
	return c.rdb.Del(ctx, summaryKey(targetType, targetID), ratingKey(targetType, targetID)).Err()
}

func (c *SummaryCache) get(ctx context.Context, key string, out any) (bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("failed to decode cached %s: %w", key, err)
	}
	return true, nil
}

func (c *SummaryCache) set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, raw, c.ttl).Err()
}
