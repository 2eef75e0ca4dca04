// Package cache provides an optional Redis-backed cache for per-user
// recommendation sets. All operations are best effort: a cache miss or
// Redis outage degrades to reading from Postgres, never to an error.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/windrush/job-recommender/internal/types"
)

const keyPrefix = "recs:v1:"

// Connect parses redisURL and verifies connectivity.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// RecommendationCache stores a user's full recommendation set under a
// single key with a TTL matching the freshness window.
type RecommendationCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func New(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RecommendationCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecommendationCache{client: client, ttl: ttl, logger: logger}
}

func key(userID uuid.UUID) string {
	return keyPrefix + userID.String()
}

// Get returns the cached set for the user, or (nil, false) on miss,
// decode failure, or Redis error.
func (c *RecommendationCache) Get(ctx context.Context, userID uuid.UUID) ([]types.JobRecommendation, bool) {
	raw, err := c.client.Get(ctx, key(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache get failed", zap.String("user_id", userID.String()), zap.Error(err))
		}
		return nil, false
	}

	var recs []types.JobRecommendation
	if err := json.Unmarshal(raw, &recs); err != nil {
		c.logger.Warn("cache entry corrupt, dropping", zap.String("user_id", userID.String()), zap.Error(err))
		c.client.Del(ctx, key(userID))
		return nil, false
	}
	return recs, true
}

func (c *RecommendationCache) Set(ctx context.Context, userID uuid.UUID, recs []types.JobRecommendation) {
	raw, err := json.Marshal(recs)
	if err != nil {
		c.logger.Warn("cache encode failed", zap.String("user_id", userID.String()), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key(userID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

func (c *RecommendationCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	if err := c.client.Del(ctx, key(userID)).Err(); err != nil {
		c.logger.Warn("cache invalidate failed", zap.String("user_id", userID.String()), zap.Error(err))
	}
}
