package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"sellmypi/internal/models"
)

const dashboardKey = "sellmypi:stats:dashboard"

// StatsCache keeps a JSON snapshot of the dashboard stats in redis. It is an
// optimisation only: the store stays the source of truth and every write path
// invalidates the snapshot.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New returns a redis-backed stats cache.
func New(client *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{client: client, ttl: ttl}
}

// Get returns the cached snapshot, or (nil, nil) on a miss.
func (c *StatsCache) Get(ctx context.Context) (*models.DashboardStats, error) {
	result, err := c.client.Get(ctx, dashboardKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var stats models.DashboardStats
	if err := json.Unmarshal([]byte(result), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Set caches the snapshot with the configured TTL.
func (c *StatsCache) Set(ctx context.Context, stats models.DashboardStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, dashboardKey, data, c.ttl).Err()
}

// Invalidate drops the snapshot.
func (c *StatsCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, dashboardKey).Err()
}
