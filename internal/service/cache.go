package service

import (
	"context"

	"sellmypi/internal/models"
)

// StatsCache is an optional snapshot cache for dashboard stats. A Get miss
// returns (nil, nil); the caller recomputes from the store.
type StatsCache interface {
	Get(ctx context.Context) (*models.DashboardStats, error)
	Set(ctx context.Context, stats models.DashboardStats) error
	Invalidate(ctx context.Context) error
}

type noopStatsCache struct{}

// NewNoopStatsCache returns a cache that stores nothing, for deployments
// without redis.
func NewNoopStatsCache() StatsCache { return noopStatsCache{} }

func (noopStatsCache) Get(context.Context) (*models.DashboardStats, error) { return nil, nil }
func (noopStatsCache) Set(context.Context, models.DashboardStats) error    { return nil }
func (noopStatsCache) Invalidate(context.Context) error                    { return nil }
