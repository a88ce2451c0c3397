package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yahyahetari/electronics-admin/internal/domain"
	"github.com/yahyahetari/electronics-admin/internal/repository"
)

const statsCacheKey = "dashboard:stats"

// DashboardService computes the dashboard aggregate over all orders and
// products. The fold walks the whole order history, so results are cached
// in Redis for a short window; a cache failure degrades to recomputing.
type DashboardService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewDashboardService creates a new dashboard service. The cache client may
// be nil, in which case every call recomputes.
func NewDashboardService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	cache *redis.Client,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *DashboardService {
	return &DashboardService{
		orders:   orders,
		products: products,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// Stats returns the dashboard aggregate, served from cache when a fresh
// copy exists.
func (s *DashboardService) Stats(ctx context.Context) (*domain.Stats, error) {
	if cached := s.cachedStats(ctx); cached != nil {
		return cached, nil
	}

	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load orders for stats: %w", err)
	}

	products, err := s.products.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products for stats: %w", err)
	}

	stats := domain.AggregateStats(orders, products, s.now().UTC())

	if stats.SkippedItems > 0 {
		s.logger.WarnContext(ctx, "order lines skipped during profit aggregation",
			slog.Int("skipped_items", stats.SkippedItems),
		)
	}

	s.storeStats(ctx, &stats)

	return &stats, nil
}

// cachedStats returns the cached aggregate, or nil on miss or cache error.
func (s *DashboardService) cachedStats(ctx context.Context) *domain.Stats {
	if s.cache == nil {
		return nil
	}

	data, err := s.cache.Get(ctx, statsCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.WarnContext(ctx, "dashboard cache read failed",
				slog.String("error", err.Error()),
			)
		}
		return nil
	}

	var stats domain.Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		s.logger.WarnContext(ctx, "dashboard cache entry corrupt",
			slog.String("error", err.Error()),
		)
		return nil
	}

	return &stats
}

func (s *DashboardService) storeStats(ctx context.Context, stats *domain.Stats) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(stats)
	if err != nil {
		s.logger.WarnContext(ctx, "marshal dashboard stats for cache failed",
			slog.String("error", err.Error()),
		)
		return
	}

	if err := s.cache.Set(ctx, statsCacheKey, data, s.cacheTTL).Err(); err != nil {
		s.logger.WarnContext(ctx, "dashboard cache write failed",
			slog.String("error", err.Error()),
		)
	}
}
