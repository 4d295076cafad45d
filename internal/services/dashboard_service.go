package services

import (
	"context"
	"sync"
	"time"

	"restopos/internal/caching"
	"restopos/internal/models"
	"restopos/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const recentOrdersLimit = 5

type DashboardService interface {
	GetStats(ctx context.Context, tenantID uuid.UUID) (*models.DashboardStats, error)
	RecentOrders(ctx context.Context, tenantID uuid.UUID) ([]*models.Order, error)
	// RefreshAll recomputes cached stats for every restaurant served since
	// startup and returns how many were refreshed
	RefreshAll(ctx context.Context) int
}

type dashboardService struct {
	store    repositories.Store
	cache    caching.CacheService
	cacheTTL time.Duration
	logger   *zap.Logger

	tenants sync.Map
}

func NewDashboardService(store repositories.Store, cache caching.CacheService, cacheTTL time.Duration, logger *zap.Logger) DashboardService {
	return &dashboardService{
		store:    store,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// GetStats never fails on a backend error. Figures whose query failed read
// as zero.
func (s *dashboardService) GetStats(ctx context.Context, tenantID uuid.UUID) (*models.DashboardStats, error) {
	s.tenants.Store(tenantID, struct{}{})

	if s.cache != nil {
		if stats, err := s.cache.GetDashboardStats(ctx, tenantID); stats != nil {
			return stats, nil
		} else if err != nil {
			s.logger.Warn("dashboard cache read failed", zap.String("tenant_id", tenantID.String()), zap.Error(err))
		}
	}

	stats := s.compute(ctx, tenantID)
	s.cacheStats(ctx, tenantID, stats)
	return stats, nil
}

func (s *dashboardService) RecentOrders(ctx context.Context, tenantID uuid.UUID) ([]*models.Order, error) {
	orders, err := s.store.Orders().ListRecent(ctx, tenantID, recentOrdersLimit)
	if err != nil {
		s.logger.Warn("failed to load recent orders", zap.String("tenant_id", tenantID.String()), zap.Error(err))
		return []*models.Order{}, nil
	}
	return orders, nil
}

func (s *dashboardService) RefreshAll(ctx context.Context) int {
	refreshed := 0
	s.tenants.Range(func(key, _ any) bool {
		if ctx.Err() != nil {
			return false
		}
		tenantID := key.(uuid.UUID)
		s.cacheStats(ctx, tenantID, s.compute(ctx, tenantID))
		refreshed++
		return true
	})
	return refreshed
}

func (s *dashboardService) compute(ctx context.Context, tenantID uuid.UUID) *models.DashboardStats {
	stats := &models.DashboardStats{TotalRevenue: decimal.Zero, GeneratedAt: time.Now().UTC()}
	warn := func(figure string, err error) {
		s.logger.Warn("dashboard figure unavailable",
			zap.String("tenant_id", tenantID.String()),
			zap.String("figure", figure),
			zap.Error(err))
	}

	if n, err := s.store.Orders().Count(ctx, tenantID); err != nil {
		warn("total_orders", err)
	} else {
		stats.TotalOrders = n
	}
	if n, err := s.store.Customers().Count(ctx, tenantID); err != nil {
		warn("total_customers", err)
	} else {
		stats.TotalCustomers = n
	}
	if n, err := s.store.Products().Count(ctx, tenantID); err != nil {
		warn("total_products", err)
	} else {
		stats.TotalProducts = n
	}
	if revenue, err := s.store.Orders().SumTotalByStatus(ctx, tenantID, models.OrderStatusCompleted); err != nil {
		warn("total_revenue", err)
	} else {
		stats.TotalRevenue = revenue
	}
	return stats
}

func (s *dashboardService) cacheStats(ctx context.Context, tenantID uuid.UUID, stats *models.DashboardStats) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetDashboardStats(ctx, tenantID, stats, s.cacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("tenant_id", tenantID.String()), zap.Error(err))
	}
}
