package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"restopos/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "restopos"

type CacheService interface {
	// Product caching
	GetProduct(ctx context.Context, tenantID, productID uuid.UUID) (*models.Product, error)
	SetProduct(ctx context.Context, tenantID uuid.UUID, product *models.Product, ttl time.Duration) error
	DeleteProduct(ctx context.Context, tenantID, productID uuid.UUID) error

	// Dashboard caching
	GetDashboardStats(ctx context.Context, tenantID uuid.UUID) (*models.DashboardStats, error)
	SetDashboardStats(ctx context.Context, tenantID uuid.UUID, stats *models.DashboardStats, ttl time.Duration) error
	DeleteDashboardStats(ctx context.Context, tenantID uuid.UUID) error

	// Cache invalidation
	InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error

	Ping(ctx context.Context) error
	Close() error
}

type redisCacheService struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisCacheService connects to addr, which may carry a redis:// or
// rediss:// scheme. A failed initial ping is logged, not returned; callers
// treat the cache as optional.
func NewRedisCacheService(addr, password string, db int, logger *zap.Logger) CacheService {
	parsedAddr := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("redis ping failed on initialization", zap.String("addr", parsedAddr), zap.Error(err))
	} else {
		logger.Debug("redis connection established", zap.String("addr", parsedAddr))
	}

	return &redisCacheService{client: client, logger: logger}
}

func productKey(tenantID, productID uuid.UUID) string {
	return fmt.Sprintf("%s:product:%s:%s", keyPrefix, tenantID.String(), productID.String())
}

func dashboardKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("%s:dashboard:%s", keyPrefix, tenantID.String())
}

func tenantPattern(tenantID uuid.UUID) string {
	return fmt.Sprintf("%s:*:%s*", keyPrefix, tenantID.String())
}

// getJSON decodes the value at key into dest. It reports false on a miss.
func (r *redisCacheService) getJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (r *redisCacheService) setJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) GetProduct(ctx context.Context, tenantID, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	found, err := r.getJSON(ctx, productKey(tenantID, productID), &product)
	if err != nil || !found {
		return nil, err
	}
	return &product, nil
}

func (r *redisCacheService) SetProduct(ctx context.Context, tenantID uuid.UUID, product *models.Product, ttl time.Duration) error {
	return r.setJSON(ctx, productKey(tenantID, product.ID), product, ttl)
}

func (r *redisCacheService) DeleteProduct(ctx context.Context, tenantID, productID uuid.UUID) error {
	return r.client.Del(ctx, productKey(tenantID, productID)).Err()
}

func (r *redisCacheService) GetDashboardStats(ctx context.Context, tenantID uuid.UUID) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	found, err := r.getJSON(ctx, dashboardKey(tenantID), &stats)
	if err != nil || !found {
		return nil, err
	}
	return &stats, nil
}

func (r *redisCacheService) SetDashboardStats(ctx context.Context, tenantID uuid.UUID, stats *models.DashboardStats, ttl time.Duration) error {
	return r.setJSON(ctx, dashboardKey(tenantID), stats, ttl)
}

func (r *redisCacheService) DeleteDashboardStats(ctx context.Context, tenantID uuid.UUID) error {
	return r.client.Del(ctx, dashboardKey(tenantID)).Err()
}

func (r *redisCacheService) InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error {
	var keys []string
	iter := r.client.Scan(ctx, 0, tenantPattern(tenantID), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisCacheService) Close() error {
	return r.client.Close()
}
