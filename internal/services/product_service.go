package services

import (
	"context"
	"strings"
	"time"

	"restopos/internal/caching"
	"restopos/internal/common"
	"restopos/internal/models"
	"restopos/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProductService interface {
	Create(ctx context.Context, tenantID uuid.UUID, product *models.Product) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error)
	Update(ctx context.Context, tenantID uuid.UUID, product *models.Product) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Product, error)
}

type productService struct {
	productRepo  repositories.ProductRepository
	categoryRepo repositories.CategoryRepository
	cacheService caching.CacheService
	cacheTTL     time.Duration
	logger       *zap.Logger
}

func NewProductService(productRepo repositories.ProductRepository, categoryRepo repositories.CategoryRepository, cacheService caching.CacheService, cacheTTL time.Duration, logger *zap.Logger) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		cacheService: cacheService,
		cacheTTL:     cacheTTL,
		logger:       logger,
	}
}

func (s *productService) validate(ctx context.Context, tenantID uuid.UUID, product *models.Product) error {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		return common.InvalidValue("name", "product name is required")
	}
	if product.Price.IsNegative() {
		return common.InvalidValue("price", "cannot be negative")
	}
	if product.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, tenantID, *product.CategoryID); err != nil {
			return err
		}
	}
	return nil
}

func (s *productService) Create(ctx context.Context, tenantID uuid.UUID, product *models.Product) error {
	if err := s.validate(ctx, tenantID, product); err != nil {
		return err
	}
	product.ID = uuid.New()
	product.TenantID = tenantID
	return s.productRepo.Create(ctx, product)
}

// GetByID reads through the product cache. Cache failures fall back to the
// database.
func (s *productService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error) {
	if cachedProduct, err := s.cacheService.GetProduct(ctx, tenantID, id); cachedProduct != nil {
		return cachedProduct, nil
	} else if err != nil {
		s.logger.Warn("product cache read failed", zap.String("product_id", id.String()), zap.Error(err))
	}

	product, err := s.productRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := s.cacheService.SetProduct(ctx, tenantID, product, s.cacheTTL); err != nil {
		s.logger.Warn("product cache write failed", zap.String("product_id", id.String()), zap.Error(err))
	}
	return product, nil
}

func (s *productService) Update(ctx context.Context, tenantID uuid.UUID, product *models.Product) error {
	if err := s.validate(ctx, tenantID, product); err != nil {
		return err
	}
	product.TenantID = tenantID
	if err := s.productRepo.Update(ctx, product); err != nil {
		return err
	}
	s.evict(ctx, tenantID, product.ID)
	return nil
}

func (s *productService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	s.evict(ctx, tenantID, id)
	return nil
}

func (s *productService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Product, error) {
	return s.productRepo.List(ctx, tenantID, limit, offset)
}

func (s *productService) evict(ctx context.Context, tenantID, id uuid.UUID) {
	if err := s.cacheService.DeleteProduct(ctx, tenantID, id); err != nil {
		s.logger.Warn("product cache eviction failed", zap.String("product_id", id.String()), zap.Error(err))
	}
}
