package services

import (
	"context"
	"strings"

	"restopos/internal/common"
	"restopos/internal/models"
	"restopos/internal/repositories"

	"github.com/google/uuid"
)

type CategoryService interface {
	Create(ctx context.Context, tenantID uuid.UUID, category *models.Category) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Category, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Category, error)
}

type categoryService struct {
	categoryRepo repositories.CategoryRepository
}

func NewCategoryService(categoryRepo repositories.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) Create(ctx context.Context, tenantID uuid.UUID, category *models.Category) error {
	if err := common.ValidateRequiredString(&category.Name, "name"); err != nil {
		return err
	}
	category.ID = uuid.New()
	category.TenantID = tenantID
	return s.categoryRepo.Create(ctx, category)
}

func (s *categoryService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Category, error) {
	return s.categoryRepo.GetByID(ctx, tenantID, id)
}

func (s *categoryService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Category, error) {
	return s.categoryRepo.List(ctx, tenantID, limit, offset)
}

type CustomerService interface {
	Create(ctx context.Context, tenantID uuid.UUID, customer *models.Customer) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Customer, error)
}

type customerService struct {
	customerRepo repositories.CustomerRepository
}

func NewCustomerService(customerRepo repositories.CustomerRepository) CustomerService {
	return &customerService{customerRepo: customerRepo}
}

func (s *customerService) Create(ctx context.Context, tenantID uuid.UUID, customer *models.Customer) error {
	if err := common.ValidateRequiredString(&customer.Name, "name"); err != nil {
		return err
	}
	if customer.Email != nil && !strings.Contains(*customer.Email, "@") {
		return common.InvalidValue("email", "invalid email address %q", *customer.Email)
	}
	customer.ID = uuid.New()
	customer.TenantID = tenantID
	return s.customerRepo.Create(ctx, customer)
}

func (s *customerService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error) {
	return s.customerRepo.GetByID(ctx, tenantID, id)
}

func (s *customerService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Customer, error) {
	return s.customerRepo.List(ctx, tenantID, limit, offset)
}
