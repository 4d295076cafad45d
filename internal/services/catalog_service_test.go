package services

import (
	"context"
	"errors"
	"testing"

	"restopos/internal/common"
	"restopos/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryService_Create(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	service := NewCategoryService(store.Categories())
	tenantID := uuid.New()

	category := &models.Category{Name: " Mains "}
	require.NoError(t, service.Create(ctx, tenantID, category))
	assert.Equal(t, "Mains", category.Name)

	found, err := service.GetByID(ctx, tenantID, category.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mains", found.Name)

	err = service.Create(ctx, tenantID, &models.Category{Name: "   "})
	assert.True(t, errors.Is(err, common.ErrInvalidValue))

	_, err = service.GetByID(ctx, uuid.New(), category.ID)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestCustomerService_Create(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	service := NewCustomerService(store.Customers())
	tenantID := uuid.New()

	customer := &models.Customer{Name: "Grace", Email: strPtr("grace@example.com")}
	require.NoError(t, service.Create(ctx, tenantID, customer))
	assert.Equal(t, tenantID, customer.TenantID)

	err := service.Create(ctx, tenantID, &models.Customer{Name: "Bob", Email: strPtr("bob.example.com")})
	var fieldErr *common.FieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "email", fieldErr.Field)

	customers, err := service.List(ctx, tenantID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, customers, 1)
}
