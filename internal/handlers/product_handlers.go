package handlers

import (
	"net/http"

	"restopos/internal/common"
	"restopos/internal/models"
	"restopos/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// ProductHandlers handles HTTP requests for menu products
type ProductHandlers struct {
	productService services.ProductService
}

// NewProductHandlers creates a new product handlers instance
func NewProductHandlers(productService services.ProductService) *ProductHandlers {
	return &ProductHandlers{productService: productService}
}

// ProductRequest is the payload for creating or replacing a product.
// Active defaults to true.
type ProductRequest struct {
	Name        string          `json:"name"`
	CategoryID  *uuid.UUID      `json:"category_id"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	SKU         *string         `json:"sku"`
	Active      *bool           `json:"active"`
}

func (r ProductRequest) toModel() *models.Product {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return &models.Product{
		CategoryID:  r.CategoryID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		SKU:         r.SKU,
		Active:      active,
	}
}

// CreateProduct handles POST /products
func (h *ProductHandlers) CreateProduct(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}

	var req ProductRequest
	if err := bindJSON(c, &req); err != nil {
		return common.RespondError(c, "product", err)
	}

	product := req.toModel()
	if err := h.productService.Create(c.Request().Context(), tenantID, product); err != nil {
		return common.RespondError(c, "category", err)
	}
	return c.JSON(http.StatusCreated, product)
}

// GetProduct handles GET /products/:id
func (h *ProductHandlers) GetProduct(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return common.RespondError(c, "product", err)
	}

	product, err := h.productService.GetByID(c.Request().Context(), tenantID, id)
	if err != nil {
		return common.RespondError(c, "product", err)
	}
	return c.JSON(http.StatusOK, product)
}

// ListProducts handles GET /products
func (h *ProductHandlers) ListProducts(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	limit, offset, err := pagination(c)
	if err != nil {
		return common.RespondError(c, "product", err)
	}

	products, err := h.productService.List(c.Request().Context(), tenantID, limit, offset)
	if err != nil {
		return common.RespondError(c, "product", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"products": products,
		"limit":    limit,
		"offset":   offset,
	})
}

// UpdateProduct handles PUT /products/:id
func (h *ProductHandlers) UpdateProduct(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return common.RespondError(c, "product", err)
	}

	var req ProductRequest
	if err := bindJSON(c, &req); err != nil {
		return common.RespondError(c, "product", err)
	}

	product := req.toModel()
	product.ID = id
	if err := h.productService.Update(c.Request().Context(), tenantID, product); err != nil {
		return common.RespondError(c, "product", err)
	}
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /products/:id
func (h *ProductHandlers) DeleteProduct(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return common.RespondError(c, "product", err)
	}

	if err := h.productService.Delete(c.Request().Context(), tenantID, id); err != nil {
		return common.RespondError(c, "product", err)
	}
	return c.NoContent(http.StatusNoContent)
}
