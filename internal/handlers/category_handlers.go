package handlers

import (
	"net/http"

	"restopos/internal/common"
	"restopos/internal/models"
	"restopos/internal/services"

	"github.com/labstack/echo/v4"
)

// CategoryHandlers handles category-related HTTP requests
type CategoryHandlers struct {
	categoryService services.CategoryService
}

// NewCategoryHandlers creates a new category handlers instance
func NewCategoryHandlers(categoryService services.CategoryService) *CategoryHandlers {
	return &CategoryHandlers{categoryService: categoryService}
}

// CreateCategoryRequest represents the category creation request payload
type CreateCategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// ListCategories handles GET /categories
func (h *CategoryHandlers) ListCategories(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	limit, offset, err := pagination(c)
	if err != nil {
		return common.RespondError(c, "category", err)
	}

	categories, err := h.categoryService.List(c.Request().Context(), tenantID, limit, offset)
	if err != nil {
		return common.RespondError(c, "category", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"categories": categories,
		"limit":      limit,
		"offset":     offset,
	})
}

// CreateCategory handles POST /categories
func (h *CategoryHandlers) CreateCategory(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}

	var req CreateCategoryRequest
	if err := bindJSON(c, &req); err != nil {
		return common.RespondError(c, "category", err)
	}

	category := &models.Category{Name: req.Name, Description: req.Description}
	if err := h.categoryService.Create(c.Request().Context(), tenantID, category); err != nil {
		return common.RespondError(c, "category", err)
	}
	return c.JSON(http.StatusCreated, category)
}

// GetCategory handles GET /categories/:id
func (h *CategoryHandlers) GetCategory(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return common.RespondError(c, "category", err)
	}

	category, err := h.categoryService.GetByID(c.Request().Context(), tenantID, id)
	if err != nil {
		return common.RespondError(c, "category", err)
	}
	return c.JSON(http.StatusOK, category)
}
