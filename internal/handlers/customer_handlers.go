package handlers

import (
	"net/http"

	"restopos/internal/common"
	"restopos/internal/models"
	"restopos/internal/services"

	"github.com/labstack/echo/v4"
)

type CustomerHandlers struct {
	customerService services.CustomerService
}

func NewCustomerHandlers(customerService services.CustomerService) *CustomerHandlers {
	return &CustomerHandlers{customerService: customerService}
}

type CreateCustomerRequest struct {
	Name    string  `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// CreateCustomer handles POST /customers
func (h *CustomerHandlers) CreateCustomer(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}

	var req CreateCustomerRequest
	if err := bindJSON(c, &req); err != nil {
		return common.RespondError(c, "customer", err)
	}

	customer := &models.Customer{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}
	if err := h.customerService.Create(c.Request().Context(), tenantID, customer); err != nil {
		return common.RespondError(c, "customer", err)
	}
	return c.JSON(http.StatusCreated, customer)
}

// GetCustomer handles GET /customers/:id
func (h *CustomerHandlers) GetCustomer(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return common.RespondError(c, "customer", err)
	}

	customer, err := h.customerService.GetByID(c.Request().Context(), tenantID, id)
	if err != nil {
		return common.RespondError(c, "customer", err)
	}
	return c.JSON(http.StatusOK, customer)
}

// ListCustomers handles GET /customers
func (h *CustomerHandlers) ListCustomers(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	limit, offset, err := pagination(c)
	if err != nil {
		return common.RespondError(c, "customer", err)
	}

	customers, err := h.customerService.List(c.Request().Context(), tenantID, limit, offset)
	if err != nil {
		return common.RespondError(c, "customer", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"customers": customers,
		"limit":     limit,
		"offset":    offset,
	})
}
