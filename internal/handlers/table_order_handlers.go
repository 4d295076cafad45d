package handlers

import (
	"net/http"

	"restopos/internal/common"
	"restopos/internal/models"
	"restopos/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// TableOrderHandlers exposes the cart lifecycle of dine-in tables
type TableOrderHandlers struct {
	tableOrderService services.TableOrderService
}

func NewTableOrderHandlers(tableOrderService services.TableOrderService) *TableOrderHandlers {
	return &TableOrderHandlers{tableOrderService: tableOrderService}
}

// ListTableOrders handles GET /table-orders/table/:tableId
func (h *TableOrderHandlers) ListTableOrders(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	tableID, err := pathUUID(c, "tableId")
	if err != nil {
		return common.RespondError(c, "table", err)
	}

	orders, err := h.tableOrderService.ListTableOrders(c.Request().Context(), tenantID, tableID)
	if err != nil {
		return common.RespondError(c, "table", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"orders": orders,
		"count":  len(orders),
	})
}

// CreateTableOrder handles POST /table-orders/table/:tableId
func (h *TableOrderHandlers) CreateTableOrder(c echo.Context) error {
	tenantID, userID, err := identity(c)
	if err != nil {
		return err
	}
	tableID, err := pathUUID(c, "tableId")
	if err != nil {
		return common.RespondError(c, "table", err)
	}

	var req models.CreateTableOrderRequest
	if err := bindJSON(c, &req); err != nil {
		return common.RespondError(c, "order", err)
	}

	order, err := h.tableOrderService.CreateTableOrder(c.Request().Context(), tenantID, userID, tableID, req)
	if err != nil {
		return common.RespondError(c, "table", err)
	}
	return c.JSON(http.StatusCreated, order)
}

// GetCurrentOrder handles GET /table-orders/table/:tableId/current
func (h *TableOrderHandlers) GetCurrentOrder(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	tableID, err := pathUUID(c, "tableId")
	if err != nil {
		return common.RespondError(c, "table", err)
	}

	order, err := h.tableOrderService.GetCurrentOrder(c.Request().Context(), tenantID, tableID)
	if err != nil {
		return common.RespondError(c, "current order", err)
	}
	return c.JSON(http.StatusOK, order)
}

// GetActiveCart handles GET /table-orders/table/:tableId/cart
func (h *TableOrderHandlers) GetActiveCart(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	tableID, err := pathUUID(c, "tableId")
	if err != nil {
		return common.RespondError(c, "table", err)
	}

	cart, err := h.tableOrderService.GetActiveCart(c.Request().Context(), tenantID, tableID)
	if err != nil {
		return common.RespondError(c, "active cart", err)
	}
	return c.JSON(http.StatusOK, cart)
}

// OpenCart handles POST /table-orders/table/:tableId/cart/open. The body is
// optional; an existing live cart is returned unchanged.
func (h *TableOrderHandlers) OpenCart(c echo.Context) error {
	tenantID, userID, err := identity(c)
	if err != nil {
		return err
	}
	tableID, err := pathUUID(c, "tableId")
	if err != nil {
		return common.RespondError(c, "table", err)
	}

	var seed models.CartSeed
	if err := bindJSON(c, &seed); err != nil {
		return common.RespondError(c, "order", err)
	}

	cart, err := h.tableOrderService.GetOrCreateCart(c.Request().Context(), tenantID, userID, tableID, seed)
	if err != nil {
		return common.RespondError(c, "table", err)
	}
	return c.JSON(http.StatusOK, cart)
}

// AddToCart handles POST /table-orders/table/:tableId/cart
func (h *TableOrderHandlers) AddToCart(c echo.Context) error {
	tenantID, userID, err := identity(c)
	if err != nil {
		return err
	}
	tableID, err := pathUUID(c, "tableId")
	if err != nil {
		return common.RespondError(c, "table", err)
	}

	var req models.AddToCartRequest
	if err := bindJSON(c, &req); err != nil {
		return common.RespondError(c, "order", err)
	}
	if req.ProductID == uuid.Nil {
		return common.SendValidationError(c, "product_id", "product_id is required")
	}

	cart, err := h.tableOrderService.AddToCart(c.Request().Context(), tenantID, userID, tableID, req)
	if err != nil {
		return common.RespondError(c, "table", err)
	}
	return c.JSON(http.StatusOK, cart)
}

// RemoveFromCart handles DELETE /table-orders/table/:tableId/cart. Without
// an order_id the table's live cart is used.
func (h *TableOrderHandlers) RemoveFromCart(c echo.Context) error {
	tenantID, userID, err := identity(c)
	if err != nil {
		return err
	}
	tableID, err := pathUUID(c, "tableId")
	if err != nil {
		return common.RespondError(c, "table", err)
	}

	var req models.RemoveFromCartRequest
	if err := bindJSON(c, &req); err != nil {
		return common.RespondError(c, "order", err)
	}
	if req.ProductID == uuid.Nil {
		return common.SendValidationError(c, "product_id", "product_id is required")
	}

	ctx := c.Request().Context()
	if req.OrderID == uuid.Nil {
		cart, err := h.tableOrderService.GetActiveCart(ctx, tenantID, tableID)
		if err != nil {
			return common.RespondError(c, "active cart", err)
		}
		req.OrderID = cart.ID
	}

	cart, err := h.tableOrderService.RemoveFromCart(ctx, tenantID, userID, tableID, req)
	if err != nil {
		return common.RespondError(c, "cart item", err)
	}
	return c.JSON(http.StatusOK, cart)
}

// CompleteAndClear handles POST /table-orders/:orderId/complete-and-clear
func (h *TableOrderHandlers) CompleteAndClear(c echo.Context) error {
	tenantID, userID, err := identity(c)
	if err != nil {
		return err
	}
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return common.RespondError(c, "order", err)
	}

	var payment models.PaymentDetails
	if err := bindJSON(c, &payment); err != nil {
		return common.RespondError(c, "order", err)
	}

	result, err := h.tableOrderService.CompleteAndClear(c.Request().Context(), tenantID, userID, orderID, payment)
	if err != nil {
		return common.RespondError(c, "order", err)
	}
	return c.JSON(http.StatusOK, result)
}
