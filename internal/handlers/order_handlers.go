package handlers

import (
	"net/http"
	"time"

	"restopos/internal/common"
	"restopos/internal/models"
	"restopos/internal/services"
	"restopos/internal/storage"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const receiptLinkExpiry = 15 * time.Minute

// OrderHandlers handles HTTP requests for orders
type OrderHandlers struct {
	orderService services.OrderService
	receipts     storage.ReceiptStore
}

// NewOrderHandlers creates a new order handlers instance. receipts may be nil
// when receipt archiving is disabled.
func NewOrderHandlers(orderService services.OrderService, receipts storage.ReceiptStore) *OrderHandlers {
	return &OrderHandlers{
		orderService: orderService,
		receipts:     receipts,
	}
}

func ordersPage(c echo.Context, orders []*models.Order, limit, offset int) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"orders": orders,
		"limit":  limit,
		"offset": offset,
		"count":  len(orders),
	})
}

// CreateOrder handles POST /orders
func (h *OrderHandlers) CreateOrder(c echo.Context) error {
	tenantID, userID, err := identity(c)
	if err != nil {
		return err
	}

	var req models.CreateOrderRequest
	if err := bindJSON(c, &req); err != nil {
		return common.RespondError(c, "order", err)
	}

	order, err := h.orderService.CreateOrder(c.Request().Context(), tenantID, userID, req)
	if err != nil {
		return common.RespondError(c, "order", err)
	}
	return c.JSON(http.StatusCreated, order)
}

// GetOrder handles GET /orders/:id
func (h *OrderHandlers) GetOrder(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	orderID, err := pathUUID(c, "id")
	if err != nil {
		return common.RespondError(c, "order", err)
	}

	order, err := h.orderService.GetOrderByID(c.Request().Context(), tenantID, orderID)
	if err != nil {
		return common.RespondError(c, "order", err)
	}
	return c.JSON(http.StatusOK, order)
}

// GetOrderByNumber handles GET /orders/number/:number
func (h *OrderHandlers) GetOrderByNumber(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}

	order, err := h.orderService.GetOrderByNumber(c.Request().Context(), tenantID, c.Param("number"))
	if err != nil {
		return common.RespondError(c, "order", err)
	}
	return c.JSON(http.StatusOK, order)
}

// ListOrders handles GET /orders
func (h *OrderHandlers) ListOrders(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	limit, offset, err := pagination(c)
	if err != nil {
		return common.RespondError(c, "order", err)
	}

	orders, err := h.orderService.ListOrders(c.Request().Context(), tenantID, limit, offset)
	if err != nil {
		return common.RespondError(c, "order", err)
	}
	return ordersPage(c, orders, limit, offset)
}

// ListOrdersByStatus handles GET /orders/status/:status
func (h *OrderHandlers) ListOrdersByStatus(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	limit, offset, err := pagination(c)
	if err != nil {
		return common.RespondError(c, "order", err)
	}

	orders, err := h.orderService.ListOrdersByStatus(c.Request().Context(), tenantID, c.Param("status"), limit, offset)
	if err != nil {
		return common.RespondError(c, "order", err)
	}
	return ordersPage(c, orders, limit, offset)
}

// ListOrdersByType handles GET /orders/type/:type
func (h *OrderHandlers) ListOrdersByType(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	limit, offset, err := pagination(c)
	if err != nil {
		return common.RespondError(c, "order", err)
	}

	orders, err := h.orderService.ListOrdersByType(c.Request().Context(), tenantID, c.Param("type"), limit, offset)
	if err != nil {
		return common.RespondError(c, "order", err)
	}
	return ordersPage(c, orders, limit, offset)
}

// ListOrdersByCustomer handles GET /orders/customer/:customerId
func (h *OrderHandlers) ListOrdersByCustomer(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	customerID, err := pathUUID(c, "customerId")
	if err != nil {
		return common.RespondError(c, "customer", err)
	}

	orders, err := h.orderService.ListOrdersByCustomer(c.Request().Context(), tenantID, customerID)
	if err != nil {
		return common.RespondError(c, "customer", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"orders": orders,
		"count":  len(orders),
	})
}

// UpdateOrderStatus handles PATCH /orders/:id/status
func (h *OrderHandlers) UpdateOrderStatus(c echo.Context) error {
	tenantID, userID, err := identity(c)
	if err != nil {
		return err
	}
	orderID, err := pathUUID(c, "id")
	if err != nil {
		return common.RespondError(c, "order", err)
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := bindJSON(c, &req); err != nil {
		return common.RespondError(c, "order", err)
	}
	if req.Status == "" {
		return common.SendValidationError(c, "status", "status is required")
	}

	order, err := h.orderService.UpdateStatus(c.Request().Context(), tenantID, userID, orderID, req.Status)
	if err != nil {
		return common.RespondError(c, "order", err)
	}
	return c.JSON(http.StatusOK, order)
}

// AddOrderItem handles POST /orders/:id/items
func (h *OrderHandlers) AddOrderItem(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	orderID, err := pathUUID(c, "id")
	if err != nil {
		return common.RespondError(c, "order", err)
	}

	var line models.OrderLineRequest
	if err := bindJSON(c, &line); err != nil {
		return common.RespondError(c, "order", err)
	}

	order, err := h.orderService.AddItem(c.Request().Context(), tenantID, orderID, line)
	if err != nil {
		return common.RespondError(c, "order", err)
	}
	return c.JSON(http.StatusOK, order)
}

// RemoveOrderItem handles DELETE /orders/:id/items/:itemId
func (h *OrderHandlers) RemoveOrderItem(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	orderID, err := pathUUID(c, "id")
	if err != nil {
		return common.RespondError(c, "order", err)
	}
	itemID, err := pathUUID(c, "itemId")
	if err != nil {
		return common.RespondError(c, "order item", err)
	}

	order, err := h.orderService.RemoveItem(c.Request().Context(), tenantID, orderID, itemID)
	if err != nil {
		return common.RespondError(c, "order item", err)
	}
	return c.JSON(http.StatusOK, order)
}

// DeleteOrder handles DELETE /orders/:id
func (h *OrderHandlers) DeleteOrder(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	orderID, err := pathUUID(c, "id")
	if err != nil {
		return common.RespondError(c, "order", err)
	}

	if err := h.orderService.DeleteOrder(c.Request().Context(), tenantID, orderID); err != nil {
		return common.RespondError(c, "order", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetReceiptURL handles GET /orders/:id/receipt with a short-lived download
// link for the archived receipt of a completed order
func (h *OrderHandlers) GetReceiptURL(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	orderID, err := pathUUID(c, "id")
	if err != nil {
		return common.RespondError(c, "order", err)
	}
	if h.receipts == nil {
		return common.SendNotFoundError(c, "receipt")
	}

	ctx := c.Request().Context()
	order, err := h.orderService.GetOrderByID(ctx, tenantID, orderID)
	if err != nil {
		return common.RespondError(c, "order", err)
	}
	if order.Status != models.OrderStatusCompleted {
		return common.SendClientError(c, "only completed orders have receipts")
	}

	objectName := storage.ReceiptObjectName(tenantID, storage.NewReceipt(order, uuid.Nil))
	url, err := h.receipts.PresignedURL(ctx, objectName, receiptLinkExpiry)
	if err != nil {
		return common.RespondError(c, "receipt", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"order_number": order.OrderNumber,
		"url":          url,
		"expires_in":   int(receiptLinkExpiry.Seconds()),
	})
}
