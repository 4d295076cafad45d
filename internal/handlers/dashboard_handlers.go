package handlers

import (
	"net/http"

	"restopos/internal/common"
	"restopos/internal/services"

	"github.com/labstack/echo/v4"
)

type DashboardHandlers struct {
	dashboardService services.DashboardService
}

func NewDashboardHandlers(dashboardService services.DashboardService) *DashboardHandlers {
	return &DashboardHandlers{dashboardService: dashboardService}
}

// GetStats handles GET /dashboard/stats
func (h *DashboardHandlers) GetStats(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}

	stats, err := h.dashboardService.GetStats(c.Request().Context(), tenantID)
	if err != nil {
		return common.RespondError(c, "dashboard", err)
	}
	return c.JSON(http.StatusOK, stats)
}

// RecentOrders handles GET /dashboard/recent-orders
func (h *DashboardHandlers) RecentOrders(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}

	orders, err := h.dashboardService.RecentOrders(c.Request().Context(), tenantID)
	if err != nil {
		return common.RespondError(c, "dashboard", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"orders": orders})
}
