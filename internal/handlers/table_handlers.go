package handlers

import (
	"net/http"
	"strconv"

	"restopos/internal/common"
	"restopos/internal/models"
	"restopos/internal/services"

	"github.com/labstack/echo/v4"
)

// TableHandlers serves the floor plan and the table lifecycle endpoints
type TableHandlers struct {
	tableService services.TableService
}

func NewTableHandlers(tableService services.TableService) *TableHandlers {
	return &TableHandlers{tableService: tableService}
}

// TableRequest is the payload for creating or updating a table
type TableRequest struct {
	TableNumber string  `json:"table_number"`
	Capacity    int     `json:"capacity"`
	Location    *string `json:"location"`
	PositionX   *int    `json:"position_x"`
	PositionY   *int    `json:"position_y"`
	Width       *int    `json:"width"`
	Height      *int    `json:"height"`
	Shape       *string `json:"shape"`
}

func (r TableRequest) toModel() *models.RestaurantTable {
	return &models.RestaurantTable{
		TableNumber: r.TableNumber,
		Capacity:    r.Capacity,
		Location:    r.Location,
		PositionX:   r.PositionX,
		PositionY:   r.PositionY,
		Width:       r.Width,
		Height:      r.Height,
		Shape:       r.Shape,
	}
}

// CreateTable handles POST /tables
func (h *TableHandlers) CreateTable(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}

	var req TableRequest
	if err := bindJSON(c, &req); err != nil {
		return common.RespondError(c, "table", err)
	}

	table := req.toModel()
	if err := h.tableService.Create(c.Request().Context(), tenantID, table); err != nil {
		return common.RespondError(c, "table", err)
	}
	return c.JSON(http.StatusCreated, table)
}

// GetTable handles GET /tables/:id
func (h *TableHandlers) GetTable(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return common.RespondError(c, "table", err)
	}

	table, err := h.tableService.GetByID(c.Request().Context(), tenantID, id)
	if err != nil {
		return common.RespondError(c, "table", err)
	}
	return c.JSON(http.StatusOK, table)
}

// GetTableByNumber handles GET /tables/number/:number
func (h *TableHandlers) GetTableByNumber(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}

	table, err := h.tableService.GetByNumber(c.Request().Context(), tenantID, c.Param("number"))
	if err != nil {
		return common.RespondError(c, "table", err)
	}
	return c.JSON(http.StatusOK, table)
}

// ListTables handles GET /tables
func (h *TableHandlers) ListTables(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}

	tables, err := h.tableService.List(c.Request().Context(), tenantID)
	if err != nil {
		return common.RespondError(c, "table", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tables": tables,
		"count":  len(tables),
	})
}

// FilterTables handles GET /tables/filter?status=&location=&capacity=
func (h *TableHandlers) FilterTables(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}

	var minCapacity *int
	if v := c.QueryParam("capacity"); v != "" {
		capacity, err := strconv.Atoi(v)
		if err != nil {
			return common.SendValidationError(c, "capacity", "capacity must be a number")
		}
		minCapacity = &capacity
	}

	tables, err := h.tableService.Filter(c.Request().Context(), tenantID, c.QueryParam("status"), c.QueryParam("location"), minCapacity)
	if err != nil {
		return common.RespondError(c, "table", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tables": tables,
		"count":  len(tables),
	})
}

// FloorPlanEntry is the slice of a table the floor plan view draws
type FloorPlanEntry struct {
	ID          string             `json:"id"`
	TableNumber string             `json:"table_number"`
	Status      models.TableStatus `json:"status"`
	Capacity    int                `json:"capacity"`
	HasOrder    bool               `json:"has_order"`
	Location    *string            `json:"location"`
	PositionX   *int               `json:"position_x"`
	PositionY   *int               `json:"position_y"`
	Width       *int               `json:"width"`
	Height      *int               `json:"height"`
	Shape       *string            `json:"shape"`
}

// FloorPlan handles GET /tables/floor-plan
func (h *TableHandlers) FloorPlan(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}

	tables, err := h.tableService.List(c.Request().Context(), tenantID)
	if err != nil {
		return common.RespondError(c, "table", err)
	}

	plan := make([]FloorPlanEntry, 0, len(tables))
	for _, t := range tables {
		plan = append(plan, FloorPlanEntry{
			ID:          t.ID.String(),
			TableNumber: t.TableNumber,
			Status:      t.Status,
			Capacity:    t.Capacity,
			HasOrder:    t.CurrentOrderID != nil,
			Location:    t.Location,
			PositionX:   t.PositionX,
			PositionY:   t.PositionY,
			Width:       t.Width,
			Height:      t.Height,
			Shape:       t.Shape,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"tables": plan})
}

// UpdateTable handles PUT /tables/:id
func (h *TableHandlers) UpdateTable(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return common.RespondError(c, "table", err)
	}

	var req TableRequest
	if err := bindJSON(c, &req); err != nil {
		return common.RespondError(c, "table", err)
	}

	table := req.toModel()
	table.ID = id
	updated, err := h.tableService.Update(c.Request().Context(), tenantID, table)
	if err != nil {
		return common.RespondError(c, "table", err)
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteTable handles DELETE /tables/:id
func (h *TableHandlers) DeleteTable(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return common.RespondError(c, "table", err)
	}

	if err := h.tableService.Delete(c.Request().Context(), tenantID, id); err != nil {
		return common.RespondError(c, "table", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ClearTable handles POST /tables/:id/clear
func (h *TableHandlers) ClearTable(c echo.Context) error {
	tenantID, userID, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return common.RespondError(c, "table", err)
	}

	table, err := h.tableService.Clear(c.Request().Context(), tenantID, userID, id)
	if err != nil {
		return common.RespondError(c, "table", err)
	}
	return c.JSON(http.StatusOK, table)
}

// MarkAvailable handles POST /tables/:id/mark-available
func (h *TableHandlers) MarkAvailable(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return common.RespondError(c, "table", err)
	}

	table, err := h.tableService.MarkAvailable(c.Request().Context(), tenantID, id)
	if err != nil {
		return common.RespondError(c, "table", err)
	}
	return c.JSON(http.StatusOK, table)
}

// ChangeStatus handles PATCH /tables/:id/status
func (h *TableHandlers) ChangeStatus(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return common.RespondError(c, "table", err)
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := bindJSON(c, &req); err != nil {
		return common.RespondError(c, "table", err)
	}

	table, err := h.tableService.ChangeStatus(c.Request().Context(), tenantID, id, req.Status)
	if err != nil {
		return common.RespondError(c, "table", err)
	}
	return c.JSON(http.StatusOK, table)
}

// UpdatePosition handles PATCH /tables/:id/position
func (h *TableHandlers) UpdatePosition(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return common.RespondError(c, "table", err)
	}

	var position models.TablePosition
	if err := bindJSON(c, &position); err != nil {
		return common.RespondError(c, "table", err)
	}

	table, err := h.tableService.UpdatePosition(c.Request().Context(), tenantID, id, position)
	if err != nil {
		return common.RespondError(c, "table", err)
	}
	return c.JSON(http.StatusOK, table)
}
