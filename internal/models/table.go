package models

import (
	"strings"
	"time"

	"restopos/internal/common"

	"github.com/google/uuid"
)

type TableStatus string

const (
	TableStatusAvailable   TableStatus = "AVAILABLE"
	TableStatusOccupied    TableStatus = "OCCUPIED"
	TableStatusReserved    TableStatus = "RESERVED"
	TableStatusCleaning    TableStatus = "CLEANING"
	TableStatusMaintenance TableStatus = "MAINTENANCE"
)

func ParseTableStatus(s string) (TableStatus, error) {
	status := TableStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch status {
	case TableStatusAvailable, TableStatusOccupied, TableStatusReserved, TableStatusCleaning, TableStatusMaintenance:
		return status, nil
	}
	return "", common.InvalidValue("status", "invalid table status %q", s)
}

// RestaurantTable is a dining table on the floor plan. CurrentOrderID is set
// only while the table is in use.
type RestaurantTable struct {
	ID             uuid.UUID   `json:"id" db:"id"`
	TenantID       uuid.UUID   `json:"tenant_id" db:"tenant_id"`
	TableNumber    string      `json:"table_number" db:"table_number"`
	Capacity       int         `json:"capacity" db:"capacity"`
	Status         TableStatus `json:"status" db:"status"`
	CurrentOrderID *uuid.UUID  `json:"current_order_id" db:"current_order_id"`
	Location       *string     `json:"location" db:"location"`
	PositionX      *int        `json:"position_x" db:"position_x"`
	PositionY      *int        `json:"position_y" db:"position_y"`
	Width          *int        `json:"width" db:"width"`
	Height         *int        `json:"height" db:"height"`
	Shape          *string     `json:"shape" db:"shape"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
}

// TableFilter narrows table listings. Empty fields do not filter.
type TableFilter struct {
	Status      *TableStatus
	Location    string
	MinCapacity *int
}

// TablePosition is the floor-plan geometry of a table
type TablePosition struct {
	PositionX *int    `json:"position_x"`
	PositionY *int    `json:"position_y"`
	Width     *int    `json:"width"`
	Height    *int    `json:"height"`
	Shape     *string `json:"shape"`
}

// AssignOrder seats orderID at the table
func (t *RestaurantTable) AssignOrder(orderID uuid.UUID) error {
	if t.Status != TableStatusAvailable && t.Status != TableStatusReserved {
		return common.InvalidState("table %s is %s and cannot take an order", t.TableNumber, t.Status)
	}
	id := orderID
	t.CurrentOrderID = &id
	t.Status = TableStatusOccupied
	t.UpdatedAt = time.Now()
	return nil
}

// Clear detaches the current order and sends the table to cleaning.
// Calling it again leaves the table unchanged.
func (t *RestaurantTable) Clear() {
	t.CurrentOrderID = nil
	t.Status = TableStatusCleaning
	t.UpdatedAt = time.Now()
}

// MarkAvailable returns a cleaned table to service
func (t *RestaurantTable) MarkAvailable() error {
	if t.Status != TableStatusCleaning {
		return common.InvalidState("table %s is %s, only CLEANING tables can be marked available", t.TableNumber, t.Status)
	}
	t.Status = TableStatusAvailable
	t.UpdatedAt = time.Now()
	return nil
}

// ChangeStatus overwrites the status without touching the current order.
// A table still holding an order cannot be made AVAILABLE.
func (t *RestaurantTable) ChangeStatus(status TableStatus) error {
	if status == TableStatusAvailable && t.CurrentOrderID != nil {
		return common.InvalidState("table %s still has a current order", t.TableNumber)
	}
	t.Status = status
	t.UpdatedAt = time.Now()
	return nil
}

// ApplyPosition copies the non-nil geometry fields onto the table
func (t *RestaurantTable) ApplyPosition(p TablePosition) {
	if p.PositionX != nil {
		t.PositionX = p.PositionX
	}
	if p.PositionY != nil {
		t.PositionY = p.PositionY
	}
	if p.Width != nil {
		t.Width = p.Width
	}
	if p.Height != nil {
		t.Height = p.Height
	}
	if p.Shape != nil {
		t.Shape = p.Shape
	}
	t.UpdatedAt = time.Now()
}
