package messaging

import (
	"time"

	"restopos/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventOrderCreated   EventType = "order.created"
	EventOrderCompleted EventType = "order.completed"
	EventOrderCancelled EventType = "order.cancelled"
	EventTableCleared   EventType = "table.cleared"
)

// Event is the JSON body of a lifecycle message. The routing key is Type.
type Event struct {
	Type        EventType             `json:"type"`
	TenantID    uuid.UUID             `json:"tenant_id"`
	OrderID     *uuid.UUID            `json:"order_id,omitempty"`
	OrderNumber string                `json:"order_number,omitempty"`
	OrderStatus models.OrderStatus    `json:"order_status,omitempty"`
	TableID     *uuid.UUID            `json:"table_id,omitempty"`
	TotalAmount *decimal.Decimal      `json:"total_amount,omitempty"`
	Payment     *models.PaymentMethod `json:"payment_method,omitempty"`
	ActorID     uuid.UUID             `json:"actor_id"`
	OccurredAt  time.Time             `json:"occurred_at"`
}

// NewOrderEvent describes a change to order, attributed to actorID
func NewOrderEvent(eventType EventType, order *models.Order, actorID uuid.UUID) Event {
	id := order.ID
	total := order.TotalAmount
	return Event{
		Type:        eventType,
		TenantID:    order.TenantID,
		OrderID:     &id,
		OrderNumber: order.OrderNumber,
		OrderStatus: order.Status,
		TableID:     order.TableID,
		TotalAmount: &total,
		Payment:     order.PaymentMethod,
		ActorID:     actorID,
		OccurredAt:  time.Now().UTC(),
	}
}

func NewTableClearedEvent(table *models.RestaurantTable, previousOrderID *uuid.UUID, actorID uuid.UUID) Event {
	id := table.ID
	return Event{
		Type:       EventTableCleared,
		TenantID:   table.TenantID,
		OrderID:    previousOrderID,
		TableID:    &id,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
}
