package messaging

import (
	"context"
	"encoding/json"
	"testing"

	"restopos/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderEvent(t *testing.T) {
	tableID := uuid.New()
	actorID := uuid.New()
	order := models.NewOrder(models.NewOrderParams{TenantID: uuid.New(), TableID: &tableID})
	_, err := order.UpsertLine(uuid.New(), 3, decimal.RequireFromString("2.00"))
	require.NoError(t, err)
	method := models.PaymentMethodCash
	require.NoError(t, order.Complete(&method, nil))

	event := NewOrderEvent(EventOrderCompleted, order, actorID)

	assert.Equal(t, EventOrderCompleted, event.Type)
	assert.Equal(t, order.TenantID, event.TenantID)
	require.NotNil(t, event.OrderID)
	assert.Equal(t, order.ID, *event.OrderID)
	assert.Equal(t, models.OrderStatusCompleted, event.OrderStatus)
	assert.Equal(t, &tableID, event.TableID)
	assert.True(t, event.TotalAmount.Equal(decimal.NewFromInt(6)))
	assert.Equal(t, actorID, event.ActorID)

	body, err := json.Marshal(event)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "order.completed", decoded["type"])
	assert.Equal(t, "CASH", decoded["payment_method"])
	assert.Equal(t, "6", decoded["total_amount"])
}

func TestNewTableClearedEvent(t *testing.T) {
	table := &models.RestaurantTable{ID: uuid.New(), TenantID: uuid.New(), TableNumber: "T1", Status: models.TableStatusCleaning}
	previous := uuid.New()

	event := NewTableClearedEvent(table, &previous, uuid.Nil)

	assert.Equal(t, EventTableCleared, event.Type)
	assert.Equal(t, table.ID, *event.TableID)
	assert.Equal(t, previous, *event.OrderID)
	assert.Empty(t, event.OrderNumber)
}

func TestNoopPublisher(t *testing.T) {
	var publisher EventPublisher = NoopPublisher{}
	assert.NoError(t, publisher.Publish(context.Background(), Event{Type: EventOrderCreated}))
	assert.NoError(t, publisher.Close())
}
