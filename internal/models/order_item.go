package models

import (
	"time"

	"restopos/internal/common"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is one line of an order. Subtotal is always UnitPrice x Quantity.
type OrderItem struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	OrderID   uuid.UUID       `json:"order_id" db:"order_id"`
	ProductID uuid.UUID       `json:"product_id" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price" db:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal" db:"subtotal"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

func NewOrderItem(orderID, productID uuid.UUID, quantity int, unitPrice decimal.Decimal) (*OrderItem, error) {
	if quantity < 1 {
		return nil, common.InvalidValue("quantity", "must be at least 1, got %d", quantity)
	}
	if unitPrice.IsNegative() {
		return nil, common.InvalidValue("unit_price", "cannot be negative")
	}
	now := time.Now()
	item := &OrderItem{
		ID:        uuid.New(),
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		CreatedAt: now,
		UpdatedAt: now,
	}
	item.recomputeSubtotal()
	return item, nil
}

func (i *OrderItem) recomputeSubtotal() {
	i.Subtotal = i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
	i.UpdatedAt = time.Now()
}
