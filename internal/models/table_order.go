package models

import (
	"restopos/internal/common"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartSeed carries the optional fields used when a table cart is resolved
// or created. OrderID pins an existing order instead of resolving one.
type CartSeed struct {
	OrderID             *uuid.UUID `json:"order_id"`
	CustomerID          *uuid.UUID `json:"customer_id"`
	NumberOfGuests      *int       `json:"number_of_guests"`
	SpecialInstructions *string    `json:"special_instructions"`
}

// MaxGuests bounds the number of guests seated on one order
const MaxGuests = 100

// Validate checks the optional guest count
func (s CartSeed) Validate() error {
	if s.NumberOfGuests == nil {
		return nil
	}
	return common.ValidatePositiveInteger(*s.NumberOfGuests, "number_of_guests", MaxGuests)
}

// AddToCartRequest adds a product to the cart of a table. UnitPrice falls
// back to the product price when omitted.
type AddToCartRequest struct {
	OrderID             *uuid.UUID       `json:"order_id"`
	ProductID           uuid.UUID        `json:"product_id"`
	Quantity            int              `json:"quantity"`
	UnitPrice           *decimal.Decimal `json:"unit_price"`
	CustomerID          *uuid.UUID       `json:"customer_id"`
	NumberOfGuests      *int             `json:"number_of_guests"`
	SpecialInstructions *string          `json:"special_instructions"`
}

func (r AddToCartRequest) Seed() CartSeed {
	return CartSeed{
		OrderID:             r.OrderID,
		CustomerID:          r.CustomerID,
		NumberOfGuests:      r.NumberOfGuests,
		SpecialInstructions: r.SpecialInstructions,
	}
}

type RemoveFromCartRequest struct {
	OrderID          uuid.UUID `json:"order_id"`
	ProductID        uuid.UUID `json:"product_id"`
	Quantity         int       `json:"quantity"`
	RemoveEntireItem bool      `json:"remove_entire_item"`
}

// PaymentDetails are applied to an order on completion. PaymentMethod is
// parsed with ParsePaymentMethod.
type PaymentDetails struct {
	PaymentMethod    *string `json:"payment_method"`
	PaymentReference *string `json:"payment_reference"`
}

// Method parses PaymentMethod, returning nil when it was not supplied
func (p PaymentDetails) Method() (*PaymentMethod, error) {
	if p.PaymentMethod == nil {
		return nil, nil
	}
	method, err := ParsePaymentMethod(*p.PaymentMethod)
	if err != nil {
		return nil, err
	}
	return &method, nil
}

// CompletionResult is the outcome of completing a table order
type CompletionResult struct {
	Order *Order           `json:"order"`
	Table *RestaurantTable `json:"table"`
}

type OrderLineRequest struct {
	ProductID uuid.UUID        `json:"product_id"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// CreateTableOrderRequest opens a table order with its full item list.
// The total is always recomputed from the lines.
type CreateTableOrderRequest struct {
	CustomerID          *uuid.UUID         `json:"customer_id"`
	NumberOfGuests      int                `json:"number_of_guests"`
	Items               []OrderLineRequest `json:"items"`
	SpecialInstructions *string            `json:"special_instructions"`
	PaymentDetails
}

// CreateOrderRequest opens an order that is not seated at a table
type CreateOrderRequest struct {
	CustomerID          *uuid.UUID         `json:"customer_id"`
	OrderType           string             `json:"order_type"`
	NumberOfGuests      int                `json:"number_of_guests"`
	Items               []OrderLineRequest `json:"items"`
	SpecialInstructions *string            `json:"special_instructions"`
}

// ValidateLines requires at least one line and a positive quantity and
// non-negative price on every line
func ValidateLines(lines []OrderLineRequest) error {
	if len(lines) == 0 {
		return common.InvalidValue("items", "at least one item is required")
	}
	for i, line := range lines {
		if line.ProductID == uuid.Nil {
			return common.InvalidValue("items", "item %d has no product_id", i)
		}
		if line.Quantity < 1 {
			return common.InvalidValue("quantity", "item %d quantity must be at least 1, got %d", i, line.Quantity)
		}
		if line.UnitPrice != nil && line.UnitPrice.IsNegative() {
			return common.InvalidValue("unit_price", "item %d unit price cannot be negative", i)
		}
	}
	return nil
}
