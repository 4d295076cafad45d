package models

import (
	"strings"
	"time"

	"restopos/internal/common"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusInProgress OrderStatus = "IN_PROGRESS"
	OrderStatusReady      OrderStatus = "READY"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// ParseOrderStatus accepts any letter case
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch status {
	case OrderStatusPending, OrderStatusInProgress, OrderStatusReady, OrderStatusCompleted, OrderStatusCancelled:
		return status, nil
	}
	return "", common.InvalidValue("status", "invalid order status %q", s)
}

// IsTerminal reports whether no further item edits are allowed
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

type OrderType string

const (
	OrderTypeDineIn   OrderType = "DINE_IN"
	OrderTypeTakeout  OrderType = "TAKEOUT"
	OrderTypeDelivery OrderType = "DELIVERY"
)

// ParseOrderType accepts TAKEAWAY as an alias of TAKEOUT
func ParseOrderType(s string) (OrderType, error) {
	t := OrderType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case OrderTypeDineIn, OrderTypeTakeout, OrderTypeDelivery:
		return t, nil
	case "TAKEAWAY":
		return OrderTypeTakeout, nil
	}
	return "", common.InvalidValue("order_type", "invalid order type %q", s)
}

type PaymentMethod string

const (
	PaymentMethodCash          PaymentMethod = "CASH"
	PaymentMethodCreditCard    PaymentMethod = "CREDIT_CARD"
	PaymentMethodDebitCard     PaymentMethod = "DEBIT_CARD"
	PaymentMethodMobilePayment PaymentMethod = "MOBILE_PAYMENT"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case PaymentMethodCash, PaymentMethodCreditCard, PaymentMethodDebitCard, PaymentMethodMobilePayment:
		return m, nil
	}
	return "", common.InvalidValue("payment_method", "unknown payment method %q", s)
}

// Order is a customer order and its item ledger. Cross references to the
// customer, table and creating user are held as ids.
type Order struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	TenantID            uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	OrderNumber         string          `json:"order_number" db:"order_number"`
	OrderDate           time.Time       `json:"order_date" db:"order_date"`
	CustomerID          *uuid.UUID      `json:"customer_id" db:"customer_id"`
	TableID             *uuid.UUID      `json:"table_id" db:"table_id"`
	Items               []*OrderItem    `json:"items" db:"-"`
	TotalAmount         decimal.Decimal `json:"total_amount" db:"total_amount"`
	Status              OrderStatus     `json:"status" db:"status"`
	OrderType           OrderType       `json:"order_type" db:"order_type"`
	PaymentMethod       *PaymentMethod  `json:"payment_method" db:"payment_method"`
	PaymentReference    *string         `json:"payment_reference" db:"payment_reference"`
	NumberOfGuests      int             `json:"number_of_guests" db:"number_of_guests"`
	SpecialInstructions *string         `json:"special_instructions" db:"special_instructions"`
	CreatedBy           *uuid.UUID      `json:"created_by" db:"created_by"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
}

// NewOrderParams holds the initial fields of an order. Zero values take the
// defaults applied by NewOrder.
type NewOrderParams struct {
	TenantID            uuid.UUID
	OrderNumber         string
	OrderDate           time.Time
	CustomerID          *uuid.UUID
	TableID             *uuid.UUID
	Status              OrderStatus
	OrderType           OrderType
	PaymentMethod       *PaymentMethod
	PaymentReference    *string
	NumberOfGuests      int
	SpecialInstructions *string
	CreatedBy           *uuid.UUID
}

// NewOrder builds an order with an id, a fresh order number and the
// default status, type and date filled in.
func NewOrder(p NewOrderParams) *Order {
	now := time.Now()
	o := &Order{
		ID:                  uuid.New(),
		TenantID:            p.TenantID,
		OrderNumber:         p.OrderNumber,
		OrderDate:           p.OrderDate,
		CustomerID:          p.CustomerID,
		TableID:             p.TableID,
		Items:               []*OrderItem{},
		TotalAmount:         decimal.Zero,
		Status:              p.Status,
		OrderType:           p.OrderType,
		PaymentMethod:       p.PaymentMethod,
		PaymentReference:    p.PaymentReference,
		NumberOfGuests:      p.NumberOfGuests,
		SpecialInstructions: p.SpecialInstructions,
		CreatedBy:           p.CreatedBy,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if o.OrderNumber == "" {
		o.OrderNumber = GenerateOrderNumber(now)
	}
	if o.OrderDate.IsZero() {
		o.OrderDate = now
	}
	if o.Status == "" {
		o.Status = OrderStatusPending
	}
	if o.OrderType == "" {
		if o.TableID != nil {
			o.OrderType = OrderTypeDineIn
		} else {
			o.OrderType = OrderTypeTakeout
		}
	}
	return o
}

// BelongsToTable reports whether the order is attached to tableID
func (o *Order) BelongsToTable(tableID uuid.UUID) bool {
	return o.TableID != nil && *o.TableID == tableID
}

// IsActive reports whether the order can still be used as a cart
func (o *Order) IsActive() bool {
	return !o.Status.IsTerminal()
}

func (o *Order) ensureEditable() error {
	if o.Status.IsTerminal() {
		return common.InvalidState("order %s is %s", o.OrderNumber, o.Status)
	}
	return nil
}

// RecomputeTotal sets the total to the sum of the item subtotals
func (o *Order) RecomputeTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal)
	}
	o.TotalAmount = total
	o.UpdatedAt = time.Now()
}

// AddItem appends item to the ledger
func (o *Order) AddItem(item *OrderItem) error {
	if err := o.ensureEditable(); err != nil {
		return err
	}
	if item.Quantity < 1 {
		return common.InvalidValue("quantity", "must be at least 1, got %d", item.Quantity)
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	item.OrderID = o.ID
	item.recomputeSubtotal()
	o.Items = append(o.Items, item)
	o.RecomputeTotal()
	return nil
}

// RemoveItem deletes the line with itemID from the ledger
func (o *Order) RemoveItem(itemID uuid.UUID) error {
	if err := o.ensureEditable(); err != nil {
		return err
	}
	idx := o.indexOfItem(itemID)
	if idx < 0 {
		return common.NotFound("order item", itemID)
	}
	o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
	o.RecomputeTotal()
	return nil
}

// UpsertLine adds quantity of a product to the ledger. While the order is
// PENDING an existing line for the product absorbs the quantity and takes the
// new unit price. Once kitchen work has started every add is a new line.
func (o *Order) UpsertLine(productID uuid.UUID, quantity int, unitPrice decimal.Decimal) (*OrderItem, error) {
	if err := o.ensureEditable(); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, common.InvalidValue("quantity", "must be at least 1, got %d", quantity)
	}

	if o.Status == OrderStatusPending {
		if line := o.lineForProduct(productID); line != nil {
			line.Quantity += quantity
			line.UnitPrice = unitPrice
			line.recomputeSubtotal()
			o.RecomputeTotal()
			return line, nil
		}
	}

	item, err := NewOrderItem(o.ID, productID, quantity, unitPrice)
	if err != nil {
		return nil, err
	}
	o.Items = append(o.Items, item)
	o.RecomputeTotal()
	return item, nil
}

// DecrementLine takes quantity of a product off the ledger, deleting the
// line when removeEntire is set or the line would reach zero. It reports
// whether the ledger is now empty, in which case the order is cancelled.
func (o *Order) DecrementLine(productID uuid.UUID, quantity int, removeEntire bool) (bool, error) {
	if err := o.ensureEditable(); err != nil {
		return false, err
	}
	if !removeEntire && quantity < 1 {
		return false, common.InvalidValue("quantity", "must be at least 1, got %d", quantity)
	}

	line := o.lineForProduct(productID)
	if line == nil {
		return false, common.NotFound("order line for product", productID)
	}

	if removeEntire || line.Quantity <= quantity {
		idx := o.indexOfItem(line.ID)
		o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
	} else {
		line.Quantity -= quantity
		line.recomputeSubtotal()
	}
	o.RecomputeTotal()

	if len(o.Items) == 0 {
		o.Status = OrderStatusCancelled
		return true, nil
	}
	return false, nil
}

// Complete marks the order paid. method and reference are applied when
// non-nil.
func (o *Order) Complete(method *PaymentMethod, reference *string) error {
	if o.Status.IsTerminal() {
		return common.InvalidState("order %s is already %s", o.OrderNumber, o.Status)
	}
	o.Status = OrderStatusCompleted
	if method != nil {
		o.PaymentMethod = method
	}
	if reference != nil {
		o.PaymentReference = reference
	}
	o.UpdatedAt = time.Now()
	return nil
}

// UpdateStatus moves a live order to status. Terminal orders stay put.
func (o *Order) UpdateStatus(status OrderStatus) error {
	if o.Status.IsTerminal() && status != o.Status {
		return common.InvalidState("order %s is %s", o.OrderNumber, o.Status)
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	return nil
}

func (o *Order) lineForProduct(productID uuid.UUID) *OrderItem {
	for _, item := range o.Items {
		if item.ProductID == productID {
			return item
		}
	}
	return nil
}

func (o *Order) indexOfItem(itemID uuid.UUID) int {
	for i, item := range o.Items {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}
