package services

import (
	"context"

	"restopos/internal/common"
	"restopos/internal/models"
	"restopos/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OrderService interface {
	CreateOrder(ctx context.Context, tenantID, actorID uuid.UUID, req models.CreateOrderRequest) (*models.Order, error)
	GetOrderByID(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error)
	GetOrderByNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*models.Order, error)
	ListOrders(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Order, error)
	ListOrdersByStatus(ctx context.Context, tenantID uuid.UUID, status string, limit, offset int) ([]*models.Order, error)
	ListOrdersByType(ctx context.Context, tenantID uuid.UUID, orderType string, limit, offset int) ([]*models.Order, error)
	ListOrdersByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, tenantID, actorID, orderID uuid.UUID, status string) (*models.Order, error)
	AddItem(ctx context.Context, tenantID, orderID uuid.UUID, line models.OrderLineRequest) (*models.Order, error)
	RemoveItem(ctx context.Context, tenantID, orderID, itemID uuid.UUID) (*models.Order, error)
	DeleteOrder(ctx context.Context, tenantID, orderID uuid.UUID) error
}

type orderService struct {
	store     repositories.Store
	products  ProductLookup
	lifecycle *Lifecycle
	logger    *zap.Logger
}

func NewOrderService(store repositories.Store, products ProductLookup, lifecycle *Lifecycle, logger *zap.Logger) OrderService {
	return &orderService{
		store:     store,
		products:  products,
		lifecycle: lifecycle,
		logger:    logger,
	}
}

// CreateOrder opens a takeout or delivery order. Seated orders go through
// TableOrderService so the table is assigned in the same transaction.
func (s *orderService) CreateOrder(ctx context.Context, tenantID, actorID uuid.UUID, req models.CreateOrderRequest) (*models.Order, error) {
	orderType := models.OrderTypeTakeout
	if req.OrderType != "" {
		parsed, err := models.ParseOrderType(req.OrderType)
		if err != nil {
			return nil, err
		}
		orderType = parsed
	}
	if orderType == models.OrderTypeDineIn {
		return nil, common.InvalidValue("order_type", "dine-in orders are opened on a table")
	}
	if err := models.ValidateLines(req.Items); err != nil {
		return nil, err
	}

	actor := actorID
	order := models.NewOrder(models.NewOrderParams{
		TenantID:            tenantID,
		CustomerID:          req.CustomerID,
		OrderType:           orderType,
		NumberOfGuests:      req.NumberOfGuests,
		SpecialInstructions: req.SpecialInstructions,
		CreatedBy:           &actor,
	})
	for _, line := range req.Items {
		price, err := s.linePrice(ctx, tenantID, line)
		if err != nil {
			return nil, err
		}
		if _, err := order.UpsertLine(line.ProductID, line.Quantity, price); err != nil {
			return nil, err
		}
	}

	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		if req.CustomerID != nil {
			if _, err := tx.Customers().GetByID(ctx, tenantID, *req.CustomerID); err != nil {
				return err
			}
		}
		return tx.Orders().Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.lifecycle.orderCreated(ctx, order, actorID)
	return order, nil
}

func (s *orderService) GetOrderByID(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error) {
	return s.store.Orders().GetByID(ctx, tenantID, orderID)
}

func (s *orderService) GetOrderByNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*models.Order, error) {
	return s.store.Orders().GetByOrderNumber(ctx, tenantID, orderNumber)
}

func (s *orderService) ListOrders(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Order, error) {
	return s.store.Orders().List(ctx, tenantID, limit, offset)
}

func (s *orderService) ListOrdersByStatus(ctx context.Context, tenantID uuid.UUID, status string, limit, offset int) ([]*models.Order, error) {
	parsed, err := models.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	return s.store.Orders().ListByStatus(ctx, tenantID, parsed, limit, offset)
}

func (s *orderService) ListOrdersByType(ctx context.Context, tenantID uuid.UUID, orderType string, limit, offset int) ([]*models.Order, error) {
	parsed, err := models.ParseOrderType(orderType)
	if err != nil {
		return nil, err
	}
	return s.store.Orders().ListByType(ctx, tenantID, parsed, limit, offset)
}

func (s *orderService) ListOrdersByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]*models.Order, error) {
	if _, err := s.store.Customers().GetByID(ctx, tenantID, customerID); err != nil {
		return nil, err
	}
	return s.store.Orders().ListByCustomer(ctx, tenantID, customerID)
}

// UpdateStatus moves an order through the kitchen workflow. An order reaching
// a terminal status releases the table it holds.
func (s *orderService) UpdateStatus(ctx context.Context, tenantID, actorID, orderID uuid.UUID, status string) (*models.Order, error) {
	parsed, err := models.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	var released *models.RestaurantTable
	var from models.OrderStatus
	err = s.store.WithinTx(ctx, func(tx repositories.Store) error {
		var table *models.RestaurantTable
		var err error
		order, table, err = lockOrderAndTable(ctx, tx, tenantID, orderID)
		if err != nil {
			return err
		}
		from = order.Status
		if err := order.UpdateStatus(parsed); err != nil {
			return err
		}
		if err := tx.Orders().Update(ctx, order); err != nil {
			return err
		}
		if parsed.IsTerminal() && table != nil && table.CurrentOrderID != nil && *table.CurrentOrderID == order.ID {
			table.Clear()
			released = table
			return tx.Tables().Update(ctx, table)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if from == order.Status {
		return order, nil
	}
	s.logger.Info("order status updated",
		zap.String("order_number", order.OrderNumber),
		zap.String("from", string(from)),
		zap.String("to", string(order.Status)),
		zap.String("actor_id", actorID.String()))
	switch order.Status {
	case models.OrderStatusCompleted:
		s.lifecycle.orderCompleted(ctx, order, released, actorID)
	case models.OrderStatusCancelled:
		s.lifecycle.orderCancelled(ctx, order, released, actorID)
	}
	return order, nil
}

func (s *orderService) AddItem(ctx context.Context, tenantID, orderID uuid.UUID, line models.OrderLineRequest) (*models.Order, error) {
	if err := models.ValidateLines([]models.OrderLineRequest{line}); err != nil {
		return nil, err
	}
	price, err := s.linePrice(ctx, tenantID, line)
	if err != nil {
		return nil, err
	}
	return s.editItems(ctx, tenantID, orderID, func(order *models.Order) error {
		item, err := models.NewOrderItem(order.ID, line.ProductID, line.Quantity, price)
		if err != nil {
			return err
		}
		return order.AddItem(item)
	})
}

func (s *orderService) RemoveItem(ctx context.Context, tenantID, orderID, itemID uuid.UUID) (*models.Order, error) {
	return s.editItems(ctx, tenantID, orderID, func(order *models.Order) error {
		return order.RemoveItem(itemID)
	})
}

func (s *orderService) editItems(ctx context.Context, tenantID, orderID uuid.UUID, fn func(*models.Order) error) (*models.Order, error) {
	var order *models.Order
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		var err error
		order, _, err = lockOrderAndTable(ctx, tx, tenantID, orderID)
		if err != nil {
			return err
		}
		if err := fn(order); err != nil {
			return err
		}
		return tx.Orders().Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// DeleteOrder removes an order and its items, releasing its table when the
// order is the table's current one
func (s *orderService) DeleteOrder(ctx context.Context, tenantID, orderID uuid.UUID) error {
	return s.store.WithinTx(ctx, func(tx repositories.Store) error {
		order, table, err := lockOrderAndTable(ctx, tx, tenantID, orderID)
		if err != nil {
			return err
		}
		if table != nil && table.CurrentOrderID != nil && *table.CurrentOrderID == order.ID {
			table.Clear()
			if err := tx.Tables().Update(ctx, table); err != nil {
				return err
			}
		}
		return tx.Orders().Delete(ctx, tenantID, orderID)
	})
}

func (s *orderService) linePrice(ctx context.Context, tenantID uuid.UUID, line models.OrderLineRequest) (decimal.Decimal, error) {
	product, err := s.products.GetByID(ctx, tenantID, line.ProductID)
	if err != nil {
		return decimal.Zero, err
	}
	if line.UnitPrice != nil {
		return *line.UnitPrice, nil
	}
	return product.Price, nil
}
