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

// ProductLookup resolves products by id. ProductService satisfies it.
type ProductLookup interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error)
}

// TableOrderService ties orders to the tables they are seated at. Every
// mutation runs in one transaction holding the table row lock, so two calls
// against the same table never interleave. actorID is the user performing
// the call.
type TableOrderService interface {
	GetOrCreateCart(ctx context.Context, tenantID, actorID, tableID uuid.UUID, seed models.CartSeed) (*models.Order, error)
	AddToCart(ctx context.Context, tenantID, actorID, tableID uuid.UUID, req models.AddToCartRequest) (*models.Order, error)
	RemoveFromCart(ctx context.Context, tenantID, actorID, tableID uuid.UUID, req models.RemoveFromCartRequest) (*models.Order, error)
	CompleteAndClear(ctx context.Context, tenantID, actorID, orderID uuid.UUID, payment models.PaymentDetails) (*models.CompletionResult, error)
	CreateTableOrder(ctx context.Context, tenantID, actorID, tableID uuid.UUID, req models.CreateTableOrderRequest) (*models.Order, error)

	GetCurrentOrder(ctx context.Context, tenantID, tableID uuid.UUID) (*models.Order, error)
	GetActiveCart(ctx context.Context, tenantID, tableID uuid.UUID) (*models.Order, error)
	ListTableOrders(ctx context.Context, tenantID, tableID uuid.UUID) ([]*models.Order, error)
}

type tableOrderService struct {
	store     repositories.Store
	products  ProductLookup
	lifecycle *Lifecycle
	logger    *zap.Logger
}

func NewTableOrderService(store repositories.Store, products ProductLookup, lifecycle *Lifecycle, logger *zap.Logger) TableOrderService {
	return &tableOrderService{
		store:     store,
		products:  products,
		lifecycle: lifecycle,
		logger:    logger,
	}
}

func (s *tableOrderService) GetOrCreateCart(ctx context.Context, tenantID, actorID, tableID uuid.UUID, seed models.CartSeed) (*models.Order, error) {
	if err := seed.Validate(); err != nil {
		return nil, err
	}
	var cart *models.Order
	created := false
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		table, err := tx.Tables().GetByIDForUpdate(ctx, tenantID, tableID)
		if err != nil {
			return err
		}
		cart, created, err = s.resolveCart(ctx, tx, table, actorID, seed)
		if err != nil || !created {
			return err
		}
		return saveCart(ctx, tx, table, cart, created)
	})
	if err != nil {
		return nil, err
	}

	if created {
		s.logger.Info("cart opened",
			zap.String("order_number", cart.OrderNumber),
			zap.String("table_id", tableID.String()),
			zap.String("actor_id", actorID.String()))
		s.lifecycle.orderCreated(ctx, cart, actorID)
	}
	return cart, nil
}

func (s *tableOrderService) AddToCart(ctx context.Context, tenantID, actorID, tableID uuid.UUID, req models.AddToCartRequest) (*models.Order, error) {
	if req.Quantity < 1 {
		return nil, common.InvalidValue("quantity", "must be at least 1, got %d", req.Quantity)
	}
	if err := req.Seed().Validate(); err != nil {
		return nil, err
	}
	unitPrice, err := s.priceFor(ctx, tenantID, req.ProductID, req.UnitPrice)
	if err != nil {
		return nil, err
	}

	var cart *models.Order
	created := false
	err = s.store.WithinTx(ctx, func(tx repositories.Store) error {
		table, err := tx.Tables().GetByIDForUpdate(ctx, tenantID, tableID)
		if err != nil {
			return err
		}
		cart, created, err = s.resolveCart(ctx, tx, table, actorID, req.Seed())
		if err != nil {
			return err
		}

		if !created {
			if req.NumberOfGuests != nil {
				cart.NumberOfGuests = *req.NumberOfGuests
			}
			if req.SpecialInstructions != nil {
				cart.SpecialInstructions = req.SpecialInstructions
			}
		}
		if _, err := cart.UpsertLine(req.ProductID, req.Quantity, unitPrice); err != nil {
			return err
		}
		return saveCart(ctx, tx, table, cart, created)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("item added to cart",
		zap.String("order_number", cart.OrderNumber),
		zap.String("product_id", req.ProductID.String()),
		zap.Int("quantity", req.Quantity),
		zap.String("total", cart.TotalAmount.StringFixed(2)))
	if created {
		s.lifecycle.orderCreated(ctx, cart, actorID)
	}
	return cart, nil
}

func (s *tableOrderService) RemoveFromCart(ctx context.Context, tenantID, actorID, tableID uuid.UUID, req models.RemoveFromCartRequest) (*models.Order, error) {
	if !req.RemoveEntireItem && req.Quantity < 1 {
		return nil, common.InvalidValue("quantity", "must be at least 1, got %d", req.Quantity)
	}

	var cart *models.Order
	var table *models.RestaurantTable
	emptied := false
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		var err error
		table, err = tx.Tables().GetByIDForUpdate(ctx, tenantID, tableID)
		if err != nil {
			return err
		}
		cart, err = tx.Orders().GetByIDForUpdate(ctx, tenantID, req.OrderID)
		if err != nil {
			return err
		}
		if !cart.BelongsToTable(tableID) {
			return common.InvalidState("order %s does not belong to table %s", cart.OrderNumber, table.TableNumber)
		}
		if !cart.IsActive() {
			return common.InvalidState("order %s is %s", cart.OrderNumber, cart.Status)
		}

		emptied, err = cart.DecrementLine(req.ProductID, req.Quantity, req.RemoveEntireItem)
		if err != nil {
			return err
		}
		if err := tx.Orders().Update(ctx, cart); err != nil {
			return err
		}
		if emptied {
			table.Clear()
			return tx.Tables().Update(ctx, table)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if emptied {
		s.logger.Info("cart emptied, order cancelled and table cleared",
			zap.String("order_number", cart.OrderNumber),
			zap.String("table_number", table.TableNumber),
			zap.String("actor_id", actorID.String()))
		s.lifecycle.orderCancelled(ctx, cart, table, actorID)
	}
	return cart, nil
}

func (s *tableOrderService) CompleteAndClear(ctx context.Context, tenantID, actorID, orderID uuid.UUID, payment models.PaymentDetails) (*models.CompletionResult, error) {
	method, err := payment.Method()
	if err != nil {
		return nil, err
	}

	var result *models.CompletionResult
	err = s.store.WithinTx(ctx, func(tx repositories.Store) error {
		order, table, err := lockOrderAndTable(ctx, tx, tenantID, orderID)
		if err != nil {
			return err
		}
		if table == nil {
			return common.InvalidValue("table_id", "order %s is not associated with a table", order.OrderNumber)
		}

		if err := order.Complete(method, payment.PaymentReference); err != nil {
			return err
		}
		if err := tx.Orders().Update(ctx, order); err != nil {
			return err
		}
		table.Clear()
		if err := tx.Tables().Update(ctx, table); err != nil {
			return err
		}
		result = &models.CompletionResult{Order: order, Table: table}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order completed and table cleared",
		zap.String("order_number", result.Order.OrderNumber),
		zap.String("table_number", result.Table.TableNumber),
		zap.String("total", result.Order.TotalAmount.StringFixed(2)),
		zap.String("actor_id", actorID.String()))
	s.lifecycle.orderCompleted(ctx, result.Order, result.Table, actorID)
	return result, nil
}

func (s *tableOrderService) CreateTableOrder(ctx context.Context, tenantID, actorID, tableID uuid.UUID, req models.CreateTableOrderRequest) (*models.Order, error) {
	if err := common.ValidatePositiveInteger(req.NumberOfGuests, "number_of_guests", models.MaxGuests); err != nil {
		return nil, err
	}
	if err := models.ValidateLines(req.Items); err != nil {
		return nil, err
	}
	method, err := req.PaymentDetails.Method()
	if err != nil {
		return nil, err
	}
	prices, err := s.pricesFor(ctx, tenantID, req.Items)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	err = s.store.WithinTx(ctx, func(tx repositories.Store) error {
		table, err := tx.Tables().GetByIDForUpdate(ctx, tenantID, tableID)
		if err != nil {
			return err
		}
		if req.CustomerID != nil {
			if _, err := tx.Customers().GetByID(ctx, tenantID, *req.CustomerID); err != nil {
				return err
			}
		}

		id := table.ID
		actor := actorID
		order = models.NewOrder(models.NewOrderParams{
			TenantID:            tenantID,
			CustomerID:          req.CustomerID,
			TableID:             &id,
			OrderType:           models.OrderTypeDineIn,
			PaymentMethod:       method,
			PaymentReference:    req.PaymentReference,
			NumberOfGuests:      req.NumberOfGuests,
			SpecialInstructions: req.SpecialInstructions,
			CreatedBy:           &actor,
		})
		for i, line := range req.Items {
			if _, err := order.UpsertLine(line.ProductID, line.Quantity, prices[i]); err != nil {
				return err
			}
		}
		if err := table.AssignOrder(order.ID); err != nil {
			return err
		}
		return saveCart(ctx, tx, table, order, true)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("table order created",
		zap.String("order_number", order.OrderNumber),
		zap.String("table_id", tableID.String()),
		zap.Int("lines", len(order.Items)))
	s.lifecycle.orderCreated(ctx, order, actorID)
	return order, nil
}

func (s *tableOrderService) GetCurrentOrder(ctx context.Context, tenantID, tableID uuid.UUID) (*models.Order, error) {
	table, err := s.store.Tables().GetByID(ctx, tenantID, tableID)
	if err != nil {
		return nil, err
	}
	if table.CurrentOrderID == nil {
		return nil, common.NotFound("current order for table", table.TableNumber)
	}
	return s.store.Orders().GetByID(ctx, tenantID, *table.CurrentOrderID)
}

func (s *tableOrderService) GetActiveCart(ctx context.Context, tenantID, tableID uuid.UUID) (*models.Order, error) {
	order, err := s.GetCurrentOrder(ctx, tenantID, tableID)
	if err != nil {
		return nil, err
	}
	if !order.IsActive() {
		return nil, common.NotFound("active cart for table", tableID)
	}
	return order, nil
}

func (s *tableOrderService) ListTableOrders(ctx context.Context, tenantID, tableID uuid.UUID) ([]*models.Order, error) {
	if _, err := s.store.Tables().GetByID(ctx, tenantID, tableID); err != nil {
		return nil, err
	}
	return s.store.Orders().ListByTable(ctx, tenantID, tableID)
}

// resolveCart finds the order a cart operation applies to on a locked table:
// the pinned order from seed, else the table's live current order, else a
// new PENDING order assigned to the table. created reports the last case;
// the new order is not yet persisted.
func (s *tableOrderService) resolveCart(ctx context.Context, tx repositories.Store, table *models.RestaurantTable, actorID uuid.UUID, seed models.CartSeed) (*models.Order, bool, error) {
	if seed.OrderID != nil {
		order, err := tx.Orders().GetByIDForUpdate(ctx, table.TenantID, *seed.OrderID)
		if err != nil {
			return nil, false, err
		}
		if !order.BelongsToTable(table.ID) {
			return nil, false, common.InvalidState("order %s does not belong to table %s", order.OrderNumber, table.TableNumber)
		}
		if !order.IsActive() {
			return nil, false, common.InvalidState("order %s is %s", order.OrderNumber, order.Status)
		}
		return order, false, nil
	}

	if table.CurrentOrderID != nil {
		order, err := tx.Orders().GetByIDForUpdate(ctx, table.TenantID, *table.CurrentOrderID)
		if err != nil {
			return nil, false, err
		}
		if order.IsActive() {
			return order, false, nil
		}
	}

	if seed.CustomerID != nil {
		if _, err := tx.Customers().GetByID(ctx, table.TenantID, *seed.CustomerID); err != nil {
			return nil, false, err
		}
	}
	guests := 1
	if seed.NumberOfGuests != nil {
		guests = *seed.NumberOfGuests
	}
	tableID := table.ID
	actor := actorID
	order := models.NewOrder(models.NewOrderParams{
		TenantID:            table.TenantID,
		CustomerID:          seed.CustomerID,
		TableID:             &tableID,
		NumberOfGuests:      guests,
		SpecialInstructions: seed.SpecialInstructions,
		CreatedBy:           &actor,
	})
	if err := table.AssignOrder(order.ID); err != nil {
		return nil, false, err
	}
	return order, true, nil
}

// saveCart persists cart, inserting it and the table assignment when created
func saveCart(ctx context.Context, tx repositories.Store, table *models.RestaurantTable, cart *models.Order, created bool) error {
	if !created {
		return tx.Orders().Update(ctx, cart)
	}
	if err := tx.Orders().Create(ctx, cart); err != nil {
		return err
	}
	return tx.Tables().Update(ctx, table)
}

// priceFor resolves the product and returns the explicit price, or the
// catalog price when none was given
func (s *tableOrderService) priceFor(ctx context.Context, tenantID, productID uuid.UUID, explicit *decimal.Decimal) (decimal.Decimal, error) {
	product, err := s.products.GetByID(ctx, tenantID, productID)
	if err != nil {
		return decimal.Zero, err
	}
	if explicit != nil {
		if explicit.IsNegative() {
			return decimal.Zero, common.InvalidValue("unit_price", "cannot be negative")
		}
		return *explicit, nil
	}
	return product.Price, nil
}

func (s *tableOrderService) pricesFor(ctx context.Context, tenantID uuid.UUID, lines []models.OrderLineRequest) ([]decimal.Decimal, error) {
	prices := make([]decimal.Decimal, len(lines))
	for i, line := range lines {
		price, err := s.priceFor(ctx, tenantID, line.ProductID, line.UnitPrice)
		if err != nil {
			return nil, err
		}
		prices[i] = price
	}
	return prices, nil
}
