package repositories

import (
	"context"
	"fmt"

	"restopos/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Order, error)
	GetByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.Order, error)
	GetByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Order, error)
	ListByTable(ctx context.Context, tenantID, tableID uuid.UUID) ([]*models.Order, error)
	ListByStatus(ctx context.Context, tenantID uuid.UUID, status models.OrderStatus, limit, offset int) ([]*models.Order, error)
	ListByType(ctx context.Context, tenantID uuid.UUID, orderType models.OrderType, limit, offset int) ([]*models.Order, error)
	ListByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]*models.Order, error)
	ListRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]*models.Order, error)
	Count(ctx context.Context, tenantID uuid.UUID) (int, error)
	SumTotalByStatus(ctx context.Context, tenantID uuid.UUID, status models.OrderStatus) (decimal.Decimal, error)
}

const orderColumns = `id, tenant_id, order_number, order_date, customer_id, table_id, total_amount, status, order_type,
		payment_method, payment_reference, number_of_guests, special_instructions, created_by, created_at, updated_at`

type orderRepo struct {
	db    DBTX
	items OrderItemRepository
}

func NewOrderRepo(db DBTX) OrderRepository {
	return &orderRepo{db: db, items: NewOrderItemRepo(db)}
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	order := &models.Order{}
	err := row.Scan(&order.ID, &order.TenantID, &order.OrderNumber, &order.OrderDate, &order.CustomerID, &order.TableID,
		&order.TotalAmount, &order.Status, &order.OrderType, &order.PaymentMethod, &order.PaymentReference,
		&order.NumberOfGuests, &order.SpecialInstructions, &order.CreatedBy, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}
	order.Items = []*models.OrderItem{}
	return order, nil
}

func (r *orderRepo) Create(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (id, tenant_id, order_number, order_date, customer_id, table_id, total_amount, status, order_type,
			payment_method, payment_reference, number_of_guests, special_instructions, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, order.ID, order.TenantID, order.OrderNumber, order.OrderDate, order.CustomerID, order.TableID,
		order.TotalAmount, order.Status, order.OrderType, order.PaymentMethod, order.PaymentReference,
		order.NumberOfGuests, order.SpecialInstructions, order.CreatedBy)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return r.items.ReplaceForOrder(ctx, order)
}

func (r *orderRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE tenant_id = $1 AND id = $2
	`
	return r.getOne(ctx, query, id, tenantID, id)
}

// GetByIDForUpdate locks the order row until the surrounding transaction ends
func (r *orderRepo) GetByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE tenant_id = $1 AND id = $2
		FOR UPDATE
	`
	return r.getOne(ctx, query, id, tenantID, id)
}

func (r *orderRepo) GetByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE tenant_id = $1 AND order_number = $2
	`
	return r.getOne(ctx, query, orderNumber, tenantID, orderNumber)
}

func (r *orderRepo) getOne(ctx context.Context, query string, key any, args ...any) (*models.Order, error) {
	order, err := scanOrder(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFound(err, "order", key)
	}
	if err := r.attachItems(ctx, order.TenantID, []*models.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

// Update writes the order row and replaces its item ledger
func (r *orderRepo) Update(ctx context.Context, order *models.Order) error {
	query := `
		UPDATE orders
		SET order_date = $1, customer_id = $2, table_id = $3, total_amount = $4, status = $5, order_type = $6,
			payment_method = $7, payment_reference = $8, number_of_guests = $9, special_instructions = $10, updated_at = NOW()
		WHERE tenant_id = $11 AND id = $12
	`
	tag, err := r.db.Exec(ctx, query, order.OrderDate, order.CustomerID, order.TableID, order.TotalAmount, order.Status,
		order.OrderType, order.PaymentMethod, order.PaymentReference, order.NumberOfGuests, order.SpecialInstructions,
		order.TenantID, order.ID)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if err := expectOne(tag, "order", order.ID); err != nil {
		return err
	}
	return r.items.ReplaceForOrder(ctx, order)
}

// Delete removes the order; its items go with it through the foreign key
func (r *orderRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM orders WHERE tenant_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return expectOne(tag, "order", id)
}

func (r *orderRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE tenant_id = $1
		ORDER BY order_date DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, tenantID, query, tenantID, limit, offset)
}

func (r *orderRepo) ListByTable(ctx context.Context, tenantID, tableID uuid.UUID) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE tenant_id = $1 AND table_id = $2
		ORDER BY order_date DESC
	`
	return r.list(ctx, tenantID, query, tenantID, tableID)
}

func (r *orderRepo) ListByStatus(ctx context.Context, tenantID uuid.UUID, status models.OrderStatus, limit, offset int) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE tenant_id = $1 AND status = $2
		ORDER BY order_date DESC
		LIMIT $3 OFFSET $4
	`
	return r.list(ctx, tenantID, query, tenantID, status, limit, offset)
}

func (r *orderRepo) ListByType(ctx context.Context, tenantID uuid.UUID, orderType models.OrderType, limit, offset int) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE tenant_id = $1 AND order_type = $2
		ORDER BY order_date DESC
		LIMIT $3 OFFSET $4
	`
	return r.list(ctx, tenantID, query, tenantID, orderType, limit, offset)
}

func (r *orderRepo) ListByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE tenant_id = $1 AND customer_id = $2
		ORDER BY order_date DESC
	`
	return r.list(ctx, tenantID, query, tenantID, customerID)
}

func (r *orderRepo) ListRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	return r.list(ctx, tenantID, query, tenantID, limit)
}

func (r *orderRepo) list(ctx context.Context, tenantID uuid.UUID, query string, args ...any) ([]*models.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []*models.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := r.attachItems(ctx, tenantID, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepo) attachItems(ctx context.Context, tenantID uuid.UUID, orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*models.Order, len(orders))
	ids := make([]uuid.UUID, 0, len(orders))
	for _, order := range orders {
		byID[order.ID] = order
		ids = append(ids, order.ID)
	}

	items, err := r.items.ListByOrderIDs(ctx, tenantID, ids)
	if err != nil {
		return err
	}
	for _, item := range items {
		if order, ok := byID[item.OrderID]; ok {
			order.Items = append(order.Items, item)
		}
	}
	return nil
}

func (r *orderRepo) Count(ctx context.Context, tenantID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE tenant_id = $1`, tenantID).Scan(&count)
	return count, err
}

func (r *orderRepo) SumTotalByStatus(ctx context.Context, tenantID uuid.UUID, status models.OrderStatus) (decimal.Decimal, error) {
	var total decimal.Decimal
	query := `SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE tenant_id = $1 AND status = $2`
	if err := r.db.QueryRow(ctx, query, tenantID, status).Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
