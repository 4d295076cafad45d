package repositories

import (
	"context"
	"fmt"

	"restopos/internal/models"

	"github.com/google/uuid"
)

type OrderItemRepository interface {
	ReplaceForOrder(ctx context.Context, order *models.Order) error
	ListByOrderID(ctx context.Context, tenantID, orderID uuid.UUID) ([]*models.OrderItem, error)
	ListByOrderIDs(ctx context.Context, tenantID uuid.UUID, orderIDs []uuid.UUID) ([]*models.OrderItem, error)
}

type orderItemRepo struct {
	db DBTX
}

func NewOrderItemRepo(db DBTX) OrderItemRepository {
	return &orderItemRepo{db: db}
}

// ReplaceForOrder rewrites the stored ledger of order to match order.Items.
// Run it inside a transaction so readers never see a partial ledger.
func (r *orderItemRepo) ReplaceForOrder(ctx context.Context, order *models.Order) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM order_items WHERE tenant_id = $1 AND order_id = $2`, order.TenantID, order.ID); err != nil {
		return fmt.Errorf("failed to clear order items: %w", err)
	}

	query := `
		INSERT INTO order_items (id, tenant_id, order_id, product_id, quantity, unit_price, subtotal, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`
	for _, item := range order.Items {
		_, err := r.db.Exec(ctx, query, item.ID, order.TenantID, order.ID, item.ProductID, item.Quantity, item.UnitPrice, item.Subtotal, item.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}
	return nil
}

func (r *orderItemRepo) ListByOrderID(ctx context.Context, tenantID, orderID uuid.UUID) ([]*models.OrderItem, error) {
	return r.ListByOrderIDs(ctx, tenantID, []uuid.UUID{orderID})
}

func (r *orderItemRepo) ListByOrderIDs(ctx context.Context, tenantID uuid.UUID, orderIDs []uuid.UUID) ([]*models.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, unit_price, subtotal, created_at, updated_at
		FROM order_items
		WHERE tenant_id = $1 AND order_id = ANY($2)
		ORDER BY created_at, id
	`
	rows, err := r.db.Query(ctx, query, tenantID, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*models.OrderItem{}
	for rows.Next() {
		item := &models.OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.Subtotal, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
