package services

import (
	"context"

	"restopos/internal/caching"
	"restopos/internal/common"
	"restopos/internal/messaging"
	"restopos/internal/models"
	"restopos/internal/repositories"
	"restopos/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Lifecycle bundles the work done after a table or order transaction
// commits. None of it can fail the operation that triggered it; failures
// are logged.
type Lifecycle struct {
	publisher messaging.EventPublisher
	receipts  storage.ReceiptStore
	cache     caching.CacheService
	logger    *zap.Logger
}

// NewLifecycle wires the post-commit collaborators. receipts and cache may be
// nil when those backends are not configured.
func NewLifecycle(publisher messaging.EventPublisher, receipts storage.ReceiptStore, cache caching.CacheService, logger *zap.Logger) *Lifecycle {
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	return &Lifecycle{
		publisher: publisher,
		receipts:  receipts,
		cache:     cache,
		logger:    logger,
	}
}

func (l *Lifecycle) publish(ctx context.Context, events ...messaging.Event) {
	for _, event := range events {
		if err := l.publisher.Publish(ctx, event); err != nil {
			l.logger.Warn("failed to publish lifecycle event",
				zap.String("event", string(event.Type)),
				zap.String("tenant_id", event.TenantID.String()),
				zap.Error(err))
		}
	}
}

func (l *Lifecycle) archiveReceipt(ctx context.Context, order *models.Order, actorID uuid.UUID) {
	if l.receipts == nil {
		return
	}
	objectName, err := l.receipts.Archive(ctx, order.TenantID, storage.NewReceipt(order, actorID))
	if err != nil {
		l.logger.Warn("failed to archive receipt", zap.String("order_number", order.OrderNumber), zap.Error(err))
		return
	}
	l.logger.Debug("receipt archived", zap.String("order_number", order.OrderNumber), zap.String("object", objectName))
}

func (l *Lifecycle) invalidateDashboard(ctx context.Context, tenantID uuid.UUID) {
	if l.cache == nil {
		return
	}
	if err := l.cache.DeleteDashboardStats(ctx, tenantID); err != nil {
		l.logger.Warn("failed to invalidate dashboard cache", zap.String("tenant_id", tenantID.String()), zap.Error(err))
	}
}

// orderCancelled publishes the cancellation of order and the clearing of its
// table, if any
func (l *Lifecycle) orderCancelled(ctx context.Context, order *models.Order, table *models.RestaurantTable, actorID uuid.UUID) {
	events := []messaging.Event{messaging.NewOrderEvent(messaging.EventOrderCancelled, order, actorID)}
	if table != nil {
		orderID := order.ID
		events = append(events, messaging.NewTableClearedEvent(table, &orderID, actorID))
	}
	l.publish(ctx, events...)
	l.invalidateDashboard(ctx, order.TenantID)
}

func (l *Lifecycle) orderCompleted(ctx context.Context, order *models.Order, table *models.RestaurantTable, actorID uuid.UUID) {
	events := []messaging.Event{messaging.NewOrderEvent(messaging.EventOrderCompleted, order, actorID)}
	if table != nil {
		orderID := order.ID
		events = append(events, messaging.NewTableClearedEvent(table, &orderID, actorID))
	}
	l.publish(ctx, events...)
	l.archiveReceipt(ctx, order, actorID)
	l.invalidateDashboard(ctx, order.TenantID)
}

func (l *Lifecycle) orderCreated(ctx context.Context, order *models.Order, actorID uuid.UUID) {
	l.publish(ctx, messaging.NewOrderEvent(messaging.EventOrderCreated, order, actorID))
	l.invalidateDashboard(ctx, order.TenantID)
}

// lockOrderAndTable locks the table an order is seated at, then the order
// itself, keeping the table-before-order lock order every coordinator
// transaction follows. table is nil for orders without a table.
func lockOrderAndTable(ctx context.Context, tx repositories.Store, tenantID, orderID uuid.UUID) (*models.Order, *models.RestaurantTable, error) {
	peek, err := tx.Orders().GetByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, nil, err
	}

	var table *models.RestaurantTable
	if peek.TableID != nil {
		table, err = tx.Tables().GetByIDForUpdate(ctx, tenantID, *peek.TableID)
		if err != nil {
			return nil, nil, err
		}
	}

	order, err := tx.Orders().GetByIDForUpdate(ctx, tenantID, orderID)
	if err != nil {
		return nil, nil, err
	}
	if table != nil && !order.BelongsToTable(table.ID) {
		return nil, nil, common.InvalidState("order %s moved tables while being locked", order.OrderNumber)
	}
	return order, table, nil
}
