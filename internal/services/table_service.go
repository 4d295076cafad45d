package services

import (
	"context"
	"errors"
	"strings"

	"restopos/internal/common"
	"restopos/internal/messaging"
	"restopos/internal/models"
	"restopos/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TableService interface {
	Create(ctx context.Context, tenantID uuid.UUID, table *models.RestaurantTable) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.RestaurantTable, error)
	GetByNumber(ctx context.Context, tenantID uuid.UUID, tableNumber string) (*models.RestaurantTable, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]*models.RestaurantTable, error)
	Filter(ctx context.Context, tenantID uuid.UUID, status, location string, minCapacity *int) ([]*models.RestaurantTable, error)
	Update(ctx context.Context, tenantID uuid.UUID, table *models.RestaurantTable) (*models.RestaurantTable, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	Clear(ctx context.Context, tenantID, actorID, id uuid.UUID) (*models.RestaurantTable, error)
	MarkAvailable(ctx context.Context, tenantID, id uuid.UUID) (*models.RestaurantTable, error)
	ChangeStatus(ctx context.Context, tenantID, id uuid.UUID, status string) (*models.RestaurantTable, error)
	UpdatePosition(ctx context.Context, tenantID, id uuid.UUID, position models.TablePosition) (*models.RestaurantTable, error)
}

type tableService struct {
	store     repositories.Store
	lifecycle *Lifecycle
	logger    *zap.Logger
}

func NewTableService(store repositories.Store, lifecycle *Lifecycle, logger *zap.Logger) TableService {
	return &tableService{store: store, lifecycle: lifecycle, logger: logger}
}

const maxTableCapacity = 50

func validateTable(table *models.RestaurantTable) error {
	if err := common.ValidateRequiredString(&table.TableNumber, "table_number"); err != nil {
		return err
	}
	return common.ValidatePositiveInteger(table.Capacity, "capacity", maxTableCapacity)
}

// Create adds an AVAILABLE table. Table numbers are unique per restaurant.
func (s *tableService) Create(ctx context.Context, tenantID uuid.UUID, table *models.RestaurantTable) error {
	if err := validateTable(table); err != nil {
		return err
	}
	if err := ensureNumberFree(ctx, s.store.Tables(), tenantID, table.TableNumber, uuid.Nil); err != nil {
		return err
	}

	table.ID = uuid.New()
	table.TenantID = tenantID
	table.Status = models.TableStatusAvailable
	table.CurrentOrderID = nil
	return s.store.Tables().Create(ctx, table)
}

func ensureNumberFree(ctx context.Context, tables repositories.TableRepository, tenantID uuid.UUID, tableNumber string, self uuid.UUID) error {
	existing, err := tables.GetByNumber(ctx, tenantID, tableNumber)
	switch {
	case errors.Is(err, common.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != self:
		return common.InvalidValue("table_number", "table %s already exists", tableNumber)
	}
	return nil
}

func (s *tableService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.RestaurantTable, error) {
	return s.store.Tables().GetByID(ctx, tenantID, id)
}

func (s *tableService) GetByNumber(ctx context.Context, tenantID uuid.UUID, tableNumber string) (*models.RestaurantTable, error) {
	return s.store.Tables().GetByNumber(ctx, tenantID, tableNumber)
}

func (s *tableService) List(ctx context.Context, tenantID uuid.UUID) ([]*models.RestaurantTable, error) {
	return s.store.Tables().List(ctx, tenantID)
}

// Filter lists tables by status, location and minimum capacity. An
// unrecognised status is ignored rather than rejected.
func (s *tableService) Filter(ctx context.Context, tenantID uuid.UUID, status, location string, minCapacity *int) ([]*models.RestaurantTable, error) {
	filter := models.TableFilter{Location: strings.TrimSpace(location), MinCapacity: minCapacity}
	if status != "" {
		if parsed, err := models.ParseTableStatus(status); err == nil {
			filter.Status = &parsed
		} else {
			s.logger.Debug("ignoring invalid table status filter", zap.String("status", status))
		}
	}
	return s.store.Tables().Filter(ctx, tenantID, filter)
}

// Update edits the descriptive fields of a table. Status and current order
// only change through the lifecycle operations.
func (s *tableService) Update(ctx context.Context, tenantID uuid.UUID, table *models.RestaurantTable) (*models.RestaurantTable, error) {
	if err := validateTable(table); err != nil {
		return nil, err
	}
	var updated *models.RestaurantTable
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		existing, err := tx.Tables().GetByIDForUpdate(ctx, tenantID, table.ID)
		if err != nil {
			return err
		}
		if existing.TableNumber != table.TableNumber {
			if err := ensureNumberFree(ctx, tx.Tables(), tenantID, table.TableNumber, table.ID); err != nil {
				return err
			}
		}
		existing.TableNumber = table.TableNumber
		existing.Capacity = table.Capacity
		existing.Location = table.Location
		existing.ApplyPosition(models.TablePosition{
			PositionX: table.PositionX,
			PositionY: table.PositionY,
			Width:     table.Width,
			Height:    table.Height,
			Shape:     table.Shape,
		})
		updated = existing
		return tx.Tables().Update(ctx, existing)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a table that has no current order
func (s *tableService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.store.WithinTx(ctx, func(tx repositories.Store) error {
		table, err := tx.Tables().GetByIDForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if table.CurrentOrderID != nil {
			return common.InvalidState("table %s still has a current order", table.TableNumber)
		}
		return tx.Tables().Delete(ctx, tenantID, id)
	})
}

func (s *tableService) Clear(ctx context.Context, tenantID, actorID, id uuid.UUID) (*models.RestaurantTable, error) {
	var previous *uuid.UUID
	table, err := s.mutate(ctx, tenantID, id, func(table *models.RestaurantTable) error {
		previous = table.CurrentOrderID
		table.Clear()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("table cleared", zap.String("table_number", table.TableNumber), zap.String("actor_id", actorID.String()))
	s.lifecycle.publish(ctx, messaging.NewTableClearedEvent(table, previous, actorID))
	return table, nil
}

func (s *tableService) MarkAvailable(ctx context.Context, tenantID, id uuid.UUID) (*models.RestaurantTable, error) {
	return s.mutate(ctx, tenantID, id, func(table *models.RestaurantTable) error {
		return table.MarkAvailable()
	})
}

func (s *tableService) ChangeStatus(ctx context.Context, tenantID, id uuid.UUID, status string) (*models.RestaurantTable, error) {
	parsed, err := models.ParseTableStatus(status)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, id, func(table *models.RestaurantTable) error {
		return table.ChangeStatus(parsed)
	})
}

func (s *tableService) UpdatePosition(ctx context.Context, tenantID, id uuid.UUID, position models.TablePosition) (*models.RestaurantTable, error) {
	return s.mutate(ctx, tenantID, id, func(table *models.RestaurantTable) error {
		table.ApplyPosition(position)
		return nil
	})
}

// mutate applies fn to the locked table and writes it back in one transaction
func (s *tableService) mutate(ctx context.Context, tenantID, id uuid.UUID, fn func(*models.RestaurantTable) error) (*models.RestaurantTable, error) {
	var table *models.RestaurantTable
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		var err error
		table, err = tx.Tables().GetByIDForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if err := fn(table); err != nil {
			return err
		}
		return tx.Tables().Update(ctx, table)
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}
