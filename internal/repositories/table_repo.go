package repositories

import (
	"context"
	"fmt"

	"restopos/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TableRepository interface {
	Create(ctx context.Context, table *models.RestaurantTable) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.RestaurantTable, error)
	GetByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.RestaurantTable, error)
	GetByNumber(ctx context.Context, tenantID uuid.UUID, tableNumber string) (*models.RestaurantTable, error)
	Update(ctx context.Context, table *models.RestaurantTable) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID) ([]*models.RestaurantTable, error)
	Filter(ctx context.Context, tenantID uuid.UUID, filter models.TableFilter) ([]*models.RestaurantTable, error)
}

const tableColumns = `id, tenant_id, table_number, capacity, status, current_order_id, location,
		position_x, position_y, width, height, shape, created_at, updated_at`

type tableRepo struct {
	db DBTX
}

func NewTableRepo(db DBTX) TableRepository {
	return &tableRepo{db: db}
}

func scanTable(row pgx.Row) (*models.RestaurantTable, error) {
	table := &models.RestaurantTable{}
	err := row.Scan(&table.ID, &table.TenantID, &table.TableNumber, &table.Capacity, &table.Status, &table.CurrentOrderID,
		&table.Location, &table.PositionX, &table.PositionY, &table.Width, &table.Height, &table.Shape,
		&table.CreatedAt, &table.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return table, nil
}

func (r *tableRepo) Create(ctx context.Context, table *models.RestaurantTable) error {
	query := `
		INSERT INTO restaurant_tables (id, tenant_id, table_number, capacity, status, current_order_id, location,
			position_x, position_y, width, height, shape, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, table.ID, table.TenantID, table.TableNumber, table.Capacity, table.Status, table.CurrentOrderID,
		table.Location, table.PositionX, table.PositionY, table.Width, table.Height, table.Shape)
	if err != nil {
		return fmt.Errorf("failed to insert table: %w", err)
	}
	return nil
}

func (r *tableRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.RestaurantTable, error) {
	query := `SELECT ` + tableColumns + `
		FROM restaurant_tables
		WHERE tenant_id = $1 AND id = $2
	`
	table, err := scanTable(r.db.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		return nil, notFound(err, "table", id)
	}
	return table, nil
}

// GetByIDForUpdate locks the table row until the surrounding transaction
// ends. Every cart mutation takes this lock first.
func (r *tableRepo) GetByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.RestaurantTable, error) {
	query := `SELECT ` + tableColumns + `
		FROM restaurant_tables
		WHERE tenant_id = $1 AND id = $2
		FOR UPDATE
	`
	table, err := scanTable(r.db.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		return nil, notFound(err, "table", id)
	}
	return table, nil
}

func (r *tableRepo) GetByNumber(ctx context.Context, tenantID uuid.UUID, tableNumber string) (*models.RestaurantTable, error) {
	query := `SELECT ` + tableColumns + `
		FROM restaurant_tables
		WHERE tenant_id = $1 AND table_number = $2
	`
	table, err := scanTable(r.db.QueryRow(ctx, query, tenantID, tableNumber))
	if err != nil {
		return nil, notFound(err, "table", tableNumber)
	}
	return table, nil
}

func (r *tableRepo) Update(ctx context.Context, table *models.RestaurantTable) error {
	query := `
		UPDATE restaurant_tables
		SET table_number = $1, capacity = $2, status = $3, current_order_id = $4, location = $5,
			position_x = $6, position_y = $7, width = $8, height = $9, shape = $10, updated_at = NOW()
		WHERE tenant_id = $11 AND id = $12
	`
	tag, err := r.db.Exec(ctx, query, table.TableNumber, table.Capacity, table.Status, table.CurrentOrderID, table.Location,
		table.PositionX, table.PositionY, table.Width, table.Height, table.Shape, table.TenantID, table.ID)
	if err != nil {
		return fmt.Errorf("failed to update table: %w", err)
	}
	return expectOne(tag, "table", table.ID)
}

func (r *tableRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM restaurant_tables WHERE tenant_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete table: %w", err)
	}
	return expectOne(tag, "table", id)
}

func (r *tableRepo) List(ctx context.Context, tenantID uuid.UUID) ([]*models.RestaurantTable, error) {
	return r.Filter(ctx, tenantID, models.TableFilter{})
}

// Filter lists tables matching every set field of filter. Location matches
// case-insensitively and MinCapacity is inclusive.
func (r *tableRepo) Filter(ctx context.Context, tenantID uuid.UUID, filter models.TableFilter) ([]*models.RestaurantTable, error) {
	query := `SELECT ` + tableColumns + `
		FROM restaurant_tables
		WHERE tenant_id = $1`
	args := []interface{}{tenantID}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Location != "" {
		args = append(args, filter.Location)
		query += fmt.Sprintf(" AND LOWER(location) = LOWER($%d)", len(args))
	}
	if filter.MinCapacity != nil {
		args = append(args, *filter.MinCapacity)
		query += fmt.Sprintf(" AND capacity >= $%d", len(args))
	}
	query += " ORDER BY table_number"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := []*models.RestaurantTable{}
	for rows.Next() {
		table, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	return tables, rows.Err()
}
