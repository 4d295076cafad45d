package repositories

import (
	"context"
	"errors"
	"fmt"

	"restopos/internal/common"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the query surface shared by *pgxpool.Pool, pgx.Tx and pgxmock
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store groups the repositories over one connection or transaction
type Store interface {
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	Tables() TableRepository
	Products() ProductRepository
	Categories() CategoryRepository
	Customers() CustomerRepository

	// WithinTx runs fn against a Store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(Store) error) error
}

type pgStore struct {
	db DBTX
}

func NewStore(db DBTX) Store {
	return &pgStore{db: db}
}

func (s *pgStore) Orders() OrderRepository         { return NewOrderRepo(s.db) }
func (s *pgStore) OrderItems() OrderItemRepository { return NewOrderItemRepo(s.db) }
func (s *pgStore) Tables() TableRepository         { return NewTableRepo(s.db) }
func (s *pgStore) Products() ProductRepository     { return NewProductRepo(s.db) }
func (s *pgStore) Categories() CategoryRepository  { return NewCategoryRepo(s.db) }
func (s *pgStore) Customers() CustomerRepository   { return NewCustomerRepo(s.db) }

func (s *pgStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgStore{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// notFound maps pgx.ErrNoRows onto the service error kind
func notFound(err error, resource string, id any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return common.NotFound(resource, id)
	}
	return err
}

// expectOne reports a missing row when a write touched nothing
func expectOne(tag pgconn.CommandTag, resource string, id any) error {
	if tag.RowsAffected() == 0 {
		return common.NotFound(resource, id)
	}
	return nil
}
