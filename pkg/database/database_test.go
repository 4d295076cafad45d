package database

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMigrate_AppliesSchemaInOneTransaction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS categories`).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	for range schema[1:] {
		mock.ExpectExec(`.+`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	}
	mock.ExpectCommit()

	require.NoError(t, Migrate(context.Background(), mock, zap.NewNop()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_RollsBackOnFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS categories`).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS products`).WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	err = Migrate(context.Background(), mock, zap.NewNop())
	assert.ErrorContains(t, err, "migration step 2 failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchema_DeclaresLifecycleTables(t *testing.T) {
	joined := ""
	for _, stmt := range schema {
		joined += stmt
	}
	for _, table := range []string{"restaurant_tables", "orders", "order_items", "products", "categories", "customers"} {
		assert.Contains(t, joined, "CREATE TABLE IF NOT EXISTS "+table)
	}
	assert.Contains(t, joined, "UNIQUE (tenant_id, table_number)")
	assert.Contains(t, joined, "ON DELETE CASCADE")
}
