package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mkravets/tradesim/internal/models"
)

func setupTransactionPostgresContainer(t *testing.T) (*sqlx.DB, func()) {
	t.Helper()

	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_PASSWORD": "password", "POSTGRES_DB": "testdb", "POSTGRES_USER": "postgres"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp"),
	}

	container, err := tc.GenericContainer(context.Background(), tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	assert.NoError(t, err)

	host, _ := container.Host(context.Background())
	port, _ := container.MappedPort(context.Background(), "5432")

	dsn := fmt.Sprintf("postgres://postgres:password@%s:%d/testdb?sslmode=disable", host, port.Int())

	var db *sqlx.DB
	for i := 0; i < 10; i++ {
		db, err = sqlx.Connect("pgx", dsn)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	assert.NoError(t, err)

	schema := `
	CREATE EXTENSION IF NOT EXISTS "uuid-ossp";

	CREATE TABLE IF NOT EXISTS transactions (
		transaction_id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		account_id UUID NOT NULL,
		symbol VARCHAR(20) NOT NULL,
		quantity DOUBLE PRECISION NOT NULL,
		amount DOUBLE PRECISION NOT NULL,
		action VARCHAR(10) NOT NULL,
		price DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);
	`
	_, err = db.Exec(schema)
	assert.NoError(t, err)

	teardown := func() {
		db.Close()
		container.Terminate(context.Background())
	}

	return db, teardown
}

func TestTransactionWriteRepository_Append(t *testing.T) {
	db, teardown := setupTransactionPostgresContainer(t)
	defer teardown()

	repo := NewTransactionWriteRepository(db)
	ctx := context.Background()
	accountID := uuid.New()

	id, err := repo.Append(ctx, models.TransactionDB{
		AccountID: accountID,
		Symbol:    "AAPL",
		Quantity:  2,
		Amount:    400,
		Action:    "buy",
		Price:     200,
	})
	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	var row struct {
		Symbol   string  `db:"symbol"`
		Quantity float64 `db:"quantity"`
		Amount   float64 `db:"amount"`
		Action   string  `db:"action"`
		Price    float64 `db:"price"`
	}
	err = db.Get(&row, "SELECT symbol, quantity, amount, action, price FROM transactions WHERE transaction_id=$1", id)
	assert.NoError(t, err)
	assert.Equal(t, "AAPL", row.Symbol)
	assert.Equal(t, 2.0, row.Quantity)
	assert.Equal(t, 400.0, row.Amount)
	assert.Equal(t, "buy", row.Action)
	assert.Equal(t, 200.0, row.Price)
}

func TestTransactionReadRepository_ListByAccountID(t *testing.T) {
	db, teardown := setupTransactionPostgresContainer(t)
	defer teardown()

	writeRepo := NewTransactionWriteRepository(db)
	readRepo := NewTransactionReadRepository(db)
	ctx := context.Background()
	accountID := uuid.New()

	for i := 0; i < 5; i++ {
		_, err := writeRepo.Append(ctx, models.TransactionDB{
			AccountID: accountID,
			Symbol:    "AAPL",
			Quantity:  1,
			Amount:    float64(100 + i),
			Action:    "buy",
			Price:     float64(100 + i),
		})
		assert.NoError(t, err)
		// created_at orders the listing
		time.Sleep(10 * time.Millisecond)
	}
	writeRepo.Append(ctx, models.TransactionDB{
		AccountID: uuid.New(),
		Symbol:    "TSLA",
		Quantity:  1,
		Amount:    250,
		Action:    "buy",
		Price:     250,
	})

	t.Run("NewestFirst", func(t *testing.T) {
		transactions, err := readRepo.ListByAccountID(ctx, accountID, 10)
		assert.NoError(t, err)
		assert.Len(t, transactions, 5)
		assert.Equal(t, 104.0, transactions[0].Amount)
		assert.Equal(t, 100.0, transactions[4].Amount)
	})

	t.Run("LimitApplied", func(t *testing.T) {
		transactions, err := readRepo.ListByAccountID(ctx, accountID, 2)
		assert.NoError(t, err)
		assert.Len(t, transactions, 2)
		assert.Equal(t, 104.0, transactions[0].Amount)
	})

	t.Run("ZeroLimitUsesDefault", func(t *testing.T) {
		transactions, err := readRepo.ListByAccountID(ctx, accountID, 0)
		assert.NoError(t, err)
		assert.Len(t, transactions, 5)
	})

	t.Run("NoTransactions", func(t *testing.T) {
		transactions, err := readRepo.ListByAccountID(ctx, uuid.New(), 10)
		assert.NoError(t, err)
		assert.Empty(t, transactions)
	})
}
