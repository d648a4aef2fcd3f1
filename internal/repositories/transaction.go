package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mkravets/tradesim/internal/logger"
	"github.com/mkravets/tradesim/internal/models"
)

// DefaultTransactionLimit bounds history listings when the caller gives no limit.
const DefaultTransactionLimit = 50

// TransactionWriteRepository appends immutable trade log rows.
type TransactionWriteRepository struct {
	db *sqlx.DB
}

func NewTransactionWriteRepository(db *sqlx.DB) *TransactionWriteRepository {
	return &TransactionWriteRepository{db: db}
}

// Append inserts one transaction row and returns its generated id.
func (r *TransactionWriteRepository) Append(ctx context.Context, t models.TransactionDB) (uuid.UUID, error) {
	query := `
		INSERT INTO transactions (transaction_id, account_id, symbol, quantity, amount, action, price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING transaction_id
	`

	var id uuid.UUID
	err := sqlx.GetContext(ctx, executor(ctx, r.db), &id, query,
		uuid.New(), t.AccountID, t.Symbol, t.Quantity, t.Amount, t.Action, t.Price)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{t.AccountID, t.Symbol, t.Quantity, t.Amount, t.Action, t.Price},
		"result", id,
		"error", err,
	)

	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// TransactionReadRepository lists the trade history.
type TransactionReadRepository struct {
	db *sqlx.DB
}

func NewTransactionReadRepository(db *sqlx.DB) *TransactionReadRepository {
	return &TransactionReadRepository{db: db}
}

// ListByAccountID returns the account's transactions newest first, bounded by limit.
func (r *TransactionReadRepository) ListByAccountID(ctx context.Context, accountID uuid.UUID, limit int) ([]models.TransactionDB, error) {
	if limit <= 0 {
		limit = DefaultTransactionLimit
	}

	const query = `
		SELECT transaction_id, account_id, symbol, quantity, amount, action, price, created_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	var transactions []models.TransactionDB
	err := r.db.SelectContext(ctx, &transactions, query, accountID, limit)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{accountID, limit},
		"result", len(transactions),
		"error", err,
	)

	return transactions, err
}
