package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mkravets/tradesim/internal/logger"
	"github.com/mkravets/tradesim/internal/models"
)

// AccountReadRepository handles account read operations
type AccountReadRepository struct {
	db *sqlx.DB
}

func NewAccountReadRepository(db *sqlx.DB) *AccountReadRepository {
	return &AccountReadRepository{db: db}
}

// GetByUsernameOrEmail returns the account matching the given username and/or
// email, or nil when no account matches.
func (r *AccountReadRepository) GetByUsernameOrEmail(ctx context.Context, username, email *string) (*models.AccountDB, error) {
	const query = `
		SELECT account_id, username, email, password_hash, balance, created_at, updated_at
		FROM accounts
		WHERE ($1::VARCHAR IS NULL OR username = $1)
		  AND ($2::VARCHAR IS NULL OR email = $2)
		LIMIT 1
	`

	var account models.AccountDB
	err := r.db.GetContext(ctx, &account, query, username, email)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{username, email},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &account, nil
}

// GetBalance returns the current cash balance for an account. Returns
// sql.ErrNoRows when the account does not exist.
func (r *AccountReadRepository) GetBalance(ctx context.Context, accountID uuid.UUID) (float64, error) {
	const query = `
		SELECT balance FROM accounts WHERE account_id = $1
	`

	var balance float64
	err := r.db.GetContext(ctx, &balance, query, accountID)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{accountID},
		"result", balance,
		"error", err,
	)

	return balance, err
}

// GetBalanceForUpdate reads the balance with a row lock. Must be called
// inside a transaction placed into the context by TxRunner.
func (r *AccountReadRepository) GetBalanceForUpdate(ctx context.Context, accountID uuid.UUID) (float64, error) {
	const query = `
		SELECT balance FROM accounts WHERE account_id = $1 FOR UPDATE
	`

	var balance float64
	err := sqlx.GetContext(ctx, executor(ctx, r.db), &balance, query, accountID)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{accountID},
		"result", balance,
		"error", err,
	)

	return balance, err
}

// AccountWriteRepository handles account write operations
type AccountWriteRepository struct {
	db *sqlx.DB
}

func NewAccountWriteRepository(db *sqlx.DB) *AccountWriteRepository {
	return &AccountWriteRepository{db: db}
}

// Save inserts a new account with the given starting balance and returns its id.
func (r *AccountWriteRepository) Save(ctx context.Context, username, passwordHash, email string, startingBalance float64) (uuid.UUID, error) {
	query := `
		INSERT INTO accounts (account_id, username, email, password_hash, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING account_id
	`
	accountID := uuid.New()

	var saved uuid.UUID
	err := sqlx.GetContext(ctx, executor(ctx, r.db), &saved, query, accountID, username, email, passwordHash, startingBalance)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{username, email, startingBalance},
		"result", saved,
		"error", err,
	)

	if err != nil {
		return uuid.Nil, err
	}
	return saved, nil
}

// SetBalance overwrites the account's cash balance. Only the trade and
// reward services may call this, and only inside their transaction.
func (r *AccountWriteRepository) SetBalance(ctx context.Context, accountID uuid.UUID, balance float64) error {
	query := `
		UPDATE accounts SET balance = $2, updated_at = NOW() WHERE account_id = $1
	`

	res, err := executor(ctx, r.db).ExecContext(ctx, query, accountID, balance)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{accountID, balance},
		"result", rowsAffected,
		"error", err,
	)

	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
