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

// PositionReadRepository handles portfolio read operations
type PositionReadRepository struct {
	db *sqlx.DB
}

func NewPositionReadRepository(db *sqlx.DB) *PositionReadRepository {
	return &PositionReadRepository{db: db}
}

// ListByAccountID returns every position held by the account, ordered by symbol.
func (r *PositionReadRepository) ListByAccountID(ctx context.Context, accountID uuid.UUID) ([]models.PositionDB, error) {
	const query = `
		SELECT account_id, symbol, quantity, total_invested, last_price, created_at, updated_at
		FROM positions
		WHERE account_id = $1
		ORDER BY symbol
	`

	var positions []models.PositionDB
	err := r.db.SelectContext(ctx, &positions, query, accountID)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{accountID},
		"result", len(positions),
		"error", err,
	)

	return positions, err
}

// GetForUpdate reads one position with a row lock, or nil when the account
// holds nothing under the symbol. Must run inside a context transaction.
func (r *PositionReadRepository) GetForUpdate(ctx context.Context, accountID uuid.UUID, symbol string) (*models.PositionDB, error) {
	const query = `
		SELECT account_id, symbol, quantity, total_invested, last_price, created_at, updated_at
		FROM positions
		WHERE account_id = $1 AND symbol = $2
		FOR UPDATE
	`

	var position models.PositionDB
	err := sqlx.GetContext(ctx, executor(ctx, r.db), &position, query, accountID, symbol)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{accountID, symbol},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &position, nil
}

// PositionWriteRepository handles portfolio write operations
type PositionWriteRepository struct {
	db *sqlx.DB
}

func NewPositionWriteRepository(db *sqlx.DB) *PositionWriteRepository {
	return &PositionWriteRepository{db: db}
}

// Upsert applies quantity and cost-basis deltas to a position, creating the
// row when absent, and returns the resulting quantity.
func (r *PositionWriteRepository) Upsert(ctx context.Context, accountID uuid.UUID, symbol string, quantityDelta, amountDelta, currentPrice float64) (float64, error) {
	query := `
		INSERT INTO positions (account_id, symbol, quantity, total_invested, last_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (account_id, symbol)
		DO UPDATE SET
			quantity = positions.quantity + EXCLUDED.quantity,
			total_invested = positions.total_invested + EXCLUDED.total_invested,
			last_price = EXCLUDED.last_price,
			updated_at = NOW()
		RETURNING quantity
	`

	var quantity float64
	err := sqlx.GetContext(ctx, executor(ctx, r.db), &quantity, query, accountID, symbol, quantityDelta, amountDelta, currentPrice)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{accountID, symbol, quantityDelta, amountDelta, currentPrice},
		"result", quantity,
		"error", err,
	)

	return quantity, err
}

// Delete removes a position row. Used when a sell brings the quantity down
// to zero within the configured epsilon.
func (r *PositionWriteRepository) Delete(ctx context.Context, accountID uuid.UUID, symbol string) error {
	query := `
		DELETE FROM positions WHERE account_id = $1 AND symbol = $2
	`

	res, err := executor(ctx, r.db).ExecContext(ctx, query, accountID, symbol)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{accountID, symbol},
		"result", rowsAffected,
		"error", err,
	)

	return err
}
