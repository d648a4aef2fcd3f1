package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mkravets/tradesim/internal/logger"
	"github.com/mkravets/tradesim/internal/models"
)

// SpinReadRepository reads the lucky-wheel record of an account.
type SpinReadRepository struct {
	db *sqlx.DB
}

func NewSpinReadRepository(db *sqlx.DB) *SpinReadRepository {
	return &SpinReadRepository{db: db}
}

// GetByAccountID returns the account's spin record, or nil when the account
// has never spun.
func (r *SpinReadRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*models.SpinDB, error) {
	const query = `
		SELECT account_id, last_spin_date, prize_amount, prize_percentage, updated_at
		FROM lucky_wheel_spins
		WHERE account_id = $1
	`

	var spin models.SpinDB
	err := sqlx.GetContext(ctx, executor(ctx, r.db), &spin, query, accountID)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{accountID},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &spin, nil
}

// SpinWriteRepository overwrites the lucky-wheel record of an account.
type SpinWriteRepository struct {
	db *sqlx.DB
}

func NewSpinWriteRepository(db *sqlx.DB) *SpinWriteRepository {
	return &SpinWriteRepository{db: db}
}

// Upsert stores the spin for the given calendar date, replacing any earlier
// record. One row per account, overwritten on each spin.
func (r *SpinWriteRepository) Upsert(ctx context.Context, accountID uuid.UUID, spinDate time.Time, prizeAmount, prizePercentage float64) error {
	query := `
		INSERT INTO lucky_wheel_spins (account_id, last_spin_date, prize_amount, prize_percentage, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (account_id)
		DO UPDATE SET
			last_spin_date = EXCLUDED.last_spin_date,
			prize_amount = EXCLUDED.prize_amount,
			prize_percentage = EXCLUDED.prize_percentage,
			updated_at = NOW()
	`

	res, err := executor(ctx, r.db).ExecContext(ctx, query, accountID, spinDate, prizeAmount, prizePercentage)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{accountID, spinDate, prizeAmount, prizePercentage},
		"result", rowsAffected,
		"error", err,
	)

	return err
}
