package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/mkravets/tradesim/internal/logger"
	"github.com/mkravets/tradesim/internal/models"
)

// AssetReadRepository lists the tradable asset catalog.
type AssetReadRepository struct {
	db *sqlx.DB
}

func NewAssetReadRepository(db *sqlx.DB) *AssetReadRepository {
	return &AssetReadRepository{db: db}
}

// List returns catalog assets ordered by symbol, optionally only active ones.
func (r *AssetReadRepository) List(ctx context.Context, activeOnly bool) ([]models.AssetDB, error) {
	const query = `
		SELECT asset_id, symbol, name, class, active, created_at, updated_at
		FROM assets
		WHERE ($1 = FALSE OR active = TRUE)
		ORDER BY symbol
	`

	var assets []models.AssetDB
	err := r.db.SelectContext(ctx, &assets, query, activeOnly)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{activeOnly},
		"result", len(assets),
		"error", err,
	)

	return assets, err
}

// GetBySymbol returns the catalog entry for a symbol, or nil when unknown.
func (r *AssetReadRepository) GetBySymbol(ctx context.Context, symbol string) (*models.AssetDB, error) {
	const query = `
		SELECT asset_id, symbol, name, class, active, created_at, updated_at
		FROM assets
		WHERE symbol = $1
	`

	var asset models.AssetDB
	err := r.db.GetContext(ctx, &asset, query, symbol)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{symbol},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &asset, nil
}
