package models

import (
	"time"

	"github.com/google/uuid"
)

// PositionDB represents a held quantity of one asset inside an account's portfolio.
type PositionDB struct {
	AccountID     uuid.UUID `json:"account_id" db:"account_id"`
	Symbol        string    `json:"symbol" db:"symbol"`
	Quantity      float64   `json:"quantity" db:"quantity"`             // Units held, always > 0 for a stored row
	TotalInvested float64   `json:"total_invested" db:"total_invested"` // Cost basis in cash units
	LastPrice     float64   `json:"last_price" db:"last_price"`         // Price at the most recent trade touching this position
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// PositionView is a position enriched with derived valuation fields.
// CurrentValue and UnrealizedPL are computed on read, never stored.
type PositionView struct {
	Symbol        string  `json:"symbol"`
	Quantity      float64 `json:"quantity"`
	TotalInvested float64 `json:"total_invested"`
	LastPrice     float64 `json:"last_price"`
	CurrentValue  float64 `json:"current_value"`
	UnrealizedPL  float64 `json:"unrealized_pl"`
}

// PortfolioView aggregates an account's positions with its cash balance.
type PortfolioView struct {
	CashBalance float64        `json:"cash_balance"`
	Positions   []PositionView `json:"positions"`
	TotalValue  float64        `json:"total_value"` // Cash plus the value of every position
}
