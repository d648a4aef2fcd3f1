package models

import (
	"time"

	"github.com/google/uuid"
)

// SpinDB holds the single lucky-wheel record per account. The row is
// overwritten on each successful spin, only the latest spin is stored.
type SpinDB struct {
	AccountID       uuid.UUID `json:"account_id" db:"account_id"`
	LastSpinDate    time.Time `json:"last_spin_date" db:"last_spin_date"` // Calendar date of the last spin, date-only granularity
	PrizeAmount     float64   `json:"prize_amount" db:"prize_amount"`
	PrizePercentage float64   `json:"prize_percentage" db:"prize_percentage"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// SpinResult is returned to the caller after a successful spin.
type SpinResult struct {
	PrizeAmount     float64 `json:"prize_amount"`
	PrizePercentage float64 `json:"prize_percentage"`
	NewBalance      float64 `json:"new_balance"`
}
