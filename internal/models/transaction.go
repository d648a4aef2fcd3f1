package models

import (
	"time"

	"github.com/google/uuid"
)

// Trade actions
const (
	ActionBuy  = "buy"
	ActionSell = "sell"
)

// TransactionDB represents one immutable trade log row. Rows are appended
// once per trade and never mutated or deleted.
type TransactionDB struct {
	TransactionID uuid.UUID `json:"transaction_id" db:"transaction_id"`
	AccountID     uuid.UUID `json:"account_id" db:"account_id"`
	Symbol        string    `json:"symbol" db:"symbol"`
	Quantity      float64   `json:"quantity" db:"quantity"`
	Amount        float64   `json:"amount" db:"amount"` // Cash moved by the trade
	Action        string    `json:"action" db:"action"` // "buy" or "sell"
	Price         float64   `json:"price" db:"price"`   // Execution price
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// TradeEvent is the message published to the audit stream after a committed
// trade or reward credit.
type TradeEvent struct {
	EventID   string  `json:"event_id"`
	Timestamp int64   `json:"timestamp"` // Unix seconds
	AccountID string  `json:"account_id"`
	Symbol    string  `json:"symbol,omitempty"`
	Quantity  float64 `json:"quantity,omitempty"`
	Amount    float64 `json:"amount"`
	Price     float64 `json:"price,omitempty"`
	Operation string  `json:"operation"` // "buy", "sell" or "wheel_prize"
}
