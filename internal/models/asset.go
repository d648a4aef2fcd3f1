package models

import (
	"time"

	"github.com/google/uuid"
)

// Asset classes
const (
	ClassCrypto = "crypto"
	ClassStock  = "stock"
	ClassForex  = "forex"
)

// AssetDB represents one tradable asset in the catalog. The catalog is
// independent of trading and only serves listing and browsing.
type AssetDB struct {
	AssetID   uuid.UUID `json:"asset_id" db:"asset_id"`
	Symbol    string    `json:"symbol" db:"symbol"`
	Name      string    `json:"name" db:"name"`
	Class     string    `json:"class" db:"class"` // crypto, stock or forex
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
