package models

import (
	"time"

	"github.com/google/uuid"
)

// AccountDB represents an account row in the database
type AccountDB struct {
	AccountID    uuid.UUID `json:"account_id" db:"account_id"`   // Unique account identifier
	Username     string    `json:"username" db:"username"`       // Login name, unique
	Email        string    `json:"email" db:"email"`             // Email address, unique
	PasswordHash string    `json:"-" db:"password_hash"`         // bcrypt hash, never serialized
	Balance      float64   `json:"balance" db:"balance"`         // Virtual cash balance
	CreatedAt    time.Time `json:"created_at" db:"created_at"`   // Timestamp when the account was created
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`   // Timestamp of the last account update
}
