package services

import "errors"

// Business-rule rejections. These are surfaced verbatim to the caller as a
// structured failure, never as a generic fault.
var (
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientHoldings = errors.New("insufficient holdings")
	ErrAccountNotFound      = errors.New("account not found")
	ErrAlreadySpun          = errors.New("lucky wheel already spun today")
	ErrInvalidTrade         = errors.New("quantity, amount and price must be positive")
	ErrUserAlreadyExists    = errors.New("username or email already exists")
	ErrUserDoesNotExist     = errors.New("username does not exist")
	ErrInvalidCredentials   = errors.New("invalid username or password")
)
