package domain

import "errors"

// Sentinel errors returned by the domain services. Callers match them with
// errors.Is; services wrap them with request context.
var (
	// Bet and settlement errors
	ErrInvalidBet        = errors.New("invalid bet")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrSessionNotFound   = errors.New("game session not found")
	ErrNotOwner          = errors.New("game session belongs to another user")
	ErrAlreadySettled    = errors.New("game session already settled")

	// Ledger errors
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrUserNotFound    = errors.New("user not found")
	ErrStorageConflict = errors.New("storage conflict: too many concurrent updates")

	// Account and identity errors
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrForbidden          = errors.New("forbidden")
)
