package entities

import (
	"time"

	"github.com/google/uuid"
)

// Role names carried in identity tokens
const (
	RolePlayer = "player"
	RoleAdmin  = "admin"
)

// User represents a player account. Balance is held in cents and only ever
// changes through the account ledger.
type User struct {
	ID           uuid.UUID `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	Balance      int64     `db:"balance"`
	Version      int64     `db:"version"`
	IsAdmin      bool      `db:"is_admin"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// CanAfford checks if the user has sufficient balance for an amount
func (u *User) CanAfford(amount int64) bool {
	return u.Balance >= amount
}

// Role returns the role name used in identity tokens
func (u *User) Role() string {
	if u.IsAdmin {
		return RoleAdmin
	}
	return RolePlayer
}

// Identity is a verified caller, as produced by the identity provider
type Identity struct {
	UserID   uuid.UUID
	Username string
	Role     string
}

// IsAdmin reports whether the identity carries the admin role
func (i *Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
