package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// balances, prices and costs are rendered as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// Role names stored in users.role.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// DefaultVehicleType is assigned when a user has not picked one.
const DefaultVehicleType = "car"

// User represents an application user record as stored in the
// `users` table. Balance is the wallet balance and never goes negative.
type User struct {
	ID            uint64          `json:"id"`             // users.id
	Username      string          `json:"username"`       // users.username (unique)
	Email         string          `json:"email"`          // users.email (unique)
	PasswordHash  string          `json:"-"`              // users.password_hash (bcrypt)
	FullName      string          `json:"full_name"`      // users.full_name
	Phone         string          `json:"phone"`          // users.phone
	Role          string          `json:"role"`           // users.role (user | admin)
	Balance       decimal.Decimal `json:"balance"`        // users.balance
	VehicleNumber string          `json:"vehicle_number"` // users.vehicle_number
	VehicleType   string          `json:"vehicle_type"`   // users.vehicle_type
	CreatedAt     time.Time       `json:"created_at"`     // users.created_at
	UpdatedAt     time.Time       `json:"updated_at"`     // users.updated_at
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the raw token is stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}

// Usable reports whether the token can still be exchanged at the given time.
func (t *RefreshToken) Usable(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
