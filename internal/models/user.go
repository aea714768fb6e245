package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `json:"id"`

	// Email is the user's email address (unique). Used for login and for
	// resolving free-text names in expense claims.
	Email string `json:"email"`

	// DisplayName is the name shown in chat and used for name resolution.
	DisplayName string `json:"display_name"`

	// PasswordHash is the bcrypt hash of the user's password. Never
	// serialized.
	PasswordHash string `json:"-"`

	// UPIHandle is an optional payment handle captured alongside group
	// membership. It is carried for payment links only; the ledger never
	// reads it.
	UPIHandle string `json:"upi_handle,omitempty"`

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64 `json:"created_at"`

	// UpdatedAt is the Unix timestamp of the last profile change.
	UpdatedAt int64 `json:"updated_at"`
}

// NewUser creates a user with a generated ID and current timestamps.
func NewUser(email, displayName, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Member is the roster view of a user within a group: exactly the fields
// the participant resolver needs, nothing more.
type Member struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
