package models

// Group represents a chat group whose members split expenses.
//
// Membership lives in its own table and is read through the
// MembershipDirectory; the ledger consumes it and never mutates it.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string `json:"id"`

	// Name is the display name of the group (e.g., "Roommates", "Goa Trip").
	Name string `json:"name"`

	// CreatedBy is the user ID of the group's creator.
	CreatedBy string `json:"created_by"`

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64 `json:"created_at"`
}
