// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitchat/internal/models"
)

var (
	// ErrNotFound is returned when a referenced user, group, or
	// transaction does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExpenseAttached is returned when AttachExpense is invoked on a
	// transaction that already has detail rows. Expenses attach at most
	// once; there is no amend path.
	ErrExpenseAttached = errors.New("transaction already has an expense attached")
)

// MembershipDirectory is the read side of group membership. The ledger
// consumes the roster for validation and balance listing; it never mutates
// membership.
type MembershipDirectory interface {
	// ListMembers returns the roster of a group (id, name, email per
	// member). Returns ErrNotFound if the group does not exist.
	ListMembers(ctx context.Context, groupID string) ([]models.Member, error)
}

// Store defines the persistence operations for the chat ledger.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
type Store interface {
	MembershipDirectory

	// CreateUser persists a new user account.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email, or (nil, nil) if absent.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by id, or (nil, nil) if absent.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// SetUPIHandle stores a payment handle on the user record. This is a
	// profile side effect, not a ledger write.
	SetUPIHandle(ctx context.Context, userID, handle string) error

	// CreateGroup persists a group and enrolls the creator as its first
	// member. The group.ID field will be populated by the store.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by id.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroups returns the groups the user belongs to.
	ListGroups(ctx context.Context, userID string) ([]models.Group, error)

	// AddGroupMember enrolls a user into a group. Adding an existing
	// member is a no-op.
	AddGroupMember(ctx context.Context, groupID, userID string) error

	// RecordMessage appends a transaction with no detail rows: a plain
	// chat message. The returned transaction carries the assigned id,
	// timestamp, and commit sequence.
	RecordMessage(ctx context.Context, groupID, authorID, text string) (*models.Transaction, error)

	// AttachExpense atomically attaches a set of detail rows to a
	// transaction and folds them into the balance projection: either every
	// row persists or none does. At most one attach per transaction;
	// a second attempt fails with ErrExpenseAttached.
	AttachExpense(ctx context.Context, transactionID string, details []models.Detail) ([]models.Detail, error)

	// GetTransaction retrieves a transaction with its detail rows.
	GetTransaction(ctx context.Context, transactionID string) (*models.Transaction, error)

	// ListTransactions returns a group's transactions with details, in
	// commit (Seq) order.
	ListTransactions(ctx context.Context, groupID string) ([]models.Transaction, error)

	// GroupBalances reads the balance projection for every member of the
	// group. Members with no ledger activity report zero.
	GroupBalances(ctx context.Context, groupID string) ([]models.MemberBalance, error)

	// UserBalance sums the user's projected balances across all groups.
	UserBalance(ctx context.Context, userID string) (decimal.Decimal, error)

	// RecomputeGroupBalances derives net balances directly from the detail
	// rows, bypassing the projection. The projection is an optimization;
	// this is the ground truth it must always reconcile with.
	RecomputeGroupBalances(ctx context.Context, groupID string) (map[string]decimal.Decimal, error)

	// CategorySpending sums detail amounts per label where the user is the
	// borrower, across all groups.
	CategorySpending(ctx context.Context, userID string) ([]models.CategorySpend, error)

	// Close releases any resources held by the store.
	Close() error
}
