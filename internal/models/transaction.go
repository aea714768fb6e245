package models

import "github.com/shopspring/decimal"

// Transaction is one event in a group's chat: a plain message, or the
// parent of an expense's Detail rows. A Transaction with zero Details is a
// plain message. Transactions are never edited or deleted; Details are
// attached at most once, atomically as a set.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string `json:"id"`

	// GroupID is the group this transaction belongs to.
	GroupID string `json:"group_id"`

	// CreatedBy is the user ID of the author.
	CreatedBy string `json:"created_by"`

	// RawText is the free-text content of the message as typed.
	RawText string `json:"raw_text"`

	// CreatedAt is the Unix timestamp when the transaction was recorded.
	CreatedAt int64 `json:"created_at"`

	// Seq is the store-assigned commit order, monotonically increasing.
	// Real-time events for a group are delivered in Seq order.
	Seq int64 `json:"seq"`

	// Details are the pairwise debt records attached to this transaction.
	// Empty for plain messages.
	Details []Detail `json:"details,omitempty"`
}

// IsExpense reports whether any Detail rows are attached.
func (t *Transaction) IsExpense() bool {
	return len(t.Details) > 0
}

// Detail is one pairwise debt record: "borrower owes lender Amount for
// Label, arising from this transaction". Amount is always positive.
//
// A self-referential Detail (lender == borrower) is a personal expense
// recorded for bookkeeping only; it carries no interpersonal debt and is
// excluded from all balance math.
type Detail struct {
	// ID is the unique identifier for the detail row (UUID format).
	ID string `json:"id"`

	// TransactionID is the parent transaction.
	TransactionID string `json:"transaction_id"`

	// LenderID is the member who is owed.
	LenderID string `json:"lender_id"`

	// BorrowerID is the member who owes.
	BorrowerID string `json:"borrower_id"`

	// Amount is the debt amount. Invariant: Amount > 0.
	Amount decimal.Decimal `json:"amount"`

	// Label is the expense category (e.g., "Food & Dining").
	Label string `json:"label"`
}

// SelfReferential reports whether the row is a bookkeeping-only record
// with no interpersonal debt.
func (d *Detail) SelfReferential() bool {
	return d.LenderID == d.BorrowerID
}

// MemberBalance is one member's net position in a group.
// Positive means the member is net owed; negative means they net owe.
type MemberBalance struct {
	Member  Member          `json:"member"`
	Balance decimal.Decimal `json:"net_amount"`
}

// CategorySpend is a user's total spend under one expense label, summed
// over every Detail where the user is the borrower.
type CategorySpend struct {
	Label string          `json:"label"`
	Total decimal.Decimal `json:"total"`
}
