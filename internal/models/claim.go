package models

import "github.com/shopspring/decimal"

// SplitMode selects how an expense claim is divided among participants.
type SplitMode string

const (
	// SplitEqual divides the total equally among the participants.
	SplitEqual SplitMode = "equal"

	// SplitCustom uses the per-participant amounts supplied with the claim.
	SplitCustom SplitMode = "custom"

	// SplitNone records the full amount as a personal expense of the payer
	// with no interpersonal debt.
	SplitNone SplitMode = "none"
)

// Claim is a structured expense description extracted from a free-text
// message. People are still identified by the free-text names the
// extraction service returned; the participant resolver turns a Claim into
// a ResolvedClaim before anything touches the ledger.
type Claim struct {
	// Label is the expense category classified by the extraction service.
	// Empty labels default to "Miscellaneous" downstream.
	Label string

	// Payer is the free-text name of who paid. Empty means the acting user.
	Payer string

	// Participants are the free-text names splitting the expense.
	Participants []string

	// Total is the full expense amount (sum of what the lenders lent).
	Total decimal.Decimal

	// Mode is how the total is divided.
	Mode SplitMode

	// CustomAmounts holds the per-participant amounts for SplitCustom,
	// keyed by the participant's free-text name.
	CustomAmounts map[string]decimal.Decimal
}

// ResolvedClaim is a Claim after name resolution: every person is an
// opaque member id, validated against the group roster. String matching
// never recurs below this type.
type ResolvedClaim struct {
	Label          string
	PayerID        string
	ParticipantIDs []string
	Total          decimal.Decimal
	Mode           SplitMode

	// CustomAmounts is keyed by member id for SplitCustom.
	CustomAmounts map[string]decimal.Decimal
}
