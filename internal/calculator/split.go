// Package calculator turns resolved expense claims into ledger detail rows
// and aggregates detail rows into net balances. Everything here is a pure
// function over its inputs; persistence and validation of membership happen
// elsewhere.
package calculator

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitchat/internal/models"
)

var (
	// ErrInvalidAmount is returned when a claim's total (or a custom
	// per-participant amount) is zero or negative.
	ErrInvalidAmount = errors.New("expense amount must be positive")

	// ErrInvalidSplit is returned when a split mode has no participants to
	// divide among.
	ErrInvalidSplit = errors.New("split requires at least one participant")
)

// DefaultLabel is the category applied when the extraction service did not
// classify the expense.
const DefaultLabel = "Miscellaneous"

// BuildDetails computes the Detail rows for a resolved claim. TransactionID
// is left empty; the ledger store fills it when the rows are attached.
//
// Split semantics:
//
//   - SplitEqual: every participant, the payer included, gets a row with
//     lender = payer and amount = total / count, rounded to 2 decimal
//     places. The payer's own row is self-referential and carries no debt.
//     Fractional-cent remainders are NOT redistributed: splitting 100.00
//     three ways yields 33.33 each, and the 0.01 discrepancy is accepted.
//   - SplitCustom: the supplied per-participant amounts are used verbatim.
//     The engine does not check that they sum to the claim's total; each
//     amount must merely be positive.
//   - SplitNone: a single self-referential row for the payer, recording a
//     personal expense with no interpersonal debt.
func BuildDetails(claim *models.ResolvedClaim) ([]models.Detail, error) {
	if !claim.Total.IsPositive() {
		return nil, ErrInvalidAmount
	}

	label := claim.Label
	if label == "" {
		label = DefaultLabel
	}

	switch claim.Mode {
	case models.SplitEqual:
		n := len(claim.ParticipantIDs)
		if n == 0 {
			return nil, ErrInvalidSplit
		}
		share := claim.Total.DivRound(decimal.NewFromInt(int64(n)), 2)
		details := make([]models.Detail, 0, n)
		for _, participantID := range claim.ParticipantIDs {
			details = append(details, models.Detail{
				LenderID:   claim.PayerID,
				BorrowerID: participantID,
				Amount:     share,
				Label:      label,
			})
		}
		return details, nil

	case models.SplitCustom:
		if len(claim.ParticipantIDs) == 0 || len(claim.CustomAmounts) == 0 {
			return nil, ErrInvalidSplit
		}
		details := make([]models.Detail, 0, len(claim.ParticipantIDs))
		for _, participantID := range claim.ParticipantIDs {
			amount, ok := claim.CustomAmounts[participantID]
			if !ok {
				return nil, ErrInvalidSplit
			}
			if !amount.IsPositive() {
				return nil, ErrInvalidAmount
			}
			details = append(details, models.Detail{
				LenderID:   claim.PayerID,
				BorrowerID: participantID,
				Amount:     amount,
				Label:      label,
			})
		}
		return details, nil

	case models.SplitNone:
		return []models.Detail{{
			LenderID:   claim.PayerID,
			BorrowerID: claim.PayerID,
			Amount:     claim.Total,
			Label:      label,
		}}, nil

	default:
		return nil, ErrInvalidSplit
	}
}
