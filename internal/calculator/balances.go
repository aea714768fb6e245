package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitchat/internal/models"
)

// ComputeBalances aggregates detail rows into per-member net balances:
// +amount for every row where the member is the lender, -amount where the
// member is the borrower. Self-referential rows are skipped entirely; they
// carry no interpersonal debt.
//
// The result is a pure function of the detail set: row order does not
// matter, and the values over lender != borrower rows always sum to zero.
// Members appearing in no rows are simply absent from the map.
func ComputeBalances(details []models.Detail) map[string]decimal.Decimal {
	balances := make(map[string]decimal.Decimal)
	for _, d := range details {
		if d.SelfReferential() {
			continue
		}
		balances[d.LenderID] = balances[d.LenderID].Add(d.Amount)
		balances[d.BorrowerID] = balances[d.BorrowerID].Sub(d.Amount)
	}
	return balances
}

// BalanceDeltas is like ComputeBalances but keeps only non-zero entries,
// which is what the store needs to update its balance projection after an
// attach.
func BalanceDeltas(details []models.Detail) map[string]decimal.Decimal {
	deltas := ComputeBalances(details)
	for id, amount := range deltas {
		if amount.IsZero() {
			delete(deltas, id)
		}
	}
	return deltas
}
