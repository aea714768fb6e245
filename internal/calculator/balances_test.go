package calculator

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitchat/internal/models"
)

func TestComputeBalances(t *testing.T) {
	// Alice pays 90 split equally three ways. Her own row is
	// self-referential and must not count.
	details := []models.Detail{
		{LenderID: "alice", BorrowerID: "alice", Amount: dec("30")},
		{LenderID: "alice", BorrowerID: "bob", Amount: dec("30")},
		{LenderID: "alice", BorrowerID: "carol", Amount: dec("30")},
	}

	balances := ComputeBalances(details)

	if !balances["alice"].Equal(dec("60")) {
		t.Errorf("alice = %v, want 60", balances["alice"])
	}
	if !balances["bob"].Equal(dec("-30")) {
		t.Errorf("bob = %v, want -30", balances["bob"])
	}
	if !balances["carol"].Equal(dec("-30")) {
		t.Errorf("carol = %v, want -30", balances["carol"])
	}
}

func TestComputeBalancesZeroSum(t *testing.T) {
	details := []models.Detail{
		{LenderID: "alice", BorrowerID: "bob", Amount: dec("12.34")},
		{LenderID: "bob", BorrowerID: "carol", Amount: dec("7.89")},
		{LenderID: "carol", BorrowerID: "alice", Amount: dec("3.21")},
		{LenderID: "dave", BorrowerID: "dave", Amount: dec("99")},
	}

	sum := decimal.Zero
	for _, v := range ComputeBalances(details) {
		sum = sum.Add(v)
	}
	if !sum.IsZero() {
		t.Errorf("balances sum = %v, want 0", sum)
	}
}

func TestComputeBalancesOrderIndependent(t *testing.T) {
	forward := []models.Detail{
		{LenderID: "alice", BorrowerID: "bob", Amount: dec("10")},
		{LenderID: "bob", BorrowerID: "carol", Amount: dec("4")},
		{LenderID: "alice", BorrowerID: "carol", Amount: dec("6")},
	}
	reversed := []models.Detail{forward[2], forward[1], forward[0]}

	a := ComputeBalances(forward)
	b := ComputeBalances(reversed)

	for id, v := range a {
		if !v.Equal(b[id]) {
			t.Errorf("%s: %v != %v", id, v, b[id])
		}
	}
}

func TestComputeBalancesSelfOnly(t *testing.T) {
	details := []models.Detail{
		{LenderID: "alice", BorrowerID: "alice", Amount: dec("50")},
	}
	if got := ComputeBalances(details); len(got) != 0 {
		t.Errorf("got %d entries for personal expense, want 0", len(got))
	}
}

func TestBalanceDeltasDropsZeroEntries(t *testing.T) {
	// Alice and bob lend each other the same amount; both net to zero.
	details := []models.Detail{
		{LenderID: "alice", BorrowerID: "bob", Amount: dec("10")},
		{LenderID: "bob", BorrowerID: "alice", Amount: dec("10")},
	}
	if got := BalanceDeltas(details); len(got) != 0 {
		t.Errorf("got %d deltas, want 0", len(got))
	}
}
