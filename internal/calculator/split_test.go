package calculator

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitchat/internal/models"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestBuildDetails(t *testing.T) {
	tests := []struct {
		name         string
		claim        *models.ResolvedClaim
		wantErr      error
		validateFunc func(t *testing.T, details []models.Detail)
	}{
		{
			name: "equal split three ways with payer included",
			claim: &models.ResolvedClaim{
				Label:          "Dinner",
				PayerID:        "alice",
				ParticipantIDs: []string{"alice", "bob", "carol"},
				Total:          dec("90"),
				Mode:           models.SplitEqual,
			},
			validateFunc: func(t *testing.T, details []models.Detail) {
				if len(details) != 3 {
					t.Fatalf("got %d details, want 3", len(details))
				}
				for _, d := range details {
					if d.LenderID != "alice" {
						t.Errorf("lender = %q, want alice", d.LenderID)
					}
					if !d.Amount.Equal(dec("30")) {
						t.Errorf("amount = %v, want 30", d.Amount)
					}
					if d.Label != "Dinner" {
						t.Errorf("label = %q, want Dinner", d.Label)
					}
				}
				if !details[0].SelfReferential() {
					t.Error("payer's own row should be self-referential")
				}
			},
		},
		{
			name: "equal split leaves fractional-cent gap unredistributed",
			claim: &models.ResolvedClaim{
				PayerID:        "alice",
				ParticipantIDs: []string{"alice", "bob", "carol"},
				Total:          dec("100"),
				Mode:           models.SplitEqual,
			},
			validateFunc: func(t *testing.T, details []models.Detail) {
				sum := decimal.Zero
				for _, d := range details {
					if !d.Amount.Equal(dec("33.33")) {
						t.Errorf("amount = %v, want 33.33", d.Amount)
					}
					sum = sum.Add(d.Amount)
				}
				if !sum.Equal(dec("99.99")) {
					t.Errorf("sum = %v, want 99.99 (gap accepted)", sum)
				}
			},
		},
		{
			name: "empty label falls back to default",
			claim: &models.ResolvedClaim{
				PayerID:        "alice",
				ParticipantIDs: []string{"bob"},
				Total:          dec("10"),
				Mode:           models.SplitEqual,
			},
			validateFunc: func(t *testing.T, details []models.Detail) {
				if details[0].Label != DefaultLabel {
					t.Errorf("label = %q, want %q", details[0].Label, DefaultLabel)
				}
			},
		},
		{
			name: "custom split uses amounts verbatim even when they do not sum to total",
			claim: &models.ResolvedClaim{
				Label:          "Groceries",
				PayerID:        "alice",
				ParticipantIDs: []string{"bob", "carol"},
				Total:          dec("50"),
				Mode:           models.SplitCustom,
				CustomAmounts: map[string]decimal.Decimal{
					"bob":   dec("12.50"),
					"carol": dec("20"),
				},
			},
			validateFunc: func(t *testing.T, details []models.Detail) {
				if len(details) != 2 {
					t.Fatalf("got %d details, want 2", len(details))
				}
				byBorrower := make(map[string]decimal.Decimal)
				for _, d := range details {
					byBorrower[d.BorrowerID] = d.Amount
				}
				if !byBorrower["bob"].Equal(dec("12.50")) {
					t.Errorf("bob = %v, want 12.50", byBorrower["bob"])
				}
				if !byBorrower["carol"].Equal(dec("20")) {
					t.Errorf("carol = %v, want 20", byBorrower["carol"])
				}
			},
		},
		{
			name: "no split records a personal expense",
			claim: &models.ResolvedClaim{
				Label:   "Coffee",
				PayerID: "alice",
				Total:   dec("4.50"),
				Mode:    models.SplitNone,
			},
			validateFunc: func(t *testing.T, details []models.Detail) {
				if len(details) != 1 {
					t.Fatalf("got %d details, want 1", len(details))
				}
				if !details[0].SelfReferential() {
					t.Error("personal expense row should be self-referential")
				}
				if !details[0].Amount.Equal(dec("4.50")) {
					t.Errorf("amount = %v, want 4.50", details[0].Amount)
				}
			},
		},
		{
			name: "zero total rejected",
			claim: &models.ResolvedClaim{
				PayerID:        "alice",
				ParticipantIDs: []string{"bob"},
				Total:          decimal.Zero,
				Mode:           models.SplitEqual,
			},
			wantErr: ErrInvalidAmount,
		},
		{
			name: "negative total rejected",
			claim: &models.ResolvedClaim{
				PayerID:        "alice",
				ParticipantIDs: []string{"bob"},
				Total:          dec("-5"),
				Mode:           models.SplitNone,
			},
			wantErr: ErrInvalidAmount,
		},
		{
			name: "equal split with no participants rejected",
			claim: &models.ResolvedClaim{
				PayerID: "alice",
				Total:   dec("10"),
				Mode:    models.SplitEqual,
			},
			wantErr: ErrInvalidSplit,
		},
		{
			name: "custom split missing a participant amount rejected",
			claim: &models.ResolvedClaim{
				PayerID:        "alice",
				ParticipantIDs: []string{"bob", "carol"},
				Total:          dec("30"),
				Mode:           models.SplitCustom,
				CustomAmounts:  map[string]decimal.Decimal{"bob": dec("15")},
			},
			wantErr: ErrInvalidSplit,
		},
		{
			name: "custom split with non-positive amount rejected",
			claim: &models.ResolvedClaim{
				PayerID:        "alice",
				ParticipantIDs: []string{"bob"},
				Total:          dec("30"),
				Mode:           models.SplitCustom,
				CustomAmounts:  map[string]decimal.Decimal{"bob": decimal.Zero},
			},
			wantErr: ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details, err := BuildDetails(tt.claim)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, details)
			}
		})
	}
}
