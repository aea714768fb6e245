package resolve

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitchat/internal/models"
)

var roster = []models.Member{
	{ID: "u1", Name: "Alice", Email: "alice@example.com"},
	{ID: "u2", Name: "Bob", Email: "bob@example.com"},
	{ID: "u3", Name: "Carol", Email: "carol@example.com"},
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestClaimResolvesNamesCaseInsensitively(t *testing.T) {
	claim := &models.Claim{
		Payer:        "ALICE",
		Participants: []string{"alice", "bob"},
		Total:        dec("20"),
		Mode:         models.SplitEqual,
	}

	resolved, err := Claim(claim, roster, "u2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.PayerID != "u1" {
		t.Errorf("payer = %q, want u1", resolved.PayerID)
	}
	want := []string{"u1", "u2"}
	if len(resolved.ParticipantIDs) != len(want) {
		t.Fatalf("got %d participants, want %d", len(resolved.ParticipantIDs), len(want))
	}
	for i, id := range want {
		if resolved.ParticipantIDs[i] != id {
			t.Errorf("participant[%d] = %q, want %q", i, resolved.ParticipantIDs[i], id)
		}
	}
}

func TestClaimResolvesByEmail(t *testing.T) {
	claim := &models.Claim{
		Participants: []string{"bob@example.com"},
		Total:        dec("5"),
		Mode:         models.SplitEqual,
	}

	resolved, err := Claim(claim, roster, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.ParticipantIDs[0] != "u2" {
		t.Errorf("participant = %q, want u2", resolved.ParticipantIDs[0])
	}
}

func TestClaimDefaultsPayerToActingUser(t *testing.T) {
	claim := &models.Claim{
		Participants: []string{"Bob"},
		Total:        dec("10"),
		Mode:         models.SplitEqual,
	}

	resolved, err := Claim(claim, roster, "u3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.PayerID != "u3" {
		t.Errorf("payer = %q, want acting user u3", resolved.PayerID)
	}
}

func TestClaimRejectsUnknownNames(t *testing.T) {
	claim := &models.Claim{
		Participants: []string{"Alice", "Dave", "Bob", "dave"},
		Total:        dec("40"),
		Mode:         models.SplitEqual,
	}

	_, err := Claim(claim, roster, "u1")
	var notInGroup *ParticipantNotInGroupError
	if !errors.As(err, &notInGroup) {
		t.Fatalf("err = %v, want ParticipantNotInGroupError", err)
	}
	// "Dave" and "dave" are the same offender, reported once.
	if len(notInGroup.Names) != 1 || notInGroup.Names[0] != "Dave" {
		t.Errorf("names = %v, want [Dave]", notInGroup.Names)
	}
}

func TestClaimRejectsUnresolvablePayer(t *testing.T) {
	claim := &models.Claim{
		Payer:        "Mallory",
		Participants: []string{"Alice"},
		Total:        dec("10"),
		Mode:         models.SplitEqual,
	}

	_, err := Claim(claim, roster, "u1")
	var notInGroup *ParticipantNotInGroupError
	if !errors.As(err, &notInGroup) {
		t.Fatalf("err = %v, want ParticipantNotInGroupError", err)
	}
	if notInGroup.Names[0] != "Mallory" {
		t.Errorf("names = %v, want [Mallory]", notInGroup.Names)
	}
}

func TestClaimRejectsAmbiguousName(t *testing.T) {
	twins := append([]models.Member{}, roster...)
	twins = append(twins, models.Member{ID: "u4", Name: "Bob", Email: "bob2@example.com"})

	claim := &models.Claim{
		Participants: []string{"Bob"},
		Total:        dec("10"),
		Mode:         models.SplitEqual,
	}

	_, err := Claim(claim, twins, "u1")
	var notInGroup *ParticipantNotInGroupError
	if !errors.As(err, &notInGroup) {
		t.Fatalf("err = %v, want ParticipantNotInGroupError for ambiguous name", err)
	}
}

func TestClaimRekeysCustomAmounts(t *testing.T) {
	claim := &models.Claim{
		Payer:        "Alice",
		Participants: []string{"Bob", "Carol"},
		Total:        dec("30"),
		Mode:         models.SplitCustom,
		CustomAmounts: map[string]decimal.Decimal{
			"Bob":   dec("10"),
			"Carol": dec("20"),
		},
	}

	resolved, err := Claim(claim, roster, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resolved.CustomAmounts["u2"].Equal(dec("10")) {
		t.Errorf("u2 = %v, want 10", resolved.CustomAmounts["u2"])
	}
	if !resolved.CustomAmounts["u3"].Equal(dec("20")) {
		t.Errorf("u3 = %v, want 20", resolved.CustomAmounts["u3"])
	}
}
