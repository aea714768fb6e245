package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitchat/internal/extract"
	"github.com/mmynk/splitchat/internal/models"
	"github.com/mmynk/splitchat/internal/resolve"
	"github.com/mmynk/splitchat/internal/storage/sqlite"
)

// fakeExtractor returns canned outcomes keyed by message text.
type fakeExtractor struct {
	outcomes map[string]extract.Outcome
	err      error
}

func (f *fakeExtractor) Extract(ctx context.Context, text string) (extract.Outcome, error) {
	if f.err != nil {
		return extract.Outcome{}, f.err
	}
	if outcome, ok := f.outcomes[text]; ok {
		return outcome, nil
	}
	return extract.Outcome{Kind: extract.KindUnrecognized}, nil
}

type fixture struct {
	svc   *ChatService
	alice *models.User
	bob   *models.User
	carol *models.User
	group *models.Group
}

func setup(t *testing.T, extractor extract.Extractor) *fixture {
	t.Helper()
	ctx := context.Background()

	tempDir, err := os.MkdirTemp("", "splitchat-svc-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	f := &fixture{svc: NewChatService(store, extractor, nil, nil)}
	newUser := func(name, email string) *models.User {
		u := models.NewUser(email, name, "hash")
		if err := store.CreateUser(ctx, u); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}
		return u
	}
	f.alice = newUser("Alice", "alice@example.com")
	f.bob = newUser("Bob", "bob@example.com")
	f.carol = newUser("Carol", "carol@example.com")

	f.group = &models.Group{Name: "flat", CreatedBy: f.alice.ID}
	if err := store.CreateGroup(ctx, f.group); err != nil {
		t.Fatalf("failed to create group: %v", err)
	}
	for _, u := range []*models.User{f.bob, f.carol} {
		if err := store.AddGroupMember(ctx, f.group.ID, u.ID); err != nil {
			t.Fatalf("failed to add member: %v", err)
		}
	}
	return f
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestPostMessageAttachesEqualSplit(t *testing.T) {
	extractor := &fakeExtractor{outcomes: map[string]extract.Outcome{
		"dinner was 90": {
			Kind: extract.KindClaim,
			Claim: &models.Claim{
				Label:        "Dinner",
				Participants: []string{"Alice", "Bob", "Carol"},
				Total:        dec("90"),
				Mode:         models.SplitEqual,
			},
		},
	}}
	f := setup(t, extractor)
	ctx := context.Background()

	result, err := f.svc.PostMessage(ctx, f.group.ID, f.alice.ID, "dinner was 90")
	if err != nil {
		t.Fatalf("PostMessage failed: %v", err)
	}
	if result.ClaimErr != nil {
		t.Fatalf("unexpected claim error: %v", result.ClaimErr)
	}
	if len(result.Transaction.Details) != 3 {
		t.Fatalf("got %d details, want 3", len(result.Transaction.Details))
	}

	balances, err := f.svc.GroupBalances(ctx, f.group.ID, f.alice.ID)
	if err != nil {
		t.Fatalf("GroupBalances failed: %v", err)
	}
	byID := make(map[string]decimal.Decimal)
	for _, b := range balances {
		byID[b.Member.ID] = b.Balance
	}
	if !byID[f.alice.ID].Equal(dec("60")) {
		t.Errorf("alice = %v, want 60", byID[f.alice.ID])
	}
	if !byID[f.bob.ID].Equal(dec("-30")) {
		t.Errorf("bob = %v, want -30", byID[f.bob.ID])
	}
	if !byID[f.carol.ID].Equal(dec("-30")) {
		t.Errorf("carol = %v, want -30", byID[f.carol.ID])
	}
}

func TestPostMessageUnknownNameKeepsMessage(t *testing.T) {
	extractor := &fakeExtractor{outcomes: map[string]extract.Outcome{
		"lunch with dave": {
			Kind: extract.KindClaim,
			Claim: &models.Claim{
				Participants: []string{"Dave"},
				Total:        dec("20"),
				Mode:         models.SplitEqual,
			},
		},
	}}
	f := setup(t, extractor)
	ctx := context.Background()

	result, err := f.svc.PostMessage(ctx, f.group.ID, f.alice.ID, "lunch with dave")
	if err != nil {
		t.Fatalf("PostMessage failed: %v", err)
	}

	var notInGroup *resolve.ParticipantNotInGroupError
	if !errors.As(result.ClaimErr, &notInGroup) {
		t.Fatalf("claim err = %v, want ParticipantNotInGroupError", result.ClaimErr)
	}
	if notInGroup.Names[0] != "Dave" {
		t.Errorf("names = %v, want [Dave]", notInGroup.Names)
	}

	// The message itself survives, with no ledger effect.
	history, err := f.svc.History(ctx, f.group.ID, f.alice.ID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 1 || history[0].IsExpense() {
		t.Errorf("history = %+v, want one plain message", history)
	}
}

func TestPostMessageExtractionFailureDegradesToPlainText(t *testing.T) {
	f := setup(t, &fakeExtractor{err: extract.ErrUnavailable})
	ctx := context.Background()

	result, err := f.svc.PostMessage(ctx, f.group.ID, f.bob.ID, "dinner was 90")
	if err != nil {
		t.Fatalf("PostMessage failed: %v", err)
	}
	if result.ClaimErr != nil {
		t.Errorf("claim err = %v, want nil on extraction failure", result.ClaimErr)
	}
	if result.Transaction.IsExpense() {
		t.Error("expected plain message when extraction is unavailable")
	}
}

func TestPostMessageNilExtractorStaysPlain(t *testing.T) {
	f := setup(t, nil)

	result, err := f.svc.PostMessage(context.Background(), f.group.ID, f.carol.ID, "hello all")
	if err != nil {
		t.Fatalf("PostMessage failed: %v", err)
	}
	if result.Transaction.IsExpense() {
		t.Error("expected plain message without an extractor")
	}
}

func TestPostMessageRejectsNonMembers(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()

	outsider := models.NewUser("eve@example.com", "Eve", "hash")

	_, err := f.svc.PostMessage(ctx, f.group.ID, outsider.ID, "hi")
	if !errors.Is(err, ErrNotGroupMember) {
		t.Fatalf("err = %v, want ErrNotGroupMember", err)
	}
}

func TestAddExpenseRecordsPersonalExpense(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()

	txn, err := f.svc.AddExpense(ctx, f.group.ID, f.bob.ID, dec("12.50"), "Snacks")
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	if len(txn.Details) != 1 || !txn.Details[0].SelfReferential() {
		t.Fatalf("details = %+v, want one self-referential row", txn.Details)
	}

	// A personal expense moves no balances.
	balances, err := f.svc.GroupBalances(ctx, f.group.ID, f.bob.ID)
	if err != nil {
		t.Fatalf("GroupBalances failed: %v", err)
	}
	for _, b := range balances {
		if !b.Balance.IsZero() {
			t.Errorf("%s = %v, want 0", b.Member.Name, b.Balance)
		}
	}

	// But it counts toward the spender's categories.
	spending, err := f.svc.CategorySpending(ctx, f.bob.ID)
	if err != nil {
		t.Fatalf("CategorySpending failed: %v", err)
	}
	if len(spending) != 1 || spending[0].Label != "Snacks" || !spending[0].Total.Equal(dec("12.50")) {
		t.Errorf("spending = %+v, want Snacks 12.50", spending)
	}
}

func TestUserBalanceSpansGroups(t *testing.T) {
	extractor := &fakeExtractor{outcomes: map[string]extract.Outcome{
		"taxi 30": {
			Kind: extract.KindClaim,
			Claim: &models.Claim{
				Label:        "Travel",
				Participants: []string{"Alice", "Bob"},
				Total:        dec("30"),
				Mode:         models.SplitEqual,
			},
		},
	}}
	f := setup(t, extractor)
	ctx := context.Background()

	if _, err := f.svc.PostMessage(ctx, f.group.ID, f.alice.ID, "taxi 30"); err != nil {
		t.Fatalf("PostMessage failed: %v", err)
	}

	balance, err := f.svc.UserBalance(ctx, f.alice.ID)
	if err != nil {
		t.Fatalf("UserBalance failed: %v", err)
	}
	if !balance.Equal(dec("15")) {
		t.Errorf("alice = %v, want 15", balance)
	}
}

func TestAddMemberRequiresActorMembership(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()

	if err := f.svc.AddMember(ctx, f.group.ID, f.bob.ID, f.carol.Email, "carol@bank"); err != nil {
		t.Errorf("member adding member failed: %v", err)
	}

	err := f.svc.AddMember(ctx, f.group.ID, "stranger", f.carol.Email, "")
	if !errors.Is(err, ErrNotGroupMember) {
		t.Errorf("err = %v, want ErrNotGroupMember", err)
	}
}
