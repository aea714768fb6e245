// Package service implements the application logic on top of the storage
// layer: membership checks, the chat-to-ledger flow, and balance reads.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitchat/internal/cache"
	"github.com/mmynk/splitchat/internal/calculator"
	"github.com/mmynk/splitchat/internal/events"
	"github.com/mmynk/splitchat/internal/extract"
	"github.com/mmynk/splitchat/internal/metrics"
	"github.com/mmynk/splitchat/internal/models"
	"github.com/mmynk/splitchat/internal/resolve"
	"github.com/mmynk/splitchat/internal/storage"
)

// ErrNotGroupMember is returned when the acting user does not belong to
// the group they are operating on.
var ErrNotGroupMember = errors.New("user is not a member of this group")

// ChatService runs the chat-to-ledger flow: every post is recorded as a
// message first, then the extractor is consulted and, when it yields a
// valid expense claim, detail rows are attached to the same transaction.
type ChatService struct {
	store       storage.Store
	extractor   extract.Extractor
	broadcaster *events.Broadcaster
	cache       *cache.BalanceCache
}

// NewChatService wires the service. extractor may be nil, in which case
// every post stays a plain message.
func NewChatService(store storage.Store, extractor extract.Extractor, broadcaster *events.Broadcaster, balanceCache *cache.BalanceCache) *ChatService {
	return &ChatService{
		store:       store,
		extractor:   extractor,
		broadcaster: broadcaster,
		cache:       balanceCache,
	}
}

// PostResult reports what happened to a posted message. Transaction is
// always set once the message is recorded; Details is non-empty only when
// an expense was attached. ClaimErr is set when the extractor produced a
// claim that could not be turned into an expense, so the originator can
// be told while the message itself stands.
type PostResult struct {
	Transaction *models.Transaction
	ClaimErr    error
}

func (s *ChatService) requireMember(ctx context.Context, groupID, userID string) ([]models.Member, error) {
	roster, err := s.store.ListMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	for _, m := range roster {
		if m.ID == userID {
			return roster, nil
		}
	}
	return nil, ErrNotGroupMember
}

// PostMessage records the text as a transaction, then tries to extract and
// attach an expense. The message is never lost: extraction failures and
// rejected claims degrade to a plain message.
func (s *ChatService) PostMessage(ctx context.Context, groupID, userID, text string) (*PostResult, error) {
	roster, err := s.requireMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}

	tx, err := s.store.RecordMessage(ctx, groupID, userID, text)
	if err != nil {
		return nil, fmt.Errorf("failed to record message: %w", err)
	}
	metrics.TransactionsRecorded.Inc()
	s.publish(ctx, events.TypeMessage, tx)

	result := &PostResult{Transaction: tx}
	if s.extractor == nil {
		return result, nil
	}

	outcome, err := s.extractor.Extract(ctx, text)
	if err != nil {
		metrics.ExtractionFailures.Inc()
		slog.Warn("Extraction failed, message stays plain",
			"group_id", groupID, "transaction_id", tx.ID, "error", err)
		return result, nil
	}

	switch outcome.Kind {
	case extract.KindClaim:
		result.ClaimErr = s.attachClaim(ctx, tx, outcome.Claim, roster, userID)
	case extract.KindCategory:
		slog.Info("Message classified without expense",
			"group_id", groupID, "transaction_id", tx.ID, "label", outcome.Label)
	case extract.KindSavingsGoal:
		slog.Info("Savings goal update noted",
			"group_id", groupID, "transaction_id", tx.ID,
			"goal", outcome.Goal, "amount", outcome.GoalAmount)
	}
	return result, nil
}

// attachClaim resolves names, computes the split, and attaches the detail
// rows. Any failure leaves the transaction as a plain message and is
// reported back to the caller, not swallowed.
func (s *ChatService) attachClaim(ctx context.Context, tx *models.Transaction, claim *models.Claim, roster []models.Member, actingUserID string) error {
	resolved, err := resolve.Claim(claim, roster, actingUserID)
	if err != nil {
		metrics.ClaimsRejected.WithLabelValues("unresolved_participant").Inc()
		return err
	}

	details, err := calculator.BuildDetails(resolved)
	if err != nil {
		metrics.ClaimsRejected.WithLabelValues("invalid_split").Inc()
		return err
	}

	attached, err := s.store.AttachExpense(ctx, tx.ID, details)
	if err != nil {
		metrics.ClaimsRejected.WithLabelValues("store").Inc()
		return fmt.Errorf("failed to attach expense: %w", err)
	}

	tx.Details = attached
	metrics.ExpensesAttached.Inc()
	s.invalidateBalances(ctx, attached)
	s.publish(ctx, events.TypeExpense, tx)
	return nil
}

// AddExpense records a personal expense for the user: a single
// self-referential detail that never shifts balances.
func (s *ChatService) AddExpense(ctx context.Context, groupID, userID string, amount decimal.Decimal, label string) (*models.Transaction, error) {
	if _, err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	details, err := calculator.BuildDetails(&models.ResolvedClaim{
		Label:   label,
		PayerID: userID,
		Total:   amount,
		Mode:    models.SplitNone,
	})
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("%s %s", label, amount.StringFixed(2))
	tx, err := s.store.RecordMessage(ctx, groupID, userID, text)
	if err != nil {
		return nil, fmt.Errorf("failed to record expense: %w", err)
	}
	metrics.TransactionsRecorded.Inc()

	attached, err := s.store.AttachExpense(ctx, tx.ID, details)
	if err != nil {
		return nil, fmt.Errorf("failed to attach expense: %w", err)
	}
	tx.Details = attached
	metrics.ExpensesAttached.Inc()
	s.publish(ctx, events.TypeExpense, tx)
	return tx, nil
}

// History returns the group's transactions in commit order.
func (s *ChatService) History(ctx context.Context, groupID, userID string) ([]models.Transaction, error) {
	if _, err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return s.store.ListTransactions(ctx, groupID)
}

// GroupBalances returns the net balance of every member, zero included.
func (s *ChatService) GroupBalances(ctx context.Context, groupID, userID string) ([]models.MemberBalance, error) {
	if _, err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return s.store.GroupBalances(ctx, groupID)
}

// UserBalance returns the user's net balance across all groups, served
// from the cache when warm.
func (s *ChatService) UserBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	if balance, ok := s.cache.GetUserBalance(ctx, userID); ok {
		return balance, nil
	}
	balance, err := s.store.UserBalance(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	s.cache.SetUserBalance(ctx, userID, balance)
	return balance, nil
}

// CategorySpending returns the user's per-label spending totals.
func (s *ChatService) CategorySpending(ctx context.Context, userID string) ([]models.CategorySpend, error) {
	return s.store.CategorySpending(ctx, userID)
}

// CreateGroup creates a group owned by the user.
func (s *ChatService) CreateGroup(ctx context.Context, userID, name string) (*models.Group, error) {
	group := &models.Group{Name: name, CreatedBy: userID}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	return group, nil
}

// ListGroups returns the groups the user belongs to.
func (s *ChatService) ListGroups(ctx context.Context, userID string) ([]models.Group, error) {
	return s.store.ListGroups(ctx, userID)
}

// AddMember enrolls another user, looked up by email, into a group the
// actor belongs to. A non-empty upiHandle is stored on the new member's
// profile as a side effect; it never touches the ledger.
func (s *ChatService) AddMember(ctx context.Context, groupID, actorID, email, upiHandle string) error {
	if _, err := s.requireMember(ctx, groupID, actorID); err != nil {
		return err
	}
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user %s: %w", email, storage.ErrNotFound)
	}
	if err := s.store.AddGroupMember(ctx, groupID, user.ID); err != nil {
		return err
	}
	if upiHandle != "" {
		if err := s.store.SetUPIHandle(ctx, user.ID, upiHandle); err != nil {
			return err
		}
	}
	return nil
}

// Members returns the roster of a group the user belongs to.
func (s *ChatService) Members(ctx context.Context, groupID, userID string) ([]models.Member, error) {
	return s.requireMember(ctx, groupID, userID)
}

// IsMember reports whether the user belongs to the group.
func (s *ChatService) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	_, err := s.requireMember(ctx, groupID, userID)
	if errors.Is(err, ErrNotGroupMember) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SetUPIHandle stores a payment handle on the user's profile.
func (s *ChatService) SetUPIHandle(ctx context.Context, userID, handle string) error {
	return s.store.SetUPIHandle(ctx, userID, handle)
}

func (s *ChatService) publish(ctx context.Context, eventType events.EventType, tx *models.Transaction) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Publish(ctx, events.Event{
		Type:        eventType,
		GroupID:     tx.GroupID,
		Seq:         tx.Seq,
		Transaction: tx,
	})
}

func (s *ChatService) invalidateBalances(ctx context.Context, details []models.Detail) {
	seen := make(map[string]struct{})
	var ids []string
	for _, d := range details {
		if d.SelfReferential() {
			continue
		}
		for _, id := range []string{d.LenderID, d.BorrowerID} {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	s.cache.InvalidateUsers(ctx, ids...)
}
