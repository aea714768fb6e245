package sqlite

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitchat/internal/calculator"
	"github.com/mmynk/splitchat/internal/models"
)

// GroupBalances reads the balance projection for every member of the
// group. Members without a projection row report zero.
func (s *SQLiteStore) GroupBalances(ctx context.Context, groupID string) ([]models.MemberBalance, error) {
	members, err := s.ListMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id, balance FROM balances WHERE group_id = ?",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read balances: %w", err)
	}
	defer rows.Close()

	projected := make(map[string]decimal.Decimal)
	for rows.Next() {
		var userID, raw string
		if err := rows.Scan(&userID, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("corrupt balance for user %s: %w", userID, err)
		}
		projected[userID] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate balances: %w", err)
	}

	balances := make([]models.MemberBalance, len(members))
	for i, m := range members {
		balances[i] = models.MemberBalance{Member: m, Balance: projected[m.ID]}
	}
	return balances, nil
}

// UserBalance sums the user's projected balances across all groups.
func (s *SQLiteStore) UserBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT balance FROM balances WHERE user_id = ?", userID,
	)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read user balances: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan balance: %w", err)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return decimal.Zero, fmt.Errorf("corrupt balance for user %s: %w", userID, err)
		}
		total = total.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("failed to iterate balances: %w", err)
	}

	return total, nil
}

// RecomputeGroupBalances derives net balances directly from the detail
// rows. The projection maintained by AttachExpense is an optimization;
// this full recompute is the ground truth it must reconcile with.
func (s *SQLiteStore) RecomputeGroupBalances(ctx context.Context, groupID string) (map[string]decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.transaction_id, d.lender_id, d.borrower_id, d.amount, d.label
		FROM transaction_details d
		JOIN transactions t ON t.id = d.transaction_id
		WHERE t.group_id = ?
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to read details: %w", err)
	}
	defer rows.Close()

	var details []models.Detail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate details: %w", err)
	}

	return calculator.ComputeBalances(details), nil
}

// CategorySpending sums detail amounts per label where the user is the
// borrower, across all groups, largest first.
func (s *SQLiteStore) CategorySpending(ctx context.Context, userID string) ([]models.CategorySpend, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT label, amount FROM transaction_details WHERE borrower_id = ?",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read spending: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]decimal.Decimal)
	var order []string
	for rows.Next() {
		var label, raw string
		if err := rows.Scan(&label, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan spending: %w", err)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("corrupt amount under label %s: %w", label, err)
		}
		if _, ok := totals[label]; !ok {
			order = append(order, label)
		}
		totals[label] = totals[label].Add(amount)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate spending: %w", err)
	}

	spends := make([]models.CategorySpend, 0, len(order))
	for _, label := range order {
		spends = append(spends, models.CategorySpend{Label: label, Total: totals[label]})
	}
	sort.Slice(spends, func(i, j int) bool {
		return spends[i].Total.GreaterThan(spends[j].Total)
	})
	return spends, nil
}
