package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitchat/internal/models"
	"github.com/mmynk/splitchat/internal/storage"
)

// RecordMessage appends a plain-text transaction to the group's history.
// Expense details, if the message turns out to be one, are attached later
// by AttachExpense; the message itself always persists.
func (s *SQLiteStore) RecordMessage(ctx context.Context, groupID, authorID, text string) (*models.Transaction, error) {
	if _, err := s.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}

	txn := &models.Transaction{
		ID:        uuid.New().String(),
		GroupID:   groupID,
		CreatedBy: authorID,
		RawText:   text,
		CreatedAt: time.Now().Unix(),
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO transactions (id, group_id, created_by, raw_text, created_at) VALUES (?, ?, ?, ?, ?)",
		txn.ID, txn.GroupID, txn.CreatedBy, txn.RawText, txn.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	// seq is assigned by the autoincrement column.
	err = s.db.QueryRowContext(ctx,
		"SELECT seq FROM transactions WHERE id = ?", txn.ID,
	).Scan(&txn.Seq)
	if err != nil {
		return nil, fmt.Errorf("failed to read transaction seq: %w", err)
	}

	return txn, nil
}

// AttachExpense attaches detail rows to a transaction and folds them into
// the balance projection, all in one SQL transaction: either everything
// persists or nothing does. A transaction accepts details at most once.
//
// Detail order within one attach is insertion order and carries no meaning;
// balance math is order-independent.
func (s *SQLiteStore) AttachExpense(ctx context.Context, transactionID string, details []models.Detail) ([]models.Detail, error) {
	if len(details) == 0 {
		return nil, fmt.Errorf("no details to attach")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var groupID string
	err = tx.QueryRowContext(ctx,
		"SELECT group_id FROM transactions WHERE id = ?", transactionID,
	).Scan(&groupID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction %s: %w", transactionID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up transaction: %w", err)
	}

	var existing int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transaction_details WHERE transaction_id = ?", transactionID,
	).Scan(&existing)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing details: %w", err)
	}
	if existing > 0 {
		return nil, storage.ErrExpenseAttached
	}

	attached := make([]models.Detail, len(details))
	for i, d := range details {
		d.ID = uuid.New().String()
		d.TransactionID = transactionID
		_, err = tx.ExecContext(ctx,
			"INSERT INTO transaction_details (id, transaction_id, lender_id, borrower_id, amount, label) VALUES (?, ?, ?, ?, ?, ?)",
			d.ID, d.TransactionID, d.LenderID, d.BorrowerID, d.Amount.String(), d.Label,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert detail: %w", err)
		}
		attached[i] = d
	}

	if err := applyBalanceDeltas(ctx, tx, groupID, attached); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return attached, nil
}

// applyBalanceDeltas updates the balance projection rows touched by the
// attached details: +amount for the lender, -amount for the borrower,
// self-referential rows skipped. Runs inside the attach's SQL transaction
// so the projection can never drift from the detail rows it mirrors.
func applyBalanceDeltas(ctx context.Context, tx *sql.Tx, groupID string, details []models.Detail) error {
	deltas := make(map[string]decimal.Decimal)
	for _, d := range details {
		if d.SelfReferential() {
			continue
		}
		deltas[d.LenderID] = deltas[d.LenderID].Add(d.Amount)
		deltas[d.BorrowerID] = deltas[d.BorrowerID].Sub(d.Amount)
	}

	for userID, delta := range deltas {
		if delta.IsZero() {
			continue
		}

		current := decimal.Zero
		var raw string
		err := tx.QueryRowContext(ctx,
			"SELECT balance FROM balances WHERE group_id = ? AND user_id = ?",
			groupID, userID,
		).Scan(&raw)
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("failed to read balance: %w", err)
		}
		if err == nil {
			current, err = decimal.NewFromString(raw)
			if err != nil {
				return fmt.Errorf("corrupt balance for user %s: %w", userID, err)
			}
		}

		updated := current.Add(delta)
		_, err = tx.ExecContext(ctx, `
			INSERT INTO balances (group_id, user_id, balance) VALUES (?, ?, ?)
			ON CONFLICT (group_id, user_id) DO UPDATE SET balance = excluded.balance
		`, groupID, userID, updated.String())
		if err != nil {
			return fmt.Errorf("failed to update balance projection: %w", err)
		}
	}

	return nil
}

// GetTransaction retrieves a transaction with its detail rows.
func (s *SQLiteStore) GetTransaction(ctx context.Context, transactionID string) (*models.Transaction, error) {
	txn := &models.Transaction{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, group_id, created_by, raw_text, created_at, seq FROM transactions WHERE id = ?",
		transactionID,
	).Scan(&txn.ID, &txn.GroupID, &txn.CreatedBy, &txn.RawText, &txn.CreatedAt, &txn.Seq)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction %s: %w", transactionID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, transaction_id, lender_id, borrower_id, amount, label FROM transaction_details WHERE transaction_id = ?",
		transactionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get details: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		txn.Details = append(txn.Details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate details: %w", err)
	}

	return txn, nil
}

// ListTransactions returns a group's transactions with details, in commit
// order.
func (s *SQLiteStore) ListTransactions(ctx context.Context, groupID string) ([]models.Transaction, error) {
	if _, err := s.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, group_id, created_by, raw_text, created_at, seq FROM transactions WHERE group_id = ? ORDER BY seq",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []models.Transaction
	byID := make(map[string]int)
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.GroupID, &t.CreatedBy, &t.RawText, &t.CreatedAt, &t.Seq); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		byID[t.ID] = len(txns)
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	detailRows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.transaction_id, d.lender_id, d.borrower_id, d.amount, d.label
		FROM transaction_details d
		JOIN transactions t ON t.id = d.transaction_id
		WHERE t.group_id = ?
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list details: %w", err)
	}
	defer detailRows.Close()

	for detailRows.Next() {
		d, err := scanDetail(detailRows)
		if err != nil {
			return nil, err
		}
		if i, ok := byID[d.TransactionID]; ok {
			txns[i].Details = append(txns[i].Details, d)
		}
	}
	if err := detailRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate details: %w", err)
	}

	return txns, nil
}

func scanDetail(rows *sql.Rows) (models.Detail, error) {
	var d models.Detail
	var amount string
	if err := rows.Scan(&d.ID, &d.TransactionID, &d.LenderID, &d.BorrowerID, &amount, &d.Label); err != nil {
		return d, fmt.Errorf("failed to scan detail: %w", err)
	}
	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return d, fmt.Errorf("corrupt amount on detail %s: %w", d.ID, err)
	}
	d.Amount = parsed
	return d, nil
}
