package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mmynk/splitchat/internal/models"
	"github.com/mmynk/splitchat/internal/storage"
)

// CreateUser inserts a new user into the database.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, display_name, password_hash, upi_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.DisplayName,
		user.PasswordHash,
		user.UPIHandle,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByEmail retrieves a user by their email address.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email", email)
}

// GetUserByID retrieves a user by their ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "id", id)
}

func (s *SQLiteStore) getUser(ctx context.Context, column, value string) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT id, email, display_name, password_hash, upi_id, created_at, updated_at
		FROM users
		WHERE %s = ?
	`, column)

	user := &models.User{}
	err := s.db.QueryRowContext(ctx, query, value).Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.PasswordHash,
		&user.UPIHandle,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil // User not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}

	return user, nil
}

// SetUPIHandle stores a payment handle on the user record.
func (s *SQLiteStore) SetUPIHandle(ctx context.Context, userID, handle string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE users SET upi_id = ?, updated_at = ? WHERE id = ?",
		handle, time.Now().Unix(), userID,
	)
	if err != nil {
		return fmt.Errorf("failed to set payment handle: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to set payment handle: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %s: %w", userID, storage.ErrNotFound)
	}
	return nil
}
