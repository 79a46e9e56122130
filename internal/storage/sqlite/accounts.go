package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitchain/internal/models"
)

// CreateAccount persists a new gateway account.
func (s *SQLiteStore) CreateAccount(ctx context.Context, account *models.Account) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.CreatedAt == 0 {
		account.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO accounts (id, email, display_name, address, password_hash, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		account.ID, account.Email, account.DisplayName, account.Address, account.PasswordHash, account.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}

	return nil
}

// AccountByEmail retrieves an account by email.
// Returns nil, nil if not found.
func (s *SQLiteStore) AccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	return s.scanAccount(s.db.QueryRowContext(ctx,
		"SELECT id, email, display_name, address, password_hash, created_at FROM accounts WHERE email = ?",
		email,
	))
}

// AccountByID retrieves an account by ID.
// Returns nil, nil if not found.
func (s *SQLiteStore) AccountByID(ctx context.Context, id string) (*models.Account, error) {
	return s.scanAccount(s.db.QueryRowContext(ctx,
		"SELECT id, email, display_name, address, password_hash, created_at FROM accounts WHERE id = ?",
		id,
	))
}

func (s *SQLiteStore) scanAccount(row *sql.Row) (*models.Account, error) {
	account := &models.Account{}
	err := row.Scan(&account.ID, &account.Email, &account.DisplayName, &account.Address, &account.PasswordHash, &account.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}
