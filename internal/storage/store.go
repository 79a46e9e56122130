// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/splitchain/internal/models"
)

// Store defines the interface for the gateway's local database: account
// records plus snapshots of ledger state. Snapshots are a read-through
// copy of what the ledger last returned, so balances stay computable
// while the ledger is unreachable. This abstraction allows swapping
// storage backends (SQLite, PostgreSQL, etc.) without changing the
// service layer.
type Store interface {
	// SaveGroup upserts a group snapshot, replacing its member list.
	SaveGroup(ctx context.Context, group *models.Group) error

	// Group retrieves a snapshotted group by its ledger ID.
	// Returns nil, nil if no snapshot exists.
	Group(ctx context.Context, groupID uint64) (*models.Group, error)

	// Groups lists all snapshotted groups that addr is a member of.
	Groups(ctx context.Context, addr string) ([]models.Group, error)

	// SaveExpenses replaces the expense snapshot for a group.
	SaveExpenses(ctx context.Context, groupID uint64, expenses []models.Expense) error

	// GroupExpenses retrieves the snapshotted expenses for a group,
	// ordered by expense ID.
	GroupExpenses(ctx context.Context, groupID uint64) ([]models.Expense, error)

	// CreateAccount persists a new gateway account.
	// The account.ID field will be populated by the store.
	CreateAccount(ctx context.Context, account *models.Account) error

	// AccountByEmail retrieves an account by email.
	// Returns nil, nil if the account is not found.
	AccountByEmail(ctx context.Context, email string) (*models.Account, error)

	// AccountByID retrieves an account by ID.
	// Returns nil, nil if the account is not found.
	AccountByID(ctx context.Context, id string) (*models.Account, error)

	// Close releases any resources held by the store.
	Close() error
}
