package ledger

import (
	"context"

	"github.com/mmynk/splitchain/internal/models"
)

// Querier is the read-only half of the ledger surface. All operations
// are idempotent.
type Querier interface {
	// Group fetches a single group. Returns ErrNotFound for unknown ids.
	Group(ctx context.Context, id uint64) (*models.Group, error)

	// UserGroups lists the groups a user belongs to, one page at a time.
	UserGroups(ctx context.Context, user string, page Pagination) ([]models.Group, *uint64, error)

	// Expense fetches a single expense record.
	Expense(ctx context.Context, id uint64) (*models.Expense, error)

	// GroupExpenses lists one page of a group's expense log.
	GroupExpenses(ctx context.Context, groupID uint64, page Pagination) ([]models.Expense, *uint64, error)

	// AllGroupExpenses walks every page of a group's expense log.
	AllGroupExpenses(ctx context.Context, groupID uint64) ([]models.Expense, error)

	// Debts returns the current net debts of a group, normalized.
	Debts(ctx context.Context, groupID uint64) ([]models.NetDebt, error)

	// BalanceSummary returns the ledger's own summary for a user, or
	// (nil, nil) when the ledger does not offer one; callers then fall
	// back to local computation.
	BalanceSummary(ctx context.Context, groupID uint64, user string) (*models.BalanceSummary, error)

	// BankBalance returns the spendable funds of an address.
	BankBalance(ctx context.Context, address string) (models.Amount, error)
}

// Executor is the state-changing half of the ledger surface. Every call
// returns the ledger's transaction result on success and an *ExecError
// when the ledger rejects the submission.
type Executor interface {
	// CreateGroup creates a group. The sender is always included as a
	// member; duplicate members are collapsed before submission.
	CreateGroup(ctx context.Context, sender, name string, members []string) (*models.TxResult, error)

	JoinGroup(ctx context.Context, sender string, groupID uint64) (*models.TxResult, error)
	LeaveGroup(ctx context.Context, sender string, groupID uint64) (*models.TxResult, error)

	// AddExpense records a cost. An empty split means the ledger splits
	// between all current group members.
	AddExpense(ctx context.Context, sender string, groupID uint64, description string, amount models.Amount, splitBetween []string) (*models.TxResult, error)

	// SettleDebt pays `amount` toward the sender's debt to `to`,
	// attaching the amount as transferred funds.
	SettleDebt(ctx context.Context, sender string, groupID uint64, to string, amount models.Amount) (*models.TxResult, error)

	// SettleAllDebts clears everything the sender owes in the group,
	// attaching `total` as transferred funds.
	SettleAllDebts(ctx context.Context, sender string, groupID uint64, total models.Amount) (*models.TxResult, error)
}

// Ledger is the full client surface.
type Ledger interface {
	Querier
	Executor
}
