package ledger

import "github.com/mmynk/splitchain/internal/models"

// Pagination bounds a paged query. Zero values mean ledger defaults.
type Pagination struct {
	Limit      uint32 `json:"limit,omitempty"`
	StartAfter uint64 `json:"start_after,omitempty"`
}

// queryMsg is the tagged union of ledger query messages; exactly one
// field is set per request.
type queryMsg struct {
	GetGroup          *getGroupQuery          `json:"get_group,omitempty"`
	GetUserGroups     *getUserGroupsQuery     `json:"get_user_groups,omitempty"`
	GetExpense        *getExpenseQuery        `json:"get_expense,omitempty"`
	GetGroupExpenses  *getGroupExpensesQuery  `json:"get_group_expenses,omitempty"`
	GetDebts          *getDebtsQuery          `json:"get_debts,omitempty"`
	GetBalanceSummary *getBalanceSummaryQuery `json:"get_balance_summary,omitempty"`
}

type getGroupQuery struct {
	ID uint64 `json:"id"`
}

type getUserGroupsQuery struct {
	User       string `json:"user"`
	Limit      uint32 `json:"limit,omitempty"`
	StartAfter uint64 `json:"start_after,omitempty"`
}

type getExpenseQuery struct {
	ID uint64 `json:"id"`
}

type getGroupExpensesQuery struct {
	GroupID    uint64 `json:"group_id"`
	Limit      uint32 `json:"limit,omitempty"`
	StartAfter uint64 `json:"start_after,omitempty"`
}

type getDebtsQuery struct {
	GroupID uint64 `json:"group_id"`
}

type getBalanceSummaryQuery struct {
	GroupID uint64 `json:"group_id"`
	User    string `json:"user"`
}

// executeMsg is the tagged union of state-changing ledger messages.
type executeMsg struct {
	CreateGroup    *createGroupMsg    `json:"create_group,omitempty"`
	JoinGroup      *joinGroupMsg      `json:"join_group,omitempty"`
	LeaveGroup     *leaveGroupMsg     `json:"leave_group,omitempty"`
	AddExpense     *addExpenseMsg     `json:"add_expense,omitempty"`
	SettleDebt     *settleDebtMsg     `json:"settle_debt,omitempty"`
	SettleAllDebts *settleAllDebtsMsg `json:"settle_all_debts,omitempty"`
}

type createGroupMsg struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

type joinGroupMsg struct {
	GroupID uint64 `json:"group_id"`
}

type leaveGroupMsg struct {
	GroupID uint64 `json:"group_id"`
}

type addExpenseMsg struct {
	GroupID     uint64   `json:"group_id"`
	Description string   `json:"description"`
	// Amount is a base-unit integer string on the wire.
	Amount       models.Amount `json:"amount"`
	SplitBetween []string      `json:"split_between"`
}

type settleDebtMsg struct {
	GroupID uint64        `json:"group_id"`
	To      string        `json:"to"`
	Amount  models.Amount `json:"amount"`
}

type settleAllDebtsMsg struct {
	GroupID uint64 `json:"group_id"`
}

// coin is an attached-funds entry on an execute call.
type coin struct {
	Denom  string        `json:"denom"`
	Amount models.Amount `json:"amount"`
}

// executeRequest is the facade's execute envelope.
type executeRequest struct {
	Sender string     `json:"sender"`
	Msg    executeMsg `json:"msg"`
	Funds  []coin     `json:"funds,omitempty"`
}

type groupResponse struct {
	Group *models.Group `json:"group"`
}

type groupsResponse struct {
	Groups  []models.Group `json:"groups"`
	NextKey *uint64        `json:"next_key,omitempty"`
}

type expenseResponse struct {
	Expense *models.Expense `json:"expense"`
}

type expensesResponse struct {
	Expenses []models.Expense `json:"expenses"`
	NextKey  *uint64          `json:"next_key,omitempty"`
}

type bankBalanceResponse struct {
	Denom  string        `json:"denom"`
	Amount models.Amount `json:"amount"`
}

type errorResponse struct {
	Error string `json:"error"`
}
