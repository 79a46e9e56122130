package models

// Group represents an expense-sharing group as stored by the remote ledger.
type Group struct {
	// ID is the ledger-assigned group identifier.
	ID uint64 `json:"id"`

	// Name is the display name of the group.
	Name string `json:"name"`

	// Creator is the address that created the group. The creator is
	// always a member.
	Creator string `json:"creator"`

	// Members are the addresses currently in the group.
	Members []string `json:"members"`

	// CreatedAt is the Unix timestamp the ledger recorded at creation.
	CreatedAt int64 `json:"created_at"`
}

// HasMember reports whether addr is currently in the group.
func (g *Group) HasMember(addr string) bool {
	for _, m := range g.Members {
		if m == addr {
			return true
		}
	}
	return false
}

// Expense is an immutable cost record. It is created once by the remote
// ledger when a member records a cost and never mutated afterwards.
type Expense struct {
	// ID is the ledger-assigned expense identifier.
	ID uint64 `json:"id"`

	// GroupID is the owning group.
	GroupID uint64 `json:"group_id"`

	// Description is free text entered by the member.
	Description string `json:"description"`

	// Amount is the full cost in base currency units.
	Amount Amount `json:"amount"`

	// PaidBy is the address of the member who fronted the cost.
	PaidBy string `json:"paid_by"`

	// SplitBetween lists the member addresses sharing the cost. Order is
	// irrelevant and duplicates are collapsed by the ledger. PaidBy may or
	// may not be included. An empty split produces no obligations.
	SplitBetween []string `json:"split_between"`

	// CreatedAt is a logical timestamp used for ordering and display only.
	CreatedAt int64 `json:"created_at"`
}
