package models

import (
	"encoding/json"
	"fmt"
)

// Direction says which way a balance points from the perspective user.
type Direction int8

const (
	// YouOwe means the perspective user owes the counterparty.
	YouOwe Direction = 0
	// TheyOwe means the counterparty owes the perspective user.
	TheyOwe Direction = 1
)

// String implements fmt.Stringer.
func (d Direction) String() string {
	if d == TheyOwe {
		return "they_owe"
	}
	return "you_owe"
}

// MarshalJSON encodes the gateway convention: 0 = you owe, 1 = they owe.
func (d Direction) MarshalJSON() ([]byte, error) {
	return json.Marshal(int8(d))
}

// UnmarshalJSON accepts both the ledger convention (-1 owes / 1 owed) and
// the gateway convention (0 owes / 1 owed). Anything <= 0 reads as YouOwe.
func (d *Direction) UnmarshalJSON(data []byte) error {
	var n int8
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid direction %s: %w", string(data), err)
	}
	if n > 0 {
		*d = TheyOwe
	} else {
		*d = YouOwe
	}
	return nil
}

// PairwiseObligation is one per-expense amount owed by a split member to
// the payer. Obligations are ephemeral; they only exist between the
// balance engine and the consolidator.
type PairwiseObligation struct {
	Debtor   string
	Creditor string
	Amount   Amount
}

// NetDebt is the consolidated, directional, non-zero balance between
// exactly two members. For any unordered pair at most one NetDebt exists.
type NetDebt struct {
	// From is the debtor.
	From string `json:"from"`
	// To is the creditor.
	To string `json:"to"`
	// Amount is always positive.
	Amount Amount `json:"amount"`
}

// Balance is one entry of a BalanceSummary: the net position against a
// single counterparty.
type Balance struct {
	OtherUser string    `json:"other_user"`
	Amount    Amount    `json:"amount"`
	Direction Direction `json:"direction"`
}

// BalanceSummary is everything one member owes and is owed within a group.
// It is recomputed from scratch on every refresh and never cached across a
// settlement.
type BalanceSummary struct {
	// TotalOwed is the sum of amounts where the perspective user is debtor.
	TotalOwed Amount `json:"total_owed"`
	// TotalOwedTo is the sum of amounts where the perspective user is creditor.
	TotalOwedTo Amount `json:"total_owed_to"`
	// NetBalance is TotalOwedTo - TotalOwed. Negative means net debtor.
	NetBalance Amount `json:"net_balance"`
	// Balances holds one entry per counterparty with a non-zero net.
	Balances []Balance `json:"balances"`
}

// SettlementRequest carries a user-selected settlement into the
// orchestrator. Amount 0 on a settle-all request asks the orchestrator to
// recompute the aggregate itself.
type SettlementRequest struct {
	GroupID uint64 `json:"group_id"`
	// Payer is the debtor submitting the settlement.
	Payer string `json:"payer"`
	// Payee is the creditor. Empty for settle-all.
	Payee string `json:"payee,omitempty"`
	// Amount is the exact value to transfer.
	Amount Amount `json:"amount"`
	// All marks an aggregate settle-all request.
	All bool `json:"all,omitempty"`
}
