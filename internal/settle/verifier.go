// Package settle converts a you-owe-X observation into a funds transfer
// against the remote ledger without double-paying, paying a stale
// amount, or settling a debt that no longer exists. Its only defense
// against concurrent settlements by other clients is re-verification
// immediately before submission; a verified-then-rejected outcome is a
// normal result, not a bug.
package settle

import (
	"context"
	"fmt"

	"github.com/mmynk/splitchain/internal/ledger"
	"github.com/mmynk/splitchain/internal/models"
)

// Verifier re-checks debt state and payer funds against the ledger. It
// never consults a cached balance summary: summaries can be stale
// relative to settlements racing in from other clients.
type Verifier struct {
	querier ledger.Querier
}

// NewVerifier creates a verifier over the given ledger query surface.
func NewVerifier(querier ledger.Querier) *Verifier {
	return &Verifier{querier: querier}
}

// DebtExists reports whether the ledger currently holds a non-zero debt
// from debtor to creditor in the group. The ledger decode layer already
// normalizes both wire conventions ({from,to} and {debtor,creditor})
// and drops zero amounts, so a plain match suffices here.
func (v *Verifier) DebtExists(ctx context.Context, groupID uint64, debtor, creditor string) (bool, error) {
	debts, err := v.querier.Debts(ctx, groupID)
	if err != nil {
		return false, fmt.Errorf("verify debt: %w", err)
	}
	for _, d := range debts {
		if d.From == debtor && d.To == creditor && d.Amount != 0 {
			return true, nil
		}
	}
	return false, nil
}

// SufficientFunds reports whether the payer's spendable balance covers
// the amount.
func (v *Verifier) SufficientFunds(ctx context.Context, payer string, amount models.Amount) (bool, error) {
	balance, err := v.querier.BankBalance(ctx, payer)
	if err != nil {
		return false, fmt.Errorf("verify funds: %w", err)
	}
	return balance >= amount, nil
}
