package calculator

import (
	"sort"

	"github.com/mmynk/splitchain/internal/models"
)

// Consolidate reduces a list of one-directional obligations to the
// minimal set of net debts: at most one NetDebt per unordered pair,
// directed toward the net creditor, amount always positive. Zero-net
// pairs disappear.
//
// Same-direction duplicates are summed first, then opposing directions
// between the same two parties are netted by subtraction. The result is
// sorted by (from, to) so the operation is deterministic and idempotent:
// consolidating an already-consolidated list returns it unchanged.
func Consolidate(obligations []models.PairwiseObligation) []models.NetDebt {
	nets := netByPair(obligations)

	debts := make([]models.NetDebt, 0, len(nets))
	for pair, net := range nets {
		if net == 0 {
			continue
		}
		if net > 0 {
			debts = append(debts, models.NetDebt{From: pair.hi, To: pair.lo, Amount: net})
		} else {
			debts = append(debts, models.NetDebt{From: pair.lo, To: pair.hi, Amount: -net})
		}
	}

	sort.Slice(debts, func(i, j int) bool {
		if debts[i].From != debts[j].From {
			return debts[i].From < debts[j].From
		}
		return debts[i].To < debts[j].To
	})
	return debts
}

// AsObligations converts net debts back into obligation form, mostly so
// consolidated output can be fed through Consolidate again.
func AsObligations(debts []models.NetDebt) []models.PairwiseObligation {
	obligations := make([]models.PairwiseObligation, 0, len(debts))
	for _, d := range debts {
		obligations = append(obligations, models.PairwiseObligation{
			Debtor:   d.From,
			Creditor: d.To,
			Amount:   d.Amount,
		})
	}
	return obligations
}

// OwedBy sums everything the given address owes across a debt set. The
// settle-all flow uses this to recompute the aggregate transfer instead
// of trusting a caller-supplied total.
func OwedBy(debts []models.NetDebt, debtor string) models.Amount {
	var total models.Amount
	for _, d := range debts {
		if d.From == debtor {
			total += d.Amount
		}
	}
	return total
}
