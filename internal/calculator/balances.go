// Package calculator implements the client-side balance reconciliation
// engine: it turns an expense history into per-expense obligations, nets
// them into pairwise debts, and summarizes them from one member's
// perspective.
//
// Everything here is pure integer arithmetic over base currency units.
// The remote ledger performs the same netting authoritatively; this
// package exists as the display fallback when the ledger omits a balance
// summary, and must therefore mirror the ledger's algorithm exactly,
// including its floor-division rounding.
package calculator

import (
	"sort"

	"github.com/mmynk/splitchain/internal/models"
)

// splitOption configures obligation generation.
type splitOption struct {
	distributeRemainder bool
}

// Option adjusts how obligations are derived from expenses.
type Option func(*splitOption)

// WithRemainderDistribution spreads the floor-division remainder across
// the non-payer split members, one base unit each in address order, so no
// currency is silently dropped. The ledger does NOT do this; enabling it
// makes local summaries diverge from ledger debts. Off by default.
func WithRemainderDistribution() Option {
	return func(o *splitOption) { o.distributeRemainder = true }
}

// Obligations expands expenses into one-directional per-expense
// obligations: for every split member other than the payer, an obligation
// of floor(amount / |split|) toward the payer.
//
// Duplicate split members are collapsed and expenses with an empty split
// are skipped entirely. The division remainder is absorbed: the sum of
// per-person shares may be less than the expense amount, and nobody owes
// or is credited the difference. This matches the ledger's own arithmetic
// and is a known rounding loss, not an error.
func Obligations(expenses []models.Expense, opts ...Option) []models.PairwiseObligation {
	var cfg splitOption
	for _, opt := range opts {
		opt(&cfg)
	}

	var obligations []models.PairwiseObligation
	for _, exp := range expenses {
		split := dedupe(exp.SplitBetween)
		if len(split) == 0 || exp.Amount < 0 {
			continue
		}

		perPerson := exp.Amount / models.Amount(len(split))

		var debtors []string
		for _, member := range split {
			if member == exp.PaidBy {
				continue
			}
			debtors = append(debtors, member)
		}
		sort.Strings(debtors)

		remainder := exp.Amount - perPerson*models.Amount(len(split))
		for i, debtor := range debtors {
			amount := perPerson
			if cfg.distributeRemainder && models.Amount(i) < remainder {
				amount++
			}
			if amount == 0 {
				continue
			}
			obligations = append(obligations, models.PairwiseObligation{
				Debtor:   debtor,
				Creditor: exp.PaidBy,
				Amount:   amount,
			})
		}
	}
	return obligations
}

// ExpenseRemainder returns the unattributed base units lost to floor
// division for a single expense.
func ExpenseRemainder(exp models.Expense) models.Amount {
	split := dedupe(exp.SplitBetween)
	if len(split) == 0 || exp.Amount <= 0 {
		return 0
	}
	return exp.Amount % models.Amount(len(split))
}

// Compute derives the balance summary for one member from the full
// expense history. It carries no state between calls: every invocation
// re-derives everything from the expenses passed in, so it can be re-run
// whenever a fresh page of expenses arrives.
func Compute(expenses []models.Expense, perspective string, opts ...Option) models.BalanceSummary {
	nets := netByPair(Obligations(expenses, opts...))

	summary := models.BalanceSummary{Balances: []models.Balance{}}
	for _, pair := range sortedPairs(nets) {
		net := nets[pair]
		if net == 0 {
			continue
		}
		if pair.lo != perspective && pair.hi != perspective {
			continue
		}

		// net > 0 means hi owes lo.
		debtor, creditor := pair.hi, pair.lo
		amount := net
		if net < 0 {
			debtor, creditor = pair.lo, pair.hi
			amount = -net
		}

		entry := models.Balance{Amount: amount}
		if debtor == perspective {
			entry.OtherUser = creditor
			entry.Direction = models.YouOwe
			summary.TotalOwed += amount
		} else {
			entry.OtherUser = debtor
			entry.Direction = models.TheyOwe
			summary.TotalOwedTo += amount
		}
		summary.Balances = append(summary.Balances, entry)
	}

	summary.NetBalance = summary.TotalOwedTo - summary.TotalOwed
	return summary
}

// pairKey identifies an unordered member pair. lo is always the
// lexicographically smaller address so obligations in either direction
// land in the same bucket.
type pairKey struct {
	lo, hi string
}

func makePair(a, b string) pairKey {
	if a < b {
		return pairKey{lo: a, hi: b}
	}
	return pairKey{lo: b, hi: a}
}

// netByPair folds obligations into one signed net per unordered pair.
// Positive means hi owes lo; opposing directions cancel by subtraction.
func netByPair(obligations []models.PairwiseObligation) map[pairKey]models.Amount {
	nets := make(map[pairKey]models.Amount)
	for _, ob := range obligations {
		if ob.Debtor == ob.Creditor || ob.Amount == 0 {
			continue
		}
		pair := makePair(ob.Debtor, ob.Creditor)
		if ob.Debtor == pair.hi {
			nets[pair] += ob.Amount
		} else {
			nets[pair] -= ob.Amount
		}
	}
	return nets
}

func sortedPairs(nets map[pairKey]models.Amount) []pairKey {
	pairs := make([]pairKey, 0, len(nets))
	for pair := range nets {
		pairs = append(pairs, pair)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].lo != pairs[j].lo {
			return pairs[i].lo < pairs[j].lo
		}
		return pairs[i].hi < pairs[j].hi
	})
	return pairs
}

// dedupe collapses duplicate addresses, preserving first-seen order.
func dedupe(addrs []string) []string {
	if len(addrs) <= 1 {
		return addrs
	}
	seen := make(map[string]struct{}, len(addrs))
	out := addrs[:0:0]
	for _, a := range addrs {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
