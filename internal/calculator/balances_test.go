package calculator

import (
	"testing"

	"github.com/mmynk/splitchain/internal/models"
)

func expense(amount models.Amount, paidBy string, split ...string) models.Expense {
	return models.Expense{
		Amount:       amount,
		PaidBy:       paidBy,
		SplitBetween: split,
	}
}

func TestObligations(t *testing.T) {
	tests := []struct {
		name     string
		expenses []models.Expense
		want     []models.PairwiseObligation
	}{
		{
			name:     "three-way split credits payer",
			expenses: []models.Expense{expense(300, "alice", "alice", "bob", "carol")},
			want: []models.PairwiseObligation{
				{Debtor: "bob", Creditor: "alice", Amount: 100},
				{Debtor: "carol", Creditor: "alice", Amount: 100},
			},
		},
		{
			name:     "payer outside split still collects full shares",
			expenses: []models.Expense{expense(100, "alice", "bob", "carol")},
			want: []models.PairwiseObligation{
				{Debtor: "bob", Creditor: "alice", Amount: 50},
				{Debtor: "carol", Creditor: "alice", Amount: 50},
			},
		},
		{
			name:     "floor division drops the remainder",
			expenses: []models.Expense{expense(100, "alice", "alice", "bob", "carol")},
			want: []models.PairwiseObligation{
				{Debtor: "bob", Creditor: "alice", Amount: 33},
				{Debtor: "carol", Creditor: "alice", Amount: 33},
			},
		},
		{
			name:     "empty split is skipped",
			expenses: []models.Expense{expense(500, "alice")},
			want:     nil,
		},
		{
			name:     "duplicate split members collapse",
			expenses: []models.Expense{expense(100, "alice", "alice", "bob", "bob")},
			want: []models.PairwiseObligation{
				{Debtor: "bob", Creditor: "alice", Amount: 50},
			},
		},
		{
			name:     "payer-only split produces nothing",
			expenses: []models.Expense{expense(100, "alice", "alice")},
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Obligations(tt.expenses)
			if len(got) != len(tt.want) {
				t.Fatalf("Obligations() returned %d obligations, want %d: %+v", len(got), len(tt.want), got)
			}
			for i, ob := range got {
				if ob != tt.want[i] {
					t.Errorf("obligation[%d] = %+v, want %+v", i, ob, tt.want[i])
				}
			}
		})
	}
}

func TestExpenseRemainder(t *testing.T) {
	exp := expense(100, "alice", "alice", "bob", "carol")
	if got := ExpenseRemainder(exp); got != 1 {
		t.Errorf("ExpenseRemainder() = %d, want 1", got)
	}

	// Total attributed must be amount - remainder.
	var attributed models.Amount
	for _, ob := range Obligations([]models.Expense{exp}) {
		attributed += ob.Amount
	}
	// The payer's own share (33) is also part of the attribution.
	if attributed+33+ExpenseRemainder(exp) != exp.Amount {
		t.Errorf("attribution does not account for the expense: owed=%d remainder=%d", attributed, ExpenseRemainder(exp))
	}
}

func TestRemainderDistribution(t *testing.T) {
	exp := expense(100, "alice", "alice", "bob", "carol")

	got := Obligations([]models.Expense{exp}, WithRemainderDistribution())
	if len(got) != 2 {
		t.Fatalf("Obligations() returned %d obligations, want 2", len(got))
	}
	// Remainder of 1 goes to the first debtor in address order.
	if got[0].Amount != 34 || got[1].Amount != 33 {
		t.Errorf("distributed amounts = %d, %d, want 34, 33", got[0].Amount, got[1].Amount)
	}
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name        string
		expenses    []models.Expense
		perspective string
		validate    func(t *testing.T, summary models.BalanceSummary)
	}{
		{
			name:        "single expense from payer perspective",
			expenses:    []models.Expense{expense(300, "alice", "alice", "bob", "carol")},
			perspective: "alice",
			validate: func(t *testing.T, s models.BalanceSummary) {
				if s.TotalOwedTo != 200 || s.TotalOwed != 0 {
					t.Errorf("totals = owed %d / owed to %d, want 0 / 200", s.TotalOwed, s.TotalOwedTo)
				}
				if s.NetBalance != 200 {
					t.Errorf("net balance = %d, want 200", s.NetBalance)
				}
				if len(s.Balances) != 2 {
					t.Fatalf("got %d balances, want 2", len(s.Balances))
				}
				for _, b := range s.Balances {
					if b.Direction != models.TheyOwe || b.Amount != 100 {
						t.Errorf("balance vs %s = %+v, want TheyOwe 100", b.OtherUser, b)
					}
				}
			},
		},
		{
			name: "opposing expenses net by subtraction",
			expenses: []models.Expense{
				expense(100, "alice", "alice", "bob"),
				expense(60, "bob", "alice", "bob"),
			},
			perspective: "bob",
			validate: func(t *testing.T, s models.BalanceSummary) {
				// bob owes alice 50, alice owes bob 30, net bob -> alice 20.
				if len(s.Balances) != 1 {
					t.Fatalf("got %d balances, want 1: %+v", len(s.Balances), s.Balances)
				}
				b := s.Balances[0]
				if b.OtherUser != "alice" || b.Direction != models.YouOwe || b.Amount != 20 {
					t.Errorf("balance = %+v, want YouOwe alice 20", b)
				}
				if s.NetBalance != -20 {
					t.Errorf("net balance = %d, want -20", s.NetBalance)
				}
			},
		},
		{
			name: "fully cancelled pair is omitted",
			expenses: []models.Expense{
				expense(100, "alice", "alice", "bob"),
				expense(100, "bob", "alice", "bob"),
			},
			perspective: "alice",
			validate: func(t *testing.T, s models.BalanceSummary) {
				if len(s.Balances) != 0 {
					t.Errorf("got %d balances, want none: %+v", len(s.Balances), s.Balances)
				}
				if s.NetBalance != 0 {
					t.Errorf("net balance = %d, want 0", s.NetBalance)
				}
			},
		},
		{
			name: "pairs not touching the perspective are filtered",
			expenses: []models.Expense{
				expense(100, "bob", "bob", "carol"),
			},
			perspective: "alice",
			validate: func(t *testing.T, s models.BalanceSummary) {
				if len(s.Balances) != 0 {
					t.Errorf("got %d balances, want none: %+v", len(s.Balances), s.Balances)
				}
			},
		},
		{
			name:        "no expenses yields zero summary",
			expenses:    nil,
			perspective: "alice",
			validate: func(t *testing.T, s models.BalanceSummary) {
				if s.TotalOwed != 0 || s.TotalOwedTo != 0 || s.NetBalance != 0 || len(s.Balances) != 0 {
					t.Errorf("summary = %+v, want all zero", s)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validate(t, Compute(tt.expenses, tt.perspective))
		})
	}
}

// Summary totals must always be the sums of their direction's entries.
func TestComputeTotalsInvariant(t *testing.T) {
	expenses := []models.Expense{
		expense(301, "alice", "alice", "bob", "carol"),
		expense(99, "bob", "alice", "bob"),
		expense(250, "carol", "bob", "carol", "alice"),
		expense(10, "bob", "bob", "carol"),
	}

	for _, who := range []string{"alice", "bob", "carol"} {
		s := Compute(expenses, who)
		var owed, owedTo models.Amount
		for _, b := range s.Balances {
			switch b.Direction {
			case models.YouOwe:
				owed += b.Amount
			case models.TheyOwe:
				owedTo += b.Amount
			}
			if b.Amount <= 0 {
				t.Errorf("%s: non-positive balance entry %+v", who, b)
			}
			if b.OtherUser == who {
				t.Errorf("%s: self-balance entry %+v", who, b)
			}
		}
		if owed != s.TotalOwed || owedTo != s.TotalOwedTo {
			t.Errorf("%s: totals %d/%d do not match entries %d/%d", who, s.TotalOwed, s.TotalOwedTo, owed, owedTo)
		}
		if s.NetBalance != s.TotalOwedTo-s.TotalOwed {
			t.Errorf("%s: net balance %d != %d - %d", who, s.NetBalance, s.TotalOwedTo, s.TotalOwed)
		}
	}
}

// The group is zero-sum: everything owed is owed to someone. Rounding
// remainders never enter the debt graph, so the identity is exact.
func TestComputeZeroSum(t *testing.T) {
	expenses := []models.Expense{
		expense(100, "alice", "alice", "bob", "carol"),
		expense(77, "bob", "alice", "bob", "carol"),
		expense(1003, "carol", "alice", "carol"),
	}
	members := []string{"alice", "bob", "carol"}

	var totalOwed, totalOwedTo models.Amount
	for _, who := range members {
		s := Compute(expenses, who)
		totalOwed += s.TotalOwed
		totalOwedTo += s.TotalOwedTo
	}
	if totalOwed != totalOwedTo {
		t.Errorf("group is not zero-sum: owed %d vs owed to %d", totalOwed, totalOwedTo)
	}
}
