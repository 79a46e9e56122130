package settle

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/mmynk/splitchain/internal/ledger"
	"github.com/mmynk/splitchain/internal/models"
)

// fakeLedger implements ledger.Ledger in memory with the remote
// ledger's settle semantics: settle_debt reduces or removes the exact
// (debtor, creditor) entry, settle_all clears everything the sender
// owes, both requiring attached funds to cover the transfer.
type fakeLedger struct {
	groupID  uint64
	debts    []models.NetDebt
	balances map[string]models.Amount

	debtsErr   error // injected on Debts
	balanceErr error // injected on BankBalance
	settleErr  error // injected on settle executes

	settleCalls int
}

var _ ledger.Ledger = (*fakeLedger)(nil)

func (f *fakeLedger) Group(ctx context.Context, id uint64) (*models.Group, error) {
	return nil, ledger.ErrNotFound
}

func (f *fakeLedger) UserGroups(ctx context.Context, user string, page ledger.Pagination) ([]models.Group, *uint64, error) {
	return nil, nil, nil
}

func (f *fakeLedger) Expense(ctx context.Context, id uint64) (*models.Expense, error) {
	return nil, ledger.ErrNotFound
}

func (f *fakeLedger) GroupExpenses(ctx context.Context, groupID uint64, page ledger.Pagination) ([]models.Expense, *uint64, error) {
	return nil, nil, nil
}

func (f *fakeLedger) AllGroupExpenses(ctx context.Context, groupID uint64) ([]models.Expense, error) {
	return nil, nil
}

func (f *fakeLedger) Debts(ctx context.Context, groupID uint64) ([]models.NetDebt, error) {
	if f.debtsErr != nil {
		return nil, f.debtsErr
	}
	out := make([]models.NetDebt, len(f.debts))
	copy(out, f.debts)
	return out, nil
}

func (f *fakeLedger) BalanceSummary(ctx context.Context, groupID uint64, user string) (*models.BalanceSummary, error) {
	return nil, nil
}

func (f *fakeLedger) BankBalance(ctx context.Context, address string) (models.Amount, error) {
	if f.balanceErr != nil {
		return 0, f.balanceErr
	}
	return f.balances[address], nil
}

func (f *fakeLedger) CreateGroup(ctx context.Context, sender, name string, members []string) (*models.TxResult, error) {
	return &models.TxResult{TransactionHash: "TX"}, nil
}

func (f *fakeLedger) JoinGroup(ctx context.Context, sender string, groupID uint64) (*models.TxResult, error) {
	return &models.TxResult{TransactionHash: "TX"}, nil
}

func (f *fakeLedger) LeaveGroup(ctx context.Context, sender string, groupID uint64) (*models.TxResult, error) {
	return &models.TxResult{TransactionHash: "TX"}, nil
}

func (f *fakeLedger) AddExpense(ctx context.Context, sender string, groupID uint64, description string, amount models.Amount, splitBetween []string) (*models.TxResult, error) {
	return &models.TxResult{TransactionHash: "TX"}, nil
}

func (f *fakeLedger) SettleDebt(ctx context.Context, sender string, groupID uint64, to string, amount models.Amount) (*models.TxResult, error) {
	f.settleCalls++
	if f.settleErr != nil {
		return nil, f.settleErr
	}
	for i, d := range f.debts {
		if d.From != sender || d.To != to {
			continue
		}
		if amount > d.Amount {
			return nil, &ledger.ExecError{Message: "invalid payment: cannot pay more than owed"}
		}
		if f.balances[sender] < amount {
			return nil, &ledger.ExecError{Message: "insufficient funds"}
		}
		f.balances[sender] -= amount
		f.balances[to] += amount
		if d.Amount == amount {
			f.debts = append(f.debts[:i], f.debts[i+1:]...)
		} else {
			f.debts[i].Amount -= amount
		}
		return &models.TxResult{
			TransactionHash: fmt.Sprintf("TX%d", f.settleCalls),
			Height:          int64(100 + f.settleCalls),
			Events: []models.Event{{
				Type: "wasm",
				Attributes: []models.EventAttribute{
					{Key: "action", Value: "settle_debt"},
					{Key: "from", Value: sender},
					{Key: "to", Value: to},
				},
			}},
		}, nil
	}
	return nil, &ledger.ExecError{Message: "no debt exists between users"}
}

func (f *fakeLedger) SettleAllDebts(ctx context.Context, sender string, groupID uint64, total models.Amount) (*models.TxResult, error) {
	f.settleCalls++
	if f.settleErr != nil {
		return nil, f.settleErr
	}
	var owed models.Amount
	for _, d := range f.debts {
		if d.From == sender {
			owed += d.Amount
		}
	}
	if owed == 0 {
		return nil, &ledger.ExecError{Message: "no debt exists between users"}
	}
	if total < owed {
		return nil, &ledger.ExecError{Message: "insufficient funds"}
	}
	kept := f.debts[:0]
	for _, d := range f.debts {
		if d.From == sender {
			f.balances[sender] -= d.Amount
			f.balances[d.To] += d.Amount
			continue
		}
		kept = append(kept, d)
	}
	f.debts = kept
	return &models.TxResult{
		TransactionHash: "TXALL",
		Events: []models.Event{{
			Type: "wasm",
			Attributes: []models.EventAttribute{
				{Key: "action", Value: "settle_all_debts"},
				{Key: "total_paid", Value: owed.String()},
			},
		}},
	}, nil
}

func newFake() *fakeLedger {
	return &fakeLedger{
		groupID: 1,
		debts: []models.NetDebt{
			{From: "bob", To: "alice", Amount: 100},
			{From: "bob", To: "carol", Amount: 50},
		},
		balances: map[string]models.Amount{
			"bob":   1_000,
			"alice": 10,
			"carol": 0,
		},
	}
}

func TestSettleSingleSucceeds(t *testing.T) {
	fake := newFake()
	orch := New(fake)

	result, err := orch.Settle(context.Background(), models.SettlementRequest{
		GroupID: 1,
		Payer:   "bob",
		Payee:   "alice",
		Amount:  100,
	})
	if err != nil {
		t.Fatalf("Settle() error: %v", err)
	}
	if result.State != StateSucceeded {
		t.Fatalf("state = %v (%s), want succeeded", result.State, result.Reason)
	}
	if result.Tx == nil || result.Tx.Action() != "settle_debt" {
		t.Errorf("tx = %+v, want settle_debt confirmation", result.Tx)
	}
	if fake.settleCalls != 1 {
		t.Errorf("settle calls = %d, want exactly 1", fake.settleCalls)
	}

	// Settlement monotonicity: the pair is gone after a full settlement.
	debts, _ := fake.Debts(context.Background(), 1)
	for _, d := range debts {
		if d.From == "bob" && d.To == "alice" {
			t.Errorf("debt bob->alice survived settlement: %+v", d)
		}
	}
}

func TestSettleRejectedWhenDebtMissing(t *testing.T) {
	fake := newFake()
	orch := New(fake)

	// alice owes nobody; the debt was "already settled".
	result, err := orch.Settle(context.Background(), models.SettlementRequest{
		GroupID: 1,
		Payer:   "alice",
		Payee:   "bob",
		Amount:  100,
	})
	if err != nil {
		t.Fatalf("Settle() error: %v", err)
	}
	if result.State != StateRejected {
		t.Fatalf("state = %v, want rejected", result.State)
	}
	if result.Reason != ReasonDebtNotFound {
		t.Errorf("reason = %q, want %q", result.Reason, ReasonDebtNotFound)
	}
	if fake.settleCalls != 0 {
		t.Errorf("settle calls = %d, want 0 (no submission on rejection)", fake.settleCalls)
	}
	// Ledger state untouched.
	if len(fake.debts) != 2 {
		t.Errorf("ledger debts mutated on rejection: %+v", fake.debts)
	}
}

func TestSettleRejectedOnInsufficientFunds(t *testing.T) {
	fake := newFake()
	fake.balances["bob"] = 99
	orch := New(fake)

	result, err := orch.Settle(context.Background(), models.SettlementRequest{
		GroupID: 1,
		Payer:   "bob",
		Payee:   "alice",
		Amount:  100,
	})
	if err != nil {
		t.Fatalf("Settle() error: %v", err)
	}
	if result.State != StateRejected || result.Reason != ReasonInsufficientFunds {
		t.Errorf("result = %v/%q, want rejected/insufficient funds", result.State, result.Reason)
	}
	if fake.settleCalls != 0 {
		t.Errorf("settle calls = %d, want 0", fake.settleCalls)
	}
}

func TestSettleAllRecomputesOmittedTotal(t *testing.T) {
	fake := newFake()
	orch := New(fake)

	result, err := orch.Settle(context.Background(), models.SettlementRequest{
		GroupID: 1,
		Payer:   "bob",
		All:     true,
	})
	if err != nil {
		t.Fatalf("Settle() error: %v", err)
	}
	if result.State != StateSucceeded {
		t.Fatalf("state = %v (%s), want succeeded", result.State, result.Reason)
	}
	// bob owes alice 100 and carol 50; the aggregate must be recomputed
	// from the ledger, not guessed.
	if result.Amount != 150 {
		t.Errorf("aggregate = %d, want 150", result.Amount)
	}
	if len(fake.debts) != 0 {
		t.Errorf("debts remain after settle-all: %+v", fake.debts)
	}
	if fake.balances["alice"] != 110 || fake.balances["carol"] != 50 {
		t.Errorf("creditor balances = %+v", fake.balances)
	}
}

func TestSettleAllRejectedWhenNothingOwed(t *testing.T) {
	fake := newFake()
	orch := New(fake)

	result, err := orch.Settle(context.Background(), models.SettlementRequest{
		GroupID: 1,
		Payer:   "carol", // carol owes nothing
		All:     true,
	})
	if err != nil {
		t.Fatalf("Settle() error: %v", err)
	}
	if result.State != StateRejected || result.Reason != ReasonNothingToSettle {
		t.Errorf("result = %v/%q, want rejected/nothing to settle", result.State, result.Reason)
	}
	if fake.settleCalls != 0 {
		t.Errorf("settle calls = %d, want 0", fake.settleCalls)
	}
}

func TestSettleFailsOnLedgerRejection(t *testing.T) {
	fake := newFake()
	// Verification passes, then the ledger rejects the submission: the
	// race another client won.
	fake.settleErr = &ledger.ExecError{Message: "no debt exists between users"}
	orch := New(fake)

	result, err := orch.Settle(context.Background(), models.SettlementRequest{
		GroupID: 1,
		Payer:   "bob",
		Payee:   "alice",
		Amount:  100,
	})
	if err != nil {
		t.Fatalf("Settle() error: %v", err)
	}
	if result.State != StateFailed {
		t.Fatalf("state = %v, want failed", result.State)
	}
	if result.Retryable {
		t.Error("ledger rejection marked retryable; it must not be auto-retried")
	}
	if result.Reason != "No debt exists: the ledger found no outstanding debt to settle." {
		t.Errorf("reason = %q", result.Reason)
	}
}

func TestSettleFailsRetryableWhenLedgerUnreachable(t *testing.T) {
	fake := newFake()
	fake.debtsErr = fmt.Errorf("get_debts: %w", ledger.ErrUnavailable)
	orch := New(fake)

	result, err := orch.Settle(context.Background(), models.SettlementRequest{
		GroupID: 1,
		Payer:   "bob",
		Payee:   "alice",
		Amount:  100,
	})
	if err != nil {
		t.Fatalf("Settle() error: %v", err)
	}
	if result.State != StateFailed || !result.Retryable {
		t.Errorf("result = %v retryable=%v, want failed+retryable", result.State, result.Retryable)
	}
	if fake.settleCalls != 0 {
		t.Errorf("settle calls = %d, want 0", fake.settleCalls)
	}
}

func TestSettleInvalidRequests(t *testing.T) {
	orch := New(newFake())
	ctx := context.Background()

	tests := []struct {
		name string
		req  models.SettlementRequest
	}{
		{"missing payer", models.SettlementRequest{GroupID: 1, Payee: "alice", Amount: 10}},
		{"missing payee", models.SettlementRequest{GroupID: 1, Payer: "bob", Amount: 10}},
		{"zero amount", models.SettlementRequest{GroupID: 1, Payer: "bob", Payee: "alice"}},
		{"self settlement", models.SettlementRequest{GroupID: 1, Payer: "bob", Payee: "bob", Amount: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := orch.Settle(ctx, tt.req); err == nil {
				t.Error("expected request validation error")
			}
		})
	}
}

func TestVerifier(t *testing.T) {
	fake := newFake()
	v := NewVerifier(fake)
	ctx := context.Background()

	exists, err := v.DebtExists(ctx, 1, "bob", "alice")
	if err != nil || !exists {
		t.Errorf("DebtExists(bob->alice) = %v, %v, want true", exists, err)
	}

	exists, err = v.DebtExists(ctx, 1, "alice", "bob")
	if err != nil || exists {
		t.Errorf("DebtExists(alice->bob) = %v, %v, want false", exists, err)
	}

	enough, err := v.SufficientFunds(ctx, "bob", 1_000)
	if err != nil || !enough {
		t.Errorf("SufficientFunds(bob, 1000) = %v, %v, want true", enough, err)
	}

	enough, err = v.SufficientFunds(ctx, "carol", 1)
	if err != nil || enough {
		t.Errorf("SufficientFunds(carol, 1) = %v, %v, want false", enough, err)
	}

	fake.debtsErr = errors.New("boom")
	if _, err := v.DebtExists(ctx, 1, "bob", "alice"); err == nil {
		t.Error("DebtExists should propagate query errors")
	}
}
