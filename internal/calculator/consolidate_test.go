package calculator

import (
	"reflect"
	"testing"

	"github.com/mmynk/splitchain/internal/models"
)

func TestConsolidate(t *testing.T) {
	tests := []struct {
		name        string
		obligations []models.PairwiseObligation
		want        []models.NetDebt
	}{
		{
			name: "same-direction duplicates sum",
			obligations: []models.PairwiseObligation{
				{Debtor: "bob", Creditor: "alice", Amount: 50},
				{Debtor: "bob", Creditor: "alice", Amount: 25},
			},
			want: []models.NetDebt{{From: "bob", To: "alice", Amount: 75}},
		},
		{
			name: "opposing directions net by subtraction",
			obligations: []models.PairwiseObligation{
				{Debtor: "bob", Creditor: "alice", Amount: 50},
				{Debtor: "alice", Creditor: "bob", Amount: 30},
			},
			want: []models.NetDebt{{From: "bob", To: "alice", Amount: 20}},
		},
		{
			name: "zero net pairs disappear",
			obligations: []models.PairwiseObligation{
				{Debtor: "bob", Creditor: "alice", Amount: 40},
				{Debtor: "alice", Creditor: "bob", Amount: 40},
			},
			want: []models.NetDebt{},
		},
		{
			name: "self obligations are ignored",
			obligations: []models.PairwiseObligation{
				{Debtor: "alice", Creditor: "alice", Amount: 10},
				{Debtor: "bob", Creditor: "alice", Amount: 5},
			},
			want: []models.NetDebt{{From: "bob", To: "alice", Amount: 5}},
		},
		{
			name: "output sorted by debtor then creditor",
			obligations: []models.PairwiseObligation{
				{Debtor: "carol", Creditor: "alice", Amount: 10},
				{Debtor: "bob", Creditor: "carol", Amount: 7},
				{Debtor: "bob", Creditor: "alice", Amount: 3},
			},
			want: []models.NetDebt{
				{From: "bob", To: "alice", Amount: 3},
				{From: "bob", To: "carol", Amount: 7},
				{From: "carol", To: "alice", Amount: 10},
			},
		},
		{
			name:        "empty input",
			obligations: nil,
			want:        []models.NetDebt{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Consolidate(tt.obligations)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Consolidate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// Consolidating consolidated output must be a fixed point.
func TestConsolidateIdempotent(t *testing.T) {
	obligations := []models.PairwiseObligation{
		{Debtor: "bob", Creditor: "alice", Amount: 50},
		{Debtor: "alice", Creditor: "bob", Amount: 30},
		{Debtor: "carol", Creditor: "alice", Amount: 100},
		{Debtor: "carol", Creditor: "bob", Amount: 1},
	}

	first := Consolidate(obligations)
	second := Consolidate(AsObligations(first))
	if !reflect.DeepEqual(first, second) {
		t.Errorf("consolidation is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

// Per-pair conservation: the net debt equals the signed sum of everything
// exchanged between the two parties, and is never non-positive.
func TestConsolidateConservation(t *testing.T) {
	obligations := []models.PairwiseObligation{
		{Debtor: "bob", Creditor: "alice", Amount: 120},
		{Debtor: "alice", Creditor: "bob", Amount: 45},
		{Debtor: "bob", Creditor: "alice", Amount: 5},
		{Debtor: "carol", Creditor: "bob", Amount: 60},
		{Debtor: "bob", Creditor: "carol", Amount: 60},
	}

	debts := Consolidate(obligations)
	if len(debts) != 1 {
		t.Fatalf("got %d debts, want 1: %+v", len(debts), debts)
	}
	want := models.NetDebt{From: "bob", To: "alice", Amount: 80}
	if debts[0] != want {
		t.Errorf("net debt = %+v, want %+v", debts[0], want)
	}
	for _, d := range debts {
		if d.Amount <= 0 {
			t.Errorf("non-positive net debt %+v", d)
		}
		if d.From == d.To {
			t.Errorf("self debt %+v", d)
		}
	}
}

func TestOwedBy(t *testing.T) {
	debts := []models.NetDebt{
		{From: "bob", To: "alice", Amount: 100},
		{From: "bob", To: "carol", Amount: 50},
		{From: "alice", To: "carol", Amount: 7},
	}

	if got := OwedBy(debts, "bob"); got != 150 {
		t.Errorf("OwedBy(bob) = %d, want 150", got)
	}
	if got := OwedBy(debts, "carol"); got != 0 {
		t.Errorf("OwedBy(carol) = %d, want 0", got)
	}
}
