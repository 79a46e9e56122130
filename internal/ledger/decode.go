package ledger

import (
	"encoding/json"

	"github.com/mmynk/splitchain/internal/models"
)

// wireDebt tolerates both field-naming conventions the ledger has been
// seen to use for a debt: {from,to} and {debtor,creditor}.
type wireDebt struct {
	From     string        `json:"from"`
	To       string        `json:"to"`
	Debtor   string        `json:"debtor"`
	Creditor string        `json:"creditor"`
	Amount   models.Amount `json:"amount"`
}

func (w wireDebt) normalize() (models.NetDebt, bool) {
	debt := models.NetDebt{From: w.From, To: w.To, Amount: w.Amount}
	if debt.From == "" && debt.To == "" {
		debt.From, debt.To = w.Debtor, w.Creditor
	}
	if debt.From == "" || debt.To == "" || debt.Amount == 0 {
		return models.NetDebt{}, false
	}
	return debt, true
}

// decodeDebts normalizes a get_debts response. Two shapes are accepted:
// the standard {debts: [...]} wrapper and a bare array. Anything else
// decodes to no data rather than an error.
func decodeDebts(raw json.RawMessage) []models.NetDebt {
	var wire []wireDebt

	var wrapped struct {
		Debts []wireDebt `json:"debts"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Debts != nil {
		wire = wrapped.Debts
	} else if err := json.Unmarshal(raw, &wire); err != nil {
		return nil
	}

	debts := make([]models.NetDebt, 0, len(wire))
	for _, w := range wire {
		if debt, ok := w.normalize(); ok {
			debts = append(debts, debt)
		}
	}
	return debts
}

// decodeBalanceSummary normalizes a get_balance_summary response. Three
// shapes are accepted: {summary: {...}}, {data: {...}}, and the bare
// summary object. An unrecognized shape returns nil, which callers treat
// as "ledger offers no summary" and fall back to local computation.
func decodeBalanceSummary(raw json.RawMessage) *models.BalanceSummary {
	var wrapped struct {
		Summary *models.BalanceSummary `json:"summary"`
		Data    *models.BalanceSummary `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		if wrapped.Summary != nil && wrapped.Summary.Balances != nil {
			return wrapped.Summary
		}
		if wrapped.Data != nil && wrapped.Data.Balances != nil {
			return wrapped.Data
		}
	}

	var bare models.BalanceSummary
	if err := json.Unmarshal(raw, &bare); err == nil && bare.Balances != nil {
		return &bare
	}
	return nil
}
