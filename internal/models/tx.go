package models

// EventAttribute is a single key/value attribute on a ledger event.
type EventAttribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Event is one event emitted by a ledger transaction. Operation outcomes
// arrive as a "wasm" event whose "action" attribute names the completed
// operation (create_group, add_expense, settle_debt, ...).
type Event struct {
	Type       string           `json:"type"`
	Attributes []EventAttribute `json:"attributes"`
}

// Attribute returns the value of the named attribute, or "" if absent.
func (e Event) Attribute(key string) string {
	for _, attr := range e.Attributes {
		if attr.Key == key {
			return attr.Value
		}
	}
	return ""
}

// TxResult is the ledger's confirmation of a state-changing call.
type TxResult struct {
	TransactionHash string  `json:"transactionHash"`
	Height          int64   `json:"height"`
	Events          []Event `json:"events"`
}

// Action returns the action attribute of the first wasm event, or "" when
// no wasm event is present.
func (r *TxResult) Action() string {
	for _, ev := range r.Events {
		if ev.Type == "wasm" {
			if action := ev.Attribute("action"); action != "" {
				return action
			}
		}
	}
	return ""
}

// WasmAttribute returns the named attribute from the first wasm event that
// carries it. Ledger-assigned ids (e.g. the id of a newly created group)
// travel this way.
func (r *TxResult) WasmAttribute(key string) string {
	for _, ev := range r.Events {
		if ev.Type != "wasm" {
			continue
		}
		if v := ev.Attribute(key); v != "" {
			return v
		}
	}
	return ""
}
