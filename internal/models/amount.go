package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Amount is a quantity of the base currency unit (e.g. uxion).
// It marshals as a decimal string, matching the ledger's Uint128
// serialization, and unmarshals from either a string or a bare number.
type Amount int64

// ParseAmount converts a base-unit decimal string into an Amount.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("amount is empty")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid amount %q: must not be negative", s)
	}
	return Amount(n), nil
}

// String returns the base-unit decimal representation.
func (a Amount) String() string {
	return strconv.FormatInt(int64(a), 10)
}

// MarshalJSON encodes the amount as a decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts both `"123"` and `123`.
func (a *Amount) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*a = 0
		return nil
	}
	s := string(data)
	if s[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %s: %w", string(data), err)
	}
	*a = Amount(n)
	return nil
}
