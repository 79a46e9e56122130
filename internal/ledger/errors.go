package ledger

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnavailable marks transport and availability failures: the
	// ledger could not be reached or answered with something that is not
	// a ledger response. Safe to retry.
	ErrUnavailable = errors.New("could not reach ledger")

	// ErrNotFound marks queries for entities the ledger does not know.
	ErrNotFound = errors.New("not found")
)

// ExecError is a rejection from the ledger after a submission: the
// request arrived, the ledger said no. Never retried automatically; the
// caller must re-verify state and re-attempt deliberately.
type ExecError struct {
	// Message is the ledger's own error text, verbatim when parseable.
	Message string
}

func (e *ExecError) Error() string {
	if e.Message == "" {
		return "ledger rejected the transaction"
	}
	return "ledger rejected the transaction: " + e.Message
}

// Reason maps known ledger rejection messages onto human-readable
// explanations, falling back to the verbatim message.
func (e *ExecError) Reason() string {
	msg := strings.ToLower(e.Message)
	switch {
	case strings.Contains(msg, "unauthorized"):
		return "Unauthorized: you may not be the debtor for this debt, or you are not a member of the group."
	case strings.Contains(msg, "insufficient funds"):
		return "Insufficient funds: your balance does not cover this settlement."
	case strings.Contains(msg, "no debt exists"):
		return "No debt exists: the ledger found no outstanding debt to settle."
	case e.Message == "":
		return "Submission failed."
	}
	return e.Message
}

// IsRejection reports whether err is a post-submission ledger rejection.
func IsRejection(err error) bool {
	var execErr *ExecError
	return errors.As(err, &execErr)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}
