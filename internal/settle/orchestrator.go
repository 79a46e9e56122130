package settle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mmynk/splitchain/internal/calculator"
	"github.com/mmynk/splitchain/internal/ledger"
	"github.com/mmynk/splitchain/internal/metrics"
	"github.com/mmynk/splitchain/internal/models"
)

// State is the position of a settlement attempt in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateVerifying
	StateSubmitting
	// StateSucceeded: the ledger confirmed the transfer.
	StateSucceeded
	// StateRejected: a precondition failed before submission. Nothing
	// was sent to the ledger.
	StateRejected
	// StateFailed: the submission was sent and the ledger refused it,
	// or the ledger could not be reached. Terminal for this attempt.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateVerifying:
		return "verifying"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateRejected:
		return "rejected"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Rejection reasons for precondition failures.
const (
	ReasonDebtNotFound      = "debt not found or already settled"
	ReasonInsufficientFunds = "insufficient funds to cover the settlement"
	ReasonNothingToSettle   = "no outstanding debts to settle"
)

// Result is the terminal outcome of one settlement attempt.
type Result struct {
	// AttemptID identifies the attempt in logs and metrics.
	AttemptID string
	// State is one of Succeeded, Rejected, Failed.
	State State
	// Reason explains a Rejected or Failed state.
	Reason string
	// Amount is the value the attempt actually tried to transfer. For
	// settle-all with an omitted total this is the recomputed aggregate.
	Amount models.Amount
	// Tx is the ledger's confirmation; set only on success.
	Tx *models.TxResult
	// Retryable marks transport failures, which may be retried. Ledger
	// rejections and precondition failures are never retried
	// automatically.
	Retryable bool
}

// Orchestrator drives settlement attempts through
// Idle -> Verifying -> Submitting -> Succeeded | Rejected | Failed.
// Each attempt issues at most one outstanding ledger request at a time
// and exactly one settlement instruction. The orchestrator holds no
// balance state: failed attempts leave whatever summary the caller
// displays untouched until the caller explicitly refreshes.
type Orchestrator struct {
	ledger   ledger.Ledger
	verifier *Verifier
}

// New creates an orchestrator over the given ledger client.
func New(l ledger.Ledger) *Orchestrator {
	return &Orchestrator{ledger: l, verifier: NewVerifier(l)}
}

// Settle runs one settlement attempt to a terminal state. A single
// settlement (req.All false) pays req.Amount from payer to payee; a
// settle-all pays the payer's aggregate debt in the group. The returned
// error is non-nil only for malformed requests; rejected and failed
// attempts are ordinary Results.
//
// The debt values verified here are the ones submitted: a concurrent
// refresh never swaps amounts under an in-flight attempt.
func (o *Orchestrator) Settle(ctx context.Context, req models.SettlementRequest) (*Result, error) {
	if req.Payer == "" {
		return nil, fmt.Errorf("settlement request missing payer")
	}
	if !req.All && req.Payee == "" {
		return nil, fmt.Errorf("settlement request missing payee")
	}
	if !req.All && req.Amount <= 0 {
		return nil, fmt.Errorf("settlement amount must be positive")
	}
	if req.Payer == req.Payee {
		return nil, fmt.Errorf("cannot settle with yourself")
	}

	attempt := &Result{
		AttemptID: uuid.New().String(),
		Amount:    req.Amount,
	}
	log := slog.With(
		"attempt_id", attempt.AttemptID,
		"group_id", req.GroupID,
		"payer", req.Payer,
	)

	mode := "single"
	if req.All {
		mode = "all"
	}
	defer func() {
		metrics.SettlementAttempts.WithLabelValues(mode, attempt.State.String()).Inc()
	}()

	// Verifying.
	log.Info("settlement verifying", "state", StateVerifying.String(), "mode", mode)
	if req.All {
		if done := o.verifyAll(ctx, req, attempt, log); done {
			return attempt, nil
		}
	} else {
		if done := o.verifySingle(ctx, req, attempt, log); done {
			return attempt, nil
		}
	}

	// Submitting: exactly one instruction, funds attached.
	log.Info("settlement submitting", "state", StateSubmitting.String(), "amount", attempt.Amount)
	var (
		tx  *models.TxResult
		err error
	)
	if req.All {
		tx, err = o.ledger.SettleAllDebts(ctx, req.Payer, req.GroupID, attempt.Amount)
	} else {
		tx, err = o.ledger.SettleDebt(ctx, req.Payer, req.GroupID, req.Payee, attempt.Amount)
	}
	if err != nil {
		o.fail(attempt, err, log)
		return attempt, nil
	}

	attempt.State = StateSucceeded
	attempt.Tx = tx
	log.Info("settlement succeeded",
		"state", attempt.State.String(),
		"tx_hash", tx.TransactionHash,
		"height", tx.Height,
	)
	return attempt, nil
}

// verifySingle re-checks the selected debt and the payer's funds. It
// returns true when the attempt reached a terminal state.
func (o *Orchestrator) verifySingle(ctx context.Context, req models.SettlementRequest, attempt *Result, log *slog.Logger) bool {
	exists, err := o.verifier.DebtExists(ctx, req.GroupID, req.Payer, req.Payee)
	if err != nil {
		o.fail(attempt, err, log)
		return true
	}
	if !exists {
		o.reject(attempt, ReasonDebtNotFound, log)
		return true
	}

	enough, err := o.verifier.SufficientFunds(ctx, req.Payer, req.Amount)
	if err != nil {
		o.fail(attempt, err, log)
		return true
	}
	if !enough {
		o.reject(attempt, ReasonInsufficientFunds, log)
		return true
	}
	return false
}

// verifyAll recomputes the payer's aggregate debt when the caller did
// not supply one. A caller-supplied total is still only a hint: any
// omitted or zero total triggers the independent recomputation, since
// the total can go stale between summary fetch and submission.
func (o *Orchestrator) verifyAll(ctx context.Context, req models.SettlementRequest, attempt *Result, log *slog.Logger) bool {
	if attempt.Amount == 0 {
		debts, err := o.ledger.Debts(ctx, req.GroupID)
		if err != nil {
			o.fail(attempt, err, log)
			return true
		}
		attempt.Amount = calculator.OwedBy(debts, req.Payer)
		log.Info("settle-all aggregate recomputed", "amount", attempt.Amount)
	}
	if attempt.Amount == 0 {
		o.reject(attempt, ReasonNothingToSettle, log)
		return true
	}

	enough, err := o.verifier.SufficientFunds(ctx, req.Payer, attempt.Amount)
	if err != nil {
		o.fail(attempt, err, log)
		return true
	}
	if !enough {
		o.reject(attempt, ReasonInsufficientFunds, log)
		return true
	}
	return false
}

func (o *Orchestrator) reject(attempt *Result, reason string, log *slog.Logger) {
	attempt.State = StateRejected
	attempt.Reason = reason
	log.Warn("settlement rejected before submission", "state", attempt.State.String(), "reason", reason)
}

// fail records a terminal failure, distinguishing ledger rejections
// (surfaced with the ledger's reason, never retried automatically) from
// transport failures (retryable).
func (o *Orchestrator) fail(attempt *Result, err error, log *slog.Logger) {
	attempt.State = StateFailed

	var execErr *ledger.ExecError
	switch {
	case errors.As(err, &execErr):
		attempt.Reason = execErr.Reason()
	case errors.Is(err, ledger.ErrUnavailable):
		attempt.Reason = "could not reach ledger"
		attempt.Retryable = true
	default:
		attempt.Reason = err.Error()
	}
	log.Error("settlement failed", "state", attempt.State.String(), "reason", attempt.Reason, "error", err)
}
