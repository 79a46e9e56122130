package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mmynk/splitchain/internal/calculator"
	"github.com/mmynk/splitchain/internal/ledger"
	"github.com/mmynk/splitchain/internal/models"
	"github.com/mmynk/splitchain/internal/storage"
)

// Balance sources, reported alongside results so callers know how fresh
// the numbers are.
const (
	// SourceLedger means the ledger answered the query itself.
	SourceLedger = "ledger"
	// SourceComputed means the ledger supplied the expense log and the
	// summary was computed locally.
	SourceComputed = "computed"
	// SourceSnapshot means the ledger was unreachable and the numbers
	// come from the last snapshot.
	SourceSnapshot = "snapshot"
)

// BalanceService resolves balance summaries and net debts. It prefers
// the ledger's own answers, recomputes locally from the expense log when
// the ledger has no summary endpoint, and falls back to the snapshot
// when the ledger is unreachable.
type BalanceService struct {
	ledger ledger.Querier
	store  storage.Store
	logger *slog.Logger
}

// NewBalanceService creates a new BalanceService.
func NewBalanceService(l ledger.Querier, store storage.Store, logger *slog.Logger) *BalanceService {
	return &BalanceService{ledger: l, store: store, logger: logger}
}

// Summary returns the balance summary for user within a group, plus the
// source the numbers came from.
func (s *BalanceService) Summary(ctx context.Context, groupID uint64, user string) (*models.BalanceSummary, string, error) {
	summary, err := s.ledger.BalanceSummary(ctx, groupID, user)
	if err == nil && summary != nil {
		return summary, SourceLedger, nil
	}
	if err != nil && !errors.Is(err, ledger.ErrUnavailable) && !errors.Is(err, ledger.ErrNotFound) {
		return nil, "", err
	}

	// No summary from the ledger. Compute from the expense log, reaching
	// the snapshot if the ledger is down.
	expenses, source, err := s.expenses(ctx, groupID)
	if err != nil {
		return nil, "", err
	}

	computed := calculator.Compute(expenses, user)
	if source == SourceLedger {
		source = SourceComputed
	}
	return &computed, source, nil
}

// Debts returns the group's consolidated net debts plus their source.
func (s *BalanceService) Debts(ctx context.Context, groupID uint64) ([]models.NetDebt, string, error) {
	debts, err := s.ledger.Debts(ctx, groupID)
	if err == nil {
		return debts, SourceLedger, nil
	}
	if !errors.Is(err, ledger.ErrUnavailable) && !errors.Is(err, ledger.ErrNotFound) {
		return nil, "", err
	}

	expenses, source, eerr := s.expenses(ctx, groupID)
	if eerr != nil {
		// Report the original failure; the fallback failing too adds
		// nothing actionable.
		return nil, "", err
	}
	if source == SourceLedger {
		source = SourceComputed
	}
	return calculator.Consolidate(calculator.Obligations(expenses)), source, nil
}

// expenses fetches the full expense log, from the ledger when possible
// and the snapshot otherwise. The returned source is SourceLedger or
// SourceSnapshot.
func (s *BalanceService) expenses(ctx context.Context, groupID uint64) ([]models.Expense, string, error) {
	expenses, err := s.ledger.AllGroupExpenses(ctx, groupID)
	if err == nil {
		if serr := s.store.SaveExpenses(ctx, groupID, expenses); serr != nil {
			s.logger.Warn("failed to snapshot expenses", "group_id", groupID, "error", serr)
		}
		return expenses, SourceLedger, nil
	}
	if !errors.Is(err, ledger.ErrUnavailable) {
		return nil, "", err
	}

	s.logger.Warn("balance query falling back to snapshot", "group_id", groupID)
	cached, cerr := s.store.GroupExpenses(ctx, groupID)
	if cerr != nil {
		return nil, "", cerr
	}
	return cached, SourceSnapshot, nil
}
