package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mmynk/splitchain/internal/ledger"
	"github.com/mmynk/splitchain/internal/models"
	"github.com/mmynk/splitchain/internal/storage"
)

// ErrNotMember is returned when the acting address is not in the group.
var ErrNotMember = errors.New("you are not a member of this group")

// GroupService reads and mutates groups and their expense logs. Reads go
// to the ledger first and fall back to the local snapshot when the
// ledger is unreachable; successful reads refresh the snapshot.
type GroupService struct {
	ledger ledger.Ledger
	store  storage.Store
	logger *slog.Logger
}

// NewGroupService creates a new GroupService.
func NewGroupService(l ledger.Ledger, store storage.Store, logger *slog.Logger) *GroupService {
	return &GroupService{ledger: l, store: store, logger: logger}
}

// CreateGroup submits a create_group transaction and returns the new
// group. The sender is always a member.
func (s *GroupService) CreateGroup(ctx context.Context, sender, name string, members []string) (*models.Group, error) {
	s.logger.Info("CreateGroup request", "sender", sender, "name", name, "members_count", len(members))

	if strings.TrimSpace(name) == "" {
		return nil, errors.New("group name is required")
	}

	tx, err := s.ledger.CreateGroup(ctx, sender, name, members)
	if err != nil {
		s.logger.Error("CreateGroup failed", "name", name, "error", err)
		return nil, err
	}

	groupID, err := groupIDFromTx(tx)
	if err != nil {
		// The transaction succeeded but the id is unknown. Surface the
		// hash so the caller can look it up.
		s.logger.Error("CreateGroup: missing group id in events", "tx", tx.TransactionHash)
		return nil, fmt.Errorf("group created (tx %s) but id not reported: %w", tx.TransactionHash, err)
	}

	group, err := s.ledger.Group(ctx, groupID)
	if err != nil {
		s.logger.Warn("CreateGroup: fetch after create failed", "group_id", groupID, "error", err)
		// Synthesize from the request; the next read will correct it.
		group = &models.Group{ID: groupID, Name: name, Creator: sender, Members: dedupeWithSender(sender, members)}
	}

	s.snapshotGroup(ctx, group)

	s.logger.Info("Group created", "group_id", group.ID, "tx", tx.TransactionHash)
	return group, nil
}

// GetGroup retrieves a group, preferring the ledger and falling back to
// the local snapshot when the ledger is unreachable.
func (s *GroupService) GetGroup(ctx context.Context, groupID uint64) (*models.Group, error) {
	group, err := s.ledger.Group(ctx, groupID)
	if err == nil {
		s.snapshotGroup(ctx, group)
		return group, nil
	}
	if !errors.Is(err, ledger.ErrUnavailable) {
		return nil, err
	}

	s.logger.Warn("GetGroup: ledger unreachable, using snapshot", "group_id", groupID)
	cached, cacheErr := s.store.Group(ctx, groupID)
	if cacheErr != nil {
		return nil, cacheErr
	}
	if cached == nil {
		return nil, err
	}
	return cached, nil
}

// ListGroups lists every group the user belongs to, walking all pages.
// Falls back to the snapshot when the ledger is unreachable.
func (s *GroupService) ListGroups(ctx context.Context, user string) ([]models.Group, error) {
	var all []models.Group
	page := ledger.Pagination{Limit: 30}
	for {
		groups, next, err := s.ledger.UserGroups(ctx, user, page)
		if err != nil {
			if !errors.Is(err, ledger.ErrUnavailable) {
				return nil, err
			}
			s.logger.Warn("ListGroups: ledger unreachable, using snapshot", "user", user)
			return s.store.Groups(ctx, user)
		}
		all = append(all, groups...)
		if next == nil || len(groups) == 0 {
			break
		}
		page.StartAfter = *next
	}

	for i := range all {
		s.snapshotGroup(ctx, &all[i])
	}
	return all, nil
}

// JoinGroup adds the sender to a group.
func (s *GroupService) JoinGroup(ctx context.Context, sender string, groupID uint64) (*models.Group, error) {
	s.logger.Info("JoinGroup request", "sender", sender, "group_id", groupID)

	if _, err := s.ledger.JoinGroup(ctx, sender, groupID); err != nil {
		s.logger.Error("JoinGroup failed", "group_id", groupID, "error", err)
		return nil, err
	}
	return s.refreshGroup(ctx, groupID)
}

// LeaveGroup removes the sender from a group.
func (s *GroupService) LeaveGroup(ctx context.Context, sender string, groupID uint64) (*models.Group, error) {
	s.logger.Info("LeaveGroup request", "sender", sender, "group_id", groupID)

	if _, err := s.ledger.LeaveGroup(ctx, sender, groupID); err != nil {
		s.logger.Error("LeaveGroup failed", "group_id", groupID, "error", err)
		return nil, err
	}
	return s.refreshGroup(ctx, groupID)
}

// AddExpense records a cost against a group. The sender must be a
// member. An empty splitBetween asks the ledger to split between all
// current members.
func (s *GroupService) AddExpense(ctx context.Context, sender string, groupID uint64, description string, amount models.Amount, splitBetween []string) (*models.Expense, error) {
	s.logger.Info("AddExpense request",
		"sender", sender,
		"group_id", groupID,
		"amount", amount,
	)

	if amount <= 0 {
		return nil, errors.New("amount must be positive")
	}
	if strings.TrimSpace(description) == "" {
		return nil, errors.New("description is required")
	}

	group, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(sender) {
		return nil, ErrNotMember
	}
	for _, addr := range splitBetween {
		if !group.HasMember(addr) {
			return nil, fmt.Errorf("%s is not a member of this group", addr)
		}
	}

	tx, err := s.ledger.AddExpense(ctx, sender, groupID, description, amount, splitBetween)
	if err != nil {
		s.logger.Error("AddExpense failed", "group_id", groupID, "error", err)
		return nil, err
	}

	expense := &models.Expense{
		GroupID:      groupID,
		Description:  description,
		Amount:       amount,
		PaidBy:       sender,
		SplitBetween: splitBetween,
	}
	if idStr := tx.WasmAttribute("expense_id"); idStr != "" {
		if id, perr := strconv.ParseUint(idStr, 10, 64); perr == nil {
			expense.ID = id
		}
	}

	// Refresh the expense snapshot so offline balances include this cost.
	if expenses, ferr := s.ledger.AllGroupExpenses(ctx, groupID); ferr == nil {
		s.snapshotExpenses(ctx, groupID, expenses)
	}

	s.logger.Info("Expense added", "group_id", groupID, "expense_id", expense.ID, "tx", tx.TransactionHash)
	return expense, nil
}

// GetExpense retrieves a single expense record by ID.
func (s *GroupService) GetExpense(ctx context.Context, expenseID uint64) (*models.Expense, error) {
	return s.ledger.Expense(ctx, expenseID)
}

// GroupExpenses lists the full expense log of a group, falling back to
// the snapshot when the ledger is unreachable.
func (s *GroupService) GroupExpenses(ctx context.Context, groupID uint64) ([]models.Expense, error) {
	expenses, err := s.ledger.AllGroupExpenses(ctx, groupID)
	if err == nil {
		s.snapshotExpenses(ctx, groupID, expenses)
		return expenses, nil
	}
	if !errors.Is(err, ledger.ErrUnavailable) {
		return nil, err
	}

	s.logger.Warn("GroupExpenses: ledger unreachable, using snapshot", "group_id", groupID)
	return s.store.GroupExpenses(ctx, groupID)
}

func (s *GroupService) refreshGroup(ctx context.Context, groupID uint64) (*models.Group, error) {
	group, err := s.ledger.Group(ctx, groupID)
	if err != nil {
		// The mutation went through; a stale snapshot is acceptable here.
		s.logger.Warn("refreshGroup failed", "group_id", groupID, "error", err)
		return s.store.Group(ctx, groupID)
	}
	s.snapshotGroup(ctx, group)
	return group, nil
}

func (s *GroupService) snapshotGroup(ctx context.Context, group *models.Group) {
	if group == nil {
		return
	}
	if err := s.store.SaveGroup(ctx, group); err != nil {
		s.logger.Warn("failed to snapshot group", "group_id", group.ID, "error", err)
	}
}

func (s *GroupService) snapshotExpenses(ctx context.Context, groupID uint64, expenses []models.Expense) {
	if err := s.store.SaveExpenses(ctx, groupID, expenses); err != nil {
		s.logger.Warn("failed to snapshot expenses", "group_id", groupID, "error", err)
	}
}

// groupIDFromTx digs the new group's id out of the transaction events.
func groupIDFromTx(tx *models.TxResult) (uint64, error) {
	idStr := tx.WasmAttribute("group_id")
	if idStr == "" {
		return 0, errors.New("no group_id attribute")
	}
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad group_id attribute %q: %w", idStr, err)
	}
	return id, nil
}

func dedupeWithSender(sender string, members []string) []string {
	seen := map[string]bool{sender: true}
	out := []string{sender}
	for _, m := range members {
		if m != "" && !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}
