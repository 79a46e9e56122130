package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mmynk/splitchain/internal/auth"
	"github.com/mmynk/splitchain/internal/ledger"
	"github.com/mmynk/splitchain/internal/middleware"
	"github.com/mmynk/splitchain/internal/models"
	"github.com/mmynk/splitchain/internal/price"
	"github.com/mmynk/splitchain/internal/service"
	"github.com/mmynk/splitchain/internal/settle"
)

// Handler wraps the services and exposes HTTP handlers.
type Handler struct {
	auths    *service.AuthService
	groups   *service.GroupService
	balances *service.BalanceService
	settler  *settle.Orchestrator
	prices   *price.Cache
}

// NewHandler returns a new Handler over the given services.
func NewHandler(auths *service.AuthService, groups *service.GroupService, balances *service.BalanceService, settler *settle.Orchestrator, prices *price.Cache) *Handler {
	return &Handler{
		auths:    auths,
		groups:   groups,
		balances: balances,
		settler:  settler,
		prices:   prices,
	}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps domain errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var execErr *ledger.ExecError
	switch {
	case errors.Is(err, service.ErrNotMember):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ledger.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, ledger.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "the ledger is unreachable, try again later")
	case errors.As(err, &execErr):
		writeError(w, http.StatusConflict, execErr.Reason())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB cap
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "empty body")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}

func groupIDFromPath(r *http.Request) (uint64, error) {
	idStr := chi.URLParam(r, "groupID")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid group id")
	}
	return id, nil
}

type accountResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Address     string `json:"address"`
}

func toAccountResponse(a *models.Account) accountResponse {
	return accountResponse{
		ID:          a.ID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		Address:     a.Address,
	}
}

// --- Auth handlers ---

type registerRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Address     string `json:"address"`
	Password    string `json:"password"`
}

// Register handles POST /api/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	session, err := h.auths.Register(r.Context(), req.Email, req.DisplayName, req.Address, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrInvalidAddress), errors.Is(err, auth.ErrInvalidCredentials):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"account": toAccountResponse(session.Account),
		"token":   session.Token,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	session, err := h.auths.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"account": toAccountResponse(session.Account),
		"token":   session.Token,
	})
}

// Me handles GET /api/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	account, err := h.auths.CurrentAccount(r.Context(), middleware.GetAccountID(r.Context()))
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

// --- Group handlers ---

type createGroupRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// CreateGroup handles POST /api/groups
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	group, err := h.groups.CreateGroup(r.Context(), middleware.GetAddress(r.Context()), req.Name, req.Members)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

// ListGroups handles GET /api/groups
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groups.ListGroups(r.Context(), middleware.GetAddress(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if groups == nil {
		groups = []models.Group{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": groups})
}

// GetGroup handles GET /api/groups/{groupID}
func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := groupIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	group, err := h.groups.GetGroup(r.Context(), groupID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

// JoinGroup handles POST /api/groups/{groupID}/join
func (h *Handler) JoinGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := groupIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	group, err := h.groups.JoinGroup(r.Context(), middleware.GetAddress(r.Context()), groupID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

// LeaveGroup handles POST /api/groups/{groupID}/leave
func (h *Handler) LeaveGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := groupIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	group, err := h.groups.LeaveGroup(r.Context(), middleware.GetAddress(r.Context()), groupID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

// --- Expense handlers ---

type addExpenseRequest struct {
	Description  string        `json:"description"`
	Amount       models.Amount `json:"amount"`
	SplitBetween []string      `json:"split_between"`
}

// AddExpense handles POST /api/groups/{groupID}/expenses
func (h *Handler) AddExpense(w http.ResponseWriter, r *http.Request) {
	groupID, err := groupIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req addExpenseRequest
	if !decodeBody(w, r, &req) {
		return
	}

	expense, err := h.groups.AddExpense(r.Context(), middleware.GetAddress(r.Context()), groupID, req.Description, req.Amount, req.SplitBetween)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}

// ListExpenses handles GET /api/groups/{groupID}/expenses
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	groupID, err := groupIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	expenses, err := h.groups.GroupExpenses(r.Context(), groupID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if expenses == nil {
		expenses = []models.Expense{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"expenses": expenses})
}

// GetExpense handles GET /api/expenses/{expenseID}
func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "expenseID"), 10, 64)
	if err != nil || id == 0 {
		writeError(w, http.StatusBadRequest, "invalid expense id")
		return
	}

	expense, err := h.groups.GetExpense(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"expense": expense})
}

// --- Balance handlers ---

// GetBalances handles GET /api/groups/{groupID}/balances
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	groupID, err := groupIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, source, err := h.balances.Summary(r.Context(), groupID, middleware.GetAddress(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	usd := h.prices.Get(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"summary":         summary,
		"source":          source,
		"net_balance_usd": price.FormatUSD(summary.NetBalance, usd),
	})
}

// GetDebts handles GET /api/groups/{groupID}/debts
func (h *Handler) GetDebts(w http.ResponseWriter, r *http.Request) {
	groupID, err := groupIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	debts, source, err := h.balances.Debts(r.Context(), groupID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if debts == nil {
		debts = []models.NetDebt{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"debts": debts, "source": source})
}

// --- Settlement handlers ---

type settleRequest struct {
	To     string        `json:"to"`
	Amount models.Amount `json:"amount"`
}

type settleResponse struct {
	AttemptID string        `json:"attempt_id"`
	State     string        `json:"state"`
	Reason    string        `json:"reason,omitempty"`
	Amount    models.Amount `json:"amount"`
	Retryable bool          `json:"retryable"`
	TxHash    string        `json:"tx_hash,omitempty"`
}

func toSettleResponse(res *settle.Result) settleResponse {
	out := settleResponse{
		AttemptID: res.AttemptID,
		State:     res.State.String(),
		Reason:    res.Reason,
		Amount:    res.Amount,
		Retryable: res.Retryable,
	}
	if res.Tx != nil {
		out.TxHash = res.Tx.TransactionHash
	}
	return out
}

// SettleDebt handles POST /api/groups/{groupID}/settle
func (h *Handler) SettleDebt(w http.ResponseWriter, r *http.Request) {
	groupID, err := groupIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req settleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.settler.Settle(r.Context(), models.SettlementRequest{
		GroupID: groupID,
		Payer:   middleware.GetAddress(r.Context()),
		Payee:   req.To,
		Amount:  req.Amount,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toSettleResponse(result))
}

type settleAllRequest struct {
	// Amount is optional; zero asks the orchestrator to recompute the
	// aggregate from current debts.
	Amount models.Amount `json:"amount"`
}

// SettleAllDebts handles POST /api/groups/{groupID}/settle-all
func (h *Handler) SettleAllDebts(w http.ResponseWriter, r *http.Request) {
	groupID, err := groupIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := settleAllRequest{}
	if r.ContentLength != 0 {
		if !decodeBody(w, r, &req) {
			return
		}
	}

	result, err := h.settler.Settle(r.Context(), models.SettlementRequest{
		GroupID: groupID,
		Payer:   middleware.GetAddress(r.Context()),
		Amount:  req.Amount,
		All:     true,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toSettleResponse(result))
}

// GetPrice handles GET /api/price
func (h *Handler) GetPrice(w http.ResponseWriter, r *http.Request) {
	usd := h.prices.Get(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"usd": usd})
}
