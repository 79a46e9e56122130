package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmynk/splitchain/internal/metrics"
	"github.com/mmynk/splitchain/internal/models"
)

const (
	// pageLimit is the ledger's maximum page size for paged queries.
	pageLimit = 30

	defaultDenom   = "uxion"
	defaultTimeout = 15 * time.Second
)

// Client talks to the ledger through its HTTP RPC facade. It implements
// Ledger. A Client is safe for concurrent use.
type Client struct {
	baseURL string
	denom   string
	httpc   *http.Client
}

var _ Ledger = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpc *http.Client) ClientOption {
	return func(c *Client) { c.httpc = httpc }
}

// WithDenom sets the base currency denomination attached to settlements.
func WithDenom(denom string) ClientOption {
	return func(c *Client) { c.denom = denom }
}

// NewClient creates a ledger client against the given facade base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		denom:   defaultDenom,
		httpc:   &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// --- Queries ---

func (c *Client) Group(ctx context.Context, id uint64) (*models.Group, error) {
	var resp groupResponse
	err := c.query(ctx, "get_group", queryMsg{GetGroup: &getGroupQuery{ID: id}}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Group == nil {
		return nil, fmt.Errorf("group %d: %w", id, ErrNotFound)
	}
	return resp.Group, nil
}

func (c *Client) UserGroups(ctx context.Context, user string, page Pagination) ([]models.Group, *uint64, error) {
	var resp groupsResponse
	err := c.query(ctx, "get_user_groups", queryMsg{GetUserGroups: &getUserGroupsQuery{
		User:       user,
		Limit:      page.Limit,
		StartAfter: page.StartAfter,
	}}, &resp)
	if err != nil {
		return nil, nil, err
	}
	return resp.Groups, resp.NextKey, nil
}

func (c *Client) Expense(ctx context.Context, id uint64) (*models.Expense, error) {
	var resp expenseResponse
	err := c.query(ctx, "get_expense", queryMsg{GetExpense: &getExpenseQuery{ID: id}}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Expense == nil {
		return nil, fmt.Errorf("expense %d: %w", id, ErrNotFound)
	}
	return resp.Expense, nil
}

func (c *Client) GroupExpenses(ctx context.Context, groupID uint64, page Pagination) ([]models.Expense, *uint64, error) {
	var resp expensesResponse
	err := c.query(ctx, "get_group_expenses", queryMsg{GetGroupExpenses: &getGroupExpensesQuery{
		GroupID:    groupID,
		Limit:      page.Limit,
		StartAfter: page.StartAfter,
	}}, &resp)
	if err != nil {
		return nil, nil, err
	}
	return resp.Expenses, resp.NextKey, nil
}

// AllGroupExpenses walks the expense log page by page. The ledger may or
// may not return next_key; when it does not, paging continues from the
// highest expense id of the previous page until a short page arrives.
func (c *Client) AllGroupExpenses(ctx context.Context, groupID uint64) ([]models.Expense, error) {
	var all []models.Expense
	page := Pagination{Limit: pageLimit}

	for {
		expenses, nextKey, err := c.GroupExpenses(ctx, groupID, page)
		if err != nil {
			return nil, err
		}
		all = append(all, expenses...)

		switch {
		case nextKey != nil:
			if *nextKey <= page.StartAfter {
				return all, nil // ledger failed to page forward
			}
			page.StartAfter = *nextKey
		case len(expenses) < pageLimit:
			return all, nil
		default:
			last := expenses[len(expenses)-1].ID
			if last <= page.StartAfter {
				return all, nil
			}
			page.StartAfter = last
		}
	}
}

func (c *Client) Debts(ctx context.Context, groupID uint64) ([]models.NetDebt, error) {
	var raw json.RawMessage
	err := c.query(ctx, "get_debts", queryMsg{GetDebts: &getDebtsQuery{GroupID: groupID}}, &raw)
	if err != nil {
		return nil, err
	}
	return decodeDebts(raw), nil
}

func (c *Client) BalanceSummary(ctx context.Context, groupID uint64, user string) (*models.BalanceSummary, error) {
	var raw json.RawMessage
	err := c.query(ctx, "get_balance_summary", queryMsg{GetBalanceSummary: &getBalanceSummaryQuery{
		GroupID: groupID,
		User:    user,
	}}, &raw)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil // ledger omits the summary; caller falls back
		}
		return nil, err
	}
	return decodeBalanceSummary(raw), nil
}

func (c *Client) BankBalance(ctx context.Context, address string) (models.Amount, error) {
	const op = "bank_balance"
	u := fmt.Sprintf("%s/bank/balances/%s?denom=%s", c.baseURL, url.PathEscape(address), url.QueryEscape(c.denom))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var resp bankBalanceResponse
	if err := c.do(op, req, &resp); err != nil {
		return 0, err
	}
	return resp.Amount, nil
}

// --- Executes ---

func (c *Client) CreateGroup(ctx context.Context, sender, name string, members []string) (*models.TxResult, error) {
	// The creator is always a member; dedupe before submission.
	seen := map[string]struct{}{sender: {}}
	deduped := []string{sender}
	for _, m := range members {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		deduped = append(deduped, m)
	}

	return c.execute(ctx, "create_group", sender, executeMsg{
		CreateGroup: &createGroupMsg{Name: name, Members: deduped},
	}, 0)
}

func (c *Client) JoinGroup(ctx context.Context, sender string, groupID uint64) (*models.TxResult, error) {
	return c.execute(ctx, "join_group", sender, executeMsg{
		JoinGroup: &joinGroupMsg{GroupID: groupID},
	}, 0)
}

func (c *Client) LeaveGroup(ctx context.Context, sender string, groupID uint64) (*models.TxResult, error) {
	return c.execute(ctx, "leave_group", sender, executeMsg{
		LeaveGroup: &leaveGroupMsg{GroupID: groupID},
	}, 0)
}

func (c *Client) AddExpense(ctx context.Context, sender string, groupID uint64, description string, amount models.Amount, splitBetween []string) (*models.TxResult, error) {
	return c.execute(ctx, "add_expense", sender, executeMsg{
		AddExpense: &addExpenseMsg{
			GroupID:      groupID,
			Description:  description,
			Amount:       amount,
			SplitBetween: splitBetween,
		},
	}, 0)
}

func (c *Client) SettleDebt(ctx context.Context, sender string, groupID uint64, to string, amount models.Amount) (*models.TxResult, error) {
	return c.execute(ctx, "settle_debt", sender, executeMsg{
		SettleDebt: &settleDebtMsg{GroupID: groupID, To: to, Amount: amount},
	}, amount)
}

func (c *Client) SettleAllDebts(ctx context.Context, sender string, groupID uint64, total models.Amount) (*models.TxResult, error) {
	return c.execute(ctx, "settle_all_debts", sender, executeMsg{
		SettleAllDebts: &settleAllDebtsMsg{GroupID: groupID},
	}, total)
}

// --- Transport ---

func (c *Client) query(ctx context.Context, op string, msg queryMsg, out any) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%s: encode query: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/query", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(op, req, out)
}

// execute submits a state-changing message, attaching funds when
// non-zero, and decodes the transaction result.
func (c *Client) execute(ctx context.Context, op, sender string, msg executeMsg, funds models.Amount) (*models.TxResult, error) {
	envelope := executeRequest{Sender: sender, Msg: msg}
	if funds > 0 {
		envelope.Funds = []coin{{Denom: c.denom, Amount: funds}}
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("%s: encode execute: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/execute", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	var result models.TxResult
	if err := c.do(op, req, &result); err != nil {
		return nil, err
	}

	slog.Debug("ledger execute confirmed",
		"op", op,
		"tx_hash", result.TransactionHash,
		"height", result.Height,
	)
	return &result, nil
}

// do runs one request and normalizes the outcome into the error
// taxonomy: transport problems and undecodable responses are
// ErrUnavailable, 404 is ErrNotFound, other non-2xx are *ExecError with
// the ledger's message when parseable.
func (c *Client) do(op string, req *http.Request, out any) error {
	start := time.Now()
	outcome := "ok"
	defer func() {
		metrics.LedgerRequests.WithLabelValues(op, outcome).Inc()
		metrics.LedgerRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	resp, err := c.httpc.Do(req)
	if err != nil {
		outcome = "unavailable"
		return unavailable(op, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		outcome = "unavailable"
		return unavailable(op, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		outcome = "not_found"
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case resp.StatusCode >= 500:
		outcome = "unavailable"
		return unavailable(op, fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode >= 400:
		outcome = "rejected"
		var errResp errorResponse
		if json.Unmarshal(payload, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%s: %w", op, &ExecError{Message: errResp.Error})
		}
		return fmt.Errorf("%s: %w", op, &ExecError{})
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		outcome = "unavailable"
		return unavailable(op, fmt.Errorf("malformed response: %v", err))
	}
	return nil
}
