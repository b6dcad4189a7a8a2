// Package client talks to the budget HTTP API. Client mirrors every endpoint a UI
// needs; Poller keeps a view fresh by re-reading it on a fixed interval.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"budget/models"
	"budget/service"

	"github.com/shopspring/decimal"
)

const defaultTimeout = 15 * time.Second

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status     int    `json:"-"`
	Message    string `json:"error"`
	Code       string `json:"code,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("budget api: %d %s", e.Status, e.Message)
	if e.Suggestion != "" {
		msg += " (" + e.Suggestion + ")"
	}
	return msg
}

// StatusOf returns the HTTP status carried by err, or 0 when err is not an *APIError.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Client is safe for concurrent use; pollers share it.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ service.Ledger = (*Client)(nil)

// TransactionInput is the body of AddTransaction.
type TransactionInput struct {
	Amount      decimal.Decimal `json:"amount"`
	Type        models.Kind     `json:"type"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Date        models.Date     `json:"date"`
}

// CategoryInput is the body of AddCategory and UpdateCategory.
type CategoryInput struct {
	Name string      `json:"name"`
	Type models.Kind `json:"type"`
	Icon string      `json:"icon,omitempty"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login exchanges credentials for a session token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, username, password string) (*models.User, error) {
	var resp loginResponse
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &resp); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.token = resp.Token
	c.mu.Unlock()
	return &resp.User, nil
}

// Transactions lists the month's transactions, newest first. A zero month lists all.
func (c *Client) Transactions(ctx context.Context, month models.Month) ([]models.Transaction, error) {
	var q url.Values
	if month != "" {
		q = url.Values{"month": {month.String()}}
	}
	txs := make([]models.Transaction, 0)
	if err := c.do(ctx, http.MethodGet, "/transactions", q, nil, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

func (c *Client) AddTransaction(ctx context.Context, in TransactionInput) (uint, error) {
	var resp struct {
		ID uint `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/transactions", nil, in, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

func (c *Client) UpdateTransaction(ctx context.Context, id uint, patch models.TransactionPatch) error {
	return c.do(ctx, http.MethodPut, "/transactions/"+strconv.FormatUint(uint64(id), 10), nil, patch, nil)
}

func (c *Client) DeleteTransaction(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, "/transactions/"+strconv.FormatUint(uint64(id), 10), nil, nil, nil)
}

// Balance returns nil, nil when the month has no balance yet.
func (c *Client) Balance(ctx context.Context, month models.Month) (*models.MonthlyBalance, error) {
	var b *models.MonthlyBalance
	if err := c.do(ctx, http.MethodGet, "/balance/"+month.String(), nil, nil, &b); err != nil {
		return nil, err
	}
	return b, nil
}

func (c *Client) SetBalance(ctx context.Context, month models.Month, v models.BalanceValues) error {
	return c.do(ctx, http.MethodPost, "/balance/"+month.String(), nil, v, nil)
}

func (c *Client) PatchBalance(ctx context.Context, month models.Month, patch models.BalancePatch) error {
	return c.do(ctx, http.MethodPut, "/balance/"+month.String(), nil, patch, nil)
}

// Recalculate recomputes the month's totals locally from the listed transactions
// and writes them back with PatchBalance.
func (c *Client) Recalculate(ctx context.Context, month models.Month) (*models.MonthlyBalance, error) {
	return service.Recalculate(ctx, c, month)
}

// RecalculateRemote asks the server to do the same in one round trip.
func (c *Client) RecalculateRemote(ctx context.Context, month models.Month) (*models.MonthlyBalance, error) {
	var b *models.MonthlyBalance
	if err := c.do(ctx, http.MethodPost, "/balance/"+month.String()+"/recalculate", nil, nil, &b); err != nil {
		return nil, err
	}
	return b, nil
}

func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	cats := make([]models.Category, 0)
	if err := c.do(ctx, http.MethodGet, "/categories", nil, nil, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

func (c *Client) AddCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	var cat models.Category
	if err := c.do(ctx, http.MethodPost, "/categories", nil, in, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*models.Category, error) {
	var cat models.Category
	if err := c.do(ctx, http.MethodPut, "/categories/"+url.PathEscape(id), nil, in, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/categories/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		if json.Unmarshal(data, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
