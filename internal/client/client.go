// Package client is a Go client for the same-origin /api/hiro proxy routes.
//
// Failures are returned as *APIError values with a user-facing message.
// Nothing is retried; retrying is up to the caller.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"greenearth/backend/internal/config"
)

// DefaultLimit is the page size used when a caller passes limit <= 0
const DefaultLimit = 20

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client calls the proxy routes under baseURL + "/api/hiro"
type Client struct {
	baseURL    string
	credential string
	doer       Doer
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithDoer replaces the HTTP transport
func WithDoer(d Doer) Option {
	return func(c *Client) { c.doer = d }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the server at baseURL. credential is only used
// for the local "configured" check; the proxy holds the real key.
func New(baseURL, credential string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/") + "/api/hiro",
		credential: credential,
		doer:       &http.Client{Timeout: 30 * time.Second},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether calls will be attempted
func (c *Client) Configured() bool {
	return config.IsAPIKeyConfigured(c.credential)
}

// CallEndpoint performs a GET on path (relative to /api/hiro) and returns the
// JSON body. It fails with ErrNotConfigured without a network call when the
// credential is missing.
func (c *Client) CallEndpoint(ctx context.Context, path string) (json.RawMessage, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	return c.do(ctx, path)
}

func (c *Client) do(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, transportError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &errBody) // body may not be JSON
		return nil, errorFromStatus(resp.StatusCode, statusText(resp), errBody.Error)
	}

	if !json.Valid(body) {
		return nil, transportError(fmt.Errorf("failed to parse response from %s: invalid JSON", path))
	}
	return json.RawMessage(body), nil
}

// ==================== Operations ====================

// TestAuthentication asks the proxy to verify the credential upstream
func (c *Client) TestAuthentication(ctx context.Context) (*AuthResult, error) {
	body, err := c.logged("testing authentication", func() (json.RawMessage, error) {
		return c.CallEndpoint(ctx, "/test-auth")
	})
	if err != nil {
		return nil, err
	}
	var result AuthResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, transportError(fmt.Errorf("failed to decode auth result: %w", err))
	}
	return &result, nil
}

// GetAccountBalance returns the balances payload of an address
func (c *Client) GetAccountBalance(ctx context.Context, address string) (json.RawMessage, error) {
	return c.logged("fetching account balance", func() (json.RawMessage, error) {
		return c.CallEndpoint(ctx, "/balance/"+url.PathEscape(address))
	})
}

// GetAccountTransactions returns recent transactions of an address
func (c *Client) GetAccountTransactions(ctx context.Context, address string, limit int) (json.RawMessage, error) {
	return c.logged("fetching account transactions", func() (json.RawMessage, error) {
		return c.CallEndpoint(ctx, "/transactions/"+url.PathEscape(address)+"?limit="+strconv.Itoa(pageSize(limit)))
	})
}

// GetTransaction returns one transaction
func (c *Client) GetTransaction(ctx context.Context, txID string) (json.RawMessage, error) {
	return c.logged("fetching transaction", func() (json.RawMessage, error) {
		return c.CallEndpoint(ctx, "/transaction/"+url.PathEscape(txID))
	})
}

// GetContractEvents returns events emitted by a contract
func (c *Client) GetContractEvents(ctx context.Context, contractAddress, contractName string, limit int) (json.RawMessage, error) {
	path := fmt.Sprintf("/contract/%s/%s/events?limit=%d",
		url.PathEscape(contractAddress), url.PathEscape(contractName), pageSize(limit))
	return c.logged("fetching contract events", func() (json.RawMessage, error) {
		return c.CallEndpoint(ctx, path)
	})
}

// GetNetworkInfo returns public network timing info. It skips the local
// credential check; the proxy still reports an unconfigured key.
func (c *Client) GetNetworkInfo(ctx context.Context) (json.RawMessage, error) {
	return c.logged("fetching network info", func() (json.RawMessage, error) {
		return c.do(ctx, "/network")
	})
}

// TestConnection validates the credential end to end: authentication first,
// then network info. Failures are reported in the result, never as errors.
func (c *Client) TestConnection(ctx context.Context) ConnectionResult {
	if !c.Configured() {
		return ConnectionResult{Message: "API key not configured"}
	}

	auth, err := c.TestAuthentication(ctx)
	if err != nil {
		return ConnectionResult{Message: err.Error()}
	}
	if !auth.Authenticated {
		return ConnectionResult{Message: orDefault(auth.Error, "Authentication failed")}
	}

	info, err := c.GetNetworkInfo(ctx)
	if err != nil {
		return ConnectionResult{Message: err.Error()}
	}

	return ConnectionResult{
		Success:       true,
		Authenticated: true,
		Message:       "API key authenticated and verified",
		Data:          info,
	}
}

func (c *Client) logged(action string, fn func() (json.RawMessage, error)) (json.RawMessage, error) {
	body, err := fn()
	if err != nil {
		c.logger.Warn("Error "+action, zap.Error(err))
	}
	return body, err
}

func pageSize(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

func statusText(resp *http.Response) string {
	code := strconv.Itoa(resp.StatusCode)
	if text := strings.TrimSpace(strings.TrimPrefix(resp.Status, code)); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
