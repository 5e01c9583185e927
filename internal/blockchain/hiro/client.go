package hiro

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"greenearth/backend/internal/config"
)

// TestAddress is a well-known testnet address used to probe authentication
const TestAddress = "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM"

// maxErrorBody bounds how much of an upstream error body is kept for logs
const maxErrorBody = 4 << 10

// UpstreamError is a non-2xx response from the Hiro API
type UpstreamError struct {
	StatusCode int
	Status     string // reason phrase, e.g. "Not Found"
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("Hiro API error: %d %s", e.StatusCode, e.Status)
}

// Client is a client for the Hiro Platform API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new Hiro API client
func NewClient(cfg config.HiroConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.APIURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.Named("hiro"),
	}
}

// IsConfigured reports whether the credential is present
func (c *Client) IsConfigured() bool {
	return config.IsAPIKeyConfigured(c.apiKey)
}

// IsStacksAddress performs the prefix check applied before forwarding an
// address upstream. It is not a checksum validation.
func IsStacksAddress(address string) bool {
	return strings.HasPrefix(address, "ST") || strings.HasPrefix(address, "SP")
}

// ==================== Endpoints ====================

// GetBalances fetches STX and token balances of an address
func (c *Client) GetBalances(ctx context.Context, address string) (json.RawMessage, error) {
	return c.get(ctx, "/extended/v1/address/"+url.PathEscape(address)+"/balances", nil)
}

// GetAccountTransactions fetches recent transactions of an address
func (c *Client) GetAccountTransactions(ctx context.Context, address string, limit int) (json.RawMessage, error) {
	return c.get(ctx, "/extended/v1/address/"+url.PathEscape(address)+"/transactions", limitQuery(limit))
}

// GetTransaction fetches one transaction by ID
func (c *Client) GetTransaction(ctx context.Context, txID string) (json.RawMessage, error) {
	return c.get(ctx, "/extended/v1/tx/"+url.PathEscape(txID), nil)
}

// GetContractEvents fetches events emitted by a contract
func (c *Client) GetContractEvents(ctx context.Context, address, name string, limit int) (json.RawMessage, error) {
	contractID := url.PathEscape(address + "." + name)
	return c.get(ctx, "/extended/v1/contract/"+contractID+"/events", limitQuery(limit))
}

// GetNetworkBlockTimes fetches public network block timing info
func (c *Client) GetNetworkBlockTimes(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/extended/v1/info/network_block_times", nil)
}

// ProbeAuth checks the credential is accepted upstream by fetching the
// balances of TestAddress, which requires authentication.
func (c *Client) ProbeAuth(ctx context.Context) error {
	body, err := c.GetBalances(ctx, TestAddress)
	if err != nil {
		return err
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		return ErrInvalidResponse
	}
	if _, ok := payload["stx"]; !ok {
		return ErrInvalidResponse
	}
	return nil
}

// ==================== Transport ====================

func (c *Client) get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		upstreamErr := &UpstreamError{
			StatusCode: resp.StatusCode,
			Status:     statusText(resp),
			Body:       string(body),
		}
		c.logger.Warn("Hiro API error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", upstreamErr.Body))
		return nil, upstreamErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", path, err)
	}
	body = bytes.TrimSpace(body)
	if !json.Valid(body) {
		return nil, fmt.Errorf("invalid JSON from %s: %w", path, ErrInvalidResponse)
	}

	c.logger.Debug("Hiro API response",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)))

	return json.RawMessage(body), nil
}

// statusText returns the reason phrase of a response, e.g. "Not Found"
func statusText(resp *http.Response) string {
	code := strconv.Itoa(resp.StatusCode)
	if text := strings.TrimSpace(strings.TrimPrefix(resp.Status, code)); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

func limitQuery(limit int) url.Values {
	return url.Values{"limit": []string{strconv.Itoa(limit)}}
}
