// Package client talks to the fintrack REST API and keeps a session's
// transaction collection in step with the server.
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
	"strings"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

const defaultTimeout = 15 * time.Second

// Client performs one HTTP request per call with no retries. Failures are
// returned as *APIError or as errors wrapping core.ErrUpstream.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", baseURL)
	}
	c := &Client{
		baseURL:    strings.TrimRight(u.String(), "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     log.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithComponent(log.ComponentClient)
	return c, nil
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, email, password string) (core.User, error) {
	var out struct {
		User core.User `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/auth/register", map[string]string{"email": email, "password": password}, &out)
	return out.User, err
}

// Login obtains a token and uses it for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	body := map[string]string{"email": email}
	if password != "" {
		body["password"] = password
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", fmt.Errorf("login response without token: %w", core.ErrUpstream)
	}
	c.SetToken(out.Token)
	return out.Token, nil
}

func (c *Client) Profile(ctx context.Context) (core.User, error) {
	var out struct {
		User core.User `json:"user"`
	}
	err := c.do(ctx, http.MethodGet, "/user/profile", nil, &out)
	return out.User, err
}

// List returns the caller's records as stored.
func (c *Client) List(ctx context.Context) ([]core.Transaction, error) {
	var out struct {
		FinancialData []core.Transaction `json:"financialData"`
	}
	if err := c.do(ctx, http.MethodGet, "/user/data", nil, &out); err != nil {
		return nil, err
	}
	if out.FinancialData == nil {
		out.FinancialData = []core.Transaction{}
	}
	return out.FinancialData, nil
}

// Create stores a record and returns the server's echo of it.
func (c *Client) Create(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	var out core.Transaction
	err := c.do(ctx, http.MethodPost, "/user/data", in, &out)
	return out, err
}

// Update sends a partial update. The response carries no record.
func (c *Client) Update(ctx context.Context, id string, in core.TransactionInput) error {
	return c.do(ctx, http.MethodPut, "/user/data/"+url.PathEscape(id), in, nil)
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/user/data/"+url.PathEscape(id), nil, nil)
}

// Summary fetches the server-computed dashboard. query may be nil.
func (c *Client) Summary(ctx context.Context, query url.Values) (core.Summary, error) {
	path := "/user/summary"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	var out core.Summary
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "API request failed", log.FieldMethod, method, log.FieldPath, path, log.FieldError, err)
		return fmt.Errorf("%s %s: %w: %v", method, path, core.ErrUpstream, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "API request completed",
		log.FieldMethod, method, log.FieldPath, path,
		log.FieldStatusCode, resp.StatusCode, log.FieldDuration, time.Since(start).Milliseconds())

	if resp.StatusCode >= 300 {
		return newAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s response: %w: %v", method, path, core.ErrUpstream, err)
	}
	return nil
}
