// Package api is a typed client for the budget book REST API.
//
// Every endpoint answers with the same envelope:
//
//	{"success": bool, "data": ..., "message": "...", "error": {"code", "message", "details"}, "timestamp": "..."}
//
// The client unwraps it, turning failures into *Error values. Authentication is
// handled by the transport: requests carry the stored access token and a 401
// triggers one shared refresh before the request is replayed.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxResponseBytes = 8 << 20

// Options configures New.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// SecureConnection upgrades http:// request URLs to https://.
	SecureConnection bool
	Tokens           TokenStore
	Logger           *zap.Logger
	// Transport is the underlying round tripper; http.DefaultTransport when nil.
	Transport http.RoundTripper
	// OnSessionExpired runs once each time a refresh fails and tokens are cleared.
	OnSessionExpired func()
}

// Client talks to the API. Resource services hang off it.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	tokens  TokenStore
	log     *zap.Logger

	Auth         *AuthService
	Users        *UserService
	Accounts     *AccountService
	Categories   *CategoryService
	Transactions *TransactionService
	Statistics   *StatisticsService
	AI           *AIService
}

// New builds a client.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("api: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api: base url %q must be absolute", opts.BaseURL)
	}
	if opts.Tokens == nil {
		opts.Tokens = NewMemoryTokenStore(Tokens{})
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{baseURL: base, tokens: opts.Tokens, log: log}
	c.Auth = &AuthService{c: c}
	c.Users = &UserService{c: c}
	c.Accounts = &AccountService{c: c}
	c.Categories = &CategoryService{c: c}
	c.Transactions = &TransactionService{c: c}
	c.Statistics = &StatisticsService{c: c}
	c.AI = &AIService{c: c}

	c.http = &http.Client{
		Timeout: timeout,
		Transport: &authTransport{
			base:      opts.Transport,
			tokens:    opts.Tokens,
			secure:    opts.SecureConnection,
			refresh:   c.Auth.Refresh,
			onExpired: opts.OnSessionExpired,
			log:       log,
		},
	}
	return c, nil
}

// Tokens exposes the token store the client was built with.
func (c *Client) Tokens() TokenStore { return c.tokens }

// LoggedIn reports whether an access token is stored.
func (c *Client) LoggedIn() bool {
	t, err := c.tokens.Tokens()
	return err == nil && !t.Empty()
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	header http.Header
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, request{method: http.MethodGet, path: path, query: query}, out)
}

func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	return c.do(ctx, request{method: method, path: path, body: body}, out)
}

// do performs r and decodes the envelope's data into out (which may be nil).
func (c *Client) do(ctx context.Context, r request, out any) error {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + r.path
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("%s %s: encode body: %w", r.method, r.path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return fmt.Errorf("%s %s: %w", r.method, r.path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range r.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", r.method, r.path, err)
	}
	c.log.Debug("api call",
		zap.String("method", r.method),
		zap.String("path", r.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if err := decode(resp.StatusCode, raw, out); err != nil {
		return fmt.Errorf("%s %s: %w", r.method, r.path, err)
	}
	return nil
}

func decode(status int, raw []byte, out any) error {
	ok := status >= 200 && status < 300
	if len(bytes.TrimSpace(raw)) == 0 {
		if ok {
			return nil
		}
		return &Error{Status: status}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if !ok {
			msg := strings.TrimSpace(string(raw))
			if len(msg) > 512 {
				msg = msg[:512]
			}
			return &Error{Status: status, Message: msg}
		}
		return fmt.Errorf("decode envelope: %w", err)
	}
	if !ok || !env.Success {
		apiErr := &Error{Status: status, Message: env.Message}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Details = env.Error.Details
			if env.Error.Message != "" {
				apiErr.Message = env.Error.Message
			}
		}
		return apiErr
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

func pathID(prefix string, id int64) string {
	return fmt.Sprintf("%s/%d", prefix, id)
}
