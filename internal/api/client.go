// ABOUTME: HTTP client for the z11n management API with bearer auth plumbing
// ABOUTME: Provides the shared request helpers and error types for all endpoints

package api

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

	"github.com/z11n/z11n-console/internal/session"
)

// ErrLoginRejected means the server refused the credentials or the challenge
// answer. The two causes are deliberately not distinguished so the console
// cannot be used as a password/captcha oracle.
var ErrLoginRejected = errors.New("login rejected")

// StatusError is returned for non-2xx responses that are not handled by a
// more specific error.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned status %d", e.StatusCode)
}

// Page describes the server's pagination envelope. Pages are 0-based on the
// wire; the screens present them 1-based.
type Page struct {
	Size          uint64 `json:"size"`
	TotalElements uint64 `json:"total_elements"`
	TotalPages    uint64 `json:"total_pages"`
}

// Client talks to the z11n management server. All authorized calls flow
// through the auth transport, which injects the bearer token and reacts to
// 401 by tearing down the session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	sessions   session.Store
	transport  *authTransport
	logger     *slog.Logger
}

// New creates a client for the server at baseURL, reading and writing
// session state through the given store.
func New(baseURL string, sessions session.Store) *Client {
	logger := slog.Default().With("component", "api")
	transport := newAuthTransport(http.DefaultTransport, sessions, logger)

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
		sessions:  sessions,
		transport: transport,
		logger:    logger,
	}
}

// OnSessionExpired registers the handler invoked when a 401 clears the
// session. At most one invocation per session; re-armed by the next login.
func (c *Client) OnSessionExpired(fn func()) {
	c.transport.setOnExpired(fn)
}

// Sessions returns the session store this client writes to.
func (c *Client) Sessions() session.Store {
	return c.sessions
}

// do issues a request and decodes a JSON response into out (when non-nil).
// Non-2xx statuses return *StatusError without touching out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused
		io.Copy(io.Discard, resp.Body)
		return &StatusError{StatusCode: resp.StatusCode}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}
