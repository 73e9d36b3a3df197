// ABOUTME: RoundTripper injecting bearer auth and intercepting 401 responses
// ABOUTME: The single place where credential expiry tears down the local session

package api

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/z11n/z11n-console/internal/session"
)

// authTransport wraps a RoundTripper with the console's two cross-cutting
// policies: every request with an active session carries
// "Authorization: Bearer <token>", and any 401 on such a request clears the
// persisted session. Requests issued before login (captcha fetch, the login
// call itself) carry no token, so a 401 on those never touches the session.
//
// Individual screens never handle 401 themselves; they observe the failed
// call as an ordinary error while the route guard, notified exactly once,
// swaps back to the login view.
type authTransport struct {
	base     http.RoundTripper
	sessions session.Store
	logger   *slog.Logger

	mu        sync.Mutex
	onExpired func()
	notified  bool
}

func newAuthTransport(base http.RoundTripper, sessions session.Store, logger *slog.Logger) *authTransport {
	return &authTransport{
		base:     base,
		sessions: sessions,
		logger:   logger,
	}
}

// setOnExpired registers the expiry handler.
func (t *authTransport) setOnExpired(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onExpired = fn
}

// rearm re-enables the one-shot expiry notification after a fresh login.
func (t *authTransport) rearm() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.notified = false
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Per RoundTripper contract the original request is not mutated
	req = req.Clone(req.Context())
	req.Header.Set("X-Request-Id", uuid.NewString())

	token := t.sessions.Token()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && token != "" {
		t.expire(req)
	}
	return resp, nil
}

// expire clears the session and fires the expiry handler at most once per
// session. Concurrent in-flight 401s race here; the latch guarantees the
// user sees a single "session expired" notice rather than one per request.
func (t *authTransport) expire(req *http.Request) {
	t.logger.Warn("credential rejected, clearing session",
		"method", req.Method,
		"path", req.URL.Path)

	if err := t.sessions.Clear(); err != nil {
		t.logger.Error("failed to clear session", "error", err)
	}

	t.mu.Lock()
	already := t.notified
	t.notified = true
	fn := t.onExpired
	t.mu.Unlock()

	if !already && fn != nil {
		fn()
	}
}
