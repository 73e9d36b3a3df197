// ABOUTME: Login and logout calls populating and clearing the session store
// ABOUTME: A successful login atomically replaces the token and grant set

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/z11n/z11n-console/internal/session"
)

// ErrNoChallenge means login was attempted without a fetched challenge.
var ErrNoChallenge = errors.New("no login challenge loaded")

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"` // base64 RSA ciphertext, never plaintext
	UUID     string `json:"uuid"`
	Captcha  string `json:"captcha"`
}

type loginResponse struct {
	Token       string          `json:"token"`
	DisplayName string          `json:"display_name"`
	RestfulAPIs []session.Grant `json:"restful_apis"`
}

// Login submits the credentials together with the challenge answer. On
// success the session store is populated with the token and the full grant
// set and the 401 expiry notice is re-armed. On rejection (wrong password,
// wrong answer, or an expired/consumed challenge; the server does not say
// which) the store is left untouched and the caller must fetch a fresh
// challenge before retrying.
func (c *Client) Login(ctx context.Context, username, password string, ch *Challenge, answer string) (session.Session, error) {
	if ch == nil || ch.UUID == "" {
		return session.Session{}, ErrNoChallenge
	}

	ciphertext, err := EncryptPassword(ch.PublicKeyPEM, password)
	if err != nil {
		return session.Session{}, err
	}

	var resp loginResponse
	err = c.post(ctx, "/api/login", loginRequest{
		Username: username,
		Password: ciphertext,
		UUID:     ch.UUID,
		Captcha:  answer,
	}, &resp)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) &&
			(statusErr.StatusCode == http.StatusBadRequest || statusErr.StatusCode == http.StatusUnauthorized) {
			return session.Session{}, ErrLoginRejected
		}
		return session.Session{}, fmt.Errorf("submitting login: %w", err)
	}

	if resp.Token == "" {
		return session.Session{}, fmt.Errorf("login response missing token")
	}

	displayName := resp.DisplayName
	if displayName == "" {
		displayName = username
	}

	sess := session.Session{
		Token:       resp.Token,
		DisplayName: displayName,
		Grants:      resp.RestfulAPIs,
	}
	if err := c.sessions.Save(sess); err != nil {
		return session.Session{}, fmt.Errorf("persisting session: %w", err)
	}
	c.transport.rearm()

	c.logger.Info("login succeeded", "username", username, "grants", len(sess.Grants))
	return sess, nil
}

// Logout clears the local session and tells the server to drop the token.
// The local clear happens first and always succeeds independently of the
// network: a dead server must not trap the user in a logged-in console.
func (c *Client) Logout(ctx context.Context) error {
	token := c.sessions.Token()
	if token == "" {
		return nil
	}

	if err := c.sessions.Clear(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}

	if err := c.post(ctx, "/api/logout/"+token, nil, nil); err != nil {
		// Best-effort: the server expires orphaned tokens on its own
		c.logger.Warn("server-side logout failed", "error", err)
	}
	return nil
}
