// ABOUTME: Login challenge (captcha) retrieval from the unauthenticated endpoint
// ABOUTME: Each challenge is single-use and carries the RSA key for this attempt

package api

import (
	"context"
	"encoding/base64"
	"fmt"
)

// Challenge is a one-time captcha bound to a single login attempt. The UUID
// correlates the rendered image with the server-side answer and the private
// half of PublicKeyPEM. A failed login consumes the challenge; retrying with
// the same UUID is rejected, so callers fetch a fresh one after any failure.
type Challenge struct {
	UUID          string `json:"uuid"`
	CaptchaBase64 string `json:"base64_captcha"`
	PublicKeyPEM  string `json:"public_key"`
}

// Image decodes the challenge picture.
func (ch *Challenge) Image() ([]byte, error) {
	img, err := base64.StdEncoding.DecodeString(ch.CaptchaBase64)
	if err != nil {
		return nil, fmt.Errorf("decoding captcha image: %w", err)
	}
	return img, nil
}

// FetchChallenge retrieves a new login challenge. The endpoint is
// unauthenticated; no bearer token is attached because none exists yet.
func (c *Client) FetchChallenge(ctx context.Context) (*Challenge, error) {
	var ch Challenge
	if err := c.get(ctx, "/api/captcha", nil, &ch); err != nil {
		return nil, fmt.Errorf("fetching challenge: %w", err)
	}
	if ch.UUID == "" {
		return nil, fmt.Errorf("challenge response missing uuid")
	}
	return &ch, nil
}
