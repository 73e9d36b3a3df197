// ABOUTME: System settings endpoints: console title, icon, and logo
// ABOUTME: Images travel base64-encoded in JSON both directions

package api

import (
	"context"
	"encoding/base64"
	"fmt"
)

// SystemSettings is the branding configuration shown by the system screen.
type SystemSettings struct {
	Title string
	Icon  []byte
	Logo  []byte
}

// GetSystemSettings fetches title, icon, and logo. A setting the server has
// never stored comes back zero-valued rather than failing the whole screen.
func (c *Client) GetSystemSettings(ctx context.Context) (*SystemSettings, error) {
	settings := &SystemSettings{}

	var title struct {
		Title string `json:"title"`
	}
	if err := c.get(ctx, "/api/system/title", nil, &title); err == nil {
		settings.Title = title.Title
	}

	var icon struct {
		Base64Icon string `json:"base64_icon"`
	}
	if err := c.get(ctx, "/api/system/icon", nil, &icon); err == nil {
		if decoded, err := base64.StdEncoding.DecodeString(icon.Base64Icon); err == nil {
			settings.Icon = decoded
		}
	}

	var logo struct {
		Base64Logo string `json:"base64_logo"`
	}
	if err := c.get(ctx, "/api/system/logo", nil, &logo); err == nil {
		if decoded, err := base64.StdEncoding.DecodeString(logo.Base64Logo); err == nil {
			settings.Logo = decoded
		}
	}

	return settings, nil
}

type titleUpdateRequest struct {
	Title string `json:"title"`
}

// UpdateTitle replaces the console title.
func (c *Client) UpdateTitle(ctx context.Context, title string) error {
	if err := c.post(ctx, "/api/system/title", titleUpdateRequest{Title: title}, nil); err != nil {
		return fmt.Errorf("updating title: %w", err)
	}
	return nil
}

type iconUpdateRequest struct {
	Base64Icon string `json:"base64_icon"`
}

// UpdateIcon replaces the console icon image.
func (c *Client) UpdateIcon(ctx context.Context, icon []byte) error {
	body := iconUpdateRequest{Base64Icon: base64.StdEncoding.EncodeToString(icon)}
	if err := c.post(ctx, "/api/system/icon", body, nil); err != nil {
		return fmt.Errorf("updating icon: %w", err)
	}
	return nil
}

type logoUpdateRequest struct {
	Base64Logo string `json:"base64_logo"`
}

// UpdateLogo replaces the console logo image.
func (c *Client) UpdateLogo(ctx context.Context, logo []byte) error {
	body := logoUpdateRequest{Base64Logo: base64.StdEncoding.EncodeToString(logo)}
	if err := c.post(ctx, "/api/system/logo", body, nil); err != nil {
		return fmt.Errorf("updating logo: %w", err)
	}
	return nil
}
