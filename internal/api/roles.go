// ABOUTME: Role CRUD endpoints plus the grantable operation catalogue
// ABOUTME: Roles bundle grants; the catalogue names every operation a role may carry

package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/z11n/z11n-console/internal/session"
)

// Role is a named bundle of grants.
type Role struct {
	ID          int32           `json:"id"`
	Name        string          `json:"name"`
	RestfulAPIs []session.Grant `json:"restful_apis"`
}

// RoleQuery filters and paginates the role listing. Page is 0-based.
type RoleQuery struct {
	Name string
	Page uint64
	Size uint64
}

// RolePage is one page of roles plus the pagination envelope.
type RolePage struct {
	Page  Page
	Roles []Role
}

type roleListResponse struct {
	Page     Page `json:"page"`
	Embedded struct {
		Roles []Role `json:"role"`
	} `json:"_embedded"`
}

// ListRoles fetches one page of roles.
func (c *Client) ListRoles(ctx context.Context, q RoleQuery) (*RolePage, error) {
	params := url.Values{}
	params.Set("size", strconv.FormatUint(q.Size, 10))
	params.Set("page", strconv.FormatUint(q.Page, 10))
	if q.Name != "" {
		params.Set("name", q.Name)
	}

	var resp roleListResponse
	if err := c.get(ctx, "/api/roles", params, &resp); err != nil {
		return nil, fmt.Errorf("listing roles: %w", err)
	}
	return &RolePage{Page: resp.Page, Roles: resp.Embedded.Roles}, nil
}

// GetRole fetches a single role by id.
func (c *Client) GetRole(ctx context.Context, id int32) (*Role, error) {
	var role Role
	if err := c.get(ctx, "/api/roles/"+strconv.FormatInt(int64(id), 10), nil, &role); err != nil {
		return nil, fmt.Errorf("fetching role %d: %w", id, err)
	}
	return &role, nil
}

type roleWriteRequest struct {
	Name        string          `json:"name"`
	RestfulAPIs []session.Grant `json:"restful_apis"`
}

// CreateRole creates a role carrying the given grants.
func (c *Client) CreateRole(ctx context.Context, name string, grants []session.Grant) error {
	if err := c.post(ctx, "/api/roles", roleWriteRequest{Name: name, RestfulAPIs: grants}, nil); err != nil {
		return fmt.Errorf("creating role %s: %w", name, err)
	}
	return nil
}

// UpdateRole replaces a role's name and grant list.
func (c *Client) UpdateRole(ctx context.Context, id int32, name string, grants []session.Grant) error {
	path := "/api/roles/" + strconv.FormatInt(int64(id), 10)
	if err := c.patch(ctx, path, roleWriteRequest{Name: name, RestfulAPIs: grants}, nil); err != nil {
		return fmt.Errorf("updating role %d: %w", id, err)
	}
	return nil
}

// DeleteRole removes a role by id.
func (c *Client) DeleteRole(ctx context.Context, id int32) error {
	if err := c.delete(ctx, "/api/roles/"+strconv.FormatInt(int64(id), 10)); err != nil {
		return fmt.Errorf("deleting role %d: %w", id, err)
	}
	return nil
}

// ListRestfulAPIs fetches the full catalogue of grantable operations, used
// by the role editor to present operations by display name.
func (c *Client) ListRestfulAPIs(ctx context.Context) ([]session.Grant, error) {
	var apis []session.Grant
	if err := c.get(ctx, "/api/restful_apis", nil, &apis); err != nil {
		return nil, fmt.Errorf("listing restful apis: %w", err)
	}
	return apis, nil
}
