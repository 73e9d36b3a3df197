// ABOUTME: User CRUD endpoints for console account administration
// ABOUTME: Users carry role assignments; grants flow from roles at login

package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// User is one console account with its assigned roles.
type User struct {
	ID       int32  `json:"id"`
	Username string `json:"username"`
	Roles    []Role `json:"roles"`
}

// UserQuery filters and paginates the user listing. Page is 0-based.
type UserQuery struct {
	Username string
	Page     uint64
	Size     uint64
}

// UserPage is one page of users plus the pagination envelope.
type UserPage struct {
	Page  Page
	Users []User
}

type userListResponse struct {
	Page     Page `json:"page"`
	Embedded struct {
		Users []User `json:"user"`
	} `json:"_embedded"`
}

// ListUsers fetches one page of users.
func (c *Client) ListUsers(ctx context.Context, q UserQuery) (*UserPage, error) {
	params := url.Values{}
	params.Set("size", strconv.FormatUint(q.Size, 10))
	params.Set("page", strconv.FormatUint(q.Page, 10))
	if q.Username != "" {
		params.Set("username", q.Username)
	}

	var resp userListResponse
	if err := c.get(ctx, "/api/users", params, &resp); err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return &UserPage{Page: resp.Page, Users: resp.Embedded.Users}, nil
}

// UserDetail is the single-user view.
type UserDetail struct {
	ID    int32  `json:"id"`
	Name  string `json:"name"`
	Roles []Role `json:"roles"`
}

// GetUser fetches a single user by id.
func (c *Client) GetUser(ctx context.Context, id int32) (*UserDetail, error) {
	var detail UserDetail
	if err := c.get(ctx, "/api/users/"+strconv.FormatInt(int64(id), 10), nil, &detail); err != nil {
		return nil, fmt.Errorf("fetching user %d: %w", id, err)
	}
	return &detail, nil
}

type userCreateRequest struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	RoleIDs  []int32 `json:"role_ids"`
}

// CreateUser creates an account with the given role assignments. The
// password here travels inside the authorized TLS channel, not through the
// login challenge scheme; only the login flow needs the per-attempt RSA key.
func (c *Client) CreateUser(ctx context.Context, username, password string, roleIDs []int32) error {
	if err := c.post(ctx, "/api/users", userCreateRequest{
		Username: username,
		Password: password,
		RoleIDs:  roleIDs,
	}, nil); err != nil {
		return fmt.Errorf("creating user %s: %w", username, err)
	}
	return nil
}

type userUpdateRequest struct {
	Username string  `json:"username"`
	RoleIDs  []int32 `json:"role_ids"`
}

// UpdateUser replaces a user's name and role assignments.
func (c *Client) UpdateUser(ctx context.Context, id int32, username string, roleIDs []int32) error {
	path := "/api/users/" + strconv.FormatInt(int64(id), 10)
	if err := c.patch(ctx, path, userUpdateRequest{Username: username, RoleIDs: roleIDs}, nil); err != nil {
		return fmt.Errorf("updating user %d: %w", id, err)
	}
	return nil
}

// DeleteUser removes a user by id.
func (c *Client) DeleteUser(ctx context.Context, id int32) error {
	if err := c.delete(ctx, "/api/users/"+strconv.FormatInt(int64(id), 10)); err != nil {
		return fmt.Errorf("deleting user %d: %w", id, err)
	}
	return nil
}
