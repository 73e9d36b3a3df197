// ABOUTME: Host inventory endpoints: query, detail, delete, and refresh request
// ABOUTME: Host detail is free-form JSON reported by the agent's last upload

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Host is one row of the host inventory listing.
type Host struct {
	AgentID   string `json:"agent_id"`
	Name      string `json:"name"`
	HostName  string `json:"host_name"`
	OSVersion string `json:"os_version"`
	CPUArch   string `json:"cpu_arch"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// HostQuery filters and paginates the host listing. Page is 0-based.
type HostQuery struct {
	IP   string
	Page uint64
	Size uint64
}

// HostPage is one page of hosts plus the pagination envelope.
type HostPage struct {
	Page  Page
	Hosts []Host
}

type hostListResponse struct {
	Page     Page `json:"page"`
	Embedded struct {
		Hosts []Host `json:"host"`
	} `json:"_embedded"`
}

// ListHosts fetches one page of the host inventory.
func (c *Client) ListHosts(ctx context.Context, q HostQuery) (*HostPage, error) {
	params := url.Values{}
	params.Set("size", strconv.FormatUint(q.Size, 10))
	params.Set("page", strconv.FormatUint(q.Page, 10))
	if q.IP != "" {
		params.Set("ip", q.IP)
	}

	var resp hostListResponse
	if err := c.get(ctx, "/api/hosts", params, &resp); err != nil {
		return nil, fmt.Errorf("listing hosts: %w", err)
	}
	return &HostPage{Page: resp.Page, Hosts: resp.Embedded.Hosts}, nil
}

// GetHost fetches the raw host report for an agent. The shape follows
// whatever the agent last uploaded, so it stays unparsed here and the host
// detail screen pretty-prints it.
func (c *Client) GetHost(ctx context.Context, id string) (json.RawMessage, error) {
	var detail json.RawMessage
	if err := c.get(ctx, "/api/hosts/"+url.PathEscape(id), nil, &detail); err != nil {
		return nil, fmt.Errorf("fetching host %s: %w", id, err)
	}
	return detail, nil
}

// DeleteHost removes a host record.
func (c *Client) DeleteHost(ctx context.Context, id string) error {
	if err := c.delete(ctx, "/api/hosts/"+url.PathEscape(id)); err != nil {
		return fmt.Errorf("deleting host %s: %w", id, err)
	}
	return nil
}

type hostRefreshRequest struct {
	AgentID string `json:"agent_id"`
}

// RequestHostRefresh asks the server to have the agent re-upload its host
// info on the next heartbeat. Completion is asynchronous.
func (c *Client) RequestHostRefresh(ctx context.Context, agentID string) error {
	if err := c.post(ctx, "/api/hosts", hostRefreshRequest{AgentID: agentID}, nil); err != nil {
		return fmt.Errorf("requesting host refresh for %s: %w", agentID, err)
	}
	return nil
}
