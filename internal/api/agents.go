// ABOUTME: Agent query, detail, and delete endpoints
// ABOUTME: Agents are the managed endpoints reporting into the z11n server

package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Agent is one row of the agent listing.
type Agent struct {
	ID        string `json:"id"`
	Version   string `json:"version"`
	CreatedAt int64  `json:"created_at"` // unix millis
	UpdatedAt int64  `json:"updated_at"`
}

// AgentDetail is the expanded single-agent view.
type AgentDetail struct {
	AgentID      string `json:"agent_id"`
	AgentVersion string `json:"agent_version"`
	CreatedAt    int64  `json:"created_at"`
}

// AgentQuery filters and paginates the agent listing. Page is 0-based.
type AgentQuery struct {
	IP   string
	Page uint64
	Size uint64
}

// AgentPage is one page of agents plus the pagination envelope.
type AgentPage struct {
	Page   Page
	Agents []Agent
}

type agentListResponse struct {
	Page     Page `json:"page"`
	Embedded struct {
		Agents []Agent `json:"agent"`
	} `json:"_embedded"`
}

// ListAgents fetches one page of agents.
func (c *Client) ListAgents(ctx context.Context, q AgentQuery) (*AgentPage, error) {
	params := url.Values{}
	params.Set("size", strconv.FormatUint(q.Size, 10))
	params.Set("page", strconv.FormatUint(q.Page, 10))
	if q.IP != "" {
		params.Set("ip", q.IP)
	}

	var resp agentListResponse
	if err := c.get(ctx, "/api/agents", params, &resp); err != nil {
		return nil, fmt.Errorf("listing agents: %w", err)
	}
	return &AgentPage{Page: resp.Page, Agents: resp.Embedded.Agents}, nil
}

// GetAgent fetches a single agent by id.
func (c *Client) GetAgent(ctx context.Context, id string) (*AgentDetail, error) {
	var detail AgentDetail
	if err := c.get(ctx, "/api/agents/"+url.PathEscape(id), nil, &detail); err != nil {
		return nil, fmt.Errorf("fetching agent %s: %w", id, err)
	}
	return &detail, nil
}

// DeleteAgent removes an agent by id.
func (c *Client) DeleteAgent(ctx context.Context, id string) error {
	if err := c.delete(ctx, "/api/agents/"+url.PathEscape(id)); err != nil {
		return fmt.Errorf("deleting agent %s: %w", id, err)
	}
	return nil
}
