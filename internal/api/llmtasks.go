// ABOUTME: LLM task endpoints: query, detail, delete
// ABOUTME: Tasks record prompt/response traffic relayed through the server

package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// LLMTask is one row of the task listing. The pull/response timestamps are
// nil until the corresponding leg has happened.
type LLMTask struct {
	ID         string  `json:"id"`
	Model      string  `json:"model"`
	Prompt     string  `json:"prompt"`
	ReqContent string  `json:"req_content"`
	ReqPushAt  int64   `json:"req_push_at"`
	ReqPullAt  *int64  `json:"req_pull_at"`
	RspContent *string `json:"rsp_content"`
	RspPushAt  *int64  `json:"rsp_push_at"`
	RspPullAt  *int64  `json:"rsp_pull_at"`
}

// LLMTaskQuery filters and paginates the task listing. Page is 0-based.
type LLMTaskQuery struct {
	Model      string
	Prompt     string
	ReqContent string
	RspContent string
	Page       uint64
	Size       uint64
}

// LLMTaskPage is one page of tasks plus the pagination envelope.
type LLMTaskPage struct {
	Page  Page
	Tasks []LLMTask
}

type llmTaskListResponse struct {
	Page     Page `json:"page"`
	Embedded struct {
		Tasks []LLMTask `json:"llm_task"`
	} `json:"_embedded"`
}

// ListLLMTasks fetches one page of LLM tasks.
func (c *Client) ListLLMTasks(ctx context.Context, q LLMTaskQuery) (*LLMTaskPage, error) {
	params := url.Values{}
	params.Set("size", strconv.FormatUint(q.Size, 10))
	params.Set("page", strconv.FormatUint(q.Page, 10))
	if q.Model != "" {
		params.Set("model", q.Model)
	}
	if q.Prompt != "" {
		params.Set("prompt", q.Prompt)
	}
	if q.ReqContent != "" {
		params.Set("req_content", q.ReqContent)
	}
	if q.RspContent != "" {
		params.Set("rsp_content", q.RspContent)
	}

	var resp llmTaskListResponse
	if err := c.get(ctx, "/api/llm_tasks", params, &resp); err != nil {
		return nil, fmt.Errorf("listing llm tasks: %w", err)
	}
	return &LLMTaskPage{Page: resp.Page, Tasks: resp.Embedded.Tasks}, nil
}

// GetLLMTask fetches a single task by id.
func (c *Client) GetLLMTask(ctx context.Context, id string) (*LLMTask, error) {
	var task LLMTask
	if err := c.get(ctx, "/api/llm_tasks/"+url.PathEscape(id), nil, &task); err != nil {
		return nil, fmt.Errorf("fetching llm task %s: %w", id, err)
	}
	return &task, nil
}

// DeleteLLMTask removes a task by id.
func (c *Client) DeleteLLMTask(ctx context.Context, id string) error {
	if err := c.delete(ctx, "/api/llm_tasks/"+url.PathEscape(id)); err != nil {
		return fmt.Errorf("deleting llm task %s: %w", id, err)
	}
	return nil
}
