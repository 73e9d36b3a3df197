// ABOUTME: Tests for the paginated agent listing endpoint
// ABOUTME: Verifies query parameter encoding and the _embedded envelope

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAgents(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/agents", r.URL.Path)
		gotQuery = r.URL.Query()

		json.NewEncoder(w).Encode(map[string]any{
			"page": map[string]any{
				"size":           5,
				"total_elements": 12,
				"total_pages":    3,
			},
			"_embedded": map[string]any{
				"agent": []map[string]any{
					{"id": "10.0.0.4:51820", "version": "1.4.2", "created_at": 1755222000000, "updated_at": 1755222000000},
					{"id": "10.0.0.9:51820", "version": "1.4.0", "created_at": 1755221000000, "updated_at": 1755221000000},
				},
			},
		})
	}))
	defer srv.Close()

	client := New(srv.URL, activeStore(t))

	page, err := client.ListAgents(context.Background(), AgentQuery{IP: "10.0", Page: 1, Size: 5})
	require.NoError(t, err)

	assert.Equal(t, "5", gotQuery.Get("size"))
	assert.Equal(t, "1", gotQuery.Get("page"))
	assert.Equal(t, "10.0", gotQuery.Get("ip"))

	assert.Equal(t, uint64(12), page.Page.TotalElements)
	assert.Equal(t, uint64(3), page.Page.TotalPages)
	require.Len(t, page.Agents, 2)
	assert.Equal(t, "10.0.0.4:51820", page.Agents[0].ID)
	assert.Equal(t, "1.4.2", page.Agents[0].Version)
}

func TestListAgents_OmitsEmptyFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("ip"))
		json.NewEncoder(w).Encode(map[string]any{"page": map[string]any{}, "_embedded": map[string]any{}})
	}))
	defer srv.Close()

	client := New(srv.URL, activeStore(t))
	page, err := client.ListAgents(context.Background(), AgentQuery{Size: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Agents)
}

func TestDeleteAgent_EscapesID(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := New(srv.URL, activeStore(t))
	require.NoError(t, client.DeleteAgent(context.Background(), "10.0.0.4:51820"))
	assert.Equal(t, "/api/agents/10.0.0.4:51820", gotPath)
}
