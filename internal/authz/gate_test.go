// ABOUTME: Tests for the authorization gate
// ABOUTME: Covers method case folding, exact path matching, and fail-closed defaults

package authz

import (
	"testing"

	"github.com/z11n/z11n-console/internal/session"
)

// staticSource returns a fixed grant list.
type staticSource struct {
	grants []session.Grant
}

func (s *staticSource) Grants() []session.Grant { return s.grants }

func TestGate_Permitted(t *testing.T) {
	gate := NewGate(&staticSource{grants: []session.Grant{
		{Method: "GET", Path: "/api/agents"},
		{Method: "DELETE", Path: "/api/agents/"},
		{Method: "post", Path: "/api/roles"},
	}})

	tests := []struct {
		name   string
		method string
		path   string
		want   bool
	}{
		{"exact match", "GET", "/api/agents", true},
		{"method lower-cased query", "get", "/api/agents", true},
		{"method mixed case grant", "POST", "/api/roles", true},
		{"method not granted", "DELETE", "/api/agents", false},
		{"trailing slash is a distinct path", "DELETE", "/api/agents/", true},
		{"no prefix semantics", "DELETE", "/api/agents/42", false},
		{"unknown path", "GET", "/api/hosts", false},
		{"empty query", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gate.Permitted(tt.method, tt.path); got != tt.want {
				t.Errorf("Permitted(%q, %q) = %v, want %v", tt.method, tt.path, got, tt.want)
			}
		})
	}
}

func TestGate_EmptyGrants(t *testing.T) {
	gate := NewGate(&staticSource{})

	if gate.Permitted("GET", "/api/agents") {
		t.Error("empty grant list should deny everything")
	}
}

func TestGate_NilSource(t *testing.T) {
	gate := NewGate(nil)

	if gate.Permitted("GET", "/api/agents") {
		t.Error("nil source should deny everything")
	}
}

func TestGate_NoSessionDenies(t *testing.T) {
	// A store with no saved session yields nil grants
	store := session.NewMemoryStore()
	gate := NewGate(store)

	if gate.Permitted("GET", "/api/agents") {
		t.Error("absent session should deny everything")
	}

	if err := store.Save(session.Session{
		Token:  "tok",
		Grants: []session.Grant{{Method: "GET", Path: "/api/agents"}},
	}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if !gate.Permitted("GET", "/api/agents") {
		t.Error("grant saved with the session should be permitted")
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if gate.Permitted("GET", "/api/agents") {
		t.Error("cleared session should deny everything again")
	}
}
