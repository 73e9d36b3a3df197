// ABOUTME: Authorization gate deciding whether the logged-in user may invoke an operation
// ABOUTME: Pure predicate over the grant snapshot taken at login; fail-closed

package authz

import (
	"strings"

	"github.com/z11n/z11n-console/internal/session"
)

// GrantSource supplies the current grant snapshot. Implemented by
// session.Store; a nil or empty result means nothing is permitted.
type GrantSource interface {
	Grants() []session.Grant
}

// Gate answers permission queries against the grants the server declared at
// login time. It never calls the server: the snapshot is trusted for the
// lifetime of the session, and server-side enforcement remains the actual
// security boundary. The gate only decides which actions the UI offers.
type Gate struct {
	source GrantSource
}

// NewGate creates a gate reading from the given grant source.
func NewGate(source GrantSource) *Gate {
	return &Gate{source: source}
}

// Permitted reports whether some grant matches the method
// (case-insensitively) and the path (exactly). No session, no grants, or no
// match all return false. Safe to call from render paths: no I/O, no error.
//
// Paths match exactly. The server enumerates id-suffixed routes in their
// template form ("/api/agents/{id}"), and the console asks about those
// enumerated paths verbatim; a grant never covers a prefix.
func (g *Gate) Permitted(method, path string) bool {
	if g == nil || g.source == nil {
		return false
	}
	for _, grant := range g.source.Grants() {
		if strings.EqualFold(grant.Method, method) && grant.Path == path {
			return true
		}
	}
	return false
}
