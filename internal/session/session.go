// ABOUTME: Session record and Store interface for the console's persisted login state
// ABOUTME: Defines the bearer token, display name, and grant list lifecycle

package session

import "errors"

// ErrNoSession is returned by reads when no session is persisted.
var ErrNoSession = errors.New("no active session")

// Grant is one server-authorized operation: an HTTP method plus the exact
// resource path the server enumerated at login. Name is the human-readable
// label used by the role editor; it carries no authorization weight.
type Grant struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Name   string `json:"name,omitempty"`
}

// Session is the authenticated state handed out by a successful login.
// Token and Grants are set together and cleared together; there is no valid
// state with one present and the other absent.
type Session struct {
	Token       string
	DisplayName string
	Grants      []Grant
}

// Store persists the current session across process restarts. All reads are
// local: deciding whether a session exists never requires a server round
// trip, which is what lets the route guard run synchronously.
type Store interface {
	// Save atomically replaces any prior session with the given one.
	// A re-login fully replaces the grant list; grants are never merged.
	Save(s Session) error

	// Clear atomically removes the persisted session. Clearing an already
	// empty store is a no-op, not an error.
	Clear() error

	// Current returns the persisted session, or ErrNoSession.
	Current() (Session, error)

	// Token returns the bearer token, or "" when no session exists.
	Token() string

	// DisplayName returns the authenticated user's display name, or ""
	// when no session exists. Cosmetic only.
	DisplayName() string

	// Grants returns the persisted grant list. A missing session or a
	// grant list that fails to parse both yield nil: absence of evidence
	// is denial, so corrupt state degrades to zero permissions.
	Grants() []Grant

	// Active reports whether a bearer token is persisted.
	Active() bool

	// Close releases the underlying storage.
	Close() error
}
