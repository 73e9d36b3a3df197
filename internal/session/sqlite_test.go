// ABOUTME: Tests for the SQLite-backed session store
// ABOUTME: Covers save/read round trips, clear idempotence, and corrupt grant data

package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_EmptyOnFreshOpen(t *testing.T) {
	s := newTestStore(t)

	assert.False(t, s.Active())
	assert.Empty(t, s.Token())
	assert.Empty(t, s.DisplayName())
	assert.Nil(t, s.Grants())

	_, err := s.Current()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSQLiteStore_SaveRoundTrip(t *testing.T) {
	s := newTestStore(t)

	saved := Session{
		Token:       "9f0c2a1e-5a7b-4d2c-9e61-0b8f3f1c7a44",
		DisplayName: "sa",
		Grants: []Grant{
			{Method: "GET", Path: "/api/agents", Name: "agent list"},
			{Method: "DELETE", Path: "/api/agents/", Name: "agent delete"},
			{Method: "POST", Path: "/api/system/title?lang=zh-中文 &x=1"},
		},
	}
	require.NoError(t, s.Save(saved))

	got, err := s.Current()
	require.NoError(t, err)
	assert.Equal(t, saved.Token, got.Token)
	assert.Equal(t, saved.DisplayName, got.DisplayName)
	assert.Equal(t, saved.Grants, got.Grants)

	assert.True(t, s.Active())
	assert.Equal(t, saved.Token, s.Token())
	assert.Equal(t, "sa", s.DisplayName())
}

func TestSQLiteStore_SaveEmptyGrants(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save(Session{Token: "tok", DisplayName: "guest"}))

	got, err := s.Current()
	require.NoError(t, err)
	assert.Empty(t, got.Grants)
	assert.True(t, s.Active())
}

func TestSQLiteStore_ReLoginReplacesGrants(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save(Session{
		Token:       "token-alice",
		DisplayName: "alice",
		Grants: []Grant{
			{Method: "GET", Path: "/api/agents"},
			{Method: "DELETE", Path: "/api/users/"},
		},
	}))
	require.NoError(t, s.Save(Session{
		Token:       "token-bob",
		DisplayName: "bob",
		Grants:      []Grant{{Method: "GET", Path: "/api/hosts"}},
	}))

	got, err := s.Current()
	require.NoError(t, err)
	assert.Equal(t, "token-bob", got.Token)
	assert.Equal(t, "bob", got.DisplayName)

	// No residue from the first login
	assert.Equal(t, []Grant{{Method: "GET", Path: "/api/hosts"}}, got.Grants)
}

func TestSQLiteStore_ClearIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save(Session{Token: "tok", DisplayName: "sa"}))
	require.NoError(t, s.Clear())
	assert.False(t, s.Active())

	// Second clear on an already empty store succeeds with identical state
	require.NoError(t, s.Clear())
	assert.False(t, s.Active())
	assert.Nil(t, s.Grants())
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	s1, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s1.Save(Session{
		Token:  "persisted-token",
		Grants: []Grant{{Method: "GET", Path: "/api/system"}},
	}))
	require.NoError(t, s1.Close())

	s2, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer s2.Close()

	assert.True(t, s2.Active())
	assert.Equal(t, "persisted-token", s2.Token())
	assert.Equal(t, []Grant{{Method: "GET", Path: "/api/system"}}, s2.Grants())
}

func TestSQLiteStore_CorruptGrantsDegradeToEmpty(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save(Session{Token: "tok", DisplayName: "sa"}))

	// Sabotage the grants column directly
	_, err := s.db.Exec("UPDATE active_session SET grants = 'not json' WHERE id = 1")
	require.NoError(t, err)

	got, err := s.Current()
	require.NoError(t, err)
	assert.Nil(t, got.Grants)

	// Token is still readable so logout can run
	assert.Equal(t, "tok", got.Token)
	assert.True(t, s.Active())
}
