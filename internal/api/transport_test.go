// ABOUTME: Tests for the auth transport: bearer injection and 401 interception
// ABOUTME: Covers the one-shot expiry notice and the pre-login bypass

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z11n/z11n-console/internal/session"
)

func activeStore(t *testing.T, grants ...session.Grant) session.Store {
	t.Helper()
	store := session.NewMemoryStore()
	require.NoError(t, store.Save(session.Session{
		Token:       "test-token",
		DisplayName: "sa",
		Grants:      grants,
	}))
	return store
}

func TestTransport_InjectsBearerAndRequestID(t *testing.T) {
	var gotAuth, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-Id")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := New(srv.URL, activeStore(t))
	require.NoError(t, client.get(context.Background(), "/api/system/title", nil, &struct{}{}))

	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.NotEmpty(t, gotRequestID)
}

func TestTransport_NoTokenNoHeader(t *testing.T) {
	var gotAuth string
	var hadAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, hadAuth = r.Header["Authorization"]
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := New(srv.URL, session.NewMemoryStore())
	require.NoError(t, client.get(context.Background(), "/api/captcha", nil, &struct{}{}))

	assert.False(t, hadAuth, "unauthenticated request should carry no Authorization header, got %q", gotAuth)
}

func TestTransport_401ClearsSessionOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := activeStore(t)
	client := New(srv.URL, store)

	notices := 0
	client.OnSessionExpired(func() { notices++ })

	// First 401 clears the session and notifies
	err := client.get(context.Background(), "/api/agents", nil, &struct{}{})
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)

	assert.False(t, store.Active(), "session should be cleared without user action")
	assert.Equal(t, 1, notices)

	// Subsequent 401s (token gone) must not re-notify
	_ = client.get(context.Background(), "/api/agents", nil, &struct{}{})
	assert.Equal(t, 1, notices)
}

func TestTransport_401BeforeLoginLeavesStoreAlone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := session.NewMemoryStore()
	client := New(srv.URL, store)

	notices := 0
	client.OnSessionExpired(func() { notices++ })

	_ = client.get(context.Background(), "/api/captcha", nil, &struct{}{})

	assert.Equal(t, 0, notices, "pre-login 401 is not a session expiry")
}

func TestTransport_OtherErrorStatusesKeepSession(t *testing.T) {
	for _, status := range []int{http.StatusForbidden, http.StatusBadRequest, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		store := activeStore(t)
		client := New(srv.URL, store)

		err := client.get(context.Background(), "/api/agents", nil, &struct{}{})
		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, status, statusErr.StatusCode)

		// Only 401 means the credential itself is dead
		assert.True(t, store.Active(), "status %d must not force logout", status)
		srv.Close()
	}
}

func TestTransport_ExpiryNoticeRearmsAfterRelogin(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := activeStore(t)
	client := New(srv.URL, store)

	notices := 0
	client.OnSessionExpired(func() { notices++ })

	_ = client.get(context.Background(), "/api/agents", nil, &struct{}{})
	require.Equal(t, 1, notices)

	// A fresh login re-arms the notice
	require.NoError(t, store.Save(session.Session{Token: "second-token", DisplayName: "sa"}))
	client.transport.rearm()

	_ = client.get(context.Background(), "/api/agents", nil, &struct{}{})
	assert.Equal(t, 2, notices)
	assert.GreaterOrEqual(t, calls, 2)
}
