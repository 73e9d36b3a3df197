// ABOUTME: Root model routing between the sign-in screen and the browser
// ABOUTME: An active session shows the browser; anything else falls back to sign-in

package console

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/z11n/z11n-console/internal/api"
	"github.com/z11n/z11n-console/internal/authz"
	"github.com/z11n/z11n-console/internal/session"
)

// sessionExpiredMsg is injected when a 401 tears down the session mid-use.
type sessionExpiredMsg struct{}

// SessionExpired builds the message the API client's expiry callback sends
// into the program.
func SessionExpired() tea.Msg {
	return sessionExpiredMsg{}
}

// loggedOutMsg reports a user-initiated sign-out.
type loggedOutMsg struct {
	err error
}

const expiredNotice = "Your session has expired. Sign in again."

// App is the root model. It owns the authenticated/unauthenticated split:
// the browser renders only while the session store holds a token, and every
// update re-checks that so a torn-down session cannot keep the browser up.
type App struct {
	client   *api.Client
	sessions session.Store
	gate     *authz.Gate

	authenticated bool
	login         loginModel
	browser       browserModel

	width  int
	height int
}

// NewApp builds the root model. A persisted session from a prior run skips
// the sign-in screen.
func NewApp(client *api.Client) App {
	sessions := client.Sessions()
	gate := authz.NewGate(sessions)

	app := App{
		client:   client,
		sessions: sessions,
		gate:     gate,
	}
	if sessions.Active() {
		app.authenticated = true
		app.browser = newBrowserModel(client, gate)
	} else {
		app.login = newLoginModel(client, "")
	}
	return app
}

func (a App) Init() tea.Cmd {
	if a.authenticated {
		return a.browser.Init()
	}
	return a.login.Init()
}

// toLogin drops to the sign-in screen, optionally showing a notice.
func (a App) toLogin(notice string) (App, tea.Cmd) {
	a.authenticated = false
	a.login = newLoginModel(a.client, notice)
	return a, a.login.Init()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "l":
			if a.authenticated {
				return a, a.logout()
			}
		}

	case sessionExpiredMsg:
		if !a.authenticated {
			return a, nil
		}
		return a.toLogin(expiredNotice)

	case loggedOutMsg:
		return a.toLogin("")

	case loginSucceededMsg:
		a.authenticated = true
		a.browser = newBrowserModel(a.client, a.gate)
		if a.width > 0 {
			a.browser, _ = a.browser.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
		}
		return a, a.browser.Init()
	}

	if a.authenticated && !a.sessions.Active() {
		// The session vanished underneath the browser (401 handling or an
		// external clear); fall back to sign-in
		return a.toLogin(expiredNotice)
	}

	var cmd tea.Cmd
	if a.authenticated {
		a.browser, cmd = a.browser.Update(msg)
	} else {
		a.login, cmd = a.login.Update(msg)
	}
	return a, cmd
}

// logout clears the session locally and notifies the server best-effort.
func (a App) logout() tea.Cmd {
	client := a.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return loggedOutMsg{err: client.Logout(ctx)}
	}
}

func (a App) View() string {
	if a.authenticated {
		return a.browser.View()
	}
	return a.login.View()
}
