// ABOUTME: Login screen driving the challenge/submit flow as a bubbletea model
// ABOUTME: Fetches a captcha challenge, encrypts the password, and reports success upward

package console

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/z11n/z11n-console/internal/api"
	"github.com/z11n/z11n-console/internal/session"
)

type loginPhase int

const (
	phaseAwaitingChallenge loginPhase = iota
	phaseChallengeReady
	phaseSubmitting
)

const (
	fieldUsername = iota
	fieldPassword
	fieldAnswer
	fieldCount
)

// challengeMsg carries a fetched challenge. seq pairs it with the request
// that asked for it; answers to superseded requests are dropped.
type challengeMsg struct {
	seq  int
	ch   *api.Challenge
	path string
	err  error
}

// loginResultMsg carries the outcome of a submitted login.
type loginResultMsg struct {
	seq  int
	sess session.Session
	err  error
}

// loginSucceededMsg tells the root model to switch to the browser.
type loginSucceededMsg struct {
	sess session.Session
}

type loginModel struct {
	client *api.Client

	phase       loginPhase
	seq         int
	challenge   *api.Challenge
	captchaPath string

	inputs [fieldCount]textinput.Model
	focus  int

	spin   spinner.Model
	errMsg string
	notice string

	width  int
	height int
}

func newLoginModel(client *api.Client, notice string) loginModel {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64
	username.Width = 28
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128
	password.Width = 28

	answer := textinput.New()
	answer.Placeholder = "captcha answer"
	answer.CharLimit = 16
	answer.Width = 28

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))

	m := loginModel{
		client: client,
		phase:  phaseAwaitingChallenge,
		seq:    1,
		spin:   spin,
		notice: notice,
	}
	m.inputs[fieldUsername] = username
	m.inputs[fieldPassword] = password
	m.inputs[fieldAnswer] = answer
	return m
}

func (m loginModel) Init() tea.Cmd {
	return tea.Batch(fetchChallengeCmd(m.client, m.seq), m.spin.Tick, textinput.Blink)
}

// refetch supersedes any in-flight challenge fetch and starts a new one.
func (m *loginModel) refetch() tea.Cmd {
	m.seq++
	m.phase = phaseAwaitingChallenge
	m.challenge = nil
	return fetchChallengeCmd(m.client, m.seq)
}

// fetchChallengeCmd fetches a challenge tagged with seq so superseded
// answers can be told apart from the live one.
func fetchChallengeCmd(client *api.Client, seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		ch, err := client.FetchChallenge(ctx)
		if err != nil {
			return challengeMsg{seq: seq, err: err}
		}
		path, err := writeCaptchaImage(ch)
		if err != nil {
			return challengeMsg{seq: seq, err: err}
		}
		return challengeMsg{seq: seq, ch: ch, path: path}
	}
}

// submit sends the login with the current challenge and field values.
func (m *loginModel) submit() tea.Cmd {
	m.phase = phaseSubmitting
	m.errMsg = ""
	seq := m.seq
	client := m.client
	ch := m.challenge
	username := m.inputs[fieldUsername].Value()
	password := m.inputs[fieldPassword].Value()
	answer := m.inputs[fieldAnswer].Value()

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		sess, err := client.Login(ctx, username, password, ch, answer)
		return loginResultMsg{seq: seq, sess: sess, err: err}
	}
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case challengeMsg:
		if msg.seq != m.seq {
			// A newer fetch is in flight; this one is stale
			return m, nil
		}
		if msg.err != nil {
			m.phase = phaseAwaitingChallenge
			m.errMsg = fmt.Sprintf("cannot load challenge: %v", msg.err)
			return m, nil
		}
		m.challenge = msg.ch
		m.captchaPath = msg.path
		m.phase = phaseChallengeReady
		m.errMsg = ""
		return m, nil

	case loginResultMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		if msg.err != nil {
			m.errMsg = loginErrorText(msg.err)
			// Challenges are single-use: every failed attempt needs a
			// fresh one, and the stale answer goes with it
			m.inputs[fieldAnswer].Reset()
			return m, m.refetch()
		}
		return m, func() tea.Msg { return loginSucceededMsg{sess: msg.sess} }

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.phase == phaseSubmitting {
			// Ignore input while a submission is in flight
			return m, nil
		}
		switch msg.String() {
		case "tab", "down":
			return m.moveFocus(1), nil
		case "shift+tab", "up":
			return m.moveFocus(-1), nil
		case "ctrl+r":
			return m, m.refetch()
		case "enter":
			if m.canSubmit() {
				return m, m.submit()
			}
			return m.moveFocus(1), nil
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m loginModel) moveFocus(delta int) loginModel {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + fieldCount) % fieldCount
	m.inputs[m.focus].Focus()
	return m
}

// canSubmit gates the submit action: all fields filled and a usable
// challenge on hand.
func (m loginModel) canSubmit() bool {
	if m.phase != phaseChallengeReady || m.challenge == nil {
		return false
	}
	for i := range m.inputs {
		if m.inputs[i].Value() == "" {
			return false
		}
	}
	return true
}

func loginErrorText(err error) string {
	switch {
	case errors.Is(err, api.ErrLoginRejected):
		return "Login rejected: check the username, password, and captcha answer."
	case errors.Is(err, api.ErrNoPublicKey):
		return "Challenge carried no encryption key; fetching a new one."
	case errors.Is(err, api.ErrNoChallenge):
		return "No challenge loaded; fetching one."
	default:
		return fmt.Sprintf("login failed: %v", err)
	}
}

func (m loginModel) View() string {
	var rows []string
	rows = append(rows, titleStyle.Render("z11n console · sign in"), "")

	if m.notice != "" {
		rows = append(rows, noticeStyle.Render(m.notice), "")
	}

	rows = append(rows,
		labelStyle.Render("Username"), m.inputs[fieldUsername].View(),
		labelStyle.Render("Password"), m.inputs[fieldPassword].View(),
	)

	switch m.phase {
	case phaseAwaitingChallenge:
		rows = append(rows, "", m.spin.View()+" fetching challenge...")
	default:
		rows = append(rows, "",
			labelStyle.Render("Captcha image: ")+m.captchaPath,
			labelStyle.Render("Answer"), m.inputs[fieldAnswer].View(),
		)
	}

	if m.phase == phaseSubmitting {
		rows = append(rows, "", m.spin.View()+" signing in...")
	}
	if m.errMsg != "" {
		rows = append(rows, "", errorStyle.Render(m.errMsg))
	}

	rows = append(rows, "", helpStyle.Render("tab: next field • enter: sign in • ctrl+r: new captcha • ctrl+c: quit"))

	box := boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	if m.width == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// writeCaptchaImage drops the challenge image into a temp file so the user
// can open it next to the terminal.
func writeCaptchaImage(ch *api.Challenge) (string, error) {
	img, err := ch.Image()
	if err != nil {
		return "", fmt.Errorf("decoding captcha image: %w", err)
	}
	f, err := os.CreateTemp("", "z11n-captcha-*.png")
	if err != nil {
		return "", fmt.Errorf("creating captcha file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(img); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("writing captcha file: %w", err)
	}
	return f.Name(), nil
}
