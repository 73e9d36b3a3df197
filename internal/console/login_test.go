// ABOUTME: Tests for the sign-in screen's phase transitions
// ABOUTME: Drives the model with messages directly, no terminal involved

package console

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z11n/z11n-console/internal/api"
	"github.com/z11n/z11n-console/internal/session"
)

func testClient(t *testing.T) *api.Client {
	t.Helper()
	return api.New("http://unused.invalid", session.NewMemoryStore())
}

func readyLogin(t *testing.T) loginModel {
	t.Helper()
	m := newLoginModel(testClient(t), "")
	m, _ = m.Update(challengeMsg{
		seq:  m.seq,
		ch:   &api.Challenge{UUID: "ch-1", PublicKeyPEM: "pem"},
		path: "/tmp/captcha.png",
	})
	require.Equal(t, phaseChallengeReady, m.phase)
	return m
}

func typeInto(m loginModel, field int, text string) loginModel {
	for m.focus != field {
		m = m.moveFocus(1)
	}
	for _, r := range text {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestLogin_ChallengeArrivalReadiesForm(t *testing.T) {
	m := newLoginModel(testClient(t), "")
	assert.Equal(t, phaseAwaitingChallenge, m.phase)

	m = readyLogin(t)
	assert.Equal(t, "ch-1", m.challenge.UUID)
	assert.Equal(t, "/tmp/captcha.png", m.captchaPath)
}

func TestLogin_StaleChallengeDiscarded(t *testing.T) {
	m := readyLogin(t)

	// A refresh supersedes the current challenge
	cmd := m.refetch()
	require.NotNil(t, cmd)
	require.Equal(t, phaseAwaitingChallenge, m.phase)

	// The old fetch answering late must not resurrect the old challenge
	m, _ = m.Update(challengeMsg{seq: m.seq - 1, ch: &api.Challenge{UUID: "old"}})
	assert.Equal(t, phaseAwaitingChallenge, m.phase)
	assert.Nil(t, m.challenge)

	m, _ = m.Update(challengeMsg{seq: m.seq, ch: &api.Challenge{UUID: "new"}})
	assert.Equal(t, phaseChallengeReady, m.phase)
	assert.Equal(t, "new", m.challenge.UUID)
}

func TestLogin_CannotSubmitWithEmptyFields(t *testing.T) {
	m := readyLogin(t)
	assert.False(t, m.canSubmit())

	m = typeInto(m, fieldUsername, "sa")
	m = typeInto(m, fieldPassword, "pw")
	assert.False(t, m.canSubmit(), "missing captcha answer")

	m = typeInto(m, fieldAnswer, "48213")
	assert.True(t, m.canSubmit())
}

func TestLogin_CannotSubmitWithoutChallenge(t *testing.T) {
	m := newLoginModel(testClient(t), "")
	m = typeInto(m, fieldUsername, "sa")
	m = typeInto(m, fieldPassword, "pw")
	m = typeInto(m, fieldAnswer, "48213")

	assert.False(t, m.canSubmit(), "no challenge loaded yet")
}

func TestLogin_RejectionClearsAnswerAndRefetches(t *testing.T) {
	m := readyLogin(t)
	m = typeInto(m, fieldAnswer, "48213")
	prevSeq := m.seq

	m, cmd := m.Update(loginResultMsg{seq: m.seq, err: api.ErrLoginRejected})

	assert.Empty(t, m.inputs[fieldAnswer].Value(), "stale answer must not survive a rejection")
	assert.NotEmpty(t, m.errMsg)
	assert.Equal(t, phaseAwaitingChallenge, m.phase, "a rejected challenge is spent")
	assert.Greater(t, m.seq, prevSeq)
	assert.NotNil(t, cmd, "a fresh challenge fetch must start")
}

func TestLogin_SubmittingIgnoresKeys(t *testing.T) {
	m := readyLogin(t)
	m = typeInto(m, fieldUsername, "sa")
	m.phase = phaseSubmitting

	before := m.inputs[fieldUsername].Value()
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	assert.Equal(t, before, m.inputs[fieldUsername].Value())
}

func TestLogin_SuccessEmitsSucceededMsg(t *testing.T) {
	m := readyLogin(t)

	sess := session.Session{Token: "tok", DisplayName: "sa"}
	_, cmd := m.Update(loginResultMsg{seq: m.seq, sess: sess})
	require.NotNil(t, cmd)

	msg := cmd()
	got, ok := msg.(loginSucceededMsg)
	require.True(t, ok, "success must notify the root model, got %T", msg)
	assert.Equal(t, "tok", got.sess.Token)
}

func TestLogin_StaleResultDiscarded(t *testing.T) {
	m := readyLogin(t)
	m, _ = m.Update(loginResultMsg{seq: m.seq - 1, err: errors.New("late failure")})
	assert.Empty(t, m.errMsg)
	assert.Equal(t, phaseChallengeReady, m.phase)
}

func TestLogin_ErrorTexts(t *testing.T) {
	assert.Contains(t, loginErrorText(api.ErrLoginRejected), "rejected")
	assert.Contains(t, loginErrorText(api.ErrNoPublicKey), "key")
	assert.Contains(t, loginErrorText(errors.New("dial tcp: refused")), "dial tcp")
}

func TestLogin_ViewShowsNotice(t *testing.T) {
	m := newLoginModel(testClient(t), expiredNotice)
	assert.Contains(t, m.View(), "expired")
}
