package ui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"tutor/internal/db"
	"tutor/internal/dispatch"
	"tutor/internal/models"
	"tutor/internal/modes"
)

type echoCompleter struct {
	failFirst int
	calls     []dispatch.Request
}

func (e *echoCompleter) Complete(_ context.Context, req dispatch.Request) (string, error) {
	e.calls = append(e.calls, req)
	if len(e.calls) <= e.failFirst {
		return "", errors.New("model_pending_deploy")
	}
	return "reply to: " + req.Messages[1].Content, nil
}

func newTestModel(t *testing.T, c dispatch.Completer) *Model {
	t.Helper()
	d := dispatch.New(c, dispatch.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	m := InitialModel(d, modes.Default())
	require.NoError(t, m.DBErr)
	t.Cleanup(func() { _ = m.DB.Close() })
	return &m
}

func submit(t *testing.T, m *Model, text string) tea.Msg {
	t.Helper()
	m.TextInput.SetValue(text)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.True(t, m.Loading)
	return m.SendMessage(text)()
}

func TestSubmitAppendsUserThenAssistantTurn(t *testing.T) {
	stub := &echoCompleter{}
	m := newTestModel(t, stub)

	msg := submit(t, m, "Is 'I has a cat' correct?")
	resp, ok := msg.(ResponseMsg)
	require.True(t, ok)
	require.Equal(t, dispatch.KindSuccess, resp.Result.Kind)

	m.Update(resp)
	require.False(t, m.Loading)
	require.Equal(t, dispatch.DefaultCandidates[0], m.LastModel)

	turns, err := db.GetTurns(m.DB, m.SessionID)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	require.Equal(t, models.RoleUser, turns[0].Role)
	require.Equal(t, "Is 'I has a cat' correct?", turns[0].Content)
	require.Equal(t, models.RoleAssistant, turns[1].Role)
	require.Equal(t, "reply to: Is 'I has a cat' correct?", turns[1].Content)
	require.Equal(t, 2, m.TurnCount)
	require.Len(t, m.Messages, 2)
}

func TestEnterIgnoredWhileLoadingOrEmpty(t *testing.T) {
	m := newTestModel(t, &echoCompleter{})

	m.TextInput.SetValue("   ")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, cmd)
	require.False(t, m.Loading)

	m.Loading = true
	m.TextInput.SetValue("second")
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, cmd)

	count, err := db.CountTurns(m.DB, m.SessionID)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestFailureReplyIsStoredAsText(t *testing.T) {
	m := newTestModel(t, &echoCompleter{failFirst: len(dispatch.DefaultCandidates)})

	resp := submit(t, m, "hello").(ResponseMsg)
	require.Equal(t, dispatch.KindTransientUnavailable, resp.Result.Kind)
	m.Update(resp)

	turns, err := db.GetTurns(m.DB, m.SessionID)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	require.Equal(t, dispatch.WarmingUpMessage, turns[1].Content)
	require.Equal(t, dispatch.KindTransientUnavailable, m.LastKind)
}

func TestModeSelectionChangesSystemPrompt(t *testing.T) {
	stub := &echoCompleter{}
	m := newTestModel(t, stub)

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlB})
	require.True(t, m.ModeSelectorOpen)
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.False(t, m.ModeSelectorOpen)
	require.Equal(t, modes.GrammarChecker, m.CurrentMode.Name)

	submit(t, m, "check this")
	require.Len(t, stub.calls, 1)
	require.Equal(t, modes.MustLookup(modes.GrammarChecker).SystemPrompt, stub.calls[0].Messages[0].Content)
}

func TestModeSelectorWrapsAround(t *testing.T) {
	m := newTestModel(t, &echoCompleter{})

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlB})
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	require.Equal(t, len(modes.All())-1, m.SelectedModeIndex)
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, m.ModeSelectorOpen)
	require.Equal(t, modes.GeneralChat, m.CurrentMode.Name)
}

func TestClearChat(t *testing.T) {
	m := newTestModel(t, &echoCompleter{})
	m.Update(submit(t, m, "one"))
	m.Update(submit(t, m, "two"))
	require.Equal(t, 4, m.TurnCount)

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})

	require.Empty(t, m.Messages)
	require.Zero(t, m.TurnCount)
	count, err := db.CountTurns(m.DB, m.SessionID)
	require.NoError(t, err)
	require.Zero(t, count)
	require.Equal(t, modes.GeneralChat, m.CurrentMode.Name)
}

func TestSlashClear(t *testing.T) {
	m := newTestModel(t, &echoCompleter{})
	m.Update(submit(t, m, "one"))

	m.TextInput.SetValue("/clear")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, cmd)
	require.Zero(t, m.TurnCount)
}

func TestRebuildMessagesFollowsTranscript(t *testing.T) {
	m := newTestModel(t, &echoCompleter{})
	m.Update(submit(t, m, "one"))
	m.Messages = nil

	m.RebuildMessages()
	require.Len(t, m.Messages, 2)
	require.Equal(t, 2, m.TurnCount)
}

func TestRebuildKeepsFailureAndModeRendering(t *testing.T) {
	m := newTestModel(t, &echoCompleter{failFirst: len(dispatch.DefaultCandidates)})
	m.Update(submit(t, m, "hello"))
	before := append([]string(nil), m.Messages...)
	require.Contains(t, before[1], "TUTOR")
	require.NotContains(t, before[1], AssistantLabel(m.CurrentMode))

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlB})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, modes.GrammarChecker, m.CurrentMode.Name)

	m.RebuildMessages()
	require.Equal(t, before, m.Messages)
}

func TestReplyUsesModeItWasSentWith(t *testing.T) {
	m := newTestModel(t, &echoCompleter{})
	resp := submit(t, m, "hello")

	// Switch modes while the request is in flight.
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlB})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, modes.GrammarChecker, m.CurrentMode.Name)

	m.Update(resp)
	general := modes.MustLookup(modes.GeneralChat)
	grammar := modes.MustLookup(modes.GrammarChecker)
	require.Contains(t, m.Messages[1], AssistantLabel(general))
	require.NotContains(t, m.Messages[1], AssistantLabel(grammar))

	turns, err := db.GetTurns(m.DB, m.SessionID)
	require.NoError(t, err)
	require.Equal(t, modes.GeneralChat, turns[1].Mode)
	require.Equal(t, dispatch.KindSuccess.String(), turns[1].Kind)

	m.RebuildMessages()
	require.Contains(t, m.Messages[1], AssistantLabel(general))
}

func TestInitialModelFallsBackToDefaultMode(t *testing.T) {
	m := InitialModel(nil, models.Mode{Name: "bogus"})
	t.Cleanup(func() { _ = m.DB.Close() })
	require.Equal(t, modes.GeneralChat, m.CurrentMode.Name)
	require.Equal(t, 0, m.SelectedModeIndex)

	msg := m.SendMessage("hi")()
	_, isErr := msg.(ErrMsg)
	require.True(t, isErr)
}
