package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"tutor/internal/db"
	"tutor/internal/dispatch"
	"tutor/internal/models"
	"tutor/internal/modes"
	"tutor/internal/styles"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case spinner.TickMsg:
		m.Spinner, spCmd = m.Spinner.Update(msg)
		if m.Loading {
			m.UpdateViewport()
		}
		return m, spCmd

	case tea.KeyMsg:
		if m.ModeSelectorOpen {
			all := modes.All()
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "esc", "ctrl+b":
				m.ModeSelectorOpen = false
				return m, nil
			case "up", "k":
				m.SelectedModeIndex--
				if m.SelectedModeIndex < 0 {
					m.SelectedModeIndex = len(all) - 1
				}
				return m, nil
			case "down", "j":
				m.SelectedModeIndex++
				if m.SelectedModeIndex >= len(all) {
					m.SelectedModeIndex = 0
				}
				return m, nil
			case "enter":
				m.CurrentMode = all[m.SelectedModeIndex]
				m.ModeSelectorOpen = false
				return m, nil
			}
			return m, nil
		}

		if m.ShortcutsOpen {
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "esc", "enter", "?", "ctrl+s":
				m.ShortcutsOpen = false
				return m, nil
			}
			return m, nil
		}

		if isNewlineShortcut(msg) {
			m.TextInput.InsertString("\n")
			m.updateInputLayout()
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyCtrlN:
			if m.Loading {
				return m, nil
			}
			m.ClearChat()
			return m, nil

		case tea.KeyCtrlB:
			m.ModeSelectorOpen = true
			m.ShortcutsOpen = false
			m.SelectedModeIndex = max(modes.Index(m.CurrentMode.Name), 0)
			return m, nil

		case tea.KeyCtrlS:
			m.ShortcutsOpen = true
			m.ModeSelectorOpen = false
			return m, nil

		case tea.KeyEnter:
			if m.Loading {
				return m, nil
			}
			input := strings.TrimSpace(m.TextInput.Value())
			if input == "" {
				return m, nil
			}

			if input == "/clear" || input == "/reset" {
				m.ClearChat()
				return m, nil
			}

			m.Messages = append(m.Messages, FormatUserMessage(input, m.Viewport.Width, len(m.Messages) == 0))
			if err := m.PersistTurn(models.RoleUser, input); err != nil {
				m.Messages = append(m.Messages, styles.ErrorStyle.Render(fmt.Sprintf("Transcript error: %v", err)))
			}
			m.TextInput.Reset()
			m.updateInputLayout()
			m.Loading = true
			m.UpdateViewport()

			return m, tea.Batch(m.SendMessage(input), m.Spinner.Tick)
		}

	case ResponseMsg:
		m.Loading = false
		m.LastModel = msg.Result.Model
		m.LastKind = msg.Result.Kind
		m.Err = msg.Result.Err
		mode := m.modeOrCurrent(msg.Mode)
		m.Messages = append(m.Messages, m.renderAssistant(msg.Result.Text, msg.Result.Kind, mode))
		if err := m.PersistReply(msg.Result.Text, mode.Name, msg.Result.Kind); err != nil {
			m.Messages = append(m.Messages, styles.ErrorStyle.Render(fmt.Sprintf("Transcript error: %v", err)))
		}
		m.UpdateViewport()
		return m, nil

	case ErrMsg:
		m.Loading = false
		m.Err = msg
		m.Messages = append(m.Messages, styles.ErrorStyle.Render(fmt.Sprintf("Error: %v", msg)))
		m.UpdateViewport()
		return m, nil

	case tea.WindowSizeMsg:
		m.WindowWidth = msg.Width
		m.WindowHeight = msg.Height

		ModalWidth = msg.Width - 10
		if ModalWidth > 60 {
			ModalWidth = 60
		}
		if ModalWidth < 30 {
			ModalWidth = 30
		}
		styles.ContentWidth = ModalWidth - 6

		chatWidth := min(msg.Width-2, MaxChatWidth)
		m.Viewport.Width = chatWidth - 2

		m.updateInputLayout()
		glamourStyle := "dark"
		if !lipgloss.HasDarkBackground() {
			glamourStyle = "light"
		}
		m.Renderer, _ = glamour.NewTermRenderer(
			glamour.WithStylePath(glamourStyle),
			glamour.WithWordWrap(chatWidth-6),
		)
		m.RebuildMessages()
		m.UpdateViewport()
		return m, nil
	}

	m.TextInput, tiCmd = m.TextInput.Update(msg)
	m.updateInputLayout()

	// Terminal background color queries and cursor reports can leak into the input.
	val := m.TextInput.Value()
	if strings.Contains(val, "]11;rgb:") || strings.Contains(val, "1;rgb:") || strings.Contains(val, "[1;1R") {
		m.TextInput.Reset()
	}

	m.Viewport, vpCmd = m.Viewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd)
}

func isNewlineShortcut(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "shift+enter", "shift+return", "ctrl+j", "ctrl+enter", "alt+enter":
		return true
	default:
		return false
	}
}

func (m *Model) updateInputLayout() {
	if m.WindowWidth == 0 || m.WindowHeight == 0 {
		return
	}

	inputWidth := m.WindowWidth - 6
	if inputWidth < 20 {
		inputWidth = 20
	}
	contentWidth := inputWidth - 2
	if contentWidth < 1 {
		contentWidth = 1
	}

	lineCount := WrappedLineCount(m.TextInput.Value(), contentWidth)
	if lineCount < 1 {
		lineCount = 1
	}
	if lineCount > MaxInputRows {
		lineCount = MaxInputRows
	}

	m.TextInput.MaxHeight = MaxInputRows
	m.TextInput.SetWidth(inputWidth)
	m.TextInput.SetHeight(lineCount)

	inputBoxHeight := m.TextInput.Height() + 2
	reserved := inputBoxHeight + 5
	viewportHeight := m.WindowHeight - reserved
	if viewportHeight < 5 {
		viewportHeight = 5
	}
	m.Viewport.Height = viewportHeight
}

// ClearChat empties the transcript. The selected mode is kept.
func (m *Model) ClearChat() {
	if m.DB != nil && m.DBErr == nil {
		if err := db.ClearTurns(m.DB, m.SessionID); err != nil {
			m.Err = err
		}
	}
	m.Messages = []string{}
	m.TurnCount = 0
	m.LastModel = ""
	m.LastKind = dispatch.KindSuccess
	m.Viewport.SetContent(GetWelcomeScreen(m.Viewport.Width, m.Viewport.Height))
	m.Viewport.GotoTop()
	m.TextInput.Reset()
	m.updateInputLayout()
}

func (m *Model) PersistTurn(role, content string) error {
	return m.persist(func() error {
		_, err := db.InsertTurn(m.DB, m.SessionID, role, content, time.Now().Unix())
		return err
	})
}

// PersistReply stores an assistant reply with the mode and outcome it was rendered with.
func (m *Model) PersistReply(content, mode string, kind dispatch.Kind) error {
	return m.persist(func() error {
		_, err := db.InsertReply(m.DB, m.SessionID, content, mode, kind.String(), time.Now().Unix())
		return err
	})
}

func (m *Model) persist(insert func() error) error {
	if m.DBErr != nil {
		return m.DBErr
	}
	if m.DB == nil {
		return fmt.Errorf("transcript database not initialized")
	}
	if err := insert(); err != nil {
		return err
	}
	count, err := db.CountTurns(m.DB, m.SessionID)
	if err != nil {
		return err
	}
	m.TurnCount = count
	return nil
}

// RebuildMessages re-renders the transcript, e.g. after the renderer width changed.
func (m *Model) RebuildMessages() {
	if m.DB == nil || m.DBErr != nil {
		return
	}
	turns, err := db.GetTurns(m.DB, m.SessionID)
	if err != nil {
		m.Err = err
		return
	}

	m.Messages = make([]string, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case models.RoleUser:
			m.Messages = append(m.Messages, FormatUserMessage(t.Content, m.Viewport.Width, len(m.Messages) == 0))
		case models.RoleAssistant:
			kind := dispatch.KindSuccess
			if t.Kind != "" {
				kind = dispatch.ParseKind(t.Kind)
			}
			m.Messages = append(m.Messages, m.renderAssistant(t.Content, kind, m.modeOrCurrent(t.Mode)))
		}
	}
	m.TurnCount = len(turns)
}

// modeOrCurrent resolves a stored mode name, falling back to the current mode.
func (m *Model) modeOrCurrent(name string) models.Mode {
	if mode, err := modes.Lookup(name); err == nil {
		return mode
	}
	return m.CurrentMode
}

func (m *Model) renderAssistant(content string, kind dispatch.Kind, mode models.Mode) string {
	displayContent := content
	if m.Renderer != nil {
		rendered, err := m.Renderer.Render(content)
		if err == nil {
			displayContent = strings.TrimSpace(rendered)
		}
	}
	if kind != dispatch.KindSuccess {
		return FormatWarningMessage(displayContent)
	}
	return FormatAIMessage(mode, displayContent)
}

// SendMessage runs one dispatch off the UI goroutine. The mode is captured
// now so a later mode switch does not affect an in-flight request.
func (m *Model) SendMessage(input string) tea.Cmd {
	d := m.Dispatcher
	modeName := m.CurrentMode.Name

	return func() tea.Msg {
		if d == nil {
			return ErrMsg(fmt.Errorf("no dispatcher configured"))
		}
		res := d.Run(context.Background(), input, modeName)
		return ResponseMsg{Prompt: input, Mode: modeName, Result: res}
	}
}
