package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tutor/internal/db"
	"tutor/internal/dispatch"
	"tutor/internal/models"
	"tutor/internal/modes"
)

// InitialModel wires the dispatcher to a fresh in-memory transcript.
func InitialModel(d *dispatch.Dispatcher, mode models.Mode) Model {
	ti := textarea.New()
	ti.Placeholder = "Ask me anything about English grammar, writing, or Python coding..."
	ti.Prompt = "❯ "
	ti.ShowLineNumbers = false
	ti.CharLimit = 0
	ti.MaxHeight = MaxInputRows
	ti.SetHeight(2)
	ti.SetWidth(80)
	ti.FocusedStyle.Prompt = lipgloss.NewStyle().Foreground(lipgloss.Color("#B39DDB")).Bold(true)
	ti.BlurredStyle.Prompt = lipgloss.NewStyle().Foreground(lipgloss.Color("#B39DDB")).Bold(true)
	ti.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(lipgloss.Color("#545454"))
	ti.BlurredStyle.Placeholder = lipgloss.NewStyle().Foreground(lipgloss.Color("#545454"))
	ti.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ti.BlurredStyle.CursorLine = lipgloss.NewStyle()
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#B39DDB"))

	vp := viewport.New(60, 15)

	dbConn, dbErr := db.OpenSessionDB()
	var sessionID string
	if dbErr == nil {
		sessionID, dbErr = db.CreateSession(dbConn, time.Now().Unix())
	}

	idx := modes.Index(mode.Name)
	if idx < 0 {
		mode = modes.Default()
		idx = 0
	}

	return Model{
		TextInput:         ti,
		Viewport:          vp,
		Spinner:           sp,
		Dispatcher:        d,
		DB:                dbConn,
		DBErr:             dbErr,
		SessionID:         sessionID,
		Messages:          []string{},
		CurrentMode:       mode,
		SelectedModeIndex: idx,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.TextInput.Cursor.BlinkCmd(),
		m.Spinner.Tick,
	)
}

func NewProgram(d *dispatch.Dispatcher, mode models.Mode) *tea.Program {
	m := InitialModel(d, mode)
	return tea.NewProgram(&m, tea.WithAltScreen())
}
