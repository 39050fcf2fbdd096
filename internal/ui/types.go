package ui

import (
	"database/sql"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"

	"tutor/internal/dispatch"
	"tutor/internal/models"
)

const (
	MaxChatWidth = 100
	MaxInputRows = 6
)

var ModalWidth = 60

type ErrMsg error

type ResponseMsg struct {
	Prompt string
	Mode   string // mode the request was sent with
	Result dispatch.Result
}

type Model struct {
	Viewport   viewport.Model
	Messages   []string
	TextInput  textarea.Model
	Spinner    spinner.Model
	Dispatcher *dispatch.Dispatcher
	DB         *sql.DB
	DBErr      error
	SessionID  string
	TurnCount  int
	Renderer   *glamour.TermRenderer
	Err        error
	Loading    bool

	WindowWidth  int
	WindowHeight int

	ModeSelectorOpen  bool
	SelectedModeIndex int
	CurrentMode       models.Mode
	ShortcutsOpen     bool

	// Last dispatch outcome, shown in the bottom bar.
	LastModel string
	LastKind  dispatch.Kind
}
