package models

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Mode is a named persona: a system prompt plus the icon shown next to it.
type Mode struct {
	Name         string
	SystemPrompt string
	Icon         string
}

// Label returns the icon and name as shown in the mode picker.
func (m Mode) Label() string {
	if m.Icon == "" {
		return m.Name
	}
	return m.Icon + " " + m.Name
}

// ChatTurn is one entry of the transcript. Turns are never edited after creation.
type ChatTurn struct {
	ID            int64
	Role          string
	Content       string
	Mode          string // assistant turns: mode name the request was sent with
	Kind          string // assistant turns: dispatch outcome
	CreatedAtUnix int64
}
