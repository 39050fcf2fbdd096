package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tutor/internal/dispatch"
	"tutor/internal/modes"
	"tutor/internal/styles"
)

func (m *Model) RenderModeSelector() string {
	title := styles.ModalTitleStyle.Render("Learning Modes")

	var items []string
	for i, mode := range modes.All() {
		isSelected := i == m.SelectedModeIndex
		isCurrent := mode.Name == m.CurrentMode.Name

		displayName := "  " + mode.Label()
		if isCurrent {
			displayName = "● " + mode.Label()
		}

		var styledItem string
		if isSelected {
			styledItem = styles.ModalSelectedStyle.Copy().
				Width(styles.ContentWidth).
				Render(displayName)
		} else {
			style := styles.ModalItemStyle.Copy().Width(styles.ContentWidth)
			if isCurrent {
				style = style.Foreground(styles.ModeColor(mode.Name))
			} else {
				style = style.Foreground(lipgloss.AdaptiveColor{Light: "#1a1a2e", Dark: "#FFFFFF"})
			}
			styledItem = style.Render(displayName)
		}
		items = append(items, styledItem)
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, items...))

	hint := lipgloss.NewStyle().
		Foreground(styles.HintColor).
		Width(styles.ContentWidth).
		PaddingTop(1).
		Render("↑/↓: navigate • Enter: select • Esc: close")

	return lipgloss.JoinVertical(lipgloss.Left, content, hint)
}

func (m *Model) RenderShortcutsModal() string {
	title := styles.ModalTitleStyle.Render("Keyboard Shortcuts")

	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Ctrl+C", "Quit Application"},
		{"Ctrl+N", "Clear Chat"},
		{"Ctrl+B", "Select Learning Mode"},
		{"Ctrl+S", "View Shortcuts (this menu)"},
		{"Alt+Enter", "New Line"},
		{"/clear", "Clear Chat (in input)"},
	}

	var items []string
	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFCC80")).
		Bold(true).
		Width(12)

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#E0E0E0"))

	for _, s := range shortcuts {
		line := fmt.Sprintf("%s %s", keyStyle.Render(s.key), descStyle.Render(s.desc))
		items = append(items, styles.ModalItemStyle.Render(line))
	}

	listContent := lipgloss.JoinVertical(lipgloss.Left, items...)
	content := lipgloss.JoinVertical(lipgloss.Left, title, listContent, "", m.RenderModelInfo())

	hint := lipgloss.NewStyle().
		Foreground(styles.HintColor).
		Width(styles.ContentWidth).
		PaddingTop(1).
		Render("Esc/Enter: close")

	return lipgloss.JoinVertical(lipgloss.Left, content, hint)
}

// RenderModelInfo lists the fallback candidates and the cold-start hint.
func (m *Model) RenderModelInfo() string {
	var candidates []string
	if m.Dispatcher != nil {
		candidates = m.Dispatcher.Candidates()
	} else {
		candidates = dispatch.DefaultCandidates
	}

	var sb strings.Builder
	sb.WriteString("Model Information\n")
	for i, c := range candidates {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, c))
	}
	sb.WriteString("Models are tried in order until one answers.\n")
	sb.WriteString("If you see 'model warming' errors, wait 10-15 seconds and try again.")

	return styles.InfoBoxStyle.Width(styles.ContentWidth - 2).Render(sb.String())
}

func (m *Model) RenderBottomBar() string {
	mode := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(styles.ModeColor(m.CurrentMode.Name)).
		Padding(0, 1).
		Render(m.CurrentMode.Label())

	modelText := "no model yet"
	modelColor := "#B39DDB"
	if m.LastModel != "" {
		modelText = TruncateRunes(ShortModelName(m.LastModel), 30)
		if m.LastKind != dispatch.KindSuccess {
			modelText += " (" + m.LastKind.String() + ")"
			modelColor = "#EF9A9A"
		}
	}
	model := lipgloss.NewStyle().
		Foreground(lipgloss.Color(modelColor)).
		Render(modelText)

	turns := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666666")).
		Render(fmt.Sprintf("Turns:%d", m.TurnCount))

	help := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#555555")).
		Render("Modes: ^B  Help: ^S")

	leftSide := lipgloss.JoinHorizontal(lipgloss.Center, mode, "  ", model)
	rightSide := lipgloss.JoinHorizontal(lipgloss.Center, turns, "  ", help)

	availableWidth := m.WindowWidth - lipgloss.Width(leftSide) - lipgloss.Width(rightSide) - 2
	if availableWidth < 0 {
		availableWidth = 0
	}
	spacer := strings.Repeat(" ", availableWidth)

	bar := lipgloss.JoinHorizontal(lipgloss.Center, leftSide, spacer, rightSide)

	return lipgloss.NewStyle().
		Width(m.WindowWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#333333")).
		Padding(0, 1).
		Render(bar)
}

func GetWelcomeScreen(width, height int) string {
	art := `
 ╭──────────────────────────────────────────────╮
 │                                              │
 │   ▀█▀ █ █ ▀█▀ █▀█ █▀█                        │
 │    █  █▄█  █  █▄█ █▀▄   📚                   │
 │                                              │
 │   English Grammar & Learning Assistant       │
 │                                              │
 ╰──────────────────────────────────────────────╯
`
	subtitle := "Ask me anything about English grammar, writing, or Python coding."

	styledArt := styles.WelcomeArtStyle.Render(art)
	styledSubtitle := styles.WelcomeSubtitleStyle.Render(subtitle)

	content := lipgloss.JoinVertical(lipgloss.Center, styledArt, "", styledSubtitle)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) UpdateViewport() {
	if len(m.Messages) == 0 && !m.Loading {
		m.Viewport.SetContent(GetWelcomeScreen(m.Viewport.Width, m.Viewport.Height))
		return
	}

	content := strings.Join(m.Messages, "\n\n")
	if m.Loading {
		loadingMsg := strings.Join([]string{
			styles.AiLabelStyle.Render(AssistantLabel(m.CurrentMode)),
			m.Spinner.View() + styles.ThinkingStyle.Render(" Thinking..."),
		}, "\n")
		if len(m.Messages) > 0 {
			content = content + "\n\n" + loadingMsg
		} else {
			content = loadingMsg
		}
	}
	m.Viewport.SetContent(content)
	m.Viewport.GotoBottom()
}

func (m *Model) View() string {
	inputWidth := m.WindowWidth - 4
	inputBox := styles.InputBoxStyle.Width(inputWidth).Render(m.TextInput.View())

	chatContent := lipgloss.JoinVertical(lipgloss.Center,
		styles.TitleStyle.Render("📚 ENGLISH GRAMMAR & LEARNING ASSISTANT"),
		"",
		m.Viewport.View(),
		"",
		inputBox,
	)
	chatArea := lipgloss.PlaceHorizontal(m.WindowWidth, lipgloss.Center, chatContent)
	bottomBar := m.RenderBottomBar()

	content := lipgloss.JoinVertical(lipgloss.Left, chatArea, bottomBar)

	var modal string
	switch {
	case m.ModeSelectorOpen:
		modal = m.RenderModeSelector()
	case m.ShortcutsOpen:
		modal = m.RenderShortcutsModal()
	default:
		return content
	}

	modal = styles.ModalStyle.Width(ModalWidth).Render(modal)
	return lipgloss.Place(
		m.WindowWidth,
		m.WindowHeight,
		lipgloss.Center,
		lipgloss.Center,
		modal,
	)
}
