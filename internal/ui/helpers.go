package ui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"tutor/internal/models"
	"tutor/internal/styles"
)

func WrappedLineCount(value string, width int) int {
	if width <= 0 {
		return 1
	}
	lines := strings.Split(value, "\n")
	if len(lines) == 0 {
		return 1
	}
	count := 0
	for _, line := range lines {
		w := runewidth.StringWidth(line)
		if w == 0 {
			count++
			continue
		}
		count += (w-1)/width + 1
	}
	return count
}

func TruncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}

func FormatUserMessage(content string, width int, isFirst bool) string {
	label := styles.UserLabelStyle.Render("YOU")
	msg := styles.UserMsgStyle.Width(max(width-4, 1)).Render(content)
	if isFirst {
		return fmt.Sprintf("\n%s\n%s", label, msg)
	}
	return fmt.Sprintf("%s\n%s", label, msg)
}

func FormatAIMessage(mode models.Mode, content string) string {
	label := styles.AiLabelStyle.Render(AssistantLabel(mode))
	msg := styles.AiMsgStyle.Render(content)
	return fmt.Sprintf("%s\n%s", label, msg)
}

// FormatWarningMessage renders a reply that came from a classified failure.
func FormatWarningMessage(content string) string {
	label := styles.WarnLabelStyle.Render("TUTOR")
	msg := styles.WarnMsgStyle.Render(content)
	return fmt.Sprintf("%s\n%s", label, msg)
}

func AssistantLabel(mode models.Mode) string {
	if mode.Icon == "" {
		return "TUTOR"
	}
	return mode.Icon + " TUTOR"
}

// ShortModelName drops the organization prefix of a repo-style model id.
func ShortModelName(id string) string {
	if i := strings.LastIndex(id, "/"); i >= 0 && i < len(id)-1 {
		return id[i+1:]
	}
	return id
}
