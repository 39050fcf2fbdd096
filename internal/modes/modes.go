// Package modes holds the fixed set of tutor personas. The registry is built
// once at package init and is read-only afterwards.
package modes

import (
	"errors"
	"fmt"

	"tutor/internal/models"
)

const (
	GeneralChat     = "General Chat"
	GrammarChecker  = "Grammar Checker"
	ParagraphWriter = "Paragraph Writer"
	PythonHelper    = "Python Helper"
)

var ErrUnknownMode = errors.New("unknown mode")

var registry = []models.Mode{
	{
		Name:         GeneralChat,
		SystemPrompt: "You are a helpful and friendly English learning assistant. Help the user with their questions in a clear and engaging way.",
		Icon:         "💬",
	},
	{
		Name:         GrammarChecker,
		SystemPrompt: "You are an expert English grammar teacher. Analyze the user's text for grammar errors, explain the mistakes, and provide corrected versions with clear explanations.",
		Icon:         "✏️",
	},
	{
		Name:         ParagraphWriter,
		SystemPrompt: "You are a creative writing assistant. Help users write well-structured, coherent paragraphs on various topics. Provide multiple style options (formal, casual, academic) when appropriate.",
		Icon:         "📝",
	},
	{
		Name:         PythonHelper,
		SystemPrompt: "You are a Python programming tutor. Help users understand Python concepts, debug code, write better code, and follow best practices. Provide clear explanations with examples.",
		Icon:         "🐍",
	},
}

var byName = func() map[string]models.Mode {
	m := make(map[string]models.Mode, len(registry))
	for _, mode := range registry {
		m[mode.Name] = mode
	}
	return m
}()

// Lookup returns the mode registered under name.
func Lookup(name string) (models.Mode, error) {
	mode, ok := byName[name]
	if !ok {
		return models.Mode{}, fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
	return mode, nil
}

// MustLookup is Lookup for callers that only ever pass registry names.
// An unknown name is a programming error and panics.
func MustLookup(name string) models.Mode {
	mode, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return mode
}

// All returns the modes in display order.
func All() []models.Mode {
	out := make([]models.Mode, len(registry))
	copy(out, registry)
	return out
}

func Default() models.Mode {
	return registry[0]
}

// Index returns the display position of name, or -1.
func Index(name string) int {
	for i, mode := range registry {
		if mode.Name == name {
			return i
		}
	}
	return -1
}
