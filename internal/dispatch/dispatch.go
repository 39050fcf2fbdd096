// Package dispatch sends one user message to the first remote model that
// answers. Candidates are tried one at a time in priority order; only the
// last failure is classified and turned into text for the user.
package dispatch

import (
	"context"
	"log/slog"

	"tutor/internal/models"
	"tutor/internal/modes"
)

// Sampling parameters sent with every request.
const (
	MaxTokens   int64   = 512
	Temperature float64 = 0.7
	TopP        float64 = 0.9
)

// DefaultCandidates lists the instruction-tuned models in preference order.
var DefaultCandidates = []string{
	"Qwen/Qwen2.5-1.5B-Instruct",
	"mistralai/Mistral-7B-Instruct-v0.3",
	"meta-llama/Llama-3.2-3B-Instruct",
	"google/gemma-2-2b-it",
}

type Message struct {
	Role    string
	Content string
}

type Request struct {
	Model       string
	Messages    []Message
	MaxTokens   int64
	Temperature float64
	TopP        float64
}

// Completer issues a single chat-completion request and returns the content
// of the first choice.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Result is the outcome of one Run. Err holds the final attempt's error for
// every Kind except KindSuccess.
type Result struct {
	Kind     Kind
	Text     string
	Model    string
	Attempts int
	Err      error
}

type Dispatcher struct {
	client     Completer
	candidates []string
	logger     *slog.Logger
}

type Option func(*Dispatcher)

// WithCandidates replaces the model list. An empty list keeps the defaults.
func WithCandidates(candidates []string) Option {
	return func(d *Dispatcher) {
		if len(candidates) == 0 {
			return
		}
		d.candidates = append([]string(nil), candidates...)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func New(client Completer, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		client:     client,
		candidates: append([]string(nil), DefaultCandidates...),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Candidates returns a copy of the models tried, in order.
func (d *Dispatcher) Candidates() []string {
	return append([]string(nil), d.candidates...)
}

// Dispatch returns the reply for userText under the given mode, or a
// displayable message describing why no model answered. It never fails;
// modeName must come from the modes registry.
func (d *Dispatcher) Dispatch(ctx context.Context, userText, modeName string) string {
	return d.Run(ctx, userText, modeName).Text
}

// Run is Dispatch with the classification and the answering model exposed.
func (d *Dispatcher) Run(ctx context.Context, userText, modeName string) Result {
	mode := modes.MustLookup(modeName)

	messages := []Message{
		{Role: models.RoleSystem, Content: mode.SystemPrompt},
		{Role: models.RoleUser, Content: userText},
	}

	var (
		lastErr   error
		lastModel string
		attempts  int
	)
	for i, model := range d.candidates {
		attempts++
		lastModel = model

		text, err := d.client.Complete(ctx, Request{
			Model:       model,
			Messages:    messages,
			MaxTokens:   MaxTokens,
			Temperature: Temperature,
			TopP:        TopP,
		})
		if err == nil {
			d.logger.Info("completion succeeded", "model", model, "mode", mode.Name, "attempts", attempts)
			return Result{Kind: KindSuccess, Text: text, Model: model, Attempts: attempts}
		}

		lastErr = err
		if i == len(d.candidates)-1 {
			break
		}
		if ctx.Err() != nil {
			d.logger.Debug("context done, skipping remaining candidates", "model", model, "error", err)
			break
		}
		d.logger.Debug("candidate failed, trying next", "model", model, "error", err)
	}

	kind, text := Classify(lastErr)
	d.logger.Warn("all candidates failed", "kind", kind.String(), "model", lastModel, "attempts", attempts, "error", lastErr)
	return Result{Kind: kind, Text: text, Model: lastModel, Attempts: attempts, Err: lastErr}
}
