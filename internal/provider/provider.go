package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"tutor/internal/dispatch"
	"tutor/internal/models"
)

// DefaultBaseURL is the OpenAI-compatible Hugging Face Inference Providers router.
const DefaultBaseURL = "https://router.huggingface.co/v1"

var ErrEmptyResponse = errors.New("empty response from model")

// Client is the process-wide handle to the inference endpoint.
type Client struct {
	api openai.Client
}

var _ dispatch.Completer = (*Client)(nil)

// New builds a client for baseURL authenticated with token. The SDK's own
// retries are disabled: falling back to the next model is the only retry.
func New(token, baseURL string, opts ...option.RequestOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(token),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
		option.WithHeader("X-Title", "tutor"),
	}
	reqOpts = append(reqOpts, opts...)

	return &Client{api: openai.NewClient(reqOpts...)}
}

func (c *Client) Complete(ctx context.Context, req dispatch.Request) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case models.RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case models.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:       req.Model,
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
		TopP:        openai.Float(req.TopP),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(req.MaxTokens)
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", withResponseBody(err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// withResponseBody appends the raw error body to err. The SDK's message only
// keeps the body's "error" member, and the router reports states such as
// model_pending_deploy in sibling fields.
func withResponseBody(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) || apiErr.Response == nil || apiErr.Response.Body == nil {
		return err
	}
	body, readErr := io.ReadAll(apiErr.Response.Body)
	apiErr.Response.Body = io.NopCloser(bytes.NewReader(body))
	if readErr != nil || len(bytes.TrimSpace(body)) == 0 {
		return err
	}
	return fmt.Errorf("%w: %s", err, bytes.TrimSpace(body))
}
