package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// defaultAnthropicMaxTokens is sent when the caller leaves Options.MaxTokens
// unset; the Messages API requires an explicit cap.
const defaultAnthropicMaxTokens = 4096

// AnthropicClient implements ChatModel using Anthropic's Messages API.
//
// Safe for concurrent use after creation. Anthropic has no native JSON
// response mode, so opts.JSONMode is translated into a system instruction.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicClient creates an Anthropic chat client. An empty model name
// selects claude-3-5-haiku-latest.
//
// Returns an error if apiKey is empty.
func NewAnthropicClient(apiKey, model string) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, errors.New("API key cannot be empty")
	}
	if model == "" {
		model = "claude-3-5-haiku-latest"
	}

	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(requestTimeout),
	)

	return &AnthropicClient{
		client: &client,
		model:  model,
	}, nil
}

// Chat sends the conversation to the Messages API and returns the
// concatenated text blocks of the response.
func (c *AnthropicClient) Chat(ctx context.Context, messages []Message, opts Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   defaultAnthropicMaxTokens,
		Temperature: anthropic.Float(opts.Temperature),
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = int64(opts.MaxTokens)
	}

	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			params.System = append(params.System, anthropic.TextBlockParam{Text: m.Content})
		case RoleAssistant:
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	if opts.JSONMode {
		params.System = append(params.System, anthropic.TextBlockParam{
			Text: "Respond ONLY with a valid JSON object. No markdown, no explanation, just the JSON object.",
		})
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", classifyError("anthropic", err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := sb.String()
	if text == "" {
		return "", &Error{
			Provider: "anthropic",
			Code:     CodeAPIError,
			Message:  "no text blocks in response",
		}
	}
	return text, nil
}
