package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GoogleClient implements ChatModel using Google's Gemini API.
//
// Safe for concurrent use after creation. Close releases the underlying
// gRPC connection and should be called when the client is no longer needed.
type GoogleClient struct {
	client *genai.Client
	model  string
}

// NewGoogleClient creates a Gemini chat client. An empty model name selects
// gemini-1.5-flash.
//
// Returns an error if apiKey is empty or the client cannot be constructed.
func NewGoogleClient(ctx context.Context, apiKey, model string) (*GoogleClient, error) {
	if apiKey == "" {
		return nil, errors.New("API key cannot be empty")
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Google client: %w", err)
	}

	return &GoogleClient{
		client: client,
		model:  model,
	}, nil
}

// Close closes the underlying Gemini client and releases resources.
func (c *GoogleClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Chat sends the conversation to the Gemini API and returns the response
// text. System messages become the model's system instruction; prior turns
// become chat history, and the final user message is sent as the request.
func (c *GoogleClient) Chat(ctx context.Context, messages []Message, opts Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(float32(opts.Temperature))
	if opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(opts.MaxTokens))
	}
	if opts.JSONMode {
		model.ResponseMIMEType = "application/json"
	}

	var history []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			model.SystemInstruction = &genai.Content{
				Parts: []genai.Part{genai.Text(m.Content)},
			}
		case RoleAssistant:
			history = append(history, &genai.Content{
				Role:  "model",
				Parts: []genai.Part{genai.Text(m.Content)},
			})
		default:
			history = append(history, &genai.Content{
				Role:  "user",
				Parts: []genai.Part{genai.Text(m.Content)},
			})
		}
	}
	if len(history) == 0 {
		return "", &Error{
			Provider: "google",
			Code:     CodeAPIError,
			Message:  "no user message to send",
		}
	}

	// The last turn is the request; everything before it is chat history.
	last := history[len(history)-1]
	history = history[:len(history)-1]

	var resp *genai.GenerateContentResponse
	var err error
	if len(history) == 0 {
		resp, err = model.GenerateContent(ctx, last.Parts...)
	} else {
		cs := model.StartChat()
		cs.History = history
		resp, err = cs.SendMessage(ctx, last.Parts...)
	}
	if err != nil {
		return "", classifyError("google", err)
	}

	text := googleResponseText(resp)
	if text == "" {
		return "", &Error{
			Provider: "google",
			Code:     CodeAPIError,
			Message:  "no text parts in response",
		}
	}
	return text, nil
}

// googleResponseText extracts the text parts of the first candidate.
func googleResponseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}
