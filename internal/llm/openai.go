package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAIClient implements ChatModel and Embedder using OpenAI's API.
//
// The client is safe for concurrent use; the underlying SDK handles
// thread-safety internally. One OpenAIClient serves both chat completions
// and embeddings so the service layer only constructs a single client.
type OpenAIClient struct {
	client     *openai.Client
	chatModel  string
	embedModel string
}

// NewOpenAIClient creates an OpenAI client for the given chat and embedding
// models. Empty model names select gpt-4o-mini and text-embedding-3-small.
//
// Returns an error if apiKey is empty.
func NewOpenAIClient(apiKey, chatModel, embedModel string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("API key cannot be empty")
	}
	if chatModel == "" {
		chatModel = "gpt-4o-mini"
	}
	if embedModel == "" {
		embedModel = "text-embedding-3-small"
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(requestTimeout),
	)

	return &OpenAIClient{
		client:     &client,
		chatModel:  chatModel,
		embedModel: embedModel,
	}, nil
}

// Chat sends the conversation to the chat completions API and returns the
// model's text. With opts.JSONMode the response format is constrained to a
// JSON object.
func (c *OpenAIClient) Chat(ctx context.Context, messages []Message, opts Options) (string, error) {
	// Check context before making the API call.
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(c.chatModel),
		Messages:    toOpenAIMessages(messages),
		Temperature: openai.Float(opts.Temperature),
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}
	if opts.JSONMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: openai.Ptr(shared.NewResponseFormatJSONObjectParam()),
		}
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", classifyError("openai", err)
	}
	if len(completion.Choices) == 0 {
		return "", &Error{
			Provider: "openai",
			Code:     CodeAPIError,
			Message:  "no choices in completion response",
		}
	}

	return completion.Choices[0].Message.Content, nil
}

// Embed returns one embedding vector per input text, in input order.
func (c *OpenAIClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := c.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.embedModel),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	})
	if err != nil {
		return nil, classifyError("openai", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, &Error{
			Provider: "openai",
			Code:     CodeAPIError,
			Message:  fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(resp.Data)),
		}
	}

	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float32(v)
		}
		vectors[d.Index] = vec
	}
	return vectors, nil
}

// toOpenAIMessages converts the standard Message slice to the SDK's
// message union. Unknown roles are sent as user messages.
func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
