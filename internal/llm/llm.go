// Package llm provides chat-completion and embedding clients for the
// language model providers the bot can talk to.
//
// The ChatModel interface abstracts the differences between providers
// (OpenAI, Anthropic, Google) behind a unified message-in, text-out API.
// Implementations handle provider-specific authentication, convert the
// standard Message format to provider wire formats, and map provider
// failures onto the typed *Error so callers can decide on retryability
// without knowing which SDK produced the failure.
//
// Example usage:
//
//	client, err := llm.NewOpenAIClient(apiKey, "gpt-4o-mini", "text-embedding-3-small")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	text, err := client.Chat(ctx, []llm.Message{
//	    {Role: llm.RoleSystem, Content: "You are a helpful assistant."},
//	    {Role: llm.RoleUser, Content: "What is the capital of France?"},
//	}, llm.Options{Temperature: 0.7})
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// requestTimeout caps every provider API call so a hung upstream turns
// into a client error the calling node can absorb.
const requestTimeout = 60 * time.Second

// Message represents a single message in a model conversation.
//
// Messages follow the common chat format used by OpenAI, Anthropic, and
// Google: an optional leading system message, then alternating user and
// assistant turns.
type Message struct {
	// Role identifies the message sender. Use the Role* constants.
	Role string

	// Content contains the message text.
	Content string
}

// Standard role constants for model conversations.
const (
	// RoleSystem sets context or instructions and appears first.
	RoleSystem = "system"

	// RoleUser carries input from the human user.
	RoleUser = "user"

	// RoleAssistant carries a prior model response.
	RoleAssistant = "assistant"
)

// Options control a single chat completion. Every call site sets the full
// struct; the zero value requests greedy decoding with provider-default
// output limits.
type Options struct {
	// Temperature is always sent to the provider. 0 selects deterministic
	// decoding, which the intent classifier depends on.
	Temperature float64

	// MaxTokens caps the response length. 0 leaves the provider default.
	MaxTokens int

	// JSONMode requests a JSON object response. OpenAI and Google enforce
	// this natively; Anthropic gets a system instruction instead.
	JSONMode bool
}

// ChatModel defines the interface for chat-completion providers.
//
// Implementations must respect context cancellation and return either the
// model's text or an error; they never return both. Failures that originate
// in the provider API are reported as *Error.
type ChatModel interface {
	Chat(ctx context.Context, messages []Message, opts Options) (string, error)
}

// Embedder defines the interface for text embedding providers.
//
// Embed returns one vector per input text, in input order. An empty input
// slice returns (nil, nil) without calling the provider.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Error codes assigned by classifyError. Codes are stable strings so they
// can be logged and matched without string-parsing messages.
const (
	// CodeInvalidAPIKey marks authentication failures (401, 403). Permanent.
	CodeInvalidAPIKey = "invalid_api_key"

	// CodeRateLimited marks rate limit responses (429). Retryable.
	CodeRateLimited = "rate_limited"

	// CodeQuotaExceeded marks exhausted quota or billing failures. Permanent.
	CodeQuotaExceeded = "quota_exceeded"

	// CodeTimeout marks a request that exceeded its deadline. Retryable.
	CodeTimeout = "timeout"

	// CodeServerError marks provider-side 5xx failures. Retryable.
	CodeServerError = "server_error"

	// CodeNetworkError marks transport-level failures. Retryable.
	CodeNetworkError = "network_error"

	// CodeAPIError marks any other provider failure. Permanent by default.
	CodeAPIError = "api_error"
)

// Error is a typed provider failure.
//
// Callers use Retryable (or the IsRetryable helper) to decide whether a
// failed call is worth repeating, and Code to branch on the failure class:
//
//	var apiErr *llm.Error
//	if errors.As(err, &apiErr) && apiErr.Code == llm.CodeRateLimited {
//	    // back off and retry
//	}
type Error struct {
	// Provider names the originating provider ("openai", "anthropic", "google").
	Provider string

	// Code is one of the Code* constants.
	Code string

	// Message is a human-readable description of the failure.
	Message string

	// Retryable reports whether repeating the call may succeed.
	Retryable bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Provider, e.Message, e.Code)
}

// IsRetryable reports whether err is a provider failure worth repeating.
// Non-*Error values (including context errors) are not retryable.
func IsRetryable(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Retryable
	}
	return false
}

// classifyError maps a provider SDK error onto a typed *Error.
//
// Context cancellation passes through untouched so callers can tell their
// own cancellation apart from an upstream failure. Everything else is
// classified by message substring, which is the only signal the provider
// SDKs expose uniformly.
func classifyError(provider string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{
			Provider:  provider,
			Code:      CodeTimeout,
			Message:   "request timed out",
			Retryable: true,
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "rate limit", "rate_limit", "429", "too many requests", "resource_exhausted"):
		return &Error{
			Provider:  provider,
			Code:      CodeRateLimited,
			Message:   "rate limit exceeded",
			Retryable: true,
		}
	case containsAny(msg, "invalid api key", "incorrect api key", "401", "403", "unauthorized", "authentication", "api key", "api_key"):
		return &Error{
			Provider:  provider,
			Code:      CodeInvalidAPIKey,
			Message:   "API key is invalid or expired",
			Retryable: false,
		}
	case containsAny(msg, "quota", "insufficient_quota", "billing"):
		return &Error{
			Provider:  provider,
			Code:      CodeQuotaExceeded,
			Message:   "API quota exceeded",
			Retryable: false,
		}
	case containsAny(msg, "500", "502", "503", "504", "internal server error", "bad gateway", "service unavailable", "gateway timeout", "overloaded"):
		return &Error{
			Provider:  provider,
			Code:      CodeServerError,
			Message:   err.Error(),
			Retryable: true,
		}
	case containsAny(msg, "timeout", "deadline", "connection", "network", "temporary"):
		return &Error{
			Provider:  provider,
			Code:      CodeNetworkError,
			Message:   err.Error(),
			Retryable: true,
		}
	}

	return &Error{
		Provider:  provider,
		Code:      CodeAPIError,
		Message:   err.Error(),
		Retryable: false,
	}
}

func containsAny(s string, patterns ...string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
