package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RetryChatModel wraps a ChatModel with bounded retries for transient
// failures. Rate limit errors back off linearly with the attempt number;
// other retryable errors wait a fixed delay.
//
// Example usage:
//
//	model := llm.WithRetries(client, 3, time.Second)
//	text, err := model.Chat(ctx, messages, opts)
type RetryChatModel struct {
	inner      ChatModel
	maxRetries int
	retryDelay time.Duration
}

// WithRetries wraps inner so that transient failures are retried up to
// maxRetries additional times, waiting retryDelay between attempts.
func WithRetries(inner ChatModel, maxRetries int, retryDelay time.Duration) *RetryChatModel {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if retryDelay <= 0 {
		retryDelay = time.Second
	}
	return &RetryChatModel{
		inner:      inner,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

// Chat implements ChatModel.
//
// Non-retryable errors return immediately. Context cancellation during a
// backoff wait returns ctx.Err().
func (r *RetryChatModel) Chat(ctx context.Context, messages []Message, opts Options) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		out, err := r.inner.Chat(ctx, messages, opts)
		if err == nil {
			return out, nil
		}

		lastErr = err

		if !IsRetryable(err) {
			return "", err
		}
		if attempt >= r.maxRetries {
			break
		}

		delay := r.retryDelay
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Code == CodeRateLimited {
			delay = r.retryDelay * time.Duration(attempt+1)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("chat failed after %d retries: %w", r.maxRetries, lastErr)
}
