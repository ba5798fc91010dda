package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// scriptedChatModel returns a fixed sequence of results, repeating the last
// entry once the script is exhausted.
type scriptedChatModel struct {
	outs   []string
	errs   []error
	calls  int
	onCall func()
}

func (s *scriptedChatModel) Chat(ctx context.Context, messages []Message, opts Options) (string, error) {
	if s.onCall != nil {
		s.onCall()
	}
	i := s.calls
	s.calls++
	if i >= len(s.errs) {
		i = len(s.errs) - 1
	}
	var out string
	if i < len(s.outs) {
		out = s.outs[i]
	}
	return out, s.errs[i]
}

func TestRetryChatModel_RecoversFromTransientError(t *testing.T) {
	inner := &scriptedChatModel{
		outs: []string{"", "ok"},
		errs: []error{
			&Error{Provider: "openai", Code: CodeRateLimited, Retryable: true},
			nil,
		},
	}
	model := WithRetries(inner, 3, time.Millisecond)

	got, err := model.Chat(context.Background(), nil, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Errorf("expected %q, got %q", "ok", got)
	}
	if inner.calls != 2 {
		t.Errorf("expected 2 attempts, got %d", inner.calls)
	}
}

func TestRetryChatModel_PermanentErrorFailsFast(t *testing.T) {
	inner := &scriptedChatModel{
		errs: []error{
			&Error{Provider: "openai", Code: CodeInvalidAPIKey, Retryable: false},
		},
	}
	model := WithRetries(inner, 3, time.Millisecond)

	_, err := model.Chat(context.Background(), nil, Options{})
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Code != CodeInvalidAPIKey {
		t.Fatalf("expected invalid_api_key error, got %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("permanent error should not be retried, got %d attempts", inner.calls)
	}
}

func TestRetryChatModel_ExhaustsRetries(t *testing.T) {
	inner := &scriptedChatModel{
		errs: []error{
			&Error{Provider: "openai", Code: CodeServerError, Retryable: true},
		},
	}
	model := WithRetries(inner, 2, time.Millisecond)

	_, err := model.Chat(context.Background(), nil, Options{})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if !strings.Contains(err.Error(), "after 2 retries") {
		t.Errorf("expected retry count in error, got %q", err.Error())
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Errorf("expected wrapped *Error, got %v", err)
	}
	if inner.calls != 3 {
		t.Errorf("expected 3 attempts (1 + 2 retries), got %d", inner.calls)
	}
}

func TestRetryChatModel_ContextCanceledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	inner := &scriptedChatModel{
		errs: []error{
			&Error{Provider: "openai", Code: CodeServerError, Retryable: true},
		},
		onCall: cancel,
	}
	// Long delay so only the canceled context can end the wait.
	model := WithRetries(inner, 3, time.Minute)

	_, err := model.Chat(ctx, nil, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 attempt before cancellation, got %d", inner.calls)
	}
}
