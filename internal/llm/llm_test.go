package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  string
		retryable bool
	}{
		{"http 401", errors.New("401 Unauthorized"), CodeInvalidAPIKey, false},
		{"incorrect key", errors.New("Incorrect API key provided: sk-xxx"), CodeInvalidAPIKey, false},
		{"http 403", errors.New("403 Forbidden"), CodeInvalidAPIKey, false},
		{"http 429", errors.New("429 Too Many Requests"), CodeRateLimited, true},
		{"rate limit message", errors.New("Rate limit reached for gpt-4o-mini"), CodeRateLimited, true},
		{"grpc resource exhausted", errors.New("rpc error: code = ResourceExhausted desc = resource_exhausted"), CodeRateLimited, true},
		{"quota", errors.New("You exceeded your current quota, please check your plan and billing details"), CodeQuotaExceeded, false},
		{"http 500", errors.New("500 Internal Server Error"), CodeServerError, true},
		{"http 503", errors.New("503 Service Unavailable"), CodeServerError, true},
		{"overloaded", errors.New("Overloaded"), CodeServerError, true},
		{"connection refused", errors.New("dial tcp 127.0.0.1:443: connection refused"), CodeNetworkError, true},
		{"client timeout", errors.New("Client.Timeout exceeded while awaiting headers"), CodeNetworkError, true},
		{"unknown", errors.New("model not found"), CodeAPIError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyError("openai", tt.err)

			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *Error, got %T: %v", err, err)
			}
			if apiErr.Code != tt.wantCode {
				t.Errorf("expected code %q, got %q", tt.wantCode, apiErr.Code)
			}
			if apiErr.Retryable != tt.retryable {
				t.Errorf("expected retryable=%v, got %v", tt.retryable, apiErr.Retryable)
			}
			if apiErr.Provider != "openai" {
				t.Errorf("expected provider %q, got %q", "openai", apiErr.Provider)
			}
		})
	}
}

func TestClassifyError_ContextErrors(t *testing.T) {
	t.Run("canceled passes through", func(t *testing.T) {
		err := classifyError("anthropic", context.Canceled)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		var apiErr *Error
		if errors.As(err, &apiErr) {
			t.Errorf("cancellation should not become an *Error, got %v", apiErr)
		}
	})

	t.Run("deadline becomes timeout", func(t *testing.T) {
		err := classifyError("anthropic", context.DeadlineExceeded)
		var apiErr *Error
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *Error, got %T", err)
		}
		if apiErr.Code != CodeTimeout {
			t.Errorf("expected code %q, got %q", CodeTimeout, apiErr.Code)
		}
		if !apiErr.Retryable {
			t.Error("timeout should be retryable")
		}
	})

	t.Run("nil stays nil", func(t *testing.T) {
		if err := classifyError("openai", nil); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})
}

func TestError_Error(t *testing.T) {
	err := &Error{
		Provider:  "google",
		Code:      CodeRateLimited,
		Message:   "rate limit exceeded",
		Retryable: true,
	}

	msg := err.Error()
	if !strings.Contains(msg, "google") {
		t.Errorf("error string should name the provider: %q", msg)
	}
	if !strings.Contains(msg, CodeRateLimited) {
		t.Errorf("error string should include the code: %q", msg)
	}
	if !strings.Contains(msg, "rate limit exceeded") {
		t.Errorf("error string should include the message: %q", msg)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"retryable api error", &Error{Code: CodeRateLimited, Retryable: true}, true},
		{"permanent api error", &Error{Code: CodeInvalidAPIKey, Retryable: false}, false},
		{"wrapped retryable", fmt.Errorf("router: %w", &Error{Code: CodeTimeout, Retryable: true}), true},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
