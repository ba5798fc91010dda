package llm

import (
	"context"
	"errors"
	"testing"
)

func TestMockChatModel_ResponseSequence(t *testing.T) {
	mock := &MockChatModel{Responses: []string{"one", "two"}}
	ctx := context.Background()

	msgs := []Message{{Role: RoleUser, Content: "hi"}}
	opts := Options{Temperature: 0.7}

	for i, want := range []string{"one", "two", "two"} {
		got, err := mock.Chat(ctx, msgs, opts)
		if err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
		if got != want {
			t.Errorf("call %d: expected %q, got %q", i, want, got)
		}
	}

	if mock.CallCount() != 3 {
		t.Errorf("expected 3 calls, got %d", mock.CallCount())
	}
	if len(mock.Calls) != 3 {
		t.Fatalf("expected 3 recorded calls, got %d", len(mock.Calls))
	}
	if mock.Calls[0].Messages[0].Content != "hi" {
		t.Errorf("expected recorded message %q, got %q", "hi", mock.Calls[0].Messages[0].Content)
	}
	if mock.Calls[0].Opts.Temperature != 0.7 {
		t.Errorf("expected recorded temperature 0.7, got %v", mock.Calls[0].Opts.Temperature)
	}
}

func TestMockChatModel_ErrorInjection(t *testing.T) {
	wantErr := errors.New("API error")
	mock := &MockChatModel{Err: wantErr}

	_, err := mock.Chat(context.Background(), nil, Options{})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("failed call should still be recorded, count = %d", mock.CallCount())
	}
}

func TestMockChatModel_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock := &MockChatModel{Responses: []string{"unused"}}
	_, err := mock.Chat(ctx, nil, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if mock.CallCount() != 0 {
		t.Errorf("canceled call should not be recorded, count = %d", mock.CallCount())
	}
}

func TestMockChatModel_Reset(t *testing.T) {
	mock := &MockChatModel{Responses: []string{"one", "two"}}
	ctx := context.Background()

	if _, err := mock.Chat(ctx, nil, Options{}); err != nil {
		t.Fatal(err)
	}
	mock.Reset()

	if mock.CallCount() != 0 {
		t.Errorf("expected 0 calls after reset, got %d", mock.CallCount())
	}
	got, err := mock.Chat(ctx, nil, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got != "one" {
		t.Errorf("expected sequence to restart at %q, got %q", "one", got)
	}
}

func TestMockEmbedder_Deterministic(t *testing.T) {
	mock := &MockEmbedder{Dim: 8}
	ctx := context.Background()

	first, err := mock.Embed(ctx, []string{"hello", "world"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := mock.Embed(ctx, []string{"hello", "world"})
	if err != nil {
		t.Fatal(err)
	}

	if len(first) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(first))
	}
	for i := range first {
		if len(first[i]) != 8 {
			t.Errorf("vector %d: expected dim 8, got %d", i, len(first[i]))
		}
		for j := range first[i] {
			if first[i][j] != second[i][j] {
				t.Fatalf("vector %d differs between calls at index %d", i, j)
			}
			if first[i][j] <= 0 {
				t.Errorf("vector %d[%d] = %v, expected positive component", i, j, first[i][j])
			}
		}
	}

	if mock.CallCount() != 2 {
		t.Errorf("expected 2 calls, got %d", mock.CallCount())
	}
	if len(mock.Calls[0]) != 2 || mock.Calls[0][0] != "hello" {
		t.Errorf("expected call recording [hello world], got %v", mock.Calls[0])
	}
}

func TestMockEmbedder_ErrorInjection(t *testing.T) {
	wantErr := errors.New("embedding service down")
	mock := &MockEmbedder{Err: wantErr}

	_, err := mock.Embed(context.Background(), []string{"text"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected injected error, got %v", err)
	}
}

func TestMockEmbedder_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock := &MockEmbedder{}
	_, err := mock.Embed(ctx, []string{"text"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if mock.CallCount() != 0 {
		t.Errorf("canceled call should not be recorded, count = %d", mock.CallCount())
	}
}
