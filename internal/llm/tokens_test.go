package llm

import (
	"errors"
	"testing"

	"github.com/pkoukk/tiktoken-go"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{"abcdefgh", 2},
		{"What is the capital of France?", 8},
	}

	for _, tt := range tests {
		if got := estimateTokens(tt.text); got != tt.want {
			t.Errorf("estimateTokens(%q): expected %d, got %d", tt.text, tt.want, got)
		}
	}
}

// offlineCounter returns a TokenCounter whose encoding lookup always fails,
// forcing the character-based estimate.
func offlineCounter(t *testing.T) *TokenCounter {
	t.Helper()
	tc := NewTokenCounter("gpt-4o-mini")
	tc.lookup = func(string) (*tiktoken.Tiktoken, error) {
		return nil, errors.New("encoding unavailable")
	}
	return tc
}

func TestTokenCounter_FallbackEstimate(t *testing.T) {
	tc := offlineCounter(t)

	if got := tc.Count(""); got != 0 {
		t.Errorf("empty text: expected 0, got %d", got)
	}
	if got := tc.Count("abcdefgh"); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
}

func TestTokenCounter_CountMessages(t *testing.T) {
	tc := offlineCounter(t)

	messages := []Message{
		{Role: RoleUser, Content: "abcd"},          // 1 token + overhead
		{Role: RoleAssistant, Content: "abcdefgh"}, // 2 tokens + overhead
	}

	want := (1 + messageOverhead) + (2 + messageOverhead)
	if got := tc.CountMessages(messages); got != want {
		t.Errorf("expected %d, got %d", want, got)
	}
	if got := tc.CountMessages(nil); got != 0 {
		t.Errorf("empty window: expected 0, got %d", got)
	}
}

func TestTokenCounter_LookupOnce(t *testing.T) {
	lookups := 0
	tc := NewTokenCounter("gpt-4o-mini")
	tc.lookup = func(string) (*tiktoken.Tiktoken, error) {
		lookups++
		return nil, errors.New("encoding unavailable")
	}

	tc.Count("first")
	tc.Count("second")
	tc.CountMessages([]Message{{Role: RoleUser, Content: "third"}})

	if lookups != 1 {
		t.Errorf("expected a single encoding lookup, got %d", lookups)
	}
}
