package llm

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// messageOverhead approximates the per-message framing tokens chat APIs add
// around each message's content.
const messageOverhead = 4

// TokenCounter counts tokens for conversation history budgeting.
//
// The tiktoken encoding for the configured model is resolved lazily on
// first use. When no encoding can be loaded (unknown model, offline
// environment), Count falls back to a character-based estimate, which is
// close enough for trimming history to a budget.
type TokenCounter struct {
	model  string
	lookup func(model string) (*tiktoken.Tiktoken, error)

	once sync.Once
	enc  *tiktoken.Tiktoken
}

// NewTokenCounter creates a counter for the given model name.
func NewTokenCounter(model string) *TokenCounter {
	return &TokenCounter{
		model: model,
		lookup: func(model string) (*tiktoken.Tiktoken, error) {
			enc, err := tiktoken.EncodingForModel(model)
			if err != nil {
				return tiktoken.GetEncoding("cl100k_base")
			}
			return enc, nil
		},
	}
}

// Count returns the token count for text.
func (t *TokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	if enc := t.encoding(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return estimateTokens(text)
}

// CountMessages sums the token counts of a message window, including a
// small per-message framing overhead.
func (t *TokenCounter) CountMessages(messages []Message) int {
	total := 0
	for _, m := range messages {
		total += t.Count(m.Content) + messageOverhead
	}
	return total
}

func (t *TokenCounter) encoding() *tiktoken.Tiktoken {
	t.once.Do(func() {
		enc, err := t.lookup(t.model)
		if err == nil {
			t.enc = enc
		}
	})
	return t.enc
}

// estimateTokens approximates one token per four characters. English prose
// averages slightly above four characters per token, so the estimate errs
// on the safe side for budgeting.
func estimateTokens(text string) int {
	if text == "" {
		return 0
	}
	n := (len(text) + 3) / 4
	if n < 1 {
		n = 1
	}
	return n
}
