package llm

import (
	"context"
	"hash/fnv"
	"sync"
)

// MockChatModel is a test implementation of ChatModel.
//
// Use MockChatModel in tests to verify node and service behavior without
// making actual API calls. It provides:
//   - Configurable responses
//   - Call history tracking
//   - Error injection
//   - Thread-safe operation
//
// Example usage:
//
//	mock := &MockChatModel{
//	    Responses: []string{`{"route": "rag"}`, "Here is the answer."},
//	}
//	text, err := mock.Chat(ctx, messages, llm.Options{})
//	// Returns the first response, then the second on the next call.
type MockChatModel struct {
	// Responses contains the sequence of responses to return.
	// Each call to Chat returns the next response in order.
	// If all responses are consumed, the last response repeats.
	Responses []string

	// Err, if set, is returned by Chat instead of a response.
	Err error

	// Calls tracks the history of all Chat invocations.
	Calls []MockChatCall

	mu        sync.Mutex
	callIndex int
}

// MockChatCall records a single invocation of Chat.
type MockChatCall struct {
	Messages []Message
	Opts     Options
}

// Chat implements the ChatModel interface.
//
// Always records the call in Calls, except when ctx is already done.
func (m *MockChatModel) Chat(ctx context.Context, messages []Message, opts Options) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockChatCall{
		Messages: messages,
		Opts:     opts,
	})

	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", nil
	}

	idx := m.callIndex
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	} else {
		m.callIndex++
	}
	return m.Responses[idx], nil
}

// Reset clears the call history and resets the response index.
func (m *MockChatModel) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = nil
	m.callIndex = 0
}

// CallCount returns the number of times Chat has been called.
func (m *MockChatModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.Calls)
}

// MockEmbedder is a test implementation of Embedder.
//
// Vectors are derived deterministically from the input text, so equal texts
// always embed to equal vectors. That makes similarity assertions in vector
// store tests reliable without a real embedding service.
type MockEmbedder struct {
	// Dim is the dimension of generated vectors. Zero means 4.
	Dim int

	// Err, if set, is returned by Embed instead of vectors.
	Err error

	// Calls tracks the text batches passed to Embed.
	Calls [][]string

	mu sync.Mutex
}

// Embed implements the Embedder interface.
func (m *MockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, texts)

	if m.Err != nil {
		return nil, m.Err
	}

	dim := m.Dim
	if dim <= 0 {
		dim = 4
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = mockVector(text, dim)
	}
	return out, nil
}

// CallCount returns the number of times Embed has been called.
func (m *MockEmbedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.Calls)
}

// Reset clears the call history.
func (m *MockEmbedder) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = nil
}

// mockVector expands an FNV hash of the text into a pseudo-random but
// deterministic vector of the given dimension.
func mockVector(text string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vec := make([]float32, dim)
	for i := range vec {
		seed = seed*1664525 + 1013904223
		vec[i] = float32(seed%1000)/999.0 + 0.001
	}
	return vec
}
