package tool

import (
	"context"
	"sync"
)

// MockTool is a test implementation of Tool.
//
// Each Call returns the next entry from Responses; when the sequence is
// exhausted the last entry repeats. Set Err to make every call fail.
// Calls records argument history for assertions.
//
//	mock := &MockTool{
//	    ToolName:  "calendar",
//	    Responses: []string{"You are free all afternoon."},
//	}
type MockTool struct {
	// ToolName is the identifier returned by Name().
	ToolName string

	// Desc is returned by Description(). Optional.
	Desc string

	// Responses is the sequence of outputs to return. When consumed,
	// the last entry repeats.
	Responses []string

	// Err, if set, is returned by Call() instead of a response.
	Err error

	// Calls records every Call() invocation's arguments.
	Calls []map[string]interface{}

	mu        sync.Mutex
	callIndex int
}

// Name implements the Tool interface.
func (m *MockTool) Name() string {
	return m.ToolName
}

// Description implements the Tool interface.
func (m *MockTool) Description() string {
	if m.Desc != "" {
		return m.Desc
	}
	return "mock tool"
}

// Call implements the Tool interface. The call is recorded even when it
// fails.
func (m *MockTool) Call(ctx context.Context, args map[string]interface{}) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, args)

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

// Reset clears the call history and response index so the mock can be
// reused across test cases.
func (m *MockTool) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = nil
	m.callIndex = 0
}

// CallCount returns how many times Call() ran.
func (m *MockTool) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.Calls)
}
