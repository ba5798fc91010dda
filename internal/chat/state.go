// Package chat implements the conversational workflow: the shared state
// model, the router, retriever, tool and responder nodes, the compiled
// graph joining them, and the service layer that runs one turn per request
// on top of a checkpoint store.
package chat

import (
	"github.com/zelalem61/personal-chat-bot/internal/llm"
	"github.com/zelalem61/personal-chat-bot/internal/vector"
)

// Routes the router can pick for a turn.
const (
	// RouteRAG retrieves portfolio documents before answering.
	RouteRAG = "rag"

	// RouteTool executes a tool before answering.
	RouteTool = "tool"

	// RouteDirect answers immediately with no extra context.
	RouteDirect = "direct"
)

// Message is one turn in a conversation, either from the user or the
// assistant.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RouteDecision is the structured output of the classification call. The
// json tags match the object the router prompt asks the model for.
type RouteDecision struct {
	Route     string `json:"route_type"`
	ToolName  string `json:"tool_name,omitempty"`
	Reasoning string `json:"reasoning,omitempty"`
}

// State is the workflow state shared by every node in the chat graph.
//
// Nodes return partial State values; Reduce folds them into the running
// state according to the per-field policy table. Only Messages survives a
// turn: the service persists it to the checkpoint store, while the other
// fields are scratch space that the next turn starts without.
type State struct {
	// Messages is the conversation history, oldest first. Appended, never
	// replaced.
	Messages []Message `json:"messages"`

	// Route is the router's decision for this turn.
	Route string `json:"route,omitempty"`

	// ToolName names the tool to execute when Route is RouteTool.
	ToolName string `json:"tool_name,omitempty"`

	// ToolArgs carries arguments for the tool call.
	ToolArgs map[string]interface{} `json:"tool_args,omitempty"`

	// ToolResult is the text output of the executed tool.
	ToolResult string `json:"tool_result,omitempty"`

	// Documents holds this turn's retrieval results in ascending distance
	// order.
	Documents []vector.Document `json:"documents,omitempty"`

	// FinalResponse is the assistant's reply for this turn.
	FinalResponse string `json:"final_response,omitempty"`
}

// Policy is the merge behavior Reduce applies to one State field.
type Policy int

const (
	// Replace overwrites the current value when the delta carries a set
	// (non-zero) value.
	Replace Policy = iota

	// Append concatenates the delta slice onto the current slice.
	Append
)

// policies assigns a merge policy to every State field by name. Reduce
// implements the table field by field, and the state tests check the table
// against the struct with reflection, so a new State field without a
// policy decision fails the tests.
var policies = map[string]Policy{
	"Messages":      Append,
	"Route":         Replace,
	"ToolName":      Replace,
	"ToolArgs":      Replace,
	"ToolResult":    Replace,
	"Documents":     Replace,
	"FinalResponse": Replace,
}

// Reduce merges a node's partial update into the current state and returns
// the result. Messages append; every other field replaces the current
// value only when the delta value is set, so fields a node does not touch
// pass through unchanged. Neither argument is mutated.
//
// Documents distinguishes nil from empty: a nil slice leaves the current
// documents alone, while an empty non-nil slice clears them, which is how
// the retriever reports "searched, found nothing".
func Reduce(current, delta State) State {
	merged := current

	if len(delta.Messages) > 0 {
		msgs := make([]Message, 0, len(current.Messages)+len(delta.Messages))
		msgs = append(msgs, current.Messages...)
		msgs = append(msgs, delta.Messages...)
		merged.Messages = msgs
	}
	if delta.Route != "" {
		merged.Route = delta.Route
	}
	if delta.ToolName != "" {
		merged.ToolName = delta.ToolName
	}
	if delta.ToolArgs != nil {
		merged.ToolArgs = delta.ToolArgs
	}
	if delta.ToolResult != "" {
		merged.ToolResult = delta.ToolResult
	}
	if delta.Documents != nil {
		merged.Documents = delta.Documents
	}
	if delta.FinalResponse != "" {
		merged.FinalResponse = delta.FinalResponse
	}

	return merged
}

// LastUserMessage returns the content of the most recent user message, or
// "" when the conversation has none.
func (s State) LastUserMessage() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == llm.RoleUser {
			return s.Messages[i].Content
		}
	}
	return ""
}

// truncate shortens s to at most n runes for log output.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
