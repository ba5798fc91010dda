package chat

import (
	"reflect"
	"testing"

	"github.com/zelalem61/personal-chat-bot/internal/llm"
	"github.com/zelalem61/personal-chat-bot/internal/vector"
)

func TestReduceAppendsMessages(t *testing.T) {
	current := State{Messages: []Message{{Role: llm.RoleUser, Content: "hi"}}}
	delta := State{Messages: []Message{{Role: llm.RoleAssistant, Content: "hello"}}}

	merged := Reduce(current, delta)

	if len(merged.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(merged.Messages))
	}
	if merged.Messages[0].Content != "hi" || merged.Messages[1].Content != "hello" {
		t.Fatalf("messages out of order: %+v", merged.Messages)
	}
	if len(current.Messages) != 1 {
		t.Fatalf("current mutated: %+v", current.Messages)
	}
}

func TestReduceReplacesSetFields(t *testing.T) {
	current := State{
		Route:         RouteDirect,
		ToolName:      "email",
		ToolArgs:      map[string]interface{}{"to": "old"},
		ToolResult:    "old result",
		FinalResponse: "old response",
	}
	delta := State{
		Route:         RouteRAG,
		ToolName:      "calendar",
		ToolArgs:      map[string]interface{}{"date": "new"},
		ToolResult:    "new result",
		FinalResponse: "new response",
	}

	merged := Reduce(current, delta)

	if merged.Route != RouteRAG {
		t.Errorf("expected route %q, got %q", RouteRAG, merged.Route)
	}
	if merged.ToolName != "calendar" {
		t.Errorf("expected tool %q, got %q", "calendar", merged.ToolName)
	}
	if merged.ToolArgs["date"] != "new" {
		t.Errorf("expected replaced tool args, got %v", merged.ToolArgs)
	}
	if merged.ToolResult != "new result" {
		t.Errorf("expected replaced tool result, got %q", merged.ToolResult)
	}
	if merged.FinalResponse != "new response" {
		t.Errorf("expected replaced final response, got %q", merged.FinalResponse)
	}
}

func TestReduceKeepsUnsetFields(t *testing.T) {
	current := State{
		Messages:      []Message{{Role: llm.RoleUser, Content: "hi"}},
		Route:         RouteRAG,
		ToolName:      "email",
		ToolArgs:      map[string]interface{}{"to": "a"},
		ToolResult:    "sent",
		Documents:     []vector.Document{{ID: "d1", Content: "doc"}},
		FinalResponse: "done",
	}

	merged := Reduce(current, State{})

	if !reflect.DeepEqual(merged, current) {
		t.Fatalf("zero delta changed state:\nexpected %+v\ngot      %+v", current, merged)
	}
}

func TestReduceDocuments(t *testing.T) {
	current := State{Documents: []vector.Document{{ID: "d1", Content: "doc"}}}

	t.Run("nil delta keeps current", func(t *testing.T) {
		merged := Reduce(current, State{})
		if len(merged.Documents) != 1 {
			t.Fatalf("expected documents kept, got %+v", merged.Documents)
		}
	})

	t.Run("empty non-nil delta clears", func(t *testing.T) {
		merged := Reduce(current, State{Documents: []vector.Document{}})
		if merged.Documents == nil || len(merged.Documents) != 0 {
			t.Fatalf("expected empty documents, got %+v", merged.Documents)
		}
	})

	t.Run("non-empty delta replaces", func(t *testing.T) {
		merged := Reduce(current, State{Documents: []vector.Document{{ID: "d2"}, {ID: "d3"}}})
		if len(merged.Documents) != 2 || merged.Documents[0].ID != "d2" {
			t.Fatalf("expected replaced documents, got %+v", merged.Documents)
		}
	})
}

func TestPoliciesCoverEveryStateField(t *testing.T) {
	typ := reflect.TypeOf(State{})

	for i := 0; i < typ.NumField(); i++ {
		name := typ.Field(i).Name
		if _, ok := policies[name]; !ok {
			t.Errorf("field %s has no merge policy", name)
		}
	}
	if len(policies) != typ.NumField() {
		t.Errorf("expected %d policies, got %d", typ.NumField(), len(policies))
	}
}

func TestLastUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		messages []Message
		expected string
	}{
		{name: "empty", messages: nil, expected: ""},
		{
			name:     "no user messages",
			messages: []Message{{Role: llm.RoleAssistant, Content: "hi"}},
			expected: "",
		},
		{
			name: "latest user wins",
			messages: []Message{
				{Role: llm.RoleUser, Content: "first"},
				{Role: llm.RoleAssistant, Content: "reply"},
				{Role: llm.RoleUser, Content: "second"},
			},
			expected: "second",
		},
		{
			name: "skips trailing assistant",
			messages: []Message{
				{Role: llm.RoleUser, Content: "question"},
				{Role: llm.RoleAssistant, Content: "answer"},
			},
			expected: "question",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := State{Messages: tt.messages}.LastUserMessage()
			if got != tt.expected {
				t.Fatalf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("hello", 10); got != "hello" {
		t.Errorf("expected %q, got %q", "hello", got)
	}
	if got := truncate("hello world", 5); got != "hello" {
		t.Errorf("expected %q, got %q", "hello", got)
	}
	if got := truncate("héllo", 2); got != "hé" {
		t.Errorf("expected %q, got %q", "hé", got)
	}
}
