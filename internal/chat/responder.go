package chat

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/zelalem61/personal-chat-bot/internal/llm"
	"github.com/zelalem61/personal-chat-bot/internal/vector"
)

// responderTemperature leaves room for conversational phrasing, unlike the
// router's deterministic classification.
const responderTemperature = 0.7

// historyTokenBudget caps how much rendered conversation history goes into
// the response prompt.
const historyTokenBudget = 2000

// Responder generates the user-facing reply from whatever context the turn
// produced. It is the last node on every path through the graph.
//
// Generation failures become a fixed apologetic fallback, so every turn
// ends with text the user can read.
type Responder struct {
	model   llm.ChatModel
	system  string
	counter *llm.TokenCounter
	budget  int
	logger  *zap.Logger
}

// NewResponder builds the response node for the given owner.
func NewResponder(model llm.ChatModel, ownerName string, counter *llm.TokenCounter, logger *zap.Logger) *Responder {
	if counter == nil {
		counter = llm.NewTokenCounter("")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Responder{
		model:   model,
		system:  renderOwner(responseSystemPrompt, ownerName),
		counter: counter,
		budget:  historyTokenBudget,
		logger:  logger.With(zap.String("component", "responder")),
	}
}

// Run produces the assistant message and final response for this turn.
func (r *Responder) Run(ctx context.Context, state State) (State, error) {
	query := state.LastUserMessage()

	prior := state.Messages
	if len(prior) > 0 {
		prior = prior[:len(prior)-1]
	}

	human := fmt.Sprintf(responseHumanPrompt,
		query,
		formatDocuments(state.Documents),
		formatToolResult(state.ToolName, state.ToolResult),
		r.historyWindow(prior))

	msgs := []llm.Message{
		{Role: llm.RoleSystem, Content: r.system},
		{Role: llm.RoleUser, Content: human},
	}

	text, err := r.model.Chat(ctx, msgs, llm.Options{Temperature: responderTemperature})
	text = strings.TrimSpace(text)
	if err != nil || text == "" {
		r.logger.Warn("response generation failed, using fallback",
			zap.String("query", truncate(query, 50)),
			zap.Error(err))
		text = fallbackResponse
	}

	return State{
		Messages:      []Message{{Role: llm.RoleAssistant, Content: text}},
		FinalResponse: text,
	}, nil
}

// historyWindow renders as many of the newest prior messages as fit the
// token budget, oldest first. An empty or over-budget history renders as
// the explicit placeholder.
func (r *Responder) historyWindow(msgs []Message) string {
	lines := make([]string, 0, len(msgs))
	used := 0
	for i := len(msgs) - 1; i >= 0; i-- {
		line := fmt.Sprintf("%s: %s", msgs[i].Role, msgs[i].Content)
		cost := r.counter.Count(line)
		if used+cost > r.budget {
			break
		}
		lines = append(lines, line)
		used += cost
	}
	if len(lines) == 0 {
		return noHistoryPlaceholder
	}
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return strings.Join(lines, "\n")
}

// formatDocuments renders retrieval results as numbered blocks.
func formatDocuments(docs []vector.Document) string {
	if len(docs) == 0 {
		return noDocumentsPlaceholder
	}
	blocks := make([]string, 0, len(docs))
	for i, d := range docs {
		label := fmt.Sprintf("[Document %d]", i+1)
		if section, ok := d.Metadata["section"].(string); ok && section != "" {
			label = fmt.Sprintf("[Document %d - %s]", i+1, section)
		}
		blocks = append(blocks, label+"\n"+d.Content)
	}
	return strings.Join(blocks, "\n\n")
}

// formatToolResult renders the executed tool's output, or the placeholder
// when the turn used no tool.
func formatToolResult(name, result string) string {
	if strings.TrimSpace(result) == "" {
		return noToolPlaceholder
	}
	if name == "" {
		return result
	}
	return fmt.Sprintf("%s: %s", name, result)
}
