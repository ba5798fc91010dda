package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/zelalem61/personal-chat-bot/graph/tool"
	"github.com/zelalem61/personal-chat-bot/internal/llm"
)

// routerWindow bounds how many prior messages the router sees as context.
const routerWindow = 10

// Router classifies the latest user message into one of the three routes.
//
// Classification is best effort: any model failure, malformed output, or
// unrecognized route falls back to RouteDirect so the turn still reaches
// the responder.
type Router struct {
	model  llm.ChatModel
	system string
	window int
	logger *zap.Logger
}

// NewRouter builds the router node. The registry supplies the tool catalog
// embedded in the system prompt.
func NewRouter(model llm.ChatModel, tools *tool.Registry, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		model:  model,
		system: buildRouterSystem(tools),
		window: routerWindow,
		logger: logger.With(zap.String("component", "router")),
	}
}

// Run decides the route for the current turn. With no user message to
// classify it picks RouteDirect without calling the model.
func (r *Router) Run(ctx context.Context, state State) (State, error) {
	query := state.LastUserMessage()
	if query == "" {
		return State{Route: RouteDirect}, nil
	}

	history := "(none)"
	if len(state.Messages) > 1 {
		if window := recentContext(state.Messages[:len(state.Messages)-1], r.window); window != "" {
			history = window
		}
	}

	msgs := []llm.Message{
		{Role: llm.RoleSystem, Content: r.system},
		{Role: llm.RoleUser, Content: fmt.Sprintf(routerHumanPrompt, query, history)},
	}

	raw, err := r.model.Chat(ctx, msgs, llm.Options{Temperature: 0, JSONMode: true})
	if err != nil {
		r.logger.Warn("classification failed, defaulting to direct",
			zap.String("query", truncate(query, 50)),
			zap.Error(err))
		return State{Route: RouteDirect}, nil
	}

	dec, err := parseRouteDecision(raw)
	if err != nil {
		r.logger.Warn("unparseable route decision, defaulting to direct",
			zap.String("raw", truncate(raw, 100)),
			zap.Error(err))
		return State{Route: RouteDirect}, nil
	}

	r.logger.Debug("routed query",
		zap.String("route", dec.Route),
		zap.String("tool", dec.ToolName),
		zap.String("reasoning", truncate(dec.Reasoning, 100)))

	delta := State{Route: dec.Route}
	if dec.Route == RouteTool {
		delta.ToolName = dec.ToolName
	}
	return delta, nil
}

// recentContext renders the newest prior messages as "role: content" lines,
// oldest first.
func recentContext(msgs []Message, window int) string {
	if len(msgs) > window {
		msgs = msgs[len(msgs)-window:]
	}
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Role, m.Content))
	}
	return strings.Join(lines, "\n")
}

// parseRouteDecision decodes the model's JSON decision. Models sometimes
// wrap the object in prose or a code fence, so after a direct parse fails
// it retries on the substring between the first "{" and the last "}".
func parseRouteDecision(raw string) (RouteDecision, error) {
	var dec RouteDecision
	trimmed := strings.TrimSpace(raw)

	if err := json.Unmarshal([]byte(trimmed), &dec); err != nil {
		start := strings.Index(trimmed, "{")
		end := strings.LastIndex(trimmed, "}")
		if start < 0 || end <= start {
			return RouteDecision{}, fmt.Errorf("no JSON object in response: %w", err)
		}
		if err := json.Unmarshal([]byte(trimmed[start:end+1]), &dec); err != nil {
			return RouteDecision{}, fmt.Errorf("parse route decision: %w", err)
		}
	}

	dec.Route = strings.ToLower(strings.TrimSpace(dec.Route))
	switch dec.Route {
	case RouteRAG, RouteTool, RouteDirect:
		return dec, nil
	default:
		return RouteDecision{}, fmt.Errorf("unrecognized route %q", dec.Route)
	}
}
