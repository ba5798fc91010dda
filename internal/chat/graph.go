package chat

import (
	"context"

	"github.com/zelalem61/personal-chat-bot/graph"
)

// Node IDs in the chat graph.
const (
	NodeRouter    = "router"
	NodeRetriever = "retriever"
	NodeTools     = "tools"
	NodeRespond   = "respond"
)

// BuildGraph assembles and compiles the chat workflow:
//
//	router -(rag)----> retriever -> respond -> end
//	       -(tool)---> tools -----> respond
//	       -(direct)-> respond
//
// Unrecognized routes fall through to respond, so a turn always reaches
// the responder.
func BuildGraph(router, retriever, tools, responder graph.Node[State]) (*graph.Compiled[State], error) {
	g := graph.New[State](Reduce)

	if err := g.AddNode(NodeRouter, router); err != nil {
		return nil, err
	}
	if err := g.AddNode(NodeRetriever, retriever); err != nil {
		return nil, err
	}
	if err := g.AddNode(NodeTools, tools); err != nil {
		return nil, err
	}
	if err := g.AddNode(NodeRespond, responder); err != nil {
		return nil, err
	}

	route := func(ctx context.Context, s State) string { return s.Route }
	targets := map[string]string{
		RouteRAG:      NodeRetriever,
		RouteTool:     NodeTools,
		RouteDirect:   NodeRespond,
		graph.Default: NodeRespond,
	}
	if err := g.AddConditionalEdge(NodeRouter, route, targets); err != nil {
		return nil, err
	}

	if err := g.AddEdge(NodeRetriever, NodeRespond); err != nil {
		return nil, err
	}
	if err := g.AddEdge(NodeTools, NodeRespond); err != nil {
		return nil, err
	}
	if err := g.AddEdge(NodeRespond, graph.End); err != nil {
		return nil, err
	}

	if err := g.SetEntry(NodeRouter); err != nil {
		return nil, err
	}

	return g.Compile()
}
