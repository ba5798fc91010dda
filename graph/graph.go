// Package graph implements a compiled state-graph workflow engine.
//
// A workflow is declared as named nodes joined by static and conditional
// edges, validated and frozen by Compile, then executed by an Engine that
// walks the graph one node at a time, folding each node's partial update
// into the running state through a Reducer.
//
// Basic usage:
//
//	g := graph.New[State](reduce)
//	_ = g.AddNode("classify", classifier)
//	_ = g.AddNode("answer", responder)
//	_ = g.AddConditionalEdge("classify", pickRoute, map[string]string{
//	    "search":       "retrieve",
//	    graph.Default:  "answer",
//	})
//	_ = g.AddEdge("answer", graph.End)
//	_ = g.SetEntry("classify")
//	compiled, err := g.Compile()
package graph

import (
	"context"
	"errors"
	"sort"
)

const (
	// End is the reserved edge target that terminates a run.
	End = "__end__"

	// Default is the reserved label in a conditional edge's target table.
	// When a route function returns a label with no entry in the table,
	// the engine follows the Default target instead of failing the run.
	Default = "__default__"
)

// RouteFunc picks the label of the next hop after a node completes. It
// receives the merged state and must not mutate it. The returned label is
// looked up in the conditional edge's target table.
type RouteFunc[S any] func(ctx context.Context, state S) string

type conditionalEdge[S any] struct {
	route   RouteFunc[S]
	targets map[string]string
}

// Graph is a mutable workflow definition. Assemble it with AddNode,
// AddEdge, AddConditionalEdge and SetEntry, then freeze it with Compile.
// A Graph is not safe for concurrent use; construct with New.
type Graph[S any] struct {
	reducer     Reducer[S]
	nodes       map[string]Node[S]
	static      map[string]string
	conditional map[string]conditionalEdge[S]
	entry       string
}

// New creates an empty workflow definition whose node output is merged
// with the given reducer.
func New[S any](reducer Reducer[S]) *Graph[S] {
	return &Graph[S]{
		reducer:     reducer,
		nodes:       make(map[string]Node[S]),
		static:      make(map[string]string),
		conditional: make(map[string]conditionalEdge[S]),
	}
}

// AddNode registers node under id. The id must be unique and must not be
// one of the reserved names End and Default.
func (g *Graph[S]) AddNode(id string, node Node[S]) error {
	if id == "" {
		return engineErrf(CodeNodeNotFound, "node id cannot be empty")
	}
	if id == End || id == Default {
		return engineErrf(CodeReservedID, "node id %q is reserved", id)
	}
	if node == nil {
		return engineErrf(CodeNodeNotFound, "node %q is nil", id)
	}
	if _, exists := g.nodes[id]; exists {
		return engineErrf(CodeDuplicateNode, "node %q already registered", id)
	}
	g.nodes[id] = node
	return nil
}

// AddEdge adds a static edge: after from completes, execution always
// continues at to. Use End as the target to terminate the run. Both
// endpoints must already be registered, and a node can carry either one
// static edge or one conditional edge, not both.
func (g *Graph[S]) AddEdge(from, to string) error {
	if err := g.checkFrom(from); err != nil {
		return err
	}
	if err := g.checkTarget(from, to); err != nil {
		return err
	}
	g.static[from] = to
	return nil
}

// AddConditionalEdge adds a routed edge: after from completes, route is
// called with the merged state and its label selects the target from
// targets. A Default entry catches labels missing from the table; without
// one, an unmapped label fails the run with NO_ROUTE.
func (g *Graph[S]) AddConditionalEdge(from string, route RouteFunc[S], targets map[string]string) error {
	if err := g.checkFrom(from); err != nil {
		return err
	}
	if route == nil {
		return engineErrf(CodeInvalidEdge, "conditional edge from %q has no route function", from)
	}
	if len(targets) == 0 {
		return engineErrf(CodeInvalidEdge, "conditional edge from %q has no targets", from)
	}
	copied := make(map[string]string, len(targets))
	for label, to := range targets {
		if err := g.checkTarget(from, to); err != nil {
			return err
		}
		copied[label] = to
	}
	g.conditional[from] = conditionalEdge[S]{route: route, targets: copied}
	return nil
}

// SetEntry marks the node where every run starts.
func (g *Graph[S]) SetEntry(id string) error {
	if _, ok := g.nodes[id]; !ok {
		return engineErrf(CodeNodeNotFound, "entry node %q not registered", id)
	}
	g.entry = id
	return nil
}

func (g *Graph[S]) checkFrom(from string) error {
	if from == End {
		return engineErrf(CodeInvalidEdge, "cannot add an edge out of End")
	}
	if _, ok := g.nodes[from]; !ok {
		return engineErrf(CodeNodeNotFound, "edge source %q not registered", from)
	}
	if _, ok := g.static[from]; ok {
		return engineErrf(CodeInvalidEdge, "node %q already has a static edge", from)
	}
	if _, ok := g.conditional[from]; ok {
		return engineErrf(CodeInvalidEdge, "node %q already has a conditional edge", from)
	}
	return nil
}

func (g *Graph[S]) checkTarget(from, to string) error {
	if to == End {
		return nil
	}
	if _, ok := g.nodes[to]; !ok {
		return engineErrf(CodeNodeNotFound, "edge %q -> %q targets an unregistered node", from, to)
	}
	return nil
}

// Compile validates the definition and returns an immutable execution
// plan. All problems are reported at once via errors.Join: a missing
// reducer or entry node, nodes with no outgoing edge, nodes unreachable
// from the entry, and graphs with no path to End. The returned Compiled
// holds copies of the node and edge tables, so the builder can be reused
// or discarded afterwards.
func (g *Graph[S]) Compile() (*Compiled[S], error) {
	var errs []error
	if g.reducer == nil {
		errs = append(errs, engineErrf(CodeMissingReducer, "graph has no reducer"))
	}
	if len(g.nodes) == 0 {
		errs = append(errs, engineErrf(CodeNodeNotFound, "graph has no nodes"))
	}
	if g.entry == "" {
		errs = append(errs, engineErrf(CodeNoEntryNode, "entry node not set"))
	}

	for _, id := range g.sortedNodeIDs() {
		_, hasStatic := g.static[id]
		_, hasCond := g.conditional[id]
		if !hasStatic && !hasCond {
			errs = append(errs, engineErrf(CodeDeadEndNode, "node %q has no outgoing edge", id))
		}
	}

	if g.entry != "" {
		reached := g.reachable(g.entry)
		for _, id := range g.sortedNodeIDs() {
			if !reached[id] {
				errs = append(errs, engineErrf(CodeUnreachableNode, "node %q is unreachable from entry %q", id, g.entry))
			}
		}
		if len(errs) == 0 && !reached[End] {
			errs = append(errs, engineErrf(CodeDeadEndNode, "no path from entry %q to End", g.entry))
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	c := &Compiled[S]{
		reducer:     g.reducer,
		nodes:       make(map[string]Node[S], len(g.nodes)),
		static:      make(map[string]string, len(g.static)),
		conditional: make(map[string]conditionalEdge[S], len(g.conditional)),
		entry:       g.entry,
	}
	for id, n := range g.nodes {
		c.nodes[id] = n
	}
	for from, to := range g.static {
		c.static[from] = to
	}
	for from, cond := range g.conditional {
		targets := make(map[string]string, len(cond.targets))
		for label, to := range cond.targets {
			targets[label] = to
		}
		c.conditional[from] = conditionalEdge[S]{route: cond.route, targets: targets}
	}
	return c, nil
}

// reachable walks edges breadth first from start and reports every node
// id (plus End) it can reach, including start itself.
func (g *Graph[S]) reachable(start string) map[string]bool {
	seen := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if id == End {
			continue
		}
		var targets []string
		if to, ok := g.static[id]; ok {
			targets = append(targets, to)
		}
		if cond, ok := g.conditional[id]; ok {
			for _, to := range cond.targets {
				targets = append(targets, to)
			}
		}
		for _, to := range targets {
			if !seen[to] {
				seen[to] = true
				queue = append(queue, to)
			}
		}
	}
	return seen
}

func (g *Graph[S]) sortedNodeIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Compiled is a validated, immutable workflow ready for execution. It is
// safe to share between any number of Engines and goroutines.
type Compiled[S any] struct {
	reducer     Reducer[S]
	nodes       map[string]Node[S]
	static      map[string]string
	conditional map[string]conditionalEdge[S]
	entry       string
}

// Entry returns the id of the node every run starts at.
func (c *Compiled[S]) Entry() string { return c.entry }

// NodeIDs returns the registered node ids in sorted order.
func (c *Compiled[S]) NodeIDs() []string {
	ids := make([]string, 0, len(c.nodes))
	for id := range c.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// route resolves the node to run after from, given the merged state.
// Static edges win; otherwise the conditional route function picks a
// label, falling back to the Default target when the label is unmapped
// or the route function panics.
func (c *Compiled[S]) route(ctx context.Context, from string, state S) (string, error) {
	if to, ok := c.static[from]; ok {
		return to, nil
	}
	cond, ok := c.conditional[from]
	if !ok {
		return "", engineErrf(CodeNoRoute, "node %q has no outgoing edge", from)
	}
	label := safeLabel(ctx, cond.route, state)
	if to, ok := cond.targets[label]; ok {
		return to, nil
	}
	if to, ok := cond.targets[Default]; ok {
		return to, nil
	}
	return "", engineErrf(CodeNoRoute, "no target for label %q out of node %q", label, from)
}

// safeLabel invokes route, converting a panic into the empty label so a
// broken route function degrades to the Default target.
func safeLabel[S any](ctx context.Context, route RouteFunc[S], state S) (label string) {
	defer func() {
		if r := recover(); r != nil {
			label = ""
		}
	}()
	return route(ctx, state)
}
