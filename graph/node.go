package graph

import "context"

// Node is a single processing step in a workflow graph.
//
// A node receives the current state, does its work (call a model, query a
// vector store, run a tool) and returns a partial state update. The engine
// merges that update into the running state with the graph's Reducer; the
// node never mutates the state it was given.
//
// Returning an error marks the step as failed. The engine records the
// failure and continues along the node's outgoing edges with an empty
// update, so a single degraded step does not abort the whole run.
//
// Type parameter S is the state type shared across the workflow.
type Node[S any] interface {
	// Run executes the node against the given state and returns the
	// partial update to merge. Implementations must honor ctx
	// cancellation on blocking work.
	Run(ctx context.Context, state S) (S, error)
}

// NodeFunc adapts a plain function to the Node interface.
//
// Example:
//
//	double := graph.NodeFunc[Counter](func(ctx context.Context, s Counter) (Counter, error) {
//	    return Counter{Value: s.Value * 2}, nil
//	})
type NodeFunc[S any] func(ctx context.Context, state S) (S, error)

// Run implements the Node interface for NodeFunc.
func (f NodeFunc[S]) Run(ctx context.Context, state S) (S, error) {
	return f(ctx, state)
}

// Reducer merges a node's partial update into the current state and
// returns the merged state.
//
// Reducers define the per-field merge policy for the state type: typically
// conversation history appends while scalar fields replace when the update
// carries a non zero value. A reducer must be pure. It may not mutate
// either argument, and the same inputs must always produce the same
// output, so that a run can be reconstructed from its saved steps.
type Reducer[S any] func(current, delta S) S
