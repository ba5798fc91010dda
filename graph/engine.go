package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/zelalem61/personal-chat-bot/graph/emit"
)

// DefaultMaxSteps bounds how many node executions a single run may perform
// before the engine aborts with MAX_STEPS_EXCEEDED. The bound exists to
// stop conditional edges from cycling forever; linear chat workflows use a
// handful of steps per run.
const DefaultMaxSteps = 25

// Engine executes a compiled workflow.
//
// An Engine is cheap to construct and safe for concurrent use: all
// per-run data lives on the Run stack, so one Engine can serve many
// simultaneous runs, or each run can build its own Engine around a shared
// Compiled graph to attach a per-run emitter.
type Engine[S any] struct {
	graph    *Compiled[S]
	emitter  emit.Emitter
	metrics  *Metrics
	maxSteps int
}

// NewEngine wraps a compiled graph in an executor. Options attach an
// emitter, metrics and a step budget; by default events are discarded,
// metrics are off and the budget is DefaultMaxSteps.
func NewEngine[S any](g *Compiled[S], opts ...Option) *Engine[S] {
	cfg := engineConfig{maxSteps: DefaultMaxSteps}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.emitter == nil {
		cfg.emitter = emit.NullEmitter{}
	}
	return &Engine[S]{
		graph:    g,
		emitter:  cfg.emitter,
		metrics:  cfg.metrics,
		maxSteps: cfg.maxSteps,
	}
}

// Run executes the workflow from the entry node until it reaches End and
// returns the final merged state.
//
// Node failures do not abort the run. A node that returns an error or
// panics contributes an empty update; the failure is emitted as a
// node_error event and execution continues along the node's edges, so
// downstream nodes can still produce a degraded answer. Run itself fails
// only when it cannot continue: the context is canceled, the step budget
// is exhausted, or no route exists out of the current node. In those
// cases the state merged so far is returned alongside the error.
func (e *Engine[S]) Run(ctx context.Context, runID string, initial S) (S, error) {
	state := initial
	c := e.graph
	if c == nil {
		return state, engineErrf(CodeNodeNotFound, "engine has no compiled graph")
	}

	started := time.Now()
	steps := 0
	outcome := "ok"
	defer func() {
		if e.metrics != nil {
			e.metrics.observeRun(outcome, steps, time.Since(started))
		}
	}()

	e.emitter.Emit(emit.Event{RunID: runID, Msg: emit.MsgRunStart, Meta: map[string]interface{}{
		"entry": c.entry,
	}})

	nodeID := c.entry
	for {
		if nodeID == End {
			e.emitter.Emit(emit.Event{RunID: runID, Step: steps, Msg: emit.MsgRunEnd, Meta: map[string]interface{}{
				"duration_ms": time.Since(started).Milliseconds(),
			}})
			return state, nil
		}

		select {
		case <-ctx.Done():
			outcome = "canceled"
			e.emitRunError(runID, steps, ctx.Err())
			return state, ctx.Err()
		default:
		}

		steps++
		if steps > e.maxSteps {
			outcome = "max_steps"
			err := engineErrf(CodeMaxStepsExceeded, "run %s exceeded %d steps", runID, e.maxSteps)
			e.emitRunError(runID, steps, err)
			return state, err
		}

		e.emitter.Emit(emit.Event{RunID: runID, Step: steps, NodeID: nodeID, Msg: emit.MsgNodeStart})

		nodeStarted := time.Now()
		delta, err := runNode(ctx, c.nodes[nodeID], state)
		elapsed := time.Since(nodeStarted)

		status := "success"
		if err != nil {
			status = "error"
			e.emitter.Emit(emit.Event{RunID: runID, Step: steps, NodeID: nodeID, Msg: emit.MsgNodeError, Meta: map[string]interface{}{
				"error": err.Error(),
			}})
			if e.metrics != nil {
				e.metrics.nodeFailure(nodeID)
			}
			var zero S
			delta = zero
		}

		state = c.reducer(state, delta)

		if e.metrics != nil {
			e.metrics.observeNode(nodeID, status, elapsed)
		}
		e.emitter.Emit(emit.Event{RunID: runID, Step: steps, NodeID: nodeID, Msg: emit.MsgNodeEnd, Meta: map[string]interface{}{
			"status":      status,
			"duration_ms": elapsed.Milliseconds(),
		}})

		next, rerr := c.route(ctx, nodeID, state)
		if rerr != nil {
			outcome = "error"
			e.emitRunError(runID, steps, rerr)
			return state, rerr
		}
		nodeID = next
	}
}

func (e *Engine[S]) emitRunError(runID string, step int, err error) {
	e.emitter.Emit(emit.Event{RunID: runID, Step: step, Msg: emit.MsgRunError, Meta: map[string]interface{}{
		"error": err.Error(),
	}})
}

// runNode invokes the node, converting a panic into an ordinary error so
// one misbehaving node cannot take down the run.
func runNode[S any](ctx context.Context, n Node[S], state S) (delta S, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero S
			delta = zero
			err = fmt.Errorf("node panicked: %v", r)
		}
	}()
	return n.Run(ctx, state)
}
