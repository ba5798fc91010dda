// Package emit defines the observability events produced while a workflow
// runs and the Emitter interface that carries them to logging, tracing and
// streaming backends.
package emit

// Standard event messages produced by the engine. Emitters and stream
// consumers switch on Msg to decide how to render an event.
const (
	MsgRunStart  = "run_start"
	MsgRunEnd    = "run_end"
	MsgRunError  = "run_error"
	MsgNodeStart = "node_start"
	MsgNodeEnd   = "node_end"
	MsgNodeError = "node_error"
)

// Event describes one moment in a workflow run: the run starting or
// finishing, or a node starting, finishing or failing.
type Event struct {
	// RunID identifies the workflow execution that emitted this event.
	RunID string

	// Step is the 1-indexed node execution count within the run.
	// Zero for the run_start event.
	Step int

	// NodeID names the node this event concerns. Empty for run-level
	// events.
	NodeID string

	// Msg is one of the Msg constants above.
	Msg string

	// Meta carries additional structured data. Common keys:
	//   "status"       success or error, on node_end
	//   "duration_ms"  elapsed milliseconds, on node_end and run_end
	//   "error"        failure detail, on node_error and run_error
	//   "entry"        entry node id, on run_start
	Meta map[string]interface{}
}
