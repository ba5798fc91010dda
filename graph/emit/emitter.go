package emit

// Emitter receives events from workflow execution.
//
// The engine calls Emit inline between node executions, so implementations
// must be fast, must not block and must not panic. They must also be safe
// for concurrent use: one emitter may serve many simultaneous runs.
//
// Compose backends with Multi, discard events with NullEmitter, and bridge
// to a streaming consumer with ChannelEmitter.
type Emitter interface {
	// Emit delivers one event. Failures are handled internally; there
	// is nothing useful the engine could do with an emit error.
	Emit(event Event)
}
