package emit

// NullEmitter discards all events. It is the engine's default when no
// emitter is configured; the zero value is ready to use.
type NullEmitter struct{}

// Emit implements Emitter as a no-op.
func (NullEmitter) Emit(Event) {}
