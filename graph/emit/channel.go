package emit

// ChannelEmitter bridges engine events to a channel so a streaming
// consumer (for example an SSE handler) can observe a run while it
// executes. Emit never blocks: when the buffer is full the event is
// dropped, which keeps a stalled consumer from stalling the run.
type ChannelEmitter struct {
	ch chan Event
}

// NewChannelEmitter creates an emitter with the given buffer capacity.
// Capacities below one fall back to 64, enough for any single chat turn.
func NewChannelEmitter(buffer int) *ChannelEmitter {
	if buffer < 1 {
		buffer = 64
	}
	return &ChannelEmitter{ch: make(chan Event, buffer)}
}

// Events returns the receive side. The channel is closed by Close.
func (c *ChannelEmitter) Events() <-chan Event { return c.ch }

// Emit implements Emitter. Events are dropped when the buffer is full.
func (c *ChannelEmitter) Emit(event Event) {
	select {
	case c.ch <- event:
	default:
	}
}

// Close closes the event channel so range loops over Events terminate.
// Call it only after the run using this emitter has returned.
func (c *ChannelEmitter) Close() {
	close(c.ch)
}
