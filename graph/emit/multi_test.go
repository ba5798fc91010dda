package emit

import (
	"sync"
	"testing"
)

type captureEmitter struct {
	mu     sync.Mutex
	events []Event
}

func (c *captureEmitter) Emit(event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureEmitter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func TestMulti_FansOut(t *testing.T) {
	a := &captureEmitter{}
	b := &captureEmitter{}
	m := Multi(a, b)

	m.Emit(Event{Msg: MsgRunStart})
	m.Emit(Event{Msg: MsgRunEnd})

	if a.count() != 2 || b.count() != 2 {
		t.Errorf("expected both emitters to see 2 events, got %d and %d", a.count(), b.count())
	}
}

func TestMulti_SkipsNil(t *testing.T) {
	a := &captureEmitter{}
	m := Multi(nil, a, nil)

	// Must not panic on the nil entries.
	m.Emit(Event{Msg: MsgRunStart})

	if a.count() != 1 {
		t.Errorf("expected 1 event, got %d", a.count())
	}
}

func TestMulti_Empty(t *testing.T) {
	Multi().Emit(Event{Msg: MsgRunStart})
	NullEmitter{}.Emit(Event{Msg: MsgRunStart})
}
