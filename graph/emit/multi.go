package emit

// Multi combines several emitters into one that delivers every event to
// each backend in order. Nil entries are skipped, so optional backends can
// be passed without nil checks at the call site.
func Multi(emitters ...Emitter) Emitter {
	kept := make([]Emitter, 0, len(emitters))
	for _, e := range emitters {
		if e != nil {
			kept = append(kept, e)
		}
	}
	return multiEmitter{emitters: kept}
}

type multiEmitter struct {
	emitters []Emitter
}

// Emit implements Emitter.
func (m multiEmitter) Emit(event Event) {
	for _, e := range m.emitters {
		e.Emit(event)
	}
}
