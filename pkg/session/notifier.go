package session

import "sync"

// subscriberSet is a minimal observer registry: embedders register a
// callback and re-render whenever the cached record changes. Callbacks
// are invoked synchronously after each atomic swap, outside the state
// lock so a subscriber may call back into the manager.
type subscriberSet struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Record)
}

func (s *subscriberSet) add(fn func(Record)) func() {
	if fn == nil {
		return func() {}
	}

	s.mu.Lock()
	if s.subs == nil {
		s.subs = make(map[int]func(Record))
	}
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *subscriberSet) notify(rec Record) {
	s.mu.Lock()
	fns := make([]func(Record), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		// Each subscriber gets its own copy so none can mutate state
		// observed by another.
		fn(rec.clone())
	}
}
