package events

import (
	"sync"
)

// Store is a thread-safe append-only log of accepted events.
//
// Events are kept in arrival order. Duplicate event numbers are silently
// dropped. A separate consumed set tracks events already used by a check;
// consumption never removes an event from the log, it only hides the event
// from unconsumed-only reads. One store is created per test and cleared
// between tests; there is no persistence beyond memory.
type Store struct {
	mu      sync.Mutex
	events  []Event
	seen    map[int]struct{}
	matched map[int]struct{}
}

// NewStore creates an empty event store.
func NewStore() *Store {
	return &Store{
		seen:    make(map[int]struct{}),
		matched: make(map[int]struct{}),
	}
}

// AddEvents appends events in the given order, skipping any whose EventNum
// was already accepted during the store's lifetime.
func (s *Store) AddEvents(evs []Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ev := range evs {
		if _, dup := s.seen[ev.EventNum]; dup {
			continue
		}
		s.seen[ev.EventNum] = struct{}{}
		s.events = append(s.events, ev)
	}
}

// MarkMatched records the event number as consumed. Idempotent.
func (s *Store) MarkMatched(eventNum int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matched[eventNum] = struct{}{}
}

// IsMatched reports whether the event number has been consumed.
func (s *Store) IsMatched(eventNum int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.matched[eventNum]
	return ok
}

// Events returns a snapshot copy of all accepted events in arrival order.
func (s *Store) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// EventsFrom returns a snapshot of events at positions >= index, excluding
// events already marked as consumed.
func (s *Store) EventsFrom(index int) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 {
		index = 0
	}
	if index > len(s.events) {
		index = len(s.events)
	}
	var out []Event
	for _, ev := range s.events[index:] {
		if _, consumed := s.matched[ev.EventNum]; consumed {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// Last returns the most recently accepted event.
func (s *Store) Last() (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		return Event{}, false
	}
	return s.events[len(s.events)-1], true
}

// Len returns the number of accepted events.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// Clear drops all events and all consumption marks.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
	s.seen = make(map[int]struct{})
	s.matched = make(map[int]struct{})
}
