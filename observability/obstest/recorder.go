// Package obstest provides an Observer that records events for assertions.
package obstest

import (
	"context"
	"sync"

	"github.com/tailored-agentic-units/neuralcore/observability"
)

// Recorder captures every event it receives. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []observability.Event
}

func (r *Recorder) OnEvent(ctx context.Context, event observability.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []observability.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]observability.Event(nil), r.events...)
}

// Types returns the recorded event types in order.
func (r *Recorder) Types() []observability.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]observability.EventType, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}

// Count returns how many events of the given type were recorded.
func (r *Recorder) Count(eventType observability.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

// Last returns the most recent event of the given type.
func (r *Recorder) Last(eventType observability.EventType) (observability.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == eventType {
			return r.events[i], true
		}
	}
	return observability.Event{}, false
}
