// Package activity keeps a short rolling log of stream traffic for display.
package activity

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tailored-agentic-units/neuralcore/core/envelope"
)

// DefaultCapacity is the number of entries retained.
const DefaultCapacity = 50

const maxSummary = 120

// Entry is one line of the activity log.
type Entry struct {
	Sender  string        `json:"sender"`
	Kind    envelope.Kind `json:"kind"`
	Summary string        `json:"summary"`
	At      time.Time     `json:"at"`
}

// Feed is a fixed-size ring of recent entries. Safe for concurrent use.
type Feed struct {
	mu      sync.RWMutex
	entries []Entry
	next    int
	full    bool
}

// NewFeed creates a Feed holding up to capacity entries.
func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Feed{entries: make([]Entry, capacity)}
}

// Add records env, evicting the oldest entry when full.
func (f *Feed) Add(env envelope.Envelope) Entry {
	e := Entry{
		Sender:  env.Sender,
		Kind:    env.Kind,
		Summary: Summarize(env.Content),
		At:      env.Timestamp,
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.entries[f.next] = e
	f.next = (f.next + 1) % len(f.entries)
	if f.next == 0 {
		f.full = true
	}
	return e
}

// Entries returns the retained entries, oldest first.
func (f *Feed) Entries() []Entry {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if !f.full {
		return append([]Entry(nil), f.entries[:f.next]...)
	}
	out := make([]Entry, 0, len(f.entries))
	out = append(out, f.entries[f.next:]...)
	return append(out, f.entries[:f.next]...)
}

// Len returns the number of retained entries.
func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.full {
		return len(f.entries)
	}
	return f.next
}

// Summarize renders content as one short line.
func Summarize(c envelope.Content) string {
	var s string
	switch c.Kind {
	case envelope.ContentEmpty:
		return ""
	case envelope.ContentText:
		s = c.Text
		if s == "" {
			s = fmt.Sprint(c.Raw())
		}
	case envelope.ContentTrigger:
		s = c.Type + ": " + c.Reason
	case envelope.ContentAction:
		s = "action " + c.Action.Type
	case envelope.ContentStrategy:
		s = c.ThoughtProcess
	default:
		s = fmt.Sprintf("%d fields", len(c.Fields))
	}

	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > maxSummary {
		s = string(r[:maxSummary-1]) + "…"
	}
	return s
}
