package store

import (
	"slices"
	"time"

	"github.com/tailored-agentic-units/neuralcore/session"
)

// State is an immutable snapshot of the session list, ordered by creation.
// Every transition returns a new State; slices held by earlier snapshots are
// never written to.
type State struct {
	sessions []session.Session
	version  uint64
}

// NewState builds a State over a copy of sessions.
func NewState(sessions ...session.Session) State {
	return State{sessions: cloneAll(sessions)}
}

// Sessions returns a copy of the session list.
func (s State) Sessions() []session.Session {
	return cloneAll(s.sessions)
}

// Len returns the number of sessions.
func (s State) Len() int {
	return len(s.sessions)
}

// Last returns the most recent session, the target of merges.
func (s State) Last() (session.Session, bool) {
	if len(s.sessions) == 0 {
		return session.Session{}, false
	}
	return s.sessions[len(s.sessions)-1].Clone(), true
}

// Find returns the session with the given id.
func (s State) Find(id string) (session.Session, bool) {
	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess.Clone(), true
		}
	}
	return session.Session{}, false
}

// Version counts the transitions that produced this snapshot.
func (s State) Version() uint64 {
	return s.version
}

func cloneAll(sessions []session.Session) []session.Session {
	if sessions == nil {
		return nil
	}
	out := make([]session.Session, len(sessions))
	for i, sess := range sessions {
		out[i] = sess.Clone()
	}
	return out
}

// Options tune the reducer.
type Options struct {
	// SealClosed drops merges into a session that already has a verdict.
	SealClosed bool
}

// Outcome describes what a transition did.
type Outcome int

const (
	Unchanged Outcome = iota
	Appended
	Merged
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Appended:
		return "appended"
	case Merged:
		return "merged"
	case Rejected:
		return "rejected"
	default:
		return "unchanged"
	}
}

// Reduce applies a patch to state and returns the next state.
//
// A New patch appends. A Merge patch replaces the last session with the
// partial applied over it. A merge into an empty list, or an empty partial,
// leaves the state as is.
func Reduce(state State, patch session.Patch, opts Options) State {
	next, _ := Transition(state, patch, opts)
	return next
}

// Transition is Reduce that also reports the outcome.
func Transition(state State, patch session.Patch, opts Options) (State, Outcome) {
	if patch.IsNew() {
		sessions := make([]session.Session, len(state.sessions), len(state.sessions)+1)
		copy(sessions, state.sessions)
		sessions = append(sessions, patch.New.Clone())
		return State{sessions: sessions, version: state.version + 1}, Appended
	}

	if patch.Merge == nil || patch.Merge.Empty() || len(state.sessions) == 0 {
		return state, Unchanged
	}

	last := len(state.sessions) - 1
	if opts.SealClosed && state.sessions[last].Closed() {
		return state, Rejected
	}

	sessions := slices.Clone(state.sessions)
	sessions[last] = state.sessions[last].Apply(*patch.Merge)
	return State{sessions: sessions, version: state.version + 1}, Merged
}

// Install places history sessions into state according to mode. History is
// ordered ascending by creation time. In merge mode, history is kept only
// when it was created before the earliest live session: later decisions
// were finalized while the stream was observed and are already represented
// by live sessions. Kept history goes ahead of the live list, so the list
// stays ordered by creation time and the last session stays the live merge
// target. Sessions whose id is already present are skipped.
func Install(state State, history []session.Session, mode BackfillMode) (State, int) {
	incoming := cloneAll(history)
	slices.SortStableFunc(incoming, func(a, b session.Session) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	if mode == BackfillReplace {
		return State{sessions: incoming, version: state.version + 1}, len(incoming)
	}

	seen := make(map[string]bool, len(state.sessions))
	var cutoff time.Time
	for i, sess := range state.sessions {
		seen[sess.ID] = true
		if i == 0 || sess.CreatedAt.Before(cutoff) {
			cutoff = sess.CreatedAt
		}
	}

	sessions := make([]session.Session, 0, len(incoming)+len(state.sessions))
	for _, sess := range incoming {
		if seen[sess.ID] {
			continue
		}
		if len(state.sessions) > 0 && !sess.CreatedAt.Before(cutoff) {
			continue
		}
		seen[sess.ID] = true
		sessions = append(sessions, sess)
	}
	added := len(sessions)
	if added == 0 {
		return state, 0
	}

	sessions = append(sessions, state.sessions...)
	return State{sessions: sessions, version: state.version + 1}, added
}
