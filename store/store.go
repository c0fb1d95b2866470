// Package store owns the reconstructed session list. A Store classifies and
// reduces one envelope at a time; readers get immutable snapshots, either on
// demand or pushed through a subscription.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/tailored-agentic-units/neuralcore/classify"
	"github.com/tailored-agentic-units/neuralcore/core/envelope"
	"github.com/tailored-agentic-units/neuralcore/observability"
	"github.com/tailored-agentic-units/neuralcore/session"
)

// Store is the single writer of session state.
type Store struct {
	cfg        Config
	classifier *classify.Classifier
	observer   observability.Observer

	mu      sync.Mutex
	state   State
	subs    map[int]chan State
	nextSub int
}

// New creates an empty Store. A nil classifier uses classify defaults.
func New(cfg Config, classifier *classify.Classifier, observer observability.Observer) *Store {
	if classifier == nil {
		classifier = classify.New()
	}
	if cfg.SubscriberBuffer < 1 {
		cfg.SubscriberBuffer = 1
	}
	return &Store{
		cfg:        cfg,
		classifier: classifier,
		observer:   observability.OrNoOp(observer),
		subs:       make(map[int]chan State),
	}
}

// Apply classifies env against the current list and reduces the result.
// Calls are serialized; the returned State includes env's effect.
func (s *Store) Apply(ctx context.Context, env envelope.Envelope) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	patch := s.classifier.Classify(env, prev.sessions)
	next, outcome := Transition(prev, patch, s.cfg.Options())

	switch outcome {
	case Appended:
		created := next.sessions[len(next.sessions)-1]
		s.emit(ctx, EventSessionCreate, observability.LevelInfo, "store.Apply", map[string]any{
			"session_id":     created.ID,
			"symbol":         created.Symbol,
			"trigger_reason": created.TriggerReason,
			"sender":         env.Sender,
		})
		if created.Closed() {
			s.emitClose(ctx, created)
		}
	case Merged:
		merged := next.sessions[len(next.sessions)-1]
		s.emit(ctx, EventSessionMerge, observability.LevelVerbose, "store.Apply", map[string]any{
			"session_id": merged.ID,
			"sender":     env.Sender,
			"kind":       string(env.Kind),
		})
		if merged.Closed() && !prev.sessions[len(prev.sessions)-1].Closed() {
			s.emitClose(ctx, merged)
		}
	case Rejected:
		last := prev.sessions[len(prev.sessions)-1]
		s.emit(ctx, EventMergeRejected, observability.LevelWarning, "store.Apply", map[string]any{
			"session_id": last.ID,
			"sender":     env.Sender,
			"kind":       string(env.Kind),
		})
	}

	if outcome == Appended || outcome == Merged {
		s.commit(next)
	}
	return s.state
}

// Install places backfilled history into the store per the configured
// BackfillMode and returns the resulting state.
func (s *Store) Install(ctx context.Context, history []session.Session) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, added := Install(s.state, history, s.cfg.BackfillMode)

	s.emit(ctx, EventBackfillInstall, observability.LevelInfo, "store.Install", map[string]any{
		"mode":     string(s.cfg.BackfillMode),
		"received": len(history),
		"added":    added,
		"total":    next.Len(),
	})

	if next.version != s.state.version {
		s.commit(next)
	}
	return s.state
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe returns a channel that receives the current state immediately
// and every subsequent state. Slow readers skip intermediate states and
// always observe the latest one. The channel closes when ctx is done.
func (s *Store) Subscribe(ctx context.Context) <-chan State {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++

	ch := make(chan State, s.cfg.SubscriberBuffer)
	ch <- s.state
	s.subs[id] = ch

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
		close(ch)
	}()

	return ch
}

// commit installs next and publishes it. Caller holds s.mu.
func (s *Store) commit(next State) {
	s.state = next
	for _, ch := range s.subs {
		select {
		case ch <- next:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- next
		}
	}
}

func (s *Store) emitClose(ctx context.Context, sess session.Session) {
	s.emit(ctx, EventSessionClose, observability.LevelInfo, "store.Apply", map[string]any{
		"session_id": sess.ID,
		"symbol":     sess.Symbol,
		"action":     sess.Verdict.Action,
		"confidence": sess.Verdict.Confidence,
	})
}

func (s *Store) emit(ctx context.Context, eventType observability.EventType, level observability.Level, source string, data map[string]any) {
	s.observer.OnEvent(ctx, observability.Event{
		Type:      eventType,
		Level:     level,
		Timestamp: time.Now(),
		Source:    source,
		Data:      data,
	})
}
