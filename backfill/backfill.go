// Package backfill seeds the session store with recent finalized decisions
// from the decision log. It runs once; failures are reported, never retried.
package backfill

import (
	"context"
	"time"

	"github.com/tailored-agentic-units/neuralcore/classify"
	"github.com/tailored-agentic-units/neuralcore/history"
	"github.com/tailored-agentic-units/neuralcore/observability"
	"github.com/tailored-agentic-units/neuralcore/session"
	"github.com/tailored-agentic-units/neuralcore/store"
)

const (
	// StrategyPlaceholder stands in for a record with no thought process.
	StrategyPlaceholder = "Loaded from history"

	// TriggerReason marks every backfilled session.
	TriggerReason = "Historical Record"

	// DefaultLimit is the number of decisions fetched.
	DefaultLimit = 10
)

const (
	EventStart    observability.EventType = "backfill.start"
	EventComplete observability.EventType = "backfill.complete"
	EventFailed   observability.EventType = "backfill.failed"
)

// DecisionLog serves recent finalized decisions, newest first or in any
// order.
type DecisionLog interface {
	Recent(ctx context.Context, limit int) ([]history.Record, error)
}

// Installer accepts the converted sessions.
type Installer interface {
	Install(ctx context.Context, sessions []session.Session) store.State
}

// Option configures a backfill run.
type Option func(*options)

type options struct {
	limit         int
	confidence    float64
	primarySymbol string
}

// WithLimit sets how many decisions to request.
func WithLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.limit = n
		}
	}
}

// WithConfidence sets the confidence used when a record has none.
func WithConfidence(c float64) Option {
	return func(o *options) { o.confidence = c }
}

// WithPrimarySymbol sets the symbol used when a record has none.
func WithPrimarySymbol(symbol string) Option {
	return func(o *options) { o.primarySymbol = symbol }
}

func newOptions(opts []Option) options {
	o := options{
		limit:         DefaultLimit,
		confidence:    classify.DefaultConfidence,
		primarySymbol: classify.DefaultPrimarySymbol,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ToSession converts a decision record into a terminal session with no
// consultant findings.
func ToSession(r history.Record, opts ...Option) session.Session {
	o := newOptions(opts)

	strategy := StrategyPlaceholder
	if r.Details.ThoughtProcess != "" {
		strategy = classify.Normalize(r.Details.ThoughtProcess)
	}

	symbol := r.Symbol
	if symbol == "" {
		symbol = o.primarySymbol
	}

	confidence := o.confidence
	if r.Confidence != nil && *r.Confidence != 0 {
		confidence = *r.Confidence
	}

	return session.Session{
		ID:            string(r.ID),
		Symbol:        symbol,
		CreatedAt:     r.Timestamp,
		TriggerReason: TriggerReason,
		InputData:     r.Details.InputData,
		Strategy:      strategy,
		Consultants:   make(map[session.Role]any),
		Verdict: &session.Verdict{
			Action:     r.Action,
			Confidence: confidence,
			Reason:     r.Reason,
		},
	}
}

// Run fetches recent decisions from log and installs them into target.
// On failure target is left untouched, the failure is reported to observer,
// and the error is returned for the caller to log or ignore.
func Run(ctx context.Context, log DecisionLog, target Installer, observer observability.Observer, opts ...Option) error {
	observer = observability.OrNoOp(observer)
	o := newOptions(opts)

	emit(ctx, observer, EventStart, observability.LevelVerbose, map[string]any{"limit": o.limit})

	records, err := log.Recent(ctx, o.limit)
	if err != nil {
		emit(ctx, observer, EventFailed, observability.LevelWarning, map[string]any{"error": err.Error()})
		return err
	}

	sessions := make([]session.Session, 0, len(records))
	for _, r := range records {
		sessions = append(sessions, ToSession(r, opts...))
	}

	state := target.Install(ctx, sessions)

	emit(ctx, observer, EventComplete, observability.LevelInfo, map[string]any{
		"records":  len(records),
		"sessions": state.Len(),
	})
	return nil
}

func emit(ctx context.Context, observer observability.Observer, eventType observability.EventType, level observability.Level, data map[string]any) {
	observer.OnEvent(ctx, observability.Event{
		Type:      eventType,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "backfill.Run",
		Data:      data,
	})
}
