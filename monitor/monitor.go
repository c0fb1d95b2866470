// Package monitor composes the live session monitor: the transport manager
// feeds a single processing loop that decodes each frame, records it in the
// activity feed, and applies it to the session store, while history is
// backfilled once at startup and the read surface is served over RPC.
//
// The monitor initializes from configuration via New. Functional options
// allow test overrides of any collaborator.
//
//	m, err := monitor.New(cfg)
//	err = m.Run(ctx)
package monitor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/tailored-agentic-units/neuralcore/activity"
	"github.com/tailored-agentic-units/neuralcore/backfill"
	"github.com/tailored-agentic-units/neuralcore/classify"
	"github.com/tailored-agentic-units/neuralcore/core/envelope"
	"github.com/tailored-agentic-units/neuralcore/filter"
	"github.com/tailored-agentic-units/neuralcore/history"
	"github.com/tailored-agentic-units/neuralcore/observability"
	"github.com/tailored-agentic-units/neuralcore/rpc"
	"github.com/tailored-agentic-units/neuralcore/store"
	"github.com/tailored-agentic-units/neuralcore/transport"
)

// Link status labels reported by LinkStatus.
const (
	LinkOnline  = "Neural Link Online"
	LinkOffline = "Disconnected"
)

// DecisionLog fetches history and starts analysis runs.
type DecisionLog interface {
	backfill.DecisionLog
	rpc.Triggerer
}

// Option configures a Monitor. Options are applied before subsystems are
// built, so overrides take effect everywhere.
type Option func(*Monitor)

// WithObserver overrides the default SlogObserver.
func WithObserver(o observability.Observer) Option {
	return func(m *Monitor) { m.observer = o }
}

// WithDialer overrides the websocket dialer.
func WithDialer(d transport.Dialer) Option {
	return func(m *Monitor) { m.dialer = d }
}

// WithDecisionLog overrides the HTTP decision log client.
func WithDecisionLog(l DecisionLog) Option {
	return func(m *Monitor) { m.log = l }
}

// WithRegistry overrides the Prometheus registry metrics are recorded in.
func WithRegistry(r *prometheus.Registry) Option {
	return func(m *Monitor) { m.registry = r }
}

// WithIDFunc overrides the session id generator.
func WithIDFunc(fn func() string) Option {
	return func(m *Monitor) { m.newID = fn }
}

// WithoutRPC disables the RPC server regardless of configuration.
func WithoutRPC() Option {
	return func(m *Monitor) { m.noRPC = true }
}

// Monitor is the live session monitor runtime.
type Monitor struct {
	cfg      Config
	observer observability.Observer
	dialer   transport.Dialer
	log      DecisionLog
	registry *prometheus.Registry
	newID    func() string
	noRPC    bool

	store     *store.Store
	filter    *filter.Filter
	feed      *activity.Feed
	transport *transport.Manager
	service   *rpc.Service

	running atomic.Bool
}

// New creates a Monitor from configuration. A nil cfg uses DefaultConfig.
func New(cfg *Config, opts ...Option) (*Monitor, error) {
	if cfg == nil {
		defaults := DefaultConfig()
		cfg = &defaults
	}
	m := &Monitor{
		cfg:      *cfg,
		observer: observability.NewSlogObserver(nil),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	metrics, err := observability.NewMetricsObserver(m.registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	m.observer = observability.NewMultiObserver(m.observer, metrics)

	if m.log == nil {
		m.log = history.New(cfg.History, history.WithObserver(m.observer))
	}

	classifierOpts := []classify.Option{
		classify.WithPrimarySymbol(cfg.PrimarySymbol),
		classify.WithConfidence(cfg.Confidence),
	}
	if m.newID != nil {
		classifierOpts = append(classifierOpts, classify.WithIDFunc(m.newID))
	}

	m.store = store.New(cfg.Store, classify.New(classifierOpts...), m.observer)
	m.filter = filter.New(cfg.Filter, m.observer)
	m.feed = activity.NewFeed(cfg.FeedSize)

	transportOpts := []transport.Option{transport.WithObserver(m.observer)}
	if m.dialer != nil {
		transportOpts = append(transportOpts, transport.WithDialer(m.dialer))
	}
	m.transport = transport.New(cfg.Transport, transportOpts...)

	m.service = rpc.NewService(m.store, m.filter,
		rpc.WithTrigger(m.log),
		rpc.WithLinkStatus(m.LinkStatus),
	)

	if err := m.registerGauges(m.registry); err != nil {
		return nil, fmt.Errorf("failed to register gauges: %w", err)
	}

	return m, nil
}

// Store returns the session store.
func (m *Monitor) Store() *store.Store { return m.store }

// Filter returns the symbol activation filter.
func (m *Monitor) Filter() *filter.Filter { return m.filter }

// Feed returns the activity feed.
func (m *Monitor) Feed() *activity.Feed { return m.feed }

// Status returns the pipeline connection state.
func (m *Monitor) Status() transport.State { return m.transport.Status() }

// LinkStatus renders the connection state for display.
func (m *Monitor) LinkStatus() string {
	if m.transport.Status() == transport.Connected {
		return LinkOnline
	}
	return LinkOffline
}

// Trigger asks the backend to start an analysis run.
func (m *Monitor) Trigger(ctx context.Context) error {
	return m.log.Trigger(ctx)
}

// Handler returns the RPC, health, and metrics routes.
func (m *Monitor) Handler() http.Handler {
	return rpc.NewRouter(m.service, m.registry)
}

// Run streams from the pipeline until ctx is done. Transport and backfill
// failures are reported through the observer, never returned; only a
// failure to serve RPC ends Run early. Run may be called again after it
// returns; sessions and the feed carry over.
func (m *Monitor) Run(ctx context.Context) error {
	if !m.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer m.running.Store(false)

	m.emit(ctx, EventRunStart, observability.LevelInfo, map[string]any{
		"url":      m.cfg.Transport.URL,
		"backfill": m.cfg.Backfill(),
		"rpc":      m.rpcAddr(),
	})

	g, ctx := errgroup.WithContext(ctx)

	frames := m.transport.NewFrames(ctx)
	g.Go(func() error { return m.transport.Run(ctx, frames) })
	g.Go(func() error { return m.process(ctx, frames) })

	if m.cfg.Backfill() {
		g.Go(func() error {
			backfill.Run(ctx, m.log, m.store, m.observer,
				backfill.WithLimit(m.cfg.History.Limit),
				backfill.WithConfidence(m.cfg.Confidence),
				backfill.WithPrimarySymbol(m.cfg.PrimarySymbol),
			)
			return nil
		})
	}

	if addr := m.rpcAddr(); addr != "" {
		g.Go(func() error { return rpc.Serve(ctx, m.cfg.RPC, m.Handler()) })
	}

	err := g.Wait()
	m.emit(context.WithoutCancel(ctx), EventRunComplete, observability.LevelInfo, map[string]any{
		"sessions": m.store.Snapshot().Len(),
	})
	return err
}

// Handle decodes one frame and routes it. Malformed frames are dropped;
// system events go to the activity feed only; everything else is recorded
// in the feed and applied to the store.
func (m *Monitor) Handle(ctx context.Context, f transport.Frame) {
	env, err := envelope.Decode(f.Data, f.ReceivedAt)
	if err != nil {
		m.emit(ctx, EventFrameDropped, observability.LevelVerbose, map[string]any{
			"error": err.Error(),
			"bytes": len(f.Data),
		})
		return
	}

	m.feed.Add(env)

	if env.Kind == envelope.KindSystemEvent {
		m.emit(ctx, EventSystemEvent, observability.LevelInfo, map[string]any{
			"sender":  env.Sender,
			"message": activity.Summarize(env.Content),
		})
		return
	}

	m.store.Apply(ctx, env)
}

func (m *Monitor) process(ctx context.Context, frames *transport.MessageChannel[transport.Frame]) error {
	for {
		f, err := frames.Receive(ctx)
		if err != nil {
			if errors.Is(err, transport.ErrChannelClosed) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		m.Handle(ctx, f)
	}
}

func (m *Monitor) rpcAddr() string {
	if m.noRPC {
		return ""
	}
	return m.cfg.RPC.Addr
}

func (m *Monitor) emit(ctx context.Context, eventType observability.EventType, level observability.Level, data map[string]any) {
	m.observer.OnEvent(ctx, observability.Event{
		Type:      eventType,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "monitor",
		Data:      data,
	})
}
