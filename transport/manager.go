// Package transport owns the live connection to the decision pipeline. A
// Manager dials, forwards every inbound frame over a bounded channel, and
// after any close waits a fixed delay before dialing again, for as long as
// its context lives. It knows nothing about sessions.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tailored-agentic-units/neuralcore/core/envelope"
	"github.com/tailored-agentic-units/neuralcore/observability"
)

// LinkEstablished is the message of the synthetic system event emitted on
// every successful connect.
const LinkEstablished = "Neural Link Established."

const (
	EventConnecting   observability.EventType = "transport.connecting"
	EventConnected    observability.EventType = "transport.connected"
	EventDisconnected observability.EventType = "transport.disconnected"
	EventDialFailed   observability.EventType = "transport.dial.failed"
	EventReconnect    observability.EventType = "transport.reconnect.scheduled"
)

// State is the connection state.
type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Frame is one raw inbound message with its arrival time.
type Frame struct {
	Data       []byte
	ReceivedAt time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithDialer replaces the websocket dialer.
func WithDialer(d Dialer) Option {
	return func(m *Manager) { m.dialer = d }
}

// WithObserver sets the observer for lifecycle events.
func WithObserver(obs observability.Observer) Option {
	return func(m *Manager) { m.observer = observability.OrNoOp(obs) }
}

// WithStatusHook registers fn to be called on every state change.
func WithStatusHook(fn func(State)) Option {
	return func(m *Manager) { m.hooks = append(m.hooks, fn) }
}

// Manager is the connection state machine.
type Manager struct {
	cfg      Config
	dialer   Dialer
	observer observability.Observer
	hooks    []func(State)
	metrics  Metrics

	mu    sync.RWMutex
	state State
}

// New creates a Manager in the disconnected state.
func New(cfg Config, opts ...Option) *Manager {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}
	m := &Manager{
		cfg:      cfg,
		observer: observability.NoOpObserver{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.dialer == nil {
		m.dialer = NewWebsocketDialer(cfg.HandshakeTimeout)
	}
	return m
}

// NewFrames creates a frame channel sized from config and owned by ctx, for
// a single call to Run.
func (m *Manager) NewFrames(ctx context.Context) *MessageChannel[Frame] {
	return NewMessageChannel[Frame](ctx, m.cfg.BufferSize)
}

// Status returns the current connection state.
func (m *Manager) Status() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Metrics returns a snapshot of the connection counters.
func (m *Manager) Metrics() MetricsSnapshot {
	return m.metrics.Snapshot()
}

// Run connects and reconnects until ctx is done, forwarding inbound frames
// on frames and closing it on return. It returns nil on cancellation;
// transport failures are never returned. A Manager may be run again once a
// previous Run has returned, with a fresh channel.
func (m *Manager) Run(ctx context.Context, frames *MessageChannel[Frame]) error {
	defer frames.Close()
	defer m.setState(ctx, Disconnected, nil)

	for {
		m.setState(ctx, Connecting, map[string]any{"url": m.cfg.URL})
		m.metrics.recordDial()

		conn, err := m.dialer.Dial(ctx, m.cfg.URL)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			m.emit(ctx, EventDialFailed, observability.LevelWarning, map[string]any{"url": m.cfg.URL, "error": err.Error()})
		} else {
			err = m.serve(ctx, conn, frames)
			if ctx.Err() != nil {
				return nil
			}
		}

		m.setState(ctx, Disconnected, disconnectData(err))
		m.emit(ctx, EventReconnect, observability.LevelVerbose, map[string]any{"delay": m.cfg.ReconnectDelay.String()})

		timer := time.NewTimer(m.cfg.ReconnectDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// serve forwards frames from conn until it closes or ctx is done.
func (m *Manager) serve(ctx context.Context, conn Conn, frames *MessageChannel[Frame]) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		conn.Close()
	}()

	m.metrics.recordConnect()
	m.setState(ctx, Connected, map[string]any{"url": m.cfg.URL})

	now := time.Now()
	link, err := json.Marshal(envelope.NewSystemEvent(LinkEstablished, now))
	if err != nil {
		return err
	}
	if err := frames.Send(ctx, Frame{Data: link, ReceivedAt: now}); err != nil {
		return err
	}

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
			continue
		}

		m.metrics.recordFrame()
		if err := frames.Send(ctx, Frame{Data: data, ReceivedAt: time.Now()}); err != nil {
			return err
		}
	}
}

func (m *Manager) setState(ctx context.Context, next State, data map[string]any) {
	m.mu.Lock()
	prev := m.state
	m.state = next
	m.mu.Unlock()

	if prev == next {
		return
	}

	switch next {
	case Connecting:
		m.emit(ctx, EventConnecting, observability.LevelVerbose, data)
	case Connected:
		m.emit(ctx, EventConnected, observability.LevelInfo, data)
	case Disconnected:
		m.metrics.recordDisconnect()
		m.emit(ctx, EventDisconnected, observability.LevelWarning, data)
	}

	for _, hook := range m.hooks {
		hook(next)
	}
}

func (m *Manager) emit(ctx context.Context, eventType observability.EventType, level observability.Level, data map[string]any) {
	m.observer.OnEvent(context.WithoutCancel(ctx), observability.Event{
		Type:      eventType,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "transport.Manager",
		Data:      data,
	})
}

func disconnectData(err error) map[string]any {
	if err == nil {
		return nil
	}
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		return map[string]any{"code": closeErr.Code, "reason": closeErr.Text}
	}
	return map[string]any{"error": err.Error()}
}
