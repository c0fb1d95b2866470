// Package filter tracks which symbols the operator wants to see and narrows
// session lists accordingly. It never modifies sessions.
package filter

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/tailored-agentic-units/neuralcore/observability"
	"github.com/tailored-agentic-units/neuralcore/session"
)

const EventToggle observability.EventType = "filter.toggle"

// Config lists the symbols offered and the ones active at startup.
type Config struct {
	Supported []string `json:"supported,omitempty" mapstructure:"supported"`
	Active    []string `json:"active,omitempty" mapstructure:"active"`
}

// DefaultConfig offers four majors with only BTCUSDT active.
func DefaultConfig() Config {
	return Config{
		Supported: []string{"BTCUSDT", "ETHUSDT", "SOLUSDT", "DOGEUSDT"},
		Active:    []string{"BTCUSDT"},
	}
}

// Merge applies non-empty lists from source into c.
func (c *Config) Merge(source *Config) {
	if len(source.Supported) > 0 {
		c.Supported = source.Supported
	}

	if source.Active != nil {
		c.Active = source.Active
	}
}

// Filter holds the active symbol set. Safe for concurrent use.
type Filter struct {
	supported []string
	observer  observability.Observer

	mu     sync.RWMutex
	active map[string]bool
}

// New creates a Filter from cfg.
func New(cfg Config, observer observability.Observer) *Filter {
	f := &Filter{
		supported: slices.Clone(cfg.Supported),
		observer:  observability.OrNoOp(observer),
		active:    make(map[string]bool, len(cfg.Active)),
	}
	for _, symbol := range cfg.Active {
		f.active[symbol] = true
	}
	return f
}

// Supported returns the symbols offered for selection, in display order.
func (f *Filter) Supported() []string {
	return slices.Clone(f.supported)
}

// Toggle adds symbol to the active set if absent, removes it if present,
// and reports whether it is now active.
func (f *Filter) Toggle(ctx context.Context, symbol string) bool {
	f.mu.Lock()
	active := !f.active[symbol]
	if active {
		f.active[symbol] = true
	} else {
		delete(f.active, symbol)
	}
	f.mu.Unlock()

	f.observer.OnEvent(ctx, observability.Event{
		Type:      EventToggle,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "filter.Toggle",
		Data:      map[string]any{"symbol": symbol, "active": active},
	})
	return active
}

// IsActive reports whether symbol is in the active set.
func (f *Filter) IsActive(symbol string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.active[symbol]
}

// Active returns the active symbols, sorted.
func (f *Filter) Active() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	symbols := make([]string, 0, len(f.active))
	for symbol := range f.active {
		symbols = append(symbols, symbol)
	}
	slices.Sort(symbols)
	return symbols
}

// IsVisible reports whether s should be shown: sessions without a symbol
// are always visible.
func (f *Filter) IsVisible(s session.Session) bool {
	return s.Symbol == "" || f.IsActive(s.Symbol)
}

// Visible returns the visible subset of sessions in their original order.
// The input is not modified.
func (f *Filter) Visible(sessions []session.Session) []session.Session {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]session.Session, 0, len(sessions))
	for _, s := range sessions {
		if s.Symbol == "" || f.active[s.Symbol] {
			out = append(out, s)
		}
	}
	return out
}
