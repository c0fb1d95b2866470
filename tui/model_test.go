package tui

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailored-agentic-units/neuralcore/activity"
	"github.com/tailored-agentic-units/neuralcore/classify"
	"github.com/tailored-agentic-units/neuralcore/core/envelope"
	"github.com/tailored-agentic-units/neuralcore/filter"
	"github.com/tailored-agentic-units/neuralcore/session"
	"github.com/tailored-agentic-units/neuralcore/store"
)

type fakeControls struct {
	link     atomic.Value
	triggers atomic.Int32
	err      error
}

func newControls(link string) *fakeControls {
	c := &fakeControls{}
	c.link.Store(link)
	return c
}

func (c *fakeControls) LinkStatus() string { return c.link.Load().(string) }

func (c *fakeControls) Trigger(ctx context.Context) error {
	c.triggers.Add(1)
	return c.err
}

type fixture struct {
	store    *store.Store
	filter   *filter.Filter
	feed     *activity.Feed
	controls *fakeControls
	model    Model
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	f := &fixture{
		store:    store.New(store.DefaultConfig(), classify.New(), nil),
		filter:   filter.New(filter.DefaultConfig(), nil),
		feed:     activity.NewFeed(activity.DefaultCapacity),
		controls: newControls("Disconnected"),
	}
	f.model = New(ctx, f.store, f.filter, f.feed, f.controls)
	return f
}

func (f *fixture) apply(t *testing.T, frame string) {
	t.Helper()
	env, err := envelope.Decode([]byte(frame), time.Now())
	require.NoError(t, err)
	f.feed.Add(env)
	f.store.Apply(context.Background(), env)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_RendersVisibleSessions(t *testing.T) {
	f := newFixture(t)
	f.apply(t, `{"content": {"type": "MANUAL_INTERVENTION", "reason": "btc check", "symbol": "BTCUSDT"}}`)
	f.apply(t, `{"content": {"type": "MANUAL_INTERVENTION", "reason": "eth check", "symbol": "ETHUSDT"}}`)

	m, cmd := update(t, f.model, stateMsg{state: f.store.Snapshot()})
	assert.NotNil(t, cmd, "model keeps waiting for the next snapshot")

	view := m.View()
	assert.Contains(t, view, "btc check")
	assert.NotContains(t, view, "eth check")
	assert.Contains(t, view, "2 sessions")
	assert.Contains(t, view, "Disconnected")
}

func TestModel_ToggleSymbol(t *testing.T) {
	f := newFixture(t)
	f.apply(t, `{"content": {"type": "MANUAL_INTERVENTION", "reason": "eth check", "symbol": "ETHUSDT"}}`)
	m, _ := update(t, f.model, stateMsg{state: f.store.Snapshot()})
	require.NotContains(t, m.View(), "eth check")

	m, _ = update(t, m, key("2"))
	assert.True(t, f.filter.IsActive("ETHUSDT"))
	assert.Contains(t, m.View(), "eth check")

	m, _ = update(t, m, key("2"))
	assert.False(t, f.filter.IsActive("ETHUSDT"))
	assert.NotContains(t, m.View(), "eth check")

	// Out of range keys are ignored.
	_, _ = update(t, m, key("9"))
	assert.Equal(t, []string{"BTCUSDT"}, f.filter.Active())
}

func TestModel_SessionProgress(t *testing.T) {
	f := newFixture(t)
	f.apply(t, `{"content": {"type": "PROXIMITY_ALERT", "reason": "near level", "symbol": "BTCUSDT"}}`)
	f.apply(t, `{"sender": "coordinator", "content": {"thought_process": "Bullish:momentum"}}`)
	f.apply(t, `{"sender": "technical_consultant", "content": {"rsi": 70}}`)

	m, _ := update(t, f.model, stateMsg{state: f.store.Snapshot()})
	view := m.View()
	assert.Contains(t, view, "Bullish: momentum")
	assert.Contains(t, view, "✓ technical")
	assert.Contains(t, view, "· fundamental")
	assert.Contains(t, view, "deliberating")

	f.apply(t, `{"type": "ACTION_REQUEST", "content": {"action": {"type": "BUY"}, "thought_process": "confirmed"}}`)
	m, _ = update(t, m, stateMsg{state: f.store.Snapshot()})
	view = m.View()
	assert.Contains(t, view, "BUY")
	assert.Contains(t, view, "90%")
	assert.NotContains(t, view, "deliberating")
}

func TestModel_TickRefreshesLinkAndFeed(t *testing.T) {
	f := newFixture(t)
	f.apply(t, `{"sender": "risk_consultant", "content": {"var": 0.02}}`)
	f.controls.link.Store("Neural Link Online")

	m, cmd := update(t, f.model, tickMsg(time.Now()))
	assert.NotNil(t, cmd)

	view := m.View()
	assert.Contains(t, view, "Neural Link Online")
	assert.Contains(t, view, "risk_consultant")
}

func TestModel_Trigger(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		notice string
	}{
		{"accepted", nil, "analysis requested"},
		{"rejected", errors.New("backend down"), "trigger failed: backend down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.controls.err = tt.err

			m, cmd := update(t, f.model, key("t"))
			require.NotNil(t, cmd)
			assert.Contains(t, m.View(), "requesting analysis")

			m, _ = update(t, m, cmd())
			assert.Equal(t, int32(1), f.controls.triggers.Load())
			assert.Contains(t, m.View(), tt.notice)
		})
	}
}

func TestModel_Quit(t *testing.T) {
	f := newFixture(t)

	for _, msg := range []tea.KeyMsg{key("q"), {Type: tea.KeyCtrlC}} {
		_, cmd := update(t, f.model, msg)
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}
}

func TestModel_WaitForStateEndsWithSubscription(t *testing.T) {
	ch := make(chan store.State)
	close(ch)
	assert.Nil(t, waitForState(ch)())
}

func TestRenderSessions_NewestFirst(t *testing.T) {
	now := time.Now()
	sessions := []session.Session{
		{ID: "a", Symbol: "BTCUSDT", CreatedAt: now, TriggerReason: "older"},
		{ID: "b", Symbol: "BTCUSDT", CreatedAt: now.Add(time.Minute), TriggerReason: "newer"},
	}

	out := renderSessions(sessions, newStyles(), "*", 0)
	assert.Less(t, strings.Index(out, "newer"), strings.Index(out, "older"))

	assert.Contains(t, renderSessions(nil, newStyles(), "*", 0), "No sessions")
}

func TestRenderFeed_KeepsLastEntries(t *testing.T) {
	var entries []activity.Entry
	for i := range 10 {
		entries = append(entries, activity.Entry{Sender: "s", Summary: strings.Repeat("x", i+1), At: time.Now()})
	}

	out := renderFeed(entries, 3, newStyles())
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 4)
	assert.True(t, strings.HasSuffix(lines[3], strings.Repeat("x", 10)))
}
