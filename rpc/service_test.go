package rpc_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/neuralcore/core/envelope"
	"github.com/tailored-agentic-units/neuralcore/filter"
	"github.com/tailored-agentic-units/neuralcore/history"
	"github.com/tailored-agentic-units/neuralcore/observability"
	"github.com/tailored-agentic-units/neuralcore/rpc"
	"github.com/tailored-agentic-units/neuralcore/store"
)

type stubTrigger struct{ err error }

func (s stubTrigger) Trigger(ctx context.Context) error { return s.err }

type fixture struct {
	store  *store.Store
	filter *filter.Filter
	client *rpc.Client
	server *httptest.Server
}

func newFixture(t *testing.T, opts ...rpc.Option) *fixture {
	t.Helper()
	st := store.New(store.DefaultConfig(), nil, nil)
	f := filter.New(filter.DefaultConfig(), nil)

	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetricsObserver(reg)
	require.NoError(t, err)
	metrics.OnEvent(context.Background(), observability.Event{Type: store.EventSessionCreate, Level: observability.LevelInfo})

	opts = append([]rpc.Option{rpc.WithLinkStatus(func() string { return "connected" })}, opts...)
	svc := rpc.NewService(st, f, opts...)

	srv := httptest.NewUnstartedServer(rpc.NewRouter(svc, reg))
	srv.EnableHTTP2 = true
	srv.StartTLS()
	t.Cleanup(srv.Close)

	return &fixture{store: st, filter: f, client: rpc.NewClient(srv.Client(), srv.URL), server: srv}
}

func (fx *fixture) apply(t *testing.T, frame string) {
	t.Helper()
	env, err := envelope.Decode([]byte(frame), time.Now())
	require.NoError(t, err)
	fx.store.Apply(context.Background(), env)
}

func sessionsOf(msg *structpb.Struct) []any {
	return msg.AsMap()["sessions"].([]any)
}

func TestListSessions_AppliesFilter(t *testing.T) {
	fx := newFixture(t)
	fx.apply(t, `{"content": {"type": "PROXIMITY_ALERT", "reason": "eth", "symbol": "ETHUSDT"}}`)
	fx.apply(t, `{"content": {"type": "PROXIMITY_ALERT", "reason": "btc", "symbol": "BTCUSDT"}}`)
	fx.apply(t, `{"content": {"type": "PROXIMITY_ALERT", "reason": "none"}}`)

	msg, err := fx.client.ListSessions(context.Background(), false)
	require.NoError(t, err)

	m := msg.AsMap()
	assert.Equal(t, "connected", m["link"])
	assert.Equal(t, float64(3), m["total"])
	assert.Equal(t, []any{"BTCUSDT"}, m["filter"])

	visible := sessionsOf(msg)
	require.Len(t, visible, 2)
	assert.Equal(t, "btc", visible[0].(map[string]any)["trigger_reason"])
	assert.Equal(t, "none", visible[1].(map[string]any)["trigger_reason"])

	msg, err = fx.client.ListSessions(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, sessionsOf(msg), 3)
}

func TestWatchSessions_StreamsUpdates(t *testing.T) {
	fx := newFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var lengths []int
	err := fx.client.WatchSessions(ctx, true, func(msg *structpb.Struct) bool {
		lengths = append(lengths, len(sessionsOf(msg)))
		if len(lengths) == 1 {
			fx.apply(t, `{"content": {"type": "MANUAL_INTERVENTION", "trigger": "MANUAL"}}`)
			return true
		}
		return false
	})

	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, lengths)
}

func TestToggleSymbol(t *testing.T) {
	fx := newFixture(t)

	active, err := fx.client.ToggleSymbol(context.Background(), "ETHUSDT")
	require.NoError(t, err)
	assert.True(t, active)
	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT"}, fx.filter.Active())

	_, err = fx.client.ToggleSymbol(context.Background(), "XRPUSDT")
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestTrigger(t *testing.T) {
	tests := []struct {
		name string
		opts []rpc.Option
		want connect.Code
	}{
		{"not configured", nil, connect.CodeUnimplemented},
		{"throttled", []rpc.Option{rpc.WithTrigger(stubTrigger{err: history.ErrThrottled})}, connect.CodeResourceExhausted},
		{"backend down", []rpc.Option{rpc.WithTrigger(stubTrigger{err: errors.New("refused")})}, connect.CodeUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newFixture(t, tt.opts...).client.Trigger(context.Background())
			assert.Equal(t, tt.want, connect.CodeOf(err))
		})
	}

	t.Run("ok", func(t *testing.T) {
		fx := newFixture(t, rpc.WithTrigger(stubTrigger{}))
		assert.NoError(t, fx.client.Trigger(context.Background()))
	})
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	fx := newFixture(t)
	hc := fx.server.Client()

	resp, err := hc.Get(fx.server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, map[string]string{"status": "ok", "link": "connected"}, health)

	resp, err = hc.Get(fx.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `neuralcore_events_total{level="INFO",type="store.session.create"} 1`)
}

func TestServeListener_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, "up") })
	go func() { done <- rpc.ServeListener(ctx, rpc.DefaultConfig(), ln, handler) }()

	resp, err := http.Get("http://" + ln.Addr().String())
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "up", strings.TrimSpace(string(body)))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}
