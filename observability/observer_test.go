package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tailored-agentic-units/neuralcore/observability"
	"github.com/tailored-agentic-units/neuralcore/observability/obstest"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		name  string
		level observability.Level
		want  string
	}{
		{name: "trace range", level: 1, want: "TRACE"},
		{name: "verbose maps to DEBUG", level: observability.LevelVerbose, want: "DEBUG"},
		{name: "info maps to INFO", level: observability.LevelInfo, want: "INFO"},
		{name: "warning maps to WARN", level: observability.LevelWarning, want: "WARN"},
		{name: "error maps to ERROR", level: observability.LevelError, want: "ERROR"},
		{name: "fatal range", level: 21, want: "FATAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
			}
		})
	}
}

func TestLevel_Mapping(t *testing.T) {
	tests := []struct {
		level observability.Level
		slog  slog.Level
		zap   zapcore.Level
	}{
		{observability.LevelVerbose, slog.LevelDebug, zapcore.DebugLevel},
		{observability.LevelInfo, slog.LevelInfo, zapcore.InfoLevel},
		{observability.LevelWarning, slog.LevelWarn, zapcore.WarnLevel},
		{observability.LevelError, slog.LevelError, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			if got := tt.level.SlogLevel(); got != tt.slog {
				t.Errorf("SlogLevel() = %v, want %v", got, tt.slog)
			}
			if got := tt.level.ZapLevel(); got != tt.zap {
				t.Errorf("ZapLevel() = %v, want %v", got, tt.zap)
			}
		})
	}
}

func TestMultiObserver_FanOutSkipsNil(t *testing.T) {
	var a, b obstest.Recorder
	multi := observability.NewMultiObserver(&a, nil, &b)

	multi.OnEvent(context.Background(), observability.Event{Type: "store.session.create", Level: observability.LevelInfo})

	if a.Count("store.session.create") != 1 || b.Count("store.session.create") != 1 {
		t.Errorf("fan-out counts = %d, %d, want 1, 1", len(a.Events()), len(b.Events()))
	}
}

func TestOrNoOp(t *testing.T) {
	if _, ok := observability.OrNoOp(nil).(observability.NoOpObserver); !ok {
		t.Error("OrNoOp(nil) should return NoOpObserver")
	}

	var rec obstest.Recorder
	if observability.OrNoOp(&rec) != &rec {
		t.Error("OrNoOp should return a non-nil observer unchanged")
	}
}

func TestSlogObserver_LevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		level     observability.Level
		minLevel  slog.Level
		expectLog bool
	}{
		{name: "verbose at debug handler", level: observability.LevelVerbose, minLevel: slog.LevelDebug, expectLog: true},
		{name: "verbose at info handler", level: observability.LevelVerbose, minLevel: slog.LevelInfo, expectLog: false},
		{name: "warning at warn handler", level: observability.LevelWarning, minLevel: slog.LevelWarn, expectLog: true},
		{name: "info at error handler", level: observability.LevelInfo, minLevel: slog.LevelError, expectLog: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: tt.minLevel}))

			observability.NewSlogObserver(logger).OnEvent(context.Background(), observability.Event{
				Type:  "transport.connected",
				Level: tt.level,
			})

			if hasOutput := buf.Len() > 0; hasOutput != tt.expectLog {
				t.Errorf("log output = %v, want %v (buf: %q)", hasOutput, tt.expectLog, buf.String())
			}
		})
	}
}

func TestSlogObserver_Attributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	observability.NewSlogObserver(logger).OnEvent(context.Background(), observability.Event{
		Type:      "store.session.create",
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "store.Apply",
		Data:      map[string]any{"symbol": "ETHUSDT", "id": "s1"},
	})

	output := buf.String()
	for _, want := range []string{"store.session.create", "source=store.Apply", "id=s1", "symbol=ETHUSDT"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q: %s", want, output)
		}
	}
	if strings.Index(output, "id=s1") > strings.Index(output, "symbol=ETHUSDT") {
		t.Errorf("data attributes should be sorted by key: %s", output)
	}
}

func TestZapObserver(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	obs := observability.NewZapObserver(zap.New(core))

	obs.OnEvent(context.Background(), observability.Event{Type: "filter.toggle", Level: observability.LevelVerbose})
	obs.OnEvent(context.Background(), observability.Event{
		Type:   "backfill.failed",
		Level:  observability.LevelWarning,
		Source: "backfill.Run",
		Data:   map[string]any{"error": "connection refused"},
	})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1 (verbose filtered at info)", len(entries))
	}

	entry := entries[0]
	if entry.Message != "backfill.failed" || entry.Level != zapcore.WarnLevel {
		t.Errorf("entry = %q at %v, want backfill.failed at warn", entry.Message, entry.Level)
	}
	fields := entry.ContextMap()
	if fields["source"] != "backfill.Run" || fields["error"] != "connection refused" {
		t.Errorf("fields = %v", fields)
	}
}

func TestZapObserver_NilLogger(t *testing.T) {
	obs := observability.NewZapObserver(nil)
	obs.OnEvent(context.Background(), observability.Event{Type: "x", Level: observability.LevelError})
	if err := obs.Sync(); err != nil {
		t.Errorf("Sync on nop logger: %v", err)
	}
}

func TestMetricsObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := observability.NewMetricsObserver(reg)
	if err != nil {
		t.Fatalf("NewMetricsObserver: %v", err)
	}

	for range 3 {
		obs.OnEvent(context.Background(), observability.Event{Type: "store.session.merge", Level: observability.LevelVerbose})
	}
	obs.OnEvent(context.Background(), observability.Event{Type: "transport.disconnected", Level: observability.LevelWarning})

	if got := testutil.ToFloat64(obs.Count("store.session.merge", observability.LevelVerbose)); got != 3 {
		t.Errorf("merge count = %v, want 3", got)
	}
	if got := testutil.ToFloat64(obs.Count("transport.disconnected", observability.LevelWarning)); got != 1 {
		t.Errorf("disconnect count = %v, want 1", got)
	}

	again, err := observability.NewMetricsObserver(reg)
	if err != nil {
		t.Fatalf("second registration should reuse the collector: %v", err)
	}
	if got := testutil.ToFloat64(again.Count("store.session.merge", observability.LevelVerbose)); got != 3 {
		t.Errorf("shared collector count = %v, want 3", got)
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range []string{"noop", "slog"} {
		if obs, err := observability.GetObserver(name); err != nil || obs == nil {
			t.Errorf("GetObserver(%q) = %v, %v", name, obs, err)
		}
	}

	if _, err := observability.GetObserver("nonexistent"); err == nil {
		t.Error("unknown observer should fail")
	}

	var rec obstest.Recorder
	observability.RegisterObserver("test-recorder", &rec)

	obs, err := observability.GetObserver("test-recorder")
	if err != nil {
		t.Fatalf("GetObserver: %v", err)
	}
	obs.OnEvent(context.Background(), observability.Event{Type: "x"})
	if len(rec.Events()) != 1 {
		t.Errorf("registered observer received %d events, want 1", len(rec.Events()))
	}

	found := false
	for _, name := range observability.Names() {
		found = found || name == "test-recorder"
	}
	if !found {
		t.Errorf("Names() = %v, missing test-recorder", observability.Names())
	}
}
