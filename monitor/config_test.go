package monitor_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailored-agentic-units/neuralcore/monitor"
	"github.com/tailored-agentic-units/neuralcore/store"
)

func TestDefaultConfig(t *testing.T) {
	cfg := monitor.DefaultConfig()

	assert.Equal(t, "ws://127.0.0.1:8000/ws", cfg.Transport.URL)
	assert.Equal(t, 3*time.Second, cfg.Transport.ReconnectDelay)
	assert.Equal(t, 10, cfg.History.Limit)
	assert.Equal(t, store.BackfillMerge, cfg.Store.BackfillMode)
	assert.False(t, cfg.Store.SealClosed)
	assert.Equal(t, []string{"BTCUSDT"}, cfg.Filter.Active)
	assert.Equal(t, "BTCUSDT", cfg.PrimarySymbol)
	assert.Equal(t, 0.9, cfg.Confidence)
	assert.True(t, cfg.Backfill())
}

func TestConfig_Merge(t *testing.T) {
	off := false
	cfg := monitor.DefaultConfig()
	cfg.Merge(&monitor.Config{
		Store:       store.Config{BackfillMode: store.BackfillReplace},
		FeedSize:    10,
		BackfillNil: &off,
	})

	assert.Equal(t, store.BackfillReplace, cfg.Store.BackfillMode)
	assert.Equal(t, 10, cfg.FeedSize)
	assert.False(t, cfg.Backfill())
	assert.Equal(t, "BTCUSDT", cfg.PrimarySymbol, "unset fields keep defaults")
}

func TestLoadConfig_YAMLWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "neuralcore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
transport:
  url: ws://pipeline:8000/ws
  reconnect_delay: 500ms
store:
  seal_closed: true
filter:
  active: [ETHUSDT, SOLUSDT]
backfill: false
`), 0o600))

	t.Setenv("NEURALCORE_HISTORY_BASE_URL", "http://pipeline:8000")
	t.Setenv("NEURALCORE_TRANSPORT_URL", "ws://override:8000/ws")

	cfg, err := monitor.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "ws://override:8000/ws", cfg.Transport.URL)
	assert.Equal(t, 500*time.Millisecond, cfg.Transport.ReconnectDelay)
	assert.Equal(t, "http://pipeline:8000", cfg.History.BaseURL)
	assert.True(t, cfg.Store.SealClosed)
	assert.Equal(t, []string{"ETHUSDT", "SOLUSDT"}, cfg.Filter.Active)
	assert.False(t, cfg.Backfill())
	assert.Equal(t, 10, cfg.History.Limit)
}

func TestLoadConfig_EnvOnly(t *testing.T) {
	t.Setenv("NEURALCORE_RPC_ADDR", "0.0.0.0:9999")

	cfg, err := monitor.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9999", cfg.RPC.Addr)
	assert.Equal(t, "ws://127.0.0.1:8000/ws", cfg.Transport.URL)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := monitor.LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
