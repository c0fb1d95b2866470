package monitor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/tailored-agentic-units/neuralcore/classify"
	"github.com/tailored-agentic-units/neuralcore/filter"
	"github.com/tailored-agentic-units/neuralcore/history"
	"github.com/tailored-agentic-units/neuralcore/rpc"
	"github.com/tailored-agentic-units/neuralcore/store"
	"github.com/tailored-agentic-units/neuralcore/transport"
)

// EnvPrefix prefixes environment overrides, e.g. NEURALCORE_TRANSPORT_URL.
const EnvPrefix = "NEURALCORE"

// Config holds initialization parameters for all monitor subsystems.
type Config struct {
	Transport transport.Config `json:"transport" mapstructure:"transport"`
	History   history.Config   `json:"history" mapstructure:"history"`
	Store     store.Config     `json:"store" mapstructure:"store"`
	Filter    filter.Config    `json:"filter" mapstructure:"filter"`
	RPC       rpc.Config       `json:"rpc" mapstructure:"rpc"`

	PrimarySymbol string  `json:"primary_symbol,omitempty" mapstructure:"primary_symbol"`
	Confidence    float64 `json:"confidence,omitempty" mapstructure:"confidence"`
	FeedSize      int     `json:"feed_size,omitempty" mapstructure:"feed_size"`
	BackfillNil   *bool   `json:"backfill,omitempty" mapstructure:"backfill"`
}

// DefaultConfig returns a Config with defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		Transport:     transport.DefaultConfig(),
		History:       history.DefaultConfig(),
		Store:         store.DefaultConfig(),
		Filter:        filter.DefaultConfig(),
		RPC:           rpc.DefaultConfig(),
		PrimarySymbol: classify.DefaultPrimarySymbol,
		Confidence:    classify.DefaultConfidence,
		FeedSize:      50,
	}
}

// Backfill reports whether history is loaded at startup. Defaults to true.
func (c *Config) Backfill() bool {
	if c.BackfillNil == nil {
		return true
	}
	return *c.BackfillNil
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Transport.Merge(&source.Transport)
	c.History.Merge(&source.History)
	c.Store.Merge(&source.Store)
	c.Filter.Merge(&source.Filter)
	c.RPC.Merge(&source.RPC)

	if source.PrimarySymbol != "" {
		c.PrimarySymbol = source.PrimarySymbol
	}
	if source.Confidence > 0 {
		c.Confidence = source.Confidence
	}
	if source.FeedSize > 0 {
		c.FeedSize = source.FeedSize
	}
	if source.BackfillNil != nil {
		c.BackfillNil = source.BackfillNil
	}
}

// envKeys lists every config key that can be overridden from the
// environment.
var envKeys = []string{
	"transport.url",
	"transport.reconnect_delay",
	"transport.handshake_timeout",
	"transport.buffer_size",
	"history.base_url",
	"history.limit",
	"history.timeout",
	"history.trigger_interval",
	"store.backfill_mode",
	"store.seal_closed",
	"store.subscriber_buffer",
	"filter.supported",
	"filter.active",
	"rpc.addr",
	"rpc.shutdown_timeout",
	"primary_symbol",
	"confidence",
	"feed_size",
	"backfill",
}

// LoadConfig reads a JSON, YAML, or TOML config file, applies NEURALCORE_
// environment overrides, and merges the result over defaults. An empty
// filename reads the environment only.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if filename != "" {
		v.SetConfigFile(filename)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				return nil, fmt.Errorf("config file not found: %w", err)
			}
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var loaded Config
	if err := v.Unmarshal(&loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
