package history

import "time"

// Config holds decision log client settings.
type Config struct {
	BaseURL         string        `json:"base_url,omitempty" mapstructure:"base_url"`
	Limit           int           `json:"limit,omitempty" mapstructure:"limit"`
	Timeout         time.Duration `json:"timeout,omitempty" mapstructure:"timeout"`
	TriggerInterval time.Duration `json:"trigger_interval,omitempty" mapstructure:"trigger_interval"`
}

// DefaultConfig returns a Config for a backend on the local machine.
func DefaultConfig() Config {
	return Config{
		BaseURL:         "http://127.0.0.1:8000",
		Limit:           10,
		Timeout:         10 * time.Second,
		TriggerInterval: 2 * time.Second,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.BaseURL != "" {
		c.BaseURL = source.BaseURL
	}

	if source.Limit > 0 {
		c.Limit = source.Limit
	}

	if source.Timeout > 0 {
		c.Timeout = source.Timeout
	}

	if source.TriggerInterval > 0 {
		c.TriggerInterval = source.TriggerInterval
	}
}
