package transport

import "time"

// Config holds connection settings.
type Config struct {
	URL              string        `json:"url,omitempty" mapstructure:"url"`
	ReconnectDelay   time.Duration `json:"reconnect_delay,omitempty" mapstructure:"reconnect_delay"`
	HandshakeTimeout time.Duration `json:"handshake_timeout,omitempty" mapstructure:"handshake_timeout"`
	BufferSize       int           `json:"buffer_size,omitempty" mapstructure:"buffer_size"`
}

// DefaultConfig returns a Config for the local pipeline endpoint with the
// fixed 3 second reconnect delay.
func DefaultConfig() Config {
	return Config{
		URL:              "ws://127.0.0.1:8000/ws",
		ReconnectDelay:   3 * time.Second,
		HandshakeTimeout: 10 * time.Second,
		BufferSize:       256,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.URL != "" {
		c.URL = source.URL
	}

	if source.ReconnectDelay > 0 {
		c.ReconnectDelay = source.ReconnectDelay
	}

	if source.HandshakeTimeout > 0 {
		c.HandshakeTimeout = source.HandshakeTimeout
	}

	if source.BufferSize > 0 {
		c.BufferSize = source.BufferSize
	}
}
