package rpc

import "time"

// Config holds read-surface server settings. An empty Addr disables the
// server.
type Config struct {
	Addr            string        `json:"addr,omitempty" mapstructure:"addr"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout,omitempty" mapstructure:"shutdown_timeout"`
}

// DefaultConfig listens on the loopback interface.
func DefaultConfig() Config {
	return Config{
		Addr:            "127.0.0.1:8090",
		ShutdownTimeout: 5 * time.Second,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Addr != "" {
		c.Addr = source.Addr
	}

	if source.ShutdownTimeout > 0 {
		c.ShutdownTimeout = source.ShutdownTimeout
	}
}
