package store

// BackfillMode selects how history is installed into a store that may
// already hold live sessions.
type BackfillMode string

const (
	// BackfillMerge prepends history sessions not already present, by id,
	// ahead of the live list.
	BackfillMerge BackfillMode = "merge"
	// BackfillReplace discards the current list and installs history alone.
	BackfillReplace BackfillMode = "replace"
)

// Config holds store settings.
type Config struct {
	BackfillMode     BackfillMode `json:"backfill_mode,omitempty" mapstructure:"backfill_mode"`
	SealClosed       bool         `json:"seal_closed,omitempty" mapstructure:"seal_closed"`
	SubscriberBuffer int          `json:"subscriber_buffer,omitempty" mapstructure:"subscriber_buffer"`
}

// DefaultConfig returns a Config that merges history and leaves closed
// sessions open to further merges.
func DefaultConfig() Config {
	return Config{
		BackfillMode:     BackfillMerge,
		SubscriberBuffer: 1,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.BackfillMode != "" {
		c.BackfillMode = source.BackfillMode
	}

	if source.SealClosed {
		c.SealClosed = true
	}

	if source.SubscriberBuffer > 0 {
		c.SubscriberBuffer = source.SubscriberBuffer
	}
}

// Options returns the reducer options derived from c.
func (c Config) Options() Options {
	return Options{SealClosed: c.SealClosed}
}
