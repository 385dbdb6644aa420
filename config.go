package framepipe

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned by Config.Validate and New when a tunable is
// out of range. It is the only fatal, caller-visible pipeline error: every
// runtime condition is recovered locally and exposed through Stats instead.
var ErrInvalidConfig = errors.New("framepipe: invalid configuration")

// Config holds the recognized pipeline tunables.
//
// The zero value is not usable; start from DefaultConfig and override, or
// decode a YAML document into it. Durations are written as Go duration
// strings in YAML ("250ms", "1s").
type Config struct {
	// Workers is the fixed size of the render worker pool.
	Workers int `yaml:"workers"`

	// TargetFPS is the display cadence in frames per second.
	TargetFPS float64 `yaml:"target_fps"`

	// QueueCapacity bounds the frame reassembly queue. When full, the
	// oldest buffered frame is evicted to admit a newer completion.
	QueueCapacity int `yaml:"queue_capacity"`

	// WorkerTimeout is how long a single render attempt may run before it
	// is treated as failed.
	WorkerTimeout time.Duration `yaml:"worker_timeout"`

	// RetryLimit is how many times a failed request is re-submitted
	// before it is abandoned.
	RetryLimit int `yaml:"retry_limit"`
}

// DefaultConfig returns the configuration used when no overrides are given:
// one worker per CPU, 60 Hz display cadence, a queue of 8 frames, a one
// second worker timeout, and 2 retries.
func DefaultConfig() Config {
	return Config{
		Workers:       runtime.GOMAXPROCS(0),
		TargetFPS:     60,
		QueueCapacity: 8,
		WorkerTimeout: time.Second,
		RetryLimit:    2,
	}
}

// Validate reports the first out-of-range tunable, wrapped in
// ErrInvalidConfig.
func (c Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.TargetFPS <= 0 {
		return fmt.Errorf("%w: target_fps must be positive, got %g", ErrInvalidConfig, c.TargetFPS)
	}
	if c.QueueCapacity <= 0 {
		return fmt.Errorf("%w: queue_capacity must be positive, got %d", ErrInvalidConfig, c.QueueCapacity)
	}
	if c.WorkerTimeout <= 0 {
		return fmt.Errorf("%w: worker_timeout must be positive, got %v", ErrInvalidConfig, c.WorkerTimeout)
	}
	if c.RetryLimit < 0 {
		return fmt.Errorf("%w: retry_limit must not be negative, got %d", ErrInvalidConfig, c.RetryLimit)
	}
	return nil
}

// interval returns the display tick period for the configured cadence.
func (c Config) interval() time.Duration {
	return time.Duration(float64(time.Second) / c.TargetFPS)
}

// rawConfig mirrors Config for YAML decoding, with the timeout as a
// duration string.
type rawConfig struct {
	Workers       int     `yaml:"workers"`
	TargetFPS     float64 `yaml:"target_fps"`
	QueueCapacity int     `yaml:"queue_capacity"`
	WorkerTimeout string  `yaml:"worker_timeout"`
	RetryLimit    int     `yaml:"retry_limit"`
}

// UnmarshalYAML decodes a config document, accepting the worker timeout as
// a duration string. Fields absent from the document keep the values already
// present in c, so decoding on top of DefaultConfig() yields a complete
// configuration.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	raw := rawConfig{
		Workers:       c.Workers,
		TargetFPS:     c.TargetFPS,
		QueueCapacity: c.QueueCapacity,
		RetryLimit:    c.RetryLimit,
	}
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("framepipe: decoding config: %w", err)
	}
	c.Workers = raw.Workers
	c.TargetFPS = raw.TargetFPS
	c.QueueCapacity = raw.QueueCapacity
	c.RetryLimit = raw.RetryLimit
	if raw.WorkerTimeout != "" {
		d, err := time.ParseDuration(raw.WorkerTimeout)
		if err != nil {
			return fmt.Errorf("framepipe: parsing worker_timeout: %w", err)
		}
		c.WorkerTimeout = d
	}
	return nil
}

// MarshalYAML encodes the config with the timeout as a duration string,
// the same form UnmarshalYAML accepts.
func (c Config) MarshalYAML() (any, error) {
	return rawConfig{
		Workers:       c.Workers,
		TargetFPS:     c.TargetFPS,
		QueueCapacity: c.QueueCapacity,
		WorkerTimeout: c.WorkerTimeout.String(),
		RetryLimit:    c.RetryLimit,
	}, nil
}
