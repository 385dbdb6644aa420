package framepipe

import "time"

// Option configures a Pipeline during creation.
//
// Example:
//
//	p, err := framepipe.New(cfg, renderer, presenter,
//	    framepipe.WithFPSWindow(2*time.Second))
type Option func(*pipelineOptions)

// pipelineOptions holds optional configuration for Pipeline creation.
type pipelineOptions struct {
	fpsWindow    time.Duration
	pendingLimit int
}

// defaultPipelineOptions returns the default pipeline options.
func defaultPipelineOptions() pipelineOptions {
	return pipelineOptions{
		fpsWindow:    DefaultFPSWindow,
		pendingLimit: 0, // derived from QueueCapacity when unset
	}
}

// WithFPSWindow sets the rolling window used for frame-rate measurement.
func WithFPSWindow(window time.Duration) Option {
	return func(o *pipelineOptions) {
		if window > 0 {
			o.fpsWindow = window
		}
	}
}

// WithPendingLimit bounds how many submitted requests may wait for an idle
// worker before the oldest is dropped. Defaults to the queue capacity.
func WithPendingLimit(n int) Option {
	return func(o *pipelineOptions) {
		if n > 0 {
			o.pendingLimit = n
		}
	}
}
