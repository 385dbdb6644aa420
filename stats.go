package framepipe

import "sync/atomic"

// Stats holds the pipeline's operational counters.
//
// All counters are monotonic and updated atomically; reading them at any
// time is safe and never blocks a pipeline goroutine. Recoverable errors
// (stale frames, evictions, worker timeouts, abandoned requests) surface
// exclusively through these counters and the logger; none of them
// propagates to the caller.
type Stats struct {
	framesPresented   atomic.Uint64
	framesRedisplayed atomic.Uint64
	staleFrames       atomic.Uint64
	queueEvictions    atomic.Uint64
	pendingDropped    atomic.Uint64
	workerTimeouts    atomic.Uint64
	workerFailures    atomic.Uint64
	retries           atomic.Uint64
	abandonedRequests atomic.Uint64
	presentErrors     atomic.Uint64
}

// NewStats creates an empty counter set.
func NewStats() *Stats {
	return &Stats{}
}

// StatsSnapshot is a point-in-time copy of the pipeline counters.
type StatsSnapshot struct {
	// FramesPresented counts ticks that displayed a frame not shown before.
	FramesPresented uint64

	// FramesRedisplayed counts ticks that re-showed the previous front
	// because no newer frame had arrived in time.
	FramesRedisplayed uint64

	// StaleFrames counts completed frames discarded because a strictly
	// newer frame had already been published or selected.
	StaleFrames uint64

	// QueueEvictions counts frames evicted from the reassembly queue,
	// either by the capacity bound or by the freshness window.
	QueueEvictions uint64

	// PendingDropped counts render requests dropped before assignment
	// because the dispatcher's pending queue was full.
	PendingDropped uint64

	// WorkerTimeouts counts render attempts that exceeded the configured
	// worker timeout.
	WorkerTimeouts uint64

	// WorkerFailures counts render attempts that failed for any reason,
	// timeouts included.
	WorkerFailures uint64

	// Retries counts re-submissions of failed render requests.
	Retries uint64

	// AbandonedRequests counts requests dropped after exhausting the
	// retry limit. Their indices are never completed.
	AbandonedRequests uint64

	// PresentErrors counts presentation-surface failures.
	PresentErrors uint64
}

// Snapshot returns a consistent-enough copy of all counters.
// Counters are read individually; the snapshot is not a single atomic
// cut across all of them, which is fine for monitoring purposes.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		FramesPresented:   s.framesPresented.Load(),
		FramesRedisplayed: s.framesRedisplayed.Load(),
		StaleFrames:       s.staleFrames.Load(),
		QueueEvictions:    s.queueEvictions.Load(),
		PendingDropped:    s.pendingDropped.Load(),
		WorkerTimeouts:    s.workerTimeouts.Load(),
		WorkerFailures:    s.workerFailures.Load(),
		Retries:           s.retries.Load(),
		AbandonedRequests: s.abandonedRequests.Load(),
		PresentErrors:     s.presentErrors.Load(),
	}
}
