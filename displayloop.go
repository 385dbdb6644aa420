package framepipe

import (
	"context"
	"log/slog"
	"time"
)

// DisplayLoop drives the presentation surface at a fixed cadence.
//
// Each tick pulls the latest published frame from the triple buffer, hands
// its pixels to the Presenter, and records the tick for frame-rate
// accounting. The loop never waits on a worker: when no new frame arrived in
// time, the previous front is redisplayed; before the first frame, the tick
// presents nothing at all.
//
// Overrun policy: time.Ticker drops ticks a slow receiver misses, so a tick
// whose work exceeds the target interval is followed by the next tick
// immediately, with no catch-up burst.
type DisplayLoop struct {
	buffer    *TripleBuffer
	presenter Presenter
	interval  time.Duration
	fps       *FPSTracker
	stats     *Stats

	lastIndex uint64
}

// NewDisplayLoop creates a display loop ticking every interval.
func NewDisplayLoop(buffer *TripleBuffer, presenter Presenter, interval time.Duration, fps *FPSTracker, stats *Stats) *DisplayLoop {
	if stats == nil {
		stats = NewStats()
	}
	if fps == nil {
		fps = NewFPSTracker(0)
	}
	return &DisplayLoop{
		buffer:    buffer,
		presenter: presenter,
		interval:  interval,
		fps:       fps,
		stats:     stats,
	}
}

// Run ticks until ctx is cancelled.
func (l *DisplayLoop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			l.tick(now)
		}
	}
}

// tick performs one display-cadence step. Split out of Run so tests can
// drive the loop deterministically.
func (l *DisplayLoop) tick(now time.Time) {
	l.fps.RecordTick(now)

	f := l.buffer.AcquireLatest()
	if f == nil {
		return
	}
	if f.Index() == l.lastIndex {
		l.stats.framesRedisplayed.Add(1)
	} else {
		l.stats.framesPresented.Add(1)
		l.lastIndex = f.Index()
	}

	if err := l.presenter.Present(f.Pix(), f.Width(), f.Height()); err != nil {
		l.stats.presentErrors.Add(1)
		Logger().Warn("framepipe: present failed",
			slog.Uint64("index", f.Index()),
			slog.String("error", err.Error()))
	}
}
