package framepipe

import (
	"sync"
	"time"
)

// DefaultFPSWindow is the rolling window over which frame rate is measured.
const DefaultFPSWindow = time.Second

// FPSTracker measures the display tick rate over a rolling window.
// Pure bookkeeping: it is fed timestamps by the display loop and has no
// ordering dependency on any other component.
//
// FPSTracker is safe for concurrent use.
type FPSTracker struct {
	mu     sync.Mutex
	window time.Duration
	ticks  []time.Time
}

// NewFPSTracker creates a tracker with the given window.
// A window of 0 or less selects DefaultFPSWindow.
func NewFPSTracker(window time.Duration) *FPSTracker {
	if window <= 0 {
		window = DefaultFPSWindow
	}
	return &FPSTracker{window: window}
}

// RecordTick registers one display tick at the given instant.
func (t *FPSTracker) RecordTick(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pruneLocked(now)
	t.ticks = append(t.ticks, now)
}

// CurrentFPS returns the tick rate over the rolling window.
// The value decays to zero when ticks stop arriving.
func (t *FPSTracker) CurrentFPS() float64 {
	return t.fpsAt(time.Now())
}

// fpsAt computes the rate as of a given instant. Tests use it to avoid
// depending on the wall clock.
func (t *FPSTracker) fpsAt(now time.Time) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pruneLocked(now)
	return float64(len(t.ticks)) / t.window.Seconds()
}

// Reset forgets all recorded ticks.
func (t *FPSTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ticks = t.ticks[:0]
}

// pruneLocked drops ticks that fell out of the window. Caller holds t.mu.
func (t *FPSTracker) pruneLocked(now time.Time) {
	cutoff := now.Add(-t.window)
	i := 0
	for i < len(t.ticks) && !t.ticks[i].After(cutoff) {
		i++
	}
	if i > 0 {
		t.ticks = append(t.ticks[:0], t.ticks[i:]...)
	}
}
