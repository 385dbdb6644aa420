package framepipe

import (
	"testing"
	"time"
)

func TestFPSTrackerCountsTicksInWindow(t *testing.T) {
	tr := NewFPSTracker(time.Second)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 60; i++ {
		tr.RecordTick(base.Add(time.Duration(i) * 16 * time.Millisecond))
	}

	got := tr.fpsAt(base.Add(960 * time.Millisecond))
	if got != 60 {
		t.Errorf("fps = %v, want 60", got)
	}
}

func TestFPSTrackerPrunesOldTicks(t *testing.T) {
	tr := NewFPSTracker(time.Second)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 30; i++ {
		tr.RecordTick(base.Add(time.Duration(i) * 10 * time.Millisecond))
	}

	// Two seconds later every tick has aged out.
	if got := tr.fpsAt(base.Add(2 * time.Second)); got != 0 {
		t.Errorf("fps after idle period = %v, want 0", got)
	}
}

func TestFPSTrackerPartialWindow(t *testing.T) {
	tr := NewFPSTracker(2 * time.Second)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 10; i++ {
		tr.RecordTick(base.Add(time.Duration(i) * 100 * time.Millisecond))
	}

	// 10 ticks over a 2s window reads as 5 fps.
	if got := tr.fpsAt(base.Add(time.Second)); got != 5 {
		t.Errorf("fps = %v, want 5", got)
	}
}

func TestFPSTrackerReset(t *testing.T) {
	tr := NewFPSTracker(time.Second)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tr.RecordTick(base)
	tr.Reset()
	if got := tr.fpsAt(base); got != 0 {
		t.Errorf("fps after Reset = %v, want 0", got)
	}
}

func TestFPSTrackerDefaultWindow(t *testing.T) {
	tr := NewFPSTracker(0)
	if tr.window != DefaultFPSWindow {
		t.Errorf("window = %v, want %v", tr.window, DefaultFPSWindow)
	}
}
