package framepipe

import "sync"

// TripleBuffer is the hand-off point between the publication path and the
// display loop: one writer publishes completed frames, one reader pulls the
// most recently published frame, and neither ever waits for the other.
//
// It is an arena of three frame slots with rotating roles. Front holds the
// frame currently exposed to the reader, Ready the latest frame eligible for
// pick-up, and Back the slot the next publish writes into. Frames arrive
// fully constructed, so a publish is a pointer swap: the critical section
// never copies a pixel payload, and a frame visible to the reader is never
// written again.
type TripleBuffer struct {
	mu    sync.Mutex
	slots [3]*Frame

	front    int
	ready    int
	back     int
	hasReady bool

	stats *Stats
}

// NewTripleBuffer creates an empty hand-off buffer.
func NewTripleBuffer(stats *Stats) *TripleBuffer {
	if stats == nil {
		stats = NewStats()
	}
	return &TripleBuffer{
		front: 0,
		ready: 1,
		back:  2,
		stats: stats,
	}
}

// Publish offers a frame to the reader and reports whether it was accepted.
//
// A frame whose index does not exceed both the current front and any pending
// ready frame is stale: the display has already moved past it (or is about
// to), so it is dropped and counted, never shown. This is the
// monotonic-display invariant: the presented index sequence never
// decreases, no matter in what order workers complete.
//
// Publishing twice before the reader picks up simply replaces the pending
// ready frame; the skipped frame is released.
func (b *TripleBuffer) Publish(f *Frame) bool {
	if f == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if cur := b.slots[b.front]; cur != nil && f.Index() <= cur.Index() {
		b.stats.staleFrames.Add(1)
		return false
	}
	if b.hasReady {
		if rdy := b.slots[b.ready]; rdy != nil && f.Index() <= rdy.Index() {
			b.stats.staleFrames.Add(1)
			return false
		}
	}

	b.slots[b.back] = f
	b.back, b.ready = b.ready, b.back
	// The new back slot holds at most a superseded ready frame; release it.
	b.slots[b.back] = nil
	b.hasReady = true
	return true
}

// AcquireLatest returns the frame the display should show now.
//
// When a newer ready frame exists, the ready and front roles swap and the
// new front is returned; otherwise the existing front is returned unchanged.
// Before the first publish it returns nil. The caller may hold the returned
// frame until its next call; the writer never mutates a published frame.
func (b *TripleBuffer) AcquireLatest() *Frame {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.hasReady {
		b.front, b.ready = b.ready, b.front
		b.hasReady = false
		// Release the superseded front so its payload can be reclaimed
		// once the reader lets go of it.
		b.slots[b.ready] = nil
	}
	return b.slots[b.front]
}

// FrontIndex returns the index of the currently exposed frame.
// ok is false before the first frame reaches the front.
func (b *TripleBuffer) FrontIndex() (index uint64, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if f := b.slots[b.front]; f != nil {
		return f.Index(), true
	}
	return 0, false
}
