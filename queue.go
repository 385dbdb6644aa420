package framepipe

import "sync"

// FrameQueue is a bounded reassembly buffer absorbing out-of-order worker
// completions.
//
// Frames are keyed by index; insertion order is irrelevant. The queue is
// biased toward freshness over completeness: when full it evicts its oldest
// entry to admit a newer completion, and TakeNewest always selects the
// highest buffered index, discarding everything older.
//
// FrameQueue is safe for concurrent use, though in the pipeline it is
// mutated only from the dispatcher goroutine.
type FrameQueue struct {
	mu       sync.Mutex
	frames   map[uint64]*Frame
	capacity int

	// lowWater is the smallest index still eligible for publication.
	// Completions below it are stale and rejected on insert.
	lowWater uint64

	// highest is the highest index ever inserted; valid once seen is true.
	highest uint64
	seen    bool

	stats *Stats
}

// NewFrameQueue creates a queue bounded at capacity frames.
// A capacity below 1 is clamped to 1.
func NewFrameQueue(capacity int, stats *Stats) *FrameQueue {
	if capacity < 1 {
		capacity = 1
	}
	if stats == nil {
		stats = NewStats()
	}
	return &FrameQueue{
		frames:   make(map[uint64]*Frame, capacity),
		capacity: capacity,
		stats:    stats,
	}
}

// Insert adds a completed frame and reports whether it was stored.
//
// Inserting an index already buffered is a no-op (idempotent insert).
// A frame below the low-water mark is stale and dropped. When the queue is
// full, the entry with the oldest index is evicted. If the incoming frame
// is itself the oldest, it is the one dropped.
func (q *FrameQueue) Insert(f *Frame) bool {
	if f == nil {
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	if f.Index() < q.lowWater {
		q.stats.staleFrames.Add(1)
		return false
	}
	if _, ok := q.frames[f.Index()]; ok {
		return false
	}

	if len(q.frames) >= q.capacity {
		oldest := q.oldestLocked()
		if f.Index() < oldest {
			q.stats.queueEvictions.Add(1)
			return false
		}
		delete(q.frames, oldest)
		q.stats.queueEvictions.Add(1)
	}

	q.frames[f.Index()] = f
	if !q.seen || f.Index() > q.highest {
		q.highest = f.Index()
		q.seen = true
	}
	return true
}

// TakeNewest returns, among buffered frames with index > after, the one with
// the highest index, removing it and every older entry. Older completions
// still buffered at that point are unrecoverably stale and are discarded.
//
// Returns (nil, false) when no eligible frame is buffered. Gaps in the index
// sequence are expected: an abandoned request simply never completes.
func (q *FrameQueue) TakeNewest(after uint64) (*Frame, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var best *Frame
	for idx, f := range q.frames {
		if idx <= after {
			continue
		}
		if best == nil || idx > best.Index() {
			best = f
		}
	}
	if best == nil {
		return nil, false
	}

	for idx := range q.frames {
		if idx <= best.Index() {
			if idx != best.Index() {
				q.stats.staleFrames.Add(1)
			}
			delete(q.frames, idx)
		}
	}
	if best.Index()+1 > q.lowWater {
		q.lowWater = best.Index() + 1
	}
	return best, true
}

// EvictOlderThan removes entries whose index is more than window behind the
// highest index seen and returns how many were evicted.
func (q *FrameQueue) EvictOlderThan(window uint64) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.seen {
		return 0
	}
	evicted := 0
	for idx := range q.frames {
		if q.highest-idx > window {
			delete(q.frames, idx)
			evicted++
		}
	}
	if evicted > 0 {
		q.stats.queueEvictions.Add(uint64(evicted))
	}
	return evicted
}

// Len returns the number of buffered frames.
func (q *FrameQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.frames)
}

// Capacity returns the queue bound.
func (q *FrameQueue) Capacity() int {
	return q.capacity
}

// oldestLocked returns the smallest buffered index. Caller holds q.mu and
// guarantees the queue is non-empty.
func (q *FrameQueue) oldestLocked() uint64 {
	first := true
	var oldest uint64
	for idx := range q.frames {
		if first || idx < oldest {
			oldest = idx
			first = false
		}
	}
	return oldest
}
