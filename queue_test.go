package framepipe

import "testing"

// testFrame builds a minimal frame for queue and buffer tests.
func testFrame(index uint64) *Frame {
	return NewFrame(index, 2, 2, make([]byte, 16))
}

func TestFrameQueueInsertAndTake(t *testing.T) {
	q := NewFrameQueue(8, nil)

	for _, idx := range []uint64{3, 1, 2} {
		if !q.Insert(testFrame(idx)) {
			t.Errorf("Insert(%d) = false, want true", idx)
		}
	}
	if q.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", q.Len())
	}

	f, ok := q.TakeNewest(0)
	if !ok {
		t.Fatal("TakeNewest(0) found nothing")
	}
	if f.Index() != 3 {
		t.Errorf("TakeNewest returned index %d, want 3", f.Index())
	}
	if q.Len() != 0 {
		t.Errorf("older entries not discarded, Len() = %d", q.Len())
	}
}

func TestFrameQueueTakeNewestRespectsAfter(t *testing.T) {
	q := NewFrameQueue(8, nil)
	q.Insert(testFrame(5))

	if _, ok := q.TakeNewest(5); ok {
		t.Error("TakeNewest(5) should not return index 5")
	}
	if f, ok := q.TakeNewest(4); !ok || f.Index() != 5 {
		t.Errorf("TakeNewest(4) = %v, %v, want frame 5", f, ok)
	}
}

func TestFrameQueueIdempotentInsert(t *testing.T) {
	q := NewFrameQueue(8, nil)

	if !q.Insert(testFrame(7)) {
		t.Fatal("first insert failed")
	}
	if q.Insert(testFrame(7)) {
		t.Error("duplicate insert should be ignored")
	}
	if q.Len() != 1 {
		t.Errorf("Len() = %d, want 1", q.Len())
	}
}

func TestFrameQueueRejectsStale(t *testing.T) {
	stats := NewStats()
	q := NewFrameQueue(8, stats)

	q.Insert(testFrame(10))
	if _, ok := q.TakeNewest(0); !ok {
		t.Fatal("TakeNewest failed")
	}

	// 10 was published; anything at or below it is stale now.
	if q.Insert(testFrame(4)) {
		t.Error("insert below low-water mark should be rejected")
	}
	if got := stats.Snapshot().StaleFrames; got != 1 {
		t.Errorf("StaleFrames = %d, want 1", got)
	}
}

func TestFrameQueueCapacityBound(t *testing.T) {
	stats := NewStats()
	q := NewFrameQueue(4, stats)

	for idx := uint64(1); idx <= 20; idx++ {
		q.Insert(testFrame(idx))
		if q.Len() > 4 {
			t.Fatalf("queue grew to %d entries, capacity is 4", q.Len())
		}
	}
	if got := stats.Snapshot().QueueEvictions; got != 16 {
		t.Errorf("QueueEvictions = %d, want 16", got)
	}

	// The four freshest frames survived.
	f, ok := q.TakeNewest(0)
	if !ok || f.Index() != 20 {
		t.Errorf("TakeNewest = %v, %v, want frame 20", f, ok)
	}
}

func TestFrameQueueEvictsOldestNotNewest(t *testing.T) {
	q := NewFrameQueue(2, nil)

	q.Insert(testFrame(10))
	q.Insert(testFrame(20))
	q.Insert(testFrame(30)) // evicts 10

	if f, ok := q.TakeNewest(0); !ok || f.Index() != 30 {
		t.Fatalf("TakeNewest = %v, %v, want frame 30", f, ok)
	}
}

func TestFrameQueueFullDropsIncomingIfOldest(t *testing.T) {
	q := NewFrameQueue(2, nil)

	q.Insert(testFrame(10))
	q.Insert(testFrame(20))

	// 5 is older than everything buffered; with the queue full it is the
	// eviction candidate itself.
	if q.Insert(testFrame(5)) {
		t.Error("oldest incoming frame should be dropped when queue is full")
	}
	if q.Len() != 2 {
		t.Errorf("Len() = %d, want 2", q.Len())
	}
}

func TestFrameQueueEvictOlderThan(t *testing.T) {
	stats := NewStats()
	q := NewFrameQueue(16, stats)

	for _, idx := range []uint64{1, 2, 9, 10} {
		q.Insert(testFrame(idx))
	}

	evicted := q.EvictOlderThan(4)
	if evicted != 2 {
		t.Errorf("EvictOlderThan(4) = %d, want 2", evicted)
	}
	if q.Len() != 2 {
		t.Errorf("Len() = %d, want 2", q.Len())
	}
	if got := stats.Snapshot().QueueEvictions; got != 2 {
		t.Errorf("QueueEvictions = %d, want 2", got)
	}
}

func TestFrameQueueTakeNewestEmpty(t *testing.T) {
	q := NewFrameQueue(4, nil)
	if _, ok := q.TakeNewest(0); ok {
		t.Error("TakeNewest on empty queue should report no frame")
	}
}
