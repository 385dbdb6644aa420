package framepipe

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestDispatcher(cfg Config) (*Dispatcher, *FrameQueue, *TripleBuffer, *Stats) {
	stats := NewStats()
	queue := NewFrameQueue(cfg.QueueCapacity, stats)
	buffer := NewTripleBuffer(stats)
	pool := NewWorkerPool(cfg.Workers, cfg.WorkerTimeout, immediateRenderer())
	d := NewDispatcher(pool, queue, buffer, stats, cfg, 0)
	return d, queue, buffer, stats
}

func TestDispatcherSubmitIssuesSequentialIndices(t *testing.T) {
	d, _, _, _ := newTestDispatcher(DefaultConfig())

	for want := uint64(1); want <= 5; want++ {
		if got := d.Submit(nil); got != want {
			t.Fatalf("Submit returned index %d, want %d", got, want)
		}
	}
}

func TestDispatcherSubmitDropsWhenIntakeFull(t *testing.T) {
	cfg := DefaultConfig()
	cfg.QueueCapacity = 2
	d, _, _, stats := newTestDispatcher(cfg)

	// No Run loop draining the intake: submissions past the channel
	// capacity are dropped, but indices keep advancing.
	for i := 0; i < 5; i++ {
		d.Submit(nil)
	}
	if got := stats.Snapshot().PendingDropped; got != 3 {
		t.Errorf("PendingDropped = %d, want 3", got)
	}
	if got := d.Submit(nil); got != 6 {
		t.Errorf("next index = %d, want 6", got)
	}
}

func TestDispatcherSuccessReachesBuffer(t *testing.T) {
	d, queue, buffer, _ := newTestDispatcher(DefaultConfig())

	d.assigned[1] = inflight{req: RenderRequest{Index: 1}}
	d.handleResult(Result{Index: 1, Frame: testFrame(1)})

	if queue.Len() != 0 {
		t.Errorf("queue retained the published frame, Len = %d", queue.Len())
	}
	if idx, ok := buffer.FrontIndex(); ok || idx != 0 {
		// Published but not yet acquired: front is still empty.
		t.Errorf("FrontIndex = %d, %v before acquire", idx, ok)
	}
	f := buffer.AcquireLatest()
	if f == nil || f.Index() != 1 {
		t.Fatalf("AcquireLatest = %v, want frame 1", f)
	}
}

func TestDispatcherFreshestWins(t *testing.T) {
	d, _, buffer, stats := newTestDispatcher(DefaultConfig())

	// Workers complete far out of order.
	for _, idx := range []uint64{5, 3, 4, 1, 2} {
		d.assigned[idx] = inflight{req: RenderRequest{Index: idx}}
		d.handleResult(Result{Index: idx, Frame: testFrame(idx)})
	}

	f := buffer.AcquireLatest()
	if f == nil || f.Index() != 5 {
		t.Fatalf("AcquireLatest = %v, want frame 5", f)
	}
	// 1 through 4 all arrived after 5 was published and were discarded.
	if got := stats.Snapshot().StaleFrames; got != 4 {
		t.Errorf("StaleFrames = %d, want 4", got)
	}
}

func TestDispatcherRetriesThenAbandons(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RetryLimit = 2
	d, queue, buffer, stats := newTestDispatcher(cfg)

	renderErr := errors.New("scene unrenderable")
	in := inflight{req: RenderRequest{Index: 1}}
	attempts := 0
	for {
		attempts++
		d.assigned[1] = in
		d.handleResult(Result{Index: 1, Err: renderErr})
		if len(d.pending) == 0 {
			break
		}
		in = d.pending[0]
		d.pending = d.pending[:0]
	}

	// Initial attempt plus exactly RetryLimit retries.
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	snap := stats.Snapshot()
	if snap.Retries != 2 {
		t.Errorf("Retries = %d, want 2", snap.Retries)
	}
	if snap.AbandonedRequests != 1 {
		t.Errorf("AbandonedRequests = %d, want 1", snap.AbandonedRequests)
	}
	if snap.WorkerFailures != 3 {
		t.Errorf("WorkerFailures = %d, want 3", snap.WorkerFailures)
	}
	// The abandoned index never produces a frame anywhere downstream.
	if queue.Len() != 0 {
		t.Error("abandoned request left a frame in the queue")
	}
	if f := buffer.AcquireLatest(); f != nil {
		t.Errorf("abandoned request reached the buffer: %v", f)
	}
}

func TestDispatcherCountsTimeouts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RetryLimit = 0
	d, _, _, stats := newTestDispatcher(cfg)

	d.assigned[1] = inflight{req: RenderRequest{Index: 1}}
	d.handleResult(Result{Index: 1, Err: ErrWorkerTimeout})

	snap := stats.Snapshot()
	if snap.WorkerTimeouts != 1 {
		t.Errorf("WorkerTimeouts = %d, want 1", snap.WorkerTimeouts)
	}
	if snap.WorkerFailures != 1 {
		t.Errorf("WorkerFailures = %d, want 1", snap.WorkerFailures)
	}
	if snap.AbandonedRequests != 1 {
		t.Errorf("AbandonedRequests = %d, want 1", snap.AbandonedRequests)
	}
}

func TestDispatcherIgnoresUntrackedResult(t *testing.T) {
	d, queue, _, stats := newTestDispatcher(DefaultConfig())

	d.handleResult(Result{Index: 99, Frame: testFrame(99)})

	if queue.Len() != 0 {
		t.Error("untracked result was inserted into the queue")
	}
	if got := stats.Snapshot().WorkerFailures; got != 0 {
		t.Errorf("WorkerFailures = %d, want 0", got)
	}
}

func TestDispatcherPendingBound(t *testing.T) {
	cfg := DefaultConfig()
	cfg.QueueCapacity = 3
	d, _, _, stats := newTestDispatcher(cfg)

	for i := uint64(1); i <= 5; i++ {
		d.enqueue(inflight{req: RenderRequest{Index: i}})
	}
	if len(d.pending) != 3 {
		t.Fatalf("pending length = %d, want 3", len(d.pending))
	}
	// The oldest submissions were sacrificed.
	if d.pending[0].req.Index != 3 {
		t.Errorf("oldest surviving index = %d, want 3", d.pending[0].req.Index)
	}
	if got := stats.Snapshot().PendingDropped; got != 2 {
		t.Errorf("PendingDropped = %d, want 2", got)
	}
}

func TestDispatcherRetryPreemptsPending(t *testing.T) {
	d, _, _, _ := newTestDispatcher(DefaultConfig())

	d.enqueue(inflight{req: RenderRequest{Index: 10}})
	d.retry(inflight{req: RenderRequest{Index: 4}})

	if d.pending[0].req.Index != 4 {
		t.Errorf("head of pending = %d, want retried index 4", d.pending[0].req.Index)
	}
	if d.pending[0].retries != 1 {
		t.Errorf("retry count = %d, want 1", d.pending[0].retries)
	}
}

func TestDispatcherRunEndToEnd(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 2
	cfg.WorkerTimeout = time.Second
	cfg.QueueCapacity = 32 // roomy intake so no submission is shed
	d, _, buffer, _ := newTestDispatcher(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.pool.Start(ctx)
	defer d.pool.Close()

	runDone := make(chan error, 1)
	go func() { runDone <- d.Run(ctx) }()

	const n = 20
	for i := 0; i < n; i++ {
		d.Submit(i)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		if idx, ok := buffer.FrontIndex(); ok && idx == n {
			break
		}
		if time.Now().After(deadline) {
			idx, _ := buffer.FrontIndex()
			t.Fatalf("front index stalled at %d, want %d", idx, n)
		}
		buffer.AcquireLatest()
		time.Sleep(time.Millisecond)
	}

	cancel()
	if err := <-runDone; !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v, want context.Canceled", err)
	}
}

func TestDispatcherAssignsBacklogOnResult(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 1
	cfg.WorkerTimeout = time.Second
	d, _, buffer, _ := newTestDispatcher(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.pool.Start(ctx)
	defer d.pool.Close()
	go d.Run(ctx)

	// Two requests, one worker: the second waits in pending and must be
	// assigned when the first result comes back, with no further
	// submissions to nudge the loop.
	d.Submit(nil)
	d.Submit(nil)

	deadline := time.Now().Add(5 * time.Second)
	for {
		if idx, ok := buffer.FrontIndex(); ok && idx == 2 {
			break
		}
		if time.Now().After(deadline) {
			idx, _ := buffer.FrontIndex()
			t.Fatalf("backlogged request never rendered, front index %d, want 2", idx)
		}
		buffer.AcquireLatest()
		time.Sleep(time.Millisecond)
	}
}
