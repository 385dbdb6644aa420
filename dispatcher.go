package framepipe

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"
)

// inflight tracks one assigned request so a failure can be retried with its
// original scene state.
type inflight struct {
	req     RenderRequest
	retries int
}

// Dispatcher assigns outstanding render requests to free workers, tracks
// in-flight requests, and feeds completed frames through the reassembly
// queue into the triple buffer.
//
// All dispatcher state except index issuance is owned by the single Run
// goroutine; submissions and worker results reach it over channels, so no
// callback ever touches shared maps concurrently.
type Dispatcher struct {
	pool   *WorkerPool
	queue  *FrameQueue
	buffer *TripleBuffer
	stats  *Stats

	retryLimit int
	window     uint64

	// pendingLimit bounds the wait list of unassigned requests. On
	// overflow the oldest pending request is dropped: under sustained
	// overload fresher scene state beats older, same as everywhere else
	// in the pipeline.
	pendingLimit int

	nextIndex atomic.Uint64

	submitCh chan RenderRequest

	// Owned by the Run goroutine.
	pending       []inflight
	assigned      map[uint64]inflight
	lastPublished uint64

	// Mirrors of loop-owned sizes, readable from any goroutine.
	pendingCount  atomic.Int64
	inflightCount atomic.Int64
}

// NewDispatcher wires a dispatcher to its collaborators. The eviction
// window and pending bound derive from cfg.QueueCapacity unless overridden
// through pipeline options.
func NewDispatcher(pool *WorkerPool, queue *FrameQueue, buffer *TripleBuffer, stats *Stats, cfg Config, pendingLimit int) *Dispatcher {
	if stats == nil {
		stats = NewStats()
	}
	if pendingLimit < 1 {
		pendingLimit = cfg.QueueCapacity
		if pendingLimit < 1 {
			pendingLimit = 1
		}
	}
	return &Dispatcher{
		pool:         pool,
		queue:        queue,
		buffer:       buffer,
		stats:        stats,
		retryLimit:   cfg.RetryLimit,
		window:       uint64(cfg.QueueCapacity),
		pendingLimit: pendingLimit,
		submitCh:     make(chan RenderRequest, pendingLimit),
		assigned:     make(map[uint64]inflight),
	}
}

// Submit enqueues a new render request with the next sequential index and
// returns that index. Indices start at 1 and are never reused.
//
// Submit never blocks: if the dispatcher cannot keep up and its intake is
// full, the new request is dropped and counted. Its index is simply never
// completed, which downstream components already tolerate.
func (d *Dispatcher) Submit(scene any) uint64 {
	idx := d.nextIndex.Add(1)
	req := RenderRequest{Index: idx, Scene: scene, IssuedAt: time.Now()}
	select {
	case d.submitCh <- req:
	default:
		d.stats.pendingDropped.Add(1)
		Logger().Debug("framepipe: submit intake full, dropping request",
			slog.Uint64("index", idx))
	}
	return idx
}

// Run is the dispatcher's control flow. It blocks until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-d.submitCh:
			d.enqueue(inflight{req: req})
			d.assign()
			d.sync()
		case res := <-d.pool.Results():
			d.handleResult(res)
			d.assign()
			d.sync()
		}
	}
}

// enqueue appends to the pending list, dropping the oldest entry when the
// bound is exceeded.
func (d *Dispatcher) enqueue(in inflight) {
	d.pending = append(d.pending, in)
	if len(d.pending) > d.pendingLimit {
		dropped := d.pending[0]
		d.pending = d.pending[1:]
		d.stats.pendingDropped.Add(1)
		Logger().Debug("framepipe: pending queue full, dropping oldest request",
			slog.Uint64("index", dropped.req.Index))
	}
}

// retry re-queues a failed request at the head of the pending list so it is
// reassigned before newer submissions.
func (d *Dispatcher) retry(in inflight) {
	in.retries++
	d.stats.retries.Add(1)
	d.pending = append([]inflight{in}, d.pending...)
	if len(d.pending) > d.pendingLimit {
		dropped := d.pending[len(d.pending)-1]
		d.pending = d.pending[:len(d.pending)-1]
		d.stats.pendingDropped.Add(1)
		Logger().Debug("framepipe: pending queue full, dropping newest request",
			slog.Uint64("index", dropped.req.Index))
	}
}

// assign hands pending requests to idle workers until one side runs out.
func (d *Dispatcher) assign() {
	for len(d.pending) > 0 {
		in := d.pending[0]
		workerID, ok := d.pool.TrySubmit(in.req)
		if !ok {
			return
		}
		d.pending = d.pending[1:]
		d.assigned[in.req.Index] = in
		Logger().Debug("framepipe: assigned request",
			slog.Uint64("index", in.req.Index),
			slog.Int("worker", workerID),
			slog.Int("attempt", in.retries+1))
	}
}

// handleResult processes one worker completion or failure.
func (d *Dispatcher) handleResult(res Result) {
	in, ok := d.assigned[res.Index]
	if !ok {
		// Result for a request this dispatcher no longer tracks.
		Logger().Debug("framepipe: result for untracked request",
			slog.Uint64("index", res.Index))
		return
	}
	delete(d.assigned, res.Index)

	if res.Err != nil {
		d.stats.workerFailures.Add(1)
		if errors.Is(res.Err, ErrWorkerTimeout) {
			d.stats.workerTimeouts.Add(1)
		}
		if in.retries < d.retryLimit {
			d.retry(in)
			return
		}
		d.stats.abandonedRequests.Add(1)
		Logger().Warn("framepipe: abandoning render request",
			slog.Uint64("index", res.Index),
			slog.Int("attempts", in.retries+1),
			slog.String("error", res.Err.Error()))
		return
	}

	d.queue.Insert(res.Frame)
	d.queue.EvictOlderThan(d.window)
	d.pump()
}

// pump moves the freshest eligible frame from the reassembly queue into the
// triple buffer.
func (d *Dispatcher) pump() {
	f, ok := d.queue.TakeNewest(d.lastPublished)
	if !ok {
		return
	}
	if d.buffer.Publish(f) {
		d.lastPublished = f.Index()
	}
}

// Pending returns how many submitted requests await an idle worker.
func (d *Dispatcher) Pending() int {
	return int(d.pendingCount.Load())
}

// InFlight returns how many requests are currently assigned to workers.
func (d *Dispatcher) InFlight() int {
	return int(d.inflightCount.Load())
}

// sync refreshes the externally readable size mirrors.
// Called from the Run goroutine after every state change.
func (d *Dispatcher) sync() {
	d.pendingCount.Store(int64(len(d.pending)))
	d.inflightCount.Store(int64(len(d.assigned)))
}
