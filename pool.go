package framepipe

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Result carries one worker completion or failure into the dispatcher.
// Exactly one Result is delivered per assigned request: Frame on success,
// Err on failure (timeout, crash, or renderer error).
type Result struct {
	WorkerID int
	Index    uint64
	Frame    *Frame
	Err      error
}

// WorkerPool is a fixed-size set of parallel rendering workers.
//
// Each worker runs exactly one request at a time to completion and reports
// through a shared results channel, never via callback reentrancy. A worker whose
// render attempt times out reports failure and becomes eligible for the next
// request immediately: the failure is transient, the worker is not evicted
// from the pool, and a late result from the abandoned attempt is discarded.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers  int
	renderer Renderer
	timeout  time.Duration

	// jobs holds one single-slot mailbox per worker. busy[i] guards it:
	// while busy[i] is true the slot may be occupied, so TrySubmitTo only
	// sends after winning the false->true CAS, which guarantees the send
	// never blocks.
	jobs []chan RenderRequest
	busy []atomic.Bool

	// completed tracks per-worker finished attempts for utilization
	// diagnostics.
	completed []atomic.Uint64

	results chan Result
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewWorkerPool creates a pool with the specified number of workers.
// If workers is 0 or negative, GOMAXPROCS is used. Workers do not run until
// Start is called.
func NewWorkerPool(workers int, timeout time.Duration, r Renderer) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &WorkerPool{
		workers:   workers,
		renderer:  r,
		timeout:   timeout,
		jobs:      make([]chan RenderRequest, workers),
		busy:      make([]atomic.Bool, workers),
		completed: make([]atomic.Uint64, workers),
		results:   make(chan Result, workers*2),
		done:      make(chan struct{}),
	}
	for i := range workers {
		p.jobs[i] = make(chan RenderRequest, 1)
	}
	return p
}

// Start launches the worker goroutines. The workers stop when ctx is
// cancelled or Close is called. A closed pool may be started again.
func (p *WorkerPool) Start(ctx context.Context) {
	if !p.running.CompareAndSwap(false, true) {
		return
	}
	// A previous Close left done closed and may have left busy flags set
	// or stale jobs in the mailboxes; reset so the workers start clean.
	p.done = make(chan struct{})
	for i := range p.workers {
		select {
		case <-p.jobs[i]:
		default:
		}
		p.busy[i].Store(false)
	}
	p.wg.Add(p.workers)
	for i := range p.workers {
		go p.worker(ctx, i)
	}
}

// worker is the main loop for each worker goroutine.
func (p *WorkerPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.done:
			return
		case <-ctx.Done():
			return
		case req := <-p.jobs[id]:
			res := p.render(ctx, id, req)
			p.completed[id].Add(1)
			// The slot is drained, so clear busy before delivering the
			// result: by the time the dispatcher handles it, the worker
			// already reads as idle and can be assigned the next
			// request. An early next job simply waits in the mailbox.
			p.busy[id].Store(false)
			select {
			case p.results <- res:
			case <-p.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}
}

// render executes one attempt under the pool's timeout.
//
// The renderer runs in an inner goroutine so that an attempt which ignores
// ctx cannot wedge the worker: on timeout the worker reports failure and
// moves on, and the straggler's eventual result is dropped on the floor
// (outcome channel is buffered, never read again).
func (p *WorkerPool) render(ctx context.Context, id int, req RenderRequest) Result {
	rctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	outcome := make(chan Result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				outcome <- Result{
					WorkerID: id,
					Index:    req.Index,
					Err:      fmt.Errorf("%w: %v", ErrWorkerPanic, r),
				}
			}
		}()
		f, err := p.renderer.RenderFrame(rctx, req)
		switch {
		case err != nil:
			outcome <- Result{WorkerID: id, Index: req.Index, Err: err}
		case f == nil:
			outcome <- Result{WorkerID: id, Index: req.Index, Err: ErrNilFrame}
		default:
			outcome <- Result{
				WorkerID: id,
				Index:    req.Index,
				Frame:    f.stamp(id, time.Now()),
			}
		}
	}()

	select {
	case res := <-outcome:
		return res
	case <-rctx.Done():
		Logger().Debug("framepipe: render attempt timed out",
			slog.Int("worker", id),
			slog.Uint64("index", req.Index),
			slog.Duration("timeout", p.timeout))
		return Result{
			WorkerID: id,
			Index:    req.Index,
			Err:      fmt.Errorf("%w: attempt exceeded %v", ErrWorkerTimeout, p.timeout),
		}
	}
}

// TrySubmitTo hands one request to a specific worker. It returns false
// without blocking when that worker is busy.
func (p *WorkerPool) TrySubmitTo(workerID int, req RenderRequest) bool {
	if workerID < 0 || workerID >= p.workers || !p.running.Load() {
		return false
	}
	if !p.busy[workerID].CompareAndSwap(false, true) {
		return false
	}
	select {
	case p.jobs[workerID] <- req:
		return true
	default:
		// Unreachable while the busy flag discipline holds, but never
		// block the dispatcher on a full slot.
		p.busy[workerID].Store(false)
		return false
	}
}

// TrySubmit hands one request to any idle worker, returning the chosen
// worker id. ok is false when every worker is busy.
func (p *WorkerPool) TrySubmit(req RenderRequest) (workerID int, ok bool) {
	for i := range p.workers {
		if p.TrySubmitTo(i, req) {
			return i, true
		}
	}
	return 0, false
}

// Results returns the channel on which completions and failures arrive.
func (p *WorkerPool) Results() <-chan Result {
	return p.results
}

// Workers returns the pool size.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IdleWorkers returns how many workers are currently free to accept work.
func (p *WorkerPool) IdleWorkers() int {
	idle := 0
	for i := range p.workers {
		if !p.busy[i].Load() {
			idle++
		}
	}
	return idle
}

// CompletedByWorker returns per-worker counts of finished attempts,
// successes and failures alike. Utilization bookkeeping for diagnostics.
func (p *WorkerPool) CompletedByWorker() []uint64 {
	counts := make([]uint64, p.workers)
	for i := range p.workers {
		counts[i] = p.completed[i].Load()
	}
	return counts
}

// Close stops all workers and waits for them to exit.
// Close is safe to call multiple times.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}
