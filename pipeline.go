package framepipe

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Pipeline owns the full render-to-display flow: dispatcher, worker pool,
// reassembly queue, triple buffer, and display loop. It is the explicitly
// owned context object shared by the components; there are no package-level
// globals beyond the logger.
//
// Lifecycle: New -> Start -> Submit (any number of times) -> Stop.
type Pipeline struct {
	cfg   Config
	stats *Stats
	fps   *FPSTracker

	queue      *FrameQueue
	buffer     *TripleBuffer
	pool       *WorkerPool
	dispatcher *Dispatcher
	display    *DisplayLoop

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	group   *errgroup.Group
}

// New builds a pipeline from a validated configuration, the caller's
// renderer, and a presentation surface. An invalid configuration is the only
// error New returns besides missing collaborators; everything that can go
// wrong afterwards is recovered internally and reported through Stats.
func New(cfg Config, r Renderer, p Presenter, opts ...Option) (*Pipeline, error) {
	if r == nil {
		return nil, ErrNilRenderer
	}
	if p == nil {
		return nil, ErrNilPresenter
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultPipelineOptions()
	for _, opt := range opts {
		opt(&o)
	}

	stats := NewStats()
	fps := NewFPSTracker(o.fpsWindow)
	queue := NewFrameQueue(cfg.QueueCapacity, stats)
	buffer := NewTripleBuffer(stats)
	pool := NewWorkerPool(cfg.Workers, cfg.WorkerTimeout, r)
	dispatcher := NewDispatcher(pool, queue, buffer, stats, cfg, o.pendingLimit)
	display := NewDisplayLoop(buffer, p, cfg.interval(), fps, stats)

	return &Pipeline{
		cfg:        cfg,
		stats:      stats,
		fps:        fps,
		queue:      queue,
		buffer:     buffer,
		pool:       pool,
		dispatcher: dispatcher,
		display:    display,
	}, nil
}

// Start launches the worker pool, the dispatcher loop, and the display loop.
// It returns immediately; the pipeline runs until Stop is called or ctx is
// cancelled. A stopped pipeline may be started again; counters and frame
// indices carry over across restarts.
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)

	p.pool.Start(gctx)
	g.Go(func() error { return p.dispatcher.Run(gctx) })
	g.Go(func() error { return p.display.Run(gctx) })

	p.cancel = cancel
	p.group = g
	p.started = true

	Logger().Info("framepipe: pipeline started",
		slog.Int("workers", p.cfg.Workers),
		slog.Float64("target_fps", p.cfg.TargetFPS),
		slog.Int("queue_capacity", p.cfg.QueueCapacity))
	return nil
}

// Stop cancels the pipeline and waits for the dispatcher, display loop, and
// workers to exit. In-flight render attempts are interrupted through their
// contexts; their results are discarded.
func (p *Pipeline) Stop() error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return ErrNotStarted
	}
	cancel, group := p.cancel, p.group
	p.started = false
	p.cancel = nil
	p.group = nil
	p.mu.Unlock()

	cancel()
	err := group.Wait()
	p.pool.Close()

	Logger().Info("framepipe: pipeline stopped")
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Submit enqueues a render request for the given scene state and returns
// its frame index. Safe to call from any goroutine at any time; requests
// submitted before Start wait in the intake.
func (p *Pipeline) Submit(scene any) uint64 {
	return p.dispatcher.Submit(scene)
}

// Stats returns a snapshot of the pipeline counters.
func (p *Pipeline) Stats() StatsSnapshot {
	return p.stats.Snapshot()
}

// FPS returns the measured display rate over the rolling window.
func (p *Pipeline) FPS() float64 {
	return p.fps.CurrentFPS()
}

// FrontIndex returns the index of the frame currently exposed to the
// display, and false before any frame has been shown.
func (p *Pipeline) FrontIndex() (uint64, bool) {
	return p.buffer.FrontIndex()
}

// Config returns the configuration the pipeline was built with.
func (p *Pipeline) Config() Config {
	return p.cfg
}
