// Package framepipe provides a real-time frame-presentation pipeline for Go.
//
// # Overview
//
// framepipe distributes rendering work across a fixed pool of parallel
// workers, reassembles frames that complete out of order, and presents them
// to a display surface at a bounded target rate. The display path never
// blocks on a slow or stalled worker: a tick always presents the freshest
// frame available, redisplaying the previous one when nothing newer has
// arrived in time.
//
// # Quick Start
//
//	import "github.com/gogpu/framepipe"
//
//	cfg := framepipe.DefaultConfig()
//	p, err := framepipe.New(cfg, renderer, presenter)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := p.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Stop()
//
//	for scene := range scenes {
//	    p.Submit(scene)
//	}
//
// # Architecture
//
// Data flows Dispatcher -> WorkerPool -> FrameQueue -> TripleBuffer ->
// DisplayLoop. The dispatcher hands render requests to idle workers and
// retries failed ones; completed frames land in a bounded reassembly queue
// keyed by frame index; the freshest eligible frame is published into a
// three-slot hand-off buffer; an independent fixed-rate display loop pulls
// the most recently published frame and hands its pixels to the Presenter.
//
// Frame completion order across workers is unconstrained. Presentation order
// is guaranteed to be monotonic in frame index: a late-arriving stale frame
// is dropped and counted, never shown. Under sustained overload the pipeline
// skips frames rather than queueing them (freshest-wins policy), so gaps in
// the presented index sequence are expected and acceptable.
//
// # Rendering and Presentation
//
// The actual drawing is supplied by the caller through the Renderer
// interface; the display target through the Presenter interface. The
// surface subpackage ships CPU (image-backed) and gogpu-based presenters.
//
// # Observability
//
// All recoverable conditions (stale frames, queue evictions, worker
// timeouts, abandoned requests) are handled locally and surface only through
// counters; see Pipeline.Stats. The metrics subpackage exposes the same
// counters as a Prometheus collector. An invalid Config is the only fatal,
// caller-visible failure.
package framepipe

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"
)
