package framepipe

import "context"

// Renderer executes one render request to completion and returns the
// finished frame. Implementations own the actual drawing; the pipeline
// treats the result as an opaque pixel payload.
//
// RenderFrame is called from worker goroutines, possibly concurrently for
// different requests, and must honor ctx: when the deadline passes the
// attempt is already considered failed and a late result is discarded.
// The returned frame must carry the request's index (use NewFrame with
// req.Index).
type Renderer interface {
	RenderFrame(ctx context.Context, req RenderRequest) (*Frame, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, req RenderRequest) (*Frame, error)

// RenderFrame calls f.
func (f RendererFunc) RenderFrame(ctx context.Context, req RenderRequest) (*Frame, error) {
	return f(ctx, req)
}

// Presenter is the display surface consumed by the display loop.
//
// Present hands over one frame's pixel payload; it is expected to be
// synchronous and return within bounded copy/draw time. The payload must be
// treated as read-only and not retained past the call. Present runs on the
// display goroutine only.
//
// The surface subpackage provides CPU- and GPU-backed implementations.
type Presenter interface {
	Present(pix []byte, width, height int) error
}

// PresenterFunc adapts a function to the Presenter interface.
type PresenterFunc func(pix []byte, width, height int) error

// Present calls f.
func (f PresenterFunc) Present(pix []byte, width, height int) error {
	return f(pix, width, height)
}
