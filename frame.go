package framepipe

import (
	"time"

	"github.com/gogpu/gputypes"
)

// Frame is one fully rendered, indexed unit of output ready for presentation.
//
// A Frame is immutable once constructed. Ownership of the pixel payload
// transfers to the Frame at construction; the producer must not write to the
// slice afterwards. Indices are issued by the Dispatcher, start at 1, and are
// strictly increasing; index 0 never names a real frame.
type Frame struct {
	index       uint64
	width       int
	height      int
	pix         []byte
	format      gputypes.TextureFormat
	workerID    int
	completedAt time.Time
}

// NewFrame constructs a frame from a completed pixel payload.
// The payload is RGBA, 4 bytes per pixel, row-major with no padding.
// Ownership of pix transfers to the frame.
func NewFrame(index uint64, width, height int, pix []byte) *Frame {
	return &Frame{
		index:  index,
		width:  width,
		height: height,
		pix:    pix,
		format: gputypes.TextureFormatRGBA8Unorm,
	}
}

// NewFrameWithFormat is like NewFrame for payloads in a non-RGBA8 format.
// The pipeline passes the payload through untouched; interpreting the format
// is the presenter's concern.
func NewFrameWithFormat(index uint64, width, height int, pix []byte, format gputypes.TextureFormat) *Frame {
	f := NewFrame(index, width, height, pix)
	f.format = format
	return f
}

// Index returns the frame's render-request index.
func (f *Frame) Index() uint64 { return f.index }

// Width returns the frame width in pixels.
func (f *Frame) Width() int { return f.width }

// Height returns the frame height in pixels.
func (f *Frame) Height() int { return f.height }

// Pix returns the pixel payload. Callers must treat it as read-only.
func (f *Frame) Pix() []byte { return f.pix }

// Format returns the pixel format of the payload.
func (f *Frame) Format() gputypes.TextureFormat { return f.format }

// WorkerID identifies the worker that rendered this frame.
func (f *Frame) WorkerID() int { return f.workerID }

// CompletedAt returns the instant the worker signalled completion.
func (f *Frame) CompletedAt() time.Time { return f.completedAt }

// stamp returns a copy of f carrying completion metadata. The payload is
// shared, not copied; the original remains untouched so the immutability
// contract holds for both values.
func (f *Frame) stamp(workerID int, at time.Time) *Frame {
	g := *f
	g.workerID = workerID
	g.completedAt = at
	return &g
}

// RenderRequest describes one unit of outstanding render work.
// The scene state is opaque to the pipeline and is handed to the Renderer
// unchanged. One request corresponds to at most one completed Frame.
type RenderRequest struct {
	// Index is the sequential frame index assigned by the Dispatcher.
	Index uint64

	// Scene is the caller-supplied scene-state snapshot.
	Scene any

	// IssuedAt is the instant the request was submitted.
	IssuedAt time.Time
}
