// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/framepipe"
)

// Common surface errors.
var (
	// ErrInvalidDimensions is returned when width or height is invalid.
	ErrInvalidDimensions = errors.New("surface: invalid dimensions")

	// ErrShortPayload is returned when a presented payload is smaller
	// than width*height*4 bytes.
	ErrShortPayload = errors.New("surface: pixel payload too short")

	// ErrSurfaceClosed is returned when presenting to a closed surface.
	ErrSurfaceClosed = errors.New("surface: closed")
)

// ImageSurface is a CPU presentation surface backed by an *image.RGBA.
//
// Frames matching the surface dimensions are copied straight into the
// backing image; mismatched frames are scaled with bilinear interpolation.
// Snapshot may be called from any goroutine while the display loop keeps
// presenting.
type ImageSurface struct {
	width  int
	height int

	mu     sync.Mutex
	img    *image.RGBA
	closed bool

	presented atomic.Uint64
}

// NewImageSurface creates a CPU surface with the given dimensions.
func NewImageSurface(width, height int) (*ImageSurface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &ImageSurface{
		width:  width,
		height: height,
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
	}, nil
}

// Present copies one frame's pixels into the backing image.
// Implements framepipe.Presenter.
func (s *ImageSurface) Present(pix []byte, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if len(pix) < width*height*4 {
		return fmt.Errorf("%w: got %d bytes for %dx%d", ErrShortPayload, len(pix), width, height)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSurfaceClosed
	}

	if width == s.width && height == s.height {
		copy(s.img.Pix, pix[:width*height*4])
	} else {
		src := &image.RGBA{
			Pix:    pix,
			Stride: 4 * width,
			Rect:   image.Rect(0, 0, width, height),
		}
		xdraw.BiLinear.Scale(s.img, s.img.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	}
	s.presented.Add(1)
	return nil
}

// Snapshot returns a copy of the most recently presented content.
func (s *ImageSurface) Snapshot() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := image.NewRGBA(s.img.Rect)
	copy(out.Pix, s.img.Pix)
	return out
}

// Width returns the surface width in pixels.
func (s *ImageSurface) Width() int { return s.width }

// Height returns the surface height in pixels.
func (s *ImageSurface) Height() int { return s.height }

// Presented returns how many frames have been presented to this surface.
func (s *ImageSurface) Presented() uint64 { return s.presented.Load() }

// Close releases the surface. Further presents fail with ErrSurfaceClosed.
// Close is idempotent.
func (s *ImageSurface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var _ framepipe.Presenter = (*ImageSurface)(nil)
