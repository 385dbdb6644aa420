// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/framepipe"
)

// GPU surface errors.
var (
	// ErrNilDrawContext is returned when no draw context is supplied.
	ErrNilDrawContext = errors.New("surface: nil draw context")

	// ErrNoTextureCreator is returned when the draw context cannot
	// create textures.
	ErrNoTextureCreator = errors.New("surface: draw context has no texture creator")

	// ErrInvalidTexture is returned when the created texture cannot be
	// drawn by the context.
	ErrInvalidTexture = errors.New("surface: created texture is not drawable")
)

// textureDestroyer is the interface for destroying textures.
// This matches the gogpu Texture.Destroy signature.
type textureDestroyer interface {
	Destroy()
}

// GPUSurface presents frames through a gogpu draw context.
//
// Each presented frame is uploaded as an RGBA texture and drawn at the
// surface origin. The previous frame's texture is destroyed only after the
// new upload has completed, so the GPU never reads freed resources.
//
// The dc parameter should be obtained from gogpu.Context.AsTextureDrawer()
// and the surface driven from the goroutine that owns the GPU context,
// typically by running the framepipe display loop there.
type GPUSurface struct {
	dc gpucontext.TextureDrawer

	// texture holds the most recently uploaded frame; oldTexture awaits
	// deferred destruction.
	texture    any
	oldTexture any

	x, y float32
}

// NewGPUSurface creates a GPU presentation surface over a draw context.
func NewGPUSurface(dc gpucontext.TextureDrawer) (*GPUSurface, error) {
	if dc == nil {
		return nil, ErrNilDrawContext
	}
	return &GPUSurface{dc: dc}, nil
}

// SetOrigin positions subsequent frames at (x, y) in the draw context.
func (s *GPUSurface) SetOrigin(x, y float32) {
	s.x, s.y = x, y
}

// Present uploads one frame as a texture and draws it.
// Implements framepipe.Presenter.
func (s *GPUSurface) Present(pix []byte, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if len(pix) < width*height*4 {
		return fmt.Errorf("%w: got %d bytes for %dx%d", ErrShortPayload, len(pix), width, height)
	}

	creator := s.dc.TextureCreator()
	if creator == nil {
		return ErrNoTextureCreator
	}

	// NewTextureFromRGBA performs the upload synchronously; once it
	// returns, the previous texture is no longer referenced by in-flight
	// GPU work and is safe to destroy.
	tex, err := creator.NewTextureFromRGBA(width, height, pix)
	if err != nil {
		return fmt.Errorf("surface: texture upload failed: %w", err)
	}

	if s.oldTexture != nil {
		if destroyer, ok := s.oldTexture.(textureDestroyer); ok {
			destroyer.Destroy()
		}
		s.oldTexture = nil
	}
	s.oldTexture = s.texture
	s.texture = tex

	gpuTex, ok := tex.(gpucontext.Texture)
	if !ok {
		return ErrInvalidTexture
	}
	return s.dc.DrawTexture(gpuTex, s.x, s.y)
}

// Close destroys any textures still held by the surface.
// Close is idempotent.
func (s *GPUSurface) Close() error {
	for _, t := range []any{s.oldTexture, s.texture} {
		if t == nil {
			continue
		}
		if destroyer, ok := t.(textureDestroyer); ok {
			destroyer.Destroy()
		}
	}
	s.oldTexture = nil
	s.texture = nil
	return nil
}

var _ framepipe.Presenter = (*GPUSurface)(nil)
