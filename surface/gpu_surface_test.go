// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"testing"
)

func TestNewGPUSurfaceNilContext(t *testing.T) {
	if _, err := NewGPUSurface(nil); !errors.Is(err, ErrNilDrawContext) {
		t.Errorf("NewGPUSurface(nil) err = %v, want ErrNilDrawContext", err)
	}
}

func TestGPUSurfacePresentValidatesDimensions(t *testing.T) {
	s := &GPUSurface{}
	for _, dims := range [][2]int{{0, 4}, {4, 0}, {-2, 4}} {
		err := s.Present(make([]byte, 64), dims[0], dims[1])
		if !errors.Is(err, ErrInvalidDimensions) {
			t.Errorf("Present(%d, %d) err = %v, want ErrInvalidDimensions", dims[0], dims[1], err)
		}
	}
}

func TestGPUSurfaceCloseWithoutTextures(t *testing.T) {
	s := &GPUSurface{}
	if err := s.Close(); err != nil {
		t.Errorf("Close on empty surface: %v", err)
	}
}

func TestGPUSurfaceSetOrigin(t *testing.T) {
	s := &GPUSurface{}
	s.SetOrigin(12, 34)
	if s.x != 12 || s.y != 34 {
		t.Errorf("origin = (%g, %g), want (12, 34)", s.x, s.y)
	}
}
