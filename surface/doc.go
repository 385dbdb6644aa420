// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package surface provides presentation surfaces for the framepipe display
// loop.
//
// A surface receives the pixel payload of the frame currently selected for
// display and puts it in front of the user. Two implementations ship here:
//
//   - ImageSurface: CPU presentation into an *image.RGBA, with automatic
//     scaling when frame and surface dimensions differ.
//   - GPUSurface: presentation through a gogpu draw context, uploading each
//     frame as a texture.
//
// Both satisfy framepipe.Presenter. Presenters are driven from the display
// goroutine only; they do not need to be safe for concurrent use, though
// ImageSurface additionally locks so snapshots may be taken from other
// goroutines.
package surface
