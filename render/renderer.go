// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"image"

	"github.com/gogpu/gputypes"
)

// Errors returned by renderers.
var (
	// ErrNilScene is returned when Render is called without a scene or camera.
	ErrNilScene = errors.New("render: nil scene or camera")

	// ErrUnknownProgram is returned when a material names a program the
	// renderer cannot run.
	ErrUnknownProgram = errors.New("render: unknown program")

	// ErrForeignSurface is returned when a surface created by another
	// renderer is bound or sampled.
	ErrForeignSurface = errors.New("render: surface belongs to another renderer")

	// ErrDisposed is returned when a disposed surface is used.
	ErrDisposed = errors.New("render: surface disposed")
)

// Renderer draws scenes into surfaces.
//
// A Renderer carries global state that every pass shares: the bound render
// target, the clear color, the auto-clear flag and the fixed-function State.
// Passes save what they change and restore it before returning.
//
// The nil Surface denotes the screen, a renderer-owned surface of
// DrawingBufferSize.
//
// Thread Safety: Renderers are NOT thread-safe. Each renderer should be used
// from a single goroutine, or external synchronization must be used.
//
// Example:
//
//	r := render.NewSoftwareRenderer(800, 600)
//	r.SetClearColor(render.Hex(0x222222), 1)
//	if err := r.Render(scene, camera, nil, true); err != nil {
//	    log.Printf("render failed: %v", err)
//	}
type Renderer interface {
	// RenderTarget returns the bound surface, nil for the screen.
	RenderTarget() Surface

	// SetRenderTarget binds a surface, nil for the screen.
	SetRenderTarget(s Surface)

	// Clear clears the selected buffers of the bound target with the clear
	// color, depth 1 and the stencil clear value. Color and depth masks and
	// the stencil write mask apply.
	Clear(color, depth, stencil bool) error

	// Render draws the scene. A non-nil target is bound first. The target is
	// cleared when AutoClear or forceClear is set, or when the scene has a
	// background color.
	Render(scene Scene, camera Camera, target Surface, forceClear bool) error

	ClearColor() gputypes.Color
	ClearAlpha() float64
	SetClearColor(c gputypes.Color, alpha float64)

	AutoClear() bool
	SetAutoClear(on bool)

	// State returns the fixed-function state. The pointer is stable.
	State() *State

	// DrawingBufferSize returns the screen size in pixels.
	DrawingBufferSize() (width, height int)

	// NewSurface allocates an offscreen surface.
	NewSurface(desc SurfaceDescriptor) (Surface, error)
}

// PixelReader is implemented by renderers that can read surfaces back.
type PixelReader interface {
	// ReadPixels returns a copy of the surface's color buffer with straight
	// alpha, top row first. A nil surface reads the screen.
	ReadPixels(s Surface) (*image.NRGBA, error)
}

// TextureLoader is implemented by renderers that can upload images as
// sampled surfaces.
type TextureLoader interface {
	LoadTexture(img image.Image, desc SurfaceDescriptor) (Surface, error)
}

// ProgramChecker is implemented by renderers that can report whether they
// run a program.
type ProgramChecker interface {
	HasProgram(name string) bool
}
