// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"github.com/gogpu/gputypes"
)

// Surface is an offscreen 2D pixel buffer that can be drawn into and
// sampled as a texture.
//
// Surfaces are allocated by a Renderer and are only valid with the renderer
// that created them. SetSize reallocates the pixel storage at the same
// ownership site; contents are not preserved. Implementations may defer the
// reallocation until the surface is next bound.
type Surface interface {
	// Descriptor returns the allocation parameters, with the current size.
	Descriptor() SurfaceDescriptor

	// Width returns the width in pixels.
	Width() int

	// Height returns the height in pixels.
	Height() int

	// SetSize resizes the surface. A no-op when the size is unchanged.
	SetSize(width, height int)

	// Dispose releases the pixel storage. The surface must not be used
	// afterwards.
	Dispose()
}

// SurfaceDescriptor describes a Surface allocation.
type SurfaceDescriptor struct {
	// Label is a debug name, also used as the GPU texture label.
	Label string

	Width  int
	Height int

	// Format is the color format. Only RGBA8Unorm is required of
	// renderers.
	Format gputypes.TextureFormat

	MinFilter gputypes.FilterMode
	MagFilter gputypes.FilterMode

	// AddressMode applies to both texture axes when sampled.
	AddressMode gputypes.AddressMode

	GenerateMipmaps bool

	// DepthBuffer attaches a depth buffer used by depth-tested draws.
	DepthBuffer bool

	// StencilBuffer attaches a stencil buffer used by mask passes.
	StencilBuffer bool
}

// DefaultSurfaceDescriptor returns a linear-filtered, clamped RGBA8
// descriptor with a depth buffer and no stencil.
func DefaultSurfaceDescriptor(label string, width, height int) SurfaceDescriptor {
	return SurfaceDescriptor{
		Label:       label,
		Width:       width,
		Height:      height,
		Format:      gputypes.TextureFormatRGBA8Unorm,
		MinFilter:   gputypes.FilterModeLinear,
		MagFilter:   gputypes.FilterModeLinear,
		AddressMode: gputypes.AddressModeClampToEdge,
		DepthBuffer: true,
	}
}

// WithSize returns a copy of the descriptor with a different size.
func (d SurfaceDescriptor) WithSize(width, height int) SurfaceDescriptor {
	d.Width = width
	d.Height = height
	return d
}

// WithLabel returns a copy of the descriptor with a different label.
func (d SurfaceDescriptor) WithLabel(label string) SurfaceDescriptor {
	d.Label = label
	return d
}

// Normalize fills zero fields with defaults and clamps the size to at least
// one pixel. Renderers call it before allocating.
func (d SurfaceDescriptor) Normalize() SurfaceDescriptor {
	if d.Format == gputypes.TextureFormatUndefined {
		d.Format = gputypes.TextureFormatRGBA8Unorm
	}
	if d.MinFilter == gputypes.FilterModeUndefined {
		d.MinFilter = gputypes.FilterModeLinear
	}
	if d.MagFilter == gputypes.FilterModeUndefined {
		d.MagFilter = gputypes.FilterModeLinear
	}
	if d.AddressMode == gputypes.AddressModeUndefined {
		d.AddressMode = gputypes.AddressModeClampToEdge
	}
	d.Width = max(d.Width, 1)
	d.Height = max(d.Height, 1)
	return d
}

// Clone allocates a surface with the same descriptor on r.
func Clone(r Renderer, s Surface) (Surface, error) {
	return r.NewSurface(s.Descriptor())
}
