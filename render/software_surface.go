// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

// softwareSurface is a CPU surface. Color is stored as 8-bit straight RGBA,
// top row first, the way an RGBA8Unorm attachment stores fragment output.
type softwareSurface struct {
	owner *SoftwareRenderer
	desc  SurfaceDescriptor

	color   *image.NRGBA
	depth   []float32
	stencil []uint8

	disposed bool
}

func newSoftwareSurface(owner *SoftwareRenderer, desc SurfaceDescriptor) *softwareSurface {
	s := &softwareSurface{owner: owner, desc: desc.Normalize()}
	s.allocate()
	return s
}

func (s *softwareSurface) allocate() {
	w, h := s.desc.Width, s.desc.Height
	s.color = image.NewNRGBA(image.Rect(0, 0, w, h))
	s.depth = nil
	s.stencil = nil
	if s.desc.DepthBuffer {
		s.depth = make([]float32, w*h)
		for i := range s.depth {
			s.depth[i] = 1
		}
	}
	if s.desc.StencilBuffer {
		s.stencil = make([]uint8, w*h)
	}
}

// Descriptor returns the allocation parameters.
func (s *softwareSurface) Descriptor() SurfaceDescriptor { return s.desc }

// Width returns the width in pixels.
func (s *softwareSurface) Width() int { return s.desc.Width }

// Height returns the height in pixels.
func (s *softwareSurface) Height() int { return s.desc.Height }

// SetSize reallocates the buffers when the size changes.
func (s *softwareSurface) SetSize(width, height int) {
	d := s.desc.WithSize(width, height).Normalize()
	if d.Width == s.desc.Width && d.Height == s.desc.Height {
		return
	}
	s.desc = d
	if !s.disposed {
		s.allocate()
	}
}

// Dispose releases the buffers.
func (s *softwareSurface) Dispose() {
	s.disposed = true
	s.color = nil
	s.depth = nil
	s.stencil = nil
}

func (s *softwareSurface) texel(x, y int) mgl32.Vec4 {
	o := s.color.PixOffset(x, y)
	p := s.color.Pix[o : o+4 : o+4]
	return mgl32.Vec4{
		float32(p[0]) / 255,
		float32(p[1]) / 255,
		float32(p[2]) / 255,
		float32(p[3]) / 255,
	}
}

func (s *softwareSurface) setTexel(x, y int, c [4]float32) {
	o := s.color.PixOffset(x, y)
	p := s.color.Pix[o : o+4 : o+4]
	for i := range p {
		p[i] = unorm8(c[i])
	}
}

func (s *softwareSurface) fill(c [4]float32) {
	var px [4]uint8
	for i := range px {
		px[i] = unorm8(c[i])
	}
	pix := s.color.Pix
	for i := 0; i < len(pix); i += 4 {
		copy(pix[i:i+4], px[:])
	}
}

// unorm8 quantizes a [0,1] value to 8 bits, rounding to nearest.
func unorm8(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math32.Floor(v*255 + 0.5))
}

// sample filters the color buffer at texture coordinate uv. v=0 is the
// bottom row. Surfaces have no mip levels, so MagFilter selects the filter.
func (s *softwareSurface) sample(uv mgl32.Vec2) mgl32.Vec4 {
	w, h := s.desc.Width, s.desc.Height
	fx := uv[0] * float32(w)
	fy := (1 - uv[1]) * float32(h)

	if s.desc.MagFilter == gputypes.FilterModeNearest {
		x := s.wrap(int(math32.Floor(fx)), w)
		y := s.wrap(int(math32.Floor(fy)), h)
		return s.texel(x, y)
	}

	fx -= 0.5
	fy -= 0.5
	x0f := math32.Floor(fx)
	y0f := math32.Floor(fy)
	tx := fx - x0f
	ty := fy - y0f
	x0, y0 := int(x0f), int(y0f)
	x1 := s.wrap(x0+1, w)
	y1 := s.wrap(y0+1, h)
	x0 = s.wrap(x0, w)
	y0 = s.wrap(y0, h)

	c00 := s.texel(x0, y0)
	c10 := s.texel(x1, y0)
	c01 := s.texel(x0, y1)
	c11 := s.texel(x1, y1)
	top := c00.Mul(1 - tx).Add(c10.Mul(tx))
	bottom := c01.Mul(1 - tx).Add(c11.Mul(tx))
	return top.Mul(1 - ty).Add(bottom.Mul(ty))
}

func (s *softwareSurface) wrap(i, n int) int {
	switch s.desc.AddressMode {
	case gputypes.AddressModeRepeat:
		i %= n
		if i < 0 {
			i += n
		}
		return i
	case gputypes.AddressModeMirrorRepeat:
		period := 2 * n
		i %= period
		if i < 0 {
			i += period
		}
		if i >= n {
			i = period - 1 - i
		}
		return i
	default:
		return min(max(i, 0), n-1)
	}
}
