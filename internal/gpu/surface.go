//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/postfx/render"
)

// Texture usages of surface textures.
const (
	colorUsage = gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding |
		gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst
	depthUsage = gputypes.TextureUsageRenderAttachment
)

// gpuSurface is a render.Surface backed by HAL textures.
//
// Textures are allocated lazily: NewSurface and SetSize only record the
// descriptor and the first bind or sample creates them. Contents are
// undefined until the first pass, which clears them to zero.
type gpuSurface struct {
	owner *Renderer
	desc  render.SurfaceDescriptor

	color     hal.Texture
	colorView hal.TextureView
	depth     hal.Texture
	depthView hal.TextureView
	sampler   hal.Sampler

	// colorState is the usage the color texture was last transitioned to.
	colorState gputypes.TextureUsage
	depthState gputypes.TextureUsage

	initialized bool
	disposed    bool
}

var _ render.Surface = (*gpuSurface)(nil)

func newGPUSurface(owner *Renderer, desc render.SurfaceDescriptor) *gpuSurface {
	return &gpuSurface{owner: owner, desc: desc.Normalize()}
}

// Descriptor returns the allocation parameters.
func (s *gpuSurface) Descriptor() render.SurfaceDescriptor { return s.desc }

// Width returns the width in pixels.
func (s *gpuSurface) Width() int { return s.desc.Width }

// Height returns the height in pixels.
func (s *gpuSurface) Height() int { return s.desc.Height }

// SetSize releases the textures; the next use reallocates them.
func (s *gpuSurface) SetSize(width, height int) {
	d := s.desc.WithSize(width, height).Normalize()
	if d.Width == s.desc.Width && d.Height == s.desc.Height {
		return
	}
	s.desc = d
	s.destroyTextures()
}

// Dispose releases the textures and the sampler.
func (s *gpuSurface) Dispose() {
	if s.disposed {
		return
	}
	s.destroyTextures()
	if s.sampler != nil {
		s.owner.device.device.DestroySampler(s.sampler)
		s.sampler = nil
	}
	s.disposed = true
}

// hasDepthStencil reports whether the surface carries a depth-stencil
// attachment.
func (s *gpuSurface) hasDepthStencil() bool {
	return s.desc.DepthBuffer || s.desc.StencilBuffer
}

// extent returns the texture size.
func (s *gpuSurface) extent() hal.Extent3D {
	//nolint:gosec // G115: sizes are normalized to at least one pixel
	return hal.Extent3D{
		Width:              uint32(s.desc.Width),
		Height:             uint32(s.desc.Height),
		DepthOrArrayLayers: 1,
	}
}

// ensure allocates the textures and sampler when missing.
func (s *gpuSurface) ensure() error {
	if s.disposed {
		return fmt.Errorf("%w: %q", render.ErrDisposed, s.desc.Label)
	}
	if s.color != nil {
		return nil
	}
	device := s.owner.device.device

	if err := s.owner.memory.reserve(s, surfaceBytes(s.desc.Width, s.desc.Height, s.hasDepthStencil())); err != nil {
		return err
	}

	color, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         s.desc.Label,
		Size:          s.extent(),
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        colorFormat,
		Usage:         colorUsage,
	})
	if err != nil {
		s.destroyTextures()
		return fmt.Errorf("create color texture %q: %w", s.desc.Label, err)
	}
	s.color = color

	colorView, err := device.CreateTextureView(color, &hal.TextureViewDescriptor{
		Label:         s.desc.Label + "_view",
		Format:        colorFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		s.destroyTextures()
		return fmt.Errorf("create color texture view %q: %w", s.desc.Label, err)
	}
	s.colorView = colorView

	if s.hasDepthStencil() {
		depth, err := device.CreateTexture(&hal.TextureDescriptor{
			Label:         s.desc.Label + "_depth_stencil",
			Size:          s.extent(),
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     gputypes.TextureDimension2D,
			Format:        depthStencilFormat,
			Usage:         depthUsage,
		})
		if err != nil {
			s.destroyTextures()
			return fmt.Errorf("create depth/stencil texture %q: %w", s.desc.Label, err)
		}
		s.depth = depth

		depthView, err := device.CreateTextureView(depth, &hal.TextureViewDescriptor{
			Label:         s.desc.Label + "_depth_stencil_view",
			Format:        depthStencilFormat,
			Dimension:     gputypes.TextureViewDimension2D,
			Aspect:        gputypes.TextureAspectAll,
			MipLevelCount: 1,
		})
		if err != nil {
			s.destroyTextures()
			return fmt.Errorf("create depth/stencil texture view %q: %w", s.desc.Label, err)
		}
		s.depthView = depthView
	}

	if s.sampler == nil {
		sampler, err := device.CreateSampler(samplerDescriptor(s.desc))
		if err != nil {
			s.destroyTextures()
			return fmt.Errorf("create sampler %q: %w", s.desc.Label, err)
		}
		s.sampler = sampler
	}

	s.initialized = false
	slogger().Debug("gpu: surface allocated",
		"label", s.desc.Label, "width", s.desc.Width, "height", s.desc.Height,
		"depthStencil", s.hasDepthStencil())
	return nil
}

// samplerDescriptor maps the sampling parameters of a surface.
func samplerDescriptor(d render.SurfaceDescriptor) *hal.SamplerDescriptor {
	return &hal.SamplerDescriptor{
		Label:        d.Label + "_sampler",
		AddressModeU: d.AddressMode,
		AddressModeV: d.AddressMode,
		AddressModeW: d.AddressMode,
		MagFilter:    d.MagFilter,
		MinFilter:    d.MinFilter,
		MipmapFilter: gputypes.FilterModeNearest,
		LodMinClamp:  0,
		LodMaxClamp:  32,
	}
}

// destroyTextures releases the textures. The sampler survives resizes.
func (s *gpuSurface) destroyTextures() {
	device := s.owner.device.device
	if device == nil {
		return
	}
	if s.depthView != nil {
		device.DestroyTextureView(s.depthView)
		s.depthView = nil
	}
	if s.depth != nil {
		device.DestroyTexture(s.depth)
		s.depth = nil
	}
	if s.colorView != nil {
		device.DestroyTextureView(s.colorView)
		s.colorView = nil
	}
	if s.color != nil {
		device.DestroyTexture(s.color)
		s.color = nil
	}
	s.colorState = gputypes.TextureUsageNone
	s.depthState = gputypes.TextureUsageNone
	s.initialized = false
	s.owner.memory.release(s)
}

// transitionColor records a barrier moving the color texture to usage.
func (s *gpuSurface) transitionColor(enc hal.CommandEncoder, usage gputypes.TextureUsage) {
	if s.colorState == usage {
		return
	}
	enc.TransitionTextures([]hal.TextureBarrier{{
		Texture: s.color,
		Range:   hal.TextureRange{Aspect: gputypes.TextureAspectAll},
		Usage:   hal.TextureUsageTransition{OldUsage: s.colorState, NewUsage: usage},
	}})
	s.colorState = usage
}

// transitionDepth records a barrier making the depth-stencil texture an
// attachment.
func (s *gpuSurface) transitionDepth(enc hal.CommandEncoder) {
	if s.depth == nil || s.depthState == depthUsage {
		return
	}
	enc.TransitionTextures([]hal.TextureBarrier{{
		Texture: s.depth,
		Range:   hal.TextureRange{Aspect: gputypes.TextureAspectAll},
		Usage:   hal.TextureUsageTransition{OldUsage: s.depthState, NewUsage: depthUsage},
	}})
	s.depthState = depthUsage
}
