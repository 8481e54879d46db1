//go:build !nogpu

package gpu

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/draw"

	"github.com/gogpu/postfx/render"
)

// copyPitchAlignment is the row alignment of texture-buffer copies.
// WebGPU (and DX12) requires BytesPerRow aligned to 256 bytes.
const copyPitchAlignment = 256

// alignedRowBytes returns the padded row size of a width-pixel RGBA8 row.
func alignedRowBytes(width uint32) uint32 {
	bytesPerRow := width * 4
	return (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
}

// stripRows copies h rows of rowBytes from padded src rows of pitch bytes.
func stripRows(dst, src []byte, rowBytes, pitch, h int) {
	if rowBytes == pitch {
		copy(dst, src[:rowBytes*h])
		return
	}
	for row := range h {
		copy(dst[row*rowBytes:(row+1)*rowBytes], src[row*pitch:row*pitch+rowBytes])
	}
}

// ReadPixels copies a surface's color buffer back to the CPU. A nil
// surface reads the screen. A surface that was never drawn into reads as
// transparent black.
func (r *Renderer) ReadPixels(s render.Surface) (*image.NRGBA, error) {
	t, err := r.resolve(s)
	if err != nil {
		return nil, err
	}
	out := image.NewNRGBA(image.Rect(0, 0, t.Width(), t.Height()))
	if !t.initialized {
		return out, nil
	}

	device, _ := r.device.HAL()
	ext := t.extent()
	pitch := alignedRowBytes(ext.Width)
	size := uint64(pitch) * uint64(ext.Height)

	staging, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: t.desc.Label + "_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}
	defer device.DestroyBuffer(staging)

	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "readback_encoder"})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("readback"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}
	t.transitionColor(encoder, gputypes.TextureUsageCopySrc)
	encoder.CopyTextureToBuffer(t.color, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: pitch, RowsPerImage: ext.Height},
		TextureBase:  hal.ImageCopyTexture{Texture: t.color, MipLevel: 0, Aspect: gputypes.TextureAspectAll},
		Size:         ext,
	}})
	if err := r.submit(encoder); err != nil {
		return nil, err
	}

	mapping, err := device.MapBuffer(staging, 0, size)
	if err != nil {
		return nil, fmt.Errorf("map staging buffer: %w", err)
	}
	defer func() {
		if err := device.UnmapBuffer(staging); err != nil {
			slogger().Warn("gpu: unmap staging buffer", "err", err)
		}
	}()
	if mapping.Ptr == nil {
		return nil, fmt.Errorf("map staging buffer %q: nil mapping", t.desc.Label)
	}
	src := unsafe.Slice((*byte)(mapping.Ptr), size)
	stripRows(out.Pix, src, int(ext.Width)*4, int(pitch), int(ext.Height))
	return out, nil
}

// LoadTexture uploads img into a new surface. desc supplies sampling
// parameters; its size is replaced by the image bounds.
func (r *Renderer) LoadTexture(img image.Image, desc render.SurfaceDescriptor) (render.Surface, error) {
	b := img.Bounds()
	desc = desc.WithSize(b.Dx(), b.Dy())
	desc.DepthBuffer = false
	desc.StencilBuffer = false
	s := newGPUSurface(r, desc)
	if err := s.ensure(); err != nil {
		return nil, err
	}

	rgba, ok := img.(*image.NRGBA)
	if !ok || rgba.Stride != b.Dx()*4 || rgba.Rect.Min != (image.Point{}) {
		rgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}

	_, queue := r.device.HAL()
	ext := s.extent()
	err := queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: s.color, MipLevel: 0, Aspect: gputypes.TextureAspectAll},
		rgba.Pix,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: ext.Width * 4, RowsPerImage: ext.Height},
		&ext,
	)
	if err != nil {
		s.Dispose()
		return nil, fmt.Errorf("upload texture %q: %w", desc.Label, err)
	}
	s.colorState = gputypes.TextureUsageTextureBinding
	s.initialized = true
	return s, nil
}
