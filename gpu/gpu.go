//go:build !nogpu

// Package gpu provides the hardware renderer for postfx effect chains.
//
// The renderer implements render.Renderer on wgpu HAL. It is either built
// from the host application's device, so that the effect chain shares
// textures and queues with the host, or opened headless on a HAL backend.
//
// If no GPU is available, fall back to render.NewSoftwareRenderer.
//
// Usage with a host device (e.g. gogpu):
//
//	r, err := gpu.NewRenderer(app.DeviceProvider(), 800, 600)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//	composer := postfx.NewComposer(r)
//
// Headless usage:
//
//	r, err := gpu.OpenBest(800, 600)
package gpu

import (
	"log/slog"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Register every HAL backend of the platform plus the software fallback.
	_ "github.com/gogpu/wgpu/hal/allbackends"

	gpuimpl "github.com/gogpu/postfx/internal/gpu"
	"github.com/gogpu/postfx/render"
)

// Errors reported by the GPU renderer.
var (
	ErrNoGPU                = gpuimpl.ErrNoGPU
	ErrBackendNotRegistered = gpuimpl.ErrBackendNotRegistered
	ErrNoHAL                = gpuimpl.ErrNoHAL
	ErrDeviceClosed         = gpuimpl.ErrDeviceClosed
	ErrMemoryBudgetExceeded = gpuimpl.ErrMemoryBudgetExceeded
)

// MemoryStats reports the texture memory used by a renderer's surfaces.
type MemoryStats = gpuimpl.MemoryStats

// Options configures a Renderer beyond its screen size.
type Options struct {
	// MemoryBudgetMB bounds the texture memory of all surfaces. Zero
	// selects 256 MB.
	MemoryBudgetMB int
}

// Renderer is a render.Renderer drawing with a GPU device. It also reads
// surfaces back and uploads textures.
type Renderer struct {
	*gpuimpl.Renderer
	device *gpuimpl.Device
}

var (
	_ render.Renderer       = (*Renderer)(nil)
	_ render.PixelReader    = (*Renderer)(nil)
	_ render.TextureLoader  = (*Renderer)(nil)
	_ render.ProgramChecker = (*Renderer)(nil)
)

// NewRenderer builds a renderer on the host's device. The provider must
// also implement HalDevice() any and HalQueue() any returning the
// hal.Device and hal.Queue behind it; otherwise ErrNoHAL is returned.
// Closing the renderer leaves the host's device open.
func NewRenderer(provider gpucontext.DeviceProvider, width, height int, opts ...Options) (*Renderer, error) {
	d, err := gpuimpl.FromProvider(provider)
	if err != nil {
		return nil, err
	}
	return newRenderer(d, width, height, opts)
}

// Open opens a device on a registered HAL backend and builds a renderer on
// it. gputypes.BackendEmpty selects the software backend.
func Open(backend gputypes.Backend, width, height int, opts ...Options) (*Renderer, error) {
	d, err := gpuimpl.OpenBackend(backend)
	if err != nil {
		return nil, err
	}
	return newRenderer(d, width, height, opts)
}

// OpenBest opens the most capable registered backend: Vulkan, Metal, DX12,
// GL, then software.
func OpenBest(width, height int, opts ...Options) (*Renderer, error) {
	backend, err := hal.SelectBestBackend()
	if err != nil {
		return nil, ErrNoGPU
	}
	d, err := gpuimpl.Open(backend)
	if err != nil {
		return nil, err
	}
	return newRenderer(d, width, height, opts)
}

func newRenderer(d *gpuimpl.Device, width, height int, opts []Options) (*Renderer, error) {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	r, err := gpuimpl.NewRenderer(d, gpuimpl.Config{
		Width:          width,
		Height:         height,
		MemoryBudgetMB: o.MemoryBudgetMB,
	})
	if err != nil {
		d.Close()
		return nil, err
	}
	return &Renderer{Renderer: r, device: d}, nil
}

// Backend returns the backend the device was opened on, BackendEmpty for
// host devices.
func (r *Renderer) Backend() gputypes.Backend { return r.device.Variant() }

// AdapterName returns the adapter name when known.
func (r *Renderer) AdapterName() string { return r.device.Info().Name }

// SetLogger sets the logger of the renderer and of the HAL layer beneath
// it. postfx.SetLogger calls it for renderers handed to a Composer.
func (r *Renderer) SetLogger(l *slog.Logger) { SetLogger(l) }

// Close releases the renderer's GPU resources and a device it opened.
// Close is idempotent.
func (r *Renderer) Close() {
	r.Renderer.Close()
	r.device.Close()
}

// SetLogger configures logging for the GPU renderer and wgpu HAL. By
// default both are silent. Pass nil to disable logging.
func SetLogger(l *slog.Logger) {
	gpuimpl.SetLogger(l)
	hal.SetLogger(l)
}
