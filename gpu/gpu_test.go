//go:build !nogpu

package gpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/postfx/render"
)

// hostProvider is a host device provider exposing its HAL objects.
type hostProvider struct {
	render.NullDeviceHandle
	device hal.Device
	queue  hal.Queue
}

func (p hostProvider) HalDevice() any { return p.device }
func (p hostProvider) HalQueue() any  { return p.queue }

func createNoopDevice(t *testing.T) (hal.Device, hal.Queue) {
	t.Helper()
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return openDev.Device, openDev.Queue
}

func TestNewRendererFromHost(t *testing.T) {
	device, queue := createNoopDevice(t)

	r, err := NewRenderer(hostProvider{device: device, queue: queue}, 40, 30)
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}
	defer r.Close()

	if w, h := r.DrawingBufferSize(); w != 40 || h != 30 {
		t.Errorf("DrawingBufferSize = %dx%d, want 40x30", w, h)
	}
	if r.Backend() != gputypes.BackendEmpty {
		t.Errorf("Backend = %v, want BackendEmpty for a host device", r.Backend())
	}
	if err := r.Clear(true, true, true); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	img, err := r.ReadPixels(nil)
	if err != nil {
		t.Fatalf("ReadPixels failed: %v", err)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 30 {
		t.Errorf("image = %v, want 40x30", img.Bounds())
	}
}

func TestNewRendererWithoutHAL(t *testing.T) {
	_, err := NewRenderer(render.NullDeviceHandle{}, 8, 8)
	if !errors.Is(err, ErrNoHAL) {
		t.Errorf("NewRenderer error = %v, want %v", err, ErrNoHAL)
	}
}

func TestCloseLeavesHostDevice(t *testing.T) {
	device, queue := createNoopDevice(t)
	r, err := NewRenderer(hostProvider{device: device, queue: queue}, 8, 8, Options{MemoryBudgetMB: 32})
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}
	if got := r.MemoryStats().TotalBytes; got != 32*1024*1024 {
		t.Errorf("TotalBytes = %d, want %d", got, 32*1024*1024)
	}
	r.Close()
	r.Close()

	// The host can keep using its device.
	if _, err := device.CreateBuffer(&hal.BufferDescriptor{Label: "host", Size: 4}); err != nil {
		t.Errorf("host device unusable after Close: %v", err)
	}
}
