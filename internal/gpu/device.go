//go:build !nogpu

package gpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Device is a HAL device and its queue.
//
// A Device is either opened here, in which case Close destroys it, or
// borrowed from a host application, in which case Close only forgets it.
type Device struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	info    gputypes.AdapterInfo
	variant gputypes.Backend

	externalDevice bool // true when using a shared device (don't destroy on Close)
	closed         bool
}

// OpenBackend opens the first usable adapter of a registered backend.
// Discrete and integrated GPUs are preferred over other adapter types.
func OpenBackend(variant gputypes.Backend) (*Device, error) {
	backend, ok := hal.GetBackend(variant)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrBackendNotRegistered, variant)
	}
	return Open(backend)
}

// Open opens the first usable adapter of backend.
func Open(backend hal.Backend) (*Device, error) {
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoGPU
	}
	selected := selectAdapter(adapters)
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("%w: open device: %w", ErrNoGPU, err)
	}

	slogger().Info("gpu: device opened",
		"backend", backend.Variant(),
		"adapter", selected.Info.Name,
		"type", selected.Info.DeviceType)

	return &Device{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
		info:     selected.Info,
		variant:  backend.Variant(),
	}, nil
}

// selectAdapter prefers hardware adapters and falls back to the first one.
func selectAdapter(adapters []hal.ExposedAdapter) *hal.ExposedAdapter {
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			return &adapters[i]
		}
	}
	return &adapters[0]
}

// Shared wraps a device and queue owned by the caller.
func Shared(device hal.Device, queue hal.Queue) *Device {
	return &Device{
		device:         device,
		queue:          queue,
		variant:        gputypes.BackendEmpty,
		externalDevice: true,
	}
}

// FromProvider borrows the device of a host application. The provider must
// implement HalDevice() any and HalQueue() any returning hal.Device and
// hal.Queue. A provider that is also a gpucontext.DeviceProvider supplies
// the adapter name for diagnostics.
func FromProvider(provider any) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHAL)
	}

	d := Shared(device, queue)
	if dp, ok := provider.(gpucontext.DeviceProvider); ok {
		ai := dp.AdapterInfo()
		d.info.Name = ai.Name
		slogger().Info("gpu: using shared device", "adapter", ai.Name, "type", ai.Type)
	} else {
		slogger().Info("gpu: using shared device")
	}
	return d, nil
}

// HAL returns the device and queue.
func (d *Device) HAL() (hal.Device, hal.Queue) {
	return d.device, d.queue
}

// Info returns the adapter description. Shared devices report only what
// their provider exposed.
func (d *Device) Info() gputypes.AdapterInfo { return d.info }

// Variant returns the backend the device was opened on, BackendEmpty for
// shared devices.
func (d *Device) Variant() gputypes.Backend { return d.variant }

// External reports whether the device is borrowed.
func (d *Device) External() bool { return d.externalDevice }

// usesSPIRV reports whether shader modules are created from SPIR-V rather
// than WGSL. Only Vulkan consumes the library's SPIR-V directly.
func (d *Device) usesSPIRV() bool { return d.variant == gputypes.BackendVulkan }

// check returns ErrDeviceClosed after Close.
func (d *Device) check() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDeviceClosed
	}
	return nil
}

// Close waits for outstanding work and releases an owned device. Shared
// devices are left to their owner. Close is idempotent.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	if d.externalDevice {
		// Don't destroy shared resources, we don't own them.
		d.device = nil
		d.queue = nil
		return
	}
	if d.device != nil {
		if err := d.device.WaitIdle(); err != nil {
			slogger().Warn("gpu: wait idle on close", "err", err)
		}
		d.device.Destroy()
		d.device = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
	d.queue = nil
}
