//go:build !nogpu

package gpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

func TestOpenBackendNoop(t *testing.T) {
	d, err := OpenBackend(gputypes.BackendEmpty)
	if err != nil {
		t.Fatalf("OpenBackend failed: %v", err)
	}
	defer d.Close()

	if d.External() {
		t.Error("opened device reports External")
	}
	if d.Info().Name != "Noop Adapter" {
		t.Errorf("adapter = %q, want %q", d.Info().Name, "Noop Adapter")
	}
	if d.usesSPIRV() {
		t.Error("noop device consumes SPIR-V")
	}
	if device, queue := d.HAL(); device == nil || queue == nil {
		t.Error("HAL returned nil device or queue")
	}
}

func TestOpenBackendNotRegistered(t *testing.T) {
	_, err := OpenBackend(gputypes.BackendBrowserWebGPU)
	if !errors.Is(err, ErrBackendNotRegistered) {
		t.Errorf("OpenBackend error = %v, want %v", err, ErrBackendNotRegistered)
	}
}

func TestOpenRendererOnOwnedDevice(t *testing.T) {
	d, err := Open(noop.API{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	r, err := NewRenderer(d, Config{Width: 4, Height: 4})
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}
	r.Close()
	d.Close()
	d.Close()

	if _, err := NewRenderer(d, Config{Width: 4, Height: 4}); !errors.Is(err, ErrDeviceClosed) {
		t.Errorf("NewRenderer on closed device error = %v, want %v", err, ErrDeviceClosed)
	}
}

func TestSelectAdapter(t *testing.T) {
	adapters := []hal.ExposedAdapter{
		{Info: gputypes.AdapterInfo{Name: "cpu", DeviceType: gputypes.DeviceTypeCPU}},
		{Info: gputypes.AdapterInfo{Name: "igpu", DeviceType: gputypes.DeviceTypeIntegratedGPU}},
		{Info: gputypes.AdapterInfo{Name: "dgpu", DeviceType: gputypes.DeviceTypeDiscreteGPU}},
	}
	if got := selectAdapter(adapters).Info.Name; got != "igpu" {
		t.Errorf("selectAdapter = %q, want igpu", got)
	}
	if got := selectAdapter(adapters[:1]).Info.Name; got != "cpu" {
		t.Errorf("selectAdapter fallback = %q, want cpu", got)
	}
}

func TestFromProvider(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	tests := []struct {
		name     string
		provider any
		wantErr  error
	}{
		{"hal provider", halProviderStub{device: device, queue: queue}, nil},
		{"not a provider", struct{}{}, ErrNoHAL},
		{"wrong device type", halProviderStub{device: "device", queue: queue}, ErrNoHAL},
		{"nil queue", halProviderStub{device: device}, ErrNoHAL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := FromProvider(tt.provider)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("FromProvider error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromProvider failed: %v", err)
			}
			if !d.External() {
				t.Error("provider device is not External")
			}
			d.Close()
			if hd, _ := d.HAL(); hd != nil {
				t.Error("Close kept the borrowed device")
			}
		})
	}
}
