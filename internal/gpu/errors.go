//go:build !nogpu

package gpu

import "errors"

// Errors returned by the HAL renderer.
var (
	// ErrNoGPU is returned when no adapter can be opened.
	ErrNoGPU = errors.New("gpu: no compatible GPU found")

	// ErrBackendNotRegistered is returned when the requested HAL backend
	// was not linked into the binary.
	ErrBackendNotRegistered = errors.New("gpu: HAL backend not registered")

	// ErrNoHAL is returned when a device provider does not expose its
	// hal.Device and hal.Queue.
	ErrNoHAL = errors.New("gpu: provider does not expose HAL device and queue")

	// ErrDeviceClosed is returned when a closed device is used.
	ErrDeviceClosed = errors.New("gpu: device closed")

	// ErrMemoryBudgetExceeded is returned when a surface allocation would
	// exceed the memory budget.
	ErrMemoryBudgetExceeded = errors.New("gpu: memory budget exceeded")
)
