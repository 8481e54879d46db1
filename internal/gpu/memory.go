//go:build !nogpu

package gpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
)

// Default memory limits.
const (
	// DefaultMaxMemoryMB is the default surface memory budget (256 MB).
	DefaultMaxMemoryMB = 256

	// MinMemoryMB is the minimum allowed memory budget (16 MB).
	MinMemoryMB = 16
)

// MemoryStats contains surface memory usage statistics.
type MemoryStats struct {
	// TotalBytes is the total memory budget in bytes.
	TotalBytes uint64

	// UsedBytes is the currently allocated memory in bytes.
	UsedBytes uint64

	// AvailableBytes is the remaining memory budget.
	AvailableBytes uint64

	// SurfaceCount is the number of surfaces holding textures.
	SurfaceCount int

	// PeakBytes is the highest UsedBytes seen.
	PeakBytes uint64

	// Utilization is the fraction of budget used (0.0 to 1.0).
	Utilization float64
}

// String returns a human-readable string of memory stats.
func (s MemoryStats) String() string {
	return fmt.Sprintf("Memory[%.1f%% used, %d/%d MB, %d surfaces, peak %d MB]",
		s.Utilization*100,
		s.UsedBytes/(1024*1024),
		s.TotalBytes/(1024*1024),
		s.SurfaceCount,
		s.PeakBytes/(1024*1024))
}

// memoryTracker accounts for surface textures against a budget. Surfaces
// are owned by passes and cannot be evicted, so an allocation over budget
// fails instead.
//
// memoryTracker is safe for concurrent use.
type memoryTracker struct {
	mu sync.Mutex

	budgetBytes uint64
	usedBytes   uint64
	peakBytes   uint64

	surfaces map[*gpuSurface]uint64
}

// newMemoryTracker creates a tracker. Budgets below MinMemoryMB select
// DefaultMaxMemoryMB.
func newMemoryTracker(maxMB int) *memoryTracker {
	if maxMB < MinMemoryMB {
		maxMB = DefaultMaxMemoryMB
	}
	//nolint:gosec // G115: maxMB is bounded by MinMemoryMB minimum
	return &memoryTracker{
		budgetBytes: uint64(maxMB) * 1024 * 1024,
		surfaces:    make(map[*gpuSurface]uint64),
	}
}

// surfaceBytes returns the texture memory of a surface allocation: four
// bytes per color texel plus four per depth-stencil texel.
func surfaceBytes(width, height int, depthStencil bool) uint64 {
	//nolint:gosec // G115: sizes are normalized to at least one pixel
	n := uint64(width) * uint64(height) * 4
	if depthStencil {
		n *= 2
	}
	return n
}

// reserve records s at size bytes, replacing any previous reservation.
func (m *memoryTracker) reserve(s *gpuSurface, size uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.surfaces[s]
	if m.usedBytes-prev+size > m.budgetBytes {
		return fmt.Errorf("%w: surface %q needs %d KB, %d KB available",
			ErrMemoryBudgetExceeded, s.desc.Label, size/1024, (m.budgetBytes-m.usedBytes+prev)/1024)
	}
	m.usedBytes = m.usedBytes - prev + size
	m.peakBytes = max(m.peakBytes, m.usedBytes)
	m.surfaces[s] = size
	return nil
}

// release drops the reservation of s.
func (m *memoryTracker) release(s *gpuSurface) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if size, ok := m.surfaces[s]; ok {
		m.usedBytes -= size
		delete(m.surfaces, s)
	}
}

// Stats returns current memory usage statistics.
func (m *memoryTracker) Stats() MemoryStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	var utilization float64
	if m.budgetBytes > 0 {
		utilization = float64(m.usedBytes) / float64(m.budgetBytes)
	}
	return MemoryStats{
		TotalBytes:     m.budgetBytes,
		UsedBytes:      m.usedBytes,
		AvailableBytes: m.budgetBytes - m.usedBytes,
		SurfaceCount:   len(m.surfaces),
		PeakBytes:      m.peakBytes,
		Utilization:    utilization,
	}
}

// colorFormat is the texture format of every surface color buffer.
const colorFormat = gputypes.TextureFormatRGBA8Unorm

// depthStencilFormat is the format of surface depth-stencil buffers.
const depthStencilFormat = gputypes.TextureFormatDepth24PlusStencil8
