//go:build !nogpu

package gpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/postfx/render"
)

func TestNewMemoryTracker(t *testing.T) {
	tests := []struct {
		name   string
		maxMB  int
		wantMB uint64
	}{
		{"zero selects default", 0, DefaultMaxMemoryMB},
		{"below minimum selects default", MinMemoryMB - 1, DefaultMaxMemoryMB},
		{"minimum", MinMemoryMB, MinMemoryMB},
		{"custom", 512, 512},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMemoryTracker(tt.maxMB)
			if got := m.Stats().TotalBytes; got != tt.wantMB*1024*1024 {
				t.Errorf("TotalBytes = %d, want %d", got, tt.wantMB*1024*1024)
			}
		})
	}
}

func TestSurfaceBytes(t *testing.T) {
	if got := surfaceBytes(10, 10, false); got != 400 {
		t.Errorf("surfaceBytes(10, 10, false) = %d, want 400", got)
	}
	if got := surfaceBytes(10, 10, true); got != 800 {
		t.Errorf("surfaceBytes(10, 10, true) = %d, want 800", got)
	}
}

func TestMemoryTrackerReserveRelease(t *testing.T) {
	m := newMemoryTracker(MinMemoryMB)
	a := &gpuSurface{desc: render.SurfaceDescriptor{Label: "a"}}
	b := &gpuSurface{desc: render.SurfaceDescriptor{Label: "b"}}

	if err := m.reserve(a, 1024*1024); err != nil {
		t.Fatalf("reserve a: %v", err)
	}
	if err := m.reserve(b, 2*1024*1024); err != nil {
		t.Fatalf("reserve b: %v", err)
	}
	stats := m.Stats()
	if stats.UsedBytes != 3*1024*1024 || stats.SurfaceCount != 2 {
		t.Errorf("stats = %+v, want 3 MB in 2 surfaces", stats)
	}

	// Re-reserving replaces the previous size.
	if err := m.reserve(a, 512*1024); err != nil {
		t.Fatalf("re-reserve a: %v", err)
	}
	if got := m.Stats().UsedBytes; got != 2*1024*1024+512*1024 {
		t.Errorf("UsedBytes = %d, want %d", got, 2*1024*1024+512*1024)
	}

	m.release(b)
	m.release(b)
	stats = m.Stats()
	if stats.UsedBytes != 512*1024 || stats.SurfaceCount != 1 {
		t.Errorf("after release stats = %+v, want 512 KB in 1 surface", stats)
	}
	if stats.PeakBytes != 3*1024*1024 {
		t.Errorf("PeakBytes = %d, want %d", stats.PeakBytes, 3*1024*1024)
	}
}

func TestMemoryTrackerBudget(t *testing.T) {
	m := newMemoryTracker(MinMemoryMB)
	s := &gpuSurface{desc: render.SurfaceDescriptor{Label: "huge"}}

	err := m.reserve(s, (MinMemoryMB+1)*1024*1024)
	if !errors.Is(err, ErrMemoryBudgetExceeded) {
		t.Fatalf("reserve error = %v, want %v", err, ErrMemoryBudgetExceeded)
	}
	if !strings.Contains(err.Error(), `"huge"`) {
		t.Errorf("error %q does not name the surface", err)
	}
	if got := m.Stats().UsedBytes; got != 0 {
		t.Errorf("UsedBytes = %d, want 0 after failed reserve", got)
	}
}

func TestMemoryStatsString(t *testing.T) {
	s := MemoryStats{
		TotalBytes:   256 * 1024 * 1024,
		UsedBytes:    64 * 1024 * 1024,
		SurfaceCount: 3,
		PeakBytes:    128 * 1024 * 1024,
		Utilization:  0.25,
	}
	want := "Memory[25.0% used, 64/256 MB, 3 surfaces, peak 128 MB]"
	if got := s.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
