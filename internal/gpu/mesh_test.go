//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/gogpu/postfx/render"
	"github.com/gogpu/postfx/shader"
)

func floatAt(b []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
}

func TestInterleave(t *testing.T) {
	g := render.NewGeometry(
		[]float32{1, 2, 3, 4, 5, 6},
		[]float32{0, 0, 1, 0, 1, 0},
		[]float32{0.25, 0.75, 1, 0},
		[]uint32{0, 1, 0},
	)
	buf := interleave(g)
	if len(buf) != 2*shader.VertexStride {
		t.Fatalf("len = %d, want %d", len(buf), 2*shader.VertexStride)
	}

	tests := []struct {
		name string
		off  int
		want float32
	}{
		{"v0.x", 0, 1},
		{"v0.z", 8, 3},
		{"v0.nz", shader.NormalOffset + 8, 1},
		{"v0.u", shader.UVOffset, 0.25},
		{"v0.v", shader.UVOffset + 4, 0.75},
		{"v1.y", shader.VertexStride + 4, 5},
		{"v1.ny", shader.VertexStride + shader.NormalOffset + 4, 1},
		{"v1.u", shader.VertexStride + shader.UVOffset, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := floatAt(buf, tt.off); got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestInterleaveMissingAttributes(t *testing.T) {
	g := render.NewGeometry([]float32{1, 1, 1}, nil, nil, nil)
	buf := interleave(g)
	for off := shader.NormalOffset; off < shader.VertexStride; off += 4 {
		if got := floatAt(buf, off); got != 0 {
			t.Errorf("float at %d = %v, want 0", off, got)
		}
	}
}

func TestIndexBytes(t *testing.T) {
	b := indexBytes([]uint32{0, 1, 65536})
	if len(b) != 12 {
		t.Fatalf("len = %d, want 12", len(b))
	}
	if got := binary.LittleEndian.Uint32(b[8:]); got != 65536 {
		t.Errorf("index 2 = %d, want 65536", got)
	}
}

func TestAlignUp(t *testing.T) {
	tests := []struct {
		v, a, want uint64
	}{
		{0, 4, 0},
		{1, 4, 4},
		{4, 4, 4},
		{5, 4, 8},
		{257, 256, 512},
	}
	for _, tt := range tests {
		if got := alignUp(tt.v, tt.a); got != tt.want {
			t.Errorf("alignUp(%d, %d) = %d, want %d", tt.v, tt.a, got, tt.want)
		}
	}
}

func TestMeshCache(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	c := newMeshCache(Shared(device, queue))
	defer c.release()

	g := render.NewGeometry([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, nil, nil, []uint32{0, 1, 2})
	m1, err := c.get(g)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if m1.indexCount != 3 || m1.vertexCount != 3 {
		t.Errorf("counts = (%d, %d), want (3, 3)", m1.vertexCount, m1.indexCount)
	}

	m2, err := c.get(g)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if m1 != m2 {
		t.Error("unchanged geometry was uploaded again")
	}

	g.Positions = append(g.Positions, 1, 1, 0)
	g.Indices = append(g.Indices, 1, 3, 2)
	m3, err := c.get(g)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if m3 == m1 {
		t.Error("grown geometry was not uploaded again")
	}
	if m3.indexCount != 6 {
		t.Errorf("indexCount = %d, want 6", m3.indexCount)
	}
	if len(c.meshes) != 1 {
		t.Errorf("cached meshes = %d, want 1", len(c.meshes))
	}
}
