//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/postfx/render"
	"github.com/gogpu/postfx/shader"
)

// meshBuffers are the uploaded buffers of one geometry.
type meshBuffers struct {
	vertex      hal.Buffer
	index       hal.Buffer
	vertexCount int
	indexCount  uint32
}

// meshCache uploads each geometry once, keyed by its identity. A geometry
// whose vertex or index count changed is uploaded again.
type meshCache struct {
	device *Device
	meshes map[uint64]*meshBuffers
}

func newMeshCache(device *Device) *meshCache {
	return &meshCache{device: device, meshes: make(map[uint64]*meshBuffers)}
}

// get returns the buffers of g, uploading them when needed.
func (c *meshCache) get(g *render.Geometry) (*meshBuffers, error) {
	id := g.ID()
	if m, ok := c.meshes[id]; ok {
		if m.vertexCount == g.VertexCount() && int(m.indexCount) == len(g.Indices) {
			return m, nil
		}
		c.destroy(m)
		delete(c.meshes, id)
	}

	vertices := interleave(g)
	indices := indexBytes(g.Indices)
	m := &meshBuffers{vertexCount: g.VertexCount()}
	//nolint:gosec // G115: index counts fit in uint32 by construction
	m.indexCount = uint32(len(g.Indices))

	var err error
	m.vertex, err = c.upload(fmt.Sprintf("mesh_%d_vertices", id), vertices, gputypes.BufferUsageVertex)
	if err != nil {
		return nil, err
	}
	m.index, err = c.upload(fmt.Sprintf("mesh_%d_indices", id), indices, gputypes.BufferUsageIndex)
	if err != nil {
		c.destroy(m)
		return nil, err
	}
	c.meshes[id] = m
	return m, nil
}

// upload creates a buffer holding data. Sizes are padded to four bytes.
func (c *meshCache) upload(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	device, queue := c.device.HAL()
	size := alignUp(uint64(max(len(data), 4)), 4)
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create buffer %s: %w", label, err)
	}
	if len(data) > 0 {
		if err := queue.WriteBuffer(buf, 0, data); err != nil {
			device.DestroyBuffer(buf)
			return nil, fmt.Errorf("write buffer %s: %w", label, err)
		}
	}
	return buf, nil
}

func (c *meshCache) destroy(m *meshBuffers) {
	device, _ := c.device.HAL()
	if m.vertex != nil {
		device.DestroyBuffer(m.vertex)
		m.vertex = nil
	}
	if m.index != nil {
		device.DestroyBuffer(m.index)
		m.index = nil
	}
}

// release destroys every cached buffer.
func (c *meshCache) release() {
	for id, m := range c.meshes {
		c.destroy(m)
		delete(c.meshes, id)
	}
}

// interleave packs position, normal and uv per vertex in the shared vertex
// layout. Missing normals and uvs are zero.
func interleave(g *render.Geometry) []byte {
	n := g.VertexCount()
	buf := make([]byte, n*shader.VertexStride)
	for i := range n {
		//nolint:gosec // G115: i < VertexCount
		v := uint32(i)
		dst := buf[i*shader.VertexStride:]
		x, y, z := g.Position(v)
		nx, ny, nz := g.Normal(v)
		u, w := g.UV(v)
		putFloats(dst, x, y, z)
		putFloats(dst[shader.NormalOffset:], nx, ny, nz)
		putFloats(dst[shader.UVOffset:], u, w)
	}
	return buf
}

func indexBytes(indices []uint32) []byte {
	buf := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

func putFloats(dst []byte, vs ...float32) {
	for i, v := range vs {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}

// alignUp rounds v up to a multiple of a, a power of two.
func alignUp(v, a uint64) uint64 {
	return (v + a - 1) &^ (a - 1)
}
