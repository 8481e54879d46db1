// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "sync/atomic"

var geometryIDs atomic.Uint64

// Geometry is an indexed triangle list.
//
// Positions and Normals hold three floats per vertex, UVs two. Normals and
// UVs may be empty; renderers substitute zeros. Indices address vertices in
// counter-clockwise front-facing order.
type Geometry struct {
	Positions []float32
	Normals   []float32
	UVs       []float32
	Indices   []uint32

	id uint64
}

// NewGeometry returns a geometry with a unique identity, used by GPU
// renderers as the vertex buffer cache key.
func NewGeometry(positions, normals, uvs []float32, indices []uint32) *Geometry {
	return &Geometry{
		Positions: positions,
		Normals:   normals,
		UVs:       uvs,
		Indices:   indices,
		id:        geometryIDs.Add(1),
	}
}

// ID returns the geometry identity. Geometries built as struct literals get
// an identity on first call.
func (g *Geometry) ID() uint64 {
	if g.id == 0 {
		g.id = geometryIDs.Add(1)
	}
	return g.id
}

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int {
	return len(g.Positions) / 3
}

// TriangleCount returns the number of indexed triangles.
func (g *Geometry) TriangleCount() int {
	return len(g.Indices) / 3
}

// Position returns vertex i's position.
func (g *Geometry) Position(i uint32) (x, y, z float32) {
	o := i * 3
	return g.Positions[o], g.Positions[o+1], g.Positions[o+2]
}

// Normal returns vertex i's normal, or zero when the geometry has none.
func (g *Geometry) Normal(i uint32) (x, y, z float32) {
	o := int(i) * 3
	if o+2 >= len(g.Normals) {
		return 0, 0, 0
	}
	return g.Normals[o], g.Normals[o+1], g.Normals[o+2]
}

// UV returns vertex i's texture coordinate, or zero when the geometry has none.
func (g *Geometry) UV(i uint32) (u, v float32) {
	o := int(i) * 2
	if o+1 >= len(g.UVs) {
		return 0, 0
	}
	return g.UVs[o], g.UVs[o+1]
}
