// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

// ObjectKind classifies scene-graph nodes for the renderer and for passes
// that toggle visibility by node type.
type ObjectKind uint8

const (
	// KindGroup is a pure transform node without geometry.
	KindGroup ObjectKind = iota

	// KindMesh is a triangle mesh.
	KindMesh

	// KindLine is a line primitive. Renderers draw its geometry as triangles
	// when it has any.
	KindLine

	// KindSprite is a textured quad.
	KindSprite
)

// String returns the kind name.
func (k ObjectKind) String() string {
	switch k {
	case KindGroup:
		return "Group"
	case KindMesh:
		return "Mesh"
	case KindLine:
		return "Line"
	case KindSprite:
		return "Sprite"
	default:
		return "Unknown"
	}
}

// Drawable reports whether objects of this kind carry drawable geometry.
func (k ObjectKind) Drawable() bool {
	return k == KindMesh || k == KindLine || k == KindSprite
}

// Object is a node of an external scene graph.
//
// Identity is the value returned by ID; two Object values with the same ID
// refer to the same node. Traverse visits the node itself and then every
// descendant in pre-order, including invisible ones.
type Object interface {
	ID() uint64
	Kind() ObjectKind

	Visible() bool
	SetVisible(visible bool)

	Children() []Object
	Traverse(fn func(Object))

	// MatrixWorld returns the object-to-world transform.
	MatrixWorld() mgl32.Mat4

	// Geometry returns nil for nodes without geometry.
	Geometry() *Geometry

	// Material returns nil for nodes without geometry.
	Material() *Material
}

// Scene is the root of a scene graph.
type Scene interface {
	Object

	// Background returns the clear color used when the scene is rendered,
	// or nil when the renderer's clear color applies.
	Background() *gputypes.Color
	SetBackground(c *gputypes.Color)

	// OverrideMaterial, when non-nil, replaces every object's material.
	OverrideMaterial() *Material
	SetOverrideMaterial(m *Material)
}

// Camera provides the view and projection transforms.
type Camera interface {
	ProjectionMatrix() mgl32.Mat4
	MatrixWorldInverse() mgl32.Mat4
	Near() float32
	Far() float32
}
