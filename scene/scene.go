package scene

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/postfx/render"
)

// Scene is the root node of a graph. It carries an optional background
// color and an optional override material.
type Scene struct {
	Node

	background *gputypes.Color
	override   *render.Material
}

// NewScene creates an empty scene without background.
func NewScene() *Scene {
	s := &Scene{}
	s.init(render.KindGroup, nil, nil)
	return s
}

// Background returns the background color, or nil.
func (s *Scene) Background() *gputypes.Color { return s.background }

// SetBackground sets or clears the background color.
func (s *Scene) SetBackground(c *gputypes.Color) { s.background = c }

// OverrideMaterial returns the material replacing every object's, or nil.
func (s *Scene) OverrideMaterial() *render.Material { return s.override }

// SetOverrideMaterial sets or clears the override material.
func (s *Scene) SetOverrideMaterial(m *render.Material) { s.override = m }

// Traverse calls fn for the scene and every descendant in pre-order.
func (s *Scene) Traverse(fn func(render.Object)) {
	fn(s)
	for _, c := range s.children {
		c.Traverse(fn)
	}
}

var _ render.Scene = (*Scene)(nil)
