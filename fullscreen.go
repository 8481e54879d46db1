package postfx

import (
	"github.com/gogpu/postfx/render"
	"github.com/gogpu/postfx/scene"
)

// FullScreenQuad draws a material over every pixel of a target. It is a
// 2x2 plane seen by an orthographic camera spanning [-1,1] on both axes,
// so uv (0,0) is the bottom-left pixel.
type FullScreenQuad struct {
	scene  *scene.Scene
	mesh   *scene.Node
	camera *scene.OrthographicCamera
}

// NewFullScreenQuad returns a quad drawing m.
func NewFullScreenQuad(m *render.Material) *FullScreenQuad {
	q := &FullScreenQuad{
		scene:  scene.NewScene(),
		mesh:   scene.NewMesh(scene.NewPlaneGeometry(2, 2), m),
		camera: scene.NewOrthographicCamera(-1, 1, 1, -1, 0, 1),
	}
	q.scene.Add(q.mesh)
	return q
}

// Material returns the material drawn.
func (q *FullScreenQuad) Material() *render.Material { return q.mesh.Material() }

// SetMaterial replaces the material drawn.
func (q *FullScreenQuad) SetMaterial(m *render.Material) { q.mesh.SetMaterial(m) }

// Render draws the quad into target, or into the bound target when target
// is nil. forceClear clears the target first.
func (q *FullScreenQuad) Render(r render.Renderer, target render.Surface, forceClear bool) error {
	return r.Render(q.scene, q.camera, target, forceClear)
}
