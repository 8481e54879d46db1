package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/postfx/render"
)

// PerspectiveCamera is a pinhole camera with a vertical field of view in
// degrees.
type PerspectiveCamera struct {
	Fov    float32
	Aspect float32

	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3

	near, far float32
}

// NewPerspectiveCamera creates a camera at the origin looking down -z.
func NewPerspectiveCamera(fov, aspect, near, far float32) *PerspectiveCamera {
	return &PerspectiveCamera{
		Fov:    fov,
		Aspect: aspect,
		Target: mgl32.Vec3{0, 0, -1},
		Up:     mgl32.Vec3{0, 1, 0},
		near:   near,
		far:    far,
	}
}

// LookAt points the camera at target.
func (c *PerspectiveCamera) LookAt(target mgl32.Vec3) { c.Target = target }

// SetClipPlanes sets the near and far distances.
func (c *PerspectiveCamera) SetClipPlanes(near, far float32) {
	c.near = near
	c.far = far
}

// Near returns the near plane distance.
func (c *PerspectiveCamera) Near() float32 { return c.near }

// Far returns the far plane distance.
func (c *PerspectiveCamera) Far() float32 { return c.far }

// ProjectionMatrix returns the OpenGL-style perspective projection.
func (c *PerspectiveCamera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.Fov), c.Aspect, c.near, c.far)
}

// MatrixWorldInverse returns the view matrix.
func (c *PerspectiveCamera) MatrixWorldInverse() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, c.Up)
}

// MatrixWorld returns the camera-to-world transform.
func (c *PerspectiveCamera) MatrixWorld() mgl32.Mat4 {
	return c.MatrixWorldInverse().Inv()
}

// OrthographicCamera is a parallel projection camera looking down -z from
// Position.
type OrthographicCamera struct {
	Left, Right, Top, Bottom float32

	Position mgl32.Vec3

	near, far float32
}

// NewOrthographicCamera creates an orthographic camera at the origin.
func NewOrthographicCamera(left, right, top, bottom, near, far float32) *OrthographicCamera {
	return &OrthographicCamera{
		Left:   left,
		Right:  right,
		Top:    top,
		Bottom: bottom,
		near:   near,
		far:    far,
	}
}

// Near returns the near plane distance.
func (c *OrthographicCamera) Near() float32 { return c.near }

// Far returns the far plane distance.
func (c *OrthographicCamera) Far() float32 { return c.far }

// ProjectionMatrix returns the OpenGL-style orthographic projection.
func (c *OrthographicCamera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Ortho(c.Left, c.Right, c.Bottom, c.Top, c.near, c.far)
}

// MatrixWorldInverse returns the view matrix.
func (c *OrthographicCamera) MatrixWorldInverse() mgl32.Mat4 {
	return mgl32.Translate3D(-c.Position[0], -c.Position[1], -c.Position[2])
}

var (
	_ render.Camera = (*PerspectiveCamera)(nil)
	_ render.Camera = (*OrthographicCamera)(nil)
)
