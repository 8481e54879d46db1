package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/postfx/render"
)

// boxFace is one side of a box: outward normal and the in-plane axes with
// u x v = normal.
type boxFace struct {
	n, u, v mgl32.Vec3
}

var boxFaces = [6]boxFace{
	{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
	{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
	{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
}

// quadCorners are (u, v) signs of a face's corners in counter-clockwise
// order, with their texture coordinates.
var quadCorners = [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

// NewBoxGeometry creates an axis-aligned box centered at the origin with
// outward-facing triangles, per-face normals and per-face UVs.
func NewBoxGeometry(width, height, depth float32) *render.Geometry {
	half := mgl32.Vec3{width / 2, height / 2, depth / 2}
	scale := func(v mgl32.Vec3) mgl32.Vec3 {
		return mgl32.Vec3{v[0] * half[0], v[1] * half[1], v[2] * half[2]}
	}

	positions := make([]float32, 0, 6*4*3)
	normals := make([]float32, 0, 6*4*3)
	uvs := make([]float32, 0, 6*4*2)
	indices := make([]uint32, 0, 6*6)
	for f, face := range boxFaces {
		for _, c := range quadCorners {
			p := scale(face.n.Add(face.u.Mul(c[0])).Add(face.v.Mul(c[1])))
			positions = append(positions, p[0], p[1], p[2])
			normals = append(normals, face.n[0], face.n[1], face.n[2])
			uvs = append(uvs, (c[0]+1)/2, (c[1]+1)/2)
		}
		base := uint32(f * 4)
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return render.NewGeometry(positions, normals, uvs, indices)
}

// NewPlaneGeometry creates a width x height quad in the XY plane facing +z.
// UV (0,0) is the bottom-left corner.
func NewPlaneGeometry(width, height float32) *render.Geometry {
	hw, hh := width/2, height/2
	positions := make([]float32, 0, 12)
	uvs := make([]float32, 0, 8)
	for _, c := range quadCorners {
		positions = append(positions, c[0]*hw, c[1]*hh, 0)
		uvs = append(uvs, (c[0]+1)/2, (c[1]+1)/2)
	}
	normals := []float32{0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1}
	return render.NewGeometry(positions, normals, uvs, []uint32{0, 1, 2, 0, 2, 3})
}
