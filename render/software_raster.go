// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/postfx/internal/blend"
)

// Varying layout: uv(2) normal(3) view position(3) world position(3).
const (
	varyingUV     = 0
	varyingNormal = 2
	varyingView   = 5
	varyingWorld  = 8
	varyingCount  = 11
)

// rasterVertex is a vertex after the vertex stage.
type rasterVertex struct {
	clip mgl32.Vec4
	v    [varyingCount]float32
}

// screenVertex is a vertex after perspective division and the viewport
// transform. Varyings are premultiplied by invW for perspective-correct
// interpolation.
type screenVertex struct {
	x, y, z float64
	invW    float64
	v       [varyingCount]float32
}

// draw runs one object through the pipeline into t.
func (r *SoftwareRenderer) draw(t *softwareSurface, camera Camera, obj Object, mat *Material) error {
	prog, ok := r.programs[mat.Program]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProgram, mat.Program)
	}
	textures, err := r.bindTextures(mat.Uniforms)
	if err != nil {
		return err
	}
	ctx := &ProgramContext{Material: mat, Camera: camera, textures: textures}

	g := obj.Geometry()
	model := obj.MatrixWorld()
	modelView := camera.MatrixWorldInverse().Mul4(model)
	mvp := camera.ProjectionMatrix().Mul4(modelView)
	normalMatrix := model.Mat3()

	verts := make([]rasterVertex, g.VertexCount())
	for i := range verts {
		x, y, z := g.Position(uint32(i))
		p := mgl32.Vec4{x, y, z, 1}
		rv := &verts[i]
		rv.clip = mvp.Mul4x1(p)

		u, v := g.UV(uint32(i))
		rv.v[varyingUV], rv.v[varyingUV+1] = u, v

		nx, ny, nz := g.Normal(uint32(i))
		n := normalMatrix.Mul3x1(mgl32.Vec3{nx, ny, nz})
		copy(rv.v[varyingNormal:varyingNormal+3], n[:])

		vp := modelView.Mul4x1(p)
		copy(rv.v[varyingView:varyingView+3], vp[:3])

		wp := model.Mul4x1(p)
		copy(rv.v[varyingWorld:varyingWorld+3], wp[:3])
	}

	fs := fragmentState{
		target:  t,
		ctx:     ctx,
		program: prog,
		blend:   mat.BlendState(),
		side:    mat.Side,
		depth:   r.state.Depth.Test() && mat.DepthTest && t.depth != nil,
	}
	fs.depthWrite = fs.depth && mat.DepthWrite && r.state.Depth.Mask()

	n := uint32(len(verts))
	var poly []rasterVertex
	for i := 0; i+2 < len(g.Indices); i += 3 {
		ia, ib, ic := g.Indices[i], g.Indices[i+1], g.Indices[i+2]
		if ia >= n || ib >= n || ic >= n {
			continue
		}
		poly = clipNear(poly[:0], verts[ia], verts[ib], verts[ic])
		for k := 1; k+1 < len(poly); k++ {
			r.rasterize(&fs, poly[0], poly[k], poly[k+1])
		}
	}
	return nil
}

// bindTextures resolves every surface-valued uniform.
func (r *SoftwareRenderer) bindTextures(u Uniforms) (map[string]*softwareSurface, error) {
	var out map[string]*softwareSurface
	for name, v := range u {
		s, ok := v.(Surface)
		if !ok || s == nil {
			continue
		}
		ss, err := r.resolve(s)
		if err != nil {
			return nil, fmt.Errorf("uniform %q: %w", name, err)
		}
		if out == nil {
			out = make(map[string]*softwareSurface)
		}
		out[name] = ss
	}
	return out, nil
}

// clipNear clips a triangle against the near plane z >= -w and returns the
// resulting convex polygon.
func clipNear(dst []rasterVertex, a, b, c rasterVertex) []rasterVertex {
	in := [3]rasterVertex{a, b, c}
	dist := func(v *rasterVertex) float32 { return v.clip[2] + v.clip[3] }
	for i := range in {
		cur := &in[i]
		next := &in[(i+1)%3]
		dc, dn := dist(cur), dist(next)
		if dc >= 0 {
			dst = append(dst, *cur)
		}
		if (dc >= 0) != (dn >= 0) {
			t := dc / (dc - dn)
			dst = append(dst, lerpVertex(cur, next, t))
		}
	}
	return dst
}

func lerpVertex(a, b *rasterVertex, t float32) rasterVertex {
	var out rasterVertex
	for i := range out.clip {
		out.clip[i] = a.clip[i] + (b.clip[i]-a.clip[i])*t
	}
	for i := range out.v {
		out.v[i] = a.v[i] + (b.v[i]-a.v[i])*t
	}
	return out
}

// fragmentState is the per-draw fixed-function configuration.
type fragmentState struct {
	target     *softwareSurface
	ctx        *ProgramContext
	program    SoftwareProgram
	blend      *gputypes.BlendState
	side       Side
	depth      bool
	depthWrite bool
}

func (r *SoftwareRenderer) toScreen(t *softwareSurface, rv rasterVertex) screenVertex {
	w := float64(rv.clip[3])
	if w == 0 {
		w = 1e-20
	}
	invW := 1 / w
	sv := screenVertex{
		x:    (float64(rv.clip[0])*invW + 1) * 0.5 * float64(t.desc.Width),
		y:    (1 - float64(rv.clip[1])*invW) * 0.5 * float64(t.desc.Height),
		z:    (float64(rv.clip[2])*invW + 1) * 0.5,
		invW: invW,
	}
	for i, a := range rv.v {
		sv.v[i] = a * float32(invW)
	}
	return sv
}

// rasterize fills one clipped triangle.
func (r *SoftwareRenderer) rasterize(fs *fragmentState, a, b, c rasterVertex) {
	t := fs.target
	v0, v1, v2 := r.toScreen(t, a), r.toScreen(t, b), r.toScreen(t, c)

	// Screen y points down, so counter-clockwise in NDC is negative here.
	area := edge(&v0, &v1, v2.x, v2.y)
	if area == 0 {
		return
	}
	front := area < 0
	switch {
	case fs.side == FrontSide && !front, fs.side == BackSide && front:
		return
	}
	if area < 0 {
		v1, v2 = v2, v1
		area = -area
	}

	h := t.desc.Height
	minX, maxX := span(min(v0.x, v1.x, v2.x), max(v0.x, v1.x, v2.x), t.desc.Width)
	minY, maxY := span(min(v0.y, v1.y, v2.y), max(v0.y, v1.y, v2.y), h)

	var frag Fragment
	frag.FrontFacing = front
	for py := minY; py <= maxY; py++ {
		cy := float64(py) + 0.5
		for px := minX; px <= maxX; px++ {
			cx := float64(px) + 0.5
			e0, in0 := inside(&v1, &v2, cx, cy)
			if !in0 {
				continue
			}
			e1, in1 := inside(&v2, &v0, cx, cy)
			if !in1 {
				continue
			}
			e2, in2 := inside(&v0, &v1, cx, cy)
			if !in2 {
				continue
			}
			b0, b1, b2 := e0/area, e1/area, e2/area

			z := b0*v0.z + b1*v1.z + b2*v2.z
			if z < 0 || z > 1 {
				continue
			}
			invW := b0*v0.invW + b1*v1.invW + b2*v2.invW
			if invW <= 0 {
				continue
			}
			wgt := [3]float32{float32(b0 / invW), float32(b1 / invW), float32(b2 / invW)}
			var vary [varyingCount]float32
			for i := range vary {
				vary[i] = wgt[0]*v0.v[i] + wgt[1]*v1.v[i] + wgt[2]*v2.v[i]
			}

			frag.FragCoord = mgl32.Vec4{float32(cx), float32(float64(h) - cy), float32(z), float32(invW)}
			frag.UV = mgl32.Vec2{vary[varyingUV], vary[varyingUV+1]}
			frag.Normal = mgl32.Vec3{vary[varyingNormal], vary[varyingNormal+1], vary[varyingNormal+2]}
			frag.ViewPosition = mgl32.Vec3{vary[varyingView], vary[varyingView+1], vary[varyingView+2]}
			frag.WorldPosition = mgl32.Vec3{vary[varyingWorld], vary[varyingWorld+1], vary[varyingWorld+2]}
			r.shade(fs, px, py, &frag)
		}
	}
}

// shade runs the stencil and depth tests, the program and blending for one
// covered pixel.
func (r *SoftwareRenderer) shade(fs *fragmentState, px, py int, frag *Fragment) {
	t := fs.target
	idx := py*t.desc.Width + px
	st := &r.state.Stencil
	stencil := st.Test() && t.stencil != nil

	if stencil && !st.Passes(uint32(t.stencil[idx])) {
		fail, _, _ := st.Op()
		t.stencil[idx] = uint8(st.Apply(fail, uint32(t.stencil[idx])))
		return
	}
	z := frag.FragCoord[2]
	if fs.depth && !CompareDepth(gputypes.CompareFunctionLessEqual, z, t.depth[idx]) {
		if stencil {
			_, zFail, _ := st.Op()
			t.stencil[idx] = uint8(st.Apply(zFail, uint32(t.stencil[idx])))
		}
		return
	}
	if stencil {
		_, _, zPass := st.Op()
		t.stencil[idx] = uint8(st.Apply(zPass, uint32(t.stencil[idx])))
	}
	if fs.depthWrite {
		t.depth[idx] = z
	}
	if !r.state.Color.Mask() {
		return
	}
	src := fs.program(fs.ctx, frag)
	dst := t.texel(px, py)
	out := blend.Apply(fs.blend, blend.Color(src), blend.Color(dst))
	t.setTexel(px, py, out)
}

// span clamps a coordinate range to pixel indices in [0, n). An empty or
// non-finite range yields lo > hi.
func span(lo, hi float64, n int) (int, int) {
	if math.IsNaN(lo) || math.IsNaN(hi) {
		return 0, -1
	}
	lo = math.Max(lo, 0)
	hi = math.Min(hi, float64(n-1))
	if lo > hi {
		return 0, -1
	}
	return int(lo), int(hi)
}

// edge is the signed doubled area of (a, b, p). It is computed from a
// canonical vertex order so that a shared edge evaluates to exact negatives
// in its two triangles.
func edge(a, b *screenVertex, px, py float64) float64 {
	if b.x < a.x || (b.x == a.x && b.y < a.y) {
		return -rawEdge(b, a, px, py)
	}
	return rawEdge(a, b, px, py)
}

func rawEdge(a, b *screenVertex, px, py float64) float64 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// inside applies a tie-breaking fill rule: a pixel center exactly on an edge
// belongs to only one of the two triangles sharing it.
func inside(a, b *screenVertex, px, py float64) (float64, bool) {
	e := edge(a, b, px, py)
	if e > 0 {
		return e, true
	}
	if e < 0 {
		return e, false
	}
	dx, dy := b.x-a.x, b.y-a.y
	return e, dy > 0 || (dy == 0 && dx < 0)
}
