// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/postfx/internal/filter"
)

// Fragment carries the interpolated inputs of one pixel.
type Fragment struct {
	// FragCoord is the window position with y up, window depth in [0,1]
	// and 1/w, as gl_FragCoord.
	FragCoord mgl32.Vec4

	UV            mgl32.Vec2
	Normal        mgl32.Vec3
	ViewPosition  mgl32.Vec3
	WorldPosition mgl32.Vec3
	FrontFacing   bool
}

// SoftwareProgram computes the straight-alpha color of a fragment.
type SoftwareProgram func(ctx *ProgramContext, f *Fragment) mgl32.Vec4

// ProgramContext gives programs access to the draw's material, camera and
// bound textures.
type ProgramContext struct {
	Material *Material
	Camera   Camera

	textures map[string]*softwareSurface
}

// Uniforms returns the material's uniforms.
func (c *ProgramContext) Uniforms() Uniforms { return c.Material.Uniforms }

// Sample filters the texture bound to uniform name at uv. An unbound
// texture reads as opaque black.
func (c *ProgramContext) Sample(name string, uv mgl32.Vec2) mgl32.Vec4 {
	s := c.textures[name]
	if s == nil {
		return mgl32.Vec4{0, 0, 0, 1}
	}
	return s.sample(uv)
}

// opacity returns the opacity uniform, 1 when undeclared.
func opacity(u Uniforms) float32 {
	if !u.Has("opacity") {
		return 1
	}
	return u.Float("opacity")
}

func builtinPrograms() map[string]SoftwareProgram {
	return map[string]SoftwareProgram{
		ProgramBasic:         basicProgram,
		ProgramLambert:       lambertProgram,
		ProgramDepth:         depthProgram,
		ProgramPrepareMask:   prepareMaskProgram,
		ProgramCopy:          copyProgram,
		ProgramEdgeDetect:    edgeDetectProgram,
		ProgramSeparableBlur: separableBlurProgram,
		ProgramOverlay:       overlayProgram,
	}
}

func basicProgram(ctx *ProgramContext, _ *Fragment) mgl32.Vec4 {
	u := ctx.Uniforms()
	return u.Vec3("color").Vec4(opacity(u))
}

func lambertProgram(ctx *ProgramContext, f *Fragment) mgl32.Vec4 {
	u := ctx.Uniforms()
	n := f.Normal
	if n.Len() > 0 {
		n = n.Normalize()
	}
	if !f.FrontFacing {
		n = n.Mul(-1)
	}
	l := mgl32.Vec3(LightDirection).Normalize()
	diffuse := 0.35 + 0.65*max(n.Dot(l), 0)
	return u.Vec3("color").Mul(diffuse).Vec4(opacity(u))
}

func depthProgram(_ *ProgramContext, f *Fragment) mgl32.Vec4 {
	return PackDepthToRGBA(f.FragCoord[2])
}

// prepareMaskProgram writes red 0 over selected geometry and green 1 where
// that geometry lies behind the depth recorded in depthTexture.
func prepareMaskProgram(ctx *ProgramContext, f *Fragment) mgl32.Vec4 {
	u := ctx.Uniforms()
	proj := u.Mat4("textureMatrix").Mul4x1(f.WorldPosition.Vec4(1))
	uv := mgl32.Vec2{proj[0] / proj[3], proj[1] / proj[3]}
	depth := UnpackRGBAToDepth(ctx.Sample("depthTexture", uv))
	nearFar := u.Vec2("cameraNearFar")
	viewZ := -PerspectiveDepthToViewZ(depth, nearFar[0], nearFar[1])
	var occluded float32
	if -f.ViewPosition[2] > viewZ {
		occluded = 1
	}
	return mgl32.Vec4{0, occluded, 1, 1}
}

func copyProgram(ctx *ProgramContext, f *Fragment) mgl32.Vec4 {
	return ctx.Sample("tDiffuse", f.UV).Mul(opacity(ctx.Uniforms()))
}

// edgeDetectProgram marks where the mask's red channel changes between
// neighbouring texels. Red output means the edge is visible, green that it
// is hidden behind other geometry.
func edgeDetectProgram(ctx *ProgramContext, f *Fragment) mgl32.Vec4 {
	u := ctx.Uniforms()
	size := u.Vec2("texSize")
	inv := mgl32.Vec2{1 / size[0], 1 / size[1]}
	dx := mgl32.Vec2{inv[0], 0}
	dy := mgl32.Vec2{0, inv[1]}

	c1 := ctx.Sample("maskTexture", f.UV.Add(dx))
	c2 := ctx.Sample("maskTexture", f.UV.Sub(dx))
	c3 := ctx.Sample("maskTexture", f.UV.Add(dy))
	c4 := ctx.Sample("maskTexture", f.UV.Sub(dy))

	diff1 := (c1[0] - c2[0]) * 0.5
	diff2 := (c3[0] - c4[0]) * 0.5
	d := math32.Hypot(diff1, diff2)
	vis := min(c1[1], c2[1], c3[1], c4[1])

	edge := mgl32.Vec4{0, 1, 0, 1}
	if 1-vis > 0.001 {
		edge = mgl32.Vec4{1, 0, 0, 1}
	}
	return edge.Mul(d)
}

func separableBlurProgram(ctx *ProgramContext, f *Fragment) mgl32.Vec4 {
	u := ctx.Uniforms()
	size := u.Vec2("texSize")
	dir := u.Vec2("direction")
	k := filter.SeparableKernel(dir[0], dir[1], int(size[0]), int(size[1]),
		u.Float("kernelRadius"), ctx.Material.Define(DefineMaxRadius, 1))

	sum := ctx.Sample("colorTexture", f.UV).Vec3().Mul(k.Center)
	for _, tap := range k.Taps {
		off := mgl32.Vec2(tap.Offset)
		s1 := ctx.Sample("colorTexture", f.UV.Add(off)).Vec3()
		s2 := ctx.Sample("colorTexture", f.UV.Sub(off)).Vec3()
		sum = sum.Add(s1.Add(s2).Mul(tap.Weight))
	}
	ws := k.WeightSum()
	if ws == 0 {
		return mgl32.Vec4{0, 0, 0, 1}
	}
	return sum.Mul(1 / ws).Vec4(1)
}

// overlayProgram turns the blurred edge tiers into the outline color. Alpha
// carries the edge intensity; the color is the visible and hidden colors
// mixed by their share of it.
func overlayProgram(ctx *ProgramContext, f *Fragment) mgl32.Vec4 {
	u := ctx.Uniforms()
	e1 := ctx.Sample("edgeTexture1", f.UV)
	e2 := ctx.Sample("edgeTexture2", f.UV)
	mask := ctx.Sample("maskTexture", f.UV)
	pattern := ctx.Sample("patternTexture", f.UV.Mul(6))

	var vis float32 = 0.5
	if 1-mask[1] > 0 {
		vis = 1
	}
	edge := e1.Add(e2.Mul(u.Float("edgeGlow")))
	weights := edge.Mul(u.Float("edgeStrength") * mask[0])
	alpha := (weights[0] + weights[1]) * u.Float("pulseWeight")
	var norm float32
	if alpha != 0 {
		norm = 1 / alpha
	}
	visible := u.Vec3("visibleEdgeColor").Mul(norm * weights[0])
	hidden := u.Vec3("hiddenEdgeColor").Mul(norm * weights[1])
	out := visible.Add(hidden).Vec4(alpha)
	if u.Bool("usePatternTexture") {
		p := vis * (1 - mask[0]) * (1 - pattern[0])
		out = out.Add(mgl32.Vec4{p, p, p, p})
	}
	return out
}
