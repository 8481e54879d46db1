// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// RGBA depth packing spreads a [0,1) depth value over four 8-bit channels
// so that depth survives an RGBA8 color target. The constants match the
// packing used by the WGSL depth and prepareMask programs.
const (
	packUpscale     = 256.0 / 255.0
	unpackDownscale = 255.0 / 256.0
	shiftRight8     = 1.0 / 256.0
)

var (
	packFactors   = mgl32.Vec3{256 * 256 * 256, 256 * 256, 256}
	unpackFactors = mgl32.Vec4{
		unpackDownscale / (256 * 256 * 256),
		unpackDownscale / (256 * 256),
		unpackDownscale / 256,
		unpackDownscale,
	}
)

func fract(x float32) float32 {
	return x - math32.Floor(x)
}

// PackDepthToRGBA encodes depth v in [0,1] into RGBA channels.
func PackDepthToRGBA(v float32) mgl32.Vec4 {
	r := mgl32.Vec4{
		fract(v * packFactors[0]),
		fract(v * packFactors[1]),
		fract(v * packFactors[2]),
		v,
	}
	x, y, z := r[0], r[1], r[2]
	r[1] -= x * shiftRight8
	r[2] -= y * shiftRight8
	r[3] -= z * shiftRight8
	return r.Mul(packUpscale)
}

// UnpackRGBAToDepth decodes a depth packed by PackDepthToRGBA.
func UnpackRGBAToDepth(v mgl32.Vec4) float32 {
	return v.Dot(unpackFactors)
}

// PerspectiveDepthToViewZ converts a window-space depth in [0,1] produced by
// a perspective projection back to view-space z, which is negative in front
// of the camera. The denominator cancels to -near at depth 1, so the
// arithmetic runs in float64.
func PerspectiveDepthToViewZ(depth, near, far float32) float32 {
	d, n, f := float64(depth), float64(near), float64(far)
	return float32((n * f) / ((f-n)*d - f))
}

// ViewZToPerspectiveDepth is the inverse of PerspectiveDepthToViewZ.
func ViewZToPerspectiveDepth(viewZ, near, far float32) float32 {
	z, n, f := float64(viewZ), float64(near), float64(far)
	return float32(((n + z) * f) / ((f - n) * z))
}
