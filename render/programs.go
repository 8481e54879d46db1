// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

// Names of the built-in programs. Every renderer in this module runs all of
// them; the uniform names listed here are shared by the CPU and WGSL
// implementations.
const (
	// ProgramBasic draws an unlit color: color (vec3), opacity (float).
	ProgramBasic = "basic"

	// ProgramLambert draws a diffuse-lit color under a fixed directional
	// light: color (vec3), opacity (float).
	ProgramLambert = "lambert"

	// ProgramDepth writes fragment depth packed into RGBA.
	ProgramDepth = "depth"

	// ProgramPrepareMask writes the selection mask: depthTexture,
	// textureMatrix (mat4), cameraNearFar (vec2).
	ProgramPrepareMask = "prepareMask"

	// ProgramCopy samples tDiffuse scaled by opacity.
	ProgramCopy = "copy"

	// ProgramEdgeDetect finds mask boundaries: maskTexture, texSize (vec2),
	// visibleEdgeColor, hiddenEdgeColor (vec3).
	ProgramEdgeDetect = "edgeDetect"

	// ProgramSeparableBlur blurs along one axis: colorTexture, texSize,
	// direction (vec2), kernelRadius (float). Define MAX_RADIUS sets the
	// number of tap pairs.
	ProgramSeparableBlur = "separableBlur"

	// ProgramOverlay composites the outline: maskTexture, edgeTexture1,
	// edgeTexture2, patternTexture, edgeStrength, edgeGlow,
	// usePatternTexture, visibleEdgeColor, hiddenEdgeColor, pulseWeight.
	ProgramOverlay = "overlay"
)

// DefineMaxRadius is the blur tap count define.
const DefineMaxRadius = "MAX_RADIUS"

// LightDirection is the world-space direction towards the light used by
// ProgramLambert, normalized by the programs.
var LightDirection = [3]float32{0.5, 1, 0.75}
