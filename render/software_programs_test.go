// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func overlayContext(u Uniforms) *ProgramContext {
	return &ProgramContext{Material: NewMaterial(ProgramOverlay, u)}
}

func TestOverlayProgramNoEdges(t *testing.T) {
	tests := []struct {
		name string
		u    Uniforms
	}{
		{"no uniforms", Uniforms{}},
		{"zero strength", Uniforms{"edgeStrength": float32(0), "pulseWeight": float32(1)}},
		{"zero pulse", Uniforms{"edgeStrength": float32(3), "pulseWeight": float32(0)}},
		{"pattern", Uniforms{"usePatternTexture": true, "edgeStrength": float32(3)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := overlayProgram(overlayContext(tt.u), &Fragment{UV: mgl32.Vec2{0.5, 0.5}})
			for i, v := range out {
				if math32.IsNaN(v) || math32.IsInf(v, 0) {
					t.Fatalf("component %d = %v", i, v)
				}
			}
		})
	}
}

func TestOverlayProgramColorMix(t *testing.T) {
	u := Uniforms{
		"edgeStrength":     float32(1),
		"edgeGlow":         float32(0),
		"pulseWeight":      float32(1),
		"visibleEdgeColor": mgl32.Vec3{1, 0, 0},
		"hiddenEdgeColor":  mgl32.Vec3{0, 0, 1},
	}
	r := NewSoftwareRenderer(1, 1)
	mask, _ := r.NewSurface(DefaultSurfaceDescriptor("mask", 1, 1))
	edge, _ := r.NewSurface(DefaultSurfaceDescriptor("edge", 1, 1))
	mask.(*softwareSurface).fill([4]float32{1, 1, 1, 1})
	edge.(*softwareSurface).fill([4]float32{0.4, 0.2, 0, 1})

	ctx := overlayContext(u)
	ctx.textures = map[string]*softwareSurface{
		"maskTexture":  mask.(*softwareSurface),
		"edgeTexture1": edge.(*softwareSurface),
	}
	out := overlayProgram(ctx, &Fragment{UV: mgl32.Vec2{0.5, 0.5}})

	want := mgl32.Vec4{0.4 / 0.6, 0, 0.2 / 0.6, 0.6}
	for i := range want {
		if math32.Abs(out[i]-want[i]) > 0.01 {
			t.Errorf("overlay = %v, want %v", out, want)
			break
		}
	}
}
