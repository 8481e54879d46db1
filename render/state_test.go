// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

func TestStateDefaults(t *testing.T) {
	s := NewState()

	if !s.Color.Mask() || !s.Depth.Mask() || !s.Depth.Test() {
		t.Error("color/depth writes and depth test should default on")
	}
	if s.Stencil.Test() {
		t.Error("stencil test should default off")
	}
	if f, _, m := s.Stencil.Func(); f != gputypes.CompareFunctionAlways || m != 0xffffffff {
		t.Errorf("Func() = %v mask %#x, want Always 0xffffffff", f, m)
	}
}

func TestLockedMasksIgnoreWrites(t *testing.T) {
	s := NewState()
	s.Color.SetMask(false)
	s.Color.SetLocked(true)
	s.Color.SetMask(true)
	if s.Color.Mask() {
		t.Error("locked color mask changed")
	}

	s.Stencil.SetLocked(true)
	s.Stencil.SetTest(true)
	s.Stencil.SetFunc(gputypes.CompareFunctionEqual, 1, 0xff)
	if s.Stencil.Test() {
		t.Error("locked stencil test changed")
	}
	if f, _, _ := s.Stencil.Func(); f != gputypes.CompareFunctionAlways {
		t.Errorf("locked stencil func changed to %v", f)
	}

	s.Reset()
	if s.Color.Locked() || !s.Color.Mask() {
		t.Error("Reset should unlock and restore the color mask")
	}
}

func TestStencilApply(t *testing.T) {
	tests := []struct {
		name   string
		op     gputypes.StencilOperation
		ref    uint32
		write  uint32
		stored uint32
		want   uint32
	}{
		{"keep", gputypes.StencilOperationKeep, 1, 0xffffffff, 7, 7},
		{"zero", gputypes.StencilOperationZero, 1, 0xffffffff, 7, 0},
		{"replace", gputypes.StencilOperationReplace, 1, 0xffffffff, 7, 1},
		{"invert", gputypes.StencilOperationInvert, 0, 0xffffffff, 0x0f, 0xf0},
		{"inc clamp", gputypes.StencilOperationIncrementClamp, 0, 0xffffffff, 0xff, 0xff},
		{"dec clamp", gputypes.StencilOperationDecrementClamp, 0, 0xffffffff, 0, 0},
		{"inc wrap", gputypes.StencilOperationIncrementWrap, 0, 0xffffffff, 0xff, 0},
		{"dec wrap", gputypes.StencilOperationDecrementWrap, 0, 0xffffffff, 0, 0xff},
		{"write mask", gputypes.StencilOperationReplace, 0xff, 0x0f, 0x00, 0x0f},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b StencilBuffer
			b.SetFunc(gputypes.CompareFunctionAlways, tt.ref, 0xffffffff)
			b.SetMask(tt.write)
			if got := b.Apply(tt.op, tt.stored); got != tt.want {
				t.Errorf("Apply(%v, %#x) = %#x, want %#x", tt.op, tt.stored, got, tt.want)
			}
		})
	}
}

func TestStencilPasses(t *testing.T) {
	var b StencilBuffer
	b.SetFunc(gputypes.CompareFunctionEqual, 1, 0xffffffff)
	if !b.Passes(1) || b.Passes(0) {
		t.Error("EQUAL 1 should pass only for 1")
	}
	b.SetFunc(gputypes.CompareFunctionNotEqual, 1, 0xffffffff)
	if b.Passes(1) || !b.Passes(0) {
		t.Error("NOTEQUAL 1 should pass only for values other than 1")
	}
}

func TestMaterialBlendState(t *testing.T) {
	m := NewMaterial(ProgramBasic, nil)
	if m.BlendState() != nil {
		t.Error("opaque normal material should not blend")
	}
	m.Transparent = true
	if bs := m.BlendState(); bs == nil || *bs != gputypes.BlendStateAlpha() {
		t.Errorf("transparent normal BlendState = %v, want alpha", bs)
	}
	m.Blending = AdditiveBlending
	if bs := m.BlendState(); bs == nil || bs.Color.DstFactor != gputypes.BlendFactorOne {
		t.Errorf("additive BlendState = %v", bs)
	}
	m.Blending = NoBlending
	if m.BlendState() != nil {
		t.Error("NoBlending should not blend")
	}

	c := m.Clone()
	c.Uniforms["x"] = 1
	if m.Uniforms.Has("x") {
		t.Error("Clone should copy uniforms")
	}
}

func TestUniformConversions(t *testing.T) {
	u := Uniforms{
		"f":     float64(0.5),
		"i":     2,
		"b":     true,
		"color": Hex(0xff8000),
	}
	if u.Float("f") != 0.5 || u.Float("i") != 2 || u.Float("b") != 1 {
		t.Errorf("Float conversions = %v %v %v", u.Float("f"), u.Float("i"), u.Float("b"))
	}
	if !u.Bool("b") || u.Bool("missing") {
		t.Error("Bool conversion wrong")
	}
	if v := u.Vec3("color"); v[0] != 1 || v[2] != 0 {
		t.Errorf("Vec3(color) = %v", v)
	}
	if m := u.Mat4("missing"); m != mgl32.Ident4() {
		t.Errorf("Mat4(missing) = %v, want identity", m)
	}
}
