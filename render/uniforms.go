// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"maps"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

// Uniforms maps uniform names to values.
//
// Supported value types are float32, float64, int, bool, mgl32.Vec2,
// mgl32.Vec3, mgl32.Vec4, mgl32.Mat4, gputypes.Color and Surface. Getters
// convert between compatible types and return the zero value for missing
// or incompatible entries.
type Uniforms map[string]any

// Clone returns a shallow copy. Surface values are shared.
func (u Uniforms) Clone() Uniforms {
	if u == nil {
		return Uniforms{}
	}
	return maps.Clone(u)
}

// Set stores a value and returns the map for chaining.
func (u Uniforms) Set(name string, v any) Uniforms {
	u[name] = v
	return u
}

// Has reports whether name is declared, even with a nil value.
func (u Uniforms) Has(name string) bool {
	_, ok := u[name]
	return ok
}

// Float returns a scalar uniform. Booleans convert to 0 or 1.
func (u Uniforms) Float(name string) float32 {
	switch v := u[name].(type) {
	case float32:
		return v
	case float64:
		return float32(v)
	case int:
		return float32(v)
	case bool:
		if v {
			return 1
		}
		return 0
	}
	return 0
}

// Bool returns a boolean uniform. Non-zero scalars are true.
func (u Uniforms) Bool(name string) bool {
	switch v := u[name].(type) {
	case bool:
		return v
	case nil:
		return false
	}
	return u.Float(name) != 0
}

// Vec2 returns a two-component uniform.
func (u Uniforms) Vec2(name string) mgl32.Vec2 {
	if v, ok := u[name].(mgl32.Vec2); ok {
		return v
	}
	return mgl32.Vec2{}
}

// Vec3 returns a three-component uniform. Colors convert to RGB.
func (u Uniforms) Vec3(name string) mgl32.Vec3 {
	switch v := u[name].(type) {
	case mgl32.Vec3:
		return v
	case gputypes.Color:
		return mgl32.Vec3{float32(v.R), float32(v.G), float32(v.B)}
	case *gputypes.Color:
		if v != nil {
			return mgl32.Vec3{float32(v.R), float32(v.G), float32(v.B)}
		}
	}
	return mgl32.Vec3{}
}

// Vec4 returns a four-component uniform. Colors convert to RGBA.
func (u Uniforms) Vec4(name string) mgl32.Vec4 {
	switch v := u[name].(type) {
	case mgl32.Vec4:
		return v
	case gputypes.Color:
		return mgl32.Vec4{float32(v.R), float32(v.G), float32(v.B), float32(v.A)}
	}
	return mgl32.Vec4{}
}

// Mat4 returns a matrix uniform, or identity when unset.
func (u Uniforms) Mat4(name string) mgl32.Mat4 {
	if v, ok := u[name].(mgl32.Mat4); ok {
		return v
	}
	return mgl32.Ident4()
}

// Surface returns a texture uniform, or nil.
func (u Uniforms) Surface(name string) Surface {
	if v, ok := u[name].(Surface); ok {
		return v
	}
	return nil
}

// Hex converts a 0xRRGGBB value to an opaque color.
func Hex(rgb uint32) gputypes.Color {
	return gputypes.Color{
		R: float64((rgb>>16)&0xff) / 255,
		G: float64((rgb>>8)&0xff) / 255,
		B: float64(rgb&0xff) / 255,
		A: 1,
	}
}
