// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/postfx/render"
)

// Kind is a uniform member type.
type Kind uint8

const (
	Float Kind = iota
	Vec2
	Vec3
	Vec4
	Mat4
)

// align and size follow the WGSL uniform address space rules.
func (k Kind) align() int {
	switch k {
	case Float:
		return 4
	case Vec2:
		return 8
	default:
		return 16
	}
}

func (k Kind) size() int {
	switch k {
	case Float:
		return 4
	case Vec2:
		return 8
	case Vec3:
		return 12
	case Vec4:
		return 16
	default:
		return 64
	}
}

// Field is a member of a material uniform block. Name is the uniform name;
// booleans are declared as Float and stored as 0 or 1.
type Field struct {
	Name string
	Kind Kind
}

// Vertex layout shared by every program.
const (
	VertexStride    = 32
	NormalOffset    = 12
	UVOffset        = 24
	ObjectBlockSize = 192
)

func roundUp(v, a int) int {
	return (v + a - 1) / a * a
}

// Offsets returns each field's byte offset and the block size, rounded to
// 16 bytes.
func Offsets(fields []Field) (offsets []int, size int) {
	offsets = make([]int, len(fields))
	off := 0
	for i, f := range fields {
		off = roundUp(off, f.Kind.align())
		offsets[i] = off
		off += f.Kind.size()
	}
	return offsets, max(roundUp(off, 16), 16)
}

// Pack writes uniform values into a block laid out by Offsets. Missing
// uniforms are zero, except matrices which default to identity.
func Pack(fields []Field, u render.Uniforms) []byte {
	offsets, size := Offsets(fields)
	buf := make([]byte, size)
	for i, f := range fields {
		dst := buf[offsets[i]:]
		switch f.Kind {
		case Float:
			putFloats(dst, u.Float(f.Name))
		case Vec2:
			v := u.Vec2(f.Name)
			putFloats(dst, v[:]...)
		case Vec3:
			v := u.Vec3(f.Name)
			putFloats(dst, v[:]...)
		case Vec4:
			v := u.Vec4(f.Name)
			putFloats(dst, v[:]...)
		case Mat4:
			m := u.Mat4(f.Name)
			putFloats(dst, m[:]...)
		}
	}
	return buf
}

// PackObject lays out the object block: model, view, projection.
func PackObject(model, view, projection mgl32.Mat4) []byte {
	buf := make([]byte, ObjectBlockSize)
	putFloats(buf, model[:]...)
	putFloats(buf[64:], view[:]...)
	putFloats(buf[128:], projection[:]...)
	return buf
}

func putFloats(dst []byte, vs ...float32) {
	for i, v := range vs {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}
