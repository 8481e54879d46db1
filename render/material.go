// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"maps"

	"github.com/gogpu/gputypes"
)

// Side selects which triangle faces a material draws.
type Side uint8

const (
	// FrontSide draws counter-clockwise faces only.
	FrontSide Side = iota

	// BackSide draws clockwise faces only.
	BackSide

	// DoubleSide draws both faces.
	DoubleSide
)

// Blending selects the fixed-function blend equation of a material.
type Blending uint8

const (
	// NormalBlending is source-over for transparent materials and no
	// blending for opaque ones.
	NormalBlending Blending = iota

	// NoBlending replaces the destination.
	NoBlending

	// AdditiveBlending adds the alpha-weighted source to the destination.
	AdditiveBlending
)

// String returns the blending name.
func (b Blending) String() string {
	switch b {
	case NormalBlending:
		return "Normal"
	case NoBlending:
		return "None"
	case AdditiveBlending:
		return "Additive"
	default:
		return "Unknown"
	}
}

// Material binds a shader program to its uniform values and fixed-function
// state.
//
// Program names a program in the renderer's shader library. Defines are
// compile-time integer constants substituted into the program source.
type Material struct {
	Name     string
	Program  string
	Uniforms Uniforms
	Defines  map[string]int

	Side        Side
	Blending    Blending
	DepthTest   bool
	DepthWrite  bool
	Transparent bool
}

// NewMaterial returns a material with depth test and write enabled, front
// side culling and normal blending.
func NewMaterial(program string, uniforms Uniforms) *Material {
	if uniforms == nil {
		uniforms = Uniforms{}
	}
	return &Material{
		Name:       program,
		Program:    program,
		Uniforms:   uniforms,
		DepthTest:  true,
		DepthWrite: true,
	}
}

// BlendState returns the blend state the material draws with, or nil when
// the source replaces the destination.
func (m *Material) BlendState() *gputypes.BlendState {
	switch m.Blending {
	case AdditiveBlending:
		s := AdditiveBlendState()
		return &s
	case NormalBlending:
		if !m.Transparent {
			return nil
		}
		s := gputypes.BlendStateAlpha()
		return &s
	default:
		return nil
	}
}

// Clone returns a copy with independent uniform and define maps.
func (m *Material) Clone() *Material {
	c := *m
	c.Uniforms = m.Uniforms.Clone()
	c.Defines = maps.Clone(m.Defines)
	return &c
}

// Define returns the value of a compile-time define, or def when unset.
func (m *Material) Define(name string, def int) int {
	if v, ok := m.Defines[name]; ok {
		return v
	}
	return def
}

// AdditiveBlendState returns src*srcAlpha + dst on both color and alpha.
func AdditiveBlendState() gputypes.BlendState {
	c := gputypes.BlendComponent{
		SrcFactor: gputypes.BlendFactorSrcAlpha,
		DstFactor: gputypes.BlendFactorOne,
		Operation: gputypes.BlendOperationAdd,
	}
	return gputypes.BlendState{Color: c, Alpha: c}
}
