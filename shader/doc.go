// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package shader holds the WGSL sources of the built-in programs, their
// uniform block layouts and a compiling library.
//
// Every program shares one vertex stage and one bind group:
//
//	@binding(0)        Object uniforms: model, view, projection (mat4x4)
//	@binding(1)        Material uniforms, laid out per Program.Fields
//	@binding(2+2i)     texture i, named by Program.Textures[i]
//	@binding(3+2i)     sampler for texture i
//
// Vertex buffers are interleaved position (vec3), normal (vec3) and uv
// (vec2), VertexStride bytes per vertex.
//
// Sources are text/template documents; integer defines such as MAX_RADIUS
// are substituted before compilation. Compile translates WGSL to SPIR-V with
// naga and caches the result per define set.
package shader
