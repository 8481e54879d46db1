// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"bytes"
	"embed"
	"fmt"
	"maps"
	"slices"
	"strings"
	"text/template"

	"github.com/gogpu/postfx/render"
)

//go:embed wgsl/*.wgsl
var sources embed.FS

// Entry points every program defines.
const (
	VertexEntry   = "vs_main"
	FragmentEntry = "fs_main"
)

// Program describes a fragment program and its resource layout.
type Program struct {
	Name string

	// Fields is the material uniform block, in declaration order.
	Fields []Field

	// Textures are the sampled uniforms, in binding order.
	Textures []string

	// Defines are the default values of compile-time constants.
	Defines map[string]int

	// Source is the fragment stage. The shared vertex stage is prepended
	// when the program is expanded.
	Source string
}

// TextureBinding returns the binding of texture i; its sampler follows it.
func TextureBinding(i int) uint32 {
	return uint32(2 + 2*i)
}

// UniformSize returns the material block size in bytes.
func (p *Program) UniformSize() int {
	_, size := Offsets(p.Fields)
	return size
}

// PackUniforms lays out a material's uniforms for upload.
func (p *Program) PackUniforms(u render.Uniforms) []byte {
	return Pack(p.Fields, u)
}

// Expand returns the complete WGSL for a define set. Unset defines take the
// program's defaults.
func (p *Program) Expand(defines map[string]int) (string, error) {
	t, err := template.New(p.Name).Option("missingkey=error").Parse(commonSource + "\n" + p.Source)
	if err != nil {
		return "", fmt.Errorf("shader %s: %w", p.Name, err)
	}
	vals := maps.Clone(p.Defines)
	if vals == nil {
		vals = make(map[string]int)
	}
	maps.Copy(vals, defines)

	var b bytes.Buffer
	if err := t.Execute(&b, vals); err != nil {
		return "", fmt.Errorf("shader %s: %w", p.Name, err)
	}
	return b.String(), nil
}

// DefinesKey returns a stable cache key for a define set merged over the
// program defaults.
func (p *Program) DefinesKey(defines map[string]int) string {
	vals := maps.Clone(p.Defines)
	if vals == nil {
		vals = make(map[string]int)
	}
	maps.Copy(vals, defines)
	keys := slices.Sorted(maps.Keys(vals))
	var sb strings.Builder
	sb.WriteString(p.Name)
	for _, k := range keys {
		fmt.Fprintf(&sb, ";%s=%d", k, vals[k])
	}
	return sb.String()
}

var commonSource = mustRead("common.wgsl")

func mustRead(name string) string {
	b, err := sources.ReadFile("wgsl/" + name)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// builtins returns fresh descriptions of the built-in programs.
func builtins() []*Program {
	return []*Program{
		{
			Name:   render.ProgramBasic,
			Fields: []Field{{"color", Vec3}, {"opacity", Float}},
			Source: mustRead("basic.wgsl"),
		},
		{
			Name:   render.ProgramLambert,
			Fields: []Field{{"color", Vec3}, {"opacity", Float}},
			Source: mustRead("lambert.wgsl"),
		},
		{
			Name:   render.ProgramDepth,
			Fields: []Field{{"pad", Vec4}},
			Source: mustRead("depth.wgsl"),
		},
		{
			Name:     render.ProgramPrepareMask,
			Fields:   []Field{{"textureMatrix", Mat4}, {"cameraNearFar", Vec2}},
			Textures: []string{"depthTexture"},
			Source:   mustRead("prepare_mask.wgsl"),
		},
		{
			Name:     render.ProgramCopy,
			Fields:   []Field{{"opacity", Float}},
			Textures: []string{"tDiffuse"},
			Source:   mustRead("copy.wgsl"),
		},
		{
			Name: render.ProgramEdgeDetect,
			Fields: []Field{
				{"texSize", Vec2},
				{"visibleEdgeColor", Vec3},
				{"hiddenEdgeColor", Vec3},
			},
			Textures: []string{"maskTexture"},
			Source:   mustRead("edge_detect.wgsl"),
		},
		{
			Name: render.ProgramSeparableBlur,
			Fields: []Field{
				{"texSize", Vec2},
				{"direction", Vec2},
				{"kernelRadius", Float},
			},
			Textures: []string{"colorTexture"},
			Defines:  map[string]int{render.DefineMaxRadius: 4},
			Source:   mustRead("separable_blur.wgsl"),
		},
		{
			Name: render.ProgramOverlay,
			Fields: []Field{
				{"visibleEdgeColor", Vec3},
				{"edgeStrength", Float},
				{"hiddenEdgeColor", Vec3},
				{"edgeGlow", Float},
				{"usePatternTexture", Float},
				{"pulseWeight", Float},
			},
			Textures: []string{"maskTexture", "edgeTexture1", "edgeTexture2", "patternTexture"},
			Source:   mustRead("overlay.wgsl"),
		},
	}
}
