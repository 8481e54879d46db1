package postfx

import (
	"maps"

	"github.com/gogpu/postfx/render"
)

// DefaultTextureID is the uniform a ShaderPass binds the read surface to.
const DefaultTextureID = "tDiffuse"

// ShaderDef describes a full-screen effect: the program to run and the
// uniforms and defines it starts with.
type ShaderDef struct {
	Program  string
	Uniforms render.Uniforms
	Defines  map[string]int
}

// CopyShader returns the definition of the plain texture copy: tDiffuse
// scaled by opacity.
func CopyShader() ShaderDef {
	return ShaderDef{
		Program: render.ProgramCopy,
		Uniforms: render.Uniforms{
			"tDiffuse": nil,
			"opacity":  float32(1),
		},
	}
}

// ShaderPass runs a fragment program over the whole read surface and writes
// the result to the write surface or the screen.
type ShaderPass struct {
	PassBase

	// TextureID is the uniform the read surface is bound to.
	TextureID string

	// Uniforms are the material's uniforms, shared with Material.
	Uniforms render.Uniforms

	Material *render.Material

	quad *FullScreenQuad
}

// NewShaderPass returns a pass running def. The uniforms are copied from
// def, so passes built from one definition do not share values. An empty
// textureID selects DefaultTextureID.
func NewShaderPass(def ShaderDef, textureID string) *ShaderPass {
	m := render.NewMaterial(def.Program, def.Uniforms.Clone())
	m.Defines = maps.Clone(def.Defines)
	return NewShaderPassMaterial(m, textureID)
}

// NewShaderPassMaterial returns a pass drawing m. The pass uses m and its
// uniforms directly.
func NewShaderPassMaterial(m *render.Material, textureID string) *ShaderPass {
	if textureID == "" {
		textureID = DefaultTextureID
	}
	return &ShaderPass{
		PassBase:  NewPassBase(),
		TextureID: textureID,
		Uniforms:  m.Uniforms,
		Material:  m,
		quad:      NewFullScreenQuad(m),
	}
}

// Render implements Pass.
func (p *ShaderPass) Render(r render.Renderer, write, read render.Surface, _ float64, _ bool) error {
	if p.Uniforms.Has(p.TextureID) {
		p.Uniforms[p.TextureID] = read
	}
	p.quad.SetMaterial(p.Material)

	if p.RenderToScreen {
		r.SetRenderTarget(nil)
		return p.quad.Render(r, nil, false)
	}
	r.SetRenderTarget(write)
	if p.Clear {
		if err := r.Clear(true, true, true); err != nil {
			return err
		}
	}
	return p.quad.Render(r, nil, false)
}
