package postfx

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/postfx/render"
)

// RenderPass draws a scene into the read surface, or onto the screen. It is
// usually the first pass of a pipeline.
type RenderPass struct {
	PassBase

	Scene  render.Scene
	Camera render.Camera

	// OverrideMaterial, when set, replaces every material of the scene for
	// this pass.
	OverrideMaterial *render.Material

	// ClearColor, when set, replaces the renderer's clear color for this
	// pass, with ClearAlpha.
	ClearColor *gputypes.Color
	ClearAlpha float64

	// ClearDepth clears the depth buffer of the bound target before the
	// pass binds its own.
	ClearDepth bool
}

// NewRenderPass returns a clearing, non-swapping scene pass.
func NewRenderPass(s render.Scene, camera render.Camera) *RenderPass {
	p := &RenderPass{
		PassBase: NewPassBase(),
		Scene:    s,
		Camera:   camera,
	}
	p.Clear = true
	p.NeedsSwap = false
	return p
}

// Render implements Pass.
func (p *RenderPass) Render(r render.Renderer, _, read render.Surface, _ float64, _ bool) error {
	oldAutoClear := r.AutoClear()
	r.SetAutoClear(false)
	defer r.SetAutoClear(oldAutoClear)

	oldOverride := p.Scene.OverrideMaterial()
	p.Scene.SetOverrideMaterial(p.OverrideMaterial)
	defer p.Scene.SetOverrideMaterial(oldOverride)

	if p.ClearColor != nil {
		oldColor, oldAlpha := r.ClearColor(), r.ClearAlpha()
		r.SetClearColor(*p.ClearColor, p.ClearAlpha)
		defer r.SetClearColor(oldColor, oldAlpha)
	}

	if p.ClearDepth {
		if err := r.Clear(false, true, false); err != nil {
			return err
		}
	}

	if p.RenderToScreen {
		r.SetRenderTarget(nil)
	} else {
		r.SetRenderTarget(read)
	}
	if p.Clear {
		if err := r.Clear(true, true, true); err != nil {
			return err
		}
	}
	return r.Render(p.Scene, p.Camera, nil, false)
}
