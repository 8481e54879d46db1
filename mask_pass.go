package postfx

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/postfx/render"
)

// MaskPass writes a stencil mask from a scene into both ping-pong surfaces.
// Passes that follow it draw only where the mask is set, until a
// ClearMaskPass.
//
// Color and depth writes are disabled and locked while the mask is drawn,
// then unlocked and enabled again. The stencil test is left on with
// EQUAL 1 and KEEP operations.
type MaskPass struct {
	PassBase

	Scene  render.Scene
	Camera render.Camera

	// Inverse selects the pixels the scene does not cover.
	Inverse bool
}

// NewMaskPass returns a clearing, non-swapping mask pass.
func NewMaskPass(s render.Scene, camera render.Camera) *MaskPass {
	p := &MaskPass{
		PassBase: NewPassBase(),
		Scene:    s,
		Camera:   camera,
	}
	p.Clear = true
	p.NeedsSwap = false
	return p
}

// MaskEffect returns MaskBegin.
func (p *MaskPass) MaskEffect() MaskEffect { return MaskBegin }

// Render implements Pass.
func (p *MaskPass) Render(r render.Renderer, write, read render.Surface, _ float64, _ bool) error {
	st := r.State()

	st.Color.SetMask(false)
	st.Depth.SetMask(false)
	st.Color.SetLocked(true)
	st.Depth.SetLocked(true)

	var writeValue, clearValue uint32 = 1, 0
	if p.Inverse {
		writeValue, clearValue = 0, 1
	}

	st.Stencil.SetTest(true)
	st.Stencil.SetOp(gputypes.StencilOperationReplace, gputypes.StencilOperationReplace, gputypes.StencilOperationReplace)
	st.Stencil.SetFunc(gputypes.CompareFunctionAlways, writeValue, 0xffffffff)
	st.Stencil.SetClear(clearValue)

	err := p.draw(r, read)
	if err == nil {
		err = p.draw(r, write)
	}

	st.Color.SetLocked(false)
	st.Depth.SetLocked(false)
	st.Color.SetMask(true)
	st.Depth.SetMask(true)

	st.Stencil.SetFunc(gputypes.CompareFunctionEqual, 1, 0xffffffff)
	st.Stencil.SetOp(gputypes.StencilOperationKeep, gputypes.StencilOperationKeep, gputypes.StencilOperationKeep)
	return err
}

func (p *MaskPass) draw(r render.Renderer, target render.Surface) error {
	r.SetRenderTarget(target)
	if p.Clear {
		if err := r.Clear(true, true, true); err != nil {
			return err
		}
	}
	return r.Render(p.Scene, p.Camera, nil, false)
}

// ClearMaskPass ends a mask bracket by disabling the stencil test.
type ClearMaskPass struct {
	PassBase
}

// NewClearMaskPass returns a non-swapping clear-mask pass.
func NewClearMaskPass() *ClearMaskPass {
	p := &ClearMaskPass{PassBase: NewPassBase()}
	p.NeedsSwap = false
	return p
}

// MaskEffect returns MaskEnd.
func (p *ClearMaskPass) MaskEffect() MaskEffect { return MaskEnd }

// Render implements Pass.
func (p *ClearMaskPass) Render(r render.Renderer, _, _ render.Surface, _ float64, _ bool) error {
	r.State().Stencil.SetTest(false)
	return nil
}
