package postfx

import "github.com/gogpu/postfx/render"

// MaskEffect tells the Composer how a pass changes the stencil mask state.
type MaskEffect uint8

const (
	// MaskNone leaves the mask state unchanged.
	MaskNone MaskEffect = iota

	// MaskBegin activates the mask for the passes that follow.
	MaskBegin

	// MaskEnd deactivates the mask.
	MaskEnd
)

// String returns the effect name.
func (e MaskEffect) String() string {
	switch e {
	case MaskNone:
		return "None"
	case MaskBegin:
		return "Begin"
	case MaskEnd:
		return "End"
	default:
		return "Unknown"
	}
}

// Pass is one stage of a Composer pipeline.
//
// Render draws from read into write, into read in place, or onto the
// screen, as its flags say. deltaTime is the frame time in seconds and
// maskActive reports whether a stencil mask bracket is open. A pass that
// changes renderer state other than the mask restores it before returning.
type Pass interface {
	// Base returns the pass flags. The pointer is stable.
	Base() *PassBase

	// MaskEffect reports how the pass changes the mask state.
	MaskEffect() MaskEffect

	// SetSize resizes any surfaces the pass owns.
	SetSize(width, height int)

	Render(r render.Renderer, write, read render.Surface, deltaTime float64, maskActive bool) error
}

// PassBase holds the flags shared by every pass. Embed it to get the Base,
// MaskEffect and SetSize methods of a stateless pass.
type PassBase struct {
	// Enabled gates the pass entirely.
	Enabled bool

	// NeedsSwap reports that the output is in the write surface and the
	// composer must swap read and write afterwards.
	NeedsSwap bool

	// Clear makes the pass clear its destination before drawing.
	Clear bool

	// RenderToScreen redirects the output to the screen.
	RenderToScreen bool
}

// NewPassBase returns enabled, swapping flags.
func NewPassBase() PassBase {
	return PassBase{Enabled: true, NeedsSwap: true}
}

// Base returns b.
func (b *PassBase) Base() *PassBase { return b }

// MaskEffect returns MaskNone.
func (b *PassBase) MaskEffect() MaskEffect { return MaskNone }

// SetSize does nothing.
func (b *PassBase) SetSize(width, height int) {}
