package postfx

import (
	"time"

	"github.com/gogpu/postfx/render"
	"github.com/gogpu/postfx/shader"
)

// ComposerOption configures a Composer during creation.
//
// Example:
//
//	// Default ping-pong buffers at the drawing-buffer size
//	c, err := postfx.NewComposer(r)
//
//	// Caller-provided buffer; the second one is a clone
//	c, err := postfx.NewComposer(r, postfx.WithRenderTarget(rt))
type ComposerOption func(*composerOptions)

// composerOptions holds optional configuration for Composer creation.
type composerOptions struct {
	target render.Surface
	clock  func() time.Time
}

func defaultComposerOptions() composerOptions {
	return composerOptions{clock: time.Now}
}

// WithRenderTarget makes the composer use s as its first ping-pong buffer
// instead of allocating one. The second buffer is allocated with the same
// descriptor.
func WithRenderTarget(s render.Surface) ComposerOption {
	return func(o *composerOptions) {
		o.target = s
	}
}

// WithClock sets the clock RenderDelta derives frame times from.
// Tests use it to make deltaTime deterministic.
func WithClock(now func() time.Time) ComposerOption {
	return func(o *composerOptions) {
		if now != nil {
			o.clock = now
		}
	}
}

// OutlineOption configures an OutlinePass during creation.
//
// Example:
//
//	p := postfx.NewOutlinePass(r, image.Pt(w, h), scene, camera, selected,
//	    postfx.WithDownSampleRatio(4),
//	    postfx.WithPatternTexture(tile))
type OutlineOption func(*outlineOptions)

// outlineOptions holds optional configuration for OutlinePass creation.
type outlineOptions struct {
	downSampleRatio float64
	pattern         render.Surface
	library         *shader.Library
	clock           func() time.Time
}

func defaultOutlineOptions() outlineOptions {
	return outlineOptions{
		downSampleRatio: 2,
		clock:           time.Now,
	}
}

// WithDownSampleRatio sets the ratio between the full resolution and the
// first blur tier. It is fixed for the life of the pass. Values <= 0 are
// ignored.
func WithDownSampleRatio(ratio float64) OutlineOption {
	return func(o *outlineOptions) {
		if ratio > 0 {
			o.downSampleRatio = ratio
		}
	}
}

// WithPatternTexture sets the texture tiled over the selected objects and
// enables it.
func WithPatternTexture(s render.Surface) OutlineOption {
	return func(o *outlineOptions) {
		o.pattern = s
	}
}

// WithShaderLibrary sets the library checked for the pass's programs when
// the renderer cannot report the programs it runs itself. The default is
// shader.Default().
func WithShaderLibrary(l *shader.Library) OutlineOption {
	return func(o *outlineOptions) {
		o.library = l
	}
}

// WithPulseClock sets the clock the pulse animation is derived from.
func WithPulseClock(now func() time.Time) OutlineOption {
	return func(o *outlineOptions) {
		if now != nil {
			o.clock = now
		}
	}
}
