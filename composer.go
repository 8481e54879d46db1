package postfx

import (
	"fmt"
	"slices"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/postfx/render"
)

// Surface labels of the composer's ping-pong buffers.
const (
	LabelBuffer1 = "EffectComposer.rt1"
	LabelBuffer2 = "EffectComposer.rt2"
)

// Composer runs an ordered list of passes once per frame over a pair of
// ping-pong surfaces.
//
// Each enabled pass reads the read surface and writes the write surface,
// renders in place or renders to the screen. After a pass with NeedsSwap
// set, the two surfaces exchange roles. While a mask bracket is open the
// composer first copies the unmasked region from read to write so the swap
// keeps it intact.
//
// Thread Safety: Composer is NOT thread-safe; it shares its renderer's
// threading constraints.
//
// Example:
//
//	c, err := postfx.NewComposer(r)
//	if err != nil {
//	    return err
//	}
//	c.AddPass(postfx.NewRenderPass(scene, camera))
//	outline := postfx.NewOutlinePass(r, image.Pt(w, h), scene, camera, selected)
//	outline.RenderToScreen = true
//	c.AddPass(outline)
//	for running {
//	    if err := c.RenderDelta(); err != nil {
//	        return err
//	    }
//	}
type Composer struct {
	renderer render.Renderer

	buffer1, buffer2 render.Surface
	write, read      render.Surface

	passes   []Pass
	copyPass *ShaderPass

	clock     func() time.Time
	prevFrame time.Time
}

// NewComposer creates a composer drawing with r. Unless WithRenderTarget
// supplies one, both buffers are allocated at the drawing-buffer size with
// linear filtering and depth and stencil buffers.
func NewComposer(r render.Renderer, opts ...ComposerOption) (*Composer, error) {
	if r == nil {
		return nil, ErrNilRenderer
	}
	o := defaultComposerOptions()
	for _, opt := range opts {
		opt(&o)
	}
	propagateLogger(r)

	c := &Composer{
		renderer: r,
		copyPass: NewShaderPass(CopyShader(), ""),
		clock:    o.clock,
	}
	c.prevFrame = c.clock()

	first := o.target
	if first == nil {
		w, h := r.DrawingBufferSize()
		desc := render.DefaultSurfaceDescriptor(LabelBuffer1, w, h)
		desc.StencilBuffer = true
		s, err := r.NewSurface(desc)
		if err != nil {
			return nil, fmt.Errorf("postfx: allocate %s: %w", LabelBuffer1, err)
		}
		first = s
	}
	if err := c.setBuffers(first); err != nil {
		return nil, err
	}
	Logger().Info("postfx: composer created",
		"width", first.Width(), "height", first.Height())
	return c, nil
}

// setBuffers installs first and a clone of it as the ping-pong pair.
func (c *Composer) setBuffers(first render.Surface) error {
	second, err := c.renderer.NewSurface(first.Descriptor().WithLabel(LabelBuffer2))
	if err != nil {
		return fmt.Errorf("postfx: allocate %s: %w", LabelBuffer2, err)
	}
	c.buffer1, c.buffer2 = first, second
	c.write, c.read = first, second
	return nil
}

// Renderer returns the renderer the composer draws with.
func (c *Composer) Renderer() render.Renderer { return c.renderer }

// ReadBuffer returns the surface the next pass reads.
func (c *Composer) ReadBuffer() render.Surface { return c.read }

// WriteBuffer returns the surface the next pass writes.
func (c *Composer) WriteBuffer() render.Surface { return c.write }

// SwapBuffers exchanges the read and write roles. Contents are not moved.
func (c *Composer) SwapBuffers() {
	c.read, c.write = c.write, c.read
}

// Passes returns a copy of the pass list in execution order.
func (c *Composer) Passes() []Pass {
	return slices.Clone(c.passes)
}

// AddPass appends p and sizes it to the drawing buffer.
func (c *Composer) AddPass(p Pass) {
	c.passes = append(c.passes, p)
	p.SetSize(c.renderer.DrawingBufferSize())
}

// InsertPass inserts p before index. Unlike AddPass it does not size p.
func (c *Composer) InsertPass(p Pass, index int) error {
	if index < 0 || index > len(c.passes) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(c.passes))
	}
	c.passes = slices.Insert(c.passes, index, p)
	return nil
}

// RemovePass removes p and reports whether it was in the list.
func (c *Composer) RemovePass(p Pass) bool {
	i := slices.Index(c.passes, p)
	if i < 0 {
		return false
	}
	c.passes = slices.Delete(c.passes, i, i+1)
	return true
}

// RenderDelta renders a frame with deltaTime measured since the previous
// frame.
func (c *Composer) RenderDelta() error {
	return c.Render(c.clock().Sub(c.prevFrame).Seconds())
}

// Render runs every enabled pass once. deltaTime is in seconds. The render
// target bound before the call is bound again afterwards. A pass error
// stops the frame and is returned.
func (c *Composer) Render(deltaTime float64) error {
	c.prevFrame = c.clock()

	r := c.renderer
	current := r.RenderTarget()
	defer r.SetRenderTarget(current)

	maskActive := false
	for i, p := range c.passes {
		b := p.Base()
		if !b.Enabled {
			continue
		}
		if err := p.Render(r, c.write, c.read, deltaTime, maskActive); err != nil {
			return fmt.Errorf("postfx: pass %d (%T): %w", i, p, err)
		}
		if b.NeedsSwap {
			if maskActive {
				if err := c.copyUnmasked(deltaTime); err != nil {
					return fmt.Errorf("postfx: pass %d (%T): mask copy: %w", i, p, err)
				}
			}
			c.SwapBuffers()
		}
		switch p.MaskEffect() {
		case MaskBegin:
			maskActive = true
		case MaskEnd:
			maskActive = false
		}
	}
	return nil
}

// copyUnmasked copies read into write outside the stencil mask.
func (c *Composer) copyUnmasked(deltaTime float64) error {
	st := &c.renderer.State().Stencil
	st.SetFunc(gputypes.CompareFunctionNotEqual, 1, 0xffffffff)
	err := c.copyPass.Render(c.renderer, c.write, c.read, deltaTime, false)
	st.SetFunc(gputypes.CompareFunctionEqual, 1, 0xffffffff)
	return err
}

// Reset replaces both buffers. A nil target clones the current first buffer
// at the drawing-buffer size. The old buffers are kept when allocation fails.
func (c *Composer) Reset(target render.Surface) error {
	owned := target == nil
	if owned {
		s, err := render.Clone(c.renderer, c.buffer1)
		if err != nil {
			return fmt.Errorf("postfx: reset: %w", err)
		}
		s.SetSize(c.renderer.DrawingBufferSize())
		target = s
	}
	old1, old2 := c.buffer1, c.buffer2
	if err := c.setBuffers(target); err != nil {
		if owned {
			target.Dispose()
		}
		return fmt.Errorf("postfx: reset: %w", err)
	}
	old1.Dispose()
	old2.Dispose()
	return nil
}

// SetSize resizes both buffers and every pass.
func (c *Composer) SetSize(width, height int) {
	c.buffer1.SetSize(width, height)
	c.buffer2.SetSize(width, height)
	for _, p := range c.passes {
		p.SetSize(width, height)
	}
	Logger().Debug("postfx: composer resized", "width", width, "height", height)
}

// Dispose releases both buffers.
func (c *Composer) Dispose() {
	c.buffer1.Dispose()
	c.buffer2.Dispose()
}
