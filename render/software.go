// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"image"
	"sort"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"
)

// SoftwareRenderer is a CPU renderer that rasterizes scenes into
// software surfaces.
//
// It runs the built-in programs as Go functions and emulates the
// fixed-function pipeline: near-plane clipping, face culling, the depth and
// stencil tests, color masking and blending. Results match the GPU renderer
// up to rasterization and 8-bit rounding differences, which makes it the
// reference backend for tests.
//
// Example:
//
//	r := render.NewSoftwareRenderer(800, 600)
//	r.SetClearColor(render.Hex(0x222222), 1)
//	if err := r.Render(scene, camera, nil, true); err != nil {
//	    log.Fatal(err)
//	}
//	img, _ := r.ReadPixels(nil)
type SoftwareRenderer struct {
	screen *softwareSurface
	target Surface

	clearColor gputypes.Color
	clearAlpha float64
	autoClear  bool

	state    *State
	programs map[string]SoftwareProgram
}

// NewSoftwareRenderer creates a renderer whose screen is width x height
// with depth and stencil buffers. The clear color is black with alpha 1
// and auto-clear is on.
func NewSoftwareRenderer(width, height int) *SoftwareRenderer {
	r := &SoftwareRenderer{
		clearAlpha: 1,
		autoClear:  true,
		state:      NewState(),
		programs:   builtinPrograms(),
	}
	desc := DefaultSurfaceDescriptor("screen", width, height)
	desc.StencilBuffer = true
	r.screen = newSoftwareSurface(r, desc)
	return r
}

// SetSize resizes the screen.
func (r *SoftwareRenderer) SetSize(width, height int) {
	r.screen.SetSize(width, height)
}

// DrawingBufferSize returns the screen size.
func (r *SoftwareRenderer) DrawingBufferSize() (width, height int) {
	return r.screen.Width(), r.screen.Height()
}

// RenderTarget returns the bound surface, nil for the screen.
func (r *SoftwareRenderer) RenderTarget() Surface { return r.target }

// SetRenderTarget binds a surface, nil for the screen.
func (r *SoftwareRenderer) SetRenderTarget(s Surface) { r.target = s }

// ClearColor returns the clear color.
func (r *SoftwareRenderer) ClearColor() gputypes.Color { return r.clearColor }

// ClearAlpha returns the clear alpha.
func (r *SoftwareRenderer) ClearAlpha() float64 { return r.clearAlpha }

// SetClearColor sets the color and alpha used by Clear.
func (r *SoftwareRenderer) SetClearColor(c gputypes.Color, alpha float64) {
	r.clearColor = c
	r.clearAlpha = alpha
}

// AutoClear reports whether Render clears before drawing.
func (r *SoftwareRenderer) AutoClear() bool { return r.autoClear }

// SetAutoClear enables or disables clearing in Render.
func (r *SoftwareRenderer) SetAutoClear(on bool) { r.autoClear = on }

// State returns the fixed-function state.
func (r *SoftwareRenderer) State() *State { return r.state }

// NewSurface allocates a surface owned by this renderer.
func (r *SoftwareRenderer) NewSurface(desc SurfaceDescriptor) (Surface, error) {
	return newSoftwareSurface(r, desc), nil
}

// LoadTexture copies img into a new surface. desc supplies sampling
// parameters; its size is replaced by the image bounds.
func (r *SoftwareRenderer) LoadTexture(img image.Image, desc SurfaceDescriptor) (Surface, error) {
	b := img.Bounds()
	s := newSoftwareSurface(r, desc.WithSize(b.Dx(), b.Dy()))
	draw.Draw(s.color, s.color.Bounds(), img, b.Min, draw.Src)
	return s, nil
}

// ReadPixels returns a copy of a surface's color buffer. A nil surface
// reads the screen.
func (r *SoftwareRenderer) ReadPixels(s Surface) (*image.NRGBA, error) {
	ss, err := r.resolve(s)
	if err != nil {
		return nil, err
	}
	out := image.NewNRGBA(ss.color.Rect)
	copy(out.Pix, ss.color.Pix)
	return out, nil
}

// RegisterProgram adds or replaces a program.
func (r *SoftwareRenderer) RegisterProgram(name string, p SoftwareProgram) {
	r.programs[name] = p
}

// HasProgram reports whether a program is registered.
func (r *SoftwareRenderer) HasProgram(name string) bool {
	_, ok := r.programs[name]
	return ok
}

// resolve maps a surface to its software implementation. nil is the screen.
func (r *SoftwareRenderer) resolve(s Surface) (*softwareSurface, error) {
	if s == nil {
		return r.screen, nil
	}
	ss, ok := s.(*softwareSurface)
	if !ok || ss.owner != r {
		return nil, ErrForeignSurface
	}
	if ss.disposed {
		return nil, fmt.Errorf("%w: %q", ErrDisposed, ss.desc.Label)
	}
	return ss, nil
}

// Clear clears the selected buffers of the bound target.
func (r *SoftwareRenderer) Clear(color, depth, stencil bool) error {
	t, err := r.resolve(r.target)
	if err != nil {
		return err
	}
	c := r.clearColor
	r.clear(t, [4]float32{float32(c.R), float32(c.G), float32(c.B), float32(r.clearAlpha)}, color, depth, stencil)
	return nil
}

func (r *SoftwareRenderer) clear(t *softwareSurface, c [4]float32, color, depth, stencil bool) {
	if color && r.state.Color.Mask() {
		t.fill(c)
	}
	if depth && r.state.Depth.Mask() {
		for i := range t.depth {
			t.depth[i] = 1
		}
	}
	if stencil && t.stencil != nil {
		wm := uint8(r.state.Stencil.Mask())
		v := uint8(r.state.Stencil.ClearValue())
		for i, old := range t.stencil {
			t.stencil[i] = (old &^ wm) | (v & wm)
		}
	}
}

// drawItem is an object queued for drawing with its resolved material.
type drawItem struct {
	object   Object
	material *Material
	depth    float32
}

// Render draws the scene into target, or into the bound target when target
// is nil.
func (r *SoftwareRenderer) Render(scene Scene, camera Camera, target Surface, forceClear bool) error {
	if scene == nil || camera == nil {
		return ErrNilScene
	}
	if target != nil {
		r.SetRenderTarget(target)
	}
	t, err := r.resolve(r.target)
	if err != nil {
		return err
	}

	clearColor := r.clearColor
	clearAlpha := r.clearAlpha
	if bg := scene.Background(); bg != nil {
		clearColor, clearAlpha = *bg, 1
		forceClear = true
	}
	if r.autoClear || forceClear {
		c := [4]float32{float32(clearColor.R), float32(clearColor.G), float32(clearColor.B), float32(clearAlpha)}
		r.clear(t, c, true, true, true)
	}

	opaque, transparent := r.collect(scene, camera)
	sort.SliceStable(transparent, func(i, j int) bool {
		return transparent[i].depth > transparent[j].depth
	})
	for _, list := range [][]drawItem{opaque, transparent} {
		for _, it := range list {
			if err := r.draw(t, camera, it.object, it.material); err != nil {
				return err
			}
		}
	}
	return nil
}

// collect walks the visible part of the graph. An invisible node hides its
// whole subtree.
func (r *SoftwareRenderer) collect(scene Scene, camera Camera) (opaque, transparent []drawItem) {
	override := scene.OverrideMaterial()
	view := camera.MatrixWorldInverse()

	var walk func(o Object)
	walk = func(o Object) {
		if !o.Visible() {
			return
		}
		if o.Kind().Drawable() && o.Geometry() != nil {
			m := override
			if m == nil {
				m = o.Material()
			}
			if m != nil {
				w := o.MatrixWorld()
				z := -view.Mul4x1(w.Col(3)).Z()
				it := drawItem{object: o, material: m, depth: z}
				if m.Transparent {
					transparent = append(transparent, it)
				} else {
					opaque = append(opaque, it)
				}
			}
		}
		for _, c := range o.Children() {
			walk(c)
		}
	}
	walk(scene)
	return opaque, transparent
}
