package postfx

import (
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"log/slog"
	"testing"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/postfx/render"
)

var testResolution = image.Pt(32, 24)

// fakeSurface is a surface without pixels.
type fakeSurface struct {
	desc     render.SurfaceDescriptor
	disposed bool
}

func (s *fakeSurface) Descriptor() render.SurfaceDescriptor { return s.desc }
func (s *fakeSurface) Width() int                           { return s.desc.Width }
func (s *fakeSurface) Height() int                          { return s.desc.Height }
func (s *fakeSurface) SetSize(w, h int)                     { s.desc = s.desc.WithSize(w, h).Normalize() }
func (s *fakeSurface) Dispose()                             { s.disposed = true }

// drawCall records one Clear or Render call.
type drawCall struct {
	op          string // "clear" or "render"
	target      string // surface label, "screen" for nil
	program     string // program of the drawn material
	forceClear  bool
	stencilTest bool
	stencilFunc gputypes.CompareFunction
	autoClear   bool
}

// fakeRenderer records the calls passes make and keeps the renderer state
// they read and write.
type fakeRenderer struct {
	width, height int

	target     render.Surface
	clearColor gputypes.Color
	clearAlpha float64
	autoClear  bool
	state      *render.State

	programs map[string]bool
	logger   *slog.Logger

	calls       []drawCall
	failOn      string
	failSurface bool
	surface     int
	onRender func(program string)
}

var (
	errFakeDraw    = errors.New("fake draw failure")
	errFakeSurface = errors.New("fake surface allocation failure")
)

func newFakeRenderer(width, height int) *fakeRenderer {
	r := &fakeRenderer{
		width:      width,
		height:     height,
		clearAlpha: 1,
		autoClear:  true,
		state:      render.NewState(),
		programs:   map[string]bool{},
	}
	for _, name := range outlinePrograms {
		r.programs[name] = true
	}
	r.programs[render.ProgramBasic] = true
	return r
}

func (r *fakeRenderer) RenderTarget() render.Surface     { return r.target }
func (r *fakeRenderer) SetRenderTarget(s render.Surface) { r.target = s }
func (r *fakeRenderer) ClearColor() gputypes.Color       { return r.clearColor }
func (r *fakeRenderer) ClearAlpha() float64              { return r.clearAlpha }
func (r *fakeRenderer) AutoClear() bool                  { return r.autoClear }
func (r *fakeRenderer) SetAutoClear(on bool)             { r.autoClear = on }
func (r *fakeRenderer) State() *render.State             { return r.state }
func (r *fakeRenderer) DrawingBufferSize() (int, int)    { return r.width, r.height }
func (r *fakeRenderer) HasProgram(name string) bool      { return r.programs[name] }
func (r *fakeRenderer) SetLogger(l *slog.Logger)         { r.logger = l }
func (r *fakeRenderer) SetClearColor(c gputypes.Color, a float64) {
	r.clearColor, r.clearAlpha = c, a
}

func (r *fakeRenderer) NewSurface(desc render.SurfaceDescriptor) (render.Surface, error) {
	if r.failSurface {
		return nil, errFakeSurface
	}
	r.surface++
	return &fakeSurface{desc: desc.Normalize()}, nil
}

func (r *fakeRenderer) record(op, program string, forceClear bool) drawCall {
	label := "screen"
	if r.target != nil {
		label = r.target.Descriptor().Label
	}
	f, _, _ := r.state.Stencil.Func()
	c := drawCall{
		op:          op,
		target:      label,
		program:     program,
		forceClear:  forceClear,
		stencilTest: r.state.Stencil.Test(),
		stencilFunc: f,
		autoClear:   r.autoClear,
	}
	r.calls = append(r.calls, c)
	return c
}

func (r *fakeRenderer) Clear(color, depth, stencil bool) error {
	r.record("clear", "", false)
	return nil
}

func (r *fakeRenderer) Render(s render.Scene, camera render.Camera, target render.Surface, forceClear bool) error {
	if s == nil || camera == nil {
		return render.ErrNilScene
	}
	if target != nil {
		r.target = target
	}
	program := ""
	if m := s.OverrideMaterial(); m != nil {
		program = m.Program
	} else {
		s.Traverse(func(o render.Object) {
			if program == "" && o.Visible() && o.Material() != nil {
				program = o.Material().Program
			}
		})
	}
	r.record("render", program, forceClear)
	if r.onRender != nil {
		r.onRender(program)
	}
	if program != "" && program == r.failOn {
		return errFakeDraw
	}
	return nil
}

// renders returns the recorded render calls.
func (r *fakeRenderer) renders() []drawCall {
	var out []drawCall
	for _, c := range r.calls {
		if c.op == "render" {
			out = append(out, c)
		}
	}
	return out
}

// countingPass is a pass that records how it was called.
type countingPass struct {
	PassBase
	name    string
	renders int
	deltas  []float64
	masks   []bool
	sizes   []image.Point
	err     error
}

func newCountingPass(name string, needsSwap bool) *countingPass {
	p := &countingPass{PassBase: NewPassBase(), name: name}
	p.NeedsSwap = needsSwap
	return p
}

func (p *countingPass) SetSize(w, h int) { p.sizes = append(p.sizes, image.Pt(w, h)) }

func (p *countingPass) Render(r render.Renderer, write, read render.Surface, dt float64, maskActive bool) error {
	p.renders++
	p.deltas = append(p.deltas, dt)
	p.masks = append(p.masks, maskActive)
	return p.err
}

// checksum hashes the color buffer of s.
func checksum(t *testing.T, r render.PixelReader, s render.Surface) uint32 {
	t.Helper()
	img, err := r.ReadPixels(s)
	if err != nil {
		t.Fatalf("ReadPixels(%s): %v", s.Descriptor().Label, err)
	}
	return crc32.ChecksumIEEE(img.Pix)
}

// delta is the per-channel difference out - base.
type delta struct{ r, g, b int }

func diff(out, base color.NRGBA) delta {
	return delta{int(out.R) - int(base.R), int(out.G) - int(base.G), int(out.B) - int(base.B)}
}

func (d delta) white() bool   { return d.r > 40 && d.g > 40 && d.b > 40 }
func (d delta) magenta() bool { return d.r > 40 && d.b > 40 && d.g == 0 }
func (d delta) zero() bool    { return d == delta{} }

// regionCount counts pixels in rect whose delta satisfies pred.
func regionCount(out, base *image.NRGBA, rect image.Rectangle, pred func(delta) bool) int {
	n := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if pred(diff(out.NRGBAAt(x, y), base.NRGBAAt(x, y))) {
				n++
			}
		}
	}
	return n
}

// millis converts fractional milliseconds to a duration.
func millis(v float64) time.Duration { return time.Duration(v * float64(time.Millisecond)) }
