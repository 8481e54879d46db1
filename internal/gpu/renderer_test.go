//go:build !nogpu

package gpu

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/postfx/render"
	"github.com/gogpu/postfx/scene"
)

func TestNewRendererDefaults(t *testing.T) {
	r := newTestRenderer(t, 64, 32)

	if w, h := r.DrawingBufferSize(); w != 64 || h != 32 {
		t.Errorf("DrawingBufferSize = %dx%d, want 64x32", w, h)
	}
	if r.ClearAlpha() != 1 {
		t.Errorf("ClearAlpha = %v, want 1", r.ClearAlpha())
	}
	if !r.AutoClear() {
		t.Error("AutoClear = false, want true")
	}
	if r.RenderTarget() != nil {
		t.Error("RenderTarget is not the screen")
	}
	if !r.screen.desc.StencilBuffer || !r.screen.desc.DepthBuffer {
		t.Error("screen has no depth-stencil buffer")
	}
	for _, name := range []string{render.ProgramBasic, render.ProgramOverlay, render.ProgramSeparableBlur} {
		if !r.HasProgram(name) {
			t.Errorf("HasProgram(%q) = false, want true", name)
		}
	}
	if r.HasProgram("missing") {
		t.Error(`HasProgram("missing") = true, want false`)
	}
}

func TestNewRendererNilDevice(t *testing.T) {
	if _, err := NewRenderer(nil, Config{Width: 1, Height: 1}); !errors.Is(err, ErrNoGPU) {
		t.Errorf("NewRenderer(nil) error = %v, want %v", err, ErrNoGPU)
	}
}

func TestNewSurfaceLazy(t *testing.T) {
	r := newTestRenderer(t, 16, 16)
	before := r.MemoryStats().SurfaceCount

	s, err := r.NewSurface(render.DefaultSurfaceDescriptor("lazy", 8, 8))
	if err != nil {
		t.Fatalf("NewSurface failed: %v", err)
	}
	gs := s.(*gpuSurface)
	if gs.color != nil {
		t.Error("texture allocated before first use")
	}
	if got := r.MemoryStats().SurfaceCount; got != before {
		t.Errorf("SurfaceCount = %d, want %d", got, before)
	}

	r.SetRenderTarget(s)
	if err := r.Clear(true, true, true); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if gs.color == nil || gs.depth == nil {
		t.Fatal("textures not allocated by Clear")
	}
	if !gs.initialized {
		t.Error("surface not initialized after Clear")
	}
	if got := r.MemoryStats().SurfaceCount; got != before+1 {
		t.Errorf("SurfaceCount = %d, want %d", got, before+1)
	}
}

func TestSurfaceSetSize(t *testing.T) {
	r := newTestRenderer(t, 16, 16)
	s, _ := r.NewSurface(render.DefaultSurfaceDescriptor("resized", 8, 8))
	gs := s.(*gpuSurface)
	r.SetRenderTarget(s)
	if err := r.Clear(true, false, false); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	sampler := gs.sampler

	s.SetSize(8, 8)
	if gs.color == nil {
		t.Error("same-size SetSize released the textures")
	}

	s.SetSize(4, 0)
	if gs.Width() != 4 || gs.Height() != 1 {
		t.Errorf("size = %dx%d, want 4x1", gs.Width(), gs.Height())
	}
	if gs.color != nil || gs.initialized {
		t.Error("SetSize kept the old textures")
	}
	if gs.sampler != sampler {
		t.Error("SetSize replaced the sampler")
	}
	if err := r.Clear(true, false, false); err != nil {
		t.Fatalf("Clear after resize failed: %v", err)
	}
	if gs.color == nil {
		t.Error("textures not reallocated")
	}
}

func TestSurfaceDispose(t *testing.T) {
	r := newTestRenderer(t, 16, 16)
	s, _ := r.NewSurface(render.DefaultSurfaceDescriptor("disposed", 8, 8))
	r.SetRenderTarget(s)
	if err := r.Clear(true, true, true); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	s.Dispose()
	s.Dispose()

	if err := r.Clear(true, true, true); !errors.Is(err, render.ErrDisposed) {
		t.Errorf("Clear on disposed surface error = %v, want %v", err, render.ErrDisposed)
	}
}

func TestForeignSurface(t *testing.T) {
	r1 := newTestRenderer(t, 8, 8)
	r2 := newTestRenderer(t, 8, 8)
	s, _ := r2.NewSurface(render.DefaultSurfaceDescriptor("other", 4, 4))

	r1.SetRenderTarget(s)
	if err := r1.Clear(true, true, true); !errors.Is(err, render.ErrForeignSurface) {
		t.Errorf("Clear error = %v, want %v", err, render.ErrForeignSurface)
	}
	if _, err := r1.ReadPixels(s); !errors.Is(err, render.ErrForeignSurface) {
		t.Errorf("ReadPixels error = %v, want %v", err, render.ErrForeignSurface)
	}
}

func TestMaskedClear(t *testing.T) {
	tests := []struct {
		name                  string
		setup                 func(*render.State)
		color, depth, stencil bool
	}{
		{"defaults", func(*render.State) {}, true, true, true},
		{"color mask off", func(s *render.State) { s.Color.SetMask(false) }, false, true, true},
		{"depth mask off", func(s *render.State) { s.Depth.SetMask(false) }, true, false, true},
		{"stencil mask zero", func(s *render.State) { s.Stencil.SetMask(0) }, true, true, false},
		{"stencil mask high bits", func(s *render.State) { s.Stencil.SetMask(0xff00) }, true, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Renderer{state: render.NewState()}
			tt.setup(r.state)
			ops := r.maskedClear(render.Hex(0x336699), 0.5, true, true, true)
			if ops.color != tt.color || ops.depth != tt.depth || ops.stencil != tt.stencil {
				t.Errorf("ops = (%v, %v, %v), want (%v, %v, %v)",
					ops.color, ops.depth, ops.stencil, tt.color, tt.depth, tt.stencil)
			}
			if ops.value.A != 0.5 {
				t.Errorf("clear alpha = %v, want 0.5", ops.value.A)
			}
		})
	}
}

func TestPassDescriptor(t *testing.T) {
	r := newTestRenderer(t, 8, 8)
	r.State().Stencil.SetClear(0x1ff)
	if _, err := r.resolve(nil); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	t.Run("first pass clears everything", func(t *testing.T) {
		desc := r.passDescriptor("test", r.screen, clearOps{})
		if desc.ColorAttachments[0].LoadOp != gputypes.LoadOpClear {
			t.Errorf("color LoadOp = %v, want Clear", desc.ColorAttachments[0].LoadOp)
		}
		if desc.DepthStencilAttachment == nil {
			t.Fatal("screen pass has no depth-stencil attachment")
		}
		if desc.DepthStencilAttachment.StencilLoadOp != gputypes.LoadOpClear {
			t.Errorf("stencil LoadOp = %v, want Clear", desc.DepthStencilAttachment.StencilLoadOp)
		}
	})

	r.screen.initialized = true

	t.Run("later pass loads", func(t *testing.T) {
		desc := r.passDescriptor("test", r.screen, clearOps{})
		if desc.ColorAttachments[0].LoadOp != gputypes.LoadOpLoad {
			t.Errorf("color LoadOp = %v, want Load", desc.ColorAttachments[0].LoadOp)
		}
		if desc.DepthStencilAttachment.DepthLoadOp != gputypes.LoadOpLoad {
			t.Errorf("depth LoadOp = %v, want Load", desc.DepthStencilAttachment.DepthLoadOp)
		}
	})

	t.Run("stencil clear value is masked", func(t *testing.T) {
		desc := r.passDescriptor("test", r.screen, clearOps{stencil: true})
		if got := desc.DepthStencilAttachment.StencilClearValue; got != 0xff {
			t.Errorf("StencilClearValue = %#x, want 0xff", got)
		}
		if desc.DepthStencilAttachment.DepthLoadOp != gputypes.LoadOpLoad {
			t.Errorf("depth LoadOp = %v, want Load", desc.DepthStencilAttachment.DepthLoadOp)
		}
	})

	t.Run("clear color", func(t *testing.T) {
		c := render.Hex(0x00ff00)
		c.A = 1
		desc := r.passDescriptor("test", r.screen, clearOps{color: true, value: c})
		if desc.ColorAttachments[0].ClearValue != c {
			t.Errorf("ClearValue = %v, want %v", desc.ColorAttachments[0].ClearValue, c)
		}
	})
}

func TestRenderScene(t *testing.T) {
	r := newTestRenderer(t, 32, 32)
	ts := newTestScene()
	bg := render.Hex(0x101010)
	ts.scene.SetBackground(&bg)

	if err := r.Render(ts.scene, ts.camera, nil, false); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !r.screen.initialized {
		t.Error("screen not initialized after Render")
	}
	if len(r.meshes.meshes) != 1 {
		t.Errorf("cached meshes = %d, want 1", len(r.meshes.meshes))
	}
	if len(r.transient) != 0 {
		t.Errorf("transient resources = %d, want 0 after submit", len(r.transient))
	}
}

func TestRenderNilScene(t *testing.T) {
	r := newTestRenderer(t, 8, 8)
	ts := newTestScene()
	if err := r.Render(nil, ts.camera, nil, false); !errors.Is(err, render.ErrNilScene) {
		t.Errorf("Render(nil) error = %v, want %v", err, render.ErrNilScene)
	}
}

func TestRenderSkipsHidden(t *testing.T) {
	r := newTestRenderer(t, 8, 8)
	ts := newTestScene()
	ts.cube.SetVisible(false)

	if err := r.Render(ts.scene, ts.camera, nil, false); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(r.pipelines.pipelines) != 0 {
		t.Errorf("pipelines = %d, want 0 for a hidden mesh", len(r.pipelines.pipelines))
	}
}

func TestRenderSampledSurface(t *testing.T) {
	r := newTestRenderer(t, 16, 16)
	ts := newTestScene()

	source, _ := r.NewSurface(render.DefaultSurfaceDescriptor("source", 16, 16))
	target, _ := r.NewSurface(render.DefaultSurfaceDescriptor("target", 16, 16))
	if err := r.Render(ts.scene, ts.camera, source, true); err != nil {
		t.Fatalf("Render into source failed: %v", err)
	}

	ts.cube.SetMaterial(render.NewMaterial(render.ProgramCopy, render.Uniforms{
		"tDiffuse": source,
		"opacity":  float32(1),
	}))
	if err := r.Render(ts.scene, ts.camera, target, true); err != nil {
		t.Fatalf("Render sampling source failed: %v", err)
	}
	if got := source.(*gpuSurface).colorState; got != gputypes.TextureUsageTextureBinding {
		t.Errorf("source usage = %v, want TextureBinding", got)
	}

	// Sampling the bound target is a feedback loop.
	if err := r.Render(ts.scene, ts.camera, source, true); err == nil {
		t.Error("Render sampling its own target succeeded, want error")
	}
}

func TestTransparentBackToFront(t *testing.T) {
	ts := newTestScene()
	far := scene.NewMesh(scene.NewBoxGeometry(1, 1, 1), scene.NewBasicMaterial(render.Hex(0x00ff00)))
	far.Position = mgl32.Vec3{0, 0, -3}
	opaque := scene.NewMesh(scene.NewBoxGeometry(1, 1, 1), scene.NewBasicMaterial(render.Hex(0x0000ff)))
	ts.scene.Add(far, opaque)
	for _, n := range []*scene.Node{ts.cube, far} {
		m := n.Material().Clone()
		m.Transparent = true
		n.SetMaterial(m)
	}

	opaqueItems, transparent := collect(ts.scene, ts.camera)
	if len(opaqueItems) != 1 || len(transparent) != 2 {
		t.Fatalf("collect = (%d, %d), want (1, 2)", len(opaqueItems), len(transparent))
	}
	sortBackToFront(transparent)
	if transparent[0].object != far {
		t.Error("farthest transparent object is not drawn first")
	}
	if transparent[0].depth != 8 || transparent[1].depth != 5 {
		t.Errorf("depths = (%v, %v), want (8, 5)", transparent[0].depth, transparent[1].depth)
	}
}

func TestCloseIdempotent(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	d := Shared(device, queue)
	r, err := NewRenderer(d, Config{Width: 4, Height: 4})
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}
	r.Close()
	r.Close()

	if _, err := r.NewSurface(render.DefaultSurfaceDescriptor("late", 1, 1)); !errors.Is(err, ErrDeviceClosed) {
		t.Errorf("NewSurface after Close error = %v, want %v", err, ErrDeviceClosed)
	}
	if err := r.Clear(true, true, true); !errors.Is(err, ErrDeviceClosed) {
		t.Errorf("Clear after Close error = %v, want %v", err, ErrDeviceClosed)
	}
}
