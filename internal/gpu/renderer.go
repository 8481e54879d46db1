//go:build !nogpu

package gpu

import (
	"fmt"
	"image"
	"log/slog"
	"sort"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/postfx/render"
	"github.com/gogpu/postfx/shader"
)

// Config configures a Renderer.
type Config struct {
	// Width and Height size the screen surface.
	Width, Height int

	// Library supplies the programs. Defaults to shader.Default().
	Library *shader.Library

	// MemoryBudgetMB bounds the texture memory of all surfaces.
	// Defaults to DefaultMaxMemoryMB.
	MemoryBudgetMB int
}

// Renderer implements render.Renderer on a HAL device.
//
// The screen is an offscreen surface with depth and stencil buffers; hosts
// read it back or copy it to their swapchain.
type Renderer struct {
	device    *Device
	library   *shader.Library
	memory    *memoryTracker
	pipelines *pipelineCache
	meshes    *meshCache

	screen *gpuSurface
	target render.Surface

	// blank is sampled by texture slots without a bound surface.
	blank *gpuSurface

	clearColor gputypes.Color
	clearAlpha float64
	autoClear  bool
	state      *render.State

	// transient holds per-submission resources released after the wait.
	transient []func()
	closed    bool
}

var (
	_ render.Renderer       = (*Renderer)(nil)
	_ render.PixelReader    = (*Renderer)(nil)
	_ render.TextureLoader  = (*Renderer)(nil)
	_ render.ProgramChecker = (*Renderer)(nil)
)

// NewRenderer creates a renderer drawing with device. The clear color is
// black with alpha 1 and auto-clear is on.
func NewRenderer(device *Device, cfg Config) (*Renderer, error) {
	if device == nil {
		return nil, ErrNoGPU
	}
	if err := device.check(); err != nil {
		return nil, err
	}
	lib := cfg.Library
	if lib == nil {
		lib = shader.Default()
	}
	r := &Renderer{
		device:     device,
		library:    lib,
		memory:     newMemoryTracker(cfg.MemoryBudgetMB),
		clearAlpha: 1,
		autoClear:  true,
		state:      render.NewState(),
	}
	r.pipelines = newPipelineCache(device, lib)
	r.meshes = newMeshCache(device)

	desc := render.DefaultSurfaceDescriptor("screen", cfg.Width, cfg.Height)
	desc.StencilBuffer = true
	r.screen = newGPUSurface(r, desc)

	blank, err := r.LoadTexture(image.NewNRGBA(image.Rect(0, 0, 1, 1)),
		render.SurfaceDescriptor{Label: "blank", MinFilter: gputypes.FilterModeNearest, MagFilter: gputypes.FilterModeNearest})
	if err != nil {
		return nil, fmt.Errorf("create blank texture: %w", err)
	}
	r.blank = blank.(*gpuSurface)

	slogger().Debug("gpu: renderer created", "width", r.screen.Width(), "height", r.screen.Height())
	return r, nil
}

// SetLogger sets the logger of the GPU backend.
func (r *Renderer) SetLogger(l *slog.Logger) { SetLogger(l) }

// Device returns the device the renderer draws with.
func (r *Renderer) Device() *Device { return r.device }

// SetSize resizes the screen.
func (r *Renderer) SetSize(width, height int) { r.screen.SetSize(width, height) }

// DrawingBufferSize returns the screen size.
func (r *Renderer) DrawingBufferSize() (width, height int) {
	return r.screen.Width(), r.screen.Height()
}

// RenderTarget returns the bound surface, nil for the screen.
func (r *Renderer) RenderTarget() render.Surface { return r.target }

// SetRenderTarget binds a surface, nil for the screen.
func (r *Renderer) SetRenderTarget(s render.Surface) { r.target = s }

// ClearColor returns the clear color.
func (r *Renderer) ClearColor() gputypes.Color { return r.clearColor }

// ClearAlpha returns the clear alpha.
func (r *Renderer) ClearAlpha() float64 { return r.clearAlpha }

// SetClearColor sets the color and alpha used by Clear.
func (r *Renderer) SetClearColor(c gputypes.Color, alpha float64) {
	r.clearColor = c
	r.clearAlpha = alpha
}

// AutoClear reports whether Render clears before drawing.
func (r *Renderer) AutoClear() bool { return r.autoClear }

// SetAutoClear enables or disables clearing in Render.
func (r *Renderer) SetAutoClear(on bool) { r.autoClear = on }

// State returns the fixed-function state.
func (r *Renderer) State() *render.State { return r.state }

// HasProgram reports whether the library holds a program.
func (r *Renderer) HasProgram(name string) bool { return r.library.Has(name) }

// MemoryStats returns the surface memory statistics.
func (r *Renderer) MemoryStats() MemoryStats { return r.memory.Stats() }

// NewSurface records a surface; its textures are created on first use.
func (r *Renderer) NewSurface(desc render.SurfaceDescriptor) (render.Surface, error) {
	if r.closed {
		return nil, ErrDeviceClosed
	}
	return newGPUSurface(r, desc), nil
}

// resolve maps a surface to its GPU implementation and allocates it. nil
// is the screen.
func (r *Renderer) resolve(s render.Surface) (*gpuSurface, error) {
	if r.closed {
		return nil, ErrDeviceClosed
	}
	gs := r.screen
	if s != nil {
		var ok bool
		gs, ok = s.(*gpuSurface)
		if !ok || gs.owner != r {
			return nil, render.ErrForeignSurface
		}
	}
	if err := gs.ensure(); err != nil {
		return nil, err
	}
	return gs, nil
}

// clearOps selects the attachments a pass clears.
type clearOps struct {
	color, depth, stencil bool
	value                 gputypes.Color
}

// maskedClear applies the write masks to a clear request.
func (r *Renderer) maskedClear(c gputypes.Color, alpha float64, color, depth, stencil bool) clearOps {
	c.A = alpha
	return clearOps{
		color:   color && r.state.Color.Mask(),
		depth:   depth && r.state.Depth.Mask(),
		stencil: stencil && r.state.Stencil.Mask()&0xff != 0,
		value:   c,
	}
}

// Clear clears the selected buffers of the bound target.
func (r *Renderer) Clear(color, depth, stencil bool) error {
	t, err := r.resolve(r.target)
	if err != nil {
		return err
	}
	ops := r.maskedClear(r.clearColor, r.clearAlpha, color, depth, stencil)
	return r.submitPass("clear", t, ops, nil, nil)
}

// drawItem is an object queued for drawing with its resolved material.
type drawItem struct {
	object   render.Object
	material *render.Material
	depth    float32
}

// drawCmd is a fully prepared draw call.
type drawCmd struct {
	pipeline  hal.RenderPipeline
	bindGroup hal.BindGroup
	mesh      *meshBuffers
	stencil   bool
}

// Render draws the scene into target, or into the bound target when target
// is nil.
func (r *Renderer) Render(scene render.Scene, camera render.Camera, target render.Surface, forceClear bool) error {
	if scene == nil || camera == nil {
		return render.ErrNilScene
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
	var ops clearOps
	if r.autoClear || forceClear {
		ops = r.maskedClear(clearColor, clearAlpha, true, true, true)
	}

	opaque, transparent := collect(scene, camera)
	sortBackToFront(transparent)

	var draws []drawCmd
	var sampled []*gpuSurface
	for _, list := range [][]drawItem{opaque, transparent} {
		for _, it := range list {
			d, textures, err := r.prepare(t, camera, it)
			if err != nil {
				r.releaseTransient()
				return err
			}
			if d != nil {
				draws = append(draws, *d)
				sampled = append(sampled, textures...)
			}
		}
	}
	return r.submitPass("render", t, ops, draws, sampled)
}

// collect walks the visible part of the graph. An invisible node hides its
// whole subtree.
func collect(scene render.Scene, camera render.Camera) (opaque, transparent []drawItem) {
	override := scene.OverrideMaterial()
	view := camera.MatrixWorldInverse()

	var walk func(o render.Object)
	walk = func(o render.Object) {
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

// sortBackToFront orders items farthest first, keeping traversal order
// between equal depths.
func sortBackToFront(items []drawItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].depth > items[j].depth
	})
}

// prepare uploads the buffers of one draw and resolves its pipeline. It
// returns a nil drawCmd for empty geometry.
func (r *Renderer) prepare(t *gpuSurface, camera render.Camera, it drawItem) (*drawCmd, []*gpuSurface, error) {
	g := it.object.Geometry()
	if len(g.Indices) < 3 || g.VertexCount() == 0 {
		return nil, nil, nil
	}
	m := it.material
	l, err := r.pipelines.layout(m.Program)
	if err != nil {
		return nil, nil, err
	}
	key := drawState(l.program, m, r.state, t)
	pipeline, err := r.pipelines.pipeline(l, m, key)
	if err != nil {
		return nil, nil, err
	}
	mesh, err := r.meshes.get(g)
	if err != nil {
		return nil, nil, err
	}

	object, err := r.uniformBuffer("object", shader.PackObject(it.object.MatrixWorld(),
		camera.MatrixWorldInverse(), camera.ProjectionMatrix()))
	if err != nil {
		return nil, nil, err
	}
	material, err := r.uniformBuffer(m.Program, l.program.PackUniforms(m.Uniforms))
	if err != nil {
		return nil, nil, err
	}

	entries := []gputypes.BindGroupEntry{
		{Binding: 0, Resource: gputypes.BufferBinding{Buffer: object.NativeHandle(), Size: shader.ObjectBlockSize}},
		//nolint:gosec // G115: uniform sizes are small and positive
		{Binding: 1, Resource: gputypes.BufferBinding{Buffer: material.NativeHandle(), Size: uint64(l.program.UniformSize())}},
	}
	textures := make([]*gpuSurface, 0, len(l.program.Textures))
	for i, name := range l.program.Textures {
		s := r.blank
		if u := m.Uniforms.Surface(name); u != nil {
			gs, err := r.resolve(u)
			if err != nil {
				return nil, nil, fmt.Errorf("uniform %q: %w", name, err)
			}
			if gs == t {
				return nil, nil, fmt.Errorf("uniform %q: surface %q is the render target", name, gs.desc.Label)
			}
			s = gs
		}
		textures = append(textures, s)
		b := shader.TextureBinding(i)
		entries = append(entries,
			gputypes.BindGroupEntry{Binding: b, Resource: gputypes.TextureViewBinding{TextureView: s.colorView.NativeHandle()}},
			gputypes.BindGroupEntry{Binding: b + 1, Resource: gputypes.SamplerBinding{Sampler: s.sampler.NativeHandle()}},
		)
	}

	device, _ := r.device.HAL()
	group, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   m.Program + "_bind_group",
		Layout:  l.bindLayout,
		Entries: entries,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create bind group %s: %w", m.Program, err)
	}
	r.transient = append(r.transient, func() { device.DestroyBindGroup(group) })

	return &drawCmd{
		pipeline:  pipeline,
		bindGroup: group,
		mesh:      mesh,
		stencil:   key.depthStencil,
	}, textures, nil
}

// uniformBuffer creates a per-submission uniform buffer holding data.
func (r *Renderer) uniformBuffer(label string, data []byte) (hal.Buffer, error) {
	device, queue := r.device.HAL()
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label + "_uniforms",
		Size:  uint64(len(data)),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s uniform buffer: %w", label, err)
	}
	r.transient = append(r.transient, func() { device.DestroyBuffer(buf) })
	if err := queue.WriteBuffer(buf, 0, data); err != nil {
		return nil, fmt.Errorf("write %s uniforms: %w", label, err)
	}
	return buf, nil
}

// submitPass encodes one render pass into t, submits it and waits.
func (r *Renderer) submitPass(label string, t *gpuSurface, ops clearOps, draws []drawCmd, sampled []*gpuSurface) error {
	defer r.releaseTransient()
	device, _ := r.device.HAL()

	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label + "_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	for _, s := range sampled {
		s.transitionColor(encoder, gputypes.TextureUsageTextureBinding)
	}
	t.transitionColor(encoder, gputypes.TextureUsageRenderAttachment)
	t.transitionDepth(encoder)

	rp := encoder.BeginRenderPass(r.passDescriptor(label, t, ops))
	rp.SetViewport(0, 0, float32(t.Width()), float32(t.Height()), 0, 1)
	_, ref, _ := r.state.Stencil.Func()
	for _, d := range draws {
		rp.SetPipeline(d.pipeline)
		rp.SetBindGroup(0, d.bindGroup, nil)
		rp.SetVertexBuffer(0, d.mesh.vertex, 0)
		rp.SetIndexBuffer(d.mesh.index, gputypes.IndexFormatUint32, 0)
		if d.stencil {
			rp.SetStencilReference(ref & 0xff)
		}
		rp.DrawIndexed(d.mesh.indexCount, 1, 0, 0, 0)
	}
	rp.End()
	t.initialized = true

	return r.submit(encoder)
}

// passDescriptor builds the attachments of a pass. Aspects that are not
// cleared are loaded, except on a surface's first pass where they are
// initialized to zero color, depth 1 and stencil 0.
func (r *Renderer) passDescriptor(label string, t *gpuSurface, ops clearOps) *hal.RenderPassDescriptor {
	loadOp := func(clear bool) gputypes.LoadOp {
		if clear || !t.initialized {
			return gputypes.LoadOpClear
		}
		return gputypes.LoadOpLoad
	}

	color := hal.RenderPassColorAttachment{
		View:    t.colorView,
		LoadOp:  loadOp(ops.color),
		StoreOp: gputypes.StoreOpStore,
	}
	if ops.color {
		color.ClearValue = ops.value
	}
	desc := &hal.RenderPassDescriptor{
		Label:            label + "_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{color},
	}
	if t.depthView != nil {
		ds := &hal.RenderPassDepthStencilAttachment{
			View:            t.depthView,
			DepthLoadOp:     loadOp(ops.depth),
			DepthStoreOp:    gputypes.StoreOpStore,
			DepthClearValue: 1.0,
			StencilLoadOp:   loadOp(ops.stencil),
			StencilStoreOp:  gputypes.StoreOpStore,
		}
		if ops.stencil {
			ds.StencilClearValue = r.state.Stencil.ClearValue() & 0xff
		}
		desc.DepthStencilAttachment = ds
	}
	return desc
}

// submit ends encoding, submits the command buffer and waits for the
// device to go idle.
func (r *Renderer) submit(encoder hal.CommandEncoder) error {
	device, queue := r.device.HAL()
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer device.FreeCommandBuffer(cmdBuf)

	if _, err := queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	if err := device.WaitIdle(); err != nil {
		return fmt.Errorf("wait for GPU: %w", err)
	}
	return nil
}

func (r *Renderer) releaseTransient() {
	for _, release := range r.transient {
		release()
	}
	r.transient = r.transient[:0]
}

// Close releases the renderer's GPU resources. Surfaces created by the
// renderer must not be used afterwards. The device is left open.
func (r *Renderer) Close() {
	if r.closed {
		return
	}
	r.releaseTransient()
	r.screen.Dispose()
	r.blank.Dispose()
	r.meshes.release()
	r.pipelines.release()
	r.closed = true
	slogger().Debug("gpu: renderer closed", "memory", r.memory.Stats())
}
