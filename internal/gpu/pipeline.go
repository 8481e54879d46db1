//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/postfx/render"
	"github.com/gogpu/postfx/shader"
)

// vertexBufferLayout is the shared vertex layout: position, normal and uv
// at locations 0, 1 and 2.
var vertexBufferLayout = []gputypes.VertexBufferLayout{
	{
		ArrayStride: shader.VertexStride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatFloat32x3, Offset: shader.NormalOffset, ShaderLocation: 1},
			{Format: gputypes.VertexFormatFloat32x2, Offset: shader.UVOffset, ShaderLocation: 2},
		},
	},
}

// stencilKey is the stencil part of a pipeline key.
type stencilKey struct {
	compare   gputypes.CompareFunction
	fail      gputypes.StencilOperation
	zFail     gputypes.StencilOperation
	zPass     gputypes.StencilOperation
	readMask  uint32
	writeMask uint32
}

// pipelineKey identifies a render pipeline: the program variant plus every
// piece of fixed-function state baked into it.
type pipelineKey struct {
	variant    string // shader.Program.DefinesKey
	cull       gputypes.CullMode
	blended    bool
	blend      gputypes.BlendState
	colorWrite gputypes.ColorWriteMask

	depthStencil bool // attachment present
	depthCompare gputypes.CompareFunction
	depthWrite   bool
	stencil      stencilKey
}

// drawState resolves the pipeline key of a material drawn into target
// under the renderer state.
func drawState(p *shader.Program, m *render.Material, st *render.State, target *gpuSurface) pipelineKey {
	k := pipelineKey{
		variant:    p.DefinesKey(m.Defines),
		cull:       cullMode(m.Side),
		colorWrite: gputypes.ColorWriteMaskNone,
	}
	if b := m.BlendState(); b != nil {
		k.blended = true
		k.blend = *b
	}
	if st.Color.Mask() {
		k.colorWrite = gputypes.ColorWriteMaskAll
	}
	if !target.hasDepthStencil() {
		return k
	}

	k.depthStencil = true
	k.depthCompare = gputypes.CompareFunctionAlways
	if target.desc.DepthBuffer && st.Depth.Test() && m.DepthTest {
		k.depthCompare = gputypes.CompareFunctionLessEqual
		k.depthWrite = m.DepthWrite && st.Depth.Mask()
	}

	k.stencil = stencilKey{
		compare: gputypes.CompareFunctionAlways,
		fail:    gputypes.StencilOperationKeep,
		zFail:   gputypes.StencilOperationKeep,
		zPass:   gputypes.StencilOperationKeep,
	}
	if target.desc.StencilBuffer && st.Stencil.Test() {
		compare, _, mask := st.Stencil.Func()
		fail, zFail, zPass := st.Stencil.Op()
		k.stencil = stencilKey{
			compare:   compare,
			fail:      fail,
			zFail:     zFail,
			zPass:     zPass,
			readMask:  mask & 0xff,
			writeMask: st.Stencil.Mask() & 0xff,
		}
	}
	return k
}

// cullMode maps a material side: front-side materials cull back faces.
func cullMode(s render.Side) gputypes.CullMode {
	switch s {
	case render.FrontSide:
		return gputypes.CullModeBack
	case render.BackSide:
		return gputypes.CullModeFront
	default:
		return gputypes.CullModeNone
	}
}

// halStencilOp converts a stencil operation to the HAL encoding, which
// starts at Keep = 0.
func halStencilOp(op gputypes.StencilOperation) hal.StencilOperation {
	switch op {
	case gputypes.StencilOperationZero:
		return hal.StencilOperationZero
	case gputypes.StencilOperationReplace:
		return hal.StencilOperationReplace
	case gputypes.StencilOperationInvert:
		return hal.StencilOperationInvert
	case gputypes.StencilOperationIncrementClamp:
		return hal.StencilOperationIncrementClamp
	case gputypes.StencilOperationDecrementClamp:
		return hal.StencilOperationDecrementClamp
	case gputypes.StencilOperationIncrementWrap:
		return hal.StencilOperationIncrementWrap
	case gputypes.StencilOperationDecrementWrap:
		return hal.StencilOperationDecrementWrap
	default:
		return hal.StencilOperationKeep
	}
}

// programLayout holds the per-program binding layout.
type programLayout struct {
	program    *shader.Program
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
}

// pipelineCache creates shader modules, layouts and render pipelines on
// first use and keeps them for the renderer's lifetime.
type pipelineCache struct {
	device  *Device
	library *shader.Library

	layouts   map[string]*programLayout
	modules   map[string]hal.ShaderModule
	pipelines map[pipelineKey]hal.RenderPipeline
}

func newPipelineCache(device *Device, library *shader.Library) *pipelineCache {
	return &pipelineCache{
		device:    device,
		library:   library,
		layouts:   make(map[string]*programLayout),
		modules:   make(map[string]hal.ShaderModule),
		pipelines: make(map[pipelineKey]hal.RenderPipeline),
	}
}

// layout returns the binding layout of a program.
func (c *pipelineCache) layout(name string) (*programLayout, error) {
	if l, ok := c.layouts[name]; ok {
		return l, nil
	}
	p, err := c.library.Lookup(name)
	if err != nil {
		return nil, err
	}
	device, _ := c.device.HAL()

	entries := []gputypes.BindGroupLayoutEntry{
		{
			Binding:    0,
			Visibility: gputypes.ShaderStageVertex,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		},
		{
			Binding:    1,
			Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		},
	}
	for i := range p.Textures {
		b := shader.TextureBinding(i)
		entries = append(entries,
			gputypes.BindGroupLayoutEntry{
				Binding:    b,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			gputypes.BindGroupLayoutEntry{
				Binding:    b + 1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		)
	}

	bindLayout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   name + "_bind_layout",
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("create bind group layout %s: %w", name, err)
	}
	pipeLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            name + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{bindLayout},
	})
	if err != nil {
		device.DestroyBindGroupLayout(bindLayout)
		return nil, fmt.Errorf("create pipeline layout %s: %w", name, err)
	}

	l := &programLayout{program: p, bindLayout: bindLayout, pipeLayout: pipeLayout}
	c.layouts[name] = l
	return l, nil
}

// module returns the shader module of a program variant. Vulkan devices
// receive the library's SPIR-V; other backends translate WGSL themselves.
func (c *pipelineCache) module(p *shader.Program, defines map[string]int) (hal.ShaderModule, error) {
	key := p.DefinesKey(defines)
	if m, ok := c.modules[key]; ok {
		return m, nil
	}

	var source hal.ShaderSource
	if c.device.usesSPIRV() {
		code, err := c.library.Compile(p.Name, defines)
		if err != nil {
			return nil, err
		}
		source.SPIRV = code
	} else {
		wgsl, err := p.Expand(defines)
		if err != nil {
			return nil, err
		}
		source.WGSL = wgsl
	}

	device, _ := c.device.HAL()
	m, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  key,
		Source: source,
	})
	if err != nil {
		return nil, fmt.Errorf("compile %s shader: %w", p.Name, err)
	}
	c.modules[key] = m
	slogger().Debug("gpu: shader module created", "variant", key, "spirv", len(source.SPIRV) > 0)
	return m, nil
}

// pipeline returns the render pipeline for a material drawn under key.
func (c *pipelineCache) pipeline(l *programLayout, m *render.Material, key pipelineKey) (hal.RenderPipeline, error) {
	if p, ok := c.pipelines[key]; ok {
		return p, nil
	}
	module, err := c.module(l.program, m.Defines)
	if err != nil {
		return nil, err
	}

	target := gputypes.ColorTargetState{
		Format:    colorFormat,
		WriteMask: key.colorWrite,
	}
	if key.blended {
		blend := key.blend
		target.Blend = &blend
	}

	desc := &hal.RenderPipelineDescriptor{
		Label:  key.variant + "_pipeline",
		Layout: l.pipeLayout,
		Vertex: hal.VertexState{
			Module:     module,
			EntryPoint: shader.VertexEntry,
			Buffers:    vertexBufferLayout,
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  gputypes.PrimitiveTopologyTriangleList,
			FrontFace: gputypes.FrontFaceCCW,
			CullMode:  key.cull,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		Fragment: &hal.FragmentState{
			Module:     module,
			EntryPoint: shader.FragmentEntry,
			Targets:    []gputypes.ColorTargetState{target},
		},
	}
	if key.depthStencil {
		face := hal.StencilFaceState{
			Compare:     key.stencil.compare,
			FailOp:      halStencilOp(key.stencil.fail),
			DepthFailOp: halStencilOp(key.stencil.zFail),
			PassOp:      halStencilOp(key.stencil.zPass),
		}
		desc.DepthStencil = &hal.DepthStencilState{
			Format:            depthStencilFormat,
			DepthWriteEnabled: key.depthWrite,
			DepthCompare:      key.depthCompare,
			StencilFront:      face,
			StencilBack:       face,
			StencilReadMask:   key.stencil.readMask,
			StencilWriteMask:  key.stencil.writeMask,
		}
	}

	device, _ := c.device.HAL()
	p, err := device.CreateRenderPipeline(desc)
	if err != nil {
		return nil, fmt.Errorf("create %s pipeline: %w", l.program.Name, err)
	}
	c.pipelines[key] = p
	slogger().Debug("gpu: pipeline created", "variant", key.variant, "pipelines", len(c.pipelines))
	return p, nil
}

// release destroys every cached object.
func (c *pipelineCache) release() {
	device, _ := c.device.HAL()
	if device == nil {
		return
	}
	for k, p := range c.pipelines {
		device.DestroyRenderPipeline(p)
		delete(c.pipelines, k)
	}
	for k, m := range c.modules {
		device.DestroyShaderModule(m)
		delete(c.modules, k)
	}
	for k, l := range c.layouts {
		device.DestroyPipelineLayout(l.pipeLayout)
		device.DestroyBindGroupLayout(l.bindLayout)
		delete(c.layouts, k)
	}
}
