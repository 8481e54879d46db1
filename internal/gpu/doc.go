//go:build !nogpu

// Package gpu implements render.Renderer on the gogpu/wgpu hardware
// abstraction layer.
//
// This is an internal package used by postfx/gpu. It draws the scenes and
// full-screen passes of an effect chain with real render pipelines, so the
// outline pass and the composer run unchanged on any HAL backend: Vulkan,
// Metal, DX12, GLES, the wgpu software rasterizer, or the noop backend in
// tests.
//
// # Architecture Overview
//
//	Scene -> collect -> pipelineCache (per program/state) -> render pass -> Surface
//
// Key components:
//
//   - Device: an opened or borrowed hal.Device and hal.Queue
//   - Renderer: the render.Renderer implementation
//   - gpuSurface: color texture, optional depth-stencil texture and sampler
//   - pipelineCache: render pipelines keyed by program, defines and
//     fixed-function state
//   - meshCache: interleaved vertex and index buffers per geometry
//   - memoryTracker: surface memory budget and statistics
//
// # Fixed-function state
//
// render.State maps onto pipeline state: the color mask onto the color
// write mask, depth mask and test onto the depth-stencil state, and the
// stencil function and operations onto both stencil faces. The stencil
// reference is set per draw. Clears honour the masks by clearing through
// load operations only when every affected mask is open.
//
// # Synchronization
//
// Every Render and Clear call records one command buffer, submits it and
// waits for the device to go idle before releasing per-draw resources.
// This keeps each stage's output complete before the next stage samples it.
//
// # Thread Safety
//
// Renderer is NOT safe for concurrent use. Device is safe to share between
// renderers on one goroutine.
package gpu
