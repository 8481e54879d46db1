// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render defines the renderer contract that post-processing passes
// draw through, and provides a CPU implementation of it.
//
// # Key Principle
//
// Passes never own a graphics device. They receive a Renderer and the
// surfaces it allocated, draw through Render and Clear, and restore any
// global renderer state they change. The same pass chain therefore runs on
// the GPU renderer in package gpu and on SoftwareRenderer.
//
// # Core Interfaces
//
//   - Renderer: binds targets, clears, draws scenes, owns the fixed-function State
//   - Surface: an offscreen color buffer with optional depth and stencil
//   - Object, Scene, Camera: the scene-graph contract, implemented by package scene
//   - DeviceHandle: GPU device access from the host application
//
// # Materials and Programs
//
// A Material names a program and carries its uniforms and fixed-function
// state (side, blending, depth test and write). Renderers ship the
// built-in programs listed by the Program* constants.
//
// # Conventions
//
// Projection matrices follow the OpenGL convention with NDC depth in
// [-1,1]; renderers map it to window depth in [0,1] and test with
// less-or-equal. Texture coordinate v=0 addresses the bottom row. Colors
// are straight alpha.
//
// # Usage
//
//	r := render.NewSoftwareRenderer(640, 480)
//	rt, _ := r.NewSurface(render.DefaultSurfaceDescriptor("color", 640, 480))
//	if err := r.Render(scene, camera, rt, true); err != nil {
//	    return err
//	}
//	img, _ := r.ReadPixels(rt)
package render
