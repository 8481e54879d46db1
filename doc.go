// Package postfx provides image-space post-processing for 3D scenes, built
// around a selective outline highlight.
//
// # Overview
//
// A Composer runs an ordered list of passes once per frame over two
// ping-pong surfaces. Each pass reads the result of the previous one and
// either writes the other surface, draws in place or draws to the screen.
// The package provides the passes a typical outline pipeline needs:
//
//   - RenderPass renders a scene into the read surface
//   - ShaderPass runs a full-screen program, CopyShader being the simplest
//   - MaskPass and ClearMaskPass bracket passes with a stencil mask
//   - OutlinePass draws glowing outlines around selected objects
//
// # Quick Start
//
//	r := render.NewSoftwareRenderer(800, 600)
//	composer, err := postfx.NewComposer(r)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	composer.AddPass(postfx.NewRenderPass(scene, camera))
//
//	outline := postfx.NewOutlinePass(r, image.Pt(800, 600), scene, camera,
//	    []render.Object{cube})
//	outline.EdgeStrength = 3
//	outline.HiddenEdgeColor = render.Hex(0xff00ff)
//	outline.RenderToScreen = true
//	composer.AddPass(outline)
//
//	if err := composer.RenderDelta(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Outline Pipeline
//
// OutlinePass renders, per frame:
//
//  1. the depth of everything except the selected meshes
//  2. a mask of the selected meshes that marks fragments behind that depth
//  3. the mask downsampled by the down-sample ratio
//  4. the mask edges, split into visible and hidden
//  5. a sharp tier blurred by EdgeThickness and a glow tier at half that
//     resolution
//  6. an additive overlay of both tiers onto the read surface
//
// # Renderers
//
// Passes draw through the render.Renderer interface. render.SoftwareRenderer
// rasterizes on the CPU and is the reference backend for tests; the gpu
// package provides a renderer on gogpu/wgpu. Both run the programs of the
// shader package.
//
// # Logging
//
// postfx is silent by default. SetLogger installs a log/slog logger shared
// with renderers created afterwards.
package postfx
