package postfx

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/postfx/render"
)

// Maximum blur radii of the two outline tiers, in texels.
const (
	MaxEdgeThickness = 4
	MaxEdgeGlow      = 4
)

// Blur directions of the separable blur.
var (
	BlurDirectionX = mgl32.Vec2{1, 0}
	BlurDirectionY = mgl32.Vec2{0, 1}
)

// outlinePrograms lists every program an OutlinePass draws with.
var outlinePrograms = []string{
	render.ProgramDepth,
	render.ProgramPrepareMask,
	render.ProgramCopy,
	render.ProgramEdgeDetect,
	render.ProgramSeparableBlur,
	render.ProgramOverlay,
}

// newDepthMaterial packs window depth into RGBA for both faces.
func newDepthMaterial() *render.Material {
	m := render.NewMaterial(render.ProgramDepth, nil)
	m.Side = render.DoubleSide
	m.Blending = render.NoBlending
	return m
}

func newPrepareMaskMaterial() *render.Material {
	m := render.NewMaterial(render.ProgramPrepareMask, render.Uniforms{
		"depthTexture":  nil,
		"cameraNearFar": mgl32.Vec2{0.5, 0.5},
		"textureMatrix": mgl32.Ident4(),
	})
	m.Side = render.DoubleSide
	return m
}

func newCopyMaterial() *render.Material {
	def := CopyShader()
	m := render.NewMaterial(def.Program, def.Uniforms)
	m.Blending = render.NoBlending
	m.DepthTest = false
	m.DepthWrite = false
	m.Transparent = true
	return m
}

func newEdgeDetectionMaterial() *render.Material {
	return render.NewMaterial(render.ProgramEdgeDetect, render.Uniforms{
		"maskTexture":      nil,
		"texSize":          mgl32.Vec2{0.5, 0.5},
		"visibleEdgeColor": mgl32.Vec3{1, 1, 1},
		"hiddenEdgeColor":  mgl32.Vec3{1, 1, 1},
	})
}

func newSeparableBlurMaterial(maxRadius int) *render.Material {
	m := render.NewMaterial(render.ProgramSeparableBlur, render.Uniforms{
		"colorTexture": nil,
		"texSize":      mgl32.Vec2{0.5, 0.5},
		"direction":    mgl32.Vec2{0.5, 0.5},
		"kernelRadius": float32(1),
	})
	m.Defines = map[string]int{render.DefineMaxRadius: maxRadius}
	return m
}

func newOverlayMaterial() *render.Material {
	m := render.NewMaterial(render.ProgramOverlay, render.Uniforms{
		"maskTexture":       nil,
		"edgeTexture1":      nil,
		"edgeTexture2":      nil,
		"patternTexture":    nil,
		"edgeStrength":      float32(1),
		"edgeGlow":          float32(1),
		"usePatternTexture": false,
		"visibleEdgeColor":  mgl32.Vec3{1, 1, 1},
		"hiddenEdgeColor":   mgl32.Vec3{1, 1, 1},
		"pulseWeight":       float32(1),
	})
	m.Blending = render.AdditiveBlending
	m.DepthTest = false
	m.DepthWrite = false
	m.Transparent = true
	return m
}
