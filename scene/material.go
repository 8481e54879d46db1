package scene

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/postfx/render"
)

// NewBasicMaterial returns an unlit opaque material.
func NewBasicMaterial(c gputypes.Color) *render.Material {
	return render.NewMaterial(render.ProgramBasic, render.Uniforms{
		"color":   c,
		"opacity": float32(1),
	})
}

// NewLambertMaterial returns a diffuse-lit opaque material.
func NewLambertMaterial(c gputypes.Color) *render.Material {
	return render.NewMaterial(render.ProgramLambert, render.Uniforms{
		"color":   c,
		"opacity": float32(1),
	})
}
