package main

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/postfx/render"
	"github.com/gogpu/postfx/scene"
)

// demoScene is three selected cubes, an unselected cube partly hiding
// them and a ground plane.
type demoScene struct {
	scene    *scene.Scene
	camera   *scene.PerspectiveCamera
	selected []render.Object
}

func newDemoScene(aspect float32) *demoScene {
	s := scene.NewScene()

	ground := scene.NewMesh(scene.NewPlaneGeometry(12, 12), scene.NewLambertMaterial(render.Hex(0x556677)))
	ground.Name = "ground"
	ground.Rotation = mgl32.Vec3{-mgl32.DegToRad(90), 0, 0}
	ground.Position = mgl32.Vec3{0, -0.5, 0}
	s.Add(ground)

	box := scene.NewBoxGeometry(1, 1, 1)
	colors := []uint32{0xcc4444, 0x44cc44, 0x4444cc}
	d := &demoScene{scene: s}
	for i, c := range colors {
		cube := scene.NewMesh(box, scene.NewLambertMaterial(render.Hex(c)))
		cube.Name = "selected"
		cube.Position = mgl32.Vec3{float32(i-1) * 1.8, 0, 0}
		cube.Rotation = mgl32.Vec3{0, mgl32.DegToRad(float32(20 * i)), 0}
		s.Add(cube)
		d.selected = append(d.selected, cube)
	}

	occluder := scene.NewMesh(scene.NewBoxGeometry(1.2, 1.6, 0.3), scene.NewLambertMaterial(render.Hex(0xaaaaaa)))
	occluder.Name = "occluder"
	occluder.Position = mgl32.Vec3{-0.9, 0.2, 1.4}
	s.Add(occluder)

	d.camera = scene.NewPerspectiveCamera(45, aspect, 0.1, 100)
	d.camera.Position = mgl32.Vec3{0, 3, 7}
	d.camera.LookAt(mgl32.Vec3{0, 0, 0})
	return d
}
