// Package scene provides a minimal retained 3D scene graph implementing the
// render package's Object, Scene and Camera contracts.
//
// Nodes form a tree with a local transform (position, Euler XYZ rotation,
// scale); a node's world matrix is its parent's world matrix times its local
// matrix. Meshes, lines and sprites are nodes carrying a geometry and a
// material; groups carry neither.
//
// Example:
//
//	s := scene.NewScene()
//	cube := scene.NewMesh(scene.NewBoxGeometry(4, 4, 4), scene.NewLambertMaterial(render.Hex(0x4477aa)))
//	cube.Position = mgl32.Vec3{0, 2, 0}
//	s.Add(cube)
//
//	cam := scene.NewPerspectiveCamera(45, 4.0/3.0, 0.1, 3000)
//	cam.Position = mgl32.Vec3{-10, 10, 30}
//	cam.LookAt(mgl32.Vec3{})
package scene
