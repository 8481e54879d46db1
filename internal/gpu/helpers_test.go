//go:build !nogpu

package gpu

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/postfx/render"
	"github.com/gogpu/postfx/scene"
)

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

// newTestRenderer creates a renderer on a shared noop device. The renderer
// and device are released when the test ends.
func newTestRenderer(t *testing.T, width, height int) *Renderer {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	t.Cleanup(cleanup)

	d := Shared(device, queue)
	r, err := NewRenderer(d, Config{Width: width, Height: height})
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}
	t.Cleanup(func() {
		r.Close()
		d.Close()
	})
	return r
}

// testScene is a unit cube in front of a perspective camera.
type testScene struct {
	scene  *scene.Scene
	camera *scene.PerspectiveCamera
	cube   *scene.Node
}

func newTestScene() *testScene {
	s := scene.NewScene()
	cube := scene.NewMesh(scene.NewBoxGeometry(1, 1, 1), scene.NewBasicMaterial(render.Hex(0xff0000)))
	s.Add(cube)

	camera := scene.NewPerspectiveCamera(45, 1, 0.1, 100)
	camera.Position = mgl32.Vec3{0, 0, 5}
	camera.LookAt(mgl32.Vec3{})
	return &testScene{scene: s, camera: camera, cube: cube}
}

// halProviderStub exposes a HAL device and queue the way host
// applications do.
type halProviderStub struct {
	device any
	queue  any
}

func (p halProviderStub) HalDevice() any { return p.device }
func (p halProviderStub) HalQueue() any  { return p.queue }
