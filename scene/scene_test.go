package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/postfx/render"
)

func TestNodeDefaults(t *testing.T) {
	tests := []struct {
		name string
		node *Node
		kind render.ObjectKind
		geom bool
	}{
		{"group", NewGroup(), render.KindGroup, false},
		{"mesh", NewMesh(NewBoxGeometry(1, 1, 1), NewBasicMaterial(render.Hex(0xffffff))), render.KindMesh, true},
		{"line", NewLine(NewPlaneGeometry(1, 1), nil), render.KindLine, true},
		{"sprite", NewSprite(nil), render.KindSprite, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.node.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", tt.node.Kind(), tt.kind)
			}
			if !tt.node.Visible() {
				t.Error("new node should be visible")
			}
			if (tt.node.Geometry() != nil) != tt.geom {
				t.Errorf("Geometry() != nil = %v, want %v", tt.node.Geometry() != nil, tt.geom)
			}
			if tt.node.Scale != (mgl32.Vec3{1, 1, 1}) {
				t.Errorf("Scale = %v, want (1,1,1)", tt.node.Scale)
			}
		})
	}
}

func TestNodeIDsUnique(t *testing.T) {
	seen := make(map[uint64]bool)
	for range 100 {
		id := NewGroup().ID()
		if seen[id] {
			t.Fatalf("duplicate ID %d", id)
		}
		seen[id] = true
	}
}

func TestAddReparents(t *testing.T) {
	a, b, c := NewGroup(), NewGroup(), NewGroup()
	a.Add(c)
	b.Add(c)

	if len(a.Children()) != 0 {
		t.Errorf("old parent has %d children, want 0", len(a.Children()))
	}
	if c.Parent() != b {
		t.Error("child should be attached to new parent")
	}
	a.Add(a)
	if len(a.Children()) != 0 {
		t.Error("node must not be added to itself")
	}
}

func TestTraversePreOrder(t *testing.T) {
	s := NewScene()
	g := NewGroup()
	m1 := NewMesh(NewBoxGeometry(1, 1, 1), nil)
	m2 := NewMesh(NewBoxGeometry(1, 1, 1), nil)
	g.Add(m1)
	g.SetVisible(false)
	s.Add(g, m2)

	var got []uint64
	s.Traverse(func(o render.Object) { got = append(got, o.ID()) })

	want := []uint64{s.ID(), g.ID(), m1.ID(), m2.ID()}
	if len(got) != len(want) {
		t.Fatalf("visited %d nodes, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("visit[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestMatrixWorld(t *testing.T) {
	parent := NewGroup()
	parent.Position = mgl32.Vec3{10, 0, 0}
	parent.Scale = mgl32.Vec3{2, 2, 2}
	child := NewGroup()
	child.Position = mgl32.Vec3{1, 1, 0}
	parent.Add(child)

	got := mgl32.TransformCoordinate(mgl32.Vec3{}, child.MatrixWorld())
	want := mgl32.Vec3{12, 2, 0}
	if !got.ApproxEqual(want) {
		t.Errorf("world origin = %v, want %v", got, want)
	}
}

func TestBoxGeometryOutward(t *testing.T) {
	g := NewBoxGeometry(4, 2, 6)

	if g.VertexCount() != 24 {
		t.Errorf("VertexCount() = %d, want 24", g.VertexCount())
	}
	if g.TriangleCount() != 12 {
		t.Errorf("TriangleCount() = %d, want 12", g.TriangleCount())
	}
	for i := 0; i < len(g.Indices); i += 3 {
		a, b, c := vertex(g, g.Indices[i]), vertex(g, g.Indices[i+1]), vertex(g, g.Indices[i+2])
		nx, ny, nz := g.Normal(g.Indices[i])
		n := mgl32.Vec3{nx, ny, nz}
		if b.Sub(a).Cross(c.Sub(a)).Dot(n) <= 0 {
			t.Errorf("triangle %d winds inward", i/3)
		}
		// The face plane sits at the half extent along its normal.
		if d := a.Dot(n); d <= 0 {
			t.Errorf("triangle %d lies behind the origin along its normal", i/3)
		}
	}
}

func TestPlaneGeometryFacesZ(t *testing.T) {
	g := NewPlaneGeometry(2, 2)
	a, b, c := vertex(g, g.Indices[0]), vertex(g, g.Indices[1]), vertex(g, g.Indices[2])
	n := b.Sub(a).Cross(c.Sub(a)).Normalize()
	if !n.ApproxEqual(mgl32.Vec3{0, 0, 1}) {
		t.Errorf("plane normal = %v, want +z", n)
	}
	if u, v := g.UV(0); u != 0 || v != 0 {
		t.Errorf("UV(0) = (%v, %v), want (0, 0)", u, v)
	}
}

func TestPerspectiveCameraCentersTarget(t *testing.T) {
	cam := NewPerspectiveCamera(45, 1, 0.1, 3000)
	cam.Position = mgl32.Vec3{-10, 10, 30}
	cam.LookAt(mgl32.Vec3{})

	clip := cam.ProjectionMatrix().Mul4(cam.MatrixWorldInverse()).Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	ndc := clip.Vec3().Mul(1 / clip[3])
	if abs(ndc[0]) > 1e-4 || abs(ndc[1]) > 1e-4 {
		t.Errorf("target projects to %v, want screen center", ndc)
	}
	if ndc[2] <= -1 || ndc[2] >= 1 {
		t.Errorf("target depth %v outside clip range", ndc[2])
	}
	if cam.Near() != 0.1 || cam.Far() != 3000 {
		t.Errorf("Near/Far = %v/%v", cam.Near(), cam.Far())
	}
}

func TestOrthographicFullScreen(t *testing.T) {
	cam := NewOrthographicCamera(-1, 1, 1, -1, 0, 1)
	m := cam.ProjectionMatrix().Mul4(cam.MatrixWorldInverse())
	got := mgl32.TransformCoordinate(mgl32.Vec3{1, 1, 0}, m)
	if !got.ApproxEqual(mgl32.Vec3{1, 1, -1}) {
		t.Errorf("corner = %v, want (1, 1, -1)", got)
	}
}

func vertex(g *render.Geometry, i uint32) mgl32.Vec3 {
	x, y, z := g.Position(i)
	return mgl32.Vec3{x, y, z}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
