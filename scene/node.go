package scene

import (
	"slices"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/postfx/render"
)

var nodeIDs atomic.Uint64

// Node is a scene-graph node. The zero value is not usable; create nodes
// with NewGroup, NewMesh, NewLine or NewSprite.
type Node struct {
	Name string

	// Position, Rotation (Euler angles in radians, applied X then Y then Z
	// in the matrix product Rx*Ry*Rz) and Scale form the local transform.
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3

	id       uint64
	kind     render.ObjectKind
	visible  bool
	parent   *Node
	children []*Node
	geometry *render.Geometry
	material *render.Material
}

func newNode(kind render.ObjectKind, g *render.Geometry, m *render.Material) *Node {
	n := &Node{}
	n.init(kind, g, m)
	return n
}

func (n *Node) init(kind render.ObjectKind, g *render.Geometry, m *render.Material) {
	n.id = nodeIDs.Add(1)
	n.kind = kind
	n.visible = true
	n.Scale = mgl32.Vec3{1, 1, 1}
	n.geometry = g
	n.material = m
}

// NewGroup creates an empty transform node.
func NewGroup() *Node {
	return newNode(render.KindGroup, nil, nil)
}

// NewMesh creates a triangle mesh.
func NewMesh(g *render.Geometry, m *render.Material) *Node {
	return newNode(render.KindMesh, g, m)
}

// NewLine creates a line node. Its geometry is drawn as indexed triangles.
func NewLine(g *render.Geometry, m *render.Material) *Node {
	return newNode(render.KindLine, g, m)
}

// NewSprite creates a unit quad facing +z.
func NewSprite(m *render.Material) *Node {
	return newNode(render.KindSprite, NewPlaneGeometry(1, 1), m)
}

// ID returns the node identity.
func (n *Node) ID() uint64 { return n.id }

// Kind returns the node kind.
func (n *Node) Kind() render.ObjectKind { return n.kind }

// Visible reports whether the node and its subtree are drawn.
func (n *Node) Visible() bool { return n.visible }

// SetVisible shows or hides the node and its subtree.
func (n *Node) SetVisible(visible bool) { n.visible = visible }

// Geometry returns the node's geometry, nil for groups.
func (n *Node) Geometry() *render.Geometry { return n.geometry }

// SetGeometry replaces the geometry.
func (n *Node) SetGeometry(g *render.Geometry) { n.geometry = g }

// Material returns the node's material, nil for groups.
func (n *Node) Material() *render.Material { return n.material }

// SetMaterial replaces the material.
func (n *Node) SetMaterial(m *render.Material) { n.material = m }

// Parent returns the parent node, or nil.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the direct children.
func (n *Node) Children() []render.Object {
	out := make([]render.Object, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

// Add attaches children, detaching them from any previous parent. Adding a
// node to itself is ignored.
func (n *Node) Add(children ...*Node) {
	for _, c := range children {
		if c == nil || c == n {
			continue
		}
		if c.parent != nil {
			c.parent.Remove(c)
		}
		c.parent = n
		n.children = append(n.children, c)
	}
}

// Remove detaches a direct child.
func (n *Node) Remove(child *Node) {
	i := slices.Index(n.children, child)
	if i < 0 {
		return
	}
	n.children = slices.Delete(n.children, i, i+1)
	child.parent = nil
}

// Traverse calls fn for the node and every descendant in pre-order,
// including invisible ones.
func (n *Node) Traverse(fn func(render.Object)) {
	fn(n)
	for _, c := range n.children {
		c.Traverse(fn)
	}
}

// MatrixLocal returns the local transform T*R*S.
func (n *Node) MatrixLocal() mgl32.Mat4 {
	r := mgl32.HomogRotate3DX(n.Rotation[0]).
		Mul4(mgl32.HomogRotate3DY(n.Rotation[1])).
		Mul4(mgl32.HomogRotate3DZ(n.Rotation[2]))
	t := mgl32.Translate3D(n.Position[0], n.Position[1], n.Position[2])
	s := mgl32.Scale3D(n.Scale[0], n.Scale[1], n.Scale[2])
	return t.Mul4(r).Mul4(s)
}

// MatrixWorld returns the object-to-world transform.
func (n *Node) MatrixWorld() mgl32.Mat4 {
	local := n.MatrixLocal()
	if n.parent == nil {
		return local
	}
	return n.parent.MatrixWorld().Mul4(local)
}

var _ render.Object = (*Node)(nil)
