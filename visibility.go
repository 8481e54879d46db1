package postfx

import "github.com/gogpu/postfx/render"

// visibilitySnapshot records the visibility of objects before they are
// hidden, keyed by object identity, so it can be restored exactly.
type visibilitySnapshot map[uint64]visibilityEntry

type visibilityEntry struct {
	object  render.Object
	visible bool
}

// hide records o's visibility on first sight and hides it.
func (s visibilitySnapshot) hide(o render.Object) {
	if _, ok := s[o.ID()]; !ok {
		s[o.ID()] = visibilityEntry{object: o, visible: o.Visible()}
	}
	o.SetVisible(false)
}

// restore puts every recorded object back to its recorded visibility.
func (s visibilitySnapshot) restore() {
	for _, e := range s {
		e.object.SetVisible(e.visible)
	}
}

// selectedMeshes returns every mesh in the subtrees of the selection.
func selectedMeshes(selected []render.Object) map[uint64]render.Object {
	meshes := make(map[uint64]render.Object)
	for _, o := range selected {
		if o == nil {
			continue
		}
		o.Traverse(func(n render.Object) {
			if n.Kind() == render.KindMesh {
				meshes[n.ID()] = n
			}
		})
	}
	return meshes
}

// hideSelected hides the selected meshes.
func hideSelected(meshes map[uint64]render.Object) visibilitySnapshot {
	snap := make(visibilitySnapshot, len(meshes))
	for _, m := range meshes {
		snap.hide(m)
	}
	return snap
}

// hideUnselected hides every visible mesh, line and sprite of root that is
// not a selected mesh.
func hideUnselected(root render.Object, meshes map[uint64]render.Object) visibilitySnapshot {
	snap := make(visibilitySnapshot)
	root.Traverse(func(o render.Object) {
		if !o.Kind().Drawable() || !o.Visible() {
			return
		}
		if _, ok := meshes[o.ID()]; ok {
			return
		}
		snap.hide(o)
	})
	return snap
}
