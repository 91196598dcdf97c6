package ecs

import "github.com/milk9111/masktransition/ecs/component"

// SetParent attaches child to parent.
func SetParent(w *World, child, parent Entity) error {
	if !w.IsAlive(parent) {
		return component.ErrEntityNotAlive
	}
	return Add(w, child, component.ChildOfComponent, component.ChildOf{Parent: uint64(parent)})
}

// Children returns the direct children of parent.
func Children(w *World, parent Entity) []Entity {
	var out []Entity
	ForEach(w, component.ChildOfComponent, func(e Entity, c component.ChildOf) {
		if Entity(c.Parent) == parent {
			out = append(out, e)
		}
	})
	return out
}

// DespawnRecursive destroys e and all of its descendants, returning how many
// entities were destroyed.
func DespawnRecursive(w *World, e Entity) int {
	if !w.IsAlive(e) {
		return 0
	}
	n := 0
	for _, child := range Children(w, e) {
		n += DespawnRecursive(w, child)
	}
	if w.DestroyEntity(e) {
		n++
	}
	return n
}
