package ecs

import "github.com/milk9111/masktransition/ecs/component"

// Query returns the entities holding every given kind.
func (w *World) Query(kinds ...component.Kind) []Entity {
	if w == nil || len(kinds) == 0 {
		return nil
	}
	sets := make([]*SparseSet, 0, len(kinds))
	for _, k := range kinds {
		if k == nil {
			return nil
		}
		set, ok := w.stores[k.ID()]
		if !ok || set.Len() == 0 {
			return nil
		}
		sets = append(sets, set)
	}
	return IntersectEntities(sets...)
}

// First returns the first entity holding kind.
func (w *World) First(kind component.Kind) (Entity, bool) {
	if w == nil || kind == nil {
		return 0, false
	}
	set, ok := w.stores[kind.ID()]
	if !ok || set.Len() == 0 {
		return 0, false
	}
	return set.denseEntities[0], true
}

// Single returns the only entity holding kind; zero or several matches fail.
func (w *World) Single(kind component.Kind) (Entity, bool) {
	if w == nil || kind == nil {
		return 0, false
	}
	set, ok := w.stores[kind.ID()]
	if !ok || set.Len() != 1 {
		return 0, false
	}
	return set.denseEntities[0], true
}

// IntersectEntities returns entities present in every set, in the order of
// the smallest set.
func IntersectEntities(sets ...*SparseSet) []Entity {
	if len(sets) == 0 {
		return nil
	}
	smallest := sets[0]
	for _, s := range sets[1:] {
		if s.Len() < smallest.Len() {
			smallest = s
		}
	}
	out := make([]Entity, 0, smallest.Len())
	for _, e := range smallest.denseEntities {
		all := true
		for _, s := range sets {
			if s != smallest && !s.Has(e) {
				all = false
				break
			}
		}
		if all {
			out = append(out, e)
		}
	}
	return out
}
