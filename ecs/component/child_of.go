package component

// ChildOf links an entity to its parent (an ecs.Entity stored as uint64 to
// avoid an import cycle).
type ChildOf struct {
	Parent uint64
}

var ChildOfComponent = NewComponent[ChildOf]()
