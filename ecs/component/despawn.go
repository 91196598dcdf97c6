package component

// Despawn removes its entity, and the entity's children, once Timer finishes.
type Despawn struct {
	Timer Timer
}

var DespawnComponent = NewComponent[Despawn]()
