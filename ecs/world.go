package ecs

import (
	"time"

	"github.com/milk9111/masktransition/ecs/component"
)

// World owns entities, their components, the system schedule and the clock.
type World struct {
	entities  entityStore
	stores    map[component.ComponentID]*SparseSet
	schedule  *Scheduler
	renderers []RenderSystem
	time      Time
	frameEnd  []func()
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{
		stores:   map[component.ComponentID]*SparseSet{},
		schedule: NewScheduler(),
		time:     newTime(),
	}
}

// CreateEntity allocates a new entity.
func (w *World) CreateEntity() Entity {
	return w.entities.create()
}

// DestroyEntity drops all components of e and retires the handle.
func (w *World) DestroyEntity(e Entity) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	for _, set := range w.stores {
		set.Remove(e)
	}
	return w.entities.destroy(e)
}

// IsAlive reports whether an entity handle is valid.
func (w *World) IsAlive(e Entity) bool {
	if w == nil {
		return false
	}
	return w.entities.isAlive(e)
}

// Entities returns every live entity.
func (w *World) Entities() []Entity {
	if w == nil {
		return nil
	}
	return w.entities.all()
}

func (w *World) AddComponent(e Entity, kind component.Kind, value any) error {
	if w == nil || !w.entities.isAlive(e) {
		return component.ErrEntityNotAlive
	}
	if kind == nil || !kind.Valid() {
		return component.ErrInvalidComponentKind
	}
	if value == nil {
		return component.ErrNilComponent
	}
	w.store(kind.ID()).Set(e, value)
	return nil
}

func (w *World) GetComponent(e Entity, kind component.Kind) (any, bool) {
	if w == nil || kind == nil {
		return nil, false
	}
	set, ok := w.stores[kind.ID()]
	if !ok {
		return nil, false
	}
	return set.Get(e)
}

func (w *World) RemoveComponent(e Entity, kind component.Kind) bool {
	if w == nil || kind == nil {
		return false
	}
	set, ok := w.stores[kind.ID()]
	if !ok {
		return false
	}
	return set.Remove(e)
}

func (w *World) HasComponent(e Entity, kind component.Kind) bool {
	if w == nil || kind == nil {
		return false
	}
	set, ok := w.stores[kind.ID()]
	return ok && set.Has(e)
}

func (w *World) store(id component.ComponentID) *SparseSet {
	set, ok := w.stores[id]
	if !ok {
		set = &SparseSet{}
		w.stores[id] = set
	}
	return set
}

// AddSystem appends a system to the Update stage.
func (w *World) AddSystem(s System) {
	if w == nil {
		return
	}
	w.schedule.Add(s)
}

// AddSystemTo appends a system to stage, gated by every condition.
func (w *World) AddSystemTo(stage Stage, s System, conds ...RunCondition) {
	if w == nil {
		return
	}
	w.schedule.AddTo(stage, s, conds...)
}

// OnStateTransition registers fn to run between PreUpdate and Update.
func (w *World) OnStateTransition(fn func()) {
	if w == nil {
		return
	}
	w.schedule.OnStateTransition(fn)
}

// OnFrameEnd registers fn to run after every stage of a frame.
func (w *World) OnFrameEnd(fn func()) {
	if w == nil || fn == nil {
		return
	}
	w.frameEnd = append(w.frameEnd, fn)
}

// Scheduler exposes the system schedule.
func (w *World) Scheduler() *Scheduler {
	if w == nil {
		return nil
	}
	return w.schedule
}

// Time returns the world clock.
func (w *World) Time() *Time {
	if w == nil {
		return nil
	}
	return &w.time
}

// Update runs one frame with the default fixed timestep.
func (w *World) Update() {
	w.Step(DefaultTimestep)
}

// Step advances the clock by dt and runs one frame.
func (w *World) Step(dt time.Duration) {
	if w == nil {
		return
	}
	w.time.advance(dt)
	w.schedule.Update(w)
	for _, fn := range w.frameEnd {
		fn()
	}
}
