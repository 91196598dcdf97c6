package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/masktransition/ecs"
	"github.com/milk9111/masktransition/ecs/component"
)

const wallThickness = 4.0

type PhysicsSystem struct {
	space    *cp.Space
	gravity  float64
	entities map[ecs.Entity]*bodyInfo
}

type bodyInfo struct {
	body   *cp.Body
	shapes []*cp.Shape
	static bool
}

func NewPhysicsSystem(gravity float64) *PhysicsSystem {
	ps := &PhysicsSystem{gravity: gravity}
	ps.Reset()
	return ps
}

func (ps *PhysicsSystem) Space() *cp.Space {
	if ps == nil {
		return nil
	}
	return ps.space
}

// Reset drops every body and starts over with an empty space.
func (ps *PhysicsSystem) Reset() {
	ps.space = cp.NewSpace()
	ps.space.Iterations = 20
	ps.space.SetGravity(cp.Vector{X: 0, Y: ps.gravity})
	ps.entities = make(map[ecs.Entity]*bodyInfo)
}

func (ps *PhysicsSystem) SetGravity(g float64) {
	ps.gravity = g
	if ps.space != nil {
		ps.space.SetGravity(cp.Vector{X: 0, Y: g})
	}
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}
	if ps.space == nil {
		ps.Reset()
	}

	ps.syncEntities(w)
	ps.syncWorldBounds(w)

	if dt := w.Time().Delta().Seconds(); dt > 0 {
		ps.space.Step(dt)
	}

	ps.syncTransforms(w)
}

func (ps *PhysicsSystem) syncEntities(w *ecs.World) {
	ps.cleanupEntities(w)

	entities := w.Query(component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind())
	for _, e := range entities {
		if _, ok := ps.entities[e]; ok {
			continue
		}
		bodyComp, _ := ecs.Get(w, e, component.PhysicsBodyComponent)
		transform, _ := ecs.Get(w, e, component.TransformComponent)

		info := ps.createBodyInfo(transform, bodyComp)
		if info == nil {
			continue
		}
		ps.entities[e] = info
		bodyComp.Body = info.body
		bodyComp.Shape = info.shapes[0]
		_ = ecs.Add(w, e, component.PhysicsBodyComponent, bodyComp)
	}
}

func (ps *PhysicsSystem) createBodyInfo(transform component.Transform, bodyComp component.PhysicsBody) *bodyInfo {
	if bodyComp.Radius <= 0 {
		return nil
	}
	mass := bodyComp.Mass
	if mass <= 0 {
		mass = 1
	}

	body := cp.NewBody(mass, cp.MomentForCircle(mass, 0, bodyComp.Radius, cp.Vector{}))
	body.SetPosition(cp.Vector{X: transform.X, Y: transform.Y})
	body.SetAngle(transform.Rotation)
	body.SetVelocity(bodyComp.VelocityX, bodyComp.VelocityY)

	shape := cp.NewCircle(body, bodyComp.Radius, cp.Vector{})
	shape.SetFriction(bodyComp.Friction)
	shape.SetElasticity(bodyComp.Elasticity)

	ps.space.AddBody(body)
	ps.space.AddShape(shape)
	return &bodyInfo{body: body, shapes: []*cp.Shape{shape}}
}

func (ps *PhysicsSystem) syncWorldBounds(w *ecs.World) {
	boundsEntity, ok := w.First(component.BoundsComponent.Kind())
	if !ok {
		return
	}
	if _, exists := ps.entities[boundsEntity]; exists {
		return
	}
	bounds, _ := ecs.Get(w, boundsEntity, component.BoundsComponent)
	worldW, worldH := bounds.Width, bounds.Height
	if worldW <= 0 || worldH <= 0 {
		return
	}

	segments := []struct {
		a cp.Vector
		b cp.Vector
	}{
		{a: cp.Vector{X: 0, Y: 0}, b: cp.Vector{X: worldW, Y: 0}},           // top
		{a: cp.Vector{X: 0, Y: worldH}, b: cp.Vector{X: worldW, Y: worldH}}, // bottom
		{a: cp.Vector{X: 0, Y: 0}, b: cp.Vector{X: 0, Y: worldH}},           // left
		{a: cp.Vector{X: worldW, Y: 0}, b: cp.Vector{X: worldW, Y: worldH}}, // right
	}

	info := &bodyInfo{static: true, body: ps.space.StaticBody}
	for _, seg := range segments {
		shape := cp.NewSegment(ps.space.StaticBody, seg.a, seg.b, wallThickness)
		shape.SetFriction(0.8)
		shape.SetElasticity(1)
		ps.space.AddShape(shape)
		info.shapes = append(info.shapes, shape)
	}
	ps.entities[boundsEntity] = info
}

func (ps *PhysicsSystem) syncTransforms(w *ecs.World) {
	for e, info := range ps.entities {
		if info.static {
			continue
		}
		transform, ok := ecs.Get(w, e, component.TransformComponent)
		if !ok {
			continue
		}
		pos := info.body.Position()
		transform.X = pos.X
		transform.Y = pos.Y
		transform.Rotation = info.body.Angle()
		_ = ecs.Add(w, e, component.TransformComponent, transform)
	}
}

func (ps *PhysicsSystem) cleanupEntities(w *ecs.World) {
	for e, info := range ps.entities {
		if w.IsAlive(e) && (ecs.Has(w, e, component.PhysicsBodyComponent) || ecs.Has(w, e, component.BoundsComponent)) {
			continue
		}
		for _, shape := range info.shapes {
			ps.space.RemoveShape(shape)
		}
		if !info.static {
			ps.space.RemoveBody(info.body)
		}
		delete(ps.entities, e)
	}
}
