package main

import (
	"image/color"
	"math/rand/v2"

	"github.com/milk9111/masktransition/ecs"
	"github.com/milk9111/masktransition/ecs/component"
	"github.com/milk9111/masktransition/prefabs"
)

const (
	defaultBalls  = 24
	defaultRadius = 12
)

var defaultBallColor = color.NRGBA{R: 0xf5, G: 0xc5, B: 0x42, A: 0xff}

// spawnPlayfield fills the screen with bouncing balls inside walls.
func spawnPlayfield(w *ecs.World, spec prefabs.PlayfieldSpec, width, height float64, seed uint64) []ecs.Entity {
	balls := spec.Balls
	if balls <= 0 {
		balls = defaultBalls
	}
	radius := spec.Radius
	if radius <= 0 {
		radius = defaultRadius
	}
	clr := spec.BallColor.Or(defaultBallColor)

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	var out []ecs.Entity
	bounds := w.CreateEntity()
	_ = ecs.Add(w, bounds, component.BoundsComponent, component.Bounds{Width: width, Height: height})
	out = append(out, bounds)

	for i := 0; i < balls; i++ {
		e := w.CreateEntity()
		x := radius + rng.Float64()*(width-2*radius)
		y := radius + rng.Float64()*(height/2-radius)
		_ = ecs.Add(w, e, component.TransformComponent, component.Transform{X: x, Y: y})
		_ = ecs.Add(w, e, component.PhysicsBodyComponent, component.PhysicsBody{
			Radius:     radius,
			Mass:       1,
			Friction:   0.4,
			Elasticity: spec.Elasticity,
			VelocityX:  (rng.Float64()*2 - 1) * 300,
			VelocityY:  (rng.Float64()*2 - 1) * 300,
		})
		_ = ecs.Add(w, e, component.CircleComponent, component.Circle{Radius: float32(radius), Color: clr})
		out = append(out, e)
	}
	return out
}

// clearPlayfield removes everything spawnPlayfield created.
func clearPlayfield(w *ecs.World) int {
	n := 0
	for _, e := range w.Query(component.PhysicsBodyComponent.Kind()) {
		if w.DestroyEntity(e) {
			n++
		}
	}
	for _, e := range w.Query(component.BoundsComponent.Kind()) {
		if w.DestroyEntity(e) {
			n++
		}
	}
	return n
}
