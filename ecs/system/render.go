package system

import (
	"image/color"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/masktransition/ecs"
	"github.com/milk9111/masktransition/ecs/component"
)

// CircleRenderSystem draws Circle entities at their transform.
type CircleRenderSystem struct{}

func NewCircleRenderSystem() *CircleRenderSystem {
	return &CircleRenderSystem{}
}

func (r *CircleRenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if r == nil {
		return
	}

	entities := w.Query(component.TransformComponent.Kind(), component.CircleComponent.Kind())
	sort.SliceStable(entities, func(i, j int) bool {
		return uint64(entities[i]) < uint64(entities[j])
	})

	for _, e := range entities {
		transform, _ := ecs.Get(w, e, component.TransformComponent)
		circle, _ := ecs.Get(w, e, component.CircleComponent)
		clr := circle.Color
		if clr == nil {
			clr = color.White
		}
		vector.DrawFilledCircle(screen, float32(transform.X), float32(transform.Y), circle.Radius, clr, true)
	}
}
