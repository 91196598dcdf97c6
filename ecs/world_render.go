package ecs

import "github.com/hajimehoshi/ebiten/v2"

// RenderSystem draws ECS entities each frame.
type RenderSystem interface {
	Draw(w *World, screen *ebiten.Image)
}

// AddRenderSystem appends r to the draw order.
func (w *World) AddRenderSystem(r RenderSystem) {
	if w == nil || r == nil {
		return
	}
	w.renderers = append(w.renderers, r)
}

// Draw calls all render systems in registration order.
func (w *World) Draw(screen *ebiten.Image) {
	if w == nil || screen == nil {
		return
	}
	for _, r := range w.renderers {
		r.Draw(w, screen)
	}
}
