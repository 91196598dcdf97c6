package system

import (
	"image"
	"log"
	"math"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/masktransition/common"
	"github.com/milk9111/masktransition/ecs"
	"github.com/milk9111/masktransition/ecs/asset"
	"github.com/milk9111/masktransition/ecs/component"
	"github.com/milk9111/masktransition/ecs/render"
)

// OverlayRenderSystem draws every entity with a TransitionMaterial through the
// transition shader. Overlays whose textures are not ready yet are skipped.
type OverlayRenderSystem struct {
	textures  *render.Textures
	shader    *render.TransitionShader
	shaderErr error
	easing    Easing
}

func NewOverlayRenderSystem(assets *asset.Server, easing Easing) *OverlayRenderSystem {
	if easing == nil {
		easing = LinearEasing
	}
	return &OverlayRenderSystem{
		textures: render.NewTextures(assets),
		easing:   easing,
	}
}

func (s *OverlayRenderSystem) SetEasing(e Easing) {
	if e == nil {
		e = LinearEasing
	}
	s.easing = e
}

func (s *OverlayRenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if w == nil || screen == nil {
		return
	}
	s.textures.Prune()

	overlays := OverlayDrawOrder(w)
	if len(overlays) == 0 {
		return
	}
	if s.shader == nil {
		if s.shaderErr != nil {
			return
		}
		s.shader, s.shaderErr = render.NewTransitionShader()
		if s.shaderErr != nil {
			log.Printf("transition: %v", s.shaderErr)
			return
		}
	}

	b := screen.Bounds()
	now := w.Time().ElapsedSecondsWrapped()
	wrap := float32(w.Time().WrapPeriod().Seconds())
	for _, e := range overlays {
		node, _ := ecs.Get(w, e, component.UINodeComponent)
		mat, _ := ecs.Get(w, e, component.TransitionMaterialComponent)

		rect := NodeRect(node, b.Dx(), b.Dy()).Add(b.Min)
		mask, ok := s.textures.Sized(mat.Mask, rect.Dx(), rect.Dy())
		if !ok {
			continue
		}
		previous, ok := s.textures.Sized(mat.PreviousFrame, rect.Dx(), rect.Dy())
		if !ok {
			continue
		}
		s.shader.Draw(screen, rect, mask, previous, render.TransitionUniforms{
			Time:      EasedTime(mat, now, wrap, s.easing),
			StartTime: mat.StartTime,
			Duration:  mat.Duration,
		})
	}
}

// OverlayDrawOrder returns overlay entities back to front.
func OverlayDrawOrder(w *ecs.World) []ecs.Entity {
	entities := w.Query(component.UINodeComponent.Kind(), component.TransitionMaterialComponent.Kind())
	z := make(map[ecs.Entity]component.ZIndex, len(entities))
	for _, e := range entities {
		node, _ := ecs.Get(w, e, component.UINodeComponent)
		z[e] = node.ZIndex
	}
	sort.SliceStable(entities, func(i, j int) bool {
		a, b := z[entities[i]], z[entities[j]]
		if a.Global != b.Global {
			return !a.Global
		}
		return a.Value < b.Value
	})
	return entities
}

// NodeRect lays out node in a viewW x viewH viewport.
func NodeRect(node component.UINode, viewW, viewH int) image.Rectangle {
	vw, vh := float64(viewW), float64(viewH)
	offset := func(v component.Val, parent float64) float64 {
		if v.Unit == component.ValAuto {
			return 0
		}
		return v.Resolve(parent, vw, vh)
	}

	x := offset(node.Left, vw)
	y := offset(node.Top, vh)
	width := node.Width.Resolve(vw, vw, vh)
	height := node.Height.Resolve(vh, vw, vh)

	r := image.Rect(
		int(math.Round(x)),
		int(math.Round(y)),
		int(math.Round(x+width)),
		int(math.Round(y+height)),
	)
	return r.Intersect(image.Rect(0, 0, viewW, viewH))
}

// EasedTime maps the clock through easing so the shader, which interpolates
// linearly between StartTime and StartTime+Duration, follows the curve. now
// is the wrapped clock; wrap is its period in seconds.
func EasedTime(mat component.TransitionMaterial, now, wrap float32, easing Easing) float32 {
	if mat.Duration <= 0 {
		return now
	}
	elapsed := now - mat.StartTime
	if elapsed < 0 && wrap > 0 {
		// clock wrapped since the overlay was built
		elapsed += wrap
	}
	if elapsed < 0 {
		return mat.StartTime
	}
	if easing == nil {
		easing = LinearEasing
	}
	t := common.Clamp01(float64(elapsed / mat.Duration))
	return mat.StartTime + float32(easing.Ease(t))*mat.Duration
}

// InputBlocked reports whether an overlay that blocks focus is on screen.
func InputBlocked(w *ecs.World) bool {
	blocked := false
	ecs.ForEach(w, component.UINodeComponent, func(_ ecs.Entity, node component.UINode) {
		if node.Focus == component.FocusBlock {
			blocked = true
		}
	})
	return blocked
}

// Invalidate forgets the uploaded texture of h.
func (s *OverlayRenderSystem) Invalidate(h asset.Handle) {
	s.textures.Invalidate(h)
}
