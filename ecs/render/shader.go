package render

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/masktransition/assets"
)

// TransitionUniforms are the scalar inputs of the transition shader, all in
// seconds on the wrapped world clock.
type TransitionUniforms struct {
	Time      float32
	StartTime float32
	Duration  float32
}

// TransitionShader draws a captured frame dissolving through a mask.
type TransitionShader struct {
	shader *ebiten.Shader
}

func NewTransitionShader() (*TransitionShader, error) {
	sh, err := ebiten.NewShader(assets.TransitionShader)
	if err != nil {
		return nil, fmt.Errorf("render: compile transition shader: %w", err)
	}
	return &TransitionShader{shader: sh}, nil
}

// Draw renders into rect of dst. mask and previous must both be rect-sized.
func (s *TransitionShader) Draw(dst *ebiten.Image, rect image.Rectangle, mask, previous *ebiten.Image, u TransitionUniforms) {
	if s == nil || dst == nil || mask == nil || previous == nil || rect.Empty() {
		return
	}
	op := &ebiten.DrawRectShaderOptions{}
	op.GeoM.Translate(float64(rect.Min.X), float64(rect.Min.Y))
	op.Images[0] = mask
	op.Images[1] = previous
	op.Uniforms = map[string]any{
		"Time":      u.Time,
		"StartTime": u.StartTime,
		"Duration":  u.Duration,
	}
	dst.DrawRectShader(rect.Dx(), rect.Dy(), s.shader, op)
}

func (s *TransitionShader) Deallocate() {
	if s == nil || s.shader == nil {
		return
	}
	s.shader.Deallocate()
}
