package assets

import (
	"fmt"
	"image"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/milk9111/masktransition/common"
	"github.com/milk9111/masktransition/ecs/asset"
)

// Built-in mask names, loadable through an asset server once registered with
// RegisterBuiltins.
const (
	MaskNoise          = "builtin://noise"
	MaskRadial         = "builtin://radial"
	MaskWipeHorizontal = "builtin://wipe-horizontal"
	MaskWipeVertical   = "builtin://wipe-vertical"
)

const builtinMaskSize = 256

// RegisterBuiltins generates every built-in mask at size x size and registers
// it with s under its name.
func RegisterBuiltins(s *asset.Server, size int) map[string]asset.Handle {
	if size <= 0 {
		size = builtinMaskSize
	}
	out := make(map[string]asset.Handle, len(BuiltinMasks()))
	for _, name := range BuiltinMasks() {
		img, err := BuiltinMask(name, size, size)
		if err != nil {
			continue
		}
		out[name] = s.Register(name, img)
	}
	return out
}

// BuiltinMask generates one of the built-in masks by name.
func BuiltinMask(name string, w, h int) (*image.Gray, error) {
	switch strings.TrimSpace(name) {
	case MaskNoise:
		return NoiseMask(w, h, 16, 1), nil
	case MaskRadial:
		return RadialMask(w, h), nil
	case MaskWipeHorizontal:
		return WipeMask(w, h, false), nil
	case MaskWipeVertical:
		return WipeMask(w, h, true), nil
	default:
		return nil, fmt.Errorf("assets: unknown builtin mask %q", name)
	}
}

// BuiltinMasks lists every built-in mask name.
func BuiltinMasks() []string {
	return []string{MaskNoise, MaskRadial, MaskWipeHorizontal, MaskWipeVertical}
}

// NoiseMask builds smooth value noise: a lattice of random values every cell
// pixels, bilinearly interpolated with a smoothstep falloff.
func NoiseMask(w, h, cell int, seed uint64) *image.Gray {
	if cell <= 0 {
		cell = 1
	}
	img := image.NewGray(image.Rect(0, 0, w, h))
	cols := w/cell + 2
	rows := h/cell + 2
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	lattice := make([]float64, cols*rows)
	for i := range lattice {
		lattice[i] = rng.Float64()
	}
	at := func(x, y int) float64 { return lattice[y*cols+x] }

	for y := 0; y < h; y++ {
		gy := y / cell
		ty := smooth(float64(y%cell) / float64(cell))
		for x := 0; x < w; x++ {
			gx := x / cell
			tx := smooth(float64(x%cell) / float64(cell))
			top := common.Lerp(at(gx, gy), at(gx+1, gy), tx)
			bottom := common.Lerp(at(gx, gy+1), at(gx+1, gy+1), tx)
			img.Pix[y*img.Stride+x] = toGray(common.Lerp(top, bottom, ty))
		}
	}
	return img
}

// RadialMask is darkest in the centre, so the new scene opens outwards.
func RadialMask(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	cx, cy := float64(w)/2, float64(h)/2
	maxDist := math.Hypot(cx, cy)
	if maxDist == 0 {
		return img
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy)
			img.Pix[y*img.Stride+x] = toGray(d / maxDist)
		}
	}
	return img
}

// WipeMask is a linear ramp, left to right or top to bottom.
func WipeMask(w, h int, vertical bool) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			t := 0.0
			if vertical && h > 1 {
				t = float64(y) / float64(h-1)
			} else if !vertical && w > 1 {
				t = float64(x) / float64(w-1)
			}
			img.Pix[y*img.Stride+x] = toGray(t)
		}
	}
	return img
}

func smooth(t float64) float64 {
	return t * t * (3 - 2*t)
}

func toGray(v float64) uint8 {
	return uint8(math.Round(common.Clamp01(v) * 255))
}
