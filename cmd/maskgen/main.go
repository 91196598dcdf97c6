package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/masktransition/assets"
	"github.com/milk9111/masktransition/ecs/render"
)

const (
	screenWidth  = 800
	screenHeight = 600
	checkerSize  = 32
	loopPause    = 1.0
)

// generate builds a grayscale mask. Dark pixels dissolve first.
func generate(kind string, w, h, cell int, seed uint64) (*image.Gray, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid size %dx%d", w, h)
	}
	switch kind {
	case "noise":
		if cell <= 0 {
			cell = 16
		}
		return assets.NoiseMask(w, h, cell, seed), nil
	case "radial":
		return assets.RadialMask(w, h), nil
	case "wipe-horizontal":
		return assets.WipeMask(w, h, false), nil
	case "wipe-vertical":
		return assets.WipeMask(w, h, true), nil
	default:
		return nil, fmt.Errorf("unknown mask kind %q", kind)
	}
}

func kinds() []string {
	return []string{"noise", "radial", "wipe-horizontal", "wipe-vertical"}
}

// invert flips a mask so the wipe runs the other way.
func invert(src *image.Gray) *image.Gray {
	out := image.NewGray(src.Bounds())
	for i, v := range src.Pix {
		out.Pix[i] = 255 - v
	}
	return out
}

func writePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// checkerboard stands in for a captured frame in the preview.
func checkerboard(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	light := color.RGBA{0xdd, 0x88, 0x33, 0xff}
	dark := color.RGBA{0x44, 0x22, 0x11, 0xff}
	for y := 0; y < h; y += checkerSize {
		for x := 0; x < w; x += checkerSize {
			c := light
			if (x/checkerSize+y/checkerSize)%2 == 1 {
				c = dark
			}
			r := image.Rect(x, y, x+checkerSize, y+checkerSize)
			draw.Draw(img, r, &image.Uniform{c}, image.Point{}, draw.Src)
		}
	}
	return img
}

// Preview loops the transition shader over a checkerboard with the mask.
type Preview struct {
	mask     *ebiten.Image
	previous *ebiten.Image
	shader   *render.TransitionShader
	duration float32
	ticks    int
}

func NewPreview(mask image.Image, duration float32) (*Preview, error) {
	sh, err := render.NewTransitionShader()
	if err != nil {
		return nil, err
	}

	scaled := ebiten.NewImage(screenWidth, screenHeight)
	src := ebiten.NewImageFromImage(mask)
	op := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear}
	sb := src.Bounds()
	op.GeoM.Scale(float64(screenWidth)/float64(sb.Dx()), float64(screenHeight)/float64(sb.Dy()))
	scaled.DrawImage(src, op)

	return &Preview{
		mask:     scaled,
		previous: ebiten.NewImageFromImage(checkerboard(screenWidth, screenHeight)),
		shader:   sh,
		duration: duration,
	}, nil
}

func (p *Preview) Update() error {
	p.ticks++
	return nil
}

func (p *Preview) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{0x22, 0x33, 0x55, 0xff})

	now := float32(p.ticks) / float32(ebiten.TPS())
	p.shader.Draw(screen, screen.Bounds(), p.mask, p.previous, render.TransitionUniforms{
		Time:      loopTime(now, p.duration),
		StartTime: 0,
		Duration:  p.duration,
	})
}

// loopTime maps now onto a loop of the transition followed by a one second
// pause.
func loopTime(now, duration float32) float32 {
	period := float64(duration) + loopPause
	if period <= 0 || now < 0 {
		return 0
	}
	return float32(math.Mod(float64(now), period))
}

func checkDuration(seconds float64) error {
	if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return fmt.Errorf("duration must be a positive number of seconds, got %v", seconds)
	}
	return nil
}

func (p *Preview) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	kind := flag.String("kind", "noise", "mask kind: "+strings.Join(kinds(), ", ")+", or all")
	size := flag.Int("size", 256, "mask width and height in pixels")
	cell := flag.Int("cell", 16, "noise cell size in pixels")
	seed := flag.Uint64("seed", 1, "noise seed")
	inverted := flag.Bool("invert", false, "reverse the wipe direction")
	out := flag.String("out", filepath.Join("assets", "masks"), "output directory")
	preview := flag.Bool("preview", false, "open a window playing the transition instead of writing files")
	duration := flag.Float64("duration", 1.5, "preview transition duration in seconds")
	flag.Parse()

	if err := checkDuration(*duration); err != nil {
		log.Fatal(err)
	}

	selected := []string{*kind}
	if *kind == "all" {
		selected = kinds()
	}

	if *preview {
		mask, err := generate(selected[0], *size, *size, *cell, *seed)
		if err != nil {
			log.Fatal(err)
		}
		if *inverted {
			mask = invert(mask)
		}
		game, err := NewPreview(mask, float32(*duration))
		if err != nil {
			log.Fatal(err)
		}
		ebiten.SetWindowSize(screenWidth, screenHeight)
		ebiten.SetWindowTitle("Mask Preview: " + selected[0])
		if err := ebiten.RunGame(game); err != nil {
			log.Fatal(err)
		}
		return
	}

	for _, k := range selected {
		mask, err := generate(k, *size, *size, *cell, *seed)
		if err != nil {
			log.Fatal(err)
		}
		if *inverted {
			mask = invert(mask)
		}
		path := filepath.Join(*out, k+".png")
		if err := writePNG(path, mask); err != nil {
			log.Fatal(err)
		}
		log.Printf("wrote %s", path)
	}
}
