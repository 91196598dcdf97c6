package render

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/masktransition/ecs/asset"
)

type sizedKey struct {
	handle asset.Handle
	w, h   int
}

// Textures uploads asset server images to the GPU on first use and keeps
// them until their handle is released.
type Textures struct {
	assets *asset.Server
	full   map[asset.Handle]*ebiten.Image
	sized  map[sizedKey]*ebiten.Image
}

func NewTextures(assets *asset.Server) *Textures {
	return &Textures{
		assets: assets,
		full:   map[asset.Handle]*ebiten.Image{},
		sized:  map[sizedKey]*ebiten.Image{},
	}
}

// Get returns the texture for h once the image is loaded.
func (t *Textures) Get(h asset.Handle) (*ebiten.Image, bool) {
	if tex, ok := t.full[h]; ok {
		return tex, true
	}
	img, ok := t.assets.Image(h)
	if !ok || img == nil {
		return nil, false
	}
	tex := ebiten.NewImageFromImage(img)
	t.full[h] = tex
	return tex, true
}

// Sized returns the texture for h stretched to w x h pixels.
func (t *Textures) Sized(handle asset.Handle, w, h int) (*ebiten.Image, bool) {
	if w <= 0 || h <= 0 {
		return nil, false
	}
	src, ok := t.Get(handle)
	if !ok {
		return nil, false
	}
	sb := src.Bounds()
	if sb.Dx() == w && sb.Dy() == h {
		return src, true
	}
	key := sizedKey{handle: handle, w: w, h: h}
	if tex, ok := t.sized[key]; ok {
		return tex, true
	}
	tex := ebiten.NewImage(w, h)
	op := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear}
	op.GeoM.Scale(float64(w)/float64(sb.Dx()), float64(h)/float64(sb.Dy()))
	tex.DrawImage(src, op)
	t.sized[key] = tex
	return tex, true
}

// Prune frees textures whose handles the asset server no longer tracks.
func (t *Textures) Prune() {
	for h, tex := range t.full {
		if !t.assets.Exists(h) {
			tex.Deallocate()
			delete(t.full, h)
		}
	}
	for k, tex := range t.sized {
		if !t.assets.Exists(k.handle) {
			tex.Deallocate()
			delete(t.sized, k)
		}
	}
}

// Invalidate drops cached textures for h so the next Get uploads the current
// image, e.g. after the asset was reloaded.
func (t *Textures) Invalidate(h asset.Handle) {
	if tex, ok := t.full[h]; ok {
		tex.Deallocate()
		delete(t.full, h)
	}
	for k, tex := range t.sized {
		if k.handle == h {
			tex.Deallocate()
			delete(t.sized, k)
		}
	}
}
