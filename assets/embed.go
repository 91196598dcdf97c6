package assets

import (
	"embed"
	"io/fs"
)

//go:embed transition.kage masks/*.png
var embedded embed.FS

// TransitionShader is the Kage source of the mask dissolve.
//
//go:embed transition.kage
var TransitionShader []byte

// FS exposes the embedded assets as an asset source.
func FS() fs.FS {
	return embedded
}
