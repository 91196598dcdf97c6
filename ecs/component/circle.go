package component

import "image/color"

type Circle struct {
	Radius float32
	Color  color.Color
}

var CircleComponent = NewComponent[Circle]()
