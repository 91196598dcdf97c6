package component

// Bounds is the size of the playfield walls, anchored at the origin.
type Bounds struct {
	Width  float64
	Height float64
}

var BoundsComponent = NewComponent[Bounds]()
