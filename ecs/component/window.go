package component

// Window describes a render surface in logical pixels.
type Window struct {
	Title  string
	Width  int
	Height int
}

var WindowComponent = NewComponent[Window]()

// PrimaryWindow tags the window frames are captured from.
type PrimaryWindow struct{}

var PrimaryWindowComponent = NewComponent[PrimaryWindow]()
