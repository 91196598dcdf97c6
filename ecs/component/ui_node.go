package component

import "math"

type PositionType int

const (
	PositionRelative PositionType = iota
	PositionAbsolute
)

type ValUnit int

const (
	ValAuto ValUnit = iota
	ValPx
	ValPercent
	ValVw
	ValVh
)

// Val is a length in one of the layout units.
type Val struct {
	Unit  ValUnit
	Value float64
}

func Px(v float64) Val      { return Val{Unit: ValPx, Value: v} }
func Percent(v float64) Val { return Val{Unit: ValPercent, Value: v} }
func Vw(v float64) Val      { return Val{Unit: ValVw, Value: v} }
func Vh(v float64) Val      { return Val{Unit: ValVh, Value: v} }

// Resolve converts v to pixels. parent is the containing length used by
// percentages; viewW/viewH are the screen dimensions.
func (v Val) Resolve(parent, viewW, viewH float64) float64 {
	switch v.Unit {
	case ValPx:
		return v.Value
	case ValPercent:
		return parent * v.Value / 100
	case ValVw:
		return viewW * v.Value / 100
	case ValVh:
		return viewH * v.Value / 100
	default:
		return parent
	}
}

// FocusPolicy decides whether a node swallows pointer input.
type FocusPolicy int

const (
	FocusPass FocusPolicy = iota
	FocusBlock
)

// ZIndex orders UI nodes. Global indices ignore the node hierarchy.
type ZIndex struct {
	Global bool
	Value  int32
}

// ZIndexTop sorts above everything else.
var ZIndexTop = ZIndex{Global: true, Value: math.MaxInt32}

// UINode places an entity in screen space.
type UINode struct {
	Position PositionType
	Left     Val
	Top      Val
	Width    Val
	Height   Val
	ZIndex   ZIndex
	Focus    FocusPolicy
}

var UINodeComponent = NewComponent[UINode]()

// FullScreenOverlay covers the viewport, draws above everything and blocks
// input to whatever is under it.
func FullScreenOverlay() UINode {
	return UINode{
		Position: PositionAbsolute,
		Left:     Px(0),
		Top:      Px(0),
		Width:    Vw(100),
		Height:   Vh(100),
		ZIndex:   ZIndexTop,
		Focus:    FocusBlock,
	}
}
