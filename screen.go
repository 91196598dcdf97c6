package main

import "fmt"

// Screen is the demo's application state.
type Screen int

const (
	ScreenMenu Screen = iota
	ScreenInGame
)

func (s Screen) String() string {
	switch s {
	case ScreenMenu:
		return "menu"
	case ScreenInGame:
		return "in-game"
	default:
		return fmt.Sprintf("Screen(%d)", int(s))
	}
}

// Other returns the screen a transition from s leads to.
func (s Screen) Other() Screen {
	if s == ScreenMenu {
		return ScreenInGame
	}
	return ScreenMenu
}
