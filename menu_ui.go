package main

import (
	"image/color"

	"golang.org/x/image/font/basicfont"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
)

var (
	textColor  = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	panelColor = color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 200}
	btnColor   = color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 255}
	btnHover   = color.NRGBA{R: 0x4a, G: 0x4a, B: 0x4a, A: 255}
)

func uiFace() *ebtext.Face {
	var face ebtext.Face = ebtext.NewGoXFace(basicfont.Face7x13)
	return &face
}

func newButton(label string, face *ebtext.Face, onClick func()) *widget.Button {
	img := &widget.ButtonImage{
		Idle:    imageui.NewNineSliceColor(btnColor),
		Hover:   imageui.NewNineSliceColor(btnHover),
		Pressed: imageui.NewNineSliceColor(btnColor),
	}
	return widget.NewButton(
		widget.ButtonOpts.Image(img),
		widget.ButtonOpts.Text(label, face, &widget.ButtonTextColor{Idle: textColor}),
		widget.ButtonOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{
			Position: widget.RowLayoutPositionCenter,
			Stretch:  true,
		})),
		widget.ButtonOpts.ClickedHandler(func(*widget.ButtonClickedEventArgs) {
			onClick()
		}),
	)
}

// NewMenuUI builds the main menu: start the game, cycle the transition
// preset, quit.
func NewMenuUI(g *Game) *ebitenui.UI {
	face := uiFace()

	title := widget.NewText(
		widget.TextOpts.Text("Mask Transition", face, textColor),
		widget.TextOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})),
	)

	playBtn := newButton("Play", face, func() {
		g.startTransition(ScreenInGame)
	})

	var presetBtn *widget.Button
	presetBtn = newButton(presetLabel(g.preset), face, func() {
		g.cyclePreset()
		if text := presetBtn.Text(); text != nil {
			text.Label = presetLabel(g.preset)
		}
	})

	quitBtn := newButton("Quit", face, func() {
		g.quit = true
	})

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(imageui.NewNineSliceColor(panelColor)),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(10),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 20, Bottom: 20, Left: 30, Right: 30}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(baseWidth/3, baseHeight/3),
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{HorizontalPosition: widget.AnchorLayoutPositionCenter, VerticalPosition: widget.AnchorLayoutPositionCenter}),
		),
	)
	panel.AddChild(title)
	panel.AddChild(playBtn)
	panel.AddChild(presetBtn)
	panel.AddChild(quitBtn)

	root := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))
	root.AddChild(panel)

	return &ebitenui.UI{Container: root}
}

// NewGameUI builds the in-game overlay with a button back to the menu.
func NewGameUI(g *Game) *ebitenui.UI {
	face := uiFace()

	backBtn := newButton("Back to menu", face, func() {
		g.startTransition(ScreenMenu)
	})

	bar := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 12, Left: 12}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{HorizontalPosition: widget.AnchorLayoutPositionStart, VerticalPosition: widget.AnchorLayoutPositionStart}),
		),
	)
	bar.AddChild(backBtn)

	root := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))
	root.AddChild(bar)

	return &ebitenui.UI{Container: root}
}

func presetLabel(name string) string {
	if name == "" {
		name = "default"
	}
	return "Transition: " + name
}
