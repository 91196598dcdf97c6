package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	debug := flag.Bool("debug", false, "log every transition step and show an overlay")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	preset := flag.String("preset", "", "transition preset from prefabs/transition.yaml")
	mask := flag.String("mask", "", "mask image overriding the preset (assets path or builtin://name)")
	duration := flag.Duration("duration", 0, "transition duration overriding the preset")
	flag.Parse()

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("masktransition")

	game, err := NewGame(Options{
		Debug:    *debug,
		Preset:   *preset,
		Mask:     *mask,
		Duration: *duration,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := game.Close(); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
