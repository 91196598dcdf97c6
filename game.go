package main

import (
	"errors"
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/masktransition/assets"
	"github.com/milk9111/masktransition/ecs"
	"github.com/milk9111/masktransition/ecs/asset"
	"github.com/milk9111/masktransition/ecs/component"
	"github.com/milk9111/masktransition/ecs/render"
	"github.com/milk9111/masktransition/ecs/system"
	"github.com/milk9111/masktransition/prefabs"
)

const (
	baseWidth  = 1280
	baseHeight = 720
)

var (
	defaultMenuBackground = color.NRGBA{R: 0x1e, G: 0x1e, B: 0x2e, A: 0xff}
	defaultGameBackground = color.NRGBA{R: 0x29, G: 0x42, B: 0x2a, A: 0xff}
)

type Options struct {
	Debug    bool
	Preset   string
	Mask     string
	Duration time.Duration
}

type Game struct {
	opts Options

	world       *ecs.World
	screen      *ecs.State[Screen]
	transitions *system.TransitionPlugin[Screen]
	capture     *render.ScreenCapture
	assets      *asset.Server
	overlay     *system.OverlayRenderSystem
	physics     *system.PhysicsSystem
	circles     *system.CircleRenderSystem

	library  *transitionLibrary
	demo     *prefabs.DemoSpec
	settings *SettingsStore
	watcher  *prefabs.Watcher

	menuUI *ebitenui.UI
	gameUI *ebitenui.UI
	canvas *ebiten.Image

	preset string
	seed   uint64
	quit   bool
}

func NewGame(opts Options) (*Game, error) {
	server := asset.NewServer(os.DirFS("assets"), assets.FS())
	builtins := assets.RegisterBuiltins(server, 0)

	library, err := newTransitionLibrary(server, builtins)
	if err != nil {
		return nil, err
	}

	demo, err := prefabs.LoadDemoSpec()
	if err != nil {
		log.Printf("demo: %v (using defaults)", err)
		demo = &prefabs.DemoSpec{}
	}

	g := &Game{
		opts:     opts,
		world:    ecs.NewWorld(),
		screen:   ecs.NewState(ScreenMenu),
		capture:  render.NewScreenCapture(),
		assets:   server,
		library:  library,
		demo:     demo,
		settings: openSettingsStore("masktransition"),
		circles:  system.NewCircleRenderSystem(),
	}

	g.preset = g.pickPreset()

	window := g.world.CreateEntity()
	_ = ecs.Add(g.world, window, component.WindowComponent, component.Window{Title: "masktransition", Width: baseWidth, Height: baseHeight})
	_ = ecs.Add(g.world, window, component.PrimaryWindowComponent, component.PrimaryWindow{})

	ecs.AddState(g.world, g.screen)

	g.transitions = system.NewTransitionPlugin(g.screen, g.capture, server, system.TransitionOptions{Debug: opts.Debug})
	g.transitions.Build(g.world)

	g.overlay = system.NewOverlayRenderSystem(server, system.LinearEasing)
	g.world.AddRenderSystem(g.overlay)

	g.physics = system.NewPhysicsSystem(demo.Playfield.Gravity)
	inGame := ecs.InState(g.screen, ScreenInGame)
	g.world.AddSystemTo(ecs.Update, ecs.SystemFunc(g.enterGame), ecs.StateChanged(g.screen), inGame)
	g.world.AddSystemTo(ecs.Update, ecs.SystemFunc(g.enterMenu), ecs.StateChanged(g.screen), ecs.Not(inGame))
	g.world.AddSystemTo(ecs.Update, g.physics, inGame)
	g.world.AddSystemTo(ecs.Update, ecs.SystemFunc(g.handleKeys))

	g.menuUI = NewMenuUI(g)
	g.gameUI = NewGameUI(g)

	g.watcher = startWatcher("prefabs", filepath.Join("assets", "masks"))
	return g, nil
}

func (g *Game) pickPreset() string {
	names := g.library.names()
	for _, candidate := range []string{g.opts.Preset, g.settings.Settings().Preset} {
		for _, n := range names {
			if candidate != "" && candidate == n {
				return n
			}
		}
	}
	if g.opts.Preset != "" {
		log.Printf("unknown preset %q, using default", g.opts.Preset)
	}
	return ""
}

func startWatcher(dirs ...string) *prefabs.Watcher {
	var existing []string
	for _, dir := range dirs {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			existing = append(existing, dir)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	w, err := prefabs.NewWatcher(existing...)
	if err != nil {
		log.Printf("hot reload disabled: %v", err)
		return nil
	}
	return w
}

func (g *Game) startTransition(target Screen) {
	if g.transitions.Busy() {
		return
	}
	req, opts, easing, err := g.library.request(g.preset, target, overrides{Mask: g.opts.Mask, Duration: g.opts.Duration})
	if err != nil {
		log.Printf("transition: %v", err)
		return
	}
	opts.Debug = g.opts.Debug
	g.transitions.SetOptions(opts)
	g.overlay.SetEasing(easing)
	g.transitions.Trigger(req)
	g.settings.CountTransition()
}

func (g *Game) cyclePreset() {
	g.preset = g.library.next(g.preset)
	g.settings.SetPreset(g.preset)
}

func (g *Game) enterGame(w *ecs.World) {
	g.seed++
	spawnPlayfield(w, g.demo.Playfield, baseWidth, baseHeight, g.seed)
}

func (g *Game) enterMenu(w *ecs.World) {
	clearPlayfield(w)
	g.physics.Reset()
}

func (g *Game) handleKeys(w *ecs.World) {
	if system.InputBlocked(w) {
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.startTransition(g.screen.Get().Other())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.cyclePreset()
	}
}

func (g *Game) ui() *ebitenui.UI {
	if g.screen.Get() == ScreenInGame {
		return g.gameUI
	}
	return g.menuUI
}

func (g *Game) Update() error {
	if g.quit {
		return ebiten.Termination
	}

	g.hotReload()

	if !system.InputBlocked(g.world) {
		g.ui().Update()
	}
	g.world.Update()
	return nil
}

func (g *Game) hotReload() {
	if g.watcher == nil {
		return
	}
	select {
	case err, ok := <-g.watcher.Errors:
		if ok && err != nil {
			log.Printf("hot reload: %v", err)
		}
	default:
	}

	for _, name := range g.watcher.Changed() {
		base := filepath.Base(name)
		switch strings.ToLower(filepath.Ext(name)) {
		case ".yaml", ".yml":
			g.reloadSpec(base)
		case ".tengo":
			g.library.forgetEasings()
			log.Printf("reloaded %s", base)
		default:
			h := g.assets.Reload(filepath.ToSlash(name))
			g.overlay.Invalidate(h)
			log.Printf("reloaded mask %s", base)
		}
	}
}

func (g *Game) reloadSpec(base string) {
	switch base {
	case "transition.yaml":
		if err := g.library.reload(); err != nil {
			log.Printf("reload %s: %v", base, err)
			return
		}
	case "demo.yaml":
		demo, err := prefabs.LoadDemoSpec()
		if err != nil {
			log.Printf("reload %s: %v", base, err)
			return
		}
		g.demo = demo
		g.physics.SetGravity(demo.Playfield.Gravity)
	default:
		return
	}
	log.Printf("reloaded %s", base)
}

func (g *Game) background() color.Color {
	if g.screen.Get() == ScreenInGame {
		return g.demo.GameBackground.Or(defaultGameBackground)
	}
	return g.demo.MenuBackground.Or(defaultMenuBackground)
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.canvas == nil {
		g.canvas = ebiten.NewImage(baseWidth, baseHeight)
	}

	g.canvas.Fill(g.background())
	if g.screen.Get() == ScreenInGame {
		g.circles.Draw(g.world, g.canvas)
	}
	g.ui().Draw(g.canvas)

	g.capture.Present(g.canvas)

	screen.DrawImage(g.canvas, nil)
	g.world.Draw(screen)

	if g.opts.Debug {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.2f  screen: %v  transition: %v  preset: %s",
			ebiten.ActualFPS(), g.screen.Get(), g.transitions.State(), presetLabel(g.preset)))
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

func (g *Game) Close() error {
	g.capture.Close()
	var errs []error
	if g.watcher != nil {
		errs = append(errs, g.watcher.Close())
	}
	errs = append(errs, g.settings.Save())
	return errors.Join(errs...)
}
