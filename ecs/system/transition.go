package system

import (
	"fmt"
	"image"
	"log"
	"strings"
	"time"

	"github.com/milk9111/masktransition/common"
	"github.com/milk9111/masktransition/ecs"
	"github.com/milk9111/masktransition/ecs/asset"
	"github.com/milk9111/masktransition/ecs/component"
)

// Trigger asks for a masked transition to TargetState.
type Trigger[T comparable] struct {
	TargetState T
	Duration    time.Duration
	// Mask has to finish loading before the transition starts, so keep the
	// texture small or load it ahead of time.
	Mask asset.Handle
}

// FrameCapturer captures the next frame of a window and calls done exactly
// once with it, possibly from another goroutine. A nil image means the
// capture was abandoned.
type FrameCapturer interface {
	CaptureFrame(window ecs.Entity, done func(image.Image)) error
}

// MaskAssets is the part of the asset server the transition needs.
type MaskAssets interface {
	LoadState(h asset.Handle) asset.LoadState
	Add(img image.Image) asset.Handle
	Release(h asset.Handle)
}

// MaskFailurePolicy decides what happens when the mask cannot be loaded.
type MaskFailurePolicy int

const (
	// MaskFailureComplete switches to the target state without the effect.
	MaskFailureComplete MaskFailurePolicy = iota
	// MaskFailureRevert abandons the transition and stays in the current state.
	MaskFailureRevert
	// MaskFailureStall keeps waiting for the mask forever.
	MaskFailureStall
)

func (p MaskFailurePolicy) String() string {
	switch p {
	case MaskFailureComplete:
		return "complete"
	case MaskFailureRevert:
		return "revert"
	case MaskFailureStall:
		return "stall"
	default:
		return fmt.Sprintf("MaskFailurePolicy(%d)", int(p))
	}
}

func ParseMaskFailurePolicy(s string) (MaskFailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "complete":
		return MaskFailureComplete, nil
	case "revert":
		return MaskFailureRevert, nil
	case "stall":
		return MaskFailureStall, nil
	default:
		return 0, fmt.Errorf("transition: unknown mask failure policy %q", s)
	}
}

type TransitionOptions struct {
	MaskFailure MaskFailurePolicy
	// MaskTimeout treats a mask that is still loading after this long as
	// failed. Zero waits forever.
	MaskTimeout time.Duration
	Debug       bool
}

type pendingTransition[T comparable] struct {
	frame      *common.Slot[image.Image]
	target     T
	duration   time.Duration
	mask       asset.Handle
	screenshot asset.Handle
	overlay    ecs.Entity
	waited     time.Duration
	failed     bool
}

// TransitionPlugin sequences a masked screen transition:
// Idle -> TakingScreenshot -> LoadingMaskAndScreenshot -> Transitioning -> Idle.
// Requests that arrive while a transition is running are dropped.
type TransitionPlugin[T comparable] struct {
	app      *ecs.State[T]
	state    *ecs.State[component.TransitionState]
	requests *ecs.Events[Trigger[T]]
	capture  FrameCapturer
	assets   MaskAssets
	opts     TransitionOptions
	pending  *pendingTransition[T]
}

func NewTransitionPlugin[T comparable](app *ecs.State[T], capture FrameCapturer, assets MaskAssets, opts TransitionOptions) *TransitionPlugin[T] {
	return &TransitionPlugin[T]{
		app:      app,
		state:    ecs.NewState(component.TransitionIdle),
		requests: ecs.NewEvents[Trigger[T]](),
		capture:  capture,
		assets:   assets,
		opts:     opts,
	}
}

// Build registers the plugin's state, request queue and systems. The
// application state passed to NewTransitionPlugin must be registered with
// ecs.AddState by the caller.
func (p *TransitionPlugin[T]) Build(w *ecs.World) {
	ecs.AddState(w, p.state)
	ecs.AddEvents(w, p.requests)

	w.AddSystemTo(ecs.PreUpdate, ecs.SystemFunc(p.Idle), ecs.InState(p.state, component.TransitionIdle))
	w.AddSystemTo(ecs.PreUpdate, ecs.SystemFunc(p.BuildMaterial), ecs.InState(p.state, component.TransitionTakingScreenshot))
	w.AddSystemTo(ecs.PreUpdate, ecs.SystemFunc(p.WaitForMask), ecs.InState(p.state, component.TransitionLoadingMaskAndScreenshot))
	w.AddSystemTo(ecs.PreUpdate, ecs.SystemFunc(p.Despawn), ecs.InState(p.state, component.TransitionTransitioning))
	w.AddSystemTo(ecs.PreUpdate, ecs.SystemFunc(p.DiscardRequests), ecs.Not(ecs.InState(p.state, component.TransitionIdle)))
}

// Trigger queues a transition request.
func (p *TransitionPlugin[T]) Trigger(req Trigger[T]) {
	p.requests.Send(req)
}

// Requests exposes the request queue for systems that send triggers.
func (p *TransitionPlugin[T]) Requests() *ecs.Events[Trigger[T]] {
	return p.requests
}

// State returns the current transition phase.
func (p *TransitionPlugin[T]) State() component.TransitionState {
	return p.state.Get()
}

// Busy reports whether a transition is in flight.
func (p *TransitionPlugin[T]) Busy() bool {
	return p.state.Get() != component.TransitionIdle
}

// SetOptions replaces the options; the running transition picks them up on
// its next step.
func (p *TransitionPlugin[T]) SetOptions(opts TransitionOptions) {
	p.opts = opts
}

// Idle takes the first pending request and asks for a capture of the primary
// window. Without exactly one primary window nothing happens and the request
// stays queued.
func (p *TransitionPlugin[T]) Idle(w *ecs.World) {
	if p.requests.Len() == 0 {
		return
	}
	window, ok := w.Single(component.PrimaryWindowComponent.Kind())
	if !ok {
		return
	}
	reqs := p.requests.Drain()
	req := reqs[0]
	if len(reqs) > 1 {
		p.debugf("dropping %d extra requests", len(reqs)-1)
	}

	p.debugf("preparing a transition to %v", req.TargetState)

	frame := common.NewSlot[image.Image]()
	if err := p.capture.CaptureFrame(window, func(img image.Image) {
		frame.Fill(img)
	}); err != nil {
		log.Printf("transition: capture window %v: %v", window, err)
		return
	}

	p.pending = &pendingTransition[T]{
		frame:    frame,
		target:   req.TargetState,
		duration: req.Duration,
		mask:     req.Mask,
	}
	p.state.Set(component.TransitionTakingScreenshot)
}

// BuildMaterial turns the captured frame into the overlay once the capture
// callback has delivered it.
func (p *TransitionPlugin[T]) BuildMaterial(w *ecs.World) {
	pt := p.pending
	if pt == nil || pt.overlay.Valid() {
		return
	}
	frame, ok := pt.frame.TryGet()
	if !ok {
		return
	}
	if frame == nil {
		log.Printf("transition: capture abandoned, staying in %v", p.app.Get())
		p.pending = nil
		p.state.Set(component.TransitionIdle)
		return
	}

	p.debugf("building the transition overlay")

	screenshot := p.assets.Add(frame)
	material := component.TransitionMaterial{
		Mask:          pt.mask,
		PreviousFrame: screenshot,
		StartTime:     w.Time().ElapsedSecondsWrapped(),
		Duration:      float32(pt.duration.Seconds()),
	}

	overlay := w.CreateEntity()
	_ = ecs.Add(w, overlay, component.UINodeComponent, component.FullScreenOverlay())
	_ = ecs.Add(w, overlay, component.TransitionMaterialComponent, material)

	pt.screenshot = screenshot
	pt.overlay = overlay
	p.state.Set(component.TransitionLoadingMaskAndScreenshot)
}

// WaitForMask commits the target state once the mask has loaded and starts
// the overlay countdown.
func (p *TransitionPlugin[T]) WaitForMask(w *ecs.World) {
	pt := p.pending
	if pt == nil {
		return
	}

	state := p.assets.LoadState(pt.mask)
	p.debugf("mask %v %v", pt.mask, state)

	switch state {
	case asset.Loaded:
		p.pending = nil
		p.app.Set(pt.target)
		p.debugf("next state %v", pt.target)
		if !w.IsAlive(pt.overlay) {
			// overlay removed from outside; nothing left to count down
			p.assets.Release(pt.screenshot)
			p.state.Set(component.TransitionIdle)
			return
		}
		_ = ecs.Add(w, pt.overlay, component.DespawnComponent, component.Despawn{
			Timer: component.NewTimer(pt.duration, component.TimerOnce),
		})
		p.debugf("despawning %v in %v", pt.overlay, pt.duration)
		p.state.Set(component.TransitionTransitioning)
		return
	case asset.Failed:
		p.fail(w, pt, "mask failed to load")
		return
	}

	pt.waited += w.Time().Delta()
	if p.opts.MaskTimeout > 0 && pt.waited >= p.opts.MaskTimeout {
		p.fail(w, pt, "mask still loading after "+pt.waited.String())
	}
}

func (p *TransitionPlugin[T]) fail(w *ecs.World, pt *pendingTransition[T], reason string) {
	policy := p.opts.MaskFailure
	if !pt.failed {
		log.Printf("transition: %s (mask %v), policy %v", reason, pt.mask, policy)
		pt.failed = true
	}

	switch policy {
	case MaskFailureStall:
		return
	case MaskFailureComplete:
		p.app.Set(pt.target)
	}

	if pt.overlay.Valid() {
		ecs.DespawnRecursive(w, pt.overlay)
	}
	if pt.screenshot.Valid() {
		p.assets.Release(pt.screenshot)
	}
	p.pending = nil
	p.state.Set(component.TransitionIdle)
}

// Despawn counts down the overlay and removes it, with its children, when the
// transition has played out.
func (p *TransitionPlugin[T]) Despawn(w *ecs.World) {
	dt := w.Time().Delta()
	overlays := w.Query(component.DespawnComponent.Kind(), component.TransitionMaterialComponent.Kind())
	if len(overlays) == 0 {
		p.state.Set(component.TransitionIdle)
		return
	}

	for _, e := range overlays {
		d, ok := ecs.Get(w, e, component.DespawnComponent)
		if !ok {
			continue
		}
		p.debugf("waiting to despawn %v: delta %v remaining %v", e, dt, d.Timer.Remaining())
		if !d.Timer.Tick(dt).Finished() {
			_ = ecs.Add(w, e, component.DespawnComponent, d)
			continue
		}
		if mat, ok := ecs.Get(w, e, component.TransitionMaterialComponent); ok {
			p.assets.Release(mat.PreviousFrame)
		}
		ecs.DespawnRecursive(w, e)
		p.state.Set(component.TransitionIdle)
		p.debugf("despawned transition overlay %v", e)
	}
}

// DiscardRequests drops requests sent while a transition is running.
func (p *TransitionPlugin[T]) DiscardRequests(*ecs.World) {
	if n := len(p.requests.Drain()); n > 0 {
		p.debugf("ignoring %d requests while %v", n, p.state.Get())
	}
}

func (p *TransitionPlugin[T]) debugf(format string, args ...any) {
	if !p.opts.Debug {
		return
	}
	log.Printf("transition: "+format, args...)
}
