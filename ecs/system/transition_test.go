package system

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/milk9111/masktransition/ecs"
	"github.com/milk9111/masktransition/ecs/asset"
	"github.com/milk9111/masktransition/ecs/component"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type screen int

const (
	menu screen = iota
	inGame
	credits
)

const frameDelta = 100 * time.Millisecond

type fakeCapturer struct {
	calls int
	done  []func(image.Image)
	err   error
}

func (c *fakeCapturer) CaptureFrame(_ ecs.Entity, done func(image.Image)) error {
	if c.err != nil {
		return c.err
	}
	c.calls++
	c.done = append(c.done, done)
	return nil
}

func (c *fakeCapturer) deliver() {
	c.deliverImage(image.NewRGBA(image.Rect(0, 0, 4, 4)))
}

func (c *fakeCapturer) deliverImage(img image.Image) {
	for _, done := range c.done {
		done(img)
	}
	c.done = nil
}

type fakeAssets struct {
	next     asset.Handle
	states   map[asset.Handle]asset.LoadState
	added    []image.Image
	released []asset.Handle
}

func newFakeAssets() *fakeAssets {
	return &fakeAssets{next: 1000, states: map[asset.Handle]asset.LoadState{}}
}

func (a *fakeAssets) LoadState(h asset.Handle) asset.LoadState {
	return a.states[h]
}

func (a *fakeAssets) Add(img image.Image) asset.Handle {
	a.next++
	a.states[a.next] = asset.Loaded
	a.added = append(a.added, img)
	return a.next
}

func (a *fakeAssets) Release(h asset.Handle) {
	delete(a.states, h)
	a.released = append(a.released, h)
}

type harness struct {
	w       *ecs.World
	app     *ecs.State[screen]
	plugin  *TransitionPlugin[screen]
	capture *fakeCapturer
	assets  *fakeAssets
	mask    asset.Handle
	window  ecs.Entity
}

func newHarness(t *testing.T, opts TransitionOptions, withWindow bool) *harness {
	t.Helper()

	w := ecs.NewWorld()
	app := ecs.NewState(menu)
	ecs.AddState(w, app)

	h := &harness{
		w:       w,
		app:     app,
		capture: &fakeCapturer{},
		assets:  newFakeAssets(),
		mask:    asset.Handle(7),
	}
	h.assets.states[h.mask] = asset.Loading
	h.plugin = NewTransitionPlugin(app, h.capture, h.assets, opts)
	h.plugin.Build(w)

	if withWindow {
		h.addWindow(t)
	}
	return h
}

func (h *harness) addWindow(t *testing.T) {
	t.Helper()
	h.window = h.w.CreateEntity()
	require.NoError(t, ecs.Add(h.w, h.window, component.WindowComponent, component.Window{Width: 1280, Height: 720}))
	require.NoError(t, ecs.Add(h.w, h.window, component.PrimaryWindowComponent, component.PrimaryWindow{}))
}

func (h *harness) trigger(target screen, d time.Duration) {
	h.plugin.Trigger(Trigger[screen]{TargetState: target, Duration: d, Mask: h.mask})
}

func (h *harness) step(n int) {
	for i := 0; i < n; i++ {
		h.w.Step(frameDelta)
	}
}

func (h *harness) overlays() []ecs.Entity {
	return h.w.Query(component.TransitionMaterialComponent.Kind())
}

// advance runs the queued trigger up to the Transitioning state with the mask
// loaded.
func (h *harness) advance(t *testing.T) ecs.Entity {
	t.Helper()
	h.step(1)
	require.Equal(t, component.TransitionTakingScreenshot, h.plugin.State())
	h.capture.deliver()
	h.step(1)
	require.Equal(t, component.TransitionLoadingMaskAndScreenshot, h.plugin.State())
	overlays := h.overlays()
	require.Len(t, overlays, 1)
	h.assets.states[h.mask] = asset.Loaded
	h.step(1)
	require.Equal(t, component.TransitionTransitioning, h.plugin.State())
	return overlays[0]
}

func TestTransitionEndToEnd(t *testing.T) {
	h := newHarness(t, TransitionOptions{}, true)
	require.Equal(t, component.TransitionIdle, h.plugin.State())

	h.trigger(inGame, 300*time.Millisecond)
	h.step(1)
	assert.Equal(t, component.TransitionTakingScreenshot, h.plugin.State())
	assert.Equal(t, 1, h.capture.calls)
	assert.Empty(t, h.overlays())

	h.capture.deliver()
	h.step(1)
	assert.Equal(t, component.TransitionLoadingMaskAndScreenshot, h.plugin.State())
	overlays := h.overlays()
	require.Len(t, overlays, 1)
	overlay := overlays[0]

	mat, ok := ecs.Get(h.w, overlay, component.TransitionMaterialComponent)
	require.True(t, ok)
	assert.Equal(t, h.mask, mat.Mask)
	assert.True(t, mat.PreviousFrame.Valid())
	assert.InDelta(t, 0.2, mat.StartTime, 1e-6)
	assert.InDelta(t, 0.3, mat.Duration, 1e-6)

	node, ok := ecs.Get(h.w, overlay, component.UINodeComponent)
	require.True(t, ok)
	assert.Equal(t, component.FullScreenOverlay(), node)
	assert.True(t, InputBlocked(h.w))

	// mask still loading: nothing moves and the target is not committed
	h.step(3)
	assert.Equal(t, component.TransitionLoadingMaskAndScreenshot, h.plugin.State())
	assert.Equal(t, menu, h.app.Get())
	assert.False(t, ecs.Has(h.w, overlay, component.DespawnComponent))

	h.assets.states[h.mask] = asset.Loaded
	h.step(1)
	assert.Equal(t, component.TransitionTransitioning, h.plugin.State())
	assert.Equal(t, inGame, h.app.Get())
	d, ok := ecs.Get(h.w, overlay, component.DespawnComponent)
	require.True(t, ok)
	assert.Equal(t, 300*time.Millisecond, d.Timer.Duration)

	h.step(2)
	assert.True(t, h.w.IsAlive(overlay))
	assert.Equal(t, component.TransitionTransitioning, h.plugin.State())

	h.step(1)
	assert.False(t, h.w.IsAlive(overlay))
	assert.Equal(t, component.TransitionIdle, h.plugin.State())
	assert.Equal(t, []asset.Handle{mat.PreviousFrame}, h.assets.released)
	assert.False(t, InputBlocked(h.w))
	assert.Equal(t, 1, h.capture.calls)
}

func TestTransitionAdvancesOneStepPerFrame(t *testing.T) {
	h := newHarness(t, TransitionOptions{}, true)
	h.assets.states[h.mask] = asset.Loaded

	h.trigger(inGame, 0)
	var seen []component.TransitionState
	for i := 0; i < 6; i++ {
		h.step(1)
		h.capture.deliver()
		seen = append(seen, h.plugin.State())
	}
	assert.Equal(t, []component.TransitionState{
		component.TransitionTakingScreenshot,
		component.TransitionLoadingMaskAndScreenshot,
		component.TransitionTransitioning,
		component.TransitionIdle,
		component.TransitionIdle,
		component.TransitionIdle,
	}, seen)
	assert.Equal(t, inGame, h.app.Get())
}

func TestTransitionWithoutWindowIsDeferred(t *testing.T) {
	h := newHarness(t, TransitionOptions{}, false)

	h.trigger(inGame, time.Second)
	h.step(1)
	assert.Equal(t, component.TransitionIdle, h.plugin.State())
	assert.Zero(t, h.capture.calls)
	assert.Equal(t, 1, h.plugin.Requests().Len())

	h.addWindow(t)
	h.step(1)
	assert.Equal(t, component.TransitionTakingScreenshot, h.plugin.State())
	assert.Equal(t, 1, h.capture.calls)
}

func TestTransitionRequestExpires(t *testing.T) {
	h := newHarness(t, TransitionOptions{}, false)

	h.trigger(inGame, time.Second)
	h.step(2)
	assert.Zero(t, h.plugin.Requests().Len())

	h.addWindow(t)
	h.step(1)
	assert.Equal(t, component.TransitionIdle, h.plugin.State())
	assert.Zero(t, h.capture.calls)
}

func TestTransitionNeedsExactlyOnePrimaryWindow(t *testing.T) {
	h := newHarness(t, TransitionOptions{}, true)
	h.addWindow(t)

	h.trigger(inGame, time.Second)
	h.step(1)
	assert.Equal(t, component.TransitionIdle, h.plugin.State())
	assert.Zero(t, h.capture.calls)
}

func TestTransitionHonorsFirstRequestOnly(t *testing.T) {
	h := newHarness(t, TransitionOptions{}, true)

	h.trigger(credits, 0)
	h.trigger(inGame, 0)
	h.advance(t)
	h.step(1)

	assert.Equal(t, component.TransitionIdle, h.plugin.State())
	assert.Equal(t, credits, h.app.Get())
	assert.Equal(t, 1, h.capture.calls)
}

func TestTransitionDropsRequestsWhileBusy(t *testing.T) {
	h := newHarness(t, TransitionOptions{}, true)

	h.trigger(inGame, 0)
	h.step(1)
	h.trigger(credits, 0)
	h.step(1)
	assert.Zero(t, h.plugin.Requests().Len())

	h.capture.deliver()
	h.step(1)
	h.trigger(credits, 0)
	h.assets.states[h.mask] = asset.Loaded
	h.step(1)
	assert.Equal(t, component.TransitionTransitioning, h.plugin.State())
	h.trigger(credits, 0)
	h.step(1)
	assert.Equal(t, component.TransitionIdle, h.plugin.State())

	h.step(3)
	assert.Equal(t, component.TransitionIdle, h.plugin.State())
	assert.Equal(t, inGame, h.app.Get())
	assert.Equal(t, 1, h.capture.calls)
}

func TestTransitionWaitsForCapture(t *testing.T) {
	h := newHarness(t, TransitionOptions{}, true)

	h.trigger(inGame, 0)
	h.step(10)
	assert.Equal(t, component.TransitionTakingScreenshot, h.plugin.State())
	assert.Empty(t, h.overlays())
	assert.Empty(t, h.assets.added)

	h.capture.deliver()
	h.step(1)
	assert.Len(t, h.overlays(), 1)
	assert.Len(t, h.assets.added, 1)

	h.step(5)
	assert.Len(t, h.overlays(), 1)
	assert.Len(t, h.assets.added, 1)
}

func TestTransitionCaptureErrorStaysIdle(t *testing.T) {
	h := newHarness(t, TransitionOptions{}, true)
	h.capture.err = errors.New("closed")

	h.trigger(inGame, 0)
	h.step(2)
	assert.Equal(t, component.TransitionIdle, h.plugin.State())
	assert.Equal(t, menu, h.app.Get())
	assert.False(t, h.plugin.Busy())
}

func TestTransitionAbandonedCaptureReturnsToIdle(t *testing.T) {
	h := newHarness(t, TransitionOptions{}, true)
	h.trigger(inGame, time.Second)
	h.step(1)
	require.Equal(t, component.TransitionTakingScreenshot, h.plugin.State())

	h.capture.deliverImage(nil)
	h.step(1)
	assert.Equal(t, component.TransitionIdle, h.plugin.State())
	assert.Equal(t, menu, h.app.Get())
	assert.Empty(t, h.overlays())
	assert.Empty(t, h.assets.added)

	h.trigger(inGame, 0)
	h.advance(t)
	assert.Equal(t, inGame, h.app.Get())
}

func TestTransitionDespawnsChildren(t *testing.T) {
	h := newHarness(t, TransitionOptions{}, true)
	h.trigger(inGame, frameDelta)
	overlay := h.advance(t)

	child := h.w.CreateEntity()
	require.NoError(t, ecs.SetParent(h.w, child, overlay))
	grandchild := h.w.CreateEntity()
	require.NoError(t, ecs.SetParent(h.w, grandchild, child))

	h.step(1)
	assert.False(t, h.w.IsAlive(overlay))
	assert.False(t, h.w.IsAlive(child))
	assert.False(t, h.w.IsAlive(grandchild))
	assert.Equal(t, component.TransitionIdle, h.plugin.State())
}

func TestTransitionOverlayRemovedExternally(t *testing.T) {
	t.Run("while loading", func(t *testing.T) {
		h := newHarness(t, TransitionOptions{}, true)
		h.trigger(inGame, time.Second)
		h.step(1)
		h.capture.deliver()
		h.step(1)
		overlays := h.overlays()
		require.Len(t, overlays, 1)
		h.w.DestroyEntity(overlays[0])

		h.assets.states[h.mask] = asset.Loaded
		h.step(1)
		assert.Equal(t, component.TransitionIdle, h.plugin.State())
		assert.Equal(t, inGame, h.app.Get())
		assert.Len(t, h.assets.released, 1)
	})

	t.Run("while transitioning", func(t *testing.T) {
		h := newHarness(t, TransitionOptions{}, true)
		h.trigger(inGame, time.Second)
		overlay := h.advance(t)
		h.w.DestroyEntity(overlay)

		h.step(1)
		assert.Equal(t, component.TransitionIdle, h.plugin.State())
	})
}

func TestTransitionMaskFailure(t *testing.T) {
	tests := []struct {
		name      string
		policy    MaskFailurePolicy
		timeout   time.Duration
		mask      asset.LoadState
		wantState component.TransitionState
		wantApp   screen
		overlay   bool
	}{
		{name: "complete", policy: MaskFailureComplete, mask: asset.Failed, wantState: component.TransitionIdle, wantApp: inGame},
		{name: "revert", policy: MaskFailureRevert, mask: asset.Failed, wantState: component.TransitionIdle, wantApp: menu},
		{name: "stall", policy: MaskFailureStall, mask: asset.Failed, wantState: component.TransitionLoadingMaskAndScreenshot, wantApp: menu, overlay: true},
		{name: "stall after timeout", policy: MaskFailureStall, timeout: 150 * time.Millisecond, mask: asset.Loading, wantState: component.TransitionLoadingMaskAndScreenshot, wantApp: menu, overlay: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, TransitionOptions{MaskFailure: tc.policy, MaskTimeout: tc.timeout}, true)
			h.trigger(inGame, time.Second)
			h.step(1)
			h.capture.deliver()
			h.step(1)

			h.assets.states[h.mask] = tc.mask
			h.step(5)

			assert.Equal(t, tc.wantState, h.plugin.State())
			assert.Equal(t, tc.wantApp, h.app.Get())
			if tc.overlay {
				assert.Len(t, h.overlays(), 1)
				assert.Empty(t, h.assets.released)
				require.NotNil(t, h.plugin.pending)
				assert.True(t, h.plugin.pending.failed)
			} else {
				assert.Empty(t, h.overlays())
				assert.Len(t, h.assets.released, 1)
				assert.Nil(t, h.plugin.pending)
			}
		})
	}

	t.Run("stalled mask loads late", func(t *testing.T) {
		h := newHarness(t, TransitionOptions{MaskFailure: MaskFailureStall, MaskTimeout: frameDelta}, true)
		h.trigger(inGame, frameDelta)
		h.step(1)
		h.capture.deliver()
		h.step(5)
		require.Equal(t, component.TransitionLoadingMaskAndScreenshot, h.plugin.State())

		h.assets.states[h.mask] = asset.Loaded
		h.step(1)
		assert.Equal(t, component.TransitionTransitioning, h.plugin.State())
		assert.Equal(t, inGame, h.app.Get())
		h.step(1)
		assert.Equal(t, component.TransitionIdle, h.plugin.State())
		assert.Empty(t, h.overlays())
	})
}

func TestTransitionMaskTimeout(t *testing.T) {
	h := newHarness(t, TransitionOptions{MaskTimeout: 250 * time.Millisecond}, true)
	h.trigger(inGame, time.Second)
	h.step(1)
	h.capture.deliver()
	h.step(1)

	// waits of 100ms and 200ms are under the limit
	h.step(2)
	assert.Equal(t, component.TransitionLoadingMaskAndScreenshot, h.plugin.State())

	h.step(1)
	assert.Equal(t, component.TransitionIdle, h.plugin.State())
	assert.Equal(t, inGame, h.app.Get())
	assert.Empty(t, h.overlays())
}

func TestTransitionWaitsForeverWithoutTimeout(t *testing.T) {
	h := newHarness(t, TransitionOptions{}, true)
	h.trigger(inGame, time.Second)
	h.step(1)
	h.capture.deliver()
	h.step(100)

	assert.Equal(t, component.TransitionLoadingMaskAndScreenshot, h.plugin.State())
	assert.Equal(t, menu, h.app.Get())
}

func TestTransitionRunsAgainAfterIdle(t *testing.T) {
	h := newHarness(t, TransitionOptions{}, true)
	h.trigger(inGame, 0)
	h.advance(t)
	h.step(1)
	require.Equal(t, component.TransitionIdle, h.plugin.State())

	h.trigger(menu, 0)
	h.advance(t)
	h.step(1)
	assert.Equal(t, component.TransitionIdle, h.plugin.State())
	assert.Equal(t, menu, h.app.Get())
	assert.Equal(t, 2, h.capture.calls)
	assert.Len(t, h.assets.released, 2)
}

func TestParseMaskFailurePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    MaskFailurePolicy
		wantErr bool
	}{
		{in: "", want: MaskFailureComplete},
		{in: "complete", want: MaskFailureComplete},
		{in: " Revert ", want: MaskFailureRevert},
		{in: "STALL", want: MaskFailureStall},
		{in: "explode", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParseMaskFailurePolicy(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
		assert.Equal(t, got.String(), mustParseRoundTrip(t, got))
	}
}

func mustParseRoundTrip(t *testing.T, p MaskFailurePolicy) string {
	t.Helper()
	back, err := ParseMaskFailurePolicy(p.String())
	require.NoError(t, err)
	return back.String()
}
