package ecs

import "time"

// DefaultTimestep matches Ebitengine's default 60 ticks per second.
const DefaultTimestep = time.Second / 60

const defaultWrapPeriod = time.Hour

// Time is the world clock, advanced once per frame.
type Time struct {
	delta   time.Duration
	elapsed time.Duration
	wrap    time.Duration
}

func newTime() Time {
	return Time{wrap: defaultWrapPeriod}
}

// Delta is the duration of the current frame.
func (t *Time) Delta() time.Duration {
	return t.delta
}

// Elapsed is the total time advanced since the world was created.
func (t *Time) Elapsed() time.Duration {
	return t.elapsed
}

// ElapsedSecondsWrapped returns elapsed seconds modulo the wrap period, small
// enough to keep float32 precision in shader uniforms.
func (t *Time) ElapsedSecondsWrapped() float32 {
	return float32((t.elapsed % t.WrapPeriod()).Seconds())
}

// WrapPeriod is the period ElapsedSecondsWrapped wraps at.
func (t *Time) WrapPeriod() time.Duration {
	if t.wrap <= 0 {
		return defaultWrapPeriod
	}
	return t.wrap
}

// SetWrapPeriod changes the period used by ElapsedSecondsWrapped.
func (t *Time) SetWrapPeriod(d time.Duration) {
	if d > 0 {
		t.wrap = d
	}
}

func (t *Time) advance(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	t.delta = dt
	t.elapsed += dt
}
