package component

import "time"

type TimerMode int

const (
	TimerOnce TimerMode = iota
	TimerRepeating
)

// Timer accumulates frame time until Duration is reached.
type Timer struct {
	Duration time.Duration
	Elapsed  time.Duration
	Mode     TimerMode

	finished      bool
	timesFinished int
}

func NewTimer(d time.Duration, mode TimerMode) Timer {
	return Timer{Duration: d, Mode: mode}
}

// Tick advances the timer by delta and returns it for chaining.
func (t *Timer) Tick(delta time.Duration) *Timer {
	t.timesFinished = 0
	if delta < 0 {
		delta = 0
	}
	if t.Mode == TimerOnce && t.finished {
		return t
	}
	t.Elapsed += delta
	if t.Elapsed < t.Duration {
		return t
	}
	t.finished = true
	if t.Mode == TimerRepeating && t.Duration > 0 {
		t.timesFinished = int(t.Elapsed / t.Duration)
		t.Elapsed %= t.Duration
		return t
	}
	t.timesFinished = 1
	t.Elapsed = t.Duration
	return t
}

// Finished reports whether the timer has reached its duration. Repeating
// timers report it only on the tick that wrapped.
func (t *Timer) Finished() bool {
	if t.Mode == TimerRepeating {
		return t.timesFinished > 0
	}
	return t.finished
}

// JustFinished reports whether the last Tick completed the timer.
func (t *Timer) JustFinished() bool {
	return t.timesFinished > 0
}

func (t *Timer) Remaining() time.Duration {
	if r := t.Duration - t.Elapsed; r > 0 {
		return r
	}
	return 0
}

// Fraction is the completed share in [0, 1].
func (t *Timer) Fraction() float64 {
	if t.Duration <= 0 {
		return 1
	}
	return float64(t.Elapsed) / float64(t.Duration)
}

func (t *Timer) Reset() {
	t.Elapsed = 0
	t.finished = false
	t.timesFinished = 0
}
