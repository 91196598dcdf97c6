package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinEasings(t *testing.T) {
	for _, e := range []Easing{LinearEasing, SmoothStepEasing} {
		assert.InDelta(t, 0, e.Ease(0), 1e-9)
		assert.InDelta(t, 1, e.Ease(1), 1e-9)
		assert.InDelta(t, 0.5, e.Ease(0.5), 1e-9)
	}
	assert.Less(t, SmoothStepEasing.Ease(0.25), 0.25)
}

func TestScriptEasing(t *testing.T) {
	e, err := NewScriptEasing("quad", []byte(`out = t * t`))
	require.NoError(t, err)
	assert.Equal(t, "quad", e.Name())
	assert.InDelta(t, 0.25, e.Ease(0.5), 1e-9)
	assert.InDelta(t, 1, e.Ease(1), 1e-9)
}

func TestScriptEasingImportsMath(t *testing.T) {
	e, err := NewScriptEasing("sine", []byte(`
math := import("math")
out = -(math.cos(math.pi * t) - 1) / 2
`))
	require.NoError(t, err)
	assert.InDelta(t, 0, e.Ease(0), 1e-9)
	assert.InDelta(t, 0.5, e.Ease(0.5), 1e-9)
	assert.InDelta(t, 1, e.Ease(1), 1e-9)
}

func TestScriptEasingIntegerResult(t *testing.T) {
	e, err := NewScriptEasing("step", []byte(`out = t < 0.5 ? 0 : 1`))
	require.NoError(t, err)
	assert.InDelta(t, 0, e.Ease(0.2), 1e-9)
	assert.InDelta(t, 1, e.Ease(0.7), 1e-9)
}

func TestScriptEasingErrors(t *testing.T) {
	_, err := NewScriptEasing("empty", []byte("  \n"))
	assert.Error(t, err)

	_, err = NewScriptEasing("syntax", []byte(`out = (`))
	assert.Error(t, err)

	_, err = NewScriptEasing("redeclare", []byte(`out := 1`))
	assert.Error(t, err)
}

func TestScriptEasingRuntimeErrorFallsBackToLinear(t *testing.T) {
	e, err := NewScriptEasing("broken", []byte(`
f := 0
out = t > 0.5 ? f() : t
`))
	require.NoError(t, err)
	assert.InDelta(t, 0.75, e.Ease(0.75), 1e-9)
}
