package system

import (
	"fmt"
	"log"
	"math"
	"strings"
	"sync"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// Easing reshapes transition progress. t is in [0, 1]; results outside that
// range are allowed and clamped by the shader.
type Easing interface {
	Ease(t float64) float64
}

type EasingFunc func(t float64) float64

func (f EasingFunc) Ease(t float64) float64 {
	return f(t)
}

var (
	LinearEasing     Easing = EasingFunc(func(t float64) float64 { return t })
	SmoothStepEasing Easing = EasingFunc(func(t float64) float64 { return t * t * (3 - 2*t) })
)

// ScriptEasing evaluates a tengo script per frame. The script reads the
// global `t` and assigns the eased value to `out`:
//
//	math := import("math")
//	out = -(math.cos(math.pi * t) - 1) / 2
type ScriptEasing struct {
	name     string
	mu       sync.Mutex
	compiled *tengo.Compiled
	reported bool
}

func NewScriptEasing(name string, src []byte) (*ScriptEasing, error) {
	if strings.TrimSpace(string(src)) == "" {
		return nil, fmt.Errorf("easing %s: empty script", name)
	}

	script := tengo.NewScript(src)
	_ = script.Add("t", 0.0)
	_ = script.Add("out", 0.0)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("easing %s: compile: %w", name, err)
	}

	e := &ScriptEasing{name: name, compiled: compiled}
	if _, err := e.eval(0); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *ScriptEasing) Name() string {
	return e.name
}

// Ease falls back to linear progress if the script fails at runtime.
func (e *ScriptEasing) Ease(t float64) float64 {
	v, err := e.eval(t)
	if err != nil {
		if !e.reported {
			log.Printf("transition: %v", err)
			e.reported = true
		}
		return t
	}
	return v
}

func (e *ScriptEasing) eval(t float64) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.compiled.Set("t", t); err != nil {
		return 0, fmt.Errorf("easing %s: set t: %w", e.name, err)
	}
	if err := e.compiled.Run(); err != nil {
		return 0, fmt.Errorf("easing %s: run: %w", e.name, err)
	}
	v := e.compiled.Get("out").Float()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("easing %s: out is %v at t=%v", e.name, v, t)
	}
	return v, nil
}
