package main

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/milk9111/masktransition/ecs/asset"
	"github.com/milk9111/masktransition/ecs/system"
	"github.com/milk9111/masktransition/prefabs"
)

// transitionLibrary turns presets into transition requests, loading masks
// and compiling easing scripts on demand.
type transitionLibrary struct {
	spec     *prefabs.TransitionSpec
	assets   *asset.Server
	builtins map[string]asset.Handle
	easings  map[string]system.Easing
}

// overrides replaces preset values when set.
type overrides struct {
	Mask     string
	Duration time.Duration
}

func newTransitionLibrary(assets *asset.Server, builtins map[string]asset.Handle) (*transitionLibrary, error) {
	l := &transitionLibrary{
		assets:   assets,
		builtins: builtins,
		easings:  map[string]system.Easing{},
	}
	if err := l.reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// reload rereads the presets and starts loading their masks so they are
// ready before the first transition.
func (l *transitionLibrary) reload() error {
	spec, err := prefabs.LoadTransitionSpec()
	if err != nil {
		return err
	}
	l.spec = spec
	l.forgetEasings()
	for _, p := range spec.Presets {
		l.mask(p.Mask)
	}
	return nil
}

func (l *transitionLibrary) forgetEasings() {
	l.easings = map[string]system.Easing{}
}

func (l *transitionLibrary) names() []string {
	return l.spec.Names()
}

// next returns the preset after name, wrapping around.
func (l *transitionLibrary) next(name string) string {
	names := l.names()
	if len(names) == 0 {
		return ""
	}
	for i, n := range names {
		if n == name {
			return names[(i+1)%len(names)]
		}
	}
	return names[0]
}

func (l *transitionLibrary) mask(path string) asset.Handle {
	if h, ok := l.builtins[strings.TrimSpace(path)]; ok {
		return h
	}
	return l.assets.Load(path)
}

func (l *transitionLibrary) easing(name string) system.Easing {
	if name == "" {
		return system.LinearEasing
	}
	if e, ok := l.easings[name]; ok {
		return e
	}

	var e system.Easing = system.LinearEasing
	src, err := prefabs.LoadScript(name)
	if err == nil {
		var script *system.ScriptEasing
		script, err = system.NewScriptEasing(name, src)
		if err == nil {
			e = script
		}
	}
	if err != nil {
		log.Printf("transition: easing %s: %v (using linear)", name, err)
	}
	l.easings[name] = e
	return e
}

func (l *transitionLibrary) request(preset string, target Screen, o overrides) (system.Trigger[Screen], system.TransitionOptions, system.Easing, error) {
	p, err := l.spec.Preset(preset)
	if err != nil {
		return system.Trigger[Screen]{}, system.TransitionOptions{}, nil, err
	}
	policy, err := system.ParseMaskFailurePolicy(p.MaskFailure)
	if err != nil {
		return system.Trigger[Screen]{}, system.TransitionOptions{}, nil, fmt.Errorf("preset %s: %w", p.Name, err)
	}

	maskPath := p.Mask
	if o.Mask != "" {
		maskPath = o.Mask
	}
	duration := p.DurationTime()
	if o.Duration > 0 {
		duration = o.Duration
	}

	req := system.Trigger[Screen]{
		TargetState: target,
		Duration:    duration,
		Mask:        l.mask(maskPath),
	}
	opts := system.TransitionOptions{
		MaskFailure: policy,
		MaskTimeout: p.MaskTimeoutTime(),
	}
	return req, opts, l.easing(p.Easing), nil
}
