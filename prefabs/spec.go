package prefabs

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrUnknownPreset = errors.New("prefabs: unknown transition preset")

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

type TransitionSpec struct {
	Default string                 `yaml:"default"`
	Presets []TransitionPresetSpec `yaml:"presets"`
}

type TransitionPresetSpec struct {
	Name        string  `yaml:"name"`
	Duration    float64 `yaml:"duration"`
	Mask        string  `yaml:"mask"`
	Easing      string  `yaml:"easing"`
	MaskFailure string  `yaml:"mask_failure"`
	MaskTimeout float64 `yaml:"mask_timeout"`
}

func LoadTransitionSpec() (*TransitionSpec, error) {
	spec, err := LoadSpec[TransitionSpec]("transition.yaml")
	if err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("prefabs: transition.yaml: %w", err)
	}
	return &spec, nil
}

func (s *TransitionSpec) Validate() error {
	if len(s.Presets) == 0 {
		return errors.New("no presets")
	}
	seen := make(map[string]bool, len(s.Presets))
	for i, p := range s.Presets {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("preset %d: missing name", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("preset %q: duplicate name", p.Name)
		}
		seen[p.Name] = true
		if p.Duration < 0 {
			return fmt.Errorf("preset %q: negative duration", p.Name)
		}
		if p.MaskTimeout < 0 {
			return fmt.Errorf("preset %q: negative mask_timeout", p.Name)
		}
		if strings.TrimSpace(p.Mask) == "" {
			return fmt.Errorf("preset %q: missing mask", p.Name)
		}
	}
	if s.Default != "" && !seen[s.Default] {
		return fmt.Errorf("default %q: %w", s.Default, ErrUnknownPreset)
	}
	return nil
}

// Preset looks up a preset by name. An empty name selects the default, or
// the first preset when no default is set.
func (s *TransitionSpec) Preset(name string) (TransitionPresetSpec, error) {
	if name == "" {
		name = s.Default
	}
	if name == "" && len(s.Presets) > 0 {
		return s.Presets[0], nil
	}
	for _, p := range s.Presets {
		if p.Name == name {
			return p, nil
		}
	}
	return TransitionPresetSpec{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}

func (s *TransitionSpec) Names() []string {
	names := make([]string, 0, len(s.Presets))
	for _, p := range s.Presets {
		names = append(names, p.Name)
	}
	return names
}

func (p TransitionPresetSpec) DurationTime() time.Duration {
	return secondsToDuration(p.Duration)
}

func (p TransitionPresetSpec) MaskTimeoutTime() time.Duration {
	return secondsToDuration(p.MaskTimeout)
}

func secondsToDuration(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}

type DemoSpec struct {
	MenuBackground *YAMLColor    `yaml:"menu_background"`
	GameBackground *YAMLColor    `yaml:"game_background"`
	Playfield      PlayfieldSpec `yaml:"playfield"`
}

type PlayfieldSpec struct {
	Gravity    float64    `yaml:"gravity"`
	Balls      int        `yaml:"balls"`
	Radius     float64    `yaml:"radius"`
	Elasticity float64    `yaml:"elasticity"`
	BallColor  *YAMLColor `yaml:"ball_color"`
}

func LoadDemoSpec() (*DemoSpec, error) {
	spec, err := LoadSpec[DemoSpec]("demo.yaml")
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

type YAMLColor struct {
	color.Color
}

// Or returns c, or fallback when c is unset.
func (c *YAMLColor) Or(fallback color.Color) color.Color {
	if c == nil || c.Color == nil {
		return fallback
	}
	return c.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}
