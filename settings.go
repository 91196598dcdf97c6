package main

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

const (
	settingsObject   = "settings"
	settingsProperty = "demo"
)

// Settings are the demo preferences kept between runs.
type Settings struct {
	Preset      string `yaml:"preset"`
	Transitions int    `yaml:"transitions"`
}

// SettingsStore persists Settings through gdata. A nil manager keeps them in
// memory only.
type SettingsStore struct {
	data     *gdata.Manager
	settings Settings
}

func openSettingsStore(appName string) *SettingsStore {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		log.Printf("settings: %v (not persisting)", err)
		m = nil
	}
	return NewSettingsStore(m)
}

func NewSettingsStore(m *gdata.Manager) *SettingsStore {
	s := &SettingsStore{data: m}
	if err := s.Load(); err != nil {
		log.Printf("settings: %v (using defaults)", err)
	}
	return s
}

func (s *SettingsStore) Load() error {
	s.settings = Settings{}
	if s.data == nil || !s.data.ObjectPropExists(settingsObject, settingsProperty) {
		return nil
	}

	raw, err := s.data.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	var loaded Settings
	if err := yaml.Unmarshal(raw, &loaded); err != nil {
		return fmt.Errorf("unmarshal settings: %w", err)
	}
	s.settings = loaded
	return nil
}

func (s *SettingsStore) Save() error {
	if s.data == nil {
		return nil
	}
	raw, err := yaml.Marshal(s.settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := s.data.SaveObjectProp(settingsObject, settingsProperty, raw); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (s *SettingsStore) Settings() Settings {
	return s.settings
}

func (s *SettingsStore) SetPreset(name string) {
	s.settings.Preset = name
}

func (s *SettingsStore) CountTransition() {
	s.settings.Transitions++
}
