// Package config implements the transgo configuration store.
//
// Settings are split across two files, mirroring how they differ in
// sensitivity:
//
//   - settings.yaml — provider selection, hover feature flags, and the
//     persisted panel UI state. Stored in the XDG config directory
//     ($XDG_CONFIG_HOME/transgo/, default ~/.config/transgo/).
//   - auth.json — provider credentials and AI endpoint configurations.
//     Stored in the XDG data directory with 0600 permissions
//     ($XDG_DATA_HOME/transgo/, default ~/.local/share/transgo/).
//
// Every setter persists immediately, so a getter racing a completed setter
// always observes the new value. Change listeners registered with Subscribe
// fire after each successful persist.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	appDirName      = "transgo"
	settingsFile    = "settings.yaml"
	authFile        = "auth.json"
	defaultDelay    = 1500
	defaultProvider = "google"
)

// UIState is the panel state blob restored on webviewReady.
type UIState struct {
	InputText         string `yaml:"input_text" json:"inputText"`
	TranslationResult string `yaml:"translation_result" json:"translationResult"`
	CasingResult      string `yaml:"casing_result" json:"casingResult"`
}

// Settings is the persisted shape of settings.yaml.
type Settings struct {
	Provider          string  `yaml:"provider"`
	HoverTranslation  bool    `yaml:"hover_translation"`
	HoverDelayMS      int     `yaml:"hover_delay_ms"`
	ShowCasingButtons bool    `yaml:"show_casing_buttons"`
	UIState           UIState `yaml:"ui_state"`
}

func defaultSettings() Settings {
	return Settings{
		Provider:          defaultProvider,
		HoverTranslation:  true,
		HoverDelayMS:      defaultDelay,
		ShowCasingButtons: true,
	}
}

// Store is the process-wide configuration store. It is safe for
// concurrent use.
type Store struct {
	mu           sync.Mutex
	settingsPath string
	authPath     string
	settings     Settings
	creds        Credentials
	listeners    map[int]func()
	nextListener int
}

// DefaultPaths resolves the settings and auth file locations from the XDG
// environment, falling back to ~/.config and ~/.local/share.
func DefaultPaths() (settingsPath, authPath string, err error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	dataDir := os.Getenv("XDG_DATA_HOME")
	if configDir == "" || dataDir == "" {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return "", "", fmt.Errorf("cannot determine home directory: %w", herr)
		}
		if configDir == "" {
			configDir = filepath.Join(home, ".config")
		}
		if dataDir == "" {
			dataDir = filepath.Join(home, ".local", "share")
		}
	}
	return filepath.Join(configDir, appDirName, settingsFile),
		filepath.Join(dataDir, appDirName, authFile), nil
}

// Open loads the store from the given paths. Missing or unreadable files
// yield defaults; the files are created on the first write.
func Open(settingsPath, authPath string) (*Store, error) {
	s := &Store{
		settingsPath: settingsPath,
		authPath:     authPath,
		settings:     defaultSettings(),
		creds:        Credentials{},
		listeners:    map[int]func(){},
	}

	if data, err := os.ReadFile(settingsPath); err == nil {
		loaded := defaultSettings()
		if err := yaml.Unmarshal(data, &loaded); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", settingsPath, err)
		}
		if loaded.Provider == "" {
			loaded.Provider = defaultProvider
		}
		if loaded.HoverDelayMS <= 0 {
			loaded.HoverDelayMS = defaultDelay
		}
		s.settings = loaded
	}

	if err := s.loadCredentials(); err != nil {
		return nil, err
	}
	return s, nil
}

// OpenDefault opens the store at the XDG default locations.
func OpenDefault() (*Store, error) {
	settingsPath, authPath, err := DefaultPaths()
	if err != nil {
		return nil, err
	}
	return Open(settingsPath, authPath)
}

// SettingsPath returns the settings file location, for display.
func (s *Store) SettingsPath() string { return s.settingsPath }

// AuthPath returns the credential file location, for display.
func (s *Store) AuthPath() string { return s.authPath }

// ---------------------------------------------------------------------------
// Settings accessors
// ---------------------------------------------------------------------------

// Provider returns the active provider id.
func (s *Store) Provider() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.Provider
}

// SetProvider switches the active provider and persists immediately.
func (s *Store) SetProvider(id string) error {
	s.mu.Lock()
	s.settings.Provider = id
	err := s.saveSettingsLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// HoverTranslation reports whether hover translation is enabled.
func (s *Store) HoverTranslation() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.HoverTranslation
}

func (s *Store) SetHoverTranslation(enabled bool) error {
	s.mu.Lock()
	s.settings.HoverTranslation = enabled
	err := s.saveSettingsLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// HoverDelay returns the debounce delay before hover work starts.
func (s *Store) HoverDelay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Duration(s.settings.HoverDelayMS) * time.Millisecond
}

func (s *Store) SetHoverDelayMS(ms int) error {
	if ms <= 0 {
		ms = defaultDelay
	}
	s.mu.Lock()
	s.settings.HoverDelayMS = ms
	err := s.saveSettingsLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// ShowCasingButtons reports whether the panel offers casing conversions.
func (s *Store) ShowCasingButtons() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.ShowCasingButtons
}

func (s *Store) SetShowCasingButtons(show bool) error {
	s.mu.Lock()
	s.settings.ShowCasingButtons = show
	err := s.saveSettingsLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// UIState returns the persisted panel state.
func (s *Store) UIState() UIState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.UIState
}

func (s *Store) SetUIState(state UIState) error {
	s.mu.Lock()
	s.settings.UIState = state
	err := s.saveSettingsLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// ---------------------------------------------------------------------------
// Change listeners
// ---------------------------------------------------------------------------

// Subscribe registers fn to run after every persisted change. The returned
// function removes the listener.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// notify runs listeners outside the lock so a listener may call back into
// the store.
func (s *Store) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// ---------------------------------------------------------------------------
// Persistence
// ---------------------------------------------------------------------------

func (s *Store) saveSettingsLocked() error {
	data, err := yaml.Marshal(s.settings)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.settingsPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(s.settingsPath, data, 0644); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	return nil
}
