// Package prefs stores the desktop editor's preferences in a JSON file.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"artwork-sequencer/pkg/geometry"
)

const prefsFile = "preferences.json"

// Default window size when none has been saved.
const (
	DefaultWindowWidth  = 1200
	DefaultWindowHeight = 800
)

type values struct {
	LastDirectory string  `json:"lastDirectory,omitempty"`
	FitMode       string  `json:"fitMode,omitempty"`
	WindowWidth   float32 `json:"windowWidth,omitempty"`
	WindowHeight  float32 `json:"windowHeight,omitempty"`
}

// Prefs holds the editor's remembered settings.
type Prefs struct {
	mu   sync.RWMutex
	v    values
	path string
}

// Load reads preferences from ~/.config/artwork-sequencer/preferences.json.
// A missing or unreadable file gives defaults.
func Load() *Prefs {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return LoadFile(filepath.Join(configDir, "artwork-sequencer", prefsFile))
}

// LoadFile reads preferences from path.
func LoadFile(path string) *Prefs {
	p := &Prefs{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		return p
	}
	_ = json.Unmarshal(data, &p.v)
	return p
}

// Save writes preferences to disk.
func (p *Prefs) Save() error {
	p.mu.RLock()
	data, err := json.MarshalIndent(p.v, "", "  ")
	p.mu.RUnlock()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o644)
}

// LastDir returns the directory of the last opened or saved file, or "".
func (p *Prefs) LastDir() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.v.LastDirectory
}

// SetLastDir remembers the directory containing filePath.
func (p *Prefs) SetLastDir(filePath string) {
	p.mu.Lock()
	p.v.LastDirectory = filepath.Dir(filePath)
	p.mu.Unlock()
}

// FitMode returns the saved fit mode. ok is false when none is saved or the
// saved value is not recognised.
func (p *Prefs) FitMode() (mode geometry.FitMode, ok bool) {
	p.mu.RLock()
	s := p.v.FitMode
	p.mu.RUnlock()
	if s == "" {
		return mode, false
	}
	mode, err := geometry.ParseFitMode(s)
	return mode, err == nil
}

// SetFitMode remembers mode.
func (p *Prefs) SetFitMode(mode geometry.FitMode) {
	p.mu.Lock()
	p.v.FitMode = mode.String()
	p.mu.Unlock()
}

// WindowSize returns the saved window size, falling back to the defaults
// for missing or non-positive values.
func (p *Prefs) WindowSize() (width, height float32) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	width, height = p.v.WindowWidth, p.v.WindowHeight
	if width <= 0 {
		width = DefaultWindowWidth
	}
	if height <= 0 {
		height = DefaultWindowHeight
	}
	return width, height
}

// SetWindowSize remembers the window size.
func (p *Prefs) SetWindowSize(width, height float32) {
	p.mu.Lock()
	p.v.WindowWidth, p.v.WindowHeight = width, height
	p.mu.Unlock()
}
