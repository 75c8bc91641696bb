package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"artwork-sequencer/internal/render"
	"artwork-sequencer/pkg/colorutil"
	"artwork-sequencer/pkg/geometry"
)

//go:embed sample_config.toml
var sampleConfig string

// Editor contains interactive placement settings.
type Editor struct {
	EnsureRadius       float64 `toml:"ensure_radius"`
	LegacyEnsureRadius float64 `toml:"legacy_ensure_radius"`
	DragThreshold      float64 `toml:"drag_threshold"`
	MarkerWidth        float64 `toml:"marker_width"`
	MarkerHeight       float64 `toml:"marker_height"`
	FitMode            string  `toml:"fit_mode"`
}

// Render contains export styling.
type Render struct {
	BoxRatio    float64 `toml:"box_ratio"`
	MinBox      int     `toml:"min_box"`
	StrokeWidth int     `toml:"stroke_width"`
	FontSize    float64 `toml:"font_size"`
	Side1Color  string  `toml:"side1_color"`
	Side2Color  string  `toml:"side2_color"`
	DrawIcons   bool    `toml:"draw_icons"`
	IconMaxEdge int     `toml:"icon_max_edge"`
	IconOpacity float64 `toml:"icon_opacity"`
}

// Server contains transfer server settings.
type Server struct {
	Bind                 string `toml:"bind"`
	DataDir              string `toml:"data_dir"`
	PublicBaseURL        string `toml:"public_base_url"`
	RetentionDays        int    `toml:"retention_days"`
	MaxItems             int    `toml:"max_items"`
	CleanupIntervalHours int    `toml:"cleanup_interval_hours"`
	ExportTimeoutSeconds int    `toml:"export_timeout_seconds"`
	MaxUploadMB          int    `toml:"max_upload_mb"`
	MDNS                 bool   `toml:"mdns"`
	MDNSService          string `toml:"mdns_service"`
}

// Output contains export destination settings.
type Output struct {
	Dir string `toml:"dir"`
}

// Logging contains log level and handler format.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config aggregates every section of the configuration file.
type Config struct {
	Editor  Editor  `toml:"editor"`
	Render  Render  `toml:"render"`
	Server  Server  `toml:"server"`
	Output  Output  `toml:"output"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the expanded user config location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/artwork-sequencer/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("sequencer.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and output directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Server.DataDir, c.Output.Dir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// Style converts the [render] section into a renderer style.
func (c *Config) Style() (render.Style, error) {
	s := render.DefaultStyle()
	s.BoxRatio = c.Render.BoxRatio
	s.MinBox = c.Render.MinBox
	s.StrokeWidth = c.Render.StrokeWidth
	s.FontSize = c.Render.FontSize
	s.DrawIcons = c.Render.DrawIcons
	s.IconOpacity = c.Render.IconOpacity
	var err error
	if s.Side1Color, err = colorutil.ParseHex(c.Render.Side1Color); err != nil {
		return render.Style{}, fmt.Errorf("render.side1_color: %w", err)
	}
	if s.Side2Color, err = colorutil.ParseHex(c.Render.Side2Color); err != nil {
		return render.Style{}, fmt.Errorf("render.side2_color: %w", err)
	}
	return s, nil
}

// Fit returns the configured viewport fit mode.
func (c *Config) Fit() geometry.FitMode {
	m, err := geometry.ParseFitMode(c.Editor.FitMode)
	if err != nil {
		return geometry.FitContain
	}
	return m
}

// EnsureRadius returns the tap reuse radius for a canvas using mode.
func (c *Config) EnsureRadius(mode geometry.FitMode) float64 {
	if mode == geometry.FitStretch {
		return c.Editor.LegacyEnsureRadius
	}
	return c.Editor.EnsureRadius
}

// Retention returns how long shared entries are kept.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.Server.RetentionDays) * 24 * time.Hour
}

// CleanupInterval returns the period between janitor sweeps.
func (c *Config) CleanupInterval() time.Duration {
	return time.Duration(c.Server.CleanupIntervalHours) * time.Hour
}

// ExportTimeout bounds a single render or report request.
func (c *Config) ExportTimeout() time.Duration {
	return time.Duration(c.Server.ExportTimeoutSeconds) * time.Second
}

// MaxUploadBytes is the request body limit for the server.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
