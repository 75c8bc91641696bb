package config

import (
	"errors"
	"fmt"

	"artwork-sequencer/pkg/colorutil"
	"artwork-sequencer/pkg/geometry"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEditor(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateEditor() error {
	if c.Editor.EnsureRadius <= 0 {
		return errors.New("editor.ensure_radius must be positive")
	}
	if c.Editor.LegacyEnsureRadius <= 0 {
		return errors.New("editor.legacy_ensure_radius must be positive")
	}
	if c.Editor.DragThreshold < 0 {
		return errors.New("editor.drag_threshold must be non-negative")
	}
	if c.Editor.MarkerWidth <= 0 || c.Editor.MarkerHeight <= 0 {
		return errors.New("editor.marker_width and editor.marker_height must be positive")
	}
	if _, err := geometry.ParseFitMode(c.Editor.FitMode); err != nil {
		return fmt.Errorf("editor.fit_mode: %w", err)
	}
	return nil
}

func (c *Config) validateRender() error {
	if c.Render.BoxRatio <= 0 || c.Render.BoxRatio > 1 {
		return errors.New("render.box_ratio must be in (0, 1]")
	}
	if c.Render.MinBox < 1 {
		return errors.New("render.min_box must be at least 1")
	}
	if c.Render.StrokeWidth < 1 {
		return errors.New("render.stroke_width must be at least 1")
	}
	if c.Render.FontSize <= 0 {
		return errors.New("render.font_size must be positive")
	}
	if _, err := colorutil.ParseHex(c.Render.Side1Color); err != nil {
		return fmt.Errorf("render.side1_color: %w", err)
	}
	if _, err := colorutil.ParseHex(c.Render.Side2Color); err != nil {
		return fmt.Errorf("render.side2_color: %w", err)
	}
	if c.Render.IconMaxEdge < 1 {
		return errors.New("render.icon_max_edge must be at least 1")
	}
	if c.Render.IconOpacity < 0 || c.Render.IconOpacity > 1 {
		return errors.New("render.icon_opacity must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.RetentionDays < 1 {
		return errors.New("server.retention_days must be at least 1")
	}
	if c.Server.MaxItems < 1 {
		return errors.New("server.max_items must be at least 1")
	}
	if c.Server.CleanupIntervalHours < 1 {
		return errors.New("server.cleanup_interval_hours must be at least 1")
	}
	if c.Server.ExportTimeoutSeconds < 1 {
		return errors.New("server.export_timeout_seconds must be at least 1")
	}
	if c.Server.MaxUploadMB < 1 {
		return errors.New("server.max_upload_mb must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json (got %q)", c.Logging.Format)
	}
	return nil
}
