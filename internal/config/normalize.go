package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeEditor()
	if err := c.normalizeServer(); err != nil {
		return err
	}
	if err := c.normalizeOutput(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeEditor() {
	c.Editor.FitMode = strings.ToLower(strings.TrimSpace(c.Editor.FitMode))
	if c.Editor.FitMode == "" {
		c.Editor.FitMode = defaultFitMode
	}
}

func (c *Config) normalizeServer() error {
	if value, ok := os.LookupEnv("DATA_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Server.DataDir = value
	}
	if value, ok := os.LookupEnv("SEQUENCER_BIND"); ok && strings.TrimSpace(value) != "" {
		c.Server.Bind = value
	}
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultBind
	}
	if strings.TrimSpace(c.Server.DataDir) == "" {
		c.Server.DataDir = defaultDataDir
	}
	var err error
	if c.Server.DataDir, err = expandPath(c.Server.DataDir); err != nil {
		return fmt.Errorf("server.data_dir: %w", err)
	}
	c.Server.PublicBaseURL = strings.TrimRight(strings.TrimSpace(c.Server.PublicBaseURL), "/")
	c.Server.MDNSService = strings.TrimSpace(c.Server.MDNSService)
	if c.Server.MDNSService == "" {
		c.Server.MDNSService = defaultMDNSService
	}
	return nil
}

func (c *Config) normalizeOutput() error {
	if strings.TrimSpace(c.Output.Dir) == "" {
		c.Output.Dir = defaultOutputDir
	}
	var err error
	if c.Output.Dir, err = expandPath(c.Output.Dir); err != nil {
		return fmt.Errorf("output.dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" || c.Logging.Format == "console" {
		c.Logging.Format = "text"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
