// Package config handles scrollback configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the root configuration structure for scrollback.
type Config struct {
	// Global settings
	Global GlobalConfig `yaml:"global" mapstructure:"global"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// Viewer settings
	Viewer ViewerConfig `yaml:"viewer" mapstructure:"viewer"`

	// Export settings
	Export ExportConfig `yaml:"export" mapstructure:"export"`

	// Serve settings
	Serve ServeConfig `yaml:"serve" mapstructure:"serve"`
}

// GlobalConfig contains global scrollback settings.
type GlobalConfig struct {
	// DataDir is where backups live (default: ~/.local/share/scrollback).
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// File is an optional log file path.
	File string `yaml:"file" mapstructure:"file"`
}

// ViewerConfig contains terminal viewer settings.
type ViewerConfig struct {
	// Theme is the color theme (default, high-contrast).
	Theme string `yaml:"theme" mapstructure:"theme"`

	// Identity is the viewer's own participant id, used to mark
	// messages as outgoing.
	Identity string `yaml:"identity" mapstructure:"identity"`

	// PageSize is how many messages one pagination fetch loads.
	PageSize int `yaml:"page_size" mapstructure:"page_size"`

	// EdgeRows is the proximity threshold, in rows, to the fetch
	// boundary at which older messages load.
	EdgeRows int `yaml:"edge_rows" mapstructure:"edge_rows"`
}

// ExportConfig contains export settings.
type ExportConfig struct {
	// OutputDir is where exported documents are written.
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`

	// DateFormat is the Go layout for dates in stamps and filenames.
	DateFormat string `yaml:"date_format" mapstructure:"date_format"`

	// TimeFormat is the Go layout for times in stamps.
	TimeFormat string `yaml:"time_format" mapstructure:"time_format"`

	// Timezone is an IANA zone name; empty means local time.
	Timezone string `yaml:"timezone" mapstructure:"timezone"`
}

// ServeConfig contains web preview settings.
type ServeConfig struct {
	// Addr is the listen address.
	Addr string `yaml:"addr" mapstructure:"addr"`

	// CORSOrigins lists allowed cross-origin hosts.
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Global: GlobalConfig{
			DataDir: filepath.Join(homeDir, ".local", "share", "scrollback"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Viewer: ViewerConfig{
			Theme:    "default",
			PageSize: 100,
			EdgeRows: 4,
		},
		Export: ExportConfig{
			OutputDir:  filepath.Join(homeDir, "Downloads"),
			DateFormat: "2006-01-02",
			TimeFormat: "15:04",
		},
		Serve: ServeConfig{
			Addr:        "127.0.0.1:8480",
			CORSOrigins: []string{},
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Global.DataDir == "" {
		return fmt.Errorf("global.data_dir is required")
	}
	if c.Viewer.PageSize < 1 {
		return fmt.Errorf("viewer.page_size must be at least 1")
	}
	if c.Viewer.EdgeRows < 0 {
		return fmt.Errorf("viewer.edge_rows must not be negative")
	}
	switch c.Viewer.Theme {
	case "default", "high-contrast":
	default:
		return fmt.Errorf("viewer.theme must be one of default, high-contrast")
	}
	if c.Export.Timezone != "" {
		if _, err := time.LoadLocation(c.Export.Timezone); err != nil {
			return fmt.Errorf("export.timezone: %w", err)
		}
	}
	if c.Serve.Addr == "" {
		return fmt.Errorf("serve.addr is required")
	}
	return nil
}

// EnsureDirectories creates required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Global.DataDir,
		c.BackupsDir(),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// BackupsDir returns the directory holding backup archives.
func (c *Config) BackupsDir() string {
	return filepath.Join(c.Global.DataDir, "backups")
}

// BackupDir returns the directory of one backup archive.
func (c *Config) BackupDir(backupID string) string {
	return filepath.Join(c.BackupsDir(), backupID)
}

// Location resolves the configured export timezone, defaulting to
// local time.
func (c *Config) Location() *time.Location {
	if c.Export.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Export.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
