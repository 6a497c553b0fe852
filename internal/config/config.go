// Package config defines the application configuration and its loading
// from files, environment variables and flags.
package config

import (
	"fmt"
	"strings"
)

// Config represents the complete configuration for the pdfcad application.
// It covers all commands (analyze, markers, crop, caption, visualize, serve)
// and supports loading from configuration files, environment variables, and
// command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Shape analysis settings
	Analyze AnalyzeConfig `mapstructure:"analyze" yaml:"analyze" json:"analyze"`

	// Marker detection settings
	Markers MarkersConfig `mapstructure:"markers" yaml:"markers" json:"markers"`

	// Crop rendering settings
	Crop CropConfig `mapstructure:"crop" yaml:"crop" json:"crop"`

	// Captioning settings
	Caption CaptionConfig `mapstructure:"caption" yaml:"caption" json:"caption"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
}

// AnalyzeConfig contains two-pass shape analysis settings.
type AnalyzeConfig struct {
	// Output is the artifact path written by the analyze command.
	Output string `mapstructure:"output" yaml:"output" json:"output"`
	// PaletteSeed fixes the color permutation when non-zero.
	PaletteSeed int64 `mapstructure:"palette_seed" yaml:"palette_seed" json:"palette_seed"`
}

// MarkersConfig contains marker detection settings.
type MarkersConfig struct {
	// Threshold is the maximum shape-to-text distance in page units.
	Threshold float64 `mapstructure:"threshold" yaml:"threshold" json:"threshold"`
}

// CropConfig contains crop rendering settings.
type CropConfig struct {
	OutputDir string  `mapstructure:"output_dir" yaml:"output_dir" json:"output_dir"`
	ImagesDir string  `mapstructure:"images_dir" yaml:"images_dir" json:"images_dir"`
	Padding   float64 `mapstructure:"padding" yaml:"padding" json:"padding"`
	DPI       float64 `mapstructure:"dpi" yaml:"dpi" json:"dpi"`
	// RotationPolicy selects how page rotation participates in the crop
	// mapping: "normalize" or "corners".
	RotationPolicy string `mapstructure:"rotation_policy" yaml:"rotation_policy" json:"rotation_policy"`
}

// CaptionConfig contains captioning settings.
type CaptionConfig struct {
	URL      string `mapstructure:"url" yaml:"url" json:"url"`
	Model    string `mapstructure:"model" yaml:"model" json:"model"`
	Prompt   string `mapstructure:"prompt" yaml:"prompt" json:"prompt"`
	CropsDir string `mapstructure:"crops_dir" yaml:"crops_dir" json:"crops_dir"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Analyze: AnalyzeConfig{
			Output:      "shapes.json",
			PaletteSeed: 0,
		},
		Markers: MarkersConfig{
			Threshold: 100,
		},
		Crop: CropConfig{
			OutputDir:      "crops",
			ImagesDir:      "pages",
			Padding:        10,
			DPI:            150,
			RotationPolicy: "normalize",
		},
		Caption: CaptionConfig{
			URL:      "http://localhost:11434",
			Model:    "bakllava",
			Prompt:   "What do you see?",
			CropsDir: "crops",
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     50,
			TimeoutSec:      120,
			ShutdownTimeout: 10,
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)",
			c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	if c.Markers.Threshold <= 0 {
		return fmt.Errorf("invalid markers threshold: %g (must be positive)", c.Markers.Threshold)
	}

	if c.Crop.Padding < 0 {
		return fmt.Errorf("invalid crop padding: %g (must not be negative)", c.Crop.Padding)
	}
	if c.Crop.DPI <= 0 {
		return fmt.Errorf("invalid crop dpi: %g (must be positive)", c.Crop.DPI)
	}
	validPolicies := []string{"normalize", "corners"}
	if !contains(validPolicies, c.Crop.RotationPolicy) {
		return fmt.Errorf("invalid crop rotation policy: %s (must be one of: %s)",
			c.Crop.RotationPolicy, strings.Join(validPolicies, ", "))
	}

	if c.Caption.URL == "" {
		return fmt.Errorf("caption url must not be empty")
	}
	if c.Caption.Model == "" {
		return fmt.Errorf("caption model must not be empty")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid max upload size: %d (must be positive)", c.Server.MaxUploadMB)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid timeout: %d (must be positive)", c.Server.TimeoutSec)
	}

	return nil
}

// contains checks if a slice contains a string.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
