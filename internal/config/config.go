package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
)

// Config holds replay input, export and buffering settings.
type Config struct {
	// Paths
	InputDir  string `json:"input_dir"`
	OutputDir string `json:"output_dir"`

	// Render session
	Frame      float64 `json:"frame"`
	Width      int     `json:"width"`  // synthetic renders only
	Height     int     `json:"height"` // synthetic renders only
	BucketSize int     `json:"bucket_size"`
	KeepFrames int     `json:"keep_frames"`

	// Export settings
	Format      string `json:"format"` // "webp" or "tga"
	PreviewSize int    `json:"preview_size"`
	ProgressMS  int    `json:"progress_ms"` // animation frame delay, 0 disables
	Workers     int    `json:"workers"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.InputDir != "" {
		c.InputDir = flags.InputDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.BucketSize > 0 {
		c.BucketSize = flags.BucketSize
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	// Relative output goes next to the input
	if c.OutputDir == "" {
		if c.InputDir != "" {
			c.OutputDir = filepath.Join(c.InputDir, "export")
		} else {
			c.OutputDir = "export"
		}
	} else if !filepath.IsAbs(c.OutputDir) && c.InputDir != "" && flags.OutputDir == "" {
		c.OutputDir = filepath.Join(c.InputDir, c.OutputDir)
	}

	// Defaults for render settings
	if c.Width <= 0 {
		c.Width = 320
	}
	if c.Height <= 0 {
		c.Height = 180
	}
	if c.BucketSize <= 0 {
		c.BucketSize = 64
	}
	if c.KeepFrames <= 0 {
		c.KeepFrames = 2
	}
	c.Format = strings.ToLower(c.Format)
	if c.Format == "" {
		c.Format = "webp"
	}
	if c.PreviewSize <= 0 {
		c.PreviewSize = 256
	}
	if c.ProgressMS < 0 {
		c.ProgressMS = 0
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// Validate reports settings Resolve cannot repair.
func (c *Config) Validate(formats []string) error {
	if !slices.Contains(formats, c.Format) {
		return fmt.Errorf("config: format %q not one of %v", c.Format, formats)
	}
	return nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	InputDir   string
	OutputDir  string
	Format     string
	BucketSize int
	Workers    int
}
