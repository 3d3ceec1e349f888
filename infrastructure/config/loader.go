package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultScratchSubdir is appended to the user cache directory when no scratch directory is configured
const DefaultScratchSubdir = "temp-videos"

// Probe backends
const (
	ProbeNone    = "none"
	ProbeFFprobe = "ffprobe"
	ProbeOpenCV  = "opencv"
)

// Config represents the complete application configuration
type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	FFmpeg  FFmpegConfig  `yaml:"ffmpeg"`
	Trim    TrimConfig    `yaml:"trim"`
	Logging LoggingConfig `yaml:"logging"`
}

// PathsConfig contains directory paths for trim artifacts
type PathsConfig struct {
	ScratchDirectory string `yaml:"scratch_directory"`
}

// FFmpegConfig contains codec engine settings
type FFmpegConfig struct {
	Path       string        `yaml:"path"`
	LogLevel   string        `yaml:"log_level"`
	Timeout    time.Duration `yaml:"timeout"`
	SkipVerify bool          `yaml:"skip_verify"`
}

// TrimConfig contains trim pipeline settings
type TrimConfig struct {
	StagingSlots int    `yaml:"staging_slots"`
	Probe        string `yaml:"probe"`
}

// LoggingConfig contains logger settings
type LoggingConfig struct {
	Color   string `yaml:"color"`
	File    string `yaml:"file"`
	Verbose bool   `yaml:"verbose"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		FFmpeg: FFmpegConfig{
			Path:     "ffmpeg",
			LogLevel: "error",
		},
		Trim: TrimConfig{
			StagingSlots: 1,
			Probe:        ProbeNone,
		},
		Logging: LoggingConfig{
			Color: "auto",
		},
	}
}

// Load reads and parses the configuration from the specified YAML file.
// Fields missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ScratchDir returns the configured scratch directory, or the platform cache default
func (c *Config) ScratchDir() string {
	if c.Paths.ScratchDirectory != "" {
		return c.Paths.ScratchDirectory
	}
	return DefaultScratchDir()
}

// DefaultScratchDir returns <user cache dir>/temp-videos, falling back to the system temp dir
func DefaultScratchDir() string {
	base, err := os.UserCacheDir()
	if err != nil || base == "" {
		base = os.TempDir()
	}
	return filepath.Join(base, DefaultScratchSubdir)
}
