package config

import (
	"errors"
	"fmt"
)

// ErrInvalidValue is wrapped by every validation failure
var ErrInvalidValue = errors.New("invalid config value")

var (
	validLogLevels = []string{"quiet", "panic", "fatal", "error", "warning", "info", "verbose", "debug", "trace"}
	validProbes    = []string{ProbeNone, ProbeFFprobe, ProbeOpenCV}
	validColors    = []string{"auto", "always", "never"}
)

// Validate checks that the configuration values are usable
func (c *Config) Validate() error {
	if c.FFmpeg.Path == "" {
		return fmt.Errorf("%w: ffmpeg.path is required", ErrInvalidValue)
	}
	if !oneOf(c.FFmpeg.LogLevel, validLogLevels) {
		return fmt.Errorf("%w: ffmpeg.log_level %q (want one of %v)", ErrInvalidValue, c.FFmpeg.LogLevel, validLogLevels)
	}
	if c.FFmpeg.Timeout < 0 {
		return fmt.Errorf("%w: ffmpeg.timeout must not be negative", ErrInvalidValue)
	}
	if c.Trim.StagingSlots < 1 {
		return fmt.Errorf("%w: trim.staging_slots must be at least 1", ErrInvalidValue)
	}
	if !oneOf(c.Trim.Probe, validProbes) {
		return fmt.Errorf("%w: trim.probe %q (want one of %v)", ErrInvalidValue, c.Trim.Probe, validProbes)
	}
	if !oneOf(c.Logging.Color, validColors) {
		return fmt.Errorf("%w: logging.color %q (want one of %v)", ErrInvalidValue, c.Logging.Color, validColors)
	}
	return nil
}

func oneOf(v string, options []string) bool {
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}
