package config

import (
	"fmt"
	"strconv"
	"time"
)

// Environment variables that override file configuration
const (
	EnvScratchDir    = "VIDEO_TRIMMER_SCRATCH_DIR"
	EnvFFmpegPath    = "VIDEO_TRIMMER_FFMPEG"
	EnvFFmpegTimeout = "VIDEO_TRIMMER_FFMPEG_TIMEOUT"
	EnvStagingSlots  = "VIDEO_TRIMMER_STAGING_SLOTS"
	EnvLogFile       = "VIDEO_TRIMMER_LOG_FILE"
)

// LookupFunc matches os.LookupEnv
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides configuration values from the environment
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if v, ok := lookup(EnvScratchDir); ok && v != "" {
		c.Paths.ScratchDirectory = v
	}
	if v, ok := lookup(EnvFFmpegPath); ok && v != "" {
		c.FFmpeg.Path = v
	}
	if v, ok := lookup(EnvFFmpegTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalidValue, EnvFFmpegTimeout, v, err)
		}
		c.FFmpeg.Timeout = d
	}
	if v, ok := lookup(EnvStagingSlots); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalidValue, EnvStagingSlots, v, err)
		}
		c.Trim.StagingSlots = n
	}
	if v, ok := lookup(EnvLogFile); ok && v != "" {
		c.Logging.File = v
	}
	return c.Validate()
}
