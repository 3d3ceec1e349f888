package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrUnknownKey is returned for keys the manager does not recognize
var ErrUnknownKey = errors.New("unknown config key")

// setting binds a dotted key to a field of Config
type setting struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

var settings = map[string]setting{
	"paths.scratch_directory": {
		get: func(c *Config) string { return c.Paths.ScratchDirectory },
		set: func(c *Config, v string) error { c.Paths.ScratchDirectory = v; return nil },
	},
	"ffmpeg.path": {
		get: func(c *Config) string { return c.FFmpeg.Path },
		set: func(c *Config, v string) error { c.FFmpeg.Path = v; return nil },
	},
	"ffmpeg.log_level": {
		get: func(c *Config) string { return c.FFmpeg.LogLevel },
		set: func(c *Config, v string) error { c.FFmpeg.LogLevel = v; return nil },
	},
	"ffmpeg.timeout": {
		get: func(c *Config) string { return c.FFmpeg.Timeout.String() },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return err
			}
			c.FFmpeg.Timeout = d
			return nil
		},
	},
	"ffmpeg.skip_verify": {
		get: func(c *Config) string { return strconv.FormatBool(c.FFmpeg.SkipVerify) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			c.FFmpeg.SkipVerify = b
			return nil
		},
	},
	"trim.staging_slots": {
		get: func(c *Config) string { return strconv.Itoa(c.Trim.StagingSlots) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			c.Trim.StagingSlots = n
			return nil
		},
	},
	"trim.probe": {
		get: func(c *Config) string { return c.Trim.Probe },
		set: func(c *Config, v string) error { c.Trim.Probe = v; return nil },
	},
	"logging.color": {
		get: func(c *Config) string { return c.Logging.Color },
		set: func(c *Config, v string) error { c.Logging.Color = v; return nil },
	},
	"logging.file": {
		get: func(c *Config) string { return c.Logging.File },
		set: func(c *Config, v string) error { c.Logging.File = v; return nil },
	},
	"logging.verbose": {
		get: func(c *Config) string { return strconv.FormatBool(c.Logging.Verbose) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			c.Logging.Verbose = b
			return nil
		},
	},
}

// ConfigManager provides get/set operations for config entries
type ConfigManager struct {
	config     *Config
	configPath string
}

// NewConfigManager creates a new config manager
func NewConfigManager(cfg *Config, configPath string) *ConfigManager {
	return &ConfigManager{
		config:     cfg,
		configPath: configPath,
	}
}

// Keys returns every settable key in sorted order
func (m *ConfigManager) Keys() []string {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the current value of key
func (m *ConfigManager) Get(key string) (string, error) {
	s, ok := settings[normalizeKey(key)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return s.get(m.config), nil
}

// Set parses value into key, validates the whole config, and saves it.
// On any failure the in-memory config is left unchanged.
func (m *ConfigManager) Set(key, value string) error {
	key = normalizeKey(key)
	s, ok := settings[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	updated := *m.config
	if err := s.set(&updated, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidValue, key, err)
	}
	if err := updated.Validate(); err != nil {
		return err
	}

	*m.config = updated
	return Save(m.config, m.configPath)
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
