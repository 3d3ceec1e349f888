//go:build integration

package steps

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"video-trimmer/cmd"
	"video-trimmer/infrastructure/config"

	"github.com/cucumber/godog"
)

type configContext struct {
	tempDir    string
	configPath string
	env        map[string]string
	cfg        *config.Config
	loadErr    error
}

// SharedConfigContext is reset before each scenario via Before hook
var SharedConfigContext = &configContext{}

func InitializeConfigScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedConfigContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "config-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.configPath = filepath.Join(tempDir, "config.yaml")
		testCtx.env = make(map[string]string)
		testCtx.cfg = nil
		testCtx.loadErr = nil
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^a configuration file containing:$`, testCtx.aConfigurationFileContaining)
	ctx.Step(`^no configuration file exists$`, testCtx.noConfigurationFileExists)
	ctx.Step(`^the environment variable "([^"]*)" is "([^"]*)"$`, testCtx.theEnvironmentVariableIs)
	ctx.Step(`^I load the configuration$`, testCtx.iLoadTheConfiguration)
	ctx.Step(`^I attempt to load the configuration$`, testCtx.iAttemptToLoadTheConfiguration)
	ctx.Step(`^the scratch directory should be "([^"]*)"$`, testCtx.theScratchDirectoryShouldBe)
	ctx.Step(`^the scratch directory should be the user cache default$`, testCtx.theScratchDirectoryShouldBeTheDefault)
	ctx.Step(`^the ffmpeg path should be "([^"]*)"$`, testCtx.theFFmpegPathShouldBe)
	ctx.Step(`^the ffmpeg timeout should be "([^"]*)"$`, testCtx.theFFmpegTimeoutShouldBe)
	ctx.Step(`^the staging slots should be (\d+)$`, testCtx.theStagingSlotsShouldBe)
	ctx.Step(`^I should receive an invalid configuration error$`, testCtx.iShouldReceiveAnInvalidConfigurationError)
}

func (c *configContext) aConfigurationFileContaining(doc *godog.DocString) error {
	return os.WriteFile(c.configPath, []byte(doc.Content), 0644)
}

func (c *configContext) noConfigurationFileExists() error {
	if _, err := os.Stat(c.configPath); err == nil {
		return fmt.Errorf("unexpected config file at %s", c.configPath)
	}
	return nil
}

func (c *configContext) theEnvironmentVariableIs(key, value string) error {
	c.env[key] = value
	return nil
}

func (c *configContext) lookup(key string) (string, bool) {
	v, ok := c.env[key]
	return v, ok
}

func (c *configContext) iLoadTheConfiguration() error {
	cfg, err := cmd.LoadConfig(c.configPath, c.lookup)
	if err != nil {
		return fmt.Errorf("unexpected error loading config: %w", err)
	}
	c.cfg = cfg
	return nil
}

func (c *configContext) iAttemptToLoadTheConfiguration() error {
	c.cfg, c.loadErr = cmd.LoadConfig(c.configPath, c.lookup)
	return nil
}

func (c *configContext) theScratchDirectoryShouldBe(expected string) error {
	if c.cfg == nil {
		return fmt.Errorf("config was not loaded")
	}
	if got := c.cfg.ScratchDir(); got != expected {
		return fmt.Errorf("expected scratch directory %q, got %q", expected, got)
	}
	return nil
}

func (c *configContext) theScratchDirectoryShouldBeTheDefault() error {
	return c.theScratchDirectoryShouldBe(config.DefaultScratchDir())
}

func (c *configContext) theFFmpegPathShouldBe(expected string) error {
	if c.cfg == nil {
		return fmt.Errorf("config was not loaded")
	}
	if c.cfg.FFmpeg.Path != expected {
		return fmt.Errorf("expected ffmpeg path %q, got %q", expected, c.cfg.FFmpeg.Path)
	}
	return nil
}

func (c *configContext) theFFmpegTimeoutShouldBe(expected string) error {
	if c.cfg == nil {
		return fmt.Errorf("config was not loaded")
	}
	want, err := time.ParseDuration(expected)
	if err != nil {
		return err
	}
	if c.cfg.FFmpeg.Timeout != want {
		return fmt.Errorf("expected ffmpeg timeout %v, got %v", want, c.cfg.FFmpeg.Timeout)
	}
	return nil
}

func (c *configContext) theStagingSlotsShouldBe(expected string) error {
	if c.cfg == nil {
		return fmt.Errorf("config was not loaded")
	}
	if strconv.Itoa(c.cfg.Trim.StagingSlots) != expected {
		return fmt.Errorf("expected %s staging slots, got %d", expected, c.cfg.Trim.StagingSlots)
	}
	return nil
}

func (c *configContext) iShouldReceiveAnInvalidConfigurationError() error {
	if c.loadErr == nil {
		return fmt.Errorf("expected an error but got none")
	}
	if !errors.Is(c.loadErr, config.ErrInvalidValue) {
		return fmt.Errorf("expected an invalid value error, got: %v", c.loadErr)
	}
	return nil
}
