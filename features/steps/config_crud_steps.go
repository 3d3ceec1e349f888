//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"video-trimmer/cmd"
	"video-trimmer/infrastructure/config"

	"github.com/cucumber/godog"
)

type configCrudContext struct {
	tempDir    string
	configPath string
	config     *config.Config
	output     *bytes.Buffer
	err        error
}

var SharedConfigCrudContext = &configCrudContext{}

func InitializeConfigCrudScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedConfigCrudContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "config-crud-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.configPath = filepath.Join(tempDir, "config.yaml")
		testCtx.output = &bytes.Buffer{}
		testCtx.err = nil
		testCtx.config = nil
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^a config file exists with initial data$`, testCtx.aConfigFileExistsWithInitialData)
	ctx.Step(`^I run config set "([^"]*)" to "([^"]*)"$`, testCtx.iRunConfigSet)
	ctx.Step(`^I run config get "([^"]*)"$`, testCtx.iRunConfigGet)
	ctx.Step(`^I run config list$`, testCtx.iRunConfigList)
	ctx.Step(`^the saved config should have "([^"]*)" set to "([^"]*)"$`, testCtx.theSavedConfigShouldHave)
	ctx.Step(`^the config command should succeed$`, testCtx.theCommandShouldSucceed)
	ctx.Step(`^the config command should fail with "([^"]*)"$`, testCtx.theCommandShouldFailWith)
	ctx.Step(`^the config output should contain "([^"]*)"$`, testCtx.theOutputShouldContain)
}

func (c *configCrudContext) aConfigFileExistsWithInitialData() error {
	c.config = config.Default()
	c.config.Paths.ScratchDirectory = "/var/tmp/trims"
	c.config.FFmpeg.Path = "/usr/bin/ffmpeg"
	return config.Save(c.config, c.configPath)
}

func (c *configCrudContext) iRunConfigSet(key, value string) error {
	c.err = cmd.RunConfigSetWithDependencies(c.config, c.configPath, key, value, c.output)
	return nil
}

func (c *configCrudContext) iRunConfigGet(key string) error {
	c.err = cmd.RunConfigGetWithDependencies(c.config, c.configPath, key, c.output)
	return nil
}

func (c *configCrudContext) iRunConfigList() error {
	c.err = cmd.RunConfigListWithDependencies(c.config, c.configPath, c.output)
	return nil
}

func (c *configCrudContext) theSavedConfigShouldHave(key, expected string) error {
	saved, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}
	got, err := config.NewConfigManager(saved, c.configPath).Get(key)
	if err != nil {
		return err
	}
	if got != expected {
		return fmt.Errorf("expected %s = %q in saved config, got %q", key, expected, got)
	}
	return nil
}

func (c *configCrudContext) theCommandShouldSucceed() error {
	if c.err != nil {
		return fmt.Errorf("expected success, got error: %v", c.err)
	}
	return nil
}

func (c *configCrudContext) theCommandShouldFailWith(fragment string) error {
	if c.err == nil {
		return fmt.Errorf("expected an error containing %q, got none", fragment)
	}
	if !strings.Contains(c.err.Error(), fragment) {
		return fmt.Errorf("expected error containing %q, got: %v", fragment, c.err)
	}
	return nil
}

func (c *configCrudContext) theOutputShouldContain(fragment string) error {
	if !strings.Contains(c.output.String(), fragment) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", fragment, c.output.String())
	}
	return nil
}
