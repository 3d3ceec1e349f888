//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"video-trimmer/cmd"
	"video-trimmer/infrastructure/config"

	"github.com/cucumber/godog"
)

type setupContext struct {
	tempDir         string
	configPath      string
	setupCancelled  bool
	originalContent string
	output          *bytes.Buffer
	err             error
}

var SharedSetupContext = &setupContext{}

// MockPrompter implements cmd.Prompter for testing
type MockPrompter struct {
	inputResponses   []string
	confirmResponses []bool
	selectResponses  []string
	inputIndex       int
	confirmIndex     int
	selectIndex      int
}

func NewMockPrompter(inputs []string, confirms []bool, selects []string) *MockPrompter {
	return &MockPrompter{
		inputResponses:   inputs,
		confirmResponses: confirms,
		selectResponses:  selects,
	}
}

func (m *MockPrompter) Input(message string, defaultValue string) (string, error) {
	if m.inputIndex >= len(m.inputResponses) {
		if defaultValue != "" {
			return defaultValue, nil
		}
		return "", fmt.Errorf("no more input responses available for message: %s", message)
	}
	response := m.inputResponses[m.inputIndex]
	m.inputIndex++
	return response, nil
}

func (m *MockPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	if m.confirmIndex >= len(m.confirmResponses) {
		return defaultValue, nil
	}
	response := m.confirmResponses[m.confirmIndex]
	m.confirmIndex++
	return response, nil
}

func (m *MockPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	if m.selectIndex >= len(m.selectResponses) {
		return defaultValue, nil
	}
	response := m.selectResponses[m.selectIndex]
	m.selectIndex++
	return response, nil
}

func InitializeSetupScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedSetupContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "setup-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.configPath = filepath.Join(tempDir, "config", "config.yaml")
		testCtx.setupCancelled = false
		testCtx.originalContent = ""
		testCtx.output = &bytes.Buffer{}
		testCtx.err = nil
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^no config file exists for setup$`, testCtx.noConfigFileExistsForSetup)
	ctx.Step(`^a config file already exists for setup$`, testCtx.aConfigFileAlreadyExistsForSetup)
	ctx.Step(`^I run the setup command with answers:$`, testCtx.iRunTheSetupCommandWithAnswers)
	ctx.Step(`^I run the setup command with confirmation "([^"]*)"$`, testCtx.iRunTheSetupCommandWithConfirmation)
	ctx.Step(`^I attempt to run the setup command with answers:$`, testCtx.iAttemptToRunTheSetupCommandWithAnswers)
	ctx.Step(`^a config file should exist$`, testCtx.aConfigFileShouldExist)
	ctx.Step(`^no config file should exist$`, testCtx.noConfigFileShouldExist)
	ctx.Step(`^the config should have scratch_directory "([^"]*)"$`, testCtx.theConfigShouldHaveScratchDirectory)
	ctx.Step(`^the config should have ffmpeg path "([^"]*)"$`, testCtx.theConfigShouldHaveFFmpegPath)
	ctx.Step(`^the config should have (\d+) staging slots$`, testCtx.theConfigShouldHaveStagingSlots)
	ctx.Step(`^the config should probe with "([^"]*)"$`, testCtx.theConfigShouldProbeWith)
	ctx.Step(`^the setup should be cancelled$`, testCtx.theSetupShouldBeCancelled)
	ctx.Step(`^the existing config should be unchanged$`, testCtx.theExistingConfigShouldBeUnchanged)
	ctx.Step(`^setup should fail with "([^"]*)"$`, testCtx.setupShouldFailWith)
}

func (s *setupContext) noConfigFileExistsForSetup() error {
	return os.MkdirAll(filepath.Dir(s.configPath), 0755)
}

func (s *setupContext) aConfigFileAlreadyExistsForSetup() error {
	if err := os.MkdirAll(filepath.Dir(s.configPath), 0755); err != nil {
		return err
	}

	content := `paths:
  scratch_directory: "/original/scratch"
ffmpeg:
  path: "/opt/ffmpeg/bin/ffmpeg"
trim:
  staging_slots: 2
`
	s.originalContent = content
	return os.WriteFile(s.configPath, []byte(content), 0644)
}

// parseAnswerTable splits a | kind | value | table into per-kind answer queues
func parseAnswerTable(table *godog.Table) ([]string, []bool, []string) {
	var inputs []string
	var confirms []bool
	var selects []string

	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header row
		}
		kind := strings.ToLower(row.Cells[0].Value)
		value := row.Cells[1].Value

		switch kind {
		case "confirm":
			confirms = append(confirms, strings.ToLower(value) == "y")
		case "select":
			selects = append(selects, value)
		default:
			inputs = append(inputs, value)
		}
	}

	return inputs, confirms, selects
}

func (s *setupContext) run(table *godog.Table, leadingConfirms ...bool) error {
	inputs, confirms, selects := parseAnswerTable(table)
	prompter := NewMockPrompter(inputs, append(leadingConfirms, confirms...), selects)
	return cmd.RunSetupWithPrompter(prompter, s.configPath, s.output)
}

func (s *setupContext) iRunTheSetupCommandWithAnswers(table *godog.Table) error {
	s.err = s.run(table)
	if s.err != nil {
		return fmt.Errorf("setup command failed: %w", s.err)
	}
	return nil
}

func (s *setupContext) iAttemptToRunTheSetupCommandWithAnswers(table *godog.Table) error {
	s.err = s.run(table)
	return nil
}

func (s *setupContext) iRunTheSetupCommandWithConfirmation(confirmation string) error {
	confirm := strings.ToLower(confirmation) == "y"
	prompter := NewMockPrompter(nil, []bool{confirm}, nil)

	s.err = cmd.RunSetupWithPrompter(prompter, s.configPath, s.output)
	if !confirm {
		s.setupCancelled = true
	}
	return nil
}

func (s *setupContext) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func (s *setupContext) aConfigFileShouldExist() error {
	if _, err := os.Stat(s.configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist at %s", s.configPath)
	}
	return nil
}

func (s *setupContext) noConfigFileShouldExist() error {
	if _, err := os.Stat(s.configPath); err == nil {
		return fmt.Errorf("config file should not exist at %s", s.configPath)
	}
	return nil
}

func (s *setupContext) theConfigShouldHaveScratchDirectory(expected string) error {
	cfg, err := s.loadConfig()
	if err != nil {
		return err
	}
	if cfg.Paths.ScratchDirectory != expected {
		return fmt.Errorf("expected scratch_directory %q, got %q", expected, cfg.Paths.ScratchDirectory)
	}
	return nil
}

func (s *setupContext) theConfigShouldHaveFFmpegPath(expected string) error {
	cfg, err := s.loadConfig()
	if err != nil {
		return err
	}
	if cfg.FFmpeg.Path != expected {
		return fmt.Errorf("expected ffmpeg path %q, got %q", expected, cfg.FFmpeg.Path)
	}
	return nil
}

func (s *setupContext) theConfigShouldHaveStagingSlots(expected string) error {
	cfg, err := s.loadConfig()
	if err != nil {
		return err
	}
	if strconv.Itoa(cfg.Trim.StagingSlots) != expected {
		return fmt.Errorf("expected %s staging slots, got %d", expected, cfg.Trim.StagingSlots)
	}
	return nil
}

func (s *setupContext) theConfigShouldProbeWith(expected string) error {
	cfg, err := s.loadConfig()
	if err != nil {
		return err
	}
	if cfg.Trim.Probe != expected {
		return fmt.Errorf("expected probe %q, got %q", expected, cfg.Trim.Probe)
	}
	return nil
}

func (s *setupContext) theSetupShouldBeCancelled() error {
	if !s.setupCancelled {
		return fmt.Errorf("expected setup to be cancelled")
	}
	if !strings.Contains(s.output.String(), "Setup cancelled.") {
		return fmt.Errorf("expected cancellation message, got %q", s.output.String())
	}
	return nil
}

func (s *setupContext) theExistingConfigShouldBeUnchanged() error {
	content, err := os.ReadFile(s.configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if string(content) != s.originalContent {
		return fmt.Errorf("config content was changed")
	}
	return nil
}

func (s *setupContext) setupShouldFailWith(fragment string) error {
	if s.err == nil {
		return fmt.Errorf("expected setup to fail")
	}
	if !strings.Contains(s.err.Error(), fragment) {
		return fmt.Errorf("expected error containing %q, got: %v", fragment, s.err)
	}
	return nil
}
