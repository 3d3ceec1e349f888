package cmd

import (
	"fmt"
	"os"
	"strconv"

	"video-trimmer/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
	Select(message string, options []string, defaultValue string) (string, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

func (p *SurveyPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Select{
		Message: message,
		Options: options,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command guides you through choosing a scratch directory, the ffmpeg
binary, how many trims may run at once, and logging options.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = DefaultConfigPath
	}
	return RunSetupWithPrompter(DefaultPrompter, path, cmd.OutOrStdout())
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string, out OutputWriter) error {
	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm("config.yaml already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Fprintln(out, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(out, "Welcome to video-trimmer setup!")
	fmt.Fprintln(out)

	cfg := config.Default()

	if err := promptPaths(prompter, cfg); err != nil {
		return err
	}
	if err := promptFFmpeg(prompter, cfg); err != nil {
		return err
	}
	if err := promptTrim(prompter, cfg); err != nil {
		return err
	}
	if err := promptLogging(prompter, cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Configuration saved to %s\n", configPath)
	return nil
}

func promptPaths(prompter Prompter, cfg *config.Config) error {
	scratch, err := prompter.Input("Where should staged and trimmed videos go?", config.DefaultScratchDir())
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	// leaving the default in place keeps the file portable across machines
	if scratch != config.DefaultScratchDir() {
		cfg.Paths.ScratchDirectory = scratch
	}
	return nil
}

func promptFFmpeg(prompter Prompter, cfg *config.Config) error {
	path, err := prompter.Input("Path to the ffmpeg executable?", cfg.FFmpeg.Path)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if path == "" {
		return fmt.Errorf("ffmpeg path is required")
	}
	cfg.FFmpeg.Path = path
	return nil
}

func promptTrim(prompter Prompter, cfg *config.Config) error {
	slots, err := prompter.Input("How many trims may run at once?", strconv.Itoa(cfg.Trim.StagingSlots))
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	n, err := strconv.Atoi(slots)
	if err != nil || n < 1 {
		return fmt.Errorf("staging slots must be a positive number, got %q", slots)
	}
	cfg.Trim.StagingSlots = n

	probe, err := prompter.Select("Check trim ranges against the source duration with:",
		[]string{config.ProbeNone, config.ProbeFFprobe, config.ProbeOpenCV}, cfg.Trim.Probe)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Trim.Probe = probe
	return nil
}

func promptLogging(prompter Prompter, cfg *config.Config) error {
	file, err := prompter.Input("Log file (leave empty for none)?", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Logging.File = file

	debug, err := prompter.Confirm("Enable debug logging?", false)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Logging.Verbose = debug
	return nil
}
