package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"video-trimmer/infrastructure/config"

	"github.com/spf13/cobra"
)

// DefaultOutput is the default output writer for config commands
var DefaultOutput OutputWriter = os.Stdout

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change configuration values",
	Long: `Read or change single values in the configuration file.

Examples:
  video-trimmer config list
  video-trimmer config get ffmpeg.path
  video-trimmer config set trim.staging_slots 2`,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}

// --- LIST command ---

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every configuration key and its value",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		return RunConfigListWithDependencies(cfg, cfgFile, DefaultOutput)
	},
}

// RunConfigListWithDependencies runs the list command with injected dependencies
func RunConfigListWithDependencies(cfg *config.Config, configPath string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "KEY\tVALUE")
	for _, key := range mgr.Keys() {
		value, err := mgr.Get(key)
		if err != nil {
			return err
		}
		if key == "paths.scratch_directory" && value == "" {
			value = cfg.ScratchDir() + " (default)"
		}
		fmt.Fprintf(w, "%s\t%s\n", key, value)
	}

	return w.Flush()
}

// --- GET command ---

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		return RunConfigGetWithDependencies(cfg, cfgFile, args[0], DefaultOutput)
	},
}

// RunConfigGetWithDependencies runs the get command with injected dependencies
func RunConfigGetWithDependencies(cfg *config.Config, configPath, key string, out OutputWriter) error {
	value, err := config.NewConfigManager(cfg, configPath).Get(key)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, value)
	return nil
}

// --- SET command ---

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one configuration value and save the file",
	Long: `Change one configuration value. The whole configuration is validated
before it is written, so an invalid value leaves the file untouched.

Examples:
  video-trimmer config set ffmpeg.timeout 10m
  video-trimmer config set trim.probe ffprobe`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		return RunConfigSetWithDependencies(cfg, cfgFile, args[0], args[1], DefaultOutput)
	},
}

// RunConfigSetWithDependencies runs the set command with injected dependencies
func RunConfigSetWithDependencies(cfg *config.Config, configPath, key, value string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)
	if err := mgr.Set(key, value); err != nil {
		return err
	}

	saved, err := mgr.Get(key)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Set %s = %s\n", key, saved)
	return nil
}
