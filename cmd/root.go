package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"video-trimmer/infrastructure/config"
	"video-trimmer/infrastructure/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// DefaultConfigPath is used when --config is not given
const DefaultConfigPath = "config/config.yaml"

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
	cfgErr  error
)

var rootCmd = &cobra.Command{
	Use:   "video-trimmer",
	Short: "Cut segments out of video files without re-encoding",
	Long: `video-trimmer copies a time range out of a video file into a new file
using ffmpeg stream copy. Sources are never modified: each trim works on a
staged copy in a scratch directory and writes a uniquely named output there.

Example:
  video-trimmer trim --source recording.mp4 --start 00:05:30 --end 01:15:00`,
	SilenceUsage: true,
}

// Execute runs the root command, cancelling in-flight work on SIGINT/SIGTERM
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./"+DefaultConfigPath+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func initConfig() {
	// .env is optional
	_ = godotenv.Load()

	if cfgFile == "" {
		cfgFile = DefaultConfigPath
	}
	cfg, cfgErr = LoadConfig(cfgFile, os.LookupEnv)
}

// LoadConfig reads path, falling back to defaults when the file does not exist,
// then applies environment overrides
func LoadConfig(path string, lookup config.LookupFunc) (*config.Config, error) {
	c, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		c = config.Default()
	} else if err != nil {
		return nil, err
	}

	if err := c.ApplyEnv(lookup); err != nil {
		return nil, err
	}
	return c, nil
}

// GetConfig returns the loaded configuration, or the error that prevented loading it
func GetConfig() (*config.Config, error) {
	if cfgErr != nil {
		return nil, cfgErr
	}
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	return cfg, nil
}

// newLogger builds the process logger from configuration and the --verbose flag
func newLogger(c *config.Config) (*logging.Logger, error) {
	return logging.New(logging.Options{
		Color:   logging.ColorMode(c.Logging.Color),
		File:    c.Logging.File,
		Verbose: c.Logging.Verbose || verbose,
	})
}
