package cmd

import (
	"context"
	"fmt"

	appvideo "video-trimmer/application/video"
	"video-trimmer/domain/video"
	"video-trimmer/infrastructure/filesystem"

	"github.com/spf13/cobra"
)

var cleanScratchDir string

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove staged copies and trimmed files from the scratch directory",
	Long: `Remove every temp.mp4 staging copy and trimmed-*.mp4 output from the scratch
directory. Other files in the directory are left alone.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Close()

		dir := cleanScratchDir
		if dir == "" {
			dir = cfg.ScratchDir()
		}
		return RunCleanWithDependencies(cmd.Context(), filesystem.NewLocal(), logger, dir, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().StringVar(&cleanScratchDir, "scratch-dir", "", "Override the configured scratch directory")
}

// RunCleanWithDependencies runs the clean command with injected dependencies (for testing)
func RunCleanWithDependencies(ctx context.Context, fs video.FileSystem, logger appvideo.Logger, scratchDir string, out OutputWriter) error {
	removed, err := appvideo.NewScratchDir(scratchDir, fs, logger).Clean(ctx)
	fmt.Fprintf(out, "Removed %d files from %s\n", removed, scratchDir)
	return err
}
