package cmd

import (
	"context"
	"fmt"

	appvideo "video-trimmer/application/video"
	"video-trimmer/domain/video"
	"video-trimmer/infrastructure/filesystem"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <path>...",
	Short: "Delete trimmed files",
	Long: `Delete files produced by trim. Paths that no longer exist are skipped,
so running delete twice on the same file is harmless.`,
	Args: cobra.MinimumNArgs(1),
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

		return RunDeleteWithDependencies(cmd.Context(), filesystem.NewLocal(), logger, cfg.ScratchDir(), args, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

// RunDeleteWithDependencies deletes each path, reporting failures without stopping
func RunDeleteWithDependencies(ctx context.Context, fs video.FileSystem, logger appvideo.Logger, scratchDir string, paths []string, out OutputWriter) error {
	scratch := appvideo.NewScratchDir(scratchDir, fs, logger)

	failed := 0
	for _, path := range paths {
		if err := scratch.Delete(ctx, path); err != nil {
			failed++
			continue
		}
		fmt.Fprintf(out, "Deleted %s\n", path)
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d files", video.ErrDeleteFailed, failed, len(paths))
	}
	return nil
}
