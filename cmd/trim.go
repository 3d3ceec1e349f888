package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	appvideo "video-trimmer/application/video"
	"video-trimmer/domain/video"
	"video-trimmer/infrastructure/config"
	"video-trimmer/infrastructure/ffmpeg"
	"video-trimmer/infrastructure/filesystem"
	"video-trimmer/infrastructure/opencv"

	"github.com/spf13/cobra"
)

var (
	trimSourcePath  string
	trimStartTime   string
	trimEndTime     string
	trimOutputPath  string
	trimScratchDir  string
	trimInteractive bool
)

var trimCmd = &cobra.Command{
	Use:   "trim",
	Short: "Trim a video to a start and end time",
	Long: `Copy the range [start, end) of a video into a new file without re-encoding.

Times may be given in seconds (65.5) or as HH:MM:SS[.mmm] (00:01:05.500).
When --start or --end is omitted you are prompted for it. With --interactive
you can preview a trim, adjust the range, and trim again; each new trim
replaces the previous preview.

Without --output the trimmed file stays in the scratch directory and its path
is printed; remove it with "video-trimmer delete" when you are done.

Example:
  video-trimmer trim --source recording.mp4 --start "00:05:30" --end "01:45:00" --output service.mp4`,
	RunE: runTrim,
}

func init() {
	rootCmd.AddCommand(trimCmd)
	trimCmd.Flags().StringVar(&trimSourcePath, "source", "", "Path to source video file (required)")
	trimCmd.Flags().StringVar(&trimStartTime, "start", "", "Start time in seconds or HH:MM:SS[.mmm]")
	trimCmd.Flags().StringVar(&trimEndTime, "end", "", "End time in seconds or HH:MM:SS[.mmm]")
	trimCmd.Flags().StringVarP(&trimOutputPath, "output", "o", "", "Copy the result here and remove the scratch file")
	trimCmd.Flags().StringVar(&trimScratchDir, "scratch-dir", "", "Override the configured scratch directory")
	trimCmd.Flags().BoolVarP(&trimInteractive, "interactive", "i", false, "Preview and adjust the range before keeping a result")
	trimCmd.MarkFlagRequired("source")
}

func runTrim(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	prober, err := newProber(cfg.Trim.Probe)
	if err != nil {
		return err
	}

	scratchDir := trimScratchDir
	if scratchDir == "" {
		scratchDir = cfg.ScratchDir()
	}

	engineOpts := []ffmpeg.EngineOption{
		ffmpeg.WithFFmpegPath(cfg.FFmpeg.Path),
		ffmpeg.WithLogLevel(cfg.FFmpeg.LogLevel),
		ffmpeg.WithTimeout(cfg.FFmpeg.Timeout),
	}
	if verbose || cfg.Logging.Verbose {
		// stream ffmpeg's own output while it runs
		engineOpts = append(engineOpts, ffmpeg.WithCommandRunner(&ffmpeg.ExecCommandRunner{Tee: os.Stderr}))
	}
	engine := ffmpeg.NewEngine(engineOpts...)

	return RunTrimWithDependencies(
		cmd.Context(),
		TrimDependencies{
			Engine:   engine,
			FS:       filesystem.NewLocal(),
			Prober:   prober,
			Prompter: DefaultPrompter,
			Logger:   logger,
		},
		TrimOptions{
			SourcePath:   trimSourcePath,
			StartTime:    trimStartTime,
			EndTime:      trimEndTime,
			OutputPath:   trimOutputPath,
			ScratchDir:   scratchDir,
			StagingSlots: cfg.Trim.StagingSlots,
			Interactive:  trimInteractive,
			SkipVerify:   cfg.FFmpeg.SkipVerify,
		},
		os.Stdout,
	)
}

// newProber returns the duration prober named in configuration, or nil for none
func newProber(kind string) (video.DurationProber, error) {
	switch kind {
	case config.ProbeFFprobe:
		return ffmpeg.NewProber(), nil
	case config.ProbeOpenCV:
		if !opencv.Available() {
			return nil, opencv.ErrUnavailable
		}
		return opencv.NewProber(), nil
	default:
		return nil, nil
	}
}

// OutputWriter allows capturing output in tests
type OutputWriter interface {
	Write(p []byte) (n int, err error)
}

// TrimDependencies are the collaborators RunTrimWithDependencies needs
type TrimDependencies struct {
	Engine   video.Engine
	FS       video.FileSystem
	Prober   video.DurationProber // optional
	Prompter Prompter             // used when a time is missing or in interactive mode
	Logger   appvideo.Logger      // optional
}

// TrimOptions are the user's choices for one trim command
type TrimOptions struct {
	SourcePath   string
	StartTime    string
	EndTime      string
	OutputPath   string
	ScratchDir   string
	StagingSlots int
	Interactive  bool
	SkipVerify   bool
}

// RunTrimWithDependencies runs the trim command with injected dependencies (for testing)
func RunTrimWithDependencies(ctx context.Context, deps TrimDependencies, opts TrimOptions, output OutputWriter) error {
	// Verify ffmpeg is available if the engine supports it
	if verifiable, ok := deps.Engine.(interface{ VerifyInstalled(context.Context) error }); ok && !opts.SkipVerify {
		verifyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := verifiable.VerifyInstalled(verifyCtx); err != nil {
			return fmt.Errorf("ffmpeg verification failed: %w", err)
		}
	}

	serviceOpts := []appvideo.Option{
		appvideo.WithScratchDir(opts.ScratchDir),
		appvideo.WithStagingSlots(opts.StagingSlots),
		appvideo.WithLogger(deps.Logger),
	}
	if deps.Prober != nil {
		serviceOpts = append(serviceOpts, appvideo.WithProber(deps.Prober))
	}
	service := appvideo.NewTrimService(deps.Engine, deps.FS, serviceOpts...)

	selector := &promptRangeSelector{prompter: deps.Prompter, start: opts.StartTime, end: opts.EndTime}

	var result string
	var err error
	if opts.Interactive {
		result, err = trimInteractively(ctx, service, selector, opts.SourcePath, output)
	} else {
		result, err = trimOnce(ctx, service, selector, opts.SourcePath, output)
	}
	if err != nil {
		return err
	}

	if opts.OutputPath == "" {
		fmt.Fprintf(output, "Successfully created: %s\n", result)
		return nil
	}

	if err := deps.FS.Copy(ctx, result, opts.OutputPath); err != nil {
		return &video.StorageError{Op: "save", Path: opts.OutputPath, Err: err}
	}
	service.DeleteTempFile(ctx, result)
	fmt.Fprintf(output, "Successfully created: %s\n", opts.OutputPath)
	return nil
}

func trimOnce(ctx context.Context, service *appvideo.TrimService, selector RangeSelector, source string, output OutputWriter) (string, error) {
	start, end, err := selector.SelectRange()
	if err != nil {
		return "", err
	}

	fmt.Fprintf(output, "Trimming video from %s to %s...\n", video.FormatTimecode(start), video.FormatTimecode(end))
	return service.TrimVideo(ctx, source, start, end)
}

// trimInteractively repeats trims until the user keeps one. Each new preview replaces
// the previous one; abandoning the loop deletes the last preview.
func trimInteractively(ctx context.Context, service *appvideo.TrimService, selector *promptRangeSelector, source string, output OutputWriter) (string, error) {
	holder := appvideo.NewOutputHolder(service)
	defer holder.Release(context.WithoutCancel(ctx))

	for {
		path, err := trimOnce(ctx, service, selector, source, output)
		switch {
		case err == nil:
			holder.Replace(ctx, path)
			fmt.Fprintf(output, "Preview ready: %s\n", path)
		case errors.Is(err, errInvalidTime), errors.Is(err, video.ErrInvalidRange), errors.Is(err, video.ErrEngineFailed):
			fmt.Fprintf(output, "Trim failed: %v\n", err)
		default:
			return "", err
		}

		again, err := selector.prompter.Confirm("Adjust the range and trim again?", false)
		if err != nil {
			return "", fmt.Errorf("prompt cancelled")
		}
		if !again {
			break
		}
		// keep the last values as defaults, but ask for both again
		selector.reprompt = true
	}

	if kept := holder.Take(); kept != "" {
		return kept, nil
	}
	return "", fmt.Errorf("no trim succeeded")
}

var errInvalidTime = errors.New("bad time value")

// RangeSelector supplies the [start, end) range to trim
type RangeSelector interface {
	SelectRange() (start, end float64, err error)
}

// promptRangeSelector uses values given on the command line and prompts for missing ones
type promptRangeSelector struct {
	prompter Prompter
	start    string
	end      string
	reprompt bool
}

func (s *promptRangeSelector) SelectRange() (float64, float64, error) {
	start, err := s.resolve(&s.start, "start", "Start time (seconds or HH:MM:SS.mmm)?")
	if err != nil {
		return 0, 0, err
	}
	end, err := s.resolve(&s.end, "end", "End time (seconds or HH:MM:SS.mmm)?")
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func (s *promptRangeSelector) resolve(value *string, flag, message string) (float64, error) {
	if *value == "" || s.reprompt {
		if s.prompter == nil {
			return 0, fmt.Errorf("--%s is required", flag)
		}
		answer, err := s.prompter.Input(message, *value)
		if err != nil {
			return 0, fmt.Errorf("prompt cancelled")
		}
		*value = answer
	}

	seconds, err := video.ParseSeconds(*value)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errInvalidTime, err)
	}
	return seconds, nil
}
