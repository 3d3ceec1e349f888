package ffmpeg

import (
	"context"
	"fmt"
	"time"

	"video-trimmer/domain/video"
)

// DefaultLogLevel keeps ffmpeg quiet except for errors, so warnings are not mistaken for failures
const DefaultLogLevel = "error"

// Engine implements video.Engine using the ffmpeg binary
type Engine struct {
	ffmpegPath string
	logLevel   string
	timeout    time.Duration
	runner     CommandRunner
}

// EngineOption is a functional option for configuring Engine
type EngineOption func(*Engine)

// WithFFmpegPath sets a custom ffmpeg executable path
func WithFFmpegPath(path string) EngineOption {
	return func(e *Engine) {
		if path != "" {
			e.ffmpegPath = path
		}
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner CommandRunner) EngineOption {
	return func(e *Engine) {
		e.runner = runner
	}
}

// WithLogLevel sets the ffmpeg -loglevel value
func WithLogLevel(level string) EngineOption {
	return func(e *Engine) {
		if level != "" {
			e.logLevel = level
		}
	}
}

// WithTimeout bounds a single execution; zero means no limit
func WithTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.timeout = d
	}
}

// NewEngine creates a new FFmpeg-based engine
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		ffmpegPath: "ffmpeg",
		logLevel:   DefaultLogLevel,
		runner:     &ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Execute implements video.Engine. It makes exactly one attempt.
func (e *Engine) Execute(ctx context.Context, cmd *video.TrimCommand) (video.Outcome, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	args := append([]string{"-hide_banner", "-loglevel", e.logLevel}, Args(cmd)...)

	res, err := e.runner.Run(ctx, e.ffmpegPath, args...)
	if err != nil {
		return video.Outcome{ReturnCode: -1, Output: res.Output}, fmt.Errorf("ffmpeg could not be run: %w", err)
	}

	return video.Outcome{ReturnCode: res.ExitCode, Output: res.Output}, nil
}

// VerifyInstalled checks that ffmpeg is available
func (e *Engine) VerifyInstalled(ctx context.Context) error {
	res, err := e.runner.Run(ctx, e.ffmpegPath, "-version")
	if err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("ffmpeg -version exited with code %d", res.ExitCode)
	}
	return nil
}

// Ensure Engine implements video.Engine
var _ video.Engine = (*Engine)(nil)
