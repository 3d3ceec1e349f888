package video

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"video-trimmer/domain/video"
	"video-trimmer/infrastructure/config"
)

// TrimResult contains the result of a trim operation
type TrimResult struct {
	ID         string
	OutputPath string
	StagedPath string
	Command    *video.TrimCommand
}

// TrimService coordinates video trimming: staging, command construction, execution, and validation
type TrimService struct {
	engine  video.Engine
	scratch *ScratchDir
	slots   *slotPool
	prober  video.DurationProber
	logger  Logger
	newID   func() string
}

type serviceOptions struct {
	scratchDir   string
	stagingSlots int
	prober       video.DurationProber
	logger       Logger
	now          func() time.Time
	newID        func() string
}

// Option is a functional option for configuring TrimService
type Option func(*serviceOptions)

// WithScratchDir writes staged and trimmed files under dir instead of the default cache path
func WithScratchDir(dir string) Option {
	return func(o *serviceOptions) {
		if dir != "" {
			o.scratchDir = dir
		}
	}
}

// WithStagingSlots allows up to n trims to run at once, each with its own staging file
func WithStagingSlots(n int) Option {
	return func(o *serviceOptions) {
		o.stagingSlots = n
	}
}

// WithProber checks requested ranges against the source duration before staging
func WithProber(p video.DurationProber) Option {
	return func(o *serviceOptions) {
		o.prober = p
	}
}

// WithLogger sets the logger
func WithLogger(l Logger) Option {
	return func(o *serviceOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock sets the time source used for output naming (for testing)
func WithClock(now func() time.Time) Option {
	return func(o *serviceOptions) {
		o.now = now
	}
}

// WithIDGenerator sets the trim ID source (for testing)
func WithIDGenerator(fn func() string) Option {
	return func(o *serviceOptions) {
		o.newID = fn
	}
}

// NewTrimService creates a new TrimService. Files go under the user cache directory
// unless WithScratchDir overrides it.
func NewTrimService(engine video.Engine, fs video.FileSystem, opts ...Option) *TrimService {
	o := serviceOptions{
		scratchDir:   config.DefaultScratchDir(),
		stagingSlots: 1,
		logger:       nopLogger{},
		now:          time.Now,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}

	scratch := NewScratchDir(o.scratchDir, fs, o.logger)
	scratch.now = o.now

	return &TrimService{
		engine:  engine,
		scratch: scratch,
		slots:   newSlotPool(o.stagingSlots),
		prober:  o.prober,
		logger:  o.logger,
		newID:   o.newID,
	}
}

// ScratchDir returns the directory that holds staged and trimmed files
func (s *TrimService) ScratchDir() string {
	return s.scratch.Root()
}

// TrimVideo trims [start, end) seconds out of sourcePath and returns the new file's path
func (s *TrimService) TrimVideo(ctx context.Context, sourcePath string, start, end float64) (string, error) {
	req, err := video.NewTrimRequest(sourcePath, start, end)
	if err != nil {
		return "", err
	}

	result, err := s.Trim(ctx, req)
	if err != nil {
		return "", err
	}
	return result.OutputPath, nil
}

// Trim runs one trim request. The request, and the range after any clamp to the
// source duration, are validated before staging. On failure no
// output path is returned and any partial output is removed; the staged copy is left
// for the next trim in the same slot to replace. A successful output belongs to the
// caller, who releases it with DeleteTempFile.
func (s *TrimService) Trim(ctx context.Context, req *video.TrimRequest) (*TrimResult, error) {
	if req == nil {
		return nil, video.ErrSourceRequired
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	slot, err := s.slots.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.slots.release(slot)

	id := s.newID()
	s.logger.Infof("[TRIM %s] %s from %s to %s", id, req.SourcePath,
		video.FormatTimecode(req.StartSeconds), video.FormatTimecode(req.EndSeconds))

	end, err := s.checkDuration(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if err := video.ValidateRange(req.StartSeconds, end); err != nil {
		return nil, err
	}

	if err := s.scratch.EnsureDir(ctx); err != nil {
		s.logger.Errorf("[TRIM %s] %v", id, err)
		return nil, err
	}

	staged, err := s.scratch.StageSource(ctx, req.SourcePath, s.scratch.SlotPath(slot, s.slots.size))
	if err != nil {
		s.logger.Errorf("[TRIM %s] staging failed: %v", id, err)
		return nil, err
	}
	s.logger.Debugf("[TRIM %s] staged %s", id, staged)

	outputPath, err := s.scratch.AllocateOutputPath(ctx)
	if err != nil {
		s.logger.Errorf("[TRIM %s] %v", id, err)
		return nil, err
	}

	cmd, err := video.BuildTrimCommand(staged, req.StartSeconds, end, outputPath)
	if err != nil {
		return nil, err
	}

	outcome, err := s.engine.Execute(ctx, cmd)
	if err != nil || !outcome.Success() {
		engineErr := &video.EngineError{ReturnCode: outcome.ReturnCode, Diagnostic: outcome.Output, Err: err}
		s.logger.Warnf("[TRIM %s] error trimming video (code %d): %v\n%s", id, outcome.ReturnCode, engineErr, outcome.Output)
		_ = s.scratch.Delete(context.WithoutCancel(ctx), outputPath)
		return nil, engineErr
	}

	exists, err := s.scratch.fs.Exists(ctx, outputPath)
	if err != nil || !exists {
		if err == nil {
			err = errors.New("engine reported success but produced no output file")
		}
		engineErr := &video.EngineError{ReturnCode: outcome.ReturnCode, Diagnostic: outcome.Output, Err: err}
		s.logger.Warnf("[TRIM %s] %v", id, engineErr)
		_ = s.scratch.Delete(context.WithoutCancel(ctx), outputPath)
		return nil, engineErr
	}

	s.logger.Successf("[TRIM %s] video trimmed successfully: %s", id, outputPath)
	return &TrimResult{
		ID:         id,
		OutputPath: outputPath,
		StagedPath: staged,
		Command:    cmd,
	}, nil
}

// checkDuration rejects a start beyond the end of the source and clamps an end past it.
// Without a prober, or when probing fails, the requested end is used as is.
func (s *TrimService) checkDuration(ctx context.Context, id string, req *video.TrimRequest) (float64, error) {
	if s.prober == nil {
		return req.EndSeconds, nil
	}

	duration, err := s.prober.Duration(ctx, req.SourcePath)
	if err != nil {
		s.logger.Warnf("[TRIM %s] could not probe source duration, trimming as requested: %v", id, err)
		return req.EndSeconds, nil
	}

	if req.StartSeconds >= duration {
		return 0, &video.InvalidRangeError{
			Start:  req.StartSeconds,
			End:    req.EndSeconds,
			Reason: "start is at or beyond the source duration " + video.FormatTimecode(duration),
		}
	}
	if req.EndSeconds > duration {
		s.logger.Infof("[TRIM %s] end %s is past the source duration, clamping to %s", id,
			video.FormatTimecode(req.EndSeconds), video.FormatTimecode(duration))
		return duration, nil
	}
	return req.EndSeconds, nil
}

// DeleteTempFile removes a file previously returned by Trim. A missing file is not an
// error and other failures are logged, never returned.
func (s *TrimService) DeleteTempFile(ctx context.Context, path string) {
	_ = s.scratch.Delete(ctx, path)
}

// Clean removes every staged copy and trimmed output from the scratch directory
func (s *TrimService) Clean(ctx context.Context) (int, error) {
	return s.scratch.Clean(ctx)
}
