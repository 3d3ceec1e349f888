package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	ffmpeg_go "github.com/u2takey/ffmpeg-go"

	"video-trimmer/domain/video"
)

// ProbeFunc returns ffprobe's JSON description of a media file
type ProbeFunc func(path string) (string, error)

// Prober implements video.DurationProber using ffprobe
type Prober struct {
	probe ProbeFunc
}

// ProberOption is a functional option for configuring Prober
type ProberOption func(*Prober)

// WithProbeFunc replaces the ffprobe call (for testing)
func WithProbeFunc(fn ProbeFunc) ProberOption {
	return func(p *Prober) {
		p.probe = fn
	}
}

// NewProber creates a prober that shells out to ffprobe on PATH
func NewProber(opts ...ProberOption) *Prober {
	p := &Prober{
		probe: func(path string) (string, error) {
			return ffmpeg_go.Probe(path)
		},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Duration returns the container duration in seconds
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	raw, err := p.probe(path)
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed for %s: %w", path, err)
	}

	var out probeOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	if out.Format.Duration == "" {
		return 0, fmt.Errorf("ffprobe reported no duration for %s", path)
	}

	secs, err := strconv.ParseFloat(out.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", out.Format.Duration, err)
	}
	return secs, nil
}

// Ensure Prober implements video.DurationProber
var _ video.DurationProber = (*Prober)(nil)
