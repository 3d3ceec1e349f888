//go:build opencv

package opencv

import (
	"context"
	"fmt"

	"video-trimmer/domain/video"

	"gocv.io/x/gocv"
)

// Prober implements video.DurationProber by reading container properties through OpenCV
type Prober struct{}

// NewProber creates a GoCV-backed duration prober
func NewProber() *Prober {
	return &Prober{}
}

// Available reports whether this build includes OpenCV support
func Available() bool {
	return true
}

// Duration returns frame count divided by frame rate
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer vc.Close()

	if !vc.IsOpened() {
		return 0, fmt.Errorf("failed to open %s", path)
	}

	fps := vc.Get(gocv.VideoCaptureFPS)
	frames := vc.Get(gocv.VideoCaptureFrameCount)
	return durationFromFrames(frames, fps)
}

// Ensure Prober implements video.DurationProber
var _ video.DurationProber = (*Prober)(nil)
