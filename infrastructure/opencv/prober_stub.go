//go:build !opencv

package opencv

import (
	"context"

	"video-trimmer/domain/video"
)

// Prober is a stub when OpenCV is not available
type Prober struct{}

// NewProber creates a stub prober (requires building with -tags=opencv)
func NewProber() *Prober {
	return &Prober{}
}

// Available reports whether this build includes OpenCV support
func Available() bool {
	return false
}

// Duration returns an error indicating OpenCV is not available
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	return 0, ErrUnavailable
}

// Ensure Prober implements video.DurationProber
var _ video.DurationProber = (*Prober)(nil)
