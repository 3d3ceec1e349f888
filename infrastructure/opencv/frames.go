package opencv

import (
	"errors"
	"fmt"
)

// ErrUnavailable is returned when the binary was built without OpenCV support
var ErrUnavailable = errors.New("opencv prober requires a -tags=opencv build with OpenCV installed")

// durationFromFrames converts container frame count and frame rate into seconds
func durationFromFrames(frames, fps float64) (float64, error) {
	if fps <= 0 {
		return 0, fmt.Errorf("invalid frame rate %v", fps)
	}
	if frames <= 0 {
		return 0, fmt.Errorf("invalid frame count %v", frames)
	}
	return frames / fps, nil
}
