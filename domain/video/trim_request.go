package video

import (
	"math"
	"strings"
)

// fileScheme is stripped from caller-supplied paths; the engine takes plain paths
const fileScheme = "file://"

// TrimRequest represents a request to cut [StartSeconds, EndSeconds) out of a source video
type TrimRequest struct {
	SourcePath   string
	StartSeconds float64
	EndSeconds   float64
}

// NewTrimRequest creates a validated TrimRequest
func NewTrimRequest(sourcePath string, startSeconds, endSeconds float64) (*TrimRequest, error) {
	req := &TrimRequest{
		SourcePath:   strings.TrimPrefix(sourcePath, fileScheme),
		StartSeconds: startSeconds,
		EndSeconds:   endSeconds,
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return req, nil
}

// Validate checks that the trim request is valid
func (r *TrimRequest) Validate() error {
	if r.SourcePath == "" {
		return ErrSourceRequired
	}

	return ValidateRange(r.StartSeconds, r.EndSeconds)
}

// Duration returns the length of the requested segment in seconds
func (r *TrimRequest) Duration() float64 {
	return r.EndSeconds - r.StartSeconds
}

// ValidateRange checks that start and end are finite, non-negative, and end is after start
func ValidateRange(start, end float64) error {
	if !isFinite(start) || !isFinite(end) {
		return &InvalidRangeError{Start: start, End: end, Reason: "start and end must be finite"}
	}
	if start < 0 || end < 0 {
		return &InvalidRangeError{Start: start, End: end, Reason: "start and end must not be negative"}
	}
	if start > maxSeconds || end > maxSeconds {
		return &InvalidRangeError{Start: start, End: end, Reason: "start and end are out of range"}
	}
	if end <= start {
		return &InvalidRangeError{Start: start, End: end, Reason: "end time must be after start time"}
	}
	if TimecodeFromSeconds(end - start).IsZero() {
		return &InvalidRangeError{Start: start, End: end, Reason: "segment is shorter than one millisecond"}
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
