package video

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRange is returned when a trim range is empty, reversed, or not finite
	ErrInvalidRange = errors.New("invalid trim range")

	// ErrSourceRequired is returned when a trim request has no source path
	ErrSourceRequired = errors.New("source path is required")

	// ErrStorage is returned when staging, directory creation, or copying fails
	ErrStorage = errors.New("storage operation failed")

	// ErrEngineFailed is returned when the codec engine reports a non-success return code
	ErrEngineFailed = errors.New("codec engine failed")

	// ErrDeleteFailed is reported (never returned to trim callers) when a temp file cannot be removed
	ErrDeleteFailed = errors.New("failed to delete temp file")
)

// InvalidRangeError describes why a start/end pair was rejected
type InvalidRangeError struct {
	Start  float64
	End    float64
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid trim range [%v, %v]: %s", e.Start, e.End, e.Reason)
}

// Unwrap allows errors.Is(err, ErrInvalidRange)
func (e *InvalidRangeError) Unwrap() error {
	return ErrInvalidRange
}

// StorageError records the filesystem operation that failed and the path it failed on
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap matches both ErrStorage and the underlying cause
func (e *StorageError) Unwrap() []error {
	return []error{ErrStorage, e.Err}
}

// EngineError carries the return code and captured output of a failed engine run.
// Diagnostic is kept for observability and is never parsed.
type EngineError struct {
	ReturnCode int
	Diagnostic string
	Err        error
}

func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("codec engine failed: %v", e.Err)
	}
	return fmt.Sprintf("codec engine failed with return code %d", e.ReturnCode)
}

// Unwrap matches ErrEngineFailed and, when present, the cause that prevented the engine from running
func (e *EngineError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrEngineFailed, e.Err}
	}
	return []error{ErrEngineFailed}
}
