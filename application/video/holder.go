package video

import (
	"context"
	"sync"
)

// TempFileDeleter releases trimmed outputs
type TempFileDeleter interface {
	DeleteTempFile(ctx context.Context, path string)
}

// OutputHolder keeps the current generation of a trimmed output for one caller.
// Installing a new generation deletes the one it replaces, so at most one output
// from this holder survives past its replacement.
type OutputHolder struct {
	mu         sync.Mutex
	deleter    TempFileDeleter
	current    string
	generation uint64
}

// NewOutputHolder creates an empty holder
func NewOutputHolder(deleter TempFileDeleter) *OutputHolder {
	return &OutputHolder{deleter: deleter}
}

// Replace installs path as the current output and deletes the previous one.
// It returns the new generation number.
func (h *OutputHolder) Replace(ctx context.Context, path string) uint64 {
	h.mu.Lock()
	previous := h.current
	h.current = path
	h.generation++
	gen := h.generation
	h.mu.Unlock()

	if previous != "" && previous != path {
		h.deleter.DeleteTempFile(ctx, previous)
	}
	return gen
}

// Current returns the held path and its generation; the path is empty when nothing is held
func (h *OutputHolder) Current() (string, uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current, h.generation
}

// Take detaches the current output without deleting it; the caller now owns it
func (h *OutputHolder) Take() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	path := h.current
	h.current = ""
	return path
}

// Release deletes the current output, if any
func (h *OutputHolder) Release(ctx context.Context) {
	path := h.Take()
	if path != "" {
		h.deleter.DeleteTempFile(ctx, path)
	}
}
