package video

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"video-trimmer/domain/video"
)

const (
	stagedPrefix = "temp"
	outputPrefix = "trimmed-"
	mediaExt     = ".mp4"
)

// ScratchDir owns the working directory for staged sources and trimmed outputs
type ScratchDir struct {
	root   string
	fs     video.FileSystem
	logger Logger
	now    func() time.Time

	mu        sync.Mutex
	lastStamp int64
}

// NewScratchDir creates a manager for root. Nothing is created on disk until EnsureDir.
func NewScratchDir(root string, fs video.FileSystem, logger Logger) *ScratchDir {
	if logger == nil {
		logger = nopLogger{}
	}
	return &ScratchDir{
		root:   root,
		fs:     fs,
		logger: logger,
		now:    time.Now,
	}
}

// Root returns the scratch directory path
func (d *ScratchDir) Root() string {
	return d.root
}

// EnsureDir creates the scratch directory and its parents if absent
func (d *ScratchDir) EnsureDir(ctx context.Context) error {
	if err := d.fs.MkdirAll(ctx, d.root); err != nil {
		return &video.StorageError{Op: "mkdir", Path: d.root, Err: err}
	}
	return nil
}

// SlotPath returns the fixed staging file for slot i of a pool of size n.
// A single-slot pool uses temp.mp4; larger pools use temp-<i>.mp4.
func (d *ScratchDir) SlotPath(i, n int) string {
	if n <= 1 {
		return filepath.Join(d.root, stagedPrefix+mediaExt)
	}
	return filepath.Join(d.root, fmt.Sprintf("%s-%d%s", stagedPrefix, i, mediaExt))
}

// StageSource replaces whatever occupies slotPath with a copy of sourcePath
func (d *ScratchDir) StageSource(ctx context.Context, sourcePath, slotPath string) (string, error) {
	exists, err := d.fs.Exists(ctx, sourcePath)
	if err != nil {
		return "", &video.StorageError{Op: "stat", Path: sourcePath, Err: err}
	}
	if !exists {
		return "", &video.StorageError{Op: "stage", Path: sourcePath, Err: fs.ErrNotExist}
	}

	if err := d.fs.Remove(ctx, slotPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", &video.StorageError{Op: "clear staging slot", Path: slotPath, Err: err}
	}

	if err := d.fs.Copy(ctx, sourcePath, slotPath); err != nil {
		return "", &video.StorageError{Op: "copy", Path: sourcePath, Err: err}
	}

	return slotPath, nil
}

// AllocateOutputPath returns an unused trimmed-<millis>.mp4 path. The stamp is strictly
// increasing for this ScratchDir and skips names that already exist on disk.
// The file itself is not created.
func (d *ScratchDir) AllocateOutputPath(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	stamp := d.now().UnixMilli()
	if stamp <= d.lastStamp {
		stamp = d.lastStamp + 1
	}

	for {
		path := filepath.Join(d.root, fmt.Sprintf("%s%d%s", outputPrefix, stamp, mediaExt))
		exists, err := d.fs.Exists(ctx, path)
		if err != nil {
			return "", &video.StorageError{Op: "stat", Path: path, Err: err}
		}
		if !exists {
			d.lastStamp = stamp
			return path, nil
		}
		stamp++
	}
}

// Delete removes path if present. A missing file is not an error; any other failure is
// logged and returned wrapped in ErrDeleteFailed for callers that want to report it.
func (d *ScratchDir) Delete(ctx context.Context, path string) error {
	err := d.fs.Remove(ctx, path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	d.logger.Warnf("error deleting temp file %s: %v", path, err)
	return fmt.Errorf("%w %s: %v", video.ErrDeleteFailed, path, err)
}

// Clean deletes every staged copy and trimmed output in the scratch directory and
// returns how many files were removed. A missing scratch directory is treated as empty.
func (d *ScratchDir) Clean(ctx context.Context) (int, error) {
	names, err := d.fs.List(ctx, d.root)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, &video.StorageError{Op: "list", Path: d.root, Err: err}
	}

	removed := 0
	var failed []error
	for _, name := range names {
		if !IsArtifact(name) {
			continue
		}
		if err := d.Delete(ctx, filepath.Join(d.root, name)); err != nil {
			failed = append(failed, err)
			continue
		}
		removed++
	}

	return removed, errors.Join(failed...)
}

// IsArtifact reports whether a file name is one the pipeline produces
func IsArtifact(name string) bool {
	if !strings.HasSuffix(name, mediaExt) {
		return false
	}
	stem := strings.TrimSuffix(name, mediaExt)
	return stem == stagedPrefix ||
		strings.HasPrefix(stem, stagedPrefix+"-") ||
		strings.HasPrefix(stem, outputPrefix)
}
