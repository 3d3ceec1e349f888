package video

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"video-trimmer/domain/video"
	"video-trimmer/infrastructure/filesystem"
)

// fakeEngine stands in for ffmpeg: on success it copies the input to the output
type fakeEngine struct {
	mu         sync.Mutex
	calls      []*video.TrimCommand
	returnCode int
	output     string
	err        error
	skipWrite  bool
	partial    bool // write a partial output before failing
	onExecute  func(cmd *video.TrimCommand)
}

func (e *fakeEngine) Execute(ctx context.Context, cmd *video.TrimCommand) (video.Outcome, error) {
	e.mu.Lock()
	e.calls = append(e.calls, cmd)
	e.mu.Unlock()

	if e.onExecute != nil {
		e.onExecute(cmd)
	}
	if e.err != nil {
		return video.Outcome{ReturnCode: -1}, e.err
	}
	if e.returnCode != 0 {
		if e.partial {
			_ = os.WriteFile(cmd.OutputPath, []byte("partial"), 0644)
		}
		return video.Outcome{ReturnCode: e.returnCode, Output: e.output}, nil
	}
	if !e.skipWrite {
		data, err := os.ReadFile(cmd.InputPath)
		if err != nil {
			return video.Outcome{ReturnCode: 1, Output: err.Error()}, nil
		}
		if err := os.WriteFile(cmd.OutputPath, data, 0644); err != nil {
			return video.Outcome{ReturnCode: 1, Output: err.Error()}, nil
		}
	}
	return video.Outcome{ReturnCode: 0}, nil
}

func (e *fakeEngine) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

func (e *fakeEngine) lastCall() *video.TrimCommand {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.calls) == 0 {
		return nil
	}
	return e.calls[len(e.calls)-1]
}

// countingFS wraps the local filesystem and counts every call
type countingFS struct {
	inner     video.FileSystem
	calls     atomic.Int64
	removeErr error
}

func newCountingFS() *countingFS {
	return &countingFS{inner: filesystem.NewLocal()}
}

func (c *countingFS) Exists(ctx context.Context, path string) (bool, error) {
	c.calls.Add(1)
	return c.inner.Exists(ctx, path)
}

func (c *countingFS) Copy(ctx context.Context, src, dst string) error {
	c.calls.Add(1)
	return c.inner.Copy(ctx, src, dst)
}

func (c *countingFS) MkdirAll(ctx context.Context, path string) error {
	c.calls.Add(1)
	return c.inner.MkdirAll(ctx, path)
}

func (c *countingFS) Remove(ctx context.Context, path string) error {
	c.calls.Add(1)
	if c.removeErr != nil {
		if _, err := os.Stat(path); err == nil {
			return c.removeErr
		}
	}
	return c.inner.Remove(ctx, path)
}

func (c *countingFS) List(ctx context.Context, dir string) ([]string, error) {
	c.calls.Add(1)
	return c.inner.List(ctx, dir)
}

// recordingLogger keeps formatted lines per level
type recordingLogger struct {
	mu    sync.Mutex
	lines map[string][]string
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{lines: make(map[string][]string)}
}

func (l *recordingLogger) add(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines[level] = append(l.lines[level], fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Debugf(format string, args ...interface{}) { l.add("DEBUG", format, args...) }
func (l *recordingLogger) Infof(format string, args ...interface{})  { l.add("INFO", format, args...) }
func (l *recordingLogger) Successf(format string, args ...interface{}) {
	l.add("SUCCESS", format, args...)
}
func (l *recordingLogger) Warnf(format string, args ...interface{})  { l.add("WARN", format, args...) }
func (l *recordingLogger) Errorf(format string, args ...interface{}) { l.add("ERROR", format, args...) }

func (l *recordingLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lines[level])
}

// stubProber returns a fixed duration or error
type stubProber struct {
	duration float64
	err      error
}

func (p *stubProber) Duration(ctx context.Context, path string) (float64, error) {
	return p.duration, p.err
}

var errPermission = errors.New("permission denied")

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func newTestService(t *testing.T, engine video.Engine, opts ...Option) (*TrimService, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "scratch")
	opts = append([]Option{WithScratchDir(dir)}, opts...)
	return NewTrimService(engine, filesystem.NewLocal(), opts...), dir
}
