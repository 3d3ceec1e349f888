package video

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"video-trimmer/domain/video"
)

func TestTrimService_TrimVideo(t *testing.T) {
	engine := &fakeEngine{}
	logger := newRecordingLogger()
	svc, dir := newTestService(t, engine, WithLogger(logger), WithIDGenerator(func() string { return "abc" }))
	source := writeFile(t, t.TempDir(), "source.mp4", "sixty seconds of video")

	out, err := svc.TrimVideo(context.Background(), source, 5, 15)
	if err != nil {
		t.Fatalf("TrimVideo() unexpected error: %v", err)
	}

	if filepath.Dir(out) != dir {
		t.Errorf("output %q should live in scratch dir %q", out, dir)
	}
	if !strings.HasPrefix(filepath.Base(out), "trimmed-") || filepath.Ext(out) != ".mp4" {
		t.Errorf("output name = %q, want trimmed-<millis>.mp4", filepath.Base(out))
	}
	if !fileExists(out) {
		t.Fatalf("output %q does not exist", out)
	}

	cmd := engine.lastCall()
	if cmd == nil {
		t.Fatal("engine was not called")
	}
	if cmd.Start != "00:00:05.000" {
		t.Errorf("start = %q, want 00:00:05.000", cmd.Start)
	}
	if cmd.Duration != "00:00:10.000" {
		t.Errorf("duration = %q, want 00:00:10.000", cmd.Duration)
	}
	if !cmd.StreamCopy {
		t.Error("trim should stream-copy")
	}
	if cmd.InputPath != filepath.Join(dir, "temp.mp4") {
		t.Errorf("engine input = %q, want the staged copy", cmd.InputPath)
	}
	if cmd.OutputPath != out {
		t.Errorf("engine output = %q, want %q", cmd.OutputPath, out)
	}

	if got := readFile(t, source); got != "sixty seconds of video" {
		t.Errorf("source modified: %q", got)
	}
	if logger.count("INFO") == 0 || logger.count("SUCCESS") != 1 {
		t.Errorf("expected a start line and one success line, got %v", logger.lines)
	}
	for _, level := range []string{"INFO", "SUCCESS"} {
		for _, line := range logger.lines[level] {
			if !strings.Contains(line, "[TRIM abc]") {
				t.Errorf("log line %q missing trim ID", line)
			}
		}
	}
}

func TestTrimService_TrimVideo_FileScheme(t *testing.T) {
	engine := &fakeEngine{}
	svc, _ := newTestService(t, engine)
	source := writeFile(t, t.TempDir(), "clip.mp4", "data")

	out, err := svc.TrimVideo(context.Background(), "file://"+source, 0, 1)
	if err != nil {
		t.Fatalf("TrimVideo() unexpected error: %v", err)
	}
	if got := readFile(t, out); got != "data" {
		t.Errorf("output content = %q, want data", got)
	}
}

func TestTrimService_InvalidRangeTouchesNothing(t *testing.T) {
	tests := []struct {
		name       string
		start, end float64
		want       error
	}{
		{"end before start", 10, 5, video.ErrInvalidRange},
		{"equal", 5, 5, video.ErrInvalidRange},
		{"negative", -1, 5, video.ErrInvalidRange},
		{"sub-millisecond", 1, 1.0004, video.ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{}
			cfs := newCountingFS()
			dir := filepath.Join(t.TempDir(), "scratch")
			svc := NewTrimService(engine, cfs, WithScratchDir(dir))

			_, err := svc.TrimVideo(context.Background(), "/videos/source.mp4", tt.start, tt.end)
			if !errors.Is(err, tt.want) {
				t.Errorf("TrimVideo() error = %v, want %v", err, tt.want)
			}
			if n := cfs.calls.Load(); n != 0 {
				t.Errorf("filesystem called %d times, want 0", n)
			}
			if engine.callCount() != 0 {
				t.Errorf("engine called %d times, want 0", engine.callCount())
			}
			if fileExists(dir) {
				t.Error("scratch directory should not be created for an invalid range")
			}
		})
	}
}

func TestTrimService_SourceRequired(t *testing.T) {
	svc, _ := newTestService(t, &fakeEngine{})
	if _, err := svc.TrimVideo(context.Background(), "", 0, 1); !errors.Is(err, video.ErrSourceRequired) {
		t.Errorf("TrimVideo() error = %v, want ErrSourceRequired", err)
	}
}

func TestTrimService_NilRequest(t *testing.T) {
	engine := &fakeEngine{}
	svc, dir := newTestService(t, engine)

	result, err := svc.Trim(context.Background(), nil)
	if result != nil {
		t.Errorf("Trim(nil) result = %+v, want nil", result)
	}
	if !errors.Is(err, video.ErrSourceRequired) {
		t.Errorf("Trim(nil) error = %v, want ErrSourceRequired", err)
	}
	if engine.callCount() != 0 || fileExists(dir) {
		t.Error("a nil request should not reach the engine or the scratch directory")
	}
}

func TestTrimService_StagingReplacesPreviousCopy(t *testing.T) {
	engine := &fakeEngine{}
	svc, dir := newTestService(t, engine)
	src := t.TempDir()
	first := writeFile(t, src, "a.mp4", "first source")
	second := writeFile(t, src, "b.mp4", "second")

	outA, err := svc.TrimVideo(context.Background(), first, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	outB, err := svc.TrimVideo(context.Background(), second, 0, 1)
	if err != nil {
		t.Fatal(err)
	}

	if got := readFile(t, filepath.Join(dir, "temp.mp4")); got != "second" {
		t.Errorf("staged copy = %q, want the second source only", got)
	}
	if outA == outB {
		t.Errorf("outputs should be distinct, both %q", outA)
	}
	if readFile(t, outA) != "first source" || readFile(t, outB) != "second" {
		t.Error("each output should hold its own source's content")
	}
}

func TestTrimService_OutputNamesStrictlyIncrease(t *testing.T) {
	fixed := time.UnixMilli(1700000000000)
	engine := &fakeEngine{}
	svc, dir := newTestService(t, engine, WithClock(func() time.Time { return fixed }))
	source := writeFile(t, t.TempDir(), "source.mp4", "x")

	// a leftover from an earlier run already holds the first candidate name
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, dir, "trimmed-1700000000000.mp4", "old")

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		out, err := svc.TrimVideo(context.Background(), source, 0, 1)
		if err != nil {
			t.Fatal(err)
		}
		if seen[out] {
			t.Fatalf("output %q returned twice", out)
		}
		seen[out] = true
	}

	want := []string{"trimmed-1700000000001.mp4", "trimmed-1700000000002.mp4", "trimmed-1700000000003.mp4"}
	for _, name := range want {
		if !seen[filepath.Join(dir, name)] {
			t.Errorf("expected output %s, got %v", name, seen)
		}
	}
	if readFile(t, filepath.Join(dir, "trimmed-1700000000000.mp4")) != "old" {
		t.Error("existing file was overwritten")
	}
}

func TestTrimService_EngineFailure(t *testing.T) {
	engine := &fakeEngine{returnCode: 1, output: "Invalid data found when processing input", partial: true}
	logger := newRecordingLogger()
	svc, dir := newTestService(t, engine, WithLogger(logger))
	source := writeFile(t, t.TempDir(), "source.mp4", "corrupt")

	out, err := svc.TrimVideo(context.Background(), source, 0, 1)
	if out != "" {
		t.Errorf("TrimVideo() returned path %q on failure", out)
	}
	if !errors.Is(err, video.ErrEngineFailed) {
		t.Fatalf("TrimVideo() error = %v, want ErrEngineFailed", err)
	}

	var engineErr *video.EngineError
	if !errors.As(err, &engineErr) {
		t.Fatalf("error %T is not *video.EngineError", err)
	}
	if engineErr.ReturnCode != 1 {
		t.Errorf("return code = %d, want 1", engineErr.ReturnCode)
	}
	if !strings.Contains(engineErr.Diagnostic, "Invalid data") {
		t.Errorf("diagnostic = %q, want engine output", engineErr.Diagnostic)
	}

	if partial := engine.lastCall().OutputPath; fileExists(partial) {
		t.Errorf("partial output %s should be removed", partial)
	}
	if !fileExists(filepath.Join(dir, "temp.mp4")) {
		t.Error("staged copy should remain for the next trim to replace")
	}
	if logger.count("WARN") == 0 {
		t.Error("engine failure should be logged as a warning")
	}
}

// cancellingEngine simulates an interrupt arriving mid-run: it writes output,
// cancels the caller's context, then reports how the run ended
type cancellingEngine struct {
	cancel  context.CancelFunc
	succeed bool
}

func (e *cancellingEngine) Execute(ctx context.Context, cmd *video.TrimCommand) (video.Outcome, error) {
	_ = os.WriteFile(cmd.OutputPath, []byte("partial"), 0644)
	e.cancel()
	if e.succeed {
		return video.Outcome{ReturnCode: 0}, nil
	}
	return video.Outcome{ReturnCode: -1}, ctx.Err()
}

func TestTrimService_CancelledRunRemovesOutput(t *testing.T) {
	tests := []struct {
		name    string
		succeed bool
	}{
		{"engine interrupted", false},
		{"cancelled after engine finished", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			svc, dir := newTestService(t, &cancellingEngine{cancel: cancel, succeed: tt.succeed})
			source := writeFile(t, t.TempDir(), "source.mp4", "x")

			out, err := svc.TrimVideo(ctx, source, 0, 1)
			if out != "" {
				t.Errorf("TrimVideo() returned path %q after cancellation", out)
			}
			if !errors.Is(err, video.ErrEngineFailed) || !errors.Is(err, context.Canceled) {
				t.Errorf("TrimVideo() error = %v, want ErrEngineFailed wrapping context.Canceled", err)
			}

			names, _ := os.ReadDir(dir)
			for _, e := range names {
				if strings.HasPrefix(e.Name(), "trimmed-") {
					t.Errorf("output %s left behind after cancelled run", e.Name())
				}
			}
		})
	}
}

func TestTrimService_EngineCannotRun(t *testing.T) {
	cause := errors.New("exec: \"ffmpeg\": executable file not found")
	svc, _ := newTestService(t, &fakeEngine{err: cause})
	source := writeFile(t, t.TempDir(), "source.mp4", "x")

	_, err := svc.TrimVideo(context.Background(), source, 0, 1)
	if !errors.Is(err, video.ErrEngineFailed) {
		t.Errorf("TrimVideo() error = %v, want ErrEngineFailed", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("TrimVideo() error = %v, should wrap the runner error", err)
	}
}

func TestTrimService_EngineSucceedsWithoutOutput(t *testing.T) {
	svc, _ := newTestService(t, &fakeEngine{skipWrite: true})
	source := writeFile(t, t.TempDir(), "source.mp4", "x")

	_, err := svc.TrimVideo(context.Background(), source, 0, 1)
	if !errors.Is(err, video.ErrEngineFailed) {
		t.Errorf("TrimVideo() error = %v, want ErrEngineFailed", err)
	}
}

func TestTrimService_MissingSource(t *testing.T) {
	engine := &fakeEngine{}
	svc, _ := newTestService(t, engine)

	_, err := svc.TrimVideo(context.Background(), filepath.Join(t.TempDir(), "nope.mp4"), 0, 1)
	if !errors.Is(err, video.ErrStorage) {
		t.Errorf("TrimVideo() error = %v, want ErrStorage", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("TrimVideo() error = %v, want fs.ErrNotExist", err)
	}
	if engine.callCount() != 0 {
		t.Error("engine should not run when staging fails")
	}
}

func TestTrimService_ScratchDirUnavailable(t *testing.T) {
	blocker := writeFile(t, t.TempDir(), "not-a-dir", "x")
	engine := &fakeEngine{}
	svc, _ := newTestService(t, engine, WithScratchDir(filepath.Join(blocker, "scratch")))
	source := writeFile(t, t.TempDir(), "source.mp4", "x")

	_, err := svc.TrimVideo(context.Background(), source, 0, 1)
	if !errors.Is(err, video.ErrStorage) {
		t.Errorf("TrimVideo() error = %v, want ErrStorage", err)
	}
	if engine.callCount() != 0 {
		t.Error("engine should not run without a scratch directory")
	}
}

func TestTrimService_DeleteTempFile(t *testing.T) {
	svc, _ := newTestService(t, &fakeEngine{})
	source := writeFile(t, t.TempDir(), "source.mp4", "x")

	out, err := svc.TrimVideo(context.Background(), source, 0, 1)
	if err != nil {
		t.Fatal(err)
	}

	svc.DeleteTempFile(context.Background(), out)
	if fileExists(out) {
		t.Errorf("%s should be deleted", out)
	}
	// second delete of the same path is a no-op
	svc.DeleteTempFile(context.Background(), out)
	svc.DeleteTempFile(context.Background(), filepath.Join(t.TempDir(), "never-existed.mp4"))
}

func TestTrimService_DeleteTempFileFailureIsLogged(t *testing.T) {
	cfs := newCountingFS()
	cfs.removeErr = errPermission
	logger := newRecordingLogger()
	svc := NewTrimService(&fakeEngine{}, cfs, WithScratchDir(t.TempDir()), WithLogger(logger))
	target := writeFile(t, svc.ScratchDir(), "trimmed-1.mp4", "x")

	svc.DeleteTempFile(context.Background(), target)

	if logger.count("WARN") != 1 {
		t.Errorf("expected one warning, got %v", logger.lines)
	}
}

func TestTrimService_Clean(t *testing.T) {
	dir := t.TempDir()
	svc := NewTrimService(&fakeEngine{}, newCountingFS(), WithScratchDir(dir))
	for _, name := range []string{"temp.mp4", "temp-1.mp4", "trimmed-1.mp4", "trimmed-2.mp4"} {
		writeFile(t, dir, name, "x")
	}
	keep := writeFile(t, dir, "notes.txt", "keep me")

	n, err := svc.Clean(context.Background())
	if err != nil {
		t.Fatalf("Clean() unexpected error: %v", err)
	}
	if n != 4 {
		t.Errorf("Clean() removed %d files, want 4", n)
	}
	if !fileExists(keep) {
		t.Error("Clean() removed a file the pipeline did not produce")
	}

	missing := NewTrimService(&fakeEngine{}, newCountingFS(), WithScratchDir(filepath.Join(dir, "absent")))
	if n, err := missing.Clean(context.Background()); n != 0 || err != nil {
		t.Errorf("Clean() on missing dir = (%d, %v), want (0, nil)", n, err)
	}
}

func TestTrimService_ProbedDuration(t *testing.T) {
	tests := []struct {
		name         string
		prober       *stubProber
		start, end   float64
		wantErr      error
		wantDuration string
	}{
		{"within source", &stubProber{duration: 60}, 5, 15, nil, "00:00:10.000"},
		{"end clamped", &stubProber{duration: 60}, 50, 90, nil, "00:00:10.000"},
		{"start past end of source", &stubProber{duration: 60}, 60, 70, video.ErrInvalidRange, ""},
		{"probe failure trims as requested", &stubProber{err: errors.New("no duration")}, 50, 90, nil, "00:00:40.000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{}
			svc, _ := newTestService(t, engine, WithProber(tt.prober))
			source := writeFile(t, t.TempDir(), "source.mp4", "x")

			_, err := svc.TrimVideo(context.Background(), source, tt.start, tt.end)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("TrimVideo() error = %v, want %v", err, tt.wantErr)
				}
				if engine.callCount() != 0 {
					t.Error("engine should not run for a rejected range")
				}
				return
			}
			if err != nil {
				t.Fatalf("TrimVideo() unexpected error: %v", err)
			}
			if got := engine.lastCall().Duration; got != tt.wantDuration {
				t.Errorf("duration = %q, want %q", got, tt.wantDuration)
			}
		})
	}
}

func TestTrimService_ClampToEmptyRangeTouchesNothing(t *testing.T) {
	engine := &fakeEngine{}
	cfs := newCountingFS()
	dir := filepath.Join(t.TempDir(), "scratch")
	svc := NewTrimService(engine, cfs, WithScratchDir(dir), WithProber(&stubProber{duration: 10.0004}))

	_, err := svc.TrimVideo(context.Background(), "/videos/source.mp4", 10, 20)
	if !errors.Is(err, video.ErrInvalidRange) {
		t.Fatalf("TrimVideo() error = %v, want ErrInvalidRange", err)
	}
	if n := cfs.calls.Load(); n != 0 {
		t.Errorf("filesystem called %d times, want 0", n)
	}
	if engine.callCount() != 0 {
		t.Errorf("engine called %d times, want 0", engine.callCount())
	}
	if fileExists(filepath.Join(dir, "temp.mp4")) {
		t.Error("staged copy should not be written for a range clamped to nothing")
	}
}

func TestTrimService_SingleSlotSerializesTrims(t *testing.T) {
	started := make(chan struct{}, 2)
	release := make(chan struct{})
	engine := &fakeEngine{onExecute: func(*video.TrimCommand) {
		started <- struct{}{}
		<-release
	}}
	svc, _ := newTestService(t, engine)
	source := writeFile(t, t.TempDir(), "source.mp4", "x")

	errc := make(chan error, 1)
	go func() {
		_, err := svc.TrimVideo(context.Background(), source, 0, 1)
		errc <- err
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := svc.TrimVideo(ctx, source, 0, 1); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("second trim error = %v, want it to wait for the slot", err)
	}

	close(release)
	if err := <-errc; err != nil {
		t.Fatalf("first trim failed: %v", err)
	}
	if engine.callCount() != 1 {
		t.Errorf("engine called %d times, want 1", engine.callCount())
	}
}

func TestTrimService_StagingSlotsRunConcurrently(t *testing.T) {
	inputs := make(chan string, 2)
	release := make(chan struct{})
	engine := &fakeEngine{onExecute: func(cmd *video.TrimCommand) {
		inputs <- cmd.InputPath
		<-release
	}}
	svc, dir := newTestService(t, engine, WithStagingSlots(2))
	src := t.TempDir()
	sources := []string{writeFile(t, src, "a.mp4", "a"), writeFile(t, src, "b.mp4", "b")}

	var wg sync.WaitGroup
	outs := make([]string, len(sources))
	errs := make([]error, len(sources))
	for i, source := range sources {
		wg.Add(1)
		go func(i int, source string) {
			defer wg.Done()
			outs[i], errs[i] = svc.TrimVideo(context.Background(), source, 0, 1)
		}(i, source)
	}

	staged := map[string]bool{}
	for len(staged) < 2 {
		select {
		case in := <-inputs:
			if staged[in] {
				t.Fatalf("two concurrent trims share staging file %s", in)
			}
			staged[in] = true
		case <-time.After(5 * time.Second):
			t.Fatal("trims did not run concurrently")
		}
	}
	close(release)
	wg.Wait()

	for _, name := range []string{"temp-0.mp4", "temp-1.mp4"} {
		if !staged[filepath.Join(dir, name)] {
			t.Errorf("expected staging file %s, got %v", name, staged)
		}
	}
	for i, err := range errs {
		if err != nil {
			t.Errorf("trim %d failed: %v", i, err)
		}
	}
	if readFile(t, outs[0]) != "a" || readFile(t, outs[1]) != "b" {
		t.Error("concurrent outputs hold the wrong content")
	}
}
