package ffmpeg

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"video-trimmer/domain/video"
)

// mockRunner records calls and returns a canned result
type mockRunner struct {
	calls  [][]string
	names  []string
	result RunResult
	err    error
	gotCtx context.Context
}

func (m *mockRunner) Run(ctx context.Context, name string, args ...string) (RunResult, error) {
	m.gotCtx = ctx
	m.names = append(m.names, name)
	m.calls = append(m.calls, args)
	return m.result, m.err
}

// argAfter returns the argument following flag, or "" if flag is absent
func argAfter(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func indexOf(args []string, s string) int {
	for i, a := range args {
		if a == s {
			return i
		}
	}
	return -1
}

func newTestCommand(t *testing.T) *video.TrimCommand {
	t.Helper()
	cmd, err := video.BuildTrimCommand("/scratch/temp.mp4", 5, 15, "/scratch/trimmed-1.mp4")
	if err != nil {
		t.Fatal(err)
	}
	return cmd
}

func TestArgs(t *testing.T) {
	args := Args(newTestCommand(t))

	checks := map[string]string{
		"-ss": "00:00:05.000",
		"-i":  "/scratch/temp.mp4",
		"-t":  "00:00:10.000",
		"-c":  "copy",
	}
	for flag, want := range checks {
		if got := argAfter(args, flag); got != want {
			t.Errorf("Args() %s = %q, want %q (args: %v)", flag, got, want, args)
		}
	}

	if indexOf(args, "-y") < 0 {
		t.Errorf("Args() missing -y overwrite flag: %v", args)
	}
	if indexOf(args, "/scratch/trimmed-1.mp4") < 0 {
		t.Errorf("Args() missing output path: %v", args)
	}
	// -ss before -i seeks the input rather than decoding up to the cut
	if indexOf(args, "-ss") > indexOf(args, "-i") {
		t.Errorf("Args() -ss must come before -i: %v", args)
	}
}

func TestArgs_WithoutCopyOrOverwrite(t *testing.T) {
	cmd := newTestCommand(t)
	cmd.StreamCopy = false
	cmd.Overwrite = false

	args := Args(cmd)
	if indexOf(args, "-c") >= 0 {
		t.Errorf("Args() should not stream-copy: %v", args)
	}
	if indexOf(args, "-y") >= 0 {
		t.Errorf("Args() should not overwrite: %v", args)
	}
}

func TestEngine_ExecuteSuccess(t *testing.T) {
	runner := &mockRunner{result: RunResult{ExitCode: 0}}
	engine := NewEngine(WithCommandRunner(runner), WithFFmpegPath("/usr/local/bin/ffmpeg"))

	outcome, err := engine.Execute(context.Background(), newTestCommand(t))
	if err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}
	if !outcome.Success() {
		t.Errorf("Execute() outcome = %+v, want success", outcome)
	}

	if len(runner.calls) != 1 {
		t.Fatalf("runner called %d times, want exactly 1", len(runner.calls))
	}
	if runner.names[0] != "/usr/local/bin/ffmpeg" {
		t.Errorf("runner name = %q, want custom ffmpeg path", runner.names[0])
	}
	args := runner.calls[0]
	if argAfter(args, "-loglevel") != "error" {
		t.Errorf("Execute() should set -loglevel error, args: %v", args)
	}
	if indexOf(args, "-loglevel") > indexOf(args, "-i") {
		t.Errorf("-loglevel should precede the input: %v", args)
	}
}

func TestEngine_ExecuteFailureKeepsDiagnostic(t *testing.T) {
	runner := &mockRunner{result: RunResult{ExitCode: 1, Output: "moov atom not found"}}
	engine := NewEngine(WithCommandRunner(runner), WithLogLevel("warning"))

	outcome, err := engine.Execute(context.Background(), newTestCommand(t))
	if err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}
	if outcome.Success() {
		t.Errorf("Execute() outcome = %+v, want failure", outcome)
	}
	if outcome.Output != "moov atom not found" {
		t.Errorf("Execute() output = %q, want diagnostic", outcome.Output)
	}
	if argAfter(runner.calls[0], "-loglevel") != "warning" {
		t.Errorf("custom log level not applied: %v", runner.calls[0])
	}
}

func TestEngine_ExecuteCannotRun(t *testing.T) {
	runner := &mockRunner{err: exec.ErrNotFound, result: RunResult{ExitCode: -1}}
	engine := NewEngine(WithCommandRunner(runner))

	outcome, err := engine.Execute(context.Background(), newTestCommand(t))
	if !errors.Is(err, exec.ErrNotFound) {
		t.Errorf("Execute() error = %v, want exec.ErrNotFound", err)
	}
	if outcome.Success() {
		t.Errorf("Execute() outcome = %+v, want failure", outcome)
	}
}

func TestEngine_Timeout(t *testing.T) {
	runner := &mockRunner{}
	engine := NewEngine(WithCommandRunner(runner), WithTimeout(time.Minute))

	if _, err := engine.Execute(context.Background(), newTestCommand(t)); err != nil {
		t.Fatal(err)
	}
	if _, ok := runner.gotCtx.Deadline(); !ok {
		t.Error("Execute() with timeout should pass a context with a deadline")
	}
}

func TestEngine_VerifyInstalled(t *testing.T) {
	tests := []struct {
		name    string
		runner  *mockRunner
		wantErr bool
	}{
		{"installed", &mockRunner{}, false},
		{"missing", &mockRunner{err: exec.ErrNotFound}, true},
		{"broken", &mockRunner{result: RunResult{ExitCode: 127}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewEngine(WithCommandRunner(tt.runner)).VerifyInstalled(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("VerifyInstalled() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(tt.runner.calls) != 1 || len(tt.runner.calls[0]) != 1 || tt.runner.calls[0][0] != "-version" {
				t.Errorf("VerifyInstalled() calls = %v, want a single -version call", tt.runner.calls)
			}
		})
	}
}

func TestExecCommandRunner(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	r := &ExecCommandRunner{}

	res, err := r.Run(context.Background(), "sh", "-c", "echo out; echo diag 1>&2; exit 3")
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("Run() exit code = %d, want 3", res.ExitCode)
	}
	if !contains(res.Output, "out") || !contains(res.Output, "diag") {
		t.Errorf("Run() output = %q, want combined stdout and stderr", res.Output)
	}

	if _, err := r.Run(context.Background(), "definitely-not-a-real-binary-xyz"); err == nil {
		t.Error("Run() with missing binary should return an error")
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
