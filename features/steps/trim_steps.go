//go:build integration

package steps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"video-trimmer/cmd"
	"video-trimmer/domain/video"
	"video-trimmer/infrastructure/ffmpeg"
	"video-trimmer/infrastructure/filesystem"

	"github.com/cucumber/godog"
)

// mockEngine records every command and emulates a stream copy by copying the input file
type mockEngine struct {
	mu         sync.Mutex
	calls      []engineCall
	returnCode int
	diagnostic string
}

type engineCall struct {
	cmd  *video.TrimCommand
	args []string
}

func (m *mockEngine) Execute(ctx context.Context, cmd *video.TrimCommand) (video.Outcome, error) {
	m.mu.Lock()
	m.calls = append(m.calls, engineCall{cmd: cmd, args: ffmpeg.Args(cmd)})
	m.mu.Unlock()

	if m.returnCode != 0 {
		return video.Outcome{ReturnCode: m.returnCode, Output: m.diagnostic}, nil
	}

	data, err := os.ReadFile(cmd.InputPath)
	if err != nil {
		return video.Outcome{ReturnCode: 1, Output: err.Error()}, nil
	}
	if err := os.WriteFile(cmd.OutputPath, data, 0644); err != nil {
		return video.Outcome{ReturnCode: 1, Output: err.Error()}, nil
	}
	return video.Outcome{ReturnCode: 0}, nil
}

// trimContext holds test state for trim scenarios
type trimContext struct {
	tempDir       string
	scratchDir    string
	sourcePath    string
	sourceContent string
	engine        *mockEngine
	prompter      *MockPrompter
	output        *bytes.Buffer
	err           error
}

// SharedTrimContext is reset before each scenario via Before hook
var SharedTrimContext *trimContext

func getTrimContext() *trimContext {
	return SharedTrimContext
}

func InitializeTrimScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "trim-test-*")
		if err != nil {
			return c, err
		}
		SharedTrimContext = &trimContext{
			tempDir:    tempDir,
			scratchDir: filepath.Join(tempDir, "scratch"),
			engine:     &mockEngine{},
			output:     &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if SharedTrimContext != nil && SharedTrimContext.tempDir != "" {
			os.RemoveAll(SharedTrimContext.tempDir)
		}
		SharedTrimContext = nil
		return c, nil
	})

	ctx.Step(`^a source video named "([^"]*)"$`, aSourceVideoNamed)
	ctx.Step(`^no source video named "([^"]*)"$`, noSourceVideoNamed)
	ctx.Step(`^the codec engine fails with "([^"]*)"$`, theCodecEngineFailsWith)
	ctx.Step(`^I trim the video from "([^"]*)" to "([^"]*)"$`, iTrimTheVideoFromTo)
	ctx.Step(`^I trim the video from "([^"]*)" to "([^"]*)" saving to "([^"]*)"$`, iTrimTheVideoFromToSavingTo)
	ctx.Step(`^I attempt to trim from "([^"]*)" to "([^"]*)"$`, iAttemptToTrimFromTo)
	ctx.Step(`^I trim without a range and answer "([^"]*)" and "([^"]*)"$`, iTrimWithoutARangeAndAnswer)
	ctx.Step(`^I trim interactively with ranges:$`, iTrimInteractivelyWithRanges)
	ctx.Step(`^ffmpeg should have been called with arguments:$`, ffmpegShouldHaveBeenCalledWithArguments)
	ctx.Step(`^ffmpeg should have been called (\d+) times?$`, ffmpegShouldHaveBeenCalledTimes)
	ctx.Step(`^ffmpeg should not have been called$`, ffmpegShouldNotHaveBeenCalled)
	ctx.Step(`^the trimmed file should be a new mp4 in the scratch directory$`, theTrimmedFileShouldBeANewMp4InTheScratchDirectory)
	ctx.Step(`^the scratch directory should hold (\d+) trimmed files?$`, theScratchDirectoryShouldHoldTrimmedFiles)
	ctx.Step(`^the file "([^"]*)" should contain the source video$`, theFileShouldContainTheSourceVideo)
	ctx.Step(`^the source video should be unchanged$`, theSourceVideoShouldBeUnchanged)
	ctx.Step(`^I should receive an invalid range error$`, iShouldReceiveAnInvalidRangeError)
	ctx.Step(`^I should receive a storage error$`, iShouldReceiveAStorageError)
	ctx.Step(`^I should receive an engine failure error$`, iShouldReceiveAnEngineFailureError)
	ctx.Step(`^the trim output should contain "([^"]*)"$`, theTrimOutputShouldContain)
}

func aSourceVideoNamed(name string) error {
	t := getTrimContext()
	t.sourcePath = filepath.Join(t.tempDir, name)
	t.sourceContent = "video bytes of " + name
	return os.WriteFile(t.sourcePath, []byte(t.sourceContent), 0644)
}

func noSourceVideoNamed(name string) error {
	t := getTrimContext()
	t.sourcePath = filepath.Join(t.tempDir, name)
	return nil
}

func theCodecEngineFailsWith(diagnostic string) error {
	t := getTrimContext()
	t.engine.returnCode = 1
	t.engine.diagnostic = diagnostic
	return nil
}

func (t *trimContext) run(opts cmd.TrimOptions) error {
	opts.SourcePath = t.sourcePath
	opts.ScratchDir = t.scratchDir
	opts.StagingSlots = 1

	deps := cmd.TrimDependencies{
		Engine: t.engine,
		FS:     filesystem.NewLocal(),
	}
	if t.prompter != nil {
		deps.Prompter = t.prompter
	}

	t.output.Reset()
	return cmd.RunTrimWithDependencies(context.Background(), deps, opts, t.output)
}

func iTrimTheVideoFromTo(start, end string) error {
	t := getTrimContext()
	t.err = t.run(cmd.TrimOptions{StartTime: start, EndTime: end})
	if t.err != nil {
		return fmt.Errorf("unexpected error: %v", t.err)
	}
	return nil
}

func iTrimTheVideoFromToSavingTo(start, end, dest string) error {
	t := getTrimContext()
	t.err = t.run(cmd.TrimOptions{StartTime: start, EndTime: end, OutputPath: filepath.Join(t.tempDir, dest)})
	if t.err != nil {
		return fmt.Errorf("unexpected error: %v", t.err)
	}
	return nil
}

func iAttemptToTrimFromTo(start, end string) error {
	t := getTrimContext()
	t.err = t.run(cmd.TrimOptions{StartTime: start, EndTime: end})
	return nil
}

func iTrimWithoutARangeAndAnswer(start, end string) error {
	t := getTrimContext()
	t.prompter = NewMockPrompter([]string{start, end}, nil, nil)
	t.err = t.run(cmd.TrimOptions{})
	if t.err != nil {
		return fmt.Errorf("unexpected error: %v", t.err)
	}
	return nil
}

func iTrimInteractivelyWithRanges(table *godog.Table) error {
	t := getTrimContext()

	var inputs []string
	var confirms []bool
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header row
		}
		inputs = append(inputs, row.Cells[0].Value, row.Cells[1].Value)
		// trim again after every range but the last
		confirms = append(confirms, i < len(table.Rows)-1)
	}

	t.prompter = NewMockPrompter(inputs, confirms, nil)
	t.err = t.run(cmd.TrimOptions{Interactive: true})
	if t.err != nil {
		return fmt.Errorf("unexpected error: %v", t.err)
	}
	return nil
}

func (t *trimContext) lastCall() (engineCall, error) {
	t.engine.mu.Lock()
	defer t.engine.mu.Unlock()
	if len(t.engine.calls) == 0 {
		return engineCall{}, fmt.Errorf("ffmpeg was not called")
	}
	return t.engine.calls[len(t.engine.calls)-1], nil
}

func ffmpegShouldHaveBeenCalledWithArguments(table *godog.Table) error {
	t := getTrimContext()
	call, err := t.lastCall()
	if err != nil {
		return err
	}

	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header row
		}
		flag := row.Cells[0].Value
		want := row.Cells[1].Value

		found := false
		for j := 0; j < len(call.args)-1; j++ {
			if call.args[j] == flag && call.args[j+1] == want {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("expected %s %s in ffmpeg call: %v", flag, want, call.args)
		}
	}
	return nil
}

func ffmpegShouldHaveBeenCalledTimes(n int) error {
	t := getTrimContext()
	t.engine.mu.Lock()
	defer t.engine.mu.Unlock()
	if len(t.engine.calls) != n {
		return fmt.Errorf("expected %d ffmpeg calls, got %d", n, len(t.engine.calls))
	}
	return nil
}

func ffmpegShouldNotHaveBeenCalled() error {
	return ffmpegShouldHaveBeenCalledTimes(0)
}

func (t *trimContext) trimmedFiles() ([]string, error) {
	entries, err := os.ReadDir(t.scratchDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "trimmed-") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func theTrimmedFileShouldBeANewMp4InTheScratchDirectory() error {
	t := getTrimContext()
	call, err := t.lastCall()
	if err != nil {
		return err
	}

	out := call.cmd.OutputPath
	if filepath.Dir(out) != t.scratchDir {
		return fmt.Errorf("expected output in %s, got %s", t.scratchDir, out)
	}
	if filepath.Ext(out) != ".mp4" {
		return fmt.Errorf("expected an .mp4 output, got %s", out)
	}
	if !strings.Contains(t.output.String(), out) {
		return fmt.Errorf("expected the output path to be printed, got %q", t.output.String())
	}
	data, err := os.ReadFile(out)
	if err != nil {
		return fmt.Errorf("trimmed file missing: %w", err)
	}
	if string(data) != t.sourceContent {
		return fmt.Errorf("trimmed file content = %q, want the staged source", data)
	}
	return nil
}

func theScratchDirectoryShouldHoldTrimmedFiles(n int) error {
	t := getTrimContext()
	names, err := t.trimmedFiles()
	if err != nil {
		return err
	}
	if len(names) != n {
		return fmt.Errorf("expected %d trimmed files, got %v", n, names)
	}
	return nil
}

func theFileShouldContainTheSourceVideo(name string) error {
	t := getTrimContext()
	data, err := os.ReadFile(filepath.Join(t.tempDir, name))
	if err != nil {
		return err
	}
	if string(data) != t.sourceContent {
		return fmt.Errorf("%s content = %q, want %q", name, data, t.sourceContent)
	}
	return nil
}

func theSourceVideoShouldBeUnchanged() error {
	t := getTrimContext()
	data, err := os.ReadFile(t.sourcePath)
	if err != nil {
		return err
	}
	if string(data) != t.sourceContent {
		return fmt.Errorf("source video was modified")
	}
	return nil
}

func iShouldReceiveAnInvalidRangeError() error {
	t := getTrimContext()
	if !errors.Is(t.err, video.ErrInvalidRange) {
		return fmt.Errorf("expected an invalid range error, got: %v", t.err)
	}
	return nil
}

func iShouldReceiveAStorageError() error {
	t := getTrimContext()
	if !errors.Is(t.err, video.ErrStorage) {
		return fmt.Errorf("expected a storage error, got: %v", t.err)
	}
	return nil
}

func iShouldReceiveAnEngineFailureError() error {
	t := getTrimContext()
	if !errors.Is(t.err, video.ErrEngineFailed) {
		return fmt.Errorf("expected an engine failure, got: %v", t.err)
	}
	return nil
}

func theTrimOutputShouldContain(fragment string) error {
	t := getTrimContext()
	if !strings.Contains(t.output.String(), fragment) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", fragment, t.output.String())
	}
	return nil
}
