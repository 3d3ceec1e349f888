//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"video-trimmer/cmd"
	"video-trimmer/infrastructure/filesystem"
	"video-trimmer/infrastructure/logging"

	"github.com/cucumber/godog"
)

type cleanupContext struct {
	scratchDir string
	output     *bytes.Buffer
	err        error
}

var SharedCleanupContext = &cleanupContext{}

func InitializeCleanupScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedCleanupContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		dir, err := os.MkdirTemp("", "cleanup-test-*")
		if err != nil {
			return c, err
		}
		testCtx.scratchDir = dir
		testCtx.output = &bytes.Buffer{}
		testCtx.err = nil
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.scratchDir != "" {
			os.RemoveAll(testCtx.scratchDir)
		}
		return c, nil
	})

	ctx.Step(`^the scratch directory contains:$`, testCtx.theScratchDirectoryContains)
	ctx.Step(`^I clean the scratch directory$`, testCtx.iCleanTheScratchDirectory)
	ctx.Step(`^I delete "([^"]*)" twice$`, testCtx.iDeleteTwice)
	ctx.Step(`^the scratch directory should contain only:$`, testCtx.theScratchDirectoryShouldContainOnly)
	ctx.Step(`^the cleanup should succeed$`, testCtx.theCleanupShouldSucceed)
	ctx.Step(`^the cleanup output should contain "([^"]*)"$`, testCtx.theCleanupOutputShouldContain)
}

func (c *cleanupContext) theScratchDirectoryContains(table *godog.Table) error {
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header row
		}
		path := filepath.Join(c.scratchDir, row.Cells[0].Value)
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			return err
		}
	}
	return nil
}

func (c *cleanupContext) iCleanTheScratchDirectory() error {
	c.err = cmd.RunCleanWithDependencies(context.Background(), filesystem.NewLocal(), logging.Nop(), c.scratchDir, c.output)
	return nil
}

func (c *cleanupContext) iDeleteTwice(name string) error {
	path := filepath.Join(c.scratchDir, name)
	for i := 0; i < 2; i++ {
		if err := cmd.RunDeleteWithDependencies(context.Background(), filesystem.NewLocal(), logging.Nop(), c.scratchDir, []string{path}, c.output); err != nil {
			c.err = err
			return nil
		}
	}
	return nil
}

func (c *cleanupContext) theScratchDirectoryShouldContainOnly(table *godog.Table) error {
	var want []string
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header row
		}
		want = append(want, row.Cells[0].Value)
	}
	sort.Strings(want)

	entries, err := os.ReadDir(c.scratchDir)
	if err != nil {
		return err
	}
	var got []string
	for _, e := range entries {
		got = append(got, e.Name())
	}
	sort.Strings(got)

	if strings.Join(got, ",") != strings.Join(want, ",") {
		return fmt.Errorf("scratch directory holds %v, want %v", got, want)
	}
	return nil
}

func (c *cleanupContext) theCleanupShouldSucceed() error {
	if c.err != nil {
		return fmt.Errorf("expected success, got error: %v", c.err)
	}
	return nil
}

func (c *cleanupContext) theCleanupOutputShouldContain(fragment string) error {
	if !strings.Contains(c.output.String(), fragment) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", fragment, c.output.String())
	}
	return nil
}
