package shell

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestCheckDependencies(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("PATH handling differs on windows")
	}
	dir := t.TempDir()
	exe := filepath.Join(dir, "present-tool")
	assert.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755))
	t.Setenv("PATH", dir)

	expect.NoError(t, CheckDependencies([]string{"present-tool"}))
	expect.NoError(t, CheckDependencies(nil))

	err := CheckDependencies([]string{"present-tool", "no-such-aligner", "no-such-indexer"})
	assert.NotNil(t, err)
	assert.HasSubstr(t, err.Error(), "no-such-aligner")
	assert.HasSubstr(t, err.Error(), "no-such-indexer")
}

func TestRunLogged(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "tool.log")

	var gotArgv []string
	recorder := Runner(func(ctx context.Context, argv []string, stdout io.Writer) error {
		gotArgv = argv
		_, err := stdout.Write([]byte("tool output\n"))
		return err
	})
	assert.NoError(t, RunLogged(context.Background(), recorder, []string{"fake-tool", "-x"}, logPath))
	expect.EQ(t, gotArgv, []string{"fake-tool", "-x"})

	data, err := os.ReadFile(logPath)
	assert.NoError(t, err)
	expect.EQ(t, string(data), "tool output\n")
}

func TestRunFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	err := Run(context.Background(), []string{"sh", "-c", "echo boom >&2; exit 3"}, nil)
	assert.NotNil(t, err)
	assert.HasSubstr(t, err.Error(), "boom")
}
