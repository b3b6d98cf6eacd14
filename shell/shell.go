// Package shell runs the external binaries that imfusion wraps (bowtie,
// tophat2, STAR, stringtie) and reports missing ones before any work starts.
package shell

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/grailbio/base/log"
	"github.com/pkg/errors"
)

// Runner runs one external command to completion. The default is Run;
// tests substitute a recording implementation.
type Runner func(ctx context.Context, argv []string, stdout io.Writer) error

// Run executes argv, sending the tool's stdout to the given writer (or
// discarding it when nil). Stderr is captured and included in the returned
// error when the tool exits non-zero.
func Run(ctx context.Context, argv []string, stdout io.Writer) error {
	if len(argv) == 0 {
		return errors.New("shell: empty command")
	}
	log.Printf("Running %s", strings.Join(argv, " "))
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = stdout
	stderr := bytes.NewBuffer(nil)
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return errors.Wrapf(err, "%s: %s", argv[0], msg)
		}
		return errors.Wrapf(err, "%s", argv[0])
	}
	return nil
}

// RunLogged invokes run, redirecting the tool's stdout to logPath. The log
// file is created (truncated) before the tool starts, so a failed run still
// leaves whatever the tool managed to print.
func RunLogged(ctx context.Context, run Runner, argv []string, logPath string) error {
	out, err := os.Create(logPath)
	if err != nil {
		return errors.Wrapf(err, "create log %s", logPath)
	}
	runErr := run(ctx, argv, out)
	if err := out.Close(); err != nil && runErr == nil {
		runErr = errors.Wrapf(err, "close log %s", logPath)
	}
	return runErr
}

// CheckDependencies verifies that every named binary is present in $PATH.
// All missing binaries are reported in a single error.
func CheckDependencies(deps []string) error {
	var missing []string
	for _, dep := range deps {
		if _, err := exec.LookPath(dep); err != nil {
			missing = append(missing, dep)
		}
	}
	if len(missing) > 0 {
		return errors.Errorf("missing external dependencies: %s", strings.Join(missing, ", "))
	}
	return nil
}
