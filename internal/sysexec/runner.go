// Package sysexec is the narrow seam between the pipeline and the operating
// system: every step mutates the machine through a Runner, so the retry and
// idempotence machinery can be exercised against a fake in tests.
package sysexec

import (
	"context"
	"os"
	"os/exec"
	"strings"
)

// Result carries the exit status and interleaved stdout/stderr of a command.
type Result struct {
	Status int
	Output string
}

// Ok reports whether the command exited zero.
func (r Result) Ok() bool { return r.Status == 0 }

// Runner executes external commands and touches the filesystem on behalf of
// steps. Implementations must not retry internally; retrying belongs to the
// execution engine.
type Runner interface {
	// Run executes a command line. It returns an error only when the command
	// could not be started at all; a non-zero exit is reported via Result.
	Run(ctx context.Context, line string) (Result, error)

	// ReadFile and WriteFile mirror the os functions so file-writing steps can
	// probe and converge on content without bypassing the seam.
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm os.FileMode) error

	// Stat reports whether a path exists (and is a directory).
	Stat(path string) (exists, dir bool)

	// MkdirAll creates a directory tree.
	MkdirAll(path string, perm os.FileMode) error

	// Remove deletes a file or empty directory; RemoveAll a whole tree.
	Remove(path string) error
	RemoveAll(path string) error
}

// Exec is the production Runner. Commands are split on whitespace the same
// way the generated shell scripts split them; steps that need quoting write a
// file and invoke it instead.
type Exec struct {
	// Env entries appended to the child environment, e.g. the noninteractive
	// frontend marker for dpkg.
	Env []string
}

func (e *Exec) Run(ctx context.Context, line string) (Result, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Result{}, nil
	}
	cmd := exec.CommandContext(ctx, fields[0], fields[1:]...)
	cmd.Env = append(os.Environ(), e.Env...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return Result{Status: exitErr.ExitCode(), Output: string(out)}, nil
		}
		return Result{Status: -1, Output: string(out)}, err
	}
	return Result{Status: 0, Output: string(out)}, nil
}

func (e *Exec) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (e *Exec) WriteFile(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(path, data, perm)
}

func (e *Exec) Stat(path string) (bool, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return false, false
	}
	return true, info.IsDir()
}

func (e *Exec) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (e *Exec) Remove(path string) error    { return os.Remove(path) }
func (e *Exec) RemoveAll(path string) error { return os.RemoveAll(path) }
