// Package module maps kiosk settings onto ordered, idempotent system
// changes. Each module owns one slice of system state and renders it into
// steps; the execution engine decides retries and records outcomes.
package module

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/archfrog/KioskForge/internal/sysexec"
)

// ErrLocked signals that a shared resource (the dpkg lock) is held by someone
// else. The engine treats it like any other failure, which means the step's
// until-timeout policy keeps probing until the lock goes away.
var ErrLocked = errors.New("package manager lock is held by another process")

// PolicyKind selects how the engine retries a failing step.
type PolicyKind int

const (
	RetryNone PolicyKind = iota
	RetryFixed
	RetryUntilTimeout
)

// RetryPolicy bounds the engine's retry loop for one step.
type RetryPolicy struct {
	Kind     PolicyKind
	Attempts int           // RetryFixed: total attempts
	Delay    time.Duration // RetryFixed: sleep between attempts
	Timeout  time.Duration // RetryUntilTimeout: cumulative budget
}

func NoRetry() RetryPolicy { return RetryPolicy{Kind: RetryNone} }

func Fixed(attempts int, delay time.Duration) RetryPolicy {
	return RetryPolicy{Kind: RetryFixed, Attempts: attempts, Delay: delay}
}

func UntilTimeout(timeout time.Duration) RetryPolicy {
	return RetryPolicy{Kind: RetryUntilTimeout, Timeout: timeout}
}

// Step is one atomic system operation. Do either succeeds or returns an
// error; there is no half-applied outcome visible to the caller. Script is
// the standalone shell rendition used when writing the install medium.
type Step struct {
	Description string
	Idempotent  bool
	Critical    bool
	Retry       RetryPolicy
	Do          func(ctx context.Context, r sysexec.Runner) error
	Script      string
}

// aptLockFiles are probed before any package operation; apt sometimes runs in
// the background even with unattended-upgrades removed.
var aptLockFiles = []string{"/var/lib/dpkg/lock-frontend", "/var/lib/dpkg/lock"}

// Command is an external program invocation. Critical by default is left to
// the caller; most commands converge when re-run (hostnamectl, timedatectl,
// ufw) and are marked idempotent at the call site.
func Command(description, line string, idempotent bool) Step {
	return Step{
		Description: description,
		Idempotent:  idempotent,
		Retry:       NoRetry(),
		Do: func(ctx context.Context, r sysexec.Runner) error {
			return runChecked(ctx, r, line)
		},
		Script: line,
	}
}

// Apt is a package-manager invocation. The dpkg lock is treated as a
// transient condition: each attempt first probes the lock files and reports
// ErrLocked while any is held, so the until-timeout policy keeps the step
// alive until the external holder finishes. The lock is never removed.
func Apt(description, line string) Step {
	var guard strings.Builder
	for _, lock := range aptLockFiles {
		fmt.Fprintf(&guard, "while lsof %s >/dev/null 2>&1; do sleep 5; done\n", lock)
	}
	return Step{
		Description: description,
		Idempotent:  true, // apt converges: already-installed is success
		Critical:    true,
		Retry:       UntilTimeout(10 * time.Minute),
		Do: func(ctx context.Context, r sysexec.Runner) error {
			for _, lock := range aptLockFiles {
				res, err := r.Run(ctx, "lsof "+lock)
				if err != nil {
					return err
				}
				if res.Ok() {
					return ErrLocked
				}
			}
			return runChecked(ctx, r, line)
		},
		Script: guard.String() + line,
	}
}

// WriteFile creates or overwrites a file with exact content. Re-running
// against identical content is a no-op, which is what makes every boot safe
// to re-plan from scratch.
func WriteFile(description, filePath, content string, perm os.FileMode) Step {
	return Step{
		Description: description,
		Idempotent:  true,
		Retry:       NoRetry(),
		Do: func(ctx context.Context, r sysexec.Runner) error {
			if existing, err := r.ReadFile(filePath); err == nil && string(existing) == content {
				return nil
			}
			if dir := path.Dir(filePath); dir != "." {
				if err := r.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}
			return r.WriteFile(filePath, []byte(content), perm)
		},
		Script: heredoc(filePath, content, perm),
	}
}

// AppendOnce appends a block to a file unless a stable marker line is already
// present. This is the write-if-absent discipline for cron entries and shell
// profile fragments.
func AppendOnce(description, filePath, marker, block string) Step {
	return Step{
		Description: description,
		Idempotent:  true,
		Retry:       NoRetry(),
		Do: func(ctx context.Context, r sysexec.Runner) error {
			existing, err := r.ReadFile(filePath)
			if err == nil && strings.Contains(string(existing), marker) {
				return nil
			}
			if dir := path.Dir(filePath); dir != "." {
				if err := r.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}
			out := string(existing)
			if out != "" && !strings.HasSuffix(out, "\n") {
				out += "\n"
			}
			out += block
			if !strings.HasSuffix(out, "\n") {
				out += "\n"
			}
			return r.WriteFile(filePath, []byte(out), 0o644)
		},
		Script: fmt.Sprintf("grep -qF '%s' %s 2>/dev/null || cat >> %s <<'KIOSKEOF'\n%s\nKIOSKEOF",
			marker, filePath, filePath, strings.TrimRight(block, "\n")),
	}
}

// ReplaceText substitutes old with new in an existing file. A file already
// containing new counts as converged; a file containing neither string is an
// error, since it means the underlying package changed shape.
func ReplaceText(description, filePath, old, new string) Step {
	return Step{
		Description: description,
		Idempotent:  true,
		Retry:       NoRetry(),
		Do: func(ctx context.Context, r sysexec.Runner) error {
			data, err := r.ReadFile(filePath)
			if err != nil {
				return err
			}
			text := string(data)
			if strings.Contains(text, new) {
				return nil
			}
			if !strings.Contains(text, old) {
				return fmt.Errorf("no occurrence of %q in %s", old, filePath)
			}
			return r.WriteFile(filePath, []byte(strings.Replace(text, old, new, 1)), 0o644)
		},
		Script: fmt.Sprintf("grep -qF '%s' %s || sed -i 's|%s|%s|' %s", new, filePath, old, new, filePath),
	}
}

// RemoveTree deletes a directory tree; an already-absent tree is success.
func RemoveTree(description, filePath string) Step {
	return Step{
		Description: description,
		Idempotent:  true,
		Retry:       NoRetry(),
		Do: func(ctx context.Context, r sysexec.Runner) error {
			return r.RemoveAll(filePath)
		},
		Script: "rm -rf " + filePath,
	}
}

// Guarded runs a command only when the given path does not exist yet, turning
// a one-shot mutation (fallocate, mkswap) into a converging one.
func Guarded(description, guardPath, line string) Step {
	return Step{
		Description: description,
		Idempotent:  true,
		Retry:       NoRetry(),
		Do: func(ctx context.Context, r sysexec.Runner) error {
			if exists, _ := r.Stat(guardPath); exists {
				return nil
			}
			return runChecked(ctx, r, line)
		},
		Script: fmt.Sprintf("[ -e %s ] || %s", guardPath, line),
	}
}

func runChecked(ctx context.Context, r sysexec.Runner, line string) error {
	res, err := r.Run(ctx, line)
	if err != nil {
		return err
	}
	if !res.Ok() {
		return fmt.Errorf("%s: exit status %d: %s", strings.Fields(line)[0], res.Status, strings.TrimSpace(res.Output))
	}
	return nil
}

func heredoc(filePath, content string, perm os.FileMode) string {
	var b strings.Builder
	if dir := path.Dir(filePath); dir != "." {
		fmt.Fprintf(&b, "mkdir -p %s\n", dir)
	}
	fmt.Fprintf(&b, "cat > %s <<'KIOSKEOF'\n%s\nKIOSKEOF\n", filePath, strings.TrimRight(content, "\n"))
	fmt.Fprintf(&b, "chmod %o %s", uint32(perm), filePath)
	return b.String()
}
