package module

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/archfrog/KioskForge/internal/sysexec"
)

func TestWriteFileConverges(t *testing.T) {
	fake := sysexec.NewFake()
	step := WriteFile("write", "/etc/demo/demo.conf", "hello\n", 0o644)

	for i := 0; i < 2; i++ {
		if err := step.Do(context.Background(), fake); err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
	}
	if got := string(fake.Files["/etc/demo/demo.conf"]); got != "hello\n" {
		t.Fatalf("content = %q", got)
	}
	if !fake.Dirs["/etc/demo"] {
		t.Fatalf("parent directory not created:\n%s", fake.Dump())
	}
}

func TestAppendOnceGuardedByMarker(t *testing.T) {
	fake := sysexec.NewFake()
	step := AppendOnce("append", "/etc/hosts", "# kiosk", "# kiosk\n127.0.1.1\tbox")

	for i := 0; i < 3; i++ {
		if err := step.Do(context.Background(), fake); err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
	}
	got := string(fake.Files["/etc/hosts"])
	if strings.Count(got, "127.0.1.1") != 1 {
		t.Fatalf("block appended more than once:\n%s", got)
	}
}

func TestAppendOncePreservesExistingContent(t *testing.T) {
	fake := sysexec.NewFake()
	fake.Files["/etc/fstab"] = []byte("LABEL=writable / ext4 defaults 0 1")

	step := AppendOnce("append", "/etc/fstab", "/swapfile", "/swapfile\tnone\tswap\tsw\t0\t0")
	if err := step.Do(context.Background(), fake); err != nil {
		t.Fatal(err)
	}
	got := string(fake.Files["/etc/fstab"])
	if !strings.HasPrefix(got, "LABEL=writable") || !strings.Contains(got, "/swapfile") {
		t.Fatalf("unexpected fstab:\n%s", got)
	}
}

func TestReplaceTextAlreadyConverged(t *testing.T) {
	fake := sysexec.NewFake()
	fake.Files["/etc/ssh/sshd_config"] = []byte("PermitRootLogin no\n")

	step := ReplaceText("harden", "/etc/ssh/sshd_config",
		"#PermitRootLogin prohibit-password", "PermitRootLogin no")
	if err := step.Do(context.Background(), fake); err != nil {
		t.Fatalf("converged file must be accepted: %v", err)
	}
}

func TestReplaceTextMissingAnchorFails(t *testing.T) {
	fake := sysexec.NewFake()
	fake.Files["/etc/ssh/sshd_config"] = []byte("# nothing here\n")

	step := ReplaceText("harden", "/etc/ssh/sshd_config",
		"#PermitRootLogin prohibit-password", "PermitRootLogin no")
	if err := step.Do(context.Background(), fake); err == nil {
		t.Fatal("expected error for missing anchor text")
	}
}

func TestAptReportsLockedWhileLockHeld(t *testing.T) {
	fake := sysexec.NewFake()
	// lsof exits 0 while some process holds the lock file.
	fake.Script("lsof /var/lib/dpkg/lock-frontend", sysexec.Result{Status: 0})

	step := Apt("update", "apt-get update")
	if err := step.Do(context.Background(), fake); !errors.Is(err, ErrLocked) {
		t.Fatalf("err = %v, want ErrLocked", err)
	}
	if fake.Ran("apt-get") != 0 {
		t.Fatal("apt-get must not run while the lock is held")
	}
}

func TestAptRunsOnceLockIsFree(t *testing.T) {
	fake := sysexec.NewFake()
	fake.Script("lsof", sysexec.Result{Status: 1})

	step := Apt("update", "apt-get update")
	if err := step.Do(context.Background(), fake); err != nil {
		t.Fatal(err)
	}
	if fake.Ran("apt-get update") != 1 {
		t.Fatalf("apt-get update ran %d times", fake.Ran("apt-get update"))
	}
}

func TestGuardedSkipsWhenPathExists(t *testing.T) {
	fake := sysexec.NewFake()
	fake.Files["/swapfile"] = []byte("x")

	step := Guarded("alloc", "/swapfile", "fallocate -l 1G /swapfile")
	if err := step.Do(context.Background(), fake); err != nil {
		t.Fatal(err)
	}
	if fake.Ran("fallocate") != 0 {
		t.Fatal("guarded command ran although the guard path exists")
	}
}

func TestCommandSurfacesExitStatus(t *testing.T) {
	fake := sysexec.NewFake()
	fake.Script("ufw", sysexec.Result{Status: 1, Output: "permission denied"})

	step := Command("fw", "ufw --force enable", true)
	err := step.Do(context.Background(), fake)
	if err == nil || !strings.Contains(err.Error(), "permission denied") {
		t.Fatalf("err = %v", err)
	}
}
