package maintenance

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/archfrog/KioskForge/internal/config"
	"github.com/archfrog/KioskForge/internal/engine"
	"github.com/archfrog/KioskForge/internal/sysexec"
)

type probeStub bool

func (p probeStub) Online(ctx context.Context) bool { return bool(p) }

func noSleep(ctx context.Context, d time.Duration) error { return ctx.Err() }

func newMaintainer(t *testing.T, fake *sysexec.Fake, online bool) *Maintainer {
	t.Helper()
	fake.Script("lsof", sysexec.Result{Status: 1})
	return &Maintainer{
		Log:    zap.NewNop(),
		Engine: engine.New(zap.NewNop(), fake, engine.WithSleep(noSleep)),
		Prober: probeStub(online),
		LogDir: fillLogDir(t, 0),
	}
}

// fillLogDir creates n 1 MB log files with ascending modification times.
func fillLogDir(t *testing.T, n int) string {
	t.Helper()
	dir := t.TempDir()
	base := time.Now().Add(-time.Duration(n) * time.Hour)
	for i := 0; i < n; i++ {
		path := filepath.Join(dir, fmt.Sprintf("system@%03d.journal", i))
		if err := os.WriteFile(path, make([]byte, 1024*1024), 0o644); err != nil {
			t.Fatal(err)
		}
		stamp := base.Add(time.Duration(i) * time.Hour)
		if err := os.Chtimes(path, stamp, stamp); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func dirSize(t *testing.T, dir string) int64 {
	t.Helper()
	var total int64
	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			info, _ := d.Info()
			total += info.Size()
		}
		return nil
	})
	return total
}

func TestVacuumRemovesOldestFilesFirst(t *testing.T) {
	// 50 MB of logs against a 20 MB retention.
	dir := fillLogDir(t, 50)
	freed, err := Vacuum(zap.NewNop(), dir, 20*1024*1024)
	if err != nil {
		t.Fatal(err)
	}
	if freed != 30*1024*1024 {
		t.Fatalf("freed %d bytes, want %d", freed, 30*1024*1024)
	}
	if got := dirSize(t, dir); got > 20*1024*1024 {
		t.Fatalf("remaining %d bytes exceeds threshold", got)
	}
	// The newest file must survive.
	newest := filepath.Join(dir, "system@049.journal")
	if _, err := os.Stat(newest); err != nil {
		t.Fatalf("newest file deleted: %v", err)
	}
}

func TestVacuumLeavesSmallDirectoriesAlone(t *testing.T) {
	dir := fillLogDir(t, 5)
	freed, err := Vacuum(zap.NewNop(), dir, 20*1024*1024)
	if err != nil {
		t.Fatal(err)
	}
	if freed != 0 {
		t.Fatalf("freed %d bytes from a directory under threshold", freed)
	}
}

func TestOfflineDailyRunSkipsUpgradeButStillVacuums(t *testing.T) {
	fake := sysexec.NewFake()
	m := newMaintainer(t, fake, false)
	m.LogDir = fillLogDir(t, 50)

	plan := PlanFromConfig(config.Default().Clone(map[string]string{
		"vacuum_size": "20",
		"post_action": "none",
	}))
	if err := m.RunDaily(context.Background(), plan); err != nil {
		t.Fatal(err)
	}
	if fake.Ran("apt-get") != 0 || fake.Ran("snap refresh") != 0 {
		t.Fatal("upgrade commands ran while offline")
	}
	if fake.Ran("pkill") != 0 {
		t.Fatal("kiosk application stopped although no upgrade ran")
	}
	if got := dirSize(t, m.LogDir); got > 20*1024*1024 {
		t.Fatalf("logs not vacuumed while offline: %d bytes remain", got)
	}
}

func TestOnlineDailyRunUpgradesAndReboots(t *testing.T) {
	fake := sysexec.NewFake()
	m := newMaintainer(t, fake, true)

	plan := PlanFromConfig(config.Default())
	if err := m.RunDaily(context.Background(), plan); err != nil {
		t.Fatal(err)
	}
	for _, cmd := range []string{
		"pkill -TERM chromium",
		"snap refresh --unhold", "snap refresh --hold",
		"apt-get update", "apt-get upgrade -y", "apt-get clean",
		"sync", "reboot",
	} {
		if fake.Ran(cmd) != 1 {
			t.Errorf("%q ran %d times, want 1", cmd, fake.Ran(cmd))
		}
	}
}

func TestKioskApplicationStoppedBeforeSnapRefresh(t *testing.T) {
	fake := sysexec.NewFake()
	m := newMaintainer(t, fake, true)

	plan := PlanFromConfig(config.Default().Clone(map[string]string{"post_action": "none"}))
	// pkill exits 1 when no browser is running; that must not degrade the run.
	fake.Script("pkill", sysexec.Result{Status: 1})
	if err := m.RunDaily(context.Background(), plan); err != nil {
		t.Fatal(err)
	}

	stop, refresh := -1, -1
	for i, cmd := range fake.Commands {
		if stop < 0 && strings.HasPrefix(cmd, "pkill -TERM chromium") {
			stop = i
		}
		if refresh < 0 && strings.HasPrefix(cmd, "snap refresh") {
			refresh = i
		}
	}
	if stop < 0 {
		t.Fatal("kiosk application never stopped before the upgrade")
	}
	if refresh >= 0 && stop > refresh {
		t.Fatalf("snap refresh at index %d ran before the stop at index %d", refresh, stop)
	}
}

func TestFailedUpgradeStillRestoresSnapHoldAndCleans(t *testing.T) {
	fake := sysexec.NewFake()
	m := newMaintainer(t, fake, true)
	fake.Script("apt-get upgrade", sysexec.Result{Status: 100, Output: "mirror down"})

	plan := PlanFromConfig(config.Default().Clone(map[string]string{"post_action": "none"}))
	if err := m.RunDaily(context.Background(), plan); err != nil {
		t.Fatal(err)
	}
	if fake.Ran("snap refresh --hold") != 1 {
		t.Fatal("snap hold not restored after a failed upgrade")
	}
	if fake.Ran("apt-get clean") != 1 {
		t.Fatal("apt cache not cleaned after a failed upgrade")
	}
}

func TestOfflineRunDowngradesRebootToNone(t *testing.T) {
	fake := sysexec.NewFake()
	m := newMaintainer(t, fake, false)

	plan := PlanFromConfig(config.Default().Clone(map[string]string{
		"post_action": "reboot",
		"vacuum_size": "0",
	}))
	if err := m.RunDaily(context.Background(), plan); err != nil {
		t.Fatal(err)
	}
	if fake.Ran("reboot") != 0 {
		t.Fatal("rebooted although the upgrade was skipped")
	}
}

func TestPostActionHonorsConfiguredPolicy(t *testing.T) {
	for _, tc := range []struct {
		action string
		want   string
	}{
		{"reboot", "reboot"},
		{"poweroff", "poweroff"},
	} {
		fake := sysexec.NewFake()
		m := newMaintainer(t, fake, true)
		plan := PlanFromConfig(config.Default().Clone(map[string]string{
			"post_action":  tc.action,
			"upgrade_time": "",
			"vacuum_size":  "0",
		}))
		if err := m.RunDaily(context.Background(), plan); err != nil {
			t.Fatal(err)
		}
		if fake.Ran(tc.want) != 1 {
			t.Errorf("post_action=%s: %q ran %d times", tc.action, tc.want, fake.Ran(tc.want))
		}
	}
}
