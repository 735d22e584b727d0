// Package maintenance implements the daily routine a kiosk performs with no
// human present: upgrade everything, keep logs bounded, and apply the
// configured power policy. Every sub-task is best-effort; a failed upgrade
// must never prevent the vacuum from running, and vice versa.
package maintenance

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/archfrog/KioskForge/internal/config"
	"github.com/archfrog/KioskForge/internal/engine"
	"github.com/archfrog/KioskForge/internal/metrics"
	"github.com/archfrog/KioskForge/internal/module"
	"github.com/archfrog/KioskForge/internal/netcheck"
	"github.com/archfrog/KioskForge/internal/sysexec"
)

// DefaultLogDir is what the vacuumer prunes on a real kiosk.
const DefaultLogDir = "/var/log/journal"

// Plan is recomputed from the persisted configuration every time the daily
// job fires, so editing the on-disk file takes effect the next day.
type Plan struct {
	RunUpgrade      bool
	VacuumThreshold int64 // bytes; zero disables vacuuming
	PostAction      string
}

func PlanFromConfig(cfg *config.Configuration) Plan {
	return Plan{
		RunUpgrade:      cfg.Str("upgrade_time") != "",
		VacuumThreshold: int64(cfg.Nat("vacuum_size")) * 1024 * 1024,
		PostAction:      cfg.Str("post_action"),
	}
}

// Maintainer runs the daily routine.
type Maintainer struct {
	Log    *zap.Logger
	Engine *engine.Engine
	Prober netcheck.Prober
	LogDir string
}

// RunDaily executes the plan. Upgrades are skipped with a warning when the
// machine is offline; vacuuming still happens, because a disconnected kiosk
// fills its disk exactly like a connected one. A configured reboot is
// downgraded to none when the upgrade was skipped: rebooting without having
// changed anything only costs visitors a blank screen.
func (m *Maintainer) RunDaily(ctx context.Context, plan Plan) error {
	outcome := "ok"

	if plan.VacuumThreshold > 0 {
		if _, err := Vacuum(m.Log, m.LogDir, plan.VacuumThreshold); err != nil {
			m.Log.Error("log vacuuming failed", zap.Error(err))
			outcome = "degraded"
		}
	}

	if plan.RunUpgrade {
		if m.Prober.Online(ctx) {
			if !m.upgrade(ctx) {
				outcome = "degraded"
			}
		} else {
			m.Log.Warn("not connected to the internet, skipping upgrade tasks")
			outcome = "offline"
			if plan.PostAction == "reboot" {
				plan.PostAction = "none"
			}
		}
	}

	metrics.MaintenanceRuns.WithLabelValues(outcome).Inc()
	return m.postAction(ctx, plan.PostAction)
}

// upgrade refreshes snaps and apt packages. The snap hold is restored and the
// apt cache cleaned even when the steps in between fail. The kiosk
// application is stopped first: refreshing the Chromium snap under a running
// browser leaves a blank screen until the next boot.
func (m *Maintainer) upgrade(ctx context.Context) bool {
	ok := true
	record := func(outcomes []engine.StepOutcome) {
		for _, o := range outcomes {
			if o.State == engine.StateFailed {
				ok = false
			}
		}
	}

	record(m.Engine.RunSteps(ctx, "maintenance", []module.Step{
		stopKioskApp(),
		module.Command("Allowing snaps to update.", "snap refresh --unhold", true),
		module.Command("Refreshing all snaps.", "snap refresh", true),
		module.RemoveTree("Purging snap cache.", "/var/lib/snapd/cache"),
	}))
	record(m.Engine.RunSteps(ctx, "maintenance", []module.Step{
		module.Command("Disabling automatic upgrades of snaps.", "snap refresh --hold", true),
	}))

	record(m.Engine.RunSteps(ctx, "maintenance", []module.Step{
		module.Apt("Updating system package indices.", "apt-get update"),
		module.Apt("Upgrading all installed packages.", "apt-get upgrade -y"),
	}))
	record(m.Engine.RunSteps(ctx, "maintenance", []module.Step{
		module.Apt("Cleaning package cache.", "apt-get clean"),
	}))
	return ok
}

// stopKioskApp asks the foreground kiosk application to terminate. The
// session supervisor relaunches the browser after the upgrade (or the
// post-action reboot brings the whole session back). pkill exits 1 when
// nothing matched, which just means no session was running.
func stopKioskApp() module.Step {
	return module.Step{
		Description: "Stopping the kiosk application for the upgrade.",
		Idempotent:  true,
		Retry:       module.NoRetry(),
		Do: func(ctx context.Context, r sysexec.Runner) error {
			_, err := r.Run(ctx, "pkill -TERM chromium")
			return err
		},
		Script: "pkill -TERM chromium || true",
	}
}

func (m *Maintainer) postAction(ctx context.Context, action string) error {
	var line string
	switch action {
	case "reboot":
		line = "reboot"
	case "poweroff":
		line = "poweroff"
	default:
		m.Log.Info("daily maintenance finished, staying up")
		return nil
	}
	m.Log.Info("daily maintenance finished", zap.String("post_action", action))
	outcomes := m.Engine.RunSteps(ctx, "maintenance", []module.Step{
		module.Command("Flushing disk buffers.", "sync", true),
		module.Command("Applying post-maintenance power policy.", line, false),
	})
	for _, o := range outcomes {
		if o.State == engine.StateFailed {
			return &engine.StepError{
				Module:      "maintenance",
				Description: o.Description,
				Attempts:    o.Attempts,
				Err:         errors.New(o.Error),
			}
		}
	}
	return nil
}
