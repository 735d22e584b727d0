package module

import (
	"github.com/archfrog/KioskForge/internal/config"
)

// Module is a named unit of system-configuration ownership. It never mutates
// the configuration; it only reads it and renders steps.
type Module interface {
	ID() string
	AppliesWhen(cfg *config.Configuration) bool
	Plan(cfg *config.Configuration) []Step
}

// Catalog returns every module in its fixed topological order. The order
// reflects real dependencies on the target machine: the hostname must exist
// before anything logs under it, the network must be up before any package
// operation, the user account and display stack must be in place before the
// first interactive session, and cleanup runs last.
func Catalog() []Module {
	return []Module{
		Hostname{},
		Environment{},
		Network{},
		SSH{},
		Locale{},
		Firewall{},
		Packages{},
		Audio{},
		Display{},
		Swap{},
		Session{},
		UserFiles{},
		Schedule{},
		Cleanup{},
	}
}

// Plan renders the steps of every applicable module, in catalog order.
// Non-applicable modules contribute nothing at all, which is how optional
// features are switched off.
func Plan(cfg *config.Configuration) map[string][]Step {
	plans := make(map[string][]Step)
	for _, m := range Catalog() {
		if !m.AppliesWhen(cfg) {
			continue
		}
		plans[m.ID()] = m.Plan(cfg)
	}
	return plans
}

// homeDir is where everything user-owned lives on the kiosk.
func homeDir(cfg *config.Configuration) string {
	return "/home/" + cfg.Str("user_name")
}

// mediumDir is where the install medium is mounted during first boot.
func mediumDir(cfg *config.Configuration) string {
	if cfg.Str("device") == "pc" {
		return "/cdrom"
	}
	return "/boot/firmware"
}

// ConfigPath is the on-disk home of the applied configuration; the daily
// maintenance job re-reads it from here.
const ConfigPath = "/etc/kioskforge/kiosk.kiosk"
