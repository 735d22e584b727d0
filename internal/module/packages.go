package module

import (
	"github.com/archfrog/KioskForge/internal/config"
)

// Packages brings the package universe to a known state: the troublemakers
// are purged, automatic upgrades are taken over from apt and snapd, and the
// whole system is upgraded once before any feature module installs anything.
type Packages struct{}

func (Packages) ID() string { return "packages" }

func (Packages) AppliesWhen(cfg *config.Configuration) bool { return true }

func (Packages) Plan(cfg *config.Configuration) []Step {
	steps := []Step{
		// unattended-upgrades goes first: it likes to grab the dpkg lock at
		// the worst possible moment.
		Apt("Purging package unattended-upgrades.",
			"apt-get purge -y unattended-upgrades"),
		RemoveTree("Removing remains of package unattended-upgrades.",
			"/var/log/unattended-upgrades"),
		Apt("Purging unwanted packages.",
			"apt-get purge -y modemmanager open-vm-tools needrestart"),
		Command("Upgrading all snaps.", "snap refresh", true),
		// Daily maintenance owns upgrades from here on.
		Command("Disabling automatic upgrades of snaps.", "snap refresh --hold", true),
		Apt("Updating system package indices.", "apt-get update"),
		Apt("Upgrading all installed packages.", "apt-get dist-upgrade -y"),
	}
	if extra := cfg.Str("user_packages"); extra != "" {
		steps = append(steps, Apt("Installing user-specified (custom) packages.",
			"apt-get install -y "+extra))
	}
	return steps
}
