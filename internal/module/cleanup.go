package module

import (
	"github.com/archfrog/KioskForge/internal/config"
)

// Cleanup reclaims disk space at the very end and flushes buffers so the
// reboot that follows cannot lose anything on slow SD cards.
type Cleanup struct{}

func (Cleanup) ID() string { return "cleanup" }

func (Cleanup) AppliesWhen(cfg *config.Configuration) bool { return true }

func (Cleanup) Plan(cfg *config.Configuration) []Step {
	return []Step{
		Apt("Purging all unused packages to free disk space.",
			"apt-get autoremove --purge -y"),
		Apt("Cleaning package cache.", "apt-get clean"),
		RemoveTree("Purging snap cache to free disk space.",
			"/var/lib/snapd/cache"),
		Command("Flushing disk buffers.", "sync", true),
	}
}
