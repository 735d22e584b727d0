package module

import (
	"fmt"

	"github.com/archfrog/KioskForge/internal/config"
)

// Schedule persists the applied configuration and wires up the daily cron
// jobs. The maintenance job re-reads the persisted configuration every day,
// so it always follows the settings that were actually applied.
type Schedule struct{}

func (Schedule) ID() string { return "schedule" }

func (Schedule) AppliesWhen(cfg *config.Configuration) bool { return true }

// cronLine converts an HH:MM clock value into a daily root cron entry.
func cronLine(clock, command string) string {
	return fmt.Sprintf("%s %s * * *\troot\t%s\n", clock[3:5], clock[0:2], command)
}

func (Schedule) Plan(cfg *config.Configuration) []Step {
	steps := []Step{
		WriteFile(
			"Persisting applied configuration for daily maintenance.",
			ConfigPath,
			cfg.Serialize(),
			0o600,
		),
	}
	if upgrade := cfg.Str("upgrade_time"); upgrade != "" {
		steps = append(steps, WriteFile(
			"Creating cron job to upgrade system once a day at the configured time.",
			"/etc/cron.d/kioskforge-upgrade",
			"# Cron job to upgrade, clean, and reboot the system every day.\n"+
				cronLine(upgrade, "/usr/bin/kioskforge upgrade"),
			0o644,
		))
	}
	if poweroff := cfg.Str("poweroff_time"); poweroff != "" {
		steps = append(steps, WriteFile(
			"Creating cron job to power off the kiosk once a day at the configured time.",
			"/etc/cron.d/kioskforge-poweroff",
			"# Cron job to power off the kiosk every day.\n"+
				cronLine(poweroff, "poweroff"),
			0o644,
		))
	}
	return steps
}
