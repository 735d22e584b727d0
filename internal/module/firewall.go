package module

import (
	"github.com/archfrog/KioskForge/internal/config"
)

// Firewall enables ufw with SSH as the only open port. Logging is disabled
// up front so the firewall never competes with the kiosk for log space.
type Firewall struct{}

func (Firewall) ID() string { return "firewall" }

func (Firewall) AppliesWhen(cfg *config.Configuration) bool { return true }

func (Firewall) Plan(cfg *config.Configuration) []Step {
	return []Step{
		Command("Disabling firewall log.", "ufw logging off", true),
		Command("Allowing SSH through firewall.", "ufw allow ssh", true),
		Command("Enabling firewall.", "ufw --force enable", true),
	}
}
