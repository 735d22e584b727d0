package module

import (
	"fmt"

	"github.com/archfrog/KioskForge/internal/config"
)

// Locale configures locales, keyboard layout, and the time zone. Messages and
// error texts stay in US English so that remote support can read the logs.
type Locale struct{}

func (Locale) ID() string { return "locale" }

func (Locale) AppliesWhen(cfg *config.Configuration) bool { return true }

func (Locale) Plan(cfg *config.Configuration) []Step {
	locale := cfg.Str("locale")
	keyboard := fmt.Sprintf("XKBMODEL=\"pc105\"\nXKBLAYOUT=%q\nXKBVARIANT=\"\"\nXKBOPTIONS=\"\"\nBACKSPACE=\"guess\"\n",
		cfg.Str("keyboard"))
	return []Step{
		Command("Configuring system locales.",
			"locale-gen --purge en_US.UTF-8 "+locale, true),
		Command("Setting system locale.",
			fmt.Sprintf("update-locale LANG=%s LC_MESSAGES=en_US.UTF-8", locale), true),
		Command("Setting timezone.",
			"timedatectl set-timezone "+cfg.Str("timezone"), true),
		WriteFile("Setting console and X11 keyboard layout.",
			"/etc/default/keyboard", keyboard, 0o644),
	}
}
