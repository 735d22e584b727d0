package module

import (
	"fmt"

	"github.com/archfrog/KioskForge/internal/config"
)

// Session arranges for the kiosk user to be logged in automatically on tty1
// and for the kiosk session to start exactly once per boot from the login
// shell's profile.
type Session struct{}

func (Session) ID() string { return "session" }

func (Session) AppliesWhen(cfg *config.Configuration) bool { return true }

func (Session) Plan(cfg *config.Configuration) []Step {
	override := fmt.Sprintf(`[Service]
ExecStart=
ExecStart=-/sbin/agetty --noissue --autologin %s %%I $TERM
Type=simple
`, cfg.Str("user_name"))

	// The marker file keeps nested login shells from starting a second
	// session. The shell then sleeps rather than exiting: systemd would
	// respawn the login and restart X11 in a loop.
	profile := `# Start the kiosk session once only (for the automatically logged in user).
if [ ! -f /tmp/kiosk_started ]; then
	touch /tmp/kiosk_started
	/usr/bin/kioskforge start
	rm -f /tmp/kiosk_started
	clear
	sleep 1d
fi`

	return []Step{
		// The installer normally creates the account (with the configured
		// password hash); this converges machines imaged another way.
		Guarded("Creating kiosk user account.", homeDir(cfg),
			"useradd -m -s /bin/bash "+cfg.Str("user_name")),
		WriteFile(
			"Creating systemd auto-login override.",
			"/etc/systemd/system/getty@tty1.service.d/override.conf",
			override,
			0o600,
		),
		AppendOnce(
			"Appending lines to ~/.bash_profile to start up the kiosk.",
			homeDir(cfg)+"/.bash_profile",
			"/tmp/kiosk_started",
			profile,
		),
		// A few files above are written as root inside the user's home.
		Command(
			"Setting ownership of all files in user's home directory to that user.",
			fmt.Sprintf("chown -R %s:%s %s", cfg.Str("user_name"), cfg.Str("user_name"), homeDir(cfg)),
			true,
		),
	}
}
