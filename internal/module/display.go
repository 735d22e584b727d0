package module

import (
	"fmt"

	"github.com/archfrog/KioskForge/internal/config"
)

// Display sets up the graphical stack for web kiosks: X11 with Openbox as a
// bare-bones window manager, Chromium in kiosk mode, and the configuration
// files that rotate the screen and the touch panel together.
type Display struct{}

func (Display) ID() string { return "display" }

func (Display) AppliesWhen(cfg *config.Configuration) bool {
	return cfg.Str("type") == "web"
}

const v3dConf = `Section "OutputClass"
    Identifier "vc4"
    MatchDriver "vc4"
    Driver "modesetting"
    Option "PrimaryGPU" "true"
EndSection
`

const gldriverDeb = "gldriver-test_0.15_all.deb"

func (Display) Plan(cfg *config.Configuration) []Step {
	steps := []Step{
		Apt("Installing X Windows and OpenBox window manager.",
			"apt-get install -y --no-install-recommends xserver-xorg x11-xserver-utils xinit openbox xdg-utils"),
	}

	// Ubuntu Server on the Pi 5 needs an out-of-archive driver shim for X11
	// to discover its GPU and screens.
	if cfg.Str("device") == "pi5" {
		steps = append(steps,
			Apt("Installing Raspberry Pi system configuration tool.",
				"apt-get install -y --no-install-recommends raspi-config"),
			Command("Downloading X11 graphics driver for Pi 5.",
				"wget -q https://archive.raspberrypi.org/debian/pool/main/g/gldriver-test/"+gldriverDeb, true),
			Apt("Installing X11 graphics driver for Pi 5.",
				"apt-get install -y ./"+gldriverDeb),
			Command("Removing downloaded graphics driver for Pi 5.",
				"rm -f "+gldriverDeb, true),
			WriteFile("Creating X11 configuration file to use Pi 5 graphics driver.",
				"/etc/X11/xorg.conf.d/99-v3d.conf", v3dConf, 0o444),
		)
	}

	// The touch panel is rotated by X11 itself; the display is rotated later
	// by xrandr in the Openbox session. Harmless on non-touch displays.
	if rot := cfg.Str("screen_rotation"); rot != "none" {
		conf := fmt.Sprintf(`Section "InputClass"
	Identifier "Coordinate Transformation Matrix"
	MatchIsTouchscreen "on"
	MatchDevicePath "/dev/input/event*"
	MatchDriver "libinput"
	Option "CalibrationMatrix" "%s"
EndSection
`, config.Rotations[rot])
		steps = append(steps, WriteFile(
			"Creating X11 configuration file to rotate touch panel (if any).",
			"/etc/X11/xorg.conf.d/99-kiosk-set-touch-rotation.conf", conf, 0o444))
	}

	// Openbox ignores the shebang and always uses dash, so the autostart file
	// has to be a plain dash script.
	autostart := "#!/usr/bin/dash\n/usr/bin/kioskforge session\n"
	steps = append(steps,
		WriteFile("Creating OpenBox startup script.",
			homeDir(cfg)+"/.config/openbox/autostart", autostart, 0o700),
		Command("Installing Chromium web browser.", "snap install chromium", true),
		// Chromium drags cups in; a kiosk has no business printing.
		Command("Purging Common Unix Printing System (cups) installed automatically with Chromium.",
			"snap remove --purge cups", true),
		WriteFile("Disabling Translate feature in Chromium web browser.",
			homeDir(cfg)+"/snap/chromium/common/chromium/Default/Preferences",
			`{"translate":{"enabled":false}}`, 0o600),
		// Needed to detect idle periods even when idle_timeout is zero.
		Apt("Installing 'xprintidle' used to restart browser whenever idle timeout expires.",
			"apt-get install -y --no-install-recommends xprintidle"),
	)
	return steps
}
