package module

import (
	"github.com/archfrog/KioskForge/internal/config"
)

// Audio installs the Pipewire stack. pulseaudio-utils rides along because the
// session startup uses pactl to select the output and set the volume.
type Audio struct{}

func (Audio) ID() string { return "audio" }

func (Audio) AppliesWhen(cfg *config.Configuration) bool {
	return cfg.Str("sound_card") != "none"
}

func (Audio) Plan(cfg *config.Configuration) []Step {
	return []Step{
		Apt("Installing Pipewire audio subsystem.",
			"apt-get install -y pipewire pulseaudio-utils"),
	}
}
