package module

import (
	"github.com/archfrog/KioskForge/internal/config"
)

// Environment makes the package tooling safe for unattended use: dpkg never
// asks questions, needrestart never opens a dialogue, and apt never updates
// indices behind our back.
type Environment struct{}

func (Environment) ID() string { return "environment" }

func (Environment) AppliesWhen(cfg *config.Configuration) bool { return true }

func (Environment) Plan(cfg *config.Configuration) []Step {
	aptLocal := `// Instruct dpkg to never replace existing local configuration files during upgrades.
Dpkg::Options {
    "--force-confdef";
    "--force-confold";
}
`
	kiosklog := `# Function that displays all syslog entries made by kioskforge.
kiosklog() {
	# Use 'kiosklog -p 3' to only see kiosk-related errors, instead of all messages.
	journalctl -o short-iso -t kioskforge $*
}`

	return []Step{
		AppendOnce(
			"Configuring 'apt', 'dpkg', etc. to never interact with the user.",
			"/etc/environment",
			`DEBIAN_FRONTEND="noninteractive"`,
			`DEBIAN_FRONTEND="noninteractive"`,
		),
		ReplaceText(
			"Configuring 'needrestart' to not use interactive dialogues during upgrades.",
			"/etc/needrestart/needrestart.conf",
			"$nrconf{restart} = 'i';",
			"$nrconf{restart} = 'a';",
		),
		ReplaceText(
			"Configuring 'apt' to never update package indices on its own.",
			"/etc/apt/apt.conf.d/10periodic",
			`APT::Periodic::Update-Package-Lists "1";`,
			`APT::Periodic::Update-Package-Lists "0";`,
		),
		WriteFile(
			"Creating 'apt' configuration file to keep existing configuration files during upgrades.",
			"/etc/apt/apt.conf.d/00local",
			aptLocal,
			0o644,
		),
		AppendOnce(
			"Creating 'kiosklog' Bash function for easier debugging.",
			homeDir(cfg)+"/.bashrc",
			"kiosklog()",
			kiosklog,
		),
		Command("Enabling Network Time Protocol (NTP).", "timedatectl set-ntp on", true),
	}
}
