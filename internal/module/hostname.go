package module

import (
	"fmt"

	"github.com/archfrog/KioskForge/internal/config"
)

// Hostname sets the machine name first: every later step logs under it.
type Hostname struct{}

func (Hostname) ID() string { return "hostname" }

func (Hostname) AppliesWhen(cfg *config.Configuration) bool { return true }

func (Hostname) Plan(cfg *config.Configuration) []Step {
	name := cfg.Str("hostname")
	set := Command("Setting host name.", "hostnamectl set-hostname "+name, true)
	set.Critical = true
	return []Step{
		set,
		AppendOnce(
			"Mapping host name to the loopback address.",
			"/etc/hosts",
			"# kioskforge hostname",
			fmt.Sprintf("# kioskforge hostname\n127.0.1.1\t%s", name),
		),
	}
}
