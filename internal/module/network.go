package module

import (
	"time"

	"gopkg.in/yaml.v3"

	"github.com/archfrog/KioskForge/internal/config"
)

// Network writes the netplan configuration, applies it, and then blocks the
// pipeline until the machine is actually online: every module after this one
// assumes a working network.
type Network struct{}

func (Network) ID() string { return "network" }

func (Network) AppliesWhen(cfg *config.Configuration) bool { return true }

// netplan document, marshalled rather than templated so that SSIDs and
// passwords with special characters survive intact.
type netplanDoc struct {
	Network netplanNetwork `yaml:"network"`
}

type netplanNetwork struct {
	Version   int                     `yaml:"version"`
	Ethernets map[string]netplanLink  `yaml:"ethernets"`
	Wifis     map[string]netplanWifi  `yaml:"wifis,omitempty"`
}

type netplanLink struct {
	DHCP4    bool `yaml:"dhcp4"`
	Optional bool `yaml:"optional"`
}

type netplanWifi struct {
	DHCP4        bool                           `yaml:"dhcp4"`
	Optional     bool                           `yaml:"optional"`
	AccessPoints map[string]netplanAccessPoint  `yaml:"access-points"`
}

type netplanAccessPoint struct {
	Password string `yaml:"password,omitempty"`
}

func renderNetplan(cfg *config.Configuration) string {
	wifiName := cfg.Str("wifi_name")
	doc := netplanDoc{
		Network: netplanNetwork{
			Version: 2,
			Ethernets: map[string]netplanLink{
				// Ethernet is optional when Wi-Fi carries the connection.
				"eth0": {DHCP4: true, Optional: wifiName != ""},
			},
		},
	}
	if wifiName != "" {
		doc.Network.Wifis = map[string]netplanWifi{
			"wlan0": {
				DHCP4:    true,
				Optional: false,
				AccessPoints: map[string]netplanAccessPoint{
					wifiName: {Password: cfg.Str("wifi_code")},
				},
			},
		}
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		panic(err) // static struct, cannot fail
	}
	return "# Generated by KioskForge. DO NOT EDIT!\n" + string(out)
}

func (Network) Plan(cfg *config.Configuration) []Step {
	steps := []Step{
		WriteFile(
			"Writing netplan network configuration.",
			"/etc/netplan/99-kioskforge.yaml",
			renderNetplan(cfg),
			0o600,
		),
		Command("Applying netplan network configuration.", "netplan apply", true),
	}

	// The network may take a while after netplan apply, especially Wi-Fi on
	// first association. Probing is retried, not the apply itself.
	wait := Command("Waiting for the network to come online.", "ping -c 1 -W 2 8.8.8.8", true)
	wait.Retry = UntilTimeout(2 * time.Minute)
	wait.Critical = true
	steps = append(steps, wait)

	if cfg.Str("wifi_name") != "" && cfg.Flag("wifi_boost") {
		// iw is needed to toggle power saving; net-tools carries netstat.
		steps = append(steps,
			Apt("Installing network tools to disable Wi-Fi power-saving mode.",
				"apt-get install -y iw net-tools"),
			Command("Disabling Wi-Fi power-saving mode.",
				"/sbin/iw wlan0 set power_save off", true),
		)
	}
	return steps
}
