package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate runs the three validation passes in order and accumulates findings
// instead of stopping at the first problem. It is deterministic: findings come
// out in schema order within each pass, and running it twice on the same
// configuration yields identical lists.
//
// One side effect: absent settings that have a sensible default receive it,
// and a blank hostname receives a generated kioskforge-NNNN name, so that an
// applicable configuration is also a complete one.
func Validate(cfg *Configuration) []Finding {
	var findings []Finding
	findings = append(findings, presencePass(cfg)...)
	findings = append(findings, domainPass(cfg)...)
	findings = append(findings, crossFieldPass(cfg)...)
	return findings
}

func presencePass(cfg *Configuration) []Finding {
	var findings []Finding
	for _, s := range Schema() {
		if !cfg.IsSet(s.Name) || cfg.Str(s.Name) == "" {
			switch {
			case s.Name == "hostname":
				cfg.Set(s.Name, GenerateHostname())
				continue
			case s.Default != "":
				cfg.Set(s.Name, s.Default)
				continue
			}
		}
		if s.Required && cfg.Str(s.Name) == "" {
			findings = append(findings, Finding{
				Field: s.Name, Severity: Error,
				Message: fmt.Sprintf("missing value in required field '%s'", s.Name),
			})
		}
	}
	return findings
}

func domainPass(cfg *Configuration) []Finding {
	var findings []Finding
	for _, s := range Schema() {
		value := cfg.Str(s.Name)
		if value == "" {
			continue // blanks are the presence pass's business
		}
		if err := s.Check(value); err != nil {
			findings = append(findings, Finding{Field: s.Name, Severity: Error, Message: err.Error()})
			continue
		}
		// The time zone list is the host's zone database, not a frozen table.
		if s.Name == "timezone" && value != "" {
			if _, err := time.LoadLocation(value); err != nil {
				findings = append(findings, Finding{
					Field: s.Name, Severity: Error,
					Message: fmt.Sprintf("unknown time zone in field 'timezone': %s", value),
				})
			}
		}
	}
	return findings
}

func crossFieldPass(cfg *Configuration) []Finding {
	var findings []Finding

	device := cfg.Str("device")
	soundCard := cfg.Str("sound_card")

	// The analogue jack only exists on the Pi 4B.
	if soundCard == "jack" && device != "pi4b" {
		findings = append(findings, Finding{
			Field: "sound_card", Severity: Error,
			Message: fmt.Sprintf("sound card 'jack' is not available on device '%s'", device),
		})
	}
	// Warn only when the level was deliberately raised above its default;
	// a freshly created file carries the default level with sound_card=none.
	if soundCard == "none" && cfg.IsSet("sound_level") &&
		cfg.Str("sound_level") != Lookup("sound_level").Default && cfg.Nat("sound_level") > 0 {
		findings = append(findings, Finding{
			Field: "sound_level", Severity: Warning,
			Message: "sound_level is ignored because sound_card is 'none'",
		})
	}

	if cfg.Str("wifi_code") != "" && cfg.Str("wifi_name") == "" {
		findings = append(findings, Finding{
			Field: "wifi_code", Severity: Warning,
			Message: "wifi_code is set but wifi_name is blank; Wi-Fi stays disabled",
		})
	}

	if cfg.Flag("cpu_boost") && device != "pi4b" {
		findings = append(findings, Finding{
			Field: "cpu_boost", Severity: Warning,
			Message: fmt.Sprintf("cpu_boost has no effect on device '%s'", device),
		})
	}

	// A command that points at local files needs those files copied over.
	if localCommand(cfg) && cfg.Str("user_folder") == "" {
		findings = append(findings, Finding{
			Field: "command", Severity: Error,
			Message: "command refers to local files but user_folder is blank",
		})
	}

	if cfg.Nat("idle_timeout") > 0 && cfg.Str("type") != "web" {
		findings = append(findings, Finding{
			Field: "idle_timeout", Severity: Warning,
			Message: "idle_timeout only affects 'web' type kiosks",
		})
	}

	return findings
}

// localCommand reports whether the startup command depends on files that must
// come from the user folder: a file:// URL for web kiosks, or any command at
// all for cli kiosks (the binary is not part of the base system).
func localCommand(cfg *Configuration) bool {
	command := cfg.Str("command")
	if command == "" {
		return false
	}
	switch cfg.Str("type") {
	case "web":
		return strings.HasPrefix(command, "file://")
	case "cli":
		return !strings.HasPrefix(command, "/usr/") && !strings.HasPrefix(command, "/bin/")
	}
	return false
}
