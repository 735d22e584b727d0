package module

import (
	"strings"
	"testing"

	"github.com/archfrog/KioskForge/internal/config"
)

func planFor(t *testing.T, overrides map[string]string) map[string][]Step {
	t.Helper()
	cfg := config.Default().Clone(overrides)
	cfg.Set("hostname", "kiosk-test")
	cfg.Set("user_name", "kiosk")
	return Plan(cfg)
}

func TestDisabledFeaturesEmitNothing(t *testing.T) {
	plans := planFor(t, map[string]string{
		"sound_card":  "none",
		"swap_size":   "0",
		"user_folder": "",
		"type":        "cli",
		"command":     "/usr/bin/true",
	})
	for _, id := range []string{"audio", "swap", "userfiles", "display"} {
		if _, ok := plans[id]; ok {
			t.Errorf("module %q planned although its feature is disabled", id)
		}
	}
}

func TestEnabledFeaturesEmitSteps(t *testing.T) {
	plans := planFor(t, map[string]string{
		"sound_card":  "hdmi1",
		"swap_size":   "2",
		"user_folder": "content",
	})
	for _, id := range []string{"audio", "swap", "userfiles", "display"} {
		if len(plans[id]) == 0 {
			t.Errorf("module %q planned no steps", id)
		}
	}
}

func TestCatalogOrderIsStable(t *testing.T) {
	want := []string{
		"hostname", "environment", "network", "ssh", "locale", "firewall",
		"packages", "audio", "display", "swap", "session", "userfiles",
		"schedule", "cleanup",
	}
	catalog := Catalog()
	if len(catalog) != len(want) {
		t.Fatalf("catalog has %d modules, want %d", len(catalog), len(want))
	}
	for i, m := range catalog {
		if m.ID() != want[i] {
			t.Errorf("catalog[%d] = %q, want %q", i, m.ID(), want[i])
		}
	}
}

func TestEveryStepHasDescriptionAndScript(t *testing.T) {
	plans := planFor(t, map[string]string{
		"sound_card":  "jack",
		"swap_size":   "2",
		"user_folder": "content",
		"wifi_name":   "backstage",
		"wifi_code":   "sesame-open",
		"wifi_boost":  "true",
		"ssh_key":     "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAA tester",
		"device":      "pi5",
	})
	for id, steps := range plans {
		for i, s := range steps {
			if s.Description == "" {
				t.Errorf("%s step %d has no description", id, i)
			}
			if s.Script == "" {
				t.Errorf("%s step %d (%s) has no script rendition", id, i, s.Description)
			}
			if s.Do == nil {
				t.Errorf("%s step %d (%s) has no action", id, i, s.Description)
			}
		}
	}
}

func TestScheduleRendersCronEntries(t *testing.T) {
	plans := planFor(t, map[string]string{
		"upgrade_time":  "03:30",
		"poweroff_time": "22:00",
	})
	var upgrade, poweroff string
	for _, s := range plans["schedule"] {
		if strings.Contains(s.Script, "kioskforge-upgrade") {
			upgrade = s.Script
		}
		if strings.Contains(s.Script, "kioskforge-poweroff") {
			poweroff = s.Script
		}
	}
	if !strings.Contains(upgrade, "30 03 * * *") {
		t.Errorf("upgrade cron entry not rendered:\n%s", upgrade)
	}
	if !strings.Contains(poweroff, "00 22 * * *") {
		t.Errorf("poweroff cron entry not rendered:\n%s", poweroff)
	}
}

func TestNetplanIncludesWifiOnlyWhenConfigured(t *testing.T) {
	cfg := config.Default().Clone(map[string]string{
		"wifi_name": "backstage",
		"wifi_code": "sesame-open",
	})
	doc := renderNetplan(cfg)
	if !strings.Contains(doc, "backstage") || !strings.Contains(doc, "sesame-open") {
		t.Fatalf("wifi block missing:\n%s", doc)
	}

	wired := renderNetplan(config.Default())
	if strings.Contains(wired, "wifis") {
		t.Fatalf("wifi block rendered without wifi_name:\n%s", wired)
	}
}

func TestDisplayRotationUsesCalibrationMatrix(t *testing.T) {
	plans := planFor(t, map[string]string{"screen_rotation": "left"})
	var found bool
	for _, s := range plans["display"] {
		if strings.Contains(s.Script, config.Rotations["left"]) {
			found = true
		}
	}
	if !found {
		t.Fatal("touch rotation matrix not rendered for screen_rotation=left")
	}
}
