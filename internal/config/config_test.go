package config

import (
	"strings"
	"testing"
)

func TestSerializeLoadRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Set("hostname", "museum-lobby")
	cfg.Set("wifi_name", "backstage")
	cfg.Set("wifi_code", "sesame-open")
	cfg.Set("wifi_boost", "yes") // accepted spelling, canonicalized on write

	loaded, findings := Load(cfg.Serialize())
	for _, f := range findings {
		t.Errorf("unexpected finding: %s", f)
	}
	if !loaded.Equal(cfg) {
		t.Fatal("load(serialize(c)) differs from c")
	}
	if loaded.Version != SchemaVersion {
		t.Fatalf("version = %d", loaded.Version)
	}
}

func TestSerializeCanonicalizesBooleans(t *testing.T) {
	cfg := Default()
	cfg.Set("wifi_boost", "Yes")
	out := cfg.Serialize()
	if !strings.Contains(out, "wifi_boost=true") {
		t.Fatalf("boolean not canonicalized:\n%s", out)
	}
}

func TestLoadReportsMissingDelimiterWithLine(t *testing.T) {
	_, findings := Load("comment=lobby\nbroken line\n")
	if len(findings) != 1 {
		t.Fatalf("findings = %v", findings)
	}
	f := findings[0]
	if f.Severity != Error || f.Line != 2 {
		t.Fatalf("finding = %+v", f)
	}
}

func TestLoadWarnsOnUnknownOption(t *testing.T) {
	cfg, findings := Load("no_such_option=1\ncomment=lobby\n")
	if len(findings) != 1 || findings[0].Severity != Warning {
		t.Fatalf("findings = %v", findings)
	}
	if cfg.Str("comment") != "lobby" {
		t.Fatal("valid assignment lost after an unknown option")
	}
}

func TestLoadDuplicateAssignmentLastWins(t *testing.T) {
	cfg, findings := Load("comment=first\ncomment=second\n")
	if len(findings) != 1 || findings[0].Severity != Warning {
		t.Fatalf("findings = %v", findings)
	}
	if cfg.Str("comment") != "second" {
		t.Fatalf("comment = %q", cfg.Str("comment"))
	}
}

func TestLoadRejectsSections(t *testing.T) {
	_, findings := Load("[general]\ncomment=lobby\n")
	if len(findings) != 1 || findings[0].Severity != Error {
		t.Fatalf("findings = %v", findings)
	}
}

func TestLoadSkipsCommentsAndBlankLines(t *testing.T) {
	_, findings := Load("# a comment\n; another\n\n   \ncomment=lobby\n")
	if len(findings) != 0 {
		t.Fatalf("findings = %v", findings)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	cfg := Default()
	clone := cfg.Clone(map[string]string{"comment": "copy"})
	clone.Set("device", "pi5")
	if cfg.Str("device") == "pi5" {
		t.Fatal("clone shares storage with the original")
	}
	if clone.Str("comment") != "copy" {
		t.Fatal("override not applied")
	}
}

func TestDefaultGeneratesPassword(t *testing.T) {
	a, b := Default(), Default()
	if a.Str("user_code") == "" || a.Str("user_code") == b.Str("user_code") {
		t.Fatal("user_code must be freshly generated per configuration")
	}
}
