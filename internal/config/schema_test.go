package config

import (
	"strings"
	"testing"
	"time"
)

func TestCheckNatBounds(t *testing.T) {
	s := Lookup("sound_level")
	for _, tc := range []struct {
		raw string
		ok  bool
	}{
		{"0", true}, {"100", true}, {"101", false}, {"-1", false}, {"abc", false},
	} {
		err := s.Check(tc.raw)
		if (err == nil) != tc.ok {
			t.Errorf("sound_level=%q: err = %v", tc.raw, err)
		}
	}
}

func TestCheckClock(t *testing.T) {
	s := Lookup("upgrade_time")
	for _, tc := range []struct {
		raw string
		ok  bool
	}{
		{"05:00", true}, {"23:59", true}, {"24:00", false}, {"5:00", false}, {"0500", false},
	} {
		err := s.Check(tc.raw)
		if (err == nil) != tc.ok {
			t.Errorf("upgrade_time=%q: err = %v", tc.raw, err)
		}
	}
}

func TestCheckPasswordLimits(t *testing.T) {
	s := Lookup("user_code")
	if err := s.Check(strings.Repeat("x", BcryptMaxInput)); err != nil {
		t.Errorf("72-character password rejected: %v", err)
	}
	if err := s.Check(strings.Repeat("x", BcryptMaxInput+1)); err == nil {
		t.Error("73-character password accepted")
	}
	if err := s.Check("$2b$12$abcdef"); err == nil {
		t.Error("password beginning with '$' accepted")
	}
}

func TestCheckWifiCodePattern(t *testing.T) {
	s := Lookup("wifi_code")
	if err := s.Check("short"); err == nil {
		t.Error("7-character Wi-Fi password accepted")
	}
	if err := s.Check("sesame-open"); err != nil {
		t.Errorf("valid Wi-Fi password rejected: %v", err)
	}
	if err := s.Check("søme-nørdic-påss"); err != nil {
		t.Errorf("latin-1 Wi-Fi password rejected: %v", err)
	}
}

func TestRetiredTypeRejectedWithDistinctMessage(t *testing.T) {
	s := Lookup("type")
	err := s.Check("x11")
	if err == nil {
		t.Fatal("retired type 'x11' accepted")
	}
	if !strings.Contains(err.Error(), "no longer supported") {
		t.Fatalf("retired type got the generic message: %v", err)
	}
	if err := s.Check("gopher"); err == nil || strings.Contains(err.Error(), "no longer supported") {
		t.Fatalf("unknown type should get the generic message: %v", err)
	}
}

func TestGeneratedHostnameIsValid(t *testing.T) {
	s := Lookup("hostname")
	for i := 0; i < 16; i++ {
		name := GenerateHostname()
		if err := s.Check(name); err != nil {
			t.Fatalf("generated hostname %q fails its own schema: %v", name, err)
		}
	}
}

func TestRotationMatricesCoverAllChoices(t *testing.T) {
	for _, choice := range Lookup("screen_rotation").Choices {
		if _, ok := Rotations[choice]; !ok {
			t.Errorf("no rotation matrix for %q", choice)
		}
	}
}

func TestSchemaDefaultsPassTheirOwnChecks(t *testing.T) {
	for _, s := range Schema() {
		if s.Default == "" {
			continue
		}
		if err := s.Check(s.Default); err != nil {
			t.Errorf("default for %s fails validation: %v", s.Name, err)
		}
		if s.Name == "timezone" {
			if _, err := time.LoadLocation(s.Default); err != nil {
				t.Errorf("default timezone unknown: %v", err)
			}
		}
	}
}
