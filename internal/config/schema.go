package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Kind is the value type of a setting. The set is closed: every setting in the
// schema is one of these, and validation dispatches on it.
type Kind int

const (
	String Kind = iota
	Nat
	Bool
	Clock // time of day, HH:MM
	Enum
	Password
	Pattern // string validated by a regular expression
)

// Setting describes one named entry of a kiosk configuration: its type, its
// default, and the constraint its value must satisfy.
type Setting struct {
	Name     string
	Kind     Kind
	Required bool   // blank after defaulting is an error
	Default  string // canonical text form; empty means no default
	Hint     string
	Choices  []string       // Enum only
	Retired  []string       // Enum only: recognized values no longer supported
	Low      int            // Nat lower bound
	High     int            // Nat upper bound
	Match    *regexp.Regexp // Pattern only
}

// BcryptMaxInput is the longest password bcrypt hashes without silent
// truncation; longer inputs are rejected rather than truncated.
const BcryptMaxInput = 72

var boolTokens = map[string]bool{
	"true": true, "yes": true, "y": true, "1": true,
	"false": false, "no": false, "n": false, "0": false,
}

// Check validates a raw value against the setting's own constraint. It does
// not consider other settings; cross-field rules live in Validate.
func (s *Setting) Check(raw string) error {
	if raw == "" {
		if s.Required {
			return fmt.Errorf("missing value in field '%s'", s.Name)
		}
		return nil
	}

	switch s.Kind {
	case String:
		return nil
	case Nat:
		if strings.HasPrefix(raw, "-") {
			return fmt.Errorf("invalid positive integer in field '%s': %s", s.Name, raw)
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid integer in field '%s': %s", s.Name, raw)
		}
		if n < s.Low || n > s.High {
			return fmt.Errorf("value outside bounds (%d..%d) in field '%s': %s", s.Low, s.High, s.Name, raw)
		}
		return nil
	case Bool:
		if _, ok := boolTokens[strings.ToLower(raw)]; !ok {
			return fmt.Errorf("invalid value in field '%s': %s", s.Name, raw)
		}
		return nil
	case Clock:
		// Zero-padded HH:MM; the cron renderer slices the value by position.
		if len(raw) != 5 || raw[2] != ':' {
			return fmt.Errorf("invalid time specification in field '%s': %s", s.Name, raw)
		}
		if _, err := time.Parse("15:04", raw); err != nil {
			return fmt.Errorf("invalid time specification in field '%s': %s", s.Name, raw)
		}
		return nil
	case Enum:
		for _, c := range s.Choices {
			if raw == c {
				return nil
			}
		}
		for _, c := range s.Retired {
			if raw == c {
				return fmt.Errorf("value '%s' in field '%s' is no longer supported", raw, s.Name)
			}
		}
		return fmt.Errorf("invalid value in field '%s': %s", s.Name, raw)
	case Password:
		if strings.HasPrefix(raw, "$") {
			return fmt.Errorf("password in field '%s' cannot begin with a dollar sign", s.Name)
		}
		if len(raw) > BcryptMaxInput {
			return fmt.Errorf("password in field '%s' too long - cannot exceed %d characters", s.Name, BcryptMaxInput)
		}
		return nil
	case Pattern:
		if !s.Match.MatchString(raw) {
			return fmt.Errorf("invalid value in field '%s': %s", s.Name, raw)
		}
		return nil
	}
	return fmt.Errorf("unknown kind for field '%s'", s.Name)
}

// Rotations maps the screen_rotation setting onto X11 coordinate
// transformation matrices. Verified against the X InputCoordinateTransformation wiki.
var Rotations = map[string]string{
	"none":  "1 0 0 0 1 0 0 0 1",
	"left":  "0 -1 1 1 0 0 0 0 1",
	"flip":  "-1 0 1 0 -1 1 0 0 1",
	"right": "0 1 0 -1 0 1 0 0 1",
}

var (
	hostnamePattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,63}$`)
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,32}$`)
	wifiNamePattern = regexp.MustCompile(`^.{1,32}$`)
	wifiCodePattern = regexp.MustCompile(`^[\x20-\x7e\x{00a0}-\x{00ff}]{8,63}$`)
)

// Keyboards and Locales are deliberately short: they carry the layouts and
// locales the product has been deployed with. Timezones are validated against
// the host zone database instead of a frozen list.
var Keyboards = []string{
	"us", "gb", "de", "dk", "se", "no", "fi", "fr", "es", "it", "nl", "pl", "pt", "ch",
}

var Locales = []string{
	"en_US.UTF-8", "en_GB.UTF-8", "da_DK.UTF-8", "de_DE.UTF-8", "sv_SE.UTF-8",
	"nb_NO.UTF-8", "fi_FI.UTF-8", "fr_FR.UTF-8", "es_ES.UTF-8", "it_IT.UTF-8",
	"nl_NL.UTF-8", "pl_PL.UTF-8", "pt_PT.UTF-8",
}

// Schema is the fixed, ordered set of kiosk settings. Identity is the name;
// order is the order settings appear in a freshly created configuration file.
func Schema() []*Setting {
	return schema
}

var schema = []*Setting{
	{Name: "comment", Kind: String,
		Hint: "A free-form note about this kiosk machine, for your records."},
	// device and command carry no schema default: there is no sensible guess
	// for the target hardware or the target URL, so their absence is an error
	// instead of a silent fallback. 'create' seeds starting values for both.
	{Name: "device", Kind: Enum, Required: true,
		Choices: []string{"pi4b", "pi5", "pc"},
		Hint:    "The hardware type of the kiosk: pi4b, pi5, or pc."},
	// 'x11' kiosks existed in early releases; the value is still recognized
	// so old files fail with a pointed message instead of a generic one.
	{Name: "type", Kind: Enum, Required: true, Default: "web",
		Choices: []string{"web", "cli"},
		Retired: []string{"x11"},
		Hint:    "The kind of kiosk: 'web' shows a website, 'cli' runs a console app."},
	{Name: "command", Kind: String, Required: true,
		Hint: "The URL to display (web) or the command to run (cli) at startup."},
	{Name: "hostname", Kind: Pattern, Match: hostnamePattern,
		Hint: "Unqualified host name; blank means a kioskforge-NNNN name is generated."},
	{Name: "timezone", Kind: String, Required: true, Default: "America/Los_Angeles",
		Hint: "IANA time zone of the kiosk's location, e.g. Europe/Copenhagen."},
	{Name: "keyboard", Kind: Enum, Required: true, Default: "us", Choices: Keyboards,
		Hint: "Keyboard layout, mostly relevant for SSH access and the browser."},
	{Name: "locale", Kind: Enum, Required: true, Default: "en_US.UTF-8", Choices: Locales,
		Hint: "System locale; affects dates, currencies, and sorting."},
	{Name: "sound_card", Kind: Enum, Required: true, Default: "none",
		Choices: []string{"none", "jack", "hdmi1", "hdmi2"},
		Hint:    "Audio output to use. 'jack' only exists on the Pi 4B."},
	{Name: "sound_level", Kind: Nat, Required: true, Default: "80", Low: 0, High: 100,
		Hint: "Logarithmic audio level, 0 through 100. Ignored when sound_card=none."},
	{Name: "mouse", Kind: Bool, Required: true, Default: "false",
		Hint: "Whether the mouse cursor is visible. Keep off for touch screens."},
	{Name: "user_name", Kind: Pattern, Required: true, Default: "kiosk", Match: usernamePattern,
		Hint: "The non-root Linux user that runs the kiosk. Letters, digits, underscores."},
	{Name: "user_code", Kind: Password, Required: true,
		Hint: "Password for user_name. At most 72 characters (bcrypt input limit)."},
	{Name: "ssh_key", Kind: String,
		Hint: "Public SSH key for remote access. Blank disables SSH key login."},
	{Name: "wifi_name", Kind: Pattern, Match: wifiNamePattern,
		Hint: "Wi-Fi network name (SSID). Blank disables Wi-Fi entirely."},
	{Name: "wifi_code", Kind: Pattern, Match: wifiCodePattern,
		Hint: "Wi-Fi password, 8 to 63 printable characters. Blank means an open network."},
	{Name: "wifi_boost", Kind: Bool, Required: true, Default: "true",
		Hint: "Disable Wi-Fi power saving for faster, more stable networking."},
	{Name: "cpu_boost", Kind: Bool, Required: true, Default: "true",
		Hint: "Overclock the CPU. Only has an effect on the Pi 4B."},
	{Name: "swap_size", Kind: Nat, Required: true, Default: "4", Low: 0, High: 128,
		Hint: "Size of the swap file in gigabytes. Zero disables swap."},
	{Name: "vacuum_size", Kind: Nat, Required: true, Default: "256", Low: 0, High: 4096,
		Hint: "Maximum total size of system logs in megabytes. Zero means unlimited."},
	{Name: "upgrade_time", Kind: Clock, Default: "05:00",
		Hint: "Time of day (HH:MM) for daily maintenance. Blank disables it."},
	{Name: "poweroff_time", Kind: Clock,
		Hint: "Time of day (HH:MM) to power the kiosk off. Blank disables it."},
	{Name: "post_action", Kind: Enum, Required: true, Default: "reboot",
		Choices: []string{"reboot", "poweroff", "none"},
		Hint:    "What to do after daily maintenance completes."},
	{Name: "idle_timeout", Kind: Nat, Required: true, Default: "0", Low: 0, High: 24 * 60 * 60,
		Hint: "Seconds of inactivity before the browser restarts. Zero disables."},
	{Name: "screen_rotation", Kind: Enum, Required: true, Default: "none",
		Choices: []string{"none", "left", "flip", "right"},
		Hint:    "Rotation of the screen and touch panel."},
	{Name: "user_folder", Kind: String,
		Hint: "Local folder copied to the kiosk user's home directory, if any."},
	{Name: "user_packages", Kind: String,
		Hint: "Space-separated extra Ubuntu packages to install while forging."},
}

var schemaIndex = func() map[string]*Setting {
	m := make(map[string]*Setting, len(schema))
	for _, s := range schema {
		m[s.Name] = s
	}
	return m
}()

// Lookup returns the schema setting with the given name, or nil.
func Lookup(name string) *Setting {
	return schemaIndex[name]
}

// GenerateHostname produces a host name of the form kioskforge-N with N drawn
// from [0, 2^31).
func GenerateHostname() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1<<31))
	if err != nil {
		panic(err) // crypto/rand failing means the platform is broken
	}
	return fmt.Sprintf("kioskforge-%d", n.Int64())
}

// GeneratePassword returns a URL-safe random password of roughly the given
// entropy in bytes.
func GeneratePassword(bytes int) string {
	buf := make([]byte, bytes)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
