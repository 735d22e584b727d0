// Package config holds the typed model of a kiosk configuration: the fixed
// schema of settings, the line-oriented .kiosk file format, and the
// three-pass validator that gates every pipeline run.
package config

import (
	"fmt"
	"strconv"
	"strings"
)

// SchemaVersion is written into every serialized configuration so that future
// schema changes can be detected when loading old files.
const SchemaVersion = 1

const versionMarker = "# kioskforge-schema:"

// Configuration is an ordered mapping of setting name to raw value. Values
// are kept in their text form; typed access goes through the accessors, and
// correctness of the text is established by Validate.
type Configuration struct {
	Version int

	values map[string]string
	order  []string // insertion order, preserved on rewrite
}

// Default returns a configuration populated with every schema default,
// including a freshly generated user password.
func Default() *Configuration {
	cfg := New()
	seeds := map[string]string{
		"device":  "pi4b",
		"command": "https://google.com",
	}
	for _, s := range Schema() {
		switch {
		case s.Name == "user_code":
			cfg.Set(s.Name, GeneratePassword(24))
		case seeds[s.Name] != "":
			cfg.Set(s.Name, seeds[s.Name])
		default:
			cfg.Set(s.Name, s.Default)
		}
	}
	return cfg
}

// New returns an empty configuration at the current schema version.
func New() *Configuration {
	return &Configuration{
		Version: SchemaVersion,
		values:  make(map[string]string),
	}
}

// Set stores a raw value for a known setting name, preserving first-insertion
// order. Unknown names are rejected; the parser reports them as warnings
// instead of calling Set.
func (c *Configuration) Set(name, value string) error {
	if Lookup(name) == nil {
		return fmt.Errorf("unknown option: %s", name)
	}
	if _, seen := c.values[name]; !seen {
		c.order = append(c.order, name)
	}
	c.values[name] = value
	return nil
}

// IsSet reports whether the named setting was explicitly assigned.
func (c *Configuration) IsSet(name string) bool {
	_, ok := c.values[name]
	return ok
}

// Str returns the raw value of a setting, falling back to its schema default.
func (c *Configuration) Str(name string) string {
	if v, ok := c.values[name]; ok {
		return v
	}
	if s := Lookup(name); s != nil {
		return s.Default
	}
	return ""
}

// Nat returns the integer value of a Nat setting. Valid for configurations
// that passed validation; malformed text degrades to the schema default.
func (c *Configuration) Nat(name string) int {
	n, err := strconv.Atoi(c.Str(name))
	if err != nil {
		if s := Lookup(name); s != nil && s.Default != "" {
			n, _ = strconv.Atoi(s.Default)
		}
	}
	return n
}

// Flag returns the boolean value of a Bool setting.
func (c *Configuration) Flag(name string) bool {
	return boolTokens[strings.ToLower(c.Str(name))]
}

// Clone returns a deep copy with the given overrides applied on top.
func (c *Configuration) Clone(overrides map[string]string) *Configuration {
	out := New()
	out.Version = c.Version
	for _, name := range c.order {
		out.Set(name, c.values[name])
	}
	for name, value := range overrides {
		out.Set(name, value)
	}
	return out
}

// Load parses the line-oriented name=value text form. Structural problems
// (missing '=', unknown names, duplicates) become findings rather than hard
// failures so that older or hand-edited files degrade gracefully; the
// returned configuration holds every value that could be stored.
func Load(text string) (*Configuration, []Finding) {
	cfg := New()
	var findings []Finding

	for i, line := range strings.Split(text, "\n") {
		number := i + 1
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			continue
		}
		if line[0] == '#' || line[0] == ';' {
			if rest, ok := strings.CutPrefix(line, versionMarker); ok {
				if v, err := strconv.Atoi(strings.TrimSpace(rest)); err == nil {
					cfg.Version = v
				}
			}
			continue
		}
		if line[0] == '[' && strings.HasSuffix(line, "]") {
			findings = append(findings, Finding{
				Severity: Error, Line: number,
				Message: "sections are not supported in kiosk files",
			})
			continue
		}

		name, value, found := strings.Cut(line, "=")
		if !found {
			findings = append(findings, Finding{
				Severity: Error, Line: number,
				Message: "missing delimiter (=) in line",
			})
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)

		if Lookup(name) == nil {
			findings = append(findings, Finding{
				Field: name, Severity: Warning, Line: number,
				Message: fmt.Sprintf("unknown option ignored: %s", name),
			})
			continue
		}
		if cfg.IsSet(name) {
			findings = append(findings, Finding{
				Field: name, Severity: Warning, Line: number,
				Message: fmt.Sprintf("field '%s' assigned more than once; last value wins", name),
			})
		}
		cfg.Set(name, value)
	}

	return cfg, findings
}

// Serialize writes the configuration back to its text form: a left inverse of
// Load for every well-formed value. Explicitly set values come first in their
// insertion order, then any remaining schema settings at their defaults, each
// preceded by its hint so the file stays self-documenting.
func (c *Configuration) Serialize() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# KioskForge kiosk definition file.\n")
	fmt.Fprintf(&b, "# Please edit this file using your favorite text editor such as Notepad.\n")
	fmt.Fprintf(&b, "%s %d\n\n", versionMarker, c.Version)

	emit := func(s *Setting, value string) {
		fmt.Fprintf(&b, "# %s\n", s.Hint)
		fmt.Fprintf(&b, "%s=%s\n\n", s.Name, c.canonical(s, value))
	}

	for _, name := range c.order {
		emit(Lookup(name), c.values[name])
	}
	for _, s := range Schema() {
		if !c.IsSet(s.Name) {
			emit(s, s.Default)
		}
	}
	return b.String()
}

// canonical maps accepted spellings onto the tokens Serialize emits, so that
// load(serialize(c)) is value-equal to c.
func (c *Configuration) canonical(s *Setting, value string) string {
	if s.Kind == Bool {
		if v, ok := boolTokens[strings.ToLower(value)]; ok {
			return strconv.FormatBool(v)
		}
	}
	return value
}

// Names returns the setting names in serialization order.
func (c *Configuration) Names() []string {
	names := make([]string, 0, len(schema))
	names = append(names, c.order...)
	for _, s := range Schema() {
		if !c.IsSet(s.Name) {
			names = append(names, s.Name)
		}
	}
	return names
}

// Equal reports value equality over all schema settings, with both sides
// falling back to defaults for unset names.
func (c *Configuration) Equal(other *Configuration) bool {
	for _, s := range Schema() {
		a := c.canonical(s, c.Str(s.Name))
		b := other.canonical(s, other.Str(s.Name))
		if a != b {
			return false
		}
	}
	return true
}
