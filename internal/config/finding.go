package config

import "fmt"

// Severity of a finding. Only Error findings make a configuration
// inapplicable; warnings are surfaced but do not block the pipeline.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Finding is one validation or parse diagnostic tied to a field. Line is zero
// unless the finding originates from parsing a file.
type Finding struct {
	Field    string
	Severity Severity
	Line     int
	Message  string
}

func (f Finding) String() string {
	if f.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", f.Severity, f.Line, f.Message)
	}
	return fmt.Sprintf("%s: %s", f.Severity, f.Message)
}

// HasErrors reports whether any finding in the list is error-severity.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == Error {
			return true
		}
	}
	return false
}
