// Package diag provides structured diagnostics for the beacon generator
// pipeline. Diagnostics carry a stable code, a severity, and a source
// location, and can be rendered for terminals or as JSON for tooling.
package diag

import (
	"encoding/json"
	"fmt"
)

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for Severity.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for Severity.
func (s *Severity) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}

	switch str {
	case "info":
		*s = Info
	case "warning":
		*s = Warning
	default:
		*s = Error
	}
	return nil
}

// Location is a position in a Go source file.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// String formats the location in file:line:column form.
func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Diagnostic is one validation finding for a candidate declaration. A
// candidate that fails validation contributes diagnostics and no generated
// member; diagnostics are reported, never thrown.
type Diagnostic struct {
	Code       Code     `json:"code"`
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	Location   Location `json:"location"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// Error implements the error interface.
func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s: %s: %s", d.Location, d.Severity, d.Code, d.Message)
}

// WithSuggestion attaches a fix hint.
func (d Diagnostic) WithSuggestion(s string) Diagnostic {
	d.Suggestion = s
	return d
}

// IsError reports whether the diagnostic blocks synthesis for its candidate.
func (d Diagnostic) IsError() bool { return d.Severity == Error }

// HasErrors reports whether any diagnostic in ds is Error severity.
func HasErrors(ds []Diagnostic) bool {
	for _, d := range ds {
		if d.IsError() {
			return true
		}
	}
	return false
}

// ToJSON renders diagnostics as indented JSON for machine consumption.
func ToJSON(ds []Diagnostic) (string, error) {
	if ds == nil {
		ds = []Diagnostic{}
	}
	b, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
