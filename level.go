package appgridlog

import (
	"fmt"
	"strings"
)

// Severity specifies the importance of a log event and doubles as the
// configured minimum level used for client-side filtering.
type Severity int

const (
	// Debug is for diagnostic detail.
	Debug Severity = iota

	// Info is for informational messages.
	Info

	// Warn is for unexpected but recoverable conditions.
	Warn

	// Error is for failures.
	Error

	// Off is a threshold only. It suppresses every event and has no dispatcher.
	Off Severity = 10
)

var severityNames = map[Severity]string{
	Debug: "debug",
	Info:  "info",
	Warn:  "warn",
	Error: "error",
	Off:   "off",
}

// emissionSeverities lists the levels an event can be sent at, lowest first.
var emissionSeverities = [...]Severity{Debug, Info, Warn, Error}

// EmissionSeverities returns the severities that have a dispatcher.
func EmissionSeverities() []Severity {
	out := make([]Severity, len(emissionSeverities))
	copy(out, emissionSeverities[:])
	return out
}

// Rank returns the numeric threshold for the severity.
// Off ranks above every active level.
func (s Severity) Rank() int {
	return int(s)
}

// String returns the lowercase wire name, e.g. "warn".
func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// Valid reports whether s is one of the five known severities.
func (s Severity) Valid() bool {
	_, ok := severityNames[s]
	return ok
}

// CanEmit reports whether events can be sent at this severity.
func (s Severity) CanEmit() bool {
	return s.Valid() && s != Off
}

// IsEnabled reports whether an event at s passes a configured minimum level.
func (s Severity) IsEnabled(configured Severity) bool {
	return configured.Rank() <= s.Rank()
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown severity %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity converts a level name to a Severity. Matching is
// case-insensitive and "warning" is accepted for warn.
func ParseSeverity(name string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return Debug, nil
	case "info":
		return Info, nil
	case "warn", "warning":
		return Warn, nil
	case "error":
		return Error, nil
	case "off":
		return Off, nil
	default:
		return Off, fmt.Errorf("unknown log level %q", name)
	}
}
