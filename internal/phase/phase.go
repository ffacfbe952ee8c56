// Package phase holds the phase catalog and the round policy that decides
// what comes after the current phase. Everything here is pure.
package phase

import (
	"fmt"
	"strings"
)

// Phase is one named segment of a session.
type Phase string

const (
	Focus      Phase = "focus"
	ShortBreak Phase = "short_break"
	LongBreak  Phase = "long_break"
)

var phaseLabels = map[Phase]string{
	Focus:      "Focus",
	ShortBreak: "Short Break",
	LongBreak:  "Long Break",
}

// Label returns the English display name.
func (p Phase) Label() string {
	if l, ok := phaseLabels[p]; ok {
		return l
	}
	return string(p)
}

// IsRest reports whether p is a break.
func (p Phase) IsRest() bool {
	return p == ShortBreak || p == LongBreak
}

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	_, ok := phaseLabels[p]
	return ok
}

// Parse converts a stored name into a Phase.
func Parse(name string) (Phase, error) {
	p := Phase(strings.TrimSpace(strings.ToLower(name)))
	if !p.Valid() {
		return "", &ConfigurationError{Field: "phases", Reason: fmt.Sprintf("unknown phase %q", name)}
	}
	return p, nil
}

// ConfigurationError reports invalid session parameters.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}
