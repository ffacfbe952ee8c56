package phase

import (
	"fmt"
	"strings"
)

// Catalog is the ordered list of phases that makes up one round.
type Catalog []Phase

// DefaultCatalog is a focus interval followed by a short break.
func DefaultCatalog() Catalog {
	return Catalog{Focus, ShortBreak}
}

// ParseCatalog parses a comma separated list such as "focus,short_break".
func ParseCatalog(s string) (Catalog, error) {
	var c Catalog
	for _, name := range strings.Split(s, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		p, err := Parse(name)
		if err != nil {
			return nil, err
		}
		c = append(c, p)
	}
	if len(c) == 0 {
		return nil, &ConfigurationError{Field: "phases", Reason: "catalog is empty"}
	}
	return c, nil
}

// String is the inverse of ParseCatalog.
func (c Catalog) String() string {
	names := make([]string, len(c))
	for i, p := range c {
		names[i] = string(p)
	}
	return strings.Join(names, ",")
}

// At returns the phase at index i.
func (c Catalog) At(i int) (Phase, error) {
	if i < 0 || i >= len(c) {
		return "", &ConfigurationError{Field: "phase index", Reason: fmt.Sprintf("%d out of range [0,%d)", i, len(c))}
	}
	return c[i], nil
}

// Outcome is the result of advancing from a position.
type Outcome struct {
	PhaseIndex      int
	Round           int
	NewRound        bool
	SessionComplete bool
}

// Validate checks a position against the catalog and round total.
func (c Catalog) Validate(phaseIndex, round, totalRounds int) error {
	if len(c) == 0 {
		return &ConfigurationError{Field: "phases", Reason: "catalog is empty"}
	}
	if totalRounds <= 0 {
		return &ConfigurationError{Field: "total rounds", Reason: fmt.Sprintf("must be positive, got %d", totalRounds)}
	}
	if round < 1 || round > totalRounds {
		return &ConfigurationError{Field: "round", Reason: fmt.Sprintf("%d out of range [1,%d]", round, totalRounds)}
	}
	if _, err := c.At(phaseIndex); err != nil {
		return err
	}
	return nil
}

// Next computes the position after phaseIndex in round. Finishing the last
// phase of the last round completes the session; the position is then
// clamped to the final phase of the final round instead of wrapping.
func (c Catalog) Next(phaseIndex, round, totalRounds int) (Outcome, error) {
	if err := c.Validate(phaseIndex, round, totalRounds); err != nil {
		return Outcome{}, err
	}
	if phaseIndex+1 < len(c) {
		return Outcome{PhaseIndex: phaseIndex + 1, Round: round}, nil
	}
	if round+1 > totalRounds {
		return Outcome{PhaseIndex: len(c) - 1, Round: totalRounds, SessionComplete: true}, nil
	}
	return Outcome{PhaseIndex: 0, Round: round + 1, NewRound: true}, nil
}

// IsLastRound reports whether advancing from the position would complete
// the session.
func (c Catalog) IsLastRound(phaseIndex, round, totalRounds int) (bool, error) {
	out, err := c.Next(phaseIndex, round, totalRounds)
	if err != nil {
		return false, err
	}
	return out.SessionComplete, nil
}

// IsRestPhase classifies the phase at phaseIndex. Out of range indexes are
// not rest phases.
func (c Catalog) IsRestPhase(phaseIndex int) bool {
	p, err := c.At(phaseIndex)
	if err != nil {
		return false
	}
	return p.IsRest()
}
