package phase

import (
	"errors"
	"testing"
)

// ============================================================
// Phase
// ============================================================

func TestPhaseLabels(t *testing.T) {
	tests := []struct {
		p    Phase
		want string
	}{
		{Focus, "Focus"},
		{ShortBreak, "Short Break"},
		{LongBreak, "Long Break"},
		{Phase("nap"), "nap"},
	}
	for _, tt := range tests {
		if got := tt.p.Label(); got != tt.want {
			t.Errorf("%q.Label() = %q, want %q", tt.p, got, tt.want)
		}
	}
}

func TestPhaseIsRest(t *testing.T) {
	if Focus.IsRest() {
		t.Fatal("focus is not a rest phase")
	}
	if !ShortBreak.IsRest() || !LongBreak.IsRest() {
		t.Fatal("breaks are rest phases")
	}
}

func TestParse(t *testing.T) {
	p, err := Parse(" Short_Break ")
	if err != nil {
		t.Fatal(err)
	}
	if p != ShortBreak {
		t.Fatalf("expected short_break, got %q", p)
	}

	_, err = Parse("lunch")
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

// ============================================================
// Catalog
// ============================================================

func TestParseCatalog(t *testing.T) {
	c, err := ParseCatalog("focus, short_break,focus,long_break")
	if err != nil {
		t.Fatal(err)
	}
	want := Catalog{Focus, ShortBreak, Focus, LongBreak}
	if len(c) != len(want) {
		t.Fatalf("expected %d phases, got %d", len(want), len(c))
	}
	for i := range want {
		if c[i] != want[i] {
			t.Fatalf("phase %d: expected %q, got %q", i, want[i], c[i])
		}
	}
	if c.String() != "focus,short_break,focus,long_break" {
		t.Fatalf("round trip mismatch: %q", c.String())
	}
}

func TestParseCatalogEmpty(t *testing.T) {
	for _, s := range []string{"", " , ,"} {
		if _, err := ParseCatalog(s); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}

func TestCatalogAt(t *testing.T) {
	c := DefaultCatalog()
	if p, err := c.At(1); err != nil || p != ShortBreak {
		t.Fatalf("At(1) = %q, %v", p, err)
	}
	if _, err := c.At(2); err == nil {
		t.Fatal("expected error for index past end")
	}
	if _, err := c.At(-1); err == nil {
		t.Fatal("expected error for negative index")
	}
}

// ============================================================
// Policy
// ============================================================

func TestNextWithinRound(t *testing.T) {
	c := Catalog{Focus, ShortBreak, LongBreak}
	out, err := c.Next(0, 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	if out != (Outcome{PhaseIndex: 1, Round: 1}) {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestNextStartsNewRound(t *testing.T) {
	c := DefaultCatalog()
	out, err := c.Next(1, 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	if out != (Outcome{PhaseIndex: 0, Round: 2, NewRound: true}) {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestNextCompletesSessionAndClamps(t *testing.T) {
	c := DefaultCatalog()
	out, err := c.Next(1, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !out.SessionComplete {
		t.Fatal("expected session complete")
	}
	if out.PhaseIndex != 1 || out.Round != 2 {
		t.Fatalf("expected clamp to (1, 2), got (%d, %d)", out.PhaseIndex, out.Round)
	}
	if out.NewRound {
		t.Fatal("completion should not report a new round")
	}
}

func TestNextSingleRoundSinglePhase(t *testing.T) {
	c := Catalog{Focus}
	out, err := c.Next(0, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !out.SessionComplete {
		t.Fatal("single phase single round should complete on first advance")
	}
}

func TestNextRejectsInvalidConfiguration(t *testing.T) {
	tests := []struct {
		name                string
		c                   Catalog
		index, round, total int
	}{
		{"zero rounds", DefaultCatalog(), 0, 1, 0},
		{"negative rounds", DefaultCatalog(), 0, 1, -2},
		{"empty catalog", Catalog{}, 0, 1, 1},
		{"round past total", DefaultCatalog(), 0, 3, 2},
		{"round zero", DefaultCatalog(), 0, 0, 2},
		{"phase out of range", DefaultCatalog(), 5, 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.c.Next(tt.index, tt.round, tt.total)
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
		})
	}
}

func TestIsLastRound(t *testing.T) {
	c := DefaultCatalog()
	tests := []struct {
		index, round int
		want         bool
	}{
		{0, 1, false},
		{1, 1, false},
		{0, 2, false},
		{1, 2, true},
	}
	for _, tt := range tests {
		got, err := c.IsLastRound(tt.index, tt.round, 2)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("IsLastRound(%d, %d, 2) = %v, want %v", tt.index, tt.round, got, tt.want)
		}
	}

	if _, err := c.IsLastRound(0, 1, 0); err == nil {
		t.Fatal("expected error for zero rounds")
	}
}

func TestIsRestPhase(t *testing.T) {
	c := Catalog{Focus, ShortBreak, Focus, LongBreak}
	want := []bool{false, true, false, true}
	for i, w := range want {
		if got := c.IsRestPhase(i); got != w {
			t.Errorf("IsRestPhase(%d) = %v, want %v", i, got, w)
		}
	}
	if c.IsRestPhase(10) {
		t.Fatal("out of range index should not be a rest phase")
	}
}

func TestFullCycleVisitsEveryPhase(t *testing.T) {
	c := Catalog{Focus, ShortBreak, Focus, LongBreak}
	total := 3
	index, round := 0, 1
	steps := 0
	for {
		out, err := c.Next(index, round, total)
		if err != nil {
			t.Fatal(err)
		}
		steps++
		if out.SessionComplete {
			break
		}
		index, round = out.PhaseIndex, out.Round
	}
	if steps != total*len(c) {
		t.Fatalf("expected %d advances, got %d", total*len(c), steps)
	}
}
