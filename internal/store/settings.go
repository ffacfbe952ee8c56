package store

import (
	"fmt"
	"strconv"
	"time"

	"github.com/sadopc/zenfocus/internal/engine"
	"github.com/sadopc/zenfocus/internal/phase"
)

const (
	KeyTotalRounds        = "total_rounds"
	KeyPhases             = "phases"
	KeyFocusDuration      = "focus_duration"
	KeyShortBreakDuration = "short_break_duration"
	KeyLongBreakDuration  = "long_break_duration"
	KeySoundID            = "sound_id"
	KeySoundEnabled       = "sound_enabled"
	KeyTheme              = "theme"
	KeyCompact            = "compact"
	KeyShowWelcome        = "show_welcome"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// Preferences are the typed user settings.
type Preferences struct {
	TotalRounds        int
	Phases             phase.Catalog
	FocusDuration      time.Duration
	ShortBreakDuration time.Duration
	LongBreakDuration  time.Duration
	SoundID            string
	SoundEnabled       bool
	Theme              string
	Compact            bool
	ShowWelcome        bool
}

// DefaultPreferences match the seeded settings rows.
func DefaultPreferences() Preferences {
	return Preferences{
		TotalRounds:        4,
		Phases:             phase.DefaultCatalog(),
		FocusDuration:      25 * time.Minute,
		ShortBreakDuration: 5 * time.Minute,
		LongBreakDuration:  15 * time.Minute,
		SoundID:            "4111002",
		SoundEnabled:       true,
		Theme:              "dark",
		ShowWelcome:        true,
	}
}

// Durations returns the per-phase lengths for the engine.
func (p Preferences) Durations() engine.Durations {
	return engine.Durations{
		phase.Focus:      p.FocusDuration,
		phase.ShortBreak: p.ShortBreakDuration,
		phase.LongBreak:  p.LongBreakDuration,
	}
}

// Validate checks that a session can be built from p.
func (p Preferences) Validate() error {
	if p.TotalRounds <= 0 {
		return &phase.ConfigurationError{Field: KeyTotalRounds, Reason: "must be positive"}
	}
	if len(p.Phases) == 0 {
		return &phase.ConfigurationError{Field: KeyPhases, Reason: "catalog is empty"}
	}
	d := p.Durations()
	for _, ph := range p.Phases {
		if d[ph] <= 0 {
			return &phase.ConfigurationError{Field: string(ph) + "_duration", Reason: "must be positive"}
		}
	}
	return nil
}

// LoadPreferences reads every setting, falling back to defaults for
// missing keys.
func (s *Store) LoadPreferences() (Preferences, error) {
	settings, err := s.GetAllSettings()
	if err != nil {
		return Preferences{}, err
	}
	values := make(map[string]string, len(settings))
	for _, st := range settings {
		values[st.Key] = st.Value
	}

	p := DefaultPreferences()
	intVal := func(key string, dst *int) error {
		v, ok := values[key]
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse setting %q: %w", key, err)
		}
		*dst = n
		return nil
	}
	secondsVal := func(key string, dst *time.Duration) error {
		var n int
		if err := intVal(key, &n); err != nil {
			return err
		}
		if _, ok := values[key]; ok {
			*dst = time.Duration(n) * time.Second
		}
		return nil
	}
	boolVal := func(key string, dst *bool) error {
		v, ok := values[key]
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse setting %q: %w", key, err)
		}
		*dst = b
		return nil
	}

	if err := intVal(KeyTotalRounds, &p.TotalRounds); err != nil {
		return Preferences{}, err
	}
	if v, ok := values[KeyPhases]; ok {
		c, err := phase.ParseCatalog(v)
		if err != nil {
			return Preferences{}, fmt.Errorf("parse setting %q: %w", KeyPhases, err)
		}
		p.Phases = c
	}
	for key, dst := range map[string]*time.Duration{
		KeyFocusDuration:      &p.FocusDuration,
		KeyShortBreakDuration: &p.ShortBreakDuration,
		KeyLongBreakDuration:  &p.LongBreakDuration,
	} {
		if err := secondsVal(key, dst); err != nil {
			return Preferences{}, err
		}
	}
	for key, dst := range map[string]*bool{
		KeySoundEnabled: &p.SoundEnabled,
		KeyCompact:      &p.Compact,
		KeyShowWelcome:  &p.ShowWelcome,
	} {
		if err := boolVal(key, dst); err != nil {
			return Preferences{}, err
		}
	}
	if v, ok := values[KeySoundID]; ok {
		p.SoundID = v
	}
	if v, ok := values[KeyTheme]; ok {
		p.Theme = v
	}
	return p, nil
}

// SavePreferences writes every preference in one transaction.
func (s *Store) SavePreferences(p Preferences) error {
	if err := p.Validate(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	values := []Setting{
		{KeyTotalRounds, strconv.Itoa(p.TotalRounds)},
		{KeyPhases, p.Phases.String()},
		{KeyFocusDuration, strconv.FormatInt(int64(p.FocusDuration/time.Second), 10)},
		{KeyShortBreakDuration, strconv.FormatInt(int64(p.ShortBreakDuration/time.Second), 10)},
		{KeyLongBreakDuration, strconv.FormatInt(int64(p.LongBreakDuration/time.Second), 10)},
		{KeySoundID, p.SoundID},
		{KeySoundEnabled, strconv.FormatBool(p.SoundEnabled)},
		{KeyTheme, p.Theme},
		{KeyCompact, strconv.FormatBool(p.Compact)},
		{KeyShowWelcome, strconv.FormatBool(p.ShowWelcome)},
	}
	for _, v := range values {
		if _, err := tx.Exec(
			`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			v.Key, v.Value,
		); err != nil {
			return fmt.Errorf("save setting %q: %w", v.Key, err)
		}
	}
	return tx.Commit()
}
