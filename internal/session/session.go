// Package session ties a timer session to its stored history and the
// user's preferences. It backs the New Session and Toggle Compact actions
// and applies edited preferences to the running engine.
package session

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sadopc/zenfocus/internal/engine"
	"github.com/sadopc/zenfocus/internal/notify"
	"github.com/sadopc/zenfocus/internal/phase"
	"github.com/sadopc/zenfocus/internal/store"
)

// Engine is the part of *engine.Engine a Manager needs.
type Engine interface {
	Snapshot() engine.Snapshot
	Catalog() phase.Catalog
	Configure(catalog phase.Catalog, durations engine.Durations) error
	Restart(catalog phase.Catalog, durations engine.Durations, totalRounds int) error
}

// Bridge receives the recorder and sound settings of the active session.
type Bridge interface {
	SetRecorder(r notify.Recorder)
	SetSound(tickID string, enabled bool)
}

type Manager struct {
	mu       sync.Mutex
	store    *store.Store
	engine   Engine
	bridge   Bridge
	log      zerolog.Logger
	now      func() time.Time
	prefs    store.Preferences
	recorder *store.SessionRecorder

	listeners []func(store.Preferences)
}

// NewManager loads the stored preferences and marks sessions left open by
// an earlier run as abandoned.
func NewManager(st *store.Store, eng Engine, br Bridge, logger zerolog.Logger) (*Manager, error) {
	prefs, err := st.LoadPreferences()
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	n, err := st.AbandonOpenSessions()
	if err != nil {
		return nil, fmt.Errorf("abandon stale sessions: %w", err)
	}
	m := &Manager{
		store:  st,
		engine: eng,
		bridge: br,
		log:    logger.With().Str("component", "session").Logger(),
		now:    time.Now,
		prefs:  prefs,
	}
	if n > 0 {
		m.log.Info().Int64("count", n).Msg("abandoned stale sessions")
	}
	br.SetSound(prefs.SoundID, prefs.SoundEnabled)
	return m, nil
}

// OnPreferences registers fn to run after preferences change.
func (m *Manager) OnPreferences(fn func(store.Preferences)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *Manager) Preferences() store.Preferences {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prefs
}

// SessionID returns the stored id of the current session, or 0.
func (m *Manager) SessionID() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recorder == nil {
		return 0
	}
	return m.recorder.SessionID()
}

// NewSession starts a fresh session from the current preferences. An
// unfinished previous session is marked abandoned.
func (m *Manager) NewSession() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.prefs
	if err := p.Validate(); err != nil {
		return err
	}

	if m.recorder != nil && !m.engine.Snapshot().Complete {
		if err := m.recorder.Abandon(m.now()); err != nil {
			m.log.Warn().Err(err).Int64("session", m.recorder.SessionID()).Msg("abandon session")
		}
	}

	sess, err := m.store.StartSession(p.TotalRounds, p.Phases)
	if err != nil {
		return err
	}
	m.recorder = m.store.NewRecorder(sess.ID)
	m.bridge.SetRecorder(m.recorder)

	if err := m.engine.Restart(p.Phases, p.Durations(), p.TotalRounds); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	m.log.Info().Str("session", sess.UUID).Int("rounds", p.TotalRounds).Str("phases", p.Phases.String()).Msg("session started")
	return nil
}

// Apply validates and stores p. Durations take effect at the next phase
// boundary or reset; a changed catalog or round count waits for the next
// session.
func (m *Manager) Apply(p store.Preferences) error {
	if err := m.store.SavePreferences(p); err != nil {
		return err
	}

	m.mu.Lock()
	m.prefs = p
	listeners := slices.Clone(m.listeners)
	m.mu.Unlock()

	if err := m.engine.Configure(m.engine.Catalog(), p.Durations()); err != nil {
		m.log.Warn().Err(err).Msg("durations apply on next session")
	}
	m.bridge.SetSound(p.SoundID, p.SoundEnabled)

	for _, fn := range listeners {
		fn(p)
	}
	return nil
}

// ToggleCompact flips the compact display preference.
func (m *Manager) ToggleCompact() error {
	p := m.Preferences()
	p.Compact = !p.Compact
	return m.Apply(p)
}

// DismissWelcome hides the welcome screen for good.
func (m *Manager) DismissWelcome() error {
	p := m.Preferences()
	if !p.ShowWelcome {
		return nil
	}
	p.ShowWelcome = false
	return m.Apply(p)
}
