// Package engine owns the countdown for a focus session. All state lives in
// one Engine value guarded by a mutex; observers learn about changes only
// through snapshots delivered on subscription channels.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sadopc/zenfocus/internal/phase"
)

var (
	// ErrTerminalState is returned when an operation needs a session that
	// has not finished yet.
	ErrTerminalState = errors.New("session already complete")
	// ErrNoSession is returned before Start has been called.
	ErrNoSession = errors.New("no session started")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("engine closed")
)

// Durations maps each phase to its configured length.
type Durations map[phase.Phase]time.Duration

// DefaultDurations are the classic pomodoro lengths.
func DefaultDurations() Durations {
	return Durations{
		phase.Focus:      25 * time.Minute,
		phase.ShortBreak: 5 * time.Minute,
		phase.LongBreak:  15 * time.Minute,
	}
}

// Config contains the injected session parameters.
type Config struct {
	Catalog      phase.Catalog
	Durations    Durations
	TickInterval time.Duration
	// AutoAdvance keeps the countdown running after a phase ends on its own.
	AutoAdvance bool
	Scheduler   Scheduler
	Now         func() time.Time
}

func (c Config) validate() error {
	if len(c.Catalog) == 0 {
		return &phase.ConfigurationError{Field: "phases", Reason: "catalog is empty"}
	}
	for _, p := range c.Catalog {
		if c.Durations[p] <= 0 {
			return &phase.ConfigurationError{Field: "durations", Reason: fmt.Sprintf("%s must be positive", p)}
		}
	}
	return nil
}

type session struct {
	active      bool
	phaseIndex  int
	round       int
	totalRounds int
	remaining   time.Duration
	playing     bool
	complete    bool
}

// Engine is the single timer of the process.
type Engine struct {
	mu         sync.Mutex
	cfg        Config
	log        zerolog.Logger
	state      session
	generation uint64
	stopTick   func()
	subs       map[int]chan Snapshot
	nextSub    int
	closed     bool
}

// New creates an idle Engine. Zero TickInterval means one second and a nil
// Scheduler means a TickerScheduler.
func New(cfg Config, logger zerolog.Logger) (*Engine, error) {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = TickerScheduler{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:  cfg,
		log:  logger.With().Str("component", "engine").Logger(),
		subs: make(map[int]chan Snapshot),
	}, nil
}

// Configure replaces the catalog and durations. The running session keeps
// its position; new lengths apply from the next phase boundary or reset,
// except that remaining never exceeds a shortened current phase.
func (e *Engine) Configure(catalog phase.Catalog, durations Durations) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.cfg
	next.Catalog = catalog
	next.Durations = durations
	if err := next.validate(); err != nil {
		return err
	}
	if e.state.active && e.state.phaseIndex >= len(catalog) {
		return &phase.ConfigurationError{Field: "phases", Reason: "catalog shorter than current position"}
	}
	e.cfg = next
	if e.state.active && !e.state.complete {
		if d := e.durationLocked(e.state.phaseIndex); e.state.remaining > d {
			e.state.remaining = d
			e.emitLocked(EventConfigured, nil)
		}
	}
	return nil
}

// Catalog returns the configured catalog.
func (e *Engine) Catalog() phase.Catalog {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append(phase.Catalog(nil), e.cfg.Catalog...)
}

// Subscribe registers an observer. The cancel func removes and closes the
// channel; it is safe to call more than once. Slow observers miss tick and
// playback snapshots rather than block the engine; phase changes, resets
// and completion push out the oldest queued snapshot instead.
func (e *Engine) Subscribe(buffer int) (<-chan Snapshot, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Snapshot, buffer)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := e.nextSub
	e.nextSub++
	e.subs[id] = ch
	e.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			if c, ok := e.subs[id]; ok {
				delete(e.subs, id)
				close(c)
			}
		})
	}
}

// Start begins a new session paused at initialPhase of round one. Any
// previous session is discarded.
func (e *Engine) Start(totalRounds, initialPhase int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	return e.startLocked(totalRounds, initialPhase)
}

// Restart swaps catalog and durations and starts a new session from the
// first phase, discarding the current one.
func (e *Engine) Restart(catalog phase.Catalog, durations Durations, totalRounds int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	next := e.cfg
	next.Catalog = catalog
	next.Durations = durations
	if err := next.validate(); err != nil {
		return err
	}
	if err := catalog.Validate(0, 1, totalRounds); err != nil {
		return err
	}
	e.cfg = next
	return e.startLocked(totalRounds, 0)
}

func (e *Engine) startLocked(totalRounds, initialPhase int) error {
	if err := e.cfg.Catalog.Validate(initialPhase, 1, totalRounds); err != nil {
		return err
	}

	e.stopLocked()
	e.state = session{
		active:      true,
		phaseIndex:  initialPhase,
		round:       1,
		totalRounds: totalRounds,
		remaining:   e.durationLocked(initialPhase),
	}
	e.log.Debug().Int("rounds", totalRounds).Str("phase", string(e.cfg.Catalog[initialPhase])).Msg("session started")
	e.emitLocked(EventStarted, nil)
	return nil
}

// Resume starts the countdown. It does nothing when already playing, when
// the session is complete or before Start.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || !e.state.active || e.state.playing || e.state.complete {
		return
	}
	e.state.playing = true
	e.scheduleLocked()
	e.emitLocked(EventPlayback, nil)
}

// Pause stops the countdown and keeps the remaining time.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.playing {
		return
	}
	e.stopLocked()
	e.emitLocked(EventPlayback, nil)
}

// ResetCurrentPhase restores the full length of the current phase and
// pauses. Round and phase are kept.
func (e *Engine) ResetCurrentPhase() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.mutableLocked(); err != nil {
		return err
	}
	tr := e.transitionLocked(OutcomeReset)
	e.stopLocked()
	e.state.remaining = e.durationLocked(e.state.phaseIndex)
	e.emitLocked(EventReset, tr)
	return nil
}

// ResetRound moves back to the first phase of the current round and
// pauses.
func (e *Engine) ResetRound() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.mutableLocked(); err != nil {
		return err
	}
	tr := e.transitionLocked(OutcomeReset)
	e.stopLocked()
	e.state.phaseIndex = 0
	e.state.remaining = e.durationLocked(0)
	e.emitLocked(EventReset, tr)
	return nil
}

// SkipToNextPhase advances regardless of the remaining time and pauses.
// Once the session is complete it returns ErrTerminalState and changes
// nothing.
func (e *Engine) SkipToNextPhase() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.mutableLocked(); err != nil {
		return err
	}
	tr := e.transitionLocked(OutcomeSkipped)
	e.stopLocked()
	return e.advanceLocked(tr)
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked("", nil)
}

// Close stops the countdown and closes every subscription.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.closed = true
	e.stopLocked()
	for id, ch := range e.subs {
		delete(e.subs, id)
		close(ch)
	}
}

func (e *Engine) tick(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.generation || !e.state.playing {
		return
	}

	e.state.remaining -= e.cfg.TickInterval
	if e.state.remaining < 0 {
		e.state.remaining = 0
	}
	if e.state.remaining > 0 {
		e.emitLocked(EventTick, nil)
		return
	}

	tr := e.transitionLocked(OutcomeCompleted)
	if !e.cfg.AutoAdvance {
		e.stopLocked()
	}
	if err := e.advanceLocked(tr); err != nil {
		e.log.Error().Err(err).Msg("advance failed")
		e.stopLocked()
	}
}

// advanceLocked applies the round policy. The caller decides whether
// playback continues.
func (e *Engine) advanceLocked(tr *Transition) error {
	out, err := e.cfg.Catalog.Next(e.state.phaseIndex, e.state.round, e.state.totalRounds)
	if err != nil {
		return err
	}

	e.state.phaseIndex = out.PhaseIndex
	e.state.round = out.Round
	if out.SessionComplete {
		e.stopLocked()
		e.state.complete = true
		e.state.remaining = 0
		e.log.Debug().Int("round", out.Round).Msg("session complete")
		e.emitLocked(EventCompleted, tr)
		return nil
	}

	e.state.remaining = e.durationLocked(out.PhaseIndex)
	e.log.Debug().
		Str("phase", string(e.cfg.Catalog[out.PhaseIndex])).
		Int("round", out.Round).
		Bool("new_round", out.NewRound).
		Msg("phase changed")
	e.emitLocked(EventPhaseChanged, tr)
	return nil
}

func (e *Engine) mutableLocked() error {
	switch {
	case e.closed:
		return ErrClosed
	case !e.state.active:
		return ErrNoSession
	case e.state.complete:
		return ErrTerminalState
	}
	return nil
}

func (e *Engine) scheduleLocked() {
	e.generation++
	gen := e.generation
	e.stopTick = e.cfg.Scheduler.Every(e.cfg.TickInterval, func() { e.tick(gen) })
}

// stopLocked deregisters the tick callback and bumps the generation so a
// callback already in flight is ignored.
func (e *Engine) stopLocked() {
	e.generation++
	e.state.playing = false
	if e.stopTick != nil {
		e.stopTick()
		e.stopTick = nil
	}
}

func (e *Engine) durationLocked(index int) time.Duration {
	return e.cfg.Durations[e.cfg.Catalog[index]]
}

func (e *Engine) transitionLocked(outcome Outcome) *Transition {
	planned := e.durationLocked(e.state.phaseIndex)
	elapsed := planned - e.state.remaining
	if elapsed < 0 {
		elapsed = 0
	}
	return &Transition{
		Phase:      e.cfg.Catalog[e.state.phaseIndex],
		PhaseIndex: e.state.phaseIndex,
		Round:      e.state.round,
		Planned:    planned,
		Elapsed:    elapsed,
		Outcome:    outcome,
	}
}

func (e *Engine) checkLocked() {
	s := e.state
	if s.remaining < 0 {
		panic(fmt.Sprintf("engine: negative remaining %s", s.remaining))
	}
	if s.active && (s.round < 1 || s.round > s.totalRounds) {
		panic(fmt.Sprintf("engine: round %d outside [1,%d]", s.round, s.totalRounds))
	}
	if s.playing && s.remaining == 0 {
		panic("engine: playing with nothing remaining")
	}
}

func (e *Engine) snapshotLocked(kind EventKind, tr *Transition) Snapshot {
	s := e.state
	snap := Snapshot{
		Kind:        kind,
		Active:      s.active,
		PhaseCount:  len(e.cfg.Catalog),
		Round:       s.round,
		TotalRounds: s.totalRounds,
		Remaining:   s.remaining,
		IsPlaying:   s.playing,
		Complete:    s.complete,
		Transition:  tr,
		At:          e.cfg.Now(),
	}
	if s.active && s.phaseIndex < len(e.cfg.Catalog) {
		snap.Phase = e.cfg.Catalog[s.phaseIndex]
		snap.PhaseIndex = s.phaseIndex
		snap.Duration = e.durationLocked(s.phaseIndex)
		if !s.complete {
			snap.LastRound, _ = e.cfg.Catalog.IsLastRound(s.phaseIndex, s.round, s.totalRounds)
		}
	}
	return snap
}

func (e *Engine) emitLocked(kind EventKind, tr *Transition) {
	e.checkLocked()
	snap := e.snapshotLocked(kind, tr)
	for _, ch := range e.subs {
		select {
		case ch <- snap:
			continue
		default:
		}
		if !snap.boundary() {
			continue
		}
		// Boundary snapshots displace the oldest queued one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
			e.log.Warn().Str("event", string(kind)).Msg("subscriber full, snapshot dropped")
		}
	}
}
