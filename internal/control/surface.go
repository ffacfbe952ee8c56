package control

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sadopc/zenfocus/internal/engine"
)

// Engine is the part of *engine.Engine the surface drives.
type Engine interface {
	Snapshot() engine.Snapshot
	Resume()
	Pause()
	ResetCurrentPhase() error
	ResetRound() error
	SkipToNextPhase() error
}

// SoundStopper silences everything that is playing.
type SoundStopper interface {
	StopAll()
}

// Hooks are application level actions that live outside the engine.
type Hooks struct {
	NewSession    func() error
	ToggleCompact func() error
}

// Options configures a Surface.
type Options struct {
	// Debounce is the window in which repeated intents of the same kind
	// collapse into one.
	Debounce       time.Duration
	EnqueueTimeout time.Duration
	QueueSize      int
	Now            func() time.Time
	Message        func(ConfirmKind) string
	Hooks          Hooks
	Logger         zerolog.Logger
}

// Surface is the only writer of engine state.
type Surface struct {
	mu       sync.Mutex
	engine   Engine
	sounds   SoundStopper
	prompter Prompter
	opts     Options
	log      zerolog.Logger

	lastIntent map[CommandType]time.Time
	pending    map[string]ConfirmRequest

	cmdCh chan Command
}

// New builds a Surface. A nil prompter drops confirmation requests, which
// leaves them resolvable only through Resolve.
func New(eng Engine, sounds SoundStopper, prompter Prompter, opts Options) *Surface {
	if prompter == nil {
		prompter = nopPrompter{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.EnqueueTimeout <= 0 {
		opts.EnqueueTimeout = 150 * time.Millisecond
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.Message == nil {
		opts.Message = func(k ConfirmKind) string { return confirmMessages[k] }
	}
	return &Surface{
		engine:     eng,
		sounds:     sounds,
		prompter:   prompter,
		opts:       opts,
		log:        opts.Logger.With().Str("component", "control").Logger(),
		lastIntent: make(map[CommandType]time.Time),
		pending:    make(map[string]ConfirmRequest),
		cmdCh:      make(chan Command, opts.QueueSize),
	}
}

// SetPrompter replaces the prompter. The notification bridge is built after
// the surface, so it is attached here.
func (s *Surface) SetPrompter(p Prompter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p == nil {
		p = nopPrompter{}
	}
	s.prompter = p
}

// duplicateLocked reports whether kind was accepted within the debounce
// window and records the intent otherwise.
func (s *Surface) duplicateLocked(kind CommandType) bool {
	now := s.opts.Now()
	if last, ok := s.lastIntent[kind]; ok && s.opts.Debounce > 0 && now.Sub(last) < s.opts.Debounce {
		return true
	}
	s.lastIntent[kind] = now
	return false
}

// TogglePlayback pauses a running timer and resumes a paused one.
func (s *Surface) TogglePlayback() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.engine.Snapshot()
	if !snap.Active {
		return engine.ErrNoSession
	}
	if snap.Complete {
		return engine.ErrTerminalState
	}
	if s.duplicateLocked(CmdToggle) {
		s.log.Debug().Msg("duplicate toggle ignored")
		return nil
	}
	if snap.IsPlaying {
		s.engine.Pause()
	} else {
		s.engine.Resume()
	}
	return nil
}

// Play resumes the timer.
func (s *Surface) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Resume()
}

// Pause pauses the timer.
func (s *Surface) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Pause()
}

// RequestSkip silences every sound and moves to the next phase.
func (s *Surface) RequestSkip() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.engine.Snapshot()
	if !snap.Active {
		return engine.ErrNoSession
	}
	if snap.Complete {
		return engine.ErrTerminalState
	}
	if s.duplicateLocked(CmdSkip) {
		s.log.Debug().Msg("duplicate skip ignored")
		return nil
	}
	if s.sounds != nil {
		s.sounds.StopAll()
	}
	return s.engine.SkipToNextPhase()
}

// RequestReset asks for confirmation before restarting the current phase.
func (s *Surface) RequestReset() (ConfirmRequest, error) {
	return s.request(ConfirmRedoPhase)
}

// RequestResetRound asks for confirmation before restarting the round.
func (s *Surface) RequestResetRound() (ConfirmRequest, error) {
	return s.request(ConfirmResetRound)
}

func (s *Surface) request(kind ConfirmKind) (ConfirmRequest, error) {
	s.mu.Lock()
	snap := s.engine.Snapshot()
	switch {
	case !snap.Active:
		s.mu.Unlock()
		return ConfirmRequest{}, engine.ErrNoSession
	case snap.Complete:
		s.mu.Unlock()
		return ConfirmRequest{}, engine.ErrTerminalState
	}
	for _, req := range s.pending {
		if req.Kind == kind {
			s.mu.Unlock()
			return req, nil
		}
	}
	req := ConfirmRequest{
		ID:          uuid.NewString(),
		Kind:        kind,
		Message:     s.opts.Message(kind),
		ConfirmText: "OK",
		CancelText:  "Cancel",
		At:          s.opts.Now(),
	}
	s.pending[req.ID] = req
	prompter := s.prompter
	s.mu.Unlock()

	s.log.Debug().Str("request", req.ID).Str("kind", string(kind)).Msg("confirmation requested")
	prompter.Confirm(req)
	return req, nil
}

// Resolve answers a pending confirmation. Cancelling changes nothing.
// Each request resolves at most once.
func (s *Surface) Resolve(id string, confirmed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.pending[id]
	if !ok {
		return ErrUnknownRequest
	}
	delete(s.pending, id)
	if !confirmed {
		s.log.Debug().Str("request", id).Msg("confirmation cancelled")
		return nil
	}

	switch req.Kind {
	case ConfirmRedoPhase:
		return s.engine.ResetCurrentPhase()
	case ConfirmResetRound:
		return s.engine.ResetRound()
	}
	return nil
}

// Pending returns the unresolved confirmation requests.
func (s *Surface) Pending() []ConfirmRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ConfirmRequest, 0, len(s.pending))
	for _, req := range s.pending {
		out = append(out, req)
	}
	return out
}

// discardPending drops confirmations raised for a session that no longer
// exists; resolving them later returns ErrUnknownRequest.
func (s *Surface) discardPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.pending); n > 0 {
		clear(s.pending)
		s.log.Debug().Int("count", n).Msg("pending confirmations discarded")
	}
}

// Dispatch applies cmd synchronously.
func (s *Surface) Dispatch(cmd Command) error {
	var err error
	switch cmd.Type {
	case CmdToggle:
		err = s.TogglePlayback()
	case CmdPlay:
		s.Play()
	case CmdPause:
		s.Pause()
	case CmdSkip:
		err = s.RequestSkip()
	case CmdReset:
		_, err = s.RequestReset()
	case CmdResetRound:
		_, err = s.RequestResetRound()
	case CmdNewSession:
		if err = s.runHook(s.opts.Hooks.NewSession); err == nil {
			s.discardPending()
		}
	case CmdToggleCompact:
		err = s.runHook(s.opts.Hooks.ToggleCompact)
	default:
		err = ErrUnknownCommand
	}

	if cmd.Reply != nil {
		select {
		case cmd.Reply <- err:
		default:
		}
	}
	return err
}

func (s *Surface) runHook(fn func() error) error {
	if fn == nil {
		return errors.New("command not supported")
	}
	return fn()
}

// Enqueue queues cmd for Run. It gives up after the enqueue timeout so a
// stalled loop never blocks the caller.
func (s *Surface) Enqueue(cmd Command) bool {
	select {
	case s.cmdCh <- cmd:
		return true
	case <-time.After(s.opts.EnqueueTimeout):
		s.log.Warn().Str("command", cmd.Type.String()).Str("source", string(cmd.Source)).Msg("command queue full, dropping")
		return false
	}
}

// Run applies queued commands one at a time until ctx is done.
func (s *Surface) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-s.cmdCh:
			if err := s.Dispatch(cmd); err != nil {
				s.log.Warn().Err(err).
					Str("command", cmd.Type.String()).
					Str("source", string(cmd.Source)).
					Msg("command failed")
			}
		}
	}
}
