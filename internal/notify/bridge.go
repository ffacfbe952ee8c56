// Package notify turns engine snapshots and confirmation requests into side
// effects: audio, history records, UI prompts and host signals. Nothing
// here can change engine state.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sadopc/zenfocus/internal/control"
	"github.com/sadopc/zenfocus/internal/engine"
	"github.com/sadopc/zenfocus/internal/phase"
)

// Player plays sounds by catalog id.
type Player interface {
	Play(id string)
	StopAll()
}

// Recorder persists finished phases of the current session.
type Recorder interface {
	RecordPhase(tr engine.Transition, endedAt time.Time) error
	CompleteSession(at time.Time) error
}

// Options configures a Bridge.
type Options struct {
	Player       Player
	TickSound    string
	AlertSound   string
	SoundEnabled bool
	// Translate localizes user-facing text; keys are English.
	Translate func(string) string
	Label     func(phase.Phase) string
	Buffer    int
	Logger    zerolog.Logger
}

type namedSink struct {
	name string
	sink Sink
}

// Bridge fans out side effects for one engine.
type Bridge struct {
	mu        sync.Mutex
	opts      Options
	recorder  Recorder
	completed Recorder
	sinks     []namedSink
	log       zerolog.Logger

	prompts chan control.ConfirmRequest
	alerts  chan Signal
}

func New(opts Options) *Bridge {
	if opts.Buffer <= 0 {
		opts.Buffer = 16
	}
	if opts.Translate == nil {
		opts.Translate = func(s string) string { return s }
	}
	if opts.Label == nil {
		opts.Label = func(p phase.Phase) string { return opts.Translate(p.Label()) }
	}
	return &Bridge{
		opts:    opts,
		log:     opts.Logger.With().Str("component", "notify").Logger(),
		prompts: make(chan control.ConfirmRequest, opts.Buffer),
		alerts:  make(chan Signal, opts.Buffer),
	}
}

// AddSink registers a host sink.
func (b *Bridge) AddSink(name string, s Sink) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sinks = append(b.sinks, namedSink{name: name, sink: s})
}

// SetRecorder swaps the history recorder, typically on a new session.
func (b *Bridge) SetRecorder(r Recorder) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recorder = r
}

// SetSound changes the tick sound and whether sounds play at all.
func (b *Bridge) SetSound(tickID string, enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opts.TickSound = tickID
	b.opts.SoundEnabled = enabled
	if !enabled && b.opts.Player != nil {
		b.opts.Player.StopAll()
	}
}

// Prompts delivers confirmation requests to the UI.
func (b *Bridge) Prompts() <-chan control.ConfirmRequest {
	return b.prompts
}

// Alerts delivers general and error alerts to the UI.
func (b *Bridge) Alerts() <-chan Signal {
	return b.alerts
}

// Run handles snapshots until ctx is done or the channel closes.
func (b *Bridge) Run(ctx context.Context, snaps <-chan engine.Snapshot) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snaps:
			if !ok {
				return
			}
			b.Handle(ctx, snap)
		}
	}
}

// Handle applies the side effects of one snapshot.
func (b *Bridge) Handle(ctx context.Context, snap engine.Snapshot) {
	b.mu.Lock()
	opts := b.opts
	recorder := b.recorder
	b.mu.Unlock()

	switch snap.Kind {
	case engine.EventTick:
		if opts.SoundEnabled && snap.IsPlaying && !snap.IsRest() && opts.TickSound != "" {
			b.play(opts.TickSound)
		}
	case engine.EventPlayback:
		if !snap.IsPlaying {
			b.stopAll()
		}
	case engine.EventPhaseChanged:
		b.stopAll()
		if opts.SoundEnabled && opts.AlertSound != "" {
			b.play(opts.AlertSound)
		}
		b.record(recorder, snap)
		b.alert(ctx, SignalPhase, fmt.Sprintf(opts.Translate("Time for %s"), opts.Label(snap.Phase)))
	case engine.EventReset:
		b.stopAll()
		b.record(recorder, snap)
	case engine.EventCompleted:
		b.stopAll()
		if opts.SoundEnabled && opts.AlertSound != "" {
			b.play(opts.AlertSound)
		}
		b.record(recorder, snap)
		b.alert(ctx, SignalAlert, opts.Translate("Session complete"))
	}
	if snap.Complete {
		b.complete(recorder, snap.At)
	}

	status := StatusOf(snap)
	b.broadcast(ctx, Signal{Type: SignalState, Status: &status, At: snap.At})
}

// Confirm forwards a confirmation request to the UI and the host.
func (b *Bridge) Confirm(req control.ConfirmRequest) {
	select {
	case b.prompts <- req:
	default:
		b.log.Warn().Str("request", req.ID).Msg("prompt channel full")
	}
	b.broadcast(context.Background(), Signal{Type: SignalConfirm, Message: req.Message, Confirm: &req, At: req.At})
}

// Alert shows a general alert.
func (b *Bridge) Alert(ctx context.Context, msg string) {
	b.alert(ctx, SignalAlert, msg)
}

// Error shows an error alert. Nil errors are ignored.
func (b *Bridge) Error(ctx context.Context, err error) {
	if err == nil {
		return
	}
	b.alert(ctx, SignalError, err.Error())
}

func (b *Bridge) alert(ctx context.Context, typ SignalType, msg string) {
	sig := Signal{Type: typ, Message: msg, At: time.Now()}
	select {
	case b.alerts <- sig:
	default:
		b.log.Warn().Str("signal", string(typ)).Msg("alert channel full")
	}
	b.broadcast(ctx, sig)
}

func (b *Bridge) broadcast(ctx context.Context, sig Signal) {
	b.mu.Lock()
	sinks := append([]namedSink(nil), b.sinks...)
	b.mu.Unlock()

	for _, s := range sinks {
		if err := s.sink.Deliver(ctx, sig); err != nil {
			derr := &DeliveryError{Sink: s.name, Signal: sig.Type, Err: err}
			b.log.Warn().Err(derr).Msg("signal delivery failed")
		}
	}
}

// complete marks the recorder's session finished once, whichever complete
// snapshot arrives first.
func (b *Bridge) complete(r Recorder, at time.Time) {
	if r == nil {
		return
	}
	b.mu.Lock()
	done := b.completed == r
	b.completed = r
	b.mu.Unlock()
	if done {
		return
	}
	if err := r.CompleteSession(at); err != nil {
		b.log.Error().Err(err).Msg("complete session")
	}
}

func (b *Bridge) record(r Recorder, snap engine.Snapshot) {
	if r == nil || snap.Transition == nil {
		return
	}
	if err := r.RecordPhase(*snap.Transition, snap.At); err != nil {
		b.log.Error().Err(err).
			Str("phase", string(snap.Transition.Phase)).
			Int("round", snap.Transition.Round).
			Msg("record phase")
	}
}

func (b *Bridge) play(id string) {
	if b.opts.Player == nil {
		return
	}
	b.opts.Player.Play(id)
}

func (b *Bridge) stopAll() {
	if b.opts.Player == nil {
		return
	}
	b.opts.Player.StopAll()
}
