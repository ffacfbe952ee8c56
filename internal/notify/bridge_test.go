package notify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sadopc/zenfocus/internal/control"
	"github.com/sadopc/zenfocus/internal/engine"
	"github.com/sadopc/zenfocus/internal/phase"
)

type fakePlayer struct {
	mu     sync.Mutex
	played []string
	stops  int
}

func (p *fakePlayer) Play(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.played = append(p.played, id)
}

func (p *fakePlayer) StopAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stops++
}

type fakeRecorder struct {
	phases    []engine.Transition
	completed int
}

func (r *fakeRecorder) RecordPhase(tr engine.Transition, _ time.Time) error {
	r.phases = append(r.phases, tr)
	return nil
}

func (r *fakeRecorder) CompleteSession(time.Time) error {
	r.completed++
	return nil
}

type collectSink struct {
	mu      sync.Mutex
	signals []Signal
}

func (c *collectSink) Deliver(_ context.Context, sig Signal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.signals = append(c.signals, sig)
	return nil
}

func (c *collectSink) types() []SignalType {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]SignalType, len(c.signals))
	for i, s := range c.signals {
		out[i] = s.Type
	}
	return out
}

func newTestBridge(t *testing.T, logger zerolog.Logger) (*Bridge, *fakePlayer, *fakeRecorder, *collectSink) {
	t.Helper()
	player := &fakePlayer{}
	rec := &fakeRecorder{}
	sink := &collectSink{}
	b := New(Options{
		Player:       player,
		TickSound:    "4111002",
		AlertSound:   "alert",
		SoundEnabled: true,
		Logger:       logger,
	})
	b.SetRecorder(rec)
	b.AddSink("collect", sink)
	return b, player, rec, sink
}

func focusSnapshot(kind engine.EventKind) engine.Snapshot {
	return engine.Snapshot{
		Kind:        kind,
		Active:      true,
		Phase:       phase.Focus,
		Round:       1,
		TotalRounds: 2,
		Remaining:   10 * time.Second,
		Duration:    25 * time.Minute,
		IsPlaying:   true,
	}
}

// ============================================================
// Snapshots
// ============================================================

func TestTickPlaysSoundDuringFocus(t *testing.T) {
	b, player, _, sink := newTestBridge(t, zerolog.Nop())
	b.Handle(context.Background(), focusSnapshot(engine.EventTick))

	if len(player.played) != 1 || player.played[0] != "4111002" {
		t.Fatalf("expected tick sound, got %v", player.played)
	}
	if got := sink.types(); len(got) != 1 || got[0] != SignalState {
		t.Fatalf("expected one state signal, got %v", got)
	}
}

func TestTickSilentDuringBreakOrWhenDisabled(t *testing.T) {
	b, player, _, _ := newTestBridge(t, zerolog.Nop())
	snap := focusSnapshot(engine.EventTick)
	snap.Phase = phase.ShortBreak
	b.Handle(context.Background(), snap)

	b.SetSound("4111001", false)
	b.Handle(context.Background(), focusSnapshot(engine.EventTick))

	if len(player.played) != 0 {
		t.Fatalf("expected no sounds, got %v", player.played)
	}
}

func TestPhaseChangeRecordsAndAlerts(t *testing.T) {
	b, player, rec, sink := newTestBridge(t, zerolog.Nop())
	snap := focusSnapshot(engine.EventPhaseChanged)
	snap.Phase = phase.ShortBreak
	snap.Transition = &engine.Transition{Phase: phase.Focus, Round: 1, Planned: time.Minute, Elapsed: time.Minute, Outcome: engine.OutcomeCompleted}
	b.Handle(context.Background(), snap)

	if player.stops != 1 {
		t.Fatalf("expected sounds stopped once, got %d", player.stops)
	}
	if len(player.played) != 1 || player.played[0] != "alert" {
		t.Fatalf("expected alert sound, got %v", player.played)
	}
	if len(rec.phases) != 1 || rec.phases[0].Phase != phase.Focus {
		t.Fatalf("expected focus phase recorded, got %+v", rec.phases)
	}

	select {
	case sig := <-b.Alerts():
		if sig.Type != SignalPhase || sig.Message != "Time for Short Break" {
			t.Fatalf("unexpected alert %+v", sig)
		}
	default:
		t.Fatal("expected a phase alert")
	}

	got := sink.types()
	if len(got) != 2 || got[0] != SignalPhase || got[1] != SignalState {
		t.Fatalf("unexpected host signals %v", got)
	}
}

func TestCompletionMarksSession(t *testing.T) {
	b, _, rec, _ := newTestBridge(t, zerolog.Nop())
	snap := focusSnapshot(engine.EventCompleted)
	snap.IsPlaying = false
	snap.Complete = true
	snap.Transition = &engine.Transition{Phase: phase.ShortBreak, Round: 2, Outcome: engine.OutcomeSkipped}
	b.Handle(context.Background(), snap)

	if rec.completed != 1 {
		t.Fatalf("expected session completed once, got %d", rec.completed)
	}
	sig := <-b.Alerts()
	if sig.Message != "Session complete" {
		t.Fatalf("unexpected alert %q", sig.Message)
	}
}

func TestTranslatedAlerts(t *testing.T) {
	b := New(Options{
		Translate: func(s string) string {
			if s == "Time for %s" {
				return "Hora de %s"
			}
			return s
		},
		Label:  func(p phase.Phase) string { return "Foco" },
		Logger: zerolog.Nop(),
	})
	snap := focusSnapshot(engine.EventPhaseChanged)
	b.Handle(context.Background(), snap)
	if sig := <-b.Alerts(); sig.Message != "Hora de Foco" {
		t.Fatalf("unexpected message %q", sig.Message)
	}
}

func TestAlertTextWithPercentSign(t *testing.T) {
	b := New(Options{
		Translate: func(s string) string {
			if s == "Session complete" {
				return "100% done"
			}
			return s
		},
		Logger: zerolog.Nop(),
	})
	snap := focusSnapshot(engine.EventCompleted)
	snap.IsPlaying = false
	snap.Complete = true
	b.Handle(context.Background(), snap)
	if sig := <-b.Alerts(); sig.Message != "100% done" {
		t.Fatalf("unexpected message %q", sig.Message)
	}

	b.Alert(context.Background(), "50% of focus left")
	if sig := <-b.Alerts(); sig.Message != "50% of focus left" {
		t.Fatalf("unexpected message %q", sig.Message)
	}
}

func TestCompletionRecordedOnce(t *testing.T) {
	b, _, rec, _ := newTestBridge(t, zerolog.Nop())
	snap := focusSnapshot(engine.EventCompleted)
	snap.IsPlaying = false
	snap.Complete = true

	// A complete snapshot of another kind closes the session when the
	// completion snapshot itself never arrived.
	late := snap
	late.Kind = engine.EventPlayback
	b.Handle(context.Background(), late)
	b.Handle(context.Background(), snap)
	b.Handle(context.Background(), late)

	if rec.completed != 1 {
		t.Fatalf("expected session completed once, got %d", rec.completed)
	}

	next := &fakeRecorder{}
	b.SetRecorder(next)
	b.Handle(context.Background(), snap)
	if next.completed != 1 {
		t.Fatalf("a new recorder must be completed too, got %d", next.completed)
	}
}

// ============================================================
// Delivery
// ============================================================

func TestDeliveryFailureIsLoggedOnly(t *testing.T) {
	var buf bytes.Buffer
	b, _, _, sink := newTestBridge(t, zerolog.New(&buf))
	b.mu.Lock()
	b.sinks = append([]namedSink{{name: "broken", sink: SinkFunc(func(context.Context, Signal) error {
		return errors.New("pipe closed")
	})}}, b.sinks...)
	b.mu.Unlock()

	b.Handle(context.Background(), focusSnapshot(engine.EventStarted))

	if len(sink.types()) != 1 {
		t.Fatal("a failing sink must not stop delivery to the others")
	}
	if !strings.Contains(buf.String(), "deliver state signal to broken: pipe closed") {
		t.Fatalf("expected delivery error in log, got %q", buf.String())
	}
}

func TestDeliveryErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := error(&DeliveryError{Sink: "socket", Signal: SignalAlert, Err: cause})
	if !errors.Is(err, cause) {
		t.Fatal("expected DeliveryError to unwrap")
	}
	var derr *DeliveryError
	if !errors.As(err, &derr) || derr.Sink != "socket" {
		t.Fatal("expected errors.As to find DeliveryError")
	}
}

// ============================================================
// Prompts
// ============================================================

func TestConfirmForwardsToUIAndHost(t *testing.T) {
	b, _, _, sink := newTestBridge(t, zerolog.Nop())
	req := control.ConfirmRequest{ID: "abc", Kind: control.ConfirmRedoPhase, Message: "sure?"}
	b.Confirm(req)

	select {
	case got := <-b.Prompts():
		if got.ID != "abc" {
			t.Fatalf("unexpected prompt %+v", got)
		}
	default:
		t.Fatal("expected prompt")
	}
	got := sink.types()
	if len(got) != 1 || got[0] != SignalConfirm {
		t.Fatalf("expected confirm signal, got %v", got)
	}
}

func TestRunStopsWhenChannelCloses(t *testing.T) {
	b, _, _, _ := newTestBridge(t, zerolog.Nop())
	ch := make(chan engine.Snapshot, 1)
	ch <- focusSnapshot(engine.EventStarted)
	close(ch)

	done := make(chan struct{})
	go func() {
		b.Run(context.Background(), ch)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
}

func TestStatusOf(t *testing.T) {
	snap := focusSnapshot(engine.EventTick)
	snap.Remaining = 90 * time.Second
	snap.Duration = 180 * time.Second
	st := StatusOf(snap)
	if st.RemainingSeconds != 90 || st.DurationSeconds != 180 {
		t.Fatalf("unexpected seconds %+v", st)
	}
	if st.Progress != 0.5 {
		t.Fatalf("expected progress 0.5, got %f", st.Progress)
	}
	if st.Rest || st.Phase != "focus" {
		t.Fatalf("unexpected phase fields %+v", st)
	}
}
