package tui

import (
	"time"

	"github.com/sadopc/zenfocus/internal/engine"
)

// timerModel mirrors the engine state the UI renders. The engine owns the
// countdown; the UI only keeps the latest snapshot.
type timerModel struct {
	snap engine.Snapshot
}

func (t *timerModel) apply(s engine.Snapshot) {
	t.snap = s
}

// running reports an active, unfinished session, playing or paused.
func (t timerModel) running() bool {
	return t.snap.Active && !t.snap.Complete
}

func (t timerModel) paused() bool {
	return t.running() && !t.snap.IsPlaying
}

func (t timerModel) playing() bool {
	return t.running() && t.snap.IsPlaying
}

func (t timerModel) complete() bool {
	return t.snap.Active && t.snap.Complete
}

func (t timerModel) remaining() time.Duration {
	return t.snap.Remaining
}
