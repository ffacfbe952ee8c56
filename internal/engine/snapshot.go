package engine

import (
	"time"

	"github.com/sadopc/zenfocus/internal/phase"
)

// EventKind describes what changed in a Snapshot.
type EventKind string

const (
	EventStarted      EventKind = "started"
	EventTick         EventKind = "tick"
	EventPlayback     EventKind = "playback"
	EventPhaseChanged EventKind = "phase_changed"
	EventReset        EventKind = "reset"
	EventConfigured   EventKind = "configured"
	EventCompleted    EventKind = "completed"
)

// Outcome says how a phase ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeReset     Outcome = "reset"
)

// Transition describes the phase that just ended.
type Transition struct {
	Phase      phase.Phase
	PhaseIndex int
	Round      int
	Planned    time.Duration
	Elapsed    time.Duration
	Outcome    Outcome
}

// Snapshot is a read-only copy of the session state.
type Snapshot struct {
	Kind        EventKind
	Active      bool
	Phase       phase.Phase
	PhaseIndex  int
	PhaseCount  int
	Round       int
	TotalRounds int
	Remaining   time.Duration
	Duration    time.Duration
	IsPlaying   bool
	Complete    bool
	LastRound   bool
	Transition  *Transition
	At          time.Time
}

// IsRest reports whether the current phase is a break.
func (s Snapshot) IsRest() bool {
	return s.Phase.IsRest()
}

func (s Snapshot) boundary() bool {
	switch s.Kind {
	case EventPhaseChanged, EventReset, EventCompleted:
		return true
	}
	return false
}

// Progress is the elapsed fraction of the current phase in [0,1].
func (s Snapshot) Progress() float64 {
	if s.Duration <= 0 {
		return 0
	}
	if s.Complete {
		return 1
	}
	return float64(s.Duration-s.Remaining) / float64(s.Duration)
}
