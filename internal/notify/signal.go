package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/sadopc/zenfocus/internal/control"
	"github.com/sadopc/zenfocus/internal/engine"
)

// SignalType names an outbound host signal.
type SignalType string

const (
	SignalState   SignalType = "state"
	SignalAlert   SignalType = "alert"
	SignalError   SignalType = "error"
	SignalConfirm SignalType = "confirm"
	SignalPhase   SignalType = "phase"
)

// Status is the wire form of an engine snapshot.
type Status struct {
	Active           bool    `json:"active"`
	Event            string  `json:"event,omitempty"`
	Phase            string  `json:"phase"`
	PhaseIndex       int     `json:"phase_index"`
	Rest             bool    `json:"rest"`
	Round            int     `json:"round"`
	TotalRounds      int     `json:"total_rounds"`
	RemainingSeconds int     `json:"remaining_seconds"`
	DurationSeconds  int     `json:"duration_seconds"`
	Playing          bool    `json:"playing"`
	Complete         bool    `json:"complete"`
	LastRound        bool    `json:"last_round"`
	Progress         float64 `json:"progress"`
}

// StatusOf converts a snapshot into its wire form.
func StatusOf(s engine.Snapshot) Status {
	return Status{
		Active:           s.Active,
		Event:            string(s.Kind),
		Phase:            string(s.Phase),
		PhaseIndex:       s.PhaseIndex,
		Rest:             s.IsRest(),
		Round:            s.Round,
		TotalRounds:      s.TotalRounds,
		RemainingSeconds: int(s.Remaining / time.Second),
		DurationSeconds:  int(s.Duration / time.Second),
		Playing:          s.IsPlaying,
		Complete:         s.Complete,
		LastRound:        s.LastRound,
		Progress:         s.Progress(),
	}
}

// Signal is one outbound notification.
type Signal struct {
	Type    SignalType              `json:"type"`
	Message string                  `json:"message,omitempty"`
	Status  *Status                 `json:"status,omitempty"`
	Confirm *control.ConfirmRequest `json:"confirm,omitempty"`
	At      time.Time               `json:"at"`
}

// Sink receives signals. Delivery is best-effort.
type Sink interface {
	Deliver(ctx context.Context, sig Signal) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, sig Signal) error

func (f SinkFunc) Deliver(ctx context.Context, sig Signal) error {
	return f(ctx, sig)
}

// DeliveryError reports a failed delivery to one sink.
type DeliveryError struct {
	Sink   string
	Signal SignalType
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver %s signal to %s: %v", e.Signal, e.Sink, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
