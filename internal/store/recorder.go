package store

import (
	"time"

	"github.com/sadopc/zenfocus/internal/engine"
)

// SessionRecorder writes the phase log of one session.
type SessionRecorder struct {
	store     *Store
	sessionID int64
}

func (s *Store) NewRecorder(sessionID int64) *SessionRecorder {
	return &SessionRecorder{store: s, sessionID: sessionID}
}

func (r *SessionRecorder) SessionID() int64 {
	return r.sessionID
}

// RecordPhase stores a finished phase. Resets that happen before any time
// has elapsed are not worth a row.
func (r *SessionRecorder) RecordPhase(tr engine.Transition, endedAt time.Time) error {
	if tr.Outcome == engine.OutcomeReset && tr.Elapsed <= 0 {
		return nil
	}
	_, err := r.store.RecordPhase(PhaseRecord{
		SessionID: r.sessionID,
		Phase:     string(tr.Phase),
		Round:     tr.Round,
		Planned:   int64(tr.Planned / time.Second),
		Elapsed:   int64(tr.Elapsed / time.Second),
		Outcome:   string(tr.Outcome),
		EndedAt:   endedAt,
	})
	return err
}

func (r *SessionRecorder) CompleteSession(at time.Time) error {
	return r.store.CompleteSession(r.sessionID, at)
}

// Abandon marks the session abandoned, e.g. when a new one replaces it.
func (r *SessionRecorder) Abandon(at time.Time) error {
	return r.store.AbandonSession(r.sessionID, at)
}
