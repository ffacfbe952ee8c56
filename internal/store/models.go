package store

import "time"

const (
	SessionStarted   = "started"
	SessionCompleted = "completed"
	SessionAbandoned = "abandoned"
)

type Session struct {
	ID          int64
	UUID        string
	TotalRounds int
	Phases      string
	Status      string // started, completed, abandoned
	StartedAt   time.Time
	CompletedAt *time.Time
}

type PhaseRecord struct {
	ID        int64
	SessionID int64
	Phase     string
	Round     int
	Planned   int64 // seconds
	Elapsed   int64 // seconds
	Outcome   string // completed, skipped, reset
	EndedAt   time.Time
}

type Setting struct {
	Key   string
	Value string
}

// PhaseFilter is used to filter phase records in queries.
type PhaseFilter struct {
	SessionID *int64
	Phase     string
	From      *time.Time
	To        *time.Time
	Limit     int
}

// DailyFocus aggregates the phase log per day.
type DailyFocus struct {
	Date           string
	FocusSeconds   int64
	BreakSeconds   int64
	FocusCompleted int
}
