package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/zenfocus/internal/phase"
)

func (s *Store) StartSession(totalRounds int, phases phase.Catalog) (*Session, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO sessions (uuid, total_rounds, phases, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), totalRounds, phases.String(), SessionStarted, now,
	)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetSession(id)
}

func (s *Store) GetSession(id int64) (*Session, error) {
	ss := &Session{}
	var startedAt string
	var completedAt sql.NullString

	err := s.db.QueryRow(
		`SELECT id, uuid, total_rounds, phases, status, started_at, completed_at
		 FROM sessions WHERE id = ?`, id,
	).Scan(&ss.ID, &ss.UUID, &ss.TotalRounds, &ss.Phases, &ss.Status, &startedAt, &completedAt)
	if err != nil {
		return nil, fmt.Errorf("get session %d: %w", id, err)
	}
	ss.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	if completedAt.Valid {
		t, _ := time.Parse(time.RFC3339, completedAt.String)
		ss.CompletedAt = &t
	}
	return ss, nil
}

func (s *Store) CompleteSession(id int64, at time.Time) error {
	return s.finishSession(id, SessionCompleted, at)
}

func (s *Store) AbandonSession(id int64, at time.Time) error {
	return s.finishSession(id, SessionAbandoned, at)
}

func (s *Store) finishSession(id int64, status string, at time.Time) error {
	res, err := s.db.Exec(
		`UPDATE sessions SET status = ?, completed_at = ? WHERE id = ? AND status = ?`,
		status, at.UTC().Format(time.RFC3339), id, SessionStarted,
	)
	if err != nil {
		return fmt.Errorf("%s session %d: %w", status, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s session %d: %w", status, id, sql.ErrNoRows)
	}
	return nil
}

// AbandonOpenSessions marks sessions left running by a previous process.
func (s *Store) AbandonOpenSessions() (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`UPDATE sessions SET status = ?, completed_at = ? WHERE status = ?`,
		SessionAbandoned, now, SessionStarted,
	)
	if err != nil {
		return 0, fmt.Errorf("abandon open sessions: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) ListSessions(limit int) ([]Session, error) {
	query := `SELECT id, uuid, total_rounds, phases, status, started_at, completed_at
		FROM sessions ORDER BY id DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var ss Session
		var startedAt string
		var completedAt sql.NullString
		if err := rows.Scan(&ss.ID, &ss.UUID, &ss.TotalRounds, &ss.Phases, &ss.Status, &startedAt, &completedAt); err != nil {
			return nil, err
		}
		ss.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		if completedAt.Valid {
			t, _ := time.Parse(time.RFC3339, completedAt.String)
			ss.CompletedAt = &t
		}
		sessions = append(sessions, ss)
	}
	return sessions, rows.Err()
}
