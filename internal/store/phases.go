package store

import (
	"database/sql"
	"fmt"
	"time"
)

func (s *Store) RecordPhase(rec PhaseRecord) (*PhaseRecord, error) {
	if rec.EndedAt.IsZero() {
		rec.EndedAt = time.Now()
	}
	res, err := s.db.Exec(
		`INSERT INTO phase_log (session_id, phase, round, planned, elapsed, outcome, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.Phase, rec.Round, rec.Planned, rec.Elapsed, rec.Outcome,
		rec.EndedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("record phase: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetPhase(id)
}

func (s *Store) GetPhase(id int64) (*PhaseRecord, error) {
	r := &PhaseRecord{}
	var endedAt string
	err := s.db.QueryRow(
		`SELECT id, session_id, phase, round, planned, elapsed, outcome, ended_at
		 FROM phase_log WHERE id = ?`, id,
	).Scan(&r.ID, &r.SessionID, &r.Phase, &r.Round, &r.Planned, &r.Elapsed, &r.Outcome, &endedAt)
	if err != nil {
		return nil, fmt.Errorf("get phase %d: %w", id, err)
	}
	r.EndedAt, _ = time.Parse(time.RFC3339, endedAt)
	return r, nil
}

func (s *Store) ListPhases(f PhaseFilter) ([]PhaseRecord, error) {
	query := `SELECT id, session_id, phase, round, planned, elapsed, outcome, ended_at FROM phase_log WHERE 1=1`
	var args []any

	if f.SessionID != nil {
		query += ` AND session_id = ?`
		args = append(args, *f.SessionID)
	}
	if f.Phase != "" {
		query += ` AND phase = ?`
		args = append(args, f.Phase)
	}
	if f.From != nil {
		query += ` AND ended_at >= ?`
		args = append(args, f.From.UTC().Format(time.RFC3339))
	}
	if f.To != nil {
		query += ` AND ended_at < ?`
		args = append(args, f.To.UTC().Format(time.RFC3339))
	}
	query += ` ORDER BY ended_at DESC, id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list phases: %w", err)
	}
	defer rows.Close()

	var records []PhaseRecord
	for rows.Next() {
		var r PhaseRecord
		var endedAt string
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Phase, &r.Round, &r.Planned, &r.Elapsed, &r.Outcome, &endedAt); err != nil {
			return nil, err
		}
		r.EndedAt, _ = time.Parse(time.RFC3339, endedAt)
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetDailyFocus sums elapsed focus and break time per day.
func (s *Store) GetDailyFocus(from, to time.Time) ([]DailyFocus, error) {
	rows, err := s.db.Query(`
		SELECT date(ended_at) AS day,
		       COALESCE(SUM(CASE WHEN phase = 'focus' THEN elapsed ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN phase != 'focus' THEN elapsed ELSE 0 END), 0),
		       COUNT(CASE WHEN phase = 'focus' AND outcome = 'completed' THEN 1 END)
		FROM phase_log
		WHERE ended_at >= ? AND ended_at < ?
		GROUP BY day
		ORDER BY day`,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("daily focus: %w", err)
	}
	defer rows.Close()

	var days []DailyFocus
	for rows.Next() {
		var d DailyFocus
		if err := rows.Scan(&d.Date, &d.FocusSeconds, &d.BreakSeconds, &d.FocusCompleted); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

func (s *Store) GetTodayFocus() (int64, error) {
	today := time.Now().UTC().Format("2006-01-02")
	var total sql.NullInt64
	err := s.db.QueryRow(`
		SELECT COALESCE(SUM(elapsed), 0)
		FROM phase_log
		WHERE date(ended_at) = ? AND phase = 'focus'`, today,
	).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Int64, nil
}
