package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/zenfocus/internal/store"
)

func ToCSV(records []store.PhaseRecord, sessions map[int64]*store.Session, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"ID", "Session", "Phase", "Round", "Ended", "Planned (s)", "Elapsed (s)", "Elapsed", "Outcome"}); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			fmt.Sprintf("%d", r.ID),
			sessionUUID(sessions, r.SessionID),
			r.Phase,
			fmt.Sprintf("%d", r.Round),
			r.EndedAt.Local().Format(time.RFC3339),
			fmt.Sprintf("%d", r.Planned),
			fmt.Sprintf("%d", r.Elapsed),
			formatDuration(r.Elapsed),
			r.Outcome,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func sessionUUID(sessions map[int64]*store.Session, id int64) string {
	if ss, ok := sessions[id]; ok {
		return ss.UUID
	}
	return "unknown"
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
