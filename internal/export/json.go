package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/zenfocus/internal/store"
)

type document struct {
	ExportedAt string        `json:"exported_at" yaml:"exported_at"`
	Count      int           `json:"count" yaml:"count"`
	Phases     []phaseRecord `json:"phases" yaml:"phases"`
}

type phaseRecord struct {
	ID         int64  `json:"id" yaml:"id"`
	Session    string `json:"session" yaml:"session"`
	SessionID  int64  `json:"session_id" yaml:"session_id"`
	Phase      string `json:"phase" yaml:"phase"`
	Round      int    `json:"round" yaml:"round"`
	EndedAt    string `json:"ended_at" yaml:"ended_at"`
	PlannedSec int64  `json:"planned_seconds" yaml:"planned_seconds"`
	ElapsedSec int64  `json:"elapsed_seconds" yaml:"elapsed_seconds"`
	Elapsed    string `json:"elapsed" yaml:"elapsed"`
	Outcome    string `json:"outcome" yaml:"outcome"`
}

func buildDocument(records []store.PhaseRecord, sessions map[int64]*store.Session) document {
	doc := document{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(records),
	}
	for _, r := range records {
		doc.Phases = append(doc.Phases, phaseRecord{
			ID:         r.ID,
			Session:    sessionUUID(sessions, r.SessionID),
			SessionID:  r.SessionID,
			Phase:      r.Phase,
			Round:      r.Round,
			EndedAt:    r.EndedAt.Local().Format(time.RFC3339),
			PlannedSec: r.Planned,
			ElapsedSec: r.Elapsed,
			Elapsed:    formatDuration(r.Elapsed),
			Outcome:    r.Outcome,
		})
	}
	return doc
}

func ToJSON(records []store.PhaseRecord, sessions map[int64]*store.Session, path string) error {
	data, err := json.MarshalIndent(buildDocument(records, sessions), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
