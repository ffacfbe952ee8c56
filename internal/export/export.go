// Package export writes the phase log to CSV, JSON or YAML files.
package export

import (
	"fmt"
	"strings"

	"github.com/sadopc/zenfocus/internal/store"
)

// Formats lists the supported output formats.
var Formats = []string{"csv", "json", "yaml"}

// Write exports records in the named format.
func Write(format string, records []store.PhaseRecord, sessions map[int64]*store.Session, path string) error {
	switch strings.ToLower(format) {
	case "csv":
		return ToCSV(records, sessions, path)
	case "json":
		return ToJSON(records, sessions, path)
	case "yaml", "yml":
		return ToYAML(records, sessions, path)
	}
	return fmt.Errorf("unsupported export format %q (want one of %s)", format, strings.Join(Formats, ", "))
}

// FromStore exports the phase log rows matching filter and returns how
// many were written.
func FromStore(st *store.Store, filter store.PhaseFilter, format, path string) (int, error) {
	records, err := st.ListPhases(filter)
	if err != nil {
		return 0, err
	}
	list, err := st.ListSessions(0)
	if err != nil {
		return 0, err
	}
	sessions := make(map[int64]*store.Session, len(list))
	for i := range list {
		sessions[list[i].ID] = &list[i]
	}
	if err := Write(format, records, sessions, path); err != nil {
		return 0, err
	}
	return len(records), nil
}
