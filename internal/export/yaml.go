package export

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/zenfocus/internal/store"
)

func ToYAML(records []store.PhaseRecord, sessions map[int64]*store.Session, path string) error {
	data, err := yaml.Marshal(buildDocument(records, sessions))
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write yaml file: %w", err)
	}
	return nil
}
