package ingest

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Hash state lives next to the vector database under .recall. Each entry is
// a root-relative path mapped to the MD5 of its content at the last run, so
// re-ingestion can skip files that have not changed.

const stateFileName = "hashes.json"

func stateFilePath(root string) string {
	return filepath.Join(root, ".recall", stateFileName)
}

// loadHashState reads the path to hash map persisted by a previous run. A
// missing or unreadable state file means every file is treated as changed.
func loadHashState(root string) map[string]string {
	data, err := os.ReadFile(stateFilePath(root))
	if err != nil {
		return nil
	}

	var state map[string]string
	if err := json.Unmarshal(data, &state); err != nil {
		logrus.Debugf("ignoring corrupt hash state: %v", err)
		return nil
	}
	return state
}

// saveHashState persists the path to hash map for the next run's delta sync.
// Entries for files no longer present are dropped by rebuilding the map from
// scratch each run.
func saveHashState(root string, state map[string]string) error {
	if err := os.MkdirAll(filepath.Join(root, ".recall"), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(stateFilePath(root), data, 0644)
}
