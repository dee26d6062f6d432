package manifest

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/calistenia/catalog/internal/catalog"
	"github.com/calistenia/catalog/internal/store"
)

// RebuildFromDisk reconstructs manifest entries from the meta.json sidecars
// under the store root, without touching the network. Directories with a
// corrupt sidecar are skipped with a warning.
func RebuildFromDisk(s *store.ExerciseStore, angles []string, logger *zap.Logger) ([]catalog.ManifestEntry, error) {
	dirs, err := s.ExerciseDirs()
	if err != nil {
		return nil, fmt.Errorf("list exercise dirs: %w", err)
	}

	entries := make([]catalog.ManifestEntry, 0, len(dirs))
	for _, dir := range dirs {
		rec, err := store.ReadMeta(dir)
		if err != nil {
			logger.Warn("skipping unreadable meta", zap.String("dir", dir), zap.Error(err))
			continue
		}
		entries = append(entries, EntryFromDir(rec, dir, angles))
	}
	return entries, nil
}
