package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/calistenia/catalog/internal/catalog"
	"github.com/calistenia/catalog/internal/store"
)

func TestWriteAndRead(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data", "exercises.manifest.json")
	m := Build([]catalog.ManifestEntry{entry("Push Up", catalog.GroupPush, "Chest")}, ModeCrawled)

	require.NoError(t, Write(path, m))
	require.NoFileExists(t, path+".tmp")

	got, err := Read(path)
	require.NoError(t, err)
	require.Equal(t, m, got)
}

func TestRead_Missing(t *testing.T) {
	t.Parallel()

	_, err := Read(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestRebuildFromDisk(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	s := store.NewExerciseStore(root)
	require.NoError(t, s.WriteMeta(catalog.ExerciseRecord{
		Slug: "push-up", Name: "Push Up", Group: catalog.GroupPush,
	}))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir("push-up"), "front.mp4"), []byte("x"), 0o644))

	// Corrupt sidecar must be skipped, not fatal.
	badDir := filepath.Join(root, "broken")
	require.NoError(t, os.MkdirAll(badDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(badDir, store.MetaFile), []byte("{"), 0o644))

	entries, err := RebuildFromDisk(s, []string{"front", "side"}, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "push-up", entries[0].Slug)
	require.Equal(t, []string{"front"}, entries[0].Angles)
	require.Contains(t, entries[0].Media["front"].MP4, "/push-up/front.mp4")
}
