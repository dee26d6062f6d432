package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calistenia/catalog/internal/catalog"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
}

func exerciseDir(t *testing.T, slug string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "public", "exercises", slug)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	return dir
}

func TestEntryFromDir_VideoWithPoster(t *testing.T) {
	t.Parallel()

	dir := exerciseDir(t, "push-up")
	touch(t, dir, "front.webm")
	touch(t, dir, "front.mp4")
	touch(t, dir, "poster-front.jpg")

	rec := catalog.ExerciseRecord{
		ID: "id-1", Slug: "push-up", Name: "Push Up",
		Muscle: "Chest", Equipment: "Bodyweight", Difficulty: "Beginner",
		Group: catalog.GroupPush,
	}
	entry := EntryFromDir(rec, dir, []string{"front", "side"})

	require.Equal(t, []string{"front"}, entry.Angles)
	front := entry.Media["front"]
	require.Equal(t, catalog.KindVideo, front.Type)
	require.Contains(t, front.WebM, "/push-up/front.webm")
	require.Contains(t, front.MP4, "/push-up/front.mp4")
	require.Contains(t, front.Poster, "/push-up/poster-front.jpg")
	require.Empty(t, front.Src)
	require.Equal(t, []string{"push", "chest", "bodyweight", "beginner"}, entry.Tags)
}

func TestEntryFromDir_PosterOnlyBecomesImage(t *testing.T) {
	t.Parallel()

	dir := exerciseDir(t, "neck-stretch")
	touch(t, dir, "poster-side.jpg")

	entry := EntryFromDir(catalog.ExerciseRecord{Slug: "neck-stretch", Group: catalog.GroupMovilidad}, dir, []string{"front", "side"})

	require.Equal(t, []string{"side"}, entry.Angles)
	side := entry.Media["side"]
	require.Equal(t, catalog.KindImage, side.Type)
	require.Contains(t, side.Image, "/neck-stretch/poster-side.jpg")
	require.Equal(t, side.Image, side.Poster)
}

func TestEntryFromDir_GifFallback(t *testing.T) {
	t.Parallel()

	dir := exerciseDir(t, "jumping-jacks")
	touch(t, dir, "front.gif")

	entry := EntryFromDir(catalog.ExerciseRecord{Slug: "jumping-jacks", Group: catalog.GroupPiernas}, dir, []string{"front"})

	front := entry.Media["front"]
	require.Equal(t, catalog.KindVideo, front.Type)
	require.Contains(t, front.Src, "/jumping-jacks/front.gif")
	require.Empty(t, front.WebM)
}

func TestEntryFromDir_MovFallback(t *testing.T) {
	t.Parallel()

	dir := exerciseDir(t, "toe-touch")
	touch(t, dir, "front.mov")

	entry := EntryFromDir(catalog.ExerciseRecord{Slug: "toe-touch", Group: catalog.GroupMovilidad}, dir, []string{"front"})

	front := entry.Media["front"]
	require.Equal(t, catalog.KindVideo, front.Type)
	require.Contains(t, front.Src, "/toe-touch/front.mov")
	require.Empty(t, front.WebM)
	require.NotNil(t, entry.MusclesSecondary)
}

func TestEntryFromDir_InvalidGroupCoerced(t *testing.T) {
	t.Parallel()

	dir := exerciseDir(t, "mystery")
	entry := EntryFromDir(catalog.ExerciseRecord{Slug: "mystery", Group: "cardio"}, dir, []string{"front"})

	require.Equal(t, catalog.GroupMovilidad, entry.Group)
	require.Empty(t, entry.Angles)
	require.Empty(t, entry.Media)
}
