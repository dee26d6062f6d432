package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/calistenia/catalog/internal/catalog"
)

type fakeDownloader struct {
	payloads map[string][]byte
	calls    []string
}

func (f *fakeDownloader) Download(_ context.Context, rawURL string) ([]byte, error) {
	f.calls = append(f.calls, rawURL)
	if data, ok := f.payloads[rawURL]; ok {
		return data, nil
	}
	return nil, errors.New("404 Not Found @ " + rawURL)
}

type fakeEncoder struct{}

func (fakeEncoder) ToWebM(_ context.Context, _, output string) error {
	return os.WriteFile(output, []byte("webm"), 0o644)
}

func (fakeEncoder) ToMP4(_ context.Context, _, output string) error {
	return os.WriteFile(output, []byte("mp4"), 0o644)
}

func (fakeEncoder) Poster(_ context.Context, _, output string) error {
	return os.WriteFile(output, []byte("jpg"), 0o644)
}

func testRecord(slug string) catalog.ExerciseRecord {
	return catalog.ExerciseRecord{
		Slug: slug,
		MediaRefs: map[string]catalog.MediaCandidate{
			"front": {URL: "https://cdn/clip-front.mp4", Kind: catalog.KindVideo, Angle: "front"},
		},
	}
}

func TestSync_TranscodesVideo(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dl := &fakeDownloader{payloads: map[string][]byte{
		"https://cdn/clip-front.mp4": []byte("raw-video"),
	}}
	s := NewSyncer(dl, fakeEncoder{}, SyncerOptions{
		Angles:    []string{"front", "side"},
		Transcode: true,
	}, zap.NewNop())

	s.Sync(context.Background(), testRecord("push-up-transcode"), dir)

	require.FileExists(t, filepath.Join(dir, "front.webm"))
	require.FileExists(t, filepath.Join(dir, "front.mp4"))
	require.FileExists(t, filepath.Join(dir, "poster-front.jpg"))
	require.NoFileExists(t, filepath.Join(dir, "side.webm"))
}

func TestSync_RawCopyWithoutTranscode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dl := &fakeDownloader{payloads: map[string][]byte{
		"https://cdn/clip-front.mp4": []byte("raw-video"),
	}}
	s := NewSyncer(dl, nil, SyncerOptions{Angles: []string{"front"}}, zap.NewNop())

	s.Sync(context.Background(), testRecord("push-up-rawcopy"), dir)

	data, err := os.ReadFile(filepath.Join(dir, "front.mp4"))
	require.NoError(t, err)
	require.Equal(t, "raw-video", string(data))
	require.NoFileExists(t, filepath.Join(dir, "front.webm"))
}

func TestSync_RawCopyKeepsMovContainer(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dl := &fakeDownloader{payloads: map[string][]byte{
		"https://cdn/clip-front.mov": []byte("quicktime"),
	}}
	rec := catalog.ExerciseRecord{
		Slug: "push-up-mov",
		MediaRefs: map[string]catalog.MediaCandidate{
			"front": {URL: "https://cdn/clip-front.mov", Kind: catalog.KindVideo, Angle: "front"},
		},
	}
	s := NewSyncer(dl, nil, SyncerOptions{Angles: []string{"front"}}, zap.NewNop())
	s.Sync(context.Background(), rec, dir)

	data, err := os.ReadFile(filepath.Join(dir, "front.mov"))
	require.NoError(t, err)
	require.Equal(t, "quicktime", string(data))
	require.NoFileExists(t, filepath.Join(dir, "front.gif"))
}

func TestSync_ImageBecomesPoster(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dl := &fakeDownloader{payloads: map[string][]byte{
		"https://cdn/still-front.jpg": []byte("still"),
	}}
	rec := catalog.ExerciseRecord{
		Slug: "x",
		MediaRefs: map[string]catalog.MediaCandidate{
			"front": {URL: "https://cdn/still-front.jpg", Kind: catalog.KindImage, Angle: "front"},
		},
	}
	s := NewSyncer(dl, nil, SyncerOptions{Angles: []string{"front"}}, zap.NewNop())
	s.Sync(context.Background(), rec, dir)

	data, err := os.ReadFile(filepath.Join(dir, "poster-front.jpg"))
	require.NoError(t, err)
	require.Equal(t, "still", string(data))
}

func TestSync_PosterRefDownloaded(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dl := &fakeDownloader{payloads: map[string][]byte{
		"https://cdn/clip-front.mp4": []byte("raw-video"),
		"https://cdn/poster.jpg":     []byte("poster"),
	}}
	rec := testRecord("push-up-posterref")
	rec.PosterRefs = map[string]string{"front": "https://cdn/poster.jpg"}

	s := NewSyncer(dl, nil, SyncerOptions{Angles: []string{"front"}}, zap.NewNop())
	s.Sync(context.Background(), rec, dir)

	data, err := os.ReadFile(filepath.Join(dir, "poster-front.jpg"))
	require.NoError(t, err)
	require.Equal(t, "poster", string(data))
}

func TestSync_ResumeSkipsExisting(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "front.webm"), []byte("old"), 0o644))

	dl := &fakeDownloader{payloads: map[string][]byte{}}
	s := NewSyncer(dl, nil, SyncerOptions{Angles: []string{"front"}, Resume: true}, zap.NewNop())
	s.Sync(context.Background(), testRecord("push-up-resume"), dir)

	require.Empty(t, dl.calls)
}

func TestSync_DownloadFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dl := &fakeDownloader{payloads: map[string][]byte{}}
	s := NewSyncer(dl, nil, SyncerOptions{Angles: []string{"front"}}, zap.NewNop())

	s.Sync(context.Background(), testRecord("push-up-dlfail"), dir)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}
