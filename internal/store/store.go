// Package store manages the on-disk catalog layout: one directory per
// exercise slug holding its media files and a meta.json sidecar, plus raw
// source snapshots for debugging.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/calistenia/catalog/internal/catalog"
)

// MetaFile is the per-exercise sidecar filename.
const MetaFile = "meta.json"

// ExerciseStore roots all per-exercise directories under a single output
// directory, typically public/exercises.
type ExerciseStore struct {
	root string
}

// NewExerciseStore returns a store rooted at root. The directory is created
// on first write, not here.
func NewExerciseStore(root string) *ExerciseStore {
	return &ExerciseStore{root: root}
}

// Root returns the store's root directory.
func (s *ExerciseStore) Root() string { return s.root }

// Dir returns the directory path for a slug without creating it.
func (s *ExerciseStore) Dir(slug string) string {
	return filepath.Join(s.root, slug)
}

// EnsureDir creates and returns the directory for a slug.
func (s *ExerciseStore) EnsureDir(slug string) (string, error) {
	dir := s.Dir(slug)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create exercise dir: %w", err)
	}
	return dir, nil
}

// WriteMeta persists the normalized record as meta.json in the slug's
// directory, creating it if needed.
func (s *ExerciseStore) WriteMeta(rec catalog.ExerciseRecord) error {
	dir, err := s.EnsureDir(rec.Slug)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal meta for %s: %w", rec.Slug, err)
	}
	if err := os.WriteFile(filepath.Join(dir, MetaFile), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write meta for %s: %w", rec.Slug, err)
	}
	return nil
}

// ReadMeta loads the meta.json sidecar from an exercise directory.
func ReadMeta(dir string) (catalog.ExerciseRecord, error) {
	var rec catalog.ExerciseRecord
	data, err := os.ReadFile(filepath.Join(dir, MetaFile))
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("decode %s: %w", filepath.Join(dir, MetaFile), err)
	}
	return rec, nil
}

// HasMeta reports whether the slug already has a persisted meta.json.
func (s *ExerciseStore) HasMeta(slug string) bool {
	_, err := os.Stat(filepath.Join(s.Dir(slug), MetaFile))
	return err == nil
}

// ExerciseDirs lists every directory under the root that carries a meta.json
// sidecar, sorted by name.
func (s *ExerciseStore) ExerciseDirs() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read store root: %w", err)
	}

	var dirs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(s.root, e.Name())
		if _, err := os.Stat(filepath.Join(dir, MetaFile)); err == nil {
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// MediaComplete reports whether an angle already has synced media in dir:
// a transcoded video, a raw gif or mov clip, or a poster image.
func MediaComplete(dir, angle string) bool {
	for _, name := range []string{
		angle + ".webm",
		angle + ".mp4",
		angle + ".gif",
		angle + ".mov",
		"poster-" + angle + ".jpg",
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// PublicPath maps an on-disk path to the URL path the gallery serves it
// from: forward slashes, the leading public/ segment stripped, rooted at /.
func PublicPath(p string) string {
	p = filepath.ToSlash(p)
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "public/")
	return "/" + strings.TrimLeft(p, "/")
}

// SaveRaw persists one raw source snapshot (sitemap, listing payload, page
// body) under the raw root for later inspection.
func SaveRaw(rawRoot, name string, data []byte) error {
	if err := os.MkdirAll(rawRoot, 0o755); err != nil {
		return fmt.Errorf("create raw dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(rawRoot, name), data, 0o644); err != nil {
		return fmt.Errorf("write raw %s: %w", name, err)
	}
	return nil
}
