package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/calistenia/catalog/internal/catalog"
)

// Validate checks a manifest for structural problems: missing slugs, groups
// outside the taxonomy, media paths that do not resolve to files, and filter
// values no exercise carries. It returns one message per violation; an empty
// slice means the manifest is consistent.
func Validate(m catalog.Manifest, staticRoot string) []string {
	var violations []string
	report := func(format string, args ...any) {
		violations = append(violations, fmt.Sprintf(format, args...))
	}

	present := map[string]map[string]bool{
		"groups":       {},
		"muscles":      {},
		"equipment":    {},
		"difficulties": {},
	}

	for _, ex := range m.Exercises {
		label := ex.Slug
		if label == "" {
			label = ex.Name
			if label == "" {
				label = ex.ID
			}
			report("missing slug for %s", label)
		}
		if !catalog.IsValidGroup(ex.Group) {
			report("invalid group %q in %s", ex.Group, label)
		}

		for angle, media := range ex.Media {
			for key, p := range map[string]string{
				"webm":   media.WebM,
				"mp4":    media.MP4,
				"poster": media.Poster,
				"image":  media.Image,
				"src":    media.Src,
			} {
				if p == "" {
					continue
				}
				if _, err := os.Stat(resolveStaticPath(staticRoot, p)); err != nil {
					report("missing media %s.%s: %s (%s)", angle, key, p, label)
				}
			}
		}

		mark(present["groups"], ex.Group)
		mark(present["muscles"], ex.Muscle)
		mark(present["equipment"], ex.Equipment)
		mark(present["difficulties"], ex.Difficulty)
	}

	filterLists := []struct {
		key    string
		values []string
	}{
		{"groups", m.Filters.Groups},
		{"muscles", m.Filters.Muscles},
		{"equipment", m.Filters.Equipment},
		{"difficulties", m.Filters.Difficulties},
	}
	for _, fl := range filterLists {
		key, values := fl.key, fl.values
		for _, v := range values {
			if v == catalog.FilterWildcard {
				continue
			}
			if !present[key][v] {
				report("filter value not present: filters.%s -> %s", key, v)
			}
		}
	}

	return violations
}

// resolveStaticPath maps a manifest media path to a filesystem path. Rooted
// paths are served out of the static root, anything else is relative to the
// working directory.
func resolveStaticPath(staticRoot, p string) string {
	if strings.HasPrefix(p, "/") {
		return filepath.Join(staticRoot, strings.TrimPrefix(p, "/"))
	}
	return p
}

func mark(set map[string]bool, v string) {
	if v != "" {
		set[v] = true
	}
}
