package catalog

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnumRuns = regexp.MustCompile(`[^a-z0-9]+`)

// stripMarks removes combining marks after canonical decomposition, so
// accented characters slugify to their base letters.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify lowercases s, strips diacritics, collapses non-alphanumeric runs
// to single hyphens and trims leading/trailing hyphens.
func Slugify(s string) string {
	s = strings.ToLower(s)
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}
	s = nonAlnumRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// SafeFile slugifies s for use as a file name, falling back to "file" when
// nothing survives slugification.
func SafeFile(s string) string {
	if slug := Slugify(s); slug != "" {
		return slug
	}
	return "file"
}

// BuildSlug derives the stable exercise identifier by slugifying each field
// independently and joining the non-empty tokens with hyphens. The result is
// both the storage directory name and the manifest primary key, so it must
// stay stable across runs for unchanged inputs.
func BuildSlug(muscle, equipment, difficulty, group, name string) string {
	parts := make([]string, 0, 5)
	for _, field := range []string{muscle, equipment, difficulty, group, name} {
		if token := Slugify(field); token != "" {
			parts = append(parts, token)
		}
	}
	return strings.Join(parts, "-")
}
