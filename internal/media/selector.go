// Package media selects, downloads and transcodes per-angle exercise media.
package media

import (
	"regexp"
	"sort"
	"strings"

	"github.com/calistenia/catalog/internal/catalog"
)

// Rank scores a candidate for selection. Transcodable containers beat raw
// gifs, the preferred gender beats the rest only through the explicit filter
// chain, and a male clip wins ties because the source names male media most
// consistently.
func Rank(c catalog.MediaCandidate) int {
	lower := strings.ToLower(c.URL)
	score := 0
	switch {
	case strings.HasSuffix(lower, ".webm"):
		score += 40
	case strings.HasSuffix(lower, ".mp4"):
		score += 30
	case strings.HasSuffix(lower, ".gif"):
		score += 10
	}
	if c.Gender == "male" {
		score += 4
	}
	if c.Angle != "" {
		score += 2
	}
	return score
}

// SelectAngles picks the best candidate per requested angle from HTML-page
// media. Per angle the chain relaxes from gender-matched video down to any
// candidate at that angle, then falls back to a structured-data image.
func SelectAngles(media []catalog.MediaCandidate, gender string, angles, ldImages []string) map[string]catalog.MediaCandidate {
	ranked := rankStable(media)

	refs := make(map[string]catalog.MediaCandidate)
	for _, angle := range angles {
		hit, ok := firstMatch(ranked,
			func(m catalog.MediaCandidate) bool {
				return m.Gender == gender && m.Angle == angle && m.Kind == catalog.KindVideo
			},
			func(m catalog.MediaCandidate) bool { return m.Gender == gender && m.Angle == angle },
			func(m catalog.MediaCandidate) bool { return m.Angle == angle && m.Kind == catalog.KindVideo },
			func(m catalog.MediaCandidate) bool { return m.Angle == angle },
		)
		if ok {
			refs[angle] = hit
			continue
		}
		if img := pickPosterImage(ldImages, gender, angle); img != "" {
			refs[angle] = catalog.MediaCandidate{URL: img, Kind: catalog.KindImage, Angle: angle}
		}
	}
	return refs
}

// SelectAnglesAPI picks per-angle candidates from API media, which carry
// weaker hints: gender-and-angle, then angle, then gender, then whatever
// ranks first.
func SelectAnglesAPI(media []catalog.MediaCandidate, gender string, angles []string) map[string]catalog.MediaCandidate {
	ranked := rankStable(media)

	refs := make(map[string]catalog.MediaCandidate)
	for _, angle := range angles {
		hit, ok := firstMatch(ranked,
			func(m catalog.MediaCandidate) bool { return m.Angle == angle && m.Gender == gender },
			func(m catalog.MediaCandidate) bool { return m.Angle == angle },
			func(m catalog.MediaCandidate) bool { return m.Gender == gender },
			func(m catalog.MediaCandidate) bool { return true },
		)
		if ok {
			refs[angle] = hit
		}
	}
	return refs
}

// SelectPosters picks a poster image URL per angle from structured-data
// images: gender and angle in either order, then angle alone, then the first
// image.
func SelectPosters(ldImages []string, gender string, angles []string) map[string]string {
	refs := make(map[string]string)
	for _, angle := range angles {
		if img := pickPosterImage(ldImages, gender, angle); img != "" {
			refs[angle] = img
		}
	}
	return refs
}

func pickPosterImage(ldImages []string, gender, angle string) string {
	both := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(gender) + `.*` + regexp.QuoteMeta(angle) +
		`|` + regexp.QuoteMeta(angle) + `.*` + regexp.QuoteMeta(gender))
	angleOnly := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(angle))

	for _, u := range ldImages {
		if both.MatchString(u) {
			return u
		}
	}
	for _, u := range ldImages {
		if angleOnly.MatchString(u) {
			return u
		}
	}
	if len(ldImages) > 0 {
		return ldImages[0]
	}
	return ""
}

// rankStable returns candidates ordered by descending rank, preserving the
// discovery order of equally ranked candidates.
func rankStable(media []catalog.MediaCandidate) []catalog.MediaCandidate {
	ranked := make([]catalog.MediaCandidate, len(media))
	copy(ranked, media)
	sort.SliceStable(ranked, func(i, j int) bool {
		return Rank(ranked[i]) > Rank(ranked[j])
	})
	return ranked
}

func firstMatch(ranked []catalog.MediaCandidate, preds ...func(catalog.MediaCandidate) bool) (catalog.MediaCandidate, bool) {
	for _, pred := range preds {
		for _, m := range ranked {
			if pred(m) {
				return m, true
			}
		}
	}
	return catalog.MediaCandidate{}, false
}
