// Package extract pulls structured exercise fields out of raw source
// documents: JSON-LD blocks and inline scripts in HTML pages, and unstable
// JSON payloads from the listing API.
package extract

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/calistenia/catalog/internal/catalog"
)

// ErrNoExerciseData marks a page with no usable ExerciseAction block.
var ErrNoExerciseData = errors.New("no ExerciseAction JSON-LD found")

var (
	ldBlockRe = regexp.MustCompile(`(?s)<script type="application/ld\+json">(.*?)</script>`)
	// Asset URLs are scattered across inline scripts in varying shapes, so
	// media discovery scans the whole document rather than the DOM.
	mediaURLRe = regexp.MustCompile(`(?i)https://media\.musclewiki\.com/[^"'<>\s]+\.(?:gif|mp4|webm|jpe?g|png|webp)`)

	videoExtRe = regexp.MustCompile(`\.(mp4|webm)$`)
	gifExtRe   = regexp.MustCompile(`\.gif$`)
)

// PageData is everything extracted from one exercise HTML page.
type PageData struct {
	URL             string
	URLSlug         string
	Name            string
	DescriptionHTML string
	Equipment       string
	Difficulty      string
	MuscleGroups    []string
	SecondaryM      []string
	ImagesLD        []string
	Media           []catalog.MediaCandidate
	CorrectSteps    []string
}

// ParseExercisePage extracts the ExerciseAction JSON-LD block, scattered
// media URLs, and instruction steps from an exercise page. Malformed JSON-LD
// blocks are skipped, not fatal; ErrNoExerciseData is returned when no block
// identifies the page as an exercise.
func ParseExercisePage(html []byte, pageURL string) (*PageData, error) {
	doc := string(html)

	ld := findExerciseAction(doc)
	if ld == nil {
		return nil, ErrNoExerciseData
	}

	media := make([]catalog.MediaCandidate, 0, 8)
	seen := make(map[string]bool)
	for _, m := range mediaURLRe.FindAllString(doc, -1) {
		if seen[m] {
			continue
		}
		seen[m] = true
		media = append(media, ParseMediaURL(m))
	}

	return &PageData{
		URL:             pageURL,
		URLSlug:         SlugFromExerciseURL(pageURL),
		Name:            strings.TrimSpace(stringField(ld, "name")),
		DescriptionHTML: stringField(ld, "description"),
		Equipment:       strings.TrimSpace(firstString(ld, "equipment", "exerciseType")),
		Difficulty:      strings.TrimSpace(stringFieldDefault(ld, "difficulty", "Unknown")),
		MuscleGroups:    stringList(ld["muscleGroup"]),
		SecondaryM:      stringList(ld["secondaryMuscleGroups"]),
		ImagesLD:        stringList(ld["image"]),
		Media:           media,
		CorrectSteps:    CorrectSteps(doc),
	}, nil
}

// findExerciseAction scans every ld+json block and returns the first object
// whose @type is ExerciseAction, either directly or nested in a @graph array.
func findExerciseAction(doc string) map[string]any {
	for _, match := range ldBlockRe.FindAllStringSubmatch(doc, -1) {
		var data map[string]any
		if err := json.Unmarshal([]byte(match[1]), &data); err != nil {
			continue
		}
		if data["@type"] == "ExerciseAction" {
			return data
		}
		graph, ok := data["@graph"].([]any)
		if !ok {
			continue
		}
		for _, node := range graph {
			obj, ok := node.(map[string]any)
			if ok && obj["@type"] == "ExerciseAction" {
				return obj
			}
		}
	}
	return nil
}

// ParseMediaURL classifies a media URL into a candidate, inferring kind,
// gender and angle from the URL text. Animated gifs count as video.
func ParseMediaURL(rawURL string) catalog.MediaCandidate {
	lower := strings.ToLower(rawURL)

	kind := catalog.KindImage
	if videoExtRe.MatchString(lower) || gifExtRe.MatchString(lower) {
		kind = catalog.KindVideo
	}

	gender := ""
	switch {
	case strings.Contains(lower, "female"):
		gender = "female"
	case strings.Contains(lower, "male"):
		gender = "male"
	}

	angle := ""
	switch {
	case strings.Contains(lower, "side"):
		angle = catalog.AngleSide
	case strings.Contains(lower, "front"):
		angle = catalog.AngleFront
	}

	return catalog.MediaCandidate{URL: rawURL, Kind: kind, Gender: gender, Angle: angle}
}

// SlugFromExerciseURL returns the slug portion of an exercise page URL, or
// "" when the URL is not an exercise page.
func SlugFromExerciseURL(pageURL string) string {
	_, after, found := strings.Cut(pageURL, "/exercise/")
	if !found {
		return ""
	}
	return strings.TrimRight(after, "/")
}

func stringField(obj map[string]any, key string) string {
	if s, ok := obj[key].(string); ok {
		return s
	}
	return ""
}

func stringFieldDefault(obj map[string]any, key, def string) string {
	if s := stringField(obj, key); s != "" {
		return s
	}
	return def
}

func firstString(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := stringField(obj, k); s != "" {
			return s
		}
	}
	return ""
}

// stringList normalizes a JSON value that may be a string or an array of
// values into a string slice.
func stringList(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
