package extract

import (
	"regexp"
	"strings"

	"github.com/calistenia/catalog/internal/catalog"
)

var (
	// The listing API has no stable schema; media URLs hide at arbitrary
	// depths under arbitrary keys, so discovery walks every string value.
	apiMediaExtRe = regexp.MustCompile(`\.(mp4|mov|webm|gif|jpe?g|png|webp)(\?|$)`)
	apiImageExtRe = regexp.MustCompile(`\.(jpe?g|png|webp)(\?|$)`)

	instructionKeyRe = regexp.MustCompile(`(?i)instruction|step`)
	numberedSplitRe  = regexp.MustCompile(`\n+|\r+|\d+\.\s+`)
)

// PickField returns the first non-empty trimmed string found under any of the
// given keys.
func PickField(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := obj[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64, bool:
			// Numeric or boolean fields never carry the text we want.
		}
	}
	return ""
}

// Walk visits every value in a decoded JSON document depth-first, passing the
// dotted key path leading to it. Map iteration order is not stable, so
// callers must not depend on visit order between siblings.
func Walk(value any, visit func(value any, keyPath []string)) {
	walk(value, nil, visit)
}

func walk(value any, path []string, visit func(value any, keyPath []string)) {
	visit(value, path)
	switch v := value.(type) {
	case map[string]any:
		for k, child := range v {
			walk(child, append(path[:len(path):len(path)], k), visit)
		}
	case []any:
		for _, child := range v {
			walk(child, path, visit)
		}
	}
}

// FlattenMedia walks an API detail payload and collects every media URL as a
// candidate, inferring gender and angle from the key path first and the URL
// text second. Gifs count as video.
func FlattenMedia(detail map[string]any) []catalog.MediaCandidate {
	var out []catalog.MediaCandidate
	seen := make(map[string]bool)

	Walk(detail, func(value any, keyPath []string) {
		s, ok := value.(string)
		if !ok {
			return
		}
		s = strings.TrimSpace(s)
		lower := strings.ToLower(s)
		if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
			return
		}
		if !apiMediaExtRe.MatchString(lower) || seen[s] {
			return
		}
		seen[s] = true

		kind := catalog.KindVideo
		if apiImageExtRe.MatchString(lower) {
			kind = catalog.KindImage
		}

		hint := strings.ToLower(strings.Join(keyPath, ".")) + " " + lower
		out = append(out, catalog.MediaCandidate{
			URL:    s,
			Kind:   kind,
			Gender: genderFromHint(hint),
			Angle:  angleFromHint(hint),
		})
	})

	return out
}

func genderFromHint(hint string) string {
	switch {
	case strings.Contains(hint, "female"):
		return "female"
	case strings.Contains(hint, "male"):
		return "male"
	}
	return ""
}

func angleFromHint(hint string) string {
	switch {
	case strings.Contains(hint, "side"):
		return catalog.AngleSide
	case strings.Contains(hint, "front"):
		return catalog.AngleFront
	}
	return ""
}

// Instructions pulls ordered instruction lines out of an API detail payload.
// Well-known keys are tried first; failing those, the document is walked for
// any key that looks instruction-like.
func Instructions(detail map[string]any) []string {
	for _, key := range []string{"instructions", "Instructions", "steps", "Steps", "exercise_instructions"} {
		if steps := instructionLines(detail[key]); len(steps) > 0 {
			return steps
		}
	}

	var found []string
	Walk(detail, func(value any, keyPath []string) {
		if len(found) > 0 || len(keyPath) == 0 {
			return
		}
		if !instructionKeyRe.MatchString(keyPath[len(keyPath)-1]) {
			return
		}
		if steps := instructionLines(value); len(steps) > 0 {
			found = steps
		}
	})
	return found
}

// instructionLines normalizes one candidate value into instruction lines: an
// array keeps its trimmed string items, a blob string is split on newlines
// and numbered prefixes.
func instructionLines(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				if t := strings.TrimSpace(s); t != "" {
					out = append(out, t)
				}
			}
		}
		return out
	case string:
		var out []string
		for _, part := range numberedSplitRe.Split(val, -1) {
			if t := strings.TrimSpace(part); t != "" {
				out = append(out, t)
			}
		}
		return out
	default:
		return nil
	}
}

// CSVList normalizes a value that may be an array of strings or a
// comma-separated string into a trimmed string slice.
func CSVList(v any) []string {
	var out []string
	push := func(s string) {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	switch val := v.(type) {
	case []any:
		for _, item := range val {
			if s, ok := item.(string); ok {
				push(s)
			}
		}
	case string:
		for _, part := range strings.Split(val, ",") {
			push(part)
		}
	}
	return out
}
