package catalog

import (
	"regexp"
	"strings"
)

var whitespaceRuns = regexp.MustCompile(`\s+`)

// equipmentSynonyms maps raw source equipment labels onto the closed
// vocabulary. Unrecognized values pass through unchanged.
var equipmentSynonyms = map[string]string{
	"Bodyweight":      "Bodyweight",
	"Kettlebell":      "Kettlebells",
	"Kettlebells":     "Kettlebells",
	"Band":            "Band",
	"Resistance Band": "Band",
	"TRX":             "TRX",
	"Yoga":            "Yoga",
	"Stretches":       "Stretches",
	"Stretch":         "Stretches",
	"Cardio":          "Cardio",
	"Recovery":        "Recovery",
}

// slugEquipment maps URL-slug prefixes to equipment. Multi-word prefixes are
// tried before shorter ones so "resistance-band-..." never matches "band".
var slugEquipment = map[string]string{
	"kettlebell":            "Kettlebells",
	"kettlebells":           "Kettlebells",
	"trx":                   "TRX",
	"band":                  "Band",
	"resistance-band":       "Band",
	"yoga":                  "Yoga",
	"stretch":               "Stretches",
	"stretches":             "Stretches",
	"cardio":                "Cardio",
	"recovery":              "Recovery",
	"bodyweight":            "Bodyweight",
	"pull-ups":              "Bodyweight",
	"push-ups":              "Bodyweight",
	"chin-ups":              "Bodyweight",
	"box-dips":              "Bodyweight",
	"bench-dips":            "Bodyweight",
	"crunches":              "Bodyweight",
	"glute-bridge":          "Bodyweight",
	"bulgarian-split-squat": "Bodyweight",
}

var unsupportedEquipmentRe = regexp.MustCompile(`(^|-)barbell(-|$)|(^|-)dumbbell(-|$)|(^|-)machine(-|$)|(^|-)smith(-|$)|(^|-)cable(-|$)`)

// NormalizeEquipment maps a raw equipment value through the synonym table.
func NormalizeEquipment(v string) string {
	s := strings.TrimSpace(v)
	if canonical, ok := equipmentSynonyms[s]; ok {
		return canonical
	}
	return s
}

// InferEquipmentFromSlug guesses equipment from a URL slug, trying 3-word,
// 2-word and 1-word hyphen prefixes, then the whole slug. Slugs naming gym
// machinery return EquipmentUnsupported so those exercises are excluded
// rather than mis-bucketed. Returns "" when nothing matches.
func InferEquipmentFromSlug(urlSlug string) string {
	slug := strings.ToLower(urlSlug)
	tokens := splitNonEmpty(slug, "-")

	var first, firstTwo, firstThree string
	if len(tokens) > 0 {
		first = tokens[0]
	}
	if len(tokens) > 1 {
		firstTwo = strings.Join(tokens[:2], "-")
	}
	if len(tokens) > 2 {
		firstThree = strings.Join(tokens[:3], "-")
	}

	for _, candidate := range []string{firstThree, firstTwo, first, slug} {
		if candidate == "" {
			continue
		}
		if equipment, ok := slugEquipment[candidate]; ok {
			return equipment
		}
	}

	if unsupportedEquipmentRe.MatchString(slug) {
		return EquipmentUnsupported
	}
	return ""
}

// NormalizeDifficulty trims and collapses whitespace, defaulting to Unknown.
func NormalizeDifficulty(v string) string {
	return collapseOrUnknown(v)
}

// NormalizeMuscle trims and collapses whitespace, defaulting to Unknown.
func NormalizeMuscle(v string) string {
	return collapseOrUnknown(v)
}

func collapseOrUnknown(v string) string {
	s := whitespaceRuns.ReplaceAllString(strings.TrimSpace(v), " ")
	if s == "" {
		return "Unknown"
	}
	return s
}

// Name-based heuristics for muscles the API reports as Unknown. The source
// data is sparse for neck, forearm and machine-cardio movements.
var unknownMuscleRules = []struct {
	pattern *regexp.Regexp
	muscle  string
}{
	{regexp.MustCompile(`cervical|chin tucks?|levator scapulae`), "Neck"},
	{regexp.MustCompile(`radial deviation`), "Forearms"},
	{regexp.MustCompile(`elliptical`), "Calves"},
	{regexp.MustCompile(`shoulder|rotator cuff|scapular protraction|reverse expansion teardrops`), "Shoulders"},
}

// ResolveUnknownMuscle replaces an "Unknown" muscle with a best-effort guess
// derived from the exercise name. Known muscles pass through untouched.
func ResolveUnknownMuscle(muscle, name string) string {
	if !strings.EqualFold(strings.TrimSpace(muscle), "Unknown") {
		return muscle
	}
	n := strings.ToLower(name)
	for _, rule := range unknownMuscleRules {
		if rule.pattern.MatchString(n) {
			return rule.muscle
		}
	}
	return muscle
}

var (
	coreMuscleRe  = regexp.MustCompile(`abs|abdominal|oblique|core|lower back|erector`)
	legMuscleRe   = regexp.MustCompile(`quad|hamstring|glute|calf|calves|adductor|abductor|leg`)
	pullMuscleRe  = regexp.MustCompile(`lat|back|bicep|forearm|rear delt|trap|rhomboid`)
	pushMuscleRe  = regexp.MustCompile(`pectoral|chest|tricep|shoulder|deltoid`)
	mobilityWords = regexp.MustCompile(`stretch|mobility|recovery|yoga`)
)

// ClassifyGroup buckets an exercise into the closed group taxonomy via a
// priority-ordered rule cascade, first match wins. The order is load-bearing:
// equipment-based mobility rules outrank muscle-based rules, so a Yoga
// exercise targeting the core still classifies as movilidad.
func ClassifyGroup(muscle, equipment, force, name string) string {
	m := strings.ToLower(muscle)
	e := strings.ToLower(equipment)
	n := strings.ToLower(name)

	switch e {
	case "stretches", "yoga", "recovery":
		return GroupMovilidad
	}
	if coreMuscleRe.MatchString(m) {
		return GroupCore
	}
	if legMuscleRe.MatchString(m) {
		return GroupPiernas
	}
	if pullMuscleRe.MatchString(m) {
		return GroupPull
	}
	if pushMuscleRe.MatchString(m) {
		return GroupPush
	}
	if mobilityWords.MatchString(n) {
		return GroupMovilidad
	}
	if force == "pull" {
		return GroupPull
	}
	if force == "push" {
		return GroupPush
	}
	if e == "cardio" {
		return GroupPiernas
	}
	return GroupMovilidad
}

func splitNonEmpty(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
