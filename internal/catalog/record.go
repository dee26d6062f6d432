package catalog

import "strings"

// RawExercise carries the fields pulled out of a source document before
// normalization. Either SourceURL (HTML mode) or SourceID (API mode)
// identifies the exercise.
type RawExercise struct {
	SourceURL  string
	SourceID   string
	URLSlug    string
	Name       string
	Equipment  string
	Difficulty string
	Force      string
	Muscles    []string
	Secondary  []string
}

// NormalizeCrawl builds an ExerciseRecord from an HTML-mode raw exercise.
// Equipment inferred from the URL slug takes precedence over the page's own
// equipment field, which is frequently absent or ambiguous; a slug signalling
// unsupported machinery yields EquipmentUnsupported so the caller can drop
// the exercise.
func NormalizeCrawl(raw RawExercise) ExerciseRecord {
	name := strings.TrimSpace(raw.Name)
	if name == "" {
		name = strings.ReplaceAll(raw.URLSlug, "-", " ")
	}

	equipment := InferEquipmentFromSlug(raw.URLSlug)
	if equipment == "" {
		equipment = raw.Equipment
	}
	if equipment == "" {
		equipment = "Unknown"
	}
	equipment = NormalizeEquipment(equipment)

	difficulty := NormalizeDifficulty(raw.Difficulty)

	muscle := "Unknown"
	if len(raw.Muscles) > 0 {
		muscle = raw.Muscles[0]
	}
	muscle = NormalizeMuscle(muscle)

	group := ClassifyGroup(muscle, equipment, "", name)

	return ExerciseRecord{
		ID:               raw.SourceURL,
		SourceURL:        raw.SourceURL,
		Slug:             BuildSlug(muscle, equipment, difficulty, group, name),
		Name:             name,
		Muscle:           muscle,
		MusclesSecondary: normalizeMuscles(raw.Secondary),
		Equipment:        equipment,
		Difficulty:       difficulty,
		Force:            "",
		Group:            group,
	}
}

// NormalizeAPI builds an ExerciseRecord from an API-mode raw exercise.
// Unlike HTML mode there is no URL slug to infer equipment from, but the
// detail payload carries a force attribute and muscles reported as Unknown
// are resolved via name heuristics.
func NormalizeAPI(raw RawExercise) ExerciseRecord {
	name := strings.TrimSpace(raw.Name)
	if name == "" {
		name = raw.SourceID
	}

	equipment := NormalizeEquipment(raw.Equipment)
	difficulty := NormalizeDifficulty(raw.Difficulty)

	muscle := "Unknown"
	if len(raw.Muscles) > 0 {
		muscle = raw.Muscles[0]
	}
	muscle = ResolveUnknownMuscle(NormalizeMuscle(muscle), name)

	force := strings.ToLower(strings.TrimSpace(raw.Force))
	group := ClassifyGroup(muscle, equipment, force, name)

	secondary := raw.Secondary
	if secondary == nil {
		secondary = []string{}
	}

	return ExerciseRecord{
		ID:               raw.SourceID,
		SourceID:         raw.SourceID,
		Slug:             BuildSlug(muscle, equipment, difficulty, group, name),
		Name:             name,
		Muscle:           muscle,
		MusclesSecondary: secondary,
		Equipment:        equipment,
		Difficulty:       difficulty,
		Force:            force,
		Group:            group,
	}
}

func normalizeMuscles(in []string) []string {
	out := make([]string, 0, len(in))
	for _, m := range in {
		out = append(out, NormalizeMuscle(m))
	}
	return out
}
