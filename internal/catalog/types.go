// Package catalog defines the canonical exercise data model and the
// normalization rules that map raw MuscleWiki vocabulary into it.
package catalog

// Groups form the closed training-group taxonomy. Entries whose derived
// group falls outside this set are coerced to GroupMovilidad, never rejected.
const (
	GroupPush      = "push"
	GroupPull      = "pull"
	GroupPiernas   = "piernas"
	GroupCore      = "core"
	GroupMovilidad = "movilidad"
)

// ValidGroups lists the closed group taxonomy in declaration order.
var ValidGroups = []string{GroupPush, GroupPull, GroupPiernas, GroupCore, GroupMovilidad}

// AllowedEquipment is the closed equipment vocabulary. Raw values outside
// this set are mapped via the synonym table or dropped upstream.
var AllowedEquipment = map[string]bool{
	"Bodyweight":  true,
	"Kettlebells": true,
	"Stretches":   true,
	"Band":        true,
	"TRX":         true,
	"Yoga":        true,
	"Cardio":      true,
	"Recovery":    true,
}

// EquipmentUnsupported marks exercises that must be excluded from the crawl
// because they need gym machinery the gallery does not cover.
const EquipmentUnsupported = "Unsupported"

// Angles the pipeline knows how to sync media for.
const (
	AngleFront = "front"
	AngleSide  = "side"
)

// Media candidate kinds.
const (
	KindVideo = "video"
	KindImage = "image"
)

// MediaCandidate is one discovered media URL tagged with whatever angle,
// gender and container hints could be inferred from its URL or key path.
type MediaCandidate struct {
	URL    string `json:"url"`
	Kind   string `json:"kind"`
	Gender string `json:"gender,omitempty"`
	Angle  string `json:"angle,omitempty"`
}

// ExerciseRecord is the normalized per-exercise document persisted as
// meta.json inside the exercise's output directory.
type ExerciseRecord struct {
	ID               string                    `json:"id"`
	SourceURL        string                    `json:"sourceUrl,omitempty"`
	SourceID         string                    `json:"sourceId,omitempty"`
	Slug             string                    `json:"slug"`
	Name             string                    `json:"name"`
	Muscle           string                    `json:"muscle"`
	MusclesSecondary []string                  `json:"musclesSecondary"`
	Equipment        string                    `json:"equipment"`
	Difficulty       string                    `json:"difficulty"`
	Force            string                    `json:"force"`
	Group            string                    `json:"group"`
	Steps            []string                  `json:"steps,omitempty"`
	MediaRefs        map[string]MediaCandidate `json:"mediaRefs,omitempty"`
	PosterRefs       map[string]string         `json:"posterRefs,omitempty"`
}

// AngleMedia is the discriminated per-angle media shape in the manifest.
// Type is "video" (webm/mp4 with optional poster, or a raw src fallback)
// or "image" (poster only).
type AngleMedia struct {
	Type   string `json:"type"`
	WebM   string `json:"webm,omitempty"`
	MP4    string `json:"mp4,omitempty"`
	Poster string `json:"poster,omitempty"`
	Image  string `json:"image,omitempty"`
	Src    string `json:"src,omitempty"`
}

// ManifestEntry is the per-exercise shape the gallery consumes. Media keys
// reflect what actually exists on disk after sync, not extraction intent.
type ManifestEntry struct {
	ID               string                `json:"id"`
	Slug             string                `json:"slug"`
	Name             string                `json:"name"`
	Muscle           string                `json:"muscle"`
	MusclesSecondary []string              `json:"musclesSecondary"`
	Equipment        string                `json:"equipment"`
	Difficulty       string                `json:"difficulty"`
	Group            string                `json:"group"`
	Angles           []string              `json:"angles"`
	Media            map[string]AngleMedia `json:"media"`
	Tags             []string              `json:"tags"`
}

// ManifestSource identifies which pipeline produced a manifest.
type ManifestSource struct {
	Provider string `json:"provider"`
	Mode     string `json:"mode"`
}

// ManifestFilters enumerates the filter vocabularies offered by the gallery.
// Each list starts with the wildcard sentinel "todos".
type ManifestFilters struct {
	Groups       []string `json:"groups"`
	Muscles      []string `json:"muscles"`
	Equipment    []string `json:"equipment"`
	Difficulties []string `json:"difficulties"`
}

// Manifest is the aggregated document written to exercises.manifest.json.
type Manifest struct {
	GeneratedAt string          `json:"generatedAt"`
	Source      ManifestSource  `json:"source"`
	Filters     ManifestFilters `json:"filters"`
	Exercises   []ManifestEntry `json:"exercises"`
}

// FilterWildcard is the sentinel value prefixed to every filter list.
const FilterWildcard = "todos"

// IsValidGroup reports whether g belongs to the closed group taxonomy.
func IsValidGroup(g string) bool {
	for _, v := range ValidGroups {
		if g == v {
			return true
		}
	}
	return false
}
