package manifest

import (
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/calistenia/catalog/internal/catalog"
)

// Modes identify which pipeline produced a manifest.
const (
	ModeCrawled   = "offline-crawled-html"
	ModeGenerated = "offline-generated"
)

// Provider is the upstream catalog every manifest is sourced from.
const Provider = "MuscleWiki"

// Build assembles the final manifest: entries sorted by name under Spanish
// collation and filter vocabularies derived from the entries themselves,
// each prefixed with the wildcard.
func Build(entries []catalog.ManifestEntry, mode string) catalog.Manifest {
	c := collate.New(language.Spanish, collate.Loose)

	sorted := make([]catalog.ManifestEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return c.CompareString(sorted[i].Name, sorted[j].Name) < 0
	})

	var groups, muscles, equipment, difficulties []string
	for _, e := range sorted {
		groups = append(groups, e.Group)
		muscles = append(muscles, e.Muscle)
		equipment = append(equipment, e.Equipment)
		difficulties = append(difficulties, e.Difficulty)
	}

	return catalog.Manifest{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Source:      catalog.ManifestSource{Provider: Provider, Mode: mode},
		Filters: catalog.ManifestFilters{
			Groups:       filterValues(c, groups),
			Muscles:      filterValues(c, muscles),
			Equipment:    filterValues(c, equipment),
			Difficulties: filterValues(c, difficulties),
		},
		Exercises: sorted,
	}
}

// filterValues dedupes and collation-sorts one filter vocabulary, dropping
// empties and prefixing the wildcard.
func filterValues(c *collate.Collator, values []string) []string {
	seen := make(map[string]bool, len(values))
	uniq := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		uniq = append(uniq, v)
	}
	sort.SliceStable(uniq, func(i, j int) bool {
		return c.CompareString(uniq[i], uniq[j]) < 0
	})
	return append([]string{catalog.FilterWildcard}, uniq...)
}
