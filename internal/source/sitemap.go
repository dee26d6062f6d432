// Package source enumerates exercises from the two upstream surfaces: the
// public sitemap for HTML crawling and the hosted listing API for sync runs.
package source

import (
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
)

// ExercisePrefix is the canonical exercise page URL prefix. Sitemap entries
// outside it (blog posts, tools, category hubs) are not exercises.
const ExercisePrefix = "https://musclewiki.com/exercise/"

// ExerciseURLs parses a sitemap document and returns the exercise page URLs
// in document order, deduplicated.
func ExerciseURLs(sitemapXML []byte) ([]string, error) {
	doc, err := xmlquery.Parse(strings.NewReader(string(sitemapXML)))
	if err != nil {
		return nil, fmt.Errorf("parse sitemap: %w", err)
	}

	var urls []string
	seen := make(map[string]bool)
	for _, node := range xmlquery.Find(doc, "//loc") {
		loc := strings.TrimSpace(node.InnerText())
		if !strings.HasPrefix(loc, ExercisePrefix) || seen[loc] {
			continue
		}
		seen[loc] = true
		urls = append(urls, loc)
	}
	return urls, nil
}
