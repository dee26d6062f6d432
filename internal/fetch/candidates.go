package fetch

import (
	"net/url"
	"strings"
)

// Candidates returns the fallback URL list for a binary download: the URL as
// given, then the last path segment lowercased, then the whole path
// lowercased. Duplicates are elided while preserving order.
func Candidates(rawURL string) []string {
	out := make([]string, 0, 3)
	seen := make(map[string]bool, 3)
	push := func(u string) {
		if u != "" && !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}
	push(rawURL)

	u, err := url.Parse(rawURL)
	if err != nil {
		return out
	}

	segments := strings.Split(u.Path, "/")
	if last := segments[len(segments)-1]; last != "" {
		lowerLast := strings.ToLower(last)
		if lowerLast != last {
			v := *u
			parts := strings.Split(v.Path, "/")
			parts[len(parts)-1] = lowerLast
			v.Path = strings.Join(parts, "/")
			push(v.String())
		}
	}

	if lower := strings.ToLower(u.Path); lower != u.Path {
		v := *u
		v.Path = lower
		push(v.String())
	}

	return out
}
