package source

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const sitemapDoc = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://musclewiki.com/exercise/push-up/</loc></url>
  <url><loc> https://musclewiki.com/exercise/bodyweight-squat/ </loc></url>
  <url><loc>https://musclewiki.com/exercise/push-up/</loc></url>
  <url><loc>https://musclewiki.com/blog/how-to-train/</loc></url>
  <url><loc>https://musclewiki.com/</loc></url>
</urlset>`

func TestExerciseURLs(t *testing.T) {
	t.Parallel()

	urls, err := ExerciseURLs([]byte(sitemapDoc))
	require.NoError(t, err)
	require.Equal(t, []string{
		"https://musclewiki.com/exercise/push-up/",
		"https://musclewiki.com/exercise/bodyweight-squat/",
	}, urls)
}

func TestExerciseURLs_EmptySitemap(t *testing.T) {
	t.Parallel()

	urls, err := ExerciseURLs([]byte(`<urlset></urlset>`))
	require.NoError(t, err)
	require.Empty(t, urls)
}
