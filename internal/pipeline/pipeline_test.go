package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/calistenia/catalog/internal/catalog"
	"github.com/calistenia/catalog/internal/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Config{
		SitemapURL:     "https://musclewiki.com/sitemap.xml",
		APIBaseURL:     "https://musclewiki-api.p.rapidapi.com",
		APIHost:        "musclewiki-api.p.rapidapi.com",
		OutRoot:        filepath.Join(root, "public", "exercises"),
		ManifestPath:   filepath.Join(root, "public", "exercises.manifest.json"),
		RawRoot:        filepath.Join(root, "raw"),
		UserAgent:      "Mozilla/5.0 (compatible; CalisteniaBot/1.0)",
		RequestTimeout: 5 * time.Second,
		Concurrency:    2,
		Gender:         "male",
		Angles:         []string{"front", "side"},
		EquipmentScope: []string{"Bodyweight", "Kettlebells", "Stretches", "Band", "TRX", "Yoga", "Cardio", "Recovery"},
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

func testRunner(t *testing.T) *Runner {
	t.Helper()
	r, err := NewRunner(testConfig(t), nil, zap.NewNop())
	require.NoError(t, err)
	return r
}

func TestRunPool_TagsEveryItem(t *testing.T) {
	t.Parallel()

	items := []string{"a", "b", "c", "d", "e"}
	results := runPool(context.Background(), 3, items, func(_ context.Context, item string) itemResult {
		if item == "c" {
			return itemResult{key: item, err: errors.New("boom")}
		}
		return itemResult{key: item}
	})

	require.Len(t, results, len(items))
	keys := make([]string, 0, len(results))
	failed := 0
	for _, res := range results {
		keys = append(keys, res.key)
		if res.err != nil {
			failed++
		}
	}
	sort.Strings(keys)
	require.Equal(t, items, keys)
	require.Equal(t, 1, failed)
}

func TestRunPool_CancelStopsFeeding(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := make([]string, 1000)
	for i := range items {
		items[i] = "x"
	}
	results := runPool(ctx, 2, items, func(_ context.Context, item string) itemResult {
		return itemResult{key: item}
	})
	require.Less(t, len(results), len(items))
}

func TestSlugClaims(t *testing.T) {
	t.Parallel()

	claims := newSlugClaims()
	require.NoError(t, claims.Claim("push-up", "url-1"))
	// Re-claim by the same item is idempotent.
	require.NoError(t, claims.Claim("push-up", "url-1"))
	require.Error(t, claims.Claim("push-up", "url-2"))
	require.NoError(t, claims.Claim("squat", "url-2"))
}

func TestFilterURLs(t *testing.T) {
	t.Parallel()

	r := testRunner(t)
	urls := []string{
		"https://musclewiki.com/exercise/kettlebell-swing/",
		"https://musclewiki.com/exercise/barbell-bench-press/",
		"https://musclewiki.com/exercise/mystery-movement/",
	}
	got := r.filterURLs(urls)
	require.Equal(t, []string{
		"https://musclewiki.com/exercise/kettlebell-swing/",
		"https://musclewiki.com/exercise/mystery-movement/",
	}, got)
}

func TestNormalizeListing(t *testing.T) {
	t.Parallel()

	r := testRunner(t)
	items := []map[string]any{
		{"id": float64(12), "exercise_name": "Push Up", "equipment": "Bodyweight", "difficulty": "Beginner", "muscle": "Chest"},
		{"id": "34", "name": "Bench Press", "equipment": "Barbell"},
		{"exercise_name": "No ID", "equipment": "Bodyweight"},
		{"id": "56", "equipment": "Kettlebell"},
	}
	got := r.normalizeListing(items)

	require.Len(t, got, 2)
	require.Equal(t, listItem{ID: "12", Name: "Push Up", Equipment: "Bodyweight", Difficulty: "Beginner", Muscle: "Chest"}, got[0])
	// Kettlebell maps to Kettlebells via the synonym table; name falls back
	// to the ID and difficulty to Unknown.
	require.Equal(t, listItem{ID: "56", Name: "56", Equipment: "Kettlebells", Difficulty: "Unknown", Muscle: "Unknown"}, got[1])
}

func TestNormalizeDetail(t *testing.T) {
	t.Parallel()

	r := testRunner(t)
	item := listItem{ID: "77", Name: "Chin Tucks", Equipment: "Bodyweight", Difficulty: "Beginner", Muscle: "Unknown"}
	detail := map[string]any{
		"force":            "pull",
		"secondaryMuscles": "Traps, Shoulders",
		"steps":            []any{"Tuck your chin.", "Hold."},
		"male":             map[string]any{"front": "https://cdn/front-male.mp4"},
	}

	rec := r.normalizeDetail(detail, item)

	require.Equal(t, "77", rec.ID)
	require.Equal(t, "Chin Tucks", rec.Name)
	require.Equal(t, "Neck", rec.Muscle)
	require.Equal(t, catalog.GroupPull, rec.Group)
	require.Equal(t, []string{"Traps", "Shoulders"}, rec.MusclesSecondary)
	require.Equal(t, []string{"Tuck your chin.", "Hold."}, rec.Steps)
	require.Equal(t, "https://cdn/front-male.mp4", rec.MediaRefs["front"].URL)
	require.Equal(t, "neck-bodyweight-beginner-pull-chin-tucks", rec.Slug)
}

func TestItemID(t *testing.T) {
	t.Parallel()

	require.Equal(t, "7", itemID(map[string]any{"id": float64(7)}, "id"))
	require.Equal(t, "abc", itemID(map[string]any{"ID": " abc "}, "id", "ID"))
	require.Equal(t, "", itemID(map[string]any{"id": true}, "id"))
}

func TestCollect(t *testing.T) {
	t.Parallel()

	r := testRunner(t)
	entry := catalog.ManifestEntry{Slug: "push-up"}
	results := []itemResult{
		{key: "a", entry: &entry},
		{key: "b", skipped: true, reason: "equipment out of scope: Unsupported"},
		{key: "c", err: errors.New("404")},
	}

	summary, entries := r.collect(results)
	require.Equal(t, 1, summary.OK)
	require.Equal(t, 1, summary.Skipped)
	require.Equal(t, 1, summary.Failed)
	require.Len(t, entries, 1)

	failures := syncFailuresOf(results)
	require.Len(t, failures, 1)
	require.Equal(t, "c", failures[0].ID)
	require.Equal(t, "404", failures[0].Error)
}
