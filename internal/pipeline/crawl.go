package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/calistenia/catalog/internal/catalog"
	"github.com/calistenia/catalog/internal/extract"
	"github.com/calistenia/catalog/internal/manifest"
	"github.com/calistenia/catalog/internal/media"
	"github.com/calistenia/catalog/internal/progress"
	"github.com/calistenia/catalog/internal/source"
	"github.com/calistenia/catalog/internal/store"
)

// Crawl runs the HTML ingestion pipeline: sitemap to exercise pages to
// normalized records, media, and the manifest.
func (r *Runner) Crawl(ctx context.Context) (Summary, error) {
	started := time.Now()
	r.emit(progress.StageRunStart, "", "", "crawl", 0)

	page, err := r.client.Get(ctx, r.cfg.SitemapURL)
	if err != nil {
		return Summary{}, fmt.Errorf("fetch sitemap: %w", err)
	}
	if err := store.SaveRaw(r.cfg.RawRoot, "sitemap.xml", page.Body); err != nil {
		return Summary{}, err
	}

	urls, err := source.ExerciseURLs(page.Body)
	if err != nil {
		return Summary{}, err
	}
	urls = r.filterURLs(urls)
	if r.cfg.Limit > 0 && len(urls) > r.cfg.Limit {
		urls = urls[:r.cfg.Limit]
	}
	r.logger.Info("sitemap exercises", zap.Int("count", len(urls)))

	claims := newSlugClaims()
	syncer := r.newSyncer(r.client)
	results := runPool(ctx, r.cfg.Concurrency, urls, func(ctx context.Context, url string) itemResult {
		return r.processPage(ctx, url, claims, syncer)
	})

	summary, entries := r.collect(results)
	summary.Total = len(urls)

	m := manifest.Build(entries, manifest.ModeCrawled)
	if err := manifest.Write(r.cfg.ManifestPath, m); err != nil {
		return summary, err
	}
	summary.ManifestPath = r.cfg.ManifestPath

	if err := r.writeFailures(failuresOf(results)); err != nil {
		return summary, err
	}

	r.emit(progress.StageRunDone, "", "", "crawl", time.Since(started))
	r.logger.Info("crawl done",
		zap.Int("ok", summary.OK),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Bool("dry_run", r.cfg.DryRun),
	)
	return summary, ctx.Err()
}

// filterURLs drops exercise pages whose URL slug already proves the exercise
// is out of scope. Slugs with no equipment signal stay in; the page itself
// decides later.
func (r *Runner) filterURLs(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		guessed := catalog.InferEquipmentFromSlug(extract.SlugFromExerciseURL(u))
		switch {
		case guessed == catalog.EquipmentUnsupported:
		case guessed == "" || r.inScope(guessed):
			out = append(out, u)
		}
	}
	return out
}

func (r *Runner) processPage(ctx context.Context, url string, claims *slugClaims, syncer *media.Syncer) itemResult {
	urlSlug := extract.SlugFromExerciseURL(url)

	page, err := r.client.Get(ctx, url)
	if err != nil {
		return itemResult{key: url, err: err}
	}
	parsed, err := extract.ParseExercisePage(page.Body, url)
	if err != nil {
		return itemResult{key: url, err: err}
	}
	if r.cfg.SaveRaw {
		name := catalog.SafeFile(urlSlug)
		if err := store.SaveRaw(r.cfg.RawRoot, name+".html", page.Body); err != nil {
			return itemResult{key: url, err: err}
		}
	}

	rec := catalog.NormalizeCrawl(catalog.RawExercise{
		SourceURL:  url,
		URLSlug:    urlSlug,
		Name:       parsed.Name,
		Equipment:  parsed.Equipment,
		Difficulty: parsed.Difficulty,
		Muscles:    parsed.MuscleGroups,
		Secondary:  parsed.SecondaryM,
	})
	if !r.inScope(rec.Equipment) {
		return itemResult{key: url, skipped: true, reason: "equipment out of scope: " + rec.Equipment}
	}

	rec.Steps = extract.FirstSteps(
		extract.StepSource{Name: "correct_steps", Run: func() []string { return parsed.CorrectSteps }},
		extract.StepSource{Name: "description_dom", Run: func() []string { return extract.StepsFromHTML(parsed.DescriptionHTML) }},
	)
	rec.MediaRefs = media.SelectAngles(parsed.Media, r.cfg.Gender, r.cfg.Angles, parsed.ImagesLD)
	rec.PosterRefs = media.SelectPosters(parsed.ImagesLD, r.cfg.Gender, r.cfg.Angles)

	if err := claims.Claim(rec.Slug, url); err != nil {
		return itemResult{key: url, name: rec.Name, err: err}
	}
	dir, err := r.persistRecord(rec)
	if err != nil {
		return itemResult{key: url, name: rec.Name, err: err}
	}

	if !r.cfg.DryRun && !r.cfg.SkipMedia {
		syncer.Sync(ctx, rec, dir)
	}

	entry := manifest.EntryFromDir(rec, dir, r.cfg.Angles)
	return itemResult{key: url, name: rec.Name, entry: &entry}
}

// collect turns tagged worker results into the run summary and manifest
// entries, emitting one progress event per item.
func (r *Runner) collect(results []itemResult) (Summary, []catalog.ManifestEntry) {
	var summary Summary
	entries := make([]catalog.ManifestEntry, 0, len(results))
	for _, res := range results {
		switch {
		case res.err != nil:
			summary.Failed++
			r.emit(progress.StageItemFail, res.key, "", res.err.Error(), 0)
			r.logger.Error("item failed", zap.String("key", res.key), zap.Error(res.err))
		case res.skipped:
			summary.Skipped++
			r.emit(progress.StageItemSkip, res.key, "", res.reason, 0)
		default:
			summary.OK++
			entries = append(entries, *res.entry)
			r.emit(progress.StageItemDone, res.key, res.entry.Slug, "", 0)
		}
	}
	return summary, entries
}

func failuresOf(results []itemResult) []Failure {
	var failures []Failure
	for _, res := range results {
		if res.err == nil {
			continue
		}
		failures = append(failures, Failure{URL: res.key, Name: res.name, Error: res.err.Error()})
	}
	return failures
}
