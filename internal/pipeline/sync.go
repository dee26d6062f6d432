package pipeline

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
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

// listItem is one exercise summary from the listing API after first-pass
// normalization.
type listItem struct {
	ID         string
	Name       string
	Equipment  string
	Difficulty string
	Muscle     string
}

// Sync runs the API ingestion pipeline against the hosted listing service.
func (r *Runner) Sync(ctx context.Context) (Summary, error) {
	started := time.Now()
	r.emit(progress.StageRunStart, "", "", "sync", 0)

	api := source.NewAPIClient(r.client, r.cfg.APIBaseURL, r.cfg.APIHost, r.cfg.APIKey, r.logger)

	items, rawList, err := api.ListExercises(ctx)
	if err != nil {
		return Summary{}, err
	}
	if err := store.SaveRaw(r.cfg.RawRoot, "exercises-list.json", rawList); err != nil {
		return Summary{}, err
	}

	candidates := r.normalizeListing(items)
	if r.cfg.Limit > 0 && len(candidates) > r.cfg.Limit {
		candidates = candidates[:r.cfg.Limit]
	}
	r.logListingStats(candidates)

	summary := Summary{Total: len(candidates)}
	if r.cfg.DryRun {
		r.emit(progress.StageRunDone, "", "", "sync dry-run", time.Since(started))
		return summary, nil
	}

	claims := newSlugClaims()
	// Media referenced by the API often sits behind the same key, so the
	// syncer downloads through the header-carrying client here.
	syncer := r.newSyncer(api.Downloader())
	results := runPool(ctx, r.cfg.Concurrency, candidates, func(ctx context.Context, item listItem) itemResult {
		return r.processDetail(ctx, api, item, claims, syncer)
	})

	collected, entries := r.collect(results)
	summary.OK, summary.Skipped, summary.Failed = collected.OK, collected.Skipped, collected.Failed

	m := manifest.Build(entries, manifest.ModeGenerated)
	if err := manifest.Write(r.cfg.ManifestPath, m); err != nil {
		return summary, err
	}
	summary.ManifestPath = r.cfg.ManifestPath

	if err := r.writeFailures(syncFailuresOf(results)); err != nil {
		return summary, err
	}

	r.emit(progress.StageRunDone, "", "", "sync", time.Since(started))
	r.logger.Info("sync done",
		zap.Int("ok", summary.OK),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)
	return summary, ctx.Err()
}

// normalizeListing maps raw listing objects to summaries and drops anything
// without an ID or outside the equipment scope.
func (r *Runner) normalizeListing(items []map[string]any) []listItem {
	out := make([]listItem, 0, len(items))
	for _, raw := range items {
		id := itemID(raw, "id", "ID", "exerciseId", "ExerciseId")
		if id == "" {
			continue
		}
		name := extract.PickField(raw, "exercise_name", "name", "Name")
		if name == "" {
			name = id
		}
		equipment := catalog.NormalizeEquipment(extract.PickField(raw, "equipment", "Equipment"))
		if !r.inScope(equipment) {
			continue
		}
		difficulty := extract.PickField(raw, "difficulty", "Difficulty")
		if difficulty == "" {
			difficulty = "Unknown"
		}
		muscle := extract.PickField(raw, "muscle", "Muscle", "muscle_group", "MuscleGroup")
		if muscle == "" {
			muscle = "Unknown"
		}
		out = append(out, listItem{
			ID:         id,
			Name:       name,
			Equipment:  equipment,
			Difficulty: difficulty,
			Muscle:     catalog.ResolveUnknownMuscle(muscle, name),
		})
	}
	return out
}

func (r *Runner) processDetail(ctx context.Context, api *source.APIClient, item listItem, claims *slugClaims, syncer *media.Syncer) itemResult {
	detail, rawBody, err := api.GetExercise(ctx, item.ID)
	if err != nil {
		return itemResult{key: item.ID, name: item.Name, err: err}
	}
	if err := store.SaveRaw(r.cfg.RawRoot, catalog.SafeFile(item.ID)+".json", rawBody); err != nil {
		return itemResult{key: item.ID, name: item.Name, err: err}
	}

	rec := r.normalizeDetail(detail, item)
	if err := claims.Claim(rec.Slug, item.ID); err != nil {
		return itemResult{key: item.ID, name: rec.Name, err: err}
	}
	dir, err := r.persistRecord(rec)
	if err != nil {
		return itemResult{key: item.ID, name: rec.Name, err: err}
	}

	if !r.cfg.SkipMedia {
		syncer.Sync(ctx, rec, dir)
	}

	entry := manifest.EntryFromDir(rec, dir, r.cfg.Angles)
	return itemResult{key: item.ID, name: rec.Name, entry: &entry}
}

// normalizeDetail builds the persisted record from a detail payload, falling
// back to the listing summary where the detail is silent.
func (r *Runner) normalizeDetail(detail map[string]any, item listItem) catalog.ExerciseRecord {
	name := extract.PickField(detail, "exercise_name", "name", "Name")
	if name == "" {
		name = item.Name
	}
	equipment := extract.PickField(detail, "equipment", "Equipment")
	if equipment == "" {
		equipment = item.Equipment
	}
	difficulty := extract.PickField(detail, "difficulty", "Difficulty")
	if difficulty == "" {
		difficulty = item.Difficulty
	}
	muscle := extract.PickField(detail, "muscle", "Muscle", "muscle_group", "MuscleGroup")
	if muscle == "" {
		muscle = item.Muscle
	}

	var secondary []string
	for _, key := range []string{"secondaryMuscles", "secondary_muscles", "SecondaryMuscles"} {
		if vals := extract.CSVList(detail[key]); len(vals) > 0 {
			secondary = vals
			break
		}
	}

	rec := catalog.NormalizeAPI(catalog.RawExercise{
		SourceID:   item.ID,
		Name:       name,
		Equipment:  equipment,
		Difficulty: difficulty,
		Force:      extract.PickField(detail, "force", "Force"),
		Muscles:    []string{muscle},
		Secondary:  secondary,
	})
	rec.Steps = extract.Instructions(detail)
	rec.MediaRefs = media.SelectAnglesAPI(extract.FlattenMedia(detail), r.cfg.Gender, r.cfg.Angles)
	return rec
}

func (r *Runner) logListingStats(candidates []listItem) {
	byEquipment := make(map[string]int)
	for _, c := range candidates {
		byEquipment[c.Equipment]++
	}
	stats, _ := json.Marshal(byEquipment)
	r.logger.Info("listing candidates",
		zap.Int("count", len(candidates)),
		zap.ByteString("by_equipment", stats),
	)
}

// itemID stringifies the listing ID, which the API reports as either a
// string or a JSON number.
func itemID(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := obj[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case json.Number:
			return v.String()
		}
	}
	return ""
}

func syncFailuresOf(results []itemResult) []Failure {
	var failures []Failure
	for _, res := range results {
		if res.err == nil {
			continue
		}
		failures = append(failures, Failure{ID: res.key, Name: res.name, Error: res.err.Error()})
	}
	return failures
}
