// Package pipeline orchestrates full ingestion runs: enumerate exercises,
// normalize them, sync media, and assemble the manifest.
package pipeline

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/calistenia/catalog/internal/catalog"
	"github.com/calistenia/catalog/internal/config"
	"github.com/calistenia/catalog/internal/fetch"
	"github.com/calistenia/catalog/internal/media"
	"github.com/calistenia/catalog/internal/progress"
	"github.com/calistenia/catalog/internal/store"
)

// Failure records one item that could not be ingested. Crawl runs identify
// items by URL, sync runs by source ID and name.
type Failure struct {
	URL   string `json:"url,omitempty"`
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Error string `json:"error"`
}

// Summary reports the outcome of a run.
type Summary struct {
	Total        int
	OK           int
	Skipped      int
	Failed       int
	ManifestPath string
}

// Runner holds the dependencies shared by the crawl and sync pipelines.
type Runner struct {
	cfg       config.Config
	logger    *zap.Logger
	client    *fetch.Client
	store     *store.ExerciseStore
	encoder   media.Encoder
	transcode bool
	emitter   progress.Emitter
	runID     [16]byte
}

// NewRunner wires a Runner from configuration. The ffmpeg encoder is probed
// once here; when it is missing, clips are kept in their source container.
func NewRunner(cfg config.Config, emitter progress.Emitter, logger *zap.Logger) (*Runner, error) {
	client, err := fetch.NewClient(fetch.Config{
		UserAgent:      cfg.UserAgent,
		RequestTimeout: cfg.RequestTimeout,
		Concurrency:    cfg.Concurrency,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("build fetch client: %w", err)
	}

	var encoder media.Encoder
	transcode := cfg.Transcode
	if transcode {
		ff := media.NewFFmpegEncoder(cfg.FFmpegPath, cfg.FFprobePath)
		if ff.Available() {
			encoder = ff
		} else {
			logger.Warn("ffmpeg unavailable, keeping source containers")
			transcode = false
		}
	}

	if emitter == nil {
		emitter = noopEmitter{}
	}

	return &Runner{
		cfg:       cfg,
		logger:    logger,
		client:    client,
		store:     store.NewExerciseStore(cfg.OutRoot),
		encoder:   encoder,
		transcode: transcode,
		emitter:   emitter,
		runID:     progress.UUIDToBytes(uuid.New()),
	}, nil
}

// newSyncer builds the media syncer over the given downloader. Crawl runs
// use the plain fetch client; sync runs pass the API client so media URLs
// behind the key keep working.
func (r *Runner) newSyncer(client media.Downloader) *media.Syncer {
	return media.NewSyncer(client, r.encoder, media.SyncerOptions{
		Angles:    r.cfg.Angles,
		Resume:    r.cfg.Resume,
		Transcode: r.transcode,
	}, r.logger)
}

func (r *Runner) emit(stage progress.Stage, key, slug, note string, dur time.Duration) {
	r.emitter.Emit(progress.Event{
		RunID: r.runID,
		TS:    time.Now().UTC(),
		Stage: stage,
		Key:   key,
		Slug:  slug,
		Dur:   dur,
		Note:  note,
	})
}

// persistRecord writes the meta sidecar unless a resume run already has one,
// and returns the exercise directory.
func (r *Runner) persistRecord(rec catalog.ExerciseRecord) (string, error) {
	if r.cfg.Resume && r.store.HasMeta(rec.Slug) {
		return r.store.Dir(rec.Slug), nil
	}
	if err := r.store.WriteMeta(rec); err != nil {
		return "", err
	}
	return r.store.Dir(rec.Slug), nil
}

// writeFailures persists the failure list next to the raw snapshots. No
// failures means no file.
func (r *Runner) writeFailures(failures []Failure) error {
	if len(failures) == 0 {
		return nil
	}
	data, err := json.MarshalIndent(failures, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal failures: %w", err)
	}
	return store.SaveRaw(r.cfg.RawRoot, "failures.json", data)
}

// inScope reports whether a normalized equipment value passes both the
// configured scope and the closed vocabulary.
func (r *Runner) inScope(equipment string) bool {
	return r.cfg.ScopeSet()[equipment] && catalog.AllowedEquipment[equipment]
}

// slugClaims detects slug collisions across concurrent workers. The first
// item to claim a slug owns it; later claims by other items are rejected so
// two exercises never overwrite one directory.
type slugClaims struct {
	mu    sync.Mutex
	owner map[string]string
}

func newSlugClaims() *slugClaims {
	return &slugClaims{owner: make(map[string]string)}
}

func (c *slugClaims) Claim(slug, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if owner, taken := c.owner[slug]; taken && owner != key {
		return fmt.Errorf("slug %q already produced by %s", slug, owner)
	}
	c.owner[slug] = key
	return nil
}

type noopEmitter struct{}

func (noopEmitter) Emit(progress.Event) {}
