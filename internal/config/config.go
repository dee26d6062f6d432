// Package config loads and validates catalog configuration via Viper.
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/calistenia/catalog/internal/catalog"
)

// Config captures every knob that influences an ingestion run. All values
// originate from Viper so the pipeline can be configured via config file,
// environment variables, or CLI flags.
type Config struct {
	SitemapURL     string
	APIBaseURL     string
	APIHost        string
	APIKey         string
	OutRoot        string
	ManifestPath   string
	RawRoot        string
	UserAgent      string
	RequestTimeout time.Duration
	Concurrency    int
	Limit          int
	DryRun         bool
	SkipMedia      bool
	Resume         bool
	SaveRaw        bool
	Transcode      bool
	Gender         string
	Angles         []string
	EquipmentScope []string
	FFmpegPath     string
	FFprobePath    string
	Development    bool
}

// Load constructs a Config by reading from Viper.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		SitemapURL:     v.GetString("source.sitemap_url"),
		APIBaseURL:     v.GetString("source.api_base_url"),
		APIHost:        v.GetString("source.api_host"),
		APIKey:         v.GetString("source.api_key"),
		OutRoot:        v.GetString("output.root"),
		ManifestPath:   v.GetString("output.manifest"),
		RawRoot:        v.GetString("output.raw_root"),
		UserAgent:      v.GetString("fetch.user_agent"),
		RequestTimeout: v.GetDuration("fetch.request_timeout"),
		Concurrency:    v.GetInt("pipeline.concurrency"),
		Limit:          v.GetInt("pipeline.limit"),
		DryRun:         v.GetBool("pipeline.dry_run"),
		SkipMedia:      v.GetBool("pipeline.skip_media"),
		Resume:         v.GetBool("pipeline.resume"),
		SaveRaw:        v.GetBool("pipeline.save_raw"),
		Transcode:      v.GetBool("media.transcode"),
		Gender:         strings.ToLower(v.GetString("media.gender")),
		Angles:         splitList(v.GetString("media.angles")),
		EquipmentScope: splitScope(v.GetString("pipeline.equipment")),
		FFmpegPath:     v.GetString("media.ffmpeg_path"),
		FFprobePath:    v.GetString("media.ffprobe_path"),
		Development:    v.GetBool("logging.development"),
	}
	return cfg, cfg.Validate()
}

// SetDefaults registers every default on the supplied Viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("source.sitemap_url", "https://musclewiki.com/sitemap.xml")
	v.SetDefault("source.api_base_url", "https://musclewiki-api.p.rapidapi.com")
	v.SetDefault("source.api_host", "musclewiki-api.p.rapidapi.com")
	v.SetDefault("output.root", "public/data/exercises")
	v.SetDefault("output.manifest", "public/data/exercises.manifest.json")
	v.SetDefault("output.raw_root", "data/raw/musclewiki")
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (compatible; CalisteniaBot/1.0)")
	v.SetDefault("fetch.request_timeout", "30s")
	v.SetDefault("pipeline.concurrency", 4)
	v.SetDefault("pipeline.limit", 0)
	v.SetDefault("pipeline.equipment", strings.Join(allowedEquipmentList(), ","))
	v.SetDefault("media.gender", "male")
	v.SetDefault("media.angles", "front,side")
	v.SetDefault("media.ffmpeg_path", "ffmpeg")
	v.SetDefault("media.ffprobe_path", "ffprobe")
	v.SetDefault("logging.development", true)

	v.SetEnvPrefix("CATALOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.OutRoot == "" {
		return fmt.Errorf("output.root must be set")
	}
	if c.ManifestPath == "" {
		return fmt.Errorf("output.manifest must be set")
	}
	if c.RawRoot == "" {
		return fmt.Errorf("output.raw_root must be set")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("fetch.user_agent must be set")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("fetch.request_timeout must be > 0")
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("pipeline.concurrency must be > 0")
	}
	if c.Limit < 0 {
		return fmt.Errorf("pipeline.limit must be >= 0")
	}
	if c.Gender != "male" && c.Gender != "female" {
		return fmt.Errorf("media.gender must be male or female")
	}
	if len(c.Angles) == 0 {
		return fmt.Errorf("media.angles must include at least one angle")
	}
	if len(c.EquipmentScope) == 0 {
		return fmt.Errorf("pipeline.equipment must include at least one equipment value")
	}
	return nil
}

// ScopeSet returns the equipment allowlist as a set for membership tests.
func (c Config) ScopeSet() map[string]bool {
	set := make(map[string]bool, len(c.EquipmentScope))
	for _, e := range c.EquipmentScope {
		set[e] = true
	}
	return set
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitScope(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func allowedEquipmentList() []string {
	out := make([]string, 0, len(catalog.AllowedEquipment))
	for e := range catalog.AllowedEquipment {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}
