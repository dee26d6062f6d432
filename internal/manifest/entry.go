// Package manifest assembles, persists and validates the gallery manifest
// from synced exercise directories.
package manifest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/calistenia/catalog/internal/catalog"
	"github.com/calistenia/catalog/internal/store"
)

// EntryFromDir builds the manifest entry for one exercise from what actually
// exists in its directory. Extraction intent does not matter here; only
// files on disk earn a media key. Per angle the priority is transcoded video,
// then poster-only image, then a raw gif or mov clip.
func EntryFromDir(rec catalog.ExerciseRecord, dir string, angles []string) catalog.ManifestEntry {
	rel := store.PublicPath(dir)

	media := make(map[string]catalog.AngleMedia)
	present := make([]string, 0, len(angles))
	for _, angle := range angles {
		webm := exists(dir, angle+".webm")
		mp4 := exists(dir, angle+".mp4")
		poster := exists(dir, "poster-"+angle+".jpg")
		gif := exists(dir, angle+".gif")
		mov := exists(dir, angle+".mov")

		var am catalog.AngleMedia
		switch {
		case webm || mp4:
			am.Type = catalog.KindVideo
			if webm {
				am.WebM = rel + "/" + angle + ".webm"
			}
			if mp4 {
				am.MP4 = rel + "/" + angle + ".mp4"
			}
			if poster {
				am.Poster = rel + "/poster-" + angle + ".jpg"
			}
		case poster:
			am.Type = catalog.KindImage
			am.Image = rel + "/poster-" + angle + ".jpg"
			am.Poster = rel + "/poster-" + angle + ".jpg"
		case gif:
			am.Type = catalog.KindVideo
			am.Src = rel + "/" + angle + ".gif"
		case mov:
			am.Type = catalog.KindVideo
			am.Src = rel + "/" + angle + ".mov"
		default:
			continue
		}
		media[angle] = am
		present = append(present, angle)
	}

	group := rec.Group
	if !catalog.IsValidGroup(group) {
		group = catalog.GroupMovilidad
	}

	// Sidecars written by older runs may carry a null secondary list; the
	// manifest always serializes an array.
	secondary := rec.MusclesSecondary
	if secondary == nil {
		secondary = []string{}
	}

	return catalog.ManifestEntry{
		ID:               rec.ID,
		Slug:             rec.Slug,
		Name:             rec.Name,
		Muscle:           rec.Muscle,
		MusclesSecondary: secondary,
		Equipment:        rec.Equipment,
		Difficulty:       rec.Difficulty,
		Group:            group,
		Angles:           present,
		Media:            media,
		Tags:             tags(group, rec.Muscle, rec.Equipment, rec.Difficulty),
	}
}

func tags(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, strings.ToLower(v))
		}
	}
	return out
}

func exists(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
