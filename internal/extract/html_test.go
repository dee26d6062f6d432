package extract

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calistenia/catalog/internal/catalog"
)

const pushUpPage = `<!doctype html>
<html>
<head>
<script type="application/ld+json">{"broken": }</script>
<script type="application/ld+json">
{
  "@type": "ExerciseAction",
  "name": "Push Up",
  "description": "<ol><li>Get into plank position.</li><li>Lower your chest.</li></ol>",
  "equipment": "Bodyweight",
  "difficulty": "Beginner",
  "muscleGroup": ["Chest"],
  "secondaryMuscleGroups": ["Triceps", "Shoulders"],
  "image": "https://media.musclewiki.com/media/uploads/male-pushup-front.jpg"
}
</script>
</head>
<body>
<script>var state = {"v":"https://media.musclewiki.com/media/uploads/male-pushup-front.mp4","w":"https://media.musclewiki.com/media/uploads/female-pushup-side.webm","g":"https://media.musclewiki.com/media/uploads/pushup.gif"};</script>
</body>
</html>`

func TestParseExercisePage(t *testing.T) {
	t.Parallel()

	data, err := ParseExercisePage([]byte(pushUpPage), "https://musclewiki.com/exercise/push-up/")
	require.NoError(t, err)

	require.Equal(t, "Push Up", data.Name)
	require.Equal(t, "push-up", data.URLSlug)
	require.Equal(t, "Bodyweight", data.Equipment)
	require.Equal(t, "Beginner", data.Difficulty)
	require.Equal(t, []string{"Chest"}, data.MuscleGroups)
	require.Equal(t, []string{"Triceps", "Shoulders"}, data.SecondaryM)
	require.Equal(t, []string{"https://media.musclewiki.com/media/uploads/male-pushup-front.jpg"}, data.ImagesLD)

	require.Len(t, data.Media, 4)
	byURL := make(map[string]catalog.MediaCandidate, len(data.Media))
	for _, m := range data.Media {
		byURL[m.URL] = m
	}
	mp4 := byURL["https://media.musclewiki.com/media/uploads/male-pushup-front.mp4"]
	require.Equal(t, catalog.KindVideo, mp4.Kind)
	require.Equal(t, "male", mp4.Gender)
	require.Equal(t, catalog.AngleFront, mp4.Angle)

	webm := byURL["https://media.musclewiki.com/media/uploads/female-pushup-side.webm"]
	require.Equal(t, catalog.KindVideo, webm.Kind)
	require.Equal(t, "female", webm.Gender)
	require.Equal(t, catalog.AngleSide, webm.Angle)

	gif := byURL["https://media.musclewiki.com/media/uploads/pushup.gif"]
	require.Equal(t, catalog.KindVideo, gif.Kind)
}

func TestParseExercisePage_NoExerciseData(t *testing.T) {
	t.Parallel()

	_, err := ParseExercisePage([]byte(`<html><body>nothing here</body></html>`), "https://musclewiki.com/about")
	require.ErrorIs(t, err, ErrNoExerciseData)
}

func TestParseExercisePage_GraphNested(t *testing.T) {
	t.Parallel()

	page := `<script type="application/ld+json">
{"@graph": [{"@type": "WebPage"}, {"@type": "ExerciseAction", "name": "Squat", "muscleGroup": "Quads"}]}
</script>`
	data, err := ParseExercisePage([]byte(page), "https://musclewiki.com/exercise/squat")
	require.NoError(t, err)
	require.Equal(t, "Squat", data.Name)
	require.Equal(t, []string{"Quads"}, data.MuscleGroups)
	require.Equal(t, "Unknown", data.Difficulty)
}

func TestParseMediaURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url    string
		kind   string
		gender string
		angle  string
	}{
		{"https://media.musclewiki.com/a/Male-Pushup-Front.mp4", catalog.KindVideo, "male", catalog.AngleFront},
		{"https://media.musclewiki.com/a/female-plank-side.webm", catalog.KindVideo, "female", catalog.AngleSide},
		{"https://media.musclewiki.com/a/stretch.gif", catalog.KindVideo, "", ""},
		{"https://media.musclewiki.com/a/male-row-side.jpg", catalog.KindImage, "male", catalog.AngleSide},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got := ParseMediaURL(tt.url)
			require.Equal(t, tt.kind, got.Kind)
			require.Equal(t, tt.gender, got.Gender)
			require.Equal(t, tt.angle, got.Angle)
			require.Equal(t, tt.url, got.URL)
		})
	}
}

func TestSlugFromExerciseURL(t *testing.T) {
	t.Parallel()

	require.Equal(t, "push-up", SlugFromExerciseURL("https://musclewiki.com/exercise/push-up/"))
	require.Equal(t, "push-up", SlugFromExerciseURL("https://musclewiki.com/exercise/push-up"))
	require.Equal(t, "", SlugFromExerciseURL("https://musclewiki.com/about"))
}
