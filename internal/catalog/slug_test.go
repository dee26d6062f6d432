package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercases", in: "Push Up", want: "push-up"},
		{name: "strips accents", in: "Extensión de Tríceps", want: "extension-de-triceps"},
		{name: "collapses runs", in: "TRX -- Row!!", want: "trx-row"},
		{name: "trims hyphens", in: "  (Deep) Squat  ", want: "deep-squat"},
		{name: "empty", in: "¡¡", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestBuildSlug_Stable(t *testing.T) {
	t.Parallel()

	got := BuildSlug("Chest", "Bodyweight", "Beginner", "push", "Push Up")
	require.Equal(t, "chest-bodyweight-beginner-push-push-up", got)

	// Same inputs always derive the same slug.
	require.Equal(t, got, BuildSlug("Chest", "Bodyweight", "Beginner", "push", "Push Up"))
}

func TestBuildSlug_DropsEmptyTokens(t *testing.T) {
	t.Parallel()

	require.Equal(t, "chest-push-push-up", BuildSlug("Chest", "", "¡¡", "push", "Push Up"))
}

func TestSafeFile(t *testing.T) {
	t.Parallel()

	require.Equal(t, "push-up", SafeFile("Push Up"))
	require.Equal(t, "file", SafeFile("!!"))
}
