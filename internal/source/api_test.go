package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/calistenia/catalog/internal/fetch"
)

func testFetchClient(t *testing.T) *fetch.Client {
	t.Helper()
	client, err := fetch.NewClient(fetch.Config{
		UserAgent:      "test-agent",
		RequestTimeout: 5 * time.Second,
		Concurrency:    1,
	}, zap.NewNop())
	require.NoError(t, err)
	return client
}

func TestGetExercise_EscapesID(t *testing.T) {
	t.Parallel()

	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotKey = r.Header.Get("x-rapidapi-key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"exercise_name": "Push Up"}`))
	}))
	defer srv.Close()

	api := NewAPIClient(testFetchClient(t), srv.URL, "host.test", "secret", zap.NewNop())

	detail, raw, err := api.GetExercise(context.Background(), "we ird/77")
	require.NoError(t, err)
	require.Equal(t, "Push Up", detail["exercise_name"])
	require.NotEmpty(t, raw)
	require.Equal(t, "/exercises/we%20ird%2F77", gotPath)
	require.Equal(t, "secret", gotKey)
}

func TestDownloaderCarriesAPIHeaders(t *testing.T) {
	t.Parallel()

	var gotKey, gotHost string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-rapidapi-key")
		gotHost = r.Header.Get("x-rapidapi-host")
		_, _ = w.Write([]byte("clip-bytes"))
	}))
	defer srv.Close()

	api := NewAPIClient(testFetchClient(t), srv.URL, "host.test", "secret", zap.NewNop())

	data, err := api.Downloader().Download(context.Background(), srv.URL+"/media/front.mp4")
	require.NoError(t, err)
	require.Equal(t, "clip-bytes", string(data))
	require.Equal(t, "secret", gotKey)
	require.Equal(t, "host.test", gotHost)
}

func TestDecodeItems_BareArray(t *testing.T) {
	t.Parallel()

	items, err := decodeItems([]byte(`[{"id": 1, "name": "Push Up"}, "junk", {"id": 2}]`))
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "Push Up", items[0]["name"])
}

func TestDecodeItems_WrappedEnvelope(t *testing.T) {
	t.Parallel()

	items, err := decodeItems([]byte(`{"count": 2, "results": [{"id": 1}, {"id": 2}]}`))
	require.NoError(t, err)
	require.Len(t, items, 2)
}

func TestDecodeItems_Errors(t *testing.T) {
	t.Parallel()

	_, err := decodeItems([]byte(`{"count": 0}`))
	require.Error(t, err)

	_, err = decodeItems([]byte(`"just a string"`))
	require.Error(t, err)

	_, err = decodeItems([]byte(`{not json`))
	require.Error(t, err)
}
