package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/calistenia/catalog/internal/fetch"
)

// APIClient talks to the hosted MuscleWiki listing API. Every request carries
// the RapidAPI key and host headers.
type APIClient struct {
	client  *fetch.Client
	baseURL string
	logger  *zap.Logger
}

// NewAPIClient derives an API client from the shared fetch client.
func NewAPIClient(base *fetch.Client, baseURL, host, key string, logger *zap.Logger) *APIClient {
	headers := http.Header{}
	headers.Set("x-rapidapi-key", key)
	headers.Set("x-rapidapi-host", host)
	return &APIClient{
		client:  base.WithHeaders(headers),
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Downloader exposes the header-carrying client so media URLs served by the
// API can be fetched with the same key.
func (c *APIClient) Downloader() *fetch.Client {
	return c.client
}

// ListExercises fetches the full exercise listing. The raw body is returned
// alongside the decoded items so callers can persist it untouched.
func (c *APIClient) ListExercises(ctx context.Context) ([]map[string]any, []byte, error) {
	page, err := c.client.Get(ctx, c.baseURL+"/exercises")
	if err != nil {
		return nil, nil, fmt.Errorf("list exercises: %w", err)
	}

	items, err := decodeItems(page.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("decode exercise listing: %w", err)
	}
	return items, page.Body, nil
}

// GetExercise fetches one exercise detail payload by source ID.
func (c *APIClient) GetExercise(ctx context.Context, id string) (map[string]any, []byte, error) {
	page, err := c.client.Get(ctx, c.baseURL+"/exercises/"+url.PathEscape(id))
	if err != nil {
		return nil, nil, fmt.Errorf("get exercise %s: %w", id, err)
	}

	var detail map[string]any
	if err := json.Unmarshal(page.Body, &detail); err != nil {
		return nil, nil, fmt.Errorf("decode exercise %s: %w", id, err)
	}
	return detail, page.Body, nil
}

// decodeItems tolerates the listing's unstable envelope: either a bare array
// or an object wrapping the array under a well-known key.
func decodeItems(body []byte) ([]map[string]any, error) {
	var root any
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, err
	}

	switch v := root.(type) {
	case []any:
		return objectItems(v), nil
	case map[string]any:
		for _, key := range []string{"results", "data", "exercises", "items"} {
			if arr, ok := v[key].([]any); ok {
				return objectItems(arr), nil
			}
		}
		return nil, fmt.Errorf("listing envelope has no item array")
	default:
		return nil, fmt.Errorf("listing is neither array nor object")
	}
}

func objectItems(arr []any) []map[string]any {
	out := make([]map[string]any, 0, len(arr))
	for _, item := range arr {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}
