// Package fetch implements HTTP retrieval for the ingestion pipeline on top
// of the Colly collector: text documents, JSON payloads, and binary media
// with case-fallback URL candidates.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// Config captures the transport knobs for the fetch client.
type Config struct {
	UserAgent      string
	RequestTimeout time.Duration
	Concurrency    int
}

// StatusError reports a non-success HTTP response. It carries the status and
// URL so per-item failure records stay diagnosable.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d %s @ %s", e.Code, http.StatusText(e.Code), e.URL)
}

// Page is the outcome of a single fetch.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	Body       []byte
}

// Client performs one-shot fetches via cloned Colly collectors. Each request
// gets a fresh clone so header and visit state never leaks between calls.
type Client struct {
	base    *colly.Collector
	headers http.Header
	logger  *zap.Logger
}

// NewClient constructs a configured Colly-based fetch client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	base := colly.NewCollector(
		colly.Async(true),
		colly.UserAgent(cfg.UserAgent),
	)
	base.AllowURLRevisit = true
	base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          64,
		MaxIdleConnsPerHost:   16,
		MaxConnsPerHost:       maxInt(2, cfg.Concurrency*2),
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.RequestTimeout,
		ForceAttemptHTTP2:     true,
	})
	base.SetRequestTimeout(cfg.RequestTimeout)

	if err := base.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: maxInt(1, cfg.Concurrency),
	}); err != nil {
		return nil, err
	}

	return &Client{base: base, logger: logger}, nil
}

// WithHeaders returns a derived client that attaches the given headers to
// every request, e.g. API key headers.
func (c *Client) WithHeaders(headers http.Header) *Client {
	return &Client{base: c.base, headers: headers, logger: c.logger}
}

// Get retrieves a single URL. Non-2xx responses yield a StatusError so the
// caller can record the status alongside the URL.
func (c *Client) Get(ctx context.Context, rawURL string) (Page, error) {
	collector := c.base.Clone()

	resultCh := make(chan fetchResult, 1)
	var once sync.Once
	send := func(res fetchResult) {
		once.Do(func() {
			resultCh <- res
		})
	}

	if len(c.headers) > 0 {
		collector.OnRequest(func(r *colly.Request) {
			for k, vals := range c.headers {
				for _, v := range vals {
					r.Headers.Set(k, v)
				}
			}
		})
	}

	collector.OnResponse(func(r *colly.Response) {
		if r.StatusCode < 200 || r.StatusCode >= 300 {
			send(fetchResult{err: &StatusError{Code: r.StatusCode, URL: rawURL}})
			return
		}
		send(fetchResult{page: Page{
			URL:        rawURL,
			FinalURL:   r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Body:       append([]byte{}, r.Body...),
		}})
	})

	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode > 0 {
			send(fetchResult{err: &StatusError{Code: r.StatusCode, URL: rawURL}})
			return
		}
		if err == nil {
			err = errors.New("unknown colly error")
		}
		send(fetchResult{err: fmt.Errorf("fetch %s: %w", rawURL, err)})
	})

	if err := collector.Visit(rawURL); err != nil {
		return Page{}, fmt.Errorf("visit %s: %w", rawURL, err)
	}
	collector.Wait()

	select {
	case res := <-resultCh:
		if err := ctx.Err(); err != nil {
			return Page{}, err
		}
		return res.page, res.err
	default:
		return Page{}, fmt.Errorf("fetch %s produced no result", rawURL)
	}
}

// Download retrieves binary content, walking the case-fallback candidate
// list until one succeeds. The media CDN is inconsistently case-sensitive,
// so the original URL is tried first, then progressively lowercased forms.
func (c *Client) Download(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	for _, candidate := range Candidates(rawURL) {
		page, err := c.Get(ctx, candidate)
		if err == nil {
			return page.Body, nil
		}
		lastErr = err
		if c.logger != nil {
			c.logger.Debug("download candidate failed",
				zap.String("url", candidate),
				zap.Error(err),
			)
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("download failed @ %s", rawURL)
	}
	return nil, lastErr
}

type fetchResult struct {
	page Page
	err  error
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
