// Package fetch retrieves web pages and extracts their plain text content.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/ragserve/internal/domain"
	"github.com/kailas-cloud/ragserve/internal/metrics"
)

// contentSelectors are tried in order; the first non-empty match wins.
// Falls back to <body> when none match.
var contentSelectors = []string{
	"main",
	"article",
	".content",
	"#content",
	".documentation",
	"#documentation",
}

// Config holds fetcher settings.
type Config struct {
	Timeout        time.Duration
	RequestsPerSec float64
	MaxBodyBytes   int64
	UserAgent      string
}

// Fetcher retrieves a single page per call. No crawling, no retries.
type Fetcher struct {
	client       *http.Client
	limiter      *rate.Limiter
	maxBodyBytes int64
	userAgent    string
}

// New creates a Fetcher.
func New(cfg Config) *Fetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = 2
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 10 << 20
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "ragserve/1.0"
	}
	return &Fetcher{
		client:       &http.Client{Timeout: cfg.Timeout},
		limiter:      rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1),
		maxBodyBytes: cfg.MaxBodyBytes,
		userAgent:    cfg.UserAgent,
	}
}

// Fetch retrieves the URL and extracts its plain text.
// All failures wrap domain.ErrFetchFailed.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (domain.Page, error) {
	if err := validateURL(rawURL); err != nil {
		return domain.Page{}, err
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return domain.Page{}, fmt.Errorf("rate limiter: %w: %w", err, domain.ErrFetchFailed)
	}

	start := time.Now()
	page, err := f.fetch(ctx, rawURL)
	duration := time.Since(start)

	if err != nil {
		metrics.FetchRequestsTotal.WithLabelValues("error").Inc()
		return domain.Page{}, err
	}

	metrics.FetchRequestsTotal.WithLabelValues("success").Inc()
	metrics.FetchRequestDuration.WithLabelValues().Observe(duration.Seconds())
	return page, nil
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) (domain.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return domain.Page{}, fmt.Errorf("build request for %s: %w: %w", rawURL, err, domain.ErrFetchFailed)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return domain.Page{}, fmt.Errorf("fetch %s: %w: %w", rawURL, err, domain.ErrFetchFailed)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return domain.Page{}, fmt.Errorf("fetch %s: status %s: %w", rawURL, resp.Status, domain.ErrFetchFailed)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return domain.Page{}, fmt.Errorf("parse %s: %w: %w", rawURL, err, domain.ErrFetchFailed)
	}

	doc.Find("script, style, noscript").Remove()

	return domain.Page{
		URL:   rawURL,
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
		Text:  extractMainContent(doc),
	}, nil
}

// validateURL requires an absolute http(s) URL.
func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url %q: %w: %w", rawURL, err, domain.ErrFetchFailed)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url %q must be absolute http(s): %w", rawURL, domain.ErrFetchFailed)
	}
	if u.Host == "" {
		return fmt.Errorf("url %q has no host: %w", rawURL, domain.ErrFetchFailed)
	}
	return nil
}

// extractMainContent returns normalized text from the main content area.
func extractMainContent(doc *goquery.Document) string {
	var content string
	for _, selector := range contentSelectors {
		if selected := doc.Find(selector); selected.Length() > 0 {
			content = selected.Text()
			break
		}
	}
	if content == "" {
		content = doc.Find("body").Text()
	}
	return strings.Join(strings.Fields(content), " ")
}
