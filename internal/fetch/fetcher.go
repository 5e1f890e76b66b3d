// Package fetch retrieves raw documents from configured sources and
// normalizes them to plain text for the pipeline.
package fetch

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"github.com/awynne/lookout/internal/config"
	"github.com/awynne/lookout/internal/logging"
	"github.com/awynne/lookout/internal/model"
)

// Fetcher pulls documents from RSS feeds and plain pages. One shared rate
// limiter spaces requests across all sources in a run.
type Fetcher struct {
	client  *http.Client
	parser  *gofeed.Parser
	limiter *rate.Limiter
	now     func() time.Time
}

// New creates a Fetcher from the run's fetch settings.
func New(cfg config.FetchConfig) *Fetcher {
	client := &http.Client{Timeout: cfg.Timeout}
	parser := gofeed.NewParser()
	parser.Client = client
	return &Fetcher{
		client:  client,
		parser:  parser,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1),
		now:     time.Now,
	}
}

// FetchAll retrieves items from every configured source. Per-source failures
// are logged and skipped; only a context cancellation aborts the pass.
func (f *Fetcher) FetchAll(ctx context.Context, snap *config.Snapshot) ([]model.RawItem, error) {
	var items []model.RawItem
	for _, src := range snap.Sources {
		if err := f.limiter.Wait(ctx); err != nil {
			return items, fmt.Errorf("rate limit wait: %w", err)
		}

		fetched, err := f.fetchSource(ctx, src)
		if err != nil {
			logging.Warn("Source fetch failed", "source", src.Name, "error", err)
			continue
		}
		logging.Debug("Source fetched", "source", src.Name, "items", len(fetched))
		items = append(items, fetched...)
	}
	return items, nil
}

func (f *Fetcher) fetchSource(ctx context.Context, src config.SourceConfig) ([]model.RawItem, error) {
	if src.Kind == "page" {
		return f.fetchPage(ctx, src)
	}
	return f.fetchFeed(ctx, src)
}

func (f *Fetcher) fetchFeed(ctx context.Context, src config.SourceConfig) ([]model.RawItem, error) {
	url := src.FeedURL
	if url == "" {
		url = src.BaseURL
	}

	feed, err := f.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	now := f.now()
	items := make([]model.RawItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if entry.Link == "" {
			continue
		}

		var published time.Time
		if entry.PublishedParsed != nil {
			published = *entry.PublishedParsed
		} else if entry.UpdatedParsed != nil {
			published = *entry.UpdatedParsed
		}

		content := entry.Content
		if content == "" {
			content = entry.Description
		}

		items = append(items, model.RawItem{
			ID:         stableID(entry.Link),
			SourceName: src.Name,
			URL:        entry.Link,
			Title:      entry.Title,
			Content:    content,
			Published:  published,
			Fetched:    now,
		})
	}
	return items, nil
}

// fetchPage scrapes a non-feed page: the document title plus its paragraph
// text becomes one raw item.
func (f *Fetcher) fetchPage(ctx context.Context, src config.SourceConfig) ([]model.RawItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.BaseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", src.BaseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, src.BaseURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", src.BaseURL, err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	var b strings.Builder
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text != "" {
			b.WriteString(text)
			b.WriteString(" ")
		}
	})

	return []model.RawItem{{
		ID:         stableID(src.BaseURL),
		SourceName: src.Name,
		URL:        src.BaseURL,
		Title:      title,
		Content:    strings.TrimSpace(b.String()),
		Fetched:    f.now(),
	}}, nil
}

// stableID derives a stable item ID from the URL.
func stableID(url string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(url)))[:16]
}
