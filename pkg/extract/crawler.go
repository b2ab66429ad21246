package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/duynguyendang/geoqa/pkg/ontology"
	"github.com/duynguyendang/geoqa/pkg/vocab"
)

const (
	// ListPath is the page listing countries and dependencies.
	ListPath = "/wiki/List_of_countries_and_dependencies_by_population"

	DefaultConcurrency = 8
	DefaultUserAgent   = "geoqa/1.0 (country ontology builder)"
)

// Fetcher retrieves a page body.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// HTTPFetcher fetches pages over HTTP.
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
}

// Fetch issues a GET and fails on any non-200 status.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	ua := f.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return resp.Body, nil
}

// Crawler builds entity records for every listed country.
type Crawler struct {
	BaseURL     string
	Concurrency int
	Fetcher     Fetcher
	Logger      *slog.Logger
}

// NewCrawler creates a crawler against the public Wikipedia.
func NewCrawler(userAgent string, concurrency int) *Crawler {
	return &Crawler{
		BaseURL:     vocab.BaseURL,
		Concurrency: concurrency,
		Fetcher:     &HTTPFetcher{UserAgent: userAgent},
	}
}

// Crawl fetches the country list, then each country page and its leaders'
// pages. A country that fails is logged and left out. Records keep the list
// order.
func (c *Crawler) Crawl(ctx context.Context) ([]ontology.Record, error) {
	logger := c.logger()
	limit := c.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	body, err := c.Fetcher.Fetch(ctx, c.url(ListPath))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch country list: %w", err)
	}
	links, err := ParseCountryLinks(body)
	body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to parse country list: %w", err)
	}
	logger.Info("crawling countries", "count", len(links), "concurrency", limit)

	results := make([]*ontology.Record, len(links))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var mu sync.Mutex
	for i, link := range links {
		g.Go(func() error {
			rec, err := c.country(ctx, link.Link)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logger.Warn("skipping country", "country", link.Name, "link", link.Link, "error", err)
				return nil
			}
			mu.Lock()
			results[i] = &rec
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]ontology.Record, 0, len(results))
	for _, r := range results {
		if r != nil {
			records = append(records, *r)
		}
	}
	logger.Info("crawl finished", "records", len(records), "skipped", len(links)-len(records))
	return records, nil
}

func (c *Crawler) country(ctx context.Context, link string) (ontology.Record, error) {
	body, err := c.Fetcher.Fetch(ctx, c.url(link))
	if err != nil {
		return ontology.Record{}, err
	}
	box, err := ParseInfobox(body, link)
	body.Close()
	if err != nil {
		return ontology.Record{}, err
	}

	rec := box.Record
	if box.President != nil {
		if rec.PresidentBirthday, err = c.birthday(ctx, box.President.Link); err != nil {
			return rec, err
		}
	}
	if box.PrimeMinister != nil {
		if rec.PrimeMinisterBirthday, err = c.birthday(ctx, box.PrimeMinister.Link); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

// birthday fetches a leader page. A page that cannot be fetched only
// loses the birthday, unless ctx is done.
func (c *Crawler) birthday(ctx context.Context, link string) (*string, error) {
	body, err := c.Fetcher.Fetch(ctx, c.url(link))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger().Warn("skipping birthday", "link", link, "error", err)
		return nil, nil
	}
	defer body.Close()

	day, ok, err := ParseBirthday(body)
	if err != nil || !ok {
		return nil, err
	}
	return &day, nil
}

func (c *Crawler) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func (c *Crawler) url(link string) string {
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	return strings.TrimSuffix(c.BaseURL, "/") + link
}
