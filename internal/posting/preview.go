package posting

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobdesk/internal/config"
	"jobdesk/internal/logging"
)

// maxBody caps how much of a posting page is read
const maxBody = 4 << 20

var ErrInvalidURL = errors.New("posting url must be absolute http(s)")

// Preview is the summary shown next to a tracker row
type Preview struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Company     string `json:"company,omitempty"`
	Description string `json:"description"`
}

// Fetcher downloads job postings and summarizes them
type Fetcher struct {
	client    *http.Client
	userAgent string
	cleaner   *Cleaner
	logger    logging.Logger
}

// NewFetcher creates a fetcher using the posting section of the configuration
func NewFetcher(cfg *config.Config, logger logging.Logger) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: cfg.Posting.Timeout},
		userAgent: cfg.Posting.UserAgent,
		cleaner:   NewCleaner(),
		logger:    logger,
	}
}

// Fetch retrieves the posting at rawURL and builds a preview of it
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Preview, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidURL
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build posting request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch posting: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch posting: status %d", resp.StatusCode)
	}

	preview, err := Parse(io.LimitReader(resp.Body, maxBody), u, f.cleaner)
	if err != nil {
		return nil, err
	}

	f.logger.Debug("Posting preview fetched", map[string]interface{}{
		"host":        u.Host,
		"title":       preview.Title,
		"chars":       len(preview.Description),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return preview, nil
}

// Parse builds a preview from an HTML document
func Parse(r io.Reader, u *url.URL, cleaner *Cleaner) (*Preview, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse posting HTML: %w", err)
	}

	preview := &Preview{URL: u.String()}
	preview.Title = firstNonEmpty(
		metaContent(doc, "og:title"),
		strings.TrimSpace(doc.Find("h1").First().Text()),
		strings.TrimSpace(doc.Find("title").First().Text()),
	)
	preview.Company = firstNonEmpty(
		metaContent(doc, "og:site_name"),
		strings.TrimSpace(doc.Find("[itemprop='hiringOrganization'] [itemprop='name']").First().Text()),
		strings.TrimPrefix(u.Hostname(), "www."),
	)

	cleaner.Strip(doc)
	preview.Description = cleaner.ExtractJobContent(doc)
	if preview.Description == "" {
		preview.Description = metaContent(doc, "og:description")
	}

	return preview, nil
}

func metaContent(doc *goquery.Document, property string) string {
	sel := doc.Find(fmt.Sprintf("meta[property='%s'], meta[name='%s']", property, property)).First()
	content, _ := sel.Attr("content")
	return strings.TrimSpace(content)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
