// Package scrape fetches product facts from a retailer product page. It is a
// thin data source for the pipeline: the record it returns still goes through
// the same validation as manual input.
package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/temoto/robotstxt"

	"giftfinder/internal/core"
	"giftfinder/internal/logger"
)

// DefaultTitle is used when a product page exposes no recognizable title.
const DefaultTitle = "NZ Gift"

const maxThumbnails = 6

// Fetcher scrapes product pages.
type Fetcher struct {
	client        *http.Client
	userAgent     string
	respectRobots bool
}

// NewFetcher builds a fetcher with a bounded timeout and a browser-like
// User-Agent.
func NewFetcher(userAgent string, timeout time.Duration, respectRobots bool) *Fetcher {
	if timeout <= 0 {
		timeout = 25 * time.Second
	}
	return &Fetcher{
		client:        &http.Client{Timeout: timeout},
		userAgent:     userAgent,
		respectRobots: respectRobots,
	}
}

// Fetch downloads a product page and extracts title and images. An empty
// image list is not an error; the caller substitutes a placeholder.
func (f *Fetcher) Fetch(ctx context.Context, productURL string) (core.ScrapedProduct, error) {
	parsed, err := url.Parse(productURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return core.ScrapedProduct{}, fmt.Errorf("invalid product URL %q", productURL)
	}

	if f.respectRobots {
		if err := f.checkRobots(ctx, parsed); err != nil {
			return core.ScrapedProduct{}, err
		}
	}

	doc, err := f.fetchDocument(ctx, productURL)
	if err != nil {
		return core.ScrapedProduct{}, err
	}

	title := strings.TrimSpace(doc.Find("#productTitle").First().Text())
	if title == "" {
		title = DefaultTitle
	}

	images := collectImages(doc)
	logger.Debug("scraped product page", "url", productURL, "title", title, "images", len(images))

	return core.ScrapedProduct{
		Title:     title,
		Images:    images,
		SourceURL: productURL,
		FetchedAt: time.Now().UTC(),
	}, nil
}

// checkRobots refuses the fetch when the host's robots.txt disallows it.
// An unreachable or unparsable robots.txt does not block scraping.
func (f *Fetcher) checkRobots(ctx context.Context, target *url.URL) error {
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", target.Scheme, target.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	robots, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil
	}
	if !robots.TestAgent(target.Path, f.userAgent) {
		return fmt.Errorf("robots.txt for %s disallows fetching %s", target.Host, target.Path)
	}
	return nil
}

// fetchDocument downloads and parses the product page.
func (f *Fetcher) fetchDocument(ctx context.Context, productURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, productURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", productURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", productURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: status code %d", productURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", productURL, err)
	}
	return doc, nil
}

// collectImages applies the primary-image policy, then falls back to gallery
// thumbnails.
func collectImages(doc *goquery.Document) []string {
	var images []string
	if main := pickMainImage(doc); main != "" {
		images = append(images, main)
	}

	if len(images) == 0 {
		doc.Find("#altImages img[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			src := strings.TrimSpace(s.AttrOr("src", ""))
			if strings.Contains(src, "m.media-amazon.com") {
				images = append(images, src)
			}
			return len(images) < maxThumbnails
		})
	}
	return images
}

// pickMainImage walks the candidate selectors from most to least reliable:
// social-preview meta, the static fullscreen image, the landing image's
// high-resolution attribute then its plain source, and finally the wrapped
// gallery image.
func pickMainImage(doc *goquery.Document) string {
	if content := strings.TrimSpace(doc.Find(`meta[property="og:image"]`).AttrOr("content", "")); content != "" {
		return content
	}
	if src := strings.TrimSpace(doc.Find("img.fullscreen[src]").AttrOr("src", "")); src != "" {
		return src
	}

	landing := doc.Find("#landingImage").First()
	if hires := strings.TrimSpace(landing.AttrOr("data-old-hires", "")); hires != "" {
		return hires
	}
	if src := strings.TrimSpace(landing.AttrOr("src", "")); src != "" {
		return src
	}

	return strings.TrimSpace(doc.Find("#imgTagWrapperId img[src]").AttrOr("src", ""))
}
