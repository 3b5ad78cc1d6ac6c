package core

import "time"

// ProductFacts is the raw input for one page-generation operation. It is
// built per request (from the admin form, CLI flags, or a scrape result) and
// never persisted.
type ProductFacts struct {
	Title         string   `json:"title"`       // Product title, required
	Category      string   `json:"category"`    // Category, must be one of the configured allowed set
	AffiliateLink string   `json:"amazon_link"` // Outbound purchase URL, required, must appear verbatim in the page
	Note          string   `json:"nz_note"`     // Optional note on why this makes a good NZ gift
	RawDetails    string   `json:"details"`     // Optional free-text product details
	Images        []string `json:"images"`      // Image URLs in display order, at least one required
	ImageAlt      string   `json:"image_alt"`   // Optional alt text, defaults to Title
}

// Alt returns the image alt text, falling back to the title.
func (f ProductFacts) Alt() string {
	if f.ImageAlt != "" {
		return f.ImageAlt
	}
	return f.Title
}

// GeneratedCopy holds the marketing copy for one product page, produced
// either by the model or by the deterministic fallback.
type GeneratedCopy struct {
	Intro           string `json:"intro"`            // Intro paragraph, 90-130 words when model-generated
	DetailsMarkup   string `json:"details_markup"`   // 4-7 bullet-like detail lines
	MetaDescription string `json:"meta_description"` // Meta description, target 140-160 chars
	MetaKeywords    string `json:"meta_keywords"`    // Comma-joined keyword list, 6-10 terms
	CardSubtitle    string `json:"card_subtitle"`    // Listing card subtitle, at most 50 chars
}

// CatalogEntry is one element of a per-category products.json catalog.
// Field order matches the JSON the site's card loader consumes.
type CatalogEntry struct {
	Slug  string `json:"slug"`  // Unique key within a catalog, derived from the title
	Href  string `json:"href"`  // Page filename relative to the catalog file
	Image string `json:"image"` // Primary image URL
	Alt   string `json:"alt"`   // Image alt text
	Title string `json:"title"` // Product title
	Sub   string `json:"sub"`   // Card subtitle
}

// ScrapedProduct is the record returned by the product scraper.
type ScrapedProduct struct {
	Title     string    `json:"title"`      // Scraped product title
	Images    []string  `json:"images"`     // Image URLs, best candidate first; may be empty
	SourceURL string    `json:"source_url"` // URL the product was scraped from
	FetchedAt time.Time `json:"fetched_at"` // When the scrape ran
}

// PublishResult describes a completed page-generation operation.
type PublishResult struct {
	ID          string `json:"id"`           // Operation identifier
	Slug        string `json:"slug"`         // Slug the page and catalog entry were filed under
	PagePath    string `json:"page_path"`    // Absolute path of the written HTML page
	CatalogPath string `json:"catalog_path"` // Absolute path of the updated catalog file
}
