package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"giftfinder/internal/catalog"
	"giftfinder/internal/config"
	"giftfinder/internal/copygen"
	"giftfinder/internal/core"
)

const testTemplate = `<!DOCTYPE html>
<html>
<head>
  <title>{{PAGE_TITLE}}</title>
  <meta name="description" content="{{META_DESCRIPTION}}" />
  <meta name="keywords" content="{{META_KEYWORDS}}" />
  <link rel="stylesheet" href="../style.css" />
</head>
<body>
  <img id="mainProductImage" src="{{MAIN_IMAGE}}" alt="{{IMAGE_ALT}}" />
  <div class="thumbs">{{IMAGE_HTML}}</div>
  <h1>{{PRODUCT_TITLE}}</h1>
  <p>{{INTRO}}</p>
  <p>{{WHY_NOTE}}</p>
  <ul>{{DETAILS_HTML}}</ul>
  <a href="{{AMAZON_URL}}">Buy</a>
  <small>{{YEAR}} {{CATEGORY}}</small>
  <script src="../app.js"></script>
</body>
</html>`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	templatesDir := filepath.Join(root, "templates")
	if err := os.MkdirAll(templatesDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(templatesDir, "product_page.html"), []byte(testTemplate), 0644); err != nil {
		t.Fatal(err)
	}
	return &config.Config{
		Site: config.Site{
			OutputRoot:            filepath.Join(root, "site"),
			AllowedCategories:     []string{"clothing", "jewelry", "skincare", "artwork"},
			TemplatesDir:          templatesDir,
			PageTemplate:          "product_page.html",
			ForbiddenPlaceholders: []string{"Swanndri"},
		},
		Render: config.Render{Strategy: "slots"},
	}
}

func kiwiMugFacts() core.ProductFacts {
	return core.ProductFacts{
		Title:         "Kiwi Mug",
		Category:      "clothing",
		AffiliateLink: "http://aff/1",
		Images:        []string{"http://x/img.png"},
	}
}

func TestPublishWithFallbackCopy(t *testing.T) {
	cfg := testConfig(t)
	pub := NewPublisher(cfg, copygen.Fallback{}, nil)

	result, err := pub.Publish(context.Background(), kiwiMugFacts())
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if result.Slug != "kiwi-mug" {
		t.Errorf("slug = %q", result.Slug)
	}

	pageData, err := os.ReadFile(filepath.Join(cfg.Site.OutputRoot, "clothing", "kiwi-mug.html"))
	if err != nil {
		t.Fatalf("page not written: %v", err)
	}
	if !strings.Contains(string(pageData), "http://aff/1") {
		t.Error("page should contain the affiliate link verbatim")
	}

	entries, err := catalog.Load(filepath.Join(cfg.Site.OutputRoot, "clothing", "products.json"))
	if err != nil {
		t.Fatalf("catalog not readable: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 catalog entry, got %d", len(entries))
	}
	if entries[0].Slug != "kiwi-mug" || entries[0].Href != "kiwi-mug.html" {
		t.Errorf("unexpected entry %+v", entries[0])
	}
	if entries[0].Image != "http://x/img.png" || entries[0].Alt != "Kiwi Mug" {
		t.Errorf("unexpected entry media %+v", entries[0])
	}
}

func TestPublishRejectsBadCategory(t *testing.T) {
	cfg := testConfig(t)
	pub := NewPublisher(cfg, copygen.Fallback{}, nil)

	facts := kiwiMugFacts()
	facts.Category = "furniture"
	_, err := pub.Publish(context.Background(), facts)
	if err == nil {
		t.Fatal("expected validation error")
	}

	var op *Error
	if !errors.As(err, &op) || op.Kind != KindValidation {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "ValidationError: ") {
		t.Errorf("boundary format wrong: %q", err.Error())
	}
	if !strings.Contains(err.Error(), "clothing, jewelry, skincare, artwork") {
		t.Errorf("error should name the allowed categories, got %q", err.Error())
	}
	assertNothingWritten(t, cfg)
}

func TestPublishRejectsMissingInputs(t *testing.T) {
	cfg := testConfig(t)
	pub := NewPublisher(cfg, copygen.Fallback{}, nil)

	cases := []struct {
		mutate  func(*core.ProductFacts)
		message string
	}{
		{func(f *core.ProductFacts) { f.Title = "  " }, "missing product title"},
		{func(f *core.ProductFacts) { f.AffiliateLink = "" }, "missing affiliate link"},
		{func(f *core.ProductFacts) { f.Images = []string{" ", ""} }, "at least 1 image"},
	}
	for _, tc := range cases {
		facts := kiwiMugFacts()
		tc.mutate(&facts)
		_, err := pub.Publish(context.Background(), facts)
		if err == nil || !strings.Contains(err.Error(), tc.message) {
			t.Errorf("expected %q error, got %v", tc.message, err)
		}
	}
	assertNothingWritten(t, cfg)
}

func TestPublishBlocksTraversal(t *testing.T) {
	cfg := testConfig(t)
	// An allowed category crafted to escape the output root.
	cfg.Site.AllowedCategories = append(cfg.Site.AllowedCategories, "../evil")
	pub := NewPublisher(cfg, copygen.Fallback{}, nil)

	facts := kiwiMugFacts()
	facts.Category = "../evil"
	_, err := pub.Publish(context.Background(), facts)

	var op *Error
	if !errors.As(err, &op) || op.Kind != KindPermission {
		t.Fatalf("expected PermissionError, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(cfg.Site.OutputRoot, "..", "evil")); !os.IsNotExist(statErr) {
		t.Error("no directory may be created outside the output root")
	}
}

func TestPublishForbiddenLeftoverText(t *testing.T) {
	cfg := testConfig(t)
	pub := NewPublisher(cfg, copygen.Fallback{}, nil)

	facts := kiwiMugFacts()
	facts.Note = "Pairs well with a Swanndri shirt."
	_, err := pub.Publish(context.Background(), facts)

	var op *Error
	if !errors.As(err, &op) || op.Kind != KindValidation {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(cfg.Site.OutputRoot, "clothing", "kiwi-mug.html")); !os.IsNotExist(statErr) {
		t.Error("invalid page must not be written")
	}
	if _, statErr := os.Stat(filepath.Join(cfg.Site.OutputRoot, "clothing", "products.json")); !os.IsNotExist(statErr) {
		t.Error("catalog must not be touched after a validation failure")
	}
}

type failingGenerator struct{ err error }

func (g failingGenerator) GenerateText(context.Context, string, string) (string, error) {
	return "", g.err
}

func TestPublishRemoteCallFailure(t *testing.T) {
	cfg := testConfig(t)
	boom := errors.New("connection reset")
	pub := NewPublisher(cfg, copygen.NewModelGenerator(failingGenerator{err: boom}), nil)

	_, err := pub.Publish(context.Background(), kiwiMugFacts())

	var op *Error
	if !errors.As(err, &op) || op.Kind != KindRemoteCall {
		t.Fatalf("expected RemoteCallError, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("remote failure should be wrapped, got %v", err)
	}
	assertNothingWritten(t, cfg)
}

type documentGenerator struct{ page string }

func (g documentGenerator) GenerateText(context.Context, string, string) (string, error) {
	return g.page, nil
}

func TestPublishDocumentStrategy(t *testing.T) {
	cfg := testConfig(t)
	cfg.Render.Strategy = "document"

	page := `<html>
<head>
  <meta name="description" content="A ceramic kiwi mug for easy gifting. Ships NZ-wide." />
  <link rel="stylesheet" href="../style.css" />
</head>
<body>
  <img id="mainProductImage" src="http://x/img.png" />
  <a href="http://aff/1">Buy</a>
  <script src="../app.js"></script>
</body>
</html>`
	pub := NewPublisher(cfg, copygen.Fallback{}, documentGenerator{page: page})

	result, err := pub.Publish(context.Background(), kiwiMugFacts())
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	entries, err := catalog.Load(result.CatalogPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	// Card subtitle derives from the page's meta description.
	if entries[0].Sub != "A ceramic kiwi mug for easy gifting." {
		t.Errorf("sub = %q", entries[0].Sub)
	}
}

func TestPublishDocumentStrategyWithoutModel(t *testing.T) {
	cfg := testConfig(t)
	cfg.Render.Strategy = "document"
	pub := NewPublisher(cfg, copygen.Fallback{}, nil)

	_, err := pub.Publish(context.Background(), kiwiMugFacts())
	var op *Error
	if !errors.As(err, &op) || op.Kind != KindValidation {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestPublishUpsertReplacesEntry(t *testing.T) {
	cfg := testConfig(t)
	pub := NewPublisher(cfg, copygen.Fallback{}, nil)

	if _, err := pub.Publish(context.Background(), kiwiMugFacts()); err != nil {
		t.Fatal(err)
	}
	second := kiwiMugFacts()
	second.Note = "Now with a nicer note."
	result, err := pub.Publish(context.Background(), second)
	if err != nil {
		t.Fatal(err)
	}

	entries, err := catalog.Load(result.CatalogPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry after re-publish, got %d", len(entries))
	}
	if entries[0].Slug != "kiwi-mug" {
		t.Errorf("entry slug = %q", entries[0].Slug)
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(nil); got != "ok" {
		t.Errorf("Describe(nil) = %q", got)
	}
	classified := opErrorf(KindPermission, "cannot write to %s", "/site/jewelry")
	if got := Describe(classified); got != "PermissionError: cannot write to /site/jewelry" {
		t.Errorf("classified error = %q", got)
	}
	// An error that never crossed the operation boundary keeps its bare
	// message instead of being labeled a validation failure.
	plain := errors.New("failed to fetch https://example.com/dp/B0: connection refused")
	if got := Describe(plain); got != plain.Error() {
		t.Errorf("unclassified error = %q", got)
	}
}

func assertNothingWritten(t *testing.T, cfg *config.Config) {
	t.Helper()
	if _, err := os.Stat(cfg.Site.OutputRoot); !os.IsNotExist(err) {
		entries, _ := os.ReadDir(cfg.Site.OutputRoot)
		for _, e := range entries {
			sub, _ := os.ReadDir(filepath.Join(cfg.Site.OutputRoot, e.Name()))
			if len(sub) != 0 {
				t.Errorf("unexpected output files under %s", e.Name())
			}
		}
	}
}
