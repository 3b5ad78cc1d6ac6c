package render

import (
	"context"
	"errors"
	"strings"
	"testing"

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

func testFacts() core.ProductFacts {
	return core.ProductFacts{
		Title:         "Kiwi Mug",
		Category:      "clothing",
		AffiliateLink: "http://aff/1",
		Note:          "A solid pick for overseas mates.",
		Images:        []string{"http://x/1.png", "http://x/2.png"},
	}
}

func testCopy() core.GeneratedCopy {
	return core.GeneratedCopy{
		Intro:           "A mug worth gifting.",
		DetailsMarkup:   "- ceramic\n- dishwasher safe\n\n- 350ml",
		MetaDescription: "A ceramic kiwi mug for easy gifting.",
		MetaKeywords:    "kiwi mug, nz gifts",
		CardSubtitle:    "A mug worth gifting.",
	}
}

func TestSlotsFillsAllTokens(t *testing.T) {
	page := Slots(testTemplate, testFacts(), testCopy())

	if err := Validate(page, "http://aff/1", []string{"Swanndri"}); err != nil {
		t.Fatalf("rendered page failed validation: %v", err)
	}
	for _, want := range []string{
		"Kiwi Mug | NZ Gifts",
		`src="http://x/1.png"`,
		"<li>ceramic</li>",
		"<li>350ml</li>",
		"A solid pick for overseas mates.",
		"kiwi mug, nz gifts",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
	// First thumbnail is marked active for the gallery script.
	if !strings.Contains(page, `class="thumb is-active" data-src="http://x/1.png"`) {
		t.Error("first thumbnail should be active")
	}
}

func TestSlotsEscapesText(t *testing.T) {
	facts := testFacts()
	facts.Title = `Mug <"special">`
	page := Slots(testTemplate, facts, testCopy())

	if strings.Contains(page, `<h1>Mug <"special"></h1>`) {
		t.Error("title should be HTML-escaped")
	}
	if !strings.Contains(page, "Mug &lt;&#34;special&#34;&gt;") {
		t.Errorf("escaped title missing from page")
	}
}

func TestValidateEnumeratesAllFailures(t *testing.T) {
	page := `<html></html><p>Swanndri classic</p>{{INTRO}}`
	err := Validate(page, "http://aff/1", []string{"Swanndri"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}

	joined := strings.Join(verr.Problems, "\n")
	for _, want := range []string{
		"../style.css",
		"../app.js",
		"mainProductImage",
		"affiliate link",
		`"Swanndri"`,
		"{{INTRO}}",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("problems should mention %s, got:\n%s", want, joined)
		}
	}
}

func TestValidateAcceptsContractPage(t *testing.T) {
	page := Slots(testTemplate, testFacts(), testCopy())
	if err := Validate(page, "http://aff/1", nil); err != nil {
		t.Fatalf("unexpected validation failure: %v", err)
	}
}

type cannedGenerator struct {
	response string
	err      error
	prompt   string
}

func (g *cannedGenerator) GenerateText(_ context.Context, _, prompt string) (string, error) {
	g.prompt = prompt
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

func TestDocumentRendersThroughGenerator(t *testing.T) {
	gen := &cannedGenerator{response: "```html\n<html>generated</html>\n```"}
	page, err := Document(context.Background(), gen, testTemplate, testFacts(), "kiwi-mug")
	if err != nil {
		t.Fatalf("Document failed: %v", err)
	}
	if page != "<html>generated</html>" {
		t.Errorf("code fences should be stripped, got %q", page)
	}
	if !strings.Contains(gen.prompt, "TEMPLATE_HTML:") || !strings.Contains(gen.prompt, `"slug": "kiwi-mug"`) {
		t.Errorf("prompt should embed template and fields, got %q", gen.prompt)
	}
}

func TestDocumentPropagatesFailure(t *testing.T) {
	boom := errors.New("model unavailable")
	_, err := Document(context.Background(), &cannedGenerator{err: boom}, testTemplate, testFacts(), "kiwi-mug")
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped remote failure, got %v", err)
	}
}

func TestExtractMetaDescription(t *testing.T) {
	page := Slots(testTemplate, testFacts(), testCopy())
	if got := ExtractMetaDescription(page); got != "A ceramic kiwi mug for easy gifting." {
		t.Errorf("ExtractMetaDescription = %q", got)
	}
	if got := ExtractMetaDescription("<html><head></head></html>"); got != "" {
		t.Errorf("expected empty description, got %q", got)
	}
}
