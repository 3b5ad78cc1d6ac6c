// Package render turns product facts and generated copy into a final HTML
// page and enforces the structural contract every page must meet before it
// is written.
package render

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"giftfinder/internal/copygen"
	"giftfinder/internal/core"
)

// Required literal snippets: every product page links the shared stylesheet
// and script at these exact relative paths and carries the gallery image
// container the site script drives.
var requiredSnippets = []string{
	"<html",
	"</html>",
	`<link rel="stylesheet" href="../style.css"`,
	`<script src="../app.js">`,
	`id="mainProductImage"`,
}

var leftoverTokenRegex = regexp.MustCompile(`\{\{[A-Z_]+\}\}`)

// ValidationError reports every structural-contract clause a rendered page
// failed.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("generated HTML failed validation: %s", strings.Join(e.Problems, "; "))
}

// Validate checks a rendered page against the structural contract: required
// markup present, affiliate link present verbatim, no forbidden leftover
// text, no unresolved template tokens. Returns nil or a *ValidationError
// enumerating all failed clauses.
func Validate(pageHTML, affiliateLink string, forbidden []string) error {
	var problems []string

	for _, snippet := range requiredSnippets {
		if !strings.Contains(pageHTML, snippet) {
			problems = append(problems, fmt.Sprintf("missing required content %q", snippet))
		}
	}
	if !strings.Contains(pageHTML, affiliateLink) {
		problems = append(problems, "does not include the affiliate link")
	}
	for _, text := range forbidden {
		if strings.Contains(pageHTML, text) {
			problems = append(problems, fmt.Sprintf("still contains leftover %q text", text))
		}
	}
	if tokens := leftoverTokenRegex.FindAllString(pageHTML, -1); len(tokens) > 0 {
		problems = append(problems, fmt.Sprintf("unresolved template tokens: %s", strings.Join(tokens, ", ")))
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Slots fills the fixed page template from facts and copy. Tokens are
// literal markers replaced verbatim; anything left over is caught by
// Validate.
func Slots(tpl string, facts core.ProductFacts, generated core.GeneratedCopy) string {
	mainImage := ""
	if len(facts.Images) > 0 {
		mainImage = facts.Images[0]
	}

	replacer := strings.NewReplacer(
		"{{PAGE_TITLE}}", html.EscapeString(facts.Title)+" | NZ Gifts",
		"{{PRODUCT_TITLE}}", html.EscapeString(facts.Title),
		"{{CATEGORY}}", html.EscapeString(facts.Category),
		"{{INTRO}}", html.EscapeString(generated.Intro),
		"{{WHY_NOTE}}", html.EscapeString(facts.Note),
		"{{DETAILS_HTML}}", detailsList(generated.DetailsMarkup),
		"{{AMAZON_URL}}", facts.AffiliateLink,
		"{{MAIN_IMAGE}}", mainImage,
		"{{IMAGE_ALT}}", html.EscapeString(facts.Alt()),
		"{{IMAGE_HTML}}", thumbsHTML(facts.Images, facts.Alt()),
		"{{META_DESCRIPTION}}", html.EscapeString(generated.MetaDescription),
		"{{META_KEYWORDS}}", html.EscapeString(generated.MetaKeywords),
		"{{YEAR}}", fmt.Sprintf("%d", time.Now().Year()),
	)
	return replacer.Replace(tpl)
}

// detailsList renders bullet-like detail lines as list items. Leading bullet
// characters from model output are stripped.
func detailsList(details string) string {
	var b strings.Builder
	for _, line := range strings.Split(details, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*• \t"))
		if line == "" {
			continue
		}
		b.WriteString("<li>")
		b.WriteString(html.EscapeString(line))
		b.WriteString("</li>\n")
	}
	return b.String()
}

// thumbsHTML renders the thumbnail buttons the gallery script toggles
// between. The first image doubles as the main image, so it is marked
// active.
func thumbsHTML(images []string, alt string) string {
	var b strings.Builder
	for i, src := range images {
		class := "thumb"
		if i == 0 {
			class = "thumb is-active"
		}
		b.WriteString(fmt.Sprintf(
			`<button type="button" class=%q data-src=%q data-alt=%q><img src=%q alt=%q loading="lazy" /></button>`,
			class, src, alt, src, alt))
		b.WriteString("\n")
	}
	return b.String()
}

const (
	// DocumentSystemInstruction frames the full-document generation call.
	DocumentSystemInstruction = "You are an expert copywriter and HTML editor for nzgiftfinder. Output must be valid HTML only."

	// DocumentPromptTemplate instructs the generator to rewrite only the
	// product-specific text of the template while preserving its structure.
	DocumentPromptTemplate = `You will be given
1) TEMPLATE_HTML which you must preserve structurally
2) FIELDS_JSON with product info

Rules
- Keep all tags, ids, class names, imports, and layout identical to TEMPLATE_HTML
- Only edit the text content and attribute values that are product specific
- Update title tag, meta description, meta keywords if present, image alt text, breadcrumb text, h1, intro, why section
- Use NZ vibe and common usage in NZ
- No repetitive phrasing
- No selling contrasts
- Output only the final HTML file, nothing else

TEMPLATE_HTML:
<<<
%s
>>>
FIELDS_JSON:
<<<
%s
>>>
`
)

// Document asks the injected generator to produce the whole page from the
// template and a facts bundle. The response is HTML only; stray markdown
// code fences are stripped.
func Document(ctx context.Context, gen copygen.TextGenerator, tpl string, facts core.ProductFacts, slug string) (string, error) {
	mainImage := ""
	if len(facts.Images) > 0 {
		mainImage = facts.Images[0]
	}
	fields := map[string]any{
		"title":       facts.Title,
		"category":    facts.Category,
		"amazon_link": facts.AffiliateLink,
		"nz_note":     facts.Note,
		"details":     facts.RawDetails,
		"images":      facts.Images,
		"image1":      mainImage,
		"image_alt":   facts.Alt(),
		"slug":        slug,
	}
	fieldsJSON, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode fields: %w", err)
	}

	prompt := fmt.Sprintf(DocumentPromptTemplate, tpl, fieldsJSON)
	raw, err := gen.GenerateText(ctx, DocumentSystemInstruction, prompt)
	if err != nil {
		return "", fmt.Errorf("page generation call failed: %w", err)
	}

	return stripCodeFences(strings.TrimSpace(raw)), nil
}

// stripCodeFences unwraps a response the model wrapped in a markdown code
// block.
func stripCodeFences(raw string) string {
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	body := raw
	if idx := strings.Index(body, "\n"); idx >= 0 {
		body = body[idx+1:]
	}
	body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	return strings.TrimSpace(body)
}

// ExtractMetaDescription pulls the meta description out of a rendered page.
// Returns "" when the tag is absent or unreadable.
func ExtractMetaDescription(pageHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return ""
	}
	content, _ := doc.Find(`meta[name="description"]`).Attr("content")
	return strings.TrimSpace(content)
}
