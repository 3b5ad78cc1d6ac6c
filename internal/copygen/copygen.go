// Package copygen produces the marketing copy for a product page, either
// through an injected text-generation capability or through a deterministic
// fallback when no model is configured.
package copygen

import (
	"context"
	"fmt"
	"strings"

	"giftfinder/internal/core"
	"giftfinder/internal/textutil"
)

const (
	// SystemInstruction frames every copywriting call.
	SystemInstruction = "You are an expert copywriter for nzgiftfinder, a New Zealand gift recommendation site. Follow the requested output format exactly."

	// CopyPromptTemplate is the structured prompt for the five labeled copy
	// sections. The label lines are load-bearing: the response parser scans
	// for them.
	CopyPromptTemplate = `Write product page copy for the following product.

PRODUCT_TITLE: %s
CATEGORY: %s
NZ_NOTE: %s
DETAILS_RAW:
%s

Respond with exactly five labeled sections, each label at the start of its own line:

INTRO: one paragraph of 90-130 words introducing the product. Use NZ vibe and common usage in NZ. No repetitive phrasing. No selling contrasts.
DETAILS: 4 to 7 short bullet-like lines, one product detail per line.
META_DESCRIPTION: a single line of 140-160 characters for the meta description tag.
KEYWORDS: 6 to 10 comma-separated search terms.
CARD_SUB: a single line of at most 50 characters for the listing card.

Output only the labeled sections, nothing else.`
)

// TextGenerator is the external copy-generation capability. It is satisfied
// by llm.Client and by test fakes.
type TextGenerator interface {
	GenerateText(ctx context.Context, system, prompt string) (string, error)
}

// Generator turns product facts into page copy.
type Generator interface {
	Generate(ctx context.Context, facts core.ProductFacts) (core.GeneratedCopy, error)
}

// FallbackKeywords synthesizes the keyword list used whenever no usable
// keywords are available.
func FallbackKeywords(title, category string) string {
	return fmt.Sprintf("%s, %s, NZ gifts, New Zealand gifts", title, category)
}

// Fallback is the deterministic generator used when no model is configured.
// It never fails.
type Fallback struct{}

// Generate builds copy from the facts alone.
func (Fallback) Generate(_ context.Context, facts core.ProductFacts) (core.GeneratedCopy, error) {
	intro := textutil.CleanSingleLine(fmt.Sprintf(
		"%s is an easy New Zealand gift pick that suits birthdays, visitors, and the person who is impossible to buy for. %s",
		facts.Title, facts.Note))

	return core.GeneratedCopy{
		Intro:           intro,
		DetailsMarkup:   facts.RawDetails,
		MetaDescription: textutil.CleanSingleLine(intro),
		MetaKeywords:    FallbackKeywords(facts.Title, facts.Category),
		CardSubtitle:    textutil.FallbackCardSub(intro),
	}, nil
}

// ModelGenerator asks the injected capability for the five labeled sections
// and assembles copy from the parsed response.
type ModelGenerator struct {
	gen TextGenerator
}

// NewModelGenerator wraps a text-generation capability.
func NewModelGenerator(gen TextGenerator) *ModelGenerator {
	return &ModelGenerator{gen: gen}
}

// Generate issues one structured generation call. A failed call surfaces as
// an error; the deterministic fallback is deliberately not substituted here.
func (g *ModelGenerator) Generate(ctx context.Context, facts core.ProductFacts) (core.GeneratedCopy, error) {
	prompt := fmt.Sprintf(CopyPromptTemplate, facts.Title, facts.Category, facts.Note, facts.RawDetails)

	raw, err := g.gen.GenerateText(ctx, SystemInstruction, prompt)
	if err != nil {
		return core.GeneratedCopy{}, fmt.Errorf("copy generation call failed: %w", err)
	}

	return assembleCopy(raw, facts), nil
}

// assembleCopy applies the section fallback ladder to a raw model response.
func assembleCopy(raw string, facts core.ProductFacts) core.GeneratedCopy {
	sections := parseSections(raw)

	intro := sections[labelIntro]
	if intro == "" {
		if idx := strings.Index(raw, labelDetails+":"); idx >= 0 {
			intro = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw[:idx]), labelIntro+":"))
		}
		if intro == "" {
			intro = strings.TrimSpace(raw)
		}
	}

	metaDescription := textutil.CleanSingleLine(sections[labelMetaDescription])
	if metaDescription == "" {
		metaDescription = textutil.CleanSingleLine(intro)
	}
	if metaDescription == "" {
		metaDescription = textutil.CleanSingleLine(facts.Title)
	}

	keywords := joinKeywords(sections[labelKeywords])
	if keywords == "" {
		keywords = FallbackKeywords(facts.Title, facts.Category)
	}

	cardSub := textutil.CleanSingleLine(sections[labelCardSub])
	if cardSub != "" {
		cardSub = textutil.TruncateLine(cardSub, textutil.CardSubLimit)
	} else {
		cardSub = textutil.FallbackCardSub(intro)
	}

	details := sections[labelDetails]
	if details == "" {
		details = facts.RawDetails
	}

	return core.GeneratedCopy{
		Intro:           intro,
		DetailsMarkup:   details,
		MetaDescription: metaDescription,
		MetaKeywords:    keywords,
		CardSubtitle:    cardSub,
	}
}

// joinKeywords normalizes a comma-separated keyword list, dropping empty
// entries. Returns "" when nothing usable remains.
func joinKeywords(raw string) string {
	var keywords []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			keywords = append(keywords, part)
		}
	}
	return strings.Join(keywords, ", ")
}
