// Package pipeline runs one page-generation operation end to end: validate
// facts, generate copy, render and validate the page, write it under the
// output root, and upsert the catalog entry. Operations are synchronous and
// isolated; nothing is written once a step before the write has failed.
package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"giftfinder/internal/catalog"
	"giftfinder/internal/config"
	"giftfinder/internal/copygen"
	"giftfinder/internal/core"
	"giftfinder/internal/fsafe"
	"giftfinder/internal/logger"
	"giftfinder/internal/render"
	"giftfinder/internal/textutil"
)

// CatalogFilename is the per-category catalog file each page upserts into.
const CatalogFilename = "products.json"

// Publisher runs page-generation operations against one site configuration.
type Publisher struct {
	cfg     *config.Config
	copyGen copygen.Generator
	textGen copygen.TextGenerator
}

// NewPublisher builds a publisher. copyGen produces the labeled copy for the
// slot strategy; textGen is the raw capability the document strategy needs
// and may be nil when the strategy is "slots".
func NewPublisher(cfg *config.Config, copyGen copygen.Generator, textGen copygen.TextGenerator) *Publisher {
	return &Publisher{cfg: cfg, copyGen: copyGen, textGen: textGen}
}

// Publish generates, validates, and persists one product page plus its
// catalog entry. On failure the returned error is a *Error rendering as
// "{kind}: {message}".
func (p *Publisher) Publish(ctx context.Context, facts core.ProductFacts) (*core.PublishResult, error) {
	opID := uuid.NewString()

	facts, err := p.validateFacts(facts)
	if err != nil {
		return nil, err
	}

	slug := textutil.Slugify(facts.Title)
	log := logger.Get().With().Str("op", opID).Str("slug", slug).Str("category", facts.Category).Logger()

	// Resolve both targets before creating anything on disk, so a crafted
	// category can neither place files nor directories outside the root.
	outDir, err := fsafe.ResolveWithin(p.cfg.Site.OutputRoot, facts.Category)
	if err != nil {
		return nil, opError(KindPermission, err)
	}
	pagePath, err := fsafe.ResolveWithin(p.cfg.Site.OutputRoot, facts.Category, slug+".html")
	if err != nil {
		return nil, opError(KindPermission, err)
	}
	if err := fsafe.EnsureWritableDir(outDir); err != nil {
		return nil, opError(KindPermission, err)
	}
	catalogPath := filepath.Join(outDir, CatalogFilename)

	tpl, err := p.loadTemplate()
	if err != nil {
		return nil, err
	}

	pageHTML, cardSub, err := p.renderPage(ctx, tpl, facts, slug)
	if err != nil {
		return nil, err
	}

	if err := render.Validate(pageHTML, facts.AffiliateLink, p.cfg.Site.ForbiddenPlaceholders); err != nil {
		return nil, opError(KindValidation, err)
	}

	if err := fsafe.WriteFile(pagePath, []byte(pageHTML)); err != nil {
		return nil, opError(KindPermission, err)
	}

	entry := core.CatalogEntry{
		Slug:  slug,
		Href:  slug + ".html",
		Image: facts.Images[0],
		Alt:   facts.Alt(),
		Title: facts.Title,
		Sub:   cardSub,
	}
	if err := catalog.Upsert(catalogPath, entry); err != nil {
		if errors.Is(err, catalog.ErrBadFormat) {
			return nil, opError(KindFormat, err)
		}
		return nil, opError(KindPermission, err)
	}

	log.Info().Str("page", pagePath).Msg("product page published")

	return &core.PublishResult{
		ID:          opID,
		Slug:        slug,
		PagePath:    pagePath,
		CatalogPath: catalogPath,
	}, nil
}

// validateFacts normalizes and checks the input facts.
func (p *Publisher) validateFacts(facts core.ProductFacts) (core.ProductFacts, error) {
	facts.Title = strings.TrimSpace(facts.Title)
	facts.Category = strings.ToLower(strings.TrimSpace(facts.Category))
	facts.AffiliateLink = strings.TrimSpace(facts.AffiliateLink)
	facts.Note = strings.TrimSpace(facts.Note)
	facts.RawDetails = strings.TrimSpace(facts.RawDetails)
	facts.ImageAlt = strings.TrimSpace(facts.ImageAlt)

	images := facts.Images[:0:0]
	for _, img := range facts.Images {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}
	facts.Images = images

	if facts.Title == "" {
		return facts, opErrorf(KindValidation, "missing product title")
	}
	if !p.cfg.CategoryAllowed(facts.Category) {
		return facts, opErrorf(KindValidation, "category must be one of: %s",
			strings.Join(p.cfg.Site.AllowedCategories, ", "))
	}
	if facts.AffiliateLink == "" {
		return facts, opErrorf(KindValidation, "missing affiliate link")
	}
	if len(facts.Images) == 0 {
		return facts, opErrorf(KindValidation, "add at least 1 image URL")
	}
	return facts, nil
}

// loadTemplate reads the configured page template.
func (p *Publisher) loadTemplate() (string, error) {
	path := filepath.Join(p.cfg.Site.TemplatesDir, p.cfg.Site.PageTemplate)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", opErrorf(KindValidation, "cannot read page template %s: %v", path, err)
	}
	return string(data), nil
}

// renderPage produces the page HTML and the card subtitle under the
// configured strategy.
func (p *Publisher) renderPage(ctx context.Context, tpl string, facts core.ProductFacts, slug string) (string, string, error) {
	switch p.cfg.Render.Strategy {
	case "document":
		if p.textGen == nil {
			return "", "", opErrorf(KindValidation, "render strategy %q requires a configured generation model", "document")
		}
		pageHTML, err := render.Document(ctx, p.textGen, tpl, facts, slug)
		if err != nil {
			return "", "", opError(KindRemoteCall, err)
		}
		metaDescription := render.ExtractMetaDescription(pageHTML)
		if metaDescription == "" {
			metaDescription = facts.Title
		}
		return pageHTML, textutil.FallbackCardSub(metaDescription), nil

	default: // slots
		generated, err := p.copyGen.Generate(ctx, facts)
		if err != nil {
			return "", "", opError(KindRemoteCall, err)
		}
		return render.Slots(tpl, facts, generated), generated.CardSubtitle, nil
	}
}

// Describe renders any operation error as its boundary string. A nil error
// describes as "ok"; errors that never crossed the operation boundary keep
// their bare message rather than borrowing a kind.
func Describe(err error) string {
	if err == nil {
		return "ok"
	}
	var op *Error
	if errors.As(err, &op) {
		return op.Error()
	}
	return err.Error()
}
