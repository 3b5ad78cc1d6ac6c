package handlers

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"giftfinder/internal/config"
	"giftfinder/internal/core"
	"giftfinder/internal/logger"
	"giftfinder/internal/scrape"
)

// NewScrapeCmd creates the scrape command
func NewScrapeCmd() *cobra.Command {
	var (
		category string
		link     string
		note     string
		details  string
		imageAlt string
		title    string
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "scrape [url]",
		Short: "Scrape a product page and publish it as a gift page",
		Long: `Scrape fetches a retailer product page, pulls the title and image
candidates out of it, and publishes the result the same way generate does.

The affiliate link is not taken from the scraped page. Pass your tagged link
with --link. When the page yields no usable images the configured placeholder
image is used instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScrape(cmd, args[0], scrapeOptions{
				category: category,
				link:     link,
				note:     note,
				details:  details,
				imageAlt: imageAlt,
				title:    title,
				dryRun:   dryRun,
			})
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "product category (required)")
	cmd.Flags().StringVar(&link, "link", "", "affiliate purchase URL (required)")
	cmd.Flags().StringVar(&note, "note", "", "why this makes a good NZ gift")
	cmd.Flags().StringVar(&details, "details", "", "free-text product details, one per line")
	cmd.Flags().StringVar(&imageAlt, "alt", "", "image alt text (defaults to the title)")
	cmd.Flags().StringVar(&title, "title", "", "override the scraped title")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the scraped facts without publishing")

	return cmd
}

type scrapeOptions struct {
	category string
	link     string
	note     string
	details  string
	imageAlt string
	title    string
	dryRun   bool
}

func runScrape(cmd *cobra.Command, productURL string, opts scrapeOptions) error {
	cfg := config.Get()

	timeout, err := time.ParseDuration(cfg.Scrape.Timeout)
	if err != nil {
		timeout = 25 * time.Second
	}
	fetcher := scrape.NewFetcher(cfg.Scrape.UserAgent, timeout, cfg.Scrape.RespectRobots)

	cmd.Println(subtleStyle.Render(fmt.Sprintf("Fetching %s ...", productURL)))
	scraped, err := fetcher.Fetch(cmd.Context(), productURL)
	if err != nil {
		return err
	}

	images := scraped.Images
	if len(images) == 0 {
		logger.Warn("scrape found no images, using placeholder", "url", productURL)
		images = []string{cfg.Site.PlaceholderImage}
	}
	if opts.title == "" {
		opts.title = scraped.Title
	}

	facts := core.ProductFacts{
		Title:         opts.title,
		Category:      opts.category,
		AffiliateLink: opts.link,
		Note:          opts.note,
		RawDetails:    opts.details,
		Images:        images,
		ImageAlt:      opts.imageAlt,
	}

	if opts.dryRun {
		cmd.Println(titleStyle.Render(facts.Title))
		for _, img := range facts.Images {
			cmd.Println(subtleStyle.Render("  image: " + img))
		}
		return nil
	}

	publisher, err := buildPublisher(cfg)
	if err != nil {
		return err
	}
	result, err := publisher.Publish(cmd.Context(), facts)
	if err != nil {
		return err
	}

	printResult(cmd, result)
	return nil
}
