package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"giftfinder/internal/config"
	"giftfinder/internal/core"
)

// NewGenerateCmd creates the generate command
func NewGenerateCmd() *cobra.Command {
	var (
		title    string
		category string
		link     string
		note     string
		details  string
		imageAlt string
		images   []string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a product page from facts given on the command line",
		Long: `Generate builds one static product page and upserts its entry into the
category's products.json catalog.

Example:
  giftfinder generate \
    --title "Pounamu Twist Pendant" \
    --category jewelry \
    --link "https://www.amazon.com/dp/B000000?tag=nzgift-20" \
    --image "https://m.media-amazon.com/images/I/pendant.jpg" \
    --note "Carved greenstone is the classic NZ keepsake."`,
		RunE: func(cmd *cobra.Command, args []string) error {
			facts := core.ProductFacts{
				Title:         title,
				Category:      category,
				AffiliateLink: link,
				Note:          note,
				RawDetails:    details,
				Images:        images,
				ImageAlt:      imageAlt,
			}
			return runGenerate(cmd, facts)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "product title (required)")
	cmd.Flags().StringVar(&category, "category", "", "product category (required)")
	cmd.Flags().StringVar(&link, "link", "", "affiliate purchase URL (required)")
	cmd.Flags().StringVar(&note, "note", "", "why this makes a good NZ gift")
	cmd.Flags().StringVar(&details, "details", "", "free-text product details, one per line")
	cmd.Flags().StringVar(&imageAlt, "alt", "", "image alt text (defaults to the title)")
	cmd.Flags().StringArrayVar(&images, "image", nil, "product image URL (repeatable, first is the main image)")

	return cmd
}

func runGenerate(cmd *cobra.Command, facts core.ProductFacts) error {
	cfg := config.Get()

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

// printResult reports where a publish operation wrote its files.
func printResult(cmd *cobra.Command, result *core.PublishResult) {
	cmd.Println(successStyle.Render(fmt.Sprintf("✓ Published %s", result.Slug)))
	cmd.Println(subtleStyle.Render(fmt.Sprintf("  page:    %s", result.PagePath)))
	cmd.Println(subtleStyle.Render(fmt.Sprintf("  catalog: %s", result.CatalogPath)))
}
