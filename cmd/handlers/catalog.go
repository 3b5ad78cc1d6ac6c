package handlers

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"giftfinder/internal/catalog"
	"giftfinder/internal/config"
	"giftfinder/internal/pipeline"
)

// NewCatalogCmd creates the catalog command group
func NewCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the per-category product catalogs",
	}

	cmd.AddCommand(newCatalogListCmd())

	return cmd
}

func newCatalogListCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog entries for one category or all of them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogList(cmd, category)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "only list this category")

	return cmd
}

func runCatalogList(cmd *cobra.Command, category string) error {
	cfg := config.Get()

	categories := cfg.Site.AllowedCategories
	if category != "" {
		if !cfg.CategoryAllowed(category) {
			return fmt.Errorf("unknown category %q", category)
		}
		categories = []string{category}
	}

	total := 0
	for _, cat := range categories {
		path := filepath.Join(cfg.Site.OutputRoot, cat, pipeline.CatalogFilename)
		entries, err := catalog.Load(path)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			continue
		}

		cmd.Println(titleStyle.Render(fmt.Sprintf("%s (%d)", cat, len(entries))))
		for _, entry := range entries {
			cmd.Printf("  %s  %s\n", successStyle.Render(entry.Slug), entry.Title)
			if entry.Sub != "" {
				cmd.Println(subtleStyle.Render("    " + entry.Sub))
			}
		}
		total += len(entries)
	}

	if total == 0 {
		cmd.Println(subtleStyle.Render("No catalog entries found."))
	}
	return nil
}
