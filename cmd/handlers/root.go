package handlers

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"giftfinder/internal/config"
	"giftfinder/internal/copygen"
	"giftfinder/internal/llm"
	"giftfinder/internal/logger"
	"giftfinder/internal/pipeline"
)

var cfgFile string

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	titleStyle   = lipgloss.NewStyle().Bold(true)
)

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "giftfinder",
		Short: "giftfinder generates static product pages for the nzgiftfinder site.",
		Long: `giftfinder turns product facts, entered by hand or scraped from a
retailer page, into a validated static HTML product page plus an entry in the
per-category products.json catalog.

Copy is written by a configured Gemini model, or by a deterministic fallback
when no model is configured.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.giftfinder.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(NewGenerateCmd())
	rootCmd.AddCommand(NewScrapeCmd())
	rootCmd.AddCommand(NewCatalogCmd())
	rootCmd.AddCommand(NewServeCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(pipeline.Describe(err)))
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if cfg.Logging.Level == "debug" {
		logger.SetDebug()
	}
	for _, arg := range os.Args[1:] {
		if arg == "--debug" {
			logger.SetDebug()
		}
	}
	if cfg.Logging.Format == "json" {
		logger.SetJSON()
	}
}

// buildPublisher wires the pipeline from the loaded configuration. With a
// Gemini key configured the model writes the copy; without one the
// deterministic fallback is used and the document render strategy is
// unavailable.
func buildPublisher(cfg *config.Config) (*pipeline.Publisher, error) {
	if !cfg.HasGeminiKey() {
		logger.Debug("no Gemini key configured, using fallback copy")
		return pipeline.NewPublisher(cfg, copygen.Fallback{}, nil), nil
	}

	client, err := llm.NewClient(cfg.AI.Gemini.Model)
	if err != nil {
		return nil, err
	}
	logger.Debug("copy generation model configured", "model", client.Model())
	return pipeline.NewPublisher(cfg, copygen.NewModelGenerator(client), client), nil
}
