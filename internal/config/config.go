package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Site    Site    `mapstructure:"site"`
	AI      AI      `mapstructure:"ai"`
	Render  Render  `mapstructure:"render"`
	Scrape  Scrape  `mapstructure:"scrape"`
	Server  Server  `mapstructure:"server"`
	Logging Logging `mapstructure:"logging"`
}

// Site holds the static-site layout configuration
type Site struct {
	OutputRoot            string   `mapstructure:"output_root"`            // Root directory pages and catalogs are written under
	AllowedCategories     []string `mapstructure:"allowed_categories"`     // Permitted category names, lowercase
	TemplatesDir          string   `mapstructure:"templates_dir"`          // Directory holding page templates
	PageTemplate          string   `mapstructure:"page_template"`          // Product page template filename
	ForbiddenPlaceholders []string `mapstructure:"forbidden_placeholders"` // Leftover text that must never appear in a generated page
	PlaceholderImage      string   `mapstructure:"placeholder_image"`      // Relative image used when a scrape finds no images
}

// AI holds AI/LLM configuration
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Timeout     string  `mapstructure:"timeout"`
	Temperature float32 `mapstructure:"temperature"`
}

// Render holds page-rendering configuration
type Render struct {
	Strategy string `mapstructure:"strategy"` // "slots" or "document"
}

// Scrape holds product scraper configuration
type Scrape struct {
	UserAgent     string `mapstructure:"user_agent"`
	Timeout       string `mapstructure:"timeout"`
	RespectRobots bool   `mapstructure:"respect_robots"`
}

// Server holds the admin form server configuration
type Server struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Logging holds logging configuration
type Logging struct {
	Level  string `mapstructure:"level"`  // "info" or "debug"
	Format string `mapstructure:"format"` // "console" or "json"
}

var globalConfig *Config

// Load loads the configuration from defaults, an optional config file,
// a .env file, and environment variables.
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".giftfinder")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// Reset clears the cached global configuration. Used by tests.
func Reset() {
	globalConfig = nil
	viper.Reset()
}

// setDefaults sets default configuration values
func setDefaults() {
	// Site defaults mirror the live nzgiftfinder layout.
	viper.SetDefault("site.output_root", ".")
	viper.SetDefault("site.allowed_categories", []string{"clothing", "jewelry", "skincare", "artwork"})
	viper.SetDefault("site.templates_dir", "templates")
	viper.SetDefault("site.page_template", "product_page.html")
	viper.SetDefault("site.forbidden_placeholders", []string{"Swanndri"})
	viper.SetDefault("site.placeholder_image", "../images/pounamu_twist.png")

	// AI defaults
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.timeout", "30s")
	viper.SetDefault("ai.gemini.temperature", 0.7)

	// Render defaults
	viper.SetDefault("render.strategy", "slots")

	// Scrape defaults
	viper.SetDefault("scrape.user_agent",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome Safari")
	viper.SetDefault("scrape.timeout", "25s")
	viper.SetDefault("scrape.respect_robots", false)

	// Server defaults
	viper.SetDefault("server.host", "127.0.0.1")
	viper.SetDefault("server.port", 5000)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})
	bindEnvKeys("ai.gemini.model", []string{"GEMINI_MODEL"})
	bindEnvKeys("site.output_root", []string{"GIFTFINDER_OUTPUT_ROOT"})
	bindEnvKeys("server.port", []string{"ADMIN_PORT"})
}

// bindEnvKeys binds multiple environment variable names to a config key
func bindEnvKeys(configKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if err := viper.BindEnv(configKey, envKey); err != nil {
			fmt.Printf("Warning: Failed to bind env var %s: %v\n", envKey, err)
		}
	}
}

// validateConfig checks values the rest of the system relies on
func validateConfig(config *Config) error {
	if len(config.Site.AllowedCategories) == 0 {
		return fmt.Errorf("site.allowed_categories must not be empty")
	}
	for i, c := range config.Site.AllowedCategories {
		config.Site.AllowedCategories[i] = strings.ToLower(strings.TrimSpace(c))
	}
	switch config.Render.Strategy {
	case "slots", "document":
	default:
		return fmt.Errorf("render.strategy must be \"slots\" or \"document\", got %q", config.Render.Strategy)
	}
	return nil
}

// HasGeminiKey reports whether a Gemini API key is configured.
func (c *Config) HasGeminiKey() bool {
	return strings.TrimSpace(c.AI.Gemini.APIKey) != ""
}

// CategoryAllowed reports whether category (case-insensitive) is permitted.
func (c *Config) CategoryAllowed(category string) bool {
	category = strings.ToLower(strings.TrimSpace(category))
	for _, allowed := range c.Site.AllowedCategories {
		if category == allowed {
			return true
		}
	}
	return false
}
