package llm

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"google.golang.org/genai"
)

const (
	// DefaultModel is the default Gemini model used for copywriting.
	DefaultModel = "gemini-2.5-flash"
	// DefaultTemperature matches the sampling temperature the site's copy
	// was tuned against.
	DefaultTemperature = float32(0.7)
	// DefaultTimeout bounds a single generation call.
	DefaultTimeout = 30 * time.Second
)

// Client wraps the Gemini SDK for single-shot text generation.
type Client struct {
	apiKey      string
	modelName   string
	temperature float32
	timeout     time.Duration
	gClient     *genai.Client
}

// NewClient creates a new LLM client.
// It supports multiple ways to get the API key (in order of preference):
// 1. Environment variable: GEMINI_API_KEY (or alternatives)
// 2. Viper configuration: ai.gemini.api_key
func NewClient(modelName string) (*Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		if apiKey = os.Getenv("GOOGLE_GEMINI_API_KEY"); apiKey == "" {
			if apiKey = os.Getenv("GOOGLE_AI_API_KEY"); apiKey == "" {
				apiKey = viper.GetString("ai.gemini.api_key")
			}
		}
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file")
	}

	if modelName == "" {
		modelName = viper.GetString("ai.gemini.model")
		if modelName == "" {
			modelName = DefaultModel
		}
	}

	temperature := DefaultTemperature
	if viper.IsSet("ai.gemini.temperature") {
		temperature = float32(viper.GetFloat64("ai.gemini.temperature"))
	}

	timeout := DefaultTimeout
	if raw := viper.GetString("ai.gemini.timeout"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			timeout = parsed
		}
	}

	ctx := context.Background()
	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		apiKey:      apiKey,
		modelName:   modelName,
		temperature: temperature,
		timeout:     timeout,
		gClient:     gClient,
	}, nil
}

// Model returns the model identifier this client generates with.
func (c *Client) Model() string {
	return c.modelName
}

// GenerateText issues a single generation call with an optional system
// instruction and returns the response text.
func (c *Client) GenerateText(ctx context.Context, system, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temperature),
	}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	resp, err := c.gClient.Models.GenerateContent(ctx, c.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}

	return text, nil
}
